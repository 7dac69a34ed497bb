package render

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vukan322/devcards/internal/core"
)

const (
	statsDefaultWidth  = 467
	statsMinWidth      = 287
	statsRankMinWidth  = 420
	statsDefaultLine   = 25
	rankRingDashLength = 250
)

// StatKeys in display order. The first five are shown unless hidden; the
// rest only when listed in Show.
var StatKeys = []string{
	"stars", "commits", "prs", "issues", "contribs",
	"reviews", "prs_merged", "prs_merged_percentage", "discussions_started", "discussions_answered",
}

var optionalStats = map[string]bool{
	"reviews":               true,
	"prs_merged":            true,
	"prs_merged_percentage": true,
	"discussions_started":   true,
	"discussions_answered":  true,
}

type StatsOptions struct {
	Hide              []string
	Show              []string
	HideTitle         bool
	HideBorder        bool
	HideRank          bool
	IncludeAllCommits bool
	CustomTitle       string
	CardWidth         int
	LineHeight        int
	BorderRadius      float64
	DisableAnimations bool
	LongNumbers       bool
	Theme             string
	Colors            ColorOverrides
}

type statRow struct {
	Key   string
	Label string
	Value string
}

type statsViewModel struct {
	Width        int
	Height       int
	Title        string
	Desc         string
	Colors       Colors
	HideTitle    bool
	HideBorder   bool
	HideRank     bool
	Animate      bool
	BorderRadius float64
	BodyOffset   int
	LineHeight   int
	ValueX       int
	Rows         []statRow

	Level      string
	TopPercent string
	RankX      int
	RankY      int
	RankOffset float64
}

func StatsCard(agg core.Aggregate, opts StatsOptions) ([]byte, error) {
	rows := statRows(agg, opts)

	lineHeight := opts.LineHeight
	if lineHeight <= 0 {
		lineHeight = statsDefaultLine
	}

	height := 45 + (len(rows)+1)*lineHeight
	if !opts.HideRank {
		height = max(height, 150)
	}
	if opts.HideTitle {
		height -= 30
	}

	minWidth := statsMinWidth
	if !opts.HideRank {
		minWidth = statsRankMinWidth
	}
	width := opts.CardWidth
	if width <= 0 {
		width = statsDefaultWidth
	}
	width = max(width, minWidth)

	bodyOffset := 55
	if opts.HideTitle {
		bodyOffset = 25
	}

	borderRadius := opts.BorderRadius
	if borderRadius <= 0 {
		borderRadius = 4.5
	}

	vm := statsViewModel{
		Width:        width,
		Height:       height,
		Title:        statsTitle(agg.Name, opts.CustomTitle),
		Colors:       ResolveColors(opts.Theme, opts.Colors),
		HideTitle:    opts.HideTitle,
		HideBorder:   opts.HideBorder,
		HideRank:     opts.HideRank,
		Animate:      !opts.DisableAnimations,
		BorderRadius: borderRadius,
		BodyOffset:   bodyOffset,
		LineHeight:   lineHeight,
		ValueX:       220,
		Rows:         rows,
		Level:        string(agg.Result.Level),
		TopPercent:   fmt.Sprintf("%.1f", agg.Result.Score*100),
		RankX:        width - 75,
		RankY:        (height-bodyOffset)/2 - 25,
		RankOffset:   rankRingDashLength * agg.Result.Score,
	}

	desc := make([]string, 0, len(rows)+1)
	for _, r := range rows {
		desc = append(desc, r.Label+": "+r.Value)
	}
	if !opts.HideRank {
		desc = append(desc, "Rank: "+vm.Level)
	}
	vm.Desc = strings.Join(desc, ", ")

	return execute("stats.svg.tmpl", vm)
}

func statsTitle(name, custom string) string {
	if custom != "" {
		return custom
	}
	if name == "" {
		return "GitHub Stats"
	}
	if strings.HasSuffix(strings.ToLower(name), "s") {
		return name + "' GitHub Stats"
	}
	return name + "'s GitHub Stats"
}

func statRows(agg core.Aggregate, opts StatsOptions) []statRow {
	format := func(n int) string { return FormatNumber(n, opts.LongNumbers) }

	commitsLabel := "Total Commits (last year)"
	commits := agg.Commits
	if opts.IncludeAllCommits {
		commitsLabel = "Total Commits"
		commits = agg.AllCommits
	}

	mergedPct := 0.0
	if agg.PRs > 0 {
		mergedPct = float64(agg.PRsMerged) / float64(agg.PRs) * 100
	}

	all := map[string]statRow{
		"stars":                 {Label: "Total Stars Earned", Value: format(agg.Stars)},
		"commits":               {Label: commitsLabel, Value: format(commits)},
		"prs":                   {Label: "Total PRs", Value: format(agg.PRs)},
		"issues":                {Label: "Total Issues", Value: format(agg.Issues)},
		"contribs":              {Label: "Contributed to (last year)", Value: format(agg.ContributedTo)},
		"reviews":               {Label: "Total PRs Reviewed", Value: format(agg.Reviews)},
		"prs_merged":            {Label: "Total PRs Merged", Value: format(agg.PRsMerged)},
		"prs_merged_percentage": {Label: "Merged PRs Percentage", Value: fmt.Sprintf("%.2f%%", mergedPct)},
		"discussions_started":   {Label: "Total Discussions Started", Value: format(agg.DiscussionsStarted)},
		"discussions_answered":  {Label: "Total Discussions Answered", Value: format(agg.DiscussionsAnswered)},
	}

	var rows []statRow
	for _, key := range StatKeys {
		if slices.Contains(opts.Hide, key) {
			continue
		}
		if optionalStats[key] && !slices.Contains(opts.Show, key) {
			continue
		}
		row := all[key]
		row.Key = key
		rows = append(rows, row)
	}
	return rows
}
