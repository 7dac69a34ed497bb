package demo

import (
	"context"
	"hash/fnv"

	"github.com/vukan322/devcards/internal/core"
	"github.com/vukan322/devcards/internal/providers"
)

// DemoProvider returns fixed data derived from the handle, so the same
// handle always yields the same snapshot.
type DemoProvider struct{}

func New() *DemoProvider {
	return &DemoProvider{}
}

func (d *DemoProvider) Name() string {
	return "demo"
}

func (d *DemoProvider) FetchStats(ctx context.Context, handle string, opts providers.StatsOptions) (core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.Snapshot{}, err
	}

	seed := seedFor(handle)

	snap := core.Snapshot{
		Name:          "Demo " + handle,
		Commits:       120 + seed%200,
		PRs:           15 + seed%40,
		Reviews:       seed % 12,
		Issues:        8 + seed%25,
		Stars:         32 + seed%90,
		Followers:     10 + seed%30,
		Repositories:  12 + seed%20,
		ContributedTo: 3 + seed%7,
	}
	if opts.IncludeAllCommits {
		snap.AllCommits = snap.Commits * 6
	}
	if opts.IncludeMergedPRs {
		snap.PRsMerged = snap.PRs * 2 / 3
	}
	if opts.IncludeDiscussions {
		snap.DiscussionsStarted = seed % 5
	}
	if opts.IncludeDiscussionsAnswers {
		snap.DiscussionsAnswered = seed % 3
	}

	return snap, nil
}

type demoRepo struct {
	name string
	lang core.LanguageUsage
}

// Each demo repository carries a single language so that excluding a repo
// drops its language from the card.
func demoRepos(seed int64) []demoRepo {
	return []demoRepo{
		{"devcards", core.LanguageUsage{Name: "Go", Color: "#00ADD8", Size: 70000 + seed*10, Count: 7}},
		{"dashboard", core.LanguageUsage{Name: "TypeScript", Color: "#3178c6", Size: 20000 + seed*5, Count: 4}},
		{"dotfiles", core.LanguageUsage{Name: "Lua", Color: "#000080", Size: 10000, Count: 2}},
	}
}

func (d *DemoProvider) FetchLanguages(ctx context.Context, handle string, excludeRepos []string) ([]core.LanguageUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	excluded := providers.Excluded(excludeRepos)

	var langs []core.LanguageUsage
	for _, repo := range demoRepos(int64(seedFor(handle))) {
		if _, skip := excluded[repo.name]; skip {
			continue
		}
		langs = append(langs, repo.lang)
	}
	return langs, nil
}

func seedFor(handle string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(handle))
	return int(h.Sum32() % 1000)
}
