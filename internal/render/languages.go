package render

import (
	"fmt"
	"math"

	"github.com/vukan322/devcards/internal/core"
)

const (
	LayoutNormal        = "normal"
	LayoutCompact       = "compact"
	LayoutDonut         = "donut"
	LayoutDonutVertical = "donut-vertical"
	LayoutPie           = "pie"

	MaxLanguages = 20

	langsDefaultWidth = 300
	langsMinWidth     = 280
	donutRadius       = 40.0
)

var Layouts = []string{LayoutNormal, LayoutCompact, LayoutDonut, LayoutDonutVertical, LayoutPie}

var defaultLangsCount = map[string]int{
	LayoutNormal:        5,
	LayoutCompact:       6,
	LayoutDonut:         5,
	LayoutDonutVertical: 6,
	LayoutPie:           6,
}

type LanguagesOptions struct {
	Layout            string
	LangsCount        int
	Hide              []string
	HideTitle         bool
	HideBorder        bool
	HideProgress      bool
	CustomTitle       string
	CardWidth         int
	BorderRadius      float64
	DisableAnimations bool
	Theme             string
	Colors            ColorOverrides
}

type languageRow struct {
	Name    string
	Color   string
	Track   string
	Percent string

	X, Y     float64
	BarX     float64
	BarWidth float64

	SegLength float64
	SegOffset float64
}

type languagesViewModel struct {
	Width        int
	Height       int
	Title        string
	Colors       Colors
	Layout       string
	HideTitle    bool
	HideBorder   bool
	HideProgress bool
	Animate      bool
	BorderRadius float64
	BodyOffset   int
	BarWidth     float64
	Rows         []languageRow

	Circumference float64
	Radius        float64
	StrokeWidth   float64
	CircleX       float64
	CircleY       float64
	LegendX       float64
	LegendY       float64
	Empty         bool
}

// LanguagesCard renders the ranked table. Hidden languages are dropped
// before the count limit is applied, as the table is already ordered.
func LanguagesCard(table core.RankedLanguages, opts LanguagesOptions) ([]byte, error) {
	layout := opts.Layout
	if layout == "" {
		layout = LayoutNormal
	}
	if _, ok := defaultLangsCount[layout]; !ok {
		return nil, fmt.Errorf("render languages: unknown layout %q", layout)
	}

	count := opts.LangsCount
	if count <= 0 {
		count = defaultLangsCount[layout]
	}
	count = core.Clamp(count, 1, MaxLanguages)

	langs := table.Without(opts.Hide...).Top(count)
	total := langs.TotalScore()

	width := opts.CardWidth
	if width <= 0 {
		width = langsDefaultWidth
	}
	width = max(width, langsMinWidth)

	colors := ResolveColors(opts.Theme, opts.Colors)

	borderRadius := opts.BorderRadius
	if borderRadius <= 0 {
		borderRadius = 4.5
	}

	vm := languagesViewModel{
		Width:        width,
		Title:        opts.CustomTitle,
		Colors:       colors,
		Layout:       layout,
		HideTitle:    opts.HideTitle,
		HideBorder:   opts.HideBorder,
		HideProgress: opts.HideProgress,
		Animate:      !opts.DisableAnimations,
		BorderRadius: borderRadius,
		BodyOffset:   55,
		BarWidth:     float64(width - 50),
		Empty:        len(langs) == 0,
	}
	if vm.Title == "" {
		vm.Title = "Most Used Languages"
	}
	if vm.HideTitle {
		vm.BodyOffset = 25
	}

	rows := make([]languageRow, len(langs))
	for i, l := range langs {
		pct := 0.0
		if total > 0 {
			pct = l.Score / total * 100
		}
		color := languageColor(l.Color)
		rows[i] = languageRow{
			Name:    l.Name,
			Color:   color,
			Track:   trackColor(color, colors.Bg),
			Percent: fmt.Sprintf("%.2f%%", pct),
		}
		rows[i].BarWidth = pct / 100 * vm.BarWidth
	}

	var bodyHeight float64
	switch layout {
	case LayoutNormal:
		for i := range rows {
			rows[i].Y = float64(i * 40)
		}
		bodyHeight = float64(len(rows) * 40)
	case LayoutCompact:
		var x float64
		for i := range rows {
			rows[i].BarX = x
			x += rows[i].BarWidth
		}
		placeLegend(rows, float64(width-50)/2)
		bodyHeight = math.Ceil(float64(len(rows))/2) * 25
		if !opts.HideProgress {
			vm.LegendY = 25
			bodyHeight += 25
		}
	default:
		vm.Radius = donutRadius
		vm.StrokeWidth = 12
		if layout == LayoutPie {
			vm.Radius = donutRadius / 2
			vm.StrokeWidth = donutRadius
		}
		vm.Circumference = 2 * math.Pi * vm.Radius

		var offset float64
		for i := range rows {
			pct := 0.0
			if total > 0 {
				pct = langs[i].Score / total
			}
			rows[i].SegLength = pct * vm.Circumference
			rows[i].SegOffset = -offset
			offset += rows[i].SegLength
		}

		if layout == LayoutDonutVertical {
			vm.CircleX = float64(width) / 2
			vm.CircleY = donutRadius + 10
			vm.LegendX = 25
			vm.LegendY = 2*donutRadius + 40
			placeLegend(rows, float64(width-50)/2)
			bodyHeight = vm.LegendY + math.Ceil(float64(len(rows))/2)*25
		} else {
			vm.CircleX = float64(width) - donutRadius - 35
			vm.CircleY = donutRadius + 10
			vm.LegendX = 25
			for i := range rows {
				rows[i].Y = float64(i * 25)
			}
			bodyHeight = max(float64(len(rows)*25), 2*donutRadius+20)
		}
	}

	vm.Rows = rows
	vm.Height = vm.BodyOffset + int(math.Ceil(bodyHeight)) + 20
	if vm.Empty {
		vm.Height = vm.BodyOffset + 45
	}

	return execute("languages.svg.tmpl", vm)
}

func placeLegend(rows []languageRow, colWidth float64) {
	for i := range rows {
		rows[i].X = float64(i%2) * colWidth
		rows[i].Y = float64(i/2) * 25
	}
}
