package render

import (
	"bytes"
	"embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/lucasb-eyer/go-colorful"
)

//go:embed templates/*.svg.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("cards").
		Funcs(template.FuncMap{
			"addf": func(a, b float64) float64 { return a + b },
			"mulf": func(a, b float64) float64 { return a * b },
			"mul":  func(a, b int) int { return a * b },
			"sub":  func(a, b int) int { return a - b },
			"f2":   func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
		}).
		ParseFS(templateFS, "templates/*.svg.tmpl"),
)

const defaultLanguageColor = "#858585"

// Colors are resolved CSS colors ("#rrggbb").
type Colors struct {
	Title  string
	Text   string
	Icon   string
	Ring   string
	Bg     string
	Border string
}

var Themes = map[string]Colors{
	"default": {Title: "#2f80ed", Text: "#434d58", Icon: "#4c71f2", Ring: "#2f80ed", Bg: "#fffefe", Border: "#e4e2e2"},
	"dark":    {Title: "#ffffff", Text: "#9f9f9f", Icon: "#79ff97", Ring: "#ffffff", Bg: "#151515", Border: "#e4e2e2"},
	"radical": {Title: "#fe428e", Text: "#a9fef7", Icon: "#f8d847", Ring: "#fe428e", Bg: "#141321", Border: "#e4e2e2"},
	"tokyonight": {
		Title: "#70a5fd", Text: "#38bdae", Icon: "#bf91f3", Ring: "#70a5fd", Bg: "#1a1b27", Border: "#e4e2e2",
	},
}

// ColorOverrides are user supplied hex colors without the leading '#'.
// Empty values fall back to the theme.
type ColorOverrides struct {
	Title  string
	Text   string
	Icon   string
	Ring   string
	Bg     string
	Border string
}

// ResolveColors applies overrides on top of theme. Unknown themes use
// "default"; invalid hex overrides are ignored.
func ResolveColors(theme string, o ColorOverrides) Colors {
	c, ok := Themes[theme]
	if !ok {
		c = Themes["default"]
	}

	c.Title = pickColor(o.Title, c.Title)
	c.Text = pickColor(o.Text, c.Text)
	c.Icon = pickColor(o.Icon, c.Icon)
	c.Bg = pickColor(o.Bg, c.Bg)
	c.Border = pickColor(o.Border, c.Border)
	// The ring follows the title color unless set explicitly.
	c.Ring = pickColor(o.Ring, pickColor(o.Title, c.Ring))

	return c
}

func pickColor(value, fallback string) string {
	if value == "" {
		return fallback
	}
	hex := "#" + strings.TrimPrefix(value, "#")
	col, err := colorful.Hex(hex)
	if err != nil {
		return fallback
	}
	return col.Hex()
}

// ValidHex reports whether s is a hex color, with or without '#'.
func ValidHex(s string) bool {
	_, err := colorful.Hex("#" + strings.TrimPrefix(s, "#"))
	return err == nil
}

// languageColor normalises a provider color, falling back to grey.
func languageColor(c string) string {
	return pickColor(c, defaultLanguageColor)
}

// trackColor is a faded variant of base used behind progress bars.
func trackColor(base, bg string) string {
	b, err := colorful.Hex(base)
	if err != nil {
		return base
	}
	g, err := colorful.Hex(bg)
	if err != nil {
		return base
	}
	return b.BlendLab(g, 0.8).Clamped().Hex()
}

// FormatNumber renders n the way cards show counters: 1.2k above 999
// unless long is set.
func FormatNumber(n int, long bool) string {
	if long || abs(n) <= 999 {
		return strconv.Itoa(n)
	}
	v := math.Round(float64(n)/100) / 10
	return strconv.FormatFloat(v, 'f', -1, 64) + "k"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
