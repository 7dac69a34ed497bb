package server

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vukan322/devcards/internal/core"
	"github.com/vukan322/devcards/internal/render"
)

type cardQuery struct {
	Hide              []string `query:"hide"`
	HideTitle         bool     `query:"hide_title"`
	HideBorder        bool     `query:"hide_border"`
	DisableAnimations bool     `query:"disable_animations"`
	CardWidth         int      `query:"card_width" validate:"gte=0,lte=2000"`
	BorderRadius      float64  `query:"border_radius" validate:"gte=0,lte=100"`
	CustomTitle       string   `query:"custom_title" validate:"max=120"`
	Theme             string   `query:"theme"`
	TitleColor        string   `query:"title_color" validate:"omitempty,cardcolor"`
	TextColor         string   `query:"text_color" validate:"omitempty,cardcolor"`
	BgColor           string   `query:"bg_color" validate:"omitempty,cardcolor"`
	BorderColor       string   `query:"border_color" validate:"omitempty,cardcolor"`
	CacheSeconds      int      `query:"cache_seconds" validate:"gte=0"`
	Locale            string   `query:"locale" validate:"omitempty,oneof=en"`
	ExcludeRepo       []string `query:"exclude_repo"`
}

type statsQuery struct {
	cardQuery
	Show              []string `query:"show" validate:"dive,oneof=reviews prs_merged prs_merged_percentage discussions_started discussions_answered"`
	HideRank          bool     `query:"hide_rank"`
	IncludeAllCommits bool     `query:"include_all_commits"`
	LineHeight        int      `query:"line_height" validate:"gte=0,lte=100"`
	NumberFormat      string   `query:"number_format" validate:"omitempty,oneof=short long"`
	RingColor         string   `query:"ring_color" validate:"omitempty,cardcolor"`
	IconColor         string   `query:"icon_color" validate:"omitempty,cardcolor"`
}

type langsQuery struct {
	cardQuery
	Layout       string  `query:"layout" validate:"omitempty,oneof=normal compact donut donut-vertical pie"`
	LangsCount   int     `query:"langs_count" validate:"gte=0,lte=20"`
	SizeWeight   float64 `query:"size_weight" validate:"gte=0,lte=10"`
	CountWeight  float64 `query:"count_weight" validate:"gte=0,lte=10"`
	HideProgress bool    `query:"hide_progress"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	if err := v.RegisterValidation("cardcolor", func(fl validator.FieldLevel) bool {
		return render.ValidHex(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register cardcolor validation: %v", err))
	}
	return v
}

func parseBoolean(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func parseArray(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseInt treats missing or malformed values as unset.
func parseInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(q url.Values, key string, def float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("incorrect %s input", key)
	}
	return f, nil
}

func parseCardQuery(q url.Values) (cardQuery, error) {
	radius, err := parseFloat(q, "border_radius", 0)
	if err != nil {
		return cardQuery{}, err
	}
	return cardQuery{
		Hide:              parseArray(q.Get("hide")),
		HideTitle:         parseBoolean(q.Get("hide_title")),
		HideBorder:        parseBoolean(q.Get("hide_border")),
		DisableAnimations: parseBoolean(q.Get("disable_animations")),
		CardWidth:         parseInt(q.Get("card_width")),
		BorderRadius:      radius,
		CustomTitle:       q.Get("custom_title"),
		Theme:             q.Get("theme"),
		TitleColor:        q.Get("title_color"),
		TextColor:         q.Get("text_color"),
		BgColor:           q.Get("bg_color"),
		BorderColor:       q.Get("border_color"),
		CacheSeconds:      parseInt(q.Get("cache_seconds")),
		Locale:            strings.ToLower(q.Get("locale")),
		ExcludeRepo:       parseArray(q.Get("exclude_repo")),
	}, nil
}

func parseStatsQuery(q url.Values) (statsQuery, error) {
	card, err := parseCardQuery(q)
	if err != nil {
		return statsQuery{}, err
	}
	return statsQuery{
		cardQuery:         card,
		Show:              parseArray(q.Get("show")),
		HideRank:          parseBoolean(q.Get("hide_rank")),
		IncludeAllCommits: parseBoolean(q.Get("include_all_commits")),
		LineHeight:        parseInt(q.Get("line_height")),
		NumberFormat:      strings.ToLower(q.Get("number_format")),
		RingColor:         q.Get("ring_color"),
		IconColor:         q.Get("icon_color"),
	}, nil
}

func parseLangsQuery(q url.Values) (langsQuery, error) {
	card, err := parseCardQuery(q)
	if err != nil {
		return langsQuery{}, err
	}
	sizeWeight, err := parseFloat(q, "size_weight", core.DefaultSizeWeight)
	if err != nil {
		return langsQuery{}, err
	}
	countWeight, err := parseFloat(q, "count_weight", core.DefaultCountWeight)
	if err != nil {
		return langsQuery{}, err
	}
	return langsQuery{
		cardQuery:    card,
		Layout:       q.Get("layout"),
		LangsCount:   parseInt(q.Get("langs_count")),
		SizeWeight:   sizeWeight,
		CountWeight:  countWeight,
		HideProgress: parseBoolean(q.Get("hide_progress")),
	}, nil
}

func (c cardQuery) colors() render.ColorOverrides {
	return render.ColorOverrides{
		Title:  c.TitleColor,
		Text:   c.TextColor,
		Bg:     c.BgColor,
		Border: c.BorderColor,
	}
}

// describe turns a validation failure into the secondary line of an error card.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Field() {
	case "locale":
		return "Locale not found"
	case "layout":
		return "Incorrect layout input"
	}
	return fmt.Sprintf("Incorrect %s input", fe.Field())
}
