package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vukan322/devcards/internal/cards"
	"github.com/vukan322/devcards/internal/core"
	"github.com/vukan322/devcards/internal/logging"
	"github.com/vukan322/devcards/internal/providers"
	"github.com/vukan322/devcards/internal/providers/github"
	"github.com/vukan322/devcards/internal/render"
)

const (
	oneDay      = 24 * 60 * 60
	twelveHours = oneDay / 2
	twoDays     = 2 * oneDay
	sixDays     = 6 * oneDay

	statsCacheSeconds = oneDay
	langsCacheSeconds = sixDays
	errorCacheSeconds = 10 * 60

	requestTimeout = 15 * time.Second
)

type CardService interface {
	Stats(ctx context.Context, req cards.StatsRequest) (core.Aggregate, error)
	TopLanguages(ctx context.Context, req cards.LanguagesRequest) (core.RankedLanguages, error)
}

type Server struct {
	cards         CardService
	cacheOverride int
	validate      *validator.Validate
	log           *zap.Logger
}

// New builds the HTTP layer. A positive cacheOverride replaces the
// Cache-Control duration computed from the query.
func New(svc CardService, cacheOverride int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cards:         svc,
		cacheOverride: cacheOverride,
		validate:      newValidator(),
		log:           log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/api", s.handleStats)
	r.Get("/api/top-langs", s.handleTopLanguages)

	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")

	q, err := parseStatsQuery(r.URL.Query())
	if err == nil {
		err = s.validate.Struct(q)
	}
	if err != nil {
		s.writeError(w, "Something went wrong", describe(err), q.cardQuery)
		return
	}

	agg, err := s.cards.Stats(r.Context(), cards.StatsRequest{Options: providers.StatsOptions{
		IncludeAllCommits:         q.IncludeAllCommits,
		IncludeMergedPRs:          containsAny(q.Show, "prs_merged", "prs_merged_percentage"),
		IncludeDiscussions:        containsAny(q.Show, "discussions_started"),
		IncludeDiscussionsAnswers: containsAny(q.Show, "discussions_answered"),
		ExcludeRepos:              q.ExcludeRepo,
	}})
	if err != nil {
		s.failed(w, r, err, q.cardQuery)
		return
	}

	cache := q.CacheSeconds
	if cache == 0 {
		cache = statsCacheSeconds
	}
	cache = s.cacheSeconds(core.Clamp(cache, twelveHours, twoDays))
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d, s-maxage=%d, stale-while-revalidate=%d", cache, cache, oneDay))

	colors := q.colors()
	colors.Ring = q.RingColor
	colors.Icon = q.IconColor

	svg, err := render.StatsCard(agg, render.StatsOptions{
		Hide:              q.Hide,
		Show:              q.Show,
		HideTitle:         q.HideTitle,
		HideBorder:        q.HideBorder,
		HideRank:          q.HideRank,
		IncludeAllCommits: q.IncludeAllCommits,
		CustomTitle:       q.CustomTitle,
		CardWidth:         q.CardWidth,
		LineHeight:        q.LineHeight,
		BorderRadius:      q.BorderRadius,
		DisableAnimations: q.DisableAnimations,
		LongNumbers:       q.NumberFormat == "long",
		Theme:             q.Theme,
		Colors:            colors,
	})
	s.write(w, svg, err)
}

func (s *Server) handleTopLanguages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")

	q, err := parseLangsQuery(r.URL.Query())
	if err == nil {
		err = s.validate.Struct(q)
	}
	if err != nil {
		s.writeError(w, "Something went wrong", describe(err), q.cardQuery)
		return
	}

	table, err := s.cards.TopLanguages(r.Context(), cards.LanguagesRequest{
		ExcludeRepos: q.ExcludeRepo,
		SizeWeight:   q.SizeWeight,
		CountWeight:  q.CountWeight,
	})
	if err != nil {
		s.failed(w, r, err, q.cardQuery)
		return
	}

	cache := q.CacheSeconds
	if cache == 0 {
		cache = langsCacheSeconds
	}
	cache = s.cacheSeconds(cache)
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d, s-maxage=%d", cache/2, cache))

	svg, err := render.LanguagesCard(table, render.LanguagesOptions{
		Layout:            q.Layout,
		LangsCount:        q.LangsCount,
		Hide:              q.Hide,
		HideTitle:         q.HideTitle,
		HideBorder:        q.HideBorder,
		HideProgress:      q.HideProgress,
		CustomTitle:       q.CustomTitle,
		CardWidth:         q.CardWidth,
		BorderRadius:      q.BorderRadius,
		DisableAnimations: q.DisableAnimations,
		Theme:             q.Theme,
		Colors:            q.colors(),
	})
	s.write(w, svg, err)
}

func (s *Server) cacheSeconds(computed int) int {
	if s.cacheOverride > 0 {
		return s.cacheOverride
	}
	return computed
}

func (s *Server) failed(w http.ResponseWriter, r *http.Request, err error, q cardQuery) {
	s.log.Warn("card request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)

	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d, s-maxage=%d, stale-while-revalidate=%d", errorCacheSeconds/2, errorCacheSeconds, oneDay))

	message, secondary := explain(err)
	s.writeError(w, message, secondary, q)
}

func explain(err error) (string, string) {
	switch {
	case errors.Is(err, cards.ErrNoAccounts):
		return "No accounts configured", "Set PAT_1_USER and PAT_1 in the environment"
	case errors.Is(err, github.ErrUserNotFound):
		return "Could not resolve to a User", "Make sure the provided username is not an organization"
	case errors.Is(err, core.ErrInvalidWeight):
		return "Something went wrong", "Incorrect size_weight or count_weight input"
	case errors.Is(err, core.ErrInvalidSnapshot), errors.Is(err, core.ErrInvalidMetric):
		return "Something went wrong", "Upstream returned invalid metrics"
	case errors.Is(err, context.DeadlineExceeded):
		return "Something went wrong", "Upstream request timed out"
	}
	return "Something went wrong", "Please try again later"
}

func (s *Server) writeError(w http.ResponseWriter, message, secondary string, q cardQuery) {
	svg, err := render.ErrorCard(message, secondary, q.Theme, q.colors())
	s.write(w, svg, err)
}

func (s *Server) write(w http.ResponseWriter, svg []byte, err error) {
	if err != nil {
		s.log.Error("render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(svg)
}

func containsAny(list []string, values ...string) bool {
	for _, l := range list {
		for _, v := range values {
			if l == v {
				return true
			}
		}
	}
	return false
}
