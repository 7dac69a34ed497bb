package cards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vukan322/devcards/internal/config"
	"github.com/vukan322/devcards/internal/core"
	"github.com/vukan322/devcards/internal/providers"
)

var ErrNoAccounts = errors.New("no accounts configured")

// ProviderFactory builds the provider used to fetch one account.
type ProviderFactory func(acc config.Account) providers.Provider

type Service struct {
	accounts []config.Account
	provider ProviderFactory
	timeout  time.Duration
	log      *zap.Logger
}

func NewService(accounts []config.Account, provider ProviderFactory, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		accounts: accounts,
		provider: provider,
		timeout:  timeout,
		log:      log,
	}
}

type StatsRequest struct {
	Options providers.StatsOptions
}

type LanguagesRequest struct {
	ExcludeRepos []string
	SizeWeight   float64
	CountWeight  float64
}

// Stats fetches every account, merges the snapshots in account order and
// attaches the activity rank. Any failed fetch fails the whole request.
func (s *Service) Stats(ctx context.Context, req StatsRequest) (core.Aggregate, error) {
	snaps, err := fetchAll(ctx, s, func(ctx context.Context, p providers.Provider, acc config.Account) (core.Snapshot, error) {
		return p.FetchStats(ctx, acc.User, req.Options)
	})
	if err != nil {
		return core.Aggregate{}, err
	}

	agg, err := core.MergeSnapshots(snaps)
	if err != nil {
		return core.Aggregate{}, fmt.Errorf("merge stats: %w", err)
	}

	agg, err = core.ScoreActivity(agg, req.Options.IncludeAllCommits)
	if err != nil {
		return core.Aggregate{}, fmt.Errorf("score stats: %w", err)
	}

	s.log.Debug("stats aggregated",
		zap.Int("accounts", agg.Accounts),
		zap.String("level", string(agg.Result.Level)),
		zap.Float64("score", agg.Result.Score),
	)

	return agg, nil
}

func (s *Service) TopLanguages(ctx context.Context, req LanguagesRequest) (core.RankedLanguages, error) {
	usage, err := fetchAll(ctx, s, func(ctx context.Context, p providers.Provider, acc config.Account) ([]core.LanguageUsage, error) {
		return p.FetchLanguages(ctx, acc.User, req.ExcludeRepos)
	})
	if err != nil {
		return nil, err
	}

	merged, err := core.MergeLanguages(usage)
	if err != nil {
		return nil, fmt.Errorf("merge languages: %w", err)
	}

	scored, err := core.ScoreLanguages(merged, req.SizeWeight, req.CountWeight)
	if err != nil {
		return nil, fmt.Errorf("score languages: %w", err)
	}

	table := core.BuildTable(scored)
	s.log.Debug("languages aggregated", zap.Int("accounts", len(usage)), zap.Int("languages", len(table)))

	return table, nil
}

// fetchAll runs fetch for every account concurrently. Results are indexed by
// account position, not completion order.
func fetchAll[T any](ctx context.Context, s *Service, fetch func(context.Context, providers.Provider, config.Account) (T, error)) ([]T, error) {
	if len(s.accounts) == 0 {
		return nil, ErrNoAccounts
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	results := make([]T, len(s.accounts))
	g, gctx := errgroup.WithContext(ctx)

	for i, acc := range s.accounts {
		g.Go(func() error {
			p := s.provider(acc)
			res, err := fetch(gctx, p, acc)
			if err != nil {
				s.log.Warn("account fetch failed",
					zap.String("provider", p.Name()),
					zap.Int("account", acc.Index),
					zap.Error(err),
				)
				return fmt.Errorf("account %d (%s): %w", acc.Index, acc.User, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
