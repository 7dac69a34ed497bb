package providers

import (
	"context"

	"github.com/vukan322/devcards/internal/core"
)

type StatsOptions struct {
	IncludeAllCommits         bool
	IncludeMergedPRs          bool
	IncludeDiscussions        bool
	IncludeDiscussionsAnswers bool
	ExcludeRepos              []string
}

type Provider interface {
	Name() string
	FetchStats(ctx context.Context, handle string, opts StatsOptions) (core.Snapshot, error)
	FetchLanguages(ctx context.Context, handle string, excludeRepos []string) ([]core.LanguageUsage, error)
}

func Excluded(excludeRepos []string) map[string]struct{} {
	set := make(map[string]struct{}, len(excludeRepos))
	for _, r := range excludeRepos {
		if r != "" {
			set[r] = struct{}{}
		}
	}
	return set
}
