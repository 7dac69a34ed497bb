package cards

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vukan322/devcards/internal/config"
	"github.com/vukan322/devcards/internal/core"
	"github.com/vukan322/devcards/internal/providers"
	"github.com/vukan322/devcards/internal/providers/demo"
)

type fakeProvider struct {
	delay time.Duration
	snap  core.Snapshot
	langs []core.LanguageUsage
	err   error
	opts  *providers.StatsOptions
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchStats(ctx context.Context, handle string, opts providers.StatsOptions) (core.Snapshot, error) {
	if f.opts != nil {
		*f.opts = opts
	}
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return core.Snapshot{}, ctx.Err()
	}
	return f.snap, f.err
}

func (f *fakeProvider) FetchLanguages(ctx context.Context, handle string, excludeRepos []string) ([]core.LanguageUsage, error) {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return f.langs, f.err
}

func accounts(users ...string) []config.Account {
	out := make([]config.Account, len(users))
	for i, u := range users {
		out[i] = config.Account{Index: i + 1, User: u}
	}
	return out
}

func factory(byUser map[string]*fakeProvider) ProviderFactory {
	return func(acc config.Account) providers.Provider {
		return byUser[acc.User]
	}
}

func TestStats_MergesInAccountOrder(t *testing.T) {
	// The first account answers last; its name must still win.
	fakes := map[string]*fakeProvider{
		"main": {delay: 30 * time.Millisecond, snap: core.Snapshot{Name: "Main", Stars: 3, Commits: 10}},
		"work": {snap: core.Snapshot{Name: "Work", Stars: 5, Commits: 1}},
	}

	svc := NewService(accounts("main", "work"), factory(fakes), time.Second, nil)
	agg, err := svc.Stats(context.Background(), StatsRequest{})
	require.NoError(t, err)

	assert.Equal(t, "Main", agg.Name)
	assert.Equal(t, 8, agg.Stars)
	assert.Equal(t, 11, agg.Commits)
	assert.Equal(t, 2, agg.Accounts)
	assert.NotEmpty(t, agg.Result.Level)
	assert.Equal(t, string(agg.Result.Level), agg.Rank)
}

func TestStats_PassesOptions(t *testing.T) {
	var got providers.StatsOptions
	fakes := map[string]*fakeProvider{"a": {opts: &got}}

	opts := providers.StatsOptions{IncludeAllCommits: true, IncludeMergedPRs: true, ExcludeRepos: []string{"x"}}
	_, err := NewService(accounts("a"), factory(fakes), 0, nil).Stats(context.Background(), StatsRequest{Options: opts})
	require.NoError(t, err)

	assert.Equal(t, opts, got)
}

func TestStats_FailsWhenAnyAccountFails(t *testing.T) {
	boom := errors.New("rate limited")
	fakes := map[string]*fakeProvider{
		"a": {snap: core.Snapshot{Stars: 1}},
		"b": {err: boom},
	}

	_, err := NewService(accounts("a", "b"), factory(fakes), time.Second, nil).Stats(context.Background(), StatsRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "account 2 (b)")
}

func TestStats_InvalidSnapshot(t *testing.T) {
	fakes := map[string]*fakeProvider{"a": {snap: core.Snapshot{Stars: -4}}}

	_, err := NewService(accounts("a"), factory(fakes), 0, nil).Stats(context.Background(), StatsRequest{})
	assert.ErrorIs(t, err, core.ErrInvalidSnapshot)
}

func TestStats_Timeout(t *testing.T) {
	fakes := map[string]*fakeProvider{"slow": {delay: time.Second}}

	_, err := NewService(accounts("slow"), factory(fakes), 20*time.Millisecond, nil).Stats(context.Background(), StatsRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNoAccounts(t *testing.T) {
	svc := NewService(nil, nil, 0, nil)

	_, err := svc.Stats(context.Background(), StatsRequest{})
	assert.ErrorIs(t, err, ErrNoAccounts)

	_, err = svc.TopLanguages(context.Background(), LanguagesRequest{SizeWeight: 1})
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestTopLanguages(t *testing.T) {
	fakes := map[string]*fakeProvider{
		"a": {delay: 20 * time.Millisecond, langs: []core.LanguageUsage{
			{Name: "Go", Size: 100, Count: 1},
			{Name: "CSS", Size: 60, Count: 1},
		}},
		"b": {langs: []core.LanguageUsage{
			{Name: "CSS", Size: 60, Count: 3},
			{Name: "Go", Size: 20, Count: 1},
			{Name: "Zig", Size: 120, Count: 1},
		}},
	}

	svc := NewService(accounts("a", "b"), factory(fakes), time.Second, nil)
	table, err := svc.TopLanguages(context.Background(), LanguagesRequest{SizeWeight: core.DefaultSizeWeight, CountWeight: core.DefaultCountWeight})
	require.NoError(t, err)
	require.Len(t, table, 3)

	// Go and CSS tie at 120 with Zig; first-seen order breaks the tie.
	assert.Equal(t, "Go", table[0].Name)
	assert.Equal(t, "CSS", table[1].Name)
	assert.Equal(t, "Zig", table[2].Name)
	assert.Equal(t, 120.0, table[0].Score)
	assert.EqualValues(t, 4, table[1].Count)
}

func TestTopLanguages_InvalidWeight(t *testing.T) {
	fakes := map[string]*fakeProvider{"a": {langs: []core.LanguageUsage{{Name: "Go", Size: 1, Count: 1}}}}

	_, err := NewService(accounts("a"), factory(fakes), 0, nil).TopLanguages(context.Background(), LanguagesRequest{SizeWeight: -1})
	assert.ErrorIs(t, err, core.ErrInvalidWeight)
}

func TestDemoProvider(t *testing.T) {
	svc := NewService(accounts("alice", "bob"), func(config.Account) providers.Provider { return demo.New() }, time.Second, nil)

	first, err := svc.Stats(context.Background(), StatsRequest{Options: providers.StatsOptions{IncludeAllCommits: true}})
	require.NoError(t, err)
	second, err := svc.Stats(context.Background(), StatsRequest{Options: providers.StatsOptions{IncludeAllCommits: true}})
	require.NoError(t, err)

	assert.Equal(t, "Demo alice", first.Name)
	assert.Equal(t, first, second)
	assert.Positive(t, first.AllCommits)

	table, err := svc.TopLanguages(context.Background(), LanguagesRequest{SizeWeight: 1})
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, "Go", table[0].Name)
	assert.EqualValues(t, 14, table[0].Count)
}
