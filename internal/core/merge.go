package core

import "fmt"

type textField struct {
	name string
	ref  func(*Snapshot) *string
}

type counterField struct {
	name string
	ref  func(*Snapshot) *int
}

// Text fields keep the first non-empty value in account order.
var textFields = []textField{
	{"name", func(s *Snapshot) *string { return &s.Name }},
	{"rank", func(s *Snapshot) *string { return &s.Rank }},
}

// Counter fields are summed across accounts.
var counterFields = []counterField{
	{"commits", func(s *Snapshot) *int { return &s.Commits }},
	{"all_commits", func(s *Snapshot) *int { return &s.AllCommits }},
	{"prs", func(s *Snapshot) *int { return &s.PRs }},
	{"prs_merged", func(s *Snapshot) *int { return &s.PRsMerged }},
	{"reviews", func(s *Snapshot) *int { return &s.Reviews }},
	{"issues", func(s *Snapshot) *int { return &s.Issues }},
	{"stars", func(s *Snapshot) *int { return &s.Stars }},
	{"followers", func(s *Snapshot) *int { return &s.Followers }},
	{"repositories", func(s *Snapshot) *int { return &s.Repositories }},
	{"contributed_to", func(s *Snapshot) *int { return &s.ContributedTo }},
	{"discussions_started", func(s *Snapshot) *int { return &s.DiscussionsStarted }},
	{"discussions_answered", func(s *Snapshot) *int { return &s.DiscussionsAnswered }},
}

// MergeSnapshots folds per-account snapshots, given in account order, into
// one aggregate. The result carries no rank; see ScoreActivity.
func MergeSnapshots(snaps []Snapshot) (Aggregate, error) {
	if len(snaps) == 0 {
		return Aggregate{}, fmt.Errorf("%w: no snapshots to merge", ErrInvalidSnapshot)
	}

	var merged Snapshot

	for i := range snaps {
		snap := &snaps[i]

		for _, f := range textFields {
			dst := f.ref(&merged)
			if *dst == "" {
				*dst = *f.ref(snap)
			}
		}

		for _, f := range counterFields {
			v := *f.ref(snap)
			if v < 0 {
				return Aggregate{}, fmt.Errorf("%w: account %d: %s is negative (%d)", ErrInvalidSnapshot, i, f.name, v)
			}
			*f.ref(&merged) += v
		}
	}

	return Aggregate{Snapshot: merged, Accounts: len(snaps)}, nil
}

// MergeLanguages sums size and count per language name across accounts.
// Languages keep the order in which they were first seen.
func MergeLanguages(accounts [][]LanguageUsage) ([]LanguageAggregate, error) {
	index := make(map[string]int)
	var merged []LanguageAggregate

	for i, langs := range accounts {
		for _, l := range langs {
			if l.Size < 0 || l.Count < 0 {
				return nil, fmt.Errorf("%w: account %d: language %q has negative size or count", ErrInvalidSnapshot, i, l.Name)
			}

			pos, ok := index[l.Name]
			if !ok {
				index[l.Name] = len(merged)
				merged = append(merged, LanguageAggregate{LanguageUsage: l})
				continue
			}

			existing := &merged[pos]
			existing.Size += l.Size
			existing.Count += l.Count
			if existing.Color == "" {
				existing.Color = l.Color
			}
		}
	}

	return merged, nil
}
