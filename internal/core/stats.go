package core

import "errors"

var (
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrInvalidMetric   = errors.New("invalid metric")
	ErrInvalidWeight   = errors.New("invalid weight")
)

// Snapshot holds one account's raw counters as returned by a provider.
// A zero counter means the account has no activity of that kind.
type Snapshot struct {
	Name string
	Rank string

	Commits             int
	AllCommits          int
	PRs                 int
	PRsMerged           int
	Reviews             int
	Issues              int
	Stars               int
	Followers           int
	Repositories        int
	ContributedTo       int
	DiscussionsStarted  int
	DiscussionsAnswered int
}

// Aggregate is the merge of every configured account's snapshot.
type Aggregate struct {
	Snapshot
	Accounts int
	Result   RankResult
}

type Level string

const (
	LevelSPlus Level = "S+"
	LevelS     Level = "S"
	LevelAPlus Level = "A+"
	LevelA     Level = "A"
	LevelBPlus Level = "B+"
	LevelB     Level = "B"
	LevelCPlus Level = "C+"
	LevelC     Level = "C"
)

// RankResult grades an aggregate. Score is lower-is-better ("top X");
// Percentile is the share of the reference population at or below the user.
type RankResult struct {
	Level      Level
	Percentile float64
	Score      float64
}

type LanguageUsage struct {
	Name  string
	Color string
	Size  int64
	Count int64
}

type LanguageAggregate struct {
	LanguageUsage
	Score float64
}
