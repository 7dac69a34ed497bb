package core

import (
	"fmt"
	"math"
)

type Signal int

const (
	SignalCommits Signal = iota
	SignalPRs
	SignalReviews
	SignalIssues
	SignalStars
	SignalFollowers
	SignalRepositories
	signalCount
)

var signalNames = [signalCount]string{
	"commits", "prs", "reviews", "issues", "stars", "followers", "repositories",
}

func (s Signal) String() string {
	if s < 0 || s >= signalCount {
		return fmt.Sprintf("signal(%d)", int(s))
	}
	return signalNames[s]
}

type CurveKind int

const (
	CurveExponential CurveKind = iota
	CurveLogNormal
)

// Curve estimates the share of the reference population below x.
type Curve struct {
	Kind   CurveKind
	Median float64
	Weight float64
}

func (c Curve) CDF(x float64) float64 {
	v := x / c.Median
	switch c.Kind {
	case CurveLogNormal:
		return v / (1 + v)
	default:
		return 1 - math.Pow(2, -v)
	}
}

// Curves weights sum to 1.
var Curves = [signalCount]Curve{
	SignalCommits:      {Kind: CurveExponential, Median: 250, Weight: 0.25},
	SignalPRs:          {Kind: CurveExponential, Median: 50, Weight: 0.25},
	SignalReviews:      {Kind: CurveExponential, Median: 2, Weight: 0.15},
	SignalIssues:       {Kind: CurveExponential, Median: 25, Weight: 0.125},
	SignalStars:        {Kind: CurveLogNormal, Median: 50, Weight: 0.125},
	SignalFollowers:    {Kind: CurveLogNormal, Median: 10, Weight: 0.05},
	SignalRepositories: {Kind: CurveLogNormal, Median: 20, Weight: 0.05},
}

type Threshold struct {
	MaxTop float64
	Level  Level
}

// Thresholds are checked in order against Score*100; anything above the
// last one is LevelC.
var Thresholds = []Threshold{
	{1, LevelSPlus},
	{12.5, LevelS},
	{25, LevelAPlus},
	{37.5, LevelA},
	{50, LevelBPlus},
	{62.5, LevelB},
	{75, LevelCPlus},
}

type Signals [signalCount]float64

func SignalsFrom(s Snapshot, includeAllCommits bool) Signals {
	commits := s.Commits
	if includeAllCommits {
		commits = s.AllCommits
	}

	return Signals{
		SignalCommits:      float64(commits),
		SignalPRs:          float64(s.PRs),
		SignalReviews:      float64(s.Reviews),
		SignalIssues:       float64(s.Issues),
		SignalStars:        float64(s.Stars),
		SignalFollowers:    float64(s.Followers),
		SignalRepositories: float64(s.Repositories),
	}
}

func CalculateRank(sig Signals) (RankResult, error) {
	var weighted float64
	for i, v := range sig {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return RankResult{}, fmt.Errorf("%w: %s = %v", ErrInvalidMetric, Signal(i), v)
		}
		c := Curves[i]
		weighted += c.Weight * c.CDF(v)
	}

	score := Clamp(1-weighted, 0, 1)

	return RankResult{
		Level:      LevelFor(score),
		Percentile: 1 - score,
		Score:      score,
	}, nil
}

func LevelFor(score float64) Level {
	top := score * 100
	for _, t := range Thresholds {
		if top <= t.MaxTop {
			return t.Level
		}
	}
	return LevelC
}

// ScoreActivity attaches a freshly computed rank to agg, replacing any
// rank label carried over from the providers.
func ScoreActivity(agg Aggregate, includeAllCommits bool) (Aggregate, error) {
	res, err := CalculateRank(SignalsFrom(agg.Snapshot, includeAllCommits))
	if err != nil {
		return Aggregate{}, err
	}

	agg.Result = res
	agg.Rank = string(res.Level)
	return agg, nil
}
