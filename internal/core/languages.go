package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	DefaultSizeWeight  = 1.0
	DefaultCountWeight = 0.0
)

// CompositeScore is size^sizeWeight * count^countWeight, with 0^0 = 1.
// Weights large enough to overflow float64 are rejected.
func CompositeScore(size, count int64, sizeWeight, countWeight float64) (float64, error) {
	if err := checkWeight("size", sizeWeight); err != nil {
		return 0, err
	}
	if err := checkWeight("count", countWeight); err != nil {
		return 0, err
	}
	if size < 0 || count < 0 {
		return 0, fmt.Errorf("%w: negative size or count", ErrInvalidMetric)
	}

	score := math.Pow(float64(size), sizeWeight) * math.Pow(float64(count), countWeight)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: score overflows with size weight %v and count weight %v", ErrInvalidWeight, sizeWeight, countWeight)
	}
	return score, nil
}

func checkWeight(name string, w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: %s weight %v", ErrInvalidWeight, name, w)
	}
	return nil
}

// ScoreLanguages returns a copy of langs with composite scores computed
// from the summed size and count.
func ScoreLanguages(langs []LanguageAggregate, sizeWeight, countWeight float64) ([]LanguageAggregate, error) {
	scored := make([]LanguageAggregate, len(langs))
	for i, l := range langs {
		s, err := CompositeScore(l.Size, l.Count, sizeWeight, countWeight)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", l.Name, err)
		}
		l.Score = s
		scored[i] = l
	}
	return scored, nil
}

type RankedLanguages []LanguageAggregate

// BuildTable orders languages by score, highest first. Equal scores keep
// their input order.
func BuildTable(scored []LanguageAggregate) RankedLanguages {
	table := make(RankedLanguages, len(scored))
	copy(table, scored)

	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Score > table[j].Score
	})

	return table
}

func (r RankedLanguages) Top(n int) RankedLanguages {
	if n <= 0 || n >= len(r) {
		return r
	}
	return r[:n]
}

// Without drops languages whose names match any of names, ignoring case.
func (r RankedLanguages) Without(names ...string) RankedLanguages {
	if len(names) == 0 {
		return r
	}

	hidden := make(map[string]struct{}, len(names))
	for _, n := range names {
		hidden[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	out := make(RankedLanguages, 0, len(r))
	for _, l := range r {
		if _, ok := hidden[strings.ToLower(l.Name)]; ok {
			continue
		}
		out = append(out, l)
	}
	return out
}

// TotalScore is the sum of all scores, used for percentage bars.
func (r RankedLanguages) TotalScore() float64 {
	var total float64
	for _, l := range r {
		total += l.Score
	}
	return total
}
