package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// RankByState sums category per state code and sorts the sums descending.
// Ties are broken by ascending state code.
func RankByState(records []JoinedRecord, category Category) ([]StateSum, error) {
	sums := make(map[string]int)
	for _, r := range records {
		v, ok := category.valueOf(r.DerivedCounts)
		if !ok {
			return nil, fmt.Errorf("rank by state: unknown category %q", category)
		}
		sums[r.StateCode] += v
	}

	out := make([]StateSum, 0, len(sums))
	for code, sum := range sums {
		out = append(out, StateSum{StateCode: code, Sum: sum})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sum != out[j].Sum {
			return out[i].Sum > out[j].Sum
		}
		return out[i].StateCode < out[j].StateCode
	})
	return out, nil
}

// MergeRankings inner-joins three single-category rankings on state code.
// Rows follow the order of the total ranking; a state missing from either
// other ranking is dropped.
func MergeRankings(total, veterans, youth []StateSum) []StateRanking {
	vet := indexSums(veterans)
	yth := indexSums(youth)

	out := make([]StateRanking, 0, len(total))
	for _, t := range total {
		v, ok := vet[t.StateCode]
		if !ok {
			continue
		}
		y, ok := yth[t.StateCode]
		if !ok {
			continue
		}
		out = append(out, StateRanking{
			StateCode: t.StateCode,
			Total:     t.Sum,
			Veterans:  v,
			Youth:     y,
		})
	}
	return out
}

func indexSums(sums []StateSum) map[string]int {
	m := make(map[string]int, len(sums))
	for _, s := range sums {
		m[s.StateCode] = s.Sum
	}
	return m
}

// AttachStateNames returns a copy of rankings with StateName filled from the
// lookup. Codes absent from the lookup keep an empty name; no row is dropped.
func AttachStateNames(rankings []StateRanking, lookup []StateLookup) []StateRanking {
	names := make(map[string]string, len(lookup))
	for _, l := range lookup {
		if _, seen := names[l.StateCode]; !seen {
			names[l.StateCode] = l.StateName
		}
	}

	out := make([]StateRanking, len(rankings))
	for i, r := range rankings {
		r.StateName = names[r.StateCode]
		out[i] = r
	}
	return out
}

// DropMode selects which merged-ranking row is removed before display.
type DropMode string

const (
	DropFirst DropMode = "first"
	DropNone  DropMode = "none"
	DropState DropMode = "state"
)

// DropPolicy removes a placeholder row from the merged ranking.
type DropPolicy struct {
	Mode      DropMode
	StateCode string
}

// ParseDropPolicy accepts "first", "none", or "state:<code>".
func ParseDropPolicy(s string) (DropPolicy, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == string(DropFirst):
		return DropPolicy{Mode: DropFirst}, nil
	case s == string(DropNone):
		return DropPolicy{Mode: DropNone}, nil
	case strings.HasPrefix(s, string(DropState)+":"):
		code := strings.TrimPrefix(s, string(DropState)+":")
		if code == "" {
			return DropPolicy{}, errors.New("drop policy state code is empty")
		}
		return DropPolicy{Mode: DropState, StateCode: code}, nil
	default:
		return DropPolicy{}, fmt.Errorf("unknown drop policy %q", s)
	}
}

func (p DropPolicy) String() string {
	if p.Mode == DropState {
		return string(DropState) + ":" + p.StateCode
	}
	return string(p.Mode)
}

// Apply returns a new, zero-indexed slice with the policy's row removed.
func (p DropPolicy) Apply(rankings []StateRanking) []StateRanking {
	out := make([]StateRanking, 0, len(rankings))
	switch p.Mode {
	case DropFirst:
		if len(rankings) > 0 {
			out = append(out, rankings[1:]...)
		}
	case DropState:
		for _, r := range rankings {
			if r.StateCode != p.StateCode {
				out = append(out, r)
			}
		}
	default:
		out = append(out, rankings...)
	}
	return out
}

// Top returns at most n leading rows.
func Top[T any](rows []T, n int) []T {
	if n < 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// RankingValues extracts one category column from the merged ranking.
func RankingValues(rankings []StateRanking, category Category) []float64 {
	out := make([]float64, len(rankings))
	for i, r := range rankings {
		switch category {
		case CategoryTotal:
			out[i] = float64(r.Total)
		case CategoryVeterans:
			out[i] = float64(r.Veterans)
		case CategoryYouth:
			out[i] = float64(r.Youth)
		}
	}
	return out
}
