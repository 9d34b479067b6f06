package domain

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds descriptive statistics for one numeric column.
// Std is the sample standard deviation; quartiles interpolate linearly
// between order statistics.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// Round returns a copy with every statistic rounded to places decimals.
func (s ColumnSummary) Round(places int) ColumnSummary {
	p := math.Pow10(places)
	r := func(v float64) float64 { return math.Round(v*p) / p }
	s.Mean, s.Std = r(s.Mean), r(s.Std)
	s.Min, s.Max = r(s.Min), r(s.Max)
	s.P25, s.P50, s.P75 = r(s.P25), r(s.P50), r(s.P75)
	return s
}

// Column pairs a column name with its extracted values.
type Column struct {
	Name   string
	Values []float64
}

// NumericColumns returns every numeric column of the derived table in
// display order: the ten raw counts, then the five derived columns.
func NumericColumns(rows []DerivedCounts) []Column {
	names := append(slices.Clone(CountColumns[1:]), "Sheltered", "Unsheltered", "Total", "Veterans", "Youth")
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n, Values: make([]float64, len(rows))}
	}
	for r, d := range rows {
		vals := [...]int{
			d.Indv, d.ShelteredIndv, d.UnshelteredIndv, d.PeopleFamilies,
			d.ShelteredPeopleFamilies, d.UnshelteredPeopleFamilies,
			d.ShelteredVeterans, d.UnshelteredVeterans, d.ShelteredYouth, d.UnshelteredYouth,
			d.Sheltered, d.Unsheltered, d.Total, d.Veterans, d.Youth,
		}
		for i, v := range vals {
			cols[i].Values[r] = float64(v)
		}
	}
	return cols
}

// Describe summarizes every numeric column of the derived table.
func Describe(rows []DerivedCounts) []ColumnSummary {
	cols := NumericColumns(rows)
	out := make([]ColumnSummary, len(cols))
	for i, c := range cols {
		out[i] = Summarize(c.Name, c.Values)
	}
	return out
}

// Summarize computes descriptive statistics of values. An empty input yields
// NaN statistics; a single value has an undefined (NaN) standard deviation.
func Summarize(name string, values []float64) ColumnSummary {
	s := ColumnSummary{Column: name, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s.Mean = stat.Mean(sorted, nil)
	s.Std = math.NaN()
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.P25 = quantile(sorted, 0.25)
	s.P50 = quantile(sorted, 0.50)
	s.P75 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates linearly at rank q*(n-1) over sorted values.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
