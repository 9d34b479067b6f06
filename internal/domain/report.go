package domain

import (
	"fmt"
	"time"
)

// Inputs bundles the three decoded tables.
type Inputs struct {
	Geo    []RegionGeo
	Counts []RegionCounts
	States []StateLookup
}

// ReportOptions tunes the parts of the report that are not fixed by the data.
type ReportOptions struct {
	// OutlierCeiling bounds the filtered Total view (Total < OutlierCeiling).
	OutlierCeiling int
	Drop           DropPolicy
}

// StageCounts records row counts after each stage.
type StageCounts struct {
	GeoRows       int `json:"geo_rows"`
	GeoMissingLat int `json:"geo_missing_lat"`
	GeoMissingLon int `json:"geo_missing_lon"`
	GeoKept       int `json:"geo_kept"`
	CountRows     int `json:"count_rows"`
	StateRows     int `json:"state_rows"`
	JoinedRows    int `json:"joined_rows"`
	States        int `json:"states"`
}

// Report is the complete output of one run, ready for rendering.
type Report struct {
	GeneratedAt time.Time
	Stages      StageCounts
	Summary     []ColumnSummary

	// Totals is the Total column of every derived row; FilteredTotals keeps
	// only values below the outlier ceiling.
	Totals         []float64
	FilteredTotals []float64

	TotalRanking    []StateSum
	VeteransRanking []StateSum
	YouthRanking    []StateSum

	// Rankings is the merged ranking after the drop policy, indexed from 0.
	Rankings []StateRanking
}

// BuildReport runs clean, derive, describe, join, rank, and merge over the
// decoded inputs. It is pure apart from stamping GeneratedAt.
func BuildReport(in Inputs, opts ReportOptions) (Report, error) {
	geo, cleanStats := CleanGeo(in.Geo)
	derived := DeriveCounts(in.Counts)

	joined, err := AssignStateCodes(Join(derived, geo))
	if err != nil {
		return Report{}, fmt.Errorf("derive state codes: %w", err)
	}

	total, err := RankByState(joined, CategoryTotal)
	if err != nil {
		return Report{}, err
	}
	veterans, err := RankByState(joined, CategoryVeterans)
	if err != nil {
		return Report{}, err
	}
	youth, err := RankByState(joined, CategoryYouth)
	if err != nil {
		return Report{}, err
	}

	merged := MergeRankings(total, veterans, youth)
	rankings := AttachStateNames(opts.Drop.Apply(merged), in.States)

	totals := make([]float64, len(derived))
	for i, d := range derived {
		totals[i] = float64(d.Total)
	}
	filtered := FilterTotalBelow(derived, opts.OutlierCeiling)
	filteredTotals := make([]float64, len(filtered))
	for i, d := range filtered {
		filteredTotals[i] = float64(d.Total)
	}

	return Report{
		GeneratedAt: clock.Now().UTC(),
		Stages: StageCounts{
			GeoRows:       len(in.Geo),
			GeoMissingLat: cleanStats.MissingLat,
			GeoMissingLon: cleanStats.MissingLon,
			GeoKept:       len(geo),
			CountRows:     len(in.Counts),
			StateRows:     len(in.States),
			JoinedRows:    len(joined),
			States:        len(merged),
		},
		Summary:         Describe(derived),
		Totals:          totals,
		FilteredTotals:  filteredTotals,
		TotalRanking:    total,
		VeteransRanking: veterans,
		YouthRanking:    youth,
		Rankings:        rankings,
	}, nil
}
