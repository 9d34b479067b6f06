package domain

// ChartKind selects how a series is drawn.
type ChartKind string

const (
	ChartBox       ChartKind = "box"
	ChartHistogram ChartKind = "histogram"
)

// Chart is a finished series plus display parameters, handed to a renderer.
type Chart struct {
	Name   string // file stem, unique per report
	Kind   ChartKind
	Title  string
	Series string
	XLabel string
	YLabel string
	Values []float64
	Bins   int
}

// ReportCharts lists the six charts of a report in render order: the full and
// filtered Total box plots, the filtered Total histogram, and the Total,
// Veterans, and Youth histograms of the merged state ranking.
func ReportCharts(r Report, bins int) []Chart {
	return []Chart{
		{Name: "total_box", Kind: ChartBox, Series: "Total", Values: r.Totals},
		{Name: "total_box_filtered", Kind: ChartBox, Series: "Total", Values: r.FilteredTotals},
		{Name: "total_hist_filtered", Kind: ChartHistogram, Series: "Total", Values: r.FilteredTotals, Bins: bins},
		{
			Name: "state_total_hist", Kind: ChartHistogram, Series: "Total", Bins: bins,
			Title:  "Total Homeless Counts across States",
			XLabel: "Homeless Counts", YLabel: "Frequency",
			Values: RankingValues(r.Rankings, CategoryTotal),
		},
		{
			Name: "state_veterans_hist", Kind: ChartHistogram, Series: "Veterans", Bins: bins,
			Title:  "Total Veteran Homeless Counts across States",
			XLabel: "Veterans Homeless Counts", YLabel: "Frequency",
			Values: RankingValues(r.Rankings, CategoryVeterans),
		},
		{
			Name: "state_youth_hist", Kind: ChartHistogram, Series: "Youth", Bins: bins,
			Title:  "Total Youth Homeless Counts across States",
			XLabel: "Youth Homeless Counts", YLabel: "Frequency",
			Values: RankingValues(r.Rankings, CategoryYouth),
		},
	}
}
