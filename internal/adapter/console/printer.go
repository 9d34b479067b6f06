package console

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
)

// Printer writes the text sections of a report.
// It implements pipeline.Printer.
type Printer struct {
	w    io.Writer
	topN int
}

// NewPrinter creates a Printer showing topN rows per ranking.
func NewPrinter(w io.Writer, topN int) *Printer {
	return &Printer{w: w, topN: topN}
}

// Print writes the descriptive statistics followed by the three rankings.
func (p *Printer) Print(r domain.Report) error {
	ew := &errWriter{w: p.w}

	p.printSummary(ew, r.Summary)

	fmt.Fprintf(ew, "\nBelow are top %d states with high homeless counts:\n", p.topN)
	p.printSums(ew, "Total", domain.Top(r.TotalRanking, p.topN))

	fmt.Fprintf(ew, "\nBelow are top %d states with high homeless Veteran counts:\n", p.topN)
	p.printSums(ew, "Veterans", domain.Top(r.VeteransRanking, p.topN))

	fmt.Fprintf(ew, "\nBelow are top %d states with high homeless counts:\n", p.topN)
	p.printRankings(ew, domain.Top(r.Rankings, p.topN))

	return ew.err
}

func (p *Printer) printSummary(w io.Writer, summary []domain.ColumnSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, s := range summary {
		s = s.Round(3)
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			s.Column, s.Count,
			num(s.Mean), num(s.Std), num(s.Min),
			num(s.P25), num(s.P50), num(s.P75), num(s.Max),
		)
	}
	_ = tw.Flush()
}

func (p *Printer) printSums(w io.Writer, label string, sums []domain.StateSum) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "State\t%s\t\n", label)
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%d\t\n", s.StateCode, s.Sum)
	}
	_ = tw.Flush()
}

func (p *Printer) printRankings(w io.Writer, rows []domain.StateRanking) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tState\tName\tTotal\tVeterans\tYouth\t")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t\n", i, r.StateCode, r.StateName, r.Total, r.Veterans, r.Youth)
	}
	_ = tw.Flush()
}

// num formats a statistic with at most three decimals.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(b)
	e.err = err
	return n, err
}
