package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/homeless-data-etl/internal/adapter/console"
	"github.com/couchcryptid/homeless-data-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	"github.com/couchcryptid/homeless-data-etl/internal/observability"
	"github.com/couchcryptid/homeless-data-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSource struct {
	in  domain.Inputs
	err error
}

func (m *mockSource) Load(context.Context) (domain.Inputs, error) { return m.in, m.err }

type mockPrinter struct {
	printed []domain.Report
	err     error
}

func (m *mockPrinter) Print(r domain.Report) error {
	m.printed = append(m.printed, r)
	return m.err
}

type mockRenderer struct {
	charts []domain.Chart
	err    error
}

func (m *mockRenderer) Render(_ context.Context, c domain.Chart) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.charts = append(m.charts, c)
	return c.Name + ".png", nil
}

type mockExporter struct{ calls int }

func (m *mockExporter) Export(context.Context, domain.Report) (string, error) {
	m.calls++
	return "report.xlsx", nil
}

type mockPublisher struct {
	runIDs []string
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, runID string, _ domain.Report) error {
	m.runIDs = append(m.runIDs, runID)
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultOptions() pipeline.Options {
	return pipeline.Options{
		Report:        domain.ReportOptions{OutlierCeiling: 20000, Drop: domain.DropPolicy{Mode: domain.DropFirst}},
		HistogramBins: 10,
	}
}

func fixtureSource() *csvfile.Source {
	return csvfile.NewSource("testdata", "COCNumWithGeoCodes.csv", "HomelessData2016.csv", "StateNames.csv", discardLogger())
}

// --- tests ---

func TestPipeline_Run_Fixture(t *testing.T) {
	var out bytes.Buffer
	metrics := observability.NewMetrics()
	rnd := &mockRenderer{}
	exp := &mockExporter{}
	pub := &mockPublisher{}

	p := pipeline.New(fixtureSource(), console.NewPrinter(&out, 10), defaultOptions(), discardLogger(), metrics).
		WithRenderer(rnd).
		WithExporter(exp).
		WithPublisher(pub)

	report, err := p.Run(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, domain.StageCounts{
		GeoRows: 12, GeoMissingLat: 1, GeoMissingLon: 1, GeoKept: 10,
		CountRows: 12, StateRows: 6, JoinedRows: 9, States: 5,
	}, report.Stages)

	assert.Equal(t, []domain.StateSum{
		{StateCode: "NY", Sum: 118295},
		{StateCode: "CA", Sum: 62490},
		{StateCode: "TX", Sum: 9406},
		{StateCode: "AK", Sum: 2432},
		{StateCode: "AL", Sum: 1400},
	}, report.TotalRanking)
	assert.Equal(t, []domain.StateSum{
		{StateCode: "CA", Sum: 4774},
		{StateCode: "TX", Sum: 1003},
		{StateCode: "NY", Sum: 534},
		{StateCode: "AK", Sum: 209},
		{StateCode: "AL", Sum: 198},
	}, report.VeteransRanking)

	want := []domain.StateRanking{
		{StateCode: "CA", StateName: "California", Total: 62490, Veterans: 4774, Youth: 4046},
		{StateCode: "TX", StateName: "Texas", Total: 9406, Veterans: 1003, Youth: 368},
		{StateCode: "AK", StateName: "Alaska", Total: 2432, Veterans: 209, Youth: 183},
		{StateCode: "AL", StateName: "Alabama", Total: 1400, Veterans: 198, Youth: 52},
	}
	assert.Empty(t, cmp.Diff(want, report.Rankings))

	assert.Len(t, report.Totals, 12)
	assert.Len(t, report.FilteredTotals, 10)

	require.Len(t, rnd.charts, 6)
	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, []string{"run-1"}, pub.runIDs)
	assert.Contains(t, out.String(), "California")

	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.RowsLoaded.WithLabelValues("geo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("missing_lat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("missing_lon")))
	assert.Equal(t, 9.0, testutil.ToFloat64(metrics.RowsJoined))
	assert.Equal(t, 6.0, testutil.ToFloat64(metrics.ChartsRendered.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunSucceeded))
}

func TestPipeline_Run_OptionalSinksDisabled(t *testing.T) {
	prn := &mockPrinter{}
	p := pipeline.New(fixtureSource(), prn, defaultOptions(), discardLogger(), observability.NewMetrics())

	_, err := p.Run(context.Background(), "run-2")

	require.NoError(t, err)
	assert.Len(t, prn.printed, 1)
}

func TestPipeline_Run_LoadErrorProducesNoOutput(t *testing.T) {
	loadErr := &domain.LoadError{Path: "HomelessData2016.csv", Err: errors.New("permission denied")}
	prn := &mockPrinter{}
	rnd := &mockRenderer{}
	pub := &mockPublisher{}
	metrics := observability.NewMetrics()

	p := pipeline.New(&mockSource{err: loadErr}, prn, defaultOptions(), discardLogger(), metrics).
		WithRenderer(rnd).
		WithPublisher(pub)

	_, err := p.Run(context.Background(), "run-3")

	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	assert.Empty(t, prn.printed)
	assert.Empty(t, rnd.charts)
	assert.Empty(t, pub.runIDs)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RunSucceeded))
}

func TestPipeline_Run_MalformedKeyProducesNoOutput(t *testing.T) {
	lat, lon := 1.0, 2.0
	src := &mockSource{in: domain.Inputs{
		Geo:    []domain.RegionGeo{{RegionID: "X", Lon: &lon, Lat: &lat}},
		Counts: []domain.RegionCounts{{RegionID: "X"}},
	}}
	prn := &mockPrinter{}

	_, err := pipeline.New(src, prn, defaultOptions(), discardLogger(), observability.NewMetrics()).Run(context.Background(), "run-4")

	var mke *domain.MalformedKeyError
	require.ErrorAs(t, err, &mke)
	assert.Empty(t, prn.printed)
}

func TestPipeline_Run_SkipsEmptyCharts(t *testing.T) {
	lat, lon := 40.0, -75.0
	src := &mockSource{in: domain.Inputs{
		Geo:    []domain.RegionGeo{{RegionID: "4001", Lon: &lon, Lat: &lat}},
		Counts: []domain.RegionCounts{{RegionID: "4001", ShelteredIndv: 30000}},
	}}
	rnd := &mockRenderer{}
	metrics := observability.NewMetrics()

	p := pipeline.New(src, &mockPrinter{}, defaultOptions(), discardLogger(), metrics).WithRenderer(rnd)
	report, err := p.Run(context.Background(), "run-5")

	require.NoError(t, err)
	assert.Empty(t, report.Rankings, "the only state is dropped as the first merged row")
	assert.Empty(t, report.FilteredTotals)
	require.Len(t, rnd.charts, 1)
	assert.Equal(t, "total_box", rnd.charts[0].Name)
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.ChartsRendered.WithLabelValues("skipped")))
}

func TestPipeline_Run_SinkErrors(t *testing.T) {
	t.Run("renderer", func(t *testing.T) {
		p := pipeline.New(fixtureSource(), &mockPrinter{}, defaultOptions(), discardLogger(), observability.NewMetrics()).
			WithRenderer(&mockRenderer{err: errors.New("disk full")})
		_, err := p.Run(context.Background(), "run-6")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("publisher", func(t *testing.T) {
		p := pipeline.New(fixtureSource(), &mockPrinter{}, defaultOptions(), discardLogger(), observability.NewMetrics()).
			WithPublisher(&mockPublisher{err: errors.New("broker unavailable")})
		_, err := p.Run(context.Background(), "run-7")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker unavailable")
	})

	t.Run("earlier output survives a later sink failure", func(t *testing.T) {
		prn := &mockPrinter{}
		exp := &mockExporter{}
		metrics := observability.NewMetrics()
		p := pipeline.New(fixtureSource(), prn, defaultOptions(), discardLogger(), metrics).
			WithRenderer(&mockRenderer{err: errors.New("disk full")}).
			WithExporter(exp)

		_, err := p.Run(context.Background(), "run-9")

		require.Error(t, err)
		assert.Len(t, prn.printed, 1, "console report is written before charts")
		assert.Zero(t, exp.calls, "export does not run after a render failure")
		assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RunSucceeded))
	})

	t.Run("printer", func(t *testing.T) {
		p := pipeline.New(fixtureSource(), &mockPrinter{err: errors.New("broken pipe")}, defaultOptions(), discardLogger(), observability.NewMetrics())
		_, err := p.Run(context.Background(), "run-8")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "print report")
	})
}
