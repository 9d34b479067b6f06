package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	"github.com/couchcryptid/homeless-data-etl/internal/observability"
)

// Source loads and decodes the three input tables.
type Source interface {
	Load(ctx context.Context) (domain.Inputs, error)
}

// Printer writes the text sections of a finished report.
type Printer interface {
	Print(r domain.Report) error
}

// Renderer draws one chart and returns where it was written.
type Renderer interface {
	Render(ctx context.Context, c domain.Chart) (string, error)
}

// Exporter persists a finished report and returns where it was written.
type Exporter interface {
	Export(ctx context.Context, r domain.Report) (string, error)
}

// Publisher forwards a finished report to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, runID string, r domain.Report) error
}

// Options configures the computation stages.
type Options struct {
	Report        domain.ReportOptions
	HistogramBins int
}

// Pipeline runs one load-build-report pass. Renderer, Exporter, and Publisher
// are optional; a nil sink is skipped.
type Pipeline struct {
	source    Source
	printer   Printer
	renderer  Renderer
	exporter  Exporter
	publisher Publisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline with the required stages and observability.
func New(src Source, printer Printer, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  src,
		printer: printer,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// WithRenderer enables chart rendering.
func (p *Pipeline) WithRenderer(r Renderer) *Pipeline { p.renderer = r; return p }

// WithExporter enables workbook export.
func (p *Pipeline) WithExporter(e Exporter) *Pipeline { p.exporter = e; return p }

// WithPublisher enables publication of the merged ranking.
func (p *Pipeline) WithPublisher(pub Publisher) *Pipeline { p.publisher = pub; return p }

// Run executes the report once. Load and build complete before any output is
// produced, so an input or computation failure leaves no partial report. Sinks
// run in order print, render, export, publish; a sink failure stops the later
// sinks but output already written by earlier ones stays.
func (p *Pipeline) Run(ctx context.Context, runID string) (domain.Report, error) {
	p.logger.Info("report run started", "run_id", runID, "drop_policy", p.opts.Report.Drop.String())
	p.metrics.RunSucceeded.Set(0)

	var in domain.Inputs
	err := p.stage("load", func() error {
		var err error
		in, err = p.source.Load(ctx)
		return err
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("load inputs: %w", err)
	}
	p.metrics.RowsLoaded.WithLabelValues("geo").Add(float64(len(in.Geo)))
	p.metrics.RowsLoaded.WithLabelValues("counts").Add(float64(len(in.Counts)))
	p.metrics.RowsLoaded.WithLabelValues("states").Add(float64(len(in.States)))

	var report domain.Report
	err = p.stage("build", func() error {
		var err error
		report, err = domain.BuildReport(in, p.opts.Report)
		return err
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("build report: %w", err)
	}
	p.recordStages(report.Stages)

	if err := p.stage("print", func() error { return p.printer.Print(report) }); err != nil {
		return report, fmt.Errorf("print report: %w", err)
	}

	if p.renderer != nil {
		if err := p.stage("render", func() error { return p.renderCharts(ctx, report) }); err != nil {
			return report, err
		}
	}

	if p.exporter != nil {
		err := p.stage("export", func() error {
			path, err := p.exporter.Export(ctx, report)
			if err == nil {
				p.logger.Info("workbook exported", "path", path)
			}
			return err
		})
		if err != nil {
			return report, fmt.Errorf("export report: %w", err)
		}
	}

	if p.publisher != nil {
		if err := p.stage("publish", func() error { return p.publisher.Publish(ctx, runID, report) }); err != nil {
			return report, err
		}
	}

	p.metrics.RunSucceeded.Set(1)
	p.metrics.LastSuccessSeconds.Set(float64(report.GeneratedAt.Unix()))
	p.logger.Info("report run complete", "run_id", runID, "states", len(report.Rankings))
	return report, nil
}

// renderCharts draws every report chart. Empty series are skipped with a
// warning; any other failure aborts the run.
func (p *Pipeline) renderCharts(ctx context.Context, r domain.Report) error {
	for _, c := range domain.ReportCharts(r, p.opts.HistogramBins) {
		if len(c.Values) == 0 {
			p.logger.Warn("chart skipped, no values", "chart", c.Name)
			p.metrics.ChartsRendered.WithLabelValues("skipped").Inc()
			continue
		}
		path, err := p.renderer.Render(ctx, c)
		if err != nil {
			p.metrics.ChartsRendered.WithLabelValues("error").Inc()
			return fmt.Errorf("render %s: %w", c.Name, err)
		}
		p.metrics.ChartsRendered.WithLabelValues("success").Inc()
		p.logger.Info("chart rendered", "chart", c.Name, "path", path)
	}
	return nil
}

func (p *Pipeline) recordStages(s domain.StageCounts) {
	p.metrics.RowsDropped.WithLabelValues("missing_lat").Add(float64(s.GeoMissingLat))
	p.metrics.RowsDropped.WithLabelValues("missing_lon").Add(float64(s.GeoMissingLon))
	p.metrics.RowsJoined.Set(float64(s.JoinedRows))
	p.metrics.StatesRanked.Set(float64(s.States))

	p.logger.Info("geocodes cleaned",
		"rows", s.GeoRows,
		"missing_lat", s.GeoMissingLat,
		"missing_lon", s.GeoMissingLon,
		"kept", s.GeoKept,
	)
	p.logger.Info("counts joined", "count_rows", s.CountRows, "joined", s.JoinedRows, "states", s.States)
}

// stage times fn under the given stage label and logs failures.
func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("stage failed", "stage", name, "error", err, "fatal", isFatalInput(err))
	}
	return err
}

// isFatalInput reports whether err stems from malformed input rather than a sink.
func isFatalInput(err error) bool {
	var le *domain.LoadError
	var mke *domain.MalformedKeyError
	return errors.As(err, &le) || errors.As(err, &mke)
}
