package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrNoData is returned for a chart whose series is empty.
var ErrNoData = errors.New("chart has no values")

// Box plots share a 3x3 panel grid; the series occupies the top-left tile.
const (
	boxRows = 3
	boxCols = 3
)

// Renderer writes charts as PNG files into a directory.
// It implements pipeline.Renderer.
type Renderer struct {
	dir    string
	width  vg.Length
	height vg.Length
	logger *slog.Logger
}

// NewRenderer creates a renderer writing into dir, which is created on demand.
func NewRenderer(dir string, logger *slog.Logger) *Renderer {
	return &Renderer{
		dir:    dir,
		width:  8 * vg.Inch,
		height: 6 * vg.Inch,
		logger: logger,
	}
}

// Render draws c and returns the written file path.
func (r *Renderer) Render(ctx context.Context, c domain.Chart) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(c.Values) == 0 {
		return "", fmt.Errorf("render %s: %w", c.Name, ErrNoData)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}

	path := filepath.Join(r.dir, c.Name+".png")
	var err error
	switch c.Kind {
	case domain.ChartBox:
		err = r.renderBox(path, c)
	case domain.ChartHistogram:
		err = r.renderHistogram(path, c)
	default:
		err = fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", c.Name, err)
	}

	r.logger.Debug("chart written", "chart", c.Name, "path", path, "points", len(c.Values))
	return path, nil
}

func (r *Renderer) renderBox(path string, c domain.Chart) error {
	p := newPlot(c)
	box, err := plotter.NewBoxPlot(vg.Points(20), 0, plotter.Values(c.Values))
	if err != nil {
		return fmt.Errorf("box plot: %w", err)
	}
	p.Add(box)
	p.NominalX(c.Series)

	img := vgimg.New(r.width, r.height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: boxRows,
		Cols: boxCols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	p.Draw(tiles.At(dc, 0, 0))

	return writePNG(path, img)
}

func (r *Renderer) renderHistogram(path string, c domain.Chart) error {
	p := newPlot(c)
	bins := c.Bins
	if bins <= 0 {
		bins = 10
	}
	h, err := plotter.NewHist(plotter.Values(c.Values), bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)
	p.Add(plotter.NewGrid())

	return p.Save(r.width, r.height, path)
}

func newPlot(c domain.Chart) *plot.Plot {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	return p
}

func writePNG(path string, img *vgimg.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
