package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
)

// LoadTable reads a headerless comma-delimited file positionally into the
// given columns. Every row must have exactly len(columns) fields.
func LoadTable(ctx context.Context, path string, columns []string) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, &domain.LoadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Table{}, &domain.LoadError{Path: path, Err: err}
	}
	defer f.Close()

	rows, err := readRows(f, len(columns))
	if err != nil {
		return domain.Table{}, &domain.LoadError{Path: path, Err: err}
	}

	return domain.Table{Source: path, Columns: columns, Rows: rows}, nil
}

func readRows(r io.Reader, width int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) != width {
			line, _ := cr.FieldPos(0)
			return nil, &domain.SchemaMismatchError{Line: line, Expected: width, Got: len(rec)}
		}
		rows = append(rows, rec)
	}
}

// Source loads and decodes the three report inputs from a directory.
// It implements pipeline.Source.
type Source struct {
	GeoPath    string
	CountsPath string
	StatesPath string
	logger     *slog.Logger
}

// NewSource resolves the three file names against dir.
func NewSource(dir, geoFile, countsFile, statesFile string, logger *slog.Logger) *Source {
	return &Source{
		GeoPath:    filepath.Join(dir, geoFile),
		CountsPath: filepath.Join(dir, countsFile),
		StatesPath: filepath.Join(dir, statesFile),
		logger:     logger,
	}
}

// Load reads every input. The first failure aborts the load.
func (s *Source) Load(ctx context.Context) (domain.Inputs, error) {
	geoTbl, err := LoadTable(ctx, s.GeoPath, domain.GeoColumns)
	if err != nil {
		return domain.Inputs{}, err
	}
	geo, err := domain.DecodeGeo(geoTbl)
	if err != nil {
		return domain.Inputs{}, err
	}

	countsTbl, err := LoadTable(ctx, s.CountsPath, domain.CountColumns)
	if err != nil {
		return domain.Inputs{}, err
	}
	counts, err := domain.DecodeCounts(countsTbl)
	if err != nil {
		return domain.Inputs{}, err
	}

	statesTbl, err := LoadTable(ctx, s.StatesPath, domain.StateColumns)
	if err != nil {
		return domain.Inputs{}, err
	}
	states, err := domain.DecodeStates(statesTbl)
	if err != nil {
		return domain.Inputs{}, err
	}

	s.logger.Info("inputs loaded",
		"geo_rows", len(geo),
		"count_rows", len(counts),
		"state_rows", len(states),
	)
	return domain.Inputs{Geo: geo, Counts: counts, States: states}, nil
}
