package csvfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.csv", "AL-500,-86.8,33.5\nAL-501,,\n")

	tbl, err := LoadTable(context.Background(), path, domain.GeoColumns)

	require.NoError(t, err)
	assert.Equal(t, path, tbl.Source)
	assert.Equal(t, domain.GeoColumns, tbl.Columns)
	assert.Equal(t, [][]string{{"AL-500", "-86.8", "33.5"}, {"AL-501", "", ""}}, tbl.Rows)
}

func TestLoadTable_FirstLineIsData(t *testing.T) {
	path := writeFile(t, t.TempDir(), "states.csv", "StateName,State\nAlabama,AL\n")

	tbl, err := LoadTable(context.Background(), path, domain.StateColumns)

	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"StateName", "State"}, tbl.Rows[0])
}

func TestLoadTable_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")

	_, err := LoadTable(context.Background(), path, domain.GeoColumns)

	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadTable_SchemaMismatch(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.csv", "AL-500,-86.8,33.5\nAL-501,-88.0\n")

	_, err := LoadTable(context.Background(), path, domain.GeoColumns)

	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	var sme *domain.SchemaMismatchError
	require.ErrorAs(t, err, &sme)
	assert.Equal(t, 2, sme.Line)
	assert.Equal(t, 3, sme.Expected)
	assert.Equal(t, 2, sme.Got)
}

func TestLoadTable_CancelledContext(t *testing.T) {
	path := writeFile(t, t.TempDir(), "geo.csv", "AL-500,-86.8,33.5\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadTable(ctx, path, domain.GeoColumns)

	require.ErrorIs(t, err, context.Canceled)
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "geo.csv", "4001,-75.0,40.0\n4002,NA,41.0\n")
	writeFile(t, dir, "counts.csv", "4001,10,4,3,6,2,2,1,0,1,0\n")
	writeFile(t, dir, "states.csv", "Pennsylvania,40\n")

	in, err := NewSource(dir, "geo.csv", "counts.csv", "states.csv", discardLogger()).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, in.Geo, 2)
	assert.Nil(t, in.Geo[1].Lon)
	require.Len(t, in.Counts, 1)
	assert.Equal(t, 4, in.Counts[0].ShelteredIndv)
	assert.Equal(t, []domain.StateLookup{{StateName: "Pennsylvania", StateCode: "40"}}, in.States)
}

func TestSource_Load_FailsOnFirstBadInput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "geo.csv", "4001,-75.0,40.0\n")
	writeFile(t, dir, "counts.csv", "4001,10,4\n")

	_, err := NewSource(dir, "geo.csv", "counts.csv", "states.csv", discardLogger()).Load(context.Background())

	var le *domain.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, filepath.Join(dir, "counts.csv"), le.Path)
}
