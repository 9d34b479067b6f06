// Command genmock writes a synthetic, reproducible set of the three report
// input files (geocodes, Point-in-Time counts, and state names). The output
// has the same headerless column layout as the published CoC files, so it can
// be fed to the report or the validator without access to the real data.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -regions-per-state 6 -seed 2016
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
)

// mockState is one state in the generated lookup, with the rough centre of
// its territory used to scatter region coordinates.
type mockState struct {
	code string
	name string
	lat  float64
	lon  float64
}

var states = []mockState{
	{code: "AK", name: "Alaska", lat: 61.2, lon: -149.9},
	{code: "AL", name: "Alabama", lat: 32.8, lon: -86.8},
	{code: "AZ", name: "Arizona", lat: 33.7, lon: -111.9},
	{code: "CA", name: "California", lat: 36.8, lon: -119.4},
	{code: "CO", name: "Colorado", lat: 39.1, lon: -105.4},
	{code: "FL", name: "Florida", lat: 28.1, lon: -81.6},
	{code: "GA", name: "Georgia", lat: 33.0, lon: -83.6},
	{code: "IL", name: "Illinois", lat: 40.3, lon: -89.0},
	{code: "MA", name: "Massachusetts", lat: 42.3, lon: -71.8},
	{code: "NY", name: "New York", lat: 42.2, lon: -74.9},
	{code: "OR", name: "Oregon", lat: 44.0, lon: -120.5},
	{code: "TX", name: "Texas", lat: 31.1, lon: -97.6},
	{code: "WA", name: "Washington", lat: 47.4, lon: -121.5},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "directory to write the generated CSV files into")
	perState := flag.Int("regions-per-state", 5, "number of CoC regions generated per state")
	seed := flag.Uint64("seed", 2016, "random seed; the same seed always yields the same files")
	missing := flag.Int("missing-coords", 2, "number of geocode rows written with a missing coordinate")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *perState <= 0 {
		return fmt.Errorf("-regions-per-state must be positive, got %d", *perState)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x5eed)) //nolint:gosec // reproducible fixtures, not security

	geo, counts := generate(rng, *perState, *missing)

	if err := writeCSV(filepath.Join(*outDir, "COCNumWithGeoCodes.csv"), geoRows(geo)); err != nil {
		return fmt.Errorf("writing geocodes: %w", err)
	}
	if err := writeCSV(filepath.Join(*outDir, "HomelessData2016.csv"), countRows(counts)); err != nil {
		return fmt.Errorf("writing counts: %w", err)
	}
	if err := writeCSV(filepath.Join(*outDir, "StateNames.csv"), stateRows()); err != nil {
		return fmt.Errorf("writing state names: %w", err)
	}
	log.Printf("wrote %d geocode rows, %d count rows, %d states to %s", len(geo), len(counts), len(states), *outDir)

	printStats(counts)
	return nil
}

// generate builds matching geocode and count rows. The first `missing` geocode
// rows alternate between a missing latitude and a missing longitude.
func generate(rng *rand.Rand, perState, missing int) ([]domain.RegionGeo, []domain.RegionCounts) {
	geo := make([]domain.RegionGeo, 0, len(states)*perState)
	counts := make([]domain.RegionCounts, 0, len(states)*perState)

	for _, s := range states {
		for i := range perState {
			id := fmt.Sprintf("%s-%d", s.code, 500+i)

			lat := s.lat + (rng.Float64()-0.5)*2
			lon := s.lon + (rng.Float64()-0.5)*2
			g := domain.RegionGeo{RegionID: id, Lat: &lat, Lon: &lon}
			if n := len(geo); n < missing {
				if n%2 == 0 {
					g.Lat = nil
				} else {
					g.Lon = nil
				}
			}
			geo = append(geo, g)
			counts = append(counts, mockCounts(rng, id))
		}
	}
	return geo, counts
}

// mockCounts draws a plausible region with a long-tailed population: most
// regions are small and a few are metropolitan outliers.
func mockCounts(rng *rand.Rand, id string) domain.RegionCounts {
	scale := 50 + rng.IntN(1500)
	if rng.IntN(20) == 0 {
		scale *= 15
	}
	part := func(frac float64) int { return int(float64(scale) * frac * (0.5 + rng.Float64())) }

	c := domain.RegionCounts{
		RegionID:                  id,
		ShelteredIndv:             part(0.35),
		UnshelteredIndv:           part(0.25),
		ShelteredPeopleFamilies:   part(0.25),
		UnshelteredPeopleFamilies: part(0.05),
		ShelteredVeterans:         part(0.06),
		UnshelteredVeterans:       part(0.03),
		ShelteredYouth:            part(0.04),
		UnshelteredYouth:          part(0.03),
	}
	c.Indv = c.ShelteredIndv + c.UnshelteredIndv
	c.PeopleFamilies = c.ShelteredPeopleFamilies + c.UnshelteredPeopleFamilies
	return c
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// geoRows, countRows, and stateRows lay fields out in the order of
// domain.GeoColumns, domain.CountColumns, and domain.StateColumns.
func geoRows(geo []domain.RegionGeo) [][]string {
	rows := make([][]string, 0, len(geo))
	for _, g := range geo {
		rows = append(rows, []string{g.RegionID, formatCoord(g.Lon), formatCoord(g.Lat)})
	}
	return rows
}

func countRows(counts []domain.RegionCounts) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{
			c.RegionID,
			strconv.Itoa(c.Indv),
			strconv.Itoa(c.ShelteredIndv),
			strconv.Itoa(c.UnshelteredIndv),
			strconv.Itoa(c.PeopleFamilies),
			strconv.Itoa(c.ShelteredPeopleFamilies),
			strconv.Itoa(c.UnshelteredPeopleFamilies),
			strconv.Itoa(c.ShelteredVeterans),
			strconv.Itoa(c.UnshelteredVeterans),
			strconv.Itoa(c.ShelteredYouth),
			strconv.Itoa(c.UnshelteredYouth),
		})
	}
	return rows
}

func stateRows() [][]string {
	rows := make([][]string, 0, len(states))
	for _, s := range states {
		rows = append(rows, []string{s.name, s.code})
	}
	return rows
}

// writeCSV writes rows without a header line; the report reads its inputs
// positionally.
func writeCSV(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// printStats prints the per-state totals the report should reproduce, which
// is handy when updating test assertions against a regenerated data set.
func printStats(counts []domain.RegionCounts) {
	derived := domain.DeriveCounts(counts)

	byState := map[string]int{}
	var grand int
	for _, d := range derived {
		code, err := domain.StateCode(d.RegionID)
		if err != nil {
			continue
		}
		byState[code] += d.Total
		grand += d.Total
	}

	type stateTotal struct {
		code  string
		total int
	}
	totals := make([]stateTotal, 0, len(byState))
	for code, total := range byState {
		totals = append(totals, stateTotal{code, total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].total != totals[j].total {
			return totals[i].total > totals[j].total
		}
		return totals[i].code < totals[j].code
	})

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Regions: %d\n", len(derived))
	fmt.Printf("Grand total: %d\n", grand)
	fmt.Printf("States by total (before geocode cleaning):")
	for _, s := range totals {
		fmt.Printf(" %s=%d", s.code, s.total)
	}
	fmt.Println()
}
