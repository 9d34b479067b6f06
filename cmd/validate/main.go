// Command validate runs data-quality checks over the three report inputs:
// the CoC geocode table, the Point-in-Time counts, and the state name lookup.
// It decodes each file with the same loaders the report uses and then checks
// key uniqueness, key shape, coordinate ranges, count consistency, and
// cross-file coverage.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data/mock
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/couchcryptid/homeless-data-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/homeless-data-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", ".", "directory containing the input CSV files")
	geoFile := flag.String("geo", "COCNumWithGeoCodes.csv", "geocode file name")
	countsFile := flag.String("counts", "HomelessData2016.csv", "Point-in-Time counts file name")
	statesFile := flag.String("states", "StateNames.csv", "state names file name")
	flag.Parse()

	os.Exit(run(*dataDir, *geoFile, *countsFile, *statesFile))
}

func run(dataDir, geoFile, countsFile, statesFile string) int {
	ctx := context.Background()

	fmt.Println("=== CoC Input Data Validation ===")
	fmt.Println()

	geo, err := loadGeo(ctx, filepath.Join(dataDir, geoFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load geocodes: %v\n", err)
		return 1
	}
	counts, err := loadCounts(ctx, filepath.Join(dataDir, countsFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load counts: %v\n", err)
		return 1
	}
	states, err := loadStates(ctx, filepath.Join(dataDir, statesFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load state names: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateGeocodes(geo),
		validateCounts(counts),
		validateStates(states),
		validateCoverage(geo, counts, states),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d geocode, %d counts, %d states\n", len(geo), len(counts), len(states))

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for _, n := range p.notes {
			fmt.Printf("  note: %s\n", n)
		}
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadGeo(ctx context.Context, path string) ([]domain.RegionGeo, error) {
	t, err := csvfile.LoadTable(ctx, path, domain.GeoColumns)
	if err != nil {
		return nil, err
	}
	return domain.DecodeGeo(t)
}

func loadCounts(ctx context.Context, path string) ([]domain.RegionCounts, error) {
	t, err := csvfile.LoadTable(ctx, path, domain.CountColumns)
	if err != nil {
		return nil, err
	}
	return domain.DecodeCounts(t)
}

func loadStates(ctx context.Context, path string) ([]domain.StateLookup, error) {
	t, err := csvfile.LoadTable(ctx, path, domain.StateColumns)
	if err != nil {
		return nil, err
	}
	return domain.DecodeStates(t)
}

// ── Phase 1: Geocodes ──
// Duplicate keys fan out the join; short keys abort the report.

func validateGeocodes(geo []domain.RegionGeo) *phase {
	p := &phase{name: "Phase 1: Geocodes"}

	seen := map[string]int{}
	for i, g := range geo {
		line := i + 1
		if first, ok := seen[g.RegionID]; ok {
			p.errorf("line %d: duplicate region %q (first on line %d)", line, g.RegionID, first)
		} else {
			seen[g.RegionID] = line
		}
		if _, err := domain.StateCode(g.RegionID); err != nil {
			p.errorf("line %d: %v", line, err)
		}
		if g.Lat != nil && (*g.Lat < -90 || *g.Lat > 90) {
			p.errorf("line %d: region %q latitude %g out of range", line, g.RegionID, *g.Lat)
		}
		if g.Lon != nil && (*g.Lon < -180 || *g.Lon > 180) {
			p.errorf("line %d: region %q longitude %g out of range", line, g.RegionID, *g.Lon)
		}
	}

	_, stats := domain.CleanGeo(geo)
	if stats.Dropped() > 0 {
		p.notef("%d rows will be dropped by cleaning (%d missing lat, %d missing lon)",
			stats.Dropped(), stats.MissingLat, stats.MissingLon)
	}
	return p
}

// ── Phase 2: Counts ──
// Published subtotals that disagree with their parts are noted, not failed:
// the report derives every total from the sheltered/unsheltered columns.

func validateCounts(counts []domain.RegionCounts) *phase {
	p := &phase{name: "Phase 2: Point-in-Time counts"}

	seen := map[string]int{}
	for i, d := range domain.DeriveCounts(counts) {
		line := i + 1
		if first, ok := seen[d.RegionID]; ok {
			p.errorf("line %d: duplicate region %q (first on line %d)", line, d.RegionID, first)
		} else {
			seen[d.RegionID] = line
		}
		if _, err := domain.StateCode(d.RegionID); err != nil {
			p.errorf("line %d: %v", line, err)
		}
		checkNonNegative(p, line, d.RegionCounts)
		if d.Total != d.Indv+d.PeopleFamilies {
			p.notef("line %d: region %q derived Total %d differs from Indv + PeopleFamilies %d",
				line, d.RegionID, d.Total, d.Indv+d.PeopleFamilies)
		}
		if d.Indv != d.ShelteredIndv+d.UnshelteredIndv {
			p.notef("line %d: region %q Indv %d differs from sheltered+unsheltered %d",
				line, d.RegionID, d.Indv, d.ShelteredIndv+d.UnshelteredIndv)
		}
		if d.PeopleFamilies != d.ShelteredPeopleFamilies+d.UnshelteredPeopleFamilies {
			p.notef("line %d: region %q PeopleFamilies %d differs from sheltered+unsheltered %d",
				line, d.RegionID, d.PeopleFamilies, d.ShelteredPeopleFamilies+d.UnshelteredPeopleFamilies)
		}
	}
	return p
}

func checkNonNegative(p *phase, line int, c domain.RegionCounts) {
	values := map[string]int{
		"Indv":                      c.Indv,
		"ShelteredIndv":             c.ShelteredIndv,
		"UnshelteredIndv":           c.UnshelteredIndv,
		"PeopleFamilies":            c.PeopleFamilies,
		"ShelteredPeopleFamilies":   c.ShelteredPeopleFamilies,
		"UnshelteredPeopleFamilies": c.UnshelteredPeopleFamilies,
		"ShelteredVeterans":         c.ShelteredVeterans,
		"UnshelteredVeterans":       c.UnshelteredVeterans,
		"ShelteredYouth":            c.ShelteredYouth,
		"UnshelteredYouth":          c.UnshelteredYouth,
	}
	for _, col := range domain.CountColumns[1:] {
		if v := values[col]; v < 0 {
			p.errorf("line %d: region %q column %s is negative (%d)", line, c.RegionID, col, v)
		}
	}
}

// ── Phase 3: State names ──

func validateStates(states []domain.StateLookup) *phase {
	p := &phase{name: "Phase 3: State names"}

	seen := map[string]string{}
	for i, s := range states {
		line := i + 1
		if utf8.RuneCountInString(s.StateCode) != 2 {
			p.errorf("line %d: state code %q is not two characters", line, s.StateCode)
		}
		if prev, ok := seen[s.StateCode]; ok && prev != s.StateName {
			p.notef("line %d: code %q maps to both %q and %q; the first is used", line, s.StateCode, prev, s.StateName)
		} else if !ok {
			seen[s.StateCode] = s.StateName
		}
	}
	return p
}

// ── Phase 4: Coverage ──
// Count rows without a geocode are silently excluded from every ranking, so
// they are reported as errors. Unnamed states only lose their display name.

func validateCoverage(geo []domain.RegionGeo, counts []domain.RegionCounts, states []domain.StateLookup) *phase {
	p := &phase{name: "Phase 4: Cross-file coverage"}

	cleaned, _ := domain.CleanGeo(geo)
	geoIDs := map[string]bool{}
	for _, g := range cleaned {
		geoIDs[g.RegionID] = true
	}
	for i, c := range counts {
		if !geoIDs[c.RegionID] {
			p.errorf("counts line %d: region %q has no usable geocode", i+1, c.RegionID)
		}
	}

	named := map[string]bool{}
	for _, s := range states {
		named[s.StateCode] = true
	}
	var unnamed []string
	seen := map[string]bool{}
	for _, c := range counts {
		code, err := domain.StateCode(c.RegionID)
		if err != nil || named[code] || seen[code] {
			continue
		}
		seen[code] = true
		unnamed = append(unnamed, code)
	}
	sort.Strings(unnamed)
	for _, code := range unnamed {
		p.errorf("state code %q has no entry in the state names file", code)
	}
	return p
}
