package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// naTokens are the cell values treated as missing, matching the default NA
// set of common dataframe readers.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell is an NA token. Cells are matched
// exactly: " NA" or a blank of spaces is a value, not a missing marker.
func IsMissing(cell string) bool {
	_, ok := naTokens[cell]
	return ok
}

// DecodeGeo converts a geocode table into RegionGeo rows.
func DecodeGeo(t Table) ([]RegionGeo, error) {
	out := make([]RegionGeo, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(GeoColumns) {
			return nil, &LoadError{Path: t.Source, Err: &SchemaMismatchError{Line: i + 1, Expected: len(GeoColumns), Got: len(row)}}
		}
		lon, err := parseCoordinate(row[1])
		if err != nil {
			return nil, &LoadError{Path: t.Source, Err: fmt.Errorf("line %d column lon: %w", i+1, err)}
		}
		lat, err := parseCoordinate(row[2])
		if err != nil {
			return nil, &LoadError{Path: t.Source, Err: fmt.Errorf("line %d column lat: %w", i+1, err)}
		}
		out = append(out, RegionGeo{RegionID: strings.TrimSpace(row[0]), Lon: lon, Lat: lat})
	}
	return out, nil
}

// DecodeCounts converts a counts table into RegionCounts rows.
func DecodeCounts(t Table) ([]RegionCounts, error) {
	out := make([]RegionCounts, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(CountColumns) {
			return nil, &LoadError{Path: t.Source, Err: &SchemaMismatchError{Line: i + 1, Expected: len(CountColumns), Got: len(row)}}
		}
		var v [10]int
		for j := range v {
			n, err := parseCount(row[j+1])
			if err != nil {
				return nil, &LoadError{Path: t.Source, Err: fmt.Errorf("line %d column %s: %w", i+1, CountColumns[j+1], err)}
			}
			v[j] = n
		}
		out = append(out, RegionCounts{
			RegionID:                  strings.TrimSpace(row[0]),
			Indv:                      v[0],
			ShelteredIndv:             v[1],
			UnshelteredIndv:           v[2],
			PeopleFamilies:            v[3],
			ShelteredPeopleFamilies:   v[4],
			UnshelteredPeopleFamilies: v[5],
			ShelteredVeterans:         v[6],
			UnshelteredVeterans:       v[7],
			ShelteredYouth:            v[8],
			UnshelteredYouth:          v[9],
		})
	}
	return out, nil
}

// DecodeStates converts a state-name table into StateLookup rows.
func DecodeStates(t Table) ([]StateLookup, error) {
	out := make([]StateLookup, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(StateColumns) {
			return nil, &LoadError{Path: t.Source, Err: &SchemaMismatchError{Line: i + 1, Expected: len(StateColumns), Got: len(row)}}
		}
		out = append(out, StateLookup{
			StateName: strings.TrimSpace(row[0]),
			StateCode: strings.TrimSpace(row[1]),
		})
	}
	return out, nil
}

// parseCoordinate returns nil for NA tokens.
func parseCoordinate(s string) (*float64, error) {
	if IsMissing(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("parse coordinate %q: %w", s, err)
	}
	return &v, nil
}

// maxCount bounds a single count so that summing every region of a state
// cannot overflow int.
const maxCount = math.MaxInt32

// parseCount accepts integers and integral floats ("12.0") within ±maxCount.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("parse count %q: out of range", s)
		}
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, fmt.Errorf("parse count %q: not an integer", s)
		}
		if f > maxCount || f < -maxCount {
			return 0, fmt.Errorf("parse count %q: out of range", s)
		}
		n = int64(f)
	}
	if n > maxCount || n < -maxCount {
		return 0, fmt.Errorf("parse count %q: out of range", s)
	}
	return int(n), nil
}
