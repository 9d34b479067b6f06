package domain

import "math"

// CleanStats counts the rows removed by each cleaning pass.
type CleanStats struct {
	MissingLat int
	MissingLon int
}

// Dropped returns the total number of removed rows.
func (s CleanStats) Dropped() int { return s.MissingLat + s.MissingLon }

// DropMissingCoordinates removes geocode rows lacking a latitude or longitude.
// It is idempotent.
func DropMissingCoordinates(rows []RegionGeo) []RegionGeo {
	out, _ := CleanGeo(rows)
	return out
}

// CleanGeo drops rows with a missing latitude, then rows with a missing
// longitude, and reports how many rows each pass removed. The input slice is
// not modified.
func CleanGeo(rows []RegionGeo) ([]RegionGeo, CleanStats) {
	var stats CleanStats

	withLat := make([]RegionGeo, 0, len(rows))
	for _, r := range rows {
		if r.Lat == nil {
			stats.MissingLat++
			continue
		}
		withLat = append(withLat, r)
	}

	out := make([]RegionGeo, 0, len(withLat))
	for _, r := range withLat {
		if r.Lon == nil {
			stats.MissingLon++
			continue
		}
		out = append(out, r)
	}
	return out, stats
}

// Derive computes the combined count columns for one region.
func Derive(c RegionCounts) DerivedCounts {
	sheltered := c.ShelteredIndv + c.ShelteredPeopleFamilies
	unsheltered := c.UnshelteredIndv + c.UnshelteredPeopleFamilies
	return DerivedCounts{
		RegionCounts: c,
		Sheltered:    sheltered,
		Unsheltered:  unsheltered,
		Total:        sheltered + unsheltered,
		Veterans:     c.ShelteredVeterans + c.UnshelteredVeterans,
		Youth:        c.ShelteredYouth + c.UnshelteredYouth,
	}
}

// DeriveCounts applies Derive to every row, returning a new slice.
func DeriveCounts(rows []RegionCounts) []DerivedCounts {
	out := make([]DerivedCounts, len(rows))
	for i, r := range rows {
		out[i] = Derive(r)
	}
	return out
}

// FilterTotalBelow returns the rows whose Total is strictly below ceiling.
func FilterTotalBelow(rows []DerivedCounts, ceiling int) []DerivedCounts {
	out := make([]DerivedCounts, 0, len(rows))
	for _, r := range rows {
		if r.Total < ceiling {
			out = append(out, r)
		}
	}
	return out
}

// Join inner-joins counts with geocodes on RegionID. Output follows the order
// of counts; a count row matching several geocode rows yields one record per
// match, in geocode order. Unmatched rows on either side are dropped.
// Missing coordinates surface as NaN.
func Join(counts []DerivedCounts, geo []RegionGeo) []JoinedRecord {
	byID := make(map[string][]RegionGeo, len(geo))
	for _, g := range geo {
		byID[g.RegionID] = append(byID[g.RegionID], g)
	}

	out := make([]JoinedRecord, 0, min(len(counts), len(geo)))
	for _, c := range counts {
		for _, g := range byID[c.RegionID] {
			out = append(out, JoinedRecord{
				DerivedCounts: c,
				Lon:           coordOrNaN(g.Lon),
				Lat:           coordOrNaN(g.Lat),
			})
		}
	}
	return out
}

func coordOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// StateCode returns the first two characters (runes, not bytes) of a region
// identifier.
func StateCode(regionID string) (string, error) {
	r := []rune(regionID)
	if len(r) < 2 {
		return "", &MalformedKeyError{RegionID: regionID}
	}
	return string(r[:2]), nil
}

// AssignStateCodes returns a copy of records with StateCode populated. It
// fails on the first identifier too short to carry a state code.
func AssignStateCodes(records []JoinedRecord) ([]JoinedRecord, error) {
	out := make([]JoinedRecord, len(records))
	for i, r := range records {
		code, err := StateCode(r.RegionID)
		if err != nil {
			return nil, err
		}
		r.StateCode = code
		out[i] = r
	}
	return out, nil
}
