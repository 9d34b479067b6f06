package domain

// Column schemas of the three input files, in file order.
var (
	GeoColumns = []string{"CoCNumber", "lon", "lat"}

	CountColumns = []string{
		"CoCNumber", "Indv", "ShelteredIndv", "UnshelteredIndv", "PeopleFamilies",
		"ShelteredPeopleFamilies", "UnshelteredPeopleFamilies", "ShelteredVeterans",
		"UnshelteredVeterans", "ShelteredYouth", "UnshelteredYouth",
	}

	StateColumns = []string{"StateName", "State"}
)

// Table is a positional, untyped view of a delimited file.
type Table struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// RegionGeo is one row of the geocode table. A nil coordinate is missing.
type RegionGeo struct {
	RegionID string
	Lon      *float64
	Lat      *float64
}

// RegionCounts holds the raw Point-in-Time counts for one CoC region.
type RegionCounts struct {
	RegionID                  string
	Indv                      int
	ShelteredIndv             int
	UnshelteredIndv           int
	PeopleFamilies            int
	ShelteredPeopleFamilies   int
	UnshelteredPeopleFamilies int
	ShelteredVeterans         int
	UnshelteredVeterans       int
	ShelteredYouth            int
	UnshelteredYouth          int
}

// DerivedCounts is a RegionCounts extended with the combined columns.
type DerivedCounts struct {
	RegionCounts
	Sheltered   int
	Unsheltered int
	Total       int
	Veterans    int
	Youth       int
}

// StateLookup maps a two-character state code to its display name.
type StateLookup struct {
	StateName string
	StateCode string
}

// JoinedRecord is a derived count row matched to its geocode.
type JoinedRecord struct {
	DerivedCounts
	Lon       float64
	Lat       float64
	StateCode string
}

// StateSum is one row of a single-category ranking.
type StateSum struct {
	StateCode string `json:"state"`
	Sum       int    `json:"sum"`
}

// StateRanking is one row of the merged per-state report.
type StateRanking struct {
	StateCode string `json:"state"`
	StateName string `json:"state_name,omitempty"`
	Total     int    `json:"total"`
	Veterans  int    `json:"veterans"`
	Youth     int    `json:"youth"`
}

// Category names a summable derived column.
type Category string

const (
	CategoryTotal    Category = "Total"
	CategoryVeterans Category = "Veterans"
	CategoryYouth    Category = "Youth"
)

func (c Category) valueOf(d DerivedCounts) (int, bool) {
	switch c {
	case CategoryTotal:
		return d.Total, true
	case CategoryVeterans:
		return d.Veterans, true
	case CategoryYouth:
		return d.Youth, true
	default:
		return 0, false
	}
}
