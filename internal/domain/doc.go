// Package domain models HUD Point-in-Time homelessness counts reported per
// Continuum of Care (CoC) region, and the pure transformations that turn the
// raw tables into per-state rankings.
//
// # Data Sources
//
// Three headerless, comma-delimited files feed the report:
//
//	COCNumWithGeoCodes.csv  CoCNumber, lon, lat
//	HomelessData2016.csv    CoCNumber plus ten raw counts
//	StateNames.csv          StateName, State
//
// # CoC Conventions
//
// Region identifier:
//
//	"<state><number>"  →  e.g. "CA-600" or "4001"
//	The first two characters (runes) always denote the state. Identifiers shorter
//	than two characters cannot be attributed to a state and are rejected
//	with [MalformedKeyError].
//
// Coordinates:
//
//	Longitude and latitude are WGS-84 decimal degrees. Regions without a
//	geocode carry an NA token ("", "NA", "NaN", ...) and are dropped by
//	[DropMissingCoordinates] before the join, so they never reach a ranking.
//	Tokens match the whole cell; a padded " NA" is not missing.
//
// Counts:
//
//	Raw counts split each population into sheltered and unsheltered. The
//	report derives five combined columns:
//
//	  Sheltered   = ShelteredIndv + ShelteredPeopleFamilies
//	  Unsheltered = UnshelteredIndv + UnshelteredPeopleFamilies
//	  Total       = Sheltered + Unsheltered
//	  Veterans    = ShelteredVeterans + UnshelteredVeterans
//	  Youth       = ShelteredYouth + UnshelteredYouth
//
// # Rankings
//
// Joined records are grouped by state code and summed per category. Sorting
// is descending by sum with ties broken by ascending state code, so repeated
// runs over the same input produce identical tables.
package domain
