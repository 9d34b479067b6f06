package domain

import "fmt"

// LoadError reports an input file that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaMismatchError reports a row whose field count differs from the
// declared columns. Line is 1-based.
type SchemaMismatchError struct {
	Line     int
	Expected int
	Got      int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("line %d: expected %d fields, got %d", e.Line, e.Expected, e.Got)
}

// MalformedKeyError reports a region identifier too short to carry a state code.
type MalformedKeyError struct {
	RegionID string
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("region id %q is shorter than a state code", e.RegionID)
}
