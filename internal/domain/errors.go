package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup runs against an empty snapshot.
var ErrNotFound = errors.New("no parking locations loaded")

// ErrInvalidTimeFormat matches every *InvalidTimeFormatError via errors.Is.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// InvalidTimeFormatError reports a non-empty time string that matches neither
// "H:MM AM" nor "H AM".
type InvalidTimeFormatError struct {
	LocationID int64
	Field      string
	Raw        string
}

func (e *InvalidTimeFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid time format %q", e.Raw)
	}
	return fmt.Sprintf("location %d: invalid time format %q in %s", e.LocationID, e.Raw, e.Field)
}

func (e *InvalidTimeFormatError) Unwrap() error { return ErrInvalidTimeFormat }

// ErrInvalidCoordinate is returned for a latitude outside [-90, 90] or a
// longitude outside [-180, 180].
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// TimeFormatDefects flattens a (possibly joined) parse error into its
// individual time format defects.
func TimeFormatDefects(err error) []*InvalidTimeFormatError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []*InvalidTimeFormatError
		for _, e := range joined.Unwrap() {
			out = append(out, TimeFormatDefects(e)...)
		}
		return out
	}
	var tfe *InvalidTimeFormatError
	if errors.As(err, &tfe) {
		return []*InvalidTimeFormatError{tfe}
	}
	return nil
}
