package periodogram

import "github.com/rotisserie/eris"

var (
	// ErrInvalidRange is returned when the requested frequency range is empty
	// or negative.
	ErrInvalidRange = eris.New("periodogram: invalid frequency range")

	// ErrEmptyPeriodogram is returned when no frequency bin survives the
	// exclusion ranges.
	ErrEmptyPeriodogram = eris.New("periodogram: no frequency bins left")

	// ErrUnknownMethod is returned by ParseMethod for unrecognised names.
	ErrUnknownMethod = eris.New("periodogram: unknown method")
)
