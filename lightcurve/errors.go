package lightcurve

import "github.com/rotisserie/eris"

var (
	// ErrEmpty is returned when a light curve has no samples.
	ErrEmpty = eris.New("light curve is empty")
	// ErrLengthMismatch is returned when time, flux and flux error lengths differ.
	ErrLengthMismatch = eris.New("light curve length mismatch")
	// ErrNonFinite is returned for NaN or Inf samples.
	ErrNonFinite = eris.New("light curve contains non-finite values")
	// ErrTooFewSamples is returned by operations that need at least two samples.
	ErrTooFewSamples = eris.New("light curve needs at least two samples")
	// ErrInvalidPeriod is returned by Fold for a non-positive or non-finite period.
	ErrInvalidPeriod = eris.New("fold period must be positive and finite")
)
