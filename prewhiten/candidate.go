package prewhiten

import (
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/periodogram"
)

// candidate is the outcome of fitting and validating one peak: either
// accepted or rejected.
type candidate interface {
	isCandidate()
}

// accepted carries a new component and the light curve with it removed.
type accepted struct {
	freq     *Frequency
	residual *lightcurve.LightCurve
}

// rejected carries the range to exclude for a candidate whose amplitude was
// not corroborated by the original periodogram.
type rejected struct {
	exclusion periodogram.Range
	ratio     float64
	frequency float64
}

func (accepted) isCandidate() {}
func (rejected) isCandidate() {}
