package prewhiten

import (
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/periodogram"
)

// RunContext is the mutable state of one extraction run. It is owned by the
// run and never shared between runs.
type RunContext struct {
	// Original is the input light curve; Working is the current residual.
	Original *lightcurve.LightCurve
	Working  *lightcurve.LightCurve

	// OriginalPeriodogram is the periodogram of Original over the run's
	// frequency range, without exclusions.
	OriginalPeriodogram *periodogram.Periodogram

	Frequencies []*Frequency

	// Iterations counts periodograms computed by the loop, including retries
	// after rejected candidates.
	Iterations         int
	Rejections         int
	RefinementsSkipped int

	exclusions          []periodogram.Range
	insignificantStreak int
}

func newRunContext(lc *lightcurve.LightCurve, exclusions []periodogram.Range) *RunContext {
	return &RunContext{
		Original:   lc,
		Working:    lc,
		exclusions: append([]periodogram.Range(nil), exclusions...),
	}
}

// Exclude appends r to the exclusion list. Ranges are never removed.
func (rc *RunContext) Exclude(r periodogram.Range) {
	rc.exclusions = append(rc.exclusions, r)
}

// Exclusions returns a copy of the exclusion list.
func (rc *RunContext) Exclusions() []periodogram.Range {
	return append([]periodogram.Range(nil), rc.exclusions...)
}

func (rc *RunContext) append(f *Frequency) {
	f.Index = len(rc.Frequencies)
	rc.Frequencies = append(rc.Frequencies, f)
}
