package fit

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/signal"
)

// Value is a fitted parameter with its one-sigma uncertainty.
type Value struct {
	Value float64
	Err   float64
}

func (v Value) String() string {
	return fmt.Sprintf("%.6g ± %.2g", v.Value, v.Err)
}

// Within reports whether truth lies within k uncertainties of v.
func (v Value) Within(truth, k float64) bool {
	return math.Abs(v.Value-truth) <= k*v.Err
}

// Component is one fitted sinusoid.
type Component struct {
	Amplitude Value // mag
	Frequency Value // c/d
	Phase     Value // cycles in [0, 1)
}

// Sinusoid drops the uncertainties.
func (c Component) Sinusoid() signal.Sinusoid {
	return signal.Sinusoid{
		Amplitude: c.Amplitude.Value,
		Frequency: c.Frequency.Value,
		Phase:     c.Phase.Value,
	}
}

// Sinusoids converts components into the summed model's terms.
func Sinusoids(comps []Component) []signal.Sinusoid {
	out := make([]signal.Sinusoid, len(comps))
	for i, c := range comps {
		out[i] = c.Sinusoid()
	}
	return out
}

// SingleResult is the outcome of fitting one sinusoid.
type SingleResult struct {
	Component

	// Residual is the input light curve minus the fitted sinusoid.
	Residual *lightcurve.LightCurve

	// LowConfidence is set when the staged phase fit ended next to its
	// last seed.
	LowConfidence bool
}
