package fit

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/signal"
)

// minSamples is the smallest light curve a three parameter fit accepts.
const minSamples = 4

// refineBound is the relative bound on amplitude and frequency used by the
// staged first stage and by joint refinement.
const refineBound = 0.2

func validateSingle(lc *lightcurve.LightCurve, freqGuess, ampGuess float64) error {
	if lc.Len() < minSamples {
		return eris.Wrapf(lightcurve.ErrTooFewSamples, "fit needs %d samples, got %d", minSamples, lc.Len())
	}
	if !(freqGuess > 0) || !(ampGuess > 0) || math.IsInf(freqGuess, 0) || math.IsInf(ampGuess, 0) {
		return eris.Wrapf(ErrInvalidGuess, "frequency=%g amplitude=%g", freqGuess, ampGuess)
	}
	return nil
}

// sqrtWeights returns 1/sigma per point when every flux error is positive,
// nil otherwise.
func sqrtWeights(lc *lightcurve.LightCurve) []float64 {
	if !lc.HasFluxErr() {
		return nil
	}
	w := make([]float64, lc.Len())
	for i, e := range lc.FluxErr {
		if !(e > 0) {
			return nil
		}
		w[i] = 1 / e
	}
	return w
}

// jointProblem builds the summed model over comps with amplitude and
// frequency bounded to +/- refineBound of their current values.
func jointProblem(lc *lightcurve.LightCurve, comps []Component, weight []float64) problem {
	pr := problem{
		t:      lc.Time,
		y:      lc.Flux,
		weight: weight,
		init:   make([]float64, 0, 3*len(comps)),
		bounds: make([]bound, 0, 3*len(comps)),
		free:   make([]bool, 0, 3*len(comps)),
	}
	for _, c := range comps {
		pr.init = append(pr.init, c.Amplitude.Value, c.Frequency.Value, c.Phase.Value)
		pr.bounds = append(pr.bounds,
			relative(c.Amplitude.Value, refineBound),
			relative(c.Frequency.Value, refineBound),
			unbounded)
		pr.free = append(pr.free, true, true, true)
	}
	return pr
}

// residual subtracts the sinusoid from lc.
func residual(lc *lightcurve.LightCurve, s signal.Sinusoid) (*lightcurve.LightCurve, error) {
	return lc.Subtract(s.Eval(lc.Time))
}
