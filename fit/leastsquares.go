package fit

import (
	"context"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/signal"
)

// singleBound is the relative bound on amplitude and frequency of a
// least-squares single fit.
const singleBound = 0.5

// LeastSquares fits all parameters at once with bounded Levenberg-Marquardt.
//
// Flux errors, when present and positive, weight the residuals. Parameter
// uncertainties are the square roots of the covariance diagonal, scaled by
// the reduced chi-square.
type LeastSquares struct {
	cfg Config
}

var _ Fitter = (*LeastSquares)(nil)

// NewLeastSquares returns a least-squares fitter.
func NewLeastSquares(opts ...Option) *LeastSquares {
	return &LeastSquares{cfg: ApplyOptions(opts...)}
}

// FitSingle fits amp*sin(2*pi*(f*t + phase)) starting at phase 0 with
// amplitude and frequency bounded to [0.5, 1.5] times their guesses.
func (l *LeastSquares) FitSingle(ctx context.Context, lc *lightcurve.LightCurve, freqGuess, ampGuess float64) (*SingleResult, error) {
	if err := validateSingle(lc, freqGuess, ampGuess); err != nil {
		return nil, err
	}

	sol, err := l.cfg.solveWithRetry(ctx, problem{
		t:      lc.Time,
		y:      lc.Flux,
		weight: sqrtWeights(lc),
		init:   []float64{ampGuess, freqGuess, 0},
		bounds: []bound{relative(ampGuess, singleBound), relative(freqGuess, singleBound), unbounded},
		free:   []bool{true, true, true},
	})
	if err != nil {
		return nil, err
	}

	comp := Component{
		Amplitude: Value{Value: sol.params[0], Err: sol.stdErr[0]},
		Frequency: Value{Value: sol.params[1], Err: sol.stdErr[1]},
		Phase:     Value{Value: signal.WrapPhase(sol.params[2]), Err: sol.stdErr[2]},
	}
	res, err := residual(lc, comp.Sinusoid())
	if err != nil {
		return nil, err
	}
	return &SingleResult{Component: comp, Residual: res}, nil
}

// FitMultiple refines comps jointly, amplitude and frequency bounded to
// +/- 20 % of their current values.
func (l *LeastSquares) FitMultiple(ctx context.Context, lc *lightcurve.LightCurve, comps []Component) ([]Component, error) {
	if len(comps) == 0 {
		return nil, nil
	}
	sol, err := l.cfg.solveWithRetry(ctx, jointProblem(lc, comps, sqrtWeights(lc)))
	if err != nil {
		return nil, err
	}

	out := make([]Component, len(comps))
	for i := range out {
		k := 3 * i
		out[i] = Component{
			Amplitude: Value{Value: sol.params[k], Err: sol.stdErr[k]},
			Frequency: Value{Value: sol.params[k+1], Err: sol.stdErr[k+1]},
			Phase:     Value{Value: signal.WrapPhase(sol.params[k+2]), Err: sol.stdErr[k+2]},
		}
	}
	return out, nil
}
