package fit

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/signal"
)

const (
	// phaseMoved is how far a phase-only fit has to move away from its
	// seed before the scan stops.
	phaseMoved = 1e-2
	// phaseStuck flags a result this close to the last seed tried.
	phaseStuck = 1e-3
)

// Staged fits in two stages. The first stage fits amplitude, frequency and
// phase with amplitude and frequency bounded to +/- 20 % of their guesses,
// once from every phase seed, and keeps the best. The second stage holds
// amplitude and frequency and refits the phase alone, scanning the seeds
// until the phase leaves its seed.
//
// Uncertainties follow [MontgomeryODonoghue]; flux errors are not used.
type Staged struct {
	cfg Config
}

var _ Fitter = (*Staged)(nil)

// NewStaged returns a staged fitter.
func NewStaged(opts ...Option) *Staged {
	return &Staged{cfg: ApplyOptions(opts...)}
}

// FitSingle runs both stages for one sinusoid.
func (s *Staged) FitSingle(ctx context.Context, lc *lightcurve.LightCurve, freqGuess, ampGuess float64) (*SingleResult, error) {
	if err := validateSingle(lc, freqGuess, ampGuess); err != nil {
		return nil, err
	}

	freqBound := relative(freqGuess, refineBound)
	if s.cfg.FixedFrequency {
		freqBound = bound{lo: freqGuess, hi: freqGuess}
	}

	var best *solution
	var firstErr error
	for _, seed := range s.cfg.PhaseSeeds {
		sol, err := s.cfg.solveWithRetry(ctx, problem{
			t:      lc.Time,
			y:      lc.Flux,
			init:   []float64{ampGuess, freqGuess, seed},
			bounds: []bound{relative(ampGuess, refineBound), freqBound, unbounded},
			free:   []bool{true, !s.cfg.FixedFrequency, true},
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if best == nil || sol.ssr < best.ssr {
			best = sol
		}
	}
	if best == nil {
		return nil, firstErr
	}
	amp, freq := best.params[0], best.params[1]

	scan, err := s.scanPhase(ctx, lc, amp, freq)
	if err != nil {
		return nil, err
	}
	phase := scan.best

	lowConf := signal.PhaseDistance(scan.last, scan.lastSeed) < phaseStuck
	if lowConf {
		s.cfg.Logger.Warn("phase fit ended next to its seed",
			zap.Float64("frequency", freq),
			zap.Float64("phase", scan.last),
			zap.Float64("seed", scan.lastSeed))
	}

	comp := moComponent(lc, amp, freq, phase)
	res, err := residual(lc, comp.Sinusoid())
	if err != nil {
		return nil, err
	}
	return &SingleResult{Component: comp, Residual: res, LowConfidence: lowConf}, nil
}

type phaseScan struct {
	best     float64 // lowest residual phase
	last     float64 // converged phase of the final fit
	lastSeed float64
}

// scanPhase fits the phase alone from each seed in turn and stops once a fit
// moves away from its seed.
func (s *Staged) scanPhase(ctx context.Context, lc *lightcurve.LightCurve, amp, freq float64) (phaseScan, error) {
	var scan phaseScan
	bestSSR := math.Inf(1)
	for _, seed := range s.cfg.PhaseSeeds {
		sol, err := s.cfg.solveWithRetry(ctx, problem{
			t:      lc.Time,
			y:      lc.Flux,
			init:   []float64{amp, freq, seed},
			bounds: []bound{unbounded, unbounded, unbounded},
			free:   []bool{false, false, true},
		})
		if err != nil {
			return phaseScan{}, err
		}
		p := signal.WrapPhase(sol.params[2])
		scan.last, scan.lastSeed = p, seed
		if sol.ssr < bestSSR {
			bestSSR = sol.ssr
			scan.best = p
		}
		if signal.PhaseDistance(p, seed) > phaseMoved {
			break
		}
	}
	return scan, nil
}

// FitMultiple refines comps jointly against lc with amplitude and frequency
// bounded to +/- 20 % and recomputes every uncertainty with
// [MontgomeryODonoghue] on lc.
func (s *Staged) FitMultiple(ctx context.Context, lc *lightcurve.LightCurve, comps []Component) ([]Component, error) {
	if len(comps) == 0 {
		return nil, nil
	}
	sol, err := s.cfg.solveWithRetry(ctx, jointProblem(lc, comps, nil))
	if err != nil {
		return nil, err
	}

	out := make([]Component, len(comps))
	for i := range out {
		k := 3 * i
		out[i] = moComponent(lc, sol.params[k], sol.params[k+1], signal.WrapPhase(sol.params[k+2]))
	}
	return out, nil
}
