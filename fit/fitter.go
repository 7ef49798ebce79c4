package fit

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/lightcurve"
)

// Fitter fits sinusoids to light curves.
type Fitter interface {
	// FitSingle fits one sinusoid starting from the given guesses and
	// returns it together with the residual light curve.
	FitSingle(ctx context.Context, lc *lightcurve.LightCurve, freqGuess, ampGuess float64) (*SingleResult, error)

	// FitMultiple refines all comps jointly against lc. The input slice is
	// not modified.
	FitMultiple(ctx context.Context, lc *lightcurve.LightCurve, comps []Component) ([]Component, error)
}

// Backend selects a Fitter implementation.
type Backend int

const (
	// BackendLeastSquares selects [LeastSquares].
	BackendLeastSquares Backend = iota
	// BackendStaged selects [Staged].
	BackendStaged
)

func (b Backend) String() string {
	switch b {
	case BackendLeastSquares:
		return "least_squares"
	case BackendStaged:
		return "staged"
	default:
		return "unknown"
	}
}

// ParseBackend maps a configuration name onto a Backend. The historical
// names "scipy" and "lmfit" are accepted as aliases.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "least_squares", "leastsquares", "scipy":
		return BackendLeastSquares, nil
	case "", "staged", "lmfit":
		return BackendStaged, nil
	default:
		return 0, eris.Wrapf(ErrUnknownBackend, "%q", name)
	}
}

// New returns the Fitter for backend.
func New(backend Backend, opts ...Option) (Fitter, error) {
	switch backend {
	case BackendLeastSquares:
		return NewLeastSquares(opts...), nil
	case BackendStaged:
		return NewStaged(opts...), nil
	default:
		return nil, eris.Wrapf(ErrUnknownBackend, "%d", int(backend))
	}
}

// Config holds the settings shared by both backends.
type Config struct {
	// MaxEvaluations caps the model evaluations of one solver run.
	// Zero selects 100*(free parameters + 1).
	MaxEvaluations int
	// RetryFactor multiplies the cap for the single retry after a run
	// exhausted it.
	RetryFactor int
	// FTol and XTol are the relative convergence tolerances on the sum of
	// squares and on the parameter step.
	FTol float64
	XTol float64
	// FixedFrequency holds the frequency at its guess during the first
	// staged stage.
	FixedFrequency bool
	// PhaseSeeds are the starting phases of the staged phase scan.
	PhaseSeeds []float64
	Logger     *zap.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults: phase seeds 0.5, 0.3, 0.7, a retry cap
// of 100 times the regular one and tolerances of 1e-10.
func DefaultConfig() Config {
	return Config{
		RetryFactor: 100,
		FTol:        1e-10,
		XTol:        1e-10,
		PhaseSeeds:  []float64{0.5, 0.3, 0.7},
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
	return cfg
}

// WithMaxEvaluations sets the evaluation cap of the first solver run.
func WithMaxEvaluations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxEvaluations = n
		}
	}
}

// WithRetryFactor sets the cap multiplier of the retry run.
func WithRetryFactor(k int) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.RetryFactor = k
		}
	}
}

// WithTolerance sets the relative convergence tolerances.
func WithTolerance(ftol, xtol float64) Option {
	return func(cfg *Config) {
		if ftol > 0 {
			cfg.FTol = ftol
		}
		if xtol > 0 {
			cfg.XTol = xtol
		}
	}
}

// WithFixedFrequency holds the frequency at its guess in the first staged
// stage.
func WithFixedFrequency(fixed bool) Option {
	return func(cfg *Config) {
		cfg.FixedFrequency = fixed
	}
}

// WithPhaseSeeds replaces the staged phase seeds.
func WithPhaseSeeds(seeds ...float64) Option {
	return func(cfg *Config) {
		if len(seeds) > 0 {
			cfg.PhaseSeeds = append([]float64(nil), seeds...)
		}
	}
}

// WithLogger sets the logger for fit warnings. Defaults to zap.L().
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

func (c Config) settings(free int, retry bool) solverSettings {
	maxEval := c.MaxEvaluations
	if maxEval <= 0 {
		maxEval = 100 * (free + 1)
	}
	if retry {
		maxEval *= max(c.RetryFactor, 1)
	}
	return solverSettings{maxEval: maxEval, ftol: c.FTol, xtol: c.XTol}
}

// solveWithRetry runs the solver and, when it runs out of evaluations,
// retries once with the enlarged cap.
func (c Config) solveWithRetry(ctx context.Context, pr problem) (*solution, error) {
	free := 0
	for _, f := range pr.free {
		if f {
			free++
		}
	}

	sol, err := solve(ctx, pr, c.settings(free, false))
	if !errors.Is(err, errEvalLimit) {
		return sol, err
	}
	c.Logger.Debug("fit hit its evaluation cap, retrying",
		zap.Int("cap", c.settings(free, false).maxEval),
		zap.Float64("frequency_guess", pr.init[1]))

	retry := c.settings(free, true)
	sol, err = solve(ctx, pr, retry)
	if errors.Is(err, errEvalLimit) {
		return nil, &ConvergenceError{
			FrequencyGuess: pr.init[1],
			Components:     len(pr.init) / 3,
			Evaluations:    retry.maxEval,
		}
	}
	return sol, err
}
