package prewhiten

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/periodogram"
	"github.com/cwbudde/algo-smurfs/signal"
)

// Runner extracts frequencies with fixed settings.
type Runner struct {
	settings Settings
	logger   *zap.Logger

	fitter  fit.Fitter
	fitOpts []fit.Option
	single  SingleFitFunc
	multi   MultiFitFunc
}

// NewRunner validates the settings and selects the fit backend.
//
// When only a custom single fit is supplied the joint refinement cannot be
// delegated and is switched off.
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{settings: DefaultSettings()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		r.logger = zap.L()
	}
	if err := r.settings.Validate(); err != nil {
		return nil, err
	}

	if r.single != nil && r.multi == nil && r.settings.ImproveFit {
		r.logger.Info("custom single fit without joint fit, disabling refinement")
		r.settings.ImproveFit = false
	}

	if r.fitter == nil {
		fopts := append([]fit.Option{fit.WithLogger(r.logger)}, r.fitOpts...)
		f, err := fit.New(r.settings.Backend, fopts...)
		if err != nil {
			return nil, err
		}
		r.fitter = f
	}
	return r, nil
}

// Settings returns the effective settings.
func (r *Runner) Settings() Settings {
	return r.settings
}

// Run extracts components from lc until a stop condition holds.
//
// Errors during setup return a nil Result. A canceled context or a failed fit
// after setup return the components found so far together with the error.
func (r *Runner) Run(ctx context.Context, lc *lightcurve.LightCurve) (*Result, error) {
	if lc.Len() == 0 {
		return nil, lightcurve.ErrEmpty
	}
	start := time.Now()

	rc := newRunContext(lc, r.settings.Exclusions)
	orig, err := periodogram.Compute(lc, r.periodogramOptions(nil)...)
	if err != nil {
		return nil, eris.Wrap(err, "prewhiten: periodogram of the input")
	}
	rc.OriginalPeriodogram = orig
	if orig.AboveNyquist {
		r.logger.Warn("frequency range extends beyond the Nyquist frequency",
			zap.Float64("nyquist", orig.Nyquist))
	}

	r.logger.Info("starting frequency extraction",
		zap.Int("samples", lc.Len()),
		zap.Float64("baseline", lc.Baseline()),
		zap.Float64("snr", r.settings.SNRThreshold),
		zap.Stringer("backend", r.settings.Backend))

	stop, runErr := r.loop(ctx, rc)

	res := r.result(rc, stop, start)
	r.logger.Info("frequency extraction finished",
		zap.Stringer("stop", stop),
		zap.Int("frequencies", res.Statistics.Frequencies),
		zap.Int("significant", res.Statistics.Significant),
		zap.Duration("elapsed", res.Statistics.Elapsed))
	return res, runErr
}

func (r *Runner) loop(ctx context.Context, rc *RunContext) (StopReason, error) {
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("frequency extraction interrupted", zap.Int("frequencies", len(rc.Frequencies)))
			return StopInterrupted, err
		}
		if n := r.settings.MaxFrequencies; n > 0 && len(rc.Frequencies) >= n {
			return StopMaxFrequencies, nil
		}

		rc.Iterations++
		pdg, err := periodogram.Compute(rc.Working, r.periodogramOptions(rc.exclusions)...)
		if errors.Is(err, periodogram.ErrEmptyPeriodogram) {
			r.logger.Warn("exclusions cover the whole frequency range")
			return StopExhausted, nil
		}
		if err != nil {
			return StopFailed, eris.Wrap(err, "prewhiten: periodogram of the residual")
		}

		peak := periodogram.AnalyzePeak(pdg, r.settings.WindowSize)
		if pdg.Amplitude[peak.MaxIndex] == 0 {
			r.logger.Info("residual periodogram is flat, stopping")
			return StopInsignificant, nil
		}
		significant := peak.SNR > r.settings.SNRThreshold
		if !significant {
			if rc.insignificantStreak >= r.settings.ExtendFrequencies {
				r.logger.Info("peak below threshold, stopping",
					zap.Float64("frequency", pdg.Frequency[peak.MaxIndex]),
					zap.Float64("snr", peak.SNR))
				return StopInsignificant, nil
			}
			r.logger.Debug("extracting insignificant peak",
				zap.Float64("snr", peak.SNR),
				zap.Int("streak", rc.insignificantStreak+1))
		}

		cand, err := r.fitCandidate(ctx, rc, pdg, peak, significant)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return StopInterrupted, ctxErr
			}
			r.logger.Error("single fit failed, stopping", zap.Error(err))
			return StopFailed, err
		}

		switch c := cand.(type) {
		case rejected:
			rc.Exclude(c.exclusion)
			rc.Rejections++
			r.logger.Warn("candidate not corroborated by the original periodogram",
				zap.Float64("frequency", c.frequency),
				zap.Float64("ratio", c.ratio),
				zap.Stringer("excluded", c.exclusion))
			continue
		case accepted:
			if significant {
				rc.insignificantStreak = 0
			} else {
				rc.insignificantStreak++
			}
			rc.append(c.freq)
			rc.Working = c.residual
			r.logger.Info("extracted frequency",
				zap.String("label", c.freq.Label()),
				zap.Float64("frequency", c.freq.Frequency.Value),
				zap.Float64("amplitude", c.freq.Amplitude.Value),
				zap.Float64("snr", c.freq.SNR))
		}

		if r.settings.ImproveFit {
			r.refine(ctx, rc)
		}

		if r.similar(rc) {
			return StopSimilar, nil
		}
	}
}

// fitCandidate fits the highest peak of pdg and checks the fitted amplitude
// against the original periodogram.
func (r *Runner) fitCandidate(ctx context.Context, rc *RunContext, pdg *periodogram.Periodogram, peak periodogram.Peak, significant bool) (candidate, error) {
	fGuess := pdg.Frequency[peak.MaxIndex]
	aGuess := pdg.Amplitude[peak.MaxIndex]
	bounds := peak.Bounds(pdg)

	freq := &Frequency{
		SNR:            peak.SNR,
		Significant:    significant,
		LowerMinimum:   peak.Lower,
		UpperMinimum:   peak.Upper,
		LowerFrequency: bounds.Low,
		UpperFrequency: bounds.High,
	}

	var residual *lightcurve.LightCurve
	if r.single != nil {
		resp, err := r.single(ctx, FitRequest{
			LightCurve:     rc.Working,
			Periodogram:    pdg,
			FrequencyGuess: fGuess,
			AmplitudeGuess: aGuess,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "prewhiten: custom fit at %.6f c/d", fGuess)
		}
		if err := resp.validate(rc.Working); err != nil {
			return nil, err
		}
		freq.Amplitude = resp.Amplitude
		freq.Frequency = resp.Frequency
		freq.Phase = fit.Value{Value: signal.WrapPhase(resp.Phase.Value), Err: resp.Phase.Err}
		if len(resp.Extra) > 0 {
			freq.Extra = make(map[string]float64, len(resp.Extra))
			for k, v := range resp.Extra {
				freq.Extra[k] = v
			}
		}
		residual = resp.Residual
	} else {
		res, err := r.fitter.FitSingle(ctx, rc.Working, fGuess, aGuess)
		if err != nil {
			return nil, err
		}
		freq.Amplitude = res.Amplitude
		freq.Frequency = res.Frequency
		freq.Phase = res.Phase
		freq.LowConfidence = res.LowConfidence
		residual = res.Residual
	}
	freq.ResidualNoise = residual.Mean()

	if ratio := r.settings.DetectionRatio; ratio > 0 {
		if ref, ok := rc.OriginalPeriodogram.MaxIn(bounds.Low, bounds.High); ok && ref > 0 {
			if q := freq.Amplitude.Value / ref; q < ratio {
				return rejected{exclusion: bounds, ratio: q, frequency: freq.Frequency.Value}, nil
			}
		}
	}
	return accepted{freq: freq, residual: residual}, nil
}

// refine fits all components jointly against the original light curve and
// rebuilds the working residual from the result. On failure the previous
// values are kept.
func (r *Runner) refine(ctx context.Context, rc *RunContext) {
	comps := make([]fit.Component, len(rc.Frequencies))
	for i, f := range rc.Frequencies {
		comps[i] = f.Component()
	}

	refined, residual, err := r.fitMultiple(ctx, rc.Original, comps)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		rc.RefinementsSkipped++
		r.logger.Warn("joint refinement failed, keeping previous values",
			zap.Int("components", len(comps)), zap.Error(err))
		return
	}

	for i, f := range rc.Frequencies {
		f.Amplitude = refined[i].Amplitude
		f.Frequency = refined[i].Frequency
		f.Phase = refined[i].Phase
	}
	rc.Working = residual
}

// fitMultiple runs the joint fit and returns the refined components together
// with lc minus their summed model.
func (r *Runner) fitMultiple(ctx context.Context, lc *lightcurve.LightCurve, comps []fit.Component) ([]fit.Component, *lightcurve.LightCurve, error) {
	var refined []fit.Component
	var err error
	if r.multi != nil {
		refined, err = r.multi(ctx, lc, comps)
	} else {
		refined, err = r.fitter.FitMultiple(ctx, lc, comps)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(refined) != len(comps) {
		return nil, nil, eris.Wrapf(ErrInvalidHookResponse, "joint fit returned %d of %d components",
			len(refined), len(comps))
	}
	for i := range refined {
		refined[i].Phase.Value = signal.WrapPhase(refined[i].Phase.Value)
	}

	residual, err := lc.Subtract(signal.Sum(lc.Time, fit.Sinusoids(refined)...))
	if err != nil {
		return nil, nil, err
	}
	return refined, residual, nil
}

// similar reports whether the run should stop because the most recent
// frequencies collapsed onto one value. With SkipSimilar the region is
// excluded instead and the run continues.
func (r *Runner) similar(rc *RunContext) bool {
	n := len(rc.Frequencies)
	if n <= similarityCount {
		return false
	}
	last := make([]float64, similarityCount)
	for i, f := range rc.Frequencies[n-similarityCount:] {
		last[i] = f.Frequency.Value
	}
	mean, variance := stat.PopMeanVariance(last, nil)
	std := math.Sqrt(variance)
	if std >= similarityStd {
		return false
	}

	switch {
	case r.settings.SkipSimilar:
		excl := periodogram.Range{Low: mean - similaritySpan*std, High: mean + similaritySpan*std}
		rc.Exclude(excl)
		r.logger.Warn("recent frequencies are similar, excluding region",
			zap.Float64("mean", mean), zap.Float64("std", std), zap.Stringer("excluded", excl))
		return false
	case r.settings.SimilarCancel:
		r.logger.Warn("recent frequencies are similar, stopping",
			zap.Float64("mean", mean), zap.Float64("std", std))
		return true
	default:
		return false
	}
}

func (r *Runner) result(rc *RunContext, stop StopReason, start time.Time) *Result {
	res := &Result{
		Frequencies: rc.Frequencies,
		Original:    rc.Original,
		Residual:    rc.Working,
		Exclusions:  rc.Exclusions(),
		Stop:        stop,
		Settings:    r.settings,
	}
	res.ResidualPeriodogram = r.residualPeriodogram(rc.Working)
	res.Statistics = res.statistics(rc.Original, rc, time.Since(start))
	return res
}

func (r *Runner) residualPeriodogram(lc *lightcurve.LightCurve) *periodogram.Periodogram {
	pdg, err := periodogram.Compute(lc, r.periodogramOptions(nil)...)
	if err != nil {
		r.logger.Warn("residual periodogram unavailable", zap.Error(err))
		return nil
	}
	return pdg
}

// ImproveResult refits all components of res jointly against its original
// light curve. res is not modified; on failure it is returned unchanged with
// the error.
func (r *Runner) ImproveResult(ctx context.Context, res *Result) (*Result, error) {
	if res == nil || len(res.Frequencies) == 0 {
		return res, nil
	}

	refined, residual, err := r.fitMultiple(ctx, res.Original, res.Components())
	if err != nil {
		return res, eris.Wrap(err, "prewhiten: improve result")
	}

	out := *res
	out.Frequencies = make([]*Frequency, len(res.Frequencies))
	for i, f := range res.Frequencies {
		cp := *f
		cp.Amplitude = refined[i].Amplitude
		cp.Frequency = refined[i].Frequency
		cp.Phase = refined[i].Phase
		out.Frequencies[i] = &cp
	}
	out.Residual = residual
	out.ResidualPeriodogram = r.residualPeriodogram(residual)
	return &out, nil
}

func (r *Runner) periodogramOptions(exclusions []periodogram.Range) []periodogram.Option {
	opts := []periodogram.Option{
		periodogram.WithMinFrequency(r.settings.FMin),
		periodogram.WithSamplesPerPeak(r.settings.SamplesPerPeak),
		periodogram.WithMethod(r.settings.Method),
		periodogram.WithExclusions(exclusions...),
	}
	if r.settings.HasFMax {
		opts = append(opts, periodogram.WithMaxFrequency(r.settings.FMax))
	}
	return opts
}
