package prewhiten

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/periodogram"
)

const (
	// similarityCount is the number of most recent frequencies examined by
	// the stagnation check.
	similarityCount = 10
	// similarityStd is the standard deviation in c/d below which the most
	// recent frequencies count as stuck on one value.
	similarityStd = 0.05
	// similaritySpan is the half width, in standard deviations, of the range
	// excluded around stuck frequencies.
	similaritySpan = 10
)

// Settings are the parameters of an extraction run.
type Settings struct {
	SNRThreshold      float64
	WindowSize        float64 // c/d
	FMin              float64
	FMax              float64
	HasFMax           bool // FMax defaults to the Nyquist frequency when unset
	SkipSimilar       bool
	SimilarCancel     bool
	ExtendFrequencies int
	ImproveFit        bool
	Backend           fit.Backend
	DetectionRatio    float64 // 0 disables the corroboration check
	SamplesPerPeak    int
	Method            periodogram.Method
	MaxFrequencies    int // 0 means unlimited
	Exclusions        []periodogram.Range
}

// DefaultSettings returns SNR 4, window 2 c/d, cancel on similar
// frequencies, joint refinement and the staged backend.
func DefaultSettings() Settings {
	return Settings{
		SNRThreshold:   4,
		WindowSize:     2,
		SimilarCancel:  true,
		ImproveFit:     true,
		Backend:        fit.BackendStaged,
		SamplesPerPeak: periodogram.DefaultSamplesPerPeak,
		Method:         periodogram.MethodDirect,
	}
}

// Validate checks the ranges of all settings.
func (s Settings) Validate() error {
	switch {
	case !(s.SNRThreshold > 0):
		return eris.Wrapf(ErrInvalidSettings, "snr threshold must be > 0: %g", s.SNRThreshold)
	case !(s.WindowSize > 0):
		return eris.Wrapf(ErrInvalidSettings, "window size must be > 0: %g", s.WindowSize)
	case s.ExtendFrequencies < 0:
		return eris.Wrapf(ErrInvalidSettings, "extend frequencies must be >= 0: %d", s.ExtendFrequencies)
	case s.DetectionRatio < 0 || math.IsNaN(s.DetectionRatio):
		return eris.Wrapf(ErrInvalidSettings, "detection ratio must be >= 0: %g", s.DetectionRatio)
	case s.MaxFrequencies < 0:
		return eris.Wrapf(ErrInvalidSettings, "max frequencies must be >= 0: %d", s.MaxFrequencies)
	case s.HasFMax && s.FMin > s.FMax:
		return eris.Wrapf(periodogram.ErrInvalidRange, "f_min=%g f_max=%g", s.FMin, s.FMax)
	}
	return nil
}

// Option configures a Runner.
type Option func(*Runner)

// WithSNRThreshold sets the significance threshold.
func WithSNRThreshold(snr float64) Option {
	return func(r *Runner) { r.settings.SNRThreshold = snr }
}

// WithWindowSize sets the width in c/d of the SNR noise window.
func WithWindowSize(w float64) Option {
	return func(r *Runner) { r.settings.WindowSize = w }
}

// WithFrequencyRange limits the periodogram to [fMin, fMax].
func WithFrequencyRange(fMin, fMax float64) Option {
	return func(r *Runner) {
		r.settings.FMin = fMin
		r.settings.FMax = fMax
		r.settings.HasFMax = true
	}
}

// WithMinFrequency sets the lower periodogram limit and keeps the Nyquist
// frequency as the upper one.
func WithMinFrequency(fMin float64) Option {
	return func(r *Runner) { r.settings.FMin = fMin }
}

// WithSkipSimilar excludes regions where the last ten frequencies collapsed
// instead of stopping.
func WithSkipSimilar(skip bool) Option {
	return func(r *Runner) { r.settings.SkipSimilar = skip }
}

// WithSimilarCancel stops the run when the last ten frequencies collapsed.
func WithSimilarCancel(cancel bool) Option {
	return func(r *Runner) { r.settings.SimilarCancel = cancel }
}

// WithExtendFrequencies sets how many consecutive insignificant peaks are
// still extracted before the run stops.
func WithExtendFrequencies(n int) Option {
	return func(r *Runner) { r.settings.ExtendFrequencies = n }
}

// WithImproveFit toggles the joint refinement after every extraction.
func WithImproveFit(improve bool) Option {
	return func(r *Runner) { r.settings.ImproveFit = improve }
}

// WithBackend selects the fit backend.
func WithBackend(b fit.Backend) Option {
	return func(r *Runner) { r.settings.Backend = b }
}

// WithDetectionRatio enables the corroboration check: a fitted amplitude
// smaller than ratio times the original periodogram amplitude at its
// location is rejected and its range excluded.
func WithDetectionRatio(ratio float64) Option {
	return func(r *Runner) { r.settings.DetectionRatio = ratio }
}

// WithSamplesPerPeak sets the periodogram oversampling.
func WithSamplesPerPeak(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.settings.SamplesPerPeak = n
		}
	}
}

// WithMethod selects the periodogram evaluation method.
func WithMethod(m periodogram.Method) Option {
	return func(r *Runner) { r.settings.Method = m }
}

// WithMaxFrequencies stops the run after n components.
func WithMaxFrequencies(n int) Option {
	return func(r *Runner) { r.settings.MaxFrequencies = n }
}

// WithExclusions excludes frequency ranges from the first iteration on.
func WithExclusions(ranges ...periodogram.Range) Option {
	return func(r *Runner) {
		r.settings.Exclusions = append(r.settings.Exclusions, ranges...)
	}
}

// WithFitOptions passes options to the fit backend.
func WithFitOptions(opts ...fit.Option) Option {
	return func(r *Runner) { r.fitOpts = append(r.fitOpts, opts...) }
}

// WithFitter replaces the backend selected by WithBackend.
func WithFitter(f fit.Fitter) Option {
	return func(r *Runner) { r.fitter = f }
}

// WithCustomFit replaces the fit backend by caller supplied hooks. multi may
// be nil, in which case joint refinement is disabled.
func WithCustomFit(single SingleFitFunc, multi MultiFitFunc) Option {
	return func(r *Runner) {
		r.single = single
		r.multi = multi
	}
}

// WithLogger sets the logger. Defaults to zap.L().
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}
