// Package lightcurve holds the time series value type consumed by the
// periodogram, fitting and pre-whitening packages.
//
// A LightCurve is an ordered sequence of (time, flux, flux error) samples.
// Times are in days, flux is in magnitudes normalised to a median near zero.
// Values are immutable: every operation that changes the flux returns a new
// LightCurve.
package lightcurve

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// LightCurve is an immutable, time-sorted brightness time series.
//
// FluxErr is nil when the provider supplied no per-point errors.
type LightCurve struct {
	Time    []float64
	Flux    []float64
	FluxErr []float64
}

// New validates and copies the samples and returns a time-sorted LightCurve.
//
// fluxErr may be nil. Samples with equal times keep their input order.
func New(time, flux, fluxErr []float64) (*LightCurve, error) {
	if len(time) == 0 || len(flux) == 0 {
		return nil, ErrEmpty
	}
	if len(time) != len(flux) {
		return nil, eris.Wrapf(ErrLengthMismatch, "time=%d flux=%d", len(time), len(flux))
	}
	if fluxErr != nil && len(fluxErr) != len(flux) {
		return nil, eris.Wrapf(ErrLengthMismatch, "flux=%d flux_err=%d", len(flux), len(fluxErr))
	}
	for i := range time {
		if !finite(time[i]) || !finite(flux[i]) {
			return nil, eris.Wrapf(ErrNonFinite, "sample %d", i)
		}
		if fluxErr != nil && !finite(fluxErr[i]) {
			return nil, eris.Wrapf(ErrNonFinite, "flux error %d", i)
		}
	}

	order := make([]int, len(time))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return time[order[a]] < time[order[b]] })

	lc := &LightCurve{
		Time: make([]float64, len(time)),
		Flux: make([]float64, len(flux)),
	}
	if fluxErr != nil {
		lc.FluxErr = make([]float64, len(fluxErr))
	}
	for dst, src := range order {
		lc.Time[dst] = time[src]
		lc.Flux[dst] = flux[src]
		if fluxErr != nil {
			lc.FluxErr[dst] = fluxErr[src]
		}
	}

	return lc, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Len returns the sample count.
func (lc *LightCurve) Len() int {
	if lc == nil {
		return 0
	}
	return len(lc.Time)
}

// HasFluxErr reports whether per-point flux errors are available.
func (lc *LightCurve) HasFluxErr() bool {
	return lc != nil && lc.FluxErr != nil
}

// WithFlux returns a new LightCurve sharing the time stamps and flux errors
// of lc with the given flux values.
func (lc *LightCurve) WithFlux(flux []float64) (*LightCurve, error) {
	if len(flux) != lc.Len() {
		return nil, eris.Wrapf(ErrLengthMismatch, "flux=%d samples=%d", len(flux), lc.Len())
	}
	out := &LightCurve{
		Time: lc.Time,
		Flux: append([]float64(nil), flux...),
	}
	if lc.FluxErr != nil {
		out.FluxErr = lc.FluxErr
	}
	return out, nil
}

// Subtract returns a new LightCurve whose flux is lc.Flux - model.
//
// model must be evaluated at lc.Time.
func (lc *LightCurve) Subtract(model []float64) (*LightCurve, error) {
	if len(model) != lc.Len() {
		return nil, eris.Wrapf(ErrLengthMismatch, "model=%d samples=%d", len(model), lc.Len())
	}
	flux := make([]float64, len(model))
	for i, m := range model {
		flux[i] = lc.Flux[i] - m
	}
	return &LightCurve{Time: lc.Time, Flux: flux, FluxErr: lc.FluxErr}, nil
}

// Baseline returns the observation length max(time) - min(time).
func (lc *LightCurve) Baseline() float64 {
	n := lc.Len()
	if n < 2 {
		return 0
	}
	return lc.Time[n-1] - lc.Time[0]
}

// Nyquist returns 1/(2*median(dt)). It returns 0 for fewer than two samples
// or when the median spacing is zero.
func (lc *LightCurve) Nyquist() float64 {
	diff := lc.diffs()
	if len(diff) == 0 {
		return 0
	}
	med := median(diff)
	if med <= 0 {
		return 0
	}
	return 1 / (2 * med)
}

// DutyCycle returns the fraction of the baseline covered by data.
//
// Gaps are spacings larger than median(dt) + 3*std(dt).
func (lc *LightCurve) DutyCycle() float64 {
	diff := lc.diffs()
	if len(diff) == 0 {
		return 0
	}
	med := median(diff)
	_, std := meanStd(diff)

	var total, gaps float64
	for _, d := range diff {
		total += d
		if d > med+3*std {
			gaps += d
		}
	}
	if total == 0 {
		return 0
	}
	return 1 - gaps/total
}

func (lc *LightCurve) diffs() []float64 {
	n := lc.Len()
	if n < 2 {
		return nil
	}
	out := make([]float64, n-1)
	for i := 1; i < n; i++ {
		out[i-1] = lc.Time[i] - lc.Time[i-1]
	}
	return out
}

// median returns the middle value of x, averaging the two central values for
// even lengths. x is not modified.
func median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
