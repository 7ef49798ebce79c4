package testutil

import (
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/signal"
)

// SyntheticCurve is the recipe of a synthetic test light curve.
type SyntheticCurve struct {
	Span    float64 // days
	Cadence float64 // days, 0 selects the generator default
	Jitter  float64 // fraction of the cadence
	Noise   float64 // Gaussian sigma
	Seed    int64
	Signals []signal.Sinusoid
}

// LightCurve builds the curve described by c and fails tb on error.
func (c SyntheticCurve) LightCurve(tb testing.TB) *lightcurve.LightCurve {
	tb.Helper()
	opts := []signal.Option{signal.WithSeed(c.Seed), signal.WithJitter(c.Jitter)}
	if c.Cadence > 0 {
		opts = append(opts, signal.WithCadence(c.Cadence))
	}
	lc, err := signal.NewGenerator(opts...).LightCurve(c.Span, c.Noise, c.Signals...)
	if err != nil {
		tb.Fatalf("synthetic light curve: %v", err)
	}
	return lc
}

// SineLightCurve is a shorthand for a noiseless, regularly sampled curve.
func SineLightCurve(tb testing.TB, span, cadence float64, comps ...signal.Sinusoid) *lightcurve.LightCurve {
	tb.Helper()
	return SyntheticCurve{Span: span, Cadence: cadence, Seed: 1, Signals: comps}.LightCurve(tb)
}

// DeterministicNoise generates Gaussian white noise with a fixed seed.
func DeterministicNoise(seed int64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.NormFloat64() * sigma
	}
	return out
}

// RegularTimes returns n time stamps spaced by cadence starting at zero.
func RegularTimes(n int, cadence float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * cadence
	}
	return out
}

// Constant returns a slice of length n filled with value.
func Constant(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}
