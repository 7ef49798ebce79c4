package signal

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-smurfs/lightcurve"
)

// Generator creates deterministic synthetic light curves.
type Generator struct {
	cadence float64
	jitter  float64
	seed    int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithCadence sets the nominal sampling interval in days.
func WithCadence(cadence float64) Option {
	return func(g *Generator) {
		if cadence > 0 {
			g.cadence = cadence
		}
	}
}

// WithJitter perturbs each time stamp uniformly by up to +/- jitter*cadence,
// producing irregular sampling. jitter must be in [0, 0.5).
func WithJitter(jitter float64) Option {
	return func(g *Generator) {
		if jitter >= 0 && jitter < 0.5 {
			g.jitter = jitter
		}
	}
}

// WithSeed sets the deterministic random seed for noise and jitter.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator returns a generator sampling every 0.02 d by default.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		cadence: 0.02,
		seed:    1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Times returns the sampling grid covering [0, span).
func (g *Generator) Times(span float64) ([]float64, error) {
	if span <= 0 {
		return nil, fmt.Errorf("signal: span must be > 0: %f", span)
	}
	n := int(span/g.cadence + 0.5)
	if n < 2 {
		return nil, fmt.Errorf("signal: span %f shorter than two cadences of %f", span, g.cadence)
	}
	rng := rand.New(rand.NewSource(g.seed ^ 0x5eed))
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * g.cadence
		if g.jitter > 0 {
			out[i] += (rng.Float64()*2 - 1) * g.jitter * g.cadence
		}
	}
	return out, nil
}

// LightCurve synthesises sum(comps) plus Gaussian noise of standard
// deviation noise over [0, span). Flux errors are set to noise when noise > 0.
func (g *Generator) LightCurve(span, noise float64, comps ...Sinusoid) (*lightcurve.LightCurve, error) {
	if noise < 0 {
		return nil, fmt.Errorf("signal: noise must be >= 0: %f", noise)
	}
	time, err := g.Times(span)
	if err != nil {
		return nil, err
	}

	flux := Sum(time, comps...)
	var fluxErr []float64
	if noise > 0 {
		rng := rand.New(rand.NewSource(g.seed))
		fluxErr = make([]float64, len(flux))
		for i := range flux {
			flux[i] += rng.NormFloat64() * noise
			fluxErr[i] = noise
		}
	}

	return lightcurve.New(time, flux, fluxErr)
}
