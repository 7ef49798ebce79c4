package periodogram

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/cwbudde/algo-smurfs/lightcurve"
)

// Periodogram is an amplitude spectrum on an ascending frequency grid.
//
// Values are never mutated after Compute returns.
type Periodogram struct {
	Frequency      []float64 // c/d
	Amplitude      []float64 // flux units
	Nyquist        float64   // c/d, of the source light curve
	SamplesPerPeak int
	AboveNyquist   bool // the requested FMax exceeded the Nyquist frequency
}

// grid describes the uniform frequency grid f_k = f0 + k*df, k in [0, n).
type grid struct {
	f0 float64
	df float64
	n  int
}

func (g grid) at(k int) float64 {
	return g.f0 + float64(k)*g.df
}

// Compute evaluates the Lomb-Scargle amplitude spectrum of lc.
//
// The grid spacing is 1/(baseline*SamplesPerPeak). The first bin is dropped
// and bins inside any exclusion range are removed.
func Compute(lc *lightcurve.LightCurve, opts ...Option) (*Periodogram, error) {
	cfg := ApplyOptions(opts...)
	g, err := frequencyGrid(lc, cfg)
	if err != nil {
		return nil, err
	}

	t, y := prepare(lc)
	sm, err := evaluate(cfg.Method, t, y, g)
	if err != nil {
		return nil, err
	}
	amp := amplitudes(sm)

	return assemble(lc, cfg, g, amp)
}

func frequencyGrid(lc *lightcurve.LightCurve, cfg Config) (grid, error) {
	if lc.Len() == 0 {
		return grid{}, lightcurve.ErrEmpty
	}
	baseline := lc.Baseline()
	if lc.Len() < 3 || baseline <= 0 {
		return grid{}, eris.Wrapf(lightcurve.ErrTooFewSamples, "samples=%d baseline=%g", lc.Len(), baseline)
	}

	fMax := lc.Nyquist()
	if cfg.HasFMax {
		fMax = cfg.FMax
	}
	fMin := cfg.FMin
	if math.IsNaN(fMin) || math.IsNaN(fMax) || math.IsInf(fMax, 0) || fMin < 0 || fMin > fMax {
		return grid{}, eris.Wrapf(ErrInvalidRange, "f_min=%g f_max=%g", fMin, fMax)
	}

	spp := cfg.SamplesPerPeak
	if spp <= 0 {
		spp = DefaultSamplesPerPeak
	}
	df := 1 / (baseline * float64(spp))
	n := 1 + int(math.Round((fMax-fMin)/df))

	return grid{f0: fMin, df: df, n: n}, nil
}

// prepare shifts time to start at zero and removes the mean flux.
func prepare(lc *lightcurve.LightCurve) (t, y []float64) {
	t = make([]float64, lc.Len())
	y = make([]float64, lc.Len())
	mean := lc.Mean()
	for i := range t {
		t[i] = lc.Time[i] - lc.Time[0]
		y[i] = lc.Flux[i] - mean
	}
	return t, y
}

func evaluate(method Method, t, y []float64, g grid) (sums, error) {
	switch method {
	case MethodFast:
		return fastSums(t, y, g)
	case MethodDirect:
		return directSums(t, y, g), nil
	default:
		return sums{}, eris.Wrapf(ErrUnknownMethod, "%d", int(method))
	}
}

func assemble(lc *lightcurve.LightCurve, cfg Config, g grid, amp []float64) (*Periodogram, error) {
	nyq := lc.Nyquist()
	p := &Periodogram{
		Frequency:      make([]float64, 0, g.n),
		Amplitude:      make([]float64, 0, g.n),
		Nyquist:        nyq,
		SamplesPerPeak: cfg.SamplesPerPeak,
		AboveNyquist:   cfg.HasFMax && cfg.FMax > nyq,
	}
	for k := 1; k < g.n; k++ {
		f := g.at(k)
		if excluded(f, cfg.Exclusions) {
			continue
		}
		p.Frequency = append(p.Frequency, f)
		p.Amplitude = append(p.Amplitude, amp[k])
	}
	if len(p.Frequency) == 0 {
		return nil, eris.Wrapf(ErrEmptyPeriodogram, "grid=%d exclusions=%d", g.n, len(cfg.Exclusions))
	}
	return p, nil
}

// Len returns the number of bins.
func (p *Periodogram) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Frequency)
}

// MaxIndex returns the index of the largest amplitude, or -1 when empty.
// Ties resolve to the lowest index.
func (p *Periodogram) MaxIndex() int {
	if p.Len() == 0 {
		return -1
	}
	best := 0
	for i, a := range p.Amplitude {
		if a > p.Amplitude[best] {
			best = i
		}
	}
	return best
}

// MaxAmplitude returns the largest amplitude, or 0 when empty.
func (p *Periodogram) MaxAmplitude() float64 {
	i := p.MaxIndex()
	if i < 0 {
		return 0
	}
	return p.Amplitude[i]
}

// FrequencyAtMax returns the frequency of the largest amplitude, or 0 when
// empty.
func (p *Periodogram) FrequencyAtMax() float64 {
	i := p.MaxIndex()
	if i < 0 {
		return 0
	}
	return p.Frequency[i]
}

// MaxIn returns the largest amplitude among bins with lo <= f <= hi. ok is
// false when no bin lies in the interval.
func (p *Periodogram) MaxIn(lo, hi float64) (amp float64, ok bool) {
	if p == nil {
		return 0, false
	}
	for i, f := range p.Frequency {
		if f < lo || f > hi {
			continue
		}
		if !ok || p.Amplitude[i] > amp {
			amp = p.Amplitude[i]
			ok = true
		}
	}
	return amp, ok
}
