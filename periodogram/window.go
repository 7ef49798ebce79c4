package periodogram

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-smurfs/lightcurve"
)

// SpectralWindow returns the amplitude spectrum of the sampling pattern of
// lc, |(1/N) sum exp(2 pi i f t)|, on the same grid Compute would use.
//
// The window is 1 at f = 0 and shows the aliases every peak in the data
// periodogram inherits from the time sampling.
func SpectralWindow(lc *lightcurve.LightCurve, opts ...Option) (*Periodogram, error) {
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

	amp := make([]float64, g.n)
	vecmath.Magnitude(amp, sm.c, sm.s)

	return assemble(lc, cfg, g, amp)
}
