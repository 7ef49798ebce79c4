package lightcurve

import (
	"math"

	"github.com/rotisserie/eris"
)

// Fold returns lc phase-folded on period around the epoch t0. Times of the
// result are offsets from the nearest epoch in days, in [-period/2, period/2),
// and the samples are sorted by that offset.
func (lc *LightCurve) Fold(period, t0 float64) (*LightCurve, error) {
	if lc.Len() == 0 {
		return nil, ErrEmpty
	}
	if !(period > 0) || math.IsInf(period, 0) || !finite(t0) {
		return nil, eris.Wrapf(ErrInvalidPeriod, "period=%g t0=%g", period, t0)
	}

	half := period / 2
	offset := make([]float64, lc.Len())
	for i, t := range lc.Time {
		d := math.Mod(t-t0+half, period)
		if d < 0 {
			d += period
		}
		offset[i] = d - half
	}
	return New(offset, lc.Flux, lc.FluxErr)
}
