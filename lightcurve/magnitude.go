package lightcurve

import (
	"math"

	"github.com/rotisserie/eris"
)

// magErrScale is 2.5/ln(10), the derivative factor of -2.5*log10(f).
var magErrScale = 2.5 / math.Ln10

// ToMagnitude converts a flux light curve into magnitudes normalised to a
// zero median.
//
// Non-positive fluxes are shifted by |2*min(flux)| first so the logarithm is
// defined. Flux errors, when present, are propagated linearly.
func ToMagnitude(lc *LightCurve) (*LightCurve, error) {
	if lc.Len() == 0 {
		return nil, ErrEmpty
	}

	minVal := lc.Flux[0]
	for _, v := range lc.Flux {
		minVal = math.Min(minVal, v)
	}
	offset := 0.0
	if minVal <= 0 {
		offset = math.Abs(2 * minVal)
		if offset == 0 {
			return nil, eris.Wrap(ErrNonFinite, "flux is zero everywhere at its minimum")
		}
	}

	mag := make([]float64, lc.Len())
	var magErr []float64
	if lc.FluxErr != nil {
		magErr = make([]float64, lc.Len())
	}
	for i, f := range lc.Flux {
		f += offset
		if f <= 0 {
			return nil, eris.Wrapf(ErrNonFinite, "non-positive shifted flux at sample %d", i)
		}
		mag[i] = -2.5 * math.Log10(f)
		if magErr != nil {
			magErr[i] = magErrScale * math.Abs(lc.FluxErr[i]) / f
		}
	}

	med := median(mag)
	for i := range mag {
		mag[i] -= med
	}

	return &LightCurve{Time: lc.Time, Flux: mag, FluxErr: magErr}, nil
}
