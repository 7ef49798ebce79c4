package prewhiten

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/periodogram"
)

// FitRequest is passed to a custom single fit.
type FitRequest struct {
	LightCurve     *lightcurve.LightCurve
	Periodogram    *periodogram.Periodogram
	FrequencyGuess float64
	AmplitudeGuess float64
}

// FitResponse is returned by a custom single fit. Amplitude, Frequency and
// Phase (cycles) and Residual are required; Extra is carried through to the
// Frequency record.
type FitResponse struct {
	Amplitude fit.Value
	Frequency fit.Value
	Phase     fit.Value
	Residual  *lightcurve.LightCurve
	Extra     map[string]float64
}

// SingleFitFunc replaces the single-frequency fit.
type SingleFitFunc func(ctx context.Context, req FitRequest) (FitResponse, error)

// MultiFitFunc replaces the joint refinement. It receives the original light
// curve and the current components in extraction order and must return the
// same number of components.
type MultiFitFunc func(ctx context.Context, original *lightcurve.LightCurve, comps []fit.Component) ([]fit.Component, error)

func (resp FitResponse) validate(lc *lightcurve.LightCurve) error {
	if resp.Residual == nil {
		return eris.Wrap(ErrInvalidHookResponse, "missing residual light curve")
	}
	if resp.Residual.Len() != lc.Len() {
		return eris.Wrapf(ErrInvalidHookResponse, "residual has %d samples, light curve %d",
			resp.Residual.Len(), lc.Len())
	}
	if !(resp.Frequency.Value > 0) {
		return eris.Wrapf(ErrInvalidHookResponse, "frequency must be > 0: %g", resp.Frequency.Value)
	}
	return nil
}
