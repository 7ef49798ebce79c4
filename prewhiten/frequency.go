package prewhiten

import (
	"fmt"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/periodogram"
	"github.com/cwbudde/algo-smurfs/signal"
)

// Frequency is one extracted component.
//
// SNR, Significant, the bracketing minima and ResidualNoise are fixed when
// the component is found; Amplitude, Frequency and Phase change only during
// joint refinement.
type Frequency struct {
	Index     int
	Amplitude fit.Value // mag
	Frequency fit.Value // c/d
	Phase     fit.Value // cycles in [0, 1)

	SNR         float64
	Significant bool

	// LowerMinimum and UpperMinimum index the periodogram the component was
	// found in; LowerFrequency and UpperFrequency are their frequencies.
	LowerMinimum   int
	UpperMinimum   int
	LowerFrequency float64
	UpperFrequency float64

	// ResidualNoise is the mean flux after subtracting this component alone.
	ResidualNoise float64
	LowConfidence bool

	// Extra holds auxiliary values returned by a custom fit hook.
	Extra map[string]float64
}

// Label returns the component name F<index>.
func (f *Frequency) Label() string {
	return fmt.Sprintf("F%d", f.Index)
}

// Component returns the fitted parameters.
func (f *Frequency) Component() fit.Component {
	return fit.Component{Amplitude: f.Amplitude, Frequency: f.Frequency, Phase: f.Phase}
}

// Sinusoid returns the fitted model term.
func (f *Frequency) Sinusoid() signal.Sinusoid {
	return f.Component().Sinusoid()
}

// Bounds returns the range between the bracketing minima.
func (f *Frequency) Bounds() periodogram.Range {
	return periodogram.Range{Low: f.LowerFrequency, High: f.UpperFrequency}
}

func (f *Frequency) String() string {
	return fmt.Sprintf("%s f=%s amp=%s phase=%s snr=%.2f", f.Label(), f.Frequency, f.Amplitude, f.Phase, f.SNR)
}
