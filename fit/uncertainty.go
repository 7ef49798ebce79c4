package fit

import (
	"math"

	"github.com/cwbudde/algo-smurfs/lightcurve"
)

// MontgomeryODonoghue returns the closed-form one-sigma uncertainties of
// amplitude, frequency and phase (cycles) of a sinusoid of amplitude amp
// fitted to lc (Montgomery & O'Donoghue 1999):
//
//	sigma_a   = sqrt(2/N) * sigma_m
//	sigma_f   = sqrt(6/N) * sigma_m / (pi * T * a)
//	sigma_phi = sqrt(2/N) * sigma_m / (2 * pi * a)
//
// sigma_m is the population standard deviation of the flux and T the time
// baseline. Frequency and phase errors are +Inf for a zero amplitude.
func MontgomeryODonoghue(lc *lightcurve.LightCurve, amp float64) (sigmaAmp, sigmaFreq, sigmaPhase float64) {
	n := float64(lc.Len())
	if n == 0 {
		return math.Inf(1), math.Inf(1), math.Inf(1)
	}
	sigmaM := lc.Std()
	t := lc.Baseline()
	a := math.Abs(amp)

	sigmaAmp = math.Sqrt(2/n) * sigmaM
	if a == 0 || t == 0 {
		return sigmaAmp, math.Inf(1), math.Inf(1)
	}
	sigmaFreq = math.Sqrt(6/n) / (math.Pi * t) * sigmaM / a
	sigmaPhase = math.Sqrt(2/n) * sigmaM / (2 * math.Pi * a)
	return sigmaAmp, sigmaFreq, sigmaPhase
}

func moComponent(lc *lightcurve.LightCurve, amp, freq, phase float64) Component {
	sa, sf, sp := MontgomeryODonoghue(lc, amp)
	return Component{
		Amplitude: Value{Value: amp, Err: sa},
		Frequency: Value{Value: freq, Err: sf},
		Phase:     Value{Value: phase, Err: sp},
	}
}
