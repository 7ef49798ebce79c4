// Package signal provides the sinusoid model used throughout pre-whitening
// and a deterministic generator for synthetic light curves.
//
// Phases are expressed in cycles and kept in [0, 1):
//
//	y(t) = A * sin(2*pi*(f*t + phase))
package signal

import (
	"math"
)

// Sinusoid is one periodic component.
type Sinusoid struct {
	Amplitude float64 // mag
	Frequency float64 // c/d
	Phase     float64 // cycles
}

// At evaluates the component at time t.
func (s Sinusoid) At(t float64) float64 {
	return s.Amplitude * math.Sin(2*math.Pi*(s.Frequency*t+s.Phase))
}

// Eval evaluates the component at every time stamp into a new slice.
func (s Sinusoid) Eval(time []float64) []float64 {
	out := make([]float64, len(time))
	s.AddTo(out, time)
	return out
}

// AddTo adds the component evaluated at time to dst.
func (s Sinusoid) AddTo(dst, time []float64) {
	for i, t := range time {
		dst[i] += s.At(t)
	}
}

// Sum evaluates the summed model of all components at every time stamp.
func Sum(time []float64, comps ...Sinusoid) []float64 {
	out := make([]float64, len(time))
	for _, c := range comps {
		c.AddTo(out, time)
	}
	return out
}

// WrapPhase maps a phase in cycles onto [0, 1).
func WrapPhase(phase float64) float64 {
	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		return phase
	}
	p := phase - math.Floor(phase)
	if p >= 1 {
		p = 0
	}
	return p
}

// PhaseDistance returns the circular distance between two phases in cycles,
// in [0, 0.5].
func PhaseDistance(a, b float64) float64 {
	d := math.Abs(WrapPhase(a) - WrapPhase(b))
	if d > 0.5 {
		d = 1 - d
	}
	return d
}

// RadiansToCycles converts a phase in radians to cycles wrapped into [0, 1).
func RadiansToCycles(rad float64) float64 {
	return WrapPhase(rad / (2 * math.Pi))
}

// CyclesToRadians converts a phase in cycles into radians in [0, 2*pi).
func CyclesToRadians(cycles float64) float64 {
	return WrapPhase(cycles) * 2 * math.Pi
}
