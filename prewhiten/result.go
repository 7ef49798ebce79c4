package prewhiten

import (
	"time"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/periodogram"
)

// StopReason tells why an extraction run ended.
type StopReason int

const (
	// StopInsignificant: an insignificant peak after the extension budget.
	StopInsignificant StopReason = iota
	// StopSimilar: the last ten frequencies collapsed onto one value.
	StopSimilar
	// StopMaxFrequencies: the configured component cap was reached.
	StopMaxFrequencies
	// StopExhausted: exclusions removed every periodogram bin.
	StopExhausted
	// StopInterrupted: the context was canceled.
	StopInterrupted
	// StopFailed: a single fit or a periodogram failed.
	StopFailed
)

func (s StopReason) String() string {
	switch s {
	case StopInsignificant:
		return "insignificant"
	case StopSimilar:
		return "similar"
	case StopMaxFrequencies:
		return "max_frequencies"
	case StopExhausted:
		return "exhausted"
	case StopInterrupted:
		return "interrupted"
	case StopFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Statistics summarises a run.
type Statistics struct {
	DutyCycle          float64
	Nyquist            float64 // c/d
	ObservationLength  float64 // d
	Samples            int
	Frequencies        int
	Significant        int
	Iterations         int
	Rejections         int
	RefinementsSkipped int
	Elapsed            time.Duration
}

// Result is the outcome of an extraction run.
type Result struct {
	// Frequencies in extraction order.
	Frequencies []*Frequency

	// Original is the analysed light curve; Residual is Original minus the
	// extracted model.
	Original            *lightcurve.LightCurve
	Residual            *lightcurve.LightCurve
	ResidualPeriodogram *periodogram.Periodogram

	// Exclusions is the final exclusion list, initial ranges first.
	Exclusions []periodogram.Range

	Stop       StopReason
	Settings   Settings
	Statistics Statistics
}

// Row is one line of the result table.
type Row struct {
	Index         int
	Label         string
	Frequency     fit.Value
	Amplitude     fit.Value
	Phase         fit.Value
	SNR           float64
	ResidualNoise float64
	Significant   bool
	Extra         map[string]float64
}

// Rows returns the result table in extraction order.
func (r *Result) Rows() []Row {
	rows := make([]Row, len(r.Frequencies))
	for i, f := range r.Frequencies {
		rows[i] = Row{
			Index:         f.Index,
			Label:         f.Label(),
			Frequency:     f.Frequency,
			Amplitude:     f.Amplitude,
			Phase:         f.Phase,
			SNR:           f.SNR,
			ResidualNoise: f.ResidualNoise,
			Significant:   f.Significant,
			Extra:         f.Extra,
		}
	}
	return rows
}

// Significant returns the significant components in extraction order.
func (r *Result) Significant() []*Frequency {
	var out []*Frequency
	for _, f := range r.Frequencies {
		if f.Significant {
			out = append(out, f)
		}
	}
	return out
}

// Components returns the fitted parameters of all components.
func (r *Result) Components() []fit.Component {
	out := make([]fit.Component, len(r.Frequencies))
	for i, f := range r.Frequencies {
		out[i] = f.Component()
	}
	return out
}

func (r *Result) statistics(lc *lightcurve.LightCurve, rc *RunContext, elapsed time.Duration) Statistics {
	return Statistics{
		DutyCycle:          lc.DutyCycle(),
		Nyquist:            lc.Nyquist(),
		ObservationLength:  lc.Baseline(),
		Samples:            lc.Len(),
		Frequencies:        len(r.Frequencies),
		Significant:        len(r.Significant()),
		Iterations:         rc.Iterations,
		Rejections:         rc.Rejections,
		RefinementsSkipped: rc.RefinementsSkipped,
		Elapsed:            elapsed,
	}
}
