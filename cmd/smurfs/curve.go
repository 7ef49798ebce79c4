package main

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/signal"
)

var defaultSignals = []string{"1:1.7:0.2", "0.4:4.2:0.7"}

// curveFlags describe a synthetic light curve.
type curveFlags struct {
	signals []string
	noise   float64
	span    float64
	cadence float64
	jitter  float64
	seed    int64
}

func (f *curveFlags) register(cmd *cobra.Command, withSignals bool) {
	if withSignals {
		cmd.Flags().StringSliceVar(&f.signals, "signal", defaultSignals, "component as amp:freq[:phase], repeatable")
		cmd.Flags().Float64Var(&f.noise, "noise", 0.01, "Gaussian noise sigma")
	}
	cmd.Flags().Float64Var(&f.span, "span", 30, "observation length in days")
	cmd.Flags().Float64Var(&f.cadence, "cadence", 0.02, "sampling interval in days")
	cmd.Flags().Float64Var(&f.jitter, "jitter", 0, "time stamp jitter as a fraction of the cadence, in [0, 0.5)")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random seed for noise and jitter")
}

func (f *curveFlags) generator(seed int64) *signal.Generator {
	return signal.NewGenerator(
		signal.WithCadence(f.cadence),
		signal.WithJitter(f.jitter),
		signal.WithSeed(seed),
	)
}

func (f *curveFlags) lightCurve(seed int64) (*lightcurve.LightCurve, error) {
	comps, err := parseSignals(f.signals)
	if err != nil {
		return nil, err
	}
	return f.generator(seed).LightCurve(f.span, f.noise, comps...)
}

func parseSignals(specs []string) ([]signal.Sinusoid, error) {
	out := make([]signal.Sinusoid, 0, len(specs))
	for _, spec := range specs {
		s, err := parseSignal(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// parseSignal reads amp:freq[:phase].
func parseSignal(spec string) (signal.Sinusoid, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return signal.Sinusoid{}, eris.Errorf("signal %q: want amp:freq[:phase]", spec)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return signal.Sinusoid{}, eris.Wrapf(err, "signal %q", spec)
		}
		vals[i] = v
	}
	if !(vals[1] > 0) {
		return signal.Sinusoid{}, eris.Errorf("signal %q: frequency must be > 0", spec)
	}
	return signal.Sinusoid{Amplitude: vals[0], Frequency: vals[1], Phase: signal.WrapPhase(vals[2])}, nil
}
