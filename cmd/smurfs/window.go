package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/periodogram"
)

var (
	windowCurve curveFlags
	windowPeaks int
	windowFMax  float64
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Print the strongest peaks of the spectral window of a sampling pattern",
	Long:  "Every peak of a data periodogram is accompanied by aliases at the spacing of the spectral window peaks. Gaps and irregular sampling show up here first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		times, err := windowCurve.generator(windowCurve.seed).Times(windowCurve.span)
		if err != nil {
			return eris.Wrap(err, "sampling")
		}
		lc, err := lightcurve.New(times, make([]float64, len(times)), nil)
		if err != nil {
			return err
		}

		opts := []periodogram.Option{periodogram.WithSamplesPerPeak(cfg.Run.SamplesPerPeak)}
		if windowFMax > 0 {
			opts = append(opts, periodogram.WithMaxFrequency(windowFMax))
		}
		w, err := periodogram.SpectralWindow(lc, opts...)
		if err != nil {
			return eris.Wrap(err, "spectral window")
		}
		return printWindow(cmd.OutOrStdout(), lc, localMaxima(w, windowPeaks))
	},
}

type windowPeak struct {
	frequency float64
	amplitude float64
}

// localMaxima returns the n largest strict local maxima of p.
func localMaxima(p *periodogram.Periodogram, n int) []windowPeak {
	var out []windowPeak
	a := p.Amplitude
	for k := 1; k+1 < len(a); k++ {
		if a[k] > a[k-1] && a[k] >= a[k+1] {
			out = append(out, windowPeak{frequency: p.Frequency[k], amplitude: a[k]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].amplitude > out[j].amplitude })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func printWindow(w io.Writer, lc *lightcurve.LightCurve, peaks []windowPeak) error {
	if _, err := fmt.Fprintf(w, "samples: %d  length: %.2f d  nyquist: %.3f c/d  duty cycle: %.3f\n\n",
		lc.Len(), lc.Baseline(), lc.Nyquist(), lc.DutyCycle()); err != nil {
		return eris.Wrap(err, "write summary")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Rank\tFrequency [c/d]\tPeriod [d]\tAmplitude\n"); err != nil {
		return eris.Wrap(err, "write header")
	}
	if _, err := fmt.Fprintf(tw, "----\t---------------\t----------\t---------\n"); err != nil {
		return eris.Wrap(err, "write header")
	}
	for i, pk := range peaks {
		if _, err := fmt.Fprintf(tw, "%d\t%.5f\t%.5f\t%.4f\n", i+1, pk.frequency, 1/pk.frequency, pk.amplitude); err != nil {
			return eris.Wrap(err, "write row")
		}
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "flush output")
	}
	return nil
}

func init() {
	windowCurve.register(windowCmd, false)
	windowCmd.Flags().IntVar(&windowPeaks, "peaks", 10, "number of peaks to print")
	windowCmd.Flags().Float64Var(&windowFMax, "fmax", 0, "upper frequency limit in c/d, 0 for Nyquist")
	rootCmd.AddCommand(windowCmd)
}
