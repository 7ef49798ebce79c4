package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/cwbudde/algo-smurfs/prewhiten"
)

func printResult(w io.Writer, res *prewhiten.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Name\tFrequency [c/d]\tAmplitude\tPhase\tSNR\tSignificant\n"); err != nil {
		return eris.Wrap(err, "write header")
	}
	if _, err := fmt.Fprintf(tw, "----\t---------------\t---------\t-----\t---\t-----------\n"); err != nil {
		return eris.Wrap(err, "write header")
	}

	for _, row := range res.Rows() {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%t\n",
			row.Label,
			row.Frequency,
			row.Amplitude,
			row.Phase,
			row.SNR,
			row.Significant,
		); err != nil {
			return eris.Wrap(err, "write row")
		}
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "flush output")
	}

	st := res.Statistics
	_, err := fmt.Fprintf(w, "\nstop: %s  samples: %d  length: %.2f d  nyquist: %.3f c/d  duty cycle: %.3f  iterations: %d  rejected: %d\n",
		res.Stop, st.Samples, st.ObservationLength, st.Nyquist, st.DutyCycle, st.Iterations, st.Rejections)
	return err
}
