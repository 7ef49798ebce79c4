package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/batch"
)

var (
	batchCurve   curveFlags
	batchTargets int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract frequencies from many independently seeded light curves",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchTargets < 1 {
			return eris.Errorf("targets must be >= 1: %d", batchTargets)
		}
		inputs := make([]batch.Input, batchTargets)
		for i := range inputs {
			lc, err := batchCurve.lightCurve(batchCurve.seed + int64(i))
			if err != nil {
				return eris.Wrap(err, "generate light curve")
			}
			inputs[i] = batch.Input{Name: fmt.Sprintf("target-%03d", i), LightCurve: lc}
		}

		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		concurrency := cfg.Batch.Concurrency
		if cmd.Flags().Changed("concurrency") {
			concurrency, _ = cmd.Flags().GetInt("concurrency")
		}

		sink, runErr := batch.Run(ctx, inputs,
			batch.WithConcurrency(concurrency),
			batch.WithImprove(cfg.Batch.Improve),
			batch.WithRunnerOptions(opts...),
			batch.WithLogger(zap.L()),
		)
		if sink != nil {
			if err := printBatch(cmd, sink); err != nil {
				return err
			}
		}
		return runErr
	},
}

func printBatch(cmd *cobra.Command, sink *batch.Sink) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Target\tRun\tFrequencies\tSignificant\tStop\tElapsed\tError\n"); err != nil {
		return eris.Wrap(err, "write header")
	}
	for _, o := range sink.Outcomes() {
		var n, sig int
		stop, errText := "-", ""
		if o.Result != nil {
			n, sig = len(o.Result.Frequencies), len(o.Result.Significant())
			stop = o.Result.Stop.String()
		}
		if o.Err != nil {
			errText = o.Err.Error()
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			o.Name, o.RunID.String()[:8], n, sig, stop, o.Elapsed.Round(time.Millisecond), errText); err != nil {
			return eris.Wrap(err, "write row")
		}
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "flush output")
	}

	sum := sink.Summary()
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\n%d targets, %d succeeded, %d failed, %d significant frequencies\n",
		sum.Targets, sum.Succeeded, sum.Failed, sum.Significant)
	return err
}

func init() {
	batchCurve.register(batchCmd, true)
	registerRunFlags(batchCmd)
	batchCmd.Flags().IntVar(&batchTargets, "targets", 8, "number of light curves")
	batchCmd.Flags().Int("concurrency", 0, "parallel extractions (overrides batch.concurrency)")
	rootCmd.AddCommand(batchCmd)
}
