package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/prewhiten"
)

var runCurve curveFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract frequencies from one synthetic light curve",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lc, err := runCurve.lightCurve(runCurve.seed)
		if err != nil {
			return eris.Wrap(err, "generate light curve")
		}
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}

		r, err := prewhiten.NewRunner(append(opts, prewhiten.WithLogger(zap.L()))...)
		if err != nil {
			return err
		}

		res, runErr := r.Run(ctx, lc)
		if res != nil {
			if err := printResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	runCurve.register(runCmd, true)
	registerRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
