// Command smurfs extracts frequencies from synthetic light curves by
// iterative pre-whitening.
//
// Usage:
//
//	smurfs run    [flags]   extract from one synthetic light curve
//	smurfs batch  [flags]   extract from many independently seeded curves
//	smurfs window [flags]   print the strongest spectral window peaks
//
// Settings are read from ./smurfs.yaml and SMURFS_* environment variables;
// flags override both.
//
// Examples:
//
//	smurfs run --signal 1:1.7:0.2 --signal 0.4:4.2 --noise 0.02
//	smurfs run --backend least_squares --max-frequencies 5
//	smurfs batch --targets 16 --concurrency 4
//	smurfs window --span 60 --cadence 0.02 --jitter 0.3
package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "smurfs",
	Short: "Iterative pre-whitening of light curves",
	Long:  "Finds sinusoidal components of a light curve one at a time: periodogram, peak significance, non-linear fit, subtraction, joint refit.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
