package main

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-smurfs/prewhiten"
)

// registerRunFlags adds the flags that override run.* settings.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("snr", 0, "significance threshold (overrides run.snr_threshold)")
	cmd.Flags().Float64("window", 0, "SNR window width in c/d (overrides run.window_size)")
	cmd.Flags().Float64("fmin", 0, "lower frequency limit in c/d")
	cmd.Flags().Float64("fmax", 0, "upper frequency limit in c/d, 0 for Nyquist")
	cmd.Flags().String("backend", "", "fit backend: staged or least_squares")
	cmd.Flags().String("method", "", "periodogram method: direct or fast")
	cmd.Flags().Int("max-frequencies", 0, "stop after this many components, 0 for no limit")
	cmd.Flags().Int("extend", 0, "insignificant peaks still extracted before stopping")
	cmd.Flags().Bool("skip-similar", false, "exclude regions of stuck frequencies instead of stopping")
}

// runOptions merges the loaded config with changed flags.
func runOptions(cmd *cobra.Command) ([]prewhiten.Option, error) {
	rc := cfg.Run
	fl := cmd.Flags()

	if fl.Changed("snr") {
		rc.SNRThreshold, _ = fl.GetFloat64("snr")
	}
	if fl.Changed("window") {
		rc.WindowSize, _ = fl.GetFloat64("window")
	}
	if fl.Changed("fmin") {
		rc.FMin, _ = fl.GetFloat64("fmin")
	}
	if fl.Changed("fmax") {
		rc.FMax, _ = fl.GetFloat64("fmax")
	}
	if fl.Changed("backend") {
		rc.FitBackend, _ = fl.GetString("backend")
	}
	if fl.Changed("method") {
		rc.PeriodogramMethod, _ = fl.GetString("method")
	}
	if fl.Changed("max-frequencies") {
		rc.MaxFrequencies, _ = fl.GetInt("max-frequencies")
	}
	if fl.Changed("extend") {
		rc.ExtendFrequencies, _ = fl.GetInt("extend")
	}
	if fl.Changed("skip-similar") {
		rc.SkipSimilar, _ = fl.GetBool("skip-similar")
	}
	return rc.Options()
}
