// Package config loads command line configuration from smurfs.yaml and
// SMURFS_ environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/periodogram"
	"github.com/cwbudde/algo-smurfs/prewhiten"
)

// Config holds the full application configuration.
type Config struct {
	Run   RunConfig   `yaml:"run" mapstructure:"run"`
	Batch BatchConfig `yaml:"batch" mapstructure:"batch"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// RunConfig holds the extraction settings.
type RunConfig struct {
	SNRThreshold      float64 `yaml:"snr_threshold" mapstructure:"snr_threshold"`
	WindowSize        float64 `yaml:"window_size" mapstructure:"window_size"`
	FMin              float64 `yaml:"f_min" mapstructure:"f_min"`
	FMax              float64 `yaml:"f_max" mapstructure:"f_max"` // 0 selects the Nyquist frequency
	SkipSimilar       bool    `yaml:"skip_similar" mapstructure:"skip_similar"`
	SimilarCancel     bool    `yaml:"similar_cancel" mapstructure:"similar_cancel"`
	ExtendFrequencies int     `yaml:"extend_frequencies" mapstructure:"extend_frequencies"`
	ImproveFit        bool    `yaml:"improve_fit" mapstructure:"improve_fit"`
	FitBackend        string  `yaml:"fit_backend" mapstructure:"fit_backend"`
	DetectionRatio    float64 `yaml:"frequency_detection_ratio" mapstructure:"frequency_detection_ratio"`
	SamplesPerPeak    int     `yaml:"samples_per_peak" mapstructure:"samples_per_peak"`
	PeriodogramMethod string  `yaml:"periodogram_method" mapstructure:"periodogram_method"`
	MaxFrequencies    int     `yaml:"max_frequencies" mapstructure:"max_frequencies"`
	MaxEvaluations    int     `yaml:"max_evaluations" mapstructure:"max_evaluations"`
}

// BatchConfig configures batch runs.
type BatchConfig struct {
	Concurrency int  `yaml:"concurrency" mapstructure:"concurrency"`
	Improve     bool `yaml:"improve" mapstructure:"improve"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("smurfs")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SMURFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := prewhiten.DefaultSettings()
	v.SetDefault("run.snr_threshold", def.SNRThreshold)
	v.SetDefault("run.window_size", def.WindowSize)
	v.SetDefault("run.f_min", 0.0)
	v.SetDefault("run.f_max", 0.0)
	v.SetDefault("run.skip_similar", def.SkipSimilar)
	v.SetDefault("run.similar_cancel", def.SimilarCancel)
	v.SetDefault("run.extend_frequencies", def.ExtendFrequencies)
	v.SetDefault("run.improve_fit", def.ImproveFit)
	v.SetDefault("run.fit_backend", def.Backend.String())
	v.SetDefault("run.frequency_detection_ratio", def.DetectionRatio)
	v.SetDefault("run.samples_per_peak", def.SamplesPerPeak)
	v.SetDefault("run.periodogram_method", def.Method.String())
	v.SetDefault("run.max_frequencies", 0)
	v.SetDefault("run.max_evaluations", 0)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.improve", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Options converts the run settings into runner options.
func (rc RunConfig) Options() ([]prewhiten.Option, error) {
	backend, err := fit.ParseBackend(rc.FitBackend)
	if err != nil {
		return nil, eris.Wrap(err, "config: run.fit_backend")
	}
	method, err := periodogram.ParseMethod(rc.PeriodogramMethod)
	if err != nil {
		return nil, eris.Wrap(err, "config: run.periodogram_method")
	}

	opts := []prewhiten.Option{
		prewhiten.WithSNRThreshold(rc.SNRThreshold),
		prewhiten.WithWindowSize(rc.WindowSize),
		prewhiten.WithSkipSimilar(rc.SkipSimilar),
		prewhiten.WithSimilarCancel(rc.SimilarCancel),
		prewhiten.WithExtendFrequencies(rc.ExtendFrequencies),
		prewhiten.WithImproveFit(rc.ImproveFit),
		prewhiten.WithBackend(backend),
		prewhiten.WithDetectionRatio(rc.DetectionRatio),
		prewhiten.WithSamplesPerPeak(rc.SamplesPerPeak),
		prewhiten.WithMethod(method),
		prewhiten.WithMaxFrequencies(rc.MaxFrequencies),
	}
	if rc.FMax > 0 {
		opts = append(opts, prewhiten.WithFrequencyRange(rc.FMin, rc.FMax))
	} else {
		opts = append(opts, prewhiten.WithMinFrequency(rc.FMin))
	}
	if rc.MaxEvaluations > 0 {
		opts = append(opts, prewhiten.WithFitOptions(fit.WithMaxEvaluations(rc.MaxEvaluations)))
	}
	return opts, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
