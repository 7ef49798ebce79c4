package periodogram

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Method selects how the Lomb-Scargle sums are evaluated.
type Method int

const (
	// MethodDirect evaluates the sums exactly.
	MethodDirect Method = iota
	// MethodFast approximates the sums with extirpolation and FFTs.
	MethodFast
)

// String returns the configuration name of m.
func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodFast:
		return "fast"
	default:
		return "unknown"
	}
}

// ParseMethod maps a configuration name onto a Method.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct":
		return MethodDirect, nil
	case "fast":
		return MethodFast, nil
	default:
		return 0, eris.Wrapf(ErrUnknownMethod, "%q", name)
	}
}

// DefaultSamplesPerPeak is the default oversampling of the frequency grid.
const DefaultSamplesPerPeak = 10

// Config controls periodogram computation.
type Config struct {
	FMin           float64
	FMax           float64
	HasFMax        bool // FMax defaults to the Nyquist frequency when unset
	Exclusions     []Range
	SamplesPerPeak int
	Method         Method
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the defaults: [0, Nyquist], 10 samples per peak,
// direct evaluation, no exclusions.
func DefaultConfig() Config {
	return Config{
		SamplesPerPeak: DefaultSamplesPerPeak,
		Method:         MethodDirect,
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithRange sets both frequency limits in c/d.
func WithRange(fMin, fMax float64) Option {
	return func(cfg *Config) {
		cfg.FMin = fMin
		cfg.FMax = fMax
		cfg.HasFMax = true
	}
}

// WithMinFrequency sets the lower frequency limit in c/d.
func WithMinFrequency(fMin float64) Option {
	return func(cfg *Config) {
		cfg.FMin = fMin
	}
}

// WithMaxFrequency sets the upper frequency limit in c/d.
func WithMaxFrequency(fMax float64) Option {
	return func(cfg *Config) {
		cfg.FMax = fMax
		cfg.HasFMax = true
	}
}

// WithExclusions appends frequency ranges whose bins are removed.
func WithExclusions(ranges ...Range) Option {
	return func(cfg *Config) {
		cfg.Exclusions = append(cfg.Exclusions, ranges...)
	}
}

// WithSamplesPerPeak sets the grid oversampling factor.
func WithSamplesPerPeak(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.SamplesPerPeak = n
		}
	}
}

// WithMethod selects the evaluation method.
func WithMethod(m Method) Option {
	return func(cfg *Config) {
		cfg.Method = m
	}
}
