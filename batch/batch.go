package batch

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/prewhiten"
)

// Input is one target of a batch.
type Input struct {
	Name       string
	LightCurve *lightcurve.LightCurve
}

// Outcome is the result of one target. Result may be set together with Err
// when the run stopped early.
type Outcome struct {
	RunID   uuid.UUID
	Index   int
	Name    string
	Result  *prewhiten.Result
	Err     error
	Elapsed time.Duration
}

// Sink collects outcomes from concurrent workers.
type Sink struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (s *Sink) add(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
}

// Outcomes returns a copy of the collected outcomes in input order.
func (s *Sink) Outcomes() []Outcome {
	s.mu.Lock()
	out := append([]Outcome(nil), s.outcomes...)
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Summary counts the collected outcomes.
type Summary struct {
	Targets     int
	Succeeded   int
	Failed      int
	Frequencies int
	Significant int
}

// Summary returns counts over the collected outcomes.
func (s *Sink) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Targets: len(s.outcomes)}
	for _, o := range s.outcomes {
		if o.Err != nil {
			sum.Failed++
		} else {
			sum.Succeeded++
		}
		if o.Result != nil {
			sum.Frequencies += len(o.Result.Frequencies)
			sum.Significant += len(o.Result.Significant())
		}
	}
	return sum
}

// Config controls a batch.
type Config struct {
	// Concurrency bounds the number of targets processed at once.
	// Zero selects GOMAXPROCS.
	Concurrency int
	// Improve refits every finished result jointly once more.
	Improve bool
	Runner  []prewhiten.Option
	Logger  *zap.Logger
}

// Option mutates a Config.
type Option func(*Config)

// WithConcurrency bounds the worker pool.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Concurrency = n
		}
	}
}

// WithRunnerOptions passes options to every extraction.
func WithRunnerOptions(opts ...prewhiten.Option) Option {
	return func(c *Config) { c.Runner = append(c.Runner, opts...) }
}

// WithImprove refits each result jointly after its run finished.
func WithImprove(improve bool) Option {
	return func(c *Config) { c.Improve = improve }
}

// WithLogger sets the logger. Defaults to zap.L().
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// runnerOptions returns a fresh option slice; workers must not share the
// backing array of cfg.Runner.
func (c Config) runnerOptions(logger *zap.Logger) []prewhiten.Option {
	opts := make([]prewhiten.Option, 0, len(c.Runner)+1)
	opts = append(opts, c.Runner...)
	return append(opts, prewhiten.WithLogger(logger))
}

// Run extracts frequencies from every input. Per-target failures are
// reported in the outcomes; the returned error is non-nil only for invalid
// runner options or a canceled context.
func Run(ctx context.Context, inputs []Input, opts ...Option) (*Sink, error) {
	cfg := Config{Concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}

	// Invalid runner options fail the whole batch.
	if _, err := prewhiten.NewRunner(cfg.runnerOptions(zap.NewNop())...); err != nil {
		return nil, eris.Wrap(err, "batch: runner options")
	}

	sink := &Sink{}
	if len(inputs) == 0 {
		cfg.Logger.Info("no targets to process")
		return sink, nil
	}

	cfg.Logger.Info("processing batch",
		zap.Int("targets", len(inputs)),
		zap.Int("concurrency", cfg.Concurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			sink.add(process(gctx, cfg, i, in))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sink, eris.Wrap(err, "batch processing")
	}

	sum := sink.Summary()
	cfg.Logger.Info("batch complete",
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Int("significant", sum.Significant))

	if err := ctx.Err(); err != nil {
		return sink, err
	}
	return sink, nil
}

func process(ctx context.Context, cfg Config, index int, in Input) Outcome {
	id := uuid.New()
	log := cfg.Logger.With(zap.String("target", in.Name), zap.String("run_id", id.String()))
	out := Outcome{RunID: id, Index: index, Name: in.Name}
	start := time.Now()

	if err := ctx.Err(); err != nil {
		out.Err = err
		out.Elapsed = time.Since(start)
		return out
	}
	if in.LightCurve == nil {
		out.Err = eris.Wrapf(lightcurve.ErrEmpty, "target %q has no light curve", in.Name)
		log.Error("extraction failed", zap.Error(out.Err))
		out.Elapsed = time.Since(start)
		return out
	}

	r, err := prewhiten.NewRunner(cfg.runnerOptions(log)...)
	if err != nil {
		out.Err = err
		out.Elapsed = time.Since(start)
		return out
	}

	res, err := r.Run(ctx, in.LightCurve)
	if err == nil && cfg.Improve && res != nil {
		res, err = r.ImproveResult(ctx, res)
	}
	out.Result, out.Err = res, err
	out.Elapsed = time.Since(start)

	if err != nil {
		log.Error("extraction failed", zap.Error(err))
	} else {
		log.Info("extraction complete",
			zap.Int("frequencies", len(res.Frequencies)),
			zap.Stringer("stop", res.Stop),
			zap.Duration("elapsed", out.Elapsed))
	}
	return out
}
