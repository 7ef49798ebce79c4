package prewhiten

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/internal/testutil"
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/periodogram"
	"github.com/cwbudde/algo-smurfs/signal"
)

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	r, err := NewRunner(append([]Option{WithLogger(zap.NewNop())}, opts...)...)
	require.NoError(t, err)
	return r
}

func shortCurve(t *testing.T, noise float64, comps ...signal.Sinusoid) *lightcurve.LightCurve {
	t.Helper()
	return testutil.SyntheticCurve{
		Span:    20,
		Cadence: 0.05,
		Noise:   noise,
		Seed:    11,
		Signals: comps,
	}.LightCurve(t)
}

// passThrough is a custom fit that reports a fixed frequency sequence and
// leaves the light curve untouched.
func passThrough(freq func(call int, req FitRequest) float64) (SingleFitFunc, *[]FitRequest) {
	var seen []FitRequest
	fn := func(_ context.Context, req FitRequest) (FitResponse, error) {
		seen = append(seen, req)
		return FitResponse{
			Amplitude: fit.Value{Value: req.AmplitudeGuess, Err: 0.01},
			Frequency: fit.Value{Value: freq(len(seen)-1, req), Err: 0.001},
			Phase:     fit.Value{Value: 0.25, Err: 0.01},
			Residual:  req.LightCurve,
		}, nil
	}
	return fn, &seen
}

func TestRunExtractsTwoSinusoids(t *testing.T) {
	lc := testutil.SyntheticCurve{
		Span:    100,
		Cadence: 0.02,
		Noise:   0.01,
		Seed:    5,
		Signals: []signal.Sinusoid{
			{Amplitude: 0.6, Frequency: 0.2},
			{Amplitude: 0.3, Frequency: 3.0, Phase: 0.1},
		},
	}.LightCurve(t)

	r := newTestRunner(t, WithSNRThreshold(4), WithWindowSize(2))
	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)

	assert.Equal(t, StopInsignificant, res.Stop)
	sig := res.Significant()
	require.Len(t, sig, 2)
	assert.InEpsilon(t, 0.6, sig[0].Amplitude.Value, 0.1)
	assert.InEpsilon(t, 0.2, sig[0].Frequency.Value, 0.01)
	assert.InEpsilon(t, 0.3, sig[1].Amplitude.Value, 0.1)
	assert.InEpsilon(t, 3.0, sig[1].Frequency.Value, 0.01)

	for i, f := range res.Frequencies {
		assert.Equal(t, i, f.Index)
		assert.GreaterOrEqual(t, f.Phase.Value, 0.0)
		assert.Less(t, f.Phase.Value, 1.0)
		assert.Greater(t, f.Amplitude.Err, 0.0)
	}

	// The residual is the original minus the full model.
	model := signal.Sum(lc.Time, fit.Sinusoids(res.Components())...)
	want := make([]float64, lc.Len())
	for i := range want {
		want[i] = lc.Flux[i] - model[i]
	}
	testutil.RequireSliceNearlyEqual(t, res.Residual.Flux, want, 1e-12)

	require.NotNil(t, res.ResidualPeriodogram)
	assert.Less(t, res.ResidualPeriodogram.MaxAmplitude(), 0.01)

	assert.Equal(t, lc.Len(), res.Statistics.Samples)
	assert.Equal(t, 2, res.Statistics.Significant)
	assert.Equal(t, 3, res.Statistics.Iterations)
	assert.InDelta(t, lc.Nyquist(), res.Statistics.Nyquist, 1e-9)
}

func TestRunRecoversComponents(t *testing.T) {
	truth := []signal.Sinusoid{
		{Amplitude: 1.0, Frequency: 2.3, Phase: 0.1},
		{Amplitude: 0.6, Frequency: 5.1, Phase: 0.4},
		{Amplitude: 0.3, Frequency: 7.7, Phase: 0.8},
	}
	lc := shortCurve(t, 0.02, truth...)

	for _, backend := range []fit.Backend{fit.BackendLeastSquares, fit.BackendStaged} {
		t.Run(backend.String(), func(t *testing.T) {
			r := newTestRunner(t, WithBackend(backend), WithMaxFrequencies(len(truth)))
			res, err := r.Run(context.Background(), lc)
			require.NoError(t, err)
			assert.Equal(t, StopMaxFrequencies, res.Stop)
			require.Len(t, res.Frequencies, len(truth))

			for i, want := range truth {
				got := res.Frequencies[i]
				assert.True(t, got.Significant, "F%d significant", i)
				assert.InEpsilon(t, want.Amplitude, got.Amplitude.Value, 0.1, "F%d amplitude", i)
				assert.InEpsilon(t, want.Frequency, got.Frequency.Value, 0.01, "F%d frequency", i)
				assert.Less(t, signal.PhaseDistance(got.Phase.Value, want.Phase), 0.05, "F%d phase", i)
			}
		})
	}
}

func TestRunStopsOnSimilarFrequencies(t *testing.T) {
	lc := shortCurve(t, 0.01, signal.Sinusoid{Amplitude: 1, Frequency: 1})
	single, seen := passThrough(func(call int, _ FitRequest) float64 {
		return 1 + 0.001*float64(call%3)
	})

	r := newTestRunner(t, WithCustomFit(single, nil), WithSimilarCancel(true))
	assert.False(t, r.Settings().ImproveFit, "refinement needs a joint fit hook")

	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)
	assert.Equal(t, StopSimilar, res.Stop)
	assert.Len(t, res.Frequencies, similarityCount+1)
	assert.Len(t, *seen, similarityCount+1)
	assert.Empty(t, res.Exclusions)
}

func TestRunSkipsSimilarRegion(t *testing.T) {
	lc := shortCurve(t, 0.01,
		signal.Sinusoid{Amplitude: 1, Frequency: 1},
		signal.Sinusoid{Amplitude: 0.8, Frequency: 4, Phase: 0.3},
	)
	single, seen := passThrough(func(call int, req FitRequest) float64 {
		if call%2 == 0 {
			return req.FrequencyGuess + 0.01
		}
		return req.FrequencyGuess - 0.01
	})

	initial := periodogram.Range{Low: 6, High: 7}
	r := newTestRunner(t,
		WithCustomFit(single, nil),
		WithSkipSimilar(true),
		WithExclusions(initial),
		WithMaxFrequencies(similarityCount+2),
	)
	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)
	assert.Equal(t, StopMaxFrequencies, res.Stop)
	require.Len(t, res.Frequencies, similarityCount+2)

	require.Len(t, res.Exclusions, 2)
	assert.Equal(t, initial, res.Exclusions[0])
	assert.True(t, res.Exclusions[1].Contains(1))
	assert.InDelta(t, 0.2, res.Exclusions[1].Width(), 0.01)

	// The last candidate comes from the second sinusoid.
	assert.InDelta(t, 4, (*seen)[similarityCount+1].FrequencyGuess, 0.02)

	// Exclusions persist: no periodogram after a range was added contains it.
	for i, req := range *seen {
		for _, f := range req.Periodogram.Frequency {
			require.False(t, initial.Contains(f), "call %d contains excluded %g", i, f)
			if i > similarityCount {
				require.False(t, res.Exclusions[1].Contains(f), "call %d contains excluded %g", i, f)
			}
		}
	}
}

func TestRunRejectsUncorroboratedCandidate(t *testing.T) {
	lc := shortCurve(t, 0.01,
		signal.Sinusoid{Amplitude: 1, Frequency: 1},
		signal.Sinusoid{Amplitude: 0.5, Frequency: 3, Phase: 0.2},
	)
	ls := fit.NewLeastSquares(fit.WithLogger(zap.NewNop()))
	single := func(ctx context.Context, req FitRequest) (FitResponse, error) {
		res, err := ls.FitSingle(ctx, req.LightCurve, req.FrequencyGuess, req.AmplitudeGuess)
		if err != nil {
			return FitResponse{}, err
		}
		amp := res.Amplitude
		if math.Abs(req.FrequencyGuess-1) < 0.1 {
			amp.Value *= 0.05
		}
		return FitResponse{
			Amplitude: amp,
			Frequency: res.Frequency,
			Phase:     res.Phase,
			Residual:  res.Residual,
		}, nil
	}

	r := newTestRunner(t, WithCustomFit(single, nil), WithDetectionRatio(0.5), WithMaxFrequencies(1))
	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Statistics.Rejections)
	require.Len(t, res.Frequencies, 1)
	assert.InDelta(t, 3, res.Frequencies[0].Frequency.Value, 0.01)
	require.Len(t, res.Exclusions, 1)
	assert.True(t, res.Exclusions[0].Contains(1))
	assert.Equal(t, 0, res.Frequencies[0].Index)
}

func TestRunExtendsPastInsignificantPeaks(t *testing.T) {
	lc := shortCurve(t, 0.05, signal.Sinusoid{Amplitude: 0.5, Frequency: 2.5, Phase: 0.6})

	r := newTestRunner(t,
		WithBackend(fit.BackendLeastSquares),
		WithSNRThreshold(6),
		WithExtendFrequencies(2),
	)
	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)

	assert.Equal(t, StopInsignificant, res.Stop)
	require.Len(t, res.Frequencies, 3)
	assert.True(t, res.Frequencies[0].Significant)
	assert.False(t, res.Frequencies[1].Significant)
	assert.False(t, res.Frequencies[2].Significant)
	assert.Len(t, res.Significant(), 1)
	assert.Len(t, res.CombinationInput().IDs, 1)
}

func TestRunCanceledKeepsPartialResult(t *testing.T) {
	lc := shortCurve(t, 0.01,
		signal.Sinusoid{Amplitude: 1, Frequency: 1},
		signal.Sinusoid{Amplitude: 0.5, Frequency: 3},
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ls := fit.NewLeastSquares(fit.WithLogger(zap.NewNop()))
	single := func(ctx context.Context, req FitRequest) (FitResponse, error) {
		res, err := ls.FitSingle(ctx, req.LightCurve, req.FrequencyGuess, req.AmplitudeGuess)
		if err != nil {
			return FitResponse{}, err
		}
		cancel()
		return FitResponse{Amplitude: res.Amplitude, Frequency: res.Frequency, Phase: res.Phase, Residual: res.Residual}, nil
	}

	r := newTestRunner(t, WithCustomFit(single, nil))
	res, err := r.Run(ctx, lc)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, StopInterrupted, res.Stop)
	require.Len(t, res.Frequencies, 1)
	assert.InDelta(t, 1, res.Frequencies[0].Frequency.Value, 0.01)
}

func TestRunHookExtraCarried(t *testing.T) {
	lc := shortCurve(t, 0.01, signal.Sinusoid{Amplitude: 1, Frequency: 1})
	single := func(_ context.Context, req FitRequest) (FitResponse, error) {
		return FitResponse{
			Amplitude: fit.Value{Value: req.AmplitudeGuess},
			Frequency: fit.Value{Value: req.FrequencyGuess},
			Phase:     fit.Value{Value: 1.25},
			Residual:  req.LightCurve,
			Extra:     map[string]float64{"chi2": 1.5},
		}, nil
	}

	r := newTestRunner(t, WithCustomFit(single, nil), WithMaxFrequencies(1))
	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)
	require.Len(t, res.Frequencies, 1)

	f := res.Frequencies[0]
	assert.Equal(t, 1.5, f.Extra["chi2"])
	assert.InDelta(t, 0.25, f.Phase.Value, 1e-12)

	rows := res.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "F0", rows[0].Label)
	assert.Equal(t, 1.5, rows[0].Extra["chi2"])
}

func TestRunInvalidHookResponse(t *testing.T) {
	lc := shortCurve(t, 0.01, signal.Sinusoid{Amplitude: 1, Frequency: 1})
	single := func(_ context.Context, req FitRequest) (FitResponse, error) {
		return FitResponse{Frequency: fit.Value{Value: req.FrequencyGuess}}, nil
	}

	r := newTestRunner(t, WithCustomFit(single, nil))
	res, err := r.Run(context.Background(), lc)
	require.ErrorIs(t, err, ErrInvalidHookResponse)
	require.NotNil(t, res)
	assert.Equal(t, StopFailed, res.Stop)
	assert.Empty(t, res.Frequencies)
}

func TestRunJointHookFailureKeepsValues(t *testing.T) {
	lc := shortCurve(t, 0.01, signal.Sinusoid{Amplitude: 1, Frequency: 1, Phase: 0.3})
	ls := fit.NewLeastSquares(fit.WithLogger(zap.NewNop()))
	single := func(ctx context.Context, req FitRequest) (FitResponse, error) {
		res, err := ls.FitSingle(ctx, req.LightCurve, req.FrequencyGuess, req.AmplitudeGuess)
		if err != nil {
			return FitResponse{}, err
		}
		return FitResponse{Amplitude: res.Amplitude, Frequency: res.Frequency, Phase: res.Phase, Residual: res.Residual}, nil
	}
	multi := func(context.Context, *lightcurve.LightCurve, []fit.Component) ([]fit.Component, error) {
		return nil, nil
	}

	r := newTestRunner(t, WithCustomFit(single, multi), WithMaxFrequencies(1))
	assert.True(t, r.Settings().ImproveFit)

	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)
	require.Len(t, res.Frequencies, 1)
	assert.Equal(t, 1, res.Statistics.RefinementsSkipped)
	assert.InDelta(t, 1, res.Frequencies[0].Frequency.Value, 0.01)
}

func TestRunExhaustedByExclusions(t *testing.T) {
	lc := shortCurve(t, 0.01, signal.Sinusoid{Amplitude: 1, Frequency: 1})

	r := newTestRunner(t, WithFrequencyRange(0, 5), WithExclusions(periodogram.Range{Low: 0, High: 6}))
	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)
	assert.Equal(t, StopExhausted, res.Stop)
	assert.Empty(t, res.Frequencies)
}

func TestRunFlatCurve(t *testing.T) {
	const n = 500
	lc, err := lightcurve.New(testutil.RegularTimes(n, 0.05), testutil.Constant(0, n), nil)
	require.NoError(t, err)

	for _, extend := range []int{0, 2} {
		res, err := newTestRunner(t, WithExtendFrequencies(extend)).Run(context.Background(), lc)
		require.NoError(t, err)
		assert.Equal(t, StopInsignificant, res.Stop)
		assert.Empty(t, res.Frequencies)
	}
}

func TestRunRejectsEmptyCurve(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Run(context.Background(), &lightcurve.LightCurve{})
	require.ErrorIs(t, err, lightcurve.ErrEmpty)
	assert.Nil(t, res)
}

func TestImproveResult(t *testing.T) {
	lc := shortCurve(t, 0.02,
		signal.Sinusoid{Amplitude: 1, Frequency: 2.3, Phase: 0.1},
		signal.Sinusoid{Amplitude: 0.7, Frequency: 2.5, Phase: 0.6},
	)
	r := newTestRunner(t,
		WithBackend(fit.BackendLeastSquares),
		WithImproveFit(false),
		WithMaxFrequencies(2),
	)
	res, err := r.Run(context.Background(), lc)
	require.NoError(t, err)
	before := res.Frequencies[0].Frequency.Value

	improved, err := r.ImproveResult(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, improved.Frequencies, 2)
	assert.Equal(t, before, res.Frequencies[0].Frequency.Value, "input result mutated")
	assert.LessOrEqual(t, ssq(improved.Residual.Flux), ssq(res.Residual.Flux)*(1+1e-9))
	assert.InEpsilon(t, 2.3, improved.Frequencies[0].Frequency.Value, 0.01)
}

func ssq(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s
}

func TestNewRunnerValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"zero snr", WithSNRThreshold(0), ErrInvalidSettings},
		{"negative window", WithWindowSize(-1), ErrInvalidSettings},
		{"negative extend", WithExtendFrequencies(-1), ErrInvalidSettings},
		{"negative ratio", WithDetectionRatio(-0.1), ErrInvalidSettings},
		{"negative cap", WithMaxFrequencies(-2), ErrInvalidSettings},
		{"inverted range", WithFrequencyRange(5, 1), periodogram.ErrInvalidRange},
		{"unknown backend", WithBackend(fit.Backend(9)), fit.ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(WithLogger(zap.NewNop()), tt.opt)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStopReasonString(t *testing.T) {
	assert.Equal(t, "insignificant", StopInsignificant.String())
	assert.Equal(t, "similar", StopSimilar.String())
	assert.Equal(t, "interrupted", StopInterrupted.String())
	assert.Equal(t, "unknown", StopReason(42).String())
}
