package batch

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-smurfs/fit"
	"github.com/cwbudde/algo-smurfs/internal/testutil"
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/prewhiten"
	"github.com/cwbudde/algo-smurfs/signal"
)

func target(t *testing.T, name string, seed int64, comps ...signal.Sinusoid) Input {
	t.Helper()
	lc := testutil.SyntheticCurve{
		Span:    20,
		Cadence: 0.05,
		Noise:   0.01,
		Seed:    seed,
		Signals: comps,
	}.LightCurve(t)
	return Input{Name: name, LightCurve: lc}
}

func baseOptions() []Option {
	return []Option{
		WithLogger(zap.NewNop()),
		WithConcurrency(2),
		WithRunnerOptions(
			prewhiten.WithBackend(fit.BackendLeastSquares),
			prewhiten.WithMaxFrequencies(2),
		),
	}
}

func TestRunCollectsOutcomes(t *testing.T) {
	inputs := []Input{
		target(t, "alpha", 1, signal.Sinusoid{Amplitude: 1, Frequency: 1.5}),
		{Name: "missing"},
		target(t, "gamma", 3,
			signal.Sinusoid{Amplitude: 0.8, Frequency: 2.2, Phase: 0.3},
			signal.Sinusoid{Amplitude: 0.4, Frequency: 6.1, Phase: 0.7},
		),
	}

	sink, err := Run(context.Background(), inputs, baseOptions()...)
	require.NoError(t, err)

	out := sink.Outcomes()
	require.Len(t, out, 3)

	ids := map[uuid.UUID]bool{}
	for i, o := range out {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, inputs[i].Name, o.Name)
		assert.NotEqual(t, uuid.Nil, o.RunID)
		ids[o.RunID] = true
	}
	assert.Len(t, ids, 3)

	require.NoError(t, out[0].Err)
	require.NotEmpty(t, out[0].Result.Frequencies)
	assert.InDelta(t, 1.5, out[0].Result.Frequencies[0].Frequency.Value, 0.01)

	assert.ErrorIs(t, out[1].Err, lightcurve.ErrEmpty)
	assert.Nil(t, out[1].Result)

	require.NoError(t, out[2].Err)
	require.Len(t, out[2].Result.Frequencies, 2)
	assert.InDelta(t, 2.2, out[2].Result.Frequencies[0].Frequency.Value, 0.01)
	assert.InDelta(t, 6.1, out[2].Result.Frequencies[1].Frequency.Value, 0.01)

	sum := sink.Summary()
	assert.Equal(t, 3, sum.Targets)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
}

func TestRunIndependentTargets(t *testing.T) {
	in := target(t, "same", 7, signal.Sinusoid{Amplitude: 1, Frequency: 3.3, Phase: 0.2})
	inputs := []Input{in, in, in, in}

	sink, err := Run(context.Background(), inputs, append(baseOptions(), WithImprove(true))...)
	require.NoError(t, err)

	out := sink.Outcomes()
	require.Len(t, out, len(inputs))
	first := out[0].Result.Frequencies[0].Frequency.Value
	for _, o := range out[1:] {
		require.NoError(t, o.Err)
		assert.Equal(t, first, o.Result.Frequencies[0].Frequency.Value)
	}
}

func TestRunInvalidRunnerOptions(t *testing.T) {
	_, err := Run(context.Background(), nil,
		WithLogger(zap.NewNop()),
		WithRunnerOptions(prewhiten.WithSNRThreshold(-1)),
	)
	require.ErrorIs(t, err, prewhiten.ErrInvalidSettings)
}

func TestRunEmpty(t *testing.T) {
	sink, err := Run(context.Background(), nil, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Empty(t, sink.Outcomes())
	assert.Equal(t, Summary{}, sink.Summary())
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []Input{target(t, "alpha", 1, signal.Sinusoid{Amplitude: 1, Frequency: 1.5})}
	sink, err := Run(ctx, inputs, baseOptions()...)
	require.ErrorIs(t, err, context.Canceled)

	out := sink.Outcomes()
	require.Len(t, out, 1)
	assert.ErrorIs(t, out[0].Err, context.Canceled)
}
