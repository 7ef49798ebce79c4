package periodogram

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-smurfs/internal/testutil"
	"github.com/cwbudde/algo-smurfs/lightcurve"
	"github.com/cwbudde/algo-smurfs/signal"
)

func testCurve(tb testing.TB) *lightcurve.LightCurve {
	tb.Helper()
	return testutil.SineLightCurve(tb, 20, 0.02, signal.Sinusoid{Amplitude: 1.5, Frequency: 3.7, Phase: 0.2})
}

func TestComputeNormalisation(t *testing.T) {
	lc := testCurve(t)

	p, err := Compute(lc)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	testutil.RequireFinite(t, p.Amplitude)

	testutil.RequireRelative(t, "peak amplitude", p.MaxAmplitude(), 1.5, 0.02)
	df := 1 / (lc.Baseline() * DefaultSamplesPerPeak)
	if math.Abs(p.FrequencyAtMax()-3.7) > df {
		t.Fatalf("peak frequency = %v, want 3.7 within %v", p.FrequencyAtMax(), df)
	}
	if math.Abs(p.Nyquist-25) > 1e-9 {
		t.Fatalf("Nyquist = %v, want 25", p.Nyquist)
	}
	if p.Frequency[len(p.Frequency)-1] > p.Nyquist+df {
		t.Fatalf("grid exceeds Nyquist: %v", p.Frequency[len(p.Frequency)-1])
	}
}

func TestComputeGrid(t *testing.T) {
	lc := testCurve(t)

	p, err := Compute(lc, WithRange(1, 5), WithSamplesPerPeak(4))
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	df := 1 / (lc.Baseline() * 4)
	if math.Abs(p.Frequency[0]-(1+df)) > 1e-12 {
		t.Fatalf("first bin = %v, want %v (f_min bin dropped)", p.Frequency[0], 1+df)
	}
	wantLen := int(math.Round(4 / df))
	if p.Len() != wantLen {
		t.Fatalf("len = %d, want %d", p.Len(), wantLen)
	}
	for i := 1; i < p.Len(); i++ {
		if math.Abs(p.Frequency[i]-p.Frequency[i-1]-df) > 1e-9 {
			t.Fatalf("non-uniform spacing at %d", i)
		}
	}
	if p.SamplesPerPeak != 4 {
		t.Fatalf("SamplesPerPeak = %d, want 4", p.SamplesPerPeak)
	}
}

func TestComputeExclusions(t *testing.T) {
	lc := testCurve(t)
	ranges := []Range{{Low: 3.5, High: 3.9}, {Low: 10, High: 12}}

	p, err := Compute(lc, WithRange(0, 15), WithExclusions(ranges...))
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	for _, f := range p.Frequency {
		for _, r := range ranges {
			if r.Contains(f) {
				t.Fatalf("bin %v inside excluded %v", f, r)
			}
		}
	}
	if p.MaxAmplitude() > 0.75 {
		t.Fatalf("excluded peak still dominates: %v", p.MaxAmplitude())
	}
}

func TestComputeErrors(t *testing.T) {
	lc := testCurve(t)

	tests := []struct {
		name string
		lc   *lightcurve.LightCurve
		opts []Option
		want error
	}{
		{"inverted range", lc, []Option{WithRange(5, 1)}, ErrInvalidRange},
		{"negative min", lc, []Option{WithRange(-1, 1)}, ErrInvalidRange},
		{"min above nyquist", lc, []Option{WithMinFrequency(30)}, ErrInvalidRange},
		{"all excluded", lc, []Option{WithRange(1, 2), WithExclusions(Range{Low: 0, High: 3})}, ErrEmptyPeriodogram},
		{"empty range", lc, []Option{WithRange(2, 2)}, ErrEmptyPeriodogram},
		{"nil curve", nil, nil, lightcurve.ErrEmpty},
		{"unknown method", lc, []Option{WithMethod(Method(9))}, ErrUnknownMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.lc, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestComputeTooFewSamples(t *testing.T) {
	lc, err := lightcurve.New([]float64{0, 1}, []float64{1, 2}, nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := Compute(lc); !errors.Is(err, lightcurve.ErrTooFewSamples) {
		t.Fatalf("err = %v, want ErrTooFewSamples", err)
	}
}

func TestComputeAboveNyquist(t *testing.T) {
	lc := testCurve(t)

	p, err := Compute(lc, WithRange(20, 30))
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if !p.AboveNyquist {
		t.Fatal("expected AboveNyquist flag")
	}

	p, err = Compute(lc, WithRange(1, 20))
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	if p.AboveNyquist {
		t.Fatal("unexpected AboveNyquist flag")
	}
}

func TestFastMatchesDirect(t *testing.T) {
	lc := testutil.SyntheticCurve{
		Span:    15,
		Cadence: 0.02,
		Jitter:  0.3,
		Noise:   0.05,
		Seed:    11,
		Signals: []signal.Sinusoid{
			{Amplitude: 1, Frequency: 2.3, Phase: 0.1},
			{Amplitude: 0.4, Frequency: 7.9, Phase: 0.6},
		},
	}.LightCurve(t)

	direct, err := Compute(lc, WithRange(0.5, 12))
	if err != nil {
		t.Fatalf("direct error: %v", err)
	}
	fast, err := Compute(lc, WithRange(0.5, 12), WithMethod(MethodFast))
	if err != nil {
		t.Fatalf("fast error: %v", err)
	}

	if direct.Len() != fast.Len() {
		t.Fatalf("len mismatch: %d vs %d", direct.Len(), fast.Len())
	}
	if direct.MaxIndex() != fast.MaxIndex() {
		t.Fatalf("peak index mismatch: %d vs %d", direct.MaxIndex(), fast.MaxIndex())
	}
	d, err := testutil.MaxAbsDiff(direct.Amplitude, fast.Amplitude)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}
	if d > 0.02 {
		t.Fatalf("fast deviates from direct by %v", d)
	}
}

func TestMaxIn(t *testing.T) {
	p := &Periodogram{
		Frequency: []float64{1, 2, 3, 4},
		Amplitude: []float64{0.5, 3, 1, 2},
	}

	if a, ok := p.MaxIn(2.5, 4); !ok || a != 2 {
		t.Fatalf("MaxIn = %v,%v want 2,true", a, ok)
	}
	if _, ok := p.MaxIn(5, 6); ok {
		t.Fatal("expected no bins in [5, 6]")
	}
	if p.MaxIndex() != 1 || p.FrequencyAtMax() != 2 {
		t.Fatalf("MaxIndex = %d", p.MaxIndex())
	}

	var empty *Periodogram
	if empty.MaxIndex() != -1 || empty.MaxAmplitude() != 0 {
		t.Fatal("nil periodogram should report no maximum")
	}
}

func TestSpectralWindow(t *testing.T) {
	lc := testCurve(t)

	w, err := SpectralWindow(lc, WithRange(0, 5))
	if err != nil {
		t.Fatalf("SpectralWindow error: %v", err)
	}
	for i, a := range w.Amplitude {
		if a < 0 || a > 1+1e-9 {
			t.Fatalf("window[%d] = %v outside [0, 1]", i, a)
		}
	}
	if w.MaxIndex() != 0 || w.Amplitude[0] < 0.9 {
		t.Fatalf("window should peak next to zero frequency: idx=%d amp=%v", w.MaxIndex(), w.Amplitude[0])
	}
}

func TestParseMethod(t *testing.T) {
	for name, want := range map[string]Method{"": MethodDirect, "direct": MethodDirect, " FAST ": MethodFast} {
		got, err := ParseMethod(name)
		if err != nil || got != want {
			t.Fatalf("ParseMethod(%q) = %v, %v", name, got, err)
		}
		if got.String() != want.String() {
			t.Fatalf("String mismatch for %q", name)
		}
	}
	if _, err := ParseMethod("nfft"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("err = %v, want ErrUnknownMethod", err)
	}
}

func TestExtirpolatePreservesMoments(t *testing.T) {
	grid := make([]complex128, 32)
	x, y := 10.37, complex(2, -1)
	extirpolate(grid, x, y, fastOrder)

	var m0, m1 complex128
	for i, v := range grid {
		m0 += v
		m1 += v * complex(float64(i), 0)
	}
	if d := m0 - y; math.Hypot(real(d), imag(d)) > 1e-12 {
		t.Fatalf("zeroth moment = %v, want %v", m0, y)
	}
	if d := m1 - y*complex(x, 0); math.Hypot(real(d), imag(d)) > 1e-9 {
		t.Fatalf("first moment = %v, want %v", m1, y*complex(x, 0))
	}

	clear(grid)
	extirpolate(grid, 5, y, fastOrder)
	if grid[5] != y {
		t.Fatalf("integer position should land in one bin: %v", grid[5])
	}
}
