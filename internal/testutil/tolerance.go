package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails tb if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(tb testing.TB, got, want []float64, eps float64) {
	tb.Helper()
	if len(got) != len(want) {
		tb.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			tb.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails tb if any element is NaN or Inf.
func RequireFinite(tb testing.TB, data []float64) {
	tb.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			tb.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireRelative fails tb if got deviates from want by more than rel*|want|.
func RequireRelative(tb testing.TB, name string, got, want, rel float64) {
	tb.Helper()
	if math.Abs(got-want) > rel*math.Abs(want) {
		tb.Fatalf("%s = %v, want %v within %.2g%%", name, got, want, rel*100)
	}
}

// RequireWithinSigma fails tb if got is further than k*sigma from want.
func RequireWithinSigma(tb testing.TB, name string, got, want, sigma, k float64) {
	tb.Helper()
	if !(sigma > 0) {
		tb.Fatalf("%s: uncertainty must be positive, got %v", name, sigma)
	}
	if d := math.Abs(got - want); d > k*sigma {
		tb.Fatalf("%s = %v, want %v (|diff| %v > %v sigma of %v)", name, got, want, d, k, sigma)
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		maxDiff = math.Max(maxDiff, math.Abs(a[i]-b[i]))
	}
	return maxDiff, nil
}
