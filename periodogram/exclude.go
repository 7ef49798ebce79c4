package periodogram

import "fmt"

// Range is a closed frequency interval [Low, High] in c/d.
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether f lies within the inclusive bounds of r.
func (r Range) Contains(f float64) bool {
	return f >= r.Low && f <= r.High
}

// Width returns High - Low.
func (r Range) Width() float64 {
	return r.High - r.Low
}

func (r Range) String() string {
	return fmt.Sprintf("[%.6f, %.6f]", r.Low, r.High)
}

// excluded reports whether f falls into any of ranges.
func excluded(f float64, ranges []Range) bool {
	for _, r := range ranges {
		if r.Contains(f) {
			return true
		}
	}
	return false
}
