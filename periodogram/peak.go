package periodogram

import "math"

// Peak describes the dominant maximum of a periodogram.
type Peak struct {
	MaxIndex int
	Lower    int // index of the local minimum below the maximum
	Upper    int // index of the local minimum above the maximum
	SNR      float64
}

// Bounds returns the frequencies of the bracketing minima.
func (pk Peak) Bounds(p *Periodogram) Range {
	return Range{Low: p.Frequency[pk.Lower], High: p.Frequency[pk.Upper]}
}

// AnalyzePeak locates the global maximum of p, the local minima bracketing
// it and the signal to noise ratio of the maximum.
//
// The minima are found by walking outward one bin per side per step. A bin k
// is a minimum when it is strictly lower than both neighbours; a side that
// reaches the array edge first stops there. The noise level is the mean
// amplitude over the bins within windowSize/2 outside each minimum, minima
// included. A zero maximum has SNR 0, a positive maximum over a silent window
// +Inf. An empty periodogram yields the zero Peak.
func AnalyzePeak(p *Periodogram, windowSize float64) Peak {
	n := p.Len()
	if n == 0 {
		return Peak{}
	}
	a := p.Amplitude
	m := p.MaxIndex()

	lower, upper := -1, -1
	for off := 1; lower < 0 || upper < 0; off++ {
		if lower < 0 {
			if k := m - off; k <= 0 {
				lower = 0
			} else if localMin(a, k) {
				lower = k
			}
		}
		if upper < 0 {
			if k := m + off; k >= n-1 {
				upper = n - 1
			} else if localMin(a, k) {
				upper = k
			}
		}
	}

	half := windowSize / 2
	fLo, fUp := p.Frequency[lower], p.Frequency[upper]
	var sum float64
	var count int
	for i, f := range p.Frequency {
		if (f >= fLo-half && f <= fLo) || (f >= fUp && f <= fUp+half) {
			sum += a[i]
			count++
		}
	}

	var snr float64
	if a[m] > 0 {
		snr = math.Inf(1)
		if count > 0 && sum > 0 {
			snr = a[m] / (sum / float64(count))
		}
	}

	return Peak{MaxIndex: m, Lower: lower, Upper: upper, SNR: snr}
}

func localMin(a []float64, k int) bool {
	return a[k] < a[k-1] && a[k] < a[k+1]
}
