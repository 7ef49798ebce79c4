package periodogram

import (
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/rotisserie/eris"
)

const (
	// fastOversampling is the FFT grid size relative to the frequency count.
	fastOversampling = 5
	// fastOrder is the number of grid points each sample is spread over.
	fastOrder = 4
)

// fastSums approximates the sums with Press & Rybicki extirpolation.
func fastSums(t, y []float64, g grid) (sums, error) {
	n := len(t)
	w := 1 / float64(n)

	nfft := nextPowerOf2(g.n * fastOversampling)
	plan, err := algofft.NewPlan64(nfft)
	if err != nil {
		return sums{}, eris.Wrapf(err, "periodogram: fft plan of size %d", nfft)
	}
	ts := trigSummer{
		plan: plan,
		t:    t,
		g:    g,
		grid: make([]complex128, nfft),
		spec: make([]complex128, nfft),
	}

	hw := make([]float64, n)
	hy := make([]float64, n)
	for i := range hw {
		hw[i] = w
		hy[i] = w * y[i]
	}

	out := newSums(g.n)
	if err := ts.sum(out.c, out.s, hw, 1); err != nil {
		return sums{}, err
	}
	if err := ts.sum(out.ch, out.sh, hy, 1); err != nil {
		return sums{}, err
	}
	if err := ts.sum(out.c2, out.s2, hw, 2); err != nil {
		return sums{}, err
	}
	return out, nil
}

type trigSummer struct {
	plan *algofft.Plan[complex128]
	t    []float64
	g    grid
	grid []complex128
	spec []complex128
}

// sum computes C_k = sum h cos(2 pi f_k q t) and S_k = sum h sin(2 pi f_k q t)
// for q = factor into c and s.
func (ts *trigSummer) sum(c, s, h []float64, factor float64) error {
	nfft := len(ts.grid)
	f0 := ts.g.f0 * factor
	df := ts.g.df * factor

	clear(ts.grid)
	for i, ti := range ts.t {
		v := complex(h[i], 0)
		if f0 > 0 {
			sn, cs := math.Sincos(2 * math.Pi * f0 * ti)
			v *= complex(cs, sn)
		}
		x := (ti*df - math.Floor(ti*df)) * float64(nfft)
		extirpolate(ts.grid, x, v, fastOrder)
	}

	// sum_m grid[m] exp(+2 pi i m k / nfft) == conj(FFT(conj(grid)))[k]
	for i, v := range ts.grid {
		ts.grid[i] = cmplx.Conj(v)
	}
	if err := ts.plan.Forward(ts.spec, ts.grid); err != nil {
		return eris.Wrap(err, "periodogram: forward fft")
	}
	for k := range c {
		c[k] = real(ts.spec[k])
		s[k] = -imag(ts.spec[k])
	}
	return nil
}

// extirpolate spreads y onto the m grid points around position x such that
// Lagrange interpolation of the grid reproduces y at x.
func extirpolate(grid []complex128, x float64, y complex128, m int) {
	n := len(grid)
	if x == math.Trunc(x) {
		grid[int(x)%n] += y
		return
	}

	ilo := int(x - float64(m/2))
	ilo = max(0, min(ilo, n-m))

	num := 1.0
	for j := range m {
		num *= x - float64(ilo+j)
	}
	den := factorial(m - 1)
	for j := range m {
		if j > 0 {
			den *= float64(j) / float64(j-m)
		}
		ind := ilo + m - 1 - j
		grid[ind] += y * complex(num/(den*(x-float64(ind))), 0)
	}
}

func factorial(n int) float64 {
	out := 1.0
	for i := 2; i <= n; i++ {
		out *= float64(i)
	}
	return out
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
