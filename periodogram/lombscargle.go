package periodogram

import (
	"math"
	"runtime"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"
)

// directChunk is the number of frequency bins evaluated per task. Phasors
// are re-seeded exactly at every chunk start.
const directChunk = 256

// sums holds the weighted trigonometric sums per frequency bin, with uniform
// weights w = 1/N:
//
//	c  = sum w cos(wt)    s  = sum w sin(wt)
//	c2 = sum w cos(2wt)   s2 = sum w sin(2wt)
//	ch = sum w y cos(wt)  sh = sum w y sin(wt)
type sums struct {
	c, s, c2, s2, ch, sh []float64
}

func newSums(n int) sums {
	buf := make([]float64, 6*n)
	return sums{
		c:  buf[0*n : 1*n],
		s:  buf[1*n : 2*n],
		c2: buf[2*n : 3*n],
		s2: buf[3*n : 4*n],
		ch: buf[4*n : 5*n],
		sh: buf[5*n : 6*n],
	}
}

func (sm sums) len() int {
	return len(sm.c)
}

// directSums evaluates the sums exactly. Each chunk of the grid runs as its
// own task; within a chunk the per-sample phasors advance by complex
// multiplication from one bin to the next.
func directSums(t, y []float64, g grid) sums {
	out := newSums(g.n)

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for lo := 0; lo < g.n; lo += directChunk {
		hi := min(lo+directChunk, g.n)
		eg.Go(func() error {
			directChunkSums(out, t, y, g, lo, hi)
			return nil
		})
	}
	_ = eg.Wait()

	return out
}

func directChunkSums(out sums, t, y []float64, g grid, lo, hi int) {
	n := len(t)
	w := 1 / float64(n)

	buf := make([]float64, 4*n)
	cs, sn := buf[0:n], buf[n:2*n]
	dc, ds := buf[2*n:3*n], buf[3*n:4*n]

	f := g.at(lo)
	for i, ti := range t {
		sn[i], cs[i] = math.Sincos(2 * math.Pi * f * ti)
		ds[i], dc[i] = math.Sincos(2 * math.Pi * g.df * ti)
	}

	for k := lo; k < hi; k++ {
		var c, s, c2, s2, ch, sh float64
		for i := range t {
			ci, si := cs[i], sn[i]
			c += ci
			s += si
			c2 += ci*ci - si*si
			s2 += 2 * ci * si
			ch += y[i] * ci
			sh += y[i] * si

			cs[i] = ci*dc[i] - si*ds[i]
			sn[i] = si*dc[i] + ci*ds[i]
		}
		out.c[k] = c * w
		out.s[k] = s * w
		out.c2[k] = c2 * w
		out.s2[k] = s2 * w
		out.ch[k] = ch * w
		out.sh[k] = sh * w
	}
}

// amplitudes converts the sums into the floating-mean Lomb-Scargle amplitude
// sqrt(2P), which equals sqrt(4/N)*sqrt(psd) with psd = N*P/2.
func amplitudes(sm sums) []float64 {
	n := sm.len()
	buf := make([]float64, 2*n)
	re, im := buf[:n], buf[n:]

	for k := range n {
		c, s := sm.c[k], sm.s[k]
		theta := math.Atan2(sm.s2[k]-2*s*c, sm.c2[k]-(c*c-s*s))
		s2w, c2w := math.Sincos(theta)
		sw, cw := math.Sincos(theta / 2)

		yc := sm.ch[k]*cw + sm.sh[k]*sw
		ys := sm.sh[k]*cw - sm.ch[k]*sw
		cc := 0.5*(1+sm.c2[k]*c2w+sm.s2[k]*s2w) - (c*cw+s*sw)*(c*cw+s*sw)
		ss := 0.5*(1-sm.c2[k]*c2w-sm.s2[k]*s2w) - (s*cw-c*sw)*(s*cw-c*sw)

		re[k] = normalisedTerm(yc, cc)
		im[k] = normalisedTerm(ys, ss)
	}

	amp := make([]float64, n)
	vecmath.Magnitude(amp, re, im)
	for k := range amp {
		amp[k] *= math.Sqrt2
	}
	return amp
}

// normalisedTerm returns y/sqrt(d), or 0 when the denominator is degenerate.
func normalisedTerm(y, d float64) float64 {
	if d <= 1e-15 {
		return 0
	}
	return y / math.Sqrt(d)
}
