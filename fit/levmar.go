package fit

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	lambdaInit = 1e-3
	lambdaMin  = 1e-12
	lambdaMax  = 1e16
	diagFloor  = 1e-12
)

// bound is an inclusive parameter interval; infinite ends are unbounded.
type bound struct {
	lo, hi float64
}

var unbounded = bound{lo: math.Inf(-1), hi: math.Inf(1)}

// relative returns [v*(1-frac), v*(1+frac)], ordered for negative v.
func relative(v, frac float64) bound {
	a, b := v*(1-frac), v*(1+frac)
	if a > b {
		a, b = b, a
	}
	return bound{lo: a, hi: b}
}

func (b bound) clamp(v float64) float64 {
	return math.Max(b.lo, math.Min(b.hi, v))
}

// problem is a weighted least-squares fit of the summed sinusoid model
//
//	m(t) = sum_k a_k * sin(2*pi*(f_k*t + phi_k))
//
// with parameters laid out as [a0 f0 phi0 a1 f1 phi1 ...].
type problem struct {
	t, y   []float64
	weight []float64 // sqrt of the point weights; nil for uniform weights
	init   []float64
	bounds []bound
	free   []bool
}

type solverSettings struct {
	maxEval int
	ftol    float64
	xtol    float64
}

type solution struct {
	params []float64
	stdErr []float64 // zero for fixed parameters, +Inf when singular
	ssr    float64
	evals  int
}

func (pr *problem) project(p []float64) {
	for j := range p {
		p[j] = pr.bounds[j].clamp(p[j])
	}
}

// residuals writes the weighted residuals y - m into dst and returns their
// sum of squares.
func (pr *problem) residuals(p, dst []float64) float64 {
	var ssr float64
	for i, t := range pr.t {
		var m float64
		for k := 0; k < len(p); k += 3 {
			m += p[k] * math.Sin(2*math.Pi*(p[k+1]*t+p[k+2]))
		}
		r := pr.y[i] - m
		if pr.weight != nil {
			r *= pr.weight[i]
		}
		dst[i] = r
		ssr += r * r
	}
	return ssr
}

// jacobian fills jt (free parameters x samples) with the transposed model
// Jacobian. row maps a parameter index to its row, or -1 when fixed.
func (pr *problem) jacobian(p []float64, row []int, jt *mat.Dense) {
	raw := jt.RawMatrix()
	for i, t := range pr.t {
		w := 1.0
		if pr.weight != nil {
			w = pr.weight[i]
		}
		for k := 0; k < len(p); k += 3 {
			s, c := math.Sincos(2 * math.Pi * (p[k+1]*t + p[k+2]))
			ac := p[k] * c * 2 * math.Pi
			if r := row[k]; r >= 0 {
				raw.Data[r*raw.Stride+i] = w * s
			}
			if r := row[k+1]; r >= 0 {
				raw.Data[r*raw.Stride+i] = w * ac * t
			}
			if r := row[k+2]; r >= 0 {
				raw.Data[r*raw.Stride+i] = w * ac
			}
		}
	}
}

// solve minimises the residual sum of squares with a projected
// Levenberg-Marquardt iteration. It returns errEvalLimit when the evaluation
// budget runs out before convergence.
//
// Convergence is declared when an accepted step reduces the sum of squares by
// at most ftol relative, moves the free parameters by at most xtol relative,
// or when no step improves the fit even under maximal damping.
func solve(ctx context.Context, pr problem, st solverSettings) (*solution, error) {
	n := len(pr.t)
	p := append([]float64(nil), pr.init...)
	pr.project(p)

	row := make([]int, len(p))
	var idx []int
	for j := range p {
		row[j] = -1
		if pr.free[j] {
			row[j] = len(idx)
			idx = append(idx, j)
		}
	}
	m := len(idx)

	r := make([]float64, n)
	ssr := pr.residuals(p, r)
	evals := 1
	if m == 0 {
		return &solution{params: p, stdErr: make([]float64, len(p)), ssr: ssr, evals: evals}, nil
	}

	jt := mat.NewDense(m, n, nil)
	a := mat.NewSymDense(m, nil)
	damped := mat.NewSymDense(m, nil)
	g := mat.NewVecDense(m, nil)
	step := mat.NewVecDense(m, nil)
	trial := make([]float64, len(p))
	rTrial := make([]float64, n)
	lambda := lambdaInit

	for done := false; !done; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pr.jacobian(p, row, jt)
		a.SymOuterK(1, jt)
		g.MulVec(jt, mat.NewVecDense(n, r))

		for accepted := false; !accepted && !done; {
			if evals >= st.maxEval {
				return nil, errEvalLimit
			}

			damped.CopySym(a)
			for d := range m {
				diag := a.At(d, d)
				damped.SetSym(d, d, diag+lambda*math.Max(diag, diagFloor))
			}
			var ch mat.Cholesky
			if !ch.Factorize(damped) || ch.SolveVecTo(step, g) != nil {
				lambda *= 10
				done = lambda > lambdaMax
				continue
			}

			copy(trial, p)
			for i, j := range idx {
				trial[j] += step.AtVec(i)
			}
			pr.project(trial)
			trialSSR := pr.residuals(trial, rTrial)
			evals++

			if !(trialSSR < ssr) {
				lambda *= 10
				done = lambda > lambdaMax
				continue
			}

			var dx, xn float64
			for _, j := range idx {
				dx += (trial[j] - p[j]) * (trial[j] - p[j])
				xn += p[j] * p[j]
			}
			reduction := ssr - trialSSR
			done = reduction <= st.ftol*ssr || math.Sqrt(dx) <= st.xtol*(math.Sqrt(xn)+st.xtol)

			p, trial = trial, p
			r, rTrial = rTrial, r
			ssr = trialSSR
			lambda = math.Max(lambda/10, lambdaMin)
			accepted = true
		}
	}

	return &solution{params: p, stdErr: standardErrors(pr, p, row, idx, ssr), ssr: ssr, evals: evals}, nil
}

// standardErrors returns sqrt(diag(inv(J^T J) * ssr/(N - m))) for the free
// parameters.
func standardErrors(pr problem, p []float64, row, idx []int, ssr float64) []float64 {
	n, m := len(pr.t), len(idx)
	out := make([]float64, len(p))

	dof := n - m
	jt := mat.NewDense(m, n, nil)
	pr.jacobian(p, row, jt)
	a := mat.NewSymDense(m, nil)
	a.SymOuterK(1, jt)

	var ch mat.Cholesky
	var cov mat.SymDense
	if dof <= 0 || !ch.Factorize(a) || ch.InverseTo(&cov) != nil {
		for _, j := range idx {
			out[j] = math.Inf(1)
		}
		return out
	}

	s2 := ssr / float64(dof)
	for i, j := range idx {
		out[j] = math.Sqrt(math.Max(cov.At(i, i)*s2, 0))
	}
	return out
}
