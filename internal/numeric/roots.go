// Package numeric carries the bounded-iteration scalar root solvers shared
// by the likelihood blocks. gonum provides minimizers but no scalar root
// finding, so the two classic solvers are implemented here.
package numeric

import (
	"math"

	"gofit/internal/errors"
)

// NewtonRaphson iterates x <- x - f(x)/df(x) from x0 until two successive
// iterates agree to within relTol (relative), or maxIter is exhausted.
// The last iterate is returned even on failure, together with the number
// of iterations performed.
func NewtonRaphson(f, df func(float64) float64, x0, relTol float64, maxIter int) (float64, int, error) {
	x := x0
	for iter := 1; iter <= maxIter; iter++ {
		fx := f(x)
		if fx == 0 {
			return x, iter, nil
		}

		d := df(x)
		if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return x, iter, errors.Newf(errors.CodeNumericalNonConvergence,
				"newton: derivative is %g at x = %g after %d iterations", d, x, iter)
		}

		next := x - fx/d
		if math.Abs(next-x) <= relTol*math.Abs(next) {
			return next, iter, nil
		}
		x = next
	}

	return x, maxIter, errors.Newf(errors.CodeNumericalNonConvergence,
		"newton: no convergence within %d iterations, last iterate %g with f = %g", maxIter, x, f(x))
}

// Brent finds a root of f inside [lo, hi] by Brent's bracketing method.
// The bracket must contain a sign change. Convergence is declared when the
// bracket shrinks to relTol relative to the current estimate. The last
// estimate and iteration count are returned even on failure.
func Brent(f func(float64) float64, lo, hi, relTol float64, maxIter int) (float64, int, error) {
	a, b := lo, hi
	fa, fb := f(a), f(b)

	if fa == 0 {
		return a, 0, nil
	}
	if fb == 0 {
		return b, 0, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, 0, errors.Newf(errors.CodeConfiguration,
			"brent: [%g, %g] does not bracket a root (f = %g, %g)", lo, hi, fa, fb)
	}

	c, fc := a, fa
	d := b - a
	e := d

	for iter := 1; iter <= maxIter; iter++ {
		if (fb > 0) == (fc > 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol := 2*math.SmallestNonzeroFloat64 + 0.5*relTol*math.Abs(b)
		m := 0.5 * (c - b)

		if fb == 0 || math.Abs(m) <= tol {
			return b, iter, nil
		}

		if math.Abs(e) < tol || math.Abs(fa) <= math.Abs(fb) {
			// bisection
			d = m
			e = m
		} else {
			// inverse quadratic interpolation, secant when a == c
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*m*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = m
			}
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else if m > 0 {
			b += tol
		} else {
			b -= tol
		}
		fb = f(b)
	}

	return b, maxIter, errors.Newf(errors.CodeNumericalNonConvergence,
		"brent: no convergence within %d iterations, last estimate %g with f = %g", maxIter, b, fb)
}
