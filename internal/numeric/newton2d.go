package numeric

import (
	"math"

	"gofit/internal/errors"
)

// Newton2D solves the two-dimensional system f(x) = 0 by damped Newton
// iteration with a finite-difference Jacobian. It is used to polish
// calibration solutions delivered by a derivative-free minimizer.
func Newton2D(f func([2]float64) [2]float64, x0 [2]float64, tol float64, maxIter int) ([2]float64, error) {
	x := x0
	fx := f(x)

	for iter := 0; iter < maxIter; iter++ {
		res := math.Hypot(fx[0], fx[1])
		if res < tol {
			return x, nil
		}

		// forward-difference Jacobian
		var jac [2][2]float64
		for j := 0; j < 2; j++ {
			h := 1e-7 * (1 + math.Abs(x[j]))
			xh := x
			xh[j] += h
			fh := f(xh)
			jac[0][j] = (fh[0] - fx[0]) / h
			jac[1][j] = (fh[1] - fx[1]) / h
		}

		det := jac[0][0]*jac[1][1] - jac[0][1]*jac[1][0]
		if det == 0 || math.IsNaN(det) {
			return x, errors.Newf(errors.CodeNumericalNonConvergence,
				"newton2d: singular jacobian at (%g, %g)", x[0], x[1])
		}

		dx := [2]float64{
			(jac[1][1]*fx[0] - jac[0][1]*fx[1]) / det,
			(jac[0][0]*fx[1] - jac[1][0]*fx[0]) / det,
		}

		// backtrack until the residual shrinks
		step := 1.0
		for {
			trial := [2]float64{x[0] - step*dx[0], x[1] - step*dx[1]}
			ft := f(trial)
			if math.Hypot(ft[0], ft[1]) < res || step < 1.0/1024 {
				x, fx = trial, ft
				break
			}
			step /= 2
		}
	}

	if math.Hypot(fx[0], fx[1]) < tol {
		return x, nil
	}
	return x, errors.Newf(errors.CodeNumericalNonConvergence,
		"newton2d: no convergence within %d iterations, residual %g", maxIter, math.Hypot(fx[0], fx[1]))
}
