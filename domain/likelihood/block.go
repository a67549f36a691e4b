// Package likelihood implements the probability-density blocks, constraints
// and the aggregate log-likelihood used to score theory predictions against
// experimental measurements.
package likelihood

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gofit/domain/observable"
)

// Block is one probability-density model attached to one or more cached
// observables. The variant set is closed: Gaussian, LogGamma, Amoroso,
// Mixture and MultivariateGaussian.
type Block interface {
	// Evaluate returns the log-density of the cached prediction(s) under
	// the block's measurement model. Cache values must be fresh.
	Evaluate() float64

	// Sample draws a pseudo-measurement consistent with the current
	// prediction and returns its log-density, for simulation studies.
	Sample(rng *rand.Rand) (float64, error)

	// Significance converts the observed deviation into signed Gaussian
	// sigma units by inverting the block's own cumulative distribution.
	Significance() (float64, error)

	// NumberOfObservations reports how many measurements the block
	// represents; fixed at construction.
	NumberOfObservations() uint

	// Clone reconstructs an equivalent block of the same variant whose
	// observables are re-registered on the target cache.
	Clone(cache *observable.Cache) (Block, error)

	// String describes the block and its density parameters
	String() string
}

const (
	// calibration checks must reproduce requested quantiles to this tolerance
	calibrationTolerance = 1e-4

	// root solvers: relative tolerance on iterates and iteration budget
	rootTolerance     = 1e-7
	maxRootIterations = 400

	// probability mass of the central one-sigma interval
	oneSigmaCoverage = 0.68268949213708585
)

// sigmaUnits converts the probability mass p enclosed symmetrically around
// the mode into standard Gaussian sigma units.
func sigmaUnits(p float64) float64 {
	return distuv.UnitNormal.Quantile((p + 1) / 2)
}
