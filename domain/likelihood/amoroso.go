package likelihood

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"gofit/domain/observable"
	"gofit/internal/errors"
	"gofit/internal/numeric"
	"gofit/ports"
)

// amorosoBlock models a one-sided measurement (typically an upper limit
// with a hard physical boundary) with the Amoroso distribution, a
// Weibull-gamma hybrid:
//
//	p(x) ~ z^(alpha*beta - 1) * exp(-z^beta) * |beta/theta|,  z = (x - a) / theta
//
// where a is the physical limit, theta the scale and alpha, beta shapes.
type amorosoBlock struct {
	cache *observable.Cache
	id    observable.ID

	physicalLimit float64
	theta         float64
	alpha         float64
	beta          float64

	norm float64

	observations uint
}

func newAmorosoBlock(cache *observable.Cache, obs ports.Observable, physicalLimit, theta, alpha, beta float64, observations uint) (*amorosoBlock, error) {
	if theta <= 0 {
		return nil, errors.Configurationf("amoroso block: scale parameter theta (%g) must be positive for an upper limit", theta)
	}
	if alpha <= 0 {
		return nil, errors.Configurationf("amoroso block: shape parameter alpha (%g) must be positive", alpha)
	}
	if beta <= 0 {
		return nil, errors.Configurationf("amoroso block: shape parameter beta (%g) must be positive", beta)
	}

	lg, _ := math.Lgamma(alpha)
	return &amorosoBlock{
		cache:         cache,
		id:            cache.Add(obs),
		physicalLimit: physicalLimit,
		theta:         theta,
		alpha:         alpha,
		beta:          beta,
		norm:          -lg + math.Log(math.Abs(beta/theta)),
		observations:  observations,
	}, nil
}

// Amoroso constructs an uncalibrated Amoroso block from raw density
// parameters. Prefer the calibrated constructors when translating
// experimental limit curves.
func Amoroso(cache *observable.Cache, obs ports.Observable, physicalLimit, theta, alpha, beta float64, observations uint) (Block, error) {
	return newAmorosoBlock(cache, obs, physicalLimit, theta, alpha, beta, observations)
}

// AmorosoLimit constructs an Amoroso block whose mode sits at the physical
// limit (beta = 1/alpha) and verifies that the 90% and 95% upper limits
// are reproduced to 1e-4.
func AmorosoLimit(cache *observable.Cache, obs ports.Observable, physicalLimit, upperLimit90, upperLimit95, theta, alpha float64, observations uint) (Block, error) {
	if upperLimit90 <= physicalLimit {
		return nil, errors.Configurationf("amoroso block: upper_limit_90 (%g) <= physical_limit (%g)", upperLimit90, physicalLimit)
	}
	if upperLimit95 <= physicalLimit {
		return nil, errors.Configurationf("amoroso block: upper_limit_95 (%g) <= physical_limit (%g)", upperLimit95, physicalLimit)
	}
	if upperLimit95 <= upperLimit90 {
		return nil, errors.Configurationf("amoroso block: upper_limit_95 (%g) <= upper_limit_90 (%g)", upperLimit95, upperLimit90)
	}

	b, err := newAmorosoBlock(cache, obs, physicalLimit, theta, alpha, 1/alpha, observations)
	if err != nil {
		return nil, err
	}

	if err := b.checkQuantile(upperLimit90, 0.90); err != nil {
		return nil, err
	}
	if err := b.checkQuantile(upperLimit95, 0.95); err != nil {
		return nil, err
	}

	return b, nil
}

// AmorosoMode constructs an Amoroso block with a mode away from the
// physical limit and verifies mode, 90% and 95% upper limits to 1e-4.
func AmorosoMode(cache *observable.Cache, obs ports.Observable, physicalLimit, mode, upperLimit90, upperLimit95, theta, alpha, beta float64, observations uint) (Block, error) {
	if mode <= physicalLimit {
		return nil, errors.Configurationf("amoroso block: mode (%g) <= physical_limit (%g)", mode, physicalLimit)
	}
	if upperLimit90 <= physicalLimit {
		return nil, errors.Configurationf("amoroso block: upper_limit_90 (%g) <= physical_limit (%g)", upperLimit90, physicalLimit)
	}
	if upperLimit95 <= upperLimit90 {
		return nil, errors.Configurationf("amoroso block: upper_limit_95 (%g) <= upper_limit_90 (%g)", upperLimit95, upperLimit90)
	}

	b, err := newAmorosoBlock(cache, obs, physicalLimit, theta, alpha, beta, observations)
	if err != nil {
		return nil, err
	}

	if math.Abs(b.mode()-mode) > calibrationTolerance {
		return nil, errors.CalibrationMismatchf(
			"amoroso block: for the current parameter values the mode %g deviates from the supplied mode %g",
			b.mode(), mode)
	}
	if err := b.checkQuantile(upperLimit90, 0.90); err != nil {
		return nil, err
	}
	if err := b.checkQuantile(upperLimit95, 0.95); err != nil {
		return nil, err
	}

	return b, nil
}

// AmorosoWithQuantiles constructs an Amoroso block and verifies the 10%,
// 50% and 90% quantiles to 1e-4. This is how two-sided experimental limit
// curves are translated into density parameters.
func AmorosoWithQuantiles(cache *observable.Cache, obs ports.Observable, physicalLimit, upperLimit10, upperLimit50, upperLimit90, theta, alpha, beta float64, observations uint) (Block, error) {
	if upperLimit10 <= physicalLimit {
		return nil, errors.Configurationf("amoroso block: upper_limit_10 (%g) <= physical_limit (%g)", upperLimit10, physicalLimit)
	}
	if upperLimit50 <= physicalLimit {
		return nil, errors.Configurationf("amoroso block: upper_limit_50 (%g) <= physical_limit (%g)", upperLimit50, physicalLimit)
	}
	if upperLimit90 <= upperLimit50 {
		return nil, errors.Configurationf("amoroso block: upper_limit_90 (%g) <= upper_limit_50 (%g)", upperLimit90, upperLimit50)
	}

	b, err := newAmorosoBlock(cache, obs, physicalLimit, theta, alpha, beta, observations)
	if err != nil {
		return nil, err
	}

	if err := b.checkQuantile(upperLimit10, 0.10); err != nil {
		return nil, err
	}
	if err := b.checkQuantile(upperLimit50, 0.50); err != nil {
		return nil, err
	}
	if err := b.checkQuantile(upperLimit90, 0.90); err != nil {
		return nil, err
	}

	return b, nil
}

func (b *amorosoBlock) checkQuantile(point, probability float64) error {
	if got := b.cdf(point); math.Abs(got-probability) > calibrationTolerance {
		return errors.CalibrationMismatchf(
			"amoroso block: for the current parameter values cdf(%g) = %g deviates from %g%%",
			point, got, probability*100)
	}
	return nil
}

// cdf applies the Weibull transform w = ((x-a)/theta)^beta and maps it
// through the regularized incomplete gamma function, with a sign flip when
// beta/theta is negative.
func (b *amorosoBlock) cdf(x float64) float64 {
	w := math.Pow((x-b.physicalLimit)/b.theta, b.beta)

	if b.beta/b.theta < 0 {
		return mathext.GammaIncRegComp(b.alpha, w)
	}
	return 1.0 - mathext.GammaIncRegComp(b.alpha, w)
}

func (b *amorosoBlock) mode() float64 {
	return b.physicalLimit + b.theta*math.Pow(b.alpha-1/b.beta, 1/b.beta)
}

func (b *amorosoBlock) Evaluate() float64 {
	z := (b.cache.Value(b.id) - b.physicalLimit) / b.theta
	return b.norm + (b.alpha*b.beta-1)*math.Log(z) - math.Pow(z, b.beta)
}

func (b *amorosoBlock) NumberOfObservations() uint {
	return b.observations
}

// Sample draws from the standard gamma distribution. The inverse Weibull
// transform of the draw and the Weibull transform in the density cancel in
// the exponential, so only the power term needs the transform undone.
func (b *amorosoBlock) Sample(rng *rand.Rand) (float64, error) {
	w := distuv.Gamma{Alpha: b.alpha, Beta: 1, Src: rng}.Rand()
	z := math.Pow(w, 1/b.beta)

	// compare with the experimental distribution, not the prediction, so
	// the test-statistic distribution stays independent of the fit point
	return b.norm + (b.alpha*b.beta-1)*math.Log(z) - w, nil
}

// Significance inverts the cumulative directly when the mode sits at the
// physical boundary (alpha*beta = 1); otherwise it brackets and
// root-finds the mirror point of equal density, growing the bracket
// geometrically until it contains a sign change. Non-convergence is a hard
// failure since significance is the primary output of this block type.
func (b *amorosoBlock) Significance() (float64, error) {
	value := b.cache.Value(b.id)

	if math.Abs(b.alpha*b.beta-1.0) < 1e-13 {
		// mode at the boundary: the enclosed mass is just the cumulative
		return sigmaUnits(b.cdf(value)), nil
	}

	zp := (value - b.physicalLimit) / b.theta
	f := func(x float64) float64 {
		zm := (x - b.physicalLimit) / b.theta
		if zm == 0.0 {
			return math.MaxFloat64
		}
		return (b.alpha*b.beta-1)*(math.Log(zp)-math.Log(zm)) + math.Pow(zm, b.beta) - math.Pow(zp, b.beta)
	}

	mode := b.mode()
	var xMin, xMax float64
	if value > mode {
		xMin = b.physicalLimit
		xMax = mode
	} else {
		xMin = mode
		// grow the upper boundary until it contains the mirror point
		xMax = xMin + (mode - value)
		for f(xMax) < 0 {
			xMax *= 2
		}
	}

	estimate, iters, err := numeric.Brent(f, xMin, xMax, rootTolerance, maxRootIterations)
	if err != nil {
		return 0, errors.Wrapf(err,
			"amoroso block: could not find the mirror point, stopped after %d iterations with f(%g) = %g",
			iters, estimate, f(estimate))
	}

	// probability of a smaller excess (one minus the ordinary p-value)
	p := math.Abs(b.cdf(value) - b.cdf(estimate))
	absSignificance := sigmaUnits(p)

	if mode > value {
		return absSignificance, nil
	}
	return -absSignificance, nil
}

func (b *amorosoBlock) Clone(cache *observable.Cache) (Block, error) {
	obs := b.cache.Observable(b.id).Clone(cache.Parameters())
	return Amoroso(cache, obs, b.physicalLimit, b.theta, b.alpha, b.beta, b.observations)
}

func (b *amorosoBlock) String() string {
	result := fmt.Sprintf("Amoroso limit: mode at %s = %.5g (a = %.5g, theta = %.5g, alpha = %.5g, beta = %.5g)",
		b.cache.Observable(b.id).Name(), b.mode(), b.physicalLimit, b.theta, b.alpha, b.beta)
	if b.observations == 0 {
		result += "; no observation"
	}
	return result
}
