package likelihood

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"

	"gofit/domain/observable"
	"gofit/internal"
	"gofit/internal/errors"
	"gofit/internal/numeric"
	"gofit/ports"
)

// logGammaBlock models an asymmetric uncertainty with a smooth,
// non-truncated tail via the log-gamma density
//
//	p(x) = exp(alpha*z - e^z) / (Gamma(alpha) * |lambda|),  z = (x - nu) / lambda
//
// calibrated so that [central-sigma_lower, central+sigma_upper] is the
// central one-sigma interval with equal density at both edges.
type logGammaBlock struct {
	cache *observable.Cache
	id    observable.ID

	central    float64
	sigmaLower float64
	sigmaUpper float64

	nu     float64
	lambda float64
	alpha  float64
	norm   float64

	observations uint
	logger       *internal.Logger
}

// LogGamma constructs a log-gamma block for the band [min, central, max],
// solving for the shape and scale parameters numerically so that the
// density is continuous at both band edges and the band encloses the
// one-sigma probability mass. Near-symmetric bands are ill-conditioned for
// this solve; a warning recommends the Gaussian block instead.
func LogGamma(cache *observable.Cache, obs ports.Observable, min, central, max float64, observations uint, logger *internal.Logger) (Block, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if min >= central {
		return nil, errors.Configurationf("log-gamma block: min value %g >= central value %g", min, central)
	}
	if max <= central {
		return nil, errors.Configurationf("log-gamma block: max value %g <= central value %g", max, central)
	}

	sigmaLower := central - min
	sigmaUpper := max - central

	// standardize so the smaller deviation is one, fixing the sign of lambda
	sigmaPlus := sigmaUpper / sigmaLower
	if sigmaUpper < sigmaLower {
		sigmaPlus = sigmaLower / sigmaUpper
	}
	if sigmaPlus < 1+6e-2 {
		logger.Warn("log-gamma block: for nearly symmetric uncertainties (%g vs %g), "+
			"this procedure may fail to find the correct parameter values; please use a Gaussian block instead",
			sigmaLower, sigmaUpper)
	}

	// for positive skew lambda is negative; the solve keeps lambda negative
	// and the scale factor restores sign and units
	lambdaScale := -sigmaUpper
	if sigmaUpper > sigmaLower {
		lambdaScale = sigmaLower
	}

	// empirical starting values, good to ~10% where the deviations differ
	// by 3-100%: alpha depends only on sigma_plus, and lambda is a pure
	// scale parameter
	lambdaInitial := -56 + 55.0*distuv.UnitNormal.CDF((sigmaPlus-1.0)/0.05)
	alphaInitial := math.Pow(1.13/(sigmaPlus-1), 1.3)

	lambda, alpha, err := solveLogGammaShape(lambdaInitial, alphaInitial, sigmaPlus, logger)
	if err != nil {
		return nil, err
	}

	lambda *= lambdaScale
	nu := central - lambda*math.Log(alpha)

	lg, _ := math.Lgamma(alpha)
	return &logGammaBlock{
		cache:        cache,
		id:           cache.Add(obs),
		central:      central,
		sigmaLower:   sigmaLower,
		sigmaUpper:   sigmaUpper,
		nu:           nu,
		lambda:       lambda,
		alpha:        alpha,
		norm:         -lg - math.Log(math.Abs(lambda)),
		observations: observations,
		logger:       logger,
	}, nil
}

// LogGammaWithShape constructs a log-gamma block from explicitly supplied
// shape and scale parameters. Both calibration conditions (one-sigma
// coverage and equal edge densities) are re-verified to 1e-4.
func LogGammaWithShape(cache *observable.Cache, obs ports.Observable, min, central, max, lambda, alpha float64, observations uint, logger *internal.Logger) (Block, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if min >= central {
		return nil, errors.Configurationf("log-gamma block: min value %g >= central value %g", min, central)
	}
	if max <= central {
		return nil, errors.Configurationf("log-gamma block: max value %g <= central value %g", max, central)
	}
	if alpha <= 0 {
		return nil, errors.Configurationf("log-gamma block: shape parameter alpha (%g) must be positive", alpha)
	}

	sigmaLower := central - min
	sigmaUpper := max - central

	sigmaPlus := sigmaUpper / sigmaLower
	if sigmaUpper < sigmaLower {
		sigmaPlus = sigmaLower / sigmaUpper
	}
	if sigmaPlus < 1+5e-2 {
		logger.Warn("log-gamma block: for nearly symmetric uncertainties (%g vs %g), "+
			"this procedure may fail to find the correct parameter values; please use a Gaussian block instead",
			sigmaLower, sigmaUpper)
	}

	nu := central - lambda*math.Log(alpha)
	lg, _ := math.Lgamma(alpha)

	b := &logGammaBlock{
		cache:        cache,
		id:           cache.Add(obs),
		central:      central,
		sigmaLower:   sigmaLower,
		sigmaUpper:   sigmaUpper,
		nu:           nu,
		lambda:       lambda,
		alpha:        alpha,
		norm:         -lg - math.Log(math.Abs(lambda)),
		observations: observations,
		logger:       logger,
	}

	// consistency: the band must hold the one-sigma mass ...
	if math.Abs(b.cdf(central+sigmaUpper)-b.cdf(central-sigmaLower)-oneSigmaCoverage) > calibrationTolerance {
		return nil, errors.CalibrationMismatchf(
			"log-gamma block: for lambda = %g, alpha = %g the interval [%g, %g] does not contain approx. 68%%",
			lambda, alpha, min, max)
	}
	// ... with equal density at both edges
	zPlus := (central + sigmaUpper - nu) / lambda
	zMinus := (central - sigmaLower - nu) / lambda
	if math.Abs(alpha*zPlus-math.Exp(zPlus)-alpha*zMinus+math.Exp(zMinus)) > calibrationTolerance {
		return nil, errors.CalibrationMismatchf(
			"log-gamma block: for lambda = %g, alpha = %g the density at %g does not equal the density at %g",
			lambda, alpha, min, max)
	}

	return b, nil
}

// logGammaResiduals evaluates the two calibration conditions for the
// standardized problem (central = 0, sigma_minus = 1): equal log-density
// at -1 and +sigmaPlus, and one-sigma coverage between them.
func logGammaResiduals(lambda, alpha, sigmaPlus float64) (first, second float64, ok bool) {
	if alpha <= 0 || alpha > 1000 || lambda >= 0 {
		return 0, 0, false
	}

	nu := -lambda * math.Log(alpha)
	zPlus := (sigmaPlus - nu) / lambda
	zMinus := (-1.0 - nu) / lambda

	first = alpha*zPlus - math.Exp(zPlus) - alpha*zMinus + math.Exp(zMinus)

	cdfPlus := mathext.GammaIncRegComp(alpha, math.Exp(zPlus))
	cdfMinus := mathext.GammaIncRegComp(alpha, math.Exp(zMinus))
	second = (cdfPlus - cdfMinus) - oneSigmaCoverage

	if math.IsNaN(first) || math.IsNaN(second) {
		return 0, 0, false
	}
	return first, second, true
}

// solveLogGammaShape finds (lambda, alpha) for the standardized problem by
// a derivative-free least-squares search followed by a Newton polish.
func solveLogGammaShape(lambdaInitial, alphaInitial, sigmaPlus float64, logger *internal.Logger) (float64, float64, error) {
	objective := func(x []float64) float64 {
		first, second, ok := logGammaResiduals(x[0], x[1], sigmaPlus)
		if !ok {
			return 1e10
		}
		return math.Abs(first) + math.Abs(second)
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{Absolute: 1e-12, Iterations: 100},
	}

	x0 := []float64{lambdaInitial, alphaInitial}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})

	lambda, alpha := lambdaInitial, alphaInitial
	if result != nil {
		lambda, alpha = result.X[0], result.X[1]
	}
	if err != nil {
		logger.Debug("log-gamma block: minimizer stopped early: %v", err)
	}

	// polish to full precision on the root of the two-condition system
	polished, perr := numeric.Newton2D(func(x [2]float64) [2]float64 {
		first, second, ok := logGammaResiduals(x[0], x[1], sigmaPlus)
		if !ok {
			return [2]float64{1e10, 1e10}
		}
		return [2]float64{first, second}
	}, [2]float64{lambda, alpha}, 1e-10, 100)
	if perr == nil {
		lambda, alpha = polished[0], polished[1]
	}

	if value := objective([]float64{lambda, alpha}); value > 1e-3 {
		logger.Error("log-gamma block: solution of calibration constraints failed, residual %g "+
			"at lambda = %g, alpha = %g", value, lambda, alpha)
	}

	return lambda, alpha, nil
}

// cdf branches on the sign of lambda: for negative lambda large x maps to
// small z, so the upper regularized incomplete gamma applies directly.
func (b *logGammaBlock) cdf(x float64) float64 {
	z := math.Exp((x - b.nu) / b.lambda)

	if b.lambda < 0 {
		return mathext.GammaIncRegComp(b.alpha, z)
	}
	return 1.0 - mathext.GammaIncRegComp(b.alpha, z)
}

func (b *logGammaBlock) Evaluate() float64 {
	value := (b.cache.Value(b.id) - b.nu) / b.lambda
	return b.norm + b.alpha*value - math.Exp(value)
}

func (b *logGammaBlock) NumberOfObservations() uint {
	return b.observations
}

// Sample draws from the standard gamma distribution, log-transforms, and
// rejects draws outside central +- 3 sigma. The draw is then treated as
// the mode of a shifted density which is evaluated at the experimental
// central value, keeping the test-statistic distribution independent of
// the realized sample.
func (b *logGammaBlock) Sample(rng *rand.Rand) (float64, error) {
	rangeMin := b.central - 3.0*b.sigmaLower
	rangeMax := b.central + 3.0*b.sigmaUpper

	gamma := distuv.Gamma{Alpha: b.alpha, Beta: 1, Src: rng}

	var x float64
	for {
		x = b.lambda*math.Log(gamma.Rand()) + b.nu
		if rangeMin < x && x < rangeMax {
			break
		}
	}

	// pretend the pseudo measurement were the mode of the density
	nuPseudo := x - b.lambda*math.Log(b.alpha)
	value := (b.central - nuPseudo) / b.lambda

	return b.norm + b.alpha*value - math.Exp(value), nil
}

// Significance finds the mirror point of equal density on the opposite
// side of the mode by derivative-aware root finding, converts the enclosed
// probability mass to Gaussian sigma units, and signs the result by which
// side the prediction fell on.
func (b *logGammaBlock) Significance() (float64, error) {
	value := b.cache.Value(b.id)

	// standardized coordinate of the prediction, fixed during the search
	zp := (value - b.nu) / b.lambda

	f := func(x float64) float64 {
		zm := (x - b.nu) / b.lambda
		return b.alpha*(zp-zm) - math.Exp(zp) + math.Exp(zm)
	}
	df := func(x float64) float64 {
		zm := (x - b.nu) / b.lambda
		return (math.Exp(zm) - b.alpha) / b.lambda
	}

	// start from the naive reflection across the central value
	mirror := 2.0*b.central - value

	mirror, iters, err := numeric.NewtonRaphson(f, df, mirror, rootTolerance, maxRootIterations)
	if err != nil {
		// keep the last iterate; the caller still gets an estimate
		b.logger.Error("log-gamma block: could not find the mirror point, stopped after %d iterations with f(%g) = %g",
			iters, mirror, f(mirror))
	}

	p := math.Abs(b.cdf(value) - b.cdf(mirror))
	absSignificance := sigmaUnits(p)

	if b.central > value {
		return absSignificance, nil
	}
	return -absSignificance, nil
}

func (b *logGammaBlock) Clone(cache *observable.Cache) (Block, error) {
	obs := b.cache.Observable(b.id).Clone(cache.Parameters())
	return LogGammaWithShape(cache, obs,
		b.central-b.sigmaLower, b.central, b.central+b.sigmaUpper,
		b.lambda, b.alpha, b.observations, b.logger)
}

func (b *logGammaBlock) String() string {
	result := fmt.Sprintf("LogGamma: %g + %g - %g (nu = %g, lambda = %g, alpha = %g)",
		b.central, b.sigmaUpper, b.sigmaLower, b.nu, b.lambda, b.alpha)
	if b.observations == 0 {
		result += "; no observation"
	}
	return result
}
