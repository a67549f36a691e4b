package likelihood

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gofit/domain/observable"
	"gofit/internal/errors"
	"gofit/ports"
)

// gaussianBlock models an asymmetric measurement x^{+sigma_upper}_{-sigma_lower}
// as two half-normals glued at the mode. The coefficients
//
//	c_upper = 2 sigma_upper / (sigma_upper + sigma_lower)
//	c_lower = sigma_lower / sigma_upper * c_upper
//
// make the density continuous at the mode and normalized to one.
type gaussianBlock struct {
	cache *observable.Cache
	id    observable.ID

	mode       float64
	sigmaLower float64
	sigmaUpper float64

	cUpper float64
	cLower float64
	norm   float64

	observations uint
}

// Gaussian constructs an asymmetric Gaussian block for a measurement with
// central value central and one-sigma band [min, max]. The observable is
// registered on the cache.
func Gaussian(cache *observable.Cache, obs ports.Observable, min, central, max float64, observations uint) (Block, error) {
	if min >= central {
		return nil, errors.Configurationf("gaussian block: min value %g >= central value %g", min, central)
	}
	if max <= central {
		return nil, errors.Configurationf("gaussian block: max value %g <= central value %g", max, central)
	}

	id := cache.Add(obs)

	sigmaLower := central - min
	sigmaUpper := max - central
	cUpper := 2.0 * sigmaUpper / (sigmaUpper + sigmaLower)

	return &gaussianBlock{
		cache:        cache,
		id:           id,
		mode:         central,
		sigmaLower:   sigmaLower,
		sigmaUpper:   sigmaUpper,
		cUpper:       cUpper,
		cLower:       sigmaLower / sigmaUpper * cUpper,
		norm:         math.Log(math.Sqrt(2.0/math.Pi) / (sigmaUpper + sigmaLower)),
		observations: observations,
	}, nil
}

func (b *gaussianBlock) Evaluate() float64 {
	value := b.cache.Value(b.id)

	sigma := b.sigmaLower
	if value > b.mode {
		sigma = b.sigmaUpper
	}

	chi := (value - b.mode) / sigma
	return b.norm - chi*chi/2.0
}

func (b *gaussianBlock) NumberOfObservations() uint {
	return b.observations
}

// Sample mirrors and shifts the experimental distribution onto the fixed
// theory prediction: the prediction becomes the most likely value, the
// experimental uncertainties are taken over with their sides flipped, and
// a pseudo-measurement is drawn by inverse transform. The return value is
// the log-density of the draw relative to the prediction.
func (b *gaussianBlock) Sample(rng *rand.Rand) (float64, error) {
	u := rng.Float64()

	a, bb := b.sigmaLower, b.sigmaUpper
	cb := b.cUpper

	// fixed theory prediction
	theory := b.cache.Value(b.id)

	var obs, sigma float64
	if u < bb/(a+bb) {
		obs = distuv.Normal{Mu: 0, Sigma: bb}.Quantile(u/cb) + theory
		sigma = bb
	} else {
		obs = distuv.Normal{Mu: 0, Sigma: a}.Quantile(u-0.5*cb) + theory
		sigma = a
	}

	chi := (theory - obs) / sigma
	return b.norm - chi*chi/2.0, nil
}

// Significance reports the deviation in units of the side-appropriate
// sigma; positive when the measured mode exceeds the prediction.
func (b *gaussianBlock) Significance() (float64, error) {
	value := b.cache.Value(b.id)

	sigma := b.sigmaLower
	if value > b.mode {
		sigma = b.sigmaUpper
	}

	return (b.mode - value) / sigma, nil
}

func (b *gaussianBlock) Clone(cache *observable.Cache) (Block, error) {
	obs := b.cache.Observable(b.id).Clone(cache.Parameters())
	return Gaussian(cache, obs, b.mode-b.sigmaLower, b.mode, b.mode+b.sigmaUpper, b.observations)
}

func (b *gaussianBlock) String() string {
	var result string
	if b.sigmaUpper == b.sigmaLower {
		result = fmt.Sprintf("Gaussian: %g +- %g", b.mode, b.sigmaUpper)
	} else {
		result = fmt.Sprintf("Gaussian: %g + %g - %g", b.mode, b.sigmaUpper, b.sigmaLower)
	}
	if b.observations == 0 {
		result += "; no observation"
	}
	return result
}
