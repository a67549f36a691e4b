package likelihood

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofit/domain/observable"
	"gofit/domain/params"
	"gofit/internal/errors"
)

// fixedCache returns a cache holding a single constant observable fixed at
// value, with values already computed.
func fixedCache(t *testing.T, value float64) (*observable.Cache, *observable.Constant) {
	t.Helper()
	set := params.NewSet()
	cache := observable.NewCache(set)
	obs := observable.NewConstant(value)
	cache.Update()
	return cache, obs
}

// observableCacheForClone builds an empty cache over an independent copy of
// the source cache's parameters, the usual target of a block Clone.
func observableCacheForClone(t *testing.T, src *observable.Cache) *observable.Cache {
	t.Helper()
	return observable.NewCache(src.Parameters().Clone())
}

func TestGaussianEvaluateAtMode(t *testing.T) {
	cache, obs := fixedCache(t, 1.0)

	block, err := Gaussian(cache, obs, 0.9, 1.0, 1.2, 1)
	require.NoError(t, err)
	cache.Update()

	// chi = 0 at the mode, so the log-density is exactly the normalization
	norm := math.Log(math.Sqrt(2.0/math.Pi) / (0.2 + 0.1))
	assert.Equal(t, norm, block.Evaluate())

	sig, err := block.Significance()
	require.NoError(t, err)
	assert.Equal(t, 0.0, sig)

	assert.Equal(t, uint(1), block.NumberOfObservations())
}

func TestGaussianEvaluateOffMode(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		chi     float64
		wantSig float64
	}{
		{"above mode uses sigma_upper", 1.3, (1.3 - 1.0) / 0.2, -1.5},
		{"below mode uses sigma_lower", 0.95, (0.95 - 1.0) / 0.1, 0.5},
	}

	norm := math.Log(math.Sqrt(2.0/math.Pi) / 0.3)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, obs := fixedCache(t, tt.value)
			block, err := Gaussian(cache, obs, 0.9, 1.0, 1.2, 1)
			require.NoError(t, err)
			cache.Update()

			assert.InDelta(t, norm-tt.chi*tt.chi/2.0, block.Evaluate(), 1e-14)

			sig, err := block.Significance()
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSig, sig, 1e-14)
		})
	}
}

func TestGaussianValidation(t *testing.T) {
	cache, obs := fixedCache(t, 1.0)

	tests := []struct {
		name             string
		min, central, max float64
	}{
		{"min above central", 1.1, 1.0, 1.2},
		{"min equals central", 1.0, 1.0, 1.2},
		{"max below central", 0.9, 1.0, 0.8},
		{"max equals central", 0.9, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Gaussian(cache, obs, tt.min, tt.central, tt.max, 1)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
		})
	}
}

func TestGaussianBandRoundTrip(t *testing.T) {
	cache, obs := fixedCache(t, 1.0)

	block, err := Gaussian(cache, obs, 0.9, 1.0, 1.2, 1)
	require.NoError(t, err)

	// reconstructing the band from the derived sigmas recovers the inputs
	g := block.(*gaussianBlock)
	assert.Equal(t, 0.9, g.mode-g.sigmaLower)
	assert.Equal(t, 1.2, g.mode+g.sigmaUpper)
}

func TestGaussianClone(t *testing.T) {
	set := params.NewSet()
	cache := observable.NewCache(set)
	obs := observable.NewConstant(1.05)

	block, err := Gaussian(cache, obs, 0.9, 1.0, 1.2, 1)
	require.NoError(t, err)
	cache.Update()

	targetSet := set.Clone()
	target := observable.NewCache(targetSet)
	clone, err := block.Clone(target)
	require.NoError(t, err)
	target.Update()

	assert.Equal(t, block.Evaluate(), clone.Evaluate())
	assert.Equal(t, block.NumberOfObservations(), clone.NumberOfObservations())
	assert.Equal(t, 1, target.Len())
}

func TestGaussianSample(t *testing.T) {
	cache, obs := fixedCache(t, 1.0)

	block, err := Gaussian(cache, obs, 0.9, 1.0, 1.2, 1)
	require.NoError(t, err)
	cache.Update()

	norm := math.Log(math.Sqrt(2.0/math.Pi) / 0.3)
	rng := rand.New(rand.NewPCG(17, 17))

	for i := 0; i < 1000; i++ {
		s, err := block.Sample(rng)
		require.NoError(t, err)
		// a log-density can never exceed the density at the mode
		assert.LessOrEqual(t, s, norm)
	}
}

func TestGaussianString(t *testing.T) {
	cache, obs := fixedCache(t, 1.0)

	asym, err := Gaussian(cache, obs, 0.9, 1.0, 1.2, 1)
	require.NoError(t, err)
	assert.Contains(t, asym.String(), "Gaussian")

	none, err := Gaussian(cache, obs, 0.9, 1.0, 1.2, 0)
	require.NoError(t, err)
	assert.Contains(t, none.String(), "no observation")
}
