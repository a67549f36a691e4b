package likelihood

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/stat/distuv"

	"gofit/domain/observable"
	"gofit/domain/params"
	"gofit/internal/errors"
	"gofit/ports"
)

func constantObservables(values ...float64) []ports.Observable {
	out := make([]ports.Observable, len(values))
	for i, v := range values {
		out[i] = observable.NewConstant(v)
	}
	return out
}

func TestMultivariateGaussianDiagonalReduction(t *testing.T) {
	// with a diagonal covariance the block factorizes into independent
	// univariate normals
	set := params.NewSet()
	cache := observable.NewCache(set)

	mean := []float64{1.0, 2.0}
	covariance := [][]float64{
		{0.01, 0.0},
		{0.0, 0.04},
	}

	block, err := MultivariateGaussian(cache, constantObservables(1.05, 2.3), mean, covariance, 2)
	require.NoError(t, err)
	cache.Update()

	want := distuv.Normal{Mu: 1.0, Sigma: 0.1}.LogProb(1.05) +
		distuv.Normal{Mu: 2.0, Sigma: 0.2}.LogProb(2.3)
	assert.InDelta(t, want, block.Evaluate(), 1e-12)
}

func TestMultivariateGaussianCorrelated(t *testing.T) {
	set := params.NewSet()
	cache := observable.NewCache(set)

	const (
		sigma1 = 0.1
		sigma2 = 0.2
		rho    = 0.6
	)
	mean := []float64{1.0, 2.0}
	covariance := [][]float64{
		{sigma1 * sigma1, rho * sigma1 * sigma2},
		{rho * sigma1 * sigma2, sigma2 * sigma2},
	}

	block, err := MultivariateGaussian(cache, constantObservables(1.08, 2.1), mean, covariance, 2)
	require.NoError(t, err)
	cache.Update()

	// closed form of the bivariate normal log-density
	d1 := (1.08 - 1.0) / sigma1
	d2 := (2.1 - 2.0) / sigma2
	chiSquared := (d1*d1 - 2*rho*d1*d2 + d2*d2) / (1 - rho*rho)
	norm := -math.Log(2*math.Pi) - 0.5*math.Log(sigma1*sigma1*sigma2*sigma2*(1-rho*rho))
	assert.InDelta(t, norm-0.5*chiSquared, block.Evaluate(), 1e-10)

	// significance via the chi-squared cumulative with two degrees of freedom
	sig, err := block.Significance()
	require.NoError(t, err)
	assert.InDelta(t, sigmaUnits(distuv.ChiSquared{K: 2}.CDF(chiSquared)), sig, 1e-10)
	assert.GreaterOrEqual(t, sig, 0.0)
}

func TestMultivariateGaussianValidation(t *testing.T) {
	set := params.NewSet()
	cache := observable.NewCache(set)

	diag := [][]float64{{1, 0}, {0, 1}}

	tests := []struct {
		name        string
		observables []ports.Observable
		mean        []float64
		covariance  [][]float64
	}{
		{"no observables", nil, nil, nil},
		{"mean dimension mismatch", constantObservables(1, 2), []float64{1}, diag},
		{"covariance dimension mismatch", constantObservables(1, 2), []float64{1, 2}, [][]float64{{1, 0}}},
		{"covariance not square", constantObservables(1, 2), []float64{1, 2}, [][]float64{{1}, {0, 1}}},
		{"covariance not positive definite", constantObservables(1, 2), []float64{1, 2}, [][]float64{{1, 2}, {2, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MultivariateGaussian(cache, tt.observables, tt.mean, tt.covariance, 2)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
		})
	}
}

func TestMultivariateGaussianSample(t *testing.T) {
	set := params.NewSet()
	cache := observable.NewCache(set)

	mean := []float64{1.0, 2.0}
	covariance := [][]float64{
		{0.01, 0.002},
		{0.002, 0.04},
	}

	block, err := MultivariateGaussian(cache, constantObservables(1.0, 2.0), mean, covariance, 2)
	require.NoError(t, err)
	cache.Update()

	norm := block.(*multivariateGaussianBlock).norm
	rng := rand.New(rand.NewPCG(41, 41))

	for i := 0; i < 1000; i++ {
		s, err := block.Sample(rng)
		require.NoError(t, err)
		require.False(t, math.IsNaN(s))
		// the quadratic form is non-negative
		assert.LessOrEqual(t, s, norm)
	}
}

func TestMultivariateGaussianClone(t *testing.T) {
	set := params.NewSet()
	cache := observable.NewCache(set)

	mean := []float64{1.0, 2.0}
	covariance := [][]float64{
		{0.01, 0.002},
		{0.002, 0.04},
	}

	block, err := MultivariateGaussian(cache, constantObservables(1.02, 2.05), mean, covariance, 2)
	require.NoError(t, err)
	cache.Update()

	target := observableCacheForClone(t, cache)
	clone, err := block.Clone(target)
	require.NoError(t, err)
	target.Update()

	assert.Equal(t, block.Evaluate(), clone.Evaluate())
	assert.Equal(t, uint(2), clone.NumberOfObservations())
	assert.Equal(t, 2, target.Len())
}
