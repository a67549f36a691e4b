package likelihood

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"gofit/domain/observable"
	"gofit/internal/errors"
	"gofit/ports"
)

// multivariateGaussianBlock scores k correlated observables against a mean
// vector and covariance matrix. The Cholesky factor (for sampling), the
// inverse covariance (for evaluation) and the log-normalization (via an
// LU log-determinant) are derived once at construction.
type multivariateGaussianBlock struct {
	cache *observable.Cache
	ids   []observable.ID

	mean       *mat.VecDense
	covariance *mat.SymDense

	chol          *mat.TriDense
	covarianceInv *mat.SymDense
	norm          float64

	observations uint
}

// MultivariateGaussian constructs a correlated Gaussian block over the
// given observables, which are registered on the cache in order. The mean
// and the symmetric positive-definite covariance must match the number of
// observables.
func MultivariateGaussian(cache *observable.Cache, observables []ports.Observable, mean []float64, covariance [][]float64, observations uint) (Block, error) {
	k := len(observables)
	if k < 1 {
		return nil, errors.Configuration("multivariate gaussian block: no observables")
	}
	if len(mean) != k {
		return nil, errors.Configurationf("multivariate gaussian block: dimensions of observables (%d) and mean (%d) are not identical", k, len(mean))
	}
	if len(covariance) != k {
		return nil, errors.Configurationf("multivariate gaussian block: dimensions of observables (%d) and covariance matrix (%d) are not identical", k, len(covariance))
	}
	for i, row := range covariance {
		if len(row) != k {
			return nil, errors.Configurationf("multivariate gaussian block: covariance matrix is not a square matrix (row %d has %d entries)", i, len(row))
		}
	}

	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, covariance[i][j])
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errors.Configuration("multivariate gaussian block: covariance matrix is not positive definite")
	}

	// lower factor only; the upper part stays zero
	lower := mat.NewTriDense(k, mat.Lower, nil)
	chol.LTo(lower)

	inv := mat.NewSymDense(k, nil)
	if err := chol.InverseTo(inv); err != nil {
		return nil, errors.Wrap(err, "multivariate gaussian block: cannot invert covariance")
	}

	// log-determinant via LU, as the normalization requires
	var lu mat.LU
	lu.Factorize(sym)
	logDet, _ := lu.LogDet()

	ids := make([]observable.ID, k)
	for i, o := range observables {
		ids[i] = cache.Add(o)
	}

	return &multivariateGaussianBlock{
		cache:         cache,
		ids:           ids,
		mean:          mat.NewVecDense(k, append([]float64(nil), mean...)),
		covariance:    sym,
		chol:          lower,
		covarianceInv: inv,
		norm:          -0.5*float64(k)*math.Log(2*math.Pi) - 0.5*logDet,
		observations:  observations,
	}, nil
}

// chiSquare computes the Mahalanobis distance squared of the live cached
// values from the mean.
func (b *multivariateGaussianBlock) chiSquare() float64 {
	k := len(b.ids)

	diff := mat.NewVecDense(k, nil)
	for i, id := range b.ids {
		diff.SetVec(i, b.cache.Value(id)-b.mean.AtVec(i))
	}

	var tmp mat.VecDense
	tmp.MulVec(b.covarianceInv, diff)

	return mat.Dot(diff, &tmp)
}

func (b *multivariateGaussianBlock) Evaluate() float64 {
	return b.norm - 0.5*b.chiSquare()
}

func (b *multivariateGaussianBlock) NumberOfObservations() uint {
	return b.observations
}

// Sample draws k standard normals and maps them through the Cholesky
// factor. Consistency with the univariate convention would center the
// deviate on the prediction and compare against the prediction, so the
// prediction drops out and the draw stays centered at zero.
func (b *multivariateGaussianBlock) Sample(rng *rand.Rand) (float64, error) {
	k := len(b.ids)

	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	u := mat.NewVecDense(k, nil)
	for i := 0; i < k; i++ {
		u.SetVec(i, unit.Rand())
	}

	var deviate mat.VecDense
	deviate.MulVec(b.chol, u)

	var tmp mat.VecDense
	tmp.MulVec(b.covarianceInv, &deviate)

	return b.norm - 0.5*mat.Dot(&deviate, &tmp), nil
}

// Significance maps the Mahalanobis distance through the chi-squared
// cumulative with k degrees of freedom into Gaussian sigma units. The
// result is non-negative; a negative significance is ruled out by
// construction.
func (b *multivariateGaussianBlock) Significance() (float64, error) {
	chiSquared := b.chiSquare()
	p := distuv.ChiSquared{K: float64(len(b.ids))}.CDF(chiSquared)
	return sigmaUnits(p), nil
}

func (b *multivariateGaussianBlock) Clone(cache *observable.Cache) (Block, error) {
	k := len(b.ids)

	observables := make([]ports.Observable, k)
	for i, id := range b.ids {
		observables[i] = b.cache.Observable(id).Clone(cache.Parameters())
	}

	mean := make([]float64, k)
	covariance := make([][]float64, k)
	for i := 0; i < k; i++ {
		mean[i] = b.mean.AtVec(i)
		covariance[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			covariance[i][j] = b.covariance.At(i, j)
		}
	}

	return MultivariateGaussian(cache, observables, mean, covariance, b.observations)
}

func (b *multivariateGaussianBlock) String() string {
	return fmt.Sprintf("Multivariate Gaussian: means = %v, covariance matrix = %v",
		mat.Formatted(b.mean.T()), mat.Formatted(b.covariance))
}
