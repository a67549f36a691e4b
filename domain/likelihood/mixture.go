package likelihood

import (
	"math"
	"math/rand/v2"
	"strings"

	"gofit/domain/observable"
	"gofit/internal/errors"
)

// mixtureBlock is a weighted sum of component blocks. Mixtures are
// evaluation-only: sampling and significance have no agreed semantics for
// this design and report an unsupported operation.
type mixtureBlock struct {
	components []Block
	weights    []float64
}

// Mixture constructs a mixture of the given components. Weights must be
// non-negative with a positive sum; they are normalized to sum to one.
func Mixture(components []Block, weights []float64) (Block, error) {
	if len(components) == 0 {
		return nil, errors.Configuration("mixture block: no components")
	}
	if len(components) != len(weights) {
		return nil, errors.Configurationf("mixture block: %d components but %d weights", len(components), len(weights))
	}

	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, errors.Configurationf("mixture block: negative weight %g", w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, errors.Configuration("mixture block: weights are not normalizable")
	}

	normalized := make([]float64, len(weights))
	for i, w := range weights {
		normalized[i] = w / sum
	}

	return &mixtureBlock{components: components, weights: normalized}, nil
}

// Evaluate computes log(sum_i w_i exp(l_i)) by log-sum-exp: the maximum
// component log-density is factored out before exponentiating.
func (b *mixtureBlock) Evaluate() float64 {
	max := math.Inf(-1)
	values := make([]float64, len(b.components))
	for i, c := range b.components {
		values[i] = c.Evaluate()
		if values[i] > max {
			max = values[i]
		}
	}

	sum := 0.0
	for i, w := range b.weights {
		sum += w * math.Exp(values[i]-max)
	}

	return math.Log(sum) + max
}

func (b *mixtureBlock) NumberOfObservations() uint {
	var total uint
	for _, c := range b.components {
		total += c.NumberOfObservations()
	}
	return total
}

func (b *mixtureBlock) Sample(_ *rand.Rand) (float64, error) {
	return 0, errors.UnsupportedOperation("mixture block: sample is not implemented")
}

func (b *mixtureBlock) Significance() (float64, error) {
	return 0, errors.UnsupportedOperation("mixture block: significance is not implemented")
}

func (b *mixtureBlock) Clone(cache *observable.Cache) (Block, error) {
	clones := make([]Block, len(b.components))
	for i, c := range b.components {
		clone, err := c.Clone(cache)
		if err != nil {
			return nil, err
		}
		clones[i] = clone
	}
	return Mixture(clones, b.weights)
}

func (b *mixtureBlock) String() string {
	var sb strings.Builder
	sb.WriteString("Mixture:\n")
	for _, c := range b.components {
		sb.WriteString(c.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
