package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofit/internal/errors"
)

func TestNewtonRaphson(t *testing.T) {
	// root of x^2 - 2
	f := func(x float64) float64 { return x*x - 2 }
	df := func(x float64) float64 { return 2 * x }

	root, iters, err := NewtonRaphson(f, df, 1.0, 1e-7, 400)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2, root, 1e-9)
	assert.Less(t, iters, 20)
}

func TestNewtonRaphsonTranscendental(t *testing.T) {
	// root of cos(x) - x, near 0.739085
	f := func(x float64) float64 { return math.Cos(x) - x }
	df := func(x float64) float64 { return -math.Sin(x) - 1 }

	root, _, err := NewtonRaphson(f, df, 0.5, 1e-7, 400)
	require.NoError(t, err)
	assert.InDelta(t, 0.7390851332151607, root, 1e-7)
}

func TestNewtonRaphsonBudgetExhausted(t *testing.T) {
	// Newton on arctan diverges for starting points beyond ~1.39
	f := math.Atan
	df := func(x float64) float64 { return 1 / (1 + x*x) }

	_, iters, err := NewtonRaphson(f, df, 2.0, 1e-12, 5)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNumericalNonConvergence, errors.GetCode(err))
	assert.Equal(t, 5, iters)
}

func TestBrent(t *testing.T) {
	tests := []struct {
		name   string
		f      func(float64) float64
		lo, hi float64
		want   float64
	}{
		{"sqrt2", func(x float64) float64 { return x*x - 2 }, 0, 2, math.Sqrt2},
		{"cubic", func(x float64) float64 { return x*x*x - x - 2 }, 1, 2, 1.5213797068045676},
		{"exp", func(x float64) float64 { return math.Exp(x) - 3 }, 0, 2, math.Log(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, iters, err := Brent(tt.f, tt.lo, tt.hi, 1e-7, 400)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, root, 1e-6)
			assert.LessOrEqual(t, iters, 400)
		})
	}
}

func TestBrentRequiresBracket(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	_, _, err := Brent(f, -1, 1, 1e-7, 400)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
}

func TestBrentEndpointRoot(t *testing.T) {
	f := func(x float64) float64 { return x - 1 }
	root, _, err := Brent(f, 1, 3, 1e-7, 400)
	require.NoError(t, err)
	assert.Equal(t, 1.0, root)
}
