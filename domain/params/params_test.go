package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofit/internal/errors"
)

func TestDeclareAndGet(t *testing.T) {
	set := NewSet()

	p, err := set.Declare(Template{Name: "mass::b", Min: 4.13, Central: 4.20, Max: 4.37})
	require.NoError(t, err)
	assert.Equal(t, "mass::b", p.Name())
	assert.Equal(t, 4.20, p.Value())

	got, err := set.Get("mass::b")
	require.NoError(t, err)
	assert.Same(t, p, got)

	_, err = set.Get("mass::c")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestDeclareValidation(t *testing.T) {
	set := NewSet()

	tests := []struct {
		name     string
		template Template
	}{
		{"empty name", Template{Name: "", Min: 0, Central: 0, Max: 1}},
		{"central below min", Template{Name: "a", Min: 1, Central: 0, Max: 2}},
		{"central above max", Template{Name: "b", Min: 0, Central: 3, Max: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := set.Declare(tt.template)
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfiguration, errors.GetCode(err))
		})
	}

	_, err := set.Declare(Template{Name: "dup", Min: 0, Central: 0.5, Max: 1})
	require.NoError(t, err)
	_, err = set.Declare(Template{Name: "dup", Min: 0, Central: 0.5, Max: 1})
	require.Error(t, err)
}

func TestMutationSharedByReference(t *testing.T) {
	set := NewSet()
	p, err := set.Declare(Template{Name: "mu", Min: 2.4, Central: 4.2, Max: 9.6})
	require.NoError(t, err)

	// a second holder of the same set sees the mutation
	holder, err := set.Get("mu")
	require.NoError(t, err)
	p.Set(5.0)
	assert.Equal(t, 5.0, holder.Value())

	p.Reset()
	assert.Equal(t, 4.2, holder.Value())
}

func TestCloneIsIndependent(t *testing.T) {
	set := NewSet()
	p, err := set.Declare(Template{Name: "mu", Min: 2.4, Central: 4.2, Max: 9.6})
	require.NoError(t, err)
	p.Set(3.0)

	clone := set.Clone()
	cp, err := clone.Get("mu")
	require.NoError(t, err)

	// current value carried over
	assert.Equal(t, 3.0, cp.Value())

	// further mutation does not leak across the clone boundary
	cp.Set(7.0)
	assert.Equal(t, 3.0, p.Value())
	p.Set(2.5)
	assert.Equal(t, 7.0, cp.Value())
}

func TestOrderPreserved(t *testing.T) {
	set, err := NewSetFrom(
		Template{Name: "c1", Min: -1, Central: 0, Max: 1},
		Template{Name: "c2", Min: -1, Central: 0, Max: 1},
		Template{Name: "c3", Min: -1, Central: 0, Max: 1},
	)
	require.NoError(t, err)

	names := make([]string, 0, set.Len())
	for _, p := range set.Parameters() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, names)
}
