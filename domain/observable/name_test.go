package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofit/domain/params"
	"gofit/internal/errors"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantBase string
		wantOpts Options
		wantErr  bool
	}{
		{
			name:     "bare name",
			raw:      "B->K::f_+@LCSR",
			wantBase: "B->K::f_+@LCSR",
			wantOpts: Options{},
		},
		{
			name:     "single option",
			raw:      "B->K::f_+@LCSR,model=WET",
			wantBase: "B->K::f_+@LCSR",
			wantOpts: Options{"model": "WET"},
		},
		{
			name:     "multiple options stripped right to left",
			raw:      "B->K::f_+@LCSR,model=WET,form-factors=BSZ2015",
			wantBase: "B->K::f_+@LCSR",
			wantOpts: Options{"model": "WET", "form-factors": "BSZ2015"},
		},
		{
			name:     "rightmost duplicate wins",
			raw:      "obs@tag,model=SM,model=WET",
			wantBase: "obs@tag",
			wantOpts: Options{"model": "WET"},
		},
		{
			name:     "empty value allowed",
			raw:      "obs@tag,model=",
			wantBase: "obs@tag",
			wantOpts: Options{"model": ""},
		},
		{
			name:    "missing equals",
			raw:     "obs@tag,model",
			wantErr: true,
		},
		{
			name:    "empty key",
			raw:     "obs@tag,=WET",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, opts, err := ParseName(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeNameFormat, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantOpts, opts)
		})
	}
}

func TestLookup(t *testing.T) {
	set, err := params.NewSetFrom(params.Template{Name: "mu", Min: 0, Central: 1.0, Max: 2.0})
	require.NoError(t, err)

	obs, err := Lookup("parameter::value,name=mu", set, nil)
	require.NoError(t, err)
	require.NotNil(t, obs)
	assert.Equal(t, 1.0, obs.Evaluate())

	// an unmatched name is a null result, not an error
	obs, err = Lookup("no::such@observable", set, nil)
	require.NoError(t, err)
	assert.Nil(t, obs)

	// a malformed option clause is an error even for unknown names
	_, err = Lookup("no::such@observable,model", set, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeNameFormat, errors.GetCode(err))
}

func TestLookupKinematics(t *testing.T) {
	set, err := params.NewSetFrom(params.Template{Name: "mu", Min: 0, Central: 1.0, Max: 2.0})
	require.NoError(t, err)

	obs, err := Lookup("parameter::affine,name=mu", set, Kinematics{"scale": 3.0, "shift": 0.5})
	require.NoError(t, err)
	require.NotNil(t, obs)
	assert.Equal(t, 3.5, obs.Evaluate())

	obs, err = Lookup("constant::value", set, Kinematics{"value": 2.25})
	require.NoError(t, err)
	require.NotNil(t, obs)
	assert.Equal(t, 2.25, obs.Evaluate())
}
