package observable

import (
	"fmt"

	"gofit/domain/params"
	"gofit/internal/errors"
	"gofit/ports"
)

// The built-in observables below are parameter plumbing, not physics: they
// let analyses and tests reference parameters (optionally rescaled) without
// a full prediction backend. Real observables come from external factories
// registered through Register.

// ParameterValue exposes one parameter's current value as an observable
type ParameterValue struct {
	parameter *params.Parameter
	raw       string
}

// NewParameterValue creates an observable reading the named parameter
func NewParameterValue(set *params.Set, name string) (*ParameterValue, error) {
	p, err := set.Get(name)
	if err != nil {
		return nil, err
	}
	return &ParameterValue{
		parameter: p,
		raw:       fmt.Sprintf("parameter::value,name=%s", name),
	}, nil
}

// Name returns the full observable name including options
func (o *ParameterValue) Name() string { return o.raw }

// Evaluate returns the parameter's current value
func (o *ParameterValue) Evaluate() float64 { return o.parameter.Value() }

// Clone rebinds the observable to the same-named parameter in set
func (o *ParameterValue) Clone(set *params.Set) ports.Observable {
	p, err := set.Get(o.parameter.Name())
	if err != nil {
		// clone targets always stem from Set.Clone, which preserves names
		panic(fmt.Sprintf("observable: clone target lacks parameter %q", o.parameter.Name()))
	}
	return &ParameterValue{parameter: p, raw: o.raw}
}

// ParameterAffine exposes scale*p + shift for one parameter p
type ParameterAffine struct {
	parameter    *params.Parameter
	scale, shift float64
	raw          string
}

// NewParameterAffine creates an observable computing scale*p + shift
func NewParameterAffine(set *params.Set, name string, scale, shift float64) (*ParameterAffine, error) {
	p, err := set.Get(name)
	if err != nil {
		return nil, err
	}
	return &ParameterAffine{
		parameter: p,
		scale:     scale,
		shift:     shift,
		raw:       fmt.Sprintf("parameter::affine,name=%s", name),
	}, nil
}

// Name returns the full observable name including options
func (o *ParameterAffine) Name() string { return o.raw }

// Evaluate returns scale*p + shift under the current parameter value
func (o *ParameterAffine) Evaluate() float64 {
	return o.scale*o.parameter.Value() + o.shift
}

// Clone rebinds the observable to the same-named parameter in set
func (o *ParameterAffine) Clone(set *params.Set) ports.Observable {
	p, err := set.Get(o.parameter.Name())
	if err != nil {
		panic(fmt.Sprintf("observable: clone target lacks parameter %q", o.parameter.Name()))
	}
	return &ParameterAffine{parameter: p, scale: o.scale, shift: o.shift, raw: o.raw}
}

// Constant is a fixed-value observable, useful for pinning a prediction in
// tests and toy analyses
type Constant struct {
	value float64
	raw   string
}

// NewConstant creates an observable that always evaluates to value
func NewConstant(value float64) *Constant {
	return &Constant{value: value, raw: fmt.Sprintf("constant::value[%g]", value)}
}

// Name returns the observable name
func (o *Constant) Name() string { return o.raw }

// Evaluate returns the fixed value
func (o *Constant) Evaluate() float64 { return o.value }

// Clone returns an equivalent constant; there is no parameter state to rebind
func (o *Constant) Clone(_ *params.Set) ports.Observable {
	return &Constant{value: o.value, raw: o.raw}
}

// registry factories

func newParameterValue(set *params.Set, _ Kinematics, opts Options) (ports.Observable, error) {
	name := opts.Get("name", "")
	if name == "" {
		return nil, errors.NameFormat("parameter::value requires a name=<parameter> option")
	}
	return NewParameterValue(set, name)
}

func newParameterAffine(set *params.Set, kin Kinematics, opts Options) (ports.Observable, error) {
	name := opts.Get("name", "")
	if name == "" {
		return nil, errors.NameFormat("parameter::affine requires a name=<parameter> option")
	}
	return NewParameterAffine(set, name, kin.Get("scale", 1.0), kin.Get("shift", 0.0))
}

func newConstantValue(_ *params.Set, kin Kinematics, _ Options) (ports.Observable, error) {
	return NewConstant(kin.Get("value", 0.0)), nil
}
