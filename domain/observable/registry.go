package observable

import (
	"gofit/domain/params"
	"gofit/ports"
)

// Kinematics carries the numeric kinematic arguments of an observable,
// e.g. bin boundaries. Opaque to the likelihood machinery.
type Kinematics map[string]float64

// Get returns the value for key, or def when the key is absent
func (k Kinematics) Get(key string, def float64) float64 {
	if v, ok := k[key]; ok {
		return v
	}
	return def
}

// Factory builds an observable from parameter storage, kinematics and the
// option overrides parsed out of the name string.
type Factory func(set *params.Set, kin Kinematics, opts Options) (ports.Observable, error)

// registry maps bare observable names to factories. It is populated once
// from the static table below plus any Register calls made during init.
var registry = map[string]Factory{}

// Register adds a factory under the given bare name, replacing any
// previous entry.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// Lookup parses raw, strips option suffixes and matches the remaining name
// verbatim against the registry. An unmatched name yields (nil, nil); a
// malformed option clause yields a name-format error.
func Lookup(raw string, set *params.Set, kin Kinematics) (ports.Observable, error) {
	name, opts, err := ParseName(raw)
	if err != nil {
		return nil, err
	}

	factory, ok := registry[name]
	if !ok {
		return nil, nil
	}

	return factory(set, kin, opts)
}

func init() {
	Register("parameter::value", newParameterValue)
	Register("parameter::affine", newParameterAffine)
	Register("constant::value", newConstantValue)
}
