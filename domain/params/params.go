package params

import (
	"fmt"

	"gofit/internal/errors"
)

// Template declares a parameter before it is bound to a Set: a name, the
// allowed range and the starting (central) value.
type Template struct {
	Name    string
	Min     float64
	Central float64
	Max     float64
}

// Parameter is a named, bounded, mutable scalar. Parameters are shared by
// reference: every holder of the owning Set observes mutations immediately.
type Parameter struct {
	name    string
	min     float64
	central float64
	max     float64
	value   float64
}

// Name returns the parameter name
func (p *Parameter) Name() string { return p.name }

// Min returns the lower bound
func (p *Parameter) Min() float64 { return p.min }

// Central returns the declared central value
func (p *Parameter) Central() float64 { return p.central }

// Max returns the upper bound
func (p *Parameter) Max() float64 { return p.max }

// Value returns the current value
func (p *Parameter) Value() float64 { return p.value }

// Set assigns a new value, visible to all holders of the parameter
func (p *Parameter) Set(value float64) { p.value = value }

// Reset restores the declared central value
func (p *Parameter) Reset() { p.value = p.central }

// Set is an ordered, name-indexed collection of parameters. The zero value
// is not usable; construct with NewSet.
type Set struct {
	ordered []*Parameter
	byName  map[string]*Parameter
}

// NewSet creates an empty parameter set
func NewSet() *Set {
	return &Set{byName: make(map[string]*Parameter)}
}

// NewSetFrom creates a set holding one parameter per template
func NewSetFrom(templates ...Template) (*Set, error) {
	s := NewSet()
	for _, t := range templates {
		if _, err := s.Declare(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Declare registers a new parameter. The central value must lie inside
// [min, max] and names must be unique within the set.
func (s *Set) Declare(t Template) (*Parameter, error) {
	if t.Name == "" {
		return nil, errors.Configuration("parameter name must not be empty")
	}
	if _, ok := s.byName[t.Name]; ok {
		return nil, errors.Configurationf("parameter %q already declared", t.Name)
	}
	if t.Min > t.Central || t.Central > t.Max {
		return nil, errors.Configurationf("parameter %q: need min <= central <= max, got [%g, %g, %g]",
			t.Name, t.Min, t.Central, t.Max)
	}
	p := &Parameter{
		name:    t.Name,
		min:     t.Min,
		central: t.Central,
		max:     t.Max,
		value:   t.Central,
	}
	s.ordered = append(s.ordered, p)
	s.byName[t.Name] = p
	return p, nil
}

// Get looks a parameter up by name
func (s *Set) Get(name string) (*Parameter, error) {
	p, ok := s.byName[name]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("parameter %q", name))
	}
	return p, nil
}

// Has reports whether a parameter of that name exists
func (s *Set) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Len returns the number of declared parameters
func (s *Set) Len() int { return len(s.ordered) }

// Parameters returns the parameters in declaration order
func (s *Set) Parameters() []*Parameter {
	out := make([]*Parameter, len(s.ordered))
	copy(out, s.ordered)
	return out
}

// Clone deep-copies the set: same declarations, current values preserved,
// no storage shared with the receiver.
func (s *Set) Clone() *Set {
	clone := NewSet()
	for _, p := range s.ordered {
		cp := &Parameter{
			name:    p.name,
			min:     p.min,
			central: p.central,
			max:     p.max,
			value:   p.value,
		}
		clone.ordered = append(clone.ordered, cp)
		clone.byName[cp.name] = cp
	}
	return clone
}
