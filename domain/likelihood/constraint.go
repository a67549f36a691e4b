package likelihood

import (
	"gofit/internal/errors"
	"gofit/ports"
)

// Constraint is a named, immutable bundle of observables and blocks
// representing one experimental input. Observables and blocks are parallel
// but not equal in count: a multivariate block consumes several
// observables.
type Constraint struct {
	name        string
	observables []ports.Observable
	blocks      []Block
}

// NewConstraint bundles observables and blocks under a non-empty name
func NewConstraint(name string, observables []ports.Observable, blocks []Block) (Constraint, error) {
	if name == "" {
		return Constraint{}, errors.Configuration("constraint: name must not be empty")
	}
	if len(blocks) == 0 {
		return Constraint{}, errors.Configurationf("constraint %q: no likelihood blocks", name)
	}

	return Constraint{
		name:        name,
		observables: append([]ports.Observable(nil), observables...),
		blocks:      append([]Block(nil), blocks...),
	}, nil
}

// Name returns the constraint's identifier
func (c Constraint) Name() string { return c.name }

// Observables returns the bundled observables
func (c Constraint) Observables() []ports.Observable {
	return append([]ports.Observable(nil), c.observables...)
}

// Blocks returns the bundled likelihood blocks
func (c Constraint) Blocks() []Block {
	return append([]Block(nil), c.blocks...)
}

// NumberOfObservations sums the observation counts of all blocks
func (c Constraint) NumberOfObservations() uint {
	var total uint
	for _, b := range c.blocks {
		total += b.NumberOfObservations()
	}
	return total
}
