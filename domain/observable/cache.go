package observable

import (
	"gofit/domain/params"
	"gofit/ports"
)

// ID is an opaque handle identifying a registered observable's memoized
// slot in a Cache. Many likelihood blocks may reference the same ID.
type ID int

// Cache memoizes observable evaluations so that expensive theory
// predictions are computed once per parameter point. Update is the only
// mutator; reads return the value of the most recent Update.
type Cache struct {
	set         *params.Set
	observables []ports.Observable
	values      []float64
}

// NewCache creates an empty cache bound to the given parameter set
func NewCache(set *params.Set) *Cache {
	return &Cache{set: set}
}

// Parameters returns the parameter set the cached observables evaluate under
func (c *Cache) Parameters() *params.Set { return c.set }

// Add registers an observable and returns its slot id. Registering the
// same observable twice yields two ids; deduplication is not attempted.
func (c *Cache) Add(o ports.Observable) ID {
	c.observables = append(c.observables, o)
	c.values = append(c.values, 0)
	return ID(len(c.observables) - 1)
}

// Update recomputes every registered observable exactly once, in
// registration order, under the current parameter values. It must run
// after any parameter mutation and before reading values.
func (c *Cache) Update() {
	for i, o := range c.observables {
		c.values[i] = o.Evaluate()
	}
}

// Value returns the most recently computed value for id. It never
// triggers a computation.
func (c *Cache) Value(id ID) float64 {
	return c.values[id]
}

// Observable returns the observable registered under id
func (c *Cache) Observable(id ID) ports.Observable {
	return c.observables[id]
}

// Len returns the number of registered observables
func (c *Cache) Len() int { return len(c.observables) }

// Clone rebuilds an independent cache bound to set: every observable is
// cloned onto the new parameter storage and re-registered in the same
// slot, so id-to-slot correspondence is preserved.
func (c *Cache) Clone(set *params.Set) *Cache {
	clone := NewCache(set)
	for _, o := range c.observables {
		clone.Add(o.Clone(set))
	}
	copy(clone.values, c.values)
	return clone
}
