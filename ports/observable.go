package ports

import (
	"gofit/domain/params"
)

// Observable is a named scalar prediction depending on the current state of
// a parameter set. Implementations are treated as pure functions of the
// parameter values: Evaluate must be free of side effects, and Clone must
// produce an equivalent observable bound to different parameter storage.
type Observable interface {
	// Name identifies the observable, e.g. "B->K::f_+@LCSR"
	Name() string

	// Evaluate computes the prediction under the current parameter values
	Evaluate() float64

	// Clone rebinds the observable to the given parameter set
	Clone(set *params.Set) Observable
}
