package internal

import (
	"github.com/normcast-labs/normcast/internal/expr"
)

// Context supplies the caller-side capabilities the pipeline consumes: a
// discharger for rule side conditions and lookups over the known coercion
// tower. The engine never inspects how a condition was discharged, only
// the boolean outcome.
type Context interface {
	// Discharge attempts to close a side condition. Failure is local: the
	// candidate rule using the condition is skipped.
	Discharge(goal expr.Expr) bool

	// FindCoercion returns the coercion functor embedding from into to.
	FindCoercion(from, to expr.TypeTag) (expr.Const, bool)

	// HasOne reports whether the type has a multiplicative identity.
	HasOne(t expr.TypeTag) bool

	// HasZero reports whether the type has an additive identity.
	HasZero(t expr.TypeTag) bool
}
