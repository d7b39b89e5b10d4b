package rules

import (
	"errors"
	"fmt"

	"github.com/normcast-labs/normcast/internal/expr"
)

// ErrBadShape rejects a rule whose pattern cannot reduce coercions.
var ErrBadShape = errors.New("bad rule shape")

// Classify computes a rule's label from the coercion counts of its two
// sides. The decision is purely structural, so re-running it on a stored
// rule always reproduces the cached label.
func Classify(lhs, rhs expr.Expr) (Label, error) {
	if expr.TotalCoercions(lhs) == 0 {
		return 0, fmt.Errorf("%w: left side mentions no coercion", ErrBadShape)
	}

	headL := expr.HeadCoercions(lhs)
	headR := expr.HeadCoercions(rhs)

	switch {
	case headL == 0:
		if headR != 0 {
			return 0, fmt.Errorf("%w: right side introduces a head coercion", ErrBadShape)
		}
		return LabelElim, nil

	case headL == 1:
		if headR != 0 {
			return 0, fmt.Errorf("%w: right side keeps a head coercion", ErrBadShape)
		}
		if expr.InternalCoercions(rhs) == 0 {
			return LabelSquash, nil
		}
		return LabelMove, nil

	case headR < headL:
		return LabelSquash, nil

	default:
		return 0, fmt.Errorf("%w: no valid reduction in coercion count", ErrBadShape)
	}
}
