// Package rules holds the rewrite-rule model: classification of rule
// declarations, the three rule databases and the registry that builds an
// immutable cache snapshot from them.
package rules

import (
	"fmt"

	"github.com/normcast-labs/normcast/internal/expr"
)

// Label classifies how a rule interacts with head coercions.
type Label int

const (
	// LabelElim removes all coercions from a pattern with no head coercion.
	LabelElim Label = iota
	// LabelMove relocates one head coercion past an operator.
	LabelMove
	// LabelSquash strictly reduces the head-coercion count.
	LabelSquash
)

func (l Label) String() string {
	switch l {
	case LabelElim:
		return "elim"
	case LabelMove:
		return "move"
	case LabelSquash:
		return "squash"
	default:
		return "?"
	}
}

// ParseLabel parses a label name as written in rule files.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "elim":
		return LabelElim, nil
	case "move":
		return LabelMove, nil
	case "squash":
		return LabelSquash, nil
	default:
		return 0, fmt.Errorf("unknown label %q", s)
	}
}

// Relation is the kind of relation a rule rewrites across.
type Relation int

const (
	// RelEq relates expressions by equality.
	RelEq Relation = iota
	// RelIff relates propositions by biconditional.
	RelIff
)

func (r Relation) String() string {
	switch r {
	case RelEq:
		return "eq"
	case RelIff:
		return "iff"
	default:
		return "?"
	}
}

// RewriteRule is a single directed rewrite with bound parameters.
type RewriteRule struct {
	Name   string
	Params []string
	LHS    expr.Expr
	RHS    expr.Expr
	// Conds are side-condition patterns instantiated at application time
	// and handed to the discharger.
	Conds []expr.Expr
	Rel   Relation
	Label Label
	// Overridden records that Label came from the caller, not Classify.
	Overridden bool
	// Reversed marks a right-to-left reading inserted into the up database.
	Reversed bool
	// builtin rules are applied structurally, not by pattern matching.
	builtin bool
}

// Reverse returns the right-to-left reading of r. The certificate for an
// application of the reversed rule is Symm of the original application.
func (r *RewriteRule) Reverse() *RewriteRule {
	return &RewriteRule{
		Name:       r.Name,
		Params:     r.Params,
		LHS:        r.RHS,
		RHS:        r.LHS,
		Conds:      r.Conds,
		Rel:        r.Rel,
		Label:      r.Label,
		Overridden: r.Overridden,
		Reversed:   !r.Reversed,
	}
}

// Builtin reports whether r is one of the fixed relational rewrites.
func (r *RewriteRule) Builtin() bool {
	return r.builtin
}

func (r *RewriteRule) String() string {
	dir := "="
	if r.Rel == RelIff {
		dir = "<->"
	}
	return fmt.Sprintf("%s [%s]: %s %s %s", r.Name, r.Label, r.LHS, dir, r.RHS)
}
