package rules

import (
	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal/expr"
	"github.com/normcast-labs/normcast/internal/proof"
)

// NormalizationCache holds the three rule databases consumed by the
// pipeline. A cache is an immutable snapshot: it is fully populated by
// BuildCache and never mutated afterwards, so any number of derivations
// may read it concurrently.
type NormalizationCache struct {
	Up     *Database
	Down   *Database
	Squash *Database

	byName map[string]*RewriteRule
}

// BuildCache folds classified rules into a fresh cache. A rule that
// carries an invalid label is skipped and logged; the remaining rules
// still build.
func BuildCache(ruleSet []*RewriteRule, logger *zap.Logger) *NormalizationCache {
	c := &NormalizationCache{
		Up:     newDatabase("up"),
		Down:   newDatabase("down"),
		Squash: newDatabase("squash"),
		byName: make(map[string]*RewriteRule, len(ruleSet)),
	}

	for _, r := range ruleSet {
		c.byName[r.Name] = r
		switch r.Label {
		case LabelElim:
			c.Up.add(r)
		case LabelMove:
			// Reversed into up so the outward direction can introduce a
			// coercion; original into down for local sub-proofs.
			c.Up.add(r.Reverse())
			c.Down.add(r)
		case LabelSquash:
			c.Squash.add(r)
			c.Down.add(r)
		default:
			if logger != nil {
				logger.Warn("skipping rule with invalid label",
					zap.String("rule", r.Name), zap.Int("label", int(r.Label)))
			}
		}
	}

	for _, b := range builtinRelationalRules() {
		c.Up.add(b)
	}

	return c
}

// Lookup resolves a registered rule for certificate replay, in the
// original left-to-right orientation.
func (c *NormalizationCache) Lookup(name string) (lhs, rhs expr.Expr, ok bool) {
	r, ok := c.byName[name]
	if !ok {
		return nil, nil, false
	}
	return r.LHS, r.RHS, true
}

// builtinRelationalRules returns the three fixed rewrites added to every
// up database: >= to <=, > to <, and != to a negated =. They are applied
// structurally so they follow the operators' type arguments.
func builtinRelationalRules() []*RewriteRule {
	swap := func(name, from, to string) *RewriteRule {
		return &RewriteRule{
			Name:    name,
			Params:  []string{"a", "b"},
			LHS:     expr.Ap(expr.C(from), expr.H("a"), expr.H("b")),
			RHS:     expr.Ap(expr.C(to), expr.H("b"), expr.H("a")),
			Rel:     RelIff,
			Label:   LabelElim,
			builtin: true,
		}
	}
	ne := &RewriteRule{
		Name:   proof.RuleNeToNEq,
		Params: []string{"a", "b"},
		LHS:    expr.Ap(expr.C(expr.SymNe), expr.H("a"), expr.H("b")),
		RHS: expr.Ap(expr.C(expr.SymNot),
			expr.Ap(expr.C(expr.SymEq), expr.H("a"), expr.H("b"))),
		Rel:     RelIff,
		Label:   LabelElim,
		builtin: true,
	}
	return []*RewriteRule{
		swap(proof.RuleGeToLe, expr.SymGe, expr.SymLe),
		swap(proof.RuleGtToLt, expr.SymGt, expr.SymLt),
		ne,
	}
}
