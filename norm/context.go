package norm

import (
	"github.com/normcast-labs/normcast/internal/expr"
)

type coeKey struct {
	from expr.TypeTag
	to   expr.TypeTag
}

// StaticContext is an assumption-backed discharger plus a fixed coercion
// tower, built from a Config. It satisfies the pipeline's Context
// interface: a side condition discharges iff it structurally equals one of
// the registered assumptions.
type StaticContext struct {
	coercions   map[coeKey]expr.Const
	ones        map[expr.TypeTag]bool
	zeros       map[expr.TypeTag]bool
	assumptions []expr.Expr
}

// NewStaticContext builds the context for a configuration. Assumption
// strings are parsed with the configuration's symbols.
func NewStaticContext(cfg Config, syms expr.Symbols) (*StaticContext, error) {
	ctx := &StaticContext{
		coercions: make(map[coeKey]expr.Const),
		ones:      make(map[expr.TypeTag]bool),
		zeros:     make(map[expr.TypeTag]bool),
	}
	for _, d := range cfg.Coercions {
		key := coeKey{from: expr.TypeTag(d.From), to: expr.TypeTag(d.To)}
		ctx.coercions[key] = expr.Coe(d.Name, key.from, key.to)
	}
	for _, t := range cfg.Ones {
		ctx.ones[expr.TypeTag(t)] = true
	}
	for _, t := range cfg.Zeros {
		ctx.zeros[expr.TypeTag(t)] = true
	}
	for _, src := range cfg.Assume {
		goal, err := expr.Parse(src, syms)
		if err != nil {
			return nil, err
		}
		ctx.assumptions = append(ctx.assumptions, goal)
	}
	return ctx, nil
}

// Assume adds a local assumption for the discharger.
func (c *StaticContext) Assume(goal expr.Expr) {
	c.assumptions = append(c.assumptions, goal)
}

// Discharge closes a goal iff it matches a registered assumption.
func (c *StaticContext) Discharge(goal expr.Expr) bool {
	for _, h := range c.assumptions {
		if expr.Equal(h, goal) {
			return true
		}
	}
	return false
}

// FindCoercion returns the declared embedding between two carrier types.
func (c *StaticContext) FindCoercion(from, to expr.TypeTag) (expr.Const, bool) {
	coe, ok := c.coercions[coeKey{from: from, to: to}]
	return coe, ok
}

// HasOne reports whether t was declared with a multiplicative identity.
func (c *StaticContext) HasOne(t expr.TypeTag) bool {
	return c.ones[t]
}

// HasZero reports whether t was declared with an additive identity.
func (c *StaticContext) HasZero(t expr.TypeTag) bool {
	return c.zeros[t]
}
