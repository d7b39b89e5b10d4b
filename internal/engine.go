package internal

import (
	"errors"

	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal/expr"
	"github.com/normcast-labs/normcast/internal/proof"
	"github.com/normcast-labs/normcast/internal/rules"
)

// ErrNoProgress is the only failure surfaced to derive's caller: the
// expression is already in normal form. Every other failure inside the
// pipeline recovers locally.
var ErrNoProgress = errors.New("nothing to simplify")

// DefaultBaseType is the base numeral carrier used when none is configured.
const DefaultBaseType = expr.TypeTag("nat")

// Engine drives the normalization pipeline. It is stateless between calls
// apart from its configuration, so one engine may serve concurrent
// derivations against immutable cache snapshots.
type Engine struct {
	logger *zap.Logger
	base   expr.TypeTag
}

// NewEngine creates an engine. The logger may be nil; an empty base type
// selects DefaultBaseType.
func NewEngine(logger *zap.Logger, base expr.TypeTag) *Engine {
	if base == "" {
		base = DefaultBaseType
	}
	return &Engine{logger: logger, base: base}
}

// Derive normalizes root against the cache, closing side conditions with
// ctx. On success it returns the rewritten expression together with one
// certificate chaining all four phases; if the result is structurally
// identical to the input it returns ErrNoProgress.
func (en *Engine) Derive(root expr.Expr, cache *rules.NormalizationCache, ctx Context) (expr.Expr, proof.Certificate, error) {
	if cache == nil {
		return nil, nil, errors.New("derive: nil cache")
	}

	cur := root
	cert := proof.Certificate(proof.Refl{E: root})

	// Phase 1: canonicalize numerals into coercions from the base type so
	// the up rules, usually stated over base coercions, match uniformly.
	cur, cert = en.phase(cur, cert, "lift numerals", func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
		return transformTopDown(e, en.liftLit(ctx))
	})

	// Phase 2: bottom-up rewriting with the up database, splitting
	// heuristic as fallback.
	cur, cert = en.phase(cur, cert, "up rewrite", func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
		return en.rewriteBottomUp(e, cache.Up, cache, ctx, true)
	})

	// Phase 3: collapse remaining adjacent double coercions. Every squash
	// rule strictly decreases the head-coercion count, so this terminates.
	cur, cert = en.phase(cur, cert, "squash", func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
		return en.squashChains(e, cache.Squash, ctx)
	})

	// Phase 4: undo phase 1 where the canonical form survived.
	cur, cert = en.phase(cur, cert, "lower numerals", func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
		return transformTopDown(e, lowerLit(en.base))
	})

	if expr.Equal(root, cur) {
		return nil, nil, ErrNoProgress
	}
	return cur, cert, nil
}

func (en *Engine) phase(cur expr.Expr, cert proof.Certificate, name string, run func(expr.Expr) (expr.Expr, proof.Certificate, bool)) (expr.Expr, proof.Certificate) {
	out, c, changed := run(cur)
	if !changed {
		return cur, cert
	}
	if en.logger != nil {
		en.logger.Debug("phase rewrote expression",
			zap.String("phase", name),
			zap.Stringer("result", out))
	}
	return out, proof.NewTrans(cert, c)
}

// liftLit rewrites a numeral of a non-base carrier into a coercion of the
// base-type numeral, when the context knows the embedding.
func (en *Engine) liftLit(ctx Context) func(expr.Expr) (expr.Expr, proof.Certificate, bool) {
	return func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
		lit, ok := e.(expr.Lit)
		if !ok || lit.Type == en.base || ctx == nil {
			return nil, nil, false
		}
		coe, ok := ctx.FindCoercion(en.base, lit.Type)
		if !ok {
			return nil, nil, false
		}
		out := expr.App{Fn: coe, Arg: expr.Lit{Value: lit.Value, Type: en.base}}
		cert := proof.NewSymm(proof.RuleApp{Name: proof.RuleLitCast, From: out, To: e})
		return out, cert, true
	}
}

// lowerLit rewrites a coercion of a base-type numeral back into a plain
// numeral of the target carrier.
func lowerLit(base expr.TypeTag) func(expr.Expr) (expr.Expr, proof.Certificate, bool) {
	return func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
		c, ok := expr.AsCoercion(e)
		if !ok || c.From != base {
			return nil, nil, false
		}
		lit, ok := c.Operand.(expr.Lit)
		if !ok || lit.Type != base {
			return nil, nil, false
		}
		out := expr.Lit{Value: lit.Value, Type: c.To}
		return out, proof.RuleApp{Name: proof.RuleLitCast, From: e, To: out}, true
	}
}
