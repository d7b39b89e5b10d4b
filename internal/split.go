package internal

import (
	"github.com/normcast-labs/normcast/internal/expr"
	"github.com/normcast-labs/normcast/internal/proof"
	"github.com/normcast-labs/normcast/internal/rules"
)

// split is the coercion-insertion heuristic. It repairs a binary node
// op(x, y) whose operands the up rules cannot align: two coercions from
// unrelated source types get a bridging injection, and a bare 0/1 literal
// gets lifted into the other operand's source type. Branches are tried in
// order; the first success wins and failure leaves the node unchanged.
func (en *Engine) split(node expr.Expr, cache *rules.NormalizationCache, ctx Context) (expr.Expr, proof.Certificate, bool) {
	if ctx == nil {
		return nil, nil, false
	}
	head, fn, x, y, ok := expr.AsBinary(node)
	if !ok || head.Kind == expr.ConstCoe {
		return nil, nil, false
	}

	cx, okx := expr.AsCoercion(x)
	cy, oky := expr.AsCoercion(y)

	// Two coercions from distinct sources into the same target.
	if okx && oky && cx.From != cy.From && cx.To == cy.To {
		// Left-to-right first; the symmetric direction only runs when no
		// injection bridges the first.
		if inj, found := ctx.FindCoercion(cx.From, cy.From); found {
			newX := expr.App{Fn: cy.Head, Arg: expr.App{Fn: inj, Arg: cx.Operand}}
			if c, proved := en.proveEq(x, newX, cache, ctx); proved {
				out := expr.App{Fn: expr.App{Fn: fn, Arg: newX}, Arg: y}
				return out, proof.NewCongFun(y, proof.NewCongArg(fn, c)), true
			}
		}
		if inj, found := ctx.FindCoercion(cy.From, cx.From); found {
			newY := expr.App{Fn: cx.Head, Arg: expr.App{Fn: inj, Arg: cy.Operand}}
			if c, proved := en.proveEq(y, newY, cache, ctx); proved {
				out := expr.App{Fn: expr.App{Fn: fn, Arg: x}, Arg: newY}
				return out, proof.NewCongArg(expr.App{Fn: fn, Arg: x}, c), true
			}
		}
	}

	// Coercion against the multiplicative, then the additive identity.
	for _, ident := range []struct {
		value int64
		has   func(expr.TypeTag) bool
	}{
		{1, ctx.HasOne},
		{0, ctx.HasZero},
	} {
		if okx {
			if lit, isLit := y.(expr.Lit); isLit && lit.Value == ident.value &&
				lit.Type == cx.To && ident.has(cx.From) {
				newY := expr.App{Fn: cx.Head, Arg: expr.Lit{Value: ident.value, Type: cx.From}}
				if c, proved := en.proveEq(y, newY, cache, ctx); proved {
					out := expr.App{Fn: expr.App{Fn: fn, Arg: x}, Arg: newY}
					return out, proof.NewCongArg(expr.App{Fn: fn, Arg: x}, c), true
				}
			}
		}
		if oky {
			if lit, isLit := x.(expr.Lit); isLit && lit.Value == ident.value &&
				lit.Type == cy.To && ident.has(cy.From) {
				newX := expr.App{Fn: cy.Head, Arg: expr.Lit{Value: ident.value, Type: cy.From}}
				if c, proved := en.proveEq(x, newX, cache, ctx); proved {
					out := expr.App{Fn: expr.App{Fn: fn, Arg: newX}, Arg: y}
					return out, proof.NewCongFun(y, proof.NewCongArg(fn, c)), true
				}
			}
		}
	}

	return nil, nil, false
}

// proveEq certifies target = candidate by simplifying the candidate with
// the down and squash databases (plus literal lowering through the base
// type) until it reproduces the target. This is the bounded recursive
// call backing every insertion the heuristic makes.
func (en *Engine) proveEq(target, candidate expr.Expr, cache *rules.NormalizationCache, ctx Context) (proof.Certificate, bool) {
	cur := candidate
	cert := proof.Certificate(proof.Refl{E: candidate})
	if expr.Equal(cur, target) {
		return proof.NewSymm(cert), true
	}

	stages := []func(expr.Expr) (expr.Expr, proof.Certificate, bool){
		func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
			return en.rewriteBottomUp(e, cache.Down, cache, ctx, false)
		},
		func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
			return en.squashChains(e, cache.Squash, ctx)
		},
		func(e expr.Expr) (expr.Expr, proof.Certificate, bool) {
			return transformTopDown(e, lowerLit(en.base))
		},
	}

	for _, stage := range stages {
		out, c, changed := stage(cur)
		if changed {
			cert = proof.NewTrans(cert, c)
			cur = out
		}
		if expr.Equal(cur, target) {
			return proof.NewSymm(cert), true
		}
	}
	return nil, false
}
