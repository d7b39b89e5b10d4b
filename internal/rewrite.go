package internal

import (
	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal/expr"
	"github.com/normcast-labs/normcast/internal/proof"
	"github.com/normcast-labs/normcast/internal/rules"
)

// maxRewriteSteps bounds the per-node rewrite loop. The squash database
// terminates structurally (every rule strictly decreases the head-coercion
// count); the cap is only a guard against a misclassified override rule
// cycling with itself.
const maxRewriteSteps = 512

// rewriteHead tries every candidate rule at the root of e, in database
// order, and applies the first one that matches, discharges its side
// conditions and actually changes the tree.
func (en *Engine) rewriteHead(e expr.Expr, db *rules.Database, ctx Context) (expr.Expr, proof.Certificate, bool) {
	for _, r := range db.Candidates(e) {
		if r.Builtin() {
			if out, cert, ok := applyBuiltin(r.Name, e); ok {
				en.logRewrite(r.Name, db, e, out)
				return out, cert, true
			}
			continue
		}

		binds := make(expr.Bindings)
		if !expr.Match(r.LHS, e, binds) {
			continue
		}
		out := expr.Instantiate(r.RHS, binds)
		if expr.Equal(out, e) {
			// A step reports progress iff the tree changed.
			continue
		}
		if !en.discharge(r, binds, ctx) {
			continue
		}

		var cert proof.Certificate
		if r.Reversed {
			// The database holds the right-to-left reading; the
			// certificate records the rule in its original orientation.
			cert = proof.NewSymm(proof.RuleApp{Name: r.Name, From: out, To: e})
		} else {
			cert = proof.RuleApp{Name: r.Name, From: e, To: out}
		}
		en.logRewrite(r.Name, db, e, out)
		return out, cert, true
	}
	return e, proof.Refl{E: e}, false
}

func (en *Engine) discharge(r *rules.RewriteRule, binds expr.Bindings, ctx Context) bool {
	for _, cond := range r.Conds {
		goal := expr.Instantiate(cond, binds)
		if ctx == nil || !ctx.Discharge(goal) {
			if en.logger != nil {
				en.logger.Debug("side condition not discharged",
					zap.String("rule", r.Name),
					zap.Stringer("goal", goal))
			}
			return false
		}
	}
	return true
}

func (en *Engine) logRewrite(rule string, db *rules.Database, from, to expr.Expr) {
	if en.logger == nil {
		return
	}
	en.logger.Debug("applied rule",
		zap.String("rule", rule),
		zap.String("database", db.Name()),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
}

// rewriteBottomUp rewrites children first, then loops rules at the node
// until it reaches a local fixpoint. With withSplit set, the splitting
// heuristic runs whenever the rules are stuck, and the rules get another
// chance on its output.
func (en *Engine) rewriteBottomUp(e expr.Expr, db *rules.Database, cache *rules.NormalizationCache, ctx Context, withSplit bool) (expr.Expr, proof.Certificate, bool) {
	cur := e
	cert := proof.Certificate(proof.Refl{E: e})
	changed := false

	if app, ok := cur.(expr.App); ok {
		fn, cf, fnChanged := en.rewriteBottomUp(app.Fn, db, cache, ctx, withSplit)
		if fnChanged {
			cert = proof.NewTrans(cert, proof.NewCongFun(app.Arg, cf))
			changed = true
		}
		arg, ca, argChanged := en.rewriteBottomUp(app.Arg, db, cache, ctx, withSplit)
		if argChanged {
			cert = proof.NewTrans(cert, proof.NewCongArg(fn, ca))
			changed = true
		}
		cur = expr.App{Fn: fn, Arg: arg}
	}

	splitTried := false
	for steps := 0; steps < maxRewriteSteps; steps++ {
		next, c, ok := en.rewriteHead(cur, db, ctx)
		if ok {
			cert = proof.NewTrans(cert, c)
			cur = next
			changed = true
			splitTried = false
			continue
		}
		if withSplit && !splitTried {
			splitTried = true
			next, c, ok = en.split(cur, cache, ctx)
			if ok {
				cert = proof.NewTrans(cert, c)
				cur = next
				changed = true
				continue
			}
		}
		break
	}

	return cur, cert, changed
}

// squashChains applies db only at nodes where coercions are stacked at
// least two deep. Lone coercions stay put; a squash rule over a single
// coercion is still usable in the down direction, but collapsing it here
// would undo insertions made by the splitting heuristic.
func (en *Engine) squashChains(e expr.Expr, db *rules.Database, ctx Context) (expr.Expr, proof.Certificate, bool) {
	cur := e
	cert := proof.Certificate(proof.Refl{E: e})
	changed := false

	if app, ok := cur.(expr.App); ok {
		fn, cf, fnChanged := en.squashChains(app.Fn, db, ctx)
		if fnChanged {
			cert = proof.NewTrans(cert, proof.NewCongFun(app.Arg, cf))
			changed = true
		}
		arg, ca, argChanged := en.squashChains(app.Arg, db, ctx)
		if argChanged {
			cert = proof.NewTrans(cert, proof.NewCongArg(fn, ca))
			changed = true
		}
		cur = expr.App{Fn: fn, Arg: arg}
	}

	for steps := 0; steps < maxRewriteSteps && expr.HeadCoercions(cur) >= 2; steps++ {
		next, c, ok := en.rewriteHead(cur, db, ctx)
		if !ok {
			break
		}
		cert = proof.NewTrans(cert, c)
		cur = next
		changed = true
	}

	return cur, cert, changed
}

// transformTopDown applies f at each node before descending into the
// (possibly rewritten) children. Binder and let bodies are opaque.
func transformTopDown(e expr.Expr, f func(expr.Expr) (expr.Expr, proof.Certificate, bool)) (expr.Expr, proof.Certificate, bool) {
	cur := e
	cert := proof.Certificate(proof.Refl{E: e})
	changed := false

	if out, c, ok := f(cur); ok {
		cert = proof.NewTrans(cert, c)
		cur = out
		changed = true
	}

	if app, ok := cur.(expr.App); ok {
		fn, cf, fnChanged := transformTopDown(app.Fn, f)
		if fnChanged {
			cert = proof.NewTrans(cert, proof.NewCongFun(app.Arg, cf))
			changed = true
		}
		arg, ca, argChanged := transformTopDown(app.Arg, f)
		if argChanged {
			cert = proof.NewTrans(cert, proof.NewCongArg(fn, ca))
			changed = true
		}
		cur = expr.App{Fn: fn, Arg: arg}
	}

	return cur, cert, changed
}

// applyBuiltin performs one of the three fixed relational rewrites,
// preserving the operator's type arguments and any implicit leading
// arguments in the spine.
func applyBuiltin(name string, e expr.Expr) (expr.Expr, proof.Certificate, bool) {
	head, fn, x, y, ok := expr.AsBinary(e)
	if !ok {
		return nil, nil, false
	}

	switch name {
	case proof.RuleGeToLe:
		if head.Name != expr.SymGe {
			return nil, nil, false
		}
		return relSwap(name, head, fn, x, y, expr.SymLe)
	case proof.RuleGtToLt:
		if head.Name != expr.SymGt {
			return nil, nil, false
		}
		return relSwap(name, head, fn, x, y, expr.SymLt)
	case proof.RuleNeToNEq:
		if head.Name != expr.SymNe {
			return nil, nil, false
		}
		eq := expr.Const{Name: expr.SymEq, TypeArgs: head.TypeArgs}
		out := expr.App{
			Fn:  expr.C(expr.SymNot),
			Arg: expr.App{Fn: expr.App{Fn: replaceHead(fn, eq), Arg: x}, Arg: y},
		}
		return out, proof.RuleApp{Name: name, From: e, To: out}, true
	default:
		return nil, nil, false
	}
}

func relSwap(name string, head expr.Const, fn, x, y expr.Expr, toOp string) (expr.Expr, proof.Certificate, bool) {
	to := expr.Const{Name: toOp, TypeArgs: head.TypeArgs}
	out := expr.App{Fn: expr.App{Fn: replaceHead(fn, to), Arg: y}, Arg: x}
	orig := expr.App{Fn: expr.App{Fn: fn, Arg: x}, Arg: y}
	return out, proof.RuleApp{Name: name, From: orig, To: out}, true
}

// replaceHead swaps the spine head constant while keeping any implicit
// arguments applied to it.
func replaceHead(e expr.Expr, c expr.Const) expr.Expr {
	if app, ok := e.(expr.App); ok {
		return expr.App{Fn: replaceHead(app.Fn, c), Arg: app.Arg}
	}
	return c
}
