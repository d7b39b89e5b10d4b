package proof

import (
	"errors"
	"fmt"

	"github.com/normcast-labs/normcast/internal/expr"
)

// RuleLookup resolves a named rewrite rule to its pattern sides. The
// reserved built-in names are handled inside the verifier and never reach
// the lookup.
type RuleLookup func(name string) (lhs, rhs expr.Expr, ok bool)

// ErrInvalidCertificate is wrapped by every verification failure.
var ErrInvalidCertificate = errors.New("invalid certificate")

// Verify replays c and checks that it establishes from = to.
func Verify(c Certificate, from, to expr.Expr, lookup RuleLookup) error {
	gotFrom, gotTo, err := Endpoints(c, lookup)
	if err != nil {
		return err
	}
	if !expr.Equal(gotFrom, from) {
		return fmt.Errorf("%w: proves %s on the left, want %s", ErrInvalidCertificate, gotFrom, from)
	}
	if !expr.Equal(gotTo, to) {
		return fmt.Errorf("%w: proves %s on the right, want %s", ErrInvalidCertificate, gotTo, to)
	}
	return nil
}

// Endpoints replays c and returns the two expressions it relates,
// validating every step against the rule set.
func Endpoints(c Certificate, lookup RuleLookup) (expr.Expr, expr.Expr, error) {
	switch step := c.(type) {
	case Refl:
		return step.E, step.E, nil

	case Symm:
		from, to, err := Endpoints(step.C, lookup)
		if err != nil {
			return nil, nil, err
		}
		return to, from, nil

	case Trans:
		aFrom, aTo, err := Endpoints(step.A, lookup)
		if err != nil {
			return nil, nil, err
		}
		bFrom, bTo, err := Endpoints(step.B, lookup)
		if err != nil {
			return nil, nil, err
		}
		if !expr.Equal(aTo, bFrom) {
			return nil, nil, fmt.Errorf("%w: transitivity endpoints differ: %s vs %s",
				ErrInvalidCertificate, aTo, bFrom)
		}
		return aFrom, bTo, nil

	case CongArg:
		from, to, err := Endpoints(step.C, lookup)
		if err != nil {
			return nil, nil, err
		}
		return expr.App{Fn: step.Fn, Arg: from}, expr.App{Fn: step.Fn, Arg: to}, nil

	case CongFun:
		from, to, err := Endpoints(step.C, lookup)
		if err != nil {
			return nil, nil, err
		}
		return expr.App{Fn: from, Arg: step.Arg}, expr.App{Fn: to, Arg: step.Arg}, nil

	case RuleApp:
		if err := checkRuleApp(step, lookup); err != nil {
			return nil, nil, err
		}
		return step.From, step.To, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown certificate node %T", ErrInvalidCertificate, c)
	}
}

func checkRuleApp(step RuleApp, lookup RuleLookup) error {
	switch step.Name {
	case RuleLitCast:
		return checkLitCast(step)
	case RuleGeToLe:
		return checkRelSwap(step, expr.SymGe, expr.SymLe)
	case RuleGtToLt:
		return checkRelSwap(step, expr.SymGt, expr.SymLt)
	case RuleNeToNEq:
		return checkNeToNotEq(step)
	}

	if lookup == nil {
		return fmt.Errorf("%w: no rule set to resolve %q", ErrInvalidCertificate, step.Name)
	}
	lhs, rhs, ok := lookup(step.Name)
	if !ok {
		return fmt.Errorf("%w: unknown rule %q", ErrInvalidCertificate, step.Name)
	}
	binds := make(expr.Bindings)
	if !expr.Match(lhs, step.From, binds) {
		return fmt.Errorf("%w: rule %q does not match %s", ErrInvalidCertificate, step.Name, step.From)
	}
	if got := expr.Instantiate(rhs, binds); !expr.Equal(got, step.To) {
		return fmt.Errorf("%w: rule %q yields %s, certificate claims %s",
			ErrInvalidCertificate, step.Name, got, step.To)
	}
	return nil
}

// checkLitCast validates coe_{N->a}(n:N) = n:a structurally.
func checkLitCast(step RuleApp) error {
	coe, ok := expr.AsCoercion(step.From)
	if !ok {
		return fmt.Errorf("%w: %s left side is not a coercion", ErrInvalidCertificate, RuleLitCast)
	}
	inner, ok := coe.Operand.(expr.Lit)
	if !ok || inner.Type != coe.From {
		return fmt.Errorf("%w: %s operand is not a literal of the source type", ErrInvalidCertificate, RuleLitCast)
	}
	outer, ok := step.To.(expr.Lit)
	if !ok || outer.Value != inner.Value || outer.Type != coe.To {
		return fmt.Errorf("%w: %s right side is not the lifted literal", ErrInvalidCertificate, RuleLitCast)
	}
	return nil
}

// checkRelSwap validates fromOp(a, b) = toOp(b, a) with matching type args.
func checkRelSwap(step RuleApp, fromOp, toOp string) error {
	fc, _, fx, fy, ok := expr.AsBinary(step.From)
	if !ok || fc.Name != fromOp {
		return fmt.Errorf("%w: %s left side is not a %s application", ErrInvalidCertificate, step.Name, fromOp)
	}
	tc, _, tx, ty, ok := expr.AsBinary(step.To)
	if !ok || tc.Name != toOp {
		return fmt.Errorf("%w: %s right side is not a %s application", ErrInvalidCertificate, step.Name, toOp)
	}
	if !expr.Equal(fx, ty) || !expr.Equal(fy, tx) {
		return fmt.Errorf("%w: %s arguments are not swapped", ErrInvalidCertificate, step.Name)
	}
	return nil
}

// checkNeToNotEq validates ne(a, b) = not(eq(a, b)).
func checkNeToNotEq(step RuleApp) error {
	fc, _, fx, fy, ok := expr.AsBinary(step.From)
	if !ok || fc.Name != expr.SymNe {
		return fmt.Errorf("%w: %s left side is not a %s application", ErrInvalidCertificate, step.Name, expr.SymNe)
	}
	outer, ok := step.To.(expr.App)
	if !ok {
		return fmt.Errorf("%w: %s right side is not a negation", ErrInvalidCertificate, step.Name)
	}
	head, hok := outer.Fn.(expr.Const)
	if !hok || head.Name != expr.SymNot {
		return fmt.Errorf("%w: %s right side is not a negation", ErrInvalidCertificate, step.Name)
	}
	ec, _, ex, ey, ok := expr.AsBinary(outer.Arg)
	if !ok || ec.Name != expr.SymEq || !expr.Equal(ex, fx) || !expr.Equal(ey, fy) {
		return fmt.Errorf("%w: %s negated side is not the matching equality", ErrInvalidCertificate, step.Name)
	}
	return nil
}
