// Package proof defines the algebraic certificates emitted by the
// normalization pipeline, together with an independent replay verifier.
//
// A certificate records how the equality (or equivalence) of two
// expressions was derived. It is a plain value with six constructors, so an
// external consumer can serialize and replay it without a proof kernel.
package proof

import (
	"fmt"

	"github.com/normcast-labs/normcast/internal/expr"
)

// Certificate witnesses that one expression equals another.
type Certificate interface {
	isCertificate()
	String() string
}

// Refl witnesses e = e.
type Refl struct {
	E expr.Expr
}

func (Refl) isCertificate() {}
func (c Refl) String() string {
	return fmt.Sprintf("refl %s", c.E)
}

// Symm inverts the inner certificate.
type Symm struct {
	C Certificate
}

func (Symm) isCertificate() {}
func (c Symm) String() string {
	return fmt.Sprintf("symm (%s)", c.C)
}

// Trans chains two certificates whose endpoints meet.
type Trans struct {
	A Certificate
	B Certificate
}

func (Trans) isCertificate() {}
func (c Trans) String() string {
	return fmt.Sprintf("trans (%s) (%s)", c.A, c.B)
}

// CongArg lifts x = y to App(Fn, x) = App(Fn, y).
type CongArg struct {
	Fn expr.Expr
	C  Certificate
}

func (CongArg) isCertificate() {}
func (c CongArg) String() string {
	return fmt.Sprintf("congArg %s (%s)", c.Fn, c.C)
}

// CongFun lifts f = g to App(f, Arg) = App(g, Arg).
type CongFun struct {
	Arg expr.Expr
	C   Certificate
}

func (CongFun) isCertificate() {}
func (c CongFun) String() string {
	return fmt.Sprintf("congFun %s (%s)", c.Arg, c.C)
}

// RuleApp witnesses a single named rule application From = To. The name
// refers either to a registered rewrite rule or to one of the reserved
// built-in names checked structurally by the verifier.
type RuleApp struct {
	Name string
	From expr.Expr
	To   expr.Expr
}

func (RuleApp) isCertificate() {}
func (c RuleApp) String() string {
	return fmt.Sprintf("rule %s : %s = %s", c.Name, c.From, c.To)
}

// Reserved built-in rule names.
const (
	RuleLitCast = "lit.cast"     // coe_{N->a}(n:N) = n:a
	RuleGeToLe  = "ge.to_le"     // ge a b <-> le b a
	RuleGtToLt  = "gt.to_lt"     // gt a b <-> lt b a
	RuleNeToNEq = "ne.to_not_eq" // ne a b <-> not (eq a b)
)

// Composition helpers. They elide reflexivity so certificates stay in
// proportion to the work actually done.

// NewTrans chains a and b, dropping either side when it is Refl.
func NewTrans(a, b Certificate) Certificate {
	if _, ok := a.(Refl); ok {
		return b
	}
	if _, ok := b.(Refl); ok {
		return a
	}
	return Trans{A: a, B: b}
}

// NewCongArg lifts c through an application argument position.
func NewCongArg(fn expr.Expr, c Certificate) Certificate {
	if r, ok := c.(Refl); ok {
		return Refl{E: expr.App{Fn: fn, Arg: r.E}}
	}
	return CongArg{Fn: fn, C: c}
}

// NewCongFun lifts c through an application function position.
func NewCongFun(arg expr.Expr, c Certificate) Certificate {
	if r, ok := c.(Refl); ok {
		return Refl{E: expr.App{Fn: r.E, Arg: arg}}
	}
	return CongFun{Arg: arg, C: c}
}

// NewSymm inverts c, collapsing double inversions.
func NewSymm(c Certificate) Certificate {
	switch inner := c.(type) {
	case Refl:
		return inner
	case Symm:
		return inner.C
	default:
		return Symm{C: c}
	}
}
