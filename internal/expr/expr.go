package expr

import (
	"fmt"
	"strings"
)

// TypeTag is an opaque identifier for the carrier type of an expression.
// Two coercions relate when their tags match; the engine never looks inside.
type TypeTag string

// Expr represents an expression over a tower of embedded algebraic types.
type Expr interface {
	isExpr()
	String() string
}

// ConstKind distinguishes ordinary constants from coercion functors.
type ConstKind int

const (
	// ConstPlain is an ordinary operator or value constant.
	ConstPlain ConstKind = iota
	// ConstCoe marks a coercion functor; its TypeArgs are [source, target].
	ConstCoe
)

// Var represents a free variable reference.
type Var struct {
	Name string
}

func (Var) isExpr() {}
func (e Var) String() string {
	return e.Name
}

// Hole represents a pattern metavariable. Holes only occur inside rule
// patterns; matching binds them, instantiation substitutes them.
type Hole struct {
	Name string
}

func (Hole) isExpr() {}
func (e Hole) String() string {
	return "?" + e.Name
}

// Const represents a named constant, possibly instantiated at type arguments.
type Const struct {
	Name     string
	Kind     ConstKind
	TypeArgs []TypeTag
}

func (Const) isExpr() {}
func (e Const) String() string {
	if len(e.TypeArgs) == 0 {
		return e.Name
	}
	parts := make([]string, len(e.TypeArgs))
	for i, t := range e.TypeArgs {
		parts[i] = string(t)
	}
	return e.Name + "{" + strings.Join(parts, ",") + "}"
}

// App represents a curried application node.
type App struct {
	Fn  Expr
	Arg Expr
}

func (App) isExpr() {}
func (e App) String() string {
	fn, args := Spine(e)
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, fn.String())
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// BinderKind distinguishes lambda abstractions from dependent products.
type BinderKind int

const (
	Lambda BinderKind = iota
	Pi
)

func (k BinderKind) String() string {
	switch k {
	case Lambda:
		return "lam"
	case Pi:
		return "pi"
	default:
		return "?"
	}
}

// Binder represents a lambda or pi binder over a typed bound variable.
type Binder struct {
	Kind      BinderKind
	Name      string
	BoundType TypeTag
	Body      Expr
}

func (Binder) isExpr() {}
func (e Binder) String() string {
	return fmt.Sprintf("(%s %s:%s. %s)", e.Kind, e.Name, e.BoundType, e.Body)
}

// Let represents a local definition.
type Let struct {
	Name  string
	Value Expr
	Body  Expr
}

func (Let) isExpr() {}
func (e Let) String() string {
	return fmt.Sprintf("(let %s := %s in %s)", e.Name, e.Value, e.Body)
}

// Lit represents a numeral literal at a given carrier type.
type Lit struct {
	Value int64
	Type  TypeTag
}

func (Lit) isExpr() {}
func (e Lit) String() string {
	return fmt.Sprintf("%d:%s", e.Value, e.Type)
}

// Helper constructors

// V creates a variable reference.
func V(name string) Expr {
	return Var{Name: name}
}

// H creates a pattern metavariable.
func H(name string) Expr {
	return Hole{Name: name}
}

// C creates a plain constant.
func C(name string, typeArgs ...TypeTag) Const {
	return Const{Name: name, TypeArgs: typeArgs}
}

// Coe creates a coercion constant embedding `from` into `to`.
func Coe(name string, from, to TypeTag) Const {
	return Const{Name: name, Kind: ConstCoe, TypeArgs: []TypeTag{from, to}}
}

// Ap builds a curried application of fn to args.
func Ap(fn Expr, args ...Expr) Expr {
	result := fn
	for _, a := range args {
		result = App{Fn: result, Arg: a}
	}
	return result
}

// LitOf creates a numeral literal at the given type.
func LitOf(v int64, t TypeTag) Expr {
	return Lit{Value: v, Type: t}
}

// Spine decomposes nested applications into a head and argument list.
func Spine(e Expr) (Expr, []Expr) {
	var args []Expr
	for {
		app, ok := e.(App)
		if !ok {
			break
		}
		args = append([]Expr{app.Arg}, args...)
		e = app.Fn
	}
	return e, args
}

// Equal reports structural equality. The pipeline uses it to detect
// fixpoints, so it must agree exactly with what rewriting can produce.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Var:
		y, ok := b.(Var)
		return ok && x.Name == y.Name
	case Hole:
		y, ok := b.(Hole)
		return ok && x.Name == y.Name
	case Const:
		y, ok := b.(Const)
		if !ok || x.Name != y.Name || x.Kind != y.Kind || len(x.TypeArgs) != len(y.TypeArgs) {
			return false
		}
		for i := range x.TypeArgs {
			if x.TypeArgs[i] != y.TypeArgs[i] {
				return false
			}
		}
		return true
	case App:
		y, ok := b.(App)
		return ok && Equal(x.Fn, y.Fn) && Equal(x.Arg, y.Arg)
	case Binder:
		y, ok := b.(Binder)
		return ok && x.Kind == y.Kind && x.Name == y.Name &&
			x.BoundType == y.BoundType && Equal(x.Body, y.Body)
	case Let:
		y, ok := b.(Let)
		return ok && x.Name == y.Name && Equal(x.Value, y.Value) && Equal(x.Body, y.Body)
	case Lit:
		y, ok := b.(Lit)
		return ok && x.Value == y.Value && x.Type == y.Type
	default:
		return false
	}
}
