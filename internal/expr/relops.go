package expr

// Canonical names of the relational operators the engine rewrites
// unconditionally (>= to <=, > to <, != to negated =). User rule files may
// declare these constants at whatever type arguments they need; recognition
// is by name.
const (
	SymEq  = "eq"
	SymNe  = "ne"
	SymLt  = "lt"
	SymLe  = "le"
	SymGt  = "gt"
	SymGe  = "ge"
	SymNot = "not"
)

// AsBinary decomposes e as op(x, y) with a constant head. Partial
// applications and operators with implicit leading arguments still
// decompose: x and y are the last two spine arguments.
func AsBinary(e Expr) (head Const, fn Expr, x, y Expr, ok bool) {
	outer, isApp := e.(App)
	if !isApp {
		return Const{}, nil, nil, nil, false
	}
	inner, isApp := outer.Fn.(App)
	if !isApp {
		return Const{}, nil, nil, nil, false
	}
	spineHead, _ := Spine(e)
	c, isConst := spineHead.(Const)
	if !isConst {
		return Const{}, nil, nil, nil, false
	}
	return c, inner.Fn, inner.Arg, outer.Arg, true
}
