package expr

// Coercion is the decomposed view of a recognized coercion application.
type Coercion struct {
	Head    Const   // the coercion functor
	From    TypeTag // source carrier type
	To      TypeTag // target carrier type
	Operand Expr    // the embedded expression
}

// AsCoercion recognizes a coercion application. Any leading implicit or
// instance arguments in the spine are skipped; the coerced operand is the
// final argument.
func AsCoercion(e Expr) (Coercion, bool) {
	head, args := Spine(e)
	c, ok := head.(Const)
	if !ok || c.Kind != ConstCoe || len(c.TypeArgs) != 2 || len(args) == 0 {
		return Coercion{}, false
	}
	return Coercion{
		Head:    c,
		From:    c.TypeArgs[0],
		To:      c.TypeArgs[1],
		Operand: args[len(args)-1],
	}, true
}

// IsCoercion reports whether e is a coercion application.
func IsCoercion(e Expr) bool {
	_, ok := AsCoercion(e)
	return ok
}

// HeadCoercions counts the coercions chained at the very top of e,
// stopping at the first non-coercion node.
func HeadCoercions(e Expr) int {
	count := 0
	for {
		c, ok := AsCoercion(e)
		if !ok {
			return count
		}
		count++
		e = c.Operand
	}
}

// TotalCoercions counts coercions anywhere in e, recursing through
// applications, binders and let bindings.
func TotalCoercions(e Expr) int {
	switch x := e.(type) {
	case Const:
		if x.Kind == ConstCoe {
			return 1
		}
		return 0
	case App:
		return TotalCoercions(x.Fn) + TotalCoercions(x.Arg)
	case Binder:
		return TotalCoercions(x.Body)
	case Let:
		return TotalCoercions(x.Value) + TotalCoercions(x.Body)
	default:
		return 0
	}
}

// InternalCoercions counts coercions that are not part of the head chain.
func InternalCoercions(e Expr) int {
	return TotalCoercions(e) - HeadCoercions(e)
}
