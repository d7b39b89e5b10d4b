package expr

// Bindings maps hole names to the subexpressions they matched.
type Bindings map[string]Expr

// Match attempts to match pattern against e, extending binds in place.
// A hole matches any expression; once bound it must match the same
// expression again. Returns false without unwinding binds on failure,
// so callers pass a fresh map per candidate.
func Match(pattern, e Expr, binds Bindings) bool {
	switch p := pattern.(type) {
	case Hole:
		if prev, ok := binds[p.Name]; ok {
			return Equal(prev, e)
		}
		binds[p.Name] = e
		return true
	case Var:
		y, ok := e.(Var)
		return ok && p.Name == y.Name
	case Const:
		return Equal(p, e)
	case App:
		y, ok := e.(App)
		return ok && Match(p.Fn, y.Fn, binds) && Match(p.Arg, y.Arg, binds)
	case Binder:
		y, ok := e.(Binder)
		return ok && p.Kind == y.Kind && p.BoundType == y.BoundType &&
			Match(p.Body, y.Body, binds)
	case Let:
		y, ok := e.(Let)
		return ok && Match(p.Value, y.Value, binds) && Match(p.Body, y.Body, binds)
	case Lit:
		return Equal(p, e)
	default:
		return false
	}
}

// Instantiate substitutes bound holes in pattern. Unbound holes are left
// in place; rule registration guarantees every RHS hole occurs in the LHS,
// so a leftover hole only appears when replaying a malformed certificate.
func Instantiate(pattern Expr, binds Bindings) Expr {
	switch p := pattern.(type) {
	case Hole:
		if e, ok := binds[p.Name]; ok {
			return e
		}
		return p
	case App:
		return App{Fn: Instantiate(p.Fn, binds), Arg: Instantiate(p.Arg, binds)}
	case Binder:
		return Binder{Kind: p.Kind, Name: p.Name, BoundType: p.BoundType, Body: Instantiate(p.Body, binds)}
	case Let:
		return Let{Name: p.Name, Value: Instantiate(p.Value, binds), Body: Instantiate(p.Body, binds)}
	default:
		return pattern
	}
}

// Holes collects the hole names occurring in e, in first-occurrence order.
func Holes(e Expr) []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case Hole:
			if !seen[x.Name] {
				seen[x.Name] = true
				names = append(names, x.Name)
			}
		case App:
			walk(x.Fn)
			walk(x.Arg)
		case Binder:
			walk(x.Body)
		case Let:
			walk(x.Value)
			walk(x.Body)
		}
	}
	walk(e)
	return names
}
