package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normcast-labs/normcast/internal/expr"
	"github.com/normcast-labs/normcast/internal/proof"
	"github.com/normcast-labs/normcast/internal/rules"
)

var (
	natToInt = expr.Coe("natToInt", "nat", "int")
	intToRat = expr.Coe("intToRat", "int", "rat")
	natToRat = expr.Coe("natToRat", "nat", "rat")
)

type coeKey struct {
	from, to expr.TypeTag
}

// testContext is a fixed-table Context for pipeline tests.
type testContext struct {
	coes  map[coeKey]expr.Const
	ones  map[expr.TypeTag]bool
	zeros map[expr.TypeTag]bool
	facts []expr.Expr
}

func newTestContext(coes ...expr.Const) *testContext {
	c := &testContext{
		coes:  make(map[coeKey]expr.Const),
		ones:  make(map[expr.TypeTag]bool),
		zeros: make(map[expr.TypeTag]bool),
	}
	for _, coe := range coes {
		c.coes[coeKey{coe.TypeArgs[0], coe.TypeArgs[1]}] = coe
	}
	return c
}

func (c *testContext) assume(facts ...expr.Expr) *testContext {
	c.facts = append(c.facts, facts...)
	return c
}

func (c *testContext) Discharge(goal expr.Expr) bool {
	for _, f := range c.facts {
		if expr.Equal(f, goal) {
			return true
		}
	}
	return false
}

func (c *testContext) FindCoercion(from, to expr.TypeTag) (expr.Const, bool) {
	coe, ok := c.coes[coeKey{from, to}]
	return coe, ok
}

func (c *testContext) HasOne(t expr.TypeTag) bool {
	return c.ones[t]
}

func (c *testContext) HasZero(t expr.TypeTag) bool {
	return c.zeros[t]
}

// towerCache registers the int/rat coercion rules and snapshots them.
func towerCache(t *testing.T) *rules.NormalizationCache {
	t.Helper()
	g := rules.NewRegistry(nil)

	castAdd := &rules.RewriteRule{
		Name:   "int_cast_add",
		Params: []string{"x", "y"},
		LHS:    expr.Ap(intToRat, expr.Ap(expr.C("add_int"), expr.H("x"), expr.H("y"))),
		RHS: expr.Ap(expr.C("add_rat"),
			expr.Ap(intToRat, expr.H("x")),
			expr.Ap(intToRat, expr.H("y"))),
	}
	castLt := &rules.RewriteRule{
		Name:   "int_cast_lt",
		Params: []string{"x", "y"},
		LHS: expr.Ap(expr.C("lt_rat"),
			expr.Ap(intToRat, expr.H("x")),
			expr.Ap(intToRat, expr.H("y"))),
		RHS: expr.Ap(expr.C("lt_int"), expr.H("x"), expr.H("y")),
		Rel: rules.RelIff,
	}
	natIntRat := &rules.RewriteRule{
		Name:   "nat_int_rat",
		Params: []string{"x"},
		LHS:    expr.Ap(intToRat, expr.Ap(natToInt, expr.H("x"))),
		RHS:    expr.Ap(natToRat, expr.H("x")),
	}
	for _, r := range []*rules.RewriteRule{castAdd, castLt, natIntRat} {
		require.NoError(t, g.Register(r, nil))
	}
	return g.Snapshot()
}

func towerContext() *testContext {
	return newTestContext(natToInt, intToRat, natToRat)
}

// requireSound replays the certificate against the cache's rule set.
func requireSound(t *testing.T, cache *rules.NormalizationCache, cert proof.Certificate, from, to expr.Expr) {
	t.Helper()
	require.NoError(t, proof.Verify(cert, from, to, cache.Lookup))
}

func requireExpr(t *testing.T, want, got expr.Expr) {
	t.Helper()
	if !expr.Equal(want, got) {
		t.Fatalf("expression mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
}

// A literal compared against a sum of embedded integers: the addition is
// pulled under one coercion, the literal is bridged through the tower, and
// the comparison collapses to the integers.
func TestDeriveLiteralComparison(t *testing.T) {
	cache := towerCache(t)
	ctx := towerContext()
	en := NewEngine(nil, "")

	input := expr.Ap(expr.C("lt_rat"),
		expr.LitOf(10, "rat"),
		expr.Ap(expr.C("add_rat"),
			expr.Ap(intToRat, expr.V("a")),
			expr.Ap(intToRat, expr.V("b"))))

	got, cert, err := en.Derive(input, cache, ctx)
	require.NoError(t, err)

	want := expr.Ap(expr.C("lt_int"),
		expr.LitOf(10, "int"),
		expr.Ap(expr.C("add_int"), expr.V("a"), expr.V("b")))
	requireExpr(t, want, got)
	requireSound(t, cache, cert, input, got)
}

// A bare coercion chain collapses through the squash database.
func TestDeriveSquashChain(t *testing.T) {
	cache := towerCache(t)
	en := NewEngine(nil, "")

	input := expr.Ap(intToRat, expr.Ap(natToInt, expr.V("x")))
	got, cert, err := en.Derive(input, cache, towerContext())
	require.NoError(t, err)

	requireExpr(t, expr.Ap(natToRat, expr.V("x")), got)
	requireSound(t, cache, cert, input, got)
}

// An identity literal next to a coerced operand is folded into the
// operand's source type.
func TestDeriveIdentityLiteral(t *testing.T) {
	aToD := expr.Coe("aToD", "alpha", "delta")

	g := rules.NewRegistry(nil)
	castOne := &rules.RewriteRule{
		Name: "alpha_cast_one",
		LHS:  expr.Ap(aToD, expr.LitOf(1, "alpha")),
		RHS:  expr.LitOf(1, "delta"),
	}
	require.NoError(t, g.Register(castOne, nil))
	cache := g.Snapshot()

	ctx := newTestContext(aToD)
	ctx.ones["alpha"] = true

	en := NewEngine(nil, "")
	input := expr.Ap(expr.C("mul_delta"),
		expr.Ap(aToD, expr.V("p")),
		expr.LitOf(1, "delta"))

	got, cert, err := en.Derive(input, cache, ctx)
	require.NoError(t, err)

	want := expr.Ap(expr.C("mul_delta"),
		expr.Ap(aToD, expr.V("p")),
		expr.Ap(aToD, expr.LitOf(1, "alpha")))
	requireExpr(t, want, got)
	requireSound(t, cache, cert, input, got)
}

// Deriving a derived result reports no progress.
func TestDeriveIdempotent(t *testing.T) {
	cache := towerCache(t)
	ctx := towerContext()
	en := NewEngine(nil, "")

	input := expr.Ap(expr.C("lt_rat"),
		expr.LitOf(10, "rat"),
		expr.Ap(expr.C("add_rat"),
			expr.Ap(intToRat, expr.V("a")),
			expr.Ap(intToRat, expr.V("b"))))

	first, _, err := en.Derive(input, cache, ctx)
	require.NoError(t, err)

	_, _, err = en.Derive(first, cache, ctx)
	assert.ErrorIs(t, err, ErrNoProgress)
}

func TestDeriveNoProgress(t *testing.T) {
	cache := towerCache(t)
	en := NewEngine(nil, "")

	_, _, err := en.Derive(expr.Ap(expr.C("add_int"), expr.V("a"), expr.V("b")), cache, towerContext())
	assert.ErrorIs(t, err, ErrNoProgress)
}

func TestDeriveDeterministic(t *testing.T) {
	cache := towerCache(t)
	ctx := towerContext()
	en := NewEngine(nil, "")

	input := expr.Ap(expr.C("lt_rat"),
		expr.LitOf(10, "rat"),
		expr.Ap(expr.C("add_rat"),
			expr.Ap(intToRat, expr.V("a")),
			expr.Ap(intToRat, expr.V("b"))))

	first, firstCert, err := en.Derive(input, cache, ctx)
	require.NoError(t, err)
	second, secondCert, err := en.Derive(input, cache, ctx)
	require.NoError(t, err)

	requireExpr(t, first, second)
	assert.Equal(t, firstCert.String(), secondCert.String())
}

func TestDeriveRelationalBuiltins(t *testing.T) {
	cache := towerCache(t)
	en := NewEngine(nil, "")
	a, b := expr.V("a"), expr.V("b")

	tests := []struct {
		name        string
		input, want expr.Expr
	}{
		{
			name:  "ge to le",
			input: expr.Ap(expr.C("ge", "int"), a, b),
			want:  expr.Ap(expr.C("le", "int"), b, a),
		},
		{
			name:  "gt to lt",
			input: expr.Ap(expr.C("gt", "int"), a, b),
			want:  expr.Ap(expr.C("lt", "int"), b, a),
		},
		{
			name:  "ne to negated eq",
			input: expr.Ap(expr.C("ne", "int"), a, b),
			want:  expr.Ap(expr.C("not"), expr.Ap(expr.C("eq", "int"), a, b)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cert, err := en.Derive(tt.input, cache, towerContext())
			require.NoError(t, err)
			requireExpr(t, tt.want, got)
			requireSound(t, cache, cert, tt.input, got)
		})
	}
}

// A rule with a side condition fires only when the context can close the
// instantiated goal.
func TestDeriveSideCondition(t *testing.T) {
	guarded := func() *rules.RewriteRule {
		return &rules.RewriteRule{
			Name:   "guarded_cast_lt",
			Params: []string{"x", "y"},
			LHS: expr.Ap(expr.C("lt_rat"),
				expr.Ap(intToRat, expr.H("x")),
				expr.Ap(intToRat, expr.H("y"))),
			RHS:   expr.Ap(expr.C("lt_int"), expr.H("x"), expr.H("y")),
			Conds: []expr.Expr{expr.Ap(expr.C("ne", "int"), expr.H("y"), expr.LitOf(0, "int"))},
			Rel:   rules.RelIff,
		}
	}
	en := NewEngine(nil, "")
	input := expr.Ap(expr.C("lt_rat"),
		expr.Ap(intToRat, expr.V("a")),
		expr.Ap(intToRat, expr.V("b")))

	g := rules.NewRegistry(nil)
	require.NoError(t, g.Register(guarded(), nil))
	cache := g.Snapshot()

	// goal closed by an assumption
	ctx := towerContext().assume(expr.Ap(expr.C("ne", "int"), expr.V("b"), expr.LitOf(0, "int")))
	got, cert, err := en.Derive(input, cache, ctx)
	require.NoError(t, err)
	requireExpr(t, expr.Ap(expr.C("lt_int"), expr.V("a"), expr.V("b")), got)
	requireSound(t, cache, cert, input, got)

	// no assumption, rule skipped
	_, _, err = en.Derive(input, cache, towerContext())
	assert.ErrorIs(t, err, ErrNoProgress)
}

// Stacked chains squash step by step, innermost first.
func TestDeriveSquashTower(t *testing.T) {
	aToB := expr.Coe("aToB", "a", "b")
	bToC := expr.Coe("bToC", "b", "c")
	cToD := expr.Coe("cToD", "c", "d")
	aToC := expr.Coe("aToC", "a", "c")
	aToD := expr.Coe("aToD2", "a", "d")

	g := rules.NewRegistry(nil)
	require.NoError(t, g.Register(&rules.RewriteRule{
		Name:   "sq_ab_c",
		Params: []string{"x"},
		LHS:    expr.Ap(bToC, expr.Ap(aToB, expr.H("x"))),
		RHS:    expr.Ap(aToC, expr.H("x")),
	}, nil))
	require.NoError(t, g.Register(&rules.RewriteRule{
		Name:   "sq_ac_d",
		Params: []string{"x"},
		LHS:    expr.Ap(cToD, expr.Ap(aToC, expr.H("x"))),
		RHS:    expr.Ap(aToD, expr.H("x")),
	}, nil))
	cache := g.Snapshot()

	en := NewEngine(nil, "")
	input := expr.Ap(cToD, expr.Ap(bToC, expr.Ap(aToB, expr.V("x"))))
	got, cert, err := en.Derive(input, cache, newTestContext(aToB, bToC, cToD, aToC, aToD))
	require.NoError(t, err)

	requireExpr(t, expr.Ap(aToD, expr.V("x")), got)
	requireSound(t, cache, cert, input, got)
}

// Splitting fails without a bridging coercion and the up rules stay stuck.
func TestDeriveSplitNeedsBridge(t *testing.T) {
	cache := towerCache(t)
	// the context knows the endpoint coercions but not nat -> int
	ctx := newTestContext(intToRat, natToRat)
	en := NewEngine(nil, "")

	input := expr.Ap(expr.C("lt_rat"),
		expr.Ap(natToRat, expr.V("n")),
		expr.Ap(intToRat, expr.V("i")))

	_, _, err := en.Derive(input, cache, ctx)
	assert.ErrorIs(t, err, ErrNoProgress)
}

// Binder and let bodies are left alone.
func TestDeriveOpaqueBinders(t *testing.T) {
	cache := towerCache(t)
	en := NewEngine(nil, "")

	input := expr.Binder{
		Kind:      expr.Lambda,
		Name:      "x",
		BoundType: "nat",
		Body:      expr.Ap(intToRat, expr.Ap(natToInt, expr.V("x"))),
	}
	_, _, err := en.Derive(input, cache, towerContext())
	assert.ErrorIs(t, err, ErrNoProgress)
}

// A squash rule over a single coercion only serves the down direction; it
// must not fire on a lone coercion during the squash phase.
func TestDeriveKeepsLoneCoercion(t *testing.T) {
	aToD := expr.Coe("aToD", "alpha", "delta")

	g := rules.NewRegistry(nil)
	require.NoError(t, g.Register(&rules.RewriteRule{
		Name: "alpha_cast_one",
		LHS:  expr.Ap(aToD, expr.LitOf(1, "alpha")),
		RHS:  expr.LitOf(1, "delta"),
	}, nil))

	en := NewEngine(nil, "")
	input := expr.Ap(aToD, expr.LitOf(1, "alpha"))
	_, _, err := en.Derive(input, g.Snapshot(), newTestContext(aToD))
	assert.ErrorIs(t, err, ErrNoProgress)
}

func TestDeriveNilCache(t *testing.T) {
	en := NewEngine(nil, "")
	_, _, err := en.Derive(expr.V("x"), nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoProgress)
}
