package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normcast-labs/normcast/internal/expr"
)

var (
	natToInt = expr.Coe("natToInt", "nat", "int")
	intToRat = expr.Coe("intToRat", "int", "rat")
	natToRat = expr.Coe("natToRat", "nat", "rat")
)

// castAdd distributes a coercion over integer addition.
func castAdd() *RewriteRule {
	return &RewriteRule{
		Name:   "int_cast_add",
		Params: []string{"x", "y"},
		LHS:    expr.Ap(intToRat, expr.Ap(expr.C("add_int"), expr.H("x"), expr.H("y"))),
		RHS: expr.Ap(expr.C("add_rat"),
			expr.Ap(intToRat, expr.H("x")),
			expr.Ap(intToRat, expr.H("y"))),
	}
}

// castLt eliminates matching coercions under a comparison.
func castLt() *RewriteRule {
	return &RewriteRule{
		Name:   "int_cast_lt",
		Params: []string{"x", "y"},
		LHS: expr.Ap(expr.C("lt_rat"),
			expr.Ap(intToRat, expr.H("x")),
			expr.Ap(intToRat, expr.H("y"))),
		RHS: expr.Ap(expr.C("lt_int"), expr.H("x"), expr.H("y")),
		Rel: RelIff,
	}
}

// natIntRat collapses a two-step coercion chain.
func natIntRat() *RewriteRule {
	return &RewriteRule{
		Name:   "nat_int_rat",
		Params: []string{"x"},
		LHS:    expr.Ap(intToRat, expr.Ap(natToInt, expr.H("x"))),
		RHS:    expr.Ap(natToRat, expr.H("x")),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs expr.Expr
		want     Label
	}{
		{
			name: "elim",
			lhs:  castLt().LHS,
			rhs:  castLt().RHS,
			want: LabelElim,
		},
		{
			name: "move",
			lhs:  castAdd().LHS,
			rhs:  castAdd().RHS,
			want: LabelMove,
		},
		{
			name: "squash chain",
			lhs:  natIntRat().LHS,
			rhs:  natIntRat().RHS,
			want: LabelSquash,
		},
		{
			name: "squash to literal",
			lhs:  expr.Ap(expr.Coe("aToD", "alpha", "delta"), expr.LitOf(1, "alpha")),
			rhs:  expr.LitOf(1, "delta"),
			want: LabelSquash,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.lhs, tt.rhs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRejects(t *testing.T) {
	coeX := expr.Ap(natToInt, expr.H("x"))

	tests := []struct {
		name     string
		lhs, rhs expr.Expr
	}{
		{
			name: "coercion-free left side",
			lhs:  expr.Ap(expr.C("add_int"), expr.H("x"), expr.H("y")),
			rhs:  expr.Ap(expr.C("add_int"), expr.H("y"), expr.H("x")),
		},
		{
			name: "internal left, head coercion on the right",
			lhs:  expr.Ap(expr.C("abs_int"), coeX),
			rhs:  coeX,
		},
		{
			name: "head coercion survives",
			lhs:  expr.Ap(natToInt, expr.Ap(expr.C("succ"), expr.H("x"))),
			rhs:  expr.Ap(natToInt, expr.H("x")),
		},
		{
			name: "no reduction in head count",
			lhs:  expr.Ap(intToRat, expr.Ap(natToInt, expr.H("x"))),
			rhs:  expr.Ap(intToRat, expr.Ap(natToInt, expr.Ap(expr.C("succ"), expr.H("x")))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.lhs, tt.rhs)
			assert.ErrorIs(t, err, ErrBadShape)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	r := castAdd()
	first, err := Classify(r.LHS, r.RHS)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Classify(r.LHS, r.RHS)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompareClassifiers(t *testing.T) {
	noCoe := &RewriteRule{
		Name: "no_coe",
		LHS:  expr.Ap(expr.C("add_int"), expr.H("x"), expr.H("y")),
		RHS:  expr.Ap(expr.C("add_int"), expr.H("y"), expr.H("x")),
	}
	ruleSet := []*RewriteRule{castAdd(), castLt(), natIntRat(), noCoe}

	report := CompareClassifiers(Classify, LegacyClassify, ruleSet)

	// The legacy heuristic cannot tell a move from a squash, and counts the
	// shared failure on the coercion-free rule as agreement.
	assert.Equal(t, 3, report.Agree)
	assert.Equal(t, 1, report.Disagree)
	assert.Equal(t, 0, report.FirstFails)
	assert.Equal(t, 0, report.SecondFails)
	assert.Equal(t, []string{"int_cast_add"}, report.DisagreeOn)
	assert.Contains(t, report.Summary(), "4 rules")
}

func TestCompareClassifiersUnswapsReversed(t *testing.T) {
	orig := castAdd()
	require.NoError(t, classifyInto(orig))
	rev := orig.Reverse()

	report := CompareClassifiers(Classify, Classify, []*RewriteRule{rev})
	assert.Equal(t, 1, report.Agree)
	assert.Equal(t, 0, report.FirstFails)
}

func TestCompareClassifiersSkipsBuiltins(t *testing.T) {
	report := CompareClassifiers(Classify, LegacyClassify, builtinRelationalRules())
	assert.Equal(t, 0, report.Agree+report.Disagree+report.FirstFails+report.SecondFails)
}

func classifyInto(r *RewriteRule) error {
	label, err := Classify(r.LHS, r.RHS)
	if err != nil {
		return err
	}
	r.Label = label
	return nil
}
