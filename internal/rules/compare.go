package rules

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/normcast-labs/normcast/internal/expr"
)

// Classifier is any function computing a label from a rule's two sides.
type Classifier func(lhs, rhs expr.Expr) (Label, error)

// Report buckets the outcome of running two classifiers over a rule set.
type Report struct {
	Agree        int
	Disagree     int
	FirstFails   int
	SecondFails  int
	DisagreeOn   []string
	FirstFailOn  []string
	SecondFailOn []string
}

// Summary returns a one-line human-readable account.
func (r Report) Summary() string {
	return fmt.Sprintf("compared %d rules: %d agree, %d disagree, %d first-only failures, %d second-only failures",
		r.Agree+r.Disagree+r.FirstFails+r.SecondFails,
		r.Agree, r.Disagree, r.FirstFails, r.SecondFails)
}

// CompareClassifiers runs f and g over every rule and buckets the results.
// Rules where both classifiers fail count as agreement. Built-in rules are
// skipped; they were never classified.
func CompareClassifiers(f, g Classifier, ruleSet []*RewriteRule) Report {
	var report Report
	disagree := set.New[string](0)
	firstFail := set.New[string](0)
	secondFail := set.New[string](0)

	for _, r := range ruleSet {
		if r.Builtin() {
			continue
		}
		lhs, rhs := r.LHS, r.RHS
		if r.Reversed {
			lhs, rhs = rhs, lhs
		}
		fl, ferr := f(lhs, rhs)
		gl, gerr := g(lhs, rhs)

		switch {
		case ferr != nil && gerr != nil:
			report.Agree++
		case ferr != nil:
			report.FirstFails++
			firstFail.Insert(r.Name)
		case gerr != nil:
			report.SecondFails++
			secondFail.Insert(r.Name)
		case fl == gl:
			report.Agree++
		default:
			report.Disagree++
			disagree.Insert(r.Name)
		}
	}

	report.DisagreeOn = disagree.Slice()
	report.FirstFailOn = firstFail.Slice()
	report.SecondFailOn = secondFail.Slice()
	return report
}

// LegacyClassify is the head-count-only heuristic the structural
// classifier replaced. Kept for the comparison harness: running it against
// Classify over a full rule set shows exactly where the two drift apart
// (rules with internal coercions on the right).
func LegacyClassify(lhs, rhs expr.Expr) (Label, error) {
	if expr.TotalCoercions(lhs) == 0 {
		return 0, fmt.Errorf("%w: left side mentions no coercion", ErrBadShape)
	}
	headL := expr.HeadCoercions(lhs)
	headR := expr.HeadCoercions(rhs)
	switch {
	case headL == 0:
		return LabelElim, nil
	case headR < headL:
		return LabelSquash, nil
	default:
		return 0, fmt.Errorf("%w: no valid reduction in coercion count", ErrBadShape)
	}
}
