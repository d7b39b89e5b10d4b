package rules

import (
	"github.com/normcast-labs/normcast/internal/expr"
)

// Database is an indexed collection of rewrite rules. Rules are bucketed
// by the head constant of their left pattern; rules whose left pattern has
// no constant head live in a wildcard bucket tried after the indexed ones.
type Database struct {
	name     string
	rules    []*RewriteRule
	index    map[string][]*RewriteRule
	wildcard []*RewriteRule
}

func newDatabase(name string) *Database {
	return &Database{
		name:  name,
		index: make(map[string][]*RewriteRule),
	}
}

// Name returns the database name ("up", "down" or "squash").
func (d *Database) Name() string {
	return d.name
}

func (d *Database) add(r *RewriteRule) {
	d.rules = append(d.rules, r)
	if key, ok := headSymbol(r.LHS); ok {
		d.index[key] = append(d.index[key], r)
		return
	}
	d.wildcard = append(d.wildcard, r)
}

// Candidates returns the rules whose left pattern could match e, in
// registration order: head-indexed rules first, then wildcard rules.
func (d *Database) Candidates(e expr.Expr) []*RewriteRule {
	key, ok := headSymbol(e)
	if !ok {
		return d.wildcard
	}
	indexed := d.index[key]
	if len(d.wildcard) == 0 {
		return indexed
	}
	out := make([]*RewriteRule, 0, len(indexed)+len(d.wildcard))
	out = append(out, indexed...)
	out = append(out, d.wildcard...)
	return out
}

// Rules returns every rule in registration order.
func (d *Database) Rules() []*RewriteRule {
	return d.rules
}

// Len returns the number of rules in the database.
func (d *Database) Len() int {
	return len(d.rules)
}

func headSymbol(e expr.Expr) (string, bool) {
	head, _ := expr.Spine(e)
	if c, ok := head.(expr.Const); ok {
		return c.Name, true
	}
	return "", false
}
