package norm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/normcast-labs/normcast/internal/expr"
)

// Config is the YAML shape of a rule file: the coercion tower, operator
// constants, identity tables, local assumptions for the discharger and
// the rule declarations themselves.
type Config struct {
	Base      string         `yaml:"base"`
	Consts    []ConstDecl    `yaml:"consts"`
	Coercions []CoercionDecl `yaml:"coercions"`
	Ones      []string       `yaml:"ones"`
	Zeros     []string       `yaml:"zeros"`
	Assume    []string       `yaml:"assume"`
	Rules     []RuleDecl     `yaml:"rules"`
}

// ConstDecl declares an operator constant usable in patterns.
type ConstDecl struct {
	Name     string   `yaml:"name"`
	TypeArgs []string `yaml:"type_args"`
}

// CoercionDecl declares a coercion functor of the tower.
type CoercionDecl struct {
	Name string `yaml:"name"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// RuleDecl declares a rewrite rule in the compact expression syntax.
// Identifiers listed in params are the rule's bound parameters. A
// non-empty label overrides the classifier.
type RuleDecl struct {
	Name     string   `yaml:"name"`
	Params   []string `yaml:"params"`
	LHS      string   `yaml:"lhs"`
	RHS      string   `yaml:"rhs"`
	Conds    []string `yaml:"conds"`
	Relation string   `yaml:"relation"`
	Label    string   `yaml:"label"`
}

// DefaultConfig returns an empty configuration over the default base type.
func DefaultConfig() Config {
	return Config{Base: "nat"}
}

// ParseConfig reads and decodes a YAML rule file.
func ParseConfig(path string) (Config, error) {
	var config Config

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	if config.Base == "" {
		config.Base = "nat"
	}
	return config, nil
}

// Symbols builds the parser symbol table declared by the configuration.
func (c Config) Symbols() expr.Symbols {
	syms := expr.NewSymbols()
	for _, d := range c.Consts {
		args := make([]expr.TypeTag, len(d.TypeArgs))
		for i, a := range d.TypeArgs {
			args[i] = expr.TypeTag(a)
		}
		syms.Declare(expr.Const{Name: d.Name, TypeArgs: args})
	}
	for _, d := range c.Coercions {
		syms.Declare(expr.Coe(d.Name, expr.TypeTag(d.From), expr.TypeTag(d.To)))
	}
	return syms
}
