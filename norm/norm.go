// Package norm is the public entry point of the normalization engine. It
// loads rule files, owns the registry and its cache snapshots, and exposes
// derivation over parsed or textual expressions.
package norm

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal"
	"github.com/normcast-labs/normcast/internal/expr"
	"github.com/normcast-labs/normcast/internal/proof"
	"github.com/normcast-labs/normcast/internal/rules"
)

// Normalizer ties a rule registry, a context and the pipeline together.
// Derivations run against immutable cache snapshots, so they may proceed
// concurrently with registrations and reloads.
type Normalizer struct {
	mu       sync.RWMutex
	registry *rules.Registry
	ctx      *StaticContext
	syms     expr.Symbols
	engine   *internal.Engine
	logger   *zap.Logger
	cfgPath  string
}

// New loads a configuration file and builds a normalizer from it.
func New(configPath string, logger *zap.Logger) (*Normalizer, error) {
	config, err := ParseConfig(configPath)
	if err != nil {
		return nil, err
	}
	n, err := NewFromConfig(config, logger)
	if err != nil {
		return nil, err
	}
	n.cfgPath = configPath
	return n, nil
}

// NewFromConfig builds a normalizer from an in-memory configuration.
// Rules that fail to register are logged and skipped; the remaining rules
// still load, matching registration's per-rule failure semantics.
func NewFromConfig(config Config, logger *zap.Logger) (*Normalizer, error) {
	n := &Normalizer{
		logger: logger,
		engine: internal.NewEngine(logger, expr.TypeTag(config.Base)),
	}
	if err := n.load(config); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Normalizer) load(config Config) error {
	syms := config.Symbols()
	ctx, err := NewStaticContext(config, syms)
	if err != nil {
		return fmt.Errorf("failed to build context: %w", err)
	}
	registry := rules.NewRegistry(n.logger)

	for _, decl := range config.Rules {
		if err := registerDecl(registry, decl, syms); err != nil {
			if n.logger != nil {
				n.logger.Warn("skipping rule", zap.String("rule", decl.Name), zap.Error(err))
			}
		}
	}

	n.mu.Lock()
	n.registry = registry
	n.ctx = ctx
	n.syms = syms
	n.mu.Unlock()
	return nil
}

func registerDecl(registry *rules.Registry, decl RuleDecl, syms expr.Symbols) error {
	ruleSyms := syms.WithParams(decl.Params)

	lhs, err := expr.Parse(decl.LHS, ruleSyms)
	if err != nil {
		return fmt.Errorf("left pattern: %w", err)
	}
	rhs, err := expr.Parse(decl.RHS, ruleSyms)
	if err != nil {
		return fmt.Errorf("right pattern: %w", err)
	}
	conds := make([]expr.Expr, 0, len(decl.Conds))
	for _, src := range decl.Conds {
		cond, err := expr.Parse(src, ruleSyms)
		if err != nil {
			return fmt.Errorf("side condition: %w", err)
		}
		conds = append(conds, cond)
	}

	rel := rules.RelEq
	if decl.Relation == "iff" {
		rel = rules.RelIff
	}

	var override *rules.Label
	if decl.Label != "" {
		label, err := rules.ParseLabel(decl.Label)
		if err != nil {
			return err
		}
		override = &label
	}

	return registry.Register(&rules.RewriteRule{
		Name:   decl.Name,
		Params: decl.Params,
		LHS:    lhs,
		RHS:    rhs,
		Conds:  conds,
		Rel:    rel,
	}, override)
}

// Register adds a single rule declaration to the live registry.
func (n *Normalizer) Register(decl RuleDecl) error {
	n.mu.RLock()
	registry, syms := n.registry, n.syms
	n.mu.RUnlock()
	return registerDecl(registry, decl, syms)
}

// Reload re-reads the configuration file this normalizer was built from
// and swaps in the fresh registry and context. In-flight derivations keep
// their snapshot.
func (n *Normalizer) Reload() error {
	if n.cfgPath == "" {
		return fmt.Errorf("normalizer was not built from a file")
	}
	config, err := ParseConfig(n.cfgPath)
	if err != nil {
		return err
	}
	return n.load(config)
}

// Derive normalizes an expression against the current cache snapshot.
func (n *Normalizer) Derive(e expr.Expr) (expr.Expr, proof.Certificate, error) {
	n.mu.RLock()
	registry, ctx := n.registry, n.ctx
	n.mu.RUnlock()
	return n.engine.Derive(e, registry.Snapshot(), ctx)
}

// DeriveString parses src, derives it and renders the result.
func (n *Normalizer) DeriveString(src string) (string, proof.Certificate, error) {
	e, err := n.ParseExpr(src)
	if err != nil {
		return "", nil, err
	}
	out, cert, err := n.Derive(e)
	if err != nil {
		return "", nil, err
	}
	return out.String(), cert, nil
}

// ParseExpr parses src with the configuration's symbols.
func (n *Normalizer) ParseExpr(src string) (expr.Expr, error) {
	n.mu.RLock()
	syms := n.syms
	n.mu.RUnlock()
	return expr.Parse(src, syms)
}

// Verify replays a certificate against the current rule set.
func (n *Normalizer) Verify(cert proof.Certificate, from, to expr.Expr) error {
	return proof.Verify(cert, from, to, n.Cache().Lookup)
}

// Rules returns the registered rule declarations.
func (n *Normalizer) Rules() []*rules.RewriteRule {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.registry.Rules()
}

// Cache returns the current immutable cache snapshot.
func (n *Normalizer) Cache() *rules.NormalizationCache {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.registry.Snapshot()
}

// Context returns the discharger/coercion context.
func (n *Normalizer) Context() *StaticContext {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ctx
}
