package rules

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal/expr"
)

var (
	// ErrClassification rejects a manual label that conflicts with the one
	// shape requirement overrides cannot waive: a coercion on the left.
	ErrClassification = errors.New("classification conflict")
	// ErrDuplicateRule rejects re-registration of a rule name.
	ErrDuplicateRule = errors.New("duplicate rule name")
)

// Registry is the mutable set of rule declarations. Registration is
// serialized; reads go through immutable snapshots, rebuilt only when the
// declaration set has changed since the last build.
type Registry struct {
	mu      sync.Mutex
	names   *set.Set[string]
	rules   []*RewriteRule
	version uint64
	logger  *zap.Logger

	snapshot    *NormalizationCache
	snapVersion uint64
}

// NewRegistry creates an empty registry. The logger may be nil.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		names:  set.New[string](16),
		logger: logger,
	}
}

// Register classifies and stores a rule declaration. With a non-nil
// override the computed label is replaced without re-validation, except
// that a left pattern without any coercion is rejected regardless.
func (g *Registry) Register(r *RewriteRule, override *Label) error {
	label, err := Classify(r.LHS, r.RHS)
	if err != nil {
		if override == nil {
			return fmt.Errorf("rule %s: %w", r.Name, err)
		}
		// An override may relabel an oddly shaped rule, but not conjure a
		// coercion out of nothing.
		if expr.TotalCoercions(r.LHS) == 0 {
			return fmt.Errorf("rule %s: %w: override on a coercion-free left side", r.Name, ErrClassification)
		}
		label = *override
		r.Overridden = true
	} else if override != nil {
		label = *override
		r.Overridden = true
	}
	r.Label = label

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.names.Insert(r.Name) {
		return fmt.Errorf("rule %s: %w", r.Name, ErrDuplicateRule)
	}
	g.rules = append(g.rules, r)
	g.version++

	if g.logger != nil {
		g.logger.Debug("registered rule",
			zap.String("rule", r.Name),
			zap.Stringer("label", r.Label),
			zap.Bool("overridden", r.Overridden))
	}
	return nil
}

// Rules returns a copy of the registered declarations.
func (g *Registry) Rules() []*RewriteRule {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*RewriteRule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Len returns the number of registered rules.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rules)
}

// Version increments on every successful registration.
func (g *Registry) Version() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.version
}

// Snapshot returns the current cache, rebuilding it only when the
// declaration set changed since the last build. The returned value is
// immutable; callers may use it concurrently and keep stale copies
// across later registrations.
func (g *Registry) Snapshot() *NormalizationCache {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.snapshot == nil || g.snapVersion != g.version {
		g.snapshot = BuildCache(g.rules, g.logger)
		g.snapVersion = g.version
		if g.logger != nil {
			g.logger.Debug("rebuilt rule cache",
				zap.Uint64("version", g.version),
				zap.Int("up", g.snapshot.Up.Len()),
				zap.Int("down", g.snapshot.Down.Len()),
				zap.Int("squash", g.snapshot.Squash.Len()))
		}
	}
	return g.snapshot
}
