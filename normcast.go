// Package normcast re-exports the pieces of the public API that external
// callers need by name. The norm package carries the behavior.
package normcast

import (
	"go.uber.org/zap"

	"github.com/normcast-labs/normcast/internal"
	"github.com/normcast-labs/normcast/internal/proof"
	"github.com/normcast-labs/normcast/norm"
)

// Certificate is the replayable proof object returned by derivation.
type Certificate = proof.Certificate

// ErrNoProgress reports that an expression is already in normal form.
var ErrNoProgress = internal.ErrNoProgress

// New loads a rule file and returns a ready normalizer.
func New(configPath string, logger *zap.Logger) (*norm.Normalizer, error) {
	return norm.New(configPath, logger)
}
