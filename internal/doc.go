// Package internal implements the cast normalization pipeline: a
// four-phase driver that pushes coercions toward the leaves of an
// expression, collapses redundant coercion chains and emits a replayable
// certificate for the whole rewrite.
//
// The pipeline is driven by three rule databases built from registered
// rewrite rules (see the rules package):
//
//   - "up" rules lift and eliminate coercions bottom-up,
//   - "down" rules push coercions toward the leaves in local sub-proofs,
//   - "squash" rules collapse adjacent coercion chains.
//
// When no up rule applies at a binary node, a splitting heuristic bridges
// mismatched coercions by inserting an intermediate injection, or lifts a
// bare 0/1 literal into the coercion's source type.
//
// Certificates use congruence only in application positions, so binder and
// let bodies are left untouched by rewriting (they still count toward rule
// classification).
package internal
