// Package tiered resolves privacy decisions through a chain of tiers:
// the local decision cache, an optional trusted execution provider, the
// authoritative decision cache, and finally the authoritative decision
// engine.
//
// Tier order is fixed. A cache hit at any tier short-circuits the rest.
// A trusted-provider failure is logged and swallowed: the evaluator falls
// through to the authoritative tiers, and only when the authoritative
// evaluation itself cannot run does Evaluate return
// ErrEvaluationUnavailable. Decisions resolved below the local tier are
// cached back along the chain so later identical requests hit earlier.
package tiered
