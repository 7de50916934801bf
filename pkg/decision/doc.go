// Package decision implements the privacy decision engine: a pure,
// deterministic function deciding whether an application's declared data
// access is compatible with a subject's privacy preference.
//
// # Algorithm
//
// A decision combines three checks against a policy hierarchy:
//
//   - attributes: any requested attribute covered by an allowed node,
//     AND no requested attribute covered by an excepted node,
//     AND no requested attribute covered by a denied node
//   - purposes: the same construction over the purpose node set
//   - retention: the requested retention must not exceed the subject's
//
// The result is Grant only when all three checks pass, otherwise Deny.
// Malformed input (missing hierarchy, unknown requested node IDs) is an
// error, never a decision, and must not be cached.
//
// The attribute/purpose checks use any-match semantics: one covered
// requested item satisfies the check for its set. A request spanning
// several attributes does not require each one to be individually covered.
//
// # Fingerprints
//
// Fingerprint derives a content-addressed cache key from a request, a
// preference and a policy version: SHA-256 over the RFC 8785 canonical
// JSON serialization of the triple. Equal inputs always map to the same
// fingerprint; any policy version change changes it.
package decision
