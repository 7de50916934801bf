// Package hierarchy implements the nested-set policy taxonomy that privacy
// decisions are evaluated against.
//
// # Overview
//
// A policy hierarchy is an immutable, version-stamped forest of data
// attribute nodes and processing purpose nodes. Each node carries a
// [Left, Right] interval (Nested Set Model): node A is an ancestor of node
// B exactly when A.Left <= B.Left and A.Right >= B.Right. The two node
// sets (attributes, purposes) are independent and never cross-compared.
//
// # Construction and validation
//
// Hierarchies are built with New, which validates every interval
// (Left < Right, unique IDs, no partial overlap between intervals of the
// same set) and rejects malformed input with *InvalidPolicyError. A failed
// build never disturbs a previously active hierarchy.
//
// # Concurrency
//
// A built Hierarchy is immutable and safe for concurrent readers. The
// Registry holds the live hierarchy behind a read-write lock and replaces
// it atomically; readers observe either the old or the new hierarchy in
// full, never a mix.
//
// # Usage
//
//	h, err := hierarchy.New(attributeNodes, purposeNodes)
//	if err != nil {
//	    return err
//	}
//
//	reg := hierarchy.NewRegistry()
//	version, err := reg.Replace(h)
//
//	ok, err := h.Attributes().AnyAncestorOrSelfInSet(seed, candidate)
package hierarchy
