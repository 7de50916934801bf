package hierarchy

import (
	"fmt"
	"sort"
)

// NodeSet is one dimension of a hierarchy (attributes or purposes).
// It answers interval-containment queries over its nodes.
//
// A NodeSet is immutable once built and safe for concurrent use.
type NodeSet struct {
	name string

	// byID resolves node IDs to nodes.
	byID map[NodeID]Node

	// ordered holds nodes sorted by Left ascending, Right descending,
	// so that every node appears after all of its ancestors.
	ordered []Node
}

// newNodeSet builds and validates a node set. It enforces Left < Right on
// every node, unique IDs, unique intervals, and the nesting invariant:
// any two intervals are either disjoint or properly nested.
func newNodeSet(name string, nodes []Node) (*NodeSet, error) {
	byID := make(map[NodeID]Node, len(nodes))
	ordered := make([]Node, 0, len(nodes))

	for _, n := range nodes {
		if n.ID == "" {
			return nil, &InvalidPolicyError{Set: name, Message: "node ID cannot be empty"}
		}
		if n.Left >= n.Right {
			return nil, &InvalidPolicyError{
				Set:     name,
				NodeID:  n.ID,
				Message: fmt.Sprintf("interval [%d, %d] must satisfy left < right", n.Left, n.Right),
			}
		}
		if _, dup := byID[n.ID]; dup {
			return nil, &InvalidPolicyError{Set: name, NodeID: n.ID, Message: "duplicate node ID"}
		}
		byID[n.ID] = n
		ordered = append(ordered, n)
	}

	// Sort so ancestors precede descendants. Ties on Left are ordered by
	// the wider interval first.
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Left != ordered[j].Left {
			return ordered[i].Left < ordered[j].Left
		}
		return ordered[i].Right > ordered[j].Right
	})

	// Sweep with a stack of enclosing intervals to detect partial overlap.
	// After popping every interval that ends before this one starts, the
	// top of the stack must fully contain the current interval.
	var stack []Node
	for _, n := range ordered {
		for len(stack) > 0 && stack[len(stack)-1].Right < n.Left {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.Left == n.Left && top.Right == n.Right {
				return nil, &InvalidPolicyError{
					Set:     name,
					NodeID:  n.ID,
					Message: fmt.Sprintf("interval [%d, %d] duplicates node %q", n.Left, n.Right, top.ID),
				}
			}
			if !top.Contains(n) {
				return nil, &InvalidPolicyError{
					Set:     name,
					NodeID:  n.ID,
					Message: fmt.Sprintf("interval [%d, %d] partially overlaps node %q [%d, %d]", n.Left, n.Right, top.ID, top.Left, top.Right),
				}
			}
		}
		stack = append(stack, n)
	}

	return &NodeSet{name: name, byID: byID, ordered: ordered}, nil
}

// Get resolves a node by ID.
func (s *NodeSet) Get(id NodeID) (Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Len returns the number of nodes in the set.
func (s *NodeSet) Len() int {
	return len(s.byID)
}

// IsAncestorOrSelf reports whether node a is an ancestor of node b, or a
// and b are the same node. Both IDs must resolve within this set.
func (s *NodeSet) IsAncestorOrSelf(a, b NodeID) (bool, error) {
	na, ok := s.byID[a]
	if !ok {
		return false, &UnknownNodeError{Set: s.name, NodeID: a}
	}
	nb, ok := s.byID[b]
	if !ok {
		return false, &UnknownNodeError{Set: s.name, NodeID: b}
	}
	return na.Contains(nb), nil
}

// AnyAncestorOrSelfInSet reports whether any member of seed is an
// ancestor-or-self of candidate. The candidate must resolve within this
// set; seed members that do not resolve simply never match, mirroring how
// preferences may reference nodes pruned from a later taxonomy revision.
func (s *NodeSet) AnyAncestorOrSelfInSet(seed []NodeID, candidate NodeID) (bool, error) {
	c, ok := s.byID[candidate]
	if !ok {
		return false, &UnknownNodeError{Set: s.name, NodeID: candidate}
	}
	for _, id := range seed {
		n, ok := s.byID[id]
		if !ok {
			continue
		}
		if n.Contains(c) {
			return true, nil
		}
	}
	return false, nil
}

// Roots returns the nodes not strictly contained by any other node,
// in interval order.
func (s *NodeSet) Roots() []Node {
	var roots []Node
	var bound int
	for i, n := range s.ordered {
		if i == 0 || n.Left > bound {
			roots = append(roots, n)
			bound = n.Right
		}
	}
	return roots
}

// Nodes returns all nodes sorted by interval position. The returned slice
// is a copy.
func (s *NodeSet) Nodes() []Node {
	nodes := make([]Node, len(s.ordered))
	copy(nodes, s.ordered)
	return nodes
}

// Hierarchy is an immutable forest of attribute and purpose taxonomies.
// Build one with New; a returned Hierarchy always satisfies the nesting
// invariants and is safe for concurrent readers.
type Hierarchy struct {
	attributes *NodeSet
	purposes   *NodeSet
}

// New builds a hierarchy from attribute and purpose node definitions,
// validating both node sets. On any violation it returns
// *InvalidPolicyError and no hierarchy.
func New(attributes, purposes []Node) (*Hierarchy, error) {
	attrSet, err := newNodeSet("attributes", attributes)
	if err != nil {
		return nil, err
	}
	purpSet, err := newNodeSet("purposes", purposes)
	if err != nil {
		return nil, err
	}
	return &Hierarchy{attributes: attrSet, purposes: purpSet}, nil
}

// Attributes returns the attribute node set.
func (h *Hierarchy) Attributes() *NodeSet {
	return h.attributes
}

// Purposes returns the purpose node set.
func (h *Hierarchy) Purposes() *NodeSet {
	return h.purposes
}
