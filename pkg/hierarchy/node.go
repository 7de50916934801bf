package hierarchy

// NodeID uniquely identifies a node within one node set of a hierarchy.
type NodeID string

// Node is a single entry in a nested-set taxonomy. The [Left, Right]
// interval encodes its position: a node contains every node whose interval
// lies within its own.
type Node struct {
	// ID is the node identifier, unique within its node set.
	ID NodeID `yaml:"id" json:"id"`

	// Name is a human-readable label (e.g. "Identifier", "GPS Location").
	Name string `yaml:"name" json:"name"`

	// Left is the interval lower bound. Must be strictly less than Right.
	Left int `yaml:"left" json:"left"`

	// Right is the interval upper bound.
	Right int `yaml:"right" json:"right"`
}

// Contains reports whether n's interval contains m's interval
// (ancestor-or-self relation in the Nested Set Model).
func (n Node) Contains(m Node) bool {
	return n.Left <= m.Left && n.Right >= m.Right
}

// StrictlyContains reports whether n contains m and the two intervals
// are not identical.
func (n Node) StrictlyContains(m Node) bool {
	return n.Contains(m) && !(n.Left == m.Left && n.Right == m.Right)
}
