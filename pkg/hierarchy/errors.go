package hierarchy

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrUnknownNode indicates a node ID that does not exist in the node set.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoHierarchy indicates no hierarchy has been installed in the registry.
	ErrNoHierarchy = errors.New("no hierarchy installed")
)

// InvalidPolicyError indicates a hierarchy failed structural validation.
// The replacement attempt that produced it is aborted; any previously
// active hierarchy remains authoritative.
type InvalidPolicyError struct {
	Set     string // "attributes" or "purposes"
	NodeID  NodeID
	Message string
}

// Error returns the error message.
func (e *InvalidPolicyError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("invalid policy hierarchy: %s node %q: %s", e.Set, e.NodeID, e.Message)
	}
	return fmt.Sprintf("invalid policy hierarchy: %s: %s", e.Set, e.Message)
}

// UnknownNodeError indicates a lookup referenced a node ID absent from the
// node set it was resolved against.
type UnknownNodeError struct {
	Set    string
	NodeID NodeID
}

// Error returns the error message.
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s node %q not in hierarchy", e.Set, e.NodeID)
}

// Unwrap returns ErrUnknownNode so callers can match with errors.Is.
func (e *UnknownNodeError) Unwrap() error {
	return ErrUnknownNode
}
