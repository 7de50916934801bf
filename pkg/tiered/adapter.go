package tiered

import (
	"context"
	"encoding/json"
	"fmt"

	"veridian-hq/callisto/pkg/decision"
	"veridian-hq/callisto/pkg/hierarchy"
)

// Trusted adapter result strings. The adapter contract is deliberately
// narrow: three serialized inputs in, one of these strings out.
const (
	TrustedResultGrant = "grant"
	TrustedResultDeny  = "deny"
	TrustedResultError = "error"
)

// TrustedEvaluationAdapter evaluates a decision inside an isolated
// execution provider. Inputs cross the boundary as serialized JSON and
// the result comes back as a string, so implementations can wrap
// out-of-process or hardware-isolated runtimes without sharing memory.
//
// Evaluate must return TrustedResultGrant, TrustedResultDeny, or
// TrustedResultError. Any other string, and any non-nil error, is
// treated as a provider failure.
type TrustedEvaluationAdapter interface {
	// Evaluate runs the decision inside the provider.
	Evaluate(ctx context.Context, serializedRequest, serializedPreference, serializedHierarchy []byte) (string, error)

	// Ready reports whether the provider is initialized and can accept
	// evaluations.
	Ready() bool

	// Close releases provider resources.
	Close() error
}

// SerializedHierarchy is the wire shape a hierarchy takes across the
// trusted boundary.
type SerializedHierarchy struct {
	Attributes []hierarchy.Node `json:"attributes"`
	Purposes   []hierarchy.Node `json:"purposes"`
}

// MarshalInputs serializes an evaluation input triple for the trusted
// boundary.
func MarshalInputs(req *decision.AccessRequest, pref *decision.Preference, h *hierarchy.Hierarchy) (serializedRequest, serializedPreference, serializedHierarchy []byte, err error) {
	serializedRequest, err = json.Marshal(req)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to serialize request: %w", err)
	}
	serializedPreference, err = json.Marshal(pref)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to serialize preference: %w", err)
	}
	serializedHierarchy, err = json.Marshal(SerializedHierarchy{
		Attributes: h.Attributes().Nodes(),
		Purposes:   h.Purposes().Nodes(),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to serialize hierarchy: %w", err)
	}
	return serializedRequest, serializedPreference, serializedHierarchy, nil
}
