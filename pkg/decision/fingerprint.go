package decision

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"

	"veridian-hq/callisto/pkg/hierarchy"
)

// Fingerprint is a content-addressed cache key derived from an evaluation
// input triple. Two equal fingerprints identify interchangeable decisions.
type Fingerprint string

// fingerprintInput is the canonical serialization shape. The ID slices are
// sets: they are sorted before hashing so member order never changes the
// fingerprint.
type fingerprintInput struct {
	Request       *AccessRequest `json:"request"`
	Preference    *Preference    `json:"preference"`
	PolicyVersion string         `json:"policyVersion"`
}

// ComputeFingerprint hashes the canonical serialization of
// (request, preference, policyVersion) with SHA-256 over RFC 8785
// canonical JSON. It is deterministic: equal inputs yield equal
// fingerprints, and any change to the policy version yields a different
// fingerprint.
func ComputeFingerprint(req *AccessRequest, pref *Preference, policyVersion string) (Fingerprint, error) {
	if req == nil || pref == nil {
		return "", &InputError{Field: "fingerprint input", Message: "request and preference cannot be nil"}
	}

	input := fingerprintInput{
		Request: &AccessRequest{
			AttributeIDs:     sortedIDs(req.AttributeIDs),
			PurposeIDs:       sortedIDs(req.PurposeIDs),
			RetentionSeconds: req.RetentionSeconds,
		},
		Preference: &Preference{
			AllowedAttributeIDs:  sortedIDs(pref.AllowedAttributeIDs),
			ExceptedAttributeIDs: sortedIDs(pref.ExceptedAttributeIDs),
			DeniedAttributeIDs:   sortedIDs(pref.DeniedAttributeIDs),
			AllowedPurposeIDs:    sortedIDs(pref.AllowedPurposeIDs),
			ExceptedPurposeIDs:   sortedIDs(pref.ExceptedPurposeIDs),
			DeniedPurposeIDs:     sortedIDs(pref.DeniedPurposeIDs),
			RetentionSeconds:     pref.RetentionSeconds,
		},
		PolicyVersion: policyVersion,
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to serialize fingerprint input: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize fingerprint input: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return Fingerprint(hex.EncodeToString(sum[:])), nil
}

// sortedIDs returns a sorted copy, normalizing nil to an empty slice so
// "absent" and "empty" serialize identically.
func sortedIDs(ids []hierarchy.NodeID) []hierarchy.NodeID {
	out := make([]hierarchy.NodeID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
