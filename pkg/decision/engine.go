package decision

import (
	"veridian-hq/callisto/pkg/hierarchy"
)

// Evaluate runs the full three-part privacy check and returns Grant only
// when the attribute check, the purpose check and the retention check all
// pass. It is a pure function of its inputs: no state, no clock, no
// randomness, so identical inputs always produce the identical decision.
//
// Malformed input (nil request, preference or hierarchy, negative
// retention, requested node IDs absent from the hierarchy) returns an
// error instead of a decision.
func Evaluate(req *AccessRequest, pref *Preference, h *hierarchy.Hierarchy) (Decision, error) {
	if req == nil {
		return "", &InputError{Field: "request", Message: "cannot be nil"}
	}
	if pref == nil {
		return "", &InputError{Field: "preference", Message: "cannot be nil"}
	}
	if h == nil {
		return "", &InputError{Field: "hierarchy", Message: "cannot be nil"}
	}
	if req.RetentionSeconds < 0 {
		return "", &InputError{Field: "request", Message: "retention cannot be negative"}
	}
	if pref.RetentionSeconds < 0 {
		return "", &InputError{Field: "preference", Message: "retention cannot be negative"}
	}

	attributesPass, err := EvaluateAttributes(req, pref, h)
	if err != nil {
		return "", err
	}

	purposesPass, err := EvaluatePurposes(req, pref, h)
	if err != nil {
		return "", err
	}

	if attributesPass && purposesPass && EvaluateRetention(req, pref) {
		return Grant, nil
	}
	return Deny, nil
}

// EvaluateAttributes runs the attribute dimension check:
// allowed AND NOT excepted AND NOT denied, each with any-match semantics.
func EvaluateAttributes(req *AccessRequest, pref *Preference, h *hierarchy.Hierarchy) (bool, error) {
	set := h.Attributes()

	allowed, err := matchesAny(set, pref.AllowedAttributeIDs, req.AttributeIDs)
	if err != nil {
		return false, wrapAttributeErr(err)
	}
	excepted, err := matchesAny(set, pref.ExceptedAttributeIDs, req.AttributeIDs)
	if err != nil {
		return false, wrapAttributeErr(err)
	}
	denied, err := matchesAny(set, pref.DeniedAttributeIDs, req.AttributeIDs)
	if err != nil {
		return false, wrapAttributeErr(err)
	}

	return allowed && !excepted && !denied, nil
}

// EvaluatePurposes runs the purpose dimension check with the same
// construction as EvaluateAttributes, over the purpose node set.
func EvaluatePurposes(req *AccessRequest, pref *Preference, h *hierarchy.Hierarchy) (bool, error) {
	set := h.Purposes()

	allowed, err := matchesAny(set, pref.AllowedPurposeIDs, req.PurposeIDs)
	if err != nil {
		return false, wrapPurposeErr(err)
	}
	excepted, err := matchesAny(set, pref.ExceptedPurposeIDs, req.PurposeIDs)
	if err != nil {
		return false, wrapPurposeErr(err)
	}
	denied, err := matchesAny(set, pref.DeniedPurposeIDs, req.PurposeIDs)
	if err != nil {
		return false, wrapPurposeErr(err)
	}

	return allowed && !excepted && !denied, nil
}

// EvaluateRetention reports whether the requested retention stays within
// the subject's declared tolerance.
func EvaluateRetention(req *AccessRequest, pref *Preference) bool {
	return req.RetentionSeconds <= pref.RetentionSeconds
}

// matchesAny reports whether any requested node is covered by any seed
// node (ancestor-or-self). A single match satisfies the set: coverage of
// one requested item is enough, the rest are not individually checked.
// Requested IDs must resolve in the hierarchy; unresolved seed IDs are
// skipped by the node set.
func matchesAny(set *hierarchy.NodeSet, seed, requested []hierarchy.NodeID) (bool, error) {
	for _, r := range requested {
		ok, err := set.AnyAncestorOrSelfInSet(seed, r)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func wrapAttributeErr(err error) error {
	return &InputError{Field: "request attributes", Message: "unresolvable node reference", Cause: err}
}

func wrapPurposeErr(err error) error {
	return &InputError{Field: "request purposes", Message: "unresolvable node reference", Cause: err}
}
