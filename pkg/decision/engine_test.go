package decision

import (
	"errors"
	"testing"

	"veridian-hq/callisto/pkg/hierarchy"
)

// testHierarchy builds:
//
//	attributes: identifier [1,10] > gps [2,3], email [4,5]; health [11,20]
//	purposes:   service [1,10] > billing [2,3]; marketing [11,14] > ads [12,13]
func testHierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	h, err := hierarchy.New(
		[]hierarchy.Node{
			{ID: "identifier", Name: "Identifier", Left: 1, Right: 10},
			{ID: "gps", Name: "GPS Location", Left: 2, Right: 3},
			{ID: "email", Name: "Email", Left: 4, Right: 5},
			{ID: "health", Name: "Health", Left: 11, Right: 20},
		},
		[]hierarchy.Node{
			{ID: "service", Name: "Service Provision", Left: 1, Right: 10},
			{ID: "billing", Name: "Billing", Left: 2, Right: 3},
			{ID: "marketing", Name: "Marketing", Left: 11, Right: 14},
			{ID: "ads", Name: "Targeted Ads", Left: 12, Right: 13},
		},
	)
	if err != nil {
		t.Fatalf("hierarchy.New() failed: %v", err)
	}
	return h
}

// permissivePreference allows everything under identifier/service with a
// generous retention window.
func permissivePreference() *Preference {
	return &Preference{
		AllowedAttributeIDs: []hierarchy.NodeID{"identifier"},
		AllowedPurposeIDs:   []hierarchy.NodeID{"service"},
		RetentionSeconds:    3600,
	}
}

func gpsBillingRequest() *AccessRequest {
	return &AccessRequest{
		AttributeIDs:     []hierarchy.NodeID{"gps"},
		PurposeIDs:       []hierarchy.NodeID{"billing"},
		RetentionSeconds: 600,
	}
}

func TestEvaluateAttributes(t *testing.T) {
	h := testHierarchy(t)

	tests := []struct {
		name string
		req  *AccessRequest
		pref *Preference
		want bool
	}{
		{
			name: "ancestor allow covers descendant request",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"gps"}},
			pref: &Preference{AllowedAttributeIDs: []hierarchy.NodeID{"identifier"}},
			want: true,
		},
		{
			name: "self allow",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"gps"}},
			pref: &Preference{AllowedAttributeIDs: []hierarchy.NodeID{"gps"}},
			want: true,
		},
		{
			name: "deny wins over allow",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"gps"}},
			pref: &Preference{
				AllowedAttributeIDs: []hierarchy.NodeID{"identifier"},
				DeniedAttributeIDs:  []hierarchy.NodeID{"identifier"},
			},
			want: false,
		},
		{
			name: "deny wins even with empty allow",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"gps"}},
			pref: &Preference{DeniedAttributeIDs: []hierarchy.NodeID{"identifier"}},
			want: false,
		},
		{
			name: "exception carves out subtree",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"gps"}},
			pref: &Preference{
				AllowedAttributeIDs:  []hierarchy.NodeID{"identifier"},
				ExceptedAttributeIDs: []hierarchy.NodeID{"gps"},
			},
			want: false,
		},
		{
			name: "exception of sibling does not block",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"gps"}},
			pref: &Preference{
				AllowedAttributeIDs:  []hierarchy.NodeID{"identifier"},
				ExceptedAttributeIDs: []hierarchy.NodeID{"email"},
			},
			want: true,
		},
		{
			name: "uncovered request",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"health"}},
			pref: &Preference{AllowedAttributeIDs: []hierarchy.NodeID{"identifier"}},
			want: false,
		},
		{
			name: "empty request never matches allow",
			req:  &AccessRequest{},
			pref: &Preference{AllowedAttributeIDs: []hierarchy.NodeID{"identifier"}},
			want: false,
		},
		{
			// Any-match: one covered attribute satisfies the allow check
			// even when another requested attribute has no coverage at all.
			name: "mixed coverage passes on any match",
			req:  &AccessRequest{AttributeIDs: []hierarchy.NodeID{"gps", "health"}},
			pref: &Preference{AllowedAttributeIDs: []hierarchy.NodeID{"identifier"}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateAttributes(tt.req, tt.pref, h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("EvaluateAttributes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateRetention(t *testing.T) {
	tests := []struct {
		name      string
		requested int64
		accepted  int64
		want      bool
	}{
		{name: "within window", requested: 600, accepted: 3600, want: true},
		{name: "exactly at window", requested: 3600, accepted: 3600, want: true},
		{name: "exceeds window", requested: 7200, accepted: 3600, want: false},
		{name: "zero retention request", requested: 0, accepted: 3600, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &AccessRequest{RetentionSeconds: tt.requested}
			pref := &Preference{RetentionSeconds: tt.accepted}
			if got := EvaluateRetention(req, pref); got != tt.want {
				t.Errorf("EvaluateRetention() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	h := testHierarchy(t)

	tests := []struct {
		name string
		req  *AccessRequest
		pref *Preference
		want Decision
	}{
		{
			name: "all checks pass",
			req:  gpsBillingRequest(),
			pref: permissivePreference(),
			want: Grant,
		},
		{
			name: "retention exceeded",
			req: &AccessRequest{
				AttributeIDs:     []hierarchy.NodeID{"gps"},
				PurposeIDs:       []hierarchy.NodeID{"billing"},
				RetentionSeconds: 7200,
			},
			pref: permissivePreference(),
			want: Deny,
		},
		{
			name: "purpose not allowed",
			req: &AccessRequest{
				AttributeIDs:     []hierarchy.NodeID{"gps"},
				PurposeIDs:       []hierarchy.NodeID{"ads"},
				RetentionSeconds: 600,
			},
			pref: permissivePreference(),
			want: Deny,
		},
		{
			name: "denied attribute",
			req:  gpsBillingRequest(),
			pref: &Preference{
				AllowedAttributeIDs: []hierarchy.NodeID{"identifier"},
				DeniedAttributeIDs:  []hierarchy.NodeID{"identifier"},
				AllowedPurposeIDs:   []hierarchy.NodeID{"service"},
				RetentionSeconds:    3600,
			},
			want: Deny,
		},
		{
			name: "empty preference denies",
			req:  gpsBillingRequest(),
			pref: &Preference{RetentionSeconds: 3600},
			want: Deny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.req, tt.pref, h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluate_MalformedInput(t *testing.T) {
	h := testHierarchy(t)

	tests := []struct {
		name string
		req  *AccessRequest
		pref *Preference
		h    *hierarchy.Hierarchy
	}{
		{name: "nil request", req: nil, pref: permissivePreference(), h: h},
		{name: "nil preference", req: gpsBillingRequest(), pref: nil, h: h},
		{name: "nil hierarchy", req: gpsBillingRequest(), pref: permissivePreference(), h: nil},
		{
			name: "unknown requested attribute",
			req: &AccessRequest{
				AttributeIDs:     []hierarchy.NodeID{"nonexistent"},
				PurposeIDs:       []hierarchy.NodeID{"billing"},
				RetentionSeconds: 600,
			},
			pref: permissivePreference(),
			h:    h,
		},
		{
			name: "unknown requested purpose",
			req: &AccessRequest{
				AttributeIDs:     []hierarchy.NodeID{"gps"},
				PurposeIDs:       []hierarchy.NodeID{"nonexistent"},
				RetentionSeconds: 600,
			},
			pref: permissivePreference(),
			h:    h,
		},
		{
			name: "negative retention",
			req: &AccessRequest{
				AttributeIDs:     []hierarchy.NodeID{"gps"},
				PurposeIDs:       []hierarchy.NodeID{"billing"},
				RetentionSeconds: -1,
			},
			pref: permissivePreference(),
			h:    h,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.req, tt.pref, tt.h)
			if err == nil {
				t.Fatalf("expected error, got decision %q", got)
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("expected ErrMalformedInput, got %v", err)
			}
			if got.Valid() {
				t.Errorf("malformed input must not yield a decision, got %q", got)
			}
		})
	}
}

// Unknown preference node IDs never match but are not errors: preferences
// may reference nodes pruned from a later taxonomy revision.
func TestEvaluate_StalePreferenceReferences(t *testing.T) {
	h := testHierarchy(t)

	pref := &Preference{
		AllowedAttributeIDs: []hierarchy.NodeID{"retired-node", "identifier"},
		AllowedPurposeIDs:   []hierarchy.NodeID{"service"},
		RetentionSeconds:    3600,
	}

	got, err := Evaluate(gpsBillingRequest(), pref, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Grant {
		t.Errorf("Evaluate() = %q, want %q", got, Grant)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	h := testHierarchy(t)
	req := gpsBillingRequest()
	pref := permissivePreference()

	first, err := Evaluate(req, pref, h)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		got, err := Evaluate(req, pref, h)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("evaluation %d returned %q, first returned %q", i, got, first)
		}
	}
}
