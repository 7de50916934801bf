package hierarchy

import (
	"errors"
	"testing"
)

// testNodes builds the taxonomy used across tests:
//
//	identifier [1,10]
//	  gps [2,3]
//	  email [4,5]
//	health [11,20]
//	  heart-rate [12,13]
func testNodes() []Node {
	return []Node{
		{ID: "identifier", Name: "Identifier", Left: 1, Right: 10},
		{ID: "gps", Name: "GPS Location", Left: 2, Right: 3},
		{ID: "email", Name: "Email", Left: 4, Right: 5},
		{ID: "health", Name: "Health", Left: 11, Right: 20},
		{ID: "heart-rate", Name: "Heart Rate", Left: 12, Right: 13},
	}
}

func testPurposes() []Node {
	return []Node{
		{ID: "service", Name: "Service Provision", Left: 1, Right: 10},
		{ID: "billing", Name: "Billing", Left: 2, Right: 3},
		{ID: "marketing", Name: "Marketing", Left: 11, Right: 14},
		{ID: "ads", Name: "Targeted Ads", Left: 12, Right: 13},
	}
}

func mustHierarchy(t *testing.T) *Hierarchy {
	t.Helper()
	h, err := New(testNodes(), testPurposes())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return h
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name       string
		attributes []Node
		wantErr    bool
	}{
		{
			name:       "valid nested forest",
			attributes: testNodes(),
			wantErr:    false,
		},
		{
			name:       "empty set is valid",
			attributes: nil,
			wantErr:    false,
		},
		{
			name: "left equals right",
			attributes: []Node{
				{ID: "a", Left: 3, Right: 3},
			},
			wantErr: true,
		},
		{
			name: "left greater than right",
			attributes: []Node{
				{ID: "a", Left: 7, Right: 2},
			},
			wantErr: true,
		},
		{
			name: "partial interval overlap",
			attributes: []Node{
				{ID: "a", Left: 1, Right: 10},
				{ID: "b", Left: 5, Right: 15},
			},
			wantErr: true,
		},
		{
			name: "duplicate interval",
			attributes: []Node{
				{ID: "a", Left: 1, Right: 10},
				{ID: "b", Left: 1, Right: 10},
			},
			wantErr: true,
		},
		{
			name: "duplicate node ID",
			attributes: []Node{
				{ID: "a", Left: 1, Right: 2},
				{ID: "a", Left: 3, Right: 4},
			},
			wantErr: true,
		},
		{
			name: "empty node ID",
			attributes: []Node{
				{ID: "", Left: 1, Right: 2},
			},
			wantErr: true,
		},
		{
			name: "disjoint siblings",
			attributes: []Node{
				{ID: "a", Left: 1, Right: 4},
				{ID: "b", Left: 5, Right: 8},
			},
			wantErr: false,
		},
		{
			name: "deeply nested chain",
			attributes: []Node{
				{ID: "a", Left: 1, Right: 10},
				{ID: "b", Left: 2, Right: 9},
				{ID: "c", Left: 3, Right: 8},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.attributes, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var invalidErr *InvalidPolicyError
				if !errors.As(err, &invalidErr) {
					t.Fatalf("expected *InvalidPolicyError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestIsAncestorOrSelf(t *testing.T) {
	h := mustHierarchy(t)
	attrs := h.Attributes()

	tests := []struct {
		name string
		a    NodeID
		b    NodeID
		want bool
	}{
		{name: "parent of child", a: "identifier", b: "gps", want: true},
		{name: "parent of other child", a: "identifier", b: "email", want: true},
		{name: "child of parent", a: "gps", b: "identifier", want: false},
		{name: "disjoint roots", a: "identifier", b: "health", want: false},
		{name: "siblings", a: "gps", b: "email", want: false},
		{name: "other tree", a: "identifier", b: "heart-rate", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := attrs.IsAncestorOrSelf(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsAncestorOrSelf(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// Every node is an ancestor-or-self of itself.
func TestIsAncestorOrSelf_Reflexive(t *testing.T) {
	h := mustHierarchy(t)
	for _, n := range h.Attributes().Nodes() {
		ok, err := h.Attributes().IsAncestorOrSelf(n.ID, n.ID)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", n.ID, err)
		}
		if !ok {
			t.Errorf("IsAncestorOrSelf(%q, %q) = false, want true", n.ID, n.ID)
		}
	}
}

// Ancestor-or-self is transitive across the whole node set.
func TestIsAncestorOrSelf_Transitive(t *testing.T) {
	h := mustHierarchy(t)
	attrs := h.Attributes()
	nodes := attrs.Nodes()

	for _, a := range nodes {
		for _, b := range nodes {
			for _, c := range nodes {
				ab, _ := attrs.IsAncestorOrSelf(a.ID, b.ID)
				bc, _ := attrs.IsAncestorOrSelf(b.ID, c.ID)
				if !ab || !bc {
					continue
				}
				ac, _ := attrs.IsAncestorOrSelf(a.ID, c.ID)
				if !ac {
					t.Errorf("transitivity violated: %q > %q > %q but %q is not ancestor of %q",
						a.ID, b.ID, c.ID, a.ID, c.ID)
				}
			}
		}
	}
}

func TestIsAncestorOrSelf_UnknownNode(t *testing.T) {
	h := mustHierarchy(t)
	_, err := h.Attributes().IsAncestorOrSelf("identifier", "nonexistent")
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

func TestAnyAncestorOrSelfInSet(t *testing.T) {
	h := mustHierarchy(t)
	attrs := h.Attributes()

	tests := []struct {
		name      string
		seed      []NodeID
		candidate NodeID
		want      bool
		wantErr   bool
	}{
		{
			name:      "ancestor in seed",
			seed:      []NodeID{"identifier"},
			candidate: "gps",
			want:      true,
		},
		{
			name:      "self in seed",
			seed:      []NodeID{"gps"},
			candidate: "gps",
			want:      true,
		},
		{
			name:      "no ancestor in seed",
			seed:      []NodeID{"health"},
			candidate: "gps",
			want:      false,
		},
		{
			name:      "empty seed",
			seed:      nil,
			candidate: "gps",
			want:      false,
		},
		{
			name:      "unknown seed members are skipped",
			seed:      []NodeID{"retired-node", "identifier"},
			candidate: "gps",
			want:      true,
		},
		{
			name:      "only unknown seed members",
			seed:      []NodeID{"retired-node"},
			candidate: "gps",
			want:      false,
		},
		{
			name:      "unknown candidate is an error",
			seed:      []NodeID{"identifier"},
			candidate: "nonexistent",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := attrs.AnyAncestorOrSelfInSet(tt.seed, tt.candidate)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("AnyAncestorOrSelfInSet(%v, %q) = %v, want %v", tt.seed, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestRoots(t *testing.T) {
	h := mustHierarchy(t)
	roots := h.Attributes().Roots()
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "identifier" || roots[1].ID != "health" {
		t.Errorf("unexpected roots: %v", roots)
	}
}

func TestDimensionsAreIndependent(t *testing.T) {
	h := mustHierarchy(t)

	// "service" exists only in the purpose set.
	if _, ok := h.Attributes().Get("service"); ok {
		t.Error("purpose node resolved in attribute set")
	}
	if _, ok := h.Purposes().Get("identifier"); ok {
		t.Error("attribute node resolved in purpose set")
	}
}
