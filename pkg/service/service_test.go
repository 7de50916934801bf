package service

import (
	"context"
	"errors"
	"testing"

	"veridian-hq/callisto/pkg/cache"
	"veridian-hq/callisto/pkg/decision"
	"veridian-hq/callisto/pkg/hierarchy"
	"veridian-hq/callisto/pkg/store"
	"veridian-hq/callisto/pkg/tiered"
)

func testHierarchy(t *testing.T) *hierarchy.Hierarchy {
	t.Helper()
	h, err := hierarchy.New(
		[]hierarchy.Node{
			{ID: "identifier", Name: "Identifier", Left: 1, Right: 10},
			{ID: "gps", Name: "GPS Location", Left: 2, Right: 3},
		},
		[]hierarchy.Node{
			{ID: "service", Name: "Service Provision", Left: 1, Right: 10},
			{ID: "billing", Name: "Billing", Left: 2, Right: 3},
		},
	)
	if err != nil {
		t.Fatalf("hierarchy.New() failed: %v", err)
	}
	return h
}

func newTestService(t *testing.T) (*Service, *cache.DecisionCache, *cache.DecisionCache) {
	t.Helper()

	registry := hierarchy.NewRegistry()
	if _, err := registry.Replace(testHierarchy(t)); err != nil {
		t.Fatalf("registry.Replace() failed: %v", err)
	}

	local := cache.New(cache.Config{Tier: "local"})
	authoritative := cache.New(cache.Config{Tier: "authoritative"})

	evaluator, err := tiered.New(tiered.Config{
		Local:         local,
		Authoritative: authoritative,
		Registry:      registry,
	})
	if err != nil {
		t.Fatalf("tiered.New() failed: %v", err)
	}

	svc, err := New(Config{
		Store:     store.NewMemoryStore(),
		Registry:  registry,
		Evaluator: evaluator,
		Caches:    []*cache.DecisionCache{local, authoritative},
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc, local, authoritative
}

func seedParties(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	if err := svc.SaveSubject(ctx, &store.Subject{
		ID:   "alice",
		Name: "Alice",
		Preference: decision.Preference{
			AllowedAttributeIDs: []hierarchy.NodeID{"identifier"},
			AllowedPurposeIDs:   []hierarchy.NodeID{"service"},
			RetentionSeconds:    3600,
		},
	}); err != nil {
		t.Fatalf("SaveSubject() failed: %v", err)
	}

	if err := svc.SaveRequester(ctx, &store.Requester{
		ID:   "billing-svc",
		Name: "Billing Service",
		Request: decision.AccessRequest{
			AttributeIDs:     []hierarchy.NodeID{"gps"},
			PurposeIDs:       []hierarchy.NodeID{"billing"},
			RetentionSeconds: 600,
		},
	}); err != nil {
		t.Fatalf("SaveRequester() failed: %v", err)
	}
}

func TestServiceEvaluate(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedParties(t, svc)

	out, err := svc.Evaluate(context.Background(), "alice", "billing-svc")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if out.Decision != decision.Grant {
		t.Errorf("Decision = %q, want grant", out.Decision)
	}
}

func TestServiceEvaluateUnknownParties(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedParties(t, svc)
	ctx := context.Background()

	if _, err := svc.Evaluate(ctx, "ghost", "billing-svc"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Evaluate(unknown subject) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Evaluate(ctx, "alice", "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Evaluate(unknown requester) error = %v, want ErrNotFound", err)
	}
}

func TestServiceUpdatePreferenceInvalidatesAllTiers(t *testing.T) {
	svc, local, authoritative := newTestService(t)
	seedParties(t, svc)
	ctx := context.Background()

	if _, err := svc.Evaluate(ctx, "alice", "billing-svc"); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if local.Size() == 0 || authoritative.Size() == 0 {
		t.Fatalf("expected cached entries in both tiers, got %d/%d", local.Size(), authoritative.Size())
	}

	// Flip the preference to deny GPS.
	if err := svc.UpdatePreference(ctx, "alice", decision.Preference{
		AllowedAttributeIDs: []hierarchy.NodeID{"identifier"},
		DeniedAttributeIDs:  []hierarchy.NodeID{"gps"},
		AllowedPurposeIDs:   []hierarchy.NodeID{"service"},
		RetentionSeconds:    3600,
	}); err != nil {
		t.Fatalf("UpdatePreference() error = %v", err)
	}

	if local.Size() != 0 || authoritative.Size() != 0 {
		t.Errorf("update should purge alice's entries from every tier, got %d/%d", local.Size(), authoritative.Size())
	}

	out, err := svc.Evaluate(ctx, "alice", "billing-svc")
	if err != nil {
		t.Fatalf("Evaluate() after update error = %v", err)
	}
	if out.Decision != decision.Deny {
		t.Errorf("Decision = %q, want deny under the new preference", out.Decision)
	}
	if out.CacheHit {
		t.Error("evaluation after invalidation must not be a cache hit")
	}
}

func TestServiceUpdatePreferenceUnknownSubject(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.UpdatePreference(context.Background(), "ghost", decision.Preference{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdatePreference(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestServiceReplacePolicy(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedParties(t, svc)
	ctx := context.Background()

	_, before, err := svc.GetPolicy()
	if err != nil {
		t.Fatalf("GetPolicy() error = %v", err)
	}

	if _, err := svc.Evaluate(ctx, "alice", "billing-svc"); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	changed, err := hierarchy.New(
		[]hierarchy.Node{
			{ID: "identifier", Name: "Identifier", Left: 1, Right: 10},
			{ID: "gps", Name: "GPS Location", Left: 2, Right: 3},
			{ID: "email", Name: "Email", Left: 4, Right: 5},
		},
		[]hierarchy.Node{
			{ID: "service", Name: "Service Provision", Left: 1, Right: 10},
			{ID: "billing", Name: "Billing", Left: 2, Right: 3},
		},
	)
	if err != nil {
		t.Fatalf("hierarchy.New() failed: %v", err)
	}
	version, err := svc.ReplacePolicy(changed)
	if err != nil {
		t.Fatalf("ReplacePolicy() error = %v", err)
	}
	if version == before {
		t.Error("new taxonomy should produce a new version token")
	}

	out, err := svc.Evaluate(ctx, "alice", "billing-svc")
	if err != nil {
		t.Fatalf("Evaluate() after replace error = %v", err)
	}
	if out.CacheHit {
		t.Error("entries cached under the old version must not be served")
	}
	if out.PolicyVersion != version {
		t.Errorf("PolicyVersion = %q, want %q", out.PolicyVersion, version)
	}
}

func TestServiceDeleteSubjectInvalidates(t *testing.T) {
	svc, local, _ := newTestService(t)
	seedParties(t, svc)
	ctx := context.Background()

	if _, err := svc.Evaluate(ctx, "alice", "billing-svc"); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if err := svc.DeleteSubject(ctx, "alice"); err != nil {
		t.Fatalf("DeleteSubject() error = %v", err)
	}
	if local.Size() != 0 {
		t.Errorf("deleting a subject should purge their cached decisions, size = %d", local.Size())
	}
	if _, err := svc.Evaluate(ctx, "alice", "billing-svc"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Evaluate() after delete error = %v, want ErrNotFound", err)
	}
}

func TestServiceSweep(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedParties(t, svc)

	if _, err := svc.Evaluate(context.Background(), "alice", "billing-svc"); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	// Nothing has expired yet.
	if removed := svc.Sweep(); removed != 0 {
		t.Errorf("Sweep() = %d, want 0 with fresh entries", removed)
	}
}
