// Package service is the application facade. It owns the wiring between
// the store, the hierarchy registry, the tiered evaluator, and the
// optional trusted provider, and exposes the operations the transport
// layer calls.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"veridian-hq/callisto/pkg/cache"
	"veridian-hq/callisto/pkg/decision"
	"veridian-hq/callisto/pkg/hierarchy"
	"veridian-hq/callisto/pkg/store"
	"veridian-hq/callisto/pkg/tiered"
)

// Config configures a Service.
type Config struct {
	// Store persists subjects and requesters. Required.
	Store store.Store

	// Registry holds the active hierarchy. Required.
	Registry *hierarchy.Registry

	// Evaluator resolves decisions through the tier chain. Required.
	Evaluator *tiered.Evaluator

	// Caches are every cache tier to invalidate on preference updates,
	// ordered local-first.
	Caches []*cache.DecisionCache

	// Trusted is the trusted provider lifecycle handle. Optional; Close
	// is forwarded on shutdown.
	Trusted tiered.TrustedEvaluationAdapter

	// Logger receives operation logs. Default: slog.Default.
	Logger *slog.Logger
}

// Service exposes the privacy decision operations.
type Service struct {
	store     store.Store
	registry  *hierarchy.Registry
	evaluator *tiered.Evaluator
	caches    []*cache.DecisionCache
	trusted   tiered.TrustedEvaluationAdapter
	logger    *slog.Logger
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("hierarchy registry is required")
	}
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		store:     cfg.Store,
		registry:  cfg.Registry,
		evaluator: cfg.Evaluator,
		caches:    cfg.Caches,
		trusted:   cfg.Trusted,
		logger:    cfg.Logger,
	}, nil
}

// Evaluate resolves whether the named requester may access the named
// subject's data. Both parties must exist in the store.
func (s *Service) Evaluate(ctx context.Context, subjectID, requesterID string) (*tiered.Outcome, error) {
	subject, err := s.store.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	requester, err := s.store.GetRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(ctx, subject.ID, &requester.Request, &subject.Preference)
}

// EvaluateDirect resolves a decision for an ad hoc request and preference
// pair without store resolution. Used by the one-shot CLI path.
func (s *Service) EvaluateDirect(ctx context.Context, req *decision.AccessRequest, pref *decision.Preference) (*tiered.Outcome, error) {
	return s.evaluator.Evaluate(ctx, "", req, pref)
}

// ReplacePolicy atomically installs a new hierarchy and returns its
// version token. Cached decisions from previous versions are left in
// place: the version is part of every fingerprint, so they can never be
// read under the new policy.
func (s *Service) ReplacePolicy(h *hierarchy.Hierarchy) (string, error) {
	version, err := s.registry.Replace(h)
	if err != nil {
		return "", err
	}
	s.logger.Info("policy replaced", "version", version)
	return version, nil
}

// GetPolicy returns the active hierarchy and its version token.
func (s *Service) GetPolicy() (*hierarchy.Hierarchy, string, error) {
	return s.registry.Current()
}

// UpdatePreference replaces a subject's preference and invalidates the
// subject's cached decisions in every tier. The invalidation completes
// before the call returns, so no evaluation started afterwards can see a
// decision derived from the old preference.
func (s *Service) UpdatePreference(ctx context.Context, subjectID string, pref decision.Preference) error {
	subject, err := s.store.GetSubject(ctx, subjectID)
	if err != nil {
		return err
	}
	subject.Preference = pref
	if err := s.store.SaveSubject(ctx, subject); err != nil {
		return err
	}

	removed := 0
	for _, tier := range s.caches {
		removed += tier.InvalidateSubject(subjectID)
	}
	s.logger.Info("preference updated",
		"subject_id", subjectID,
		"invalidated_entries", removed)
	return nil
}

// SaveSubject inserts or replaces a subject, invalidating any cached
// decisions if the subject already existed.
func (s *Service) SaveSubject(ctx context.Context, subject *store.Subject) error {
	if err := s.store.SaveSubject(ctx, subject); err != nil {
		return err
	}
	for _, tier := range s.caches {
		tier.InvalidateSubject(subject.ID)
	}
	return nil
}

// GetSubject returns a stored subject.
func (s *Service) GetSubject(ctx context.Context, id string) (*store.Subject, error) {
	return s.store.GetSubject(ctx, id)
}

// DeleteSubject removes a subject and invalidates its cached decisions.
func (s *Service) DeleteSubject(ctx context.Context, id string) error {
	if err := s.store.DeleteSubject(ctx, id); err != nil {
		return err
	}
	for _, tier := range s.caches {
		tier.InvalidateSubject(id)
	}
	return nil
}

// ListSubjects returns all stored subjects.
func (s *Service) ListSubjects(ctx context.Context) ([]*store.Subject, error) {
	return s.store.ListSubjects(ctx)
}

// SaveRequester inserts or replaces a requester.
func (s *Service) SaveRequester(ctx context.Context, requester *store.Requester) error {
	return s.store.SaveRequester(ctx, requester)
}

// GetRequester returns a stored requester.
func (s *Service) GetRequester(ctx context.Context, id string) (*store.Requester, error) {
	return s.store.GetRequester(ctx, id)
}

// DeleteRequester removes a requester.
func (s *Service) DeleteRequester(ctx context.Context, id string) error {
	return s.store.DeleteRequester(ctx, id)
}

// ListRequesters returns all stored requesters.
func (s *Service) ListRequesters(ctx context.Context) ([]*store.Requester, error) {
	return s.store.ListRequesters(ctx)
}

// Sweep removes expired entries from every cache tier and returns the
// total removed. Called by the maintenance scheduler.
func (s *Service) Sweep() int {
	removed := 0
	for _, tier := range s.caches {
		removed += tier.Sweep()
	}
	return removed
}

// Close releases the service's resources: cache sweepers, the trusted
// provider, and the store.
func (s *Service) Close() error {
	for _, tier := range s.caches {
		tier.Close()
	}
	var firstErr error
	if s.trusted != nil {
		if err := s.trusted.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
