package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store with in-memory maps. It is the default
// backend: fast, thread-safe, no persistence.
type MemoryStore struct {
	mu         sync.RWMutex
	subjects   map[string]*Subject
	requesters map[string]*Requester
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subjects:   make(map[string]*Subject),
		requesters: make(map[string]*Requester),
	}
}

// SaveSubject inserts or replaces a subject.
func (s *MemoryStore) SaveSubject(_ context.Context, subject *Subject) error {
	if subject == nil || subject.ID == "" {
		return fmt.Errorf("subject ID cannot be empty")
	}

	stored := *subject
	stored.UpdatedAt = time.Now()

	s.mu.Lock()
	s.subjects[stored.ID] = &stored
	s.mu.Unlock()
	return nil
}

// GetSubject retrieves a subject by ID.
func (s *MemoryStore) GetSubject(_ context.Context, id string) (*Subject, error) {
	s.mu.RLock()
	subject, ok := s.subjects[id]
	s.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Kind: "subject", ID: id}
	}
	copied := *subject
	return &copied, nil
}

// DeleteSubject removes a subject.
func (s *MemoryStore) DeleteSubject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subjects[id]; !ok {
		return &NotFoundError{Kind: "subject", ID: id}
	}
	delete(s.subjects, id)
	return nil
}

// ListSubjects returns all subjects.
func (s *MemoryStore) ListSubjects(_ context.Context) ([]*Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjects := make([]*Subject, 0, len(s.subjects))
	for _, subject := range s.subjects {
		copied := *subject
		subjects = append(subjects, &copied)
	}
	return subjects, nil
}

// SaveRequester inserts or replaces a requester.
func (s *MemoryStore) SaveRequester(_ context.Context, requester *Requester) error {
	if requester == nil || requester.ID == "" {
		return fmt.Errorf("requester ID cannot be empty")
	}

	stored := *requester
	stored.UpdatedAt = time.Now()

	s.mu.Lock()
	s.requesters[stored.ID] = &stored
	s.mu.Unlock()
	return nil
}

// GetRequester retrieves a requester by ID.
func (s *MemoryStore) GetRequester(_ context.Context, id string) (*Requester, error) {
	s.mu.RLock()
	requester, ok := s.requesters[id]
	s.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Kind: "requester", ID: id}
	}
	copied := *requester
	return &copied, nil
}

// DeleteRequester removes a requester.
func (s *MemoryStore) DeleteRequester(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requesters[id]; !ok {
		return &NotFoundError{Kind: "requester", ID: id}
	}
	delete(s.requesters, id)
	return nil
}

// ListRequesters returns all requesters.
func (s *MemoryStore) ListRequesters(_ context.Context) ([]*Requester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	requesters := make([]*Requester, 0, len(s.requesters))
	for _, requester := range s.requesters {
		copied := *requester
		requesters = append(requesters, &copied)
	}
	return requesters, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
