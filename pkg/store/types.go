package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veridian-hq/callisto/pkg/decision"
)

// Common sentinel errors
var (
	// ErrNotFound indicates the referenced subject or requester does not
	// exist.
	ErrNotFound = errors.New("not found")
)

// NotFoundError carries which record was missing.
type NotFoundError struct {
	Kind string // "subject" or "requester"
	ID   string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Unwrap returns ErrNotFound so callers can match with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Subject is a policy subject: the person whose data is at stake, together
// with their privacy preference.
type Subject struct {
	// ID uniquely identifies the subject.
	ID string `json:"id"`

	// Name is a display name.
	Name string `json:"name"`

	// Preference is the subject's current privacy constraints. Replaced
	// wholesale on update, never mutated in place.
	Preference decision.Preference `json:"preference"`

	// UpdatedAt is when the preference was last replaced.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Requester is an application that accesses subject data, together with
// its declared access need.
type Requester struct {
	// ID uniquely identifies the requester.
	ID string `json:"id"`

	// Name is a display name.
	Name string `json:"name"`

	// Request is the requester's declared data need.
	Request decision.AccessRequest `json:"request"`

	// UpdatedAt is when the declaration was last replaced.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists subjects and requesters. Implementations must be safe
// for concurrent use.
type Store interface {
	// SaveSubject inserts or replaces a subject.
	SaveSubject(ctx context.Context, subject *Subject) error

	// GetSubject retrieves a subject by ID, or ErrNotFound.
	GetSubject(ctx context.Context, id string) (*Subject, error)

	// DeleteSubject removes a subject, or ErrNotFound.
	DeleteSubject(ctx context.Context, id string) error

	// ListSubjects returns all subjects in unspecified order.
	ListSubjects(ctx context.Context) ([]*Subject, error)

	// SaveRequester inserts or replaces a requester.
	SaveRequester(ctx context.Context, requester *Requester) error

	// GetRequester retrieves a requester by ID, or ErrNotFound.
	GetRequester(ctx context.Context, id string) (*Requester, error)

	// DeleteRequester removes a requester, or ErrNotFound.
	DeleteRequester(ctx context.Context, id string) error

	// ListRequesters returns all requesters in unspecified order.
	ListRequesters(ctx context.Context) ([]*Requester, error)

	// Close releases backend resources.
	Close() error
}
