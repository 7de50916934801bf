package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. Suitable for
// single-instance deployments that need subjects and requesters to survive
// restarts. Uses WAL mode for concurrent read performance.
type SQLiteStore struct {
	db *sql.DB
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (and if necessary initializes) a SQLite store.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS subjects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		preference TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS requesters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		request TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSubject inserts or replaces a subject.
func (s *SQLiteStore) SaveSubject(ctx context.Context, subject *Subject) error {
	if subject == nil || subject.ID == "" {
		return fmt.Errorf("subject ID cannot be empty")
	}

	preference, err := json.Marshal(subject.Preference)
	if err != nil {
		return fmt.Errorf("failed to serialize preference: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO subjects (id, name, preference, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, preference = excluded.preference, updated_at = excluded.updated_at`,
		subject.ID, subject.Name, string(preference), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save subject: %w", err)
	}
	return nil
}

// GetSubject retrieves a subject by ID.
func (s *SQLiteStore) GetSubject(ctx context.Context, id string) (*Subject, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, preference, updated_at FROM subjects WHERE id = ?`, id)

	var subject Subject
	var preference string
	var updatedAt int64
	if err := row.Scan(&subject.ID, &subject.Name, &preference, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "subject", ID: id}
		}
		return nil, fmt.Errorf("failed to load subject: %w", err)
	}

	if err := json.Unmarshal([]byte(preference), &subject.Preference); err != nil {
		return nil, fmt.Errorf("failed to deserialize preference for subject %q: %w", id, err)
	}
	subject.UpdatedAt = time.UnixMilli(updatedAt)
	return &subject, nil
}

// DeleteSubject removes a subject.
func (s *SQLiteStore) DeleteSubject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "subject", ID: id}
	}
	return nil
}

// ListSubjects returns all subjects.
func (s *SQLiteStore) ListSubjects(ctx context.Context) ([]*Subject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, preference, updated_at FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []*Subject
	for rows.Next() {
		var subject Subject
		var preference string
		var updatedAt int64
		if err := rows.Scan(&subject.ID, &subject.Name, &preference, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		if err := json.Unmarshal([]byte(preference), &subject.Preference); err != nil {
			return nil, fmt.Errorf("failed to deserialize preference for subject %q: %w", subject.ID, err)
		}
		subject.UpdatedAt = time.UnixMilli(updatedAt)
		subjects = append(subjects, &subject)
	}
	return subjects, rows.Err()
}

// SaveRequester inserts or replaces a requester.
func (s *SQLiteStore) SaveRequester(ctx context.Context, requester *Requester) error {
	if requester == nil || requester.ID == "" {
		return fmt.Errorf("requester ID cannot be empty")
	}

	request, err := json.Marshal(requester.Request)
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO requesters (id, name, request, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, request = excluded.request, updated_at = excluded.updated_at`,
		requester.ID, requester.Name, string(request), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save requester: %w", err)
	}
	return nil
}

// GetRequester retrieves a requester by ID.
func (s *SQLiteStore) GetRequester(ctx context.Context, id string) (*Requester, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, request, updated_at FROM requesters WHERE id = ?`, id)

	var requester Requester
	var request string
	var updatedAt int64
	if err := row.Scan(&requester.ID, &requester.Name, &request, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Kind: "requester", ID: id}
		}
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}

	if err := json.Unmarshal([]byte(request), &requester.Request); err != nil {
		return nil, fmt.Errorf("failed to deserialize request for requester %q: %w", id, err)
	}
	requester.UpdatedAt = time.UnixMilli(updatedAt)
	return &requester, nil
}

// DeleteRequester removes a requester.
func (s *SQLiteStore) DeleteRequester(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requesters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete requester: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "requester", ID: id}
	}
	return nil
}

// ListRequesters returns all requesters.
func (s *SQLiteStore) ListRequesters(ctx context.Context) ([]*Requester, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, request, updated_at FROM requesters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list requesters: %w", err)
	}
	defer rows.Close()

	var requesters []*Requester
	for rows.Next() {
		var requester Requester
		var request string
		var updatedAt int64
		if err := rows.Scan(&requester.ID, &requester.Name, &request, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan requester: %w", err)
		}
		if err := json.Unmarshal([]byte(request), &requester.Request); err != nil {
			return nil, fmt.Errorf("failed to deserialize request for requester %q: %w", requester.ID, err)
		}
		requester.UpdatedAt = time.UnixMilli(updatedAt)
		requesters = append(requesters, &requester)
	}
	return requesters, rows.Err()
}

// Vacuum reclaims unused database space. Invoked by the maintenance
// scheduler.
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `VACUUM`)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ensure both backends satisfy Store
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
