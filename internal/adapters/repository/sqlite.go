package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

const timeFormat = time.RFC3339Nano

// schema is applied on open. Uniqueness of name backs idempotent seeding;
// the delta CHECK mirrors the service-side validation. Events are removed
// together with their person's score reset.
const schema = `
CREATE TABLE IF NOT EXISTS people (
	id    INTEGER PRIMARY KEY,
	name  TEXT NOT NULL UNIQUE,
	score INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	person_id  INTEGER NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	delta      INTEGER NOT NULL CHECK (delta IN (-1, 1)),
	story      TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_person_created
	ON events(person_id, created_at DESC);
`

// SQLiteStore is the durable Store engine. Writes run under immediate
// transactions so concurrent appenders serialize inside the database and no
// increment is ever lost.
type SQLiteStore struct {
	db *sql.DB

	// tsMu guards lastTS so timestamps are non-decreasing per store instance
	// even if the wall clock steps backwards.
	tsMu   sync.Mutex
	lastTS time.Time
	now    func() time.Time
}

// OpenSQLite opens (creating if needed) the ledger database at path.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cfg := newSettings(opts...)

	dsn := "file:" + filepath.Clean(path) +
		"?_txlock=immediate" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, now: cfg.now}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// nextTimestamp returns a wall-clock timestamp that never goes backwards
// relative to earlier events written through this instance.
func (s *SQLiteStore) nextTimestamp() time.Time {
	s.tsMu.Lock()
	defer s.tsMu.Unlock()
	ts := s.now().UTC()
	if ts.Before(s.lastTS) {
		ts = s.lastTS
	}
	s.lastTS = ts
	return ts
}

func (s *SQLiteStore) AddEvent(ctx context.Context, name string, delta model.Delta, story string) (model.EventResult, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOpDuration("add_event", time.Since(start).Seconds()) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.EventResult{}, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		personID int64
		newScore int64
	)
	err = tx.QueryRowContext(ctx,
		`UPDATE people SET score = score + ? WHERE name = ? RETURNING id, score`,
		int64(delta), name,
	).Scan(&personID, &newScore)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EventResult{}, ErrNotFound
	}
	if err != nil {
		return model.EventResult{}, fmt.Errorf("increment score: %w", err)
	}

	eventID := uuid.NewString()
	ts := s.nextTimestamp()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, person_id, delta, story, created_at) VALUES (?, ?, ?, ?, ?)`,
		eventID, personID, int64(delta), story, ts.Format(timeFormat),
	); err != nil {
		return model.EventResult{}, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.EventResult{}, fmt.Errorf("commit append: %w", err)
	}
	return model.EventResult{EventID: eventID, NewScore: newScore}, nil
}

func (s *SQLiteStore) ResetPerson(ctx context.Context, name string) error {
	start := time.Now()
	defer func() { metrics.RecordStoreOpDuration("reset_person", time.Since(start).Seconds()) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var personID int64
	err = tx.QueryRowContext(ctx,
		`UPDATE people SET score = 0 WHERE name = ? RETURNING id`, name,
	).Scan(&personID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("zero score: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE person_id = ?`, personID); err != nil {
		return fmt.Errorf("purge events: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ResetAll(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.RecordStoreOpDuration("reset_all", time.Since(start).Seconds()) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("purge events: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE people SET score = 0`); err != nil {
		return fmt.Errorf("zero scores: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListScores(ctx context.Context) ([]model.PersonScore, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, score FROM people ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.PersonScore
	for rows.Next() {
		var ps model.PersonScore
		if err := rows.Scan(&ps.Name, &ps.Score); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) GetPerson(ctx context.Context, name string) (model.Person, error) {
	var p model.Person
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, score FROM people WHERE name = ?`, name,
	).Scan(&p.ID, &p.Name, &p.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Person{}, ErrNotFound
	}
	if err != nil {
		return model.Person{}, fmt.Errorf("query person: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context, personID int64, limit int) ([]model.Event, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, delta, story, created_at
		 FROM events WHERE person_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		personID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var (
			e     model.Event
			delta int64
			ts    string
		)
		if err := rows.Scan(&e.ID, &e.PersonID, &delta, &e.Story, &ts); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.Delta = model.Delta(delta)
		e.CreatedAt, err = time.Parse(timeFormat, ts)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) SeedMissing(ctx context.Context, roster []string) error {
	for _, name := range roster {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO people (name, score) VALUES (?, 0) ON CONFLICT(name) DO NOTHING`,
			name,
		); err != nil {
			return fmt.Errorf("seed %q: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) CountPeople(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count people: %w", err)
	}
	return n, nil
}

// Ping fetches at most one row from people, mirroring the liveness probe's
// contract of a cheap read. An empty table is still a healthy store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM people LIMIT 1`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

var _ Store = (*SQLiteStore)(nil)
