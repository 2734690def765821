package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/canopy/internal/state"
	"github.com/roach88/canopy/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Journal is an append-only sqlite mutation log. One Journal serves one
// recording session; entries from earlier sessions remain readable.
type Journal struct {
	db      *sql.DB
	session string
	logger  *slog.Logger
}

// Option configures a Journal at open time.
type Option func(*Journal)

// WithLogger sets the diagnostics logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) {
		if l != nil {
			j.logger = l
		}
	}
}

// WithSession overrides the generated session token. Used by tests and
// by replay tooling that appends to a known session.
func WithSession(session string) Option {
	return func(j *Journal) {
		if session != "" {
			j.session = session
		}
	}
}

// Open creates or opens a journal database at the given path, applying
// pragmas and schema idempotently. A fresh UUIDv7 session token is
// generated unless WithSession overrides it.
//
// Configuration:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout
//   - single writer connection (sqlite allows one writer at a time)
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}

	j := &Journal{
		db:      db,
		session: uuid.Must(uuid.NewV7()).String(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Session returns the recording session token.
func (j *Journal) Session() string {
	return j.session
}

// Plugin returns a store plugin that appends every committed mutation to
// the journal. Append failures are logged, never propagated: a broken
// journal must not take the application down with it.
func (j *Journal) Plugin() store.Plugin {
	return func(s *store.Store) {
		s.Subscribe(func(m store.MutationInfo, st map[string]any) {
			fp, err := state.Fingerprint(st)
			if err != nil {
				j.logger.Warn("journal: state not fingerprintable", "type", m.Type, "error", err)
				fp = ""
			}
			if _, err := j.Append(context.Background(), m.Type, m.Payload, fp); err != nil {
				j.logger.Error("journal: append failed", "type", m.Type, "error", err)
			}
		})
	}
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
