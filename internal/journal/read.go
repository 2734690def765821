package journal

import (
	"context"
	"fmt"
)

// Entry is one journaled mutation.
type Entry struct {
	Seq         int64
	Session     string
	Type        string
	Payload     []byte // canonical JSON
	Fingerprint string
	RecordedAt  string
}

// Entries returns a session's mutations in sequence order. An empty
// session selects every entry in the journal.
func (j *Journal) Entries(ctx context.Context, session string) ([]Entry, error) {
	query := `
		SELECT seq, session, type, payload, fingerprint, recorded_at
		FROM mutations
	`
	args := []any{}
	if session != "" {
		query += " WHERE session = ?"
		args = append(args, session)
	}
	query += " ORDER BY seq"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.Seq, &e.Session, &e.Type, &payload, &e.Fingerprint, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("read entries: scan: %w", err)
		}
		e.Payload = []byte(payload)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// Sessions lists every recorded session token in first-seen order.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session FROM mutations GROUP BY session ORDER BY MIN(seq)
	`)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("read sessions: scan: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	return sessions, nil
}

// Len returns the total number of journaled mutations.
func (j *Journal) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mutations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
