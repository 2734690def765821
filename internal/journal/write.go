package journal

import (
	"context"
	"fmt"

	"github.com/roach88/canopy/internal/state"
)

// Append records one committed mutation under the journal's session and
// returns its sequence number. The payload is serialized to canonical
// JSON so replays and diffs are byte-stable.
//
// Payloads the canonical encoder rejects (non-data values) fail the
// append; the plugin logs and drops those rather than writing a row that
// could never replay.
func (j *Journal) Append(ctx context.Context, typ string, payload any, fingerprint string) (int64, error) {
	payloadJSON, err := state.MarshalCanonical(payload)
	if err != nil {
		return 0, fmt.Errorf("append %q: encode payload: %w", typ, err)
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO mutations (session, type, payload, fingerprint)
		VALUES (?, ?, ?, ?)
	`, j.session, typ, string(payloadJSON), fingerprint)
	if err != nil {
		return 0, fmt.Errorf("append %q: %w", typ, err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append %q: seq: %w", typ, err)
	}
	return seq, nil
}
