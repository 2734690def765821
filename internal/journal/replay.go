package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/canopy/internal/state"
	"github.com/roach88/canopy/internal/store"
)

// Divergence records a replayed entry whose post-commit state did not
// match the journaled fingerprint: the handler set behaves differently
// now than when the entry was recorded.
type Divergence struct {
	Seq  int64
	Type string
	Want string // journaled fingerprint
	Got  string // fingerprint after replaying the entry
}

// Report summarizes a replay run.
type Report struct {
	Applied     int
	Skipped     int // entries whose type no longer resolves
	Divergences []Divergence
}

// Clean reports whether every entry applied and matched its fingerprint.
func (r *Report) Clean() bool {
	return r.Skipped == 0 && len(r.Divergences) == 0
}

// Replay re-commits a session's entries in sequence order against s and
// verifies the state fingerprint after each. The store should be freshly
// constructed from the same definitions that produced the journal;
// divergences otherwise point at handler changes, not corruption.
//
// Journaled payloads round-trip through JSON, so numbers come back as
// float64. Whole floats fingerprint identically to their int originals;
// handlers that type-assert payloads should account for the round trip.
func Replay(ctx context.Context, j *Journal, s *store.Store, session string) (*Report, error) {
	entries, err := j.Entries(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	report := &Report{}
	for _, e := range entries {
		var payload any
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return nil, fmt.Errorf("replay seq %d: decode payload: %w", e.Seq, err)
		}

		if err := s.Commit(e.Type, payload); err != nil {
			j.logger.Warn("replay: entry skipped", "seq", e.Seq, "type", e.Type, "error", err)
			report.Skipped++
			continue
		}
		report.Applied++

		if e.Fingerprint == "" {
			continue
		}
		got, err := state.Fingerprint(s.State())
		if err != nil {
			return nil, fmt.Errorf("replay seq %d: fingerprint: %w", e.Seq, err)
		}
		if got != e.Fingerprint {
			report.Divergences = append(report.Divergences, Divergence{
				Seq: e.Seq, Type: e.Type, Want: e.Fingerprint, Got: got,
			})
		}
	}
	return report, nil
}
