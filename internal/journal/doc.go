// Package journal provides an optional sqlite-backed mutation log for
// canopy stores.
//
// The store itself is strictly in-memory; the journal is out-of-band
// tooling attached as a plugin. Every committed mutation is appended as
// a row carrying its type, canonical-JSON payload, and the state
// fingerprint after application. Replay re-commits a session's entries
// in sequence order against a fresh store and verifies each fingerprint,
// which turns "did this code change alter behavior" into a diffable
// report.
//
// SQLite runs in WAL mode with a single writer connection. Writes carry
// no identity columns beyond the autoincrement sequence: the journal is
// an append-only log, ordered by seq, never updated in place.
package journal
