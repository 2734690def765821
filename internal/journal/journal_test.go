package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canopy/internal/state"
	"github.com/roach88/canopy/internal/store"
)

// ledgerDef builds the test tree: a root total plus a namespaced cart.
// Payloads arrive as float64 after a JSON round trip, so the handlers
// normalize numbers instead of type-asserting int.
func ledgerDef() *state.Definition {
	return &state.Definition{
		State: func() map[string]any { return map[string]any{"total": 0} },
		Mutations: map[string]state.MutationFunc{
			"credit": func(s map[string]any, p any) {
				s["total"] = asInt(s["total"]) + asInt(p)
			},
		},
		Modules: map[string]*state.Definition{
			"cart": {
				Namespaced: true,
				State:      func() map[string]any { return map[string]any{"items": 0} },
				Mutations: map[string]state.MutationFunc{
					"add": func(s map[string]any, p any) {
						s["items"] = asInt(s["items"]) + asInt(p)
					},
				},
			},
		},
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func openTestJournal(t *testing.T, opts ...Option) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_AppendAndEntries(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, WithSession("sess-a"))

	seq, err := j.Append(ctx, "credit", map[string]any{"amount": 5}, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	_, err = j.Append(ctx, "cart/add", 3, "fp-2")
	require.NoError(t, err)

	entries, err := j.Entries(ctx, "sess-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "credit", entries[0].Type)
	assert.Equal(t, "sess-a", entries[0].Session)
	assert.JSONEq(t, `{"amount":5}`, string(entries[0].Payload))
	assert.Equal(t, "fp-1", entries[0].Fingerprint)
	assert.NotEmpty(t, entries[0].RecordedAt)

	assert.Equal(t, "cart/add", entries[1].Type)
	assert.Equal(t, "3", string(entries[1].Payload))

	n, err := j.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestJournal_AppendRejectsNonDataPayload(t *testing.T) {
	j := openTestJournal(t)

	_, err := j.Append(context.Background(), "credit", func() {}, "")
	require.Error(t, err)

	n, err := j.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "no row written for an unencodable payload")
}

func TestJournal_EntriesFiltersBySession(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, WithSession("sess-a"))

	_, err := j.Append(ctx, "credit", 1, "")
	require.NoError(t, err)

	other, err := Open(filepath.Join(t.TempDir(), "other.db"), WithSession("sess-b"))
	require.NoError(t, err)
	defer other.Close()

	all, err := j.Entries(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := j.Entries(ctx, "sess-b")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournal_SessionsFirstSeenOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := Open(path, WithSession("sess-a"))
	require.NoError(t, err)
	_, err = first.Append(ctx, "credit", 1, "")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, WithSession("sess-b"))
	require.NoError(t, err)
	defer second.Close()
	_, err = second.Append(ctx, "credit", 2, "")
	require.NoError(t, err)
	_, err = second.Append(ctx, "cart/add", 1, "")
	require.NoError(t, err)

	sessions, err := second.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-a", "sess-b"}, sessions)
}

func TestJournal_PluginRecordsCommits(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, WithSession("sess-rec"))

	s := store.New(ledgerDef(), store.WithPlugins(j.Plugin()))
	require.NoError(t, s.Commit("credit", 5))
	require.NoError(t, s.Commit("cart/add", 2))

	entries, err := j.Entries(ctx, "sess-rec")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "credit", entries[0].Type)
	assert.Equal(t, "5", string(entries[0].Payload))

	want, err := state.Fingerprint(s.State())
	require.NoError(t, err)
	assert.Equal(t, want, entries[1].Fingerprint,
		"last entry carries the fingerprint of the final state")
}

func TestReplay_CleanRun(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, WithSession("sess-rec"))

	recorded := store.New(ledgerDef(), store.WithPlugins(j.Plugin()))
	require.NoError(t, recorded.Commit("credit", 5))
	require.NoError(t, recorded.Commit("cart/add", 2))
	require.NoError(t, recorded.Commit("credit", -1))

	fresh := store.New(ledgerDef())
	report, err := Replay(ctx, j, fresh, "sess-rec")
	require.NoError(t, err)

	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.Applied)
	assert.Equal(t, 4, asInt(fresh.State()["total"]))
	assert.Equal(t, 2, asInt(fresh.State()["cart"].(map[string]any)["items"]))
}

func TestReplay_SkipsUnknownTypes(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	_, err := j.Append(ctx, "credit", 5, "")
	require.NoError(t, err)
	_, err = j.Append(ctx, "retired/mutation", 1, "")
	require.NoError(t, err)

	fresh := store.New(ledgerDef())
	report, err := Replay(ctx, j, fresh, j.Session())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 1, report.Skipped)
	assert.False(t, report.Clean())
	assert.Equal(t, 5, asInt(fresh.State()["total"]))
}

func TestReplay_DetectsDivergence(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, WithSession("sess-rec"))

	recorded := store.New(ledgerDef(), store.WithPlugins(j.Plugin()))
	require.NoError(t, recorded.Commit("credit", 5))

	// Same mutation name, doubled effect: replay applies but the state
	// fingerprint no longer matches what was journaled.
	drifted := ledgerDef()
	drifted.Mutations["credit"] = func(s map[string]any, p any) {
		s["total"] = asInt(s["total"]) + 2*asInt(p)
	}

	fresh := store.New(drifted)
	report, err := Replay(ctx, j, fresh, "sess-rec")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applied)
	require.Len(t, report.Divergences, 1)
	d := report.Divergences[0]
	assert.Equal(t, "credit", d.Type)
	assert.NotEqual(t, d.Want, d.Got)
	assert.False(t, report.Clean())
}
