package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canopy/internal/state"
)

func wishlistDef() *state.Definition {
	return &state.Definition{
		Namespaced: true,
		State:      func() map[string]any { return map[string]any{"wanted": 0} },
		Mutations: map[string]state.MutationFunc{
			"want": func(s map[string]any, p any) { s["wanted"] = s["wanted"].(int) + 1 },
		},
		Getters: map[string]state.GetterFunc{
			"wanted": func(g state.GetterScope) any { return g.State["wanted"] },
		},
	}
}

func TestStore_RegisterModule(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RegisterModule(state.Path{"wishlist"}, wishlistDef()))

	assert.True(t, s.HasModule(state.Path{"wishlist"}))
	assert.Equal(t, 0, s.State()["wishlist"].(map[string]any)["wanted"])

	require.NoError(t, s.Commit("wishlist/want", nil))
	assert.Equal(t, 1, s.Getter("wishlist/wanted"))

	// Pre-existing modules still dispatch after the rebuild.
	require.NoError(t, s.Commit("cart/add", 1))
	assert.Equal(t, 1, s.State()["cart"].(map[string]any)["items"])
}

func TestStore_RegisterModule_RootRejected(t *testing.T) {
	s := newTestStore(t)
	require.Error(t, s.RegisterModule(state.Path{}, wishlistDef()))
}

func TestStore_RegisterModule_MissingParent(t *testing.T) {
	s := newTestStore(t)
	err := s.RegisterModule(state.Path{"no", "parent"}, wishlistDef())
	require.Error(t, err)
	assert.False(t, s.HasModule(state.Path{"no", "parent"}))
}

func TestStore_RegisterModule_PreserveState(t *testing.T) {
	s := newTestStore(t)

	// Hydrated state already sits at the slot (e.g. from a snapshot).
	s.ReplaceState(map[string]any{
		"count":    0,
		"cart":     map[string]any{"items": 0},
		"wishlist": map[string]any{"wanted": 9},
	})

	require.NoError(t, s.RegisterModule(
		state.Path{"wishlist"}, wishlistDef(), RegisterOptions{PreserveState: true}))

	assert.Equal(t, 9, s.Getter("wishlist/wanted"), "existing slot adopted, not reset")
}

func TestStore_UnregisterModule(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RegisterModule(state.Path{"wishlist"}, wishlistDef()))
	require.NoError(t, s.Commit("wishlist/want", nil))

	s.UnregisterModule(state.Path{"wishlist"})

	assert.False(t, s.HasModule(state.Path{"wishlist"}))
	_, exists := s.State()["wishlist"]
	assert.False(t, exists, "composed state slot removed")
	assert.True(t, IsUnknownMutation(s.Commit("wishlist/want", nil)))
	assert.Nil(t, s.Getter("wishlist/wanted"))
}

func TestStore_UnregisterModule_StaticIsProtected(t *testing.T) {
	s := newTestStore(t)

	s.UnregisterModule(state.Path{"cart"})

	assert.True(t, s.HasModule(state.Path{"cart"}), "statically declared module stays registered")
	_, exists := s.State()["cart"]
	assert.True(t, exists, "state untouched")
	require.NoError(t, s.Commit("cart/add", 1))
}

func TestStore_HotUpdate_PreservesStateSwapsHandlers(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Commit("cart/add", 5))

	var subscriberTypes []string
	s.Subscribe(func(m MutationInfo, st map[string]any) {
		subscriberTypes = append(subscriberTypes, m.Type)
	})

	s.HotUpdate(&state.Definition{
		Mutations: map[string]state.MutationFunc{
			"increment": func(st map[string]any, p any) {
				st["count"] = st["count"].(int) + 100 // replaced behavior
			},
		},
		Modules: map[string]*state.Definition{
			"cart": {
				Namespaced: true,
				Mutations: map[string]state.MutationFunc{
					"add": func(st map[string]any, p any) {
						st["items"] = st["items"].(int) + 10*payloadInt(p)
					},
				},
				Getters: map[string]state.GetterFunc{
					"items": func(g state.GetterScope) any { return g.State["items"] },
				},
			},
		},
	})

	assert.Equal(t, 5, s.State()["cart"].(map[string]any)["items"],
		"hot update preserves materialized state")

	// Old subscribers fire against the new handler set on the next commit.
	require.NoError(t, s.Commit("cart/add", 1))
	assert.Equal(t, 15, s.State()["cart"].(map[string]any)["items"])
	assert.Equal(t, []string{"cart/add"}, subscriberTypes)

	require.NoError(t, s.Commit("increment", 1))
	assert.Equal(t, 100, s.State()["count"])
}

func TestStore_LocalGettersRefreshAfterStructuralChange(t *testing.T) {
	s := newTestStore(t)

	view := s.localView("cart/")
	require.Equal(t, []string{"items", "itemsDoubled"}, view.Keys())

	// Structural change rebuilds the getter table; a freshly obtained
	// view reflects it without stale caching.
	require.NoError(t, s.RegisterModule(state.Path{"wishlist"}, wishlistDef()))

	wishView := s.localView("wishlist/")
	assert.Equal(t, []string{"wanted"}, wishView.Keys())
	assert.Equal(t, 0, wishView.Value("wanted"))

	require.NoError(t, s.Commit("wishlist/want", nil))
	assert.Equal(t, 1, wishView.Value("wanted"), "view reads through to the live table")
}

func TestStore_NamespaceCollisionReported(t *testing.T) {
	// Two distinct paths resolving to the same namespace: a namespaced
	// "shared" at the root, and a namespaced "shared" under a
	// non-namespaced wrapper.
	def := &state.Definition{
		Modules: map[string]*state.Definition{
			"shared": {
				Namespaced: true,
				Mutations: map[string]state.MutationFunc{
					"hit": func(s map[string]any, p any) {},
				},
			},
			"wrapper": {
				Modules: map[string]*state.Definition{
					"shared": {
						Namespaced: true,
						Mutations: map[string]state.MutationFunc{
							"hit": func(s map[string]any, p any) {},
						},
					},
				},
			},
		},
	}
	s := New(def)

	// Collision is reported, not fatal: both handler sets are live under
	// the shared name (fan-out), and the store stays usable.
	require.NoError(t, s.Commit("shared/hit", nil))
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := newTestStore(t)

	snap := s.Snapshot()
	snap["count"] = 123

	assert.Equal(t, 0, s.State()["count"])
}
