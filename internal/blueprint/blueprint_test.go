package blueprint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canopy/internal/state"
)

// shopShape is the canonical test blueprint: a root counter plus a
// namespaced cart and a non-namespaced audit sibling.
func shopShape() *ModuleShape {
	return &ModuleShape{
		State:     map[string]any{"count": 0},
		Mutations: []string{"increment"},
		Getters:   []string{"count"},
		Modules: map[string]*ModuleShape{
			"cart": {
				Namespaced: true,
				State:      map[string]any{"items": 0},
				Mutations:  []string{"add"},
				Actions:    []string{"addAsync"},
				Getters:    []string{"items"},
			},
			"audit": {
				State:     map[string]any{"events": 0},
				Mutations: []string{"record"},
			},
		},
	}
}

func TestBuildRegistry_FlattensNamespaces(t *testing.T) {
	reg := BuildRegistry(&Blueprint{Name: "shop", Root: shopShape()})

	assert.Equal(t, []string{"cart/add", "increment", "record"}, reg.Mutations)
	assert.Equal(t, []string{"cart/addAsync"}, reg.Actions)
	assert.Equal(t, []string{"cart/items", "count"}, reg.Getters)
}

func TestBuildRegistry_EmptyBlueprint(t *testing.T) {
	reg := BuildRegistry(nil)
	assert.Empty(t, reg.Mutations)
	assert.Empty(t, reg.Actions)
	assert.Empty(t, reg.Getters)
}

func TestLint_CleanShape(t *testing.T) {
	issues := Lint(&Blueprint{Name: "shop", Root: shopShape()})
	assert.Empty(t, issues)
}

func TestLint_DuplicateGetterAcrossModules(t *testing.T) {
	// audit is not namespaced, so its "count" getter lands on the root
	// namespace and collides with the root's own.
	shape := shopShape()
	shape.Modules["audit"].Getters = []string{"count"}

	issues := Lint(&Blueprint{Name: "shop", Root: shape})
	require.Len(t, issues, 1)
	assert.Equal(t, CodeDuplicateGetter, issues[0].Code)
	assert.Equal(t, "audit", issues[0].Path)
}

func TestLint_NamespacedGetterDoesNotCollide(t *testing.T) {
	shape := shopShape()
	shape.Modules["cart"].Getters = append(shape.Modules["cart"].Getters, "count")

	issues := Lint(&Blueprint{Name: "shop", Root: shape})
	assert.Empty(t, issues, "cart/count and count are distinct")
}

func TestLint_StructuralDefects(t *testing.T) {
	shape := &ModuleShape{
		State:     map[string]any{"cart": nil},
		Mutations: []string{"ping", "ping", ""},
		Modules: map[string]*ModuleShape{
			"cart":    {},
			"bad/key": {},
		},
	}

	issues := Lint(&Blueprint{Name: "broken", Root: shape})

	codes := map[string]int{}
	for _, i := range issues {
		codes[i.Code]++
	}
	assert.Equal(t, 1, codes[CodeEmptyName], "empty mutation name")
	assert.Equal(t, 1, codes[CodeDuplicateEntry], "ping listed twice")
	assert.Equal(t, 1, codes[CodeShadowedStateKey], "cart module shadows cart state key")
	assert.Equal(t, 1, codes[CodeNamespaceSlash], "bad/key carries the separator")
}

func TestLint_NilRoot(t *testing.T) {
	issues := Lint(&Blueprint{Name: "empty"})
	require.Len(t, issues, 1)
	assert.Equal(t, CodeEmptyName, issues[0].Code)
}

// shopDef mirrors shopShape as a live definition.
func shopDef() *state.Definition {
	noop := func(s map[string]any, p any) {}
	return &state.Definition{
		State:     func() map[string]any { return map[string]any{"count": 0} },
		Mutations: map[string]state.MutationFunc{"increment": noop},
		Getters: map[string]state.GetterFunc{
			"count": func(g state.GetterScope) any { return g.State["count"] },
		},
		Modules: map[string]*state.Definition{
			"cart": {
				Namespaced: true,
				State:      func() map[string]any { return map[string]any{"items": 0} },
				Mutations:  map[string]state.MutationFunc{"add": noop},
				Actions: map[string]state.Action{
					"addAsync": {Handler: func(ctx context.Context, scope state.ActionScope, p any) (any, error) {
						return nil, nil
					}},
				},
				Getters: map[string]state.GetterFunc{
					"items": func(g state.GetterScope) any { return g.State["items"] },
				},
			},
			"audit": {
				State:     func() map[string]any { return map[string]any{"events": 0} },
				Mutations: map[string]state.MutationFunc{"record": noop},
			},
		},
	}
}

func TestConform_MatchingShape(t *testing.T) {
	issues := Conform(&Blueprint{Name: "shop", Root: shopShape()}, shopDef())
	assert.Empty(t, issues)
}

func TestConform_ReportsBothDirections(t *testing.T) {
	shape := shopShape()
	shape.Modules["cart"].Mutations = append(shape.Modules["cart"].Mutations, "remove")
	def := shopDef()
	def.Getters["doubled"] = func(g state.GetterScope) any { return 0 }

	issues := Conform(&Blueprint{Name: "shop", Root: shape}, def)
	require.Len(t, issues, 2)

	byCode := map[string]Issue{}
	for _, i := range issues {
		byCode[i.Code] = i
	}
	assert.Contains(t, byCode[CodeMissingHandler].Message, `"remove"`)
	assert.Equal(t, "cart", byCode[CodeMissingHandler].Path)
	assert.Contains(t, byCode[CodeUndeclaredHandler].Message, `"doubled"`)
}

func TestConform_ModuleMismatches(t *testing.T) {
	shape := shopShape()
	shape.Modules["wishlist"] = &ModuleShape{Namespaced: true}
	shape.Modules["audit"].Namespaced = true
	def := shopDef()
	def.Modules["session"] = &state.Definition{}

	issues := Conform(&Blueprint{Name: "shop", Root: shape}, def)

	codes := map[string]int{}
	for _, i := range issues {
		codes[i.Code]++
	}
	assert.Equal(t, 1, codes[CodeMissingModule], "wishlist declared but absent")
	assert.Equal(t, 1, codes[CodeNamespacedMismatch], "audit flag disagrees")
	assert.Equal(t, 1, codes[CodeUndeclaredModule], "session present but undeclared")
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	doc := `
state:
  count: 0
mutations: [increment]
getters: [count]
modules:
  cart:
    namespaced: true
    mutations: [add]
    getters: [items]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	bp, err := LoadYAML(path)
	require.NoError(t, err)

	assert.Equal(t, "shop", bp.Name)
	assert.Equal(t, []string{"increment"}, bp.Root.Mutations)
	require.Contains(t, bp.Root.Modules, "cart")
	assert.True(t, bp.Root.Modules["cart"].Namespaced)

	reg := BuildRegistry(bp)
	assert.Equal(t, []string{"cart/add", "increment"}, reg.Mutations)
}

func TestLoadYAML_MissingFile(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoad_CUEDirectory(t *testing.T) {
	dir := t.TempDir()
	doc := `
store: shop: {
	state: count: 0
	mutations: ["increment"]
	getters: ["count"]
	modules: cart: {
		namespaced: true
		mutations: ["add"]
	}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shop.cue"), []byte(doc), 0o644))

	result, errs := Load(dir, LoadModeFailFast)
	require.Empty(t, errs)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.FileCount)
	require.Len(t, result.Blueprints, 1)

	bp := result.Blueprints[0]
	assert.Equal(t, "shop", bp.Name)
	assert.True(t, bp.Root.Modules["cart"].Namespaced)

	reg := BuildRegistry(bp)
	assert.Equal(t, []string{"cart/add", "increment"}, reg.Mutations)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, errs := Load(filepath.Join(t.TempDir(), "absent"), LoadModeFailFast)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoad_NoCUEFiles(t *testing.T) {
	_, errs := Load(t.TempDir(), LoadModeFailFast)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}
