package store

import (
	"github.com/roach88/canopy/internal/reactive"
	"github.com/roach88/canopy/internal/state"
)

// reinstall empties every derived structure and rebuilds it from the
// module tree: namespace map, the three flat registries, scoped
// contexts, and finally the derived-value table. It runs once at
// construction and again on every structural change.
//
// hot skips state splicing: the tree shape is unchanged (hot update) or
// state removal was handled explicitly (unregister), so only handlers
// and getters need rebinding.
func (s *Store) reinstall(hot bool) {
	s.mutations = make(map[string][]mutationEntry)
	s.actions = make(map[string][]actionEntry)
	s.wrappedGetters = make(map[string]func() any)
	s.namespaces = make(map[string]*state.Module)

	s.install(state.Path{}, s.tree.Root(), hot)
	s.resetDerived()
}

// install records one module and recurses into its children:
// namespace bookkeeping, state splice, scoped context, registry entries.
func (s *Store) install(path state.Path, module *state.Module, hot bool) {
	ns := s.tree.Namespace(path)

	if module.Namespaced() {
		if existing, ok := s.namespaces[ns]; ok && existing != module {
			s.report(NewNamespaceCollisionError(ns, path.String()))
		} else {
			s.namespaces[ns] = module
		}
	}

	if !path.IsRoot() && !hot {
		s.spliceState(path, module)
	}

	cx := &Context{store: s, namespace: ns, path: path.Clone()}

	module.ForEachMutation(func(key string, h state.MutationFunc) {
		if h == nil {
			return
		}
		fq := ns + key
		s.mutations[fq] = append(s.mutations[fq], mutationEntry{fn: h, cx: cx})
	})

	module.ForEachAction(func(key string, a state.Action) {
		if a.Handler == nil {
			return
		}
		fq := ns + key
		if a.Root {
			// Root actions bypass their own namespace and register
			// under the bare key.
			fq = key
		}
		s.actions[fq] = append(s.actions[fq], actionEntry{fn: a.Handler, cx: cx})
	})

	module.ForEachGetter(func(key string, g state.GetterFunc) {
		if g == nil {
			return
		}
		fq := ns + key
		if _, dup := s.wrappedGetters[fq]; dup {
			s.report(NewDuplicateGetterError(fq, path.String()))
			return
		}
		getter := g
		s.wrappedGetters[fq] = func() any {
			return getter(state.GetterScope{
				State:       cx.State(),
				Getters:     cx.Getters(),
				RootState:   s.State(),
				RootGetters: s.Getters(),
			})
		}
	})

	module.ForEachChild(func(key string, child *state.Module) {
		s.install(path.Child(key), child, hot)
	})
}

// spliceState attaches the module's materialized state under its local
// key in the parent state object.
//
// Reinstallation is idempotent: a module whose state was already
// materialized silently re-adopts its live slot. Only a fresh module
// landing on an occupied key warns and then overwrites; last
// registration wins.
func (s *Store) spliceState(path state.Path, module *state.Module) {
	parentState := state.NestedState(s.State(), path.Parent())
	if parentState == nil {
		s.report(NewPathUnresolvedError(path.Parent().String()))
		return
	}

	key := path.Key()
	existing, exists := parentState[key]

	if module.State == nil {
		if exists {
			s.logger.Warn(
				"state field overwritten by module with the same key",
				"path", path.String(),
			)
		}
		module.State = module.Definition().InitialState()
	} else if exists {
		if m, ok := existing.(map[string]any); ok {
			module.State = m
		}
	}

	s.withCommit(func() {
		parentState[key] = module.State
	})
}

// resetDerived rebuilds the derived-value table from the wrapped getter
// registry. The previous effect scope is disposed so orphaned computeds
// freeze instead of recomputing against a table that no longer exists;
// watchers are store-owned and survive by construction.
func (s *Store) resetDerived() {
	oldScope := s.scope
	s.scope = reactive.NewScope()

	table := make(map[string]*reactive.Computed, len(s.wrappedGetters))
	for name, fn := range s.wrappedGetters {
		table[name] = s.scope.Computed(s.container, fn)
	}
	s.getterTable = table

	s.localViewCacheMu.Lock()
	s.generation++
	s.localViewCache = make(map[string]*localGetters)
	s.localViewCacheMu.Unlock()

	if oldScope != nil {
		oldScope.Dispose()
	}
	s.container.Invalidate()
}
