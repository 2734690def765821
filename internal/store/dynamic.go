package store

import (
	"fmt"

	"github.com/roach88/canopy/internal/state"
)

// RegisterOptions adjusts dynamic module registration.
type RegisterOptions struct {
	// PreserveState adopts state already present at the module's slot in
	// the composed tree (e.g. from server-side hydration or a previous
	// registration) instead of materializing fresh state.
	PreserveState bool
}

// RegisterModule attaches a module (and its declared children) at path
// during runtime. Runtime modules are eligible for unregistration, in
// contrast with statically declared ones.
//
// The registries are rebuilt wholesale afterwards; dispatch behavior for
// unrelated modules is unaffected apart from fresh handler bindings.
func (s *Store) RegisterModule(path state.Path, def *state.Definition, opts ...RegisterOptions) error {
	if path.IsRoot() {
		return fmt.Errorf("register module: cannot replace the root module, construct a new store instead")
	}

	if err := s.tree.Register(path, def, true); err != nil {
		s.report(NewPathUnresolvedError(path.String()))
		return err
	}

	if len(opts) > 0 && opts[len(opts)-1].PreserveState {
		s.adoptExistingState(path, s.tree.Get(path))
	}

	s.reinstall(false)
	s.recordFingerprint()
	s.container.Notify()
	return nil
}

// adoptExistingState pre-points a freshly registered subtree at state
// already present in the composed tree, so installation re-adopts the
// slots instead of materializing over them.
func (s *Store) adoptExistingState(path state.Path, module *state.Module) {
	if module == nil {
		return
	}
	if existing := state.NestedState(s.State(), path); existing != nil {
		module.State = existing
	}
	module.ForEachChild(func(key string, child *state.Module) {
		s.adoptExistingState(path.Child(key), child)
	})
}

// UnregisterModule detaches the runtime module at path and removes its
// slice from the composed state. Statically declared modules are left in
// place, state untouched: a deliberate silent no-op that protects
// structural integrity.
func (s *Store) UnregisterModule(path state.Path) {
	if !s.tree.Unregister(path) {
		return
	}

	if parentState := state.NestedState(s.State(), path.Parent()); parentState != nil {
		s.withCommit(func() {
			delete(parentState, path.Key())
		})
	}

	// hot=true: remaining modules keep their live slots; only handler
	// bindings and derived values need rebuilding.
	s.reinstall(true)
	s.recordFingerprint()
	s.container.Notify()
}

// HasModule reports whether a module is registered at path.
func (s *Store) HasModule(path state.Path) bool {
	if path.IsRoot() {
		return false
	}
	return s.tree.IsRegistered(path)
}

// HotUpdate replaces mutation, action, and getter definitions across the
// existing tree without resetting materialized state. Old subscribers
// fire against the new handler set on the next commit. Structurally new
// modules are not added; register them explicitly.
func (s *Store) HotUpdate(newRoot *state.Definition) {
	s.tree.Update(newRoot)
	s.reinstall(true)
	s.recordFingerprint()
	s.container.Notify()
}
