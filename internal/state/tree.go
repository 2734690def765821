package state

import (
	"fmt"
	"log/slog"
)

// Tree owns the rooted tree of Modules. One Tree exists per store,
// created at construction and mutated for the store's entire lifetime.
//
// INVARIANTS:
//   - Every non-root module is reachable from the root via exactly one
//     path; no two modules share a path.
//   - Get is a pure read.
//   - Namespace is recomputed from the flags along the path on every
//     call, never cached.
type Tree struct {
	root   *Module
	logger *slog.Logger
}

// NewTree materializes the root definition and its declared children.
// Statically declared modules carry runtime=false and can never be
// unregistered.
func NewTree(rootDef *Definition, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tree{logger: logger}
	if err := t.Register(Path{}, rootDef, false); err != nil {
		// Registration at the root only fails on a nil definition.
		t.logger.Error("tree construction failed", "error", err)
		t.root = NewModule(&Definition{}, false)
	}
	return t
}

// Root returns the root module.
func (t *Tree) Root() *Module {
	return t.root
}

// Get resolves a path to its module, or nil if any segment is missing.
func (t *Tree) Get(path Path) *Module {
	m := t.root
	for _, key := range path {
		if m == nil {
			return nil
		}
		m = m.Child(key)
	}
	return m
}

// Namespace computes the namespace prefix for the module at path:
// the concatenation of key+"/" for every module along the path (the node
// itself included) whose Namespaced flag is set. Non-namespaced modules
// contribute nothing.
func (t *Tree) Namespace(path Path) string {
	m := t.root
	ns := ""
	for _, key := range path {
		if m == nil {
			break
		}
		m = m.Child(key)
		if m != nil && m.Namespaced() {
			ns += key + "/"
		}
	}
	return ns
}

// Register attaches a definition at path. An empty path replaces the
// root. Otherwise the parent must already be resolved; the new module is
// attached under the last path segment and declared children are
// registered recursively under the same runtime flag.
//
// Malformed entries in the definition are reported through the logger
// and tolerated: registration proceeds best-effort.
func (t *Tree) Register(path Path, def *Definition, runtime bool) error {
	if def == nil {
		return fmt.Errorf("register %q: nil definition", path.String())
	}

	for _, err := range def.Validate(path) {
		t.logger.Error("invalid module definition", "error", err)
	}

	module := NewModule(def, runtime)
	if path.IsRoot() {
		t.root = module
	} else {
		parent := t.Get(path.Parent())
		if parent == nil {
			return fmt.Errorf("register %q: parent %q is not registered", path.String(), path.Parent().String())
		}
		parent.AddChild(path.Key(), module)
	}

	for _, key := range sortedKeys(def.Modules) {
		if def.Modules[key] == nil {
			continue
		}
		if err := t.Register(path.Child(key), def.Modules[key], runtime); err != nil {
			return err
		}
	}
	return nil
}

// Unregister detaches the module at path and reports whether anything
// was removed. A missing target is a warning. A target that was present
// at construction (runtime=false) is left in place silently: statically
// declared modules may never be unregistered.
func (t *Tree) Unregister(path Path) bool {
	if path.IsRoot() {
		t.logger.Warn("cannot unregister the root module")
		return false
	}
	parent := t.Get(path.Parent())
	if parent == nil || !parent.HasChild(path.Key()) {
		t.logger.Warn("unregister: module not registered", "path", path.String())
		return false
	}
	if !parent.Child(path.Key()).Runtime {
		return false
	}
	parent.RemoveChild(path.Key())
	return true
}

// IsRegistered reports whether a module exists at path.
func (t *Tree) IsRegistered(path Path) bool {
	if path.IsRoot() {
		return t.root != nil
	}
	parent := t.Get(path.Parent())
	return parent != nil && parent.HasChild(path.Key())
}

// Update walks the existing tree in lock-step with a new root definition,
// replacing handler and getter definitions at each matching node while
// preserving materialized state. If the new definition declares a child
// key absent from the existing tree, the walk stops there with a
// warning: hot reload never adds structurally new modules.
func (t *Tree) Update(rootDef *Definition) {
	if rootDef == nil {
		t.logger.Warn("hot update: nil definition ignored")
		return
	}
	t.update(Path{}, t.root, rootDef)
}

func (t *Tree) update(path Path, target *Module, def *Definition) {
	target.Update(def)

	for _, key := range sortedKeys(def.Modules) {
		if !target.HasChild(key) {
			t.logger.Warn(
				"hot update: new module detected, structural changes require re-registration",
				"path", path.Child(key).String(),
			)
			return
		}
		t.update(path.Child(key), target.Child(key), def.Modules[key])
	}
}
