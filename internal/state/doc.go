// Package state defines the module definition tree for canopy stores.
//
// A store is authored as a tree of module definitions. Each Definition
// owns a state slice, the mutations and actions that change it, getters
// derived from it, and child definitions. The Tree materializes
// definitions into Module nodes, resolves paths, and computes the
// namespace prefix that qualifies a module's operation names.
//
// ARCHITECTURE:
//
// Tree as Source of Truth:
// The Tree owns structure and lifecycle. The flat dispatch registries in
// the store package are always derived from the Tree by a full walk,
// never patched incrementally. Structural changes (register, unregister,
// hot update) mutate the Tree, then the store rebuilds everything it
// derived from it.
//
// Deterministic Iteration:
// Go maps have no declaration order, so every enumeration over
// mutations, actions, getters, and children happens in sorted key order.
// Installation order, fan-out order, and diagnostics are therefore
// stable across runs.
//
// Namespaces:
// A module's namespace is a pure function of its path and the Namespaced
// flags along it. It is recomputed on demand, never cached, so structural
// changes can never leave a stale prefix behind.
package state
