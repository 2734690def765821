// Package reactive provides the observation primitives the store builds
// on: an observable container over the composed state, a lazily
// recomputed derived value, a disposable scope that owns derived values,
// and a deep watcher driven by change keys.
//
// The design is pull-based. Nothing in this package intercepts writes;
// the store bumps the container's version inside its commit window and
// notifies watchers afterwards. Derived values recompute on read when
// the version has advanced, never eagerly.
//
// Change detection is delegated to a caller-supplied key function
// (the store uses canonical state fingerprints), which keeps this
// package free of any knowledge of the state model.
package reactive
