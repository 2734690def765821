// Package store implements the canopy store facade: the single
// externally-visible object that owns the composed state tree, the flat
// dispatch registries, and the commit/dispatch/subscribe/watch surface.
//
// ARCHITECTURE:
//
// Flat Registries from a Tree:
// Modules are authored hierarchically but dispatched by fully-qualified
// name in O(1). The install pass walks the module tree once and fills
// three flat maps: mutation name -> ordered handler list, action name ->
// ordered handler list, getter name -> wrapped getter. On every
// structural change (register, unregister, hot update) the registries
// are emptied and rebuilt from scratch. Full recomputation keeps fan-out
// order and namespace resolution trivially correct; there is no
// incremental patching to get wrong.
//
// Commit Queue:
// Commits are applied through a FIFO queue with a single drainer. A
// commit issued from inside a mutation handler or subscriber enqueues
// behind the current call stack and is applied after the running handler
// list completes, never interleaved mid-list. Subscribers for a given
// commit always observe the state after all of that commit's handlers.
//
// Error Posture:
// Structural problems (bad definitions, namespace collisions, duplicate
// getters, dispatch misses) are reported and tolerated; the store favors
// staying up over crashing a running application. Action-body errors are
// the exception: they propagate to the dispatch caller.
//
// Thread-safety model:
//   - Commit/Dispatch: safe from any goroutine; mutation handler lists
//     run under a single drainer and are never concurrent.
//   - Structural operations (RegisterModule, UnregisterModule,
//     HotUpdate, ReplaceState): call from one goroutine, quiesced with
//     respect to in-flight dispatches.
//   - State reads: external code must treat the returned maps as
//     read-only; strict mode exists to catch writes outside a commit.
package store
