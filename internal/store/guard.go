package store

import "sync/atomic"

// DefaultMaxDispatchDepth bounds nested dispatch depth. Actions that
// dispatch other actions are normal; an action that keeps dispatching
// itself is a bug this guard turns into an error instead of a stack
// overflow.
const DefaultMaxDispatchDepth = 100

// dispatchGuard tracks in-flight dispatch nesting.
//
// The counter is shared across goroutines, so concurrent independent
// dispatches count against the same budget. That makes the guard a
// heuristic rather than an exact per-call-stack measure. That is fine,
// since the budget exists to catch unbounded recursion, not to meter
// legitimate parallelism.
type dispatchGuard struct {
	max   int
	depth atomic.Int64
}

func newDispatchGuard(max int) *dispatchGuard {
	if max <= 0 {
		max = DefaultMaxDispatchDepth
	}
	return &dispatchGuard{max: max}
}

// enter claims a nesting level, returning an error when the budget is
// exhausted. Callers must pair it with exit.
func (g *dispatchGuard) enter(typ string) *Error {
	if int(g.depth.Add(1)) > g.max {
		g.depth.Add(-1)
		return NewDepthExceededError(typ, g.max)
	}
	return nil
}

// exit releases a nesting level.
func (g *dispatchGuard) exit() {
	g.depth.Add(-1)
}
