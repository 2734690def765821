package reactive

// Computed is a lazily recomputed derived value bound to a container.
//
// Value pulls: it recomputes only when the container version has
// advanced past the version recorded at the last computation. A disposed
// Computed is inert: it stops recomputing and serves its last cached
// value, so stale readers see a frozen snapshot instead of a panic.
type Computed struct {
	container *Container
	fn        func() any
	cached    any
	at        uint64 // container version at last compute; 0 = never
	disposed  bool
}

// Value returns the derived value, recomputing if stale.
func (k *Computed) Value() any {
	if k.disposed {
		return k.cached
	}
	if v := k.container.Version(); v != k.at {
		k.cached = k.fn()
		k.at = v
	}
	return k.cached
}

// dispose freezes the computed at its last cached value.
func (k *Computed) dispose() {
	k.disposed = true
}
