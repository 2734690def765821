package reactive

// Scope owns the derived values created within it. Disposing a scope
// stops recomputation of everything it owns; the store disposes the old
// scope and builds a fresh one whenever the getter table is rebuilt
// after a structural change.
type Scope struct {
	computeds []*Computed
	disposed  bool
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Computed creates a derived value owned by this scope.
// Creating values in a disposed scope is a programming error; the
// computed is returned pre-disposed so reads stay safe.
func (s *Scope) Computed(c *Container, fn func() any) *Computed {
	k := &Computed{container: c, fn: fn}
	if s.disposed {
		k.dispose()
		return k
	}
	s.computeds = append(s.computeds, k)
	return k
}

// Dispose freezes every derived value owned by the scope. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	for _, k := range s.computeds {
		k.dispose()
	}
}
