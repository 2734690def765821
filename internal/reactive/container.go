package reactive

import "sync"

// Container wraps the composed state value and makes changes observable.
//
// Writers (the store's commit path) mutate the held value in place, then
// call Invalidate to advance the version and Notify to run watchers.
// Readers use Value for the live value and Version to decide whether a
// cached derivation is stale.
//
// Thread-safety: the watcher list and version counter are guarded; the
// held value itself is owned by the store's single-writer commit
// discipline and is not locked here.
type Container struct {
	mu       sync.Mutex
	value    map[string]any
	version  uint64
	watchers []*Watcher
}

// NewContainer wraps an initial value. The version starts at 1 so a
// zero-valued "never computed" marker is always stale.
func NewContainer(value map[string]any) *Container {
	return &Container{value: value, version: 1}
}

// Value returns the held value.
func (c *Container) Value() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Replace swaps the held value wholesale and advances the version.
// Watchers are not notified here; callers decide when to Notify.
func (c *Container) Replace(value map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.version++
}

// Version returns the current change counter.
func (c *Container) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Invalidate advances the version, marking every derived value stale.
func (c *Container) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
}

// Watch registers a watcher and returns its remove function. The
// watcher's baseline is evaluated immediately so the first Notify only
// fires on an actual change.
func (c *Container) Watch(w *Watcher) func() {
	w.prime()

	c.mu.Lock()
	c.watchers = append(c.watchers, w)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, existing := range c.watchers {
			if existing == w {
				c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
				break
			}
		}
	}
}

// Notify runs every watcher against the current value. The watcher list
// is snapshotted first so a watcher that removes itself (or adds
// another) mid-iteration cannot corrupt the loop.
func (c *Container) Notify() {
	c.mu.Lock()
	snapshot := make([]*Watcher, len(c.watchers))
	copy(snapshot, c.watchers)
	c.mu.Unlock()

	for _, w := range snapshot {
		w.check()
	}
}
