package reactive

// Watcher evaluates an expression on every notification and fires its
// callback when the change key differs from the previous evaluation.
//
// The key function reduces a value to a comparable string (the store
// supplies canonical fingerprints); comparing keys instead of values
// gives deep change detection without this package knowing the value
// shapes.
type Watcher struct {
	eval    func() any
	key     func(any) string
	cb      func(newVal, oldVal any)
	lastVal any
	lastKey string
	primed  bool
}

// NewWatcher builds a watcher. It is inactive until registered with a
// container via Container.Watch.
func NewWatcher(eval func() any, key func(any) string, cb func(newVal, oldVal any)) *Watcher {
	return &Watcher{eval: eval, key: key, cb: cb}
}

// prime records the baseline without firing the callback.
func (w *Watcher) prime() {
	if w.primed {
		return
	}
	w.lastVal = w.eval()
	w.lastKey = w.key(w.lastVal)
	w.primed = true
}

// Current returns the value from the most recent evaluation.
func (w *Watcher) Current() any {
	return w.lastVal
}

// check re-evaluates and fires the callback on change.
func (w *Watcher) check() {
	newVal := w.eval()
	newKey := w.key(newVal)
	if newKey == w.lastKey {
		return
	}
	oldVal := w.lastVal
	w.lastVal = newVal
	w.lastKey = newKey
	w.cb(newVal, oldVal)
}
