package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/canopy/internal/reactive"
	"github.com/roach88/canopy/internal/state"
)

// Plugin receives the store after construction. Plugins typically
// subscribe to mutations or actions (journaling, logging, metrics).
type Plugin func(*Store)

// MutationInfo describes a committed mutation to subscribers.
type MutationInfo struct {
	Type    string
	Payload any
}

// ActionInfo describes a dispatched action to subscribers. Token is the
// correlation token of the root dispatch.
type ActionInfo struct {
	Token   string
	Type    string
	Payload any
}

// Store is the composed state container: it owns the module tree, the
// flat dispatch registries derived from it, and the derived-value table,
// and exposes the commit/dispatch/subscribe/watch surface.
//
// One Store instance owns one set of registries; there is no package
// global state.
type Store struct {
	logger      *slog.Logger
	strict      bool
	tokens      TokenGenerator
	guard       *dispatchGuard
	onViolation func(*Error)
	plugins     []Plugin

	tree      *state.Tree
	container *reactive.Container

	// Flat registries, rebuilt wholesale by install on every structural
	// change. Entries are appended in tree walk order, which fixes the
	// fan-out order for duplicate names.
	mutations      map[string][]mutationEntry
	actions        map[string][]actionEntry
	wrappedGetters map[string]func() any
	namespaces     map[string]*state.Module

	// Derived-value table: one lazily recomputed value per getter,
	// owned by scope and rebuilt alongside the registries.
	getterTable map[string]*reactive.Computed
	scope       *reactive.Scope

	// generation counts install passes; the local getter view cache is
	// keyed to it so stale views cannot survive a rebuild.
	generation       uint64
	localViewCache   map[string]*localGetters
	localViewCacheMu sync.Mutex

	// mu guards the commit queue and the subscriber lists.
	mu         sync.Mutex
	pending    []commitRecord
	draining   bool
	committing bool

	subscribers []*mutationSubscriber
	actionSubs  []*actionSubscriber

	// expectedFP is the state fingerprint recorded at the end of the
	// last sanctioned write; strict mode compares against it on every
	// facade entry.
	expectedFP string
}

type commitRecord struct {
	typ     string
	payload any
}

type mutationEntry struct {
	fn state.MutationFunc
	cx *Context
}

type actionEntry struct {
	fn state.ActionFunc
	cx *Context
}

// Option configures a Store at construction.
type Option func(*Store)

// WithStrict enables the out-of-band write fence: every facade entry
// verifies that state only changed inside commit windows. The check
// fingerprints the whole tree; do not enable in production.
func WithStrict() Option {
	return func(s *Store) { s.strict = true }
}

// WithLogger sets the diagnostics logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPlugins registers plugins to apply after installation.
func WithPlugins(plugins ...Plugin) Option {
	return func(s *Store) { s.plugins = append(s.plugins, plugins...) }
}

// WithTokens sets the dispatch correlation token generator.
// Defaults to UUIDv7Generator.
func WithTokens(g TokenGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.tokens = g
		}
	}
}

// WithMaxDispatchDepth sets the nested dispatch budget.
// Defaults to DefaultMaxDispatchDepth.
func WithMaxDispatchDepth(max int) Option {
	return func(s *Store) { s.guard = newDispatchGuard(max) }
}

// WithViolationHandler sets the strict-mode violation hook. The default
// logs the violation; tests typically install a panicking handler so an
// out-of-band write fails the test.
func WithViolationHandler(fn func(*Error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.onViolation = fn
		}
	}
}

// New constructs a store from a root module definition, installs the
// module tree, builds the derived-value table, and applies plugins.
func New(root *state.Definition, opts ...Option) *Store {
	s := &Store{
		logger: slog.Default(),
		tokens: UUIDv7Generator{},
		guard:  newDispatchGuard(DefaultMaxDispatchDepth),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.onViolation == nil {
		s.onViolation = func(e *Error) { s.logger.Error("strict mode violation", "error", e) }
	}

	s.tree = state.NewTree(root, s.logger)

	rootModule := s.tree.Root()
	if rootModule.State == nil {
		rootModule.State = rootModule.Definition().InitialState()
	}
	s.container = reactive.NewContainer(rootModule.State)

	s.reinstall(false)
	s.recordFingerprint()

	for _, p := range s.plugins {
		p(s)
	}
	return s
}

// State returns the live composed state tree. Treat it as read-only:
// writes outside a commit are the one disallowed concurrent-writer
// scenario, and strict mode exists to catch them. There is deliberately
// no state setter; use ReplaceState for wholesale replacement.
func (s *Store) State() map[string]any {
	return s.container.Value()
}

// Snapshot returns a deep copy of the composed state tree, safe to hand
// to external code.
func (s *Store) Snapshot() map[string]any {
	return state.CloneState(s.State())
}

// Getters returns the global getter view.
func (s *Store) Getters() state.GetterReader {
	return rootGetters{s: s}
}

// Getter evaluates a single fully-qualified getter. Unknown names yield
// nil, matching the view semantics.
func (s *Store) Getter(name string) any {
	return rootGetters{s: s}.Value(name)
}

// Committing reports whether a commit window is currently open. State
// writes observed while this is false are programming errors.
func (s *Store) Committing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committing
}

// Commit applies every mutation handler registered under typ, in
// registration order, then notifies mutation subscribers with the
// post-commit state.
//
// A commit issued while another commit is draining (nested commit from a
// handler or subscriber, or a concurrent goroutine) enqueues behind the
// current call stack and is applied by the active drainer.
//
// Committing an unregistered type is reported and returns an
// UNKNOWN_MUTATION error; nothing is applied.
func (s *Store) Commit(typ string, payload any, opts ...state.CallOptions) error {
	// CallOptions are accepted for signature symmetry with scoped
	// contexts; Root has no effect at the top level.
	_ = opts

	s.checkFence("commit")

	s.mu.Lock()
	if _, ok := s.mutations[typ]; !ok {
		s.mu.Unlock()
		err := NewUnknownMutationError(typ)
		s.report(err)
		return err
	}

	s.pending = append(s.pending, commitRecord{typ: typ, payload: payload})
	if s.draining {
		// The active drainer will apply this record after the current
		// handler list finishes.
		s.mu.Unlock()
		return nil
	}

	s.draining = true
	s.mu.Unlock()

	// A panic escaping a handler or subscriber must not leave the
	// drainer marked active: later commits would queue forever and
	// report success. The panic propagates; the rest of the batch is
	// discarded with it.
	defer func() {
		s.mu.Lock()
		s.draining = false
		s.pending = nil
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return nil
		}
		rec := s.pending[0]
		s.pending[0] = commitRecord{}
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.apply(rec)
	}
}

// apply runs one commit record: handlers inside the committing window,
// then subscribers against the post-commit state, then watchers.
func (s *Store) apply(rec commitRecord) {
	entries := s.mutations[rec.typ]
	if len(entries) == 0 {
		// Registry was rebuilt between enqueue and drain.
		s.report(NewUnknownMutationError(rec.typ))
		return
	}

	s.withCommit(func() {
		for _, e := range entries {
			local := state.NestedState(s.State(), e.cx.path)
			e.fn(local, rec.payload)
		}
	})
	s.container.Invalidate()
	s.recordFingerprint()

	// Point-in-time snapshot: a subscriber that unsubscribes itself
	// mid-iteration cannot corrupt the iteration.
	s.mu.Lock()
	subs := make([]*mutationSubscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	current := s.State()
	info := MutationInfo{Type: rec.typ, Payload: rec.payload}
	for _, sub := range subs {
		sub.fn(info, current)
	}

	s.container.Notify()
}

// Dispatch invokes every action handler registered under typ, in
// registration order, and returns once all have settled. A single
// handler's result is returned directly; with multiple handlers the
// results are returned as a []any. The first handler error stops result
// collection and propagates to the caller after error subscribers have
// observed it.
//
// Dispatching an unregistered type is reported and returns
// (nil, UNKNOWN_ACTION) without invoking anything.
func (s *Store) Dispatch(ctx context.Context, typ string, payload any, opts ...state.CallOptions) (any, error) {
	_ = opts

	s.checkFence("dispatch")

	entries := s.actions[typ]
	if len(entries) == 0 {
		err := NewUnknownActionError(typ)
		s.report(err)
		return nil, err
	}

	if err := s.guard.enter(typ); err != nil {
		s.report(err)
		return nil, err
	}
	defer s.guard.exit()

	info := ActionInfo{Token: s.tokens.Generate(), Type: typ, Payload: payload}
	s.notifyActionBefore(info)

	results := make([]any, 0, len(entries))
	for _, e := range entries {
		scope := &actionScope{Context: e.cx, token: info.Token}
		res, err := e.fn(ctx, scope, payload)
		if err != nil {
			s.notifyActionError(info, err)
			return nil, err
		}
		results = append(results, res)
	}

	var result any
	if len(results) == 1 {
		result = results[0]
	} else {
		result = results
	}
	s.notifyActionAfter(info, result)
	return result, nil
}

// ReplaceState swaps the composed state tree wholesale and re-points
// every module at its slot in the new tree. The replacement itself is a
// sanctioned write.
func (s *Store) ReplaceState(newState map[string]any) {
	if newState == nil {
		newState = map[string]any{}
	}
	s.withCommit(func() {
		s.container.Replace(newState)
	})
	s.refreshModuleState(state.Path{}, s.tree.Root())
	s.recordFingerprint()
	s.container.Notify()
}

// refreshModuleState re-points materialized module state at the slots of
// the current composed tree after a wholesale replacement.
func (s *Store) refreshModuleState(path state.Path, module *state.Module) {
	module.State = state.NestedState(s.State(), path)
	module.ForEachChild(func(key string, child *state.Module) {
		s.refreshModuleState(path.Child(key), child)
	})
}

// withCommit opens the committing window around fn. Nested windows keep
// the flag up until the outermost closes.
func (s *Store) withCommit(fn func()) {
	s.mu.Lock()
	prev := s.committing
	s.committing = true
	s.mu.Unlock()

	// Restore on the way out even when fn panics, or the window would
	// stay open and the strict fence would never fire again.
	defer func() {
		s.mu.Lock()
		s.committing = prev
		s.mu.Unlock()
	}()

	fn()
}

// recordFingerprint captures the post-write fingerprint the strict fence
// compares against. Cheap no-op unless strict mode is on.
func (s *Store) recordFingerprint() {
	if !s.strict {
		return
	}
	fp, err := state.Fingerprint(s.State())
	if err != nil {
		s.logger.Warn("strict mode: state not fingerprintable", "error", err)
		s.expectedFP = ""
		return
	}
	s.expectedFP = fp
}

// checkFence verifies that state has not changed since the last
// sanctioned write. Violations go to the violation handler; the fence
// then resyncs so one rogue write does not cascade into every later
// call.
func (s *Store) checkFence(observedAt string) {
	if !s.strict || s.expectedFP == "" || s.Committing() {
		return
	}
	fp, err := state.Fingerprint(s.State())
	if err != nil {
		return
	}
	if fp != s.expectedFP {
		s.onViolation(NewOutOfBandWriteError(observedAt))
		s.expectedFP = fp
	}
}

// report logs a tolerated error.
func (s *Store) report(err *Error) {
	s.logger.Error("store error", "code", string(err.Code), "error", err)
}
