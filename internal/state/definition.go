package state

import (
	"context"
	"fmt"
	"slices"
)

// MutationFunc is a synchronous state-change handler. It receives the
// module's local state slice and the commit payload, and is the only
// sanctioned way to write state. Mutations must not dispatch or commit.
type MutationFunc func(state map[string]any, payload any)

// GetterScope carries everything a getter may read: the module's local
// state, the module-local getter view, and the global state and getters.
type GetterScope struct {
	State       map[string]any
	Getters     GetterReader
	RootState   map[string]any
	RootGetters GetterReader
}

// GetterFunc computes a derived value from state and other getters.
// Getters must be pure reads; the store memoizes their results.
type GetterFunc func(g GetterScope) any

// GetterReader is a read-only view over a getter table. Implementations
// forward every read to the live derived-value table; they never cache
// values themselves.
type GetterReader interface {
	// Value evaluates the named getter. Unknown names yield nil.
	Value(name string) any
	// Has reports whether the named getter exists in this view.
	Has(name string) bool
	// Keys lists the getter names visible in this view, sorted.
	Keys() []string
}

// ActionScope is the per-invocation view handed to an action handler.
// Dispatch, Commit, State, and Getters are scoped to the handler's
// module namespace; RootState and RootGetters are global.
type ActionScope interface {
	Commit(typ string, payload any, opts ...CallOptions) error
	Dispatch(ctx context.Context, typ string, payload any, opts ...CallOptions) (any, error)
	State() map[string]any
	Getters() GetterReader
	RootState() map[string]any
	RootGetters() GetterReader
	// Token returns the correlation token of the dispatch that invoked
	// this handler.
	Token() string
}

// ActionFunc is an asynchronous-capable handler. It may commit mutations
// and dispatch other actions through the scope, block on I/O via ctx,
// and returns a result or an error.
type ActionFunc func(ctx context.Context, scope ActionScope, payload any) (any, error)

// Action pairs an action handler with its registration flags.
// Root registers the action under its bare key, bypassing the module's
// own namespace.
type Action struct {
	Root    bool
	Handler ActionFunc
}

// CallOptions adjusts a single commit or dispatch call.
type CallOptions struct {
	// Root addresses the type globally instead of rewriting it with the
	// calling module's namespace. Only meaningful on scoped calls.
	Root bool
}

// Definition is the raw, author-provided configuration of one module:
// a state slice, its operations, and child definitions.
//
// State may be a materialized map[string]any or a factory
// func() map[string]any. Factories avoid shared state when the same
// Definition is registered more than once.
type Definition struct {
	Namespaced bool
	State      any
	Mutations  map[string]MutationFunc
	Actions    map[string]Action
	Getters    map[string]GetterFunc
	Modules    map[string]*Definition
}

// InitialState materializes the definition's state slice. A nil State
// yields an empty map, factories are invoked, and a nil factory result
// is normalized to an empty map.
func (d *Definition) InitialState() map[string]any {
	switch s := d.State.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return s
	case func() map[string]any:
		out := s()
		if out == nil {
			out = map[string]any{}
		}
		return out
	default:
		// Tolerated: authors get a definition error from Validate, and
		// the module runs with an empty slice rather than crashing.
		return map[string]any{}
	}
}

// DefinitionError describes a malformed entry in a module definition.
// Definition errors are diagnostics, not failures: the store reports
// them and keeps running.
type DefinitionError struct {
	Path   Path
	Kind   string // "mutation", "action", "getter", "state"
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("module %q: %s %q: %s", e.Path.String(), e.Kind, e.Key, e.Reason)
	}
	return fmt.Sprintf("module %q: %s: %s", e.Path.String(), e.Kind, e.Reason)
}

// Validate checks the definition rooted at path and returns one error
// per malformed entry. Child definitions are validated recursively.
//
// Checks: every mutation and getter must be a non-nil function, every
// action must carry a non-nil handler, and State must be nil, a map, or
// a factory.
func (d *Definition) Validate(path Path) []error {
	var errs []error

	switch d.State.(type) {
	case nil, map[string]any, func() map[string]any:
	default:
		errs = append(errs, &DefinitionError{
			Path: path, Kind: "state",
			Reason: fmt.Sprintf("must be map[string]any or func() map[string]any, got %T", d.State),
		})
	}

	for _, key := range sortedKeys(d.Mutations) {
		if d.Mutations[key] == nil {
			errs = append(errs, &DefinitionError{Path: path, Kind: "mutation", Key: key, Reason: "handler is nil"})
		}
	}
	for _, key := range sortedKeys(d.Actions) {
		if d.Actions[key].Handler == nil {
			errs = append(errs, &DefinitionError{Path: path, Kind: "action", Key: key, Reason: "handler is nil"})
		}
	}
	for _, key := range sortedKeys(d.Getters) {
		if d.Getters[key] == nil {
			errs = append(errs, &DefinitionError{Path: path, Kind: "getter", Key: key, Reason: "handler is nil"})
		}
	}

	for _, key := range sortedKeys(d.Modules) {
		child := d.Modules[key]
		if child == nil {
			errs = append(errs, &DefinitionError{Path: path, Kind: "state", Key: key, Reason: "child definition is nil"})
			continue
		}
		errs = append(errs, child.Validate(path.Child(key))...)
	}

	return errs
}

// sortedKeys returns the map's keys in sorted order. Sorted order is the
// deterministic stand-in for declaration order everywhere the tree is
// enumerated.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
