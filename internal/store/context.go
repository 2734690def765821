package store

import (
	"context"

	"github.com/roach88/canopy/internal/state"
)

// Context is a module's bound view of the store: dispatch and commit
// rewritten relative to the module's namespace, state resolved by
// walking the module's path, getters filtered to the namespace.
//
// Module code written against a Context never hardcodes ancestor
// prefixes, so a module composes identically wherever it is mounted.
//
// State and getter views are resolved lazily on every access: the
// underlying tables are replaced wholesale on every reinstall, and a
// captured reference would go stale.
type Context struct {
	store     *Store
	namespace string
	path      state.Path
}

// Commit commits a mutation addressed relative to the module's
// namespace. CallOptions.Root addresses the type globally instead.
func (c *Context) Commit(typ string, payload any, opts ...state.CallOptions) error {
	return c.store.Commit(c.qualify(typ, opKindMutation, opts), payload)
}

// Dispatch dispatches an action addressed relative to the module's
// namespace. CallOptions.Root addresses the type globally instead.
func (c *Context) Dispatch(ctx context.Context, typ string, payload any, opts ...state.CallOptions) (any, error) {
	return c.store.Dispatch(ctx, c.qualify(typ, opKindAction, opts), payload)
}

// State resolves the module's state slice from the composed root.
func (c *Context) State() map[string]any {
	return state.NestedState(c.store.State(), c.path)
}

// Getters returns the module-local getter view.
func (c *Context) Getters() state.GetterReader {
	if c.namespace == "" {
		return rootGetters{s: c.store}
	}
	return c.store.localView(c.namespace)
}

// RootState returns the composed root state.
func (c *Context) RootState() map[string]any {
	return c.store.State()
}

// RootGetters returns the global getter view.
func (c *Context) RootGetters() state.GetterReader {
	return rootGetters{s: c.store}
}

type opKind int

const (
	opKindMutation opKind = iota
	opKindAction
)

// qualify rewrites a namespace-relative type to its fully-qualified
// form. A miss after rewriting is reported immediately; the naked
// global name in the eventual UNKNOWN error would otherwise hide which
// module got the local name wrong.
func (c *Context) qualify(typ string, kind opKind, opts []state.CallOptions) string {
	if c.namespace == "" || (len(opts) > 0 && opts[len(opts)-1].Root) {
		return typ
	}
	fq := c.namespace + typ

	var known bool
	switch kind {
	case opKindMutation:
		_, known = c.store.mutations[fq]
	case opKindAction:
		_, known = c.store.actions[fq]
	}
	if !known {
		c.store.logger.Error(
			"unknown local type in namespaced module",
			"local_type", typ,
			"global_type", fq,
			"namespace", c.namespace,
		)
	}
	return fq
}

// actionScope is the per-invocation ActionScope handed to a handler:
// the module's Context plus the dispatch correlation token.
type actionScope struct {
	*Context
	token string
}

// Token returns the correlation token of the invoking dispatch.
func (a *actionScope) Token() string {
	return a.token
}
