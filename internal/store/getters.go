package store

import (
	"slices"
	"strings"
)

// rootGetters is the global getter view: every fully-qualified name,
// read through to the live derived-value table on each access.
type rootGetters struct {
	s *Store
}

// Value evaluates the named getter. Unknown names yield nil.
func (r rootGetters) Value(name string) any {
	if k, ok := r.s.getterTable[name]; ok {
		return k.Value()
	}
	return nil
}

// Has reports whether the named getter exists.
func (r rootGetters) Has(name string) bool {
	_, ok := r.s.getterTable[name]
	return ok
}

// Keys lists every fully-qualified getter name, sorted.
func (r rootGetters) Keys() []string {
	keys := make([]string, 0, len(r.s.getterTable))
	for name := range r.s.getterTable {
		keys = append(keys, name)
	}
	slices.Sort(keys)
	return keys
}

// localGetters is a per-namespace filtered view: store getters whose
// name starts with the namespace, exposed under their prefix-stripped
// local names.
//
// The view holds local-to-global name mappings only. Every Value read
// goes through to the store's live table; the view never evaluates or
// caches a value itself; the authoritative memoization lives in the
// derived-value table.
type localGetters struct {
	s         *Store
	namespace string
	names     map[string]string // local name -> fully-qualified name
}

// localView returns the getter view for a namespace, building and
// caching it on first use. The cache dies with the install generation
// that created it, so a rebuilt getter table always gets fresh views.
func (s *Store) localView(namespace string) *localGetters {
	s.localViewCacheMu.Lock()
	defer s.localViewCacheMu.Unlock()

	if view, ok := s.localViewCache[namespace]; ok {
		return view
	}

	names := make(map[string]string)
	for fq := range s.getterTable {
		if strings.HasPrefix(fq, namespace) {
			names[fq[len(namespace):]] = fq
		}
	}
	view := &localGetters{s: s, namespace: namespace, names: names}
	s.localViewCache[namespace] = view
	return view
}

// Value evaluates the getter registered under the local name.
// Unknown names yield nil.
func (l *localGetters) Value(name string) any {
	fq, ok := l.names[name]
	if !ok {
		return nil
	}
	if k, ok := l.s.getterTable[fq]; ok {
		return k.Value()
	}
	return nil
}

// Has reports whether the local name exists in this view.
func (l *localGetters) Has(name string) bool {
	_, ok := l.names[name]
	return ok
}

// Keys lists the local getter names, sorted.
func (l *localGetters) Keys() []string {
	keys := make([]string, 0, len(l.names))
	for name := range l.names {
		keys = append(keys, name)
	}
	slices.Sort(keys)
	return keys
}
