package state

import "strings"

// Path identifies a module's position in the tree as an ordered sequence
// of keys. The empty Path denotes the root module.
type Path []string

// ParsePath splits a "/"-separated string into a Path.
// Empty input and "/" both yield the root path. Empty segments produced
// by doubled or trailing separators are dropped.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	parts := strings.Split(s, "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			p = append(p, part)
		}
	}
	return p
}

// String joins the path keys with "/". The root path renders as "".
func (p Path) String() string {
	return strings.Join(p, "/")
}

// IsRoot reports whether the path denotes the root module.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the path without its last key.
// The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1]
}

// Key returns the last key of the path, or "" for the root.
func (p Path) Key() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new Path extended by key. The receiver is not aliased:
// the result is always a fresh slice, so concurrent walks cannot clobber
// each other through append.
func (p Path) Child(key string) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = key
	return child
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	c := make(Path, len(p))
	copy(c, p)
	return c
}
