package blueprint

import (
	"fmt"
	"sort"

	"github.com/roach88/canopy/internal/state"
)

// Lint issue codes - unified across blueprint checks and the CLI.
const (
	CodeEmptyName        = "B101" // empty module/mutation/action/getter name
	CodeDuplicateEntry   = "B102" // name listed twice in one module
	CodeDuplicateGetter  = "B103" // two modules declare the same fully-qualified getter
	CodeShadowedStateKey = "B104" // module key collides with a state default key
	CodeNamespaceSlash   = "B105" // module key contains the namespace separator
)

// Issue is one lint finding, located by module path.
type Issue struct {
	Code    string `json:"code"`
	Path    string `json:"path"` // module path, "" for root
	Message string `json:"message"`
}

func (i Issue) String() string {
	at := i.Path
	if at == "" {
		at = "<root>"
	}
	return fmt.Sprintf("%s at %s: %s", i.Code, at, i.Message)
}

// Lint checks a blueprint for structural defects: empty names,
// double-listed names, module keys shadowing state defaults or carrying
// the "/" separator, and getter names that collide once namespaces are
// flattened away. Fan-out of mutations and actions across sibling
// modules is intentional and not reported.
func Lint(bp *Blueprint) []Issue {
	if bp == nil || bp.Root == nil {
		return []Issue{{Code: CodeEmptyName, Message: "blueprint has no root module"}}
	}
	l := &linter{seenGetters: map[string]string{}}
	l.module(bp.Root, state.Path{}, "")
	return l.issues
}

type linter struct {
	issues      []Issue
	seenGetters map[string]string // fq getter name -> first declaring path
}

func (l *linter) report(code string, path state.Path, format string, args ...any) {
	l.issues = append(l.issues, Issue{
		Code:    code,
		Path:    path.String(),
		Message: fmt.Sprintf(format, args...),
	})
}

func (l *linter) module(m *ModuleShape, path state.Path, ns string) {
	l.names(m.Mutations, "mutation", path)
	l.names(m.Actions, "action", path)
	l.names(m.Getters, "getter", path)

	for _, name := range m.Getters {
		if name == "" {
			continue
		}
		fq := ns + name
		if first, dup := l.seenGetters[fq]; dup {
			l.report(CodeDuplicateGetter, path,
				"getter %q already declared by module %q; the later registration would be dropped", fq, first)
			continue
		}
		l.seenGetters[fq] = path.String()
	}

	for _, key := range sortedShapeKeys(m.Modules) {
		child := m.Modules[key]
		if key == "" {
			l.report(CodeEmptyName, path, "module with empty key")
			continue
		}
		if containsSlash(key) {
			l.report(CodeNamespaceSlash, path, "module key %q contains %q", key, "/")
		}
		if _, shadowed := m.State[key]; shadowed {
			l.report(CodeShadowedStateKey, path,
				"module key %q shadows a state default of the same name", key)
		}
		childNS := ns
		if child.Namespaced {
			childNS = ns + key + "/"
		}
		l.module(child, path.Child(key), childNS)
	}
}

func (l *linter) names(names []string, kind string, path state.Path) {
	seen := map[string]bool{}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		if name == "" {
			l.report(CodeEmptyName, path, "empty %s name", kind)
			continue
		}
		if seen[name] {
			l.report(CodeDuplicateEntry, path, "%s %q listed more than once", kind, name)
			continue
		}
		seen[name] = true
	}
}

func containsSlash(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return true
		}
	}
	return false
}
