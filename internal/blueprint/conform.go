package blueprint

import (
	"fmt"
	"sort"

	"github.com/roach88/canopy/internal/state"
)

// Conformance issue codes.
const (
	CodeMissingModule      = "B201" // declared module absent from the definition
	CodeNamespacedMismatch = "B202" // namespaced flag disagrees
	CodeMissingHandler     = "B203" // declared mutation/action/getter absent
	CodeUndeclaredHandler  = "B204" // handler present but not declared
	CodeUndeclaredModule   = "B205" // module present but not declared
)

// Conform checks whether a live definition implements the declared
// shape. Both directions are reported: declared-but-missing breaks
// callers that trust the blueprint, undeclared extras mean the
// blueprint has drifted behind the code. State defaults are not
// compared; the blueprint records them for documentation, the
// definition's factories own the real values.
func Conform(bp *Blueprint, def *state.Definition) []Issue {
	if bp == nil || bp.Root == nil {
		return []Issue{{Code: CodeMissingModule, Message: "blueprint has no root module"}}
	}
	if def == nil {
		return []Issue{{Code: CodeMissingModule, Message: "definition is nil"}}
	}
	c := &conformer{}
	c.module(bp.Root, def, state.Path{})
	return c.issues
}

type conformer struct {
	issues []Issue
}

func (c *conformer) report(code string, path state.Path, format string, args ...any) {
	c.issues = append(c.issues, Issue{Code: code, Path: path.String(), Message: fmt.Sprintf(format, args...)})
}

func (c *conformer) module(shape *ModuleShape, def *state.Definition, path state.Path) {
	if shape.Namespaced != def.Namespaced {
		c.report(CodeNamespacedMismatch, path,
			"blueprint declares namespaced=%v, definition has %v", shape.Namespaced, def.Namespaced)
	}

	defMutations := map[string]bool{}
	for name := range def.Mutations {
		defMutations[name] = true
	}
	defActions := map[string]bool{}
	for name := range def.Actions {
		defActions[name] = true
	}
	defGetters := map[string]bool{}
	for name := range def.Getters {
		defGetters[name] = true
	}

	c.handlers(shape.Mutations, defMutations, "mutation", path)
	c.handlers(shape.Actions, defActions, "action", path)
	c.handlers(shape.Getters, defGetters, "getter", path)

	for _, key := range sortedShapeKeys(shape.Modules) {
		childShape := shape.Modules[key]
		childDef, ok := def.Modules[key]
		if !ok {
			c.report(CodeMissingModule, path, "declared module %q not present", key)
			continue
		}
		c.module(childShape, childDef, path.Child(key))
	}
	for _, key := range sortedDefKeys(def.Modules) {
		if _, declared := shape.Modules[key]; !declared {
			c.report(CodeUndeclaredModule, path, "module %q not declared in blueprint", key)
		}
	}
}

func (c *conformer) handlers(declared []string, present map[string]bool, kind string, path state.Path) {
	declaredSet := map[string]bool{}
	for _, name := range declared {
		declaredSet[name] = true
		if !present[name] {
			c.report(CodeMissingHandler, path, "declared %s %q not present", kind, name)
		}
	}
	for _, name := range sortedBoolKeys(present) {
		if !declaredSet[name] {
			c.report(CodeUndeclaredHandler, path, "%s %q not declared in blueprint", kind, name)
		}
	}
}

func sortedDefKeys(m map[string]*state.Definition) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
