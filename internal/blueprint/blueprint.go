// Package blueprint declares and lints the shape of a store's module
// tree without running any handler code.
//
// A blueprint names what a store is supposed to contain: module keys,
// namespacing, state defaults, and the mutation/action/getter names each
// module registers. Blueprints load from CUE packages or single YAML
// files, lint for structural defects (collisions, shadowing, empty
// names), and can be checked against a live Definition with Conform.
package blueprint

import (
	"sort"
)

// ModuleShape declares one module's expected surface.
type ModuleShape struct {
	Namespaced bool                    `json:"namespaced,omitempty" yaml:"namespaced,omitempty"`
	State      map[string]any          `json:"state,omitempty" yaml:"state,omitempty"`
	Mutations  []string                `json:"mutations,omitempty" yaml:"mutations,omitempty"`
	Actions    []string                `json:"actions,omitempty" yaml:"actions,omitempty"`
	Getters    []string                `json:"getters,omitempty" yaml:"getters,omitempty"`
	Modules    map[string]*ModuleShape `json:"modules,omitempty" yaml:"modules,omitempty"`
}

// Blueprint is a named root shape.
type Blueprint struct {
	Name string
	Root *ModuleShape
}

// Registry is the flattened, fully-qualified view of a blueprint:
// every dispatchable name the declared store would register, sorted.
type Registry struct {
	Mutations []string `json:"mutations"`
	Actions   []string `json:"actions"`
	Getters   []string `json:"getters"`
}

// BuildRegistry flattens a blueprint into its fully-qualified name
// listing. Namespaced modules prefix their subtree with "key/"; the
// rest register into the enclosing namespace, so duplicates here are
// fan-out, not overwrites.
func BuildRegistry(bp *Blueprint) *Registry {
	reg := &Registry{}
	if bp == nil || bp.Root == nil {
		return reg
	}
	flattenShape(bp.Root, "", reg)
	sort.Strings(reg.Mutations)
	sort.Strings(reg.Actions)
	sort.Strings(reg.Getters)
	return reg
}

func flattenShape(m *ModuleShape, ns string, reg *Registry) {
	for _, name := range m.Mutations {
		reg.Mutations = append(reg.Mutations, ns+name)
	}
	for _, name := range m.Actions {
		reg.Actions = append(reg.Actions, ns+name)
	}
	for _, name := range m.Getters {
		reg.Getters = append(reg.Getters, ns+name)
	}
	for _, key := range sortedShapeKeys(m.Modules) {
		child := m.Modules[key]
		childNS := ns
		if child.Namespaced {
			childNS = ns + key + "/"
		}
		flattenShape(child, childNS, reg)
	}
}

func sortedShapeKeys(m map[string]*ModuleShape) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
