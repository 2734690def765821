package state

// Module is a materialized node of the tree: its definition, the current
// state slice, and its children.
//
// A Module's State is plain data. It never holds a reference back to the
// tree or the store, so snapshots and replacements stay cheap.
type Module struct {
	def      *Definition
	children map[string]*Module

	// Runtime marks modules added after initial construction. Only
	// runtime modules may be unregistered; statically declared modules
	// are protected from removal.
	Runtime bool

	// State is the materialized state slice for this node. It is nil
	// until installed, and preserved in place across hot updates.
	State map[string]any
}

// NewModule creates a node from a raw definition. Child definitions are
// not materialized here; the Tree attaches children during registration.
func NewModule(def *Definition, runtime bool) *Module {
	return &Module{
		def:      def,
		children: make(map[string]*Module),
		Runtime:  runtime,
	}
}

// Namespaced reports whether the module contributes its key to the
// namespace prefix of its subtree.
func (m *Module) Namespaced() bool {
	return m.def != nil && m.def.Namespaced
}

// Definition returns the module's current raw definition.
func (m *Module) Definition() *Definition {
	return m.def
}

// Child returns the child registered under key, or nil.
func (m *Module) Child(key string) *Module {
	return m.children[key]
}

// HasChild reports whether a child is registered under key.
func (m *Module) HasChild(key string) bool {
	_, ok := m.children[key]
	return ok
}

// AddChild attaches child under key. An existing child under the same
// key is overwritten; both initial registration and hot-update
// replacement rely on that.
func (m *Module) AddChild(key string, child *Module) {
	m.children[key] = child
}

// RemoveChild detaches the child registered under key.
func (m *Module) RemoveChild(key string) {
	delete(m.children, key)
}

// Update replaces the module's mutation, action, getter, and child
// definitions in place while leaving the materialized State untouched.
// This is the hot-reload primitive: handlers change, data survives.
func (m *Module) Update(def *Definition) {
	m.def.Namespaced = def.Namespaced
	m.def.Mutations = def.Mutations
	m.def.Actions = def.Actions
	m.def.Getters = def.Getters
	m.def.Modules = def.Modules
}

// ForEachChild visits children in sorted key order.
func (m *Module) ForEachChild(fn func(key string, child *Module)) {
	for _, key := range sortedKeys(m.children) {
		fn(key, m.children[key])
	}
}

// ForEachMutation visits declared mutations in sorted key order.
func (m *Module) ForEachMutation(fn func(key string, h MutationFunc)) {
	if m.def == nil {
		return
	}
	for _, key := range sortedKeys(m.def.Mutations) {
		fn(key, m.def.Mutations[key])
	}
}

// ForEachAction visits declared actions in sorted key order.
func (m *Module) ForEachAction(fn func(key string, a Action)) {
	if m.def == nil {
		return
	}
	for _, key := range sortedKeys(m.def.Actions) {
		fn(key, m.def.Actions[key])
	}
}

// ForEachGetter visits declared getters in sorted key order.
func (m *Module) ForEachGetter(fn func(key string, g GetterFunc)) {
	if m.def == nil {
		return
	}
	for _, key := range sortedKeys(m.def.Getters) {
		fn(key, m.def.Getters[key])
	}
}
