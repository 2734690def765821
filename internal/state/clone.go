package state

// CloneState deep-copies a state tree. Maps and slices are copied
// recursively; scalar values are shared (they are immutable in Go).
// Used for snapshots handed to external code and for replay baselines.
func CloneState(root map[string]any) map[string]any {
	if root == nil {
		return nil
	}
	out := make(map[string]any, len(root))
	for k, v := range root {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneState(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

// NestedState resolves a module's state slice by walking path from the
// composed root. Returns nil if any segment is missing or not a map.
func NestedState(root map[string]any, path Path) map[string]any {
	current := root
	for _, key := range path {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}
