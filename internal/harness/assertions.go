package harness

import (
	"fmt"

	"github.com/roach88/canopy/internal/state"
	"github.com/roach88/canopy/internal/testutil"
)

func checkAssertion(a *Assertion, index int, result *Result) {
	switch a.Type {
	case AssertStateEquals:
		checkStateEquals(a, index, result)
	case AssertTraceContains:
		checkTraceContains(a, index, result)
	case AssertTraceOrder:
		checkTraceOrder(a, index, result)
	case AssertTraceCount:
		checkTraceCount(a, index, result)
	}
}

func checkStateEquals(a *Assertion, index int, result *Result) {
	got, ok := resolveStatePath(result.State, a.Path)
	if !ok {
		result.AddError(fmt.Sprintf("assertions[%d] state_equals: path %q not found in state",
			index, a.Path))
		return
	}
	if !valuesMatch(a.Expect, got) {
		result.AddError(fmt.Sprintf("assertions[%d] state_equals: %s: expected %v, got %v",
			index, a.Path, a.Expect, got))
	}
}

func checkTraceContains(a *Assertion, index int, result *Result) {
	kind := assertionKind(a)
	for _, e := range result.Trace {
		if e.Kind == kind && e.Name == a.Name {
			return
		}
	}
	result.AddError(fmt.Sprintf("assertions[%d] trace_contains: no %s event named %q in trace",
		index, kind, a.Name))
}

// checkTraceOrder verifies the named events appear in the given relative
// order. Other events may interleave.
func checkTraceOrder(a *Assertion, index int, result *Result) {
	kind := assertionKind(a)
	next := 0
	for _, e := range result.Trace {
		if next >= len(a.Names) {
			break
		}
		if e.Kind == kind && e.Name == a.Names[next] {
			next++
		}
	}
	if next < len(a.Names) {
		result.AddError(fmt.Sprintf("assertions[%d] trace_order: %s %q missing or out of order",
			index, kind, a.Names[next]))
	}
}

func checkTraceCount(a *Assertion, index int, result *Result) {
	kind := assertionKind(a)
	n := 0
	for _, e := range result.Trace {
		if e.Kind == kind && e.Name == a.Name {
			n++
		}
	}
	if n != a.Count {
		result.AddError(fmt.Sprintf("assertions[%d] trace_count: %s %q: expected %d, got %d",
			index, kind, a.Name, a.Count, n))
	}
}

func assertionKind(a *Assertion) string {
	if a.Kind == "" {
		return testutil.KindMutation
	}
	return a.Kind
}

// valuesMatch compares an expected value from YAML against an actual
// value from the store. Maps match as subsets: only the expected keys
// are compared, recursively. Everything else compares by canonical
// encoding, which makes 3 and 3.0 interchangeable the way a YAML author
// expects.
func valuesMatch(expected, actual any) bool {
	if expMap, ok := expected.(map[string]any); ok {
		actMap, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for key, expVal := range expMap {
			actVal, present := actMap[key]
			if !present || !valuesMatch(expVal, actVal) {
				return false
			}
		}
		return true
	}

	expJSON, err := state.MarshalCanonical(expected)
	if err != nil {
		return fmt.Sprintf("%#v", expected) == fmt.Sprintf("%#v", actual)
	}
	actJSON, err := state.MarshalCanonical(actual)
	if err != nil {
		return false
	}
	return string(expJSON) == string(actJSON)
}
