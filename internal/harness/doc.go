// Package harness provides scenario testing for canopy stores.
//
// A scenario drives a store built from a caller-supplied Definition
// through a sequence of commits and dispatches, then asserts on the
// recorded event trace and the final composed state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: checkout
//	description: "Adding to the cart updates the item count"
//	setup:
//	  - commit: cart/add
//	    payload: 1
//	flow:
//	  - dispatch: cart/addAsync
//	    payload: 2
//	    expect:
//	      result: 3
//	  - commit: increment
//	assertions:
//	  - type: state_equals
//	    path: cart/items
//	    expect: 3
//	  - type: trace_contains
//	    kind: mutation
//	    name: cart/add
//	  - type: trace_count
//	    kind: mutation
//	    name: cart/add
//	    count: 2
//	  - type: trace_order
//	    kind: mutation
//	    names: [cart/add, increment]
//
// # Assertion Types
//
//   - state_equals: resolves a slash-separated path into the composed
//     state and compares the value
//   - trace_contains: an event of the given kind and name appears in
//     the trace
//   - trace_order: events of the kind appear in the given relative order
//   - trace_count: an event appears exactly N times
//
// # Deterministic Testing
//
// Stores run with fixed sequence tokens ("tok-01", "tok-02", ...), or a
// single repeating token when the scenario sets one, so identical
// scenarios produce byte-identical traces. Golden snapshots serialize
// the trace and final state with canonical JSON for stable comparison.
package harness
