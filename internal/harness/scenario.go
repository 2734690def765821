package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a store test scenario: a sequence of commits and
// dispatches plus assertions on the resulting trace and state.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named
	// after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Token optionally fixes a single repeating dispatch token. When
	// empty, dispatches draw sequence tokens "tok-01", "tok-02", ...
	Token string `yaml:"token,omitempty"`

	// Setup contains steps run before the main flow to establish
	// initial state. Setup steps must succeed; expect clauses are not
	// allowed here.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the main test steps.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is a single commit or dispatch. Exactly one of Commit and
// Dispatch must be set.
type Step struct {
	// Commit names a mutation type to commit.
	Commit string `yaml:"commit,omitempty"`

	// Dispatch names an action type to dispatch.
	Dispatch string `yaml:"dispatch,omitempty"`

	// Payload is passed to the handler as-is after YAML decoding.
	Payload any `yaml:"payload,omitempty"`

	// Expect validates the step's outcome. If nil the step must simply
	// not error.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Name returns the step's mutation or action type.
func (s *Step) Name() string {
	if s.Commit != "" {
		return s.Commit
	}
	return s.Dispatch
}

// ExpectClause specifies an expected step outcome.
type ExpectClause struct {
	// Result is the expected dispatch result. Maps match as subsets -
	// only the listed keys are compared. Other values compare whole.
	Result any `yaml:"result,omitempty"`

	// Error, when set, means the step must fail and the error message
	// must contain this substring.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final trace or state.
type Assertion struct {
	// Type is one of state_equals, trace_contains, trace_order,
	// trace_count.
	Type string `yaml:"type"`

	// Path is a slash-separated path into the composed state (used by
	// state_equals).
	Path string `yaml:"path,omitempty"`

	// Expect is the expected state value (used by state_equals). Maps
	// match as subsets.
	Expect any `yaml:"expect,omitempty"`

	// Kind is the event kind: mutation, action:before, action:after,
	// action:error. Defaults to mutation.
	Kind string `yaml:"kind,omitempty"`

	// Name is the event name (used by trace_contains, trace_count).
	Name string `yaml:"name,omitempty"`

	// Names is the expected relative event order (used by trace_order).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStateEquals   = "state_equals"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file doesn't exist, is malformed, contains unknown fields
// (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(&step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect clauses are not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(&step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(&assertion); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step *Step) error {
	switch {
	case step.Commit == "" && step.Dispatch == "":
		return fmt.Errorf("one of commit or dispatch is required")
	case step.Commit != "" && step.Dispatch != "":
		return fmt.Errorf("commit and dispatch are mutually exclusive")
	case step.Expect != nil && step.Commit != "" && step.Expect.Result != nil:
		return fmt.Errorf("commits return no result; expect.result needs a dispatch")
	}
	return nil
}

func validateAssertion(a *Assertion) error {
	switch a.Type {
	case AssertStateEquals:
		if a.Path == "" {
			return fmt.Errorf("path is required for state_equals")
		}
	case AssertTraceContains:
		if a.Name == "" {
			return fmt.Errorf("name is required for trace_contains")
		}
	case AssertTraceOrder:
		if len(a.Names) == 0 {
			return fmt.Errorf("names list is required for trace_order")
		}
	case AssertTraceCount:
		if a.Name == "" {
			return fmt.Errorf("name is required for trace_count")
		}
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for trace_count")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
