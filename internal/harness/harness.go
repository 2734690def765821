package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/canopy/internal/state"
	"github.com/roach88/canopy/internal/store"
	"github.com/roach88/canopy/internal/testutil"
)

// Default pool of sequence tokens per run. Panic from exhaustion means
// the scenario dispatches more than any reasonable test should.
const tokenPoolSize = 64

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success: every step and assertion
	// held.
	Pass bool `json:"pass"`

	// Trace contains the recorded mutation and action events in order.
	Trace []testutil.Event `json:"trace"`

	// Errors contains step and assertion failure messages. Empty if
	// Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final composed state snapshot.
	State map[string]any `json:"state,omitempty"`
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario against a store built from def. The store
// runs in strict mode with deterministic tokens; handler programming
// errors surface as scenario failures rather than silent drift.
//
// Setup failures abort with an error; flow step failures accumulate in
// the result so one broken step doesn't hide the rest.
func Run(scenario *Scenario, def *state.Definition) (*Result, error) {
	var tokens store.TokenGenerator = testutil.SequenceTokens(tokenPoolSize)
	if scenario.Token != "" {
		tokens = testutil.NewRepeatingToken(scenario.Token)
	}

	s := store.New(def, store.WithStrict(), store.WithTokens(tokens))
	rec := &testutil.Recorder{}

	ctx := context.Background()
	for i, step := range scenario.Setup {
		if err := runStepRaw(ctx, s, &step); err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Name(), err)
		}
	}

	// Setup noise stays out of the trace; recording starts with the flow.
	rec.Attach(s)

	result := &Result{Pass: true}
	for i, step := range scenario.Flow {
		runFlowStep(ctx, s, &step, i, result)
	}

	result.Trace = rec.Events()
	result.State = s.Snapshot()

	for i, assertion := range scenario.Assertions {
		checkAssertion(&assertion, i, result)
	}
	return result, nil
}

func runStepRaw(ctx context.Context, s *store.Store, step *Step) error {
	if step.Commit != "" {
		return s.Commit(step.Commit, step.Payload)
	}
	_, err := s.Dispatch(ctx, step.Dispatch, step.Payload)
	return err
}

func runFlowStep(ctx context.Context, s *store.Store, step *Step, index int, result *Result) {
	var got any
	var err error
	if step.Commit != "" {
		err = s.Commit(step.Commit, step.Payload)
	} else {
		got, err = s.Dispatch(ctx, step.Dispatch, step.Payload)
	}

	expect := step.Expect
	if expect == nil {
		if err != nil {
			result.AddError(fmt.Sprintf("flow[%d] %s: %v", index, step.Name(), err))
		}
		return
	}

	if expect.Error != "" {
		if err == nil {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected error containing %q, got none",
				index, step.Name(), expect.Error))
		} else if !strings.Contains(err.Error(), expect.Error) {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected error containing %q, got %q",
				index, step.Name(), expect.Error, err.Error()))
		}
		return
	}

	if err != nil {
		result.AddError(fmt.Sprintf("flow[%d] %s: %v", index, step.Name(), err))
		return
	}
	if expect.Result != nil && !valuesMatch(expect.Result, got) {
		result.AddError(fmt.Sprintf("flow[%d] %s: result mismatch: expected %v, got %v",
			index, step.Name(), expect.Result, got))
	}
}

// resolveStatePath walks a slash-separated path into the composed state.
func resolveStatePath(st map[string]any, path string) (any, bool) {
	segments := strings.Split(path, "/")
	var cur any = st
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
