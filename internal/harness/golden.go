package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/canopy/internal/state"
)

// buildSnapshot flattens a scenario result into plain maps for the
// canonical encoder: the event trace plus the final composed state.
func buildSnapshot(name string, result *Result) map[string]any {
	trace := make([]any, len(result.Trace))
	for i, e := range result.Trace {
		view := map[string]any{
			"seq":  int(e.Seq),
			"kind": e.Kind,
			"name": e.Name,
		}
		if e.Payload != nil {
			view["payload"] = e.Payload
		}
		if e.Token != "" {
			view["token"] = e.Token
		}
		if e.Result != nil {
			view["result"] = e.Result
		}
		if e.Error != "" {
			view["error"] = e.Error
		}
		trace[i] = view
	}
	return map[string]any{
		"scenario_name": name,
		"pass":          result.Pass,
		"trace":         trace,
		"state":         result.State,
	}
}

// RunWithGolden executes a scenario and compares the trace and final
// state against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, def *state.Definition) error {
	t.Helper()

	result, err := Run(scenario, def)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result against the golden
// file named after the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshotJSON, err := state.MarshalCanonical(buildSnapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshotJSON)
	return nil
}
