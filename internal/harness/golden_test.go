package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "cart_checkout.yaml"))
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, scenario, shopDef()))
}

func TestAssertGolden_ReusesResult(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "cart_checkout.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario, shopDef())
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, AssertGolden(t, scenario.Name, result))
}

func TestBuildSnapshot(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "cart_checkout.yaml"))
	require.NoError(t, err)
	result, err := Run(scenario, shopDef())
	require.NoError(t, err)

	snap := buildSnapshot(scenario.Name, result)
	assert.Equal(t, "cart_checkout", snap["scenario_name"])
	assert.Equal(t, true, snap["pass"])

	trace, ok := snap["trace"].([]any)
	require.True(t, ok)
	require.Len(t, trace, 4)

	first, ok := trace[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mutation", first["kind"])
	assert.NotContains(t, first, "token", "mutations carry no dispatch token")
	assert.NotContains(t, first, "error")
}
