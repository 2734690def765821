package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectTextOutput(t *testing.T) {
	path := writeBlueprintYAML(t, cleanBlueprint)

	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "store shop")
	assert.Contains(t, output, "cart/add")
	assert.Contains(t, output, "increment")
	assert.Contains(t, output, "cart/items")
	assert.Contains(t, output, "mutations (2)")
}

func TestInspectJSONOutput(t *testing.T) {
	path := writeBlueprintYAML(t, cleanBlueprint)

	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var results []InspectResult
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "shop", results[0].Blueprint)
	assert.Equal(t, []string{"cart/add", "increment"}, results[0].Registry.Mutations)
	assert.Equal(t, []string{"cart/items", "count"}, results[0].Registry.Getters)
}

func TestInspectMissingPath(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewInspectCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"./definitely-absent"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
