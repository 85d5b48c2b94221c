package integration_tests

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/cli"
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/testutil/harness"
)

const project = `
dataset "scaled" {
  type     = "json"
  filepath = "out/scaled.json"
}

parameters {
  base   = env("PERFGRID_TEST_BASE", "2")
  factor = 3
  model  = { alpha = 0.5 }
}

run {
  pipeline = "scaling"
  runner   = "sequential"
}
`

type scaleInput struct {
	Base   string  `pipe:"base"`
	Factor float64 `pipe:"factor"`
	Alpha  float64 `pipe:"alpha"`
}

func scalingModule() harness.PipelineModule {
	scale := node.MustNew("scale",
		func(in scaleInput) map[string]any {
			return map[string]any{"base": in.Base, "factor": in.Factor, "alpha": in.Alpha}
		},
		node.Keyword(map[string]string{
			"base":   "params:base",
			"factor": "params:factor",
			"alpha":  "params:model.alpha",
		}),
		node.Single("scaled"))
	return harness.PipelineModule{Name: "scaling", Pipeline: pipeline.MustNew(scale)}
}

func readScaled(t *testing.T, result *harness.HarnessResult) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(result.Path("out/scaled.json"))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	return got
}

// Test for: parameters come from HCL, the environment and the params file,
// with the params file winning.
func TestCLIBehavior_ParamsFileOverridesProject(t *testing.T) {
	// --- Arrange ---
	t.Setenv("PERFGRID_TEST_BASE", "from-env")
	inv, shouldExit, err := cli.Parse([]string{"run", "--params", "params.yml", "--log-level", "debug"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)
	files := map[string]string{
		"perfgrid.hcl": project,
		"params.yml":   "factor: 10\nmodel:\n  alpha: 0.25\n",
	}

	// --- Act ---
	result := harness.RunIntegrationTest(t, files, *inv.Config, scalingModule())

	// --- Assert ---
	require.NoError(t, result.Err, result.LogOutput)
	assert.Equal(t, map[string]any{"base": "from-env", "factor": 10.0, "alpha": 0.25}, readScaled(t, result))
}

// Test for: without overrides the project file alone drives the run.
func TestCLIBehavior_ProjectDefaults(t *testing.T) {
	// --- Arrange ---
	inv, _, err := cli.Parse([]string{"run"}, &bytes.Buffer{})
	require.NoError(t, err)
	files := map[string]string{"perfgrid.hcl": project}

	// --- Act ---
	result := harness.RunIntegrationTest(t, files, *inv.Config, scalingModule())

	// --- Assert ---
	require.NoError(t, result.Err, result.LogOutput)
	assert.Equal(t, map[string]any{"base": "2", "factor": 3.0, "alpha": 0.5}, readScaled(t, result))
}

// Test for: the pipeline flag takes precedence over the run block.
func TestCLIBehavior_PipelineFlagWins(t *testing.T) {
	inv, _, err := cli.Parse([]string{"run", "--pipeline", "missing"}, &bytes.Buffer{})
	require.NoError(t, err)

	result := harness.RunIntegrationTest(t, map[string]string{"perfgrid.hcl": project}, *inv.Config, scalingModule())

	assert.ErrorContains(t, result.Err, "pipeline 'missing' is not registered")
	assert.Equal(t, cli.ExitFailure, cli.FromError(result.Err).Code)
}
