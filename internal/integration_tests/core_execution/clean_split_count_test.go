package integration_tests

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/app"
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/table"
	"github.com/vk/perfgrid/internal/testutil/harness"
)

const scenarioHCL = `
dataset "raw" {
  type     = "csv"
  filepath = "data/raw.csv"
}

dataset "clean_raw" {
  type     = "csv"
  filepath = "out/clean_raw.csv"
}

dataset "train" {
  type     = "csv"
  filepath = "out/train.csv"
}

dataset "train_row_count" {
  type     = "json"
  filepath = "out/train_row_count.json"
}
`

// scenarioModule registers clean -> split -> count_rows under "scenario".
func scenarioModule(t *testing.T) harness.PipelineModule {
	t.Helper()
	clean := node.MustNew("clean",
		func(raw *table.Table) (*table.Table, error) { return raw.DropNull("Score") },
		node.Single("raw"), node.Single("clean_raw"))
	split := node.MustNew("split",
		func(data *table.Table) map[string]*table.Table {
			rows := make([]int, data.Len())
			for i := range rows {
				rows[i] = i
			}
			half := data.Len() / 2
			return map[string]*table.Table{"train": data.Take(rows[:half]), "test": data.Take(rows[half:])}
		},
		node.Single("clean_raw"),
		node.Keyword(map[string]string{"train": "train", "test": "test"}))
	count := node.MustNew("count_rows",
		func(train *table.Table) int { return train.Len() },
		node.Single("train"), node.Single("train_row_count"))

	p, err := pipeline.New(count, split, clean)
	require.NoError(t, err)
	return harness.PipelineModule{Name: "scenario", Pipeline: p}
}

// Test for: a seeded raw table flows through clean, split and count_rows.
func TestCoreExecution_CleanSplitCount(t *testing.T) {
	for _, runnerKind := range []string{"sequential", "parallel"} {
		t.Run(runnerKind, func(t *testing.T) {
			// --- Arrange ---
			files := map[string]string{
				"perfgrid.hcl": scenarioHCL,
				"data/raw.csv": "Name,Score\na,10\nb,\nc,30\nd,40\ne,\nf,60\ng,70\n",
			}
			cfg := app.Config{Pipeline: "scenario", Runner: runnerKind}

			// --- Act ---
			result := harness.RunIntegrationTest(t, files, cfg, scenarioModule(t))

			// --- Assert ---
			require.NoError(t, result.Err, result.LogOutput)

			raw, err := os.ReadFile(result.Path("out/train_row_count.json"))
			require.NoError(t, err)
			var count int
			require.NoError(t, json.Unmarshal(raw, &count))
			assert.Equal(t, 2, count, "5 clean rows split in half")

			trainCSV, err := os.ReadFile(result.Path("out/train.csv"))
			require.NoError(t, err)
			assert.Equal(t, "Name,Score\na,10\nc,30\n", string(trainCSV))

			cleanCSV, err := os.ReadFile(result.Path("out/clean_raw.csv"))
			require.NoError(t, err)
			assert.Equal(t, "Name,Score\na,10\nc,30\nd,40\nf,60\ng,70\n", string(cleanCSV))

			assert.NoFileExists(t, result.Path("out/test.csv"), "test has no catalog entry")
		})
	}
}
