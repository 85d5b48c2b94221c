package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/hcl_adapter"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/testutil"
)

const projectHCL = `
dataset "student_performance_factors" {
  type     = "csv"
  filepath = "data/01_raw/StudentPerformanceFactors.csv"
}

dataset "correlation_matrix" {
  type     = "csv"
  filepath = "data/08_reporting/correlation_matrix.csv"
}

dataset "best_model_leaderboard" {
  type     = "csv"
  filepath = "data/08_reporting/best_model_leaderboard.csv"
}

dataset "best_model_feature_importance" {
  type     = "json"
  filepath = "data/08_reporting/best_model_feature_importance.json"
}

parameters {
  label_column  = "Exam_Score"
  train_size    = 0.8
  test_size     = 0.2
  random_seed   = 42
  ridge_alpha   = 1.0
  knn_neighbors = 3
}

run {
  runner  = "parallel"
  workers = 2
}
`

// newProject writes the project file and the raw student table into a
// temporary directory and returns the project file path.
func newProject(t *testing.T, hcl string) string {
	t.Helper()
	dir := t.TempDir()
	rawDir := filepath.Join(dir, "data", "01_raw")
	require.NoError(t, os.MkdirAll(rawDir, 0o755))
	testutil.WriteStudentsCSV(t, rawDir, 40)
	path := filepath.Join(dir, "perfgrid.hcl")
	require.NoError(t, os.WriteFile(path, []byte(hcl), 0o644))
	return path
}

func newTestApp(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer) {
	t.Helper()
	logs := &testutil.SafeBuffer{}
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)
	a, err := NewApp(logs, appConfig, hcl_adapter.NewLoader())
	require.NoError(t, err)
	return a, logs
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "minimal", cfg: Config{ConfigPath: "perfgrid.hcl"}},
		{
			name: "full",
			cfg: Config{
				ConfigPath: "perfgrid.hcl", Runner: "parallel", Workers: 8,
				LogFormat: "json", LogLevel: "warn", HealthcheckPort: 8080,
			},
		},
		{name: "missing config path", cfg: Config{}, wantErr: "ConfigPath is a required configuration field"},
		{name: "unknown runner", cfg: Config{ConfigPath: "x", Runner: "gpu"}, wantErr: "Runner has invalid value 'gpu' (oneof)"},
		{name: "negative workers", cfg: Config{ConfigPath: "x", Workers: -1}, wantErr: "Workers has invalid value '-1' (gte)"},
		{name: "bad log format", cfg: Config{ConfigPath: "x", LogFormat: "xml"}, wantErr: "LogFormat has invalid value 'xml'"},
		{name: "port out of range", cfg: Config{ConfigPath: "x", HealthcheckPort: 70000}, wantErr: "HealthcheckPort has invalid value '70000' (lte)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg, *got)
		})
	}
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		cfg, err := NewConfig(Config{ConfigPath: filepath.Join(t.TempDir(), "nope.hcl")})
		require.NoError(t, err)

		_, err = NewApp(&bytes.Buffer{}, cfg, hcl_adapter.NewLoader())

		assert.ErrorContains(t, err, "failed to load configuration")
	})

	t.Run("undefined parameter", func(t *testing.T) {
		path := newProject(t, `
dataset "student_performance_factors" {
  type     = "csv"
  filepath = "data/01_raw/StudentPerformanceFactors.csv"
}
parameters {
  train_size = 0.8
}
`)
		cfg, err := NewConfig(Config{ConfigPath: path})
		require.NoError(t, err)

		_, err = NewApp(&bytes.Buffer{}, cfg, hcl_adapter.NewLoader())

		assert.ErrorContains(t, err, "registry validation failed")
		assert.ErrorContains(t, err, "parameter 'label_column' which is not defined")
	})

	t.Run("unreadable params file", func(t *testing.T) {
		path := newProject(t, projectHCL)
		cfg, err := NewConfig(Config{ConfigPath: path, ParamsPath: filepath.Join(t.TempDir(), "missing.yml")})
		require.NoError(t, err)

		_, err = NewApp(&bytes.Buffer{}, cfg, hcl_adapter.NewLoader())

		assert.ErrorContains(t, err, "failed to read parameter file")
	})
}

func TestNewApp_ParamsOverride(t *testing.T) {
	// --- Arrange ---
	path := newProject(t, projectHCL)
	paramsPath := filepath.Join(filepath.Dir(path), "params.yml")
	require.NoError(t, os.WriteFile(paramsPath, []byte("knn_neighbors: 7\n"), 0o644))

	// --- Act ---
	a, _ := newTestApp(t, Config{ConfigPath: path, ParamsPath: paramsPath})

	// --- Assert ---
	assert.Equal(t, 7.0, a.Parameters()["knn_neighbors"])
	assert.Equal(t, "Exam_Score", a.Parameters()["label_column"])
	assert.Equal(t, []string{
		"data_processing", "data_science_prep", "data_science_training",
		"data_science_pred", "reporting", "__default__",
	}, a.Registry().Names())
}

func TestApp_RunEndToEnd(t *testing.T) {
	// --- Arrange ---
	path := newProject(t, projectHCL)
	dir := filepath.Dir(path)
	a, logs := newTestApp(t, Config{ConfigPath: path, LogLevel: "debug"})

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err, logs.String())
	assert.Contains(t, logs.String(), "🏁 Execution finished.")

	leaderboard, err := os.ReadFile(filepath.Join(dir, "data", "08_reporting", "best_model_leaderboard.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(leaderboard), "Rank,Model,Accuracy,MAE,RMSE\n"))
	assert.Len(t, strings.Split(strings.TrimSpace(string(leaderboard)), "\n"), 4)

	assert.FileExists(t, filepath.Join(dir, "data", "08_reporting", "correlation_matrix.csv"))
	assert.FileExists(t, filepath.Join(dir, "data", "08_reporting", "best_model_feature_importance.json"))
}

func TestApp_SelectPipeline(t *testing.T) {
	path := newProject(t, projectHCL)

	testCases := []struct {
		name      string
		cfg       Config
		wantNodes []string
		wantErr   error
	}{
		{
			name: "tags",
			cfg:  Config{Pipeline: "data_processing", Tags: []string{"eda"}},
			wantNodes: []string{
				"generate_correlation_matrix_node", "generate_correlation_matrix_encoded_node",
				"generate_attendance_exam_correlation_node", "generate_hours_studied_exam_correlation_node",
			},
		},
		{
			name:      "to outputs",
			cfg:       Config{ToOutputs: []string{"student_performance_factors_test_data"}},
			wantNodes: []string{"preprocess_student_performance_factors_node", "split_data_node"},
		},
		{
			name:      "only nodes",
			cfg:       Config{OnlyNodes: []string{"split_data_node"}},
			wantNodes: []string{"split_data_node"},
		},
		{
			name:    "unknown node",
			cfg:     Config{FromNodes: []string{"nope"}},
			wantErr: pipeline.ErrUnknownNode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ConfigPath = path
			a, _ := newTestApp(t, tc.cfg)

			p, err := a.SelectPipeline()

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			var names []string
			for _, n := range p.Nodes() {
				names = append(names, n.Name())
			}
			assert.ElementsMatch(t, tc.wantNodes, names)
		})
	}
}

func TestApp_Plan(t *testing.T) {
	// --- Arrange ---
	path := newProject(t, projectHCL)
	a, _ := newTestApp(t, Config{ConfigPath: path, Pipeline: "reporting"})
	var out bytes.Buffer

	// --- Act ---
	err := a.Plan(context.Background(), &out)

	// --- Assert ---
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1. calculate_accuracies_node: "))
	assert.True(t, strings.HasPrefix(lines[1], "2. generate_best_model_report_node: "))
}

func TestApp_RunWithoutSelectedNodes(t *testing.T) {
	path := newProject(t, projectHCL)
	a, logs := newTestApp(t, Config{ConfigPath: path, Tags: []string{"no-such-tag"}})

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, logs.String(), "No nodes selected, execution not required.")
}

func TestHealthcheckMux(t *testing.T) {
	// --- Arrange ---
	path := newProject(t, projectHCL)
	a, _ := newTestApp(t, Config{ConfigPath: path, Pipeline: "data_processing"})
	require.NoError(t, a.Run(context.Background()))
	srv := httptest.NewServer(a.newHealthcheckMux())
	defer srv.Close()

	// --- Act ---
	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()

	// --- Assert ---
	assert.Equal(t, http.StatusOK, health.StatusCode)
	var body bytes.Buffer
	_, err = body.ReadFrom(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), `perfgrid_pipeline_runs_total{status="success"} 1`)
	assert.Contains(t, body.String(), "go_goroutines")
}
