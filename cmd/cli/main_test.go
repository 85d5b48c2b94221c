package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/cli"
)

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// An HCL string with a syntax error fails during loading inside app.NewApp().
	invalidHCL := `
		dataset "raw" {
			type = "csv"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "perfgrid.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, []string{"plan", filePath})

	// --- Assert ---
	require.Error(t, runErr)
	assert.Contains(t, runErr.Error(), "failed to load configuration")
	assert.Equal(t, cli.ExitFailure, cli.FromError(runErr).Code)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"run", "--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
	assert.Equal(t, cli.ExitUsage, cli.FromError(err).Code)
}

func TestRun_Plan(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	config := `
dataset "student_performance_factors" {
  type     = "csv"
  filepath = "raw.csv"
}

parameters {
  label_column  = "Exam_Score"
  train_size    = 0.8
  test_size     = 0.2
  random_seed   = 42
  ridge_alpha   = 1.0
  knn_neighbors = 5
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "perfgrid.hcl"), []byte(config), 0600))
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"plan", dir, "--pipeline", "data_science_prep", "--log-level", "error"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t,
		"1. split_data_node: {data=student_performance_factors_preprocessed, random_seed=params:random_seed, test_size=params:test_size, train_size=params:train_size} -> {test=student_performance_factors_test_data, train=student_performance_factors_train_data} [training]\n",
		out.String())
}
