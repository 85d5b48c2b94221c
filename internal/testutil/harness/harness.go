// Package harness runs the application end to end against a temporary
// project directory. It lives apart from testutil so module tests can use
// the fixtures without importing the app.
package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/app"
	"github.com/vk/perfgrid/internal/hcl_adapter"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
	"github.com/vk/perfgrid/internal/testutil"
)

// ConfigFile is the project file name the harness points the app at unless
// the test config names another one.
const ConfigFile = "perfgrid.hcl"

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
	// Dir is the temporary project directory the files were written to.
	Dir string
}

// Path resolves a project-relative path inside the harness directory.
func (r *HarnessResult) Path(rel string) string {
	return filepath.Join(r.Dir, rel)
}

// PipelineModule registers a single prepared pipeline under a name.
type PipelineModule struct {
	Name     string
	Pipeline *pipeline.Pipeline
}

// Register implements registry.Module.
func (m PipelineModule) Register(r *registry.Registry) {
	r.RegisterPipeline(m.Name, m.Pipeline)
}

// WriteFiles writes files relative to dir, creating subdirectories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		filePath := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, cfg, modules...)
}

// RunIntegrationTestWithContext writes files into a fresh project directory,
// builds the app against it and runs it once with the caller's context.
// Relative paths in cfg are resolved against the project directory. With no
// modules given, the app registers its core modules.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()
	tmpDir := t.TempDir()
	WriteFiles(t, tmpDir, files)

	if cfg.ConfigPath == "" {
		cfg.ConfigPath = ConfigFile
	}
	cfg.ConfigPath = resolve(tmpDir, cfg.ConfigPath)
	if cfg.ParamsPath != "" {
		cfg.ParamsPath = resolve(tmpDir, cfg.ParamsPath)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	logBuffer := &testutil.SafeBuffer{}
	result := &HarnessResult{Dir: tmpDir}

	appConfig, err := app.NewConfig(cfg)
	if err == nil {
		result.App, err = newApp(logBuffer, appConfig, modules)
	}
	if err == nil {
		err = result.App.Run(ctx)
	}

	if os.Getenv("PERFGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	result.LogOutput = logBuffer.String()
	result.Err = err
	return result
}

// newApp builds the app and converts a startup panic into an error.
func newApp(logBuffer *testutil.SafeBuffer, cfg *app.Config, modules []registry.Module) (a *app.App, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()
	return app.NewApp(logBuffer, cfg, hcl_adapter.NewLoader(), modules...)
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
