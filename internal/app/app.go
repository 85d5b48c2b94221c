package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/perfgrid/internal/config"
	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/localsession"
	"github.com/vk/perfgrid/internal/registry"
	"github.com/vk/perfgrid/internal/session"
	"github.com/vk/perfgrid/internal/telemetry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	model    *config.Model
	params   map[string]any
	registry *registry.Registry
	sessions session.SessionFactory

	metricsRegistry *prometheus.Registry
	metrics         *telemetry.Metrics
	httpServer      *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, registry and
// metrics registry. With no modules given, the core modules are registered.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(appConfig, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load all configuration into the format-agnostic model first.
	cfgModel, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfgModel.Run == nil {
		cfgModel.Run = &config.RunSettings{}
	}
	logger.Debug("Configuration loaded and translated into unified model.", "datasets", len(cfgModel.Datasets), "parameters", len(cfgModel.Parameters))

	params := cfgModel.Parameters
	if appConfig.ParamsPath != "" {
		overrides, err := config.LoadParameterFile(appConfig.ParamsPath)
		if err != nil {
			return nil, err
		}
		params = config.MergeParameters(params, overrides)
		logger.Debug("Parameter overrides merged.", "path", appConfig.ParamsPath, "overrides", len(overrides))
	}

	reg := registry.New(ctx)
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules), "pipelines", reg.Names())

	// Validate the integrity of the registry against the configuration.
	if err := reg.ValidateRegistry(ctx, params, cfgModel.DatasetNames()); err != nil {
		return nil, err
	}
	logger.Debug("Registry validation passed.")

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector())
	metrics, err := telemetry.NewMetrics(metricsRegistry)
	if err != nil {
		return nil, err
	}

	return &App{
		outW:            outW,
		logger:          logger,
		config:          appConfig,
		model:           cfgModel,
		params:          params,
		registry:        reg,
		sessions:        &localsession.SessionFactory{},
		metricsRegistry: metricsRegistry,
		metrics:         metrics,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Parameters returns the effective project parameters.
func (a *App) Parameters() map[string]any {
	return a.params
}

// MetricsRegistry returns the registry backing the /metrics endpoint.
func (a *App) MetricsRegistry() *prometheus.Registry {
	return a.metricsRegistry
}
