package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/perfgrid/internal/app"
)

// Commands understood by Parse.
const (
	CommandRun  = "run"
	CommandPlan = "plan"
)

// DefaultConfigPath is used when no CONFIG_PATH argument is given.
const DefaultConfigPath = "perfgrid.hcl"

// Invocation is a parsed command line.
type Invocation struct {
	Command string
	Config  *app.Config
}

// flags holds the raw flag values shared by all commands.
type flags struct {
	configPath      string
	paramsPath      string
	pipeline        string
	runner          string
	workers         int
	onlyNodes       []string
	tags            []string
	fromNodes       []string
	toNodes         []string
	toOutputs       []string
	trace           bool
	logFormat       string
	logLevel        string
	healthcheckPort int
}

// Parse processes command-line arguments. It returns the parsed invocation,
// a boolean indicating if the program should exit cleanly (help was
// requested), or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f   flags
		inv *Invocation
	)

	rootCmd := &cobra.Command{
		Use:   "perfgrid",
		Short: "Runs the student performance pipelines",
		Long: `perfgrid runs a graph of named nodes over a catalog of datasets.
Node order is derived from the datasets each node consumes and produces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// cobra falls back to os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(output)
	rootCmd.SetErr(output)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Path to the project .hcl file or a directory of .hcl files.")
	pf.StringVar(&f.paramsPath, "params", "", "YAML file whose values override the project parameters.")
	pf.StringVarP(&f.pipeline, "pipeline", "p", "", "Name of the pipeline to use. Defaults to the run block, then __default__.")
	pf.StringVar(&f.runner, "runner", "", "Runner to use. Options: 'sequential' or 'parallel'.")
	pf.IntVar(&f.workers, "workers", 0, "Number of concurrent workers for the parallel runner.")
	pf.StringSliceVar(&f.onlyNodes, "only-nodes", nil, "Run only the named nodes.")
	pf.StringSliceVar(&f.tags, "tags", nil, "Run only the nodes carrying any of these tags.")
	pf.StringSliceVar(&f.fromNodes, "from-nodes", nil, "Run the named nodes and everything downstream of them.")
	pf.StringSliceVar(&f.toNodes, "to-nodes", nil, "Run the named nodes and everything upstream of them.")
	pf.StringSliceVar(&f.toOutputs, "to-outputs", nil, "Run only what is needed to produce these datasets.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	runCmd := &cobra.Command{
		Use:   "run [CONFIG_PATH]",
		Short: "Run a pipeline and persist the datasets declared in the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(args)
			if err != nil {
				return err
			}
			inv = &Invocation{Command: CommandRun, Config: cfg}
			return nil
		},
	}
	runCmd.Flags().BoolVar(&f.trace, "trace", false, "Write OpenTelemetry spans for the run and each node to the output.")
	runCmd.Flags().IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health and metrics server. 0 is disabled.")

	planCmd := &cobra.Command{
		Use:   "plan [CONFIG_PATH]",
		Short: "Print the execution order of a pipeline without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(args)
			if err != nil {
				return err
			}
			inv = &Invocation{Command: CommandPlan, Config: cfg}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, planCmd)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if inv == nil {
		// Help was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", inv.Command, "config_path", inv.Config.ConfigPath)
	return inv, false, nil
}

func (f *flags) config(args []string) (*app.Config, error) {
	path := f.configPath
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		path = DefaultConfigPath
	}
	slog.Debug("Config path determined.", "path", path)

	cfg, err := app.NewConfig(app.Config{
		ConfigPath:      path,
		ParamsPath:      f.paramsPath,
		Pipeline:        f.pipeline,
		Runner:          strings.ToLower(f.runner),
		Workers:         f.workers,
		OnlyNodes:       f.onlyNodes,
		Tags:            f.tags,
		FromNodes:       f.fromNodes,
		ToNodes:         f.toNodes,
		ToOutputs:       f.toOutputs,
		Trace:           f.trace,
		LogFormat:       strings.ToLower(f.logFormat),
		LogLevel:        strings.ToLower(f.logLevel),
		HealthcheckPort: f.healthcheckPort,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, nil
}
