// Package cli implements the dbc command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dbc/internal/config"
	"github.com/mesh-intelligence/dbc/internal/engine"
	"github.com/mesh-intelligence/dbc/internal/metrics"
	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errSystem marks failures of the environment rather than of the input.
var errSystem = errors.New("system error")

// annotationConfigOptional marks commands that run even when an explicit
// config file does not exist yet.
const annotationConfigOptional = "dbc/config-optional"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configFile string
	jsonMode   bool
	logLevel   string
}

// app carries the state shared by one command tree.
type app struct {
	flags      rootFlags
	configPath string
	config     types.Config
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// NewRootCmd creates the top-level "dbc" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{config: types.DefaultConfig(), logger: slog.Default()}

	root := &cobra.Command{
		Use:   "dbc",
		Short: "Design-by-contract checking for interface manifests",
		Long: "dbc declares interface contracts, builds implementations against them\n" +
			"and reports structural mismatches and missing operations.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/dbc/config.yaml)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newMatchCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, errSystem) {
		return exitSysError
	}
	return exitUserError
}

// setup resolves and loads the config file, applies flag overrides and
// builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	path, explicit, err := config.ResolveConfigFile(a.flags.configFile)
	if err != nil {
		return fmt.Errorf("%w: resolve config: %w", errSystem, err)
	}
	a.configPath = path

	required := explicit && cmd.Annotations[annotationConfigOptional] == ""
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.flags.logLevel)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.config = cfg
	a.logger = config.NewLogger(cfg, cmd.ErrOrStderr())
	a.logger.Debug("config loaded", "path", path, "mode", cfg.CheckMode())
	return nil
}

// engineOptions passes the loaded config and logger to built types.
func (a *app) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithConfig(a.config),
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
	}
}
