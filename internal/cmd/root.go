// Package cmd implements the evan command line interface.
package cmd

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/evan/internal/config"
	"github.com/dshills/evan/internal/logging"
)

// ErrScenariosFailed is returned when at least one scenario did not pass.
// The failures have already been reported on the command output.
var ErrScenariosFailed = errors.New("scenarios failed")

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app holds state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	build   BuildInfo

	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

// NewRootCommand builds the evan command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{
		v:      viper.New(),
		build:  build,
		cfg:    config.Default(),
		logger: logging.Discard(),
	}

	root := &cobra.Command{
		Use:   "evan",
		Short: "Hierarchical event dispatch scenarios",
		Long: `evan runs event dispatch scenarios against an in-process event space.

A scenario declares subscriptions on dot-separated paths and a list of
trigger, broadcast and off steps with the handler hits each step must
produce. Scenarios are TOML or JSON files; handlers may be Lua scripts.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./evan.toml or $HOME/.config/evan/evan.toml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("format", "", "output format: text or json")
	flags.String("color", "", "colorize output: auto, always or never")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("log.file", flags.Lookup("log-file"))
	_ = a.v.BindPFlag("output.format", flags.Lookup("format"))
	_ = a.v.BindPFlag("output.color", flags.Lookup("color"))

	root.AddCommand(
		newRunCommand(a),
		newPathsCommand(a),
		newVersionCommand(a),
	)
	return root
}

// initConfig loads configuration and opens the logger before any
// subcommand runs.
func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.Setup(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Log.File == "" {
		a.logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
		return nil
	}
	logger, closer, err := logging.Open(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logCloser = closer
	return nil
}
