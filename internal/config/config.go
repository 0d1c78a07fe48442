// Package config holds the settings of the evan command line tool.
//
// Settings come from, in increasing priority: built-in defaults, an
// optional config file (evan.toml, evan.yaml, ...), EVAN_* environment
// variables and command line flags bound through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by evan.
const EnvPrefix = "EVAN"

// Config holds all evan settings.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
	Watch  WatchConfig  `mapstructure:"watch"`
	Script ScriptConfig `mapstructure:"script"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	// Format is text or json.
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// File receives log output; empty logs to stderr.
	File string `mapstructure:"file"`
}

// OutputConfig controls how traces and reports are printed.
type OutputConfig struct {
	// Format is text or json.
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// Color is auto, always or never.
	Color string `mapstructure:"color" validate:"oneof=auto always never"`
	// Pretty indents JSON output.
	Pretty bool `mapstructure:"pretty"`
}

// WatchConfig controls re-running scenarios on file changes.
type WatchConfig struct {
	// Debounce is the quiet period after a change before re-running.
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

// ScriptConfig controls Lua handlers.
type ScriptConfig struct {
	// Timeout bounds a single Lua handler call; zero disables it.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
			Pretty: true,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Script: ScriptConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// SetDefaults registers the built-in configuration with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("output.pretty", d.Output.Pretty)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("script.timeout", d.Script.Timeout)
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "evan")
}

// Setup prepares v: defaults, environment lookup and the config file.
// With an empty cfgFile, a file named evan is searched for in the current
// directory and in ConfigDir; a missing file is not an error.
func Setup(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	// EVAN_OUTPUT_FORMAT for output.format
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("evan")
		v.AddConfigPath(".")
		if dir := ConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
