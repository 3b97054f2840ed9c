package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ruminaider/toolkit/internal/paths"
	"github.com/spf13/viper"
)

// Selector modes accepted by the "mode" key.
const (
	ModeGlobal = "global"
	ModeLocal  = "local"
)

// EnvPrefix is prepended to every environment override (TOOLKIT_DIR, ...).
const EnvPrefix = "TOOLKIT"

// ErrInvalidMode is returned when "mode" is neither global nor local.
var ErrInvalidMode = errors.New("invalid selector mode")

// Config represents ~/.toolkit/config.yaml merged with TOOLKIT_* overrides.
type Config struct {
	Dir      string `mapstructure:"dir"`
	Registry string `mapstructure:"registry"`
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	Mouse    bool   `mapstructure:"mouse"`
}

// Global reports whether the default selector binds to the shared store.
func (c Config) Global() bool {
	return c.Mode == ModeGlobal
}

// ActiveProfileFile returns the path of the active-profile file.
func (c Config) ActiveProfileFile() string {
	return paths.ActiveProfileFileIn(c.Dir)
}

// Load reads configuration into v. An explicit cfgFile must exist; otherwise
// config.yaml is looked up in the toolkit dir and its absence is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("dir", paths.ToolkitDir())
	v.SetDefault("mode", ModeGlobal)
	v.SetDefault("log_level", "info")
	v.SetDefault("mouse", true)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(v.GetString("dir"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	// Registry and log file default relative to whatever dir ended up being.
	dir := v.GetString("dir")
	v.SetDefault("registry", paths.RegistryFileIn(dir))
	v.SetDefault("log_file", paths.LogFileIn(dir))

	cfg := Config{
		Dir:      dir,
		Registry: v.GetString("registry"),
		Mode:     strings.ToLower(strings.TrimSpace(v.GetString("mode"))),
		LogLevel: v.GetString("log_level"),
		LogFile:  v.GetString("log_file"),
		Mouse:    v.GetBool("mouse"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeGlobal, ModeLocal:
	default:
		return fmt.Errorf("%w %q (want %q or %q)", ErrInvalidMode, c.Mode, ModeGlobal, ModeLocal)
	}
	if c.Dir == "" {
		return fmt.Errorf("config: dir must not be empty")
	}
	return nil
}
