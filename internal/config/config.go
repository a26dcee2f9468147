package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Config keys.
const (
	KeyMode      = "mode"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
)

// EnvPrefix prefixes environment overrides, e.g. DBC_MODE.
const EnvPrefix = "DBC"

// Load reads configuration from path using Viper. Defaults come from
// types.DefaultConfig and DBC_* environment variables override file values.
// An empty path, or a missing file when required is false, yields the
// defaults plus environment overrides.
func Load(path string, required bool) (types.Config, error) {
	def := types.DefaultConfig()

	v := viper.New()
	v.SetDefault(KeyMode, def.Mode)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !isNotFound(err) || required {
				return types.Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := types.Config{
		Mode:      strings.ToLower(v.GetString(KeyMode)),
		LogLevel:  strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat: strings.ToLower(v.GetString(KeyLogFormat)),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

// NewLogger builds the slog logger described by cfg, writing to w (stderr
// when nil).
func NewLogger(cfg types.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level(cfg.LogLevel)}
	if cfg.LogFormat == types.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func level(s string) slog.Level {
	switch s {
	case types.LogLevelDebug:
		return slog.LevelDebug
	case types.LogLevelWarn:
		return slog.LevelWarn
	case types.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
