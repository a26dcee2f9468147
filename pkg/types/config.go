package types

import "errors"

// Config controls how much checking the engine performs and how it logs.
type Config struct {
	Mode      string `json:"mode" yaml:"mode"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// Checking modes.
const (
	// ModeEnforce validates structure on install and wraps every call.
	ModeEnforce = "enforce"
	// ModeStructural validates structure on install but installs bodies
	// without call-time wrappers.
	ModeStructural = "structural"
	// ModeOff disables all checking, including the instantiation gate.
	ModeOff = "off"
)

// Log settings.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config validation errors.
var (
	ErrModeUnknown      = errors.New("unknown checking mode")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

var knownModes = map[string]bool{
	ModeEnforce:    true,
	ModeStructural: true,
	ModeOff:        true,
}

var knownLogLevels = map[string]bool{
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

var knownLogFormats = map[string]bool{
	LogFormatText: true,
	LogFormatJSON: true,
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeEnforce,
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
	}
}

// Validate checks that the Config is well-formed. Empty fields are allowed
// and mean the default. It returns a sentinel error from this package on
// failure.
func (c Config) Validate() error {
	if c.Mode != "" && !knownModes[c.Mode] {
		return ErrModeUnknown
	}
	if c.LogLevel != "" && !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if c.LogFormat != "" && !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	return nil
}

// CheckMode returns the effective checking mode.
func (c Config) CheckMode() string {
	if c.Mode == "" {
		return ModeEnforce
	}
	return c.Mode
}
