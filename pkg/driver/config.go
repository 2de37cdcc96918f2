package driver

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/untillpro/goutils/logger"
)

// Config is the driver configuration, usually read from a jscore.toml file.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Inspect InspectConfig `toml:"inspect"`
	Host    HostConfig    `toml:"host"`
}

type LogConfig struct {
	// Level is one of none, error, warning, info, verbose, trace.
	Level string `toml:"level"`
}

type InspectConfig struct {
	ShowHidden bool   `toml:"show_hidden"`
	MaxDepth   int    `toml:"max_depth"`
	Color      string `toml:"color"` // auto, on or off
}

// HostConfig controls the non-standard globals the driver installs on top
// of the standard library.
type HostConfig struct {
	Process bool     `toml:"process"`
	Argv    []string `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Log:     LogConfig{Level: "info"},
		Inspect: InspectConfig{MaxDepth: 2, Color: "auto"},
	}
}

// LoadConfig reads path on top of DefaultConfig. Keys absent from the file
// keep their defaults; unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("log", "level") && strings.TrimSpace(cfg.Log.Level) == "" {
		return Config{}, fmt.Errorf("%s: empty [log].level", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, ok := logLevels[strings.ToLower(c.Log.Level)]; !ok {
		return fmt.Errorf("invalid [log].level %q", c.Log.Level)
	}
	if c.Inspect.MaxDepth < 0 {
		return fmt.Errorf("invalid [inspect].max_depth %d", c.Inspect.MaxDepth)
	}
	switch c.Inspect.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid [inspect].color %q", c.Inspect.Color)
	}
	return nil
}

var logLevels = map[string]func(){
	"none":    func() { logger.SetLogLevel(logger.LogLevelNone) },
	"error":   func() { logger.SetLogLevel(logger.LogLevelError) },
	"warning": func() { logger.SetLogLevel(logger.LogLevelWarning) },
	"info":    func() { logger.SetLogLevel(logger.LogLevelInfo) },
	"verbose": func() { logger.SetLogLevel(logger.LogLevelVerbose) },
	"trace":   func() { logger.SetLogLevel(logger.LogLevelTrace) },
}

// ApplyLogLevel sets the process-wide logger level by name.
func ApplyLogLevel(level string) error {
	set, ok := logLevels[strings.ToLower(level)]
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}
	set()
	return nil
}
