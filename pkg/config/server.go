package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/getmockd/mockdir/pkg/logging"
)

// Defaults.
const (
	DefaultPath      = "mock_data"
	DefaultPort      = 8085
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Where a value came from.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Flag names shared by the CLI and ApplyFlags.
const (
	FlagPath      = "path"
	FlagPort      = "port"
	FlagPublic    = "public"
	FlagConfig    = "config"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagLogFile   = "log-file"
	FlagNoColor   = "no-color"
)

// ServerConfig is the merged runtime configuration.
type ServerConfig struct {
	// Path is the mock data root. Relative paths resolve against BaseDir.
	Path string `yaml:"path" toml:"path"`

	Port int `yaml:"port" toml:"port"`

	// Public binds 0.0.0.0 instead of 127.0.0.1.
	Public bool `yaml:"public" toml:"public"`

	LogLevel  string `yaml:"logLevel" toml:"log_level"`
	LogFormat string `yaml:"logFormat" toml:"log_format"`
	LogFile   string `yaml:"logFile" toml:"log_file"`
	NoColor   bool   `yaml:"noColor" toml:"no_color"`

	// ConfigFile is the file the file layer was read from, if any.
	ConfigFile string `yaml:"-" toml:"-"`

	// BaseDir anchors a relative Path. Usually the executable's directory.
	BaseDir string `yaml:"-" toml:"-"`

	// Sources maps field keys to the layer that set them.
	Sources map[string]string `yaml:"-" toml:"-"`
}

// Default returns the built-in configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Path:      DefaultPath,
		Port:      DefaultPort,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Sources: map[string]string{
			"path":      SourceDefault,
			"port":      SourceDefault,
			"public":    SourceDefault,
			"logLevel":  SourceDefault,
			"logFormat": SourceDefault,
			"logFile":   SourceDefault,
			"noColor":   SourceDefault,
		},
	}
}

// Addr returns the listen address for the configured port and visibility.
func (c *ServerConfig) Addr() string {
	host := "127.0.0.1"
	if c.Public {
		host = "0.0.0.0"
	}
	return host + ":" + strconv.Itoa(c.Port)
}

// Mode returns "public" or "local".
func (c *ServerConfig) Mode() string {
	if c.Public {
		return "public"
	}
	return "local"
}

// Logging builds the logging configuration. Debug logs carry their source
// position.
func (c *ServerConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	cfg.AddSource = cfg.Level <= logging.LevelDebug
	cfg.Format = logging.ParseFormat(c.LogFormat)
	cfg.File = c.LogFile
	return cfg
}

// Validate checks field values after all layers are merged.
func (c *ServerConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Path) == "" {
		errs = append(errs, errors.New("path must not be empty"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 0-65535", c.Port))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// ApplyFlags copies flags the user actually set on the command line.
func (c *ServerConfig) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	set := func(name, key string, apply func() error) {
		if err != nil || !flags.Changed(name) {
			return
		}
		if err = apply(); err == nil {
			c.source(key, SourceFlag)
		}
	}

	set(FlagPath, "path", func() (e error) { c.Path, e = flags.GetString(FlagPath); return })
	set(FlagPort, "port", func() (e error) { c.Port, e = flags.GetInt(FlagPort); return })
	set(FlagPublic, "public", func() (e error) { c.Public, e = flags.GetBool(FlagPublic); return })
	set(FlagLogLevel, "logLevel", func() (e error) { c.LogLevel, e = flags.GetString(FlagLogLevel); return })
	set(FlagLogFormat, "logFormat", func() (e error) { c.LogFormat, e = flags.GetString(FlagLogFormat); return })
	set(FlagLogFile, "logFile", func() (e error) { c.LogFile, e = flags.GetString(FlagLogFile); return })
	set(FlagNoColor, "noColor", func() (e error) { c.NoColor, e = flags.GetBool(FlagNoColor); return })
	return err
}

func (c *ServerConfig) source(key, src string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = src
}
