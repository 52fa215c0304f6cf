package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML
// nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// ConfigError is a config file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s (line %d, column %d): %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s (line %d): %s", e.Path, e.Line, e.Message)
	}
	return e.Path + ": " + e.Message
}

// fileConfig mirrors ServerConfig with pointer fields so that keys absent
// from the file leave lower layers untouched.
type fileConfig struct {
	Path      *string `yaml:"path" toml:"path"`
	Port      *int    `yaml:"port" toml:"port"`
	Public    *bool   `yaml:"public" toml:"public"`
	LogLevel  *string `yaml:"logLevel" toml:"log_level"`
	LogFormat *string `yaml:"logFormat" toml:"log_format"`
	LogFile   *string `yaml:"logFile" toml:"log_file"`
	NoColor   *bool   `yaml:"noColor" toml:"no_color"`
}

// LoadFile reads path and applies the keys it sets onto cfg. The format is
// chosen by extension: .yaml/.yml or .toml. Unknown keys are rejected.
func LoadFile(cfg *ServerConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(path, data, &fc)
	case ".toml":
		err = decodeTOML(path, data, &fc)
	default:
		return fmt.Errorf("%w: %q (want .yaml, .yml or .toml)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return err
	}

	fc.apply(cfg)
	cfg.ConfigFile = path
	return nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func decodeYAML(path string, data []byte, fc *fileConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(fc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		cerr := &ConfigError{Path: path, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			cerr.Line, _ = strconv.Atoi(m[1])
		}
		return cerr
	}
	return nil
}

func decodeTOML(path string, data []byte, fc *fileConfig) error {
	md, err := toml.Decode(string(data), fc)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return &ConfigError{
				Path:    path,
				Line:    perr.Position.Line,
				Column:  perr.Position.Col,
				Message: perr.Message,
			}
		}
		return &ConfigError{Path: path, Message: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return &ConfigError{Path: path, Message: "unknown keys: " + strings.Join(keys, ", ")}
	}
	return nil
}

func (fc *fileConfig) apply(cfg *ServerConfig) {
	if fc.Path != nil {
		cfg.Path = *fc.Path
		cfg.source("path", SourceFile)
	}
	if fc.Port != nil {
		cfg.Port = *fc.Port
		cfg.source("port", SourceFile)
	}
	if fc.Public != nil {
		cfg.Public = *fc.Public
		cfg.source("public", SourceFile)
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
		cfg.source("logLevel", SourceFile)
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
		cfg.source("logFormat", SourceFile)
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
		cfg.source("logFile", SourceFile)
	}
	if fc.NoColor != nil {
		cfg.NoColor = *fc.NoColor
		cfg.source("noColor", SourceFile)
	}
}
