package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvPath      = "MOCKDIR_PATH"
	EnvPort      = "MOCKDIR_PORT"
	EnvPublic    = "MOCKDIR_PUBLIC"
	EnvLogLevel  = "MOCKDIR_LOG_LEVEL"
	EnvLogFormat = "MOCKDIR_LOG_FORMAT"
	EnvLogFile   = "MOCKDIR_LOG_FILE"
	EnvNoColor   = "MOCKDIR_NO_COLOR"
	EnvConfig    = "MOCKDIR_CONFIG"
)

// LoadEnv applies MOCKDIR_* variables that are present.
// A malformed port is an error rather than being ignored.
func LoadEnv(cfg *ServerConfig) error {
	return loadEnv(cfg, os.LookupEnv)
}

func loadEnv(cfg *ServerConfig, lookup func(string) (string, bool)) error {
	str := func(env, key string, dst *string) {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
			cfg.source(key, SourceEnv)
		}
	}
	boolean := func(env, key string, dst *bool) {
		if v, ok := lookup(env); ok && v != "" {
			*dst = parseBool(v)
			cfg.source(key, SourceEnv)
		}
	}

	str(EnvPath, "path", &cfg.Path)
	boolean(EnvPublic, "public", &cfg.Public)
	str(EnvLogLevel, "logLevel", &cfg.LogLevel)
	str(EnvLogFormat, "logFormat", &cfg.LogFormat)
	str(EnvLogFile, "logFile", &cfg.LogFile)
	boolean(EnvNoColor, "noColor", &cfg.NoColor)

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		cfg.Port = port
		cfg.source("port", SourceEnv)
	}
	return nil
}

// ConfigFileFromEnv returns MOCKDIR_CONFIG, or "".
func ConfigFileFromEnv() string {
	return os.Getenv(EnvConfig)
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
