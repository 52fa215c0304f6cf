package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadEnv(t *testing.T) {
	cfg := Default()
	err := loadEnv(cfg, envMap(map[string]string{
		EnvPath:      "/srv/mocks",
		EnvPort:      "9100",
		EnvPublic:    "yes",
		EnvLogLevel:  "warn",
		EnvLogFormat: "json",
		EnvLogFile:   "/var/log/mockdir.log",
		EnvNoColor:   "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/srv/mocks", cfg.Path)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.Public)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/var/log/mockdir.log", cfg.LogFile)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, SourceEnv, cfg.Sources["port"])
}

func TestLoadEnv_UnsetLeavesValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, loadEnv(cfg, envMap(map[string]string{EnvPath: ""})))

	assert.Equal(t, DefaultPath, cfg.Path)
	assert.Equal(t, SourceDefault, cfg.Sources["path"])
}

func TestLoadEnv_InvalidPort(t *testing.T) {
	cfg := Default()
	err := loadEnv(cfg, envMap(map[string]string{EnvPort: "eighty"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPort)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		assert.True(t, parseBool(v), v)
	}
	for _, v := range []string{"0", "false", "no", "off", "maybe"} {
		assert.False(t, parseBool(v), v)
	}
}

func TestLoadEnv_FromProcess(t *testing.T) {
	t.Setenv(EnvPort, "9200")
	t.Setenv(EnvConfig, "/etc/mockdir.yaml")

	cfg := Default()
	require.NoError(t, LoadEnv(cfg))
	assert.Equal(t, 9200, cfg.Port)
	assert.Equal(t, "/etc/mockdir.yaml", ConfigFileFromEnv())
}
