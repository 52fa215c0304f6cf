package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "mockdir.yaml", "path: fixtures\nport: 9300\npublic: true\nlogFormat: json\n")

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "fixtures", cfg.Path)
	assert.Equal(t, 9300, cfg.Port)
	assert.True(t, cfg.Public)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, SourceFile, cfg.Sources["port"])
	assert.Equal(t, SourceDefault, cfg.Sources["logLevel"])
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "mockdir.toml", "path = \"fixtures\"\nport = 9400\nlog_level = \"debug\"\nno_color = true\n")

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "fixtures", cfg.Path)
	assert.Equal(t, 9400, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.NoColor)
	assert.False(t, cfg.Public)
}

func TestLoadFile_EmptyYAML(t *testing.T) {
	path := writeFile(t, "empty.yml", "")

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantLine int
		wantMsg  string
	}{
		{"yaml unknown key", "a.yaml", "path: x\nbogus: 1\n", 2, "bogus"},
		{"yaml wrong type", "b.yaml", "port: lots\n", 1, "lots"},
		{"toml syntax", "c.toml", "port = = 1\n", -1, ""},
		{"toml unknown key", "d.toml", "bogus = 1\n", 0, "unknown keys: bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			err := LoadFile(Default(), path)
			require.Error(t, err)

			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, path, cerr.Path)
			if tt.wantLine < 0 {
				assert.Positive(t, cerr.Line)
			} else {
				assert.Equal(t, tt.wantLine, cerr.Line)
			}
			assert.Contains(t, cerr.Message, tt.wantMsg)
		})
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "mockdir.json", "{}")
	err := LoadFile(Default(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadFile_Missing(t *testing.T) {
	err := LoadFile(Default(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigError_Error(t *testing.T) {
	assert.Equal(t, "f.toml (line 3, column 7): bad", (&ConfigError{Path: "f.toml", Line: 3, Column: 7, Message: "bad"}).Error())
	assert.Equal(t, "f.yaml (line 2): bad", (&ConfigError{Path: "f.yaml", Line: 2, Message: "bad"}).Error())
	assert.Equal(t, "f.yaml: bad", (&ConfigError{Path: "f.yaml", Message: "bad"}).Error())
}
