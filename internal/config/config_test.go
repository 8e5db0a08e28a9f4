package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
store_path = "/srv/secrets.txt"

[repl]
prompt = "gosecret> "

[logs]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/secrets.txt", cfg.StorePath)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, "gosecret> ", cfg.REPL.Prompt)
	assert.Equal(t, 2, cfg.REPL.Preview)
	assert.True(t, cfg.REPL.ShowHelp)
	assert.Equal(t, "debug", cfg.Logs.Level)
	assert.Equal(t, "json", cfg.Logs.Format)
	assert.Equal(t, 5, cfg.Logs.MaxBackups)
}

func TestLoadNormalizes(t *testing.T) {
	path := writeConfig(t, `
max_results = -3

[repl]
preview = -1
show_help = false

[logs]
max_size_mb = 0
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MaxResults)
	assert.Equal(t, 0, cfg.REPL.Preview)
	assert.False(t, cfg.REPL.ShowHelp)
	assert.Equal(t, 10, cfg.Logs.MaxSizeMB)
}

func TestLoadParseError(t *testing.T) {
	path := writeConfig(t, "max_results = [")
	cfg, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Equal(t, Default(), cfg)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".passwords.txt"), ExpandHome("~/.passwords.txt"))
	assert.Equal(t, filepath.Clean(home), ExpandHome("~"))
	assert.Equal(t, "/tmp/x", ExpandHome("/tmp/x"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
	assert.Equal(t, "", ExpandHome(""))
}

func TestLogging(t *testing.T) {
	cfg := Default()
	cfg.Logs.Dir = "/var/log/gosecret"
	lc := cfg.Logging(true)
	assert.Equal(t, "/var/log/gosecret", lc.Dir)
	assert.Equal(t, "info", lc.Level)
	assert.True(t, lc.Debug)
	assert.Equal(t, 10, lc.MaxSizeMB)
}
