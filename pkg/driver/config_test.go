package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untillpro/goutils/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jscore.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[inspect]
show_hidden = true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Inspect.ShowHidden)
	assert.Equal(t, 2, cfg.Inspect.MaxDepth)
	assert.Equal(t, "auto", cfg.Inspect.Color)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Host.Process)
}

func TestLoadConfigFull(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "verbose"

[inspect]
max_depth = 0
color = "off"

[host]
process = true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "verbose", cfg.Log.Level)
	assert.Equal(t, 0, cfg.Inspect.MaxDepth)
	assert.Equal(t, "off", cfg.Inspect.Color)
	assert.True(t, cfg.Host.Process)
}

func TestLoadConfigErrors(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":      "[log\n",
		"unknown key": "[inspect]\nwidth = 3\n",
		"empty level": "[log]\nlevel = \"\"\n",
		"bad level":   "[log]\nlevel = \"loud\"\n",
		"bad depth":   "[inspect]\nmax_depth = -1\n",
		"bad color":   "[inspect]\ncolor = \"rainbow\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestApplyLogLevel(t *testing.T) {
	defer logger.SetLogLevel(logger.LogLevelInfo)

	require.NoError(t, ApplyLogLevel("VERBOSE"))
	assert.True(t, logger.IsVerbose())
	require.NoError(t, ApplyLogLevel("error"))
	assert.False(t, logger.IsVerbose())
	require.Error(t, ApplyLogLevel("chatty"))
}
