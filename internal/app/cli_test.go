package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[server]
url = "http://bots.internal:5000"

[poll]
status_interval = "2s"
`), 0o644))

	var got Options
	app := NewCLI(func(o Options) error {
		got = o
		return nil
	})
	err := app.Run([]string{AppName,
		"--config", cfgPath,
		"--server", "http://127.0.0.1:9000/",
		"--log-level", "debug",
		"--log-file", filepath.Join(dir, "logs", "botdeck.log"),
		"--theme", filepath.Join(dir, "colors.toml"),
	})
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000", got.Config.Server.URL)
	assert.Equal(t, 2*time.Second, got.Config.Poll.StatusInterval)
	assert.Equal(t, "debug", got.Config.Log.Level)
	assert.Equal(t, filepath.Join(dir, "colors.toml"), got.ThemePath)
	assert.NotNil(t, got.Logger)
	assert.FileExists(t, filepath.Join(dir, "logs", "botdeck.log"))
}

func TestCLIBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[poll]\nstatus_interval = \"soon\"\n"), 0o644))

	called := false
	app := NewCLI(func(Options) error {
		called = true
		return nil
	})
	err := app.Run([]string{AppName, "--config", cfgPath, "--log-file", filepath.Join(dir, "x.log")})
	assert.Error(t, err)
	assert.False(t, called)
}
