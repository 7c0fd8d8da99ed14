package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultServerURL        = "http://127.0.0.1:5000"
	DefaultHTTPTimeout      = 15 * time.Second
	DefaultStatusInterval   = 5 * time.Second
	DefaultSnapshotInterval = 3 * time.Second
)

// tomlConfig mirrors the TOML config structure.
type tomlConfig struct {
	Server struct {
		URL         string `toml:"url"`
		Token       string `toml:"token"`
		HTTPTimeout string `toml:"http_timeout"`
	} `toml:"server"`
	Poll struct {
		StatusInterval   string `toml:"status_interval"`
		SnapshotInterval string `toml:"snapshot_interval"`
	} `toml:"poll"`
	Transfer struct {
		DownloadDir string `toml:"download_dir"`
		ImportDir   string `toml:"import_dir"`
	} `toml:"transfer"`
	Log struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath(appName string) string {
	if p := os.Getenv("BOTDECK_CONFIG"); p != "" {
		return p
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "config.toml")
}

// DefaultConfig returns the built-in configuration for appName.
func DefaultConfig(appName string) Config {
	home, _ := os.UserHomeDir()
	var cfg Config
	cfg.Server.URL = DefaultServerURL
	cfg.Server.HTTPTimeout = DefaultHTTPTimeout
	cfg.Poll.StatusInterval = DefaultStatusInterval
	cfg.Poll.SnapshotInterval = DefaultSnapshotInterval
	cfg.Transfer.DownloadDir = filepath.Join(home, "Downloads")
	cfg.Transfer.ImportDir = filepath.Join(home, ".local", "share", appName, "sessions")
	cfg.Log.Level = "info"
	cfg.Log.File = filepath.Join(home, ".local", "state", appName, appName+".log")
	return cfg
}

// LoadConfig reads the TOML config at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(appName, path string) (Config, error) {
	cfg := DefaultConfig(appName)

	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := tc.apply(&cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("BOTDECK_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("BOTDECK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	cfg.Server.URL = strings.TrimRight(cfg.Server.URL, "/")
	return cfg, nil
}

func (tc tomlConfig) apply(cfg *Config) error {
	if tc.Server.URL != "" {
		cfg.Server.URL = tc.Server.URL
	}
	if tc.Server.Token != "" {
		cfg.Server.Token = tc.Server.Token
	}
	if tc.Transfer.DownloadDir != "" {
		cfg.Transfer.DownloadDir = expandHome(tc.Transfer.DownloadDir)
	}
	if tc.Transfer.ImportDir != "" {
		cfg.Transfer.ImportDir = expandHome(tc.Transfer.ImportDir)
	}
	if tc.Log.Level != "" {
		cfg.Log.Level = tc.Log.Level
	}
	if tc.Log.File != "" {
		cfg.Log.File = expandHome(tc.Log.File)
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"server.http_timeout", tc.Server.HTTPTimeout, &cfg.Server.HTTPTimeout},
		{"poll.status_interval", tc.Poll.StatusInterval, &cfg.Poll.StatusInterval},
		{"poll.snapshot_interval", tc.Poll.SnapshotInterval, &cfg.Poll.SnapshotInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s: must be positive", d.key)
		}
		*d.dst = v
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
