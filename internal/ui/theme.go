package ui

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Theme holds the resolved color palette as hex strings.
type Theme struct {
	Foreground          string
	Background          string
	Accent              string
	SelectionForeground string
	SelectionBackground string
	Dim                 string
	Red                 string
	Green               string
	Yellow              string
	Blue                string
	Cyan                string
	Border              string
	BrightWhite         string
}

// T is the active theme.
var T = defaultTheme()

// themeFile matches the terminal colors.toml format (accent, foreground,
// background, selection_*, color0..color15).
type themeFile struct {
	Accent              string `toml:"accent"`
	Foreground          string `toml:"foreground"`
	Background          string `toml:"background"`
	SelectionForeground string `toml:"selection_foreground"`
	SelectionBackground string `toml:"selection_background"`
	Color0              string `toml:"color0"`
	Color1              string `toml:"color1"`
	Color2              string `toml:"color2"`
	Color3              string `toml:"color3"`
	Color4              string `toml:"color4"`
	Color6              string `toml:"color6"`
	Color8              string `toml:"color8"`
	Color15             string `toml:"color15"`
}

// defaultTheme returns the built-in fallback theme.
func defaultTheme() Theme {
	return Theme{
		Foreground:          "#e5e7eb",
		Background:          "#1a1b26",
		Accent:              "#8b5cf6",
		SelectionForeground: "#e5e7eb",
		SelectionBackground: "#8b5cf6",
		Dim:                 "#6b7280",
		Red:                 "#ef4444",
		Green:               "#22c55e",
		Yellow:              "#eab308",
		Blue:                "#3b82f6",
		Cyan:                "#06b6d4",
		Border:              "#374151",
		BrightWhite:         "#f9fafb",
	}
}

// ThemePath returns the default theme file for appName.
func ThemePath(appName string) string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "colors.toml")
}

// LoadTheme reads the colors file at path, falling back to defaults for a
// missing file or missing keys.
func LoadTheme(path string) Theme {
	t := defaultTheme()

	var tf themeFile
	if _, err := toml.DecodeFile(path, &tf); err != nil {
		return t
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&t.Foreground, tf.Foreground)
	set(&t.Background, tf.Background)
	set(&t.Accent, tf.Accent)
	set(&t.SelectionForeground, tf.SelectionForeground)
	set(&t.SelectionBackground, tf.SelectionBackground)
	set(&t.Dim, tf.Color0)
	set(&t.Red, tf.Color1)
	set(&t.Green, tf.Color2)
	set(&t.Yellow, tf.Color3)
	set(&t.Blue, tf.Color4)
	set(&t.Cyan, tf.Color6)
	set(&t.Border, tf.Color8)
	set(&t.BrightWhite, tf.Color15)
	return t
}
