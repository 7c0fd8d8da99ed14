package ui

import (
	"fmt"
	"image/color"
	"time"

	"charm.land/lipgloss/v2"
)

var (
	ColorGreen  color.Color
	ColorRed    color.Color
	ColorYellow color.Color
	ColorBlue   color.Color
	ColorCyan   color.Color
	ColorDim    color.Color
	ColorWhite  color.Color
	ColorBorder color.Color
	ColorAccent color.Color
	ColorHeader color.Color

	StyleHeader        lipgloss.Style
	StyleActive        lipgloss.Style
	StyleInactive      lipgloss.Style
	StyleDim           lipgloss.Style
	StyleAccent        lipgloss.Style
	StyleError         lipgloss.Style
	StyleSuccess       lipgloss.Style
	StyleWarning       lipgloss.Style
	StyleSystem        lipgloss.Style
	StylePreviewBorder lipgloss.Style
	StyleDialog        lipgloss.Style
	StyleOffline       lipgloss.Style
)

func init() {
	Apply(T)
}

// Apply makes t the active theme and rebuilds every style from it.
func Apply(t Theme) {
	T = t

	ColorGreen = lipgloss.Color(t.Green)
	ColorRed = lipgloss.Color(t.Red)
	ColorYellow = lipgloss.Color(t.Yellow)
	ColorBlue = lipgloss.Color(t.Blue)
	ColorCyan = lipgloss.Color(t.Cyan)
	ColorDim = lipgloss.Color(t.Dim)
	ColorWhite = lipgloss.Color(t.Foreground)
	ColorBorder = lipgloss.Color(t.Border)
	ColorAccent = lipgloss.Color(t.Accent)
	ColorHeader = lipgloss.Color(t.BrightWhite)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHeader)

	StyleActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorGreen)

	StyleInactive = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorRed)

	StyleDim = lipgloss.NewStyle().
		Foreground(ColorDim)

	StyleAccent = lipgloss.NewStyle().
		Foreground(ColorAccent)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorRed)

	StyleSuccess = lipgloss.NewStyle().
		Foreground(ColorGreen)

	StyleWarning = lipgloss.NewStyle().
		Foreground(ColorYellow)

	StyleSystem = lipgloss.NewStyle().
		Foreground(ColorCyan)

	StylePreviewBorder = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorBorder).
		PaddingLeft(1)

	StyleDialog = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(1, 3)

	StyleOffline = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorRed).
		Border(lipgloss.NormalBorder()).
		BorderForeground(ColorRed).
		Padding(1, 4)
}

// LevelStyle returns the style for a log level.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "error":
		return StyleError
	case "warning":
		return StyleWarning
	case "success":
		return StyleSuccess
	case "system":
		return StyleSystem
	default:
		return lipgloss.NewStyle().Foreground(ColorWhite)
	}
}

// RunBadge renders the run state badge.
func RunBadge(running, starting bool) string {
	switch {
	case running:
		return StyleActive.Render("● Running")
	case starting:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorYellow).Render("◐ Starting")
	default:
		return StyleDim.Render("○ Ready")
	}
}

// FormatAge formats the time elapsed since t.
func FormatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	if d < time.Second {
		return "just now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// FormatTime formats a timestamp into a short time string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	now := time.Now()
	t = t.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	if now.Sub(t) < 7*24*time.Hour {
		return t.Format("Mon 15:04")
	}
	return t.Format("Jan 02")
}

// Truncate shortens s to maxLen runes on one line.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	for i, c := range r {
		if c == '\n' {
			r[i] = ' '
		}
	}
	if maxLen > 0 && len(r) > maxLen {
		return string(r[:maxLen-1]) + "…"
	}
	return string(r)
}
