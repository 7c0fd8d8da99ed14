package control

import "strings"

// Level is the severity of a log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSystem  Level = "system"
	LevelSuccess Level = "success"
)

// ParseLevel maps a wire level ("INFO", "ERROR", ...) to a Level. Unknown
// names are kept, lowercased.
func ParseLevel(s string) Level {
	switch l := strings.ToLower(strings.TrimSpace(s)); l {
	case "", "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarning
	case "error", "critical":
		return LevelError
	default:
		return Level(l)
	}
}

// Entry is one immutable log line.
type Entry struct {
	Message   string
	Level     Level
	Timestamp string
}

// LogStream is the ordered operator log. Entries are never deduplicated or
// reordered, and only ever removed all at once.
type LogStream struct {
	entries []Entry
	rev     uint64
}

// Append adds an entry at the tail.
func (l *LogStream) Append(message string, level Level, timestamp string) {
	l.entries = append(l.entries, Entry{Message: message, Level: level, Timestamp: timestamp})
	l.rev++
}

// Clear removes every entry.
func (l *LogStream) Clear() {
	l.entries = nil
	l.rev++
}

// Entries returns a copy of the log in display order.
func (l *LogStream) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *LogStream) Len() int { return len(l.entries) }

// Revision changes on every mutation; views use it to know when to re-render.
func (l *LogStream) Revision() uint64 { return l.rev }

// Contains reports whether some entry has exactly message.
func (l *LogStream) Contains(message string) bool {
	for _, e := range l.entries {
		if e.Message == message {
			return true
		}
	}
	return false
}
