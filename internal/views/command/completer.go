package command

import (
	"sort"
	"strings"
)

// Candidate is a completion option with a description.
type Candidate struct {
	Value string
	Desc  string
	// Warn marks an option that would be refused right now.
	Warn bool
}

// Hint annotates a profile or archive offered as an argument.
type Hint struct {
	Value string
	Note  string
	Warn  bool
}

// Completer provides live completion for the command line.
type Completer struct {
	profiles []Hint
	archives []Hint
	bound    bool
	busy     bool
}

// NewCompleter creates a completer.
func NewCompleter() *Completer {
	return &Completer{}
}

// SetProfiles updates the profiles offered as arguments.
func (c *Completer) SetProfiles(hints []Hint) { c.profiles = hints }

// SetArchives updates the archives offered to import.
func (c *Completer) SetArchives(hints []Hint) { c.archives = hints }

// SetSession records whether a profile is bound and whether its bot is
// running, so commands that would be refused are flagged.
func (c *Completer) SetSession(bound, busy bool) {
	c.bound = bound
	c.busy = busy
}

// requirement is what a command needs from the session to be accepted.
type requirement int

const (
	needsNothing requirement = iota
	needsProfile
	needsIdleProfile
)

type cmdEntry struct {
	desc  string
	usage string
	subs  []subEntry
	arg   string
	// minArgs counts the words required after the command name.
	minArgs int
	needs   requirement
}

type subEntry struct {
	name string
	desc string
	arg  string
}

const (
	argProfile = "profile"
	argArchive = "archive"
)

var commands = map[string]cmdEntry{
	"select": {desc: "Bind a profile", usage: "select <profile>", arg: argProfile, minArgs: 1},
	"profile": {desc: "Manage profiles", usage: "profile new | profile delete [name]", minArgs: 1, subs: []subEntry{
		{"new", "Create a profile", ""},
		{"delete", "Delete a profile", argProfile},
	}},
	"run":   {desc: "Start the bot (run <url> [count] <comment>)", needs: needsIdleProfile},
	"login": {desc: "Open a manual login", needs: needsProfile},
	"live": {desc: "Live view", needs: needsProfile, subs: []subEntry{
		{"on", "Open the live view", ""},
		{"off", "Close the live view", ""},
	}},
	"export": {desc: "Download the session archive", needs: needsIdleProfile},
	"import": {desc: "Upload a session archive", arg: argArchive, needs: needsIdleProfile},
	"logs": {desc: "Operator log", usage: "logs clear", minArgs: 1, subs: []subEntry{
		{"clear", "Clear the log", ""},
	}},
	"refresh": {desc: "Reload profiles and status"},
	"help":    {desc: "Show help"},
	"version": {desc: "Show version"},
	"quit":    {desc: "Quit"},
}

func (e cmdEntry) hasSub(name string) bool {
	for _, s := range e.subs {
		if s.name == name {
			return true
		}
	}
	return false
}

// blocked explains why the session would refuse the command, or "".
func (c *Completer) blocked(e cmdEntry) string {
	switch {
	case e.needs != needsNothing && !c.bound:
		return "select a profile first"
	case e.needs == needsIdleProfile && c.busy:
		return "bot is running"
	}
	return ""
}

// Complete returns candidates for the current input.
func (c *Completer) Complete(input string) []Candidate {
	parts := strings.Fields(input)
	trailing := strings.HasSuffix(input, " ")

	if len(parts) == 0 || (len(parts) == 1 && !trailing) {
		prefix := ""
		if len(parts) == 1 {
			prefix = parts[0]
		}
		return c.topLevel(prefix)
	}

	entry, ok := commands[parts[0]]
	if !ok {
		return nil
	}

	if len(entry.subs) == 0 {
		switch {
		case entry.arg == "":
			return nil
		case len(parts) == 1 && trailing:
			return c.dynamic(entry.arg, "")
		case len(parts) == 2 && !trailing:
			return c.dynamic(entry.arg, parts[1])
		}
		return nil
	}

	if len(parts) == 1 && trailing {
		return subCandidates(entry.subs, "")
	}
	if len(parts) == 2 && !trailing {
		return subCandidates(entry.subs, parts[1])
	}

	if (len(parts) == 2 && trailing) || (len(parts) == 3 && !trailing) {
		prefix := ""
		if len(parts) == 3 {
			prefix = parts[2]
		}
		for _, s := range entry.subs {
			if s.name == parts[1] && s.arg != "" {
				return c.dynamic(s.arg, prefix)
			}
		}
	}
	return nil
}

func (c *Completer) topLevel(prefix string) []Candidate {
	keys := make([]string, 0, len(commands))
	for k := range commands {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := make([]Candidate, 0, len(keys))
	for _, k := range keys {
		e := commands[k]
		cand := Candidate{Value: k, Desc: e.desc}
		if why := c.blocked(e); why != "" {
			cand.Desc += " · " + why
			cand.Warn = true
		}
		result = append(result, cand)
	}
	return result
}

func subCandidates(subs []subEntry, prefix string) []Candidate {
	var result []Candidate
	for _, s := range subs {
		if strings.HasPrefix(s.name, prefix) {
			result = append(result, Candidate{Value: s.name, Desc: s.desc})
		}
	}
	return result
}

func (c *Completer) dynamic(kind, prefix string) []Candidate {
	hints := c.profiles
	if kind == argArchive {
		hints = c.archives
	}
	var result []Candidate
	for _, h := range hints {
		if strings.HasPrefix(h.Value, prefix) {
			desc := h.Note
			if desc == "" {
				desc = kind
			}
			result = append(result, Candidate{Value: h.Value, Desc: desc, Warn: h.Warn})
		}
	}
	return result
}
