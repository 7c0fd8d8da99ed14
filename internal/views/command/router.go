package command

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned by Parse for blank input.
var ErrEmpty = errors.New("empty command")

// Parse splits a command line into words and checks the command, its
// subcommand and its required arguments against the command table.
func Parse(input string) ([]string, error) {
	args := strings.Fields(input)
	if len(args) == 0 {
		return nil, ErrEmpty
	}
	entry, ok := commands[args[0]]
	if !ok {
		return nil, fmt.Errorf("unknown command %q, type help for the list", args[0])
	}
	if len(entry.subs) > 0 && len(args) > 1 && !entry.hasSub(args[1]) {
		return nil, fmt.Errorf("unknown %s subcommand %q", args[0], args[1])
	}
	if len(args)-1 < entry.minArgs {
		return nil, fmt.Errorf("usage: %s", entry.usage)
	}
	return args, nil
}
