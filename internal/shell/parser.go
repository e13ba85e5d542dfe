// Package shell turns raw input lines into command invocations.
//
// A Shell owns the session environment and input history and dispatches
// parsed lines to a commands.Set. Unknown commands and panicking commands
// come back as output text; Execute never fails.
package shell

import "strings"

// ParsedCommand is one tokenized input line.
// Flags and Params partition Args by a leading '-'; Args keeps both in order.
type ParsedCommand struct {
	Raw     string
	Command string
	Args    []string
	Flags   []string
	Params  []string
}

// Parse splits line on runs of whitespace. It returns false for blank input.
func Parse(line string) (*ParsedCommand, bool) {
	raw := strings.TrimSpace(line)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, false
	}

	p := &ParsedCommand{
		Raw:     raw,
		Command: fields[0],
		Args:    fields[1:],
		Flags:   []string{},
		Params:  []string{},
	}
	for _, arg := range p.Args {
		if strings.HasPrefix(arg, "-") {
			p.Flags = append(p.Flags, arg)
		} else {
			p.Params = append(p.Params, arg)
		}
	}
	return p, true
}
