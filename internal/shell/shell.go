package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/darwinyusef/termsim/internal/commands"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Observer is notified of every dispatched command.
type Observer interface {
	CommandExecuted(name string, known bool)
}

// Shell dispatches input lines to commands and records history.
// It is owned by a single session and is not safe for concurrent use.
type Shell struct {
	commands     *commands.Set
	env          termsim.Environment
	history      []string
	historyIndex int
	logger       termsim.Logger
	observer     Observer
}

// Option configures a Shell.
type Option func(*Shell)

// WithEnvironment replaces the default environment.
func WithEnvironment(env termsim.Environment) Option {
	return func(s *Shell) {
		s.env = env.Clone()
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l termsim.Logger) Option {
	return func(s *Shell) {
		s.logger = l
	}
}

// WithObserver registers an observer for dispatched commands.
func WithObserver(o Observer) Option {
	return func(s *Shell) {
		s.observer = o
	}
}

// New creates a Shell over set, seeded with the default environment.
func New(set *commands.Set, opts ...Option) *Shell {
	if set == nil {
		panic("command set cannot be nil")
	}
	s := &Shell{
		commands: set,
		env:      termsim.DefaultEnvironment(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Env returns the live session environment.
func (s *Shell) Env() termsim.Environment {
	return s.env
}

// ResetEnvironment replaces the environment with a copy of env.
func (s *Shell) ResetEnvironment(env termsim.Environment) {
	s.env = env.Clone()
}

// Commands returns the command set the shell dispatches to.
func (s *Shell) Commands() *commands.Set {
	return s.commands
}

// Parse tokenizes line and appends it to history when non-blank.
func (s *Shell) Parse(line string) (*ParsedCommand, bool) {
	p, ok := Parse(line)
	if !ok {
		return nil, false
	}
	s.history = append(s.history, p.Raw)
	s.historyIndex = len(s.history)
	return p, true
}

// Execute parses and runs line. Blank input yields empty output.
func (s *Shell) Execute(ctx context.Context, line string) (res commands.Result) {
	p, ok := s.Parse(line)
	if !ok {
		return commands.Output("")
	}

	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Error("command %q panicked: %v", p.Command, r)
			}
			res = commands.Output(fmt.Sprint(r))
		}
	}()

	if out, ok := s.builtin(p); ok {
		s.observe(p.Command, true)
		return commands.Output(out)
	}

	cmd, ok := s.commands.Lookup(p.Command)
	s.observe(p.Command, ok)
	if !ok {
		return commands.Output(fmt.Sprintf("bash: %s: command not found", p.Command))
	}
	if s.logger != nil {
		s.logger.Verbose("exec %s params=%v flags=%v", p.Command, p.Params, p.Flags)
	}
	return cmd.Execute(ctx, p.Params, p.Flags, s.env)
}

// CommitEdit saves an editor request produced by nano.
func (s *Shell) CommitEdit(req commands.EditorRequest, content string) commands.Result {
	return s.commands.CommitEdit(req, content)
}

func (s *Shell) observe(name string, known bool) {
	if s.observer != nil {
		s.observer.CommandExecuted(name, known)
	}
}

// History returns a copy of every non-blank line entered so far.
func (s *Shell) History() []string {
	return append([]string(nil), s.history...)
}

// Previous steps back through history. It returns false when already at the
// oldest entry.
func (s *Shell) Previous() (string, bool) {
	if s.historyIndex > 0 {
		s.historyIndex--
		return s.history[s.historyIndex], true
	}
	return "", false
}

// Next steps forward through history. Stepping past the newest entry yields
// an empty line.
func (s *Shell) Next() string {
	if s.historyIndex < len(s.history)-1 {
		s.historyIndex++
		return s.history[s.historyIndex]
	}
	s.historyIndex = len(s.history)
	return ""
}

type builtinKind int

const (
	builtinHelp builtinKind = iota
	builtinHistory
)

func lookupBuiltin(name string) (builtinKind, bool) {
	switch name {
	case "help":
		return builtinHelp, true
	case "history":
		return builtinHistory, true
	default:
		return 0, false
	}
}

func (s *Shell) builtin(p *ParsedCommand) (string, bool) {
	kind, ok := lookupBuiltin(p.Command)
	if !ok {
		return "", false
	}
	switch kind {
	case builtinHelp:
		return s.help(p.Params), true
	case builtinHistory:
		return s.formatHistory(), true
	}
	return "", false
}

func (s *Shell) help(params []string) string {
	if len(params) > 0 {
		if _, ok := lookupBuiltin(params[0]); ok {
			return builtinUsage(params[0])
		}
		cmd, ok := s.commands.Lookup(params[0])
		if !ok {
			return fmt.Sprintf("help: no help topics match '%s'", params[0])
		}
		return cmd.Help()
	}

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, k := range commands.Kinds() {
		fmt.Fprintf(&b, "  %-8s %s\n", k.String(), summary(s.commands.Get(k).Help()))
	}
	fmt.Fprintf(&b, "  %-8s %s\n", "help", "Show help for a command")
	fmt.Fprintf(&b, "  %-8s %s", "history", "Show command history")
	return b.String()
}

func builtinUsage(name string) string {
	if name == "history" {
		return "Usage: history\nShow command history"
	}
	return "Usage: help [COMMAND]\nShow help for a command"
}

// summary returns the description line of a usage text.
func summary(help string) string {
	lines := strings.Split(help, "\n")
	if len(lines) > 1 {
		return lines[1]
	}
	return lines[0]
}

func (s *Shell) formatHistory() string {
	lines := make([]string, 0, len(s.history))
	for i, h := range s.history {
		lines = append(lines, fmt.Sprintf("%5d  %s", i+1, h))
	}
	return strings.Join(lines, "\n")
}
