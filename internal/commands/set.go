package commands

import (
	"context"
	"errors"
	"time"

	"github.com/darwinyusef/termsim/internal/vfs"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Command is one simulated shell command.
type Command interface {
	// Execute runs the command. params and flags are pre-split by the parser.
	// env is the session environment and may be updated (cd maintains OLDPWD/PWD).
	Execute(ctx context.Context, params, flags []string, env termsim.Environment) Result

	// Help returns the usage text shown by `help <name>`.
	Help() string
}

// Set is the fixed registry of commands bound to one filesystem.
type Set struct {
	fs       *vfs.FileSystem
	now      func() time.Time
	commands [numKinds]Command
}

// SetOption configures a Set.
type SetOption func(*Set)

// WithClock sets the time source used when a listing needs a date for a node
// that has none.
func WithClock(now func() time.Time) SetOption {
	return func(s *Set) {
		s.now = now
	}
}

// NewSet binds every command to fs.
func NewSet(fs *vfs.FileSystem, opts ...SetOption) *Set {
	if fs == nil {
		panic("filesystem cannot be nil")
	}
	s := &Set{fs: fs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	for _, k := range Kinds() {
		s.commands[k] = s.build(k)
	}
	return s
}

func (s *Set) build(k Kind) Command {
	switch k {
	case KindLs:
		return &lsCommand{fs: s.fs, now: s.now}
	case KindCd:
		return &cdCommand{fs: s.fs}
	case KindMkdir:
		return &mkdirCommand{fs: s.fs}
	case KindTouch:
		return &touchCommand{fs: s.fs}
	case KindCat:
		return &catCommand{fs: s.fs}
	case KindPwd:
		return &pwdCommand{fs: s.fs}
	case KindEcho:
		return &echoCommand{}
	case KindClear:
		return &clearCommand{}
	case KindNano:
		return &nanoCommand{fs: s.fs}
	case KindRm:
		return &rmCommand{fs: s.fs}
	}
	panic("unhandled command kind " + k.String())
}

// Get returns the command for k.
func (s *Set) Get(k Kind) Command {
	return s.commands[k]
}

// Lookup returns the command invoked by name.
func (s *Set) Lookup(name string) (Command, bool) {
	k, ok := ParseKind(name)
	if !ok {
		return nil, false
	}
	return s.commands[k], true
}

// FileSystem returns the filesystem the commands operate on.
func (s *Set) FileSystem() *vfs.FileSystem {
	return s.fs
}

// CommitEdit saves the edited content of a file opened by nano and returns
// the confirmation or error text.
func (s *Set) CommitEdit(req EditorRequest, content string) Result {
	target := req.Path
	if target == "" {
		target = req.Filename
	}
	if err := s.fs.WriteFile(target, content, vfs.ModeOverwrite); err != nil {
		var pathErr *vfs.PathError
		if errors.As(err, &pathErr) {
			pathErr.Path = req.Filename
		}
		return Output(err.Error())
	}
	return Output("File " + req.Filename + " saved")
}
