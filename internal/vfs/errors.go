package vfs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIsADirectory indicates a file operation was applied to a directory.
	ErrIsADirectory = errors.New("is a directory")

	// ErrNotADirectory indicates a directory operation was applied to a file.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNoSuchDirectory indicates the parent directory of the target is missing.
	ErrNoSuchDirectory = errors.New("no such directory")

	// ErrAlreadyExists indicates the target name is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// Op names the operation that failed. Its value is the tool name shown to the user.
type Op string

const (
	OpRead   Op = "cat"
	OpWrite  Op = "write"
	OpTouch  Op = "touch"
	OpMkdir  Op = "mkdir"
	OpList   Op = "ls"
	OpChdir  Op = "cd"
	OpRemove Op = "rm"
)

// PathError records a failed filesystem operation.
// Path is the path as the caller wrote it, not the resolved one.
type PathError struct {
	Op   Op
	Path string
	Err  error
}

func (e *PathError) Error() string {
	msg := describe(e.Err)
	switch e.Op {
	case OpWrite:
		return fmt.Sprintf("cannot create file '%s': %s", e.Path, msg)
	case OpTouch:
		return fmt.Sprintf("touch: cannot touch '%s': %s", e.Path, msg)
	case OpMkdir:
		return fmt.Sprintf("mkdir: cannot create directory '%s': %s", e.Path, msg)
	case OpList:
		return fmt.Sprintf("ls: cannot access '%s': %s", e.Path, msg)
	case OpRemove:
		return fmt.Sprintf("rm: cannot remove '%s': %s", e.Path, msg)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Path, msg)
	}
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// describe maps a sentinel to the text a POSIX shell prints for it.
func describe(err error) string {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoSuchDirectory):
		return "No such file or directory"
	case errors.Is(err, ErrIsADirectory):
		return "Is a directory"
	case errors.Is(err, ErrNotADirectory):
		return "Not a directory"
	case errors.Is(err, ErrAlreadyExists):
		return "File exists"
	case err == nil:
		return "unknown error"
	default:
		return err.Error()
	}
}
