package commands

import (
	"context"
	"strings"

	"github.com/darwinyusef/termsim/internal/vfs"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

type mkdirCommand struct {
	fs *vfs.FileSystem
}

func (c *mkdirCommand) Execute(_ context.Context, params, flags []string, _ termsim.Environment) Result {
	if len(params) == 0 {
		return Output("mkdir: missing operand")
	}
	parents := ParseFlags(flags).Has("p", "parents")

	var errs []string
	for _, p := range params {
		var err error
		if parents {
			err = c.mkdirAll(p)
		} else {
			err = c.fs.CreateDirectory(p)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return Output(strings.Join(errs, "\n"))
}

// mkdirAll creates every missing directory along path.
func (c *mkdirCommand) mkdirAll(path string) error {
	current := ""
	for _, seg := range strings.Split(c.fs.Resolve(path), "/") {
		if seg == "" {
			continue
		}
		current += "/" + seg
		if c.fs.Exists(current) {
			continue
		}
		if err := c.fs.CreateDirectory(current); err != nil {
			return err
		}
	}
	return nil
}

func (c *mkdirCommand) Help() string {
	return `Usage: mkdir [OPTION]... DIRECTORY...
Create directories

Options:
  -p    create parent directories as needed`
}

type touchCommand struct {
	fs *vfs.FileSystem
}

func (c *touchCommand) Execute(_ context.Context, params, _ []string, _ termsim.Environment) Result {
	if len(params) == 0 {
		return Output("touch: missing file operand")
	}
	var errs []string
	for _, p := range params {
		if err := c.fs.Touch(p); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return Output(strings.Join(errs, "\n"))
}

func (c *touchCommand) Help() string {
	return `Usage: touch FILE...
Create empty files or update modification time

Arguments:
  FILE    file(s) to create or update`
}

type catCommand struct {
	fs *vfs.FileSystem
}

func (c *catCommand) Execute(_ context.Context, params, _ []string, _ termsim.Environment) Result {
	if len(params) == 0 {
		return Output("cat: missing file operand")
	}
	out := make([]string, 0, len(params))
	for _, p := range params {
		content, err := c.fs.ReadFile(p)
		if err != nil {
			out = append(out, err.Error())
			continue
		}
		out = append(out, content)
	}
	return Output(strings.Join(out, "\n"))
}

func (c *catCommand) Help() string {
	return `Usage: cat FILE...
Concatenate and display file contents

Arguments:
  FILE    file(s) to display`
}

type rmCommand struct {
	fs *vfs.FileSystem
}

func (c *rmCommand) Execute(_ context.Context, params, flags []string, _ termsim.Environment) Result {
	if len(params) == 0 {
		return Output("rm: missing operand")
	}
	parsed := ParseFlags(flags)
	recursive := parsed.Has("r", "R", "recursive")
	force := parsed.Has("f", "force")

	var errs []string
	for _, p := range params {
		if err := c.fs.Remove(p, recursive); err != nil && !force {
			errs = append(errs, err.Error())
		}
	}
	return Output(strings.Join(errs, "\n"))
}

func (c *rmCommand) Help() string {
	return `Usage: rm [OPTION]... FILE...
Remove files or directories

Options:
  -r, -R    remove directories recursively
  -f        force removal without prompting`
}

type nanoCommand struct {
	fs *vfs.FileSystem
}

func (c *nanoCommand) Execute(_ context.Context, params, _ []string, _ termsim.Environment) Result {
	if len(params) == 0 {
		return Output("nano: missing file operand")
	}
	name := params[0]
	content := ""
	if c.fs.IsFile(name) {
		content, _ = c.fs.ReadFile(name)
	}
	return Edit(EditorRequest{
		Filename: name,
		Path:     c.fs.Resolve(name),
		Content:  content,
	})
}

func (c *nanoCommand) Help() string {
	return `Usage: nano FILE
Open file in text editor

Arguments:
  FILE    file to edit

Controls:
  Ctrl+O    save file
  Ctrl+X    exit editor`
}
