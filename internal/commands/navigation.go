package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/darwinyusef/termsim/internal/vfs"
	"github.com/darwinyusef/termsim/pkg/termsim"
)

const (
	colorBlue  = "\x1b[34m"
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"

	dirDisplaySize = 4096
	lsDateLayout   = "Jan _2 15:04"
)

type lsCommand struct {
	fs  *vfs.FileSystem
	now func() time.Time
}

func (c *lsCommand) Execute(_ context.Context, params, flags []string, _ termsim.Environment) Result {
	parsed := ParseFlags(flags)
	path := ""
	if len(params) > 0 {
		path = params[0]
	}

	entries, err := c.fs.ListDirectory(path)
	if err != nil {
		return Output(err.Error())
	}

	showAll := parsed.Has("a", "all")
	visible := entries[:0]
	for _, e := range entries {
		if showAll || !strings.HasPrefix(e.Name, ".") {
			visible = append(visible, e)
		}
	}

	if parsed.Has("l") {
		return Output(c.longListing(visible))
	}

	names := make([]string, 0, len(visible))
	for _, e := range visible {
		names = append(names, colorize(e))
	}
	return Output(strings.Join(names, "  "))
}

func (c *lsCommand) longListing(entries []termsim.Node) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		perms := e.Permissions
		if perms == "" {
			perms = "-rw-r--r--"
		}
		owner, group := e.Owner, e.Group
		if owner == "" {
			owner = termsim.DefaultUser
		}
		if group == "" {
			group = termsim.DefaultGroup
		}
		size := len(e.Content)
		if e.IsDir() {
			size = dirDisplaySize
		}
		modified := c.now()
		if e.Modified != nil {
			modified = *e.Modified
		}
		name := e.Name
		if e.IsDir() {
			name = colorBlue + name + colorReset
		}
		lines = append(lines, fmt.Sprintf("%s  1 %s %s %5d %s %s",
			perms, owner, group, size, modified.Format(lsDateLayout), name))
	}
	return strings.Join(lines, "\n")
}

func colorize(e termsim.Node) string {
	switch {
	case e.IsDir():
		return colorBlue + e.Name + colorReset
	case strings.Contains(e.Permissions, "x"):
		return colorGreen + e.Name + colorReset
	default:
		return e.Name
	}
}

func (c *lsCommand) Help() string {
	return `Usage: ls [OPTION]... [FILE]...
List directory contents

Options:
  -a    show all files (including hidden)
  -l    long listing format`
}

type cdCommand struct {
	fs *vfs.FileSystem
}

func (c *cdCommand) Execute(_ context.Context, params, flags []string, env termsim.Environment) Result {
	previous := c.fs.CurrentPath()
	target := ""
	printTarget := false

	switch {
	case len(params) > 0:
		target = params[0]
	case ParseFlags(flags).Has("-"):
		target = env["OLDPWD"]
		if target == "" {
			return Output("cd: OLDPWD not set")
		}
		printTarget = true
	default:
		target = env["HOME"]
		if target == "" {
			target = termsim.DefaultHome
		}
	}

	if err := c.fs.ChangeDirectory(target); err != nil {
		return Output(err.Error())
	}
	if env != nil {
		env["OLDPWD"] = previous
		env["PWD"] = c.fs.CurrentPath()
	}
	if printTarget {
		return Output(c.fs.CurrentPath())
	}
	return Output("")
}

func (c *cdCommand) Help() string {
	return `Usage: cd [DIRECTORY]
Change the current directory

Arguments:
  DIRECTORY    directory to change to (default: $HOME)

Special paths:
  ~     home directory
  -     previous directory
  ..    parent directory
  .     current directory`
}

type pwdCommand struct {
	fs *vfs.FileSystem
}

func (c *pwdCommand) Execute(context.Context, []string, []string, termsim.Environment) Result {
	return Output(c.fs.CurrentPath())
}

func (c *pwdCommand) Help() string {
	return `Usage: pwd
Print the name of the current working directory`
}
