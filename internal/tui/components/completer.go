package components

import (
	"sort"
	"strings"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Lister lists a directory of the simulated filesystem. An empty path lists
// the working directory.
type Lister interface {
	ListDirectory(path string) ([]termsim.Node, error)
}

// Completer provides tab-completion for the shell prompt. The first word
// completes against command names, later words against paths in the
// simulated filesystem. It tracks state across Tab presses to cycle through
// matches.
//
// Usage:
//
//	completer := NewCompleter(fs, names)
//
//	// On Tab press:
//	input.SetValue(completer.Next(input.Value()))
//
//	// On any other keypress:
//	completer.Reset()
type Completer struct {
	fs         Lister
	commands   []string
	matches    []string
	cycleIndex int
	head       string
	parent     string
	command    bool
	last       string
}

// NewCompleter creates a completer over fs and the given command names.
func NewCompleter(fs Lister, commands []string) *Completer {
	names := append([]string(nil), commands...)
	sort.Strings(names)
	return &Completer{fs: fs, commands: names}
}

// Next returns line with its last word completed. When line is what the
// previous call returned, it cycles to the next match instead.
func (c *Completer) Next(line string) string {
	if len(c.matches) > 0 && line == c.last {
		c.cycleIndex = (c.cycleIndex + 1) % len(c.matches)
		c.last = c.head + c.format(c.matches[c.cycleIndex])
		return c.last
	}

	head, word := splitLine(line)
	c.head = head
	c.command = strings.TrimSpace(head) == ""

	prefix := word
	c.parent = ""
	if c.command {
		c.matches = c.commandMatches(prefix)
	} else {
		c.parent, prefix = splitPath(word)
		c.matches = c.pathMatches(c.parent, prefix)
	}

	if len(c.matches) == 0 {
		c.last = ""
		return line
	}

	// First Tab: extend to the common prefix when that adds anything.
	if len(c.matches) > 1 {
		common := longestCommonPrefix(c.matches)
		if len(common) > len(prefix) {
			c.cycleIndex = -1
			c.last = head + c.format(common)
			return c.last
		}
	}
	c.cycleIndex = 0
	c.last = head + c.format(c.matches[0])
	return c.last
}

// Reset clears the cycle state. Call this when the user types a non-Tab key.
func (c *Completer) Reset() {
	c.matches = nil
	c.cycleIndex = 0
	c.last = ""
}

func (c *Completer) commandMatches(prefix string) []string {
	var matches []string
	for _, name := range c.commands {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	return matches
}

// pathMatches returns matching entry names. Directories carry a trailing
// slash so that format can tell them apart.
func (c *Completer) pathMatches(parent, prefix string) []string {
	entries, err := c.fs.ListDirectory(parent)
	if err != nil {
		return []string{}
	}

	matches := []string{}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, prefix) {
			continue
		}
		if strings.HasPrefix(e.Name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		name := e.Name
		if e.IsDir() {
			name += "/"
		}
		matches = append(matches, name)
	}
	return matches
}

func (c *Completer) format(match string) string {
	if c.command {
		return match
	}
	return join(c.parent, match)
}

// splitLine separates the last word from everything before it.
func splitLine(line string) (head, word string) {
	i := strings.LastIndexByte(line, ' ')
	return line[:i+1], line[i+1:]
}

// splitPath splits a word into parent directory and name prefix.
//
//	"src/ma" → ("src", "ma")
//	"src/"   → ("src", "")
//	"/ho"    → ("/", "ho")
//	"ma"     → ("", "ma")
func splitPath(word string) (parent, prefix string) {
	i := strings.LastIndexByte(word, '/')
	switch {
	case i < 0:
		return "", word
	case i == 0:
		return "/", word[1:]
	default:
		return word[:i], word[i+1:]
	}
}

func join(parent, name string) string {
	switch parent {
	case "":
		return name
	case "/":
		return "/" + name
	}
	// path.Join would drop the trailing slash marking a directory.
	return strings.TrimSuffix(parent, "/") + "/" + name
}

// longestCommonPrefix finds the longest common prefix among strs.
func longestCommonPrefix(strs []string) string {
	if len(strs) == 0 {
		return ""
	}
	prefix := strs[0]
	for _, s := range strs[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
