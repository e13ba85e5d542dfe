package commands

import (
	"context"
	"strings"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

type echoCommand struct{}

func (c *echoCommand) Execute(_ context.Context, params, flags []string, env termsim.Environment) Result {
	text := Expand(strings.Join(params, " "), env)
	if ParseFlags(flags).Has("n") {
		return Output(text)
	}
	return Output(text + "\n")
}

func (c *echoCommand) Help() string {
	return `Usage: echo [OPTION]... [STRING]...
Display a line of text

Options:
  -n    do not output the trailing newline`
}

// Expand removes shell quotes from s and substitutes $NAME and ${NAME} with
// values from env. Unset variables expand to the empty string. Text inside
// single quotes is taken literally.
func Expand(s string, env termsim.Environment) string {
	var b strings.Builder
	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\'' && quote != '"':
			if quote == '\'' {
				quote = 0
			} else {
				quote = '\''
			}
		case ch == '"' && quote != '\'':
			if quote == '"' {
				quote = 0
			} else {
				quote = '"'
			}
		case ch == '$' && quote != '\'':
			name, width := variableAt(s[i+1:])
			if width == 0 {
				b.WriteByte(ch)
				continue
			}
			b.WriteString(env[name])
			i += width
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// variableAt parses a variable reference at the start of s and returns its
// name and the number of bytes it spans.
func variableAt(s string) (string, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end <= 1 || wordLen(s[1:end]) != end-1 {
			return "", 0
		}
		return s[1:end], end + 1
	}
	n := wordLen(s)
	return s[:n], n
}

func wordLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			n++
			continue
		}
		break
	}
	return n
}

type clearCommand struct{}

func (c *clearCommand) Execute(context.Context, []string, []string, termsim.Environment) Result {
	return Output(termsim.ClearScreen)
}

func (c *clearCommand) Help() string {
	return `Usage: clear
Clear the terminal screen`
}
