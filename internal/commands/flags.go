package commands

import "strings"

// Flags is the parsed form of a command's flag tokens.
// Short flags map to "true"; long flags map to their value or "true".
type Flags map[string]string

// ParseFlags expands combined short flags ("-rf" sets r and f) and long
// flags ("--key=value", bare "--key" sets "true").
// A lone "-" is kept under the key "-".
func ParseFlags(tokens []string) Flags {
	parsed := Flags{}
	for _, tok := range tokens {
		switch {
		case tok == "-":
			parsed["-"] = "true"
		case strings.HasPrefix(tok, "--"):
			key, value, found := strings.Cut(tok[2:], "=")
			if !found || value == "" {
				value = "true"
			}
			parsed[key] = value
		case strings.HasPrefix(tok, "-"):
			for _, c := range tok[1:] {
				parsed[string(c)] = "true"
			}
		}
	}
	return parsed
}

// Has reports whether any of the given keys is set.
func (f Flags) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := f[k]; ok {
			return true
		}
	}
	return false
}

// Value returns the value of key, or "" if unset.
func (f Flags) Value(key string) string {
	return f[key]
}
