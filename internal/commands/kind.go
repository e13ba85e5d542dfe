package commands

import "fmt"

// Kind enumerates the simulated commands.
type Kind int

const (
	KindLs Kind = iota
	KindCd
	KindMkdir
	KindTouch
	KindCat
	KindPwd
	KindEcho
	KindClear
	KindNano
	KindRm

	numKinds
)

// Kinds returns every command kind in display order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the name the command is invoked by.
func (k Kind) String() string {
	switch k {
	case KindLs:
		return "ls"
	case KindCd:
		return "cd"
	case KindMkdir:
		return "mkdir"
	case KindTouch:
		return "touch"
	case KindCat:
		return "cat"
	case KindPwd:
		return "pwd"
	case KindEcho:
		return "echo"
	case KindClear:
		return "clear"
	case KindNano:
		return "nano"
	case KindRm:
		return "rm"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a command name to its kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "ls":
		return KindLs, true
	case "cd":
		return KindCd, true
	case "mkdir":
		return KindMkdir, true
	case "touch":
		return KindTouch, true
	case "cat":
		return KindCat, true
	case "pwd":
		return KindPwd, true
	case "echo":
		return KindEcho, true
	case "clear":
		return KindClear, true
	case "nano":
		return KindNano, true
	case "rm":
		return KindRm, true
	default:
		return 0, false
	}
}
