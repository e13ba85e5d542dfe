package vfs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

// WriteMode selects how WriteFile treats an existing file.
type WriteMode int

const (
	ModeOverwrite WriteMode = iota
	ModeAppend
)

const (
	dirPermissions  = "drwxr-xr-x"
	filePermissions = "-rw-r--r--"
)

// FileSystem is the simulated filesystem of one terminal session.
type FileSystem struct {
	root        *termsim.Node
	currentPath string
	now         func() time.Time
}

// Option configures a FileSystem.
type Option func(*FileSystem)

// WithClock sets the time source used for modification timestamps.
func WithClock(now func() time.Time) Option {
	return func(f *FileSystem) {
		f.now = now
	}
}

// New creates a FileSystem holding the default tree with the working
// directory set to the student's home.
func New(opts ...Option) *FileSystem {
	f := &FileSystem{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	f.Reset()
	return f
}

// FromSnapshot rebuilds a FileSystem from a snapshot taken with Snapshot.
// The snapshot is deep-copied.
func FromSnapshot(s termsim.Snapshot, opts ...Option) (*FileSystem, error) {
	if !s.Root.IsDir() {
		return nil, fmt.Errorf("snapshot root must be a directory")
	}
	f := &FileSystem{now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	f.root = s.Root.Clone()
	f.root.Name = "/"
	f.currentPath = s.CurrentPath
	if f.currentPath == "" {
		f.currentPath = "/"
	}
	return f, nil
}

// Snapshot returns a deep copy of the tree and the working directory.
func (f *FileSystem) Snapshot() termsim.Snapshot {
	return termsim.Snapshot{
		Root:        f.root.Clone(),
		CurrentPath: f.currentPath,
	}
}

// Reset discards the tree and rebuilds the default one.
func (f *FileSystem) Reset() {
	f.root = defaultTree()
	f.currentPath = termsim.DefaultHome
}

// ReplaceRoot swaps the whole tree for a copy of root.
// The working directory is left untouched.
func (f *FileSystem) ReplaceRoot(root *termsim.Node) error {
	if !root.IsDir() {
		return fmt.Errorf("filesystem root must be a directory")
	}
	f.root = root.Clone()
	f.root.Name = "/"
	return nil
}

// SetCurrentPath moves the working directory without the checks ChangeDirectory
// makes about the caller's wording; it still requires a directory.
func (f *FileSystem) SetCurrentPath(path string) error {
	abs := f.Resolve(path)
	n, ok := f.GetNode(abs)
	if !ok {
		return &PathError{Op: OpChdir, Path: path, Err: ErrNotFound}
	}
	if !n.IsDir() {
		return &PathError{Op: OpChdir, Path: path, Err: ErrNotADirectory}
	}
	f.currentPath = abs
	return nil
}

// CurrentPath returns the absolute working directory.
func (f *FileSystem) CurrentPath() string {
	return f.currentPath
}

// Resolve turns path into an absolute path.
//
// "~" is the home directory and "~/x" is home-prefixed. A leading "/" is used
// as-is. Anything else is applied segment by segment to the working directory:
// ".." pops a segment, "." and empty segments are dropped. Popping past the
// root is a no-op.
func (f *FileSystem) Resolve(path string) string {
	switch {
	case strings.HasPrefix(path, "/"):
		return path
	case path == "~":
		return termsim.DefaultHome
	case strings.HasPrefix(path, "~/"):
		return termsim.DefaultHome + path[1:]
	}

	parts := splitPath(f.currentPath)
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		case ".", "":
		default:
			parts = append(parts, seg)
		}
	}
	return "/" + strings.Join(parts, "/")
}

// GetNode walks the tree along an absolute path.
func (f *FileSystem) GetNode(absPath string) (*termsim.Node, bool) {
	current := f.root
	for _, seg := range splitPath(absPath) {
		if !current.IsDir() {
			return nil, false
		}
		next, ok := current.Children[seg]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Exists reports whether path names a node.
func (f *FileSystem) Exists(path string) bool {
	_, ok := f.GetNode(f.Resolve(path))
	return ok
}

// IsDirectory reports whether path names a directory.
func (f *FileSystem) IsDirectory(path string) bool {
	n, ok := f.GetNode(f.Resolve(path))
	return ok && n.IsDir()
}

// IsFile reports whether path names a file.
func (f *FileSystem) IsFile(path string) bool {
	n, ok := f.GetNode(f.Resolve(path))
	return ok && n.Type == termsim.NodeFile
}

// ReadFile returns the content of the file at path.
func (f *FileSystem) ReadFile(path string) (string, error) {
	n, ok := f.GetNode(f.Resolve(path))
	if !ok {
		return "", &PathError{Op: OpRead, Path: path, Err: ErrNotFound}
	}
	if n.IsDir() {
		return "", &PathError{Op: OpRead, Path: path, Err: ErrIsADirectory}
	}
	return n.Content, nil
}

// WriteFile creates or replaces the file at path. With ModeAppend an existing
// file keeps its content and content is appended to it.
func (f *FileSystem) WriteFile(path, content string, mode WriteMode) error {
	return f.writeFile(OpWrite, path, content, mode)
}

func (f *FileSystem) writeFile(op Op, path, content string, mode WriteMode) error {
	parent, name, err := f.parentOf(op, path)
	if err != nil {
		return err
	}
	if name == "" {
		return &PathError{Op: op, Path: path, Err: ErrIsADirectory}
	}

	now := f.now()
	if existing, ok := parent.Children[name]; ok {
		if existing.IsDir() {
			return &PathError{Op: op, Path: path, Err: ErrIsADirectory}
		}
		if mode == ModeAppend {
			existing.Content += content
			existing.Modified = &now
			return nil
		}
	}

	parent.Children[name] = &termsim.Node{
		Type:        termsim.NodeFile,
		Name:        name,
		Permissions: filePermissions,
		Owner:       termsim.DefaultUser,
		Group:       termsim.DefaultGroup,
		Content:     content,
		Modified:    &now,
	}
	return nil
}

// Touch creates an empty file at path, or refreshes the modification time of
// an existing node.
func (f *FileSystem) Touch(path string) error {
	if n, ok := f.GetNode(f.Resolve(path)); ok {
		now := f.now()
		n.Modified = &now
		return nil
	}
	return f.writeFile(OpTouch, path, "", ModeOverwrite)
}

// CreateDirectory creates a single directory. The parent must exist.
func (f *FileSystem) CreateDirectory(path string) error {
	parent, name, err := f.parentOf(OpMkdir, path)
	if err != nil {
		return err
	}
	if name == "" {
		return &PathError{Op: OpMkdir, Path: path, Err: ErrAlreadyExists}
	}
	if _, ok := parent.Children[name]; ok {
		return &PathError{Op: OpMkdir, Path: path, Err: ErrAlreadyExists}
	}

	now := f.now()
	parent.Children[name] = &termsim.Node{
		Type:        termsim.NodeDirectory,
		Name:        name,
		Permissions: dirPermissions,
		Owner:       termsim.DefaultUser,
		Group:       termsim.DefaultGroup,
		Children:    map[string]*termsim.Node{},
		Modified:    &now,
	}
	return nil
}

// ListDirectory returns the entries of the directory at path, sorted by name.
// An empty path lists the working directory. Listing a file returns that file
// alone. Entries are shallow copies without children.
func (f *FileSystem) ListDirectory(path string) ([]termsim.Node, error) {
	abs := f.currentPath
	if path != "" {
		abs = f.Resolve(path)
	}
	n, ok := f.GetNode(abs)
	if !ok {
		return nil, &PathError{Op: OpList, Path: path, Err: ErrNotFound}
	}
	if !n.IsDir() {
		return []termsim.Node{entryOf(n)}, nil
	}

	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]termsim.Node, 0, len(names))
	for _, name := range names {
		entries = append(entries, entryOf(n.Children[name]))
	}
	return entries, nil
}

// ChangeDirectory moves the working directory to path.
func (f *FileSystem) ChangeDirectory(path string) error {
	abs := f.Resolve(path)
	n, ok := f.GetNode(abs)
	if !ok {
		return &PathError{Op: OpChdir, Path: path, Err: ErrNotFound}
	}
	if !n.IsDir() {
		return &PathError{Op: OpChdir, Path: path, Err: ErrNotADirectory}
	}
	f.currentPath = abs
	return nil
}

// Remove deletes the node at path. Directories require recursive.
func (f *FileSystem) Remove(path string, recursive bool) error {
	parts := splitPath(f.Resolve(path))
	if len(parts) == 0 {
		return &PathError{Op: OpRemove, Path: path, Err: ErrNotFound}
	}
	name := parts[len(parts)-1]
	parent, ok := f.GetNode("/" + strings.Join(parts[:len(parts)-1], "/"))
	if !ok || !parent.IsDir() {
		return &PathError{Op: OpRemove, Path: path, Err: ErrNotFound}
	}
	n, ok := parent.Children[name]
	if !ok {
		return &PathError{Op: OpRemove, Path: path, Err: ErrNotFound}
	}
	if n.IsDir() && !recursive {
		return &PathError{Op: OpRemove, Path: path, Err: ErrIsADirectory}
	}
	delete(parent.Children, name)
	return nil
}

// Walk calls fn for every node in the tree in lexical path order, root first.
// Returning an error from fn stops the walk.
func (f *FileSystem) Walk(fn func(path string, n *termsim.Node) error) error {
	return walk("/", f.root, fn)
}

func walk(path string, n *termsim.Node, fn func(string, *termsim.Node) error) error {
	if err := fn(path, n); err != nil {
		return err
	}
	if !n.IsDir() {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		child := path + "/" + name
		if path == "/" {
			child = "/" + name
		}
		if err := walk(child, n.Children[name], fn); err != nil {
			return err
		}
	}
	return nil
}

// parentOf resolves path and returns its parent directory and final segment.
// The name is empty when path resolves to the root.
func (f *FileSystem) parentOf(op Op, path string) (*termsim.Node, string, error) {
	parts := splitPath(f.Resolve(path))
	if len(parts) == 0 {
		return f.root, "", nil
	}
	parent, ok := f.GetNode("/" + strings.Join(parts[:len(parts)-1], "/"))
	if !ok || !parent.IsDir() {
		return nil, "", &PathError{Op: op, Path: path, Err: ErrNoSuchDirectory}
	}
	if parent.Children == nil {
		parent.Children = map[string]*termsim.Node{}
	}
	return parent, parts[len(parts)-1], nil
}

func entryOf(n *termsim.Node) termsim.Node {
	e := *n
	e.Children = nil
	return e
}

func splitPath(p string) []string {
	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

func defaultTree() *termsim.Node {
	dir := func(name, perms, owner string, children map[string]*termsim.Node) *termsim.Node {
		if children == nil {
			children = map[string]*termsim.Node{}
		}
		return &termsim.Node{
			Type:        termsim.NodeDirectory,
			Name:        name,
			Permissions: perms,
			Owner:       owner,
			Group:       owner,
			Children:    children,
		}
	}

	return dir("/", dirPermissions, "root", map[string]*termsim.Node{
		"home": dir("home", dirPermissions, "root", map[string]*termsim.Node{
			"student": dir("student", dirPermissions, termsim.DefaultUser, nil),
		}),
		"tmp": dir("tmp", "drwxrwxrwx", "root", nil),
		"etc": dir("etc", dirPermissions, "root", nil),
		"var": dir("var", dirPermissions, "root", nil),
	})
}
