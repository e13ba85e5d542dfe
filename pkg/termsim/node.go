package termsim

import "time"

// NodeKind discriminates the two variants of a simulated filesystem node.
type NodeKind string

const (
	NodeDirectory NodeKind = "directory"
	NodeFile      NodeKind = "file"
)

// Node is one entry of the simulated filesystem tree.
//
// Directories carry Children; files carry Content. Permissions, Owner and
// Group are display-only and never enforced. The tree has no parent links:
// it is navigated top-down from the root.
type Node struct {
	Type        NodeKind         `json:"type" yaml:"type"`
	Name        string           `json:"name" yaml:"name"`
	Permissions string           `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Owner       string           `json:"owner,omitempty" yaml:"owner,omitempty"`
	Group       string           `json:"group,omitempty" yaml:"group,omitempty"`
	Modified    *time.Time       `json:"modified,omitempty" yaml:"modified,omitempty"`
	Children    map[string]*Node `json:"children,omitempty" yaml:"children,omitempty"`
	Content     string           `json:"content,omitempty" yaml:"content,omitempty"`
}

// IsDir reports whether n is a directory node.
func (n *Node) IsDir() bool {
	return n != nil && n.Type == NodeDirectory
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Modified != nil {
		t := *n.Modified
		c.Modified = &t
	}
	if n.Children != nil {
		c.Children = make(map[string]*Node, len(n.Children))
		for name, child := range n.Children {
			c.Children[name] = child.Clone()
		}
	}
	return &c
}

// Snapshot is the serialized form of a simulated filesystem.
type Snapshot struct {
	Root        *Node  `json:"root"`
	CurrentPath string `json:"currentPath"`
}
