package lishp

import "strings"

// Node is a generic parse tree node: the grammar rule tag, the literal
// text it matched, and its children in source order.
type Node struct {
	Tag      string
	Contents string
	Children []*Node
}

// IsTerminal reports whether n is a leaf. It also lets a Node be carried as
// a peg capture.
func (n *Node) IsTerminal() bool {
	return len(n.Children) == 0
}

// String renders the tree one node per line, indented by depth.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Tag)
	if n.Contents != "" {
		b.WriteString(" '")
		b.WriteString(n.Contents)
		b.WriteString("'")
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		c.write(b, depth+1)
	}
}

// leaves appends the contents of every leaf under n, in order.
func (n *Node) leaves(b *strings.Builder) {
	if n.IsTerminal() {
		b.WriteString(n.Contents)
		return
	}
	for _, c := range n.Children {
		c.leaves(b)
	}
}
