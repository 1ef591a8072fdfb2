// Package mindmap turns course outlines into the node-tree document the
// rendering surface displays.
package mindmap

import (
	"fmt"

	"github.com/dgallion1/coursemap/internal/outline"
)

const (
	Author  = "map-my-udemy"
	Version = "0.1"
	Format  = "node_tree"
	RootID  = "root"

	DirectionLeft  = "left"
	DirectionRight = "right"
)

// Document is a mind-map in node-tree form.
type Document struct {
	Meta   Meta   `json:"meta"`
	Format string `json:"format"`
	Data   Node   `json:"data"`
}

// Meta is the static provenance tag.
type Meta struct {
	Author  string `json:"author"`
	Version string `json:"version"`
}

// Node is a labeled tree node. Topic is the decorated label.
type Node struct {
	ID        string  `json:"id"`
	Topic     string  `json:"topic"`
	Expanded  bool    `json:"expanded"`
	Direction string  `json:"direction,omitempty"`
	Children  []*Node `json:"children"`
}

// Root returns the document's root node.
func (d *Document) Root() *Node {
	return &d.Data
}

// Builder maps outlines to documents using a pluggable id strategy.
type Builder struct {
	IDs IDGenerator
}

// NewBuilder returns a Builder; a nil generator falls back to short ids.
func NewBuilder(ids IDGenerator) *Builder {
	if ids == nil {
		ids = ShortIDs{}
	}
	return &Builder{IDs: ids}
}

// Build is Builder.Build with short ids.
func Build(o *outline.CourseOutline) *Document {
	return NewBuilder(nil).Build(o)
}

// Build converts a valid outline into a document. Section labels are
// "<i>. <heading>" and item labels "<i>.<j>. <item>", both 1-based.
// Passing a nil or section-less outline is a programming error.
func (b *Builder) Build(o *outline.CourseOutline) *Document {
	if !o.Valid() {
		panic("mindmap: Build called with an invalid outline")
	}

	children := make([]*Node, 0, len(o.Sections))
	for i, section := range o.Sections {
		sectionNum := i + 1
		items := make([]*Node, 0, len(section.Items))
		for j, item := range section.Items {
			items = append(items, &Node{
				ID:       b.IDs.NextID(),
				Topic:    fmt.Sprintf("%d.%d. %s", sectionNum, j+1, item),
				Expanded: true,
				Children: []*Node{},
			})
		}
		children = append(children, &Node{
			ID:        b.IDs.NextID(),
			Topic:     fmt.Sprintf("%d. %s", sectionNum, section.Heading),
			Expanded:  true,
			Direction: DirectionRight,
			Children:  items,
		})
	}

	return &Document{
		Meta:   Meta{Author: Author, Version: Version},
		Format: Format,
		Data: Node{
			ID:       RootID,
			Topic:    o.Course,
			Expanded: true,
			Children: children,
		},
	}
}

// Walk visits every node depth-first, root first.
func (d *Document) Walk(fn func(n *Node, depth int)) {
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(&d.Data, 0)
}

// Clone returns a deep copy. Render surfaces work on clones so expand and
// collapse state never leaks into the canonical document.
func (d *Document) Clone() *Document {
	cp := &Document{Meta: d.Meta, Format: d.Format}
	cp.Data = *cloneNode(&d.Data)
	return cp
}

func cloneNode(n *Node) *Node {
	cp := *n
	cp.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		cp.Children[i] = cloneNode(c)
	}
	return &cp
}
