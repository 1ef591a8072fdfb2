package mindmap

// ShapeNode is a node with its id stripped.
type ShapeNode struct {
	Topic     string
	Direction string
	Children  []ShapeNode
}

// Shape returns the id-free structure of a document. Two builds of the same
// outline have equal shapes even when their ids differ.
func (d *Document) Shape() ShapeNode {
	return shapeOf(&d.Data)
}

func shapeOf(n *Node) ShapeNode {
	s := ShapeNode{Topic: n.Topic, Direction: n.Direction}
	for _, c := range n.Children {
		s.Children = append(s.Children, shapeOf(c))
	}
	return s
}

// Labels returns every topic in depth-first order.
func (d *Document) Labels() []string {
	var labels []string
	d.Walk(func(n *Node, _ int) {
		labels = append(labels, n.Topic)
	})
	return labels
}

// SameShape reports whether a and b agree on meta, format, labels and
// structure, ignoring ids.
func SameShape(a, b *Document) bool {
	if a.Meta != b.Meta || a.Format != b.Format {
		return false
	}
	return equalShape(a.Shape(), b.Shape())
}

func equalShape(a, b ShapeNode) bool {
	if a.Topic != b.Topic || a.Direction != b.Direction || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !equalShape(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
