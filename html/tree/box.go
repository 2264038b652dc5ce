package tree

import "github.com/benoitkugler/litebridge/backend"

// Edges stores the resolved widths of the four sides of a box.
type Edges struct {
	Top, Right, Bottom, Left Fl
}

func (e Edges) Horizontal() Fl { return e.Left + e.Right }
func (e Edges) Vertical() Fl   { return e.Top + e.Bottom }

// Box is the geometry of a node computed by the last layout pass.
//
// Pos is the border box of the node. Its origin is relative to the origin of
// the parent's Pos, so that the document position of a node is the sum
// of the origins along its parent chain. Inline holds the fragments of an
// inline element (one per line), in the same frame as Pos.
// Fixed positioned nodes have a Pos relative to the viewport, and are
// the start of the chain for their descendants.
type Box struct {
	Pos     backend.Rect
	Inline  []backend.Rect
	Margin  Edges
	Border  Edges
	Padding Edges
	Fixed   bool
	// Laid is false for nodes skipped by the layout (display: none, or
	// inside such a node).
	Laid bool
	// Baseline is the offset of the first baseline from the top of the border box.
	Baseline Fl
}

// PaddingBox returns the padding box, in the frame of Pos.
func (b *Box) PaddingBox() backend.Rect {
	return backend.Rect{
		X:      b.Pos.X + b.Border.Left,
		Y:      b.Pos.Y + b.Border.Top,
		Width:  b.Pos.Width - b.Border.Horizontal(),
		Height: b.Pos.Height - b.Border.Vertical(),
	}
}

// ContentBox returns the content box, in the frame of Pos.
func (b *Box) ContentBox() backend.Rect {
	p := b.PaddingBox()
	return backend.Rect{
		X:      p.X + b.Padding.Left,
		Y:      p.Y + b.Padding.Top,
		Width:  p.Width - b.Padding.Horizontal(),
		Height: p.Height - b.Padding.Vertical(),
	}
}

// Placement returns the border box of `id` in document coordinates, walking
// the parent chain once. For nodes inside a fixed positioned subtree, the
// position is relative to the viewport and `fixed` is true.
func (t *Tree) Placement(id NodeID) (pos backend.Rect, fixed bool) {
	n := t.Node(id)
	if n == nil {
		return backend.Rect{}, false
	}
	pos = n.Box.Pos
	for !n.Box.Fixed && n.Parent != NoNode {
		n = &t.Nodes[n.Parent]
		pos.X += n.Box.Pos.X
		pos.Y += n.Box.Pos.Y
	}
	return pos, n.Box.Fixed
}
