package document

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/html/tree"
)

// Element is a view on a node of a document. It is only valid while
// the document is alive and the node attached to the tree: accessors on
// a stale view return zero values.
type Element struct {
	doc *Document
	id  tree.NodeID
	gen uint32
}

func (e Element) node() *tree.Node {
	if e.doc == nil || e.doc.state == Destroyed || e.gen != e.doc.gen {
		return nil
	}
	return e.doc.tree.Node(e.id)
}

// Valid returns false for the zero Element, after the document is destroyed,
// or once the node has been removed from the tree.
func (e Element) Valid() bool { return e.node() != nil }

func (e Element) Parent() Element {
	n := e.node()
	if n == nil {
		return Element{}
	}
	return e.doc.element(n.Parent)
}

func (e Element) ChildrenCount() int {
	if n := e.node(); n != nil {
		return len(n.Children)
	}
	return 0
}

// ChildAt returns the i-th child, or an invalid element if `i` is out of range.
func (e Element) ChildAt(i int) Element {
	n := e.node()
	if n == nil || i < 0 || i >= len(n.Children) {
		return Element{}
	}
	return e.doc.element(n.Children[i])
}

// IsText returns true for words, spaces and line breaks.
func (e Element) IsText() bool {
	n := e.node()
	return n != nil && n.IsText()
}

// Tag returns the lower case tag name, empty for text.
func (e Element) Tag() string {
	if n := e.node(); n != nil {
		return n.Tag
	}
	return ""
}

func (e Element) Attr(name string) string {
	if n := e.node(); n != nil {
		return n.Attr(name)
	}
	return ""
}

func (e Element) style() *tree.Style {
	if n := e.node(); n != nil {
		return n.Style
	}
	return nil
}

// Font returns the handle of the font used by the element.
func (e Element) Font() bridge.FontHandle {
	if s := e.style(); s != nil {
		return bridge.FontHandle(s.FontHandle)
	}
	return 0
}

func (e Element) FontSize() Fl {
	if s := e.style(); s != nil {
		return s.Font.Size
	}
	return 0
}

func (e Element) TextAlign() bridge.TextAlign {
	if s := e.style(); s != nil {
		return bridge.TextAlign(s.TextAlign)
	}
	return 0
}

// LineHeight returns the used line height, in pixels.
func (e Element) LineHeight() Fl {
	if s := e.style(); s != nil {
		return s.LineHeightPx()
	}
	return 0
}

// Placement returns the border box of the element in document coordinates
// (viewport coordinates inside fixed positioned elements), as computed by
// the last Render.
func (e Element) Placement() bridge.Position {
	if e.node() == nil {
		return bridge.Position{}
	}
	pos, _ := e.doc.tree.Placement(e.id)
	return bridge.ToPosition(pos)
}

// Text returns the text content of the element and its descendants.
func (e Element) Text() string {
	if e.node() == nil {
		return ""
	}
	return e.doc.tree.Text(e.id)
}

// InlineBoxes returns the boxes of the element in document coordinates:
// one per line for inline elements, the border box otherwise.
func (e Element) InlineBoxes() []bridge.Position {
	n := e.node()
	if n == nil || !n.Box.Laid {
		return nil
	}
	boxes := n.Box.Inline
	if len(boxes) == 0 {
		boxes = []backend.Rect{n.Box.Pos}
	}
	// boxes are in the frame of the local position
	placement, _ := e.doc.tree.Placement(e.id)
	dx, dy := placement.X-n.Box.Pos.X, placement.Y-n.Box.Pos.Y
	out := make([]bridge.Position, len(boxes))
	for i, b := range boxes {
		out[i] = bridge.ToPosition(b.Translate(dx, dy))
	}
	return out
}

func (e Element) InlineBoxesCount() int {
	n := e.node()
	if n == nil || !n.Box.Laid {
		return 0
	}
	if len(n.Box.Inline) == 0 {
		return 1
	}
	return len(n.Box.Inline)
}

// InlineBoxAt returns the i-th inline box, or a zero position if `i`
// is out of range.
func (e Element) InlineBoxAt(i int) bridge.Position {
	boxes := e.InlineBoxes()
	if i < 0 || i >= len(boxes) {
		return bridge.Position{}
	}
	return boxes[i]
}
