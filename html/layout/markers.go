package layout

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/html/tree"
)

// markerImage returns the list-style-image of `s` when it is available,
// requesting it otherwise.
func (ctx *layoutContext) markerImage(s *tree.Style) (backend.Size, bool) {
	if s.ListStyleImage == "" {
		return backend.Size{}, false
	}
	size := ctx.c.GetImageSize(s.ListStyleImage, s.ListStyleImageURL)
	if size.IsEmpty() {
		ctx.requestImage(s.ListStyleImage, s.ListStyleImageURL, true)
		return backend.Size{}, false
	}
	return size, true
}

// markerSize returns the size of the marker of a list item.
func (ctx *layoutContext) markerSize(s *tree.Style, index int) (backend.Size, backend.ListStyleType) {
	if size, ok := ctx.markerImage(s); ok {
		return size, backend.ListStyleImage
	}
	kind := s.ListStyleType
	m := s.Metrics
	if label := kind.Label(index); label != "" {
		return backend.Size{Width: ctx.c.TextWidth(label, s.FontHandle), Height: m.Ascent + m.Descent}, kind
	}
	side := s.Font.Size / 3
	return backend.Size{Width: side, Height: side}, kind
}

// markerWidth is the indentation of the first line of an item with
// an inside marker.
func (ctx *layoutContext) markerWidth(id tree.NodeID, index int) Fl {
	s := ctx.t.Nodes[id].Style
	if s.ListStyleType == backend.ListStyleNone && s.ListStyleImage == "" {
		return 0
	}
	size, _ := ctx.markerSize(s, index)
	return size.Width + s.Font.Size/2
}

// listMarker places the marker of the laid out list item `id`, beside its
// first line, or at the top of its content when it has no line.
func (ctx *layoutContext) listMarker(id tree.NodeID, index int) {
	n := &ctx.t.Nodes[id]
	s := n.Style
	if s.ListStyleType == backend.ListStyleNone && s.ListStyleImage == "" {
		return
	}
	b := &n.Box
	content := b.ContentBox()
	m := s.Metrics
	baseline := content.Y + m.Ascent
	if b.Baseline > 0 {
		baseline = b.Pos.Y + b.Baseline
	}
	size, kind := ctx.markerSize(s, index)
	gap := s.Font.Size / 2
	pos := backend.Rect{Width: size.Width, Height: size.Height}
	if s.ListStyleInside {
		pos.X = content.X
	} else {
		pos.X = content.X - gap - size.Width
	}
	switch {
	case kind == backend.ListStyleImage:
		pos.Y = baseline - size.Height
	case kind.IsOrdinal():
		pos.Y = baseline - m.Ascent
	default:
		// bullets are centered on the x-height
		pos.Y = baseline - m.XHeight/2 - size.Height/2
	}
	marker := backend.ListMarker{
		Kind:  kind,
		Color: s.Color,
		Pos:   pos,
		Index: index,
		Font:  s.FontHandle,
	}
	if kind == backend.ListStyleImage {
		marker.Image, marker.BaseURL = s.ListStyleImage, s.ListStyleImageURL
	}
	ctx.markers[id] = marker
}
