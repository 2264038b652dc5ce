package layout

import (
	"strings"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/utils"
)

type itemKind uint8

const (
	itemWord itemKind = iota
	itemSpace
	itemBreak  // forced line break
	itemAtomic // inline-block or image
	itemBlock  // block-level box inside inline content, alone on its line
	itemOpen   // start of an inline element
	itemClose  // end of an inline element
	itemAnchor // static position of an out-of-flow box
)

// inlineItem is one unit of inline content.
type inlineItem struct {
	id    tree.NodeID
	style *tree.Style
	kind  itemKind
	// width is the advance: the margin box width of atomics,
	// the left (open) or right (close) edges of inline elements
	width Fl
	// for atomics and blocks, the margin box height and the
	// distance from its top to the baseline
	height, ascent Fl

	text        string
	collapsible bool // spaces
	wraps       bool // a line may be broken after this space, or around this atomic
}

func (ctx *layoutContext) transform(text string, s *tree.Style) string {
	if s.TextTransform == backend.TextTransformNone {
		return text
	}
	return ctx.c.TransformText(text, s.TextTransform)
}

// spaceItem converts a space or a newline, according to the white-space property.
func (ctx *layoutContext) spaceItem(id tree.NodeID, n *tree.Node) inlineItem {
	s := n.Style
	preserve := s.WhiteSpace == tree.WhiteSpacePre || s.WhiteSpace == tree.WhiteSpacePreWrap
	if n.Kind == tree.LineBreakNode && (preserve || s.WhiteSpace == tree.WhiteSpacePreLine) {
		return inlineItem{id: id, style: s, kind: itemBreak}
	}
	it := inlineItem{id: id, style: s, kind: itemSpace, wraps: s.WhiteSpace.Wraps()}
	if preserve {
		it.text = strings.ReplaceAll(n.Text, "\t", "        ")
		it.width = ctx.c.TextWidth(it.text, s.FontHandle)
	} else {
		it.text, it.collapsible = " ", true
		it.width = ctx.spaceWidth(s)
	}
	return it
}

// collectItems flattens the inline content `children`. Atomic boxes
// are laid out at the origin, and moved when their line is known.
func (ctx *layoutContext) collectItems(items []inlineItem, children []tree.NodeID, cb containingBlock) []inlineItem {
	for _, id := range children {
		n := &ctx.t.Nodes[id]
		s := n.Style
		switch n.Kind {
		case tree.TextNode:
			text := ctx.transform(n.Text, s)
			ctx.texts[id] = text
			items = append(items, inlineItem{id: id, style: s, kind: itemWord, text: text, width: ctx.c.TextWidth(text, s.FontHandle)})
			continue
		case tree.SpaceNode, tree.LineBreakNode:
			it := ctx.spaceItem(id, n)
			ctx.texts[id] = it.text
			items = append(items, it)
			continue
		}

		wraps := ctx.t.Nodes[n.Parent].Style.WhiteSpace.Wraps()
		switch {
		case s.Display == tree.DisplayNone:
		case s.Position.IsOutOfFlow():
			items = append(items, inlineItem{id: id, style: s, kind: itemAnchor})
		case n.Tag == "br":
			ctx.resolvePercentages(n, cb)
			items = append(items, inlineItem{id: id, style: s, kind: itemBreak})
		case s.Display == tree.DisplayInline:
			ctx.resolvePercentages(n, cb)
			b := &n.Box
			items = append(items, inlineItem{id: id, style: s, kind: itemOpen, width: b.Margin.Left + b.Border.Left + b.Padding.Left})
			items = ctx.collectItems(items, n.Children, cb)
			items = append(items, inlineItem{id: id, style: s, kind: itemClose, width: b.Margin.Right + b.Border.Right + b.Padding.Right})
		case s.Display == tree.DisplayInlineBlock:
			ctx.blockBoxLayout(id, blockParams{cb: cb, shrink: true})
			items = append(items, ctx.atomicItem(id, itemAtomic, wraps))
		default:
			ctx.blockBoxLayout(id, blockParams{cb: cb})
			items = append(items, ctx.atomicItem(id, itemBlock, wraps))
		}
	}
	return items
}

func (ctx *layoutContext) atomicItem(id tree.NodeID, kind itemKind, wraps bool) inlineItem {
	n := &ctx.t.Nodes[id]
	b := &n.Box
	it := inlineItem{
		id: id, style: n.Style, kind: kind, wraps: wraps,
		width:  b.Margin.Left + b.Pos.Width + b.Margin.Right,
		height: utils.ClampPositive(b.Margin.Top + b.Pos.Height + b.Margin.Bottom),
	}
	// the bottom margin edge of boxes without lines sits on the baseline
	it.ascent = it.height
	if b.Baseline > 0 && n.Tag != "img" {
		it.ascent = b.Margin.Top + b.Baseline
	}
	return it
}

// fitLine returns the end of the line starting at `start`, breaking
// at the last opportunity before the content overflows `width`.
func fitLine(items []inlineItem, start int, width Fl) int {
	var x Fl
	opportunity := -1
	content, afterSpace := false, false
	for i := start; i < len(items); i++ {
		it := &items[i]
		switch it.kind {
		case itemBreak:
			return i + 1
		case itemBlock:
			if content {
				return i
			}
			return i + 1
		case itemSpace:
			if it.collapsible && (!content || afterSpace) {
				continue
			}
			x += it.width
			afterSpace = it.collapsible
			if it.wraps {
				opportunity = i + 1
			}
		case itemWord, itemAtomic:
			if it.kind == itemAtomic && it.wraps && content {
				opportunity = i
			}
			if content && x+it.width > width && opportunity > start {
				return opportunity
			}
			x += it.width
			content, afterSpace = true, false
			if it.kind == itemAtomic && it.wraps {
				opportunity = i + 1
			}
		case itemOpen, itemClose:
			x += it.width
		}
	}
	return len(items)
}

// openFragment is an inline element whose end has not been reached.
type openFragment struct {
	id tree.NodeID
	x  Fl // left of the border box of the current fragment
}

// inlineRunLayout lays out the inline-level `children` of `block` in lines
// starting at (x, y). It returns the height of the lines and the baseline
// of the first one, relative to y. The returned boolean is false when no
// line has been created.
func (ctx *layoutContext) inlineRunLayout(block tree.NodeID, children []tree.NodeID, x, y Fl, cb containingBlock, indent Fl) (height, baseline Fl, hasLines bool) {
	items := ctx.collectItems(nil, children, cb)
	style := ctx.t.Nodes[block].Style
	var open []openFragment
	cursor := y
	for start := 0; start < len(items); {
		lineIndent := Fl(0)
		if !hasLines {
			lineIndent = indent
		}
		end := fitLine(items, start, cb.width-lineIndent)
		last := end == len(items) || items[end-1].kind == itemBreak
		h, bl, ok := ctx.lineBoxLayout(items[start:end], style, x+lineIndent, cursor, cb.width-lineIndent, last, &open)
		if ok {
			if !hasLines {
				baseline, hasLines = cursor+bl-y, true
			}
			cursor += h
		}
		start = end
	}

	for _, it := range items {
		if it.kind == itemOpen && it.style.Position == tree.PositionRelative {
			ctx.relativePositioning(it.id, cb)
		}
	}
	return cursor - y, baseline, hasLines
}

// strut returns the space above and below the baseline required by text in style `s`.
func strut(s *tree.Style) (above, below Fl) {
	a, d := s.Metrics.Ascent, s.Metrics.Descent
	halfLeading := (s.LineHeightPx() - (a + d)) / 2
	return a + halfLeading, d + halfLeading
}

// lineBoxLayout positions the items of one line, whose top is at y.
// It returns the height of the line and its baseline, relative to y.
// The returned boolean is false for an empty line, which takes no space.
func (ctx *layoutContext) lineBoxLayout(items []inlineItem, block *tree.Style, x, y, width Fl, last bool, open *[]openFragment) (height, baseline Fl, hasContent bool) {
	// collapsible spaces at the start and end of the line, and after another space, are removed
	skip := make([]bool, len(items))
	afterSpace, content := false, false
	for i, it := range items {
		switch it.kind {
		case itemSpace:
			if it.collapsible && (!content || afterSpace) {
				skip[i] = true
			} else {
				afterSpace = it.collapsible
			}
		case itemWord, itemAtomic, itemBlock:
			content, afterSpace = true, false
		}
	}
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it.kind == itemSpace && it.collapsible {
			skip[i] = true
			continue
		}
		if it.kind != itemClose && it.kind != itemAnchor && it.kind != itemBreak {
			break
		}
	}

	var lineWidth Fl
	spaces := 0
	for i, it := range items {
		if skip[i] {
			continue
		}
		switch it.kind {
		case itemSpace:
			spaces++
			hasContent = true
		case itemWord, itemAtomic, itemBlock, itemBreak:
			hasContent = true
		case itemOpen, itemClose:
			hasContent = hasContent || it.width > 0
		}
		lineWidth += it.width
	}

	var above, below Fl
	if hasContent {
		above, below = strut(block)
		for i, it := range items {
			if skip[i] {
				continue
			}
			switch it.kind {
			case itemAtomic, itemBlock:
				above = utils.MaxF(above, it.ascent)
				below = utils.MaxF(below, it.height-it.ascent)
			case itemAnchor:
			default:
				a, b := strut(it.style)
				above, below = utils.MaxF(above, a), utils.MaxF(below, b)
			}
		}
	}
	baseline = y + above

	free := width - lineWidth
	var offset, extra Fl
	switch block.TextAlign {
	case backend.TextAlignRight:
		offset = free
	case backend.TextAlignCenter:
		offset = free / 2
	case backend.TextAlignJustify:
		if !last && spaces > 0 && free > 0 {
			extra = free / Fl(spaces)
		}
	}
	cx := x + utils.ClampPositive(offset)
	for i := range *open {
		(*open)[i].x = cx
	}

	for i, it := range items {
		if skip[i] {
			continue
		}
		n := &ctx.t.Nodes[it.id]
		switch it.kind {
		case itemWord, itemSpace, itemBreak:
			w := it.width
			if it.kind == itemSpace {
				w += extra
			}
			m := it.style.Metrics
			n.Box.Pos = backend.Rect{X: cx, Y: baseline - m.Ascent, Width: w, Height: m.Ascent + m.Descent}
			n.Box.Laid = true
			cx += w
		case itemAtomic:
			ctx.shiftSubtree(it.id, cx, baseline-it.ascent)
			cx += it.width
		case itemBlock:
			ctx.shiftSubtree(it.id, x, y)
			cx += it.width
		case itemOpen:
			*open = append(*open, openFragment{id: it.id, x: cx + n.Box.Margin.Left})
			cx += it.width
		case itemClose:
			for j := len(*open) - 1; j >= 0; j-- {
				if (*open)[j].id == it.id {
					ctx.addFragment(it.id, (*open)[j].x, cx+n.Box.Border.Right+n.Box.Padding.Right, baseline)
					*open = append((*open)[:j], (*open)[j+1:]...)
					break
				}
			}
			cx += it.width
		case itemAnchor:
			ctx.queue = append(ctx.queue, outOfFlowBox{id: it.id, staticX: cx, staticY: y})
		}
	}
	// elements continuing on the next line
	for _, o := range *open {
		ctx.addFragment(o.id, o.x, cx, baseline)
	}
	return above + below, above, hasContent
}

// addFragment records the border box of one line of an inline element.
func (ctx *layoutContext) addFragment(id tree.NodeID, left, right, baseline Fl) {
	n := &ctx.t.Nodes[id]
	b := &n.Box
	m := n.Style.Metrics
	r := backend.Rect{
		X:      left,
		Y:      baseline - m.Ascent - b.Padding.Top - b.Border.Top,
		Width:  utils.ClampPositive(right - left),
		Height: m.Ascent + m.Descent + b.Padding.Vertical() + b.Border.Vertical(),
	}
	b.Inline = append(b.Inline, r)
	if !b.Laid {
		b.Pos, b.Laid = r, true
		return
	}
	b.Pos = union(b.Pos, r)
}

func union(a, b backend.Rect) backend.Rect {
	x0, y0 := utils.MinF(a.X, b.X), utils.MinF(a.Y, b.Y)
	x1, y1 := utils.MaxF(a.Right(), b.Right()), utils.MaxF(a.Bottom(), b.Bottom())
	return backend.Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
