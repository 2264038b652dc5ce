package layout

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/utils"
)

// blockParams are the constraints of a block-level box.
type blockParams struct {
	// x and y are the left of the margin box and the bottom of the previous
	// sibling; `collapse` is the bottom margin of this sibling.
	x, y     Fl
	collapse Fl
	cb       containingBlock

	// width and height replace the computed sizes when set
	width, height       Fl
	hasWidth, hasHeight bool
	// shrink selects a shrink-to-fit auto width, and ignores auto margins
	shrink bool

	index int // ordinal of list items
}

// collapseMargin returns the resulting margin of adjoining margins.
func collapseMargin(margins ...Fl) Fl {
	var maxPos, minNeg Fl
	for _, m := range margins {
		if m > maxPos {
			maxPos = m
		} else if m < minNeg {
			minNeg = m
		}
	}
	return maxPos + minNeg
}

// blockBoxLayout lays out the block-level element `id`, storing
// its border box, and returns its bottom margin.
func (ctx *layoutContext) blockBoxLayout(id tree.NodeID, p blockParams) Fl {
	n := &ctx.t.Nodes[id]
	s := n.Style
	d := ctx.resolvePercentages(n, p.cb)
	if p.hasWidth {
		d.width, d.autoWidth = p.width, false
	}
	if p.hasHeight {
		d.height, d.autoHeight = p.height, false
	}
	replaced := n.Tag == "img"
	if replaced {
		ctx.replacedLayout(n, &d)
	}
	ctx.blockLevelWidth(id, &d, p.cb.width, p.shrink)

	b := &n.Box
	b.Laid = true
	b.Pos.X = p.x + b.Margin.Left
	b.Pos.Y = p.y + collapseMargin(p.collapse, b.Margin.Top)
	contentX := b.Pos.X + b.Border.Left + b.Padding.Left
	contentY := b.Pos.Y + b.Border.Top + b.Padding.Top

	var contentHeight, baseline Fl
	hasBaseline := false
	if !replaced {
		var indent Fl
		if s.Display == tree.DisplayListItem && s.ListStyleInside {
			indent = ctx.markerWidth(id, p.index)
		}
		inner := containingBlock{width: d.width, height: d.height, definite: !d.autoHeight}
		contentHeight, baseline, hasBaseline = ctx.blockContainerLayout(id, contentX, contentY, inner, indent)
	}
	height := d.height
	if d.autoHeight {
		height = contentHeight
	}
	height = d.clampHeight(height)

	b.Pos.Width = d.width + b.Border.Horizontal() + b.Padding.Horizontal()
	b.Pos.Height = height + b.Border.Vertical() + b.Padding.Vertical()
	if hasBaseline {
		b.Baseline = contentY + baseline - b.Pos.Y
	}

	if s.Display == tree.DisplayListItem {
		ctx.listMarker(id, p.index)
	}
	if s.Position == tree.PositionRelative {
		ctx.relativePositioning(id, p.cb)
	}
	return b.Margin.Bottom
}

// blockLevelWidth resolves the used width and the horizontal margins.
func (ctx *layoutContext) blockLevelWidth(id tree.NodeID, d *dimensions, cbWidth Fl, shrink bool) {
	b := &ctx.t.Nodes[id].Box
	edges := b.Border.Horizontal() + b.Padding.Horizontal()
	if d.autoWidth {
		available := utils.ClampPositive(cbWidth - b.Margin.Horizontal() - edges)
		if shrink {
			d.width = utils.MinF(ctx.maxContentWidth(id), available)
		} else {
			d.width = available
		}
	}
	d.width = d.clampWidth(d.width)
	if shrink {
		return
	}

	autoLeft, autoRight := d.autoMargin[3], d.autoMargin[1]
	free := cbWidth - d.width - edges
	switch {
	case autoLeft && autoRight:
		b.Margin.Left = utils.ClampPositive(free / 2)
		b.Margin.Right = free - b.Margin.Left
	case autoLeft:
		b.Margin.Left = free - b.Margin.Right
	case autoRight:
		b.Margin.Right = free - b.Margin.Left
	default:
		// over-constrained: the right margin is ignored
		b.Margin.Right = free - b.Margin.Left
	}
}

func isInlineLevel(n *tree.Node) bool {
	if n.IsText() {
		return true
	}
	d := n.Style.Display
	return d == tree.DisplayInline || d == tree.DisplayInlineBlock
}

// blockContainerLayout lays out the children of `id` in a content box
// starting at (x, y). It returns the height of the content and the
// position of the first baseline, relative to y.
// `indent` is added to the first line, for inside list markers.
func (ctx *layoutContext) blockContainerLayout(id tree.NodeID, x, y Fl, cb containingBlock, indent Fl) (height, baseline Fl, hasBaseline bool) {
	children := ctx.t.Nodes[id].Children
	cursor, pending := y, Fl(0)
	counter := listStart(&ctx.t.Nodes[id])
	started := false // a line or a block has been laid out

	for i := 0; i < len(children); {
		child := &ctx.t.Nodes[children[i]]
		if !child.IsText() && child.Style.Display == tree.DisplayNone {
			i++
			continue
		}
		if !child.IsText() && child.Style.Position.IsOutOfFlow() {
			ctx.queue = append(ctx.queue, outOfFlowBox{id: children[i], staticX: x, staticY: cursor + collapseMargin(pending)})
			i++
			continue
		}

		if isInlineLevel(child) {
			j := i + 1
			for ; j < len(children); j++ {
				if next := &ctx.t.Nodes[children[j]]; !isInlineLevel(next) &&
					next.Style.Display != tree.DisplayNone && !next.Style.Position.IsOutOfFlow() {
					break
				}
			}
			lineIndent := Fl(0)
			if !started {
				lineIndent = indent
			}
			runTop := cursor + collapseMargin(pending)
			h, bl, ok := ctx.inlineRunLayout(id, children[i:j], x, runTop, cb, lineIndent)
			if ok {
				if !hasBaseline {
					baseline, hasBaseline = runTop+bl-y, true
				}
				cursor, pending = runTop+h, 0
				started = true
			}
			i = j
			continue
		}

		index := 0
		if child.Style.Display == tree.DisplayListItem {
			if v, err := strconv.Atoi(strings.TrimSpace(child.Attr("value"))); err == nil {
				counter = v
			}
			index = counter
			counter++
		}
		mb := ctx.blockBoxLayout(children[i], blockParams{x: x, y: cursor, collapse: pending, cb: cb, index: index})
		if !hasBaseline && child.Box.Baseline > 0 {
			baseline, hasBaseline = child.Box.Pos.Y+child.Box.Baseline-y, true
		}
		cursor, pending = child.Box.Pos.Bottom(), mb
		started = true
		i++
	}

	return utils.ClampPositive(cursor + pending - y), baseline, hasBaseline
}

// listStart returns the ordinal of the first item of a list.
func listStart(n *tree.Node) int {
	if n.Tag == "ol" {
		if v, err := strconv.Atoi(strings.TrimSpace(n.Attr("start"))); err == nil {
			return v
		}
	}
	return 1
}
