package layout

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/utils"
)

// layoutOutOfFlow lays out the queued absolutely and fixed positioned boxes.
// Boxes found inside them are queued and laid out afterwards.
func (ctx *layoutContext) layoutOutOfFlow() {
	for ctx.processed < len(ctx.queue) {
		entry := ctx.queue[ctx.processed]
		ctx.processed++
		ctx.absoluteLayout(entry)
	}
}

// absoluteContainingBlock returns the padding box of the nearest positioned
// ancestor, the viewport for fixed boxes, or the initial containing block.
func (ctx *layoutContext) absoluteContainingBlock(id tree.NodeID) backend.Rect {
	n := &ctx.t.Nodes[id]
	if n.Style.Position == tree.PositionFixed {
		vp := backend.Rect{Width: ctx.viewport.Width, Height: ctx.viewport.Height}
		if vp.Width == 0 {
			vp.Width = ctx.icb.Width
		}
		return vp
	}
	for p := n.Parent; p != tree.NoNode; p = ctx.t.Nodes[p].Parent {
		pn := &ctx.t.Nodes[p]
		if pn.Style.Position != tree.PositionStatic && pn.Box.Laid {
			return pn.Box.PaddingBox()
		}
	}
	return ctx.icb
}

// absoluteLayout resolves the offsets and sizes of an absolutely positioned
// box, and lays it out.
func (ctx *layoutContext) absoluteLayout(entry outOfFlowBox) {
	id := entry.id
	n := &ctx.t.Nodes[id]
	s := n.Style
	cbRect := ctx.absoluteContainingBlock(id)
	cb := containingBlock{width: cbRect.Width, height: cbRect.Height, definite: true}
	d := ctx.resolvePercentages(n, cb)
	b := &n.Box
	lc := ctx.lengthContext(s)

	var offsets [4]Fl
	var auto [4]bool
	for i, l := range s.Offsets {
		base := cb.width
		if i%2 == 0 {
			base = cb.height
		}
		if auto[i] = l.IsAuto(); !auto[i] {
			offsets[i] = l.Resolve(lc, base)
		}
	}
	top, right, bottom, left := 0, 1, 2, 3

	if n.Tag == "img" {
		ctx.replacedLayout(n, &d)
	}
	edgesH := b.Border.Horizontal() + b.Padding.Horizontal()
	edgesV := b.Border.Vertical() + b.Padding.Vertical()
	if d.autoWidth {
		available := cb.width - b.Margin.Horizontal() - edgesH
		if !auto[left] && !auto[right] {
			d.width = available - offsets[left] - offsets[right]
		} else {
			if !auto[left] {
				available -= offsets[left]
			} else if !auto[right] {
				available -= offsets[right]
			}
			d.width = utils.MinF(ctx.maxContentWidth(id), utils.ClampPositive(available))
		}
		d.width = d.clampWidth(utils.ClampPositive(d.width))
	} else if !auto[left] && !auto[right] && d.autoMargin[left] && d.autoMargin[right] {
		free := cb.width - offsets[left] - offsets[right] - d.width - edgesH
		b.Margin.Left = utils.ClampPositive(free / 2)
		b.Margin.Right = free - b.Margin.Left
	}
	if d.autoHeight && !auto[top] && !auto[bottom] {
		d.height = utils.ClampPositive(cb.height - offsets[top] - offsets[bottom] - b.Margin.Vertical() - edgesV)
		d.height, d.autoHeight = d.clampHeight(d.height), false
	}

	outerWidth := b.Margin.Left + d.width + edgesH + b.Margin.Right
	x := entry.staticX
	if !auto[left] {
		x = cbRect.X + offsets[left]
	} else if !auto[right] {
		x = cbRect.Right() - offsets[right] - outerWidth
	}
	y := entry.staticY
	if !auto[top] {
		y = cbRect.Y + offsets[top]
	}
	marginLeft, marginRight := b.Margin.Left, b.Margin.Right
	ctx.blockBoxLayout(id, blockParams{
		x: x, y: y, cb: cb, shrink: true,
		width: d.width, hasWidth: true,
		height: d.height, hasHeight: !d.autoHeight,
	})
	// blockBoxLayout resolves the margins again, with auto as 0
	if marginLeft != b.Margin.Left {
		ctx.shiftSubtree(id, marginLeft-b.Margin.Left, 0)
		b.Margin.Left, b.Margin.Right = marginLeft, marginRight
	}

	if auto[top] && !auto[bottom] {
		target := cbRect.Bottom() - offsets[bottom]
		ctx.shiftSubtree(id, 0, target-(b.Pos.Bottom()+b.Margin.Bottom))
	}
}
