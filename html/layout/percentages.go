package layout

import (
	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/utils"
)

// containingBlock is the reference for percentages.
// Percentage heights are only resolved when the height is definite.
type containingBlock struct {
	width, height Fl
	definite      bool
}

// dimensions are the used sizes of the content box, before the
// layout of the children.
type dimensions struct {
	width, height         Fl
	autoWidth, autoHeight bool
	autoMargin            [4]bool // top, right, bottom, left

	minWidth, maxWidth   Fl
	minHeight, maxHeight Fl
}

func (d *dimensions) clampWidth(w Fl) Fl {
	return utils.MaxF(utils.MinF(w, d.maxWidth), d.minWidth)
}

func (d *dimensions) clampHeight(h Fl) Fl {
	return utils.MaxF(utils.MinF(h, d.maxHeight), d.minHeight)
}

// resolveSize returns the used value of a width or height, or
// true for `auto`, and for percentages of an indefinite size.
func resolveSize(l css.Length, lc *css.Context, base Fl, definite bool) (Fl, bool) {
	if l.IsAuto() || l.IsNone() || (l.Unit == css.UnitPercent && !definite) {
		return 0, true
	}
	return utils.ClampPositive(l.Resolve(lc, base)), false
}

func resolveMax(l css.Length, lc *css.Context, base Fl, definite bool) Fl {
	if v, auto := resolveSize(l, lc, base, definite); !auto {
		return v
	}
	return infinite
}

// dimensions returns the used sizes of an element in `cb`.
func (ctx *layoutContext) dimensions(s *tree.Style, cb containingBlock) dimensions {
	lc := ctx.lengthContext(s)
	var d dimensions
	d.width, d.autoWidth = resolveSize(s.Width, lc, cb.width, true)
	d.height, d.autoHeight = resolveSize(s.Height, lc, cb.height, cb.definite)
	d.minWidth, _ = resolveSize(s.MinWidth, lc, cb.width, true)
	d.minHeight, _ = resolveSize(s.MinHeight, lc, cb.height, cb.definite)
	d.maxWidth = resolveMax(s.MaxWidth, lc, cb.width, true)
	d.maxHeight = resolveMax(s.MaxHeight, lc, cb.height, cb.definite)
	for i, m := range s.Margin {
		d.autoMargin[i] = m.IsAuto()
	}
	return d
}

// resolvePercentages stores the margins, borders and paddings of `n`, and
// returns its used sizes. Percentages of margins and paddings refer to the
// width of the containing block, and auto margins are set to 0.
func (ctx *layoutContext) resolvePercentages(n *tree.Node, cb containingBlock) dimensions {
	s := n.Style
	lc := ctx.lengthContext(s)
	var margin, padding [4]Fl
	for i := range s.Margin {
		if !s.Margin[i].IsAuto() {
			margin[i] = s.Margin[i].Resolve(lc, cb.width)
		}
		padding[i] = utils.ClampPositive(s.Padding[i].Resolve(lc, cb.width))
	}
	b := &n.Box
	b.Margin = tree.Edges{Top: margin[0], Right: margin[1], Bottom: margin[2], Left: margin[3]}
	b.Padding = tree.Edges{Top: padding[0], Right: padding[1], Bottom: padding[2], Left: padding[3]}
	b.Border = tree.Edges{Top: s.Border[0].Width, Right: s.Border[1].Width, Bottom: s.Border[2].Width, Left: s.Border[3].Width}
	return ctx.dimensions(s, cb)
}

// horizontalEdges returns the sum of the horizontal margins, borders and
// paddings, ignoring percentages and auto margins.
func (ctx *layoutContext) horizontalEdges(s *tree.Style) Fl {
	lc := ctx.lengthContext(s)
	out := s.Border[1].Width + s.Border[3].Width
	for _, i := range [2]int{1, 3} {
		out += s.Margin[i].Resolve(lc, 0) + utils.ClampPositive(s.Padding[i].Resolve(lc, 0))
	}
	return out
}

func (ctx *layoutContext) relativePositioning(id tree.NodeID, cb containingBlock) {
	n := &ctx.t.Nodes[id]
	s := n.Style
	lc := ctx.lengthContext(s)
	var dx, dy Fl
	if top := s.Offsets[0]; !top.IsAuto() {
		dy = top.Resolve(lc, cb.height)
	} else if bottom := s.Offsets[2]; !bottom.IsAuto() {
		dy = -bottom.Resolve(lc, cb.height)
	}
	if left := s.Offsets[3]; !left.IsAuto() {
		dx = left.Resolve(lc, cb.width)
	} else if right := s.Offsets[1]; !right.IsAuto() {
		dx = -right.Resolve(lc, cb.width)
	}
	ctx.shiftSubtree(id, dx, dy)
}
