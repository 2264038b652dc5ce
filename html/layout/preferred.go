package layout

import (
	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/utils"
)

// preferred accumulates the width of the current line.
type preferred struct {
	line, best Fl
}

func (p *preferred) flush() Fl {
	p.best = utils.MaxF(p.best, p.line)
	p.line = 0
	return p.best
}

// maxContentWidth returns the width of the content of `id` when
// lines are only broken at forced breaks.
func (ctx *layoutContext) maxContentWidth(id tree.NodeID) Fl {
	n := &ctx.t.Nodes[id]
	if n.Tag == "img" {
		return ctx.replacedWidth(n)
	}
	var p preferred
	ctx.addPreferred(&p, n.Children)
	return p.flush()
}

func (ctx *layoutContext) addPreferred(p *preferred, children []tree.NodeID) {
	for _, id := range children {
		n := &ctx.t.Nodes[id]
		s := n.Style
		switch n.Kind {
		case tree.TextNode:
			p.line += ctx.c.TextWidth(ctx.transform(n.Text, s), s.FontHandle)
			continue
		case tree.SpaceNode, tree.LineBreakNode:
			it := ctx.spaceItem(id, n)
			if it.kind == itemBreak {
				p.flush()
			} else {
				p.line += it.width
			}
			continue
		}
		switch {
		case s.Display == tree.DisplayNone || s.Position.IsOutOfFlow():
		case n.Tag == "br":
			p.flush()
		case s.Display == tree.DisplayInline:
			edges := ctx.horizontalEdges(s)
			p.line += edges
			ctx.addPreferred(p, n.Children)
		case s.Display == tree.DisplayInlineBlock:
			p.line += ctx.outerPreferredWidth(id)
		default:
			p.flush()
			p.best = utils.MaxF(p.best, ctx.outerPreferredWidth(id))
		}
	}
}

// outerPreferredWidth returns the width of the margin box of `id`
// laid out with its preferred width.
func (ctx *layoutContext) outerPreferredWidth(id tree.NodeID) Fl {
	s := ctx.t.Nodes[id].Style
	edges := ctx.horizontalEdges(s)
	if !s.Width.IsAuto() && s.Width.Unit != css.UnitPercent {
		return utils.ClampPositive(s.Width.Resolve(ctx.lengthContext(s), 0)) + edges
	}
	d := ctx.dimensions(s, containingBlock{})
	return d.clampWidth(ctx.maxContentWidth(id)) + edges
}
