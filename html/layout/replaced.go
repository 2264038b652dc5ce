package layout

import (
	"strings"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/utils"
)

// intrinsicSize returns the size of the image of an <img> element, or a zero
// size when it is not available. In that case, the image is requested,
// and `redrawOnly` tells if its size will not change the layout.
func (ctx *layoutContext) intrinsicSize(n *tree.Node, redrawOnly bool) backend.Size {
	src := strings.TrimSpace(n.Attr("src"))
	if src == "" {
		return backend.Size{}
	}
	size := ctx.c.GetImageSize(src, ctx.t.BaseURL)
	if size.IsEmpty() {
		ctx.requestImage(src, ctx.t.BaseURL, redrawOnly)
		return backend.Size{}
	}
	return size
}

// replacedLayout resolves the used size of an image, keeping its intrinsic ratio
// when only one dimension is specified.
func (ctx *layoutContext) replacedLayout(n *tree.Node, d *dimensions) {
	intrinsic := ctx.intrinsicSize(n, !d.autoWidth && !d.autoHeight)
	w, h := utils.ClampPositive(intrinsic.Width), utils.ClampPositive(intrinsic.Height)
	switch {
	case d.autoWidth && d.autoHeight:
		d.width, d.height = w, h
	case d.autoWidth:
		d.width = 0
		if h > 0 {
			d.width = d.height * w / h
		}
	case d.autoHeight:
		d.height = 0
		if w > 0 {
			d.height = d.width * h / w
		}
	}
	d.autoWidth, d.autoHeight = false, false
	d.width, d.height = d.clampWidth(d.width), d.clampHeight(d.height)
}

// replacedWidth is the outer width of an image, used for shrink-to-fit.
func (ctx *layoutContext) replacedWidth(n *tree.Node) Fl {
	d := ctx.dimensions(n.Style, containingBlock{})
	ctx.replacedLayout(n, &d)
	return d.width
}
