// Package layout computes the geometry of a styled tree, and paints it
// through a backend.Container.
//
// The supported model is a pragmatic subset of CSS 2: block flow with
// sibling margin collapsing, inline flow with word wrapping and text
// alignment, inline blocks, replaced images, list markers, and relative,
// absolute and fixed positioning.
//
// Layout works in absolute coordinates: every border box is first placed in
// the document frame (or the viewport frame for fixed positioned subtrees),
// then stored relative to its parent, as expected by tree.Box.
package layout

import (
	"math"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
)

type Fl = utils.Fl

// infinite is the used value of `max-width: none`
const infinite = Fl(math.MaxFloat32)

type imageKey struct {
	src, baseURL string
}

// Layout keeps what survives between two layouts of the same tree:
// the images already requested, and the data the painting needs.
type Layout struct {
	requested map[imageKey]bool
	// texts stores the transformed text of words and spaces
	texts map[tree.NodeID]string
	// markers stores the list markers, relative to the border box of their item
	markers map[tree.NodeID]backend.ListMarker

	// Width and Height are the extents of the last layout, in document coordinates.
	Width, Height Fl
}

func New() *Layout {
	return &Layout{requested: make(map[imageKey]bool)}
}

// Requested returns true if the image has been requested by a previous layout.
func (l *Layout) Requested(src, baseURL string) bool {
	return l.requested[imageKey{src, baseURL}]
}

// Render lays out `t`, whose styles must be computed, in a containing block
// of width `maxWidth`. It returns the height of the document.
//
// Images whose size is not known yet are requested through c.LoadImage,
// once per image over the life of the Layout.
func (l *Layout) Render(t *tree.Tree, c backend.Container, maxWidth Fl) Fl {
	logger.ProgressLogger.Println("Step 4 - Layout")
	l.texts = make(map[tree.NodeID]string)
	l.markers = make(map[tree.NodeID]backend.ListMarker)
	l.Width, l.Height = 0, 0
	for i := range t.Nodes {
		t.Nodes[i].Box = tree.Box{}
	}
	root := t.Node(t.Root)
	if root == nil || root.Style == nil || root.Style.Display == tree.DisplayNone {
		return 0
	}

	ctx := newLayoutContext(l, t, c, utils.ClampPositive(maxWidth))
	icb := containingBlock{width: ctx.icb.Width, height: ctx.icb.Height, definite: ctx.icb.Height > 0}
	ctx.blockBoxLayout(t.Root, blockParams{cb: icb})
	ctx.layoutOutOfFlow()
	ctx.discoverImages(t.Root)

	ctx.storeBoxes(t.Root, backend.Point{}, false)
	return l.Height
}

type layoutContext struct {
	*Layout

	t *tree.Tree
	c backend.Container

	viewport backend.Rect
	// icb is the initial containing block
	icb          backend.Rect
	rootFontSize Fl

	// queue stores the out-of-flow boxes, laid out after the normal flow
	queue     []outOfFlowBox
	processed int

	spaceWidths map[backend.FontHandle]Fl
}

// outOfFlowBox is an absolutely or fixed positioned element,
// with its static position.
type outOfFlowBox struct {
	id               tree.NodeID
	staticX, staticY Fl
}

func newLayoutContext(l *Layout, t *tree.Tree, c backend.Container, maxWidth Fl) *layoutContext {
	ctx := &layoutContext{
		Layout:       l,
		t:            t,
		c:            c,
		viewport:     c.GetViewport(),
		rootFontSize: t.Nodes[t.Root].Style.Font.Size,
		spaceWidths:  make(map[backend.FontHandle]Fl),
	}
	ctx.viewport.Width = utils.ClampPositive(ctx.viewport.Width)
	ctx.viewport.Height = utils.ClampPositive(ctx.viewport.Height)
	ctx.icb = backend.Rect{Width: maxWidth, Height: ctx.viewport.Height}
	return ctx
}

func (ctx *layoutContext) lengthContext(s *tree.Style) *css.Context {
	return &css.Context{
		FontSize:     s.Font.Size,
		RootFontSize: ctx.rootFontSize,
		XHeight:      s.Metrics.XHeight,
		ChWidth:      s.Metrics.ChWidth,
		Viewport:     backend.Size{Width: ctx.viewport.Width, Height: ctx.viewport.Height},
		PtToPx:       ctx.c.PtToPx,
	}
}

func (ctx *layoutContext) spaceWidth(s *tree.Style) Fl {
	w, ok := ctx.spaceWidths[s.FontHandle]
	if !ok {
		w = ctx.c.TextWidth(" ", s.FontHandle)
		ctx.spaceWidths[s.FontHandle] = w
	}
	return w
}

// shiftSubtree moves the laid out boxes of `id` and its in-flow descendants,
// as well as the static position of the out-of-flow descendants not laid out yet.
func (ctx *layoutContext) shiftSubtree(id tree.NodeID, dx, dy Fl) {
	if dx == 0 && dy == 0 {
		return
	}
	ctx.translate(id, dx, dy)
	for i := ctx.processed; i < len(ctx.queue); i++ {
		if ctx.isDescendant(ctx.queue[i].id, id) {
			ctx.queue[i].staticX += dx
			ctx.queue[i].staticY += dy
		}
	}
}

func (ctx *layoutContext) translate(id tree.NodeID, dx, dy Fl) {
	n := &ctx.t.Nodes[id]
	if !n.Box.Laid {
		return
	}
	n.Box.Pos = n.Box.Pos.Translate(dx, dy)
	for i, r := range n.Box.Inline {
		n.Box.Inline[i] = r.Translate(dx, dy)
	}
	if m, ok := ctx.markers[id]; ok {
		m.Pos = m.Pos.Translate(dx, dy)
		ctx.markers[id] = m
	}
	for _, child := range n.Children {
		if cn := &ctx.t.Nodes[child]; !cn.IsText() && cn.Style.Position.IsOutOfFlow() {
			continue
		}
		ctx.translate(child, dx, dy)
	}
}

func (ctx *layoutContext) isDescendant(id, ancestor tree.NodeID) bool {
	for id != tree.NoNode {
		if id == ancestor {
			return true
		}
		id = ctx.t.Nodes[id].Parent
	}
	return false
}

// discoverImages requests the background images whose size is unknown.
// They never change the layout.
func (ctx *layoutContext) discoverImages(id tree.NodeID) {
	n := &ctx.t.Nodes[id]
	if n.IsText() || !n.Box.Laid {
		return
	}
	for _, img := range n.Style.BackgroundImages {
		if img.Gradient == nil && img.URL != "" {
			if ctx.c.GetImageSize(img.URL, img.BaseURL).IsEmpty() {
				ctx.requestImage(img.URL, img.BaseURL, true)
			}
		}
	}
	for _, child := range n.Children {
		ctx.discoverImages(child)
	}
}

func (ctx *layoutContext) requestImage(src, baseURL string, redrawOnly bool) {
	key := imageKey{src, baseURL}
	if ctx.requested[key] {
		return
	}
	ctx.requested[key] = true
	ctx.c.LoadImage(src, baseURL, redrawOnly)
}

// storeBoxes converts the absolute positions to positions relative to the parent,
// updating the extents of the document on the way. `parent` is the absolute
// origin of the parent border box.
func (ctx *layoutContext) storeBoxes(id tree.NodeID, parent backend.Point, inFixed bool) {
	n := &ctx.t.Nodes[id]
	b := &n.Box
	if !b.Laid {
		return
	}
	abs := b.Pos
	if !n.IsText() && n.Style.Position == tree.PositionFixed {
		b.Fixed, inFixed = true, true
		parent = backend.Point{}
	}
	if !inFixed {
		ctx.Width = utils.MaxF(ctx.Width, abs.Right()+b.Margin.Right)
		ctx.Height = utils.MaxF(ctx.Height, abs.Bottom()+b.Margin.Bottom)
	}
	b.Pos = abs.Translate(-parent.X, -parent.Y)
	for i, r := range b.Inline {
		b.Inline[i] = r.Translate(-parent.X, -parent.Y)
	}
	if m, ok := ctx.markers[id]; ok {
		m.Pos = m.Pos.Translate(-abs.X, -abs.Y)
		ctx.markers[id] = m
	}
	for _, child := range n.Children {
		ctx.storeBoxes(child, backend.Point{X: abs.X, Y: abs.Y}, inFixed)
	}
}
