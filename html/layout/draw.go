package layout

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/html/tree"
	"github.com/benoitkugler/litebridge/utils"
)

// walker visits the laid out nodes in painting order: the normal flow
// first, then the positioned elements, in the order they are found.
type walker struct {
	t *tree.Tree
	// origin is the surface position of the document origin,
	// fixedOrigin the one of the viewport
	origin, fixedOrigin backend.Point

	// enter is called with the border box of the node on the surface,
	// leave after its children
	enter func(id tree.NodeID, pos backend.Rect, fixed bool)
	leave func(id tree.NodeID)

	// pushClip and popClip apply again the overflow clip of an ancestor
	// around a positioned element, which is visited after its ancestors
	// were left. They may be nil.
	pushClip func(id tree.NodeID, pos backend.Rect)
	popClip  func(id tree.NodeID)

	deferred []tree.NodeID
}

// surfacePos returns the border box of `id` on the surface.
func (w *walker) surfacePos(id tree.NodeID) (backend.Rect, bool) {
	pos, fixed := w.t.Placement(id)
	o := w.origin
	if fixed {
		o = w.fixedOrigin
	}
	return pos.Translate(o.X, o.Y), fixed
}

func (w *walker) run() {
	root := w.t.Node(w.t.Root)
	if root == nil || !root.Box.Laid {
		return
	}
	w.deferred = append(w.deferred[:0], w.t.Root)
	for i := 0; i < len(w.deferred); i++ {
		id := w.deferred[i]
		var ancestors []tree.NodeID
		if i > 0 && w.pushClip != nil {
			ancestors = clipAncestors(w.t, id)
			for _, a := range ancestors {
				pos, _ := w.surfacePos(a)
				w.pushClip(a, pos)
			}
		}
		pos, fixed := w.surfacePos(id)
		w.visit(id, pos, fixed)
		for j := len(ancestors) - 1; j >= 0; j-- {
			w.popClip(ancestors[j])
		}
	}
}

func (w *walker) visit(id tree.NodeID, pos backend.Rect, fixed bool) {
	n := &w.t.Nodes[id]
	w.enter(id, pos, fixed)
	// children are relative to the origin of the border box
	dx, dy := pos.X, pos.Y
	for _, child := range n.Children {
		cn := &w.t.Nodes[child]
		if !cn.Box.Laid {
			continue
		}
		if !cn.IsText() && cn.Style.Position != tree.PositionStatic {
			w.deferred = append(w.deferred, child)
			continue
		}
		w.visit(child, cn.Box.Pos.Translate(dx, dy), fixed)
	}
	if w.leave != nil {
		w.leave(id)
	}
}

func clipsOverflow(n *tree.Node) bool {
	return n.Style.OverflowHidden && n.Style.Display != tree.DisplayInline
}

// clipAncestors returns the ancestors whose overflow clip applies to the
// positioned element `id`, outermost first. Absolutely positioned boxes
// escape the clips found before their containing block, fixed boxes
// escape every clip.
func clipAncestors(t *tree.Tree, id tree.NodeID) []tree.NodeID {
	n := &t.Nodes[id]
	if n.Style.Position == tree.PositionFixed {
		return nil
	}
	escaping := n.Style.Position == tree.PositionAbsolute
	var out []tree.NodeID
	for p := n.Parent; p != tree.NoNode; p = t.Nodes[p].Parent {
		pn := &t.Nodes[p]
		if escaping && pn.Style.Position != tree.PositionStatic {
			escaping = false
		}
		if !escaping && clipsOverflow(pn) {
			out = append(out, p)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// fragments returns the surface rectangles of an inline element, or its
// border box for the other nodes.
func fragments(n *tree.Node, pos backend.Rect) []backend.Rect {
	if len(n.Box.Inline) == 0 {
		return []backend.Rect{pos}
	}
	dx, dy := pos.X-n.Box.Pos.X, pos.Y-n.Box.Pos.Y
	out := make([]backend.Rect, len(n.Box.Inline))
	for i, r := range n.Box.Inline {
		out[i] = r.Translate(dx, dy)
	}
	return out
}

type drawer struct {
	*Layout
	t    *tree.Tree
	c    backend.Container
	s    backend.Surface
	clip *backend.Rect

	viewport backend.Rect
	origin   backend.Point
	// body is the element whose background is painted by the root, if any
	body    tree.NodeID
	clipped map[tree.NodeID]bool
}

// Draw paints the last layout of `t` on `s`, with the document origin at (x, y).
// Fixed positioned elements are painted relative to the viewport.
// When `clip` is not nil, the painting of what is outside of it may be skipped.
func (l *Layout) Draw(t *tree.Tree, c backend.Container, s backend.Surface, x, y Fl, clip *backend.Rect) {
	vp := c.GetViewport()
	d := &drawer{
		Layout: l, t: t, c: c, s: s, clip: clip,
		viewport: vp,
		origin:   backend.Point{X: x, Y: y},
		body:     tree.NoNode,
		clipped:  make(map[tree.NodeID]bool),
	}
	w := walker{
		t:           t,
		origin:      d.origin,
		fixedOrigin: backend.Point{X: vp.X, Y: vp.Y},
		enter:       d.enter,
		leave:       d.leave,
		pushClip:    d.clipTo,
		popClip:     func(tree.NodeID) { d.c.DelClip() },
	}
	w.run()
}

func (d *drawer) visible(r backend.Rect) bool {
	return d.clip == nil || r.Intersects(*d.clip)
}

func (d *drawer) enter(id tree.NodeID, pos backend.Rect, fixed bool) {
	n := &d.t.Nodes[id]
	s := n.Style
	if n.IsText() {
		d.drawText(id, n, pos)
		return
	}
	if !s.Hidden {
		if id == d.t.Root {
			d.drawRootBackground(n, pos)
		} else if id != d.body {
			frags := fragments(n, pos)
			for i, frag := range frags {
				d.drawBackground(s, frag, frag, false)
				d.drawBorders(n, frag, i == 0, i == len(frags)-1, false)
			}
		}
		if id == d.body {
			d.drawBorders(n, pos, true, true, false)
		}
		if n.Tag == "img" {
			d.drawImage(n, pos)
		}
		if m, ok := d.markers[id]; ok {
			m.Pos = m.Pos.Translate(pos.X, pos.Y)
			if d.visible(m.Pos) {
				d.c.DrawListMarker(d.s, m)
			}
		}
	}
	if clipsOverflow(n) {
		d.clipTo(id, pos)
		d.clipped[id] = true
	}
}

// clipTo restricts the painting to the padding box of `id`.
func (d *drawer) clipTo(id tree.NodeID, pos backend.Rect) {
	n := &d.t.Nodes[id]
	d.c.SetClip(paddingBox(n, pos), innerRadii(d.radii(n.Style, pos), n.Box.Border))
}

func (d *drawer) leave(id tree.NodeID) {
	if d.clipped[id] {
		d.c.DelClip()
	}
}

// shrink removes the edges `e` from `r`.
func shrink(r backend.Rect, e tree.Edges) backend.Rect {
	return backend.Rect{
		X: r.X + e.Left, Y: r.Y + e.Top,
		Width:  utils.ClampPositive(r.Width - e.Horizontal()),
		Height: utils.ClampPositive(r.Height - e.Vertical()),
	}
}

func paddingBox(n *tree.Node, pos backend.Rect) backend.Rect { return shrink(pos, n.Box.Border) }

func contentBox(n *tree.Node, pos backend.Rect) backend.Rect {
	return shrink(paddingBox(n, pos), n.Box.Padding)
}

func (d *drawer) drawText(id tree.NodeID, n *tree.Node, pos backend.Rect) {
	s := n.Style
	if s.Hidden || n.Kind == tree.LineBreakNode || !d.visible(pos) {
		return
	}
	if n.Kind == tree.SpaceNode && !s.Metrics.DrawSpaces {
		return
	}
	text, ok := d.texts[id]
	if !ok {
		text = n.Text
	}
	d.c.DrawText(d.s, text, s.FontHandle, s.Color, pos)
}

// drawRootBackground paints the background of the root element over the
// whole canvas. When the root has no background, the one of <body> is used.
func (d *drawer) drawRootBackground(root *tree.Node, pos backend.Rect) {
	style := root.Style
	if !hasBackground(style) {
		for _, child := range root.Children {
			if cn := &d.t.Nodes[child]; cn.Tag == "body" && cn.Box.Laid && hasBackground(cn.Style) {
				style, d.body = cn.Style, child
				break
			}
		}
	}
	canvas := backend.Rect{
		X: d.origin.X, Y: d.origin.Y,
		Width:  utils.MaxF(d.Width, d.viewport.Width),
		Height: utils.MaxF(d.Height, d.viewport.Height),
	}
	d.drawBackground(style, pos, canvas, true)
	d.drawBorders(root, pos, true, true, true)
}

func hasBackground(s *tree.Style) bool {
	return !s.BackgroundColor.IsTransparent() || len(s.BackgroundImages) != 0
}

// area returns the box selected by background-clip or background-origin.
// The edges are resolved from the style, which may be the one of <body>
// painted on the root.
func (d *drawer) area(s *tree.Style, border backend.Rect, area tree.BoxArea) backend.Rect {
	if area == tree.BorderBox {
		return border
	}
	e := tree.Edges{Top: s.Border[0].Width, Right: s.Border[1].Width, Bottom: s.Border[2].Width, Left: s.Border[3].Width}
	if area == tree.ContentBox {
		lc := d.lengthContext(s)
		e.Top += s.Padding[0].Resolve(lc, border.Width)
		e.Right += s.Padding[1].Resolve(lc, border.Width)
		e.Bottom += s.Padding[2].Resolve(lc, border.Width)
		e.Left += s.Padding[3].Resolve(lc, border.Width)
	}
	return shrink(border, e)
}

func (d *drawer) lengthContext(s *tree.Style) *css.Context {
	root := d.t.Nodes[d.t.Root].Style
	return &css.Context{
		FontSize:     s.Font.Size,
		RootFontSize: root.Font.Size,
		XHeight:      s.Metrics.XHeight,
		ChWidth:      s.Metrics.ChWidth,
		Viewport:     backend.Size{Width: d.viewport.Width, Height: d.viewport.Height},
		PtToPx:       d.c.PtToPx,
	}
}

// drawBackground paints the background color and layers of `s`,
// for the border box `border`. `paintArea` replaces the clip box for the root.
func (d *drawer) drawBackground(s *tree.Style, border, paintArea backend.Rect, root bool) {
	if !hasBackground(s) {
		return
	}
	clipBox := d.area(s, border, s.BackgroundClip)
	if root {
		clipBox = paintArea
	}
	if !d.visible(clipBox) {
		return
	}
	radii := d.radii(s, border)
	layer := backend.BackgroundLayer{
		BorderBox:    border,
		ClipBox:      clipBox,
		OriginBox:    d.area(s, border, s.BackgroundOrigin),
		BorderRadius: radii,
		Attachment:   s.BackgroundAttachment,
		Repeat:       s.BackgroundRepeat,
		IsRoot:       root,
	}
	if !s.BackgroundColor.IsTransparent() {
		d.c.DrawSolidFill(d.s, layer, s.BackgroundColor)
	}
	if s.BackgroundAttachment == backend.AttachmentFixed {
		layer.OriginBox = d.viewport
	}
	lc := d.lengthContext(s)
	// the first image is on top
	for i := len(s.BackgroundImages) - 1; i >= 0; i-- {
		img := s.BackgroundImages[i]
		l := layer
		l.OriginBox = d.tile(s, img, layer.OriginBox)
		if l.OriginBox.Width <= 0 || l.OriginBox.Height <= 0 {
			continue
		}
		if g := img.Gradient; g != nil {
			switch g.Kind {
			case css.LinearGradient:
				d.c.DrawLinearGradient(d.s, l, g.Linear(lc, l.OriginBox, s.Color))
			case css.RadialGradient:
				d.c.DrawRadialGradient(d.s, l, g.Radial(lc, l.OriginBox, s.Color))
			case css.ConicGradient:
				d.c.DrawConicGradient(d.s, l, g.Conic(lc, l.OriginBox, s.Color))
			}
			continue
		}
		d.c.DrawImage(d.s, l, img.URL, img.BaseURL)
	}
}

// tile returns the position and size of the first tile of a layer,
// from background-size and background-position.
func (d *drawer) tile(s *tree.Style, img tree.BackgroundImage, origin backend.Rect) backend.Rect {
	var iw, ih Fl
	if img.Gradient == nil {
		size := d.c.GetImageSize(img.URL, img.BaseURL)
		if size.IsEmpty() {
			return backend.Rect{}
		}
		iw, ih = size.Width, size.Height
	} else {
		iw, ih = origin.Width, origin.Height
	}
	lc := d.lengthContext(s)
	sw, sh := s.BackgroundSize[0], s.BackgroundSize[1]
	var w, h Fl
	switch {
	case !sw.IsAuto() && !sh.IsAuto():
		w, h = sw.Resolve(lc, origin.Width), sh.Resolve(lc, origin.Height)
	case !sw.IsAuto():
		w = sw.Resolve(lc, origin.Width)
		h = ih
		if iw > 0 {
			h = w * ih / iw
		}
	case !sh.IsAuto():
		h = sh.Resolve(lc, origin.Height)
		w = iw
		if ih > 0 {
			w = h * iw / ih
		}
	default:
		w, h = iw, ih
	}
	return backend.Rect{
		X:      origin.X + s.BackgroundPosition[0].Resolve(lc, origin.Width-w),
		Y:      origin.Y + s.BackgroundPosition[1].Resolve(lc, origin.Height-h),
		Width:  w,
		Height: h,
	}
}

// radii resolves the border radii, reduced so that adjacent
// corners do not overlap.
func (d *drawer) radii(s *tree.Style, border backend.Rect) backend.BorderRadii {
	lc := d.lengthContext(s)
	var r [4][2]Fl
	for i, corner := range s.Radius {
		r[i][0] = utils.ClampPositive(corner[0].Resolve(lc, border.Width))
		r[i][1] = utils.ClampPositive(corner[1].Resolve(lc, border.Height))
	}
	f := Fl(1)
	for _, side := range [4]struct {
		sum, length Fl
	}{
		{r[0][0] + r[1][0], border.Width},  // top
		{r[3][0] + r[2][0], border.Width},  // bottom
		{r[0][1] + r[3][1], border.Height}, // left
		{r[1][1] + r[2][1], border.Height}, // right
	} {
		if side.sum > 0 && side.length/side.sum < f {
			f = side.length / side.sum
		}
	}
	return backend.BorderRadii{
		TopLeftX: r[0][0] * f, TopLeftY: r[0][1] * f,
		TopRightX: r[1][0] * f, TopRightY: r[1][1] * f,
		BottomRightX: r[2][0] * f, BottomRightY: r[2][1] * f,
		BottomLeftX: r[3][0] * f, BottomLeftY: r[3][1] * f,
	}
}

// innerRadii returns the radii of the padding box.
func innerRadii(r backend.BorderRadii, e tree.Edges) backend.BorderRadii {
	c := utils.ClampPositive
	return backend.BorderRadii{
		TopLeftX: c(r.TopLeftX - e.Left), TopLeftY: c(r.TopLeftY - e.Top),
		TopRightX: c(r.TopRightX - e.Right), TopRightY: c(r.TopRightY - e.Top),
		BottomRightX: c(r.BottomRightX - e.Right), BottomRightY: c(r.BottomRightY - e.Bottom),
		BottomLeftX: c(r.BottomLeftX - e.Left), BottomLeftY: c(r.BottomLeftY - e.Bottom),
	}
}

func toBorder(side tree.BorderSide) backend.Border {
	return backend.Border{Width: side.Width, Style: side.Style, Color: side.Color}
}

// drawBorders paints the borders of one fragment: inline elements only
// have a left border on their first line, and a right one on their last.
func (d *drawer) drawBorders(n *tree.Node, pos backend.Rect, first, last, root bool) {
	s := n.Style
	borders := backend.Borders{
		Top:    toBorder(s.Border[0]),
		Right:  toBorder(s.Border[1]),
		Bottom: toBorder(s.Border[2]),
		Left:   toBorder(s.Border[3]),
		Radius: d.radii(s, pos),
	}
	if !first {
		borders.Left = backend.Border{}
	}
	if !last {
		borders.Right = backend.Border{}
	}
	if !borders.IsVisible() || !d.visible(pos) {
		return
	}
	d.c.DrawBorders(d.s, borders, pos, root)
}

func (d *drawer) drawImage(n *tree.Node, pos backend.Rect) {
	src := n.Attr("src")
	if src == "" || d.c.GetImageSize(src, d.t.BaseURL).IsEmpty() {
		return
	}
	content := contentBox(n, pos)
	if !d.visible(content) {
		return
	}
	layer := backend.BackgroundLayer{
		BorderBox:    pos,
		ClipBox:      content,
		OriginBox:    content,
		BorderRadius: innerRadii(d.radii(n.Style, pos), n.Box.Border),
		Repeat:       backend.NoRepeat,
	}
	d.c.DrawImage(d.s, layer, src, d.t.BaseURL)
}
