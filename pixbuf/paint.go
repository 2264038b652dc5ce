package pixbuf

import (
	"image"
	"math"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// kappa is the control point distance approximating a quarter of circle.
const kappa = 0.5522847498

// maxTiles bounds the number of copies of a repeated background image.
const maxTiles = 1 << 14

func hasRadius(r bridge.BorderRadii) bool {
	return r != bridge.BorderRadii{}
}

// roundedRect adds the outline of `pos` with elliptic corners to the
// current path.
func roundedRect(dc *gg.Context, pos bridge.Position, r bridge.BorderRadii) {
	x, y, w, h := float64(pos.X), float64(pos.Y), float64(pos.Width), float64(pos.Height)
	if !hasRadius(r) {
		dc.DrawRectangle(x, y, w, h)
		return
	}
	tlx, tly := float64(r.TopLeftX), float64(r.TopLeftY)
	trx, try := float64(r.TopRightX), float64(r.TopRightY)
	brx, bry := float64(r.BottomRightX), float64(r.BottomRightY)
	blx, bly := float64(r.BottomLeftX), float64(r.BottomLeftY)

	dc.NewSubPath()
	dc.MoveTo(x+tlx, y)
	dc.LineTo(x+w-trx, y)
	dc.CubicTo(x+w-trx*(1-kappa), y, x+w, y+try*(1-kappa), x+w, y+try)
	dc.LineTo(x+w, y+h-bry)
	dc.CubicTo(x+w, y+h-bry*(1-kappa), x+w-brx*(1-kappa), y+h, x+w-brx, y+h)
	dc.LineTo(x+blx, y+h)
	dc.CubicTo(x+blx*(1-kappa), y+h, x, y+h-bly*(1-kappa), x, y+h-bly)
	dc.LineTo(x, y+tly)
	dc.CubicTo(x, y+tly*(1-kappa), x+tlx*(1-kappa), y, x+tlx, y)
	dc.ClosePath()
}

func setColor(dc *gg.Context, c bridge.Color) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

func isEmpty(p bridge.Position) bool { return p.Width <= 0 || p.Height <= 0 }

// clipLayer restricts the drawing to the clip box of `layer` and to its
// rounded border box, on top of the active clips. It must be balanced by
// restoreClips.
func (c *Canvas) clipLayer(layer bridge.BackgroundLayer) {
	if !isEmpty(layer.ClipBox) {
		roundedRect(c.dc, layer.ClipBox, bridge.BorderRadii{})
		c.dc.Clip()
	}
	if hasRadius(layer.BorderRadius) {
		roundedRect(c.dc, layer.BorderBox, layer.BorderRadius)
		c.dc.Clip()
	}
}

func (c *Canvas) drawSolidFill(layer bridge.BackgroundLayer, color bridge.Color) {
	if color.A == 0 {
		return
	}
	c.fillLayer(layer, gg.NewSolidPattern(nrgba(color)))
}

// fillLayer paints the border box of `layer` with `pattern`.
func (c *Canvas) fillLayer(layer bridge.BackgroundLayer, pattern gg.Pattern) {
	if isEmpty(layer.BorderBox) {
		return
	}
	c.clipLayer(layer)
	defer c.restoreClips()
	roundedRect(c.dc, layer.BorderBox, layer.BorderRadius)
	c.dc.SetFillStyle(pattern)
	c.dc.Fill()
}

// scaled returns `img` resized to w x h pixels.
func scaled(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// tileStarts returns the first tile coordinate covering `from`, and the
// number of tiles needed to reach `to`.
func tileStarts(start, size, from, to float64, repeat bool) (float64, int) {
	if !repeat {
		return start, 1
	}
	first := start - math.Ceil((start-from)/size)*size
	return first, int(math.Ceil((to - first) / size))
}

// drawImage paints the image `url` in the tile given by the origin box of
// `layer`, repeated according to the layer, inside its clip box.
// Images without pixels (like SVG) draw nothing.
func (c *Canvas) drawImage(layer bridge.BackgroundLayer, url, baseURL string) {
	img := c.store.Image(url, baseURL)
	if img == nil {
		return
	}
	tile := layer.OriginBox
	w, h := int(math.Round(float64(tile.Width))), int(math.Round(float64(tile.Height)))
	if w < 1 || h < 1 {
		return
	}
	img = scaled(img, w, h)

	area := layer.ClipBox
	if isEmpty(area) {
		area = layer.BorderBox
	}
	repeatX := layer.Repeat == bridge.Repeat || layer.Repeat == bridge.RepeatX
	repeatY := layer.Repeat == bridge.Repeat || layer.Repeat == bridge.RepeatY
	x0, nx := tileStarts(float64(tile.X), float64(w), float64(area.X), float64(area.X+area.Width), repeatX)
	y0, ny := tileStarts(float64(tile.Y), float64(h), float64(area.Y), float64(area.Y+area.Height), repeatY)
	if nx*ny > maxTiles {
		return
	}

	c.clipLayer(layer)
	defer c.restoreClips()
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			x, y := x0+float64(i*w), y0+float64(j*h)
			c.dc.DrawImage(img, int(math.Round(x)), int(math.Round(y)))
		}
	}
}

// drawText draws `text` with its top left corner at `pos`, followed by
// the decorations of the font.
func (c *Canvas) drawText(text string, handle bridge.FontHandle, color bridge.Color, pos bridge.Position) {
	fd := c.fonts[handle]
	if fd == nil || color.A == 0 {
		return
	}
	m := fd.metrics
	width := c.textWidth(text, handle)
	baseline := float64(pos.Y + m.Ascent)
	if len(c.clips) == 0 {
		c.dc.SetFontFace(fd.face)
		setColor(c.dc, color)
		c.dc.DrawString(text, float64(pos.X), baseline)
	} else {
		// glyphs are not masked by gg: draw them on a layer,
		// which is composited through the clip mask
		ix, iy := math.Floor(float64(pos.X)), math.Floor(float64(pos.Y))
		lw, lh := int(math.Ceil(float64(width)))+2, int(math.Ceil(float64(m.Ascent+m.Descent)))+2
		layer := gg.NewContext(lw, lh)
		layer.SetFontFace(fd.face)
		setColor(layer, color)
		layer.DrawString(text, float64(pos.X)-ix+1, baseline-iy+1)
		c.dc.DrawImage(layer.Image(), int(ix)-1, int(iy)-1)
	}
	c.drawDecorations(fd, color, float64(pos.X), baseline, float64(width))
}

func (c *Canvas) drawDecorations(fd *fontData, textColor bridge.Color, x, baseline, width float64) {
	d := fd.descr
	if d.DecorationLine == 0 || width <= 0 {
		return
	}
	m := fd.metrics
	thickness := math.Max(1, float64(m.FontSize)/14)
	if d.DecorationThickness.Kind == bridge.ThicknessLength && d.DecorationThickness.Length > 0 {
		thickness = float64(d.DecorationThickness.Length)
	}
	color := d.DecorationColor
	if color.IsCurrentColor || color == (bridge.Color{}) {
		color = textColor
	}
	var ys []float64
	if d.DecorationLine&bridge.Underline != 0 {
		ys = append(ys, baseline+float64(m.Descent)/2)
	}
	if d.DecorationLine&bridge.Overline != 0 {
		ys = append(ys, baseline-float64(m.Ascent)+thickness/2)
	}
	if d.DecorationLine&bridge.LineThrough != 0 {
		ys = append(ys, baseline-float64(m.XHeight)/2)
	}

	c.dc.Push()
	defer c.dc.Pop()
	setColor(c.dc, color)
	c.dc.SetLineWidth(thickness)
	switch d.DecorationStyle {
	case bridge.DecorationDotted:
		c.dc.SetDash(thickness, thickness)
	case bridge.DecorationDashed:
		c.dc.SetDash(3*thickness, 3*thickness)
	}
	for _, y := range ys {
		c.dc.DrawLine(x, y, x+width, y)
		if d.DecorationStyle == bridge.DecorationDouble {
			c.dc.DrawLine(x, y+2*thickness, x+width, y+2*thickness)
		}
	}
	c.dc.Stroke()
}

// drawListMarker supports bullets, counters and images.
// Other kinds draw nothing.
func (c *Canvas) drawListMarker(m bridge.ListMarker) {
	pos := m.Pos
	if isEmpty(pos) {
		return
	}
	cx, cy := float64(pos.X+pos.Width/2), float64(pos.Y+pos.Height/2)
	r := math.Min(float64(pos.Width), float64(pos.Height)) / 2
	switch {
	case m.Kind == bridge.MarkerDisc:
		setColor(c.dc, m.Color)
		c.dc.DrawCircle(cx, cy, r)
		c.dc.Fill()
	case m.Kind == bridge.MarkerCircle:
		c.dc.Push()
		setColor(c.dc, m.Color)
		c.dc.SetLineWidth(1)
		c.dc.DrawCircle(cx, cy, r-0.5)
		c.dc.Stroke()
		c.dc.Pop()
	case m.Kind == bridge.MarkerSquare:
		setColor(c.dc, m.Color)
		roundedRect(c.dc, pos, bridge.BorderRadii{})
		c.dc.Fill()
	case m.Kind == bridge.MarkerImage:
		c.drawImage(bridge.BackgroundLayer{
			BorderBox: pos,
			ClipBox:   pos,
			OriginBox: pos,
			Repeat:    bridge.NoRepeat,
		}, m.Image, m.BaseURL)
	case m.Kind.IsOrdinal():
		c.drawText(m.Kind.Label(m.Index), m.Font, m.Color, pos)
	}
}

// drawBorders paints the four sides of `pos`. Uniform solid borders
// follow the rounded corners; other borders are drawn side by side.
func (c *Canvas) drawBorders(b bridge.Borders, pos bridge.Position) {
	if isEmpty(pos) {
		return
	}
	if hasRadius(b.Radius) && uniform(b) {
		c.drawRing(b, pos)
		return
	}
	x, y, w, h := pos.X, pos.Y, pos.Width, pos.Height
	c.drawSide(b.Top, bridge.Position{X: x, Y: y, Width: w, Height: b.Top.Width}, true)
	c.drawSide(b.Bottom, bridge.Position{X: x, Y: y + h - b.Bottom.Width, Width: w, Height: b.Bottom.Width}, true)
	c.drawSide(b.Left, bridge.Position{X: x, Y: y, Width: b.Left.Width, Height: h}, false)
	c.drawSide(b.Right, bridge.Position{X: x + w - b.Right.Width, Y: y, Width: b.Right.Width, Height: h}, false)
}

func visible(b bridge.Border) bool {
	return b.Width > 0 && b.Color.A != 0 && b.Style != bridge.BorderNone && b.Style != bridge.BorderHidden
}

// uniform returns true if the four sides are solid with the same color.
func uniform(b bridge.Borders) bool {
	for _, side := range [...]bridge.Border{b.Left, b.Top, b.Right, b.Bottom} {
		if !visible(side) || side.Style != bridge.BorderSolid || side.Color != b.Top.Color {
			return false
		}
	}
	return true
}

// drawRing fills the area between the rounded outer edge and the inner
// (padding) edge.
func (c *Canvas) drawRing(b bridge.Borders, pos bridge.Position) {
	inner := bridge.Position{
		X:      pos.X + b.Left.Width,
		Y:      pos.Y + b.Top.Width,
		Width:  pos.Width - b.Left.Width - b.Right.Width,
		Height: pos.Height - b.Top.Width - b.Bottom.Width,
	}
	r := b.Radius
	shrink := func(v, by bridge.Fl) bridge.Fl {
		if v -= by; v < 0 {
			return 0
		}
		return v
	}
	innerRadii := bridge.BorderRadii{
		TopLeftX: shrink(r.TopLeftX, b.Left.Width), TopLeftY: shrink(r.TopLeftY, b.Top.Width),
		TopRightX: shrink(r.TopRightX, b.Right.Width), TopRightY: shrink(r.TopRightY, b.Top.Width),
		BottomRightX: shrink(r.BottomRightX, b.Right.Width), BottomRightY: shrink(r.BottomRightY, b.Bottom.Width),
		BottomLeftX: shrink(r.BottomLeftX, b.Left.Width), BottomLeftY: shrink(r.BottomLeftY, b.Bottom.Width),
	}
	c.dc.Push()
	defer c.dc.Pop()
	setColor(c.dc, b.Top.Color)
	c.dc.SetFillRule(gg.FillRuleEvenOdd)
	roundedRect(c.dc, pos, r)
	if !isEmpty(inner) {
		roundedRect(c.dc, inner, innerRadii)
	}
	c.dc.Fill()
}

// drawSide paints one side in the rectangle `area`, whose long
// axis is horizontal for the top and bottom sides.
func (c *Canvas) drawSide(b bridge.Border, area bridge.Position, horizontal bool) {
	if !visible(b) {
		return
	}
	c.dc.Push()
	defer c.dc.Pop()
	setColor(c.dc, b.Color)
	width := float64(b.Width)
	x, y, w, h := float64(area.X), float64(area.Y), float64(area.Width), float64(area.Height)
	switch b.Style {
	case bridge.BorderDashed, bridge.BorderDotted:
		if b.Style == bridge.BorderDashed {
			c.dc.SetDash(3*width, 3*width)
		} else {
			c.dc.SetLineCap(gg.LineCapRound)
			c.dc.SetDash(0.001, 2*width)
		}
		c.dc.SetLineWidth(width)
		if horizontal {
			c.dc.DrawLine(x, y+h/2, x+w, y+h/2)
		} else {
			c.dc.DrawLine(x+w/2, y, x+w/2, y+h)
		}
		c.dc.Stroke()
	case bridge.BorderDouble:
		if width < 3 {
			c.dc.DrawRectangle(x, y, w, h)
		} else if horizontal {
			c.dc.DrawRectangle(x, y, w, h/3)
			c.dc.DrawRectangle(x, y+2*h/3, w, h/3)
		} else {
			c.dc.DrawRectangle(x, y, w/3, h)
			c.dc.DrawRectangle(x+2*w/3, y, w/3, h)
		}
		c.dc.Fill()
	default:
		// groove, ridge, inset and outset are drawn solid
		c.dc.DrawRectangle(x, y, w, h)
		c.dc.Fill()
	}
}
