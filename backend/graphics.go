// Package backend defines the services the layout engine expects from its host,
// and the engine-native values exchanged with it.
//
// The engine never draws or measures anything by itself: every font metric,
// image size and drawing operation goes through a Container.
// Values in this package are the engine representation; the bridge package
// translates them to the host-facing structures.
package backend

import (
	"github.com/benoitkugler/litebridge/utils"
)

type Fl = utils.Fl

// Rect is a rectangle in layout units. The y axis grows downward.
type Rect struct {
	X, Y, Width, Height Fl
}

func (r Rect) Right() Fl  { return r.X + r.Width }
func (r Rect) Bottom() Fl { return r.Y + r.Height }

// Contains returns true if (x, y) is inside the rectangle (right and bottom edges excluded).
func (r Rect) Contains(x, y Fl) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersects returns true if the two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy Fl) Rect {
	r.X += dx
	r.Y += dy
	return r
}

type Point struct {
	X, Y Fl
}

type Size struct {
	Width, Height Fl
}

func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// WebColor is a RGBA color. IsCurrentColor marks the CSS `currentColor` keyword,
// which is resolved against the `color` property when needed.
type WebColor struct {
	R, G, B, A     uint8
	IsCurrentColor bool
}

var (
	Black       = WebColor{A: 255}
	White       = WebColor{R: 255, G: 255, B: 255, A: 255}
	Transparent = WebColor{}
)

// IsTransparent returns true if the color has a zero alpha and is not `currentColor`.
func (c WebColor) IsTransparent() bool { return c.A == 0 && !c.IsCurrentColor }

// Resolve replaces `currentColor` by `current`.
func (c WebColor) Resolve(current WebColor) WebColor {
	if c.IsCurrentColor {
		return current
	}
	return c
}

// BorderRadii stores the horizontal and vertical radius of each corner.
type BorderRadii struct {
	TopLeftX, TopLeftY         Fl
	TopRightX, TopRightY       Fl
	BottomRightX, BottomRightY Fl
	BottomLeftX, BottomLeftY   Fl
}

func (b BorderRadii) IsZero() bool { return b == BorderRadii{} }

type BorderStyle uint8

const (
	BorderNone BorderStyle = iota
	BorderHidden
	BorderDotted
	BorderDashed
	BorderSolid
	BorderDouble
	BorderGroove
	BorderRidge
	BorderInset
	BorderOutset
)

type Border struct {
	Width Fl
	Style BorderStyle
	Color WebColor
}

// IsVisible returns true if the border occupies some space and is painted.
func (b Border) IsVisible() bool {
	return b.Width > 0 && b.Style != BorderNone && b.Style != BorderHidden
}

type Borders struct {
	Left, Top, Right, Bottom Border
	Radius                   BorderRadii
}

// IsVisible returns true if at least one side is painted.
func (b Borders) IsVisible() bool {
	return b.Left.IsVisible() || b.Top.IsVisible() || b.Right.IsVisible() || b.Bottom.IsVisible()
}

type BackgroundAttachment uint8

const (
	AttachmentScroll BackgroundAttachment = iota
	AttachmentFixed
	AttachmentLocal
)

type BackgroundRepeat uint8

const (
	Repeat BackgroundRepeat = iota
	RepeatX
	RepeatY
	NoRepeat
)

// BackgroundLayer describes the geometry of one background layer.
type BackgroundLayer struct {
	// BorderBox is the box used for the border radius.
	BorderBox Rect
	// ClipBox is the painting area (background-clip).
	ClipBox Rect
	// OriginBox is the positioning area (background-origin), also the size
	// of the image for `draw_image`.
	OriginBox    Rect
	BorderRadius BorderRadii
	Attachment   BackgroundAttachment
	Repeat       BackgroundRepeat
	IsRoot       bool
}

type ColorSpace uint8

const (
	ColorSpaceNone ColorSpace = iota
	ColorSpaceSRGB
	ColorSpaceSRGBLinear
	ColorSpaceDisplayP3
	ColorSpaceA98RGB
	ColorSpaceProphotoRGB
	ColorSpaceRec2020
	ColorSpaceLab
	ColorSpaceOklab
	ColorSpaceXYZ
	ColorSpaceXYZD50
	ColorSpaceXYZD65
	ColorSpaceHSL
	ColorSpaceHWB
	ColorSpaceLCH
	ColorSpaceOklch
)

type HueInterpolation uint8

const (
	HueNone HueInterpolation = iota
	HueShorter
	HueLonger
	HueIncreasing
	HueDecreasing
)

// ColorPoint is a gradient stop, Offset being in [0, 1].
type ColorPoint struct {
	Offset Fl
	Color  WebColor
}

// GradientBase is shared by the three gradient kinds.
type GradientBase struct {
	ColorPoints      []ColorPoint
	ColorSpace       ColorSpace
	HueInterpolation HueInterpolation
}

// LinearGradient goes from Start to End, in absolute coordinates.
type LinearGradient struct {
	GradientBase
	Start, End Point
}

// RadialGradient has its center at Position, with horizontal and vertical radius.
type RadialGradient struct {
	GradientBase
	Position Point
	Radius   Point
}

// ConicGradient turns around Position, starting at Angle (degrees, clockwise from top).
type ConicGradient struct {
	GradientBase
	Position Point
	Angle    Fl
	Radius   Fl
}
