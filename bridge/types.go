package bridge

import (
	"fmt"

	"github.com/benoitkugler/litebridge/utils"
)

type Fl = utils.Fl

// FontHandle is the opaque value returned by Table.CreateFont.
// The bridge never interprets it.
type FontHandle uintptr

// Surface is the host drawing target given to Document.Draw, and
// passed back unchanged to each drawing slot.
type Surface = interface{}

type Position struct {
	X, Y, Width, Height Fl
}

type Size struct {
	Width, Height Fl
}

type Point struct {
	X, Y Fl
}

// Color is a RGBA color. IsCurrentColor flags the CSS `currentColor` keyword.
type Color struct {
	R, G, B, A     uint8
	IsCurrentColor bool
}

func (c Color) String() string {
	if c.IsCurrentColor {
		return "currentColor"
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

type FontMetrics struct {
	FontSize   Fl
	Height     Fl
	Ascent     Fl
	Descent    Fl
	XHeight    Fl
	ChWidth    Fl
	DrawSpaces bool
	SubShift   Fl
	SuperShift Fl
}

type BorderRadii struct {
	TopLeftX, TopLeftY         Fl
	TopRightX, TopRightY       Fl
	BottomRightX, BottomRightY Fl
	BottomLeftX, BottomLeftY   Fl
}

type Border struct {
	Width Fl
	Style BorderStyle
	Color Color
}

type Borders struct {
	Left, Top, Right, Bottom Border
	Radius                   BorderRadii
}

// DecorationThickness is the computed `text-decoration-thickness`.
type DecorationThickness struct {
	Kind   ThicknessKind
	Length Fl // for ThicknessLength
}

type ThicknessKind uint8

const (
	ThicknessAuto ThicknessKind = iota
	ThicknessFromFont
	ThicknessLength
)

type FontDescription struct {
	Family              string
	Size                Fl
	Style               FontStyle
	Weight              int
	DecorationLine      DecorationLine
	DecorationThickness DecorationThickness
	DecorationStyle     TextDecorationStyle
	DecorationColor     Color
	EmphasisStyle       string
	EmphasisColor       Color
	EmphasisPosition    int
}

// DecorationLine is a bit set.
type DecorationLine uint8

const (
	Underline DecorationLine = 1 << iota
	Overline
	LineThrough
)

type BackgroundLayer struct {
	BorderBox    Position
	ClipBox      Position
	OriginBox    Position
	BorderRadius BorderRadii
	Attachment   BackgroundAttachment
	Repeat       BackgroundRepeat
	IsRoot       bool
}

type ColorStop struct {
	Offset Fl
	Color  Color
}

type LinearGradient struct {
	Start, End       Point
	Stops            []ColorStop
	ColorSpace       ColorSpace
	HueInterpolation HueInterpolation
}

type RadialGradient struct {
	Position         Point
	Radius           Point
	Stops            []ColorStop
	ColorSpace       ColorSpace
	HueInterpolation HueInterpolation
}

type ConicGradient struct {
	Position         Point
	Angle            Fl
	Radius           Fl
	Stops            []ColorStop
	ColorSpace       ColorSpace
	HueInterpolation HueInterpolation
}

// ListMarker describes a list item marker.
// Hosts should draw nothing for a Kind they do not support.
type ListMarker struct {
	Image   string
	BaseURL string
	Kind    MarkerKind
	Color   Color
	Pos     Position
	Index   int
	Font    FontHandle
}

type MediaFeatures struct {
	Type         MediaType
	Width        Fl
	Height       Fl
	DeviceWidth  Fl
	DeviceHeight Fl
	Color        int
	ColorIndex   int
	Monochrome   int
	Resolution   Fl
}

// enumerations

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

var borderStyleNames = [...]string{"none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset"}

func (b BorderStyle) String() string { return enumName(borderStyleNames[:], int(b), "BorderStyle") }

// BorderStyleFromInt decodes `v`, mapping unknown values to BorderNone.
func BorderStyleFromInt(v int) BorderStyle {
	if v < 0 || v >= len(borderStyleNames) {
		return BorderNone
	}
	return BorderStyle(v)
}

type FontStyle uint8

const (
	FontNormal FontStyle = iota
	FontItalic
	FontOblique
)

var fontStyleNames = [...]string{"normal", "italic", "oblique"}

func (f FontStyle) String() string { return enumName(fontStyleNames[:], int(f), "FontStyle") }

type TextDecorationStyle uint8

const (
	DecorationSolid TextDecorationStyle = iota
	DecorationDouble
	DecorationDotted
	DecorationDashed
	DecorationWavy
)

var decorationStyleNames = [...]string{"solid", "double", "dotted", "dashed", "wavy"}

func (d TextDecorationStyle) String() string {
	return enumName(decorationStyleNames[:], int(d), "TextDecorationStyle")
}

type MediaType uint8

const (
	MediaUnknown MediaType = iota
	MediaAll
	MediaPrint
	MediaScreen
)

var mediaTypeNames = [...]string{"unknown", "all", "print", "screen"}

func (m MediaType) String() string { return enumName(mediaTypeNames[:], int(m), "MediaType") }

// MediaTypeFromInt decodes `v`, mapping unknown values to MediaUnknown.
func MediaTypeFromInt(v int) MediaType {
	if v < 0 || v >= len(mediaTypeNames) {
		return MediaUnknown
	}
	return MediaType(v)
}

type TextTransform uint8

const (
	TransformNone TextTransform = iota
	TransformCapitalize
	TransformUppercase
	TransformLowercase
)

var textTransformNames = [...]string{"none", "capitalize", "uppercase", "lowercase"}

func (t TextTransform) String() string { return enumName(textTransformNames[:], int(t), "TextTransform") }

type TextAlign uint8

const (
	AlignLeft TextAlign = iota
	AlignRight
	AlignCenter
	AlignJustify
)

var textAlignNames = [...]string{"left", "right", "center", "justify"}

func (t TextAlign) String() string { return enumName(textAlignNames[:], int(t), "TextAlign") }

type MouseEvent uint8

const (
	MouseEnter MouseEvent = iota
	MouseLeave
)

var mouseEventNames = [...]string{"enter", "leave"}

func (m MouseEvent) String() string { return enumName(mouseEventNames[:], int(m), "MouseEvent") }

// ColorSpace is the gradient color interpolation space.
type ColorSpace uint8

const (
	SpaceNone ColorSpace = iota
	SpaceSRGB
	SpaceSRGBLinear
	SpaceDisplayP3
	SpaceA98RGB
	SpaceProphotoRGB
	SpaceRec2020
	SpaceLab
	SpaceOklab
	SpaceXYZ
	SpaceXYZD50
	SpaceXYZD65
	SpaceHSL
	SpaceHWB
	SpaceLCH
	SpaceOklch
)

var colorSpaceNames = [...]string{
	"none", "srgb", "srgb-linear", "display-p3", "a98-rgb", "prophoto-rgb", "rec2020",
	"lab", "oklab", "xyz", "xyz-d50", "xyz-d65", "hsl", "hwb", "lch", "oklch",
}

func (c ColorSpace) String() string { return enumName(colorSpaceNames[:], int(c), "ColorSpace") }

// ColorSpaceFromInt decodes `v`, mapping unknown values to SpaceNone.
func ColorSpaceFromInt(v int) ColorSpace {
	if v < 0 || v >= len(colorSpaceNames) {
		return SpaceNone
	}
	return ColorSpace(v)
}

type HueInterpolation uint8

const (
	HueNone HueInterpolation = iota
	HueShorter
	HueLonger
	HueIncreasing
	HueDecreasing
)

var hueNames = [...]string{"none", "shorter", "longer", "increasing", "decreasing"}

func (h HueInterpolation) String() string { return enumName(hueNames[:], int(h), "HueInterpolation") }

type BackgroundAttachment uint8

const (
	AttachmentScroll BackgroundAttachment = iota
	AttachmentFixed
	AttachmentLocal
)

var attachmentNames = [...]string{"scroll", "fixed", "local"}

func (a BackgroundAttachment) String() string {
	return enumName(attachmentNames[:], int(a), "BackgroundAttachment")
}

type BackgroundRepeat uint8

const (
	Repeat BackgroundRepeat = iota
	RepeatX
	RepeatY
	NoRepeat
)

var repeatNames = [...]string{"repeat", "repeat-x", "repeat-y", "no-repeat"}

func (r BackgroundRepeat) String() string { return enumName(repeatNames[:], int(r), "BackgroundRepeat") }

// MarkerKind is the list-style-type of a marker.
// New kinds may be added: hosts must ignore the ones they do not know.
type MarkerKind uint8

const (
	MarkerNone MarkerKind = iota
	MarkerCircle
	MarkerDisc
	MarkerSquare
	MarkerDecimal
	MarkerDecimalLeadingZero
	MarkerLowerAlpha
	MarkerUpperAlpha
	MarkerLowerRoman
	MarkerUpperRoman
	MarkerLowerGreek
	MarkerImage
)

var markerNames = [...]string{
	"none", "circle", "disc", "square", "decimal", "decimal-leading-zero",
	"lower-alpha", "upper-alpha", "lower-roman", "upper-roman", "lower-greek", "image",
}

func (m MarkerKind) String() string { return enumName(markerNames[:], int(m), "MarkerKind") }

// IsOrdinal returns true for the kinds drawn as a counter text.
func (m MarkerKind) IsOrdinal() bool {
	return m >= MarkerDecimal && m <= MarkerLowerGreek
}

func enumName(names []string, v int, kind string) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return fmt.Sprintf("<unknown %s %d>", kind, v)
}
