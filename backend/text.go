package backend

import (
	"strconv"
	"strings"
)

// FontHandle is an opaque value returned by the host when creating a font.
// The engine never interprets it.
type FontHandle uintptr

type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique
)

// DecorationLine is a bit set of text decorations.
type DecorationLine uint8

const (
	DecorationUnderline DecorationLine = 1 << iota
	DecorationOverline
	DecorationLineThrough
)

type DecorationStyle uint8

const (
	DecorationSolid DecorationStyle = iota
	DecorationDouble
	DecorationDotted
	DecorationDashed
	DecorationWavy
)

// DecorationThickness is either a keyword (Auto, FromFont) or a length.
type DecorationThickness struct {
	Predefined bool
	FromFont   bool // only meaningful when Predefined is true
	Length     Fl
}

// FontDescription is the computed font of an element, passed to CreateFont.
// Two elements with equal descriptions share the same font handle.
type FontDescription struct {
	Family              string
	Size                Fl
	Style               FontStyle
	Weight              int
	DecorationLine      DecorationLine
	DecorationThickness DecorationThickness
	DecorationStyle     DecorationStyle
	DecorationColor     WebColor
	EmphasisStyle       string
	EmphasisColor       WebColor
	EmphasisPosition    int
}

// FontMetrics are the metrics of a created font, in layout units.
type FontMetrics struct {
	FontSize   Fl
	Height     Fl // line height
	Ascent     Fl
	Descent    Fl
	XHeight    Fl
	ChWidth    Fl // advance of the "0" glyph
	DrawSpaces bool
	SubShift   Fl
	SuperShift Fl
}

// IsZero returns true if the host did not provide any metric.
func (fm FontMetrics) IsZero() bool { return fm == FontMetrics{} }

type TextTransform uint8

const (
	TextTransformNone TextTransform = iota
	TextTransformCapitalize
	TextTransformUppercase
	TextTransformLowercase
)

type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

// ListStyleType is the kind of marker drawn for list items.
// Hosts must tolerate values they do not know.
type ListStyleType uint8

const (
	ListStyleNone ListStyleType = iota
	ListStyleCircle
	ListStyleDisc
	ListStyleSquare
	ListStyleDecimal
	ListStyleDecimalLeadingZero
	ListStyleLowerAlpha
	ListStyleUpperAlpha
	ListStyleLowerRoman
	ListStyleUpperRoman
	ListStyleLowerGreek
	ListStyleImage
)

// ListMarker describes the marker of a list item.
type ListMarker struct {
	Image   string // set for ListStyleImage
	BaseURL string
	Kind    ListStyleType
	Color   WebColor
	Pos     Rect
	Index   int // 1-based ordinal of the item
	Font    FontHandle
}

type MediaType uint8

const (
	MediaUnknown MediaType = iota
	MediaAll
	MediaPrint
	MediaScreen
)

// MediaFeatures are the values used to evaluate @media queries.
type MediaFeatures struct {
	Type         MediaType
	Width        Fl // viewport
	Height       Fl
	DeviceWidth  Fl
	DeviceHeight Fl
	Color        int // bits per color component
	ColorIndex   int
	Monochrome   int // bits per pixel, 0 for color devices
	Resolution   Fl  // dpi
}

type MouseEvent uint8

const (
	MouseEnter MouseEvent = iota
	MouseLeave
)

// IsOrdinal returns true for the kinds displaying the item index.
func (l ListStyleType) IsOrdinal() bool {
	return l >= ListStyleDecimal && l <= ListStyleLowerGreek
}

// Label returns the text of an ordinal marker, including the trailing dot,
// or an empty string for the other kinds.
func (l ListStyleType) Label(index int) string {
	var s string
	switch l {
	case ListStyleDecimal:
		s = strconv.Itoa(index)
	case ListStyleDecimalLeadingZero:
		s = strconv.Itoa(index)
		if index >= 0 && index < 10 {
			s = "0" + s
		}
	case ListStyleLowerAlpha:
		s = alphabetic(index, "abcdefghijklmnopqrstuvwxyz")
	case ListStyleUpperAlpha:
		s = alphabetic(index, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	case ListStyleLowerRoman:
		s = strings.ToLower(roman(index))
	case ListStyleUpperRoman:
		s = roman(index)
	case ListStyleLowerGreek:
		s = alphabetic(index, "αβγδεζηθικλμνξοπρστυφχψω")
	default:
		return ""
	}
	return s + "."
}

// alphabetic uses a bijective base: a, b, ..., z, aa, ab, ...
// It falls back to decimal for non positive indexes.
func alphabetic(index int, alphabet string) string {
	letters := []rune(alphabet)
	if index <= 0 {
		return strconv.Itoa(index)
	}
	var out []rune
	for index > 0 {
		index--
		out = append([]rune{letters[index%len(letters)]}, out...)
		index /= len(letters)
	}
	return string(out)
}

var romanDigits = [...]struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"}, {100, "C"}, {90, "XC"},
	{50, "L"}, {40, "XL"}, {10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// roman falls back to decimal outside [1, 3999].
func roman(index int) string {
	if index <= 0 || index >= 4000 {
		return strconv.Itoa(index)
	}
	var b strings.Builder
	for _, d := range romanDigits {
		for index >= d.value {
			b.WriteString(d.symbol)
			index -= d.value
		}
	}
	return b.String()
}
