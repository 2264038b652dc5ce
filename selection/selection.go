// Package selection implements text selection over a laid out document,
// at the character level.
//
// Words, spaces and line breaks are separate text elements, each placed by
// the layout, so hit testing and highlight rectangles only need the
// placement of one text element and the width of its prefixes.
package selection

import (
	"strings"
	"unicode/utf8"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/html/document"
)

type Fl = bridge.Fl

// MeasureFunc returns the width of `text` drawn with `font`.
// The TextWidth slot of the host table is a valid MeasureFunc.
type MeasureFunc func(text string, font bridge.FontHandle) Fl

// maxDepth bounds the ancestor walk between two text elements.
const maxDepth = 256

// Endpoint is a position between two characters of a text element.
type Endpoint struct {
	Element document.Element
	// Index counts runes, not bytes.
	Index int
	// X is the document abscissa used to find the endpoint.
	X Fl
}

// Selection is a range of text between two endpoints, in any order.
// The zero value is an empty selection.
//
// A selection refers to the elements of one document: it becomes inactive
// when one of its ends is removed from the tree, or the document destroyed.
type Selection struct {
	start, end       Endpoint
	hasStart, hasEnd bool

	rectangles []bridge.Position

	// document order of (start, end), computed when one of them changes
	ordered                  bool
	orderedStart, orderedEnd document.Element
	startFirst               bool
}

// StartAt clears the selection and anchors it at the character under the
// document point (x, y). Nothing is anchored if there is no text near the
// point.
func (s *Selection) StartAt(doc *document.Document, measure MeasureFunc, x, y, clientX, clientY Fl) {
	s.Clear()
	if ep, ok := hitTest(doc, measure, x, y, clientX, clientY); ok {
		s.start, s.hasStart = ep, true
	}
}

// ExtendTo moves the free end of the selection to the character under
// the document point (x, y), and updates the highlight rectangles.
// It does nothing if the selection has not been started.
func (s *Selection) ExtendTo(doc *document.Document, measure MeasureFunc, x, y, clientX, clientY Fl) {
	if !s.hasStart {
		return
	}
	if ep, ok := hitTest(doc, measure, x, y, clientX, clientY); ok {
		s.end, s.hasEnd = ep, true
		s.updateRectangles(measure)
	}
}

// Clear resets the selection.
func (s *Selection) Clear() { *s = Selection{} }

// IsActive returns true when both ends are set and still refer to the
// current state of their document.
func (s *Selection) IsActive() bool {
	return s.hasStart && s.hasEnd && s.start.Element.Valid() && s.end.Element.Valid()
}

// Start returns the anchor of the selection.
func (s *Selection) Start() (Endpoint, bool) { return s.start, s.hasStart && s.start.Element.Valid() }

// End returns the free end of the selection.
func (s *Selection) End() (Endpoint, bool) { return s.end, s.hasEnd && s.end.Element.Valid() }

// Text returns the selected text, walking the text elements between the
// two ends in document order. It is empty when the selection is not active.
func (s *Selection) Text() string {
	if !s.IsActive() {
		return ""
	}
	first, second := s.inOrder()
	if first.Element == second.Element {
		return runeSlice(first.Element.Text(), first.Index, second.Index)
	}
	var b strings.Builder
	b.WriteString(runeSlice(first.Element.Text(), first.Index, -1))
	for el := nextTextLeaf(first.Element, second.Element); el.Valid() && el != second.Element; el = nextTextLeaf(el, second.Element) {
		b.WriteString(el.Text())
	}
	b.WriteString(runeSlice(second.Element.Text(), 0, second.Index))
	return b.String()
}

// Rectangles returns the highlight rectangles, in document coordinates,
// one per text element covered by the selection.
func (s *Selection) Rectangles() []bridge.Position {
	if !s.IsActive() {
		return nil
	}
	return s.rectangles
}

// inOrder returns the ends in document order.
func (s *Selection) inOrder() (first, second Endpoint) {
	a, b := s.start, s.end
	if a.Element == b.Element {
		if a.Index <= b.Index {
			return a, b
		}
		return b, a
	}
	if !s.ordered || s.orderedStart != a.Element || s.orderedEnd != b.Element {
		s.ordered, s.orderedStart, s.orderedEnd = true, a.Element, b.Element
		s.startFirst = isBefore(a.Element, b.Element)
	}
	if s.startFirst {
		return a, b
	}
	return b, a
}

func (s *Selection) updateRectangles(measure MeasureFunc) {
	s.rectangles = s.rectangles[:0]
	first, second := s.inOrder()
	if first.Element == second.Element {
		s.addRect(first.Element, measure, first.Index, second.Index)
		return
	}
	s.addRect(first.Element, measure, first.Index, utf8.RuneCountInString(first.Element.Text()))
	for el := nextTextLeaf(first.Element, second.Element); el.Valid() && el != second.Element; el = nextTextLeaf(el, second.Element) {
		s.addRect(el, measure, 0, utf8.RuneCountInString(el.Text()))
	}
	s.addRect(second.Element, measure, 0, second.Index)
}

// addRect appends the rectangle covering the runes [from, to) of `el`.
// Whitespace only elements are not highlighted.
func (s *Selection) addRect(el document.Element, measure MeasureFunc, from, to int) {
	if from > to {
		from, to = to, from
	}
	text := el.Text()
	if from == to || strings.TrimSpace(text) == "" {
		return
	}
	runes := []rune(text)
	if to > len(runes) {
		to = len(runes)
	}
	if from > len(runes) {
		from = len(runes)
	}
	font := fontOf(el)
	var startX Fl
	if from > 0 {
		startX = measure(string(runes[:from]), font)
	}
	endX := measure(string(runes[:to]), font)
	if endX <= startX {
		return
	}
	p := placementOf(el)
	s.rectangles = append(s.rectangles, bridge.Position{X: p.X + startX, Y: p.Y, Width: endX - startX, Height: p.Height})
}

// runeSlice returns the runes [from, to) of `text`; a negative `to`
// means the end of the text. Out of range indexes are clamped.
func runeSlice(text string, from, to int) string {
	runes := []rune(text)
	if to < 0 || to > len(runes) {
		to = len(runes)
	}
	if from > to {
		from = to
	}
	return string(runes[from:to])
}
