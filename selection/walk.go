package selection

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/html/document"
)

// hitTest returns the endpoint under the document point (x, y).
// When the element at the point is not a text, the closest text inside
// it is used.
func hitTest(doc *document.Document, measure MeasureFunc, x, y, clientX, clientY Fl) (Endpoint, bool) {
	el := doc.ElementAt(x, y, clientX, clientY)
	if !el.Valid() {
		return Endpoint{}, false
	}
	text := el
	if !el.IsText() {
		if text = closestTextLeaf(el, x, y); !text.Valid() {
			text = firstTextLeaf(el)
		}
	}
	if !text.Valid() {
		return Endpoint{}, false
	}
	content := text.Text()
	if strings.TrimSpace(content) == "" {
		return Endpoint{Element: text, X: x}, true
	}
	p := placementOf(text)
	return Endpoint{Element: text, Index: indexAt(measure, content, fontOf(text), x-p.X), X: x}, true
}

// indexAt returns the rune boundary of `text` closest to the abscissa
// `target`, measured from the start of the text.
func indexAt(measure MeasureFunc, text string, font bridge.FontHandle, target Fl) int {
	if text == "" || target <= 0 {
		return 0
	}
	var prev Fl
	count := 0
	for i, r := range text {
		width := measure(text[:i+utf8.RuneLen(r)], font)
		if target < (prev+width)/2 {
			return count
		}
		prev = width
		count++
	}
	return count
}

// fontOf returns the font of a text element, or the one of its parent.
func fontOf(el document.Element) bridge.FontHandle {
	if f := el.Font(); f != 0 {
		return f
	}
	return el.Parent().Font()
}

// placementOf returns the placement of a text element, or the one of its
// parent for texts skipped by the layout (like collapsed spaces).
func placementOf(el document.Element) bridge.Position {
	p := el.Placement()
	if p.Width > 0 {
		return p
	}
	if parent := el.Parent(); parent.Valid() {
		return parent.Placement()
	}
	return p
}

// firstTextLeaf returns the first text element in the subtree of `el`,
// or an invalid element.
func firstTextLeaf(el document.Element) document.Element {
	if el.IsText() {
		return el
	}
	for i, n := 0, el.ChildrenCount(); i < n; i++ {
		if leaf := firstTextLeaf(el.ChildAt(i)); leaf.Valid() {
			return leaf
		}
	}
	return document.Element{}
}

// distance is 0 inside [start, start+size), and the distance to the
// middle of the range otherwise.
func distance(v, start, size Fl) Fl {
	if v >= start && v < start+size {
		return 0
	}
	return Fl(math.Abs(float64(v - (start + size/2))))
}

// yTolerance groups texts which are on the same line.
const yTolerance = 2

// closestTextLeaf returns the non blank text element of the subtree of
// `el` closest to (x, y): the closest lines are selected first, then the
// closest text on these lines.
func closestTextLeaf(el document.Element, x, y Fl) document.Element {
	type candidate struct {
		el  document.Element
		pos bridge.Position
	}
	var candidates []candidate
	var collect func(el document.Element)
	collect = func(el document.Element) {
		if el.IsText() {
			if strings.TrimSpace(el.Text()) != "" {
				candidates = append(candidates, candidate{el, placementOf(el)})
			}
			return
		}
		for i, n := 0, el.ChildrenCount(); i < n; i++ {
			collect(el.ChildAt(i))
		}
	}
	collect(el)
	if len(candidates) == 0 {
		return document.Element{}
	}

	minY := Fl(math.MaxFloat32)
	for _, c := range candidates {
		if d := distance(y, c.pos.Y, c.pos.Height); d < minY {
			minY = d
		}
	}
	var (
		best  document.Element
		bestX = Fl(math.MaxFloat32)
	)
	for _, c := range candidates {
		if distance(y, c.pos.Y, c.pos.Height) > minY+yTolerance {
			continue
		}
		if d := distance(x, c.pos.X, c.pos.Width); d < bestX {
			best, bestX = c.el, d
		}
	}
	return best
}

// nextTextLeaf returns the text element following `el` in document
// order, or `stop` if it is reached first. The result is invalid at the
// end of the document.
func nextTextLeaf(el, stop document.Element) document.Element {
	current := el
	for depth := 0; depth < maxDepth; depth++ {
		parent := current.Parent()
		if !parent.Valid() {
			break
		}
		n := parent.ChildrenCount()
		index := -1
		for i := 0; i < n; i++ {
			if parent.ChildAt(i) == current {
				index = i
				break
			}
		}
		if index >= 0 {
			for i := index + 1; i < n; i++ {
				sibling := parent.ChildAt(i)
				if sibling == stop {
					return sibling
				}
				if leaf := firstTextLeaf(sibling); leaf.Valid() {
					return leaf
				}
			}
		}
		current = parent
	}
	return document.Element{}
}

// isBefore returns true if `a` strictly precedes `b` in document order.
func isBefore(a, b document.Element) bool {
	if a == b {
		return false
	}
	for el := nextTextLeaf(a, b); el.Valid(); el = nextTextLeaf(el, b) {
		if el == b {
			return true
		}
	}
	return false
}
