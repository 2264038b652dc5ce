package selection

import (
	"testing"
	"unicode/utf8"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/html/document"
	"github.com/benoitkugler/litebridge/utils/testutils"
)

func init() { testutils.Silence() }

// every rune is 10 pixels wide
func measure(text string, _ bridge.FontHandle) Fl { return Fl(10 * utf8.RuneCountInString(text)) }

func newDocument(t *testing.T, markup string) *document.Document {
	t.Helper()
	table := &bridge.Table{
		CreateFont: func(d bridge.FontDescription) (bridge.FontHandle, bridge.FontMetrics) {
			return 1, bridge.FontMetrics{FontSize: d.Size, Height: 16, Ascent: 12, Descent: 4}
		},
		TextWidth: measure,
	}
	doc, err := document.NewFromString(markup, table, "", "")
	if err != nil {
		t.Fatal(err)
	}
	doc.Render(800)
	return doc
}

const twoParagraphs = `<body style="margin: 0"><p style="margin: 0">hello world</p><p style="margin: 0">again</p></body>`

// words returns the text elements of the paragraphs.
func words(doc *document.Document) (hello, space, world, again document.Element) {
	body := doc.Root().ChildAt(1)
	p1, p2 := body.ChildAt(0), body.ChildAt(1)
	return p1.ChildAt(0), p1.ChildAt(1), p1.ChildAt(2), p2.ChildAt(0)
}

// point returns the document point at `dx` from the start of `el`.
func point(el document.Element, dx Fl) (x, y Fl) {
	p := el.Placement()
	return p.X + dx, p.Y + p.Height/2
}

func TestWords(t *testing.T) {
	doc := newDocument(t, twoParagraphs)
	hello, space, world, again := words(doc)
	testutils.AssertEqual(t, hello.Text(), "hello")
	testutils.AssertEqual(t, space.Text(), " ")
	testutils.AssertEqual(t, world.Text(), "world")
	testutils.AssertEqual(t, again.Text(), "again")
	testutils.AssertEqual(t, world.Placement().X, hello.Placement().X+60)
}

func TestSameLine(t *testing.T) {
	doc := newDocument(t, twoParagraphs)
	hello, _, world, _ := words(doc)

	var s Selection
	x, y := point(hello, 23)
	s.StartAt(doc, measure, x, y, x, y)
	testutils.AssertEqual(t, s.IsActive(), false)
	start, ok := s.Start()
	testutils.AssertEqual(t, ok, true)
	testutils.AssertEqual(t, start.Element, hello)
	testutils.AssertEqual(t, start.Index, 2)

	x, y = point(world, 37)
	s.ExtendTo(doc, measure, x, y, x, y)
	testutils.AssertEqual(t, s.IsActive(), true)
	testutils.AssertEqual(t, s.Text(), "llo worl")

	hp, wp := hello.Placement(), world.Placement()
	testutils.AssertEqual(t, s.Rectangles(), []bridge.Position{
		{X: hp.X + 20, Y: hp.Y, Width: 30, Height: hp.Height},
		{X: wp.X, Y: wp.Y, Width: 40, Height: wp.Height},
	})
}

func TestBackwards(t *testing.T) {
	doc := newDocument(t, twoParagraphs)
	hello, _, world, _ := words(doc)

	var s Selection
	x, y := point(world, 37)
	s.StartAt(doc, measure, x, y, x, y)
	x, y = point(hello, 23)
	s.ExtendTo(doc, measure, x, y, x, y)
	testutils.AssertEqual(t, s.Text(), "llo worl")
	testutils.AssertEqual(t, len(s.Rectangles()), 2)

	// inside one word, in reverse
	x, y = point(world, 12)
	s.ExtendTo(doc, measure, x, y, x, y)
	testutils.AssertEqual(t, s.Text(), "orl")
	wp := world.Placement()
	testutils.AssertEqual(t, s.Rectangles(), []bridge.Position{{X: wp.X + 10, Y: wp.Y, Width: 30, Height: wp.Height}})

	// empty range
	x, y = point(world, 37)
	s.ExtendTo(doc, measure, x, y, x, y)
	testutils.AssertEqual(t, s.IsActive(), true)
	testutils.AssertEqual(t, s.Text(), "")
	testutils.AssertEqual(t, len(s.Rectangles()), 0)
}

func TestAcrossBlocks(t *testing.T) {
	doc := newDocument(t, twoParagraphs)
	hello, _, _, again := words(doc)

	var s Selection
	x, y := point(hello, 0)
	s.StartAt(doc, measure, x, y, x, y)
	x, y = point(again, 200) // right of the text
	s.ExtendTo(doc, measure, x, y, x, y)
	end, _ := s.End()
	testutils.AssertEqual(t, end.Element, again)
	testutils.AssertEqual(t, end.Index, 5)
	testutils.AssertEqual(t, s.Text(), "hello worldagain")
	testutils.AssertEqual(t, len(s.Rectangles()), 3)
}

func TestNoText(t *testing.T) {
	doc := newDocument(t, twoParagraphs)
	var s Selection
	s.StartAt(doc, measure, 10, 5000, 10, 5000)
	_, ok := s.Start()
	testutils.AssertEqual(t, ok, false)
	s.ExtendTo(doc, measure, 10, 5, 10, 5)
	testutils.AssertEqual(t, s.IsActive(), false)
	testutils.AssertEqual(t, s.Text(), "")

	// an empty element: nothing to anchor
	doc = newDocument(t, `<body style="margin: 0"><div style="height: 40px"></div></body>`)
	s.StartAt(doc, measure, 10, 10, 10, 10)
	_, ok = s.Start()
	testutils.AssertEqual(t, ok, false)
}

func TestStale(t *testing.T) {
	doc := newDocument(t, twoParagraphs)
	hello, _, world, _ := words(doc)
	var s Selection
	x, y := point(hello, 0)
	s.StartAt(doc, measure, x, y, x, y)
	x, y = point(world, 50)
	s.ExtendTo(doc, measure, x, y, x, y)
	testutils.AssertEqual(t, s.Text(), "hello world")

	doc.Destroy()
	testutils.AssertEqual(t, s.IsActive(), false)
	testutils.AssertEqual(t, s.Text(), "")
	testutils.AssertEqual(t, s.Rectangles(), []bridge.Position(nil))

	s.Clear()
	_, ok := s.Start()
	testutils.AssertEqual(t, ok, false)
}

func TestRemovedElement(t *testing.T) {
	doc := newDocument(t, twoParagraphs)
	hello, _, world, _ := words(doc)
	var s Selection
	x, y := point(hello, 0)
	s.StartAt(doc, measure, x, y, x, y)
	x, y = point(world, 50)
	s.ExtendTo(doc, measure, x, y, x, y)

	p1 := hello.Parent()
	if err := doc.AppendChildrenFromString(p1, "bye", true); err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, s.IsActive(), false)
}

func TestIndexAt(t *testing.T) {
	for _, test := range []struct {
		text   string
		target Fl
		exp    int
	}{
		{"hello", -3, 0},
		{"hello", 4, 0},
		{"hello", 5, 1},
		{"hello", 44, 4},
		{"hello", 45, 5},
		{"hello", 1000, 5},
		{"", 10, 0},
		{"héllo", 16, 2},
	} {
		testutils.AssertEqual(t, indexAt(measure, test.text, 0, test.target), test.exp)
	}
}

func TestRuneSlice(t *testing.T) {
	testutils.AssertEqual(t, runeSlice("héllo", 1, 3), "él")
	testutils.AssertEqual(t, runeSlice("héllo", 2, -1), "llo")
	testutils.AssertEqual(t, runeSlice("héllo", 4, 10), "o")
	testutils.AssertEqual(t, runeSlice("héllo", 8, 2), "")
}
