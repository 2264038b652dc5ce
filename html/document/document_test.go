package document

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/utils/testutils"
)

func init() { testutils.Silence() }

// host records the calls made by a document. Glyphs are 10px wide,
// fonts have a 12px ascent and a 4px descent.
type host struct {
	table bridge.Table

	fonts   bridge.FontHandle
	deleted map[bridge.FontHandle]int
	calls   int
	sizes   map[string]bridge.Size
	loads   []string
	colors  []bridge.Color
	cursors []string
	events  []bridge.MouseEvent
	clicks  []string
	media   bridge.MediaFeatures
}

func newHost() *host {
	h := &host{
		deleted: make(map[bridge.FontHandle]int),
		sizes:   make(map[string]bridge.Size),
		media:   bridge.MediaFeatures{Type: bridge.MediaScreen, Width: 800, Height: 600},
	}
	h.table = bridge.Table{
		CreateFont: func(d bridge.FontDescription) (bridge.FontHandle, bridge.FontMetrics) {
			h.calls++
			h.fonts++
			return h.fonts, bridge.FontMetrics{FontSize: d.Size, Height: 16, Ascent: 12, Descent: 4}
		},
		DeleteFont: func(f bridge.FontHandle) { h.deleted[f]++ },
		TextWidth: func(text string, _ bridge.FontHandle) bridge.Fl {
			h.calls++
			return bridge.Fl(10 * utf8.RuneCountInString(text))
		},
		DrawText: func(_ bridge.Surface, _ string, _ bridge.FontHandle, c bridge.Color, _ bridge.Position) {
			h.calls++
			h.colors = append(h.colors, c)
		},
		LoadImage: func(src, _ string, _ bool) {
			h.calls++
			h.loads = append(h.loads, src)
		},
		GetImageSize:     func(src, _ string) bridge.Size { return h.sizes[src] },
		SetCursor:        func(cursor string) { h.cursors = append(h.cursors, cursor) },
		OnMouseEvent:     func(e bridge.MouseEvent) { h.events = append(h.events, e) },
		OnAnchorClick:    func(url string) { h.clicks = append(h.clicks, url) },
		GetViewport:      func() bridge.Position { return bridge.Position{Width: 800, Height: 600} },
		GetMediaFeatures: func() bridge.MediaFeatures { return h.media },
	}
	return h
}

func newDocument(t *testing.T, h *host, markup string) *Document {
	t.Helper()
	doc, err := NewFromString(markup, &h.table, "", "")
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestCreationErrors(t *testing.T) {
	_, err := NewFromString("", &bridge.Table{}, "", "")
	testutils.AssertEqual(t, err, ErrNoMarkup)
	_, err = NewFromString("<p>text</p>", nil, "", "")
	testutils.AssertEqual(t, err, ErrNoTable)
}

func TestStates(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, "<p>text</p>")
	testutils.AssertEqual(t, doc.State(), Parsed)

	logs := testutils.CaptureLogs()
	doc.Draw(nil, 0, 0, nil)
	logs.CheckEqual([]string{"Draw called on a parsed document"}, t)
	testutils.AssertEqual(t, len(h.colors), 0)

	doc.Render(800)
	testutils.AssertEqual(t, doc.State(), LaidOut)
	doc.Draw(nil, 0, 0, nil)
	testutils.AssertEqual(t, len(h.colors), 1)

	doc.Destroy()
	testutils.AssertEqual(t, doc.State(), Destroyed)
	testutils.AssertEqual(t, doc.State().String(), "destroyed")
	doc.Destroy()

	logs = testutils.CaptureLogs()
	testutils.AssertEqual(t, doc.Render(800), Fl(0))
	logs.CheckEqual([]string{"Render called on a destroyed document"}, t)
}

func TestFontsDeletedOnce(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<h1>Title</h1><p>some <b>bold</b> and <i>italic</i> text</p>`)
	doc.Render(800)
	created := int(h.fonts)
	if created < 3 {
		t.Fatalf("expected at least 3 fonts, got %d", created)
	}

	doc.Destroy()
	doc.Destroy()
	testutils.AssertEqual(t, len(h.deleted), created)
	for f, count := range h.deleted {
		if count != 1 {
			t.Fatalf("font %d deleted %d times", f, count)
		}
	}

	// no callback fires after destruction
	calls := h.calls
	logs := testutils.CaptureLogs()
	doc.Render(800)
	doc.Draw(nil, 0, 0, nil)
	doc.AddStylesheet("p { color: red }", "", "")
	testutils.AssertEqual(t, len(logs.Logs()), 3)
	testutils.AssertEqual(t, h.calls, calls)
}

func TestElementLifetime(t *testing.T) {
	testutils.AssertEqual(t, Element{}.Valid(), false)
	testutils.AssertEqual(t, Element{}.Parent().Valid(), false)
	testutils.AssertEqual(t, Element{}.Tag(), "")

	h := newHost()
	doc := newDocument(t, h, `<div id="box"><p>old</p></div>`)
	body := doc.Root().ChildAt(1)
	testutils.AssertEqual(t, body.Tag(), "body")
	div := body.ChildAt(0)
	testutils.AssertEqual(t, div.Attr("id"), "box")
	p := div.ChildAt(0)
	testutils.AssertEqual(t, p.Text(), "old")

	doc.Render(800)
	if err := doc.AppendChildrenFromString(div, "<span>new</span>", true); err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, doc.State(), Parsed)
	// removed elements are detected
	testutils.AssertEqual(t, p.Valid(), false)
	testutils.AssertEqual(t, p.Tag(), "")
	testutils.AssertEqual(t, p.Text(), "")
	testutils.AssertEqual(t, p.Placement(), bridge.Position{})
	testutils.AssertEqual(t, div.ChildrenCount(), 1)
	testutils.AssertEqual(t, div.ChildAt(0).Tag(), "span")

	if err := doc.AppendChildrenFromString(div, "<i>more</i>", false); err != nil {
		t.Fatal(err)
	}
	testutils.AssertEqual(t, div.ChildrenCount(), 2)
	testutils.AssertEqual(t, div.Text(), "newmore")
	if err := doc.AppendChildrenFromString(p, "<i>x</i>", false); err == nil {
		t.Fatal("expected an error for a removed parent")
	}

	doc.Destroy()
	testutils.AssertEqual(t, div.Valid(), false)
	testutils.AssertEqual(t, div.ChildrenCount(), 0)
	testutils.AssertEqual(t, div.ChildAt(0).Valid(), false)
	testutils.AssertEqual(t, doc.Root().Valid(), false)
}

func TestElementAccessors(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<p title="t" style="text-align: center; line-height: 20px; font-size: 10px">ab cd</p>`)
	p := doc.Root().ChildAt(1).ChildAt(0)

	testutils.AssertEqual(t, p.Tag(), "p")
	testutils.AssertEqual(t, p.Attr("title"), "t")
	testutils.AssertEqual(t, p.Attr("missing"), "")
	testutils.AssertEqual(t, p.Parent().Tag(), "body")
	testutils.AssertEqual(t, p.Text(), "ab cd")
	testutils.AssertEqual(t, p.ChildrenCount(), 3)
	testutils.AssertEqual(t, p.ChildAt(1).IsText(), true)
	testutils.AssertEqual(t, p.ChildAt(3).Valid(), false)
	testutils.AssertEqual(t, p.IsText(), false)
	testutils.AssertEqual(t, p.FontSize(), Fl(10))
	testutils.AssertEqual(t, p.TextAlign(), bridge.AlignCenter)
	testutils.AssertEqual(t, p.LineHeight(), Fl(20))
	if p.Font() == 0 {
		t.Fatal("expected a font handle")
	}
	// no layout yet
	testutils.AssertEqual(t, p.InlineBoxesCount(), 0)
}

func TestInlineBoxOffset(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<div style="position: absolute; left: 100px; top: 50px"><span>word</span></div>`)
	doc.Render(800)

	span := doc.ElementAt(110, 55, 110, 55)
	testutils.AssertEqual(t, span.Tag(), "span")
	exp := bridge.Position{X: 100, Y: 50, Width: 40, Height: 16}
	testutils.AssertEqual(t, span.Placement(), exp)
	testutils.AssertEqual(t, span.InlineBoxesCount(), 1)
	testutils.AssertEqual(t, span.InlineBoxAt(0), exp)
	testutils.AssertEqual(t, span.InlineBoxes(), []bridge.Position{exp})
	testutils.AssertEqual(t, span.InlineBoxAt(1), bridge.Position{})

	// block elements have one box
	div := span.Parent()
	testutils.AssertEqual(t, div.InlineBoxes(), []bridge.Position{exp})

	testutils.AssertEqual(t, doc.ElementAt(700, 500, 700, 500).Valid(), false)
}

func TestDrainPending(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<img src="a.png"><div style="background-image: url(bg.png); height: 10px"></div>`)
	doc.Render(800)
	testutils.AssertEqual(t, doc.State(), AwaitingResources)
	testutils.AssertEqual(t, doc.PendingCount(), 2)

	exp := []PendingResource{
		{Src: "a.png"},
		{Src: "bg.png", RedrawOnly: true},
	}
	testutils.AssertEqual(t, doc.DrainPending(), exp)
	testutils.AssertEqual(t, doc.PendingCount(), 0)
	testutils.AssertEqual(t, len(doc.DrainPending()), 0)

	// images are requested once
	doc.Render(800)
	testutils.AssertEqual(t, doc.PendingCount(), 0)
	testutils.AssertEqual(t, doc.State(), LaidOut)
	testutils.AssertEqual(t, h.loads, []string{"a.png", "bg.png"})
}

func TestConvergence(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<img src="a.png">`)
	doc.Render(800)
	img := doc.Root().ChildAt(1).ChildAt(0)
	testutils.AssertEqual(t, img.Tag(), "img")
	testutils.AssertEqual(t, img.Placement().Width, Fl(0))
	testutils.AssertEqual(t, len(doc.DrainPending()), 1)

	h.sizes["a.png"] = bridge.Size{Width: 30, Height: 20}
	doc.Render(800)
	testutils.AssertEqual(t, doc.State(), LaidOut)
	testutils.AssertEqual(t, doc.PendingCount(), 0)
	testutils.AssertEqual(t, img.Placement(), bridge.Position{X: 8, Y: 8, Width: 30, Height: 20})
	testutils.AssertEqual(t, h.loads, []string{"a.png"})
}

func TestOnlyCreateFont(t *testing.T) {
	table := &bridge.Table{
		CreateFont: func(d bridge.FontDescription) (bridge.FontHandle, bridge.FontMetrics) {
			return 1, bridge.FontMetrics{FontSize: d.Size, Height: d.Size, Ascent: d.Size * 0.75, Descent: d.Size * 0.25}
		},
	}
	doc, err := NewFromString(`<title>T</title><h1>Title</h1><p>text <img src="x.png"> <a href="y">link</a></p>`, table, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Render(300) <= 0 {
		t.Fatal("expected a positive height")
	}
	testutils.AssertEqual(t, doc.State(), AwaitingResources)
	doc.Draw(nil, 0, 0, nil)
	doc.OnMouseOver(10, 10, 10, 10)
	doc.OnLButtonDown(10, 10, 10, 10)
	doc.OnLButtonUp(10, 10, 10, 10)
	doc.OnMouseLeave()
	doc.MediaChanged()
	doc.Destroy()
}

func TestStylesheetReapplied(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<p>text</p>`)
	doc.Render(800)
	doc.Draw(nil, 0, 0, nil)
	testutils.AssertEqual(t, h.colors, []bridge.Color{{A: 255}})

	doc.AddStylesheet("p { color: red }", "", "")
	testutils.AssertEqual(t, doc.State(), Parsed)
	doc.Render(800)
	doc.Draw(nil, 0, 0, nil)
	testutils.AssertEqual(t, h.colors[1], bridge.Color{R: 255, A: 255})

	// media restricted sheets only apply when matching
	doc.AddStylesheet("p { color: lime }", "", "print")
	doc.Render(800)
	doc.Draw(nil, 0, 0, nil)
	testutils.AssertEqual(t, h.colors[2], bridge.Color{R: 255, A: 255})
}

func TestReentrancy(t *testing.T) {
	h := newHost()
	var doc *Document
	h.table.DrawText = func(bridge.Surface, string, bridge.FontHandle, bridge.Color, bridge.Position) {
		doc.Render(100)
		doc.Draw(nil, 0, 0, nil)
	}
	doc = newDocument(t, h, `<p>text</p>`)
	doc.Render(800)

	logs := testutils.CaptureLogs()
	doc.Draw(nil, 0, 0, nil)
	logs.CheckEqual([]string{
		"Render called from a host callback",
		"Draw called from a host callback",
	}, t)
	testutils.AssertEqual(t, doc.State(), LaidOut)
}

func TestMouse(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<html><head><style>a:hover { color: red } a:active { color: blue }</style></head>
	<body><a href="next.html">link</a></body></html>`)
	doc.Render(800)

	testutils.AssertEqual(t, doc.OnMouseOver(10, 10, 10, 10), true)
	testutils.AssertEqual(t, h.events, []bridge.MouseEvent{bridge.MouseEnter})
	testutils.AssertEqual(t, h.cursors, []string{"pointer"})
	// same element
	testutils.AssertEqual(t, doc.OnMouseOver(12, 10, 12, 10), false)
	testutils.AssertEqual(t, len(h.events), 1)

	testutils.AssertEqual(t, doc.OnLButtonDown(10, 10, 10, 10), true)
	testutils.AssertEqual(t, doc.OnLButtonUp(10, 10, 10, 10), true)
	testutils.AssertEqual(t, h.clicks, []string{"next.html"})

	// a click ending outside the link is not reported
	doc.OnLButtonDown(10, 10, 10, 10)
	doc.OnLButtonUp(500, 10, 500, 10)
	testutils.AssertEqual(t, len(h.clicks), 1)

	testutils.AssertEqual(t, doc.OnMouseLeave(), true)
	testutils.AssertEqual(t, h.events, []bridge.MouseEvent{bridge.MouseEnter, bridge.MouseLeave})
	testutils.AssertEqual(t, h.cursors[len(h.cursors)-1], "auto")
	testutils.AssertEqual(t, doc.State(), LaidOut)
}

func TestPressWithoutActiveRule(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<html><head><style>a:hover { color: red }</style></head>
	<body><a href="next.html">link</a></body></html>`)
	doc.Render(800)

	testutils.AssertEqual(t, doc.OnMouseOver(10, 10, 10, 10), true)
	// the author :hover color hides the default :active one
	testutils.AssertEqual(t, doc.OnLButtonDown(10, 10, 10, 10), false)
	testutils.AssertEqual(t, doc.OnLButtonUp(10, 10, 10, 10), false)
	testutils.AssertEqual(t, h.clicks, []string{"next.html"})
}

func TestMediaChanged(t *testing.T) {
	h := newHost()
	doc := newDocument(t, h, `<style>@media (max-width: 500px) { p { color: red } }</style><p>x</p>`)
	doc.Render(800)
	testutils.AssertEqual(t, doc.MediaChanged(), false)
	testutils.AssertEqual(t, doc.State(), LaidOut)

	h.media.Width = 400
	testutils.AssertEqual(t, doc.MediaChanged(), true)
	testutils.AssertEqual(t, doc.State(), Parsed)
	testutils.AssertEqual(t, doc.MediaChanged(), false)

	doc.Render(800)
	doc.Draw(nil, 0, 0, nil)
	testutils.AssertEqual(t, h.colors, []bridge.Color{{R: 255, A: 255}})
}

func TestCaptionAndStylesheets(t *testing.T) {
	h := newHost()
	var caption string
	var imports []string
	h.table.SetCaption = func(c string) { caption = c }
	h.table.ImportCSS = func(url, baseURL string) (string, string) {
		imports = append(imports, url)
		if url == "main.css" {
			return `@import "extra.css"; p { color: red }`, "http://example.org/css/"
		}
		return "", baseURL
	}
	doc := newDocument(t, h, `<html><head><title> My   page </title>
		<link rel="stylesheet" href="main.css"></head><body><p>x</p></body></html>`)
	testutils.AssertEqual(t, caption, "My page")
	testutils.AssertEqual(t, imports, []string{"main.css", "extra.css"})

	doc.Render(800)
	doc.Draw(nil, 0, 0, nil)
	testutils.AssertEqual(t, h.colors, []bridge.Color{{R: 255, A: 255}})
}

func TestStateString(t *testing.T) {
	for s, exp := range map[State]string{
		Unparsed:          "unparsed",
		Parsed:            "parsed",
		LaidOut:           "laid out",
		AwaitingResources: "awaiting resources",
		State(12):         "<invalid State>",
	} {
		testutils.AssertEqual(t, s.String(), exp)
	}
	if !strings.Contains(Destroyed.String(), "destroy") {
		t.Fatal(Destroyed.String())
	}
}
