package bridge

import (
	"testing"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/utils/testutils"
)

func TestNilTable(t *testing.T) {
	if New(nil) != nil {
		t.Fatal("expected a nil bridge for a nil table")
	}
}

func TestEmptyTableDefaults(t *testing.T) {
	b := New(&Table{})

	logs := testutils.CaptureLogs()

	font, metrics := b.CreateFont(backend.FontDescription{Family: "serif", Size: 12})
	testutils.AssertEqual(t, font, backend.FontHandle(0))
	testutils.AssertEqual(t, metrics.IsZero(), true)
	b.DeleteFont(font)

	testutils.AssertEqual(t, b.TextWidth("hello", font), backend.Fl(0))
	testutils.AssertEqual(t, b.PtToPx(12), backend.Fl(12))
	testutils.AssertEqual(t, b.DefaultFontSize(), backend.Fl(16))
	testutils.AssertEqual(t, b.DefaultFontName(), "serif")
	testutils.AssertEqual(t, b.GetImageSize("a.png", ""), backend.Size{})
	testutils.AssertEqual(t, b.TransformText("Hello", backend.TextTransformUppercase), "Hello")

	css, base := b.ImportCSS("style.css", "http://example.org/")
	testutils.AssertEqual(t, css, "")
	testutils.AssertEqual(t, base, "http://example.org/")

	testutils.AssertEqual(t, b.GetViewport(), backend.Rect{})
	media := b.GetMediaFeatures()
	testutils.AssertEqual(t, media.Type, backend.MediaScreen)
	testutils.AssertEqual(t, media.Color, 8)
	testutils.AssertEqual(t, media.Resolution, backend.Fl(96))

	lang, culture := b.GetLanguage()
	testutils.AssertEqual(t, lang, "en")
	testutils.AssertEqual(t, culture, "")

	// drawing and notifications are silently dropped
	b.DrawText(nil, "x", 0, backend.Black, backend.Rect{})
	b.DrawListMarker(nil, backend.ListMarker{})
	b.LoadImage("a.png", "", true)
	b.DrawImage(nil, backend.BackgroundLayer{}, "a.png", "")
	b.DrawSolidFill(nil, backend.BackgroundLayer{}, backend.White)
	b.DrawLinearGradient(nil, backend.BackgroundLayer{}, backend.LinearGradient{})
	b.DrawRadialGradient(nil, backend.BackgroundLayer{}, backend.RadialGradient{})
	b.DrawConicGradient(nil, backend.BackgroundLayer{}, backend.ConicGradient{})
	b.DrawBorders(nil, backend.Borders{}, backend.Rect{}, false)
	b.SetCaption("title")
	b.SetBaseURL("http://example.org/")
	b.Link("stylesheet", "a.css")
	b.OnAnchorClick("http://example.org/")
	b.OnMouseEvent(backend.MouseEnter)
	b.SetCursor("pointer")
	b.SetClip(backend.Rect{}, backend.BorderRadii{})
	b.DelClip()

	logs.AssertNoLogs(t)
}

func TestMediaDefaultsFromViewport(t *testing.T) {
	b := New(&Table{
		GetViewport: func() Position { return Position{Width: 800, Height: 600} },
	})
	media := b.GetMediaFeatures()
	testutils.AssertEqual(t, media.Width, backend.Fl(800))
	testutils.AssertEqual(t, media.DeviceHeight, backend.Fl(600))
	testutils.AssertEqual(t, media.Type, backend.MediaScreen)
}

func TestTranslation(t *testing.T) {
	var (
		gotDescr   FontDescription
		gotPos     Position
		gotColor   Color
		gotBorders Borders
		gotRoot    bool
		gotLayer   BackgroundLayer
		gotLinear  LinearGradient
		gotConic   ConicGradient
		gotMarker  ListMarker
		gotClip    BorderRadii
	)
	table := &Table{
		CreateFont: func(descr FontDescription) (FontHandle, FontMetrics) {
			gotDescr = descr
			return 7, FontMetrics{FontSize: 10, Height: 12, Ascent: 8, Descent: 2}
		},
		DrawText: func(s Surface, text string, font FontHandle, color Color, pos Position) {
			gotColor, gotPos = color, pos
		},
		DrawBorders: func(s Surface, borders Borders, pos Position, root bool) {
			gotBorders, gotRoot = borders, root
		},
		DrawSolidFill: func(s Surface, layer BackgroundLayer, color Color) {
			gotLayer = layer
		},
		DrawLinearGradient: func(s Surface, layer BackgroundLayer, gradient LinearGradient) {
			gotLinear = gradient
		},
		DrawConicGradient: func(s Surface, layer BackgroundLayer, gradient ConicGradient) {
			gotConic = gradient
		},
		DrawListMarker: func(s Surface, marker ListMarker) { gotMarker = marker },
		SetClip:        func(pos Position, radius BorderRadii) { gotClip = radius },
	}
	b := New(table)

	descr := backend.FontDescription{
		Family: "sans-serif", Size: 10, Style: backend.FontStyleItalic, Weight: 700,
		DecorationLine:      backend.DecorationUnderline | backend.DecorationLineThrough,
		DecorationThickness: backend.DecorationThickness{Predefined: true, FromFont: true},
		DecorationStyle:     backend.DecorationWavy,
		DecorationColor:     backend.WebColor{IsCurrentColor: true},
	}
	font, metrics := b.CreateFont(descr)
	testutils.AssertEqual(t, font, backend.FontHandle(7))
	testutils.AssertEqual(t, metrics, backend.FontMetrics{FontSize: 10, Height: 12, Ascent: 8, Descent: 2})
	testutils.AssertEqual(t, gotDescr, FontDescription{
		Family: "sans-serif", Size: 10, Style: FontItalic, Weight: 700,
		DecorationLine:      Underline | LineThrough,
		DecorationThickness: DecorationThickness{Kind: ThicknessFromFont},
		DecorationStyle:     DecorationWavy,
		DecorationColor:     Color{IsCurrentColor: true},
	})

	b.DrawText(nil, "word", font, backend.WebColor{R: 1, G: 2, B: 3, A: 4}, backend.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	testutils.AssertEqual(t, gotColor, Color{R: 1, G: 2, B: 3, A: 4})
	testutils.AssertEqual(t, gotPos, Position{X: 1, Y: 2, Width: 3, Height: 4})

	b.DrawBorders(nil, backend.Borders{
		Top:    backend.Border{Width: 2, Style: backend.BorderDashed, Color: backend.Black},
		Radius: backend.BorderRadii{TopLeftX: 3, TopLeftY: 4},
	}, backend.Rect{}, true)
	testutils.AssertEqual(t, gotRoot, true)
	testutils.AssertEqual(t, gotBorders.Top, Border{Width: 2, Style: BorderDashed, Color: Color{A: 255}})
	testutils.AssertEqual(t, gotBorders.Radius.TopLeftY, Fl(4))

	b.DrawSolidFill(nil, backend.BackgroundLayer{
		ClipBox:    backend.Rect{Width: 10, Height: 10},
		Attachment: backend.AttachmentFixed,
		Repeat:     backend.NoRepeat,
		IsRoot:     true,
	}, backend.White)
	testutils.AssertEqual(t, gotLayer.ClipBox, Position{Width: 10, Height: 10})
	testutils.AssertEqual(t, gotLayer.Attachment, AttachmentFixed)
	testutils.AssertEqual(t, gotLayer.Repeat, NoRepeat)
	testutils.AssertEqual(t, gotLayer.IsRoot, true)

	b.DrawLinearGradient(nil, backend.BackgroundLayer{}, backend.LinearGradient{
		GradientBase: backend.GradientBase{
			ColorPoints: []backend.ColorPoint{{Offset: 0, Color: backend.Black}, {Offset: 1, Color: backend.White}},
			ColorSpace:  backend.ColorSpaceOklab,
		},
		Start: backend.Point{X: 0, Y: 0}, End: backend.Point{X: 100, Y: 0},
	})
	testutils.AssertEqual(t, gotLinear.End, Point{X: 100})
	testutils.AssertEqual(t, gotLinear.ColorSpace, SpaceOklab)
	testutils.AssertEqual(t, gotLinear.Stops, []ColorStop{{0, Color{A: 255}}, {1, Color{255, 255, 255, 255, false}}})

	b.DrawConicGradient(nil, backend.BackgroundLayer{}, backend.ConicGradient{
		GradientBase: backend.GradientBase{HueInterpolation: backend.HueLonger},
		Angle:        90, Radius: 5,
	})
	testutils.AssertEqual(t, gotConic.Angle, Fl(90))
	testutils.AssertEqual(t, gotConic.HueInterpolation, HueLonger)

	b.DrawListMarker(nil, backend.ListMarker{Kind: backend.ListStyleUpperRoman, Index: 4, Font: font})
	testutils.AssertEqual(t, gotMarker.Kind, MarkerUpperRoman)
	testutils.AssertEqual(t, gotMarker.Kind.IsOrdinal(), true)
	testutils.AssertEqual(t, gotMarker.Index, 4)
	testutils.AssertEqual(t, gotMarker.Font, FontHandle(7))

	b.SetClip(backend.Rect{}, backend.BorderRadii{BottomLeftX: 2})
	testutils.AssertEqual(t, gotClip, BorderRadii{BottomLeftX: 2})
}

func TestUnknownMarkerKindPassesThrough(t *testing.T) {
	var got ListMarker
	b := New(&Table{DrawListMarker: func(s Surface, marker ListMarker) { got = marker }})
	b.DrawListMarker(nil, backend.ListMarker{Kind: 42})
	testutils.AssertEqual(t, got.Kind, MarkerKind(42))
	testutils.AssertEqual(t, got.Kind.String(), "<unknown MarkerKind 42>")
}

func TestEnumsFromInt(t *testing.T) {
	testutils.AssertEqual(t, BorderStyleFromInt(3), BorderDashed)
	testutils.AssertEqual(t, BorderStyleFromInt(-1), BorderNone)
	testutils.AssertEqual(t, BorderStyleFromInt(100), BorderNone)
	testutils.AssertEqual(t, MediaTypeFromInt(3), MediaScreen)
	testutils.AssertEqual(t, MediaTypeFromInt(9), MediaUnknown)
	testutils.AssertEqual(t, ColorSpaceFromInt(99), SpaceNone)
	testutils.AssertEqual(t, BorderSolid.String(), "solid")
	testutils.AssertEqual(t, TransformUppercase.String(), "uppercase")
}

func TestClosedBridge(t *testing.T) {
	created := 0
	b := New(&Table{
		CreateFont: func(FontDescription) (FontHandle, FontMetrics) {
			created++
			return 1, FontMetrics{}
		},
		PtToPx: func(pt Fl) Fl { return 2 * pt },
	})
	b.CreateFont(backend.FontDescription{})
	b.Close()
	testutils.AssertEqual(t, b.Closed(), true)

	logs := testutils.CaptureLogs()
	font, _ := b.CreateFont(backend.FontDescription{})
	px := b.PtToPx(3)
	logs.CheckEqual([]string{
		"CreateFont requested on a released bridge",
		"PtToPx requested on a released bridge",
	}, t)

	testutils.AssertEqual(t, created, 1)
	testutils.AssertEqual(t, font, backend.FontHandle(0))
	testutils.AssertEqual(t, px, backend.Fl(3))
}

func TestPanickingHost(t *testing.T) {
	b := New(&Table{
		PtToPx:          func(pt Fl) Fl { panic("broken host") },
		DefaultFontSize: func() Fl { panic("broken host") },
		DrawSolidFill:   func(Surface, BackgroundLayer, Color) { panic("broken host") },
	})
	logs := testutils.CaptureLogs()
	px := b.PtToPx(5)
	size := b.DefaultFontSize()
	b.DrawSolidFill(nil, backend.BackgroundLayer{}, backend.Black)
	logs.CheckEqual([]string{
		"host callback PtToPx failed: broken host",
		"host callback DefaultFontSize failed: broken host",
		"host callback DrawSolidFill failed: broken host",
	}, t)
	testutils.AssertEqual(t, px, backend.Fl(5))
	testutils.AssertEqual(t, size, backend.Fl(16))
}

func TestLanguage(t *testing.T) {
	b := New(&Table{
		GetLanguage: func() (string, string) { return "FR_fr", "" },
	})
	lang, culture := b.GetLanguage()
	testutils.AssertEqual(t, lang, "fr-fr")
	testutils.AssertEqual(t, culture, "")
}

func TestImportCSSBase(t *testing.T) {
	b := New(&Table{
		ImportCSS: func(url, baseURL string) (string, string) {
			if url == "nested.css" {
				return "p { color: red }", ""
			}
			return "@import 'nested.css';", "http://example.org/css/"
		},
	})
	css, base := b.ImportCSS("main.css", "http://example.org/")
	testutils.AssertEqual(t, css, "@import 'nested.css';")
	testutils.AssertEqual(t, base, "http://example.org/css/")
	css, base = b.ImportCSS("nested.css", "http://example.org/css/")
	testutils.AssertEqual(t, css, "p { color: red }")
	testutils.AssertEqual(t, base, "http://example.org/css/")
}

func TestDefaultFontNameCached(t *testing.T) {
	calls := 0
	b := New(&Table{DefaultFontName: func() string { calls++; return "Go" }})
	b.DefaultFontName()
	testutils.AssertEqual(t, b.DefaultFontName(), "Go")
	testutils.AssertEqual(t, calls, 1)
}
