package css

import (
	"math"
	"testing"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/utils/testutils"
)

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in  string
		out backend.WebColor
	}{
		{"red", backend.WebColor{R: 255, A: 255}},
		{"CornflowerBlue", backend.WebColor{R: 100, G: 149, B: 237, A: 255}},
		{"#0f0", backend.WebColor{G: 255, A: 255}},
		{"#0f08", backend.WebColor{G: 255, A: 136}},
		{"#102030", backend.WebColor{R: 16, G: 32, B: 48, A: 255}},
		{"#10203040", backend.WebColor{R: 16, G: 32, B: 48, A: 64}},
		{"rgb(1, 2, 3)", backend.WebColor{R: 1, G: 2, B: 3, A: 255}},
		{"rgba(1, 2, 3, 0.5)", backend.WebColor{R: 1, G: 2, B: 3, A: 128}},
		{"rgb(100% 0% 0% / 50%)", backend.WebColor{R: 255, A: 128}},
		{"rgb(300, -2, 3)", backend.WebColor{R: 255, G: 0, B: 3, A: 255}},
		{"hsl(120, 100%, 50%)", backend.WebColor{G: 255, A: 255}},
		{"hsla(0deg 100% 50% / 0)", backend.WebColor{R: 255, A: 0}},
		{"hwb(0 0% 0%)", backend.WebColor{R: 255, A: 255}},
		{"hwb(0 50% 50%)", backend.WebColor{R: 128, G: 128, B: 128, A: 255}},
		{"transparent", backend.Transparent},
		{"currentColor", backend.WebColor{IsCurrentColor: true}},
	} {
		got, ok := ParseColor(test.in)
		if !ok {
			t.Fatalf("failed to parse %s", test.in)
		}
		testutils.AssertEqual(t, got, test.out)
	}

	for _, invalid := range []string{"", "#12", "#ggg", "rgb(1, 2)", "notacolor", "hsl(a, b, c)"} {
		if _, ok := ParseColor(invalid); ok {
			t.Fatalf("%s should be invalid", invalid)
		}
	}
}

func TestParseLength(t *testing.T) {
	for _, test := range []struct {
		in  string
		out Length
	}{
		{"0", Zero},
		{"12px", Px(12)},
		{"-1.5em", Length{Value: -1.5, Unit: UnitEm}},
		{".5rem", Length{Value: 0.5, Unit: UnitRem}},
		{"50%", Percent(50)},
		{"AUTO", Auto},
		{"none", None},
		{"2vw", Length{Value: 2, Unit: UnitVw}},
	} {
		got, ok := ParseLength(test.in)
		if !ok {
			t.Fatalf("failed to parse %s", test.in)
		}
		testutils.AssertEqual(t, got, test.out)
	}
	for _, invalid := range []string{"", "12", "px", "1furlong"} {
		if _, ok := ParseLength(invalid); ok {
			t.Fatalf("%s should be invalid", invalid)
		}
	}
}

func TestResolveLength(t *testing.T) {
	ctx := &Context{
		FontSize: 10, RootFontSize: 16,
		Viewport: backend.Size{Width: 800, Height: 600},
		PtToPx:   func(pt Fl) Fl { return pt * 2 },
	}
	for _, test := range []struct {
		l    Length
		base Fl
		exp  Fl
	}{
		{Px(3), 0, 3},
		{Length{Value: 2, Unit: UnitEm}, 0, 20},
		{Length{Value: 2, Unit: UnitRem}, 0, 32},
		{Length{Value: 2, Unit: UnitEx}, 0, 10},
		{Length{Value: 3, Unit: UnitPt}, 0, 6},
		{Length{Value: 1, Unit: UnitIn}, 0, 144},
		{Percent(25), 200, 50},
		{Length{Value: 10, Unit: UnitVh}, 0, 60},
		{Length{Value: 10, Unit: UnitVmin}, 0, 60},
		{Auto, 100, 0},
	} {
		testutils.AssertEqual(t, test.l.Resolve(ctx, test.base), test.exp)
	}
}

func TestParseURL(t *testing.T) {
	for in, exp := range map[string]string{
		"url(a.png)":          "a.png",
		"url( 'b c.png' )":    "b c.png",
		`URL("data:x,\"y\"")`: `data:x,"y"`,
	} {
		got, ok := ParseURL(in)
		if !ok {
			t.Fatalf("failed to parse %s", in)
		}
		testutils.AssertEqual(t, got, exp)
	}
	if _, ok := ParseURL("a.png"); ok {
		t.Fatal("expected invalid url")
	}
}

func TestSplitFields(t *testing.T) {
	testutils.AssertEqual(t, SplitFields("1px  solid rgb(0, 0, 0)"), []string{"1px", "solid", "rgb(0, 0, 0)"})
	testutils.AssertEqual(t, SplitCommas("url(a,b.png), linear-gradient(red, blue)"),
		[]string{"url(a,b.png)", "linear-gradient(red, blue)"})
}

func TestMediaQueries(t *testing.T) {
	screen := backend.MediaFeatures{
		Type: backend.MediaScreen, Width: 800, Height: 600,
		DeviceWidth: 1920, DeviceHeight: 1080, Color: 8, Resolution: 96,
	}
	for _, test := range []struct {
		query string
		exp   bool
	}{
		{"", true},
		{"all", true},
		{"screen", true},
		{"print", false},
		{"not print", true},
		{"only screen and (min-width: 600px)", true},
		{"screen and (max-width: 600px)", false},
		{"(max-width: 50em)", true},
		{"print, (orientation: landscape)", true},
		{"(orientation: portrait)", false},
		{"(min-device-width: 1920px) and (max-device-height: 1080px)", true},
		{"(color)", true},
		{"(monochrome)", false},
		{"(min-color: 4)", true},
		{"(min-resolution: 2dppx)", false},
		{"(max-resolution: 1x)", true},
		{"(min-aspect-ratio: 16/9)", false},
		{"(aspect-ratio: 4/3)", true},
		{"screen print", false},
		{"tv", false},
	} {
		got := ParseMediaList(test.query).Matches(screen)
		if got != test.exp {
			t.Fatalf("query %q: expected %v, got %v", test.query, test.exp, got)
		}
	}
}

func approx(t *testing.T, got, exp Fl) {
	t.Helper()
	if math.Abs(float64(got-exp)) > 1e-3 {
		t.Fatalf("expected %g, got %g", exp, got)
	}
}

func TestLinearGradient(t *testing.T) {
	g, ok := ParseGradient("linear-gradient(to right, red, blue 80%)")
	if !ok {
		t.Fatal("invalid gradient")
	}
	box := backend.Rect{X: 10, Y: 20, Width: 100, Height: 50}
	lg := g.Linear(&Context{FontSize: 16}, box, backend.Black)
	approx(t, lg.Start.X, 10)
	approx(t, lg.Start.Y, 45)
	approx(t, lg.End.X, 110)
	approx(t, lg.End.Y, 45)
	testutils.AssertEqual(t, len(lg.ColorPoints), 2)
	approx(t, lg.ColorPoints[0].Offset, 0)
	approx(t, lg.ColorPoints[1].Offset, 0.8)

	// default direction is to bottom
	g, _ = ParseGradient("linear-gradient(red, currentColor)")
	lg = g.Linear(&Context{}, backend.Rect{Width: 100, Height: 50}, backend.White)
	approx(t, lg.Start.Y, 0)
	approx(t, lg.End.Y, 50)
	testutils.AssertEqual(t, lg.ColorPoints[1].Color, backend.White)

	// corner
	g, _ = ParseGradient("linear-gradient(to bottom right, red, blue)")
	lg = g.Linear(&Context{}, backend.Rect{Width: 100, Height: 100}, backend.Black)
	approx(t, lg.Start.X, 0)
	approx(t, lg.Start.Y, 0)
	approx(t, lg.End.X, 100)
	approx(t, lg.End.Y, 100)
}

func TestGradientStops(t *testing.T) {
	g, ok := ParseGradient("linear-gradient(90deg, red, lime, blue 40px, white 20px, black)")
	if !ok {
		t.Fatal("invalid gradient")
	}
	lg := g.Linear(&Context{}, backend.Rect{Width: 100, Height: 10}, backend.Black)
	var offsets []Fl
	for _, p := range lg.ColorPoints {
		offsets = append(offsets, p.Offset)
	}
	exp := []Fl{0, 0.2, 0.4, 0.4, 1}
	testutils.AssertEqual(t, len(offsets), len(exp))
	for i := range exp {
		approx(t, offsets[i], exp[i])
	}
}

func TestGradientInterpolationSpace(t *testing.T) {
	g, ok := ParseGradient("linear-gradient(to right in oklch longer hue, red, blue)")
	if !ok {
		t.Fatal("invalid gradient")
	}
	testutils.AssertEqual(t, g.ColorSpace, backend.ColorSpaceOklch)
	testutils.AssertEqual(t, g.Hue, backend.HueLonger)
	testutils.AssertEqual(t, g.Angle, Fl(90))

	g, ok = ParseGradient("conic-gradient(in hsl, red, blue)")
	if !ok {
		t.Fatal("invalid gradient")
	}
	testutils.AssertEqual(t, g.ColorSpace, backend.ColorSpaceHSL)
}

func TestRadialGradient(t *testing.T) {
	g, ok := ParseGradient("radial-gradient(circle closest-side at 25% 50%, red, blue)")
	if !ok {
		t.Fatal("invalid gradient")
	}
	rg := g.Radial(&Context{}, backend.Rect{X: 0, Y: 0, Width: 200, Height: 100}, backend.Black)
	approx(t, rg.Position.X, 50)
	approx(t, rg.Position.Y, 50)
	approx(t, rg.Radius.X, 50)
	approx(t, rg.Radius.Y, 50)

	g, _ = ParseGradient("radial-gradient(red, blue)")
	rg = g.Radial(&Context{}, backend.Rect{Width: 200, Height: 100}, backend.Black)
	approx(t, rg.Radius.X, 100*math.Sqrt2)
	approx(t, rg.Radius.Y, 50*math.Sqrt2)

	g, _ = ParseGradient("radial-gradient(20px 10px at left top, red, blue)")
	rg = g.Radial(&Context{}, backend.Rect{Width: 200, Height: 100}, backend.Black)
	approx(t, rg.Position.X, 0)
	approx(t, rg.Radius.X, 20)
	approx(t, rg.Radius.Y, 10)
}

func TestConicGradient(t *testing.T) {
	g, ok := ParseGradient("conic-gradient(from 45deg at 0 0, red, blue 90deg, green)")
	if !ok {
		t.Fatal("invalid gradient")
	}
	cg := g.Conic(&Context{}, backend.Rect{Width: 30, Height: 40}, backend.Black)
	approx(t, cg.Angle, 45)
	approx(t, cg.Radius, 50)
	approx(t, cg.ColorPoints[1].Offset, 0.25)
}

func TestRepeatingGradient(t *testing.T) {
	g, ok := ParseGradient("repeating-linear-gradient(to right, red 0%, blue 25%)")
	if !ok {
		t.Fatal("invalid gradient")
	}
	lg := g.Linear(&Context{}, backend.Rect{Width: 100, Height: 10}, backend.Black)
	testutils.AssertEqual(t, len(lg.ColorPoints), 8)
	approx(t, lg.ColorPoints[7].Offset, 1)
}

func TestInvalidGradients(t *testing.T) {
	for _, s := range []string{
		"linear-gradient(red)",
		"linear-gradient(to nowhere, red, blue)",
		"radial-gradient(circle at, red, blue)",
		"linear-gradient(in unknownspace, red, blue)",
		"url(a.png)",
	} {
		if _, ok := ParseGradient(s); ok {
			t.Fatalf("%s should be invalid", s)
		}
	}
}
