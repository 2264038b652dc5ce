package css

import (
	"testing"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/utils/testutils"
)

func ruleTexts(s *Stylesheet) []string {
	var out []string
	for _, r := range s.Rules {
		out = append(out, r.Text)
	}
	return out
}

func TestParseSortsBySpecificity(t *testing.T) {
	sheet := Parse(`
	a:hover, #main { color: blue !important }
	div p { margin: 0 auto }
	p { color: red }
	`, "", Author, nil, nil)

	testutils.AssertEqual(t, ruleTexts(sheet), []string{"p", "div p", "a", "#main"})
	testutils.AssertEqual(t, sheet.HasDynamic, true)
	testutils.AssertEqual(t, sheet.HasMedia, false)

	hover := sheet.Rules[2]
	testutils.AssertEqual(t, hover.State, Hover)
	testutils.AssertEqual(t, hover.Declarations, []Declaration{{Name: "color", Value: "blue", Important: true}})
	testutils.AssertEqual(t, sheet.Rules[1].Declarations, []Declaration{{Name: "margin", Value: "0 auto"}})
}

func TestEqualSpecificityKeepsOrder(t *testing.T) {
	sheet := Parse(`.b { color: red } .a { color: blue } .c { color: green }`, "", Author, nil, nil)
	testutils.AssertEqual(t, ruleTexts(sheet), []string{".b", ".a", ".c"})
	for i, r := range sheet.Rules {
		testutils.AssertEqual(t, r.Order, i)
	}
}

func TestInvalidSelector(t *testing.T) {
	logs := testutils.CaptureLogs()
	sheet := Parse(`p::first-line { color: red } a:hover span { color: red } em { color: blue }`, "", Author, nil, nil)
	got := logs.Logs()
	testutils.AssertEqual(t, len(got), 2)
	testutils.AssertEqual(t, ruleTexts(sheet), []string{"em"})
}

func TestDynamicPseudoClasses(t *testing.T) {
	for _, test := range []struct {
		in    string
		out   string
		state PseudoState
		ok    bool
	}{
		{"a:hover", "a", Hover, true},
		{":hover", "*", Hover, true},
		{"ul > li:active:hover", "ul > li", Hover | Active, true},
		{"div :hover", "div *", Hover, true},
		{"a:hover span", "", 0, false},
		{"p", "p", 0, true},
	} {
		out, state, ok := stripDynamicPseudoClasses(test.in)
		testutils.AssertEqual(t, ok, test.ok)
		if ok {
			testutils.AssertEqual(t, out, test.out)
			testutils.AssertEqual(t, state, test.state)
		}
	}
}

func TestImport(t *testing.T) {
	type call struct{ url, base string }
	var calls []call
	importer := func(url, baseURL string) (string, string) {
		calls = append(calls, call{url, baseURL})
		switch url {
		case "main.css":
			return `@import url("nested.css"); h1 { color: red }`, "http://example.org/css/main.css"
		case "nested.css":
			return `h2 { color: blue }`, ""
		case "print.css":
			return `h3 { color: green }`, ""
		}
		return "", ""
	}
	sheet := Parse(`@import "main.css"; @import url(print.css) print; h4 { color: black }`,
		"http://example.org/", Author, nil, importer)

	testutils.AssertEqual(t, calls, []call{
		{"main.css", "http://example.org/"},
		{"nested.css", "http://example.org/css/main.css"},
		{"print.css", "http://example.org/"},
	})
	testutils.AssertEqual(t, ruleTexts(sheet), []string{"h2", "h1", "h3", "h4"})
	testutils.AssertEqual(t, sheet.HasMedia, true)

	screen := backend.MediaFeatures{Type: backend.MediaScreen}
	testutils.AssertEqual(t, sheet.Rules[2].MatchesMedia(screen), false)
	testutils.AssertEqual(t, sheet.Rules[3].MatchesMedia(screen), true)
}

func TestCircularImport(t *testing.T) {
	importer := func(url, baseURL string) (string, string) {
		return `@import "loop.css"; p { color: red }`, baseURL
	}
	logs := testutils.CaptureLogs()
	sheet := Parse(`@import "loop.css";`, "http://example.org/", Author, nil, importer)
	logs.CheckEqual([]string{"circular import"}, t)
	testutils.AssertEqual(t, ruleTexts(sheet), []string{"p"})
}

func TestLateImportIgnored(t *testing.T) {
	importer := func(url, baseURL string) (string, string) { return `p { color: red }`, "" }
	logs := testutils.CaptureLogs()
	sheet := Parse(`em { color: blue } @import "late.css";`, "", Author, nil, importer)
	logs.CheckEqual([]string{"not at the beginning"}, t)
	testutils.AssertEqual(t, ruleTexts(sheet), []string{"em"})
}

func TestMediaRules(t *testing.T) {
	sheet := Parse(`
	@media screen and (min-width: 600px) { .wide { color: red } }
	@media print { .print { color: red } }
	@font-face { font-family: test; src: url(test.woff) }
	.always { color: blue }
	`, "", Author, nil, nil)
	testutils.AssertEqual(t, sheet.HasMedia, true)

	byText := map[string]Rule{}
	for _, r := range sheet.Rules {
		byText[r.Text] = r
	}
	testutils.AssertEqual(t, len(byText), 3)

	small := backend.MediaFeatures{Type: backend.MediaScreen, Width: 400, Height: 800}
	large := backend.MediaFeatures{Type: backend.MediaScreen, Width: 1000, Height: 800}
	wide, print, always := byText[".wide"], byText[".print"], byText[".always"]
	testutils.AssertEqual(t, wide.MatchesMedia(small), false)
	testutils.AssertEqual(t, wide.MatchesMedia(large), true)
	testutils.AssertEqual(t, print.MatchesMedia(large), false)
	testutils.AssertEqual(t, always.MatchesMedia(small), true)
}

func TestParseInline(t *testing.T) {
	decls := ParseInline("color: RED; Margin-Left : 2px ;background: url(a.png) no-repeat !important")
	testutils.AssertEqual(t, decls, []Declaration{
		{Name: "color", Value: "RED"},
		{Name: "margin-left", Value: "2px"},
		{Name: "background", Value: "url(a.png) no-repeat", Important: true},
	})
}

func TestOriginPrecedence(t *testing.T) {
	ranks := []int{
		UserAgent.Precedence(false),
		User.Precedence(false),
		Author.Precedence(false),
		Author.Precedence(true),
		User.Precedence(true),
		UserAgent.Precedence(true),
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i] <= ranks[i-1] {
			t.Fatalf("invalid cascade order: %v", ranks)
		}
	}
}
