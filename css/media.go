package css

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
)

type Fl = utils.Fl

// MediaList is a comma separated list of media queries.
// An empty list matches every device.
type MediaList []MediaQuery

// MediaQuery is one query of a media list, like `not screen and (min-width: 600px)`.
type MediaQuery struct {
	Not         bool
	Type        string // lower case, empty for all
	Expressions []MediaExpression
	invalid     bool
}

// MediaExpression is a parenthesized media feature, like `(max-width: 40em)`.
type MediaExpression struct {
	Feature string // lower case, with its min- or max- prefix
	Value   string // empty for a boolean test
}

// ParseMediaList parses the prelude of a @media rule, or the media list
// of an @import rule or a <style> or <link> element.
// Invalid queries never match, as required by CSS.
func ParseMediaList(text string) MediaList {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out MediaList
	for _, part := range splitTopLevel(text, ',') {
		q, ok := parseMediaQuery(part)
		if !ok {
			logger.WarningLogger.Printf("Invalid media query '%s', ignored.", part)
			q = MediaQuery{invalid: true}
		}
		out = append(out, q)
	}
	return out
}

func parseMediaQuery(text string) (MediaQuery, bool) {
	var q MediaQuery
	text = strings.TrimSpace(text)
	for text != "" {
		if text[0] == '(' {
			end := strings.IndexByte(text, ')')
			if end == -1 {
				return q, false
			}
			expr, ok := parseMediaExpression(text[1:end])
			if !ok {
				return q, false
			}
			q.Expressions = append(q.Expressions, expr)
			text = strings.TrimSpace(text[end+1:])
			continue
		}
		word := text
		if i := strings.IndexAny(text, " ("); i != -1 {
			word = text[:i]
		}
		text = strings.TrimSpace(text[len(word):])
		switch w := utils.AsciiLower(word); w {
		case "and":
		case "only":
		case "not":
			q.Not = true
		default:
			if q.Type != "" || len(q.Expressions) != 0 {
				return q, false
			}
			q.Type = w
		}
	}
	return q, true
}

func parseMediaExpression(text string) (MediaExpression, bool) {
	name, value, _ := strings.Cut(text, ":")
	name = utils.AsciiLower(strings.TrimSpace(name))
	if name == "" {
		return MediaExpression{}, false
	}
	return MediaExpression{Feature: name, Value: strings.TrimSpace(value)}, true
}

// Matches returns true if one of the queries matches.
func (ml MediaList) Matches(features backend.MediaFeatures) bool {
	if len(ml) == 0 {
		return true
	}
	for _, q := range ml {
		if q.Matches(features) {
			return true
		}
	}
	return false
}

func (q MediaQuery) Matches(features backend.MediaFeatures) bool {
	if q.invalid {
		return false
	}
	ok := matchesMediaType(q.Type, features.Type)
	for _, expr := range q.Expressions {
		if !ok {
			break
		}
		ok = expr.matches(features)
	}
	if q.Not {
		return !ok
	}
	return ok
}

func matchesMediaType(name string, device backend.MediaType) bool {
	switch name {
	case "", "all":
		return true
	case "screen":
		return device == backend.MediaScreen || device == backend.MediaAll
	case "print":
		return device == backend.MediaPrint || device == backend.MediaAll
	default:
		return false
	}
}

// compare applies the min- or max- prefix of `feature`.
func compare(prefix string, actual, expected Fl) bool {
	switch prefix {
	case "min-":
		return actual >= expected
	case "max-":
		return actual <= expected
	default:
		return actual == expected
	}
}

func (expr MediaExpression) matches(f backend.MediaFeatures) bool {
	prefix, name := "", expr.Feature
	if strings.HasPrefix(name, "min-") || strings.HasPrefix(name, "max-") {
		prefix, name = name[:4], name[4:]
	}
	if expr.Value == "" && prefix == "" { // boolean context
		switch name {
		case "width":
			return f.Width != 0
		case "height":
			return f.Height != 0
		case "color":
			return f.Color != 0
		case "color-index":
			return f.ColorIndex != 0
		case "monochrome":
			return f.Monochrome != 0
		case "orientation", "resolution", "device-width", "device-height":
			return true
		}
		return false
	}

	switch name {
	case "width", "height", "device-width", "device-height":
		l, ok := ParseLength(expr.Value)
		if !ok || l.Unit == UnitPercent || l.Unit == UnitAuto {
			return false
		}
		// media queries use the initial font size
		v := l.Resolve(&Context{FontSize: 16, RootFontSize: 16, Viewport: backend.Size{Width: f.Width, Height: f.Height}}, 0)
		actual := f.Width
		switch name {
		case "height":
			actual = f.Height
		case "device-width":
			actual = f.DeviceWidth
		case "device-height":
			actual = f.DeviceHeight
		}
		return compare(prefix, actual, v)
	case "orientation":
		portrait := f.Height >= f.Width
		switch utils.AsciiLower(expr.Value) {
		case "portrait":
			return portrait
		case "landscape":
			return !portrait
		}
		return false
	case "aspect-ratio", "device-aspect-ratio":
		num, den, ok := parseRatio(expr.Value)
		if !ok {
			return false
		}
		w, h := f.Width, f.Height
		if name == "device-aspect-ratio" {
			w, h = f.DeviceWidth, f.DeviceHeight
		}
		if h == 0 {
			return false
		}
		return compare(prefix, w/h, num/den)
	case "color", "color-index", "monochrome":
		n, err := strconv.Atoi(expr.Value)
		if err != nil {
			return false
		}
		actual := f.Color
		if name == "color-index" {
			actual = f.ColorIndex
		} else if name == "monochrome" {
			actual = f.Monochrome
		}
		return compare(prefix, Fl(actual), Fl(n))
	case "resolution":
		dpi, ok := parseResolution(expr.Value)
		if !ok {
			return false
		}
		return compare(prefix, f.Resolution, dpi)
	}
	return false
}

func parseRatio(s string) (num, den Fl, ok bool) {
	a, b, found := strings.Cut(s, "/")
	if !found {
		b = "1"
	}
	n, err1 := strconv.ParseFloat(strings.TrimSpace(a), 32)
	d, err2 := strconv.ParseFloat(strings.TrimSpace(b), 32)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, 0, false
	}
	return Fl(n), Fl(d), true
}

// parseResolution returns the resolution in dots per inch.
func parseResolution(s string) (Fl, bool) {
	s = utils.AsciiLower(strings.TrimSpace(s))
	factor := Fl(1)
	switch {
	case strings.HasSuffix(s, "dpi"):
		s = s[:len(s)-3]
	case strings.HasSuffix(s, "dpcm"):
		s, factor = s[:len(s)-4], 2.54
	case strings.HasSuffix(s, "dppx"):
		s, factor = s[:len(s)-4], 96
	case strings.HasSuffix(s, "x"):
		s, factor = s[:len(s)-1], 96
	default:
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, false
	}
	return Fl(v) * factor, true
}
