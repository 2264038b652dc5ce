package css

import (
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/utils"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

type Unit uint8

const (
	UnitPx Unit = iota
	UnitPt
	UnitPc
	UnitIn
	UnitCm
	UnitMm
	UnitEm
	UnitEx
	UnitCh
	UnitRem
	UnitVw
	UnitVh
	UnitVmin
	UnitVmax
	UnitPercent
	UnitAuto // the `auto` keyword
	UnitNone // the `none` keyword (max-width, max-height)
)

var units = map[string]Unit{
	"px": UnitPx, "pt": UnitPt, "pc": UnitPc, "in": UnitIn, "cm": UnitCm, "mm": UnitMm,
	"em": UnitEm, "ex": UnitEx, "ch": UnitCh, "rem": UnitRem,
	"vw": UnitVw, "vh": UnitVh, "vmin": UnitVmin, "vmax": UnitVmax, "%": UnitPercent,
}

// Length is a CSS dimension, or one of the `auto` and `none` keywords.
type Length struct {
	Value Fl
	Unit  Unit
}

var (
	Auto = Length{Unit: UnitAuto}
	None = Length{Unit: UnitNone}
	Zero = Length{}
)

func Px(v Fl) Length      { return Length{Value: v, Unit: UnitPx} }
func Percent(v Fl) Length { return Length{Value: v, Unit: UnitPercent} }

func (l Length) IsAuto() bool { return l.Unit == UnitAuto }

func (l Length) IsNone() bool { return l.Unit == UnitNone }

// ParseLength parses a dimension, a percentage, a unitless zero,
// `auto` or `none`.
func ParseLength(s string) (Length, bool) {
	s = utils.AsciiLower(strings.TrimSpace(s))
	switch s {
	case "auto":
		return Auto, true
	case "none":
		return None, true
	case "":
		return Length{}, false
	}
	i := len(s)
	for i > 0 && (s[i-1] == '%' || ('a' <= s[i-1] && s[i-1] <= 'z')) {
		i--
	}
	v, err := strconv.ParseFloat(s[:i], 32)
	if err != nil {
		return Length{}, false
	}
	if i == len(s) {
		if v != 0 {
			return Length{}, false // unitless lengths are only valid for 0
		}
		return Length{}, true
	}
	u, ok := units[s[i:]]
	if !ok {
		return Length{}, false
	}
	return Length{Value: Fl(v), Unit: u}, true
}

// Context provides what is needed to convert relative lengths into pixels.
type Context struct {
	FontSize     Fl
	RootFontSize Fl
	XHeight      Fl // 0 means FontSize / 2
	ChWidth      Fl // 0 means FontSize / 2
	Viewport     backend.Size
	// PtToPx converts absolute units, which are expressed in points.
	// If nil, 1pt is 4/3 px.
	PtToPx func(pt Fl) Fl
}

func (ctx *Context) pt(v Fl) Fl {
	if ctx.PtToPx == nil {
		return v * 4 / 3
	}
	return ctx.PtToPx(v)
}

// Resolve returns the length in pixels. `percentBase` is the reference for
// percentages. The keywords resolve to 0.
func (l Length) Resolve(ctx *Context, percentBase Fl) Fl {
	v := l.Value
	switch l.Unit {
	case UnitPx:
		return v
	case UnitPt:
		return ctx.pt(v)
	case UnitPc:
		return ctx.pt(v * 12)
	case UnitIn:
		return ctx.pt(v * 72)
	case UnitCm:
		return ctx.pt(v * 72 / 2.54)
	case UnitMm:
		return ctx.pt(v * 72 / 25.4)
	case UnitEm:
		return v * ctx.FontSize
	case UnitEx:
		if ctx.XHeight != 0 {
			return v * ctx.XHeight
		}
		return v * ctx.FontSize / 2
	case UnitCh:
		if ctx.ChWidth != 0 {
			return v * ctx.ChWidth
		}
		return v * ctx.FontSize / 2
	case UnitRem:
		return v * ctx.RootFontSize
	case UnitVw:
		return v * ctx.Viewport.Width / 100
	case UnitVh:
		return v * ctx.Viewport.Height / 100
	case UnitVmin:
		return v * utils.MinF(ctx.Viewport.Width, ctx.Viewport.Height) / 100
	case UnitVmax:
		return v * utils.MaxF(ctx.Viewport.Width, ctx.Viewport.Height) / 100
	case UnitPercent:
		return v * percentBase / 100
	default:
		return 0
	}
}

// ParseURL parses `url(...)`, returning the unquoted content.
func ParseURL(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 5 || utils.AsciiLower(s[:4]) != "url(" || s[len(s)-1] != ')' {
		return "", false
	}
	inner := strings.TrimSpace(s[4 : len(s)-1])
	if u, rest, ok := cutQuoted(inner); ok && strings.TrimSpace(rest) == "" {
		return u, true
	}
	return inner, true
}

// cutQuoted parses a leading quoted string.
func cutQuoted(s string) (value, rest string, ok bool) {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') {
		return "", s, false
	}
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case quote:
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(c)
		}
	}
	return "", s, false
}

// Unquote removes the quotes around a CSS string, if any.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if v, rest, ok := cutQuoted(s); ok && rest == "" {
		return v
	}
	return s
}

// splitTopLevel splits `s` on `sep`, ignoring separators inside
// parenthesis or quotes. Parts are trimmed.
func splitTopLevel(s string, sep byte) []string {
	var (
		out   []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			out = append(out, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(out, strings.TrimSpace(s[start:]))
}

// SplitFields splits on white space, keeping function calls and strings
// in one piece: `1px solid rgb(0, 0, 0)` gives three fields.
func SplitFields(s string) []string {
	var out []string
	for _, f := range splitTopLevel(strings.TrimSpace(s), ' ') {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// SplitCommas splits a comma separated list at the top level.
func SplitCommas(s string) []string { return splitTopLevel(s, ',') }

// function returns the lower case name and the arguments of a functional notation.
func function(s string) (name, args string, ok bool) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || s[len(s)-1] != ')' {
		return "", "", false
	}
	return utils.AsciiLower(s[:open]), s[open+1 : len(s)-1], true
}

// ParseColor parses a CSS color: hexadecimal, named, rgb(), rgba(), hsl(),
// hsla(), hwb(), `transparent` and `currentColor`.
func ParseColor(s string) (backend.WebColor, bool) {
	s = strings.TrimSpace(s)
	lower := utils.AsciiLower(s)
	switch lower {
	case "":
		return backend.WebColor{}, false
	case "currentcolor":
		return backend.WebColor{IsCurrentColor: true}, true
	case "transparent":
		return backend.Transparent, true
	}
	if lower[0] == '#' {
		return parseHexColor(lower[1:])
	}
	if c, ok := colornames.Map[lower]; ok {
		return backend.WebColor{R: c.R, G: c.G, B: c.B, A: c.A}, true
	}
	name, args, ok := function(lower)
	if !ok {
		return backend.WebColor{}, false
	}
	comps, alpha, ok := colorArguments(args)
	if !ok {
		return backend.WebColor{}, false
	}
	switch name {
	case "rgb", "rgba":
		var rgb [3]uint8
		for i, c := range comps {
			v, ok := parseNumberOrPercent(c, 255)
			if !ok {
				return backend.WebColor{}, false
			}
			rgb[i] = clampByte(v)
		}
		return backend.WebColor{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}, true
	case "hsl", "hsla":
		h, ok1 := parseHue(comps[0])
		sat, ok2 := parseNumberOrPercent(comps[1], 1)
		l, ok3 := parseNumberOrPercent(comps[2], 1)
		if !(ok1 && ok2 && ok3) {
			return backend.WebColor{}, false
		}
		return fromColorful(colorful.Hsl(h, clamp01(sat), clamp01(l)), alpha), true
	case "hwb":
		h, ok1 := parseHue(comps[0])
		w, ok2 := parseNumberOrPercent(comps[1], 1)
		bl, ok3 := parseNumberOrPercent(comps[2], 1)
		if !(ok1 && ok2 && ok3) {
			return backend.WebColor{}, false
		}
		w, bl = clamp01(w), clamp01(bl)
		if w+bl >= 1 {
			gray := w / (w + bl)
			return fromColorful(colorful.Color{R: gray, G: gray, B: gray}, alpha), true
		}
		// hwb is hsv with s = 1 - w / v and v = 1 - b
		v := 1 - bl
		return fromColorful(colorful.Hsv(h, 1-w/v, v), alpha), true
	}
	return backend.WebColor{}, false
}

func fromColorful(c colorful.Color, alpha uint8) backend.WebColor {
	r, g, b := c.Clamped().RGB255()
	return backend.WebColor{R: r, G: g, B: b, A: alpha}
}

// colorArguments accepts both the legacy comma syntax and the
// space separated syntax with an optional `/ alpha`.
func colorArguments(args string) (comps []string, alpha uint8, ok bool) {
	alpha = 255
	var alphaStr string
	if strings.Contains(args, ",") {
		comps = splitTopLevel(args, ',')
		if len(comps) == 4 {
			alphaStr, comps = comps[3], comps[:3]
		}
	} else {
		main, a, hasAlpha := strings.Cut(args, "/")
		comps = SplitFields(main)
		if hasAlpha {
			alphaStr = strings.TrimSpace(a)
		}
	}
	if len(comps) != 3 {
		return nil, 0, false
	}
	if alphaStr != "" {
		a, ok := parseNumberOrPercent(alphaStr, 1)
		if !ok {
			return nil, 0, false
		}
		alpha = clampByte(clamp01(a) * 255)
	}
	return comps, alpha, true
}

// parseNumberOrPercent maps percentages to [0, max].
func parseNumberOrPercent(s string, max float64) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(s[:len(s)-1], 64)
		return v * max / 100, err == nil
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// parseHue returns an angle in degrees, in [0, 360[.
func parseHue(s string) (float64, bool) {
	a, ok := ParseAngle(s)
	if !ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		a = Fl(v)
	}
	h := math.Mod(float64(a), 360)
	if h < 0 {
		h += 360
	}
	return h, true
}

// ParseAngle parses deg, rad, grad and turn dimensions, returning degrees.
func ParseAngle(s string) (Fl, bool) {
	s = utils.AsciiLower(strings.TrimSpace(s))
	for _, u := range [...]struct {
		suffix string
		factor float64
	}{{"deg", 1}, {"grad", 0.9}, {"rad", 180 / math.Pi}, {"turn", 360}} {
		if strings.HasSuffix(s, u.suffix) {
			v, err := strconv.ParseFloat(s[:len(s)-len(u.suffix)], 64)
			if err != nil {
				return 0, false
			}
			return Fl(v * u.factor), true
		}
	}
	if s == "0" {
		return 0, true
	}
	return 0, false
}

func parseHexColor(hex string) (backend.WebColor, bool) {
	digits := make([]uint8, len(hex))
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		switch {
		case '0' <= c && c <= '9':
			digits[i] = c - '0'
		case 'a' <= c && c <= 'f':
			digits[i] = c - 'a' + 10
		default:
			return backend.WebColor{}, false
		}
	}
	switch len(digits) {
	case 3, 4:
		out := backend.WebColor{R: digits[0] * 17, G: digits[1] * 17, B: digits[2] * 17, A: 255}
		if len(digits) == 4 {
			out.A = digits[3] * 17
		}
		return out, true
	case 6, 8:
		out := backend.WebColor{
			R: digits[0]<<4 | digits[1],
			G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5],
			A: 255,
		}
		if len(digits) == 8 {
			out.A = digits[6]<<4 | digits[7]
		}
		return out, true
	}
	return backend.WebColor{}, false
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func clampByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// ParseNumber parses a unitless number.
func ParseNumber(s string) (Fl, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return Fl(v), err == nil
}
