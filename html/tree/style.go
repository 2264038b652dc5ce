package tree

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
)

type Display uint8

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayListItem
	DisplayNone
)

// IsBlockLevel returns true for the displays taking a full line.
func (d Display) IsBlockLevel() bool { return d == DisplayBlock || d == DisplayListItem }

type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

// IsOutOfFlow returns true for absolute and fixed positioning.
func (p Position) IsOutOfFlow() bool { return p == PositionAbsolute || p == PositionFixed }

type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNowrap
	WhiteSpacePre
	WhiteSpacePreWrap
	WhiteSpacePreLine
)

// Wraps returns true if lines may be broken at spaces.
func (w WhiteSpace) Wraps() bool { return w != WhiteSpaceNowrap && w != WhiteSpacePre }

type BoxArea uint8

const (
	BorderBox BoxArea = iota
	PaddingBox
	ContentBox
)

// BorderSide is a computed border: the width is in pixels, and
// is 0 when the style is none or hidden.
type BorderSide struct {
	Width Fl
	Style backend.BorderStyle
	Color backend.WebColor
}

// BackgroundImage is one layer of background-image: either an URL or a gradient.
type BackgroundImage struct {
	URL      string
	BaseURL  string
	Gradient *css.Gradient
}

// LineHeight is the computed line-height: `normal`, a factor of the font size,
// or an absolute length.
type LineHeight struct {
	Normal bool
	Factor Fl
	Px     Fl
	IsPx   bool
}

// Style is the computed style of an element. Text nodes use the style
// of their parent element.
type Style struct {
	Display   Display
	Position  Position
	Offsets   [4]css.Length // top, right, bottom, left
	Width     css.Length
	Height    css.Length
	MinWidth  css.Length
	MinHeight css.Length
	MaxWidth  css.Length
	MaxHeight css.Length
	Margin    [4]css.Length // top, right, bottom, left
	Padding   [4]css.Length
	Border    [4]BorderSide
	// Radius stores the horizontal and vertical radius of the top-left,
	// top-right, bottom-right and bottom-left corners.
	Radius [4][2]css.Length

	Color                backend.WebColor
	BackgroundColor      backend.WebColor
	BackgroundImages     []BackgroundImage
	BackgroundRepeat     backend.BackgroundRepeat
	BackgroundAttachment backend.BackgroundAttachment
	BackgroundClip       BoxArea
	BackgroundOrigin     BoxArea
	BackgroundPosition   [2]css.Length
	BackgroundSize       [2]css.Length // auto for the intrinsic size

	Font       backend.FontDescription
	FontHandle backend.FontHandle
	Metrics    backend.FontMetrics
	LineHeight LineHeight

	TextAlign         backend.TextAlign
	TextTransform     backend.TextTransform
	WhiteSpace        WhiteSpace
	ListStyleType     backend.ListStyleType
	ListStyleImage    string
	ListStyleImageURL string // base URL of ListStyleImage
	ListStyleInside   bool
	Cursor            string
	OverflowHidden    bool
	Hidden            bool // visibility: hidden
}

// LineHeightPx returns the used line height in pixels.
func (s *Style) LineHeightPx() Fl {
	switch {
	case s.LineHeight.IsPx:
		return s.LineHeight.Px
	case s.LineHeight.Normal:
		return s.Metrics.Height
	default:
		return s.LineHeight.Factor * s.Font.Size
	}
}

// specified is a cascaded value, with the base URL of the stylesheet
// it comes from.
type specified struct {
	value   string
	baseURL string
}

// inherited are the properties inherited by default.
var inherited = utils.NewSet(
	"color", "cursor", "font-family", "font-size", "font-style", "font-weight",
	"line-height", "list-style-image", "list-style-position", "list-style-type",
	"text-align", "text-transform", "visibility", "white-space",
	"text-decoration-line", "text-decoration-style", "text-decoration-color", "text-decoration-thickness",
)

// fontSizeKeywords are relative to the default font size.
var fontSizeKeywords = map[string]Fl{
	"xx-small": 3. / 5, "x-small": 3. / 4, "small": 8. / 9, "medium": 1,
	"large": 6. / 5, "x-large": 3. / 2, "xx-large": 2, "xxx-large": 3,
}

var borderStyles = map[string]backend.BorderStyle{
	"none": backend.BorderNone, "hidden": backend.BorderHidden, "dotted": backend.BorderDotted,
	"dashed": backend.BorderDashed, "solid": backend.BorderSolid, "double": backend.BorderDouble,
	"groove": backend.BorderGroove, "ridge": backend.BorderRidge, "inset": backend.BorderInset,
	"outset": backend.BorderOutset,
}

var listStyleTypes = map[string]backend.ListStyleType{
	"none": backend.ListStyleNone, "circle": backend.ListStyleCircle, "disc": backend.ListStyleDisc,
	"square": backend.ListStyleSquare, "decimal": backend.ListStyleDecimal,
	"decimal-leading-zero": backend.ListStyleDecimalLeadingZero,
	"lower-alpha": backend.ListStyleLowerAlpha, "lower-latin": backend.ListStyleLowerAlpha,
	"upper-alpha": backend.ListStyleUpperAlpha, "upper-latin": backend.ListStyleUpperAlpha,
	"lower-roman": backend.ListStyleLowerRoman, "upper-roman": backend.ListStyleUpperRoman,
	"lower-greek": backend.ListStyleLowerGreek,
}

var borderWidthKeywords = map[string]Fl{"thin": 1, "medium": 3, "thick": 5}

var sides = [4]string{"top", "right", "bottom", "left"}

var corners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}

// styleComputer resolves the specified values of one element.
type styleComputer struct {
	c       backend.Container
	fonts   *Fonts
	parent  *Style // nil for the root
	root    *Style // nil when computing the root
	spec    map[string]specified
	element string // tag, used in warnings
	media   backend.MediaFeatures
}

func (sc *styleComputer) get(name string) (string, string) {
	v := sc.spec[name]
	return v.value, v.baseURL
}

func (sc *styleComputer) warn(name, value string) {
	logger.WarningLogger.Printf("Ignored `%s: %s` on <%s>, invalid or unsupported value.", name, value, sc.element)
}

func (sc *styleComputer) length(name string, def css.Length) css.Length {
	v, _ := sc.get(name)
	if v == "" {
		return def
	}
	l, ok := css.ParseLength(v)
	if !ok {
		sc.warn(name, v)
		return def
	}
	return l
}

func (sc *styleComputer) color(name string, def backend.WebColor) backend.WebColor {
	v, _ := sc.get(name)
	if v == "" {
		return def
	}
	c, ok := css.ParseColor(v)
	if !ok {
		sc.warn(name, v)
		return def
	}
	return c
}

func (sc *styleComputer) keyword(name string) string {
	v, _ := sc.get(name)
	return utils.AsciiLower(v)
}

func (sc *styleComputer) lengthContext(fontSize Fl) *css.Context {
	rootSize := fontSize
	if sc.root != nil {
		rootSize = sc.root.Font.Size
	}
	return &css.Context{
		FontSize:     fontSize,
		RootFontSize: rootSize,
		Viewport:     backend.Size{Width: sc.media.Width, Height: sc.media.Height},
		PtToPx:       sc.c.PtToPx,
	}
}

// compute returns the computed style. As a side effect, the
// font-size and line-height entries of the specified map are replaced
// by their computed values, which are the ones children inherit.
func (sc *styleComputer) compute() *Style {
	s := &Style{}
	parentSize := sc.c.DefaultFontSize()
	if sc.parent != nil {
		parentSize = sc.parent.Font.Size
	}

	sc.computeFont(s, parentSize)
	ctx := sc.lengthContext(s.Font.Size)
	ctx.XHeight, ctx.ChWidth = s.Metrics.XHeight, s.Metrics.ChWidth

	// color first, for currentColor
	parentColor := backend.Black
	if sc.parent != nil {
		parentColor = sc.parent.Color
	}
	s.Color = sc.color("color", parentColor).Resolve(parentColor)

	switch d := sc.keyword("display"); d {
	case "", "inline":
		s.Display = DisplayInline
	case "block", "table", "flex", "grid", "table-row", "table-cell", "table-caption",
		"table-row-group", "table-header-group", "table-footer-group", "flow-root":
		s.Display = DisplayBlock
	case "inline-block", "inline-table", "inline-flex", "inline-grid":
		s.Display = DisplayInlineBlock
	case "list-item":
		s.Display = DisplayListItem
	case "none":
		s.Display = DisplayNone
	default:
		sc.warn("display", d)
	}

	switch p := sc.keyword("position"); p {
	case "", "static":
	case "relative":
		s.Position = PositionRelative
	case "absolute":
		s.Position = PositionAbsolute
	case "fixed":
		s.Position = PositionFixed
	case "sticky":
		s.Position = PositionRelative
	default:
		sc.warn("position", p)
	}
	if s.Position.IsOutOfFlow() && (s.Display == DisplayInline || s.Display == DisplayInlineBlock) {
		s.Display = DisplayBlock
	}
	if sc.parent == nil && s.Display != DisplayNone {
		s.Display = DisplayBlock
	}

	for i, side := range sides {
		s.Offsets[i] = sc.length(side, css.Auto)
		s.Margin[i] = sc.length("margin-"+side, css.Zero)
		s.Padding[i] = sc.length("padding-"+side, css.Zero)
		s.Border[i] = sc.borderSide(side, s.Color, ctx)
	}
	for i, corner := range corners {
		s.Radius[i] = sc.radius(corner)
	}
	s.Width = sc.length("width", css.Auto)
	s.Height = sc.length("height", css.Auto)
	s.MinWidth = sc.length("min-width", css.Zero)
	s.MinHeight = sc.length("min-height", css.Zero)
	s.MaxWidth = sc.length("max-width", css.None)
	s.MaxHeight = sc.length("max-height", css.None)

	sc.computeBackground(s)

	s.LineHeight = sc.lineHeight(ctx)
	switch a := sc.keyword("text-align"); a {
	case "", "left", "start":
		s.TextAlign = backend.TextAlignLeft
	case "right", "end":
		s.TextAlign = backend.TextAlignRight
	case "center", "-webkit-center":
		s.TextAlign = backend.TextAlignCenter
	case "justify":
		s.TextAlign = backend.TextAlignJustify
	default:
		sc.warn("text-align", a)
	}
	switch tt := sc.keyword("text-transform"); tt {
	case "", "none":
	case "capitalize":
		s.TextTransform = backend.TextTransformCapitalize
	case "uppercase":
		s.TextTransform = backend.TextTransformUppercase
	case "lowercase":
		s.TextTransform = backend.TextTransformLowercase
	default:
		sc.warn("text-transform", tt)
	}
	switch ws := sc.keyword("white-space"); ws {
	case "", "normal":
	case "nowrap":
		s.WhiteSpace = WhiteSpaceNowrap
	case "pre":
		s.WhiteSpace = WhiteSpacePre
	case "pre-wrap", "break-spaces":
		s.WhiteSpace = WhiteSpacePreWrap
	case "pre-line":
		s.WhiteSpace = WhiteSpacePreLine
	default:
		sc.warn("white-space", ws)
	}

	s.ListStyleType = backend.ListStyleDisc
	if lt := sc.keyword("list-style-type"); lt != "" {
		if v, ok := listStyleTypes[lt]; ok {
			s.ListStyleType = v
		} else {
			// unknown counter styles still get a marker
			s.ListStyleType = backend.ListStyleDecimal
			sc.warn("list-style-type", lt)
		}
	}
	if img, base := sc.get("list-style-image"); img != "" && utils.AsciiLower(img) != "none" {
		if u, ok := css.ParseURL(img); ok {
			s.ListStyleImage, s.ListStyleImageURL = u, base
		} else {
			sc.warn("list-style-image", img)
		}
	}
	s.ListStyleInside = sc.keyword("list-style-position") == "inside"

	s.Cursor = sc.keyword("cursor")
	if s.Cursor == "" {
		s.Cursor = "auto"
	}
	switch o := sc.keyword("overflow"); o {
	case "", "visible":
	case "hidden", "scroll", "auto", "clip":
		s.OverflowHidden = true
	default:
		sc.warn("overflow", o)
	}
	switch v := sc.keyword("visibility"); v {
	case "", "visible":
	case "hidden", "collapse":
		s.Hidden = true
	default:
		sc.warn("visibility", v)
	}
	return s
}

func (sc *styleComputer) computeFont(s *Style, parentSize Fl) {
	ctx := sc.lengthContext(parentSize)
	size := parentSize
	if v := sc.keyword("font-size"); v != "" {
		switch {
		case fontSizeKeywords[v] != 0:
			size = fontSizeKeywords[v] * sc.c.DefaultFontSize()
		case v == "smaller":
			size = parentSize / 1.2
		case v == "larger":
			size = parentSize * 1.2
		default:
			l, ok := css.ParseLength(v)
			if !ok || l.IsAuto() || l.IsNone() {
				sc.warn("font-size", v)
				break
			}
			// em and percentages are relative to the parent font
			size = l.Resolve(ctx, parentSize)
		}
	}
	size = utils.ClampPositive(size)
	sc.spec["font-size"] = specified{value: strconv.FormatFloat(float64(size), 'f', -1, 32) + "px"}

	family, _ := sc.get("font-family")
	family = normalizeFamily(family)
	if family == "" {
		family = sc.c.DefaultFontName()
	}

	parentWeight := 400
	if sc.parent != nil {
		parentWeight = sc.parent.Font.Weight
	}
	weight := parentWeight
	switch w := sc.keyword("font-weight"); w {
	case "":
	case "normal":
		weight = 400
	case "bold":
		weight = 700
	case "bolder":
		weight = bolder(parentWeight)
	case "lighter":
		weight = lighter(parentWeight)
	default:
		n, err := strconv.Atoi(w)
		if err != nil || n < 1 || n > 1000 {
			sc.warn("font-weight", w)
		} else {
			weight = n
		}
	}
	sc.spec["font-weight"] = specified{value: strconv.Itoa(weight)}

	style := backend.FontStyleNormal
	switch fs := sc.keyword("font-style"); fs {
	case "", "normal":
	case "italic":
		style = backend.FontStyleItalic
	case "oblique":
		style = backend.FontStyleOblique
	default:
		if strings.HasPrefix(fs, "oblique") {
			style = backend.FontStyleOblique
		} else {
			sc.warn("font-style", fs)
		}
	}

	descr := backend.FontDescription{Family: family, Size: size, Style: style, Weight: weight}
	sc.computeDecoration(&descr, size)
	s.Font = descr
	font := sc.fonts.Get(sc.c, descr)
	s.FontHandle, s.Metrics = font.Handle, font.Metrics
}

func bolder(w int) int {
	switch {
	case w < 350:
		return 400
	case w < 550:
		return 700
	default:
		return 900
	}
}

func lighter(w int) int {
	switch {
	case w < 550:
		return 100
	case w < 750:
		return 400
	default:
		return 700
	}
}

// normalizeFamily removes the quotes around family names.
func normalizeFamily(family string) string {
	var names []string
	for _, name := range css.SplitCommas(family) {
		if name = css.Unquote(name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ",")
}

func (sc *styleComputer) computeDecoration(descr *backend.FontDescription, size Fl) {
	for _, line := range strings.Fields(sc.keyword("text-decoration-line")) {
		switch line {
		case "none":
			descr.DecorationLine = 0
		case "underline":
			descr.DecorationLine |= backend.DecorationUnderline
		case "overline":
			descr.DecorationLine |= backend.DecorationOverline
		case "line-through":
			descr.DecorationLine |= backend.DecorationLineThrough
		default:
			sc.warn("text-decoration-line", line)
		}
	}
	switch st := sc.keyword("text-decoration-style"); st {
	case "", "solid":
	case "double":
		descr.DecorationStyle = backend.DecorationDouble
	case "dotted":
		descr.DecorationStyle = backend.DecorationDotted
	case "dashed":
		descr.DecorationStyle = backend.DecorationDashed
	case "wavy":
		descr.DecorationStyle = backend.DecorationWavy
	default:
		sc.warn("text-decoration-style", st)
	}
	descr.DecorationColor = sc.color("text-decoration-color", backend.WebColor{IsCurrentColor: true})
	descr.DecorationThickness = backend.DecorationThickness{Predefined: true}
	switch th := sc.keyword("text-decoration-thickness"); th {
	case "", "auto":
	case "from-font":
		descr.DecorationThickness.FromFont = true
	default:
		l, ok := css.ParseLength(th)
		if !ok || l.IsAuto() || l.IsNone() {
			sc.warn("text-decoration-thickness", th)
			break
		}
		descr.DecorationThickness = backend.DecorationThickness{Length: l.Resolve(sc.lengthContext(size), size)}
	}
	if em, _ := sc.get("text-emphasis-style"); em != "" && em != "none" {
		descr.EmphasisStyle = em
		descr.EmphasisColor = sc.color("text-emphasis-color", backend.WebColor{IsCurrentColor: true})
		if strings.Contains(sc.keyword("text-emphasis-position"), "under") {
			descr.EmphasisPosition = 1
		}
	}
}

func (sc *styleComputer) lineHeight(ctx *css.Context) LineHeight {
	v := sc.keyword("line-height")
	switch v {
	case "", "normal":
		return LineHeight{Normal: true}
	}
	if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
		return LineHeight{Factor: Fl(f)}
	}
	l, ok := css.ParseLength(v)
	if !ok || l.IsAuto() || l.IsNone() || l.Value < 0 {
		sc.warn("line-height", v)
		return LineHeight{Normal: true}
	}
	px := l.Resolve(ctx, ctx.FontSize)
	sc.spec["line-height"] = specified{value: strconv.FormatFloat(float64(px), 'f', -1, 32) + "px"}
	return LineHeight{Px: px, IsPx: true}
}

func (sc *styleComputer) borderSide(side string, current backend.WebColor, ctx *css.Context) BorderSide {
	var out BorderSide
	st := sc.keyword("border-" + side + "-style")
	if st != "" {
		var ok bool
		if out.Style, ok = borderStyles[st]; !ok {
			sc.warn("border-"+side+"-style", st)
		}
	}
	out.Color = sc.color("border-"+side+"-color", backend.WebColor{IsCurrentColor: true}).Resolve(current)
	if out.Style == backend.BorderNone || out.Style == backend.BorderHidden {
		return out
	}
	out.Width = 3 // medium
	if w := sc.keyword("border-" + side + "-width"); w != "" {
		if kw, ok := borderWidthKeywords[w]; ok {
			out.Width = kw
		} else if l, ok := css.ParseLength(w); ok && l.Unit != css.UnitPercent && !l.IsAuto() && !l.IsNone() {
			out.Width = utils.ClampPositive(l.Resolve(ctx, 0))
		} else {
			sc.warn("border-"+side+"-width", w)
		}
	}
	return out
}

func (sc *styleComputer) radius(corner string) [2]css.Length {
	v, _ := sc.get("border-" + corner + "-radius")
	fields := css.SplitFields(v)
	var out [2]css.Length
	switch len(fields) {
	case 0:
		return out
	case 1, 2:
		for i := range out {
			l, ok := css.ParseLength(fields[i%len(fields)])
			if !ok || l.IsAuto() || l.IsNone() {
				sc.warn("border-"+corner+"-radius", v)
				return [2]css.Length{}
			}
			out[i] = l
		}
	default:
		sc.warn("border-"+corner+"-radius", v)
	}
	return out
}

var repeatValues = map[string]backend.BackgroundRepeat{
	"repeat": backend.Repeat, "repeat-x": backend.RepeatX, "repeat-y": backend.RepeatY,
	"no-repeat": backend.NoRepeat, "repeat repeat": backend.Repeat, "no-repeat no-repeat": backend.NoRepeat,
	"repeat no-repeat": backend.RepeatX, "no-repeat repeat": backend.RepeatY,
}

var boxAreas = map[string]BoxArea{"border-box": BorderBox, "padding-box": PaddingBox, "content-box": ContentBox}

func (sc *styleComputer) computeBackground(s *Style) {
	s.BackgroundColor = sc.color("background-color", backend.Transparent).Resolve(s.Color)

	if v, base := sc.get("background-image"); v != "" && utils.AsciiLower(v) != "none" {
		for _, layer := range css.SplitCommas(v) {
			if utils.AsciiLower(layer) == "none" {
				continue
			}
			if u, ok := css.ParseURL(layer); ok {
				s.BackgroundImages = append(s.BackgroundImages, BackgroundImage{URL: u, BaseURL: base})
			} else if g, ok := css.ParseGradient(layer); ok {
				s.BackgroundImages = append(s.BackgroundImages, BackgroundImage{Gradient: &g})
			} else {
				sc.warn("background-image", layer)
			}
		}
	}
	if r := sc.keyword("background-repeat"); r != "" {
		if v, ok := repeatValues[strings.Join(strings.Fields(r), " ")]; ok {
			s.BackgroundRepeat = v
		} else {
			sc.warn("background-repeat", r)
		}
	}
	switch a := sc.keyword("background-attachment"); a {
	case "", "scroll":
	case "fixed":
		s.BackgroundAttachment = backend.AttachmentFixed
	case "local":
		s.BackgroundAttachment = backend.AttachmentLocal
	default:
		sc.warn("background-attachment", a)
	}
	s.BackgroundClip, s.BackgroundOrigin = BorderBox, PaddingBox
	if c := sc.keyword("background-clip"); c != "" {
		if v, ok := boxAreas[c]; ok {
			s.BackgroundClip = v
		} else {
			sc.warn("background-clip", c)
		}
	}
	if o := sc.keyword("background-origin"); o != "" {
		if v, ok := boxAreas[o]; ok {
			s.BackgroundOrigin = v
		} else {
			sc.warn("background-origin", o)
		}
	}
	s.BackgroundPosition = [2]css.Length{css.Percent(0), css.Percent(0)}
	if p := sc.keyword("background-position"); p != "" {
		if v, ok := parseBackgroundPosition(p); ok {
			s.BackgroundPosition = v
		} else {
			sc.warn("background-position", p)
		}
	}
	s.BackgroundSize = [2]css.Length{css.Auto, css.Auto}
	if sz := sc.keyword("background-size"); sz == "cover" || sz == "contain" {
		s.BackgroundSize = [2]css.Length{css.Percent(100), css.Percent(100)}
	} else if sz != "" {
		fields := css.SplitFields(sz)
		ok := len(fields) == 1 || len(fields) == 2
		for i := 0; ok && i < len(fields); i++ {
			var l css.Length
			if l, ok = css.ParseLength(fields[i]); ok && !l.IsNone() {
				s.BackgroundSize[i] = l
			}
		}
		if !ok {
			s.BackgroundSize = [2]css.Length{css.Auto, css.Auto}
			sc.warn("background-size", sz)
		}
	}
}

func parseBackgroundPosition(v string) ([2]css.Length, bool) {
	keyword := map[string]css.Length{
		"left": css.Percent(0), "top": css.Percent(0), "center": css.Percent(50),
		"right": css.Percent(100), "bottom": css.Percent(100),
	}
	fields := css.SplitFields(v)
	out := [2]css.Length{css.Percent(50), css.Percent(50)}
	if len(fields) == 0 || len(fields) > 2 {
		return out, false
	}
	for i, f := range fields {
		axis := i
		if l, ok := keyword[f]; ok {
			if f == "top" || f == "bottom" {
				axis = 1
			} else if (f == "left" || f == "right") && i == 1 {
				axis = 0
				out[1] = out[0]
			}
			out[axis] = l
			continue
		}
		l, ok := css.ParseLength(f)
		if !ok || l.IsAuto() || l.IsNone() {
			return out, false
		}
		out[axis] = l
	}
	return out, true
}
