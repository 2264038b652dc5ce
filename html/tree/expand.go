package tree

import (
	"strings"

	"github.com/benoitkugler/litebridge/css"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
)

type expander func(name string, fields []string) ([]css.Declaration, bool)

var expanders map[string]expander

func init() {
	expanders = map[string]expander{
		"margin":                expandFourSides("margin-%s"),
		"padding":               expandFourSides("padding-%s"),
		"inset":                 expandFourSides("%s"),
		"border-width":          expandFourSides("border-%s-width"),
		"border-style":          expandFourSides("border-%s-style"),
		"border-color":          expandFourSides("border-%s-color"),
		"border-top":            expandBorderSide("top"),
		"border-right":          expandBorderSide("right"),
		"border-bottom":         expandBorderSide("bottom"),
		"border-left":           expandBorderSide("left"),
		"border":                expandBorder,
		"border-radius":         expandBorderRadius,
		"background":            expandBackground,
		"list-style":            expandListStyle,
		"text-decoration":       expandTextDecoration,
		"font":                  expandFont,
		"overflow":              expandOverflow,
		"text-emphasis":         expandTextEmphasis,
		"-webkit-text-emphasis": expandTextEmphasis,
		"-webkit-border-radius": expandBorderRadius,
		"-moz-border-radius":    expandBorderRadius,
	}
}

// longhands returns the properties set by the shorthand `name`,
// used to apply the CSS-wide keywords.
func longhands(name string) []string {
	exp := expanders[name]
	if exp == nil {
		return nil
	}
	out, _ := exp(name, []string{"initial"})
	names := make([]string, len(out))
	for i, d := range out {
		names[i] = d.Name
	}
	return names
}

var wideKeywords = utils.NewSet("inherit", "initial", "unset", "revert")

// expand splits a shorthand declaration in its longhands.
// Other declarations are returned unchanged. Invalid shorthands are
// ignored with a warning.
func expand(d css.Declaration, element string) []css.Declaration {
	exp := expanders[d.Name]
	if exp == nil {
		return []css.Declaration{d}
	}
	if wideKeywords.Has(utils.AsciiLower(d.Value)) {
		var out []css.Declaration
		for _, name := range longhands(d.Name) {
			out = append(out, css.Declaration{Name: name, Value: d.Value, Important: d.Important})
		}
		return out
	}
	out, ok := exp(d.Name, css.SplitFields(d.Value))
	if !ok {
		logger.WarningLogger.Printf("Ignored `%s: %s` on <%s>, invalid or unsupported value.", d.Name, d.Value, element)
		return nil
	}
	for i := range out {
		out[i].Important = d.Important
	}
	return out
}

func expandFourSides(pattern string) expander {
	return func(_ string, fields []string) ([]css.Declaration, bool) {
		var values [4]string
		switch len(fields) {
		case 1:
			values = [4]string{fields[0], fields[0], fields[0], fields[0]}
		case 2:
			values = [4]string{fields[0], fields[1], fields[0], fields[1]}
		case 3:
			values = [4]string{fields[0], fields[1], fields[2], fields[1]}
		case 4:
			copy(values[:], fields)
		default:
			return nil, false
		}
		out := make([]css.Declaration, 4)
		for i, side := range sides {
			out[i] = css.Declaration{Name: strings.Replace(pattern, "%s", side, 1), Value: values[i]}
		}
		return out, true
	}
}

// splitBorder sorts the components of a border shorthand.
func splitBorder(fields []string) (width, style, color string, ok bool) {
	if len(fields) == 1 && fields[0] == "initial" {
		return "medium", "none", "currentColor", true
	}
	if len(fields) == 0 || len(fields) > 3 {
		return "", "", "", false
	}
	width, style, color = "medium", "none", "currentColor"
	var hasWidth, hasStyle, hasColor bool
	for _, f := range fields {
		lower := utils.AsciiLower(f)
		if _, isStyle := borderStyles[lower]; isStyle && !hasStyle {
			style, hasStyle = lower, true
		} else if _, isKw := borderWidthKeywords[lower]; isKw && !hasWidth {
			width, hasWidth = lower, true
		} else if l, isLength := css.ParseLength(lower); isLength && !l.IsAuto() && !l.IsNone() && !hasWidth {
			width, hasWidth = lower, true
		} else if _, isColor := css.ParseColor(f); isColor && !hasColor {
			color, hasColor = f, true
		} else {
			return "", "", "", false
		}
	}
	return width, style, color, true
}

func expandBorderSide(side string) expander {
	return func(_ string, fields []string) ([]css.Declaration, bool) {
		w, s, c, ok := splitBorder(fields)
		if !ok {
			return nil, false
		}
		return []css.Declaration{
			{Name: "border-" + side + "-width", Value: w},
			{Name: "border-" + side + "-style", Value: s},
			{Name: "border-" + side + "-color", Value: c},
		}, true
	}
}

func expandBorder(_ string, fields []string) ([]css.Declaration, bool) {
	var out []css.Declaration
	for _, side := range sides {
		decls, ok := expandBorderSide(side)("", fields)
		if !ok {
			return nil, false
		}
		out = append(out, decls...)
	}
	return out, true
}

// splitSlash isolates the `/` separators glued to their neighbours,
// as in `5px/10px`. Function calls are kept whole.
func splitSlash(fields []string) []string {
	var out []string
	for _, f := range fields {
		if f == "/" || !strings.Contains(f, "/") || strings.Contains(f, "(") {
			out = append(out, f)
			continue
		}
		for i, part := range strings.Split(f, "/") {
			if i > 0 {
				out = append(out, "/")
			}
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func expandBorderRadius(_ string, fields []string) ([]css.Declaration, bool) {
	fields = splitSlash(fields)
	horizontal, vertical := fields, fields
	for i, f := range fields {
		if f == "/" {
			horizontal, vertical = fields[:i], fields[i+1:]
			break
		}
	}
	corners4 := func(values []string) ([4]string, bool) {
		switch len(values) {
		case 1:
			return [4]string{values[0], values[0], values[0], values[0]}, true
		case 2:
			return [4]string{values[0], values[1], values[0], values[1]}, true
		case 3:
			return [4]string{values[0], values[1], values[2], values[1]}, true
		case 4:
			return [4]string{values[0], values[1], values[2], values[3]}, true
		}
		return [4]string{}, false
	}
	h, okH := corners4(horizontal)
	v, okV := corners4(vertical)
	if !okH || !okV {
		return nil, false
	}
	out := make([]css.Declaration, 4)
	for i, corner := range corners {
		value := h[i]
		if h[i] != v[i] {
			value += " " + v[i]
		}
		out[i] = css.Declaration{Name: "border-" + corner + "-radius", Value: value}
	}
	return out, true
}

var (
	repeatKeywords     = utils.NewSet("repeat", "repeat-x", "repeat-y", "no-repeat", "space", "round")
	attachmentKeywords = utils.NewSet("scroll", "fixed", "local")
	positionKeywords   = utils.NewSet("left", "right", "top", "bottom", "center")
)

func expandBackground(_ string, fields []string) ([]css.Declaration, bool) {
	color, images := "transparent", []string(nil)
	var repeat, attachment, position, size, boxes []string
	if !(len(fields) == 1 && fields[0] == "initial") {
		layers := css.SplitCommas(strings.Join(fields, " "))
		for i, layer := range layers {
			last := i == len(layers)-1
			image := "none"
			afterSlash := false
			for _, f := range css.SplitFields(layer) {
				lower := utils.AsciiLower(f)
				switch {
				case f == "/":
					afterSlash = true
				case afterSlash && len(size) < 2 && isBackgroundSize(lower):
					size = append(size, lower)
				case lower == "none":
				case strings.HasPrefix(lower, "url(") || css.IsGradient(lower):
					image = f
				case repeatKeywords.Has(lower):
					if last {
						repeat = append(repeat, lower)
					}
				case attachmentKeywords.Has(lower):
					if last {
						attachment = append(attachment, lower)
					}
				case lower == "border-box" || lower == "padding-box" || lower == "content-box":
					if last {
						boxes = append(boxes, lower)
					}
				case positionKeywords.Has(lower):
					if last {
						position = append(position, lower)
					}
				default:
					if l, ok := css.ParseLength(lower); ok && !l.IsAuto() && !l.IsNone() {
						if last {
							position = append(position, lower)
						}
					} else if _, ok := css.ParseColor(f); ok && last {
						color = f
					} else {
						return nil, false
					}
				}
			}
			images = append(images, image)
		}
	}
	join := func(values []string, def string) string {
		if len(values) == 0 {
			return def
		}
		return strings.Join(values, " ")
	}
	imageList := "none"
	if len(images) != 0 {
		imageList = strings.Join(images, ", ")
	}
	origin, clip := "padding-box", "border-box"
	if len(boxes) >= 1 {
		origin, clip = boxes[0], boxes[0]
	}
	if len(boxes) >= 2 {
		clip = boxes[1]
	}
	return []css.Declaration{
		{Name: "background-color", Value: color},
		{Name: "background-image", Value: imageList},
		{Name: "background-repeat", Value: join(repeat, "repeat")},
		{Name: "background-attachment", Value: join(attachment, "scroll")},
		{Name: "background-position", Value: join(position, "0% 0%")},
		{Name: "background-size", Value: join(size, "auto")},
		{Name: "background-origin", Value: origin},
		{Name: "background-clip", Value: clip},
	}, true
}

func isBackgroundSize(s string) bool {
	if s == "cover" || s == "contain" || s == "auto" {
		return true
	}
	l, ok := css.ParseLength(s)
	return ok && !l.IsNone()
}

func expandListStyle(_ string, fields []string) ([]css.Declaration, bool) {
	typ, position, image := "disc", "outside", "none"
	if !(len(fields) == 1 && fields[0] == "initial") {
		for _, f := range fields {
			lower := utils.AsciiLower(f)
			switch {
			case lower == "inside" || lower == "outside":
				position = lower
			case strings.HasPrefix(lower, "url("):
				image = f
			case lower == "none":
				typ = "none"
			default:
				if _, ok := listStyleTypes[lower]; !ok {
					return nil, false
				}
				typ = lower
			}
		}
	}
	return []css.Declaration{
		{Name: "list-style-type", Value: typ},
		{Name: "list-style-position", Value: position},
		{Name: "list-style-image", Value: image},
	}, true
}

var decorationLines = utils.NewSet("none", "underline", "overline", "line-through", "blink")

func expandTextDecoration(_ string, fields []string) ([]css.Declaration, bool) {
	var lines []string
	style, color, thickness := "solid", "currentColor", "auto"
	if !(len(fields) == 1 && fields[0] == "initial") {
		for _, f := range fields {
			lower := utils.AsciiLower(f)
			switch {
			case decorationLines.Has(lower):
				if lower != "blink" {
					lines = append(lines, lower)
				}
			case lower == "solid" || lower == "double" || lower == "dotted" || lower == "dashed" || lower == "wavy":
				style = lower
			case lower == "from-font" || lower == "auto":
				thickness = lower
			default:
				if l, ok := css.ParseLength(lower); ok && !l.IsNone() {
					thickness = lower
				} else if _, ok := css.ParseColor(f); ok {
					color = f
				} else {
					return nil, false
				}
			}
		}
	}
	line := "none"
	if len(lines) != 0 {
		line = strings.Join(lines, " ")
	}
	return []css.Declaration{
		{Name: "text-decoration-line", Value: line},
		{Name: "text-decoration-style", Value: style},
		{Name: "text-decoration-color", Value: color},
		{Name: "text-decoration-thickness", Value: thickness},
	}, true
}

func expandTextEmphasis(_ string, fields []string) ([]css.Declaration, bool) {
	var style []string
	color := "currentColor"
	if !(len(fields) == 1 && fields[0] == "initial") {
		for _, f := range fields {
			if _, ok := css.ParseColor(f); ok && !strings.HasPrefix(f, `"`) {
				color = f
			} else {
				style = append(style, f)
			}
		}
	}
	s := "none"
	if len(style) != 0 {
		s = strings.Join(style, " ")
	}
	return []css.Declaration{
		{Name: "text-emphasis-style", Value: s},
		{Name: "text-emphasis-color", Value: color},
	}, true
}

func expandOverflow(_ string, fields []string) ([]css.Declaration, bool) {
	if len(fields) == 0 || len(fields) > 2 {
		return nil, false
	}
	return []css.Declaration{{Name: "overflow", Value: fields[0]}}, true
}

var (
	fontStyles   = utils.NewSet("italic", "oblique")
	fontWeights  = utils.NewSet("bold", "bolder", "lighter", "100", "200", "300", "400", "500", "600", "700", "800", "900")
	fontVariants = utils.NewSet("small-caps")
	fontStretch  = utils.NewSet("condensed", "expanded", "semi-condensed", "semi-expanded",
		"extra-condensed", "extra-expanded", "ultra-condensed", "ultra-expanded")
	systemFonts = utils.NewSet("caption", "icon", "menu", "message-box", "small-caption", "status-bar")
)

func expandFont(_ string, fields []string) ([]css.Declaration, bool) {
	style, weight, size, lineHeight, family := "normal", "normal", "medium", "normal", ""
	if len(fields) == 1 && systemFonts.Has(utils.AsciiLower(fields[0])) {
		// system fonts are resolved by the host default font
		fields = []string{"initial"}
	}
	if !(len(fields) == 1 && fields[0] == "initial") {
		i := 0
	prefix:
		for ; i < len(fields); i++ {
			lower := utils.AsciiLower(fields[i])
			switch {
			case lower == "normal", fontVariants.Has(lower), fontStretch.Has(lower):
			case fontStyles.Has(lower):
				style = lower
			case fontWeights.Has(lower):
				weight = lower
			default:
				break prefix
			}
		}
		if i == len(fields) {
			return nil, false
		}
		sizeAndLine := fields[i]
		if before, after, found := strings.Cut(sizeAndLine, "/"); found {
			size, lineHeight = before, after
			if lineHeight == "" && i+1 < len(fields) {
				i++
				lineHeight = fields[i]
			}
		} else {
			size = sizeAndLine
			if i+1 < len(fields) && strings.HasPrefix(fields[i+1], "/") {
				i++
				lineHeight = strings.TrimPrefix(fields[i], "/")
				if lineHeight == "" && i+1 < len(fields) {
					i++
					lineHeight = fields[i]
				}
			}
		}
		if _, ok := fontSizeKeywords[utils.AsciiLower(size)]; !ok {
			if l, ok := css.ParseLength(size); !ok || l.IsAuto() || l.IsNone() {
				return nil, false
			}
		}
		family = strings.Join(fields[i+1:], " ")
		if family == "" {
			return nil, false
		}
	}
	out := []css.Declaration{
		{Name: "font-style", Value: style},
		{Name: "font-weight", Value: weight},
		{Name: "font-size", Value: size},
		{Name: "line-height", Value: lineHeight},
	}
	if family != "" {
		out = append(out, css.Declaration{Name: "font-family", Value: family})
	}
	return out, true
}
