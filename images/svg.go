package images

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/utils"
)

var (
	separators = regexp.MustCompile("[ \n\r\t,]+")

	// pixels per unit
	units = map[string]bridge.Fl{
		"mm": 96 / 25.4,
		"cm": 96 / 2.54,
		"in": 96,
		"pt": 96 / 72.,
		"pc": 16,
		"px": 1,
		"":   1,
	}
)

// default size of a replaced element without intrinsic dimensions
const defaultWidth, defaultHeight = 300, 150

func isSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// Normalize a string corresponding to an array of various values.
func normalize(str string) string {
	str = strings.ReplaceAll(str, "E", "e")
	str = separators.ReplaceAllString(str, " ")
	return strings.TrimSpace(str)
}

// parseLength returns the size in pixels of an absolute length.
// Percentages and relative units are not supported.
func parseLength(s string) (bridge.Fl, bool) {
	s = strings.TrimSpace(utils.AsciiLower(s))
	i := len(s)
	for i > 0 && (s[i-1] < '0' || s[i-1] > '9') && s[i-1] != '.' {
		i--
	}
	factor, ok := units[s[i:]]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:i], 32)
	if err != nil || f < 0 {
		return 0, false
	}
	return bridge.Fl(f) * factor, true
}

// parseViewBox returns the width and height of the viewBox attribute.
func parseViewBox(viewbox string) (w, h bridge.Fl, ok bool) {
	fields := strings.Split(normalize(viewbox), " ")
	if len(fields) != 4 {
		return 0, 0, false
	}
	var values [4]bridge.Fl
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return 0, 0, false
		}
		values[i] = bridge.Fl(f)
	}
	if values[2] <= 0 || values[3] <= 0 {
		return 0, 0, false
	}
	return values[2], values[3], true
}

// svgSize returns the intrinsic size of an SVG document, from the width,
// height and viewBox attributes of its root element.
func svgSize(data []byte) (bridge.Size, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return bridge.Size{}, fmt.Errorf("invalid svg: %w", err)
	}
	root := htmlquery.FindOne(doc, "//*[local-name()='svg']")
	if root == nil {
		return bridge.Size{}, errors.New("invalid svg: missing root element")
	}
	width, hasWidth := parseLength(htmlquery.SelectAttr(root, "width"))
	height, hasHeight := parseLength(htmlquery.SelectAttr(root, "height"))
	if hasWidth && hasHeight {
		return bridge.Size{Width: width, Height: height}, nil
	}
	// the parser restores the case of SVG attributes
	vw, vh, hasRatio := parseViewBox(htmlquery.SelectAttr(root, "viewBox"))
	switch {
	case hasRatio && hasWidth:
		return bridge.Size{Width: width, Height: width * vh / vw}, nil
	case hasRatio && hasHeight:
		return bridge.Size{Width: height * vw / vh, Height: height}, nil
	case hasRatio:
		return bridge.Size{Width: vw, Height: vh}, nil
	case hasWidth:
		return bridge.Size{Width: width, Height: defaultHeight}, nil
	case hasHeight:
		return bridge.Size{Width: defaultWidth, Height: height}, nil
	}
	return bridge.Size{Width: defaultWidth, Height: defaultHeight}, nil
}
