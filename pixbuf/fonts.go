package pixbuf

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/utils"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// variant indexes the embedded Go fonts:
// bit 0 is bold, bit 1 is italic, bit 2 is monospace.
type variant uint8

const (
	bold variant = 1 << iota
	italic
	mono
)

var fontFiles = [8][]byte{
	0:                    goregular.TTF,
	bold:                 gobold.TTF,
	italic:               goitalic.TTF,
	bold | italic:        gobolditalic.TTF,
	mono:                 gomono.TTF,
	mono | bold:          gomonobold.TTF,
	mono | italic:        gomonoitalic.TTF,
	mono | bold | italic: gomonobolditalic.TTF,
}

var (
	parseOnce   sync.Once
	parsedFonts [8]*opentype.Font
	parseErr    error
)

// loadFonts parses the embedded fonts once per process.
func loadFonts() ([8]*opentype.Font, error) {
	parseOnce.Do(func() {
		for i, data := range fontFiles {
			parsedFonts[i], parseErr = opentype.Parse(data)
			if parseErr != nil {
				parseErr = fmt.Errorf("parsing embedded font %d: %w", i, parseErr)
				return
			}
		}
	})
	return parsedFonts, parseErr
}

// variantOf selects the embedded font closest to `descr`.
// Only generic monospace names (and a few well known ones) select the
// fixed pitch family; every other family uses the proportional one.
func variantOf(descr bridge.FontDescription) variant {
	var v variant
	if descr.Weight >= 600 {
		v |= bold
	}
	if descr.Style != bridge.FontNormal {
		v |= italic
	}
	for _, name := range strings.Split(descr.Family, ",") {
		name = utils.AsciiLower(strings.Trim(strings.TrimSpace(name), `"'`))
		switch name {
		case "monospace", "courier", "courier new", "go mono", "ui-monospace":
			return v | mono
		case "serif", "sans-serif", "system-ui", "cursive", "fantasy":
			return v
		}
	}
	return v
}

// fontData is a font created for the layout engine.
type fontData struct {
	descr   bridge.FontDescription
	face    font.Face
	metrics bridge.FontMetrics
}

func toFl(v fixed.Int26_6) bridge.Fl { return bridge.Fl(v) / 64 }

// newFont builds a face of `descr.Size` pixels and its metrics.
func newFont(descr bridge.FontDescription) (*fontData, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	size := descr.Size
	if size <= 0 {
		size = bridge.DefaultFontSize
	}
	// at 72 dpi, points and pixels coincide
	face, err := opentype.NewFace(fonts[variantOf(descr)], &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	m := face.Metrics()
	ascent, descent := toFl(m.Ascent), toFl(m.Descent)
	xHeight := toFl(m.XHeight)
	if xHeight <= 0 {
		xHeight = size / 2
	}
	return &fontData{
		descr: descr,
		face:  face,
		metrics: bridge.FontMetrics{
			FontSize:   size,
			Height:     bridge.Fl(math.Ceil(float64(ascent + descent))),
			Ascent:     ascent,
			Descent:    descent,
			XHeight:    xHeight,
			ChWidth:    toFl(font.MeasureString(face, "0")),
			DrawSpaces: true,
			SubShift:   size * 0.3,
			SuperShift: size * 0.4,
		},
	}, nil
}

func (c *Canvas) createFont(descr bridge.FontDescription) (bridge.FontHandle, bridge.FontMetrics) {
	fd, err := newFont(descr)
	if err != nil {
		logger.WarningLogger.Printf("Failed to create font %q %gpx: %s", descr.Family, descr.Size, err)
		return 0, bridge.FontMetrics{}
	}
	c.nextFont++
	c.fonts[c.nextFont] = fd
	return c.nextFont, fd.metrics
}

func (c *Canvas) deleteFont(handle bridge.FontHandle) {
	fd := c.fonts[handle]
	if fd == nil {
		return
	}
	fd.face.Close()
	delete(c.fonts, handle)
}

// textWidth falls back to 8 pixels per byte for unknown handles.
func (c *Canvas) textWidth(text string, handle bridge.FontHandle) bridge.Fl {
	fd := c.fonts[handle]
	if fd == nil {
		return bridge.Fl(8 * len(text))
	}
	return toFl(font.MeasureString(fd.face, text))
}

// FontCount returns the number of fonts created and not yet deleted.
func (c *Canvas) FontCount() int { return len(c.fonts) }
