// Package pixbuf is a complete host for the bridge: it draws documents
// into an in-memory RGBA image, with the Go fonts for text.
//
// A Canvas is not safe for concurrent use. The Surface given to the
// drawing slots is ignored: a Canvas always draws into its own image.
package pixbuf

import (
	"context"
	"image"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/benoitkugler/litebridge/images"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/litebridge/loop"
	"github.com/benoitkugler/litebridge/utils"
	tl "github.com/benoitkugler/textlayout/language"
	"github.com/fogleman/gg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canvas draws into an *image.RGBA.
type Canvas struct {
	img *image.RGBA
	dc  *gg.Context

	fonts    map[bridge.FontHandle]*fontData
	nextFont bridge.FontHandle

	store   *images.Store
	fetcher loop.Fetcher

	// active SetClip regions, innermost last
	clips []clipRegion

	lang     tl.Language
	tag      language.Tag
	fontSize bridge.Fl

	caption, baseURL, cursor string
	links                    [][2]string
	onClick                  func(url string)
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithStore uses `store` for image sizes and pixels, instead of a
// private one.
func WithStore(store *images.Store) Option {
	return func(c *Canvas) { c.store = store }
}

// WithFetcher enables @import and <link rel="stylesheet">, which are
// otherwise empty.
func WithFetcher(f loop.Fetcher) Option {
	return func(c *Canvas) { c.fetcher = f }
}

// WithLanguage sets the language used by text-transform, as a BCP 47 tag.
func WithLanguage(lang string) Option {
	return func(c *Canvas) { c.setLanguage(lang) }
}

// WithDefaultFontSize overrides the 16px default.
func WithDefaultFontSize(size bridge.Fl) Option {
	return func(c *Canvas) {
		if size > 0 {
			c.fontSize = size
		}
	}
}

// OnAnchorClick registers the function called when a link is clicked.
func OnAnchorClick(fn func(url string)) Option {
	return func(c *Canvas) { c.onClick = fn }
}

// New returns a transparent canvas of the given size, in pixels.
// Sizes are clamped to at least one pixel.
func New(width, height int, opts ...Option) *Canvas {
	c := &Canvas{
		fonts:    make(map[bridge.FontHandle]*fontData),
		fontSize: bridge.DefaultFontSize,
		cursor:   "auto",
	}
	c.setLanguage(bridge.DefaultLanguage)
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = images.NewStore()
	}
	c.Resize(width, height)
	return c
}

func (c *Canvas) setLanguage(lang string) {
	c.lang = tl.NewLanguage(lang)
	tag, err := language.Parse(string(c.lang))
	if err != nil {
		logger.WarningLogger.Printf("Unsupported language %q: %s", lang, err)
		tag = language.English
	}
	c.tag = tag
}

// Resize replaces the image by a transparent one of the new size.
// Clip regions are discarded.
func (c *Canvas) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
	c.dc = gg.NewContextForRGBA(c.img)
	c.clips = nil
}

// Image returns the drawn image. It is shared with the canvas until the
// next Resize.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Store returns the image store used by the canvas.
func (c *Canvas) Store() *images.Store { return c.store }

func (c *Canvas) Caption() string { return c.caption }

func (c *Canvas) BaseURL() string { return c.baseURL }

func (c *Canvas) Cursor() string { return c.cursor }

// Links returns the (rel, href) pairs of the <link> elements.
func (c *Canvas) Links() [][2]string { return c.links }

func (c *Canvas) viewport() bridge.Position {
	b := c.img.Bounds()
	return bridge.Position{Width: bridge.Fl(b.Dx()), Height: bridge.Fl(b.Dy())}
}

func (c *Canvas) mediaFeatures() bridge.MediaFeatures {
	vp := c.viewport()
	return bridge.MediaFeatures{
		Type:         bridge.MediaScreen,
		Width:        vp.Width,
		Height:       vp.Height,
		DeviceWidth:  vp.Width,
		DeviceHeight: vp.Height,
		Color:        8,
		Resolution:   96,
	}
}

func (c *Canvas) transformText(text string, tt bridge.TextTransform) string {
	switch tt {
	case bridge.TransformUppercase:
		return cases.Upper(c.tag).String(text)
	case bridge.TransformLowercase:
		return cases.Lower(c.tag).String(text)
	case bridge.TransformCapitalize:
		return cases.Title(c.tag, cases.NoLower).String(text)
	default:
		return text
	}
}

func (c *Canvas) importCSS(url, baseURL string) (string, string) {
	if c.fetcher == nil {
		return "", ""
	}
	abs := utils.ResolveURL(baseURL, url)
	data, err := c.fetcher.Fetch(context.Background(), abs)
	if err != nil {
		logger.WarningLogger.Printf("Failed to load stylesheet at %q: %s", abs, err)
		return "", ""
	}
	return string(data), abs
}

// clipRegion is a rectangle with rounded corners.
type clipRegion struct {
	pos    bridge.Position
	radius bridge.BorderRadii
}

func (c *Canvas) setClip(pos bridge.Position, radius bridge.BorderRadii) {
	c.clips = append(c.clips, clipRegion{pos, radius})
	roundedRect(c.dc, pos, radius)
	c.dc.Clip()
}

func (c *Canvas) delClip() {
	if len(c.clips) == 0 {
		return
	}
	c.clips = c.clips[:len(c.clips)-1]
	c.restoreClips()
}

// restoreClips rebuilds the mask from the active regions.
// gg keeps the mask across Pop, so it is never saved with Push.
func (c *Canvas) restoreClips() {
	c.dc.ResetClip()
	for _, r := range c.clips {
		roundedRect(c.dc, r.pos, r.radius)
		c.dc.Clip()
	}
}

// Table returns the capability table of the canvas. Every slot is set.
func (c *Canvas) Table() *bridge.Table {
	return &bridge.Table{
		CreateFont: c.createFont,
		DeleteFont: c.deleteFont,
		TextWidth:  c.textWidth,
		DrawText: func(_ bridge.Surface, text string, font bridge.FontHandle, color bridge.Color, pos bridge.Position) {
			c.drawText(text, font, color, pos)
		},
		PtToPx:          func(pt bridge.Fl) bridge.Fl { return pt * 96 / 72 },
		DefaultFontSize: func() bridge.Fl { return c.fontSize },
		DefaultFontName: func() string { return bridge.DefaultFontName },
		DrawListMarker:  func(_ bridge.Surface, m bridge.ListMarker) { c.drawListMarker(m) },
		// images are fetched by the render loop
		LoadImage:    func(string, string, bool) {},
		GetImageSize: c.store.Size,
		DrawImage: func(_ bridge.Surface, layer bridge.BackgroundLayer, url, baseURL string) {
			c.drawImage(layer, url, baseURL)
		},
		DrawSolidFill: func(_ bridge.Surface, layer bridge.BackgroundLayer, color bridge.Color) {
			c.drawSolidFill(layer, color)
		},
		DrawLinearGradient: func(_ bridge.Surface, layer bridge.BackgroundLayer, g bridge.LinearGradient) {
			c.fillLayer(layer, newLinearPattern(g))
		},
		DrawRadialGradient: func(_ bridge.Surface, layer bridge.BackgroundLayer, g bridge.RadialGradient) {
			c.fillLayer(layer, newRadialPattern(g))
		},
		DrawConicGradient: func(_ bridge.Surface, layer bridge.BackgroundLayer, g bridge.ConicGradient) {
			c.fillLayer(layer, newConicPattern(g))
		},
		DrawBorders: func(_ bridge.Surface, borders bridge.Borders, pos bridge.Position, _ bool) {
			c.drawBorders(borders, pos)
		},
		SetCaption: func(caption string) { c.caption = caption },
		SetBaseURL: func(baseURL string) { c.baseURL = baseURL },
		Link:       func(rel, href string) { c.links = append(c.links, [2]string{rel, href}) },
		OnAnchorClick: func(url string) {
			if c.onClick != nil {
				c.onClick(url)
			}
		},
		OnMouseEvent:     func(bridge.MouseEvent) {},
		SetCursor:        func(cursor string) { c.cursor = cursor },
		TransformText:    c.transformText,
		ImportCSS:        c.importCSS,
		SetClip:          c.setClip,
		DelClip:          c.delClip,
		GetViewport:      c.viewport,
		GetMediaFeatures: c.mediaFeatures,
		GetLanguage:      func() (string, string) { return string(c.lang), "" },
	}
}
