// Package bridge adapts a Table of optional host callbacks to the
// backend.Container interface required by the layout engine.
//
// Each engine request is translated to the host value types, forwarded to the
// corresponding slot when it is set, and the result is translated back.
// Missing slots fall back to documented defaults; the bridge never reports
// an error of its own, and a panicking host callback is logged and
// replaced by the default result.
package bridge

import (
	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/logger"
	"github.com/benoitkugler/textlayout/language"
)

var _ backend.Container = (*Bridge)(nil)

// Bridge implements backend.Container on top of a Table.
type Bridge struct {
	table  *Table
	closed bool

	// cached since the engine asks for it on every font resolution
	defaultFontName string
}

// New returns a bridge forwarding to `table`, or nil if `table` is nil.
func New(table *Table) *Bridge {
	if table == nil {
		return nil
	}
	return &Bridge{table: table}
}

// Close releases the bridge: the host is never called again.
// Engine requests made afterwards are answered with the defaults
// and reported as a lifecycle error.
func (b *Bridge) Close() { b.closed = true }

// Closed returns true after Close.
func (b *Bridge) Closed() bool { return b.closed }

// live returns the table, or nil (with a warning) if the bridge is released.
func (b *Bridge) live(slot string) *Table {
	if b.closed {
		logger.WarningLogger.Printf("%s requested on a released bridge: ignored", slot)
		return nil
	}
	return b.table
}

// guard must be deferred around each host call.
func (b *Bridge) guard(slot string) {
	if r := recover(); r != nil {
		logger.WarningLogger.Printf("host callback %s failed: %v", slot, r)
	}
}

func (b *Bridge) CreateFont(descr backend.FontDescription) (font backend.FontHandle, metrics backend.FontMetrics) {
	t := b.live("CreateFont")
	if t == nil || t.CreateFont == nil {
		return 0, backend.FontMetrics{}
	}
	defer b.guard("CreateFont")
	h, fm := t.CreateFont(toFontDescription(descr))
	return backend.FontHandle(h), fromMetrics(fm)
}

func (b *Bridge) DeleteFont(font backend.FontHandle) {
	t := b.live("DeleteFont")
	if t == nil || t.DeleteFont == nil {
		return
	}
	defer b.guard("DeleteFont")
	t.DeleteFont(FontHandle(font))
}

func (b *Bridge) TextWidth(text string, font backend.FontHandle) (width backend.Fl) {
	t := b.live("TextWidth")
	if t == nil || t.TextWidth == nil {
		return 0
	}
	defer b.guard("TextWidth")
	return t.TextWidth(text, FontHandle(font))
}

func (b *Bridge) DrawText(s backend.Surface, text string, font backend.FontHandle, color backend.WebColor, pos backend.Rect) {
	t := b.live("DrawText")
	if t == nil || t.DrawText == nil {
		return
	}
	defer b.guard("DrawText")
	t.DrawText(s, text, FontHandle(font), toColor(color), toPosition(pos))
}

func (b *Bridge) PtToPx(pt backend.Fl) (px backend.Fl) {
	px = pt
	t := b.live("PtToPx")
	if t == nil || t.PtToPx == nil {
		return px
	}
	defer b.guard("PtToPx")
	px = t.PtToPx(pt)
	return px
}

func (b *Bridge) DefaultFontSize() (size backend.Fl) {
	size = DefaultFontSize
	t := b.live("DefaultFontSize")
	if t == nil || t.DefaultFontSize == nil {
		return size
	}
	defer b.guard("DefaultFontSize")
	size = t.DefaultFontSize()
	return size
}

func (b *Bridge) DefaultFontName() string {
	if b.defaultFontName != "" {
		return b.defaultFontName
	}
	name := DefaultFontName
	if t := b.live("DefaultFontName"); t != nil && t.DefaultFontName != nil {
		func() {
			defer b.guard("DefaultFontName")
			if n := t.DefaultFontName(); n != "" {
				name = n
			}
		}()
	}
	b.defaultFontName = name
	return name
}

func (b *Bridge) DrawListMarker(s backend.Surface, marker backend.ListMarker) {
	t := b.live("DrawListMarker")
	if t == nil || t.DrawListMarker == nil {
		return
	}
	defer b.guard("DrawListMarker")
	t.DrawListMarker(s, toListMarker(marker))
}

func (b *Bridge) LoadImage(src, baseURL string, redrawOnReady bool) {
	t := b.live("LoadImage")
	if t == nil || t.LoadImage == nil {
		return
	}
	defer b.guard("LoadImage")
	t.LoadImage(src, baseURL, redrawOnReady)
}

func (b *Bridge) GetImageSize(src, baseURL string) (size backend.Size) {
	t := b.live("GetImageSize")
	if t == nil || t.GetImageSize == nil {
		return backend.Size{}
	}
	defer b.guard("GetImageSize")
	return fromSize(t.GetImageSize(src, baseURL))
}

func (b *Bridge) DrawImage(s backend.Surface, layer backend.BackgroundLayer, url, baseURL string) {
	t := b.live("DrawImage")
	if t == nil || t.DrawImage == nil {
		return
	}
	defer b.guard("DrawImage")
	t.DrawImage(s, toLayer(layer), url, baseURL)
}

func (b *Bridge) DrawSolidFill(s backend.Surface, layer backend.BackgroundLayer, color backend.WebColor) {
	t := b.live("DrawSolidFill")
	if t == nil || t.DrawSolidFill == nil {
		return
	}
	defer b.guard("DrawSolidFill")
	t.DrawSolidFill(s, toLayer(layer), toColor(color))
}

func (b *Bridge) DrawLinearGradient(s backend.Surface, layer backend.BackgroundLayer, gradient backend.LinearGradient) {
	t := b.live("DrawLinearGradient")
	if t == nil || t.DrawLinearGradient == nil {
		return
	}
	defer b.guard("DrawLinearGradient")
	t.DrawLinearGradient(s, toLayer(layer), toLinear(gradient))
}

func (b *Bridge) DrawRadialGradient(s backend.Surface, layer backend.BackgroundLayer, gradient backend.RadialGradient) {
	t := b.live("DrawRadialGradient")
	if t == nil || t.DrawRadialGradient == nil {
		return
	}
	defer b.guard("DrawRadialGradient")
	t.DrawRadialGradient(s, toLayer(layer), toRadial(gradient))
}

func (b *Bridge) DrawConicGradient(s backend.Surface, layer backend.BackgroundLayer, gradient backend.ConicGradient) {
	t := b.live("DrawConicGradient")
	if t == nil || t.DrawConicGradient == nil {
		return
	}
	defer b.guard("DrawConicGradient")
	t.DrawConicGradient(s, toLayer(layer), toConic(gradient))
}

func (b *Bridge) DrawBorders(s backend.Surface, borders backend.Borders, pos backend.Rect, root bool) {
	t := b.live("DrawBorders")
	if t == nil || t.DrawBorders == nil {
		return
	}
	defer b.guard("DrawBorders")
	t.DrawBorders(s, toBorders(borders), toPosition(pos), root)
}

func (b *Bridge) SetCaption(caption string) {
	t := b.live("SetCaption")
	if t == nil || t.SetCaption == nil {
		return
	}
	defer b.guard("SetCaption")
	t.SetCaption(caption)
}

func (b *Bridge) SetBaseURL(baseURL string) {
	t := b.live("SetBaseURL")
	if t == nil || t.SetBaseURL == nil {
		return
	}
	defer b.guard("SetBaseURL")
	t.SetBaseURL(baseURL)
}

func (b *Bridge) Link(rel, href string) {
	t := b.live("Link")
	if t == nil || t.Link == nil {
		return
	}
	defer b.guard("Link")
	t.Link(rel, href)
}

func (b *Bridge) OnAnchorClick(url string) {
	t := b.live("OnAnchorClick")
	if t == nil || t.OnAnchorClick == nil {
		return
	}
	defer b.guard("OnAnchorClick")
	t.OnAnchorClick(url)
}

func (b *Bridge) OnMouseEvent(event backend.MouseEvent) {
	t := b.live("OnMouseEvent")
	if t == nil || t.OnMouseEvent == nil {
		return
	}
	defer b.guard("OnMouseEvent")
	t.OnMouseEvent(MouseEvent(event))
}

func (b *Bridge) SetCursor(cursor string) {
	t := b.live("SetCursor")
	if t == nil || t.SetCursor == nil {
		return
	}
	defer b.guard("SetCursor")
	t.SetCursor(cursor)
}

func (b *Bridge) TransformText(text string, tt backend.TextTransform) (out string) {
	out = text
	t := b.live("TransformText")
	if t == nil || t.TransformText == nil || tt == backend.TextTransformNone {
		return out
	}
	defer b.guard("TransformText")
	out = t.TransformText(text, TextTransform(tt))
	return out
}

func (b *Bridge) ImportCSS(url, baseURL string) (css string, newBaseURL string) {
	newBaseURL = baseURL
	t := b.live("ImportCSS")
	if t == nil || t.ImportCSS == nil {
		return "", newBaseURL
	}
	defer b.guard("ImportCSS")
	var resolved string
	css, resolved = t.ImportCSS(url, baseURL)
	if resolved != "" {
		newBaseURL = resolved
	}
	return css, newBaseURL
}

func (b *Bridge) SetClip(pos backend.Rect, radius backend.BorderRadii) {
	t := b.live("SetClip")
	if t == nil || t.SetClip == nil {
		return
	}
	defer b.guard("SetClip")
	t.SetClip(toPosition(pos), toRadii(radius))
}

func (b *Bridge) DelClip() {
	t := b.live("DelClip")
	if t == nil || t.DelClip == nil {
		return
	}
	defer b.guard("DelClip")
	t.DelClip()
}

func (b *Bridge) GetViewport() (viewport backend.Rect) {
	t := b.live("GetViewport")
	if t == nil || t.GetViewport == nil {
		return backend.Rect{}
	}
	defer b.guard("GetViewport")
	return fromPosition(t.GetViewport())
}

// GetMediaFeatures falls back to a screen matching the viewport.
func (b *Bridge) GetMediaFeatures() (media backend.MediaFeatures) {
	t := b.live("GetMediaFeatures")
	if t == nil {
		return defaultMediaFeatures(backend.Rect{})
	}
	if t.GetMediaFeatures == nil {
		return defaultMediaFeatures(b.GetViewport())
	}
	media = defaultMediaFeatures(backend.Rect{})
	defer b.guard("GetMediaFeatures")
	media = fromMediaFeatures(t.GetMediaFeatures())
	return media
}

func defaultMediaFeatures(viewport backend.Rect) backend.MediaFeatures {
	return backend.MediaFeatures{
		Type:         backend.MediaScreen,
		Width:        viewport.Width,
		Height:       viewport.Height,
		DeviceWidth:  viewport.Width,
		DeviceHeight: viewport.Height,
		Color:        8,
		Resolution:   96,
	}
}

// GetLanguage returns the canonical form of the host language tags.
func (b *Bridge) GetLanguage() (lang, culture string) {
	lang = DefaultLanguage
	t := b.live("GetLanguage")
	if t == nil || t.GetLanguage == nil {
		return lang, culture
	}
	defer b.guard("GetLanguage")
	l, c := t.GetLanguage()
	if l != "" {
		lang = string(language.NewLanguage(l))
	}
	if c != "" {
		culture = string(language.NewLanguage(c))
	}
	return lang, culture
}
