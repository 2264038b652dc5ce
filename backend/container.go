package backend

// Surface is the drawing target, defined by the host and
// passed through unchanged to every drawing method.
type Surface = interface{}

// Container is the set of services the engine requires from its host.
// The engine calls it during parsing (ImportCSS, SetCaption, SetBaseURL),
// layout (fonts, text width, image sizes, media features), drawing
// (every Draw method, clipping) and interaction (cursor, mouse, anchors).
//
// Implementations must not call back into the engine from these methods.
type Container interface {
	CreateFont(descr FontDescription) (FontHandle, FontMetrics)
	// DeleteFont is called exactly once per handle returned by CreateFont,
	// after its last use.
	DeleteFont(font FontHandle)
	TextWidth(text string, font FontHandle) Fl
	DrawText(s Surface, text string, font FontHandle, color WebColor, pos Rect)
	PtToPx(pt Fl) Fl
	DefaultFontSize() Fl
	DefaultFontName() string
	DrawListMarker(s Surface, marker ListMarker)

	// LoadImage notifies that `src` is needed. It must not block.
	LoadImage(src, baseURL string, redrawOnReady bool)
	// GetImageSize returns a zero size until the image data is available.
	GetImageSize(src, baseURL string) Size
	DrawImage(s Surface, layer BackgroundLayer, url, baseURL string)
	DrawSolidFill(s Surface, layer BackgroundLayer, color WebColor)
	DrawLinearGradient(s Surface, layer BackgroundLayer, gradient LinearGradient)
	DrawRadialGradient(s Surface, layer BackgroundLayer, gradient RadialGradient)
	DrawConicGradient(s Surface, layer BackgroundLayer, gradient ConicGradient)
	DrawBorders(s Surface, borders Borders, pos Rect, root bool)

	SetCaption(caption string)
	SetBaseURL(baseURL string)
	Link(rel, href string)
	OnAnchorClick(url string)
	OnMouseEvent(event MouseEvent)
	SetCursor(cursor string)

	TransformText(text string, tt TextTransform) string
	// ImportCSS returns the content of the stylesheet at `url`, and the base URL
	// to use for the relative URLs it contains.
	ImportCSS(url, baseURL string) (css string, newBaseURL string)

	SetClip(pos Rect, radius BorderRadii)
	DelClip()

	GetViewport() Rect
	GetMediaFeatures() MediaFeatures
	GetLanguage() (language, culture string)
}
