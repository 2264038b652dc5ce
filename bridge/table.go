package bridge

// Table is the set of operations a host provides to the layout engine.
//
// Every field is optional: a nil slot is never called, and the
// documented default is used instead. The table must not be modified
// while a document using it is alive.
type Table struct {
	// CreateFont returns a handle for the description, and its metrics.
	// Default: handle 0 and zero metrics, which the engine replaces by
	// metrics derived from the font size.
	CreateFont func(descr FontDescription) (FontHandle, FontMetrics)
	// DeleteFont is called once per handle returned by CreateFont,
	// after its last use and before the document is released.
	DeleteFont func(font FontHandle)
	// TextWidth defaults to 0.
	TextWidth func(text string, font FontHandle) Fl
	DrawText  func(s Surface, text string, font FontHandle, color Color, pos Position)
	// PtToPx defaults to the identity.
	PtToPx func(pt Fl) Fl
	// DefaultFontSize defaults to 16.
	DefaultFontSize func() Fl
	// DefaultFontName defaults to "serif".
	DefaultFontName func() string
	DrawListMarker  func(s Surface, marker ListMarker)

	// LoadImage notifies the host that an image is needed. It must not block:
	// the data is provided later, between two layout passes.
	LoadImage func(src, baseURL string, redrawOnly bool)
	// GetImageSize returns a zero size until the image data is available (default).
	GetImageSize func(src, baseURL string) Size

	DrawImage          func(s Surface, layer BackgroundLayer, url, baseURL string)
	DrawSolidFill      func(s Surface, layer BackgroundLayer, color Color)
	DrawLinearGradient func(s Surface, layer BackgroundLayer, gradient LinearGradient)
	DrawRadialGradient func(s Surface, layer BackgroundLayer, gradient RadialGradient)
	DrawConicGradient  func(s Surface, layer BackgroundLayer, gradient ConicGradient)
	DrawBorders        func(s Surface, borders Borders, pos Position, root bool)

	SetCaption    func(caption string)
	SetBaseURL    func(baseURL string)
	Link          func(rel, href string)
	OnAnchorClick func(url string)
	OnMouseEvent  func(event MouseEvent)
	SetCursor     func(cursor string)

	// TransformText defaults to the identity.
	TransformText func(text string, tt TextTransform) string
	// ImportCSS returns the stylesheet at `url` and the base URL for the relative
	// URLs it contains. Default: an empty stylesheet.
	ImportCSS func(url, baseURL string) (css string, newBaseURL string)

	// SetClip and DelClip come in pairs; nesting is left to the host.
	SetClip func(pos Position, radius BorderRadii)
	DelClip func()

	// GetViewport defaults to a zero rectangle.
	GetViewport func() Position
	// GetMediaFeatures defaults to a color screen of the viewport size, at 96 dpi.
	GetMediaFeatures func() MediaFeatures
	// GetLanguage defaults to ("en", "").
	GetLanguage func() (language, culture string)
}

const (
	DefaultFontSize = 16
	DefaultFontName = "serif"
	DefaultLanguage = "en"
)
