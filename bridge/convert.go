package bridge

import "github.com/benoitkugler/litebridge/backend"

// conversions between the engine values (package backend)
// and the host values (this package)

func toPosition(r backend.Rect) Position {
	return Position{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func fromPosition(p Position) backend.Rect {
	return backend.Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// ToPosition exposes the rectangle conversion to the packages
// building on top of the engine.
func ToPosition(r backend.Rect) Position { return toPosition(r) }

// FromPosition is the inverse of ToPosition.
func FromPosition(p Position) backend.Rect { return fromPosition(p) }

func toPoint(p backend.Point) Point { return Point{X: p.X, Y: p.Y} }

func fromSize(s Size) backend.Size { return backend.Size{Width: s.Width, Height: s.Height} }

func toColor(c backend.WebColor) Color {
	return Color{R: c.R, G: c.G, B: c.B, A: c.A, IsCurrentColor: c.IsCurrentColor}
}

func toRadii(r backend.BorderRadii) BorderRadii {
	return BorderRadii{
		TopLeftX: r.TopLeftX, TopLeftY: r.TopLeftY,
		TopRightX: r.TopRightX, TopRightY: r.TopRightY,
		BottomRightX: r.BottomRightX, BottomRightY: r.BottomRightY,
		BottomLeftX: r.BottomLeftX, BottomLeftY: r.BottomLeftY,
	}
}

func toBorder(b backend.Border) Border {
	return Border{Width: b.Width, Style: BorderStyleFromInt(int(b.Style)), Color: toColor(b.Color)}
}

func toBorders(b backend.Borders) Borders {
	return Borders{
		Left:   toBorder(b.Left),
		Top:    toBorder(b.Top),
		Right:  toBorder(b.Right),
		Bottom: toBorder(b.Bottom),
		Radius: toRadii(b.Radius),
	}
}

func fromMetrics(m FontMetrics) backend.FontMetrics {
	return backend.FontMetrics{
		FontSize: m.FontSize, Height: m.Height, Ascent: m.Ascent, Descent: m.Descent,
		XHeight: m.XHeight, ChWidth: m.ChWidth, DrawSpaces: m.DrawSpaces,
		SubShift: m.SubShift, SuperShift: m.SuperShift,
	}
}

func toThickness(t backend.DecorationThickness) DecorationThickness {
	switch {
	case !t.Predefined:
		return DecorationThickness{Kind: ThicknessLength, Length: t.Length}
	case t.FromFont:
		return DecorationThickness{Kind: ThicknessFromFont}
	default:
		return DecorationThickness{Kind: ThicknessAuto}
	}
}

func toFontDescription(d backend.FontDescription) FontDescription {
	return FontDescription{
		Family:              d.Family,
		Size:                d.Size,
		Style:               FontStyle(d.Style),
		Weight:              d.Weight,
		DecorationLine:      DecorationLine(d.DecorationLine),
		DecorationThickness: toThickness(d.DecorationThickness),
		DecorationStyle:     TextDecorationStyle(d.DecorationStyle),
		DecorationColor:     toColor(d.DecorationColor),
		EmphasisStyle:       d.EmphasisStyle,
		EmphasisColor:       toColor(d.EmphasisColor),
		EmphasisPosition:    d.EmphasisPosition,
	}
}

func toLayer(l backend.BackgroundLayer) BackgroundLayer {
	return BackgroundLayer{
		BorderBox:    toPosition(l.BorderBox),
		ClipBox:      toPosition(l.ClipBox),
		OriginBox:    toPosition(l.OriginBox),
		BorderRadius: toRadii(l.BorderRadius),
		Attachment:   BackgroundAttachment(l.Attachment),
		Repeat:       BackgroundRepeat(l.Repeat),
		IsRoot:       l.IsRoot,
	}
}

func toStops(points []backend.ColorPoint) []ColorStop {
	out := make([]ColorStop, len(points))
	for i, p := range points {
		out[i] = ColorStop{Offset: p.Offset, Color: toColor(p.Color)}
	}
	return out
}

func toLinear(g backend.LinearGradient) LinearGradient {
	return LinearGradient{
		Start:            toPoint(g.Start),
		End:              toPoint(g.End),
		Stops:            toStops(g.ColorPoints),
		ColorSpace:       ColorSpaceFromInt(int(g.ColorSpace)),
		HueInterpolation: HueInterpolation(g.HueInterpolation),
	}
}

func toRadial(g backend.RadialGradient) RadialGradient {
	return RadialGradient{
		Position:         toPoint(g.Position),
		Radius:           toPoint(g.Radius),
		Stops:            toStops(g.ColorPoints),
		ColorSpace:       ColorSpaceFromInt(int(g.ColorSpace)),
		HueInterpolation: HueInterpolation(g.HueInterpolation),
	}
}

func toConic(g backend.ConicGradient) ConicGradient {
	return ConicGradient{
		Position:         toPoint(g.Position),
		Angle:            g.Angle,
		Radius:           g.Radius,
		Stops:            toStops(g.ColorPoints),
		ColorSpace:       ColorSpaceFromInt(int(g.ColorSpace)),
		HueInterpolation: HueInterpolation(g.HueInterpolation),
	}
}

func toListMarker(m backend.ListMarker) ListMarker {
	return ListMarker{
		Image:   m.Image,
		BaseURL: m.BaseURL,
		Kind:    MarkerKind(m.Kind),
		Color:   toColor(m.Color),
		Pos:     toPosition(m.Pos),
		Index:   m.Index,
		Font:    FontHandle(m.Font),
	}
}

func fromMediaFeatures(m MediaFeatures) backend.MediaFeatures {
	return backend.MediaFeatures{
		Type:         backend.MediaType(MediaTypeFromInt(int(m.Type))),
		Width:        m.Width,
		Height:       m.Height,
		DeviceWidth:  m.DeviceWidth,
		DeviceHeight: m.DeviceHeight,
		Color:        m.Color,
		ColorIndex:   m.ColorIndex,
		Monochrome:   m.Monochrome,
		Resolution:   m.Resolution,
	}
}

// Label returns the counter text of an ordinal kind, or an empty string.
func (m MarkerKind) Label(index int) string { return backend.ListStyleType(m).Label(index) }
