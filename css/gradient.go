package css

import (
	"math"

	"github.com/benoitkugler/litebridge/backend"
	"github.com/benoitkugler/litebridge/utils"
)

type GradientKind uint8

const (
	LinearGradient GradientKind = iota
	RadialGradient
	ConicGradient
)

// ColorStop is a stop before its position is resolved. For conic gradients,
// angles are stored as percentages of a full turn.
type ColorStop struct {
	Color backend.WebColor
	Pos   *Length // nil when omitted
}

// RadialExtent is the ending shape size keyword of a radial gradient.
type RadialExtent uint8

const (
	FarthestCorner RadialExtent = iota
	ClosestSide
	ClosestCorner
	FarthestSide
	ExplicitSize
)

// Gradient is a parsed gradient image, resolved against a box by
// Linear, Radial and Conic.
type Gradient struct {
	Kind      GradientKind
	Repeating bool

	// linear: the angle in degrees (0 is "to top", clockwise),
	// or, when Corner is true, the horizontal and vertical direction
	Angle        Fl
	Corner       bool
	DirX, DirY   int
	HasDirection bool

	// radial and conic
	Position [2]Length
	// radial
	Circle bool
	Extent RadialExtent
	Size   [2]Length // for ExplicitSize

	Stops      []ColorStop
	ColorSpace backend.ColorSpace
	Hue        backend.HueInterpolation
}

var gradientFunctions = map[string]struct {
	kind      GradientKind
	repeating bool
}{
	"linear-gradient":           {LinearGradient, false},
	"repeating-linear-gradient": {LinearGradient, true},
	"radial-gradient":           {RadialGradient, false},
	"repeating-radial-gradient": {RadialGradient, true},
	"conic-gradient":            {ConicGradient, false},
	"repeating-conic-gradient":  {ConicGradient, true},
	// legacy prefixed name
	"-webkit-linear-gradient": {LinearGradient, false},
}

var colorSpaces = map[string]backend.ColorSpace{
	"srgb": backend.ColorSpaceSRGB, "srgb-linear": backend.ColorSpaceSRGBLinear,
	"display-p3": backend.ColorSpaceDisplayP3, "a98-rgb": backend.ColorSpaceA98RGB,
	"prophoto-rgb": backend.ColorSpaceProphotoRGB, "rec2020": backend.ColorSpaceRec2020,
	"lab": backend.ColorSpaceLab, "oklab": backend.ColorSpaceOklab,
	"xyz": backend.ColorSpaceXYZ, "xyz-d50": backend.ColorSpaceXYZD50, "xyz-d65": backend.ColorSpaceXYZD65,
	"hsl": backend.ColorSpaceHSL, "hwb": backend.ColorSpaceHWB,
	"lch": backend.ColorSpaceLCH, "oklch": backend.ColorSpaceOklch,
}

var hueMethods = map[string]backend.HueInterpolation{
	"shorter": backend.HueShorter, "longer": backend.HueLonger,
	"increasing": backend.HueIncreasing, "decreasing": backend.HueDecreasing,
}

// IsGradient returns true if `s` starts like a gradient function.
func IsGradient(s string) bool {
	name, _, ok := function(s)
	if !ok {
		return false
	}
	_, ok = gradientFunctions[name]
	return ok
}

// ParseGradient parses the gradient functions of CSS Images 4,
// including the `in <colorspace> [<hue> hue]` interpolation hint.
func ParseGradient(s string) (Gradient, bool) {
	name, args, ok := function(s)
	if !ok {
		return Gradient{}, false
	}
	kind, ok := gradientFunctions[name]
	if !ok {
		return Gradient{}, false
	}
	g := Gradient{
		Kind:      kind.kind,
		Repeating: kind.repeating,
		Angle:     180,
		Position:  [2]Length{Percent(50), Percent(50)},
	}
	if kind.kind == ConicGradient {
		g.Angle = 0
	}
	parts := splitTopLevel(args, ',')
	if len(parts) == 0 {
		return Gradient{}, false
	}
	// the first argument is optional: try it as a stop first
	if _, ok := parseStop(parts[0], kind.kind); !ok {
		if !g.parseHeader(parts[0], name == "-webkit-linear-gradient") {
			return Gradient{}, false
		}
		parts = parts[1:]
	}
	for _, p := range parts {
		stop, ok := parseStop(p, kind.kind)
		if !ok {
			return Gradient{}, false
		}
		g.Stops = append(g.Stops, stop...)
	}
	if len(g.Stops) < 2 {
		return Gradient{}, false
	}
	return g, true
}

func (g *Gradient) parseHeader(header string, legacy bool) bool {
	fields := SplitFields(utils.AsciiLower(header))
	// extract the interpolation method
	for i := 0; i < len(fields); i++ {
		if fields[i] != "in" || i+1 >= len(fields) {
			continue
		}
		space, ok := colorSpaces[fields[i+1]]
		if !ok {
			return false
		}
		g.ColorSpace = space
		end := i + 2
		if end+1 < len(fields) && fields[end+1] == "hue" {
			if hue, ok := hueMethods[fields[end]]; ok {
				g.Hue = hue
				end += 2
			}
		}
		fields = append(fields[:i:i], fields[end:]...)
		break
	}
	if len(fields) == 0 {
		return true
	}
	switch g.Kind {
	case LinearGradient:
		return g.parseLinearDirection(fields, legacy)
	case RadialGradient:
		return g.parseRadialShape(fields)
	default:
		return g.parseConicHeader(fields)
	}
}

func (g *Gradient) parseLinearDirection(fields []string, legacy bool) bool {
	if len(fields) == 1 {
		if a, ok := ParseAngle(fields[0]); ok {
			g.Angle, g.HasDirection = a, true
			if legacy {
				g.Angle = 90 - a
			}
			return true
		}
	}
	if !legacy {
		if fields[0] != "to" {
			return false
		}
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return false
	}
	dx, dy := 0, 0
	for _, f := range fields {
		switch f {
		case "left":
			dx = -1
		case "right":
			dx = 1
		case "top":
			dy = -1
		case "bottom":
			dy = 1
		default:
			return false
		}
	}
	if legacy { // -webkit- syntax gives the starting side
		dx, dy = -dx, -dy
	}
	g.HasDirection = true
	g.DirX, g.DirY = dx, dy
	switch {
	case dx != 0 && dy != 0:
		g.Corner = true
	case dy == -1:
		g.Angle = 0
	case dx == 1:
		g.Angle = 90
	case dy == 1:
		g.Angle = 180
	case dx == -1:
		g.Angle = 270
	}
	return true
}

// parsePosition parses the fields following `at`.
func parsePosition(fields []string) ([2]Length, bool) {
	pos := [2]Length{Percent(50), Percent(50)}
	// axis is 0 for horizontal keywords, 1 for vertical ones, 2 for center
	keyword := func(f string) (Length, int, bool) {
		switch f {
		case "left":
			return Percent(0), 0, true
		case "right":
			return Percent(100), 0, true
		case "top":
			return Percent(0), 1, true
		case "bottom":
			return Percent(100), 1, true
		case "center":
			return Percent(50), 2, true
		}
		return Length{}, 0, false
	}
	switch len(fields) {
	case 1:
		if l, axis, ok := keyword(fields[0]); ok {
			if axis != 2 {
				pos[axis] = l
			}
			return pos, true
		}
		l, ok := ParseLength(fields[0])
		if !ok {
			return pos, false
		}
		pos[0] = l
		return pos, true
	case 2:
		for i, f := range fields {
			if l, axis, ok := keyword(f); ok {
				if axis == 2 {
					axis = i
				}
				pos[axis] = l
				continue
			}
			l, ok := ParseLength(f)
			if !ok {
				return pos, false
			}
			pos[i] = l
		}
		return pos, true
	}
	return pos, false
}

func splitAt(fields []string) (before, after []string, hasAt bool) {
	for i, f := range fields {
		if f == "at" {
			return fields[:i], fields[i+1:], true
		}
	}
	return fields, nil, false
}

func (g *Gradient) parseRadialShape(fields []string) bool {
	shape, at, hasAt := splitAt(fields)
	if hasAt {
		pos, ok := parsePosition(at)
		if !ok {
			return false
		}
		g.Position = pos
	}
	var sizes []Length
	for _, f := range shape {
		switch f {
		case "circle":
			g.Circle = true
		case "ellipse":
		case "closest-side":
			g.Extent = ClosestSide
		case "closest-corner":
			g.Extent = ClosestCorner
		case "farthest-side":
			g.Extent = FarthestSide
		case "farthest-corner":
			g.Extent = FarthestCorner
		default:
			l, ok := ParseLength(f)
			if !ok {
				return false
			}
			sizes = append(sizes, l)
		}
	}
	switch len(sizes) {
	case 0:
	case 1:
		g.Extent, g.Size, g.Circle = ExplicitSize, [2]Length{sizes[0], sizes[0]}, true
	case 2:
		g.Extent, g.Size = ExplicitSize, [2]Length{sizes[0], sizes[1]}
	default:
		return false
	}
	return true
}

func (g *Gradient) parseConicHeader(fields []string) bool {
	before, at, hasAt := splitAt(fields)
	if hasAt {
		pos, ok := parsePosition(at)
		if !ok {
			return false
		}
		g.Position = pos
	}
	switch len(before) {
	case 0:
		return hasAt
	case 2:
		if before[0] != "from" {
			return false
		}
		a, ok := ParseAngle(before[1])
		g.Angle = a
		return ok
	}
	return false
}

// parseStop parses `<color> [<position> [<position>]]`, returning one
// stop per position. A lone position (interpolation hint) is not supported.
func parseStop(s string, kind GradientKind) ([]ColorStop, bool) {
	fields := SplitFields(s)
	if len(fields) == 0 || len(fields) > 3 {
		return nil, false
	}
	color, ok := ParseColor(fields[0])
	if !ok {
		return nil, false
	}
	if len(fields) == 1 {
		return []ColorStop{{Color: color}}, true
	}
	var out []ColorStop
	for _, f := range fields[1:] {
		var pos Length
		if kind == ConicGradient {
			if a, ok := ParseAngle(f); ok {
				pos = Percent(a / 360 * 100)
			} else if pos, ok = ParseLength(f); !ok || pos.Unit != UnitPercent {
				return nil, false
			}
		} else if pos, ok = ParseLength(f); !ok || pos.IsAuto() || pos.IsNone() {
			return nil, false
		}
		p := pos
		out = append(out, ColorStop{Color: color, Pos: &p})
	}
	return out, true
}

// resolveStops returns the stops with positions in [0, 1] relative to
// `length`, following the CSS fix-up rules, expanding repeating gradients.
func (g *Gradient) resolveStops(ctx *Context, length Fl, current backend.WebColor) []backend.ColorPoint {
	n := len(g.Stops)
	offsets := make([]Fl, n)
	known := make([]bool, n)
	for i, s := range g.Stops {
		if s.Pos == nil {
			continue
		}
		switch {
		case s.Pos.Unit == UnitPercent:
			offsets[i] = s.Pos.Value / 100
		case length > 0:
			offsets[i] = s.Pos.Resolve(ctx, 0) / length
		default:
			continue
		}
		known[i] = true
	}
	if !known[0] {
		offsets[0], known[0] = 0, true
	}
	if !known[n-1] {
		offsets[n-1], known[n-1] = 1, true
	}
	// positions never decrease
	floor := offsets[0]
	for i := range offsets {
		if known[i] {
			if offsets[i] < floor {
				offsets[i] = floor
			}
			floor = offsets[i]
		}
	}
	// distribute missing positions evenly
	for i := 1; i < n; {
		if known[i] {
			i++
			continue
		}
		j := i
		for !known[j] {
			j++
		}
		start, end := offsets[i-1], offsets[j]
		for k := i; k < j; k++ {
			offsets[k] = start + (end-start)*Fl(k-i+1)/Fl(j-i+1)
		}
		i = j
	}

	points := make([]backend.ColorPoint, n)
	for i, s := range g.Stops {
		points[i] = backend.ColorPoint{Offset: offsets[i], Color: s.Color.Resolve(current)}
	}
	if g.Repeating {
		points = repeatStops(points)
	}
	return points
}

// repeatStops tiles the [first, last] interval over [0, 1].
func repeatStops(points []backend.ColorPoint) []backend.ColorPoint {
	first, last := points[0].Offset, points[len(points)-1].Offset
	period := last - first
	if period <= 0 {
		return points
	}
	start := first - Fl(math.Ceil(float64(first/period)))*period
	var out []backend.ColorPoint
	for base := start; base < 1; base += period {
		for _, p := range points {
			out = append(out, backend.ColorPoint{Offset: base + p.Offset - first, Color: p.Color})
		}
	}
	return clipStops(out)
}

// clipStops drops the stops outside [0, 1], keeping the neighbors
// of the boundaries.
func clipStops(points []backend.ColorPoint) []backend.ColorPoint {
	var out []backend.ColorPoint
	for i, p := range points {
		if p.Offset < 0 && i+1 < len(points) && points[i+1].Offset <= 0 {
			continue
		}
		if p.Offset > 1 && i > 0 && points[i-1].Offset >= 1 {
			break
		}
		out = append(out, p)
	}
	return out
}

// Linear resolves the gradient inside `box`.
func (g *Gradient) Linear(ctx *Context, box backend.Rect, current backend.WebColor) backend.LinearGradient {
	w, h := float64(box.Width), float64(box.Height)
	angle := float64(g.Angle)
	if g.Corner {
		angle = math.Atan2(float64(g.DirX)*h, -float64(g.DirY)*w) * 180 / math.Pi
	}
	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	length := math.Abs(w*sin) + math.Abs(h*cos)
	cx, cy := float64(box.X)+w/2, float64(box.Y)+h/2
	dx, dy := sin*length/2, -cos*length/2
	return backend.LinearGradient{
		GradientBase: g.base(ctx, Fl(length), current),
		Start:        backend.Point{X: Fl(cx - dx), Y: Fl(cy - dy)},
		End:          backend.Point{X: Fl(cx + dx), Y: Fl(cy + dy)},
	}
}

func (g *Gradient) base(ctx *Context, length Fl, current backend.WebColor) backend.GradientBase {
	return backend.GradientBase{
		ColorPoints:      g.resolveStops(ctx, length, current),
		ColorSpace:       g.ColorSpace,
		HueInterpolation: g.Hue,
	}
}

func (g *Gradient) center(ctx *Context, box backend.Rect) (cx, cy Fl) {
	return g.Position[0].Resolve(ctx, box.Width), g.Position[1].Resolve(ctx, box.Height)
}

// Radial resolves the gradient inside `box`.
func (g *Gradient) Radial(ctx *Context, box backend.Rect, current backend.WebColor) backend.RadialGradient {
	cx, cy := g.center(ctx, box)
	minX, maxX := utils.MinF(cx, box.Width-cx), utils.MaxF(cx, box.Width-cx)
	minY, maxY := utils.MinF(cy, box.Height-cy), utils.MaxF(cy, box.Height-cy)
	minX, minY = utils.ClampPositive(minX), utils.ClampPositive(minY)

	var rx, ry Fl
	switch g.Extent {
	case ExplicitSize:
		rx, ry = g.Size[0].Resolve(ctx, box.Width), g.Size[1].Resolve(ctx, box.Height)
	case ClosestSide:
		rx, ry = minX, minY
		if g.Circle {
			rx = utils.MinF(minX, minY)
			ry = rx
		}
	case FarthestSide:
		rx, ry = maxX, maxY
		if g.Circle {
			rx = utils.MaxF(maxX, maxY)
			ry = rx
		}
	case ClosestCorner:
		if g.Circle {
			rx = utils.Hypot(minX, minY)
			ry = rx
		} else {
			rx, ry = minX*math.Sqrt2, minY*math.Sqrt2
		}
	default: // FarthestCorner
		if g.Circle {
			rx = utils.Hypot(maxX, maxY)
			ry = rx
		} else {
			rx, ry = maxX*math.Sqrt2, maxY*math.Sqrt2
		}
	}
	return backend.RadialGradient{
		GradientBase: g.base(ctx, rx, current),
		Position:     backend.Point{X: box.X + cx, Y: box.Y + cy},
		Radius:       backend.Point{X: rx, Y: ry},
	}
}

// Conic resolves the gradient inside `box`. The radius is the distance
// to the farthest corner.
func (g *Gradient) Conic(ctx *Context, box backend.Rect, current backend.WebColor) backend.ConicGradient {
	cx, cy := g.center(ctx, box)
	maxX, maxY := utils.MaxF(cx, box.Width-cx), utils.MaxF(cy, box.Height-cy)
	return backend.ConicGradient{
		GradientBase: g.base(ctx, 0, current),
		Position:     backend.Point{X: box.X + cx, Y: box.Y + cy},
		Angle:        g.Angle,
		Radius:       utils.Hypot(maxX, maxY),
	}
}

func (k GradientKind) String() string {
	return [...]string{"linear", "radial", "conic"}[k] + "-gradient"
}
