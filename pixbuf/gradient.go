package pixbuf

import (
	"image/color"
	"math"

	"github.com/benoitkugler/litebridge/bridge"
	"github.com/lucasb-eyer/go-colorful"
)

const rampSize = 256

// ramp is a gradient color line sampled at rampSize offsets in [0, 1].
type ramp [rampSize]color.NRGBA

func newRamp(stops []bridge.ColorStop, space bridge.ColorSpace, hue bridge.HueInterpolation) *ramp {
	var out ramp
	if len(stops) == 0 {
		return &out
	}
	first, last := stops[0], stops[len(stops)-1]
	j := 1
	for i := range out {
		t := bridge.Fl(i) / (rampSize - 1)
		switch {
		case t <= first.Offset || len(stops) == 1:
			out[i] = nrgba(first.Color)
		case t >= last.Offset:
			out[i] = nrgba(last.Color)
		default:
			for j < len(stops)-1 && stops[j].Offset < t {
				j++
			}
			a, b := stops[j-1], stops[j]
			f := 1.
			if span := b.Offset - a.Offset; span > 0 {
				f = float64((t - a.Offset) / span)
			}
			out[i] = interpolate(a.Color, b.Color, f, space, hue)
		}
	}
	return &out
}

// at returns the color at offset `t`, padding outside [0, 1].
func (r *ramp) at(t float64) color.Color {
	switch {
	case t <= 0 || math.IsNaN(t):
		return r[0]
	case t >= 1:
		return r[rampSize-1]
	}
	return r[int(t*(rampSize-1)+0.5)]
}

func nrgba(c bridge.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

func toColorful(c bridge.Color) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// lerpHue interpolates two hues in degrees.
func lerpHue(h1, h2, t float64, mode bridge.HueInterpolation) float64 {
	d := h2 - h1
	switch mode {
	case bridge.HueLonger:
		if d > 0 && d < 180 {
			d -= 360
		} else if d > -180 && d <= 0 {
			d += 360
		}
	case bridge.HueIncreasing:
		if d < 0 {
			d += 360
		}
	case bridge.HueDecreasing:
		if d > 0 {
			d -= 360
		}
	default: // shorter
		if d > 180 {
			d -= 360
		} else if d < -180 {
			d += 360
		}
	}
	h := math.Mod(h1+d*t, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// interpolate mixes `a` and `b` in the given color space. Wide gamut RGB
// spaces are approximated by sRGB, and the XYZ spaces by linear sRGB
// (they are linear transforms of it). Alpha is interpolated linearly.
func interpolate(a, b bridge.Color, t float64, space bridge.ColorSpace, hue bridge.HueInterpolation) color.NRGBA {
	ca, cb := toColorful(a), toColorful(b)
	var out colorful.Color
	switch space {
	case bridge.SpaceSRGBLinear, bridge.SpaceXYZ, bridge.SpaceXYZD50, bridge.SpaceXYZD65:
		out = ca.BlendLinearRgb(cb, t)
	case bridge.SpaceLab:
		out = ca.BlendLab(cb, t)
	case bridge.SpaceOklab:
		out = ca.BlendOkLab(cb, t)
	case bridge.SpaceLCH:
		h1, c1, l1 := ca.Hcl()
		h2, c2, l2 := cb.Hcl()
		out = colorful.Hcl(lerpHue(h1, h2, t, hue), lerp(c1, c2, t), lerp(l1, l2, t))
	case bridge.SpaceOklch:
		l1, c1, h1 := ca.OkLch()
		l2, c2, h2 := cb.OkLch()
		out = colorful.OkLch(lerp(l1, l2, t), lerp(c1, c2, t), lerpHue(h1, h2, t, hue))
	case bridge.SpaceHSL:
		h1, s1, l1 := ca.Hsl()
		h2, s2, l2 := cb.Hsl()
		out = colorful.Hsl(lerpHue(h1, h2, t, hue), lerp(s1, s2, t), lerp(l1, l2, t))
	case bridge.SpaceHWB:
		// HWB is a reparametrization of HSV
		h1, s1, v1 := ca.Hsv()
		h2, s2, v2 := cb.Hsv()
		out = colorful.Hsv(lerpHue(h1, h2, t, hue), lerp(s1, s2, t), lerp(v1, v2, t))
	default:
		out = ca.BlendRgb(cb, t)
	}
	r, g, bl := out.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(math.Round(lerp(float64(a.A), float64(b.A), t)))}
}

// The patterns below implement gg.Pattern, sampling at pixel centers.

type linearPattern struct {
	ramp           *ramp
	x0, y0, vx, vy float64
	len2           float64
}

func newLinearPattern(g bridge.LinearGradient) *linearPattern {
	p := &linearPattern{
		ramp: newRamp(g.Stops, g.ColorSpace, g.HueInterpolation),
		x0:   float64(g.Start.X),
		y0:   float64(g.Start.Y),
		vx:   float64(g.End.X - g.Start.X),
		vy:   float64(g.End.Y - g.Start.Y),
	}
	p.len2 = p.vx*p.vx + p.vy*p.vy
	return p
}

func (p *linearPattern) ColorAt(x, y int) color.Color {
	if p.len2 == 0 {
		return p.ramp.at(0)
	}
	dx, dy := float64(x)+0.5-p.x0, float64(y)+0.5-p.y0
	return p.ramp.at((dx*p.vx + dy*p.vy) / p.len2)
}

type radialPattern struct {
	ramp           *ramp
	cx, cy, rx, ry float64
}

func newRadialPattern(g bridge.RadialGradient) *radialPattern {
	return &radialPattern{
		ramp: newRamp(g.Stops, g.ColorSpace, g.HueInterpolation),
		cx:   float64(g.Position.X),
		cy:   float64(g.Position.Y),
		rx:   float64(g.Radius.X),
		ry:   float64(g.Radius.Y),
	}
}

func (p *radialPattern) ColorAt(x, y int) color.Color {
	if p.rx <= 0 || p.ry <= 0 {
		return p.ramp.at(1)
	}
	dx, dy := (float64(x)+0.5-p.cx)/p.rx, (float64(y)+0.5-p.cy)/p.ry
	return p.ramp.at(math.Hypot(dx, dy))
}

// conicPattern starts at `angle` degrees from the top, clockwise.
type conicPattern struct {
	ramp          *ramp
	cx, cy, angle float64
}

func newConicPattern(g bridge.ConicGradient) *conicPattern {
	return &conicPattern{
		ramp:  newRamp(g.Stops, g.ColorSpace, g.HueInterpolation),
		cx:    float64(g.Position.X),
		cy:    float64(g.Position.Y),
		angle: float64(g.Angle),
	}
}

func (p *conicPattern) ColorAt(x, y int) color.Color {
	dx, dy := float64(x)+0.5-p.cx, float64(y)+0.5-p.cy
	a := math.Atan2(dx, -dy) * 180 / math.Pi
	a = math.Mod(a-p.angle, 360)
	if a < 0 {
		a += 360
	}
	return p.ramp.at(a / 360)
}
