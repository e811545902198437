// Package colorimage implements C4: color ramp interpolation and the
// mipmapped image buffer used by texturing (§4.4).
package colorimage

import (
	"math"
	"sort"

	"github.com/lumenforge/tracecore/pkg/core"
)

// Mode selects the color space a ramp interpolates in.
type Mode int

const (
	ModeRGB Mode = iota
	ModeHSV
	ModeHSL
)

// Interpolation selects how a ramp blends between bracketing items.
type Interpolation int

const (
	InterpolationConstant Interpolation = iota
	InterpolationLinear
)

// HueInterpolation selects which arc a HSV/HSL hue interpolation takes.
type HueInterpolation int

const (
	HueNear HueInterpolation = iota
	HueFar
	HueClockwise
	HueCounterclockwise
)

// Item is one (color, position) control point of a ramp.
type Item struct {
	Color    core.Rgb
	Position float64
}

// Ramp is an ordered sequence of Items plus the interpolation rules of §4.4.
// Items must be supplied in ascending Position order (the build site, not
// this package, is responsible for sorting at construction time since a
// ramp is typically edited once then queried many times).
type Ramp struct {
	Items   []Item
	Mode    Mode
	Interp  Interpolation
	Hue     HueInterpolation
}

// NewRamp builds a ramp from unordered items, sorting them by position.
func NewRamp(items []Item, mode Mode, interp Interpolation, hue HueInterpolation) *Ramp {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return &Ramp{Items: sorted, Mode: mode, Interp: interp, Hue: hue}
}

// At evaluates the ramp at position p (§4.4 "Lookup at position p").
func (r *Ramp) At(p float64) core.Rgb {
	n := len(r.Items)
	if n == 0 {
		return core.Rgb{}
	}
	if n == 1 {
		return r.Items[0].Color // single-item ramp: constant for any query (§8)
	}

	if p <= r.Items[0].Position {
		return r.Items[0].Color
	}
	if p >= r.Items[n-1].Position {
		return r.Items[n-1].Color
	}

	// Binary search for the bracketing pair.
	hi := sort.Search(n, func(i int) bool { return r.Items[i].Position >= p })
	lo := hi - 1
	if r.Items[hi].Position == p {
		return r.Items[hi].Color // exact hit returns that item's color bit-for-bit (§8)
	}

	if r.Interp == InterpolationConstant {
		return r.Items[hi].Color
	}

	a, b := r.Items[lo], r.Items[hi]
	t := (p - a.Position) / (b.Position - a.Position)
	return r.lerp(a.Color, b.Color, t)
}

func (r *Ramp) lerp(a, b core.Rgb, t float64) core.Rgb {
	switch r.Mode {
	case ModeRGB:
		return a.Multiply(1 - t).Add(b.Multiply(t))
	case ModeHSV:
		ah, as, av := rgbToHSV(a)
		bh, bs, bv := rgbToHSV(b)
		h := lerpHue(ah, bh, t, r.Hue)
		return hsvToRGB(h, as*(1-t)+bs*t, av*(1-t)+bv*t)
	case ModeHSL:
		ah, as, al := rgbToHSL(a)
		bh, bs, bl := rgbToHSL(b)
		h := lerpHue(ah, bh, t, r.Hue)
		return hslToRGB(h, as*(1-t)+bs*t, al*(1-t)+bl*t)
	}
	return a.Multiply(1 - t).Add(b.Multiply(t))
}

func lerpHue(a, b, t float64, mode HueInterpolation) float64 {
	delta := b - a
	switch mode {
	case HueNear:
		if delta > 180 {
			delta -= 360
		} else if delta < -180 {
			delta += 360
		}
	case HueFar:
		if delta >= 0 && delta < 180 {
			delta -= 360
		} else if delta < 0 && delta > -180 {
			delta += 360
		}
	case HueClockwise:
		if delta > 0 {
			delta -= 360
		}
	case HueCounterclockwise:
		if delta < 0 {
			delta += 360
		}
	}
	h := a + delta*t
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func rgbToHSV(c core.Rgb) (h, s, v float64) {
	maxV := math.Max(c.X, math.Max(c.Y, c.Z))
	minV := math.Min(c.X, math.Min(c.Y, c.Z))
	d := maxV - minV
	v = maxV
	if maxV <= 0 {
		return 0, 0, 0
	}
	s = d / maxV
	if d == 0 {
		return 0, s, v
	}
	switch maxV {
	case c.X:
		h = math.Mod((c.Y-c.Z)/d, 6)
	case c.Y:
		h = (c.Z-c.X)/d + 2
	default:
		h = (c.X-c.Y)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) core.Rgb {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return core.Rgb{X: r + m, Y: g + m, Z: b + m}
}

func rgbToHSL(c core.Rgb) (h, s, l float64) {
	maxV := math.Max(c.X, math.Max(c.Y, c.Z))
	minV := math.Min(c.X, math.Min(c.Y, c.Z))
	l = (maxV + minV) / 2
	d := maxV - minV
	if d == 0 {
		return 0, 0, l
	}
	if l < 0.5 {
		s = d / (maxV + minV)
	} else {
		s = d / (2 - maxV - minV)
	}
	switch maxV {
	case c.X:
		h = math.Mod((c.Y-c.Z)/d, 6)
	case c.Y:
		h = (c.Z-c.X)/d + 2
	default:
		h = (c.X-c.Y)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, l
}

func hslToRGB(h, s, l float64) core.Rgb {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return core.Rgb{X: r + m, Y: g + m, Z: b + m}
}
