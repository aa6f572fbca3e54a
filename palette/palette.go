// Package palette turns escape results into colors.
//
// Colors are driven by the continuous Smooth value of a result, never by the
// discrete iteration count, so neighbouring pixels with the same count still
// shade differently.
package palette

import (
	"image/color"
	"math"

	"MandelbrotViewer/mandelbrot"
	"MandelbrotViewer/misc"
)

const (
	// grayFloor keeps the darkest escaped shade apart from the black interior.
	grayFloor = 32

	hueSaturation = 0.85
	hueValue      = 1.0
)

type Palette struct {
	colors        []color.RGBA
	escapeColor   color.RGBA
	gamma         float64
	huePeriod     float64
	maxIterations float64
}

// NewPalette expects verified settings.
func NewPalette(settings Settings, maxIterations int) Palette {
	return Palette{
		colors:        settings.Palette,
		escapeColor:   settings.EscapeColor,
		gamma:         settings.Gamma,
		huePeriod:     settings.HuePeriod,
		maxIterations: float64(maxIterations),
	}
}

func (p *Palette) EscapeColor() color.RGBA {
	return p.escapeColor
}

func (p *Palette) Colorize(result mandelbrot.Result, mode Mode) color.RGBA {
	if !result.Escaped {
		return p.escapeColor
	}
	if mode == Colored {
		if len(p.colors) > 0 {
			return p.bandColor(result.Smooth)
		}
		return p.hueColor(result.Smooth)
	}
	return p.grayColor(result.Smooth)
}

func (p *Palette) grayColor(smooth float64) color.RGBA {
	t := math.Pow(misc.Clamp(smooth/p.maxIterations, 0, 1), p.gamma)
	v := misc.LerpUint8(grayFloor, 255, t)
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

// bandColor walks the configured palette one color per iteration and blends
// towards the next color by the fractional part.
func (p *Palette) bandColor(smooth float64) color.RGBA {
	whole, fraction := math.Modf(smooth)
	index := int(whole) % len(p.colors)
	color1 := p.colors[index]
	color2 := p.colors[(index+1)%len(p.colors)]
	return misc.LinearInterpolationRGB(color1, color2, fraction)
}

func (p *Palette) hueColor(smooth float64) color.RGBA {
	hue := math.Mod(smooth, p.huePeriod) / p.huePeriod
	return hsv(hue, hueSaturation, hueValue)
}

// hsv converts h, s, v in [0, 1] to an opaque color.
func hsv(h float64, s float64, v float64) color.RGBA {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(math.Round(r * 255)), G: uint8(math.Round(g * 255)), B: uint8(math.Round(b * 255)), A: 255}
}
