package palette

import (
	"image/color"

	"MandelbrotViewer/misc"
)

// GeneratePaletteSettings describes one gradient segment of NumberColors
// colors running from StartColor towards EndColor.
type GeneratePaletteSettings struct {
	StartColor   color.RGBA
	EndColor     color.RGBA
	NumberColors int
}

func (gps *GeneratePaletteSettings) GeneratePalette() []color.RGBA {
	palette := make([]color.RGBA, 0, max(gps.NumberColors, 0))
	for j := 0; j < gps.NumberColors; j++ {
		fraction := float64(j) / float64(gps.NumberColors)
		palette = append(palette, misc.LinearInterpolationRGB(gps.StartColor, gps.EndColor, fraction))
	}
	return palette
}
