package palette

import (
	"fmt"
	"image/color"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	DefaultGamma     = 0.5
	DefaultHuePeriod = 64
)

type Settings struct {
	logger bslogger.Logger

	EscapeColor             color.RGBA
	Gamma                   float64
	GeneratePaletteSettings []GeneratePaletteSettings
	HuePeriod               float64
	InitialMode             Mode
	Palette                 []color.RGBA
}

func (s *Settings) String() string {
	output := "\nPalette settings\n"
	output += fmt.Sprintf("Escape Color: %v\n", s.EscapeColor)
	output += fmt.Sprintf("Gamma: %f\n", s.Gamma)
	output += fmt.Sprintf("Hue Period: %f\n", s.HuePeriod)
	output += fmt.Sprintf("Initial Mode: %s\n", s.InitialMode)
	output += fmt.Sprintf("Palette: %d colors\n", len(s.Palette))
	return output
}

func (s *Settings) Verify() error {
	s.logger = bslogger.NewLogger("PaletteSettings", bslogger.Normal, nil)

	if s.EscapeColor == (color.RGBA{}) {
		s.EscapeColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	}
	if !(s.Gamma > 0) {
		s.Gamma = DefaultGamma
	}
	if len(s.GeneratePaletteSettings) > 0 {
		s.Palette = make([]color.RGBA, 0)
		for i := 0; i < len(s.GeneratePaletteSettings); i++ {
			s.Palette = append(s.Palette, s.GeneratePaletteSettings[i].GeneratePalette()...)
		}
	}
	if !(s.HuePeriod > 0) {
		s.HuePeriod = DefaultHuePeriod
	}
	if s.InitialMode != Grayscale && s.InitialMode != Colored {
		s.InitialMode = Grayscale
	}

	// Banding needs at least two colors to interpolate between
	if len(s.Palette) == 1 {
		s.logger.Info("Ignoring a palette with only one color, using hue bands instead.")
		s.Palette = nil
	}

	return nil
}
