package viewer

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/BrugadaSyndrome/bslogger"

	"MandelbrotViewer/mandelbrot"
	"MandelbrotViewer/misc"
	"MandelbrotViewer/palette"
	"MandelbrotViewer/render"
	"MandelbrotViewer/viewport"
)

const (
	DefaultCenterX     = -0.5
	DefaultCenterY     = 0
	DefaultHeight      = 480
	DefaultPanDistance = 32
	DefaultWidth       = 640
	DefaultZoomFactor  = 0.5

	// The initial view shows at least [-2, 1] x [-1.5, 1.5].
	defaultPlaneWidth  = 3
	defaultPlaneHeight = 3

	// centerLimit keeps configured centers well inside the region worth viewing.
	centerLimit = 4
)

type Settings struct {
	logger bslogger.Logger

	CenterX            float64
	CenterY            float64
	Height             int
	MandelbrotSettings mandelbrot.Settings
	PaletteSettings    palette.Settings
	PanDistance        int
	RenderSettings     render.Settings
	Scale              float64
	Transitions        []Transition
	Width              int
	ZoomFactor         float64
}

// DefaultSettings returns settings that still need Verify but already carry
// the default center, which cannot be told apart from an explicit zero later.
func DefaultSettings() Settings {
	return Settings{
		CenterX: DefaultCenterX,
		CenterY: DefaultCenterY,
	}
}

// NewSettings reads settingsFile as JSON on top of the defaults. An empty file
// name yields the defaults.
func NewSettings(settingsFile string) (Settings, error) {
	s := DefaultSettings()
	if settingsFile != "" {
		fileBytes, err := misc.ReadFile(settingsFile)
		if err != nil {
			return s, fmt.Errorf("unable to read settings: %w", err)
		}
		if err := json.Unmarshal(fileBytes, &s); err != nil {
			return s, fmt.Errorf("unable to parse settings file %s: %w", settingsFile, err)
		}
	}
	if err := s.Verify(); err != nil {
		return s, err
	}
	s.logger.Debug(s.String())
	return s, nil
}

func (s *Settings) String() string {
	output := "\nViewer settings\n"
	output += fmt.Sprintf("Center: (%g, %g)\n", s.CenterX, s.CenterY)
	output += fmt.Sprintf("Resolution: %dx%d\n", s.Width, s.Height)
	output += fmt.Sprintf("Scale: %g\n", s.Scale)
	output += fmt.Sprintf("Zoom Factor: %g\n", s.ZoomFactor)
	output += fmt.Sprintf("Pan Distance: %d\n", s.PanDistance)
	output += fmt.Sprintf("Transitions: %d\n", len(s.Transitions))
	output += s.MandelbrotSettings.String()
	output += s.PaletteSettings.String()
	output += s.RenderSettings.String()
	return output
}

func (s *Settings) Verify() error {
	s.logger = bslogger.NewLogger("ViewerSettings", bslogger.Normal, nil)

	misc.CheckError(s.MandelbrotSettings.Verify(), s.logger, misc.Warning)
	misc.CheckError(s.PaletteSettings.Verify(), s.logger, misc.Warning)
	misc.CheckError(s.RenderSettings.Verify(), s.logger, misc.Warning)

	if s.Width <= 0 {
		s.Width = DefaultWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultHeight
	}
	if !(math.Abs(s.CenterX) <= centerLimit) {
		s.logger.Warningf("CenterX %g is out of range, using %g", s.CenterX, float64(DefaultCenterX))
		s.CenterX = DefaultCenterX
	}
	if !(math.Abs(s.CenterY) <= centerLimit) {
		s.logger.Warningf("CenterY %g is out of range, using %g", s.CenterY, float64(DefaultCenterY))
		s.CenterY = DefaultCenterY
	}
	if !(s.Scale >= viewport.MinScale && s.Scale <= viewport.MaxScale) {
		s.Scale = viewport.FitScale(defaultPlaneWidth, defaultPlaneHeight, s.Width, s.Height)
	}
	if !(s.ZoomFactor > 0 && s.ZoomFactor < 1) {
		s.ZoomFactor = DefaultZoomFactor
	}
	if s.PanDistance <= 0 {
		s.PanDistance = DefaultPanDistance
	}

	// Verify each of the transitions
	for i := 0; i < len(s.Transitions); i++ {
		misc.CheckError(s.Transitions[i].Verify(), s.logger, misc.Warning)
	}

	return nil
}

// SetResolution changes the pixel grid while keeping at least the configured
// region of the plane in view.
func (s *Settings) SetResolution(width int, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	planeWidth := s.Scale * float64(s.Width)
	planeHeight := s.Scale * float64(s.Height)
	s.Width = width
	s.Height = height
	s.Scale = viewport.FitScale(planeWidth, planeHeight, width, height)
}
