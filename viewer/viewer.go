// Package viewer is the surface the display shells talk to. Shells translate
// their input into intents (zoom, pan, toggle palette, reset, quit) and pull
// the latest frame back with GetFrame.
//
// Intents must all be delivered from one goroutine. GetFrame may be called
// from anywhere.
package viewer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BrugadaSyndrome/bslogger"

	"MandelbrotViewer/mandelbrot"
	"MandelbrotViewer/palette"
	"MandelbrotViewer/render"
	"MandelbrotViewer/viewport"
)

var (
	ErrStopped       = errors.New("viewer has quit")
	ErrUnknownIntent = errors.New("unknown intent")
)

const (
	In Zoom = iota
	Out
)

type Zoom int

func (z Zoom) String() string {
	if z < In || z > Out {
		return fmt.Sprintf("Zoom(%d)", int(z))
	}
	return []string{
		"In", "Out",
	}[z]
}

const (
	Up Direction = iota
	Down
	Left
	Right
)

type Direction int

func (d Direction) String() string {
	if d < Up || d > Right {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return []string{
		"Up", "Down", "Left", "Right",
	}[d]
}

// offset is the pixel shift that brings the content in direction d into view.
func (d Direction) offset(distance int) (int, int, bool) {
	switch d {
	case Up:
		return 0, -distance, true
	case Down:
		return 0, distance, true
	case Left:
		return -distance, 0, true
	case Right:
		return distance, 0, true
	}
	return 0, 0, false
}

type Viewer struct {
	done     chan struct{}
	logger   bslogger.Logger
	mode     palette.Mode
	quitOnce sync.Once
	renderer *render.Renderer
	settings Settings
	stopped  bool
	viewport viewport.Viewport
}

// NewViewer expects verified settings.
func NewViewer(settings Settings) (*Viewer, error) {
	v, err := viewport.New(complex(settings.CenterX, settings.CenterY), settings.Scale, settings.Width, settings.Height)
	if err != nil {
		return nil, fmt.Errorf("unable to create viewport: %w", err)
	}

	m := mandelbrot.NewMandelbrot(settings.MandelbrotSettings)
	p := palette.NewPalette(settings.PaletteSettings, settings.MandelbrotSettings.MaxIterations)
	renderer, err := render.NewRenderer(settings.RenderSettings, m, p)
	if err != nil {
		return nil, err
	}

	return &Viewer{
		done:     make(chan struct{}),
		logger:   bslogger.NewLogger("Viewer", bslogger.Normal, nil),
		mode:     settings.PaletteSettings.InitialMode,
		renderer: renderer,
		settings: settings,
		viewport: v,
	}, nil
}

// Start renders the initial view.
func (v *Viewer) Start() *render.Job {
	v.logger.Infof("Starting at %s in %s", v.viewport.String(), v.mode)
	return v.render()
}

// OnZoom zooms in or out by the configured factor, keeping the plane point
// under pixel (px, py) in place. A rejected zoom leaves the view unchanged.
func (v *Viewer) OnZoom(px int, py int, zoom Zoom) error {
	if v.stopped {
		return ErrStopped
	}
	var factor float64
	switch zoom {
	case In:
		factor = v.settings.ZoomFactor
	case Out:
		factor = 1 / v.settings.ZoomFactor
	default:
		return fmt.Errorf("zoom %s: %w", zoom, ErrUnknownIntent)
	}
	if err := v.viewport.Zoom(float64(px), float64(py), factor); err != nil {
		return fmt.Errorf("zoom %s at (%d, %d): %w", zoom, px, py, err)
	}
	v.logger.Debugf("Zoomed %s at (%d, %d) to %s", zoom, px, py, v.viewport.String())
	v.render()
	return nil
}

// OnPan moves the view PanDistance pixels towards direction.
func (v *Viewer) OnPan(direction Direction) error {
	if v.stopped {
		return ErrStopped
	}
	dx, dy, ok := direction.offset(v.settings.PanDistance)
	if !ok {
		return fmt.Errorf("pan %s: %w", direction, ErrUnknownIntent)
	}
	v.viewport.Pan(dx, dy)
	v.logger.Debugf("Panned %s to %s", direction, v.viewport.String())
	v.render()
	return nil
}

// OnTogglePalette switches between grayscale and color. The escape grid is
// reused, only colors are recomputed.
func (v *Viewer) OnTogglePalette() error {
	if v.stopped {
		return ErrStopped
	}
	v.mode = v.mode.Toggle()
	v.logger.Debugf("Palette mode is now %s", v.mode)
	v.render()
	return nil
}

func (v *Viewer) OnReset() error {
	if v.stopped {
		return ErrStopped
	}
	v.viewport.Reset()
	v.logger.Info("Reset to the initial view")
	v.render()
	return nil
}

// OnQuit stops all rendering and closes Done. Nothing is saved.
func (v *Viewer) OnQuit() {
	v.quitOnce.Do(func() {
		v.stopped = true
		v.renderer.Stop()
		v.logger.Info("Shutting down")
		close(v.done)
	})
}

func (v *Viewer) Done() <-chan struct{} {
	return v.done
}

// GetFrame returns the newest complete frame. It is nil until the first
// render finishes and may lag behind the current view while rendering.
func (v *Viewer) GetFrame() *render.Frame {
	return v.renderer.Frame()
}

func (v *Viewer) Mode() palette.Mode {
	return v.mode
}

func (v *Viewer) Viewport() viewport.Viewport {
	return v.viewport
}

func (v *Viewer) Settings() Settings {
	return v.settings
}

func (v *Viewer) Stats() render.Stats {
	return v.renderer.Stats()
}

// Wait blocks until every render requested so far has finished.
func (v *Viewer) Wait() {
	v.renderer.Wait()
}

func (v *Viewer) render() *render.Job {
	return v.renderer.Render(v.viewport, v.mode)
}
