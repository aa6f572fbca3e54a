// Package window shows the viewer in a desktop window using ebiten.
package window

import (
	"errors"
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"MandelbrotViewer/misc"
	"MandelbrotViewer/viewer"
)

const title = "Mandelbrot Viewer"

var panKeys = map[ebiten.Key]viewer.Direction{
	ebiten.KeyArrowUp:    viewer.Up,
	ebiten.KeyW:          viewer.Up,
	ebiten.KeyArrowDown:  viewer.Down,
	ebiten.KeyS:          viewer.Down,
	ebiten.KeyArrowLeft:  viewer.Left,
	ebiten.KeyA:          viewer.Left,
	ebiten.KeyArrowRight: viewer.Right,
	ebiten.KeyD:          viewer.Right,
}

type Game struct {
	generation uint64
	hud        bool
	logger     bslogger.Logger
	screen     *ebiten.Image
	viewer     *viewer.Viewer
}

func NewGame(v *viewer.Viewer) *Game {
	return &Game{
		hud:    true,
		logger: bslogger.NewLogger("Window", bslogger.Normal, nil),
		viewer: v,
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.viewer.OnQuit()
		return ebiten.Termination
	}

	for key, direction := range panKeys {
		if inpututil.IsKeyJustPressed(key) {
			misc.CheckError(g.viewer.OnPan(direction), g.logger, misc.Warning)
		}
	}

	width, height := g.viewer.Settings().Width, g.viewer.Settings().Height
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		misc.CheckError(g.viewer.OnZoom(width/2, height/2, viewer.In), g.logger, misc.Warning)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		misc.CheckError(g.viewer.OnZoom(width/2, height/2, viewer.Out), g.logger, misc.Warning)
	}

	x, y := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		misc.CheckError(g.viewer.OnZoom(x, y, viewer.In), g.logger, misc.Warning)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		misc.CheckError(g.viewer.OnZoom(x, y, viewer.Out), g.logger, misc.Warning)
	}
	if _, dy := ebiten.Wheel(); dy > 0 {
		misc.CheckError(g.viewer.OnZoom(x, y, viewer.In), g.logger, misc.Warning)
	} else if dy < 0 {
		misc.CheckError(g.viewer.OnZoom(x, y, viewer.Out), g.logger, misc.Warning)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		misc.CheckError(g.viewer.OnTogglePalette(), g.logger, misc.Warning)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		misc.CheckError(g.viewer.OnReset(), g.logger, misc.Warning)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hud = !g.hud
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	frame := g.viewer.GetFrame()
	if frame == nil {
		ebitenutil.DebugPrint(screen, "Rendering...")
		return
	}

	// Only upload pixels when a new frame was published
	if g.screen == nil || frame.Generation != g.generation {
		if g.screen == nil {
			bounds := frame.Image.Bounds()
			g.screen = ebiten.NewImage(bounds.Dx(), bounds.Dy())
		}
		g.screen.WritePixels(frame.Image.Pix)
		g.generation = frame.Generation
	}
	screen.DrawImage(g.screen, &ebiten.DrawImageOptions{})

	if g.hud {
		center := frame.Viewport.Center()
		msg := fmt.Sprintf("Center: (%.17g, %.17g)\nScale: %g\nMode: %s\nTPS: %0.1f",
			real(center), imag(center), frame.Viewport.Scale(), frame.Mode, ebiten.ActualTPS())
		if g.viewer.Viewport() != frame.Viewport || g.viewer.Mode() != frame.Mode {
			msg += "\nRendering..."
		}
		ebitenutil.DebugPrint(screen, msg)
	}
}

func (g *Game) Layout(outsideWidth int, outsideHeight int) (int, int) {
	return g.viewer.Settings().Width, g.viewer.Settings().Height
}

// Run opens the window and blocks until it is closed or the user quits.
func Run(v *viewer.Viewer) error {
	settings := v.Settings()
	ebiten.SetWindowSize(settings.Width, settings.Height)
	ebiten.SetWindowTitle(title)

	v.Start()
	err := ebiten.RunGame(NewGame(v))
	v.OnQuit()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
