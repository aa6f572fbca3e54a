// Package terminal shows the viewer in a terminal using tcell. Each cell
// draws two pixels stacked vertically with an upper half block, the upper
// pixel as foreground and the lower one as background.
package terminal

import (
	"fmt"
	"image/color"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/gdamore/tcell/v2"

	"MandelbrotViewer/misc"
	"MandelbrotViewer/render"
	"MandelbrotViewer/viewer"
)

const (
	halfBlock       = '▀'
	refreshInterval = 50 * time.Millisecond
)

var panKeys = map[tcell.Key]viewer.Direction{
	tcell.KeyUp:    viewer.Up,
	tcell.KeyDown:  viewer.Down,
	tcell.KeyLeft:  viewer.Left,
	tcell.KeyRight: viewer.Right,
}

var panRunes = map[rune]viewer.Direction{
	'w': viewer.Up,
	's': viewer.Down,
	'a': viewer.Left,
	'd': viewer.Right,
}

// Resolution is the pixel grid that maps one to one onto the cells of screen.
func Resolution(screen tcell.Screen) (int, int) {
	columns, rows := screen.Size()
	return columns, 2 * rows
}

type Terminal struct {
	buttons    tcell.ButtonMask
	generation uint64
	hud        bool
	logger     bslogger.Logger
	screen     tcell.Screen
	viewer     *viewer.Viewer
}

// NewTerminal expects an initialised screen.
func NewTerminal(screen tcell.Screen, v *viewer.Viewer) *Terminal {
	screen.EnableMouse()
	return &Terminal{
		hud:    true,
		logger: bslogger.NewLogger("Terminal", bslogger.Normal, nil),
		screen: screen,
		viewer: v,
	}
}

// Run starts the viewer and handles events until the user quits. The caller
// owns the screen and must Fini it afterwards.
func (t *Terminal) Run() error {
	t.viewer.Start()
	defer t.viewer.OnQuit()
	t.screen.Sync()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if t.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			t.Draw(false)
		}
	}
}

// HandleEvent turns one terminal event into viewer intents. It reports true
// once the user has asked to quit.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		t.Draw(true)
	case *tcell.EventKey:
		return t.handleKey(ev)
	case *tcell.EventMouse:
		t.handleMouse(ev)
	}
	return false
}

func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		t.viewer.OnQuit()
		return true
	}
	if direction, ok := panKeys[ev.Key()]; ok {
		t.report(t.viewer.OnPan(direction))
		return false
	}
	if ev.Key() != tcell.KeyRune {
		return false
	}

	settings := t.viewer.Settings()
	switch r := ev.Rune(); r {
	case 'q':
		t.viewer.OnQuit()
		return true
	case '+', '=':
		t.report(t.viewer.OnZoom(settings.Width/2, settings.Height/2, viewer.In))
	case '-':
		t.report(t.viewer.OnZoom(settings.Width/2, settings.Height/2, viewer.Out))
	case 'p':
		t.report(t.viewer.OnTogglePalette())
	case 'r':
		t.report(t.viewer.OnReset())
	case 'h':
		t.hud = !t.hud
		t.Draw(true)
	default:
		if direction, ok := panRunes[r]; ok {
			t.report(t.viewer.OnPan(direction))
		}
	}
	return false
}

func (t *Terminal) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons &^ t.buttons
	t.buttons = buttons

	column, row := ev.Position()
	px, py := t.cellToPixel(column, row)
	switch {
	case pressed&tcell.Button1 != 0, buttons&tcell.WheelUp != 0:
		t.report(t.viewer.OnZoom(px, py, viewer.In))
	case pressed&tcell.Button2 != 0, buttons&tcell.WheelDown != 0:
		t.report(t.viewer.OnZoom(px, py, viewer.Out))
	}
}

// cellToPixel returns the frame pixel shown in the upper half of a cell.
func (t *Terminal) cellToPixel(column int, row int) (int, int) {
	settings := t.viewer.Settings()
	columns, rows := t.screen.Size()
	return column * settings.Width / max(columns, 1), 2 * row * settings.Height / max(2*rows, 1)
}

// Draw copies the newest frame onto the screen. Unless force is set nothing
// happens while the frame is unchanged.
func (t *Terminal) Draw(force bool) {
	frame := t.viewer.GetFrame()
	if frame == nil {
		return
	}
	if !force && frame.Generation == t.generation {
		return
	}
	t.generation = frame.Generation

	columns, rows := t.screen.Size()
	bounds := frame.Image.Bounds()
	for row := 0; row < rows; row++ {
		upperY := 2 * row * bounds.Dy() / (2 * rows)
		lowerY := (2*row + 1) * bounds.Dy() / (2 * rows)
		for column := 0; column < columns; column++ {
			x := column * bounds.Dx() / columns
			style := tcell.StyleDefault.
				Foreground(cellColor(frame.Image.RGBAAt(x, upperY))).
				Background(cellColor(frame.Image.RGBAAt(x, lowerY)))
			t.screen.SetContent(column, row, halfBlock, nil, style)
		}
	}
	if t.hud {
		t.drawStatus(frame)
	}
	t.screen.Show()
}

func (t *Terminal) drawStatus(frame *render.Frame) {
	center := frame.Viewport.Center()
	status := fmt.Sprintf(" (%.10g, %.10g) scale %.3g %s ", real(center), imag(center), frame.Viewport.Scale(), frame.Mode)
	columns, _ := t.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for i, r := range []rune(status) {
		if i >= columns {
			break
		}
		t.screen.SetContent(i, 0, r, nil, style)
	}
}

// report logs a rejected intent. Log lines land on the terminal, so the screen
// is repainted afterwards.
func (t *Terminal) report(err error) {
	if err == nil {
		return
	}
	misc.CheckError(err, t.logger, misc.Warning)
	t.screen.Sync()
}

func cellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
