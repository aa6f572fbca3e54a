package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"MandelbrotViewer/mandelbrot"
	"MandelbrotViewer/palette"
	"MandelbrotViewer/task"
	"MandelbrotViewer/viewport"
)

type fixture struct {
	mandelbrot mandelbrot.Mandelbrot
	palette    palette.Palette
	renderer   *Renderer
}

func newFixture(t *testing.T, settings Settings, maxIterations int) fixture {
	t.Helper()
	return newFixtureWith(t, settings, mandelbrot.Settings{MaxIterations: maxIterations})
}

func newFixtureWith(t *testing.T, settings Settings, ms mandelbrot.Settings) fixture {
	t.Helper()
	ps := palette.Settings{}
	for _, verify := range []func() error{ms.Verify, ps.Verify, settings.Verify} {
		if err := verify(); err != nil {
			t.Fatalf("Verify() = %v", err)
		}
	}
	m := mandelbrot.NewMandelbrot(ms)
	p := palette.NewPalette(ps, ms.MaxIterations)
	r, err := NewRenderer(settings, m, p)
	if err != nil {
		t.Fatalf("NewRenderer() = %v", err)
	}
	t.Cleanup(r.Stop)
	return fixture{mandelbrot: m, palette: p, renderer: r}
}

func newViewport(t *testing.T, width int, height int) viewport.Viewport {
	t.Helper()
	v, err := viewport.New(complex(-0.5, 0), viewport.FitScale(3, 3, width, height), width, height)
	if err != nil {
		t.Fatalf("viewport.New() = %v", err)
	}
	return v
}

// assertMatchesReference renders frame's viewport serially and compares every
// pixel.
func (f *fixture) assertMatchesReference(t *testing.T, frame *Frame) {
	t.Helper()
	mapper := frame.Viewport.Mapper()
	for y := 0; y < frame.Viewport.Height(); y++ {
		for x := 0; x < frame.Viewport.Width(); x++ {
			want := f.palette.Colorize(f.mandelbrot.Compute(mapper(x, y)), frame.Mode)
			if got := frame.Image.RGBAAt(x, y); got != want {
				t.Fatalf("generation %d pixel (%d, %d) = %v, want %v", frame.Generation, x, y, got, want)
			}
		}
	}
}

func TestRenderInitialView(t *testing.T) {
	f := newFixture(t, Settings{}, 100)
	v := newViewport(t, 80, 60)

	if f.renderer.Frame() != nil {
		t.Fatalf("Frame() before rendering should be nil")
	}

	frame, err := f.renderer.Render(v, palette.Grayscale).Wait()
	if err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	if frame != f.renderer.Frame() {
		t.Errorf("published frame differs from the job's frame")
	}
	if frame.Image.Bounds() != image.Rect(0, 0, 80, 60) {
		t.Errorf("bounds = %v", frame.Image.Bounds())
	}

	interior := color.RGBA{A: 255}
	// (-0.5, 0) is inside the set, (-2.5, 0) is not.
	if got := frame.Image.RGBAAt(40, 30); got != interior {
		t.Errorf("center pixel = %v, want interior %v", got, interior)
	}
	if got := frame.Image.RGBAAt(0, 30); got == interior {
		t.Errorf("left edge pixel has the interior color")
	}
	f.assertMatchesReference(t, frame)

	stats := f.renderer.Stats()
	if stats.Started != 1 || stats.Completed != 1 || stats.Computed != 1 || stats.Recolored != 0 {
		t.Errorf("stats = %s", stats)
	}
}

func TestTogglePaletteRecolorsFromCache(t *testing.T) {
	f := newFixture(t, Settings{}, 100)
	v := newViewport(t, 64, 48)

	gray, err := f.renderer.Render(v, palette.Grayscale).Wait()
	if err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	colored, err := f.renderer.Render(v, palette.Colored).Wait()
	if err != nil {
		t.Fatalf("Wait() = %v", err)
	}
	again, err := f.renderer.Render(v, palette.Grayscale).Wait()
	if err != nil {
		t.Fatalf("Wait() = %v", err)
	}

	stats := f.renderer.Stats()
	if stats.Computed != 1 || stats.Recolored != 2 {
		t.Errorf("stats = %s, want one computed grid and two recolors", stats)
	}
	if colored.Mode != palette.Colored {
		t.Errorf("mode = %s", colored.Mode)
	}
	f.assertMatchesReference(t, colored)
	for i := range gray.Image.Pix {
		if gray.Image.Pix[i] != again.Image.Pix[i] {
			t.Fatalf("toggling twice changed byte %d", i)
		}
	}
}

func TestSupersededRendersNeverPublish(t *testing.T) {
	f := newFixture(t, Settings{Workers: 2, TileSize: 8}, 300)
	v := newViewport(t, 48, 36)

	var jobs []*Job
	for i := 0; i < 20; i++ {
		v.Pan(3, 1)
		jobs = append(jobs, f.renderer.Render(v, palette.Colored))
		if frame := f.renderer.Frame(); frame != nil {
			f.assertMatchesReference(t, frame)
		}
	}
	f.renderer.Wait()

	last := jobs[len(jobs)-1]
	frame, err := last.Wait()
	if err != nil {
		t.Fatalf("newest job: %v", err)
	}
	if frame != f.renderer.Frame() || frame.Generation != last.Generation() {
		t.Errorf("published generation %d, want %d", f.renderer.Frame().Generation, last.Generation())
	}
	if frame.Viewport.Center() != v.Center() {
		t.Errorf("published center %v, want %v", frame.Viewport.Center(), v.Center())
	}
	f.assertMatchesReference(t, frame)

	for _, job := range jobs[:len(jobs)-1] {
		if state := job.State(); state != Complete && state != Superseded {
			t.Errorf("job %d ended in state %s", job.Generation(), state)
		}
	}

	stats := f.renderer.Stats()
	if stats.Started != 20 || stats.Completed+stats.Superseded != 20 {
		t.Errorf("stats = %s", stats)
	}
}

func TestBackToBackRendersSupersede(t *testing.T) {
	// Every pixel lies inside the main cardioid and runs all iterations, so
	// the first job is still computing when the second request arrives.
	f := newFixtureWith(t, Settings{TileSize: 8}, mandelbrot.Settings{MaxIterations: 3000, DisablePeriodicityCheck: true})
	v, err := viewport.New(complex(-0.2, 0), 0.001, 120, 90)
	if err != nil {
		t.Fatalf("viewport.New() = %v", err)
	}

	first := f.renderer.Render(v, palette.Grayscale)
	v.Pan(1, 0)
	second := f.renderer.Render(v, palette.Grayscale)

	frame, err := second.Wait()
	if err != nil {
		t.Fatalf("newest job: %v", err)
	}
	if _, err := first.Wait(); !errors.Is(err, ErrSuperseded) {
		t.Errorf("first job = %v, want ErrSuperseded", err)
	}
	if first.State() != Superseded || second.State() != Complete {
		t.Errorf("states = %s, %s", first.State(), second.State())
	}
	if f.renderer.Frame() != frame || frame.Generation != second.Generation() {
		t.Errorf("published frame is not the newest job's")
	}

	f.renderer.Wait()
	stats := f.renderer.Stats()
	if stats.Started != 2 || stats.Superseded != 1 || stats.Completed != 1 || stats.Computed != 1 {
		t.Errorf("stats = %s", stats)
	}
}

func TestTaskGenerationsAgree(t *testing.T) {
	v := newViewport(t, 50, 30)
	var first *Frame
	for _, generation := range []task.Generation{task.Row, task.Column, task.Image, task.Grid} {
		f := newFixture(t, Settings{TaskGeneration: generation, TileSize: 16}, 80)
		frame, err := f.renderer.Render(v, palette.Grayscale).Wait()
		if err != nil {
			t.Fatalf("%s: %v", generation, err)
		}
		if first == nil {
			first = frame
			continue
		}
		for i := range first.Image.Pix {
			if first.Image.Pix[i] != frame.Image.Pix[i] {
				t.Fatalf("%s differs from %s at byte %d", generation, task.Row, i)
			}
		}
	}
}

func TestRenderAfterStop(t *testing.T) {
	f := newFixture(t, Settings{}, 50)
	f.renderer.Stop()

	job := f.renderer.Render(newViewport(t, 16, 16), palette.Grayscale)
	if _, err := job.Wait(); !errors.Is(err, ErrSuperseded) {
		t.Errorf("Wait() after Stop = %v, want ErrSuperseded", err)
	}
	if f.renderer.Frame() != nil {
		t.Errorf("a frame was published after Stop")
	}
	stats := f.renderer.Stats()
	if stats.Superseded != 1 || stats.Started != 0 {
		t.Errorf("stats after a render refused by Stop = %s", stats)
	}
}

func TestFrameSave(t *testing.T) {
	f := newFixture(t, Settings{}, 60)
	frame, err := f.renderer.Render(newViewport(t, 32, 24), palette.Colored).Wait()
	if err != nil {
		t.Fatalf("Wait() = %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	if err := frame.Save(path); err != nil {
		t.Fatalf("Save() = %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer file.Close()
	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			if color.RGBAModel.Convert(decoded.At(x, y)) != frame.Image.RGBAAt(x, y) {
				t.Fatalf("pixel (%d, %d) changed after saving", x, y)
			}
		}
	}

	if err := frame.Save(filepath.Join(dir, "frame.jpeg")); err != nil {
		t.Errorf("Save(jpeg) = %v", err)
	}
	if err := frame.Save(filepath.Join(dir, "frame.gif")); err == nil {
		t.Errorf("Save(gif) should fail")
	}
}

func TestSettingsVerify(t *testing.T) {
	s := Settings{TaskGeneration: task.Generation(12)}
	if err := s.Verify(); err != nil {
		t.Fatalf("Verify() = %v", err)
	}
	if s.CacheSize != DefaultCacheSize || s.TileSize != DefaultTileSize || s.TaskGeneration != task.Grid || s.Workers <= 0 {
		t.Errorf("defaults not applied: %s", s.String())
	}
}

func BenchmarkRender(b *testing.B) {
	ms := mandelbrot.Settings{MaxIterations: 255}
	ps := palette.Settings{}
	rs := Settings{CacheSize: 1}
	ms.Verify()
	ps.Verify()
	rs.Verify()
	r, err := NewRenderer(rs, mandelbrot.NewMandelbrot(ms), palette.NewPalette(ps, ms.MaxIterations))
	if err != nil {
		b.Fatal(err)
	}
	defer r.Stop()
	v, _ := viewport.New(complex(-0.5, 0), viewport.FitScale(3, 3, 320, 240), 320, 240)

	for i := 0; i < b.N; i++ {
		v.Pan(1, 0)
		if _, err := r.Render(v, palette.Grayscale).Wait(); err != nil {
			b.Fatal(err)
		}
	}
}
