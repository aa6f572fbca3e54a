package viewer

import (
	"context"
	"fmt"
	"math"

	"MandelbrotViewer/misc"
	"MandelbrotViewer/render"
)

// Transition moves the view from (StartX, StartY) to (EndX, EndY) while the
// magnification changes from MagnificationStart to MagnificationEnd by a
// factor of MagnificationStep per frame. Magnification 1 is the initial scale.
type Transition struct {
	EndX               float64
	EndY               float64
	FrameCount         uint
	MagnificationEnd   float64
	MagnificationStart float64
	MagnificationStep  float64
	StartX             float64
	StartY             float64
}

func (t *Transition) String() string {
	output := "{Transition "
	output += fmt.Sprintf("Start: (%g, %g) ", t.StartX, t.StartY)
	output += fmt.Sprintf("End: (%g, %g) ", t.EndX, t.EndY)
	output += fmt.Sprintf("Magnification: %g -> %g by %g ", t.MagnificationStart, t.MagnificationEnd, t.MagnificationStep)
	output += fmt.Sprintf("Frame Count: %d}", t.FrameCount)
	return output
}

func (t *Transition) Verify() error {
	if !(math.Abs(t.StartX) <= centerLimit) {
		t.StartX = 0
	}
	if !(math.Abs(t.StartY) <= centerLimit) {
		t.StartY = 0
	}
	if !(math.Abs(t.EndX) <= centerLimit) {
		t.EndX = 0
	}
	if !(math.Abs(t.EndY) <= centerLimit) {
		t.EndY = 0
	}
	if !(t.MagnificationEnd > 0) || math.IsInf(t.MagnificationEnd, 1) {
		t.MagnificationEnd = 1.5
	}
	if !(t.MagnificationStart > 0) || math.IsInf(t.MagnificationStart, 1) {
		t.MagnificationStart = 0.5
	}
	if !(t.MagnificationStep > 1) || math.IsInf(t.MagnificationStep, 1) {
		t.MagnificationStep = 1.1
	}

	/*
	 * The number of frames n satisfies
	 * magnification_start * magnification_step^n = magnification_end
	 * n = |log(magnification_end / magnification_start)| / log(magnification_step)
	 */
	ratio := math.Abs(math.Log(t.MagnificationEnd / t.MagnificationStart))
	t.FrameCount = uint(math.Ceil(ratio / math.Log(t.MagnificationStep)))
	if t.FrameCount == 0 {
		t.FrameCount = 1
	}
	return nil
}

// zoomingIn is true when the transition ends closer than it starts.
func (t *Transition) zoomingIn() bool {
	return t.MagnificationStart < t.MagnificationEnd
}

// frame returns the center and magnification of frame i in [0, FrameCount].
// Zooming in moves the center early, zooming out moves it late, so the
// destination is framed while it is large on screen.
func (t *Transition) frame(i uint) (complex128, float64) {
	fraction := float64(i) / float64(t.FrameCount)
	eased := misc.EaseInExpo(fraction)
	if t.zoomingIn() {
		eased = misc.EaseOutExpo(fraction)
	}
	if i == 0 {
		eased = 0
	}
	if i == t.FrameCount {
		eased = 1
	}
	center := complex(
		misc.LerpFloat64(t.StartX, t.EndX, eased),
		misc.LerpFloat64(t.StartY, t.EndY, eased),
	)
	magnification := t.MagnificationStart * math.Exp(fraction*math.Log(t.MagnificationEnd/t.MagnificationStart))
	return center, magnification
}

// RenderTransition renders FrameCount+1 frames of transition and hands each
// one to onFrame in order. It stops early when ctx is cancelled, when onFrame
// fails or when a frame cannot be shown at the requested magnification.
func (v *Viewer) RenderTransition(ctx context.Context, transition Transition, onFrame func(index int, frame *render.Frame) error) error {
	if transition.FrameCount == 0 {
		if err := transition.Verify(); err != nil {
			return err
		}
	}
	v.logger.Infof("Rendering transition %s", transition.String())

	view := v.viewport
	view.Reset()
	baseScale := view.Scale()

	var i uint
	for i = 0; i <= transition.FrameCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		center, magnification := transition.frame(i)
		if err := view.Set(center, baseScale/magnification); err != nil {
			return fmt.Errorf("transition frame %d: %w", i, err)
		}

		job := v.renderer.Render(view, v.mode)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-job.Done():
		}
		frame, err := job.Wait()
		if err != nil {
			return fmt.Errorf("transition frame %d: %w", i, err)
		}
		if err := onFrame(int(i), frame); err != nil {
			return err
		}
	}
	return nil
}
