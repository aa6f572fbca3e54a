package render

import (
	"context"
	"time"

	"github.com/BrugadaSyndrome/bslogger"

	"MandelbrotViewer/mandelbrot"
	"MandelbrotViewer/task"
)

// worker computes escape results for the tasks of one job. Workers of the same
// job write disjoint regions of results.
type worker struct {
	generation     uint64
	id             int
	isCurrent      func(generation uint64) bool
	logger         bslogger.Logger
	mandelbrot     *mandelbrot.Mandelbrot
	mapper         func(px int, py int) complex128
	results        []mandelbrot.Result
	tasksCompleted int
	width          int
}

func (w *worker) processTasks(ctx context.Context, tasksTodo <-chan task.Task) error {
	var startTime = time.Now()

	for taskTodo := range tasksTodo {
		// Stop as soon as the job is cancelled or a newer job exists
		if err := ctx.Err(); err != nil {
			return err
		}
		if !w.isCurrent(w.generation) {
			return ErrSuperseded
		}

		rect := taskTodo.Rect
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			row := y * w.width
			for x := rect.Min.X; x < rect.Max.X; x++ {
				w.results[row+x] = w.mandelbrot.Compute(w.mapper(x, y))
			}
		}
		w.tasksCompleted++
	}

	w.logger.Debugf("Worker %d processed %d tasks for generation %d in %s", w.id, w.tasksCompleted, w.generation, time.Since(startTime))
	return nil
}
