// Package render turns viewports into frames on a pool of workers.
//
// Every call to Render starts a new generation and cancels the one before it.
// Only the newest generation may publish a frame, so the published frame is
// always a complete image of a single viewport.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"MandelbrotViewer/mandelbrot"
	"MandelbrotViewer/palette"
	"MandelbrotViewer/task"
	"MandelbrotViewer/viewport"
)

type Stats struct {
	Completed  uint64
	Computed   uint64
	Recolored  uint64
	Started    uint64
	Superseded uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("Renders [Started: %d] [Completed: %d] [Superseded: %d] | Grids [Computed: %d] [Recolored: %d]",
		s.Started, s.Completed, s.Superseded, s.Computed, s.Recolored)
}

type Renderer struct {
	cache      *lru.Cache[viewport.Fingerprint, []mandelbrot.Result]
	cancel     context.CancelFunc
	ctx        context.Context
	current    *Job
	frame      atomic.Pointer[Frame]
	generation atomic.Uint64
	jobWait    sync.WaitGroup
	logger     bslogger.Logger
	mandelbrot mandelbrot.Mandelbrot
	mutex      sync.Mutex
	palette    palette.Palette
	settings   Settings
	stopped    bool

	completed  atomic.Uint64
	computed   atomic.Uint64
	recolored  atomic.Uint64
	started    atomic.Uint64
	superseded atomic.Uint64
}

// NewRenderer expects verified settings for all three components.
func NewRenderer(settings Settings, m mandelbrot.Mandelbrot, p palette.Palette) (*Renderer, error) {
	cache, err := lru.New[viewport.Fingerprint, []mandelbrot.Result](settings.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("unable to create grid cache: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Renderer{
		cache:      cache,
		cancel:     cancel,
		ctx:        ctx,
		logger:     bslogger.NewLogger("Renderer", bslogger.Normal, nil),
		mandelbrot: m,
		palette:    p,
		settings:   settings,
	}, nil
}

// Render supersedes any job in flight and starts rendering v in mode. It
// returns immediately.
func (r *Renderer) Render(v viewport.Viewport, mode palette.Mode) *Job {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	generation := r.generation.Add(1)
	if r.current != nil {
		r.current.cancel()
	}
	job := newJob(r.ctx, generation, v, mode)
	r.current = job

	if r.stopped {
		job.cancel()
		r.supersedeLocked(job)
		close(job.done)
		return job
	}

	r.started.Add(1)
	r.jobWait.Add(1)
	go r.run(job)
	return job
}

// Frame returns the most recently published frame, or nil before the first
// render completes.
func (r *Renderer) Frame() *Frame {
	return r.frame.Load()
}

func (r *Renderer) Stats() Stats {
	return Stats{
		Completed:  r.completed.Load(),
		Computed:   r.computed.Load(),
		Recolored:  r.recolored.Load(),
		Started:    r.started.Load(),
		Superseded: r.superseded.Load(),
	}
}

// Wait blocks until every job started so far has finished.
func (r *Renderer) Wait() {
	r.jobWait.Wait()
}

// Stop cancels all work and waits for it to wind down. Renders requested after
// Stop are superseded immediately.
func (r *Renderer) Stop() {
	r.mutex.Lock()
	r.stopped = true
	r.cancel()
	r.mutex.Unlock()

	r.jobWait.Wait()
	r.logger.Info(r.Stats().String())
}

func (r *Renderer) isCurrent(generation uint64) bool {
	return r.generation.Load() == generation
}

func (r *Renderer) run(job *Job) {
	defer r.jobWait.Done()
	defer close(job.done)
	defer job.cancel()

	job.state.Store(int32(Rendering))
	var startTime = time.Now()

	fingerprint := job.viewport.Fingerprint(r.mandelbrot.MaxIterations(), r.mandelbrot.Settings().Bailout)
	results, cached := r.cache.Get(fingerprint)
	if !cached {
		var err error
		results, err = r.compute(job)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, ErrSuperseded) {
				r.logger.Errorf("Generation %d failed: %s", job.generation, err)
			}
			r.supersede(job)
			return
		}
		r.cache.Add(fingerprint, results)
		r.computed.Add(1)
	} else {
		r.recolored.Add(1)
	}

	if !r.isCurrent(job.generation) || job.ctx.Err() != nil {
		r.supersede(job)
		return
	}

	frame := &Frame{
		Fingerprint: fingerprint,
		Generation:  job.generation,
		Image:       r.colorize(results, job.viewport, job.mode),
		Mode:        job.mode,
		Viewport:    job.viewport,
	}
	if r.publish(job, frame) {
		r.logger.Debugf("Rendered generation %d (cached: %t) in %s", job.generation, cached, time.Since(startTime))
	}
}

// compute fans the tasks of a job out to the worker pool and fills a fresh
// escape grid.
func (r *Renderer) compute(job *Job) ([]mandelbrot.Result, error) {
	width, height := job.viewport.Width(), job.viewport.Height()
	tasks, err := task.NewTasks(image.Rect(0, 0, width, height), r.settings.TaskGeneration, r.settings.TileSize)
	if err != nil {
		return nil, err
	}

	tasksTodo := make(chan task.Task, len(tasks))
	for _, t := range tasks {
		tasksTodo <- t
	}
	close(tasksTodo)

	results := make([]mandelbrot.Result, width*height)
	mapper := job.viewport.Mapper()
	g, ctx := errgroup.WithContext(job.ctx)
	for id := 0; id < min(r.settings.Workers, len(tasks)); id++ {
		w := &worker{
			generation: job.generation,
			id:         id,
			isCurrent:  r.isCurrent,
			logger:     r.logger,
			mandelbrot: &r.mandelbrot,
			mapper:     mapper,
			results:    results,
			width:      width,
		}
		g.Go(func() error {
			return w.processTasks(ctx, tasksTodo)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Renderer) colorize(results []mandelbrot.Result, v viewport.Viewport, mode palette.Mode) *image.RGBA {
	width, height := v.Width(), v.Height()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, r.palette.Colorize(results[y*width+x], mode))
		}
	}
	return img
}

func (r *Renderer) publish(job *Job, frame *Frame) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isCurrent(job.generation) || job.ctx.Err() != nil {
		r.supersedeLocked(job)
		return false
	}
	job.frame = frame
	r.frame.Store(frame)
	job.state.Store(int32(Complete))
	r.completed.Add(1)
	return true
}

func (r *Renderer) supersede(job *Job) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.supersedeLocked(job)
}

func (r *Renderer) supersedeLocked(job *Job) {
	job.state.Store(int32(Superseded))
	r.superseded.Add(1)
	r.logger.Debugf("Generation %d superseded", job.generation)
}
