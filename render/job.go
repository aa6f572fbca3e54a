package render

import (
	"context"
	"errors"
	"sync/atomic"

	"MandelbrotViewer/palette"
	"MandelbrotViewer/viewport"
)

var ErrSuperseded = errors.New("render superseded by a newer request")

const (
	Idle State = iota
	Rendering
	Complete
	Superseded
)

type State int32

func (s State) String() string {
	return []string{
		"Idle", "Rendering", "Complete", "Superseded",
	}[s]
}

// Job is one render request. A job ends Complete with a frame or Superseded
// without one.
type Job struct {
	cancel     context.CancelFunc
	ctx        context.Context
	done       chan struct{}
	frame      *Frame
	generation uint64
	mode       palette.Mode
	state      atomic.Int32
	viewport   viewport.Viewport
}

func newJob(ctx context.Context, generation uint64, v viewport.Viewport, mode palette.Mode) *Job {
	ctx, cancel := context.WithCancel(ctx)
	return &Job{
		cancel:     cancel,
		ctx:        ctx,
		done:       make(chan struct{}),
		generation: generation,
		mode:       mode,
		viewport:   v,
	}
}

func (j *Job) Generation() uint64 {
	return j.generation
}

func (j *Job) State() State {
	return State(j.state.Load())
}

func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job has finished and returns its frame, or
// ErrSuperseded when a newer request or Stop ended it first.
func (j *Job) Wait() (*Frame, error) {
	<-j.done
	if j.State() != Complete {
		return nil, ErrSuperseded
	}
	return j.frame, nil
}
