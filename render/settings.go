package render

import (
	"fmt"
	"runtime"

	"github.com/BrugadaSyndrome/bslogger"

	"MandelbrotViewer/task"
)

const (
	DefaultCacheSize = 8
	DefaultTileSize  = 64
)

type Settings struct {
	logger bslogger.Logger

	CacheSize      int
	TaskGeneration task.Generation
	TileSize       int
	Workers        int
}

func (s *Settings) String() string {
	output := "\nRender settings\n"
	output += fmt.Sprintf("Cache Size: %d\n", s.CacheSize)
	output += fmt.Sprintf("Task Generation: %s\n", s.TaskGeneration)
	output += fmt.Sprintf("Tile Size: %d\n", s.TileSize)
	output += fmt.Sprintf("Workers: %d\n", s.Workers)
	return output
}

func (s *Settings) Verify() error {
	s.logger = bslogger.NewLogger("RenderSettings", bslogger.Normal, nil)

	if s.CacheSize <= 0 {
		s.CacheSize = DefaultCacheSize
	}
	if s.TaskGeneration < task.Row || s.TaskGeneration > task.Grid {
		s.logger.Warningf("Unknown task generation %d, using %s", s.TaskGeneration, task.Grid)
		s.TaskGeneration = task.Grid
	}
	if s.TileSize <= 0 {
		s.TileSize = DefaultTileSize
	}
	if s.Workers <= 0 {
		s.Workers = runtime.NumCPU()
	}
	return nil
}
