package mandelbrot

import (
	"fmt"
	"math"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	DefaultBailout       = 2.0
	DefaultMaxIterations = 255
)

type Settings struct {
	logger bslogger.Logger

	Bailout                 float64
	DisablePeriodicityCheck bool
	MaxIterations           int
}

func (s *Settings) String() string {
	output := "\nMandelbrot settings\n"
	output += fmt.Sprintf("Bailout: %f\n", s.Bailout)
	output += fmt.Sprintf("Disable Periodicity Check: %t\n", s.DisablePeriodicityCheck)
	output += fmt.Sprintf("Max Iterations: %d\n", s.MaxIterations)
	return output
}

// Verify replaces unusable values with defaults.
func (s *Settings) Verify() error {
	s.logger = bslogger.NewLogger("MandelbrotSettings", bslogger.Normal, nil)

	// Below 2 points of the set would be reported as escaped
	if !(s.Bailout >= 2) || math.IsInf(s.Bailout, 1) {
		if s.Bailout != 0 {
			s.logger.Warningf("Bailout %f is unusable, using %f", s.Bailout, DefaultBailout)
		}
		s.Bailout = DefaultBailout
	}
	// s.DisablePeriodicityCheck defaults to false already
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}

	return nil
}
