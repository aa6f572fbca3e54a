// Package mandelbrot computes escape times for the map z -> z*z + c.
package mandelbrot

import (
	"fmt"
	"math"

	"MandelbrotViewer/misc"
)

// periodLength is how many iterations pass before the saved orbit point used
// for periodicity checking is refreshed.
const periodLength = 20

// Result is the outcome for one point. Iteration is in [1, MaxIterations] when
// Escaped. Smooth is the continuous escape value in [0, MaxIterations]; bounded
// points carry MaxIterations in both fields.
type Result struct {
	Escaped   bool
	Iteration int
	Smooth    float64
}

func (r Result) String() string {
	if !r.Escaped {
		return "{Result Bounded}"
	}
	return fmt.Sprintf("{Result Escaped Iteration: %d Smooth: %f}", r.Iteration, r.Smooth)
}

type Mandelbrot struct {
	bailoutSquared float64
	logBailout     float64
	settings       Settings
}

func NewMandelbrot(settings Settings) Mandelbrot {
	return Mandelbrot{
		bailoutSquared: settings.Bailout * settings.Bailout,
		logBailout:     math.Log(settings.Bailout),
		settings:       settings,
	}
}

func (m *Mandelbrot) Settings() Settings {
	return m.settings
}

func (m *Mandelbrot) MaxIterations() int {
	return m.settings.MaxIterations
}

// Compute iterates from z = c and counts the steps until |z| exceeds the
// bailout radius. Compute is pure and safe to call from any goroutine.
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Optimized_escape_time_algorithms
func (m *Mandelbrot) Compute(c complex128) Result {
	cx, cy := real(c), imag(c)
	x, y := cx, cy
	x2, y2 := x*x, y*y

	checkPeriod := !m.settings.DisablePeriodicityCheck
	oldX, oldY := x, y
	period := 0

	for iteration := 1; iteration <= m.settings.MaxIterations; iteration++ {
		y = 2*x*y + cy
		x = x2 - y2 + cx
		x2 = x * x
		y2 = y * y

		// Written so an overflowed NaN magnitude also counts as escaped
		if !(x2+y2 <= m.bailoutSquared) {
			return m.escaped(iteration, x2+y2)
		}

		// An orbit that lands exactly on a saved point repeats forever.
		// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Periodicity_checking
		if checkPeriod {
			if x == oldX && y == oldY {
				break
			}
			period++
			if period > periodLength {
				period = 0
				oldX, oldY = x, y
			}
		}
	}

	return m.Bounded()
}

func (m *Mandelbrot) Bounded() Result {
	return Result{
		Iteration: m.settings.MaxIterations,
		Smooth:    float64(m.settings.MaxIterations),
	}
}

// escaped applies the normalized iteration count
// iteration - log2(ln|z| / ln(bailout)).
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Continuous_(smooth)_coloring
func (m *Mandelbrot) escaped(iteration int, magnitudeSquared float64) Result {
	logZ := math.Log(magnitudeSquared) / 2
	smooth := float64(iteration) - math.Log2(logZ/m.logBailout)
	return Result{
		Escaped:   true,
		Iteration: iteration,
		Smooth:    misc.Clamp(smooth, 0, float64(m.settings.MaxIterations)),
	}
}
