// Package viewport maps between the pixel grid and the region of the complex
// plane it shows.
//
// The canonical unit is scale: plane units per pixel. Pixel (width/2, height/2)
// sits on the center, pixel rows grow downward while the imaginary axis grows
// upward.
package viewport

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	ErrInvalidZoomFactor = errors.New("zoom factor must be a positive finite number")
	ErrPrecisionFloor    = errors.New("zoom would exceed floating point precision at this center")
	ErrOutOfRangePixel   = errors.New("pixel coordinate is outside the viewport")
	ErrScaleRange        = errors.New("scale is outside the supported range")
)

const (
	// MaxScale bounds zooming out. At this scale the whole escape radius is a
	// fraction of one pixel.
	MaxScale = 1e3

	// MinScale is an absolute floor independent of the center.
	MinScale = 1e-300

	// precisionULPs is how many units in the last place of the largest visible
	// coordinate one pixel must span.
	precisionULPs = 4
)

// Viewport is a value type. Copies are independent snapshots.
type Viewport struct {
	origin complex128
	panX   int
	panY   int
	scale  float64
	width  int
	height int

	initialCenter complex128
	initialScale  float64
}

func New(center complex128, scale float64, width int, height int) (Viewport, error) {
	if width <= 0 || height <= 0 {
		return Viewport{}, fmt.Errorf("resolution %dx%d must be positive", width, height)
	}
	if cmplx.IsNaN(center) || cmplx.IsInf(center) {
		return Viewport{}, fmt.Errorf("center %v is not finite", center)
	}
	if !(scale >= MinScale && scale <= MaxScale) {
		return Viewport{}, fmt.Errorf("scale %g: %w", scale, ErrScaleRange)
	}

	return Viewport{
		origin:        center,
		scale:         scale,
		width:         width,
		height:        height,
		initialCenter: center,
		initialScale:  scale,
	}, nil
}

// FitScale returns the scale at which a width x height grid shows at least
// planeWidth x planeHeight of the plane.
func FitScale(planeWidth float64, planeHeight float64, width int, height int) float64 {
	return math.Max(planeWidth/float64(width), planeHeight/float64(height))
}

func (v Viewport) Center() complex128 {
	return complex(
		real(v.origin)+float64(v.panX)*v.scale,
		imag(v.origin)-float64(v.panY)*v.scale,
	)
}

func (v Viewport) Scale() float64 {
	return v.scale
}

func (v Viewport) Width() int {
	return v.width
}

func (v Viewport) Height() int {
	return v.height
}

func (v Viewport) String() string {
	c := v.Center()
	return fmt.Sprintf("{Viewport Center: (%g, %g) Scale: %g Resolution: %dx%d}", real(c), imag(c), v.scale, v.width, v.height)
}

// Contains reports whether (px, py) lies in [0,width) x [0,height).
func (v Viewport) Contains(px float64, py float64) bool {
	return px >= 0 && px < float64(v.width) && py >= 0 && py < float64(v.height)
}

func (v Viewport) PixelToPlane(px float64, py float64) (complex128, error) {
	if !v.Contains(px, py) {
		return 0, fmt.Errorf("(%g, %g) in %dx%d: %w", px, py, v.width, v.height, ErrOutOfRangePixel)
	}
	return v.planeAt(px, py), nil
}

// PlaneToPixel is the inverse of PixelToPlane. The result may fall outside the
// grid when c is not visible.
func (v Viewport) PlaneToPixel(c complex128) (float64, float64) {
	center := v.Center()
	px := (real(c)-real(center))/v.scale + float64(v.width)/2
	py := float64(v.height)/2 - (imag(c)-imag(center))/v.scale
	return px, py
}

// Mapper returns the unchecked pixel to plane mapping for integer pixels. The
// center is resolved once so render loops do not repeat it per pixel.
func (v Viewport) Mapper() func(px int, py int) complex128 {
	center := v.Center()
	halfWidth := float64(v.width) / 2
	halfHeight := float64(v.height) / 2
	scale := v.scale
	return func(px int, py int) complex128 {
		return complex(
			real(center)+(float64(px)-halfWidth)*scale,
			imag(center)-(float64(py)-halfHeight)*scale,
		)
	}
}

func (v Viewport) planeAt(px float64, py float64) complex128 {
	center := v.Center()
	return complex(
		real(center)+(px-float64(v.width)/2)*v.scale,
		imag(center)-(py-float64(v.height)/2)*v.scale,
	)
}

// Zoom multiplies the scale by factor while keeping the plane point under
// (px, py) under the same pixel. factor < 1 zooms in. On error the viewport is
// left unchanged.
func (v *Viewport) Zoom(px float64, py float64, factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 1) {
		return fmt.Errorf("factor %g: %w", factor, ErrInvalidZoomFactor)
	}
	anchor, err := v.PixelToPlane(px, py)
	if err != nil {
		return err
	}

	newScale := v.scale * factor
	if newScale > MaxScale {
		return fmt.Errorf("scale %g above %g: %w", newScale, float64(MaxScale), ErrScaleRange)
	}

	dx := px - float64(v.width)/2
	dy := py - float64(v.height)/2
	newCenter := complex(real(anchor)-dx*newScale, imag(anchor)+dy*newScale)
	if newScale < MinScale || newScale < v.precisionFloor(newCenter, newScale) {
		return fmt.Errorf("scale %g at center (%g, %g): %w", newScale, real(newCenter), imag(newCenter), ErrPrecisionFloor)
	}

	v.origin = newCenter
	v.panX, v.panY = 0, 0
	v.scale = newScale
	return nil
}

// Pan shifts the view by whole pixels. Panning back by the opposite delta
// restores the center exactly.
func (v *Viewport) Pan(dx int, dy int) {
	v.panX += dx
	v.panY += dy
}

// Set moves the view to center at scale, keeping the initial view for Reset.
func (v *Viewport) Set(center complex128, scale float64) error {
	if cmplx.IsNaN(center) || cmplx.IsInf(center) {
		return fmt.Errorf("center %v is not finite", center)
	}
	if !(scale >= MinScale && scale <= MaxScale) {
		return fmt.Errorf("scale %g: %w", scale, ErrScaleRange)
	}
	if scale < v.precisionFloor(center, scale) {
		return fmt.Errorf("scale %g at center (%g, %g): %w", scale, real(center), imag(center), ErrPrecisionFloor)
	}
	v.origin = center
	v.panX, v.panY = 0, 0
	v.scale = scale
	return nil
}

func (v *Viewport) Reset() {
	v.origin = v.initialCenter
	v.panX, v.panY = 0, 0
	v.scale = v.initialScale
}

// precisionFloor is the smallest scale at which neighbouring pixels still map
// to distinct plane coordinates everywhere in view.
func (v Viewport) precisionFloor(center complex128, scale float64) float64 {
	extent := math.Max(
		math.Abs(real(center))+float64(v.width)/2*scale,
		math.Abs(imag(center))+float64(v.height)/2*scale,
	)
	return precisionULPs * (math.Nextafter(extent, math.Inf(1)) - extent)
}

// Fingerprint identifies everything an escape grid depends on.
type Fingerprint struct {
	CenterRe      float64
	CenterIm      float64
	Scale         float64
	Width         int
	Height        int
	MaxIterations int
	Bailout       float64
}

func (v Viewport) Fingerprint(maxIterations int, bailout float64) Fingerprint {
	center := v.Center()
	return Fingerprint{
		CenterRe:      real(center),
		CenterIm:      imag(center),
		Scale:         v.scale,
		Width:         v.width,
		Height:        v.height,
		MaxIterations: maxIterations,
		Bailout:       bailout,
	}
}
