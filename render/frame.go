package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"MandelbrotViewer/palette"
	"MandelbrotViewer/viewport"
)

// Frame is a finished image together with the view that produced it. Frames
// are never modified after they are published.
type Frame struct {
	Fingerprint viewport.Fingerprint
	Generation  uint64
	Image       *image.RGBA
	Mode        palette.Mode
	Viewport    viewport.Viewport
}

func (f *Frame) String() string {
	output := "{Frame "
	output += fmt.Sprintf("Generation: %d ", f.Generation)
	output += fmt.Sprintf("Mode: %s ", f.Mode)
	output += fmt.Sprintf("Viewport: %s}", f.Viewport.String())
	return output
}

// Save encodes the frame as PNG or JPEG depending on the extension of path.
func (f *Frame) Save(path string) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return fmt.Errorf("unsupported image extension %q", ext)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create image: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	if ext == ".png" {
		err = png.Encode(file, f.Image)
	} else {
		err = jpeg.Encode(file, f.Image, nil)
	}
	if err != nil {
		return fmt.Errorf("unable to save image: %w", err)
	}
	return nil
}
