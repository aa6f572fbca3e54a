// Package task splits a frame into rectangles that workers render independently.
package task

import (
	"errors"
	"fmt"
	"image"
)

const (
	Row Generation = iota
	Column
	Image
	Grid
)

type Generation int

func (g Generation) String() string {
	if g < Row || g > Grid {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return []string{
		"Row", "Column", "Image", "Grid",
	}[g]
}

type Task struct {
	ID   uint
	Rect image.Rectangle
}

func (t *Task) String() string {
	output := "{Task "
	output += fmt.Sprintf("ID: %d ", t.ID)
	output += fmt.Sprintf("Rect: %v ", t.Rect)
	output += fmt.Sprintf("Pixel Count: %d}", t.PixelCount())
	return output
}

func (t *Task) PixelCount() int {
	return t.Rect.Dx() * t.Rect.Dy()
}

// NewTasks covers bounds with disjoint tasks. Row and Column hand out one task
// per pixel row or column, Image a single task, and Grid tileSize square tiles
// that shrink at the right and bottom edges.
func NewTasks(bounds image.Rectangle, generation Generation, tileSize int) ([]Task, error) {
	if bounds.Empty() {
		return nil, errors.New("cannot generate tasks for an empty image")
	}

	var rects []image.Rectangle
	switch generation {
	case Row:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			rects = append(rects, image.Rect(bounds.Min.X, y, bounds.Max.X, y+1))
		}
	case Column:
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rects = append(rects, image.Rect(x, bounds.Min.Y, x+1, bounds.Max.Y))
		}
	case Image:
		rects = append(rects, bounds)
	case Grid:
		if tileSize <= 0 {
			return nil, fmt.Errorf("tile size must be positive, got %d", tileSize)
		}
		rects = splitRect(bounds, tileSize, tileSize)
	default:
		return nil, fmt.Errorf("unknown generation type: %d", generation)
	}

	tasks := make([]Task, len(rects))
	for i, r := range rects {
		tasks[i] = Task{ID: uint(i), Rect: r}
	}
	return tasks, nil
}

func splitRect(r image.Rectangle, tileW int, tileH int) []image.Rectangle {
	var tiles []image.Rectangle
	for oy := r.Min.Y; oy < r.Max.Y; oy += tileH {
		for ox := r.Min.X; ox < r.Max.X; ox += tileW {
			tiles = append(tiles, image.Rect(ox, oy, ox+tileW, oy+tileH).Intersect(r))
		}
	}
	return tiles
}
