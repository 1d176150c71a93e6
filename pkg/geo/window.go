package geo

import "fmt"

// Window is an inclusive pixel region on the 10 m grid.
type Window struct {
	MinX, MinY, MaxX, MaxY int
}

func (w Window) Width() int {
	return w.MaxX - w.MinX + 1
}

func (w Window) Height() int {
	return w.MaxY - w.MinY + 1
}

func (w Window) Area() int {
	return w.Width() * w.Height()
}

// Divide scales the window down for a coarser grid: 2 for the 20 m
// datasets, 6 for the 60 m datasets. Snap60 alignment guarantees the
// division is exact.
func (w Window) Divide(n int) Window {
	return Window{
		MinX: w.MinX / n,
		MinY: w.MinY / n,
		MaxX: w.MaxX / n,
		MaxY: w.MaxY / n,
	}
}

// Snap60 clamps an arbitrary pixel region to the raster extent and aligns
// it to 60 m boundaries (multiples of six 10 m pixels) so the 10/20/60 m
// grids nest exactly. Corner order does not matter.
//
// A region that clamps to nothing, which happens when the requested area
// lies outside the scene, is reported as an error.
func Snap60(x1, y1, x2, y2, width, height int) (Window, error) {
	if min(x1, x2) > width-1 || max(x1, x2) < 0 ||
		min(y1, y2) > height-1 || max(y1, y2) < 0 {
		return Window{}, fmt.Errorf("region of interest does not overlap the scene")
	}

	minX := max(min(x1, x2), 0)
	maxX := min(max(x1, x2), width-1)
	minY := max(min(y1, y2), 0)
	maxY := min(max(y1, y2), height-1)

	minX = minX / 6 * 6
	maxX = (maxX+1)/6*6 - 1
	minY = minY / 6 * 6
	maxY = (maxY+1)/6*6 - 1

	if maxX < minX || maxY < minY {
		return Window{}, fmt.Errorf("region of interest does not overlap the scene")
	}
	return Window{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// FullScene returns the snapped window covering an entire raster.
func FullScene(width, height int) (Window, error) {
	return Snap60(0, 0, width, height, width, height)
}
