package parts

import "image"

// Region is an axis-aligned crop rectangle in source-image pixel coordinates.
// All fields are non-negative; X+Width and Y+Height must stay inside the
// source image. Staying in bounds is the caller's contract, checked at the
// transport boundary rather than re-validated by the crop itself.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// In reports whether the region lies fully within an image of the given bounds.
func (r Region) In(bounds image.Rectangle) bool {
	if r.X < 0 || r.Y < 0 || r.Width <= 0 || r.Height <= 0 {
		return false
	}
	return r.Rect().In(bounds)
}
