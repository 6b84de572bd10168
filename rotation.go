package gde060ba

import (
	"fmt"
	"image"
)

// Rotation is the clockwise rotation of the logical image relative to the
// native panel orientation.
type Rotation uint8

// Supported rotations.
const (
	NoRotation Rotation = iota
	Rotate90            // Rotate 90° clockwise
	Rotate180           // Rotate 180°
	Rotate270           // Rotate 270° clockwise
)

func (r Rotation) String() string {
	switch r {
	case NoRotation:
		return "0°"
	case Rotate90:
		return "90°"
	case Rotate180:
		return "180°"
	case Rotate270:
		return "270°"
	}
	return fmt.Sprintf("Rotation(%d)", uint8(r))
}

// logicalSize returns the visible width and height of a w×h panel under r.
func logicalSize(r Rotation, w, h int) (int, int) {
	if r == Rotate90 || r == Rotate270 {
		return h, w
	}
	return w, h
}

// nativePoint maps the logical point (x, y) to native panel coordinates of a
// w×h panel. ok is false when the point is outside the visible rectangle.
func nativePoint(x, y int, r Rotation, w, h int) (p image.Point, ok bool) {
	lw, lh := logicalSize(r, w, h)
	if x < 0 || x >= lw || y < 0 || y >= lh {
		return image.Point{}, false
	}
	switch r {
	case Rotate90:
		return image.Pt(w-1-y, x), true
	case Rotate180:
		return image.Pt(w-1-x, h-1-y), true
	case Rotate270:
		return image.Pt(y, h-1-x), true
	}
	return image.Pt(x, y), true
}
