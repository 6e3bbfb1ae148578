package grain

import (
	"image"
	"image/color"
)

// Buffer is the presentation side of a Volume: typically a GPU texture or
// window image that mirrors the Volume's Pixmap.
//
// The Volume decides what to push; the Buffer decides how to upload it.
// Implementations live in the present and integration packages.
type Buffer interface {
	// Replace uploads the whole image. src bounds start at (0, 0).
	Replace(src *image.RGBA) error

	// ReplaceRegion uploads src into the rectangle r of the buffer.
	// src is exactly r.Dx() x r.Dy() with bounds starting at (0, 0).
	ReplaceRegion(r image.Rectangle, src *image.RGBA) error
}

// LineDrawer is the primitive used by Collider.DrawDebug.
type LineDrawer interface {
	// DrawLine draws a segment from a to b with the given stroke width.
	DrawLine(a, b Point, thickness float64, c color.Color)
}
