// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/grain"
	xdraw "golang.org/x/image/draw"
)

// Errors returned by ImageBuffer.
var (
	// ErrRegionOutOfBounds is returned when a region push does not fit the
	// buffer.
	ErrRegionOutOfBounds = errors.New("present: region out of bounds")

	// ErrSizeMismatch is returned when the source of a region push does not
	// have the region's dimensions.
	ErrSizeMismatch = errors.New("present: source size does not match region")
)

// Push records one upload received by an ImageBuffer.
type Push struct {
	// Full is true for Replace, false for ReplaceRegion.
	Full bool

	// Rect is the destination rectangle.
	Rect image.Rectangle
}

// Stats summarizes the uploads received by an ImageBuffer.
type Stats struct {
	Full    int // Replace calls
	Regions int // ReplaceRegion calls
	Bytes   int // pixel bytes received
}

// ImageBuffer is a grain.Buffer backed by an *image.RGBA.
//
// Replace adopts the source dimensions, the way a texture is recreated
// when its source changes size. ReplaceRegion patches the image in place.
//
// ImageBuffer is safe for concurrent use: pushes and snapshots may come
// from different goroutines.
type ImageBuffer struct {
	mu     sync.Mutex
	img    *image.RGBA
	pushes []Push
	stats  Stats
}

var _ grain.Buffer = (*ImageBuffer)(nil)

// NewImageBuffer creates a transparent buffer of the given size. A zero size
// is valid; the first Replace sets the real dimensions.
func NewImageBuffer(width, height int) *ImageBuffer {
	return &ImageBuffer{img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Replace implements grain.Buffer.
func (b *ImageBuffer) Replace(src *image.RGBA) error {
	sb := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	xdraw.Copy(img, image.Point{}, src, sb, xdraw.Src, nil)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.img = img
	b.record(Push{Full: true, Rect: img.Rect}, len(img.Pix))
	return nil
}

// ReplaceRegion implements grain.Buffer.
func (b *ImageBuffer) ReplaceRegion(r image.Rectangle, src *image.RGBA) error {
	sb := src.Bounds()
	if sb.Dx() != r.Dx() || sb.Dy() != r.Dy() {
		return fmt.Errorf("%w: region %v, source %v", ErrSizeMismatch, r, sb)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if r.Empty() || !r.In(b.img.Rect) {
		return fmt.Errorf("%w: region %v, buffer %v", ErrRegionOutOfBounds, r, b.img.Rect)
	}
	xdraw.Copy(b.img, r.Min, src, sb, xdraw.Src, nil)
	b.record(Push{Rect: r}, r.Dx()*r.Dy()*4)
	return nil
}

// record appends a push. Caller holds b.mu.
func (b *ImageBuffer) record(p Push, bytes int) {
	b.pushes = append(b.pushes, p)
	if p.Full {
		b.stats.Full++
	} else {
		b.stats.Regions++
	}
	b.stats.Bytes += bytes
	grain.Logger().Debug("present: push", "full", p.Full, "rect", p.Rect, "bytes", bytes)
}

// Snapshot returns a copy of the buffer contents.
func (b *ImageBuffer) Snapshot() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := image.NewRGBA(b.img.Rect)
	copy(out.Pix, b.img.Pix)
	return out
}

// Bounds returns the current buffer bounds.
func (b *ImageBuffer) Bounds() image.Rectangle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.img.Rect
}

// Pushes returns the uploads received since the last Reset, oldest first.
func (b *ImageBuffer) Pushes() []Push {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Push(nil), b.pushes...)
}

// Stats returns upload counters since the last Reset.
func (b *ImageBuffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Reset forgets recorded pushes and counters. The image is kept.
func (b *ImageBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushes = nil
	b.stats = Stats{}
}
