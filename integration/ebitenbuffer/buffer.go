// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ebitenbuffer presents a grain.Volume through an Ebitengine image.
//
// Typical use inside an ebiten.Game:
//
//	func (g *game) Draw(screen *ebiten.Image) {
//	    _ = g.volume.Synchronize(g.buf)
//	    g.buf.Draw(screen, &ebiten.DrawImageOptions{})
//	    g.collider.DrawDebug(ebitenbuffer.NewLineDrawer(screen, g.view), g.pose, 1, color.White)
//	}
package ebitenbuffer

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/grain"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ErrNoImage is returned by region pushes before the first Replace.
var ErrNoImage = errors.New("ebitenbuffer: image not created yet")

// Buffer is a grain.Buffer backed by an *ebiten.Image.
//
// The image is allocated on the first Replace and reallocated when the
// source size changes. Buffer must be used from the game loop goroutine.
type Buffer struct {
	img *ebiten.Image
}

var _ grain.Buffer = (*Buffer)(nil)

// New creates an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Replace implements grain.Buffer.
func (b *Buffer) Replace(src *image.RGBA) error {
	sb := src.Bounds()
	if b.img == nil || !b.img.Bounds().Eq(image.Rect(0, 0, sb.Dx(), sb.Dy())) {
		if b.img != nil {
			b.img.Deallocate()
		}
		b.img = ebiten.NewImage(sb.Dx(), sb.Dy())
		grain.Logger().Debug("ebitenbuffer: image allocated", "width", sb.Dx(), "height", sb.Dy())
	}
	b.img.WritePixels(tightPixels(src))
	return nil
}

// ReplaceRegion implements grain.Buffer.
func (b *Buffer) ReplaceRegion(r image.Rectangle, src *image.RGBA) error {
	if b.img == nil {
		return ErrNoImage
	}
	if !r.In(b.img.Bounds()) {
		return fmt.Errorf("ebitenbuffer: region %v outside image %v", r, b.img.Bounds())
	}
	sub, ok := b.img.SubImage(r).(*ebiten.Image)
	if !ok {
		return fmt.Errorf("ebitenbuffer: unexpected sub-image type for %v", r)
	}
	sub.WritePixels(tightPixels(src))
	return nil
}

// Image returns the backing image, or nil before the first Replace.
func (b *Buffer) Image() *ebiten.Image {
	return b.img
}

// Draw draws the buffer onto screen. It does nothing before the first
// Replace.
func (b *Buffer) Draw(screen *ebiten.Image, op *ebiten.DrawImageOptions) {
	if b.img == nil {
		return
	}
	screen.DrawImage(b.img, op)
}

// tightPixels returns the pixels of src without row padding, as
// WritePixels expects.
func tightPixels(src *image.RGBA) []byte {
	sb := src.Bounds()
	rowBytes := sb.Dx() * 4
	if src.Stride == rowBytes && sb.Min == (image.Point{}) {
		return src.Pix[:rowBytes*sb.Dy()]
	}
	out := make([]byte, rowBytes*sb.Dy())
	for y := 0; y < sb.Dy(); y++ {
		i := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		copy(out[y*rowBytes:(y+1)*rowBytes], src.Pix[i:i+rowBytes])
	}
	return out
}

// LineDrawer implements grain.LineDrawer on an *ebiten.Image.
type LineDrawer struct {
	dst       *ebiten.Image
	view      grain.Matrix
	antialias bool
}

var _ grain.LineDrawer = (*LineDrawer)(nil)

// NewLineDrawer creates a drawer that maps world positions to dst pixels
// through view. Lines are anti-aliased until SetAntialias(false).
func NewLineDrawer(dst *ebiten.Image, view grain.Matrix) *LineDrawer {
	return &LineDrawer{dst: dst, view: view, antialias: true}
}

// SetAntialias turns line anti-aliasing on or off. Pixel-art views usually
// want it off so outlines stay on the cell grid.
func (d *LineDrawer) SetAntialias(on bool) {
	d.antialias = on
}

// Antialias reports whether lines are anti-aliased.
func (d *LineDrawer) Antialias() bool {
	return d.antialias
}

// DrawLine implements grain.LineDrawer. Thickness is in pixels.
func (d *LineDrawer) DrawLine(a, b grain.Point, thickness float64, c color.Color) {
	p := d.view.TransformPoint(a)
	q := d.view.TransformPoint(b)
	vector.StrokeLine(d.dst,
		float32(p.X), float32(p.Y), float32(q.X), float32(q.Y),
		float32(thickness), c, d.antialias)
}
