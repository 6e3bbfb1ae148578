// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package debugdraw rasterizes debug geometry onto CPU images.
//
// ImageDrawer implements grain.LineDrawer with anti-aliased thick segments,
// so collider outlines can be inspected in screenshots and tests without a
// GPU:
//
//	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
//	d := debugdraw.New(img, grain.Scaling(8, 8))
//	collider.DrawDebug(d, grain.Rigid(angle, x, y), 1.5, color.White)
package debugdraw

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/grain"
	"golang.org/x/image/vector"
)

// ImageDrawer draws lines onto a draw.Image.
//
// Line endpoints are mapped from world space to pixels by the view matrix;
// thickness is in pixels. ImageDrawer is NOT safe for concurrent use.
type ImageDrawer struct {
	dst   draw.Image
	view  grain.Matrix
	z     *vector.Rasterizer
	lines int
}

var _ grain.LineDrawer = (*ImageDrawer)(nil)

// New creates a drawer targeting dst. view maps world positions to pixel
// positions relative to dst.Bounds().Min.
func New(dst draw.Image, view grain.Matrix) *ImageDrawer {
	b := dst.Bounds()
	return &ImageDrawer{
		dst:  dst,
		view: view,
		z:    vector.NewRasterizer(b.Dx(), b.Dy()),
	}
}

// Lines returns how many lines were drawn.
func (d *ImageDrawer) Lines() int {
	return d.lines
}

// DrawLine implements grain.LineDrawer. Non-positive thickness draws
// nothing.
func (d *ImageDrawer) DrawLine(a, b grain.Point, thickness float64, c color.Color) {
	if thickness <= 0 {
		return
	}
	d.lines++

	p := d.view.TransformPoint(a)
	q := d.view.TransformPoint(b)
	half := thickness / 2

	dx, dy := q.X-p.X, q.Y-p.Y
	length := math.Hypot(dx, dy)
	var ux, uy float64
	if length < 1e-9 {
		ux, uy = 1, 0
	} else {
		ux, uy = dx/length, dy/length
	}
	// Square caps: extend both ends by half the thickness.
	p = grain.Pt(p.X-ux*half, p.Y-uy*half)
	q = grain.Pt(q.X+ux*half, q.Y+uy*half)
	nx, ny := -uy*half, ux*half

	bounds := d.dst.Bounds()
	d.z.Reset(bounds.Dx(), bounds.Dy())
	d.z.DrawOp = draw.Over
	d.z.MoveTo(float32(p.X+nx), float32(p.Y+ny))
	d.z.LineTo(float32(q.X+nx), float32(q.Y+ny))
	d.z.LineTo(float32(q.X-nx), float32(q.Y-ny))
	d.z.LineTo(float32(p.X-nx), float32(p.Y-ny))
	d.z.ClosePath()
	d.z.Draw(d.dst, bounds, image.NewUniform(c), image.Point{})
}
