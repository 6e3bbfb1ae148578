// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpubuffer

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/grain"
	xdraw "golang.org/x/image/draw"
)

// Common errors returned by Buffer operations.
var (
	// ErrClosed is returned when operations are attempted on a closed buffer.
	ErrClosed = errors.New("gpubuffer: buffer is closed")

	// ErrNilCreator is returned when a nil TextureCreator is passed.
	ErrNilCreator = errors.New("gpubuffer: nil TextureCreator")

	// ErrNoTexture is returned by region pushes and Draw before the first
	// Replace created the texture.
	ErrNoTexture = errors.New("gpubuffer: texture not created yet")

	// ErrNotDrawable is returned when the texture does not implement
	// gpucontext.Texture.
	ErrNotDrawable = errors.New("gpubuffer: texture is not a gpucontext.Texture")
)

// textureDestroyer is the interface for destroying textures.
// This matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// TextureCreator creates textures from premultiplied RGBA pixel data.
type TextureCreator interface {
	NewTextureFromRGBA(width, height int, data []byte) (any, error)
}

// dataUpdater matches gpucontext.TextureUpdater.
type dataUpdater interface {
	UpdateData(data []byte) error
}

// regionUpdater is implemented by textures that can upload a
// sub-rectangle directly. Textures without it receive a full re-upload of
// the CPU mirror.
type regionUpdater interface {
	UpdateRegion(x, y, width, height int, data []byte) error
}

// Buffer is a grain.Buffer backed by a GPU texture.
//
// The texture is created on the first Replace and recreated when the
// source size changes. Region pushes patch a CPU mirror of the texture and
// upload either the region alone, when the texture supports it, or the
// whole mirror.
//
// Buffer is NOT safe for concurrent use. Call it from the goroutine that
// owns the GPU context.
type Buffer struct {
	creator TextureCreator
	texture any
	mirror  *image.RGBA
	closed  bool
}

var _ grain.Buffer = (*Buffer)(nil)

// New creates a Buffer that creates its texture with creator.
func New(creator TextureCreator) (*Buffer, error) {
	if creator == nil {
		return nil, ErrNilCreator
	}
	return &Buffer{creator: creator}, nil
}

// Replace implements grain.Buffer.
func (b *Buffer) Replace(src *image.RGBA) error {
	if b.closed {
		return ErrClosed
	}

	sb := src.Bounds()
	mirror := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	xdraw.Copy(mirror, image.Point{}, src, sb, xdraw.Src, nil)

	if b.texture != nil && b.mirror != nil && b.mirror.Rect.Eq(mirror.Rect) {
		if err := b.upload(mirror.Pix); err != nil {
			return err
		}
		b.mirror = mirror
		return nil
	}

	tex, err := b.creator.NewTextureFromRGBA(sb.Dx(), sb.Dy(), mirror.Pix)
	if err != nil {
		return fmt.Errorf("gpubuffer: NewTextureFromRGBA failed: %w", err)
	}
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}
	grain.Logger().Debug("gpubuffer: texture created", "width", sb.Dx(), "height", sb.Dy())

	b.destroyTexture()
	b.texture = tex
	b.mirror = mirror
	return nil
}

// ReplaceRegion implements grain.Buffer.
func (b *Buffer) ReplaceRegion(r image.Rectangle, src *image.RGBA) error {
	if b.closed {
		return ErrClosed
	}
	if b.texture == nil {
		return ErrNoTexture
	}
	if !r.In(b.mirror.Rect) {
		return fmt.Errorf("gpubuffer: region %v outside texture %v", r, b.mirror.Rect)
	}

	xdraw.Copy(b.mirror, r.Min, src, src.Bounds(), xdraw.Src, nil)

	if ru, ok := b.texture.(regionUpdater); ok {
		if err := ru.UpdateRegion(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), src.Pix); err != nil {
			return fmt.Errorf("gpubuffer: region update failed: %w", err)
		}
		return nil
	}
	return b.upload(b.mirror.Pix)
}

// upload re-uploads the whole texture.
func (b *Buffer) upload(data []byte) error {
	updater, ok := b.texture.(dataUpdater)
	if !ok {
		return nil
	}
	if err := updater.UpdateData(data); err != nil {
		return fmt.Errorf("gpubuffer: texture update failed: %w", err)
	}
	return nil
}

// Texture returns the current GPU texture, or nil before the first Replace.
func (b *Buffer) Texture() any {
	return b.texture
}

// Size returns the texture dimensions, or zero before the first Replace.
func (b *Buffer) Size() (width, height int) {
	if b.mirror == nil {
		return 0, 0
	}
	return b.mirror.Rect.Dx(), b.mirror.Rect.Dy()
}

// DrawTo draws the texture at (x, y) through dc.
func (b *Buffer) DrawTo(dc gpucontext.TextureDrawer, x, y float32) error {
	if b.closed {
		return ErrClosed
	}
	if b.texture == nil {
		return ErrNoTexture
	}
	tex, ok := b.texture.(gpucontext.Texture)
	if !ok {
		return ErrNotDrawable
	}
	return dc.DrawTexture(tex, x, y)
}

// Close releases the texture. Close is idempotent.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.destroyTexture()
	b.mirror = nil
	b.creator = nil
	return nil
}

func (b *Buffer) destroyTexture() {
	if b.texture == nil {
		return
	}
	if d, ok := b.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	b.texture = nil
}
