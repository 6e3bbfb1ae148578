package grain

import (
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Pixmap is the CPU-side image of a Volume: one premultiplied RGBA pixel per
// material cell. Vacuum cells are fully transparent.
type Pixmap struct {
	img *image.RGBA
}

// NewPixmap creates a transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.img.Rect.Dx()
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.img.Rect.Dy()
}

// Data returns the raw pixel data (premultiplied RGBA, 4 bytes per pixel).
func (p *Pixmap) Data() []uint8 {
	return p.img.Pix
}

// SetCell writes the pixel for c at (x, y). Out-of-bounds coordinates are
// silently ignored.
func (p *Pixmap) SetCell(x, y int, c Cell) {
	if !(image.Point{X: x, Y: y}).In(p.img.Rect) {
		return
	}
	i := p.img.PixOffset(x, y)
	px := p.img.Pix[i : i+4 : i+4]
	m, ok := c.Material()
	if !ok {
		px[0], px[1], px[2], px[3] = 0, 0, 0, 0
		return
	}
	px[0], px[1], px[2], px[3] = premultiply(m.BaseColor())
}

// Pixel returns the premultiplied colour at (x, y). Out-of-bounds
// coordinates return transparent.
func (p *Pixmap) Pixel(x, y int) color.RGBA {
	return p.img.RGBAAt(x, y)
}

// ToImage returns a copy of the whole pixmap.
func (p *Pixmap) ToImage() *image.RGBA {
	return p.Extract(p.img.Rect)
}

// Extract copies the sub-rectangle r into a new image whose bounds start
// at (0, 0). r is clipped to the pixmap.
func (p *Pixmap) Extract(r image.Rectangle) *image.RGBA {
	r = r.Intersect(p.img.Rect)
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	xdraw.Copy(dst, image.Point{}, p.img, r, xdraw.Src, nil)
	return dst
}

// resized returns a pixmap of the new dimensions holding the overlapping
// part of p at the same coordinates.
func (p *Pixmap) resized(width, height int) *Pixmap {
	next := NewPixmap(width, height)
	xdraw.Copy(next.img, image.Point{}, p.img, p.img.Rect, xdraw.Src, nil)
	return next
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, p.img)
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	return p.img.At(x, y)
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return p.img.Rect
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}
