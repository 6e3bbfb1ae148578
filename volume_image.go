package grain

import (
	"fmt"
	"image"
	"image/color"
)

// NewVolumeFromImage builds a volume whose material cells mirror img: one
// image pixel per material cell. Wherever a pixel is not fully
// transparent, the cell holds template recoloured to that pixel; other
// cells are vacuum.
//
// The logical size is the pixel size divided by Scale, rounded up. The
// whole volume is marked dirty so the first Synchronize uploads it.
//
// Returns ErrInvalidMaterial if template was not built by NewMaterial and
// ErrInvalidSize for an empty image.
func NewVolumeFromImage(img image.Image, template Material) (*Volume, error) {
	if !template.Valid() {
		return nil, ErrInvalidMaterial
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image %v", ErrInvalidSize, b)
	}

	v, err := NewVolume(ceilDiv(b.Dx(), Scale), ceilDiv(b.Dy(), Scale))
	if err != nil {
		return nil, err
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			cell := Filled(template.WithColor(c))
			v.cells[v.Index1D(Index{X: x, Y: y})] = cell
			v.pixmap.SetCell(x, y, cell)
		}
	}

	v.tracker.MarkAll()
	return v, nil
}

// ceilDiv divides two positive integers rounding up.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
