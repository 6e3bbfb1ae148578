package grain

import (
	"fmt"
	"image"
	"iter"
)

// maxRegionPushes is the number of separate region uploads a PointSet
// synchronization may issue before it falls back to one bounding box.
const maxRegionPushes = 16

// Volume is a dense 2D grid of material cells.
//
// A Volume of width x height unit cells stores (width*Scale) x
// (height*Scale) material cells addressed by Index. Cells are kept in a
// flat row-major slice whose stride is derived from the capacity, not the
// size, so growing within capacity never moves existing cells.
//
// Every mutation is written to the backing Pixmap and reported to the
// active Tracker; Synchronize pushes the accumulated damage to a Buffer.
//
// Volume is NOT safe for concurrent use. Set and Synchronize must not be
// interleaved from different goroutines without external locking of the
// whole Volume.
type Volume struct {
	width, height       int // logical size in unit cells
	capWidth, capHeight int // logical capacity in unit cells

	cells   []Cell
	pixmap  *Pixmap
	tracker *Tracker
}

// NewVolume creates an all-vacuum volume of width x height unit cells.
// The dirty-tracking strategy is chosen from the number of material cells.
//
// Returns ErrInvalidSize if either dimension is not positive.
func NewVolume(width, height int) (*Volume, error) {
	return NewVolumeWithCapacity(width, height, width, height)
}

// NewVolumeWithCapacity is like NewVolume but reserves storage for
// capWidth x capHeight unit cells, so Resize up to that size does not
// reallocate.
func NewVolumeWithCapacity(width, height, capWidth, capHeight int) (*Volume, error) {
	if width <= 0 || height <= 0 || capWidth < width || capHeight < height {
		return nil, fmt.Errorf("%w: size=%dx%d, capacity=%dx%d",
			ErrInvalidSize, width, height, capWidth, capHeight)
	}

	v := &Volume{
		width:     width,
		height:    height,
		capWidth:  capWidth,
		capHeight: capHeight,
		cells:     make([]Cell, capWidth*Scale*capHeight*Scale),
		pixmap:    NewPixmap(capWidth*Scale, capHeight*Scale),
	}
	v.tracker = FromElements(v.CellCount())
	return v, nil
}

// MustVolume is like NewVolume but panics on error.
func MustVolume(width, height int) *Volume {
	v, err := NewVolume(width, height)
	if err != nil {
		panic(err)
	}
	return v
}

// Size returns the logical size in unit cells.
func (v *Volume) Size() (width, height int) {
	return v.width, v.height
}

// Capacity returns the allocated size in unit cells.
func (v *Volume) Capacity() (width, height int) {
	return v.capWidth, v.capHeight
}

// CellBounds returns the visible area in material cells.
func (v *Volume) CellBounds() image.Rectangle {
	return image.Rect(0, 0, v.width*Scale, v.height*Scale)
}

// CellCount returns the number of visible material cells. This is the
// count the dirty-tracking threshold is evaluated against.
func (v *Volume) CellCount() int {
	return v.width * Scale * v.height * Scale
}

// stride is the number of material cells per storage row.
func (v *Volume) stride() int {
	return v.capWidth * Scale
}

// InBounds reports whether i addresses a stored cell.
func (v *Volume) InBounds(i Index) bool {
	return i.X >= 0 && i.X < v.capWidth*Scale &&
		i.Y >= 0 && i.Y < v.capHeight*Scale
}

// Index1D returns the flat storage offset of i: x + y*stride, where the
// stride comes from the capacity. The result is only meaningful for
// in-bounds indices.
func (v *Volume) Index1D(i Index) int {
	return i.X + i.Y*v.stride()
}

// Get returns the material at i. Out-of-bounds indices and vacuum both
// report false, so neighbour sampling near an edge needs no extra checks.
func (v *Volume) Get(i Index) (Material, bool) {
	return v.Cell(i).Material()
}

// Cell returns the cell at i, or vacuum when i is out of bounds.
func (v *Volume) Cell(i Index) Cell {
	if !v.InBounds(i) {
		return Vacuum()
	}
	return v.cells[v.Index1D(i)]
}

// Set overwrites the cell at i and records it as dirty.
//
// Returns ErrOutOfBounds (leaving the volume untouched) when i is outside
// the grid, and ErrInvalidMaterial when c holds a material not built by
// NewMaterial.
func (v *Volume) Set(i Index, c Cell) error {
	if !v.InBounds(i) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, i.X, i.Y)
	}
	if m, ok := c.Material(); ok && !m.Valid() {
		return ErrInvalidMaterial
	}
	v.cells[v.Index1D(i)] = c
	v.pixmap.SetCell(i.X, i.Y, c)
	v.tracker.Register(i)
	return nil
}

// GetPixelAt maps p through MapPosition and returns the material there.
func (v *Volume) GetPixelAt(p Point) (Material, bool) {
	return v.Get(MapPosition(p))
}

// SetPixelAt maps p through MapPosition and sets the cell there.
// See Set for the error cases.
func (v *Volume) SetPixelAt(p Point, c Cell) error {
	return v.Set(MapPosition(p), c)
}

// Fill sets every in-bounds cell of r to c and returns how many cells were
// written. Indices of r outside the grid are skipped.
func (v *Volume) Fill(r Rect, c Cell) (int, error) {
	if m, ok := c.Material(); ok && !m.Valid() {
		return 0, ErrInvalidMaterial
	}
	n := 0
	for y := max(r.Lower.Y, 0); y <= min(r.Upper.Y, v.capHeight*Scale-1); y++ {
		for x := max(r.Lower.X, 0); x <= min(r.Upper.X, v.capWidth*Scale-1); x++ {
			if err := v.Set(Index{X: x, Y: y}, c); err == nil {
				n++
			}
		}
	}
	return n, nil
}

// All iterates the occupied cells of the visible area in row-major order.
func (v *Volume) All() iter.Seq2[Index, Material] {
	return func(yield func(Index, Material) bool) {
		for y := 0; y < v.height*Scale; y++ {
			row := y * v.stride()
			for x := 0; x < v.width*Scale; x++ {
				if m, ok := v.cells[row+x].Material(); ok {
					if !yield(Index{X: x, Y: y}, m) {
						return
					}
				}
			}
		}
	}
}

// Collides reports whether the cell at i holds a material on any layer of
// mask. Out-of-bounds and vacuum never collide.
func (v *Volume) Collides(i Index, mask uint8) bool {
	m, ok := v.Get(i)
	return ok && m.CollidesWith(mask)
}

// Pixmap returns the backing image. It must not be modified directly.
func (v *Volume) Pixmap() *Pixmap {
	return v.pixmap
}

// Strategy returns the active dirty-tracking strategy.
func (v *Volume) Strategy() Strategy {
	return v.tracker.Strategy()
}

// SetStrategy switches the dirty-tracking strategy, discarding pending
// damage. Synchronize first if pending updates must reach the buffer.
func (v *Volume) SetStrategy(s Strategy) {
	Logger().Debug("grain: tracker strategy set", "from", v.tracker.Strategy(), "to", s)
	v.tracker.SetStrategy(s)
}

// Pending returns the damage accumulated since the last Synchronize.
func (v *Volume) Pending() Damage {
	return v.tracker.Pending()
}

// MarkAll makes the next Synchronize push the whole visible area, for
// example after the presentation buffer was recreated.
func (v *Volume) MarkAll() {
	v.tracker.MarkAll()
}

// Resize changes the logical size.
//
// Within capacity no cell moves. Beyond it, capacity grows to the larger of
// the requested size and twice the old capacity on each axis that
// overflows; existing cells keep their indices. Cells outside a shrunken
// size stay stored and reappear when the volume grows back.
//
// The dirty-tracking threshold is re-evaluated for the new cell count. If
// the strategy changes, pending damage is discarded: synchronize before
// resizing when updates must not be dropped. When either axis grows the
// whole volume is marked dirty, so the next Synchronize replaces the
// presentation buffer at the new size instead of pushing regions it
// cannot hold yet.
func (v *Volume) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidSize, width, height)
	}

	if width > v.capWidth || height > v.capHeight {
		capWidth, capHeight := v.capWidth, v.capHeight
		if width > capWidth {
			capWidth = max(width, capWidth*2)
		}
		if height > capHeight {
			capHeight = max(height, capHeight*2)
		}
		v.grow(capWidth, capHeight)
	}

	grown := width > v.width || height > v.height
	v.width, v.height = width, height
	if v.tracker.UpdateFromElements(v.CellCount()) {
		Logger().Debug("grain: tracker strategy switched by resize",
			"cells", v.CellCount(), "strategy", v.tracker.Strategy())
	}
	if grown {
		v.tracker.MarkAll()
	}
	return nil
}

// grow reallocates storage for a larger capacity, copying rows so every
// cell keeps its 2D index.
func (v *Volume) grow(capWidth, capHeight int) {
	oldStride := v.stride()
	oldRows := v.capHeight * Scale
	newStride := capWidth * Scale

	cells := make([]Cell, newStride*capHeight*Scale)
	for y := 0; y < oldRows; y++ {
		copy(cells[y*newStride:y*newStride+oldStride], v.cells[y*oldStride:(y+1)*oldStride])
	}

	Logger().Debug("grain: volume capacity grown",
		"from", image.Pt(v.capWidth, v.capHeight), "to", image.Pt(capWidth, capHeight))

	v.cells = cells
	v.pixmap = v.pixmap.resized(capWidth*Scale, capHeight*Scale)
	v.capWidth, v.capHeight = capWidth, capHeight
}

// Synchronize pushes the damage accumulated since the last call to buf and
// clears the tracker:
//
//   - FullDamage: the whole visible area via Buffer.Replace.
//   - RectDamage: the inclusive bounding box via Buffer.ReplaceRegion.
//   - PointDamage: one ReplaceRegion per horizontal run of changed cells,
//     or the bounding box of all points when there are too many runs.
//   - no damage: nothing.
//
// Regions are clipped to the visible area. The tracker is cleared even when
// buf fails; the first buffer error is returned.
func (v *Volume) Synchronize(buf Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}
	defer v.tracker.Clear()

	switch d := v.tracker.Pending().(type) {
	case nil:
		return nil
	case FullDamage:
		src := v.pixmap.Extract(v.CellBounds())
		Logger().Debug("grain: synchronize full", "bounds", src.Rect, "bytes", len(src.Pix))
		if err := buf.Replace(src); err != nil {
			Logger().Warn("grain: full synchronize failed", "err", err)
			return fmt.Errorf("grain: synchronize full: %w", err)
		}
		return nil
	case RectDamage:
		return v.pushRegion(buf, d.Rect)
	case PointDamage:
		runs := coalesceRuns(d.Points)
		if len(runs) > maxRegionPushes {
			bounds := runs[0]
			for _, r := range runs[1:] {
				bounds = bounds.Union(r)
			}
			runs = []Rect{bounds}
		}
		for _, r := range runs {
			if err := v.pushRegion(buf, r); err != nil {
				return err
			}
		}
		return nil
	default:
		panic(fmt.Sprintf("grain: unknown damage %T", d))
	}
}

// pushRegion uploads the inclusive rectangle r, clipped to the visible area.
func (v *Volume) pushRegion(buf Buffer, r Rect) error {
	b := r.Bounds().Intersect(v.CellBounds())
	if b.Empty() {
		return nil
	}
	src := v.pixmap.Extract(b)
	Logger().Debug("grain: synchronize region", "bounds", b, "bytes", len(src.Pix))
	if err := buf.ReplaceRegion(b, src); err != nil {
		Logger().Warn("grain: region synchronize failed", "bounds", b, "err", err)
		return fmt.Errorf("grain: synchronize region %v: %w", b, err)
	}
	return nil
}

// coalesceRuns merges row-major sorted, distinct points into maximal
// horizontal runs.
func coalesceRuns(pts []Index) []Rect {
	runs := make([]Rect, 0, len(pts))
	for _, p := range pts {
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if last.Upper.Y == p.Y && last.Upper.X+1 == p.X {
				last.Upper.X = p.X
				continue
			}
		}
		runs = append(runs, RectOf(p))
	}
	return runs
}
