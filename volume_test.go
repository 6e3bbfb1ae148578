package grain

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// recordedPush is one upload seen by recordingBuffer.
type recordedPush struct {
	full bool
	rect image.Rectangle
	src  *image.RGBA
}

// recordingBuffer implements Buffer and records every push.
type recordingBuffer struct {
	pushes []recordedPush
	err    error
}

func (b *recordingBuffer) Replace(src *image.RGBA) error {
	b.pushes = append(b.pushes, recordedPush{full: true, rect: src.Bounds(), src: src})
	return b.err
}

func (b *recordingBuffer) ReplaceRegion(r image.Rectangle, src *image.RGBA) error {
	b.pushes = append(b.pushes, recordedPush{rect: r, src: src})
	return b.err
}

func (b *recordingBuffer) reset() {
	b.pushes = nil
}

var testRed = color.NRGBA{R: 255, A: 255}

func testMaterial(t *testing.T) Material {
	t.Helper()
	m, err := NewMaterial(testRed, 10, 0b01, 20)
	if err != nil {
		t.Fatalf("NewMaterial() error = %v", err)
	}
	return m
}

func mustSet(t *testing.T, v *Volume, m Material, idx ...Index) {
	t.Helper()
	for _, i := range idx {
		if err := v.Set(i, Filled(m)); err != nil {
			t.Fatalf("Set(%v) error = %v", i, err)
		}
	}
}

func TestNewVolumeInvalidSize(t *testing.T) {
	tests := []struct {
		name             string
		w, h, capW, capH int
	}{
		{"zero width", 0, 4, 4, 4},
		{"negative height", 4, -1, 4, 4},
		{"capacity below width", 4, 4, 3, 4},
		{"capacity below height", 4, 4, 4, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVolumeWithCapacity(tt.w, tt.h, tt.capW, tt.capH)
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("NewVolumeWithCapacity() error = %v, want %v", err, ErrInvalidSize)
			}
		})
	}
}

func TestVolumeSetGetRoundTrip(t *testing.T) {
	v := MustVolume(4, 4)
	m := testMaterial(t)
	i := Idx(3, 5)

	if _, ok := v.Get(i); ok {
		t.Fatal("new volume should be vacuum")
	}
	mustSet(t, v, m, i)
	got, ok := v.Get(i)
	if !ok || got != m {
		t.Errorf("Get(%v) = %v, %v; want %v, true", i, got, ok, m)
	}

	if err := v.Set(i, Vacuum()); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.Get(i); ok {
		t.Error("Get() after Set(Vacuum) reports material")
	}
}

func TestVolumeBoundsSafety(t *testing.T) {
	v := MustVolume(4, 3)
	m := testMaterial(t)

	outside := []Index{
		{X: -1, Y: 0},
		{X: 0, Y: -1},
		{X: 8, Y: 0},
		{X: 0, Y: 6},
		{X: 1 << 20, Y: 1 << 20},
	}
	for _, i := range outside {
		if _, ok := v.Get(i); ok {
			t.Errorf("Get(%v) reported material outside the grid", i)
		}
		if !v.Cell(i).IsVacuum() {
			t.Errorf("Cell(%v) should be vacuum", i)
		}
		if err := v.Set(i, Filled(m)); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%v) error = %v, want %v", i, err, ErrOutOfBounds)
		}
	}
	if d := v.Pending(); d != nil {
		t.Errorf("Pending() = %#v after rejected sets, want nil", d)
	}

	// Last valid cell.
	mustSet(t, v, m, Idx(7, 5))
}

func TestVolumeSetInvalidMaterial(t *testing.T) {
	v := MustVolume(2, 2)
	if err := v.Set(Idx(0, 0), Filled(Material{})); !errors.Is(err, ErrInvalidMaterial) {
		t.Errorf("Set(zero material) error = %v, want %v", err, ErrInvalidMaterial)
	}
	if _, ok := v.Get(Idx(0, 0)); ok {
		t.Error("rejected material was stored")
	}
}

func TestVolumeIndex1DUsesCapacityStride(t *testing.T) {
	v, err := NewVolumeWithCapacity(2, 2, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		i    Index
		want int
	}{
		{Idx(0, 0), 0},
		{Idx(1, 0), 1},
		{Idx(0, 1), 10},
		{Idx(1, 2), 21},
		{Idx(9, 5), 59},
	}
	for _, tt := range tests {
		if got := v.Index1D(tt.i); got != tt.want {
			t.Errorf("Index1D(%v) = %d, want %d", tt.i, got, tt.want)
		}
	}
}

func TestVolumePixelAt(t *testing.T) {
	v := MustVolume(4, 4)
	m := testMaterial(t)

	if err := v.SetPixelAt(Pt(1.5, 1.1), Filled(m)); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.Get(Idx(3, 2)); !ok {
		t.Error("SetPixelAt(1.5, 1.1) did not set cell (3,2)")
	}
	if got, ok := v.GetPixelAt(Pt(1.5, 1.1)); !ok || got != m {
		t.Errorf("GetPixelAt() = %v, %v; want %v, true", got, ok, m)
	}
	if err := v.SetPixelAt(Pt(-0.2, 0.5), Filled(m)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetPixelAt(negative) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestVolumePixelAtUnaddressable(t *testing.T) {
	m := testMaterial(t)
	tests := []struct {
		name string
		p    Point
	}{
		{"NaN", Pt(math.NaN(), math.NaN())},
		{"NaN x", Pt(math.NaN(), 0.5)},
		{"+Inf", Pt(math.Inf(1), math.Inf(1))},
		{"-Inf", Pt(math.Inf(-1), math.Inf(-1))},
		{"1e19", Pt(1e19, 1e19)},
		{"-1e19", Pt(-1e19, 0.5)},
		{"max float", Pt(math.MaxFloat64, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := MustVolume(4, 4)
			v.SetStrategy(StrategyPointSet)
			if err := v.SetPixelAt(tt.p, Filled(m)); !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("SetPixelAt(%v) error = %v, want %v", tt.p, err, ErrOutOfBounds)
			}
			if _, ok := v.GetPixelAt(tt.p); ok {
				t.Errorf("GetPixelAt(%v) found a material", tt.p)
			}
			for i := range v.All() {
				t.Errorf("cell %v was written", i)
			}
			if d := v.Pending(); d != nil {
				t.Errorf("Pending() = %v, want nil", d)
			}
		})
	}
}

func TestSynchronizeFullStrategy(t *testing.T) {
	v := MustVolume(4, 4) // 64 material cells
	if v.Strategy() != StrategyFull {
		t.Fatalf("Strategy() = %v, want %v", v.Strategy(), StrategyFull)
	}
	m := testMaterial(t)
	mustSet(t, v, m, Idx(3, 3))

	buf := &recordingBuffer{}
	if err := v.Synchronize(buf); err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	if len(buf.pushes) != 1 || !buf.pushes[0].full {
		t.Fatalf("pushes = %+v, want one full push", buf.pushes)
	}
	src := buf.pushes[0].src
	if src.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Errorf("full push bounds = %v, want 8x8", src.Bounds())
	}
	if got := src.RGBAAt(3, 3); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (3,3) = %v, want opaque red", got)
	}
	if got := src.RGBAAt(0, 0); got.A != 0 {
		t.Errorf("pixel (0,0) = %v, want transparent", got)
	}

	buf.reset()
	if err := v.Synchronize(buf); err != nil {
		t.Fatal(err)
	}
	if len(buf.pushes) != 0 {
		t.Errorf("second Synchronize pushed %d times, want 0", len(buf.pushes))
	}
}

func TestSynchronizeSquareStrategy(t *testing.T) {
	v := MustVolume(8, 8) // 256 material cells
	if v.Strategy() != StrategySquare {
		t.Fatalf("Strategy() = %v, want %v", v.Strategy(), StrategySquare)
	}
	m := testMaterial(t)
	mustSet(t, v, m, Idx(2, 2), Idx(5, 7), Idx(1, 9))

	want := Rect{Lower: Idx(1, 2), Upper: Idx(5, 9)}
	if d, ok := v.Pending().(RectDamage); !ok || d.Rect != want {
		t.Fatalf("Pending() = %#v, want %v", v.Pending(), want)
	}

	buf := &recordingBuffer{}
	if err := v.Synchronize(buf); err != nil {
		t.Fatal(err)
	}
	if len(buf.pushes) != 1 || buf.pushes[0].full {
		t.Fatalf("pushes = %+v, want one region push", buf.pushes)
	}
	p := buf.pushes[0]
	if p.rect != image.Rect(1, 2, 6, 10) {
		t.Errorf("region = %v, want (1,2)-(6,10)", p.rect)
	}
	if p.rect.Dx() != 5 || p.rect.Dy() != 8 {
		t.Errorf("region size = %dx%d, want 5x8", p.rect.Dx(), p.rect.Dy())
	}
	if p.src.Bounds() != image.Rect(0, 0, 5, 8) {
		t.Errorf("src bounds = %v, want 5x8 at origin", p.src.Bounds())
	}
	// (5,7) is at (4,5) inside the region.
	if got := p.src.RGBAAt(4, 5); got.A != 255 {
		t.Errorf("src pixel for (5,7) = %v, want opaque", got)
	}

	buf.reset()
	_ = v.Synchronize(buf)
	if len(buf.pushes) != 0 {
		t.Errorf("second Synchronize pushed %d times, want 0", len(buf.pushes))
	}
}

func TestSynchronizePointSet(t *testing.T) {
	v := MustVolume(8, 8)
	v.SetStrategy(StrategyPointSet)
	m := testMaterial(t)
	mustSet(t, v, m, Idx(3, 1), Idx(1, 1), Idx(2, 1), Idx(5, 1), Idx(0, 4), Idx(2, 1))

	buf := &recordingBuffer{}
	if err := v.Synchronize(buf); err != nil {
		t.Fatal(err)
	}
	want := []image.Rectangle{
		image.Rect(1, 1, 4, 2),
		image.Rect(5, 1, 6, 2),
		image.Rect(0, 4, 1, 5),
	}
	if len(buf.pushes) != len(want) {
		t.Fatalf("got %d pushes, want %d: %+v", len(buf.pushes), len(want), buf.pushes)
	}
	for i, p := range buf.pushes {
		if p.full || p.rect != want[i] {
			t.Errorf("push %d = %+v, want region %v", i, p, want[i])
		}
	}

	buf.reset()
	_ = v.Synchronize(buf)
	if len(buf.pushes) != 0 {
		t.Errorf("second Synchronize pushed %d times, want 0", len(buf.pushes))
	}
}

func TestSynchronizePointSetFallsBackToBounds(t *testing.T) {
	v := MustVolume(16, 16)
	v.SetStrategy(StrategyPointSet)
	m := testMaterial(t)
	for y := 0; y <= maxRegionPushes; y++ {
		mustSet(t, v, m, Idx(y%3, y))
	}

	buf := &recordingBuffer{}
	if err := v.Synchronize(buf); err != nil {
		t.Fatal(err)
	}
	if len(buf.pushes) != 1 {
		t.Fatalf("got %d pushes, want 1", len(buf.pushes))
	}
	if want := image.Rect(0, 0, 3, maxRegionPushes+1); buf.pushes[0].rect != want {
		t.Errorf("region = %v, want %v", buf.pushes[0].rect, want)
	}
}

func TestResizeSwitchesStrategy(t *testing.T) {
	v := MustVolume(5, 5) // 100 cells
	if v.Strategy() != StrategyFull {
		t.Fatalf("Strategy() = %v, want %v", v.Strategy(), StrategyFull)
	}
	mustSet(t, v, testMaterial(t), Idx(1, 1))

	if err := v.Resize(5, 10); err != nil { // 200 cells
		t.Fatal(err)
	}
	if v.Strategy() != StrategySquare {
		t.Errorf("Strategy() = %v, want %v", v.Strategy(), StrategySquare)
	}

	buf := &recordingBuffer{}
	if err := v.Synchronize(buf); err != nil {
		t.Fatal(err)
	}
	if len(buf.pushes) != 1 || !buf.pushes[0].full {
		t.Fatalf("Synchronize after growth pushed %+v, want one full push", buf.pushes)
	}
	if want := image.Rect(0, 0, 10, 20); buf.pushes[0].rect != want {
		t.Errorf("full push bounds = %v, want %v", buf.pushes[0].rect, want)
	}
}

func TestResizeShrinkKeepsRegionDamage(t *testing.T) {
	v := MustVolume(8, 8)
	if err := v.Resize(7, 8); err != nil {
		t.Fatal(err)
	}
	mustSet(t, v, testMaterial(t), Idx(2, 3))
	want := RectDamage{Rect: RectOf(Idx(2, 3))}
	if got := v.Pending(); got != want {
		t.Errorf("Pending() = %v, want %v", got, want)
	}
}

func TestResizeKeepsExplicitStrategy(t *testing.T) {
	v := MustVolume(8, 8)
	v.SetStrategy(StrategyPointSet)
	if err := v.Resize(9, 9); err != nil {
		t.Fatal(err)
	}
	if v.Strategy() != StrategyPointSet {
		t.Errorf("Strategy() = %v, want %v", v.Strategy(), StrategyPointSet)
	}
}

func TestResizeGrowPreservesCells(t *testing.T) {
	v := MustVolume(2, 2)
	m := testMaterial(t)
	mustSet(t, v, m, Idx(3, 3), Idx(0, 1))

	if err := v.Resize(5, 3); err != nil {
		t.Fatal(err)
	}
	if w, h := v.Size(); w != 5 || h != 3 {
		t.Errorf("Size() = %dx%d, want 5x3", w, h)
	}
	if w, h := v.Capacity(); w != 5 || h != 4 {
		t.Errorf("Capacity() = %dx%d, want 5x4", w, h)
	}
	for _, i := range []Index{Idx(3, 3), Idx(0, 1)} {
		if _, ok := v.Get(i); !ok {
			t.Errorf("cell %v lost by growth", i)
		}
		if v.Pixmap().Pixel(i.X, i.Y).A != 255 {
			t.Errorf("pixmap pixel %v lost by growth", i)
		}
	}
	mustSet(t, v, m, Idx(9, 5))
}

func TestResizeShrinkKeepsStorage(t *testing.T) {
	v := MustVolume(4, 4)
	m := testMaterial(t)
	mustSet(t, v, m, Idx(7, 7))

	if err := v.Resize(1, 1); err != nil {
		t.Fatal(err)
	}
	if v.CellBounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("CellBounds() = %v, want 2x2", v.CellBounds())
	}
	if err := v.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	if _, ok := v.Get(Idx(7, 7)); !ok {
		t.Error("cell outside shrunken size was dropped")
	}

	if err := v.Resize(0, 3); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0, 3) error = %v, want %v", err, ErrInvalidSize)
	}
}

func TestSynchronizeClipsToVisibleArea(t *testing.T) {
	v, err := NewVolumeWithCapacity(8, 8, 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	m := testMaterial(t)
	mustSet(t, v, m, Idx(20, 20))

	buf := &recordingBuffer{}
	_ = v.Synchronize(buf)
	if len(buf.pushes) != 0 {
		t.Fatalf("hidden change pushed %+v", buf.pushes)
	}

	mustSet(t, v, m, Idx(2, 2), Idx(20, 20))
	_ = v.Synchronize(buf)
	if len(buf.pushes) != 1 || buf.pushes[0].rect != image.Rect(2, 2, 16, 16) {
		t.Errorf("pushes = %+v, want one region (2,2)-(16,16)", buf.pushes)
	}
}

func TestSynchronizeMarkAll(t *testing.T) {
	v := MustVolume(8, 8)
	v.MarkAll()
	buf := &recordingBuffer{}
	_ = v.Synchronize(buf)
	if len(buf.pushes) != 1 || !buf.pushes[0].full {
		t.Fatalf("pushes = %+v, want one full push", buf.pushes)
	}
	if buf.pushes[0].rect != image.Rect(0, 0, 16, 16) {
		t.Errorf("full push = %v, want 16x16", buf.pushes[0].rect)
	}
}

func TestSynchronizeErrors(t *testing.T) {
	v := MustVolume(8, 8)
	if err := v.Synchronize(nil); !errors.Is(err, ErrNilBuffer) {
		t.Errorf("Synchronize(nil) error = %v, want %v", err, ErrNilBuffer)
	}

	bufErr := errors.New("device lost")
	mustSet(t, v, testMaterial(t), Idx(1, 1))
	err := v.Synchronize(&recordingBuffer{err: bufErr})
	if !errors.Is(err, bufErr) {
		t.Errorf("Synchronize() error = %v, want wrapped %v", err, bufErr)
	}
	if d := v.Pending(); d != nil {
		t.Errorf("Pending() = %#v after failed push, want nil", d)
	}
}

func TestVolumeFill(t *testing.T) {
	v := MustVolume(4, 4)
	m := testMaterial(t)

	n, err := v.Fill(Rect{Lower: Idx(-2, 6), Upper: Idx(1, 10)}, Filled(m))
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 { // x 0..1, y 6..7
		t.Errorf("Fill() = %d, want 4", n)
	}
	count := 0
	for range v.All() {
		count++
	}
	if count != 4 {
		t.Errorf("All() yielded %d cells, want 4", count)
	}

	if _, err := v.Fill(RectOf(Idx(0, 0)), Filled(Material{})); !errors.Is(err, ErrInvalidMaterial) {
		t.Errorf("Fill(zero material) error = %v, want %v", err, ErrInvalidMaterial)
	}
}

func TestVolumeAllOrderAndStop(t *testing.T) {
	v := MustVolume(4, 4)
	m := testMaterial(t)
	mustSet(t, v, m, Idx(5, 1), Idx(2, 0), Idx(0, 1))

	var got []Index
	for i := range v.All() {
		got = append(got, i)
	}
	want := []Index{Idx(2, 0), Idx(0, 1), Idx(5, 1)}
	if len(got) != len(want) {
		t.Fatalf("All() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	n := 0
	for range v.All() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("break after first cell iterated %d times", n)
	}
}

func TestVolumeCollides(t *testing.T) {
	v := MustVolume(2, 2)
	mustSet(t, v, testMaterial(t), Idx(1, 1)) // layers 0b01

	if !v.Collides(Idx(1, 1), 0b01) {
		t.Error("Collides() on matching layer = false")
	}
	if v.Collides(Idx(1, 1), 0b10) {
		t.Error("Collides() on other layer = true")
	}
	if v.Collides(Idx(0, 0), 0xff) {
		t.Error("Collides() on vacuum = true")
	}
	if v.Collides(Idx(-1, 0), 0xff) {
		t.Error("Collides() out of bounds = true")
	}
}

func TestNewVolumeFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 13, 12)) // 3x2, offset origin
	img.SetNRGBA(10, 10, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(12, 11, color.NRGBA{G: 255, A: 128})

	m := testMaterial(t)
	v, err := NewVolumeFromImage(img, m)
	if err != nil {
		t.Fatalf("NewVolumeFromImage() error = %v", err)
	}
	if w, h := v.Size(); w != 2 || h != 1 {
		t.Errorf("Size() = %dx%d, want 2x1", w, h)
	}

	got, ok := v.Get(Idx(0, 0))
	if !ok || got.BaseColor() != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("Get(0,0) = %v, %v; want red", got.BaseColor(), ok)
	}
	if got.MaxIntegrity() != m.MaxIntegrity() || got.CollisionLayers() != m.CollisionLayers() {
		t.Error("template properties not kept")
	}
	if got, ok := v.Get(Idx(2, 1)); !ok || got.BaseColor().G != 255 {
		t.Errorf("Get(2,1) = %v, %v; want green", got.BaseColor(), ok)
	}
	if _, ok := v.Get(Idx(1, 0)); ok {
		t.Error("transparent pixel became material")
	}

	if _, ok := v.Pending().(FullDamage); !ok {
		t.Fatalf("Pending() = %#v, want FullDamage", v.Pending())
	}
	buf := &recordingBuffer{}
	_ = v.Synchronize(buf)
	if len(buf.pushes) != 1 || buf.pushes[0].rect != image.Rect(0, 0, 4, 2) {
		t.Errorf("pushes = %+v, want one full 4x2 push", buf.pushes)
	}
}

func TestNewVolumeFromImageErrors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if _, err := NewVolumeFromImage(img, Material{}); !errors.Is(err, ErrInvalidMaterial) {
		t.Errorf("invalid template error = %v, want %v", err, ErrInvalidMaterial)
	}
	if _, err := NewVolumeFromImage(image.NewRGBA(image.Rectangle{}), testMaterial(t)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("empty image error = %v, want %v", err, ErrInvalidSize)
	}
}
