package grain

import (
	"image"
	"math"
)

// Point represents a continuous 2D position in unit-cell space.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Div returns the point divided by a scalar.
func (p Point) Div(s float64) Point {
	return Point{X: p.X / s, Y: p.Y / s}
}

// Floor returns the point with both components rounded down.
func (p Point) Floor() Point {
	return Point{X: math.Floor(p.X), Y: math.Floor(p.Y)}
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	d := p.Sub(q)
	return math.Sqrt(d.X*d.X + d.Y*d.Y)
}

// Index addresses one material cell of a Volume's double-resolution grid.
// Components may be negative; such indices are always out of bounds.
type Index struct {
	X, Y int
}

// Idx is a convenience function to create an Index.
func Idx(x, y int) Index {
	return Index{X: x, Y: y}
}

// Add returns the component-wise sum of two indices.
func (i Index) Add(j Index) Index {
	return Index{X: i.X + j.X, Y: i.Y + j.Y}
}

// Point returns the index as an image.Point.
func (i Index) Point() image.Point {
	return image.Point{X: i.X, Y: i.Y}
}

// Rect is an axis-aligned rectangle of cell indices with both corners
// inclusive. A Rect with Lower == Upper covers exactly one cell.
type Rect struct {
	Lower, Upper Index
}

// RectOf returns the one-cell rectangle at i.
func RectOf(i Index) Rect {
	return Rect{Lower: i, Upper: i}
}

// Width returns the number of columns covered by r.
func (r Rect) Width() int {
	return r.Upper.X - r.Lower.X + 1
}

// Height returns the number of rows covered by r.
func (r Rect) Height() int {
	return r.Upper.Y - r.Lower.Y + 1
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.Upper.X < r.Lower.X || r.Upper.Y < r.Lower.Y
}

// Contains reports whether i lies inside r.
func (r Rect) Contains(i Index) bool {
	return i.X >= r.Lower.X && i.X <= r.Upper.X &&
		i.Y >= r.Lower.Y && i.Y <= r.Upper.Y
}

// Extend returns the smallest rectangle containing both r and i.
// Each bound is merged independently with min/max.
func (r Rect) Extend(i Index) Rect {
	return Rect{
		Lower: Index{X: min(r.Lower.X, i.X), Y: min(r.Lower.Y, i.Y)},
		Upper: Index{X: max(r.Upper.X, i.X), Y: max(r.Upper.Y, i.Y)},
	}
}

// Union returns the smallest rectangle containing both r and s.
func (r Rect) Union(s Rect) Rect {
	return r.Extend(s.Lower).Extend(s.Upper)
}

// Bounds converts r to a half-open image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.Lower.X, r.Lower.Y, r.Upper.X+1, r.Upper.Y+1)
}
