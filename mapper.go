package grain

import "math"

// Scale is the subdivision factor of a unit cell: every unit cell of a
// Volume holds a Scale x Scale block of material cells.
const Scale = 2

// MapPosition converts a continuous position into a material cell index
// using diamond subdivision.
//
// The two diagonals y = x and y = 1 - x split each unit cell into four
// triangles, and each triangle maps to one cell of the unit cell's 2x2
// block:
//
//	left   -> (0, 0)
//	bottom -> (1, 0)
//	right  -> (1, 1)
//	top    -> (0, 1)
//
// where "bottom" is the triangle touching y = 0. A remainder exactly on a
// diagonal falls on the side where the strict comparison fails.
// Negative positions map to negative indices. Positions that are NaN,
// infinite or too large to address map to Unaddressable.
func MapPosition(p Point) Index {
	cell := p.Floor()
	if !addressable(cell.X) || !addressable(cell.Y) {
		return Unaddressable
	}
	rx := p.X - cell.X
	ry := p.Y - cell.Y

	var dx, dy int
	if ry < rx {
		dx = 1
	}
	if rx+ry > 1 {
		dy = 1
	}

	return Index{
		X: int(cell.X)*Scale + dx,
		Y: int(cell.Y)*Scale + dy,
	}
}

// Unaddressable is the index MapPosition returns for positions with no
// cell index. It is out of bounds for every Volume.
var Unaddressable = Index{X: math.MinInt, Y: math.MinInt}

// maxUnitCoord bounds floored unit coordinates so that scaling them by
// Scale and adding the sub-cell offset cannot overflow int, even after
// the bound is rounded to float64.
const maxUnitCoord = math.MaxInt / (2 * Scale)

// addressable reports whether the floored coordinate f converts to an int
// unit coordinate without overflow. NaN fails every comparison.
func addressable(f float64) bool {
	return f >= -maxUnitCoord && f <= maxUnitCoord
}

// triangleCentroids holds the centroid of each diamond triangle inside the
// unit square, keyed by the sub-cell offset it maps to.
var triangleCentroids = [Scale][Scale]Point{
	{{X: 1.0 / 6, Y: 0.5}, {X: 0.5, Y: 5.0 / 6}}, // dx=0: left, top
	{{X: 0.5, Y: 1.0 / 6}, {X: 5.0 / 6, Y: 0.5}}, // dx=1: bottom, right
}

// CellCenter returns the centroid of the triangle that MapPosition maps to
// i. MapPosition(CellCenter(i)) == i for every index.
func CellCenter(i Index) Point {
	cx := floorDiv(i.X, Scale)
	cy := floorDiv(i.Y, Scale)
	c := triangleCentroids[i.X-cx*Scale][i.Y-cy*Scale]
	return Point{X: float64(cx) + c.X, Y: float64(cy) + c.Y}
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	return int(math.Floor(float64(a) / float64(b)))
}
