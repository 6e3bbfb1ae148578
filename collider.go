package grain

import (
	"fmt"
	"image/color"
)

// Collider is a closed or open polygon outline in material cell
// coordinates: an ordered list of points and the edges between them.
//
// A Collider is immutable after construction.
type Collider struct {
	points []Index
	edges  [][2]int
}

// NewCollider creates a collider from points and edges.
// If edges is nil, a closed loop i -> (i+1) mod n is derived.
//
// Returns ErrTooFewPoints for fewer than two points and ErrInvalidEdge when
// an edge references a point that does not exist.
func NewCollider(points []Index, edges [][2]int) (*Collider, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}

	if edges == nil {
		edges = loopEdges(len(points))
	} else {
		for _, e := range edges {
			if e[0] < 0 || e[0] >= len(points) || e[1] < 0 || e[1] >= len(points) {
				return nil, fmt.Errorf("%w: edge %v with %d points", ErrInvalidEdge, e, len(points))
			}
		}
		edges = append([][2]int(nil), edges...)
	}

	return &Collider{
		points: append([]Index(nil), points...),
		edges:  edges,
	}, nil
}

// loopEdges connects n points into a closed loop.
func loopEdges(n int) [][2]int {
	edges := make([][2]int, n)
	for i := range edges {
		edges[i] = [2]int{i, (i + 1) % n}
	}
	return edges
}

// Points returns a copy of the outline points.
func (c *Collider) Points() []Index {
	return append([]Index(nil), c.points...)
}

// Edges returns a copy of the edge index pairs.
func (c *Collider) Edges() [][2]int {
	return append([][2]int(nil), c.edges...)
}

// PointsAsFloat returns the points shifted by offset and scaled to unit-cell
// space (divided by Scale), aligning them with positions accepted by
// Volume.GetPixelAt.
func (c *Collider) PointsAsFloat(offset Index) []Point {
	out := make([]Point, len(c.points))
	for i, p := range c.points {
		q := p.Add(offset)
		out[i] = Point{X: float64(q.X), Y: float64(q.Y)}.Div(Scale)
	}
	return out
}

// Bounds returns the inclusive bounding rectangle of the points.
func (c *Collider) Bounds() Rect {
	r := RectOf(c.points[0])
	for _, p := range c.points[1:] {
		r = r.Extend(p)
	}
	return r
}

// Probe returns the points, shifted by offset, whose volume cell collides
// on any layer of mask. Points outside the volume never collide.
func (c *Collider) Probe(v *Volume, offset Index, mask uint8) []Index {
	var hits []Index
	for _, p := range c.points {
		q := p.Add(offset)
		if v.Collides(q, mask) {
			hits = append(hits, q)
		}
	}
	return hits
}

// DrawDebug draws every edge through the transform m, one DrawLine call
// per edge, in edge order.
func (c *Collider) DrawDebug(d LineDrawer, m Matrix, thickness float64, col color.Color) {
	pts := c.PointsAsFloat(Index{})
	for _, e := range c.edges {
		d.DrawLine(m.TransformPoint(pts[e[0]]), m.TransformPoint(pts[e[1]]), thickness, col)
	}
}
