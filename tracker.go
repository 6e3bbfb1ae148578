package grain

import (
	"fmt"
	"slices"
)

// ElementThreshold is the cell count above which a volume tracks a dirty
// bounding box instead of re-uploading everything.
const ElementThreshold = 128

// Strategy selects how a Tracker accumulates dirty cells.
type Strategy uint8

const (
	// StrategyFull keeps a single flag: any change re-synchronizes the
	// whole volume. Cheapest bookkeeping, best for small grids.
	StrategyFull Strategy = iota

	// StrategySquare keeps the bounding box of all changed cells.
	StrategySquare

	// StrategyPointSet keeps every changed index.
	StrategyPointSet
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyFull:
		return "full"
	case StrategySquare:
		return "square"
	case StrategyPointSet:
		return "pointset"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy converts a strategy name back to a Strategy.
func ParseStrategy(name string) (Strategy, bool) {
	switch name {
	case "full":
		return StrategyFull, true
	case "square":
		return StrategySquare, true
	case "pointset":
		return StrategyPointSet, true
	default:
		return 0, false
	}
}

// strategyFor picks the strategy for a grid of count cells.
func strategyFor(count int) Strategy {
	if count > ElementThreshold {
		return StrategySquare
	}
	return StrategyFull
}

// Damage describes what a Tracker accumulated since the last Clear.
// It is one of FullDamage, RectDamage or PointDamage; a nil Damage means
// nothing changed.
type Damage interface {
	isDamage()
}

// FullDamage means the whole volume must be re-synchronized.
type FullDamage struct{}

// RectDamage is the inclusive bounding box of all changed cells.
type RectDamage struct {
	Rect Rect
}

// PointDamage lists every changed cell in row-major order.
type PointDamage struct {
	Points []Index
}

func (FullDamage) isDamage()  {}
func (RectDamage) isDamage()  {}
func (PointDamage) isDamage() {}

// Tracker accumulates the cells mutated since the last synchronization.
//
// Exactly one strategy is active at a time. Switching strategies discards
// any accumulated state, so callers that must not lose updates synchronize
// first.
//
// Tracker is NOT safe for concurrent use.
type Tracker struct {
	strategy Strategy

	// elements is the grid cell count the threshold was last evaluated for.
	elements int

	// full is set by MarkAll in every strategy and by Register under
	// StrategyFull.
	full bool

	// StrategySquare state.
	bounds    Rect
	hasBounds bool

	// StrategyPointSet state.
	points map[Index]struct{}
}

// NewTracker creates an empty tracker using strategy s.
func NewTracker(s Strategy) *Tracker {
	t := &Tracker{strategy: s}
	if s == StrategyPointSet {
		t.points = make(map[Index]struct{})
	}
	return t
}

// FromElements creates a tracker suited to a grid of count cells:
// StrategySquare above ElementThreshold, StrategyFull otherwise.
func FromElements(count int) *Tracker {
	t := NewTracker(strategyFor(count))
	t.elements = count
	return t
}

// Strategy returns the active strategy.
func (t *Tracker) Strategy() Strategy {
	return t.strategy
}

// SetStrategy replaces the tracker state with an empty tracker using s.
// Pending dirty state is discarded even when s is the active strategy.
func (t *Tracker) SetStrategy(s Strategy) {
	elements := t.elements
	*t = *NewTracker(s)
	t.elements = elements
}

// UpdateFromElements re-evaluates the threshold for a grid that now has
// count cells. Only when count falls on the other side of the threshold
// than the previous count is the tracker replaced, discarding pending
// state; an explicitly chosen strategy survives resizes that stay on the
// same side. Returns true if the tracker was replaced.
func (t *Tracker) UpdateFromElements(count int) bool {
	prev := t.elements
	t.elements = count
	next := strategyFor(count)
	if strategyFor(prev) == next {
		return false
	}
	t.SetStrategy(next)
	return true
}

// Register records that the cell at i changed.
func (t *Tracker) Register(i Index) {
	switch t.strategy {
	case StrategyFull:
		t.full = true
	case StrategySquare:
		if !t.hasBounds {
			t.bounds = RectOf(i)
			t.hasBounds = true
			return
		}
		t.bounds = t.bounds.Extend(i)
	case StrategyPointSet:
		t.points[i] = struct{}{}
	}
}

// MarkAll forces the next synchronization to push the whole volume,
// whatever the strategy.
func (t *Tracker) MarkAll() {
	t.full = true
}

// Clear discards all pending state. The strategy is kept.
func (t *Tracker) Clear() {
	t.full = false
	t.hasBounds = false
	t.bounds = Rect{}
	if t.points != nil {
		clear(t.points)
	}
}

// IsEmpty reports whether nothing changed since the last Clear.
func (t *Tracker) IsEmpty() bool {
	return !t.full && !t.hasBounds && len(t.points) == 0
}

// Pending returns the accumulated damage, or nil when nothing changed.
// The tracker is not modified.
func (t *Tracker) Pending() Damage {
	if t.full {
		return FullDamage{}
	}
	switch t.strategy {
	case StrategySquare:
		if t.hasBounds {
			return RectDamage{Rect: t.bounds}
		}
	case StrategyPointSet:
		if len(t.points) > 0 {
			pts := make([]Index, 0, len(t.points))
			for p := range t.points {
				pts = append(pts, p)
			}
			slices.SortFunc(pts, compareRowMajor)
			return PointDamage{Points: pts}
		}
	}
	return nil
}

// compareRowMajor orders indices by row, then column.
func compareRowMajor(a, b Index) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}
