// Package grain provides the material grid of a 2D falling-sand world.
//
// # Overview
//
// A Volume is a dense grid of material cells. Each logical unit cell is
// split into a 2x2 block of material cells, addressed through a diamond
// subdivision: the two diagonals of the unit cell cut it into four
// triangles, and MapPosition sends each triangle to one cell of the block.
// Rendered through a matching pixel shader this gives "tri-pixel" edges
// instead of square pixels.
//
// # Quick Start
//
//	import "github.com/gogpu/grain"
//
//	v, _ := grain.NewVolume(64, 64)
//	sand := grain.MustMaterial(grain.Hex("#c2b280"), 100, 1, 20)
//
//	// Write through a continuous position or a cell index
//	_ = v.SetPixelAt(grain.Pt(10.3, 4.8), grain.Filled(sand))
//	_ = v.Set(grain.Idx(0, 0), grain.Filled(sand))
//
//	// Once per frame, push what changed
//	_ = v.Synchronize(buffer)
//
// # Dirty tracking
//
// Every Set is reported to a Tracker. Small volumes (at most
// ElementThreshold material cells) use StrategyFull and re-upload the whole
// image on change. Larger volumes use StrategySquare and upload only the
// bounding box of changed cells. StrategyPointSet uploads each horizontal
// run of changed cells and can be selected explicitly with SetStrategy.
//
// # Errors
//
// Out-of-bounds access never panics. Get reports absence; Set returns
// ErrOutOfBounds and leaves the volume unchanged, so probes near the world
// edge can ignore the error.
//
// # Coordinate System
//
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - One unit of Point space is one unit cell, Scale material cells wide
package grain
