// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package worldgen fills volumes with layered Perlin-noise terrain.
package worldgen

import (
	"errors"
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/gogpu/grain"
)

// ErrNoLayers is returned by Fill when no layer is given.
var ErrNoLayers = errors.New("worldgen: no layers")

// Layer is one band of terrain. Layers are stacked from the surface down;
// the last layer extends to the bottom of the volume whatever its Depth.
type Layer struct {
	Material grain.Material
	Depth    int // in material cells
}

// Options controls terrain shape.
type Options struct {
	Seed int64

	// Alpha, Beta and Octaves are passed to the Perlin generator.
	Alpha   float64
	Beta    float64
	Octaves int32

	// Frequency scales material-cell columns into noise space.
	Frequency float64

	// Level is the mean surface height as a fraction of the volume height,
	// measured from the top. Amplitude is the maximum deviation, same unit.
	Level     float64
	Amplitude float64

	// CaveThreshold carves vacuum wherever 2D noise in [0,1] exceeds it.
	// Zero disables caves.
	CaveThreshold float64
}

// DefaultOptions returns rolling hills without caves.
func DefaultOptions(seed int64) Options {
	return Options{
		Seed:      seed,
		Alpha:     2.0,
		Beta:      2.0,
		Octaves:   3,
		Frequency: 0.05,
		Level:     0.45,
		Amplitude: 0.2,
	}
}

// Generator produces deterministic terrain for a seed.
type Generator struct {
	opts  Options
	noise *perlin.Perlin
}

// New creates a generator.
func New(opts Options) *Generator {
	return &Generator{
		opts:  opts,
		noise: perlin.NewPerlin(opts.Alpha, opts.Beta, opts.Octaves, opts.Seed),
	}
}

// sample returns noise at (x, y) mapped from [-1,1] to [0,1].
func (g *Generator) sample(x, y float64) float64 {
	return (g.noise.Noise2D(x, y) + 1) / 2
}

// Surface returns the first solid row of column x in a volume that is
// rows material cells tall. The result is clamped to [0, rows-1].
func (g *Generator) Surface(x, rows int) int {
	n := g.sample(float64(x)*g.opts.Frequency, 0)
	level := g.opts.Level + g.opts.Amplitude*(2*n-1)
	y := int(math.Round(level * float64(rows)))
	return min(max(y, 0), rows-1)
}

// Fill writes terrain into the visible area of v and returns the number of
// filled cells. Cells above the surface are left untouched.
func (g *Generator) Fill(v *grain.Volume, layers []Layer) (int, error) {
	if len(layers) == 0 {
		return 0, ErrNoLayers
	}
	for i, l := range layers {
		if !l.Material.Valid() {
			return 0, fmt.Errorf("worldgen: layer %d: %w", i, grain.ErrInvalidMaterial)
		}
	}

	b := v.CellBounds()
	filled := 0
	for x := b.Min.X; x < b.Max.X; x++ {
		top := g.Surface(x, b.Dy())
		for y := top; y < b.Max.Y; y++ {
			if g.cave(x, y) {
				continue
			}
			m := layerAt(layers, y-top)
			if err := v.Set(grain.Idx(x, y), grain.Filled(m)); err != nil {
				return filled, err
			}
			filled++
		}
	}

	grain.Logger().Debug("worldgen: terrain filled",
		"seed", g.opts.Seed, "bounds", b, "cells", filled)
	return filled, nil
}

func (g *Generator) cave(x, y int) bool {
	if g.opts.CaveThreshold <= 0 {
		return false
	}
	f := g.opts.Frequency * 2
	return g.sample(float64(x)*f, float64(y)*f+1000) > g.opts.CaveThreshold
}

// layerAt returns the material depth cells below the surface.
func layerAt(layers []Layer, depth int) grain.Material {
	for _, l := range layers[:len(layers)-1] {
		if depth < l.Depth {
			return l.Material
		}
		depth -= l.Depth
	}
	return layers[len(layers)-1].Material
}
