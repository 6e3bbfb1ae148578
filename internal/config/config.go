// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads grainview scene descriptions from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/gogpu/grain"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when Load gets an empty
// path.
const EnvPath = "GRAIN_CONFIG"

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root of a scene description.
type Config struct {
	World    WorldConfig               `yaml:"world"`
	Palette  map[string]MaterialConfig `yaml:"palette"`
	Strokes  []StrokeConfig            `yaml:"strokes"`
	Collider ColliderConfig            `yaml:"collider"`
	Output   OutputConfig              `yaml:"output"`
}

// WorldConfig describes the volume and how it is populated.
type WorldConfig struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"`

	// Strategy forces a tracker strategy ("full", "square", "pointset").
	// Empty keeps the size-based default.
	Strategy string `yaml:"strategy"`

	// Image, when set, builds the volume from a PNG, BMP or WebP file
	// instead of generating terrain. Pixels take ImageMaterial recoloured.
	Image         string `yaml:"image"`
	ImageMaterial string `yaml:"image_material"`

	// Terrain lists the generated layers from the surface down. The last
	// layer fills the rest of each column.
	Terrain []LayerConfig `yaml:"terrain"`
}

// LayerConfig is one terrain layer.
type LayerConfig struct {
	Material string `yaml:"material"`
	Depth    int    `yaml:"depth"` // in material cells
}

// MaterialConfig describes a palette entry.
type MaterialConfig struct {
	Color        string `yaml:"color"` // #RGB, #RGBA, #RRGGBB or #RRGGBBAA
	MaxIntegrity uint16 `yaml:"max_integrity"`
	Layers       uint8  `yaml:"layers"`
	Temperature  int8   `yaml:"temperature"`
}

// StrokeConfig paints a thick segment of material. Coordinates are in
// unit-cell space.
type StrokeConfig struct {
	Material string     `yaml:"material"`
	From     [2]float64 `yaml:"from"`
	To       [2]float64 `yaml:"to"`
	Radius   float64    `yaml:"radius"`
}

// ColliderConfig places a debug collider. Points and Offset are in
// material cells.
type ColliderConfig struct {
	Points [][2]int `yaml:"points"`
	Offset [2]int   `yaml:"offset"`
	Angle  float64  `yaml:"angle"` // radians, used for drawing only
	Mask   uint8    `yaml:"mask"`
}

// OutputConfig controls the rendered PNG.
type OutputConfig struct {
	Path       string `yaml:"path"`
	PixelScale int    `yaml:"pixel_scale"` // output pixels per material cell
	Background string `yaml:"background"`
}

// Default returns the built-in scene.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:         64,
			Height:        48,
			Seed:          1,
			ImageMaterial: "stone",
			Terrain: []LayerConfig{
				{Material: "grass", Depth: 2},
				{Material: "dirt", Depth: 10},
				{Material: "stone"},
			},
		},
		Palette: map[string]MaterialConfig{
			"grass": {Color: "#4caf50", MaxIntegrity: 20, Layers: 0b01},
			"dirt":  {Color: "#795548", MaxIntegrity: 40, Layers: 0b01},
			"stone": {Color: "#9e9e9e", MaxIntegrity: 200, Layers: 0b11},
			"sand":  {Color: "#e0c068", MaxIntegrity: 10, Layers: 0b01},
			"lava":  {Color: "#ff5722", MaxIntegrity: 5, Layers: 0b10, Temperature: 120},
		},
		Strokes: []StrokeConfig{
			{Material: "sand", From: [2]float64{8, 6}, To: [2]float64{24, 10}, Radius: 1.5},
			{Material: "lava", From: [2]float64{40, 20}, To: [2]float64{44, 30}, Radius: 1},
		},
		Collider: ColliderConfig{
			Points: [][2]int{{0, 0}, {12, 0}, {12, 8}, {0, 8}},
			Offset: [2]int{50, 20},
			Angle:  0.2,
			Mask:   0b01,
		},
		Output: OutputConfig{
			Path:       "grain.png",
			PixelScale: 4,
			Background: "#202030",
		},
	}
}

// Load reads a YAML scene over the defaults.
//
// An empty path falls back to $GRAIN_CONFIG; when that is empty too, the
// defaults are returned. Keys missing from the file keep their default
// values; palette entries in the file replace or add entries by name.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		add("world size %dx%d", c.World.Width, c.World.Height)
	}
	if c.World.Strategy != "" {
		if _, ok := grain.ParseStrategy(c.World.Strategy); !ok {
			add("unknown strategy %q", c.World.Strategy)
		}
	}
	if c.Output.PixelScale <= 0 {
		add("output pixel_scale %d", c.Output.PixelScale)
	}
	if c.Output.Background != "" {
		if _, err := grain.ParseHex(c.Output.Background); err != nil {
			add("output background %q", c.Output.Background)
		}
	}

	for _, name := range c.paletteNames() {
		m := c.Palette[name]
		if _, err := grain.ParseHex(m.Color); err != nil {
			add("palette %q: color %q", name, m.Color)
		}
		if m.MaxIntegrity == 0 {
			add("palette %q: max_integrity must be positive", name)
		}
	}

	known := func(name string) bool {
		_, ok := c.Palette[name]
		return ok
	}
	if c.World.Image != "" && !known(c.World.ImageMaterial) {
		add("image_material %q not in palette", c.World.ImageMaterial)
	}
	for i, l := range c.World.Terrain {
		if !known(l.Material) {
			add("terrain[%d]: material %q not in palette", i, l.Material)
		}
		if l.Depth < 0 {
			add("terrain[%d]: depth %d", i, l.Depth)
		}
	}
	for i, s := range c.Strokes {
		if !known(s.Material) {
			add("strokes[%d]: material %q not in palette", i, s.Material)
		}
		if s.Radius < 0 {
			add("strokes[%d]: radius %g", i, s.Radius)
		}
	}
	if n := len(c.Collider.Points); n == 1 {
		add("collider needs at least 2 points, got %d", n)
	}

	return errors.Join(errs...)
}

// Strategy returns the configured tracker strategy. ok is false when none
// is configured or the name is unknown.
func (c *Config) Strategy() (grain.Strategy, bool) {
	if c.World.Strategy == "" {
		return 0, false
	}
	return grain.ParseStrategy(c.World.Strategy)
}

// Materials builds the palette. The configuration must be valid.
func (c *Config) Materials() (map[string]grain.Material, error) {
	out := make(map[string]grain.Material, len(c.Palette))
	for _, name := range c.paletteNames() {
		m := c.Palette[name]
		col, err := grain.ParseHex(m.Color)
		if err != nil {
			return nil, fmt.Errorf("config: palette %q: %w", name, err)
		}
		mat, err := grain.NewMaterial(col, m.MaxIntegrity, m.Layers, m.Temperature)
		if err != nil {
			return nil, fmt.Errorf("config: palette %q: %w", name, err)
		}
		out[name] = mat
	}
	return out, nil
}

// paletteNames returns the palette keys in sorted order so errors are
// reported deterministically.
func (c *Config) paletteNames() []string {
	names := make([]string, 0, len(c.Palette))
	for name := range c.Palette {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
