package grain

import (
	"fmt"
	"image/color"
)

// Material is the payload of an occupied cell.
//
// Material is an immutable value type: every method that changes a property
// returns a modified copy. The only way to build a usable Material is
// NewMaterial, which rejects a zero integrity ceiling; the zero value
// Material{} is not a valid material and Volume.Set refuses it.
type Material struct {
	baseColor       color.NRGBA
	integrity       uint16
	maxIntegrity    uint16
	collisionLayers uint8
	temperature     int8
}

// NewMaterial creates a material at full integrity.
// Returns ErrZeroMaxIntegrity if maxIntegrity is zero.
func NewMaterial(base color.NRGBA, maxIntegrity uint16, layers uint8, temperature int8) (Material, error) {
	if maxIntegrity == 0 {
		return Material{}, fmt.Errorf("%w: color=%v", ErrZeroMaxIntegrity, base)
	}
	return Material{
		baseColor:       base,
		integrity:       maxIntegrity,
		maxIntegrity:    maxIntegrity,
		collisionLayers: layers,
		temperature:     temperature,
	}, nil
}

// MustMaterial is like NewMaterial but panics on error.
// Use only for hardcoded palettes.
func MustMaterial(base color.NRGBA, maxIntegrity uint16, layers uint8, temperature int8) Material {
	m, err := NewMaterial(base, maxIntegrity, layers, temperature)
	if err != nil {
		panic(err)
	}
	return m
}

// BaseColor returns the straight-alpha colour of the material.
func (m Material) BaseColor() color.NRGBA { return m.baseColor }

// Integrity returns the current durability.
func (m Material) Integrity() uint16 { return m.integrity }

// MaxIntegrity returns the durability ceiling. Always non-zero for a
// material built by NewMaterial.
func (m Material) MaxIntegrity() uint16 { return m.maxIntegrity }

// CollisionLayers returns the collision layer bitmask.
func (m Material) CollisionLayers() uint8 { return m.collisionLayers }

// Temperature returns the temperature scalar.
func (m Material) Temperature() int8 { return m.temperature }

// Valid reports whether m was built by NewMaterial.
func (m Material) Valid() bool { return m.maxIntegrity != 0 }

// WithColor returns a copy of m with a different base colour.
func (m Material) WithColor(c color.NRGBA) Material {
	m.baseColor = c
	return m
}

// WithIntegrity returns a copy of m with integrity v, clamped to the ceiling.
func (m Material) WithIntegrity(v uint16) Material {
	m.integrity = min(v, m.maxIntegrity)
	return m
}

// WithTemperature returns a copy of m at temperature t.
func (m Material) WithTemperature(t int8) Material {
	m.temperature = t
	return m
}

// Damage returns a copy of m with integrity reduced by amount,
// saturating at zero.
func (m Material) Damage(amount uint16) Material {
	if amount >= m.integrity {
		m.integrity = 0
	} else {
		m.integrity -= amount
	}
	return m
}

// Destroyed reports whether the material has no integrity left.
func (m Material) Destroyed() bool { return m.integrity == 0 }

// CollidesWith reports whether the material participates in any of the
// layers in mask.
func (m Material) CollidesWith(mask uint8) bool {
	return m.collisionLayers&mask != 0
}

// Cell is one slot of a Volume: either a Material or vacuum.
// The zero value is vacuum.
type Cell struct {
	material Material
	filled   bool
}

// Filled returns a cell holding m.
func Filled(m Material) Cell {
	return Cell{material: m, filled: true}
}

// Vacuum returns an empty cell.
func Vacuum() Cell {
	return Cell{}
}

// Material returns the cell's material and whether the cell is occupied.
func (c Cell) Material() (Material, bool) {
	return c.material, c.filled
}

// IsVacuum reports whether the cell is empty.
func (c Cell) IsVacuum() bool { return !c.filled }
