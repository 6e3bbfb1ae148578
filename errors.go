package grain

import "errors"

// Errors returned by Volume, Material and Collider operations.
var (
	// ErrOutOfBounds is returned when an index or mapped position lies
	// outside the volume. It is always recoverable: the volume is unchanged.
	ErrOutOfBounds = errors.New("grain: index out of bounds")

	// ErrZeroMaxIntegrity is returned by NewMaterial when the integrity
	// ceiling is zero. Absence of material is expressed with Vacuum instead.
	ErrZeroMaxIntegrity = errors.New("grain: material max integrity must be non-zero")

	// ErrInvalidMaterial is returned when a filled cell carries a material
	// that was not built by NewMaterial.
	ErrInvalidMaterial = errors.New("grain: invalid material")

	// ErrInvalidSize is returned when volume dimensions are not positive or
	// capacity is smaller than size.
	ErrInvalidSize = errors.New("grain: invalid volume size")

	// ErrNilBuffer is returned when Synchronize is called without a buffer.
	ErrNilBuffer = errors.New("grain: nil presentation buffer")

	// ErrTooFewPoints is returned when a collider has fewer than two points.
	ErrTooFewPoints = errors.New("grain: collider needs at least two points")

	// ErrInvalidEdge is returned when a collider edge references a missing point.
	ErrInvalidEdge = errors.New("grain: collider edge references missing point")
)
