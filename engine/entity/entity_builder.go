package entity

import "github.com/go-gl/mathgl/mgl32"

// EntityBuilderOption is a functional option for configuring an Entity during construction.
type EntityBuilderOption func(*entity)

// WithRotation sets the initial Euler rotation in radians.
//
// Parameters:
//   - r: rotation around X, Y and Z
//
// Returns:
//   - EntityBuilderOption: functional option to set the rotation
func WithRotation(r mgl32.Vec3) EntityBuilderOption {
	return func(e *entity) {
		e.rotation = r
	}
}

// WithScale sets the per-axis scale.
//
// Parameters:
//   - s: scale along X, Y and Z
//
// Returns:
//   - EntityBuilderOption: functional option to set the scale
func WithScale(s mgl32.Vec3) EntityBuilderOption {
	return func(e *entity) {
		e.scale = s
	}
}

// WithUniformScale scales all three axes by s.
func WithUniformScale(s float32) EntityBuilderOption {
	return func(e *entity) {
		e.scale = mgl32.Vec3{s, s, s}
	}
}

// WithSpin sets a rotation rate in radians per second applied by Update.
//
// Parameters:
//   - rate: angular velocity around X, Y and Z
//
// Returns:
//   - EntityBuilderOption: functional option to set the spin rate
func WithSpin(rate mgl32.Vec3) EntityBuilderOption {
	return func(e *entity) {
		e.spin = rate
	}
}
