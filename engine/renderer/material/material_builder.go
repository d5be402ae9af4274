package material

import "github.com/Carmen-Shannon/oxy-postfx/engine/resource"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColorView is an option builder that sets the color (albedo) view the pixel program samples.
// NewMaterial acquires its own claim on the view; the caller's claim is left untouched.
//
// Parameters:
//   - view: the shader resource view, or nil for none
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color view option to a material
func WithColorView(view *resource.View) MaterialBuilderOption {
	return func(m *material) {
		m.colorView = view
	}
}

// WithNormalView is an option builder that sets the tangent-space normal map.
// NewMaterial acquires its own claim on the view.
//
// Parameters:
//   - view: the shader resource view, or nil for none
//
// Returns:
//   - MaterialBuilderOption: a function that applies the normal view option to a material
func WithNormalView(view *resource.View) MaterialBuilderOption {
	return func(m *material) {
		m.normalView = view
	}
}
