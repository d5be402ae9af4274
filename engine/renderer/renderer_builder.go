package renderer

// RendererBuilderOption is a functional option for configuring a Renderer during construction.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the initial surface present mode. Present's sync interval overrides it
// frame by frame.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.syncInterval = syncIntervalFor(mode)
	}
}

// WithForceFallbackAdapter requests the software (fallback) adapter instead of a hardware GPU.
// Useful on machines without a supported GPU driver.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the label of the wgpu device, shown in validation messages.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithDeviceLabel(label string) RendererBuilderOption {
	return func(r *renderer) {
		r.deviceLabel = label
	}
}
