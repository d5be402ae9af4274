package compositor

import "github.com/Carmen-Shannon/oxy-postfx/common"

// FrameCompositorBuilderOption is a functional option for configuring a FrameCompositor.
type FrameCompositorBuilderOption func(*frameCompositor)

// WithBlurAmount sets the blur radius in texels.
//
// Parameters:
//   - amount: the radius, negative values mean 0
//
// Returns:
//   - FrameCompositorBuilderOption: functional option to set the blur radius
func WithBlurAmount(amount int32) FrameCompositorBuilderOption {
	return func(f *frameCompositor) {
		f.blurAmount = max(amount, 0)
	}
}

// WithClearColor sets the color the offscreen target and back buffer are cleared to.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - FrameCompositorBuilderOption: functional option to set the clear color
func WithClearColor(c common.Color) FrameCompositorBuilderOption {
	return func(f *frameCompositor) {
		f.clearColor = c
	}
}

// WithSyncInterval sets the interval passed to Present; 0 presents without waiting for vertical sync.
func WithSyncInterval(interval int) FrameCompositorBuilderOption {
	return func(f *frameCompositor) {
		f.syncInterval = max(interval, 0)
	}
}
