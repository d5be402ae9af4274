package content

import "github.com/Carmen-Shannon/oxy-postfx/engine/gfx"

// LoaderBuilderOption is a functional option for configuring Load.
type LoaderBuilderOption func(*loader)

// WithAssetDir sets the directory texture images are read from.
// Images missing from it are generated procedurally.
//
// Parameters:
//   - dir: the asset directory, empty for fully procedural content
//
// Returns:
//   - LoaderBuilderOption: functional option to set the asset directory
func WithAssetDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.assetDir = dir
	}
}

// WithWorkers sets how many goroutines decode images in parallel.
//
// Parameters:
//   - n: the worker count, values below 1 mean 1
//
// Returns:
//   - LoaderBuilderOption: functional option to set the decode worker count
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithSampler overrides the shared sampler description.
func WithSampler(desc gfx.SamplerDescriptor) LoaderBuilderOption {
	return func(l *loader) {
		l.sampler = desc
	}
}
