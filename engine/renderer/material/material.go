package material

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

var (
	// ErrNilSampler is returned when a material is built without a sampler.
	ErrNilSampler = errors.New("material: sampler is required")

	// ErrMissingProgram is returned when a material is built without both programs.
	ErrMissingProgram = errors.New("material: vertex and pixel programs are required")

	// ErrStageMismatch is returned when a program is passed for the wrong stage.
	ErrStageMismatch = errors.New("material: program stage mismatch")
)

// material is the implementation of the Material interface.
type material struct {
	name          string
	vertexProgram shader.Program
	pixelProgram  shader.Program

	// claims owned by the material; nil when absent
	colorView  *resource.View
	normalView *resource.View
	sampler    *resource.View

	releaseOnce *sync.Once
}

// Material is a named bundle of a vertex program, a pixel program, an optional color view, an
// optional normal map and a sampler.
//
// The programs are owned outright. The views and sampler are shared: the material holds one claim
// on each, taken at construction and dropped by Release, so a view shared by several materials
// survives until the last of them is released.
type Material interface {
	// Name retrieves the material identifier used by the content registry.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// VertexProgram retrieves the material's vertex program. The material keeps ownership.
	//
	// Returns:
	//   - shader.Program: the vertex program
	VertexProgram() shader.Program

	// PixelProgram retrieves the material's pixel program. The material keeps ownership.
	//
	// Returns:
	//   - shader.Program: the pixel program
	PixelProgram() shader.Program

	// ColorView hands out a new claim on the color view for one use.
	// The caller must release it, typically through a resource.Scope.
	//
	// Returns:
	//   - *resource.View: the claim, or nil if the material has no color view
	ColorView() *resource.View

	// NormalView hands out a new claim on the normal map for one use.
	//
	// Returns:
	//   - *resource.View: the claim, or nil if the material has no normal map
	NormalView() *resource.View

	// Sampler hands out a new claim on the sampler for one use. Never nil for a live material.
	//
	// Returns:
	//   - *resource.View: the claim
	Sampler() *resource.View

	// HasColorView reports whether the material carries a color view.
	HasColorView() bool

	// HasNormalMap reports whether the material carries a normal map.
	HasNormalMap() bool

	// Release drops the material's claims and releases its programs. Safe to call more than once.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a material and takes a claim on every view it is given.
// The caller keeps its own claims on the views and the sampler and releases them independently.
//
// Parameters:
//   - vs: the vertex program; ownership passes to the material
//   - ps: the pixel program; ownership passes to the material
//   - sampler: the sampler; must not be nil
//   - options: functional options (name, color view, normal view)
//
// Returns:
//   - Material: the new material
//   - error: ErrNilSampler, ErrMissingProgram or ErrStageMismatch
func NewMaterial(vs, ps shader.Program, sampler *resource.View, options ...MaterialBuilderOption) (Material, error) {
	if sampler == nil {
		return nil, ErrNilSampler
	}
	if vs == nil || ps == nil {
		return nil, ErrMissingProgram
	}
	if vs.Stage() != gfx.StageVertex || ps.Stage() != gfx.StagePixel {
		return nil, fmt.Errorf("%w: got %s and %s programs", ErrStageMismatch, vs.Stage(), ps.Stage())
	}

	m := &material{
		vertexProgram: vs,
		pixelProgram:  ps,
		releaseOnce:   &sync.Once{},
	}
	for _, opt := range options {
		opt(m)
	}

	// options stored the caller's pointers; replace them with the material's own claims
	m.colorView = m.colorView.Acquire()
	m.normalView = m.normalView.Acquire()
	m.sampler = sampler.Acquire()

	return m, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) VertexProgram() shader.Program {
	return m.vertexProgram
}

func (m *material) PixelProgram() shader.Program {
	return m.pixelProgram
}

func (m *material) ColorView() *resource.View {
	return m.colorView.Acquire()
}

func (m *material) NormalView() *resource.View {
	return m.normalView.Acquire()
}

func (m *material) Sampler() *resource.View {
	return m.sampler.Acquire()
}

func (m *material) HasColorView() bool {
	return m.colorView != nil
}

func (m *material) HasNormalMap() bool {
	return m.normalView != nil
}

func (m *material) Release() {
	m.releaseOnce.Do(func() {
		m.colorView.Release()
		m.normalView.Release()
		m.sampler.Release()
		m.vertexProgram.Release()
		m.pixelProgram.Release()
	})
}
