// Package content owns the demo's meshes, materials and shared sampler, and builds them from
// procedural geometry plus optional texture files.
package content

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-postfx/engine/model"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

var (
	// ErrNotFound is returned when a mesh or material name is not registered.
	ErrNotFound = errors.New("content: not found")

	// ErrDuplicate is returned when a name is registered twice.
	ErrDuplicate = errors.New("content: already registered")
)

type registry struct {
	mu        *sync.Mutex
	sampler   *resource.View
	meshes    map[string]model.Mesh
	materials map[string]material.Material
	released  bool
}

// Registry looks up meshes and materials by name.
// It owns everything registered with it and releases them together.
type Registry interface {
	// RegisterMesh adds m under m.Name(). The registry takes ownership.
	//
	// Parameters:
	//   - m: the mesh to register
	//
	// Returns:
	//   - error: ErrDuplicate if the name is taken
	RegisterMesh(m model.Mesh) error

	// RegisterMaterial adds m under m.Name(). The registry takes ownership.
	//
	// Parameters:
	//   - m: the material to register
	//
	// Returns:
	//   - error: ErrDuplicate if the name is taken
	RegisterMaterial(m material.Material) error

	// GetMesh looks up a mesh.
	//
	// Parameters:
	//   - name: the mesh name
	//
	// Returns:
	//   - model.Mesh: the mesh, owned by the registry
	//   - error: ErrNotFound wrapped with the name
	GetMesh(name string) (model.Mesh, error)

	// GetMaterial looks up a material.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - material.Material: the material, owned by the registry
	//   - error: ErrNotFound wrapped with the name
	GetMaterial(name string) (material.Material, error)

	// Sampler returns a claim on the shared sampler. The caller releases it.
	// Returns nil once the registry is released.
	//
	// Returns:
	//   - *resource.View: an acquired sampler claim
	Sampler() *resource.View

	// MeshNames lists registered mesh names in sorted order.
	MeshNames() []string

	// MaterialNames lists registered material names in sorted order.
	MaterialNames() []string

	// Release releases every material, then every mesh, then the sampler. It is idempotent.
	Release()
}

var _ Registry = &registry{}

// NewRegistry creates an empty registry around a shared sampler.
//
// Parameters:
//   - sampler: the device-level sampler; the registry acquires its own claim
//
// Returns:
//   - Registry: the new registry
func NewRegistry(sampler *resource.View) Registry {
	return &registry{
		mu:        &sync.Mutex{},
		sampler:   sampler.Acquire(),
		meshes:    make(map[string]model.Mesh),
		materials: make(map[string]material.Material),
	}
}

func (r *registry) RegisterMesh(m model.Mesh) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meshes[m.Name()]; ok {
		return fmt.Errorf("%w: mesh %q", ErrDuplicate, m.Name())
	}
	r.meshes[m.Name()] = m
	return nil
}

func (r *registry) RegisterMaterial(m material.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.materials[m.Name()]; ok {
		return fmt.Errorf("%w: material %q", ErrDuplicate, m.Name())
	}
	r.materials[m.Name()] = m
	return nil
}

func (r *registry) GetMesh(name string) (model.Mesh, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meshes[name]
	if !ok {
		return nil, fmt.Errorf("%w: mesh %q", ErrNotFound, name)
	}
	return m, nil
}

func (r *registry) GetMaterial(name string) (material.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.materials[name]
	if !ok {
		return nil, fmt.Errorf("%w: material %q", ErrNotFound, name)
	}
	return m, nil
}

func (r *registry) Sampler() *resource.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	return r.sampler.Acquire()
}

func (r *registry) MeshNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.meshes))
	for name := range r.meshes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *registry) MaterialNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.materials))
	for name := range r.materials {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true

	for name, m := range r.materials {
		m.Release()
		delete(r.materials, name)
	}
	for name, m := range r.meshes {
		m.Release()
		delete(r.meshes, name)
	}
	r.sampler.Release()
}
