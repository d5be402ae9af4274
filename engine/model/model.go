// Package model holds GPU meshes and the procedural shapes the demo scene is built from.
package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

// ErrEmptyMesh is returned when a mesh has no vertices or indices.
var ErrEmptyMesh = errors.New("model: mesh has no geometry")

// Mesh is an indexed triangle list stored in device buffers.
type Mesh interface {
	// Name retrieves the mesh name used by the content registry.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// IndexCount returns the number of indices to draw.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// VertexCount returns the number of vertices in the vertex buffer.
	//
	// Returns:
	//   - uint32: the vertex count
	VertexCount() uint32

	// Bind binds the vertex and index buffers on ctx.
	//
	// Parameters:
	//   - ctx: the context to bind on
	Bind(ctx gfx.Context)

	// Release releases the mesh's buffers.
	Release()
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name         string
	vertexBuffer *resource.View
	indexBuffer  *resource.View
	indexCount   uint32
	vertexCount  uint32
}

var _ Mesh = &mesh{}

// NewMesh uploads vertices and indices to dev.
//
// Parameters:
//   - dev: the device that creates the buffers
//   - name: the mesh name
//   - vertices: the vertex data
//   - indices: 32-bit triangle list indices into vertices
//
// Returns:
//   - Mesh: the uploaded mesh
//   - error: ErrEmptyMesh, an out of range index, or the device's creation error
func NewMesh(dev gfx.Device, name string, vertices []common.Vertex, indices []uint32) (Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 || len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %q has %d vertices and %d indices", ErrEmptyMesh, name, len(vertices), len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("model: mesh %q index %d out of range", name, idx)
		}
	}

	vb, err := dev.CreateBuffer(gfx.BufferDescriptor{
		Label:  name + " vertices",
		Kind:   gfx.BufferVertex,
		Stride: common.VertexSize,
		Data:   common.MarshalVertices(vertices),
	})
	if err != nil {
		return nil, fmt.Errorf("model: failed to create vertex buffer for %q: %w", name, err)
	}
	ib, err := dev.CreateBuffer(gfx.BufferDescriptor{
		Label: name + " indices",
		Kind:  gfx.BufferIndex,
		Data:  common.MarshalIndices(indices),
	})
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("model: failed to create index buffer for %q: %w", name, err)
	}

	return &mesh{
		name:         name,
		vertexBuffer: vb,
		indexBuffer:  ib,
		indexCount:   uint32(len(indices)),
		vertexCount:  uint32(len(vertices)),
	}, nil
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) IndexCount() uint32 {
	return m.indexCount
}

func (m *mesh) VertexCount() uint32 {
	return m.vertexCount
}

func (m *mesh) Bind(ctx gfx.Context) {
	ctx.SetVertexBuffer(m.vertexBuffer)
	ctx.SetIndexBuffer(m.indexBuffer)
}

func (m *mesh) Release() {
	m.vertexBuffer.Release()
	m.indexBuffer.Release()
}
