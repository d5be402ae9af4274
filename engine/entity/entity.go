// Package entity holds the renderable objects of the demo scene.
package entity

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/model"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewer supplies the per-frame camera matrices an entity pushes into its vertex program.
type Viewer interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
}

type entity struct {
	mu *sync.Mutex

	mesh     model.Mesh
	material material.Material

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3
	spin     mgl32.Vec3
}

// Entity is a mesh placed in the world and drawn with a material.
// It refers to, but does not own, its mesh and material.
type Entity interface {
	// Mesh returns the entity's mesh.
	//
	// Returns:
	//   - model.Mesh: the mesh
	Mesh() model.Mesh

	// Material returns the entity's material.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// Position returns the world position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - mgl32.Vec3: the rotation
	Rotation() mgl32.Vec3

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// World composes the world matrix from position, rotation and scale.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	World() mgl32.Mat4

	// SetPosition moves the entity to p.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Move offsets the position by delta.
	//
	// Parameters:
	//   - delta: the offset
	Move(delta mgl32.Vec3)

	// Rotate adds delta radians to the rotation.
	//
	// Parameters:
	//   - delta: the Euler angle offset
	Rotate(delta mgl32.Vec3)

	// Update advances the entity by dt seconds. Only entities with a spin rate change.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// Draw binds the mesh buffers, pushes the world, view and projection matrices into the
	// material's vertex program, uploads both programs' constants, activates both programs and
	// issues one indexed draw. Resources the pixel program samples are bound by the caller.
	//
	// Parameters:
	//   - ctx: the context to draw on
	//   - viewer: the camera providing view and projection
	Draw(ctx gfx.Context, viewer Viewer)
}

var _ Entity = &entity{}

// NewEntity creates an entity at position with unit scale and no rotation unless options say otherwise.
//
// Parameters:
//   - mesh: the mesh to draw
//   - mat: the material to draw it with
//   - position: the world position
//   - options: variadic EntityBuilderOption functions
//
// Returns:
//   - Entity: the new entity
func NewEntity(mesh model.Mesh, mat material.Material, position mgl32.Vec3, options ...EntityBuilderOption) Entity {
	e := &entity{
		mu:       &sync.Mutex{},
		mesh:     mesh,
		material: mat,
		position: position,
		scale:    mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *entity) Mesh() model.Mesh {
	return e.mesh
}

func (e *entity) Material() material.Material {
	return e.material
}

func (e *entity) Position() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *entity) Rotation() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rotation
}

func (e *entity) Scale() mgl32.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scale
}

func (e *entity) World() mgl32.Mat4 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return common.WorldMatrix(e.position, e.rotation, e.scale)
}

func (e *entity) SetPosition(p mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = p
}

func (e *entity) Move(delta mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = e.position.Add(delta)
}

func (e *entity) Rotate(delta mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rotation = e.rotation.Add(delta)
}

func (e *entity) Update(dt float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.spin == (mgl32.Vec3{}) {
		return
	}
	e.rotation = e.rotation.Add(e.spin.Mul(dt))
}

func (e *entity) Draw(ctx gfx.Context, viewer Viewer) {
	vs := e.material.VertexProgram()
	ps := e.material.PixelProgram()

	e.mesh.Bind(ctx)
	ctx.SetPrimitiveTopology(gfx.TopologyTriangleList)

	vs.SetMatrix4x4("world", e.World())
	vs.SetMatrix4x4("view", viewer.View())
	vs.SetMatrix4x4("projection", viewer.Projection())

	vs.CopyAllBufferData(ctx)
	ps.CopyAllBufferData(ctx)

	vs.SetShader(ctx)
	ps.SetShader(ctx)

	ctx.DrawIndexed(e.mesh.IndexCount(), 0, 0)
}
