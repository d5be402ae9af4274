package entity

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-postfx/engine/model"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedViewer struct {
	view, projection mgl32.Mat4
}

func (v fixedViewer) View() mgl32.Mat4       { return v.view }
func (v fixedViewer) Projection() mgl32.Mat4 { return v.projection }

func newFixture(t *testing.T) (*gfxtest.Device, model.Mesh, material.Material) {
	t.Helper()
	dev := gfxtest.NewDevice(64, 64)

	g := model.Cube()
	mesh, err := model.NewMesh(dev, "cube", g.Vertices, g.Indices)
	require.NoError(t, err)

	vs, err := shader.NewProgram(dev, shader.Descriptor{
		Name: "vs", Stage: gfx.StageVertex, Source: "vs", EntryPoint: "main", VertexInput: true,
		Buffers: []shader.Buffer{{Slot: 0, Size: 192, Variables: []shader.Variable{
			{Name: "world", Offset: 0, Size: 64},
			{Name: "view", Offset: 64, Size: 64},
			{Name: "projection", Offset: 128, Size: 64},
		}}},
	})
	require.NoError(t, err)
	ps, err := shader.NewProgram(dev, shader.Descriptor{
		Name: "ps", Stage: gfx.StagePixel, Source: "ps", EntryPoint: "main",
		Buffers: []shader.Buffer{{Slot: 0, Size: 16, Variables: []shader.Variable{{Name: "tint", Offset: 0, Size: 16}}}},
	})
	require.NoError(t, err)

	sampler, err := dev.CreateSampler(gfx.SamplerDescriptor{Label: "sampler"})
	require.NoError(t, err)
	mat, err := material.NewMaterial(vs, ps, sampler, material.WithName("plain"))
	require.NoError(t, err)
	sampler.Release()

	t.Cleanup(func() {
		mat.Release()
		mesh.Release()
	})
	return dev, mesh, mat
}

func TestDrawIssuesOneIndexedDraw(t *testing.T) {
	dev, mesh, mat := newFixture(t)
	viewer := fixedViewer{view: mgl32.Translate3D(0, 0, -5), projection: common.PerspectiveZO(1, 16.0/9, 0.1, 100)}

	e := NewEntity(mesh, mat, mgl32.Vec3{0.5, 0.5, 0})
	e.Draw(dev, viewer)

	require.Len(t, dev.Draws, 1)
	d := dev.Draws[0]
	assert.True(t, d.Indexed)
	assert.Equal(t, mesh.IndexCount(), d.Count)
	assert.Equal(t, "cube vertices", d.VertexBuffer)
	assert.Equal(t, "cube indices", d.IndexBuffer)
	assert.Equal(t, "vs", d.VertexProgram)
	assert.Equal(t, "ps", d.PixelProgram)

	constants := d.Constants["vertex/0"]
	require.Len(t, constants, 192)
	assert.Equal(t, common.Mat4Bytes(e.World()), constants[:64])
	assert.Equal(t, common.Mat4Bytes(viewer.view), constants[64:128])
	assert.Equal(t, common.Mat4Bytes(viewer.projection), constants[128:])
	assert.Len(t, d.Constants["pixel/0"], 16)
}

func TestDrawOrder(t *testing.T) {
	dev, mesh, mat := newFixture(t)
	NewEntity(mesh, mat, mgl32.Vec3{}).Draw(dev, fixedViewer{view: mgl32.Ident4(), projection: mgl32.Ident4()})

	assert.Equal(t, []string{
		"SetVertexBuffer", "SetIndexBuffer", "SetPrimitiveTopology",
		"UpdateConstants", "UpdateConstants",
		"SetProgram", "SetProgram",
		"DrawIndexed",
	}, dev.Ops())
}

func TestTransforms(t *testing.T) {
	_, mesh, mat := newFixture(t)
	e := NewEntity(mesh, mat, mgl32.Vec3{1, 2, 3}, WithUniformScale(2))

	assert.Equal(t, mgl32.Vec3{2, 2, 2}, e.Scale())
	world := e.World()
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, world.Col(3).Vec3())
	assert.Equal(t, float32(2), world.At(0, 0))

	e.Move(mgl32.Vec3{-1, 0, 0})
	assert.Equal(t, mgl32.Vec3{0, 2, 3}, e.Position())
	e.SetPosition(mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{}, e.Position())

	e.Rotate(mgl32.Vec3{0, 0.5, 0})
	assert.Equal(t, mgl32.Vec3{0, 0.5, 0}, e.Rotation())
}

func TestUpdateOnlySpinsWithRate(t *testing.T) {
	_, mesh, mat := newFixture(t)

	still := NewEntity(mesh, mat, mgl32.Vec3{})
	still.Update(1)
	assert.Equal(t, mgl32.Vec3{}, still.Rotation())

	spinning := NewEntity(mesh, mat, mgl32.Vec3{}, WithSpin(mgl32.Vec3{0, 1, 0}), WithRotation(mgl32.Vec3{0.25, 0, 0}))
	spinning.Update(0.5)
	assert.InDelta(t, 0.5, spinning.Rotation().Y(), 1e-6)
	assert.InDelta(t, 0.25, spinning.Rotation().X(), 1e-6)
}
