package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx/gfxtest"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shapes() map[string]Geometry {
	return map[string]Geometry{
		"cube":  Cube(),
		"cone":  Cone(24),
		"helix": Helix(96, 12),
		"torus": Torus(32, 16),
	}
}

func TestCubeLayout(t *testing.T) {
	g := Cube()
	assert.Len(t, g.Vertices, 24)
	assert.Len(t, g.Indices, 36)
	for _, v := range g.Vertices {
		for _, c := range v.Position {
			assert.InDelta(t, 0.5, abs(c), 1e-6, "every corner sits on the unit cube")
		}
	}
}

func TestShapesWindCounterClockwiseAroundNormals(t *testing.T) {
	for name, g := range shapes() {
		t.Run(name, func(t *testing.T) {
			require.Zero(t, len(g.Indices)%3)
			for i := 0; i+2 < len(g.Indices); i += 3 {
				a, b, c := g.Vertices[g.Indices[i]], g.Vertices[g.Indices[i+1]], g.Vertices[g.Indices[i+2]]
				face := faceNormal(a, b, c)
				n := mgl32.Vec3(a.Normal).Add(b.Normal).Add(c.Normal)
				assert.GreaterOrEqual(t, face.Dot(n), float32(0), "triangle %d", i/3)
			}
		})
	}
}

func TestTangentsAreUnitAndOrthogonal(t *testing.T) {
	for name, g := range shapes() {
		t.Run(name, func(t *testing.T) {
			for i, v := range g.Vertices {
				tangent := mgl32.Vec3(v.Tangent)
				assert.InDelta(t, 1, tangent.Len(), 1e-3, "vertex %d", i)
				assert.InDelta(t, 0, tangent.Dot(v.Normal), 1e-3, "vertex %d", i)
			}
		})
	}
}

func TestNewMeshUploadsBuffers(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	g := Cube()

	m, err := NewMesh(dev, "cube", g.Vertices, g.Indices)
	require.NoError(t, err)
	assert.Equal(t, "cube", m.Name())
	assert.Equal(t, uint32(36), m.IndexCount())
	assert.Equal(t, uint32(24), m.VertexCount())
	assert.Equal(t, 2, dev.Tracker.Live(resource.KindBuffer))

	m.Bind(dev)
	assert.Equal(t, "cube vertices", dev.State().VertexBuffer().Label())
	assert.Equal(t, "cube indices", dev.State().IndexBuffer().Label())

	m.Release()
	assert.Equal(t, 2, dev.Tracker.Live(resource.KindBuffer), "bound buffers stay alive")
	dev.SetVertexBuffer(nil)
	dev.SetIndexBuffer(nil)
	assert.Zero(t, dev.Tracker.Live(resource.KindBuffer))
}

func TestNewMeshRejectsBadGeometry(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	verts := []common.Vertex{{}, {}, {}}

	_, err := NewMesh(dev, "empty", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = NewMesh(dev, "partial", verts, []uint32{0, 1})
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, err = NewMesh(dev, "range", verts, []uint32{0, 1, 3})
	assert.ErrorContains(t, err, "out of range")
	assert.Zero(t, dev.Tracker.Live(resource.KindBuffer))
}

func TestNewMeshReleasesVertexBufferOnIndexFailure(t *testing.T) {
	dev := gfxtest.NewDevice(64, 64)
	g := Cube()
	calls := 0
	_, err := NewMesh(&failSecond{Device: dev, calls: &calls}, "cube", g.Vertices, g.Indices)
	require.Error(t, err)
	assert.Zero(t, dev.Tracker.Live(resource.KindBuffer))
}

type failSecond struct {
	*gfxtest.Device
	calls *int
}

func (f *failSecond) CreateBuffer(desc gfx.BufferDescriptor) (*resource.View, error) {
	*f.calls++
	if *f.calls == 2 {
		return nil, assert.AnError
	}
	return f.Device.CreateBuffer(desc)
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
