package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v", i, got)
	}
}

func TestDefaultsLookDownNegativeZ(t *testing.T) {
	c := NewCamera()
	assertVec3(t, mgl32.Vec3{0, 0, 5}, c.Position())
	assertVec3(t, mgl32.Vec3{0, 0, -1}, c.Forward())

	// the origin sits straight ahead, 5 units in front of the camera
	origin := c.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{0, 0, -5}, origin.Vec3())
}

func TestProjectionMapsDepthToZeroOne(t *testing.T) {
	c := NewCamera(WithClipPlanes(1, 10))

	near := c.Projection().Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := c.Projection().Mul4x1(mgl32.Vec4{0, 0, -10, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)
}

func TestUpdateProjectionIgnoresZeroSize(t *testing.T) {
	c := NewCamera()
	before := c.Projection()

	c.UpdateProjection(0, 720)
	assert.Equal(t, before, c.Projection())

	c.UpdateProjection(720, 720)
	assert.NotEqual(t, before, c.Projection())
	p := c.Projection()
	assert.InDelta(t, p.At(0, 0), p.At(1, 1), 1e-6, "square viewport scales both axes equally")
}

func TestMouseRotation(t *testing.T) {
	c := NewCamera(WithMouseSensitivity(0.01))

	c.AddRotY(-157.0796) // turn right by a quarter turn
	assertVec3(t, mgl32.Vec3{1, 0, 0}, c.Forward())

	c.AddRotX(10000)
	assert.Less(t, c.Pitch(), float32(maxPitch)+1e-6)
	assert.Greater(t, c.Forward().Y(), float32(0.99))

	c.AddRotX(-20000)
	assert.InDelta(t, -maxPitch, c.Pitch(), 1e-6)
}

func TestUpdateFliesWithHeldKeys(t *testing.T) {
	c := NewCamera(WithMoveSpeed(2))

	c.Update(0.5, KeySet{common.KeyW: true})
	assertVec3(t, mgl32.Vec3{0, 0, 4}, c.Position())

	c.Update(0.5, KeySet{common.KeyD: true, common.KeySpace: true})
	assertVec3(t, mgl32.Vec3{1, 1, 4}, c.Position())

	c.Update(1, KeySet{common.KeyW: true, common.KeyS: true})
	assertVec3(t, mgl32.Vec3{1, 1, 4}, c.Position())

	c.Update(1, nil)
	assertVec3(t, mgl32.Vec3{1, 1, 4}, c.Position())
}
