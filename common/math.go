package common

import "github.com/go-gl/mathgl/mgl32"

// depthZeroToOne remaps clip-space z from [-w, w] to [0, w].
var depthZeroToOne = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// PerspectiveZO builds a right-handed perspective projection with a 0..1 depth range.
// mgl32.Perspective targets the -1..1 range, which clips half the depth buffer away on wgpu.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: width / height
//   - near, far: clip plane distances
//
// Returns:
//   - mgl32.Mat4: the projection matrix, column-major
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	return depthZeroToOne.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}

// WorldMatrix composes translation * rotation(Y, X, Z) * scale.
//
// Parameters:
//   - position: translation
//   - rotation: Euler angles in radians
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the world matrix, column-major
func WorldMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	rot := mgl32.HomogRotate3DY(rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(rotation.Z()))
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(rot).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Mat4Bytes packs a column-major matrix as 64 little-endian bytes.
func Mat4Bytes(m mgl32.Mat4) []byte {
	return AppendFloat32s(make([]byte, 0, 64), m[:]...)
}
