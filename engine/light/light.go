// Package light defines the fixed light block the lighting pixel program reads each frame.
package light

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Size is the byte size of the marshalled Lights block.
// Matches the WGSL Lights struct in LightsSource exactly.
const Size = 144

// LightsSource is the canonical WGSL definition of the Lights struct.
//
//go:embed assets/lights.wgsl
var LightsSource string

// DirectionalLight lights every surface from one direction.
type DirectionalLight struct {
	Color     common.Color
	Direction mgl32.Vec3
}

// PointLight radiates from a position and fades out at Range.
type PointLight struct {
	Color    common.Color
	Position mgl32.Vec3
	Range    float32
}

// SpotLight is a point light restricted to a cone around Direction.
type SpotLight struct {
	Color     common.Color
	Position  mgl32.Vec3
	Range     float32
	Direction mgl32.Vec3
}

// Lights is the whole lighting state of a frame: one light of each kind, an ambient term, and how
// many spot and point lights the shader should evaluate.
type Lights struct {
	Spot        SpotLight
	Point       PointLight
	Directional DirectionalLight
	Ambient     common.Color
	SpotCount   uint32
	PointCount  uint32
}

// Marshal serializes the block in the WGSL uniform layout:
//
//	offset   0: spot        {color vec4, position vec3, range f32, direction vec3, pad}
//	offset  48: point       {color vec4, position vec3, range f32}
//	offset  80: directional {color vec4, direction vec3, pad}
//	offset 112: ambient     vec4
//	offset 128: spotCount u32, pointCount u32, pad, pad
//
// Returns:
//   - []byte: Size bytes ready for upload
func (l Lights) Marshal() []byte {
	buf := make([]byte, 0, Size)

	buf = appendColor(buf, l.Spot.Color)
	buf = common.AppendFloat32s(buf, l.Spot.Position[:]...)
	buf = common.AppendFloat32s(buf, l.Spot.Range)
	buf = common.AppendFloat32s(buf, l.Spot.Direction[:]...)
	buf = common.AppendFloat32s(buf, 0)

	buf = appendColor(buf, l.Point.Color)
	buf = common.AppendFloat32s(buf, l.Point.Position[:]...)
	buf = common.AppendFloat32s(buf, l.Point.Range)

	buf = appendColor(buf, l.Directional.Color)
	buf = common.AppendFloat32s(buf, l.Directional.Direction[:]...)
	buf = common.AppendFloat32s(buf, 0)

	buf = appendColor(buf, l.Ambient)

	buf = binary.LittleEndian.AppendUint32(buf, l.SpotCount)
	buf = binary.LittleEndian.AppendUint32(buf, l.PointCount)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	return buf
}

func appendColor(buf []byte, c common.Color) []byte {
	return common.AppendFloat32s(buf, c.R, c.G, c.B, c.A)
}

// DemoLights returns the lights of the post-processing demo: a red directional light, a green
// point light, a blue spot light and a green ambient term.
//
// Returns:
//   - Lights: the demo light block
func DemoLights() Lights {
	return Lights{
		Directional: DirectionalLight{
			Color:     common.Color{R: 1, A: 1},
			Direction: mgl32.Vec3{1, -1, 0},
		},
		Point: PointLight{
			Color:    common.Color{G: 1, A: 1},
			Position: mgl32.Vec3{1, -1, 0},
			Range:    2,
		},
		Spot: SpotLight{
			Color:     common.Color{B: 1, A: 1},
			Position:  mgl32.Vec3{1, 0, 0},
			Range:     2,
			Direction: mgl32.Vec3{-1, 0, 0},
		},
		Ambient:    common.Color{G: 1, A: 1},
		SpotCount:  1,
		PointCount: 1,
	}
}
