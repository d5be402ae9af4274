package content

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/light"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/shader"
)

var (
	//go:embed assets/lighting.wgsl
	lightingSource string

	//go:embed assets/sky.wgsl
	skySource string

	//go:embed assets/blur.wgsl
	blurSource string
)

const (
	vertexEntry = "vs_main"
	pixelEntry  = "ps_main"
)

// programPair is the vertex and pixel program of one material.
type programPair struct {
	vertex shader.Descriptor
	pixel  shader.Descriptor
}

func lightingPrograms() programPair {
	source := light.LightsSource + "\n" + lightingSource
	return programPair{
		vertex: shader.Descriptor{
			Name:        "vsLighting",
			Stage:       gfx.StageVertex,
			Source:      source,
			EntryPoint:  vertexEntry,
			VertexInput: true,
			Buffers: []shader.Buffer{{Slot: 0, Size: 192, Variables: []shader.Variable{
				{Name: "world", Offset: 0, Size: 64},
				{Name: "view", Offset: 64, Size: 64},
				{Name: "projection", Offset: 128, Size: 64},
			}}},
		},
		pixel: shader.Descriptor{
			Name:       "psLighting",
			Stage:      gfx.StagePixel,
			Source:     source,
			EntryPoint: pixelEntry,
			Buffers: []shader.Buffer{{Slot: 0, Size: light.Size, Variables: []shader.Variable{
				{Name: "lights", Offset: 0, Size: light.Size},
			}}},
			Textures: []shader.Resource{{Name: "Texture", Slot: 0}, {Name: "NormalMap", Slot: 1}},
			Samplers: []shader.Resource{{Name: "Sampler", Slot: 0}},
		},
	}
}

func skyPrograms() programPair {
	return programPair{
		vertex: shader.Descriptor{
			Name:        "SkyVS",
			Stage:       gfx.StageVertex,
			Source:      skySource,
			EntryPoint:  vertexEntry,
			VertexInput: true,
			Buffers: []shader.Buffer{{Slot: 0, Size: 128, Variables: []shader.Variable{
				{Name: "view", Offset: 0, Size: 64},
				{Name: "projection", Offset: 64, Size: 64},
			}}},
		},
		pixel: shader.Descriptor{
			Name:       "SkyPS",
			Stage:      gfx.StagePixel,
			Source:     skySource,
			EntryPoint: pixelEntry,
			Textures:   []shader.Resource{{Name: "Sky", Slot: 0, Cube: true}},
			Samplers:   []shader.Resource{{Name: "Sampler", Slot: 0}},
		},
	}
}

func blurPrograms() programPair {
	return programPair{
		vertex: shader.Descriptor{
			Name:       "vsBlur",
			Stage:      gfx.StageVertex,
			Source:     blurSource,
			EntryPoint: vertexEntry,
		},
		pixel: shader.Descriptor{
			Name:       "psBlur",
			Stage:      gfx.StagePixel,
			Source:     blurSource,
			EntryPoint: pixelEntry,
			Buffers: []shader.Buffer{{Slot: 0, Size: 16, Variables: []shader.Variable{
				{Name: "blurAmount", Offset: 0, Size: 4},
				{Name: "pixelWidth", Offset: 4, Size: 4},
				{Name: "pixelHeight", Offset: 8, Size: 4},
			}}},
			Textures: []shader.Resource{{Name: "InitialRender", Slot: 0}},
			Samplers: []shader.Resource{{Name: "Sampler", Slot: 0}},
		},
	}
}
