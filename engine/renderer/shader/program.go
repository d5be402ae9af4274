// Package shader wraps device programs with named constant variables and resource slots, so
// callers set "view" or "lights" by name instead of tracking buffer offsets.
package shader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a compiled vertex or pixel program plus CPU-side copies of its constant buffers.
// Values set by name are staged locally and reach the GPU on CopyAllBufferData.
type Program interface {
	// Name returns the program's name.
	Name() string

	// Stage returns the pipeline stage the program runs in.
	Stage() gfx.Stage

	// Handle returns the device program without taking a claim.
	Handle() *resource.View

	// HasVariable reports whether a constant variable with the given name exists.
	HasVariable(name string) bool

	// SetData copies raw bytes into a constant variable.
	//
	// Parameters:
	//   - name: the variable name
	//   - data: bytes to copy; must be exactly the variable's size
	//
	// Returns:
	//   - bool: false if the variable does not exist or the size does not match
	SetData(name string, data []byte) bool

	// SetMatrix4x4 stores a column-major matrix in a 64 byte variable.
	SetMatrix4x4(name string, m mgl32.Mat4) bool

	// SetFloat stores a float in a 4 byte variable.
	SetFloat(name string, f float32) bool

	// SetInt stores a signed integer in a 4 byte variable.
	SetInt(name string, i int32) bool

	// SetFloat3 stores a vector in a 12 byte variable.
	SetFloat3(name string, v mgl32.Vec3) bool

	// SetFloat4 stores a vector in a 16 byte variable.
	SetFloat4(name string, v mgl32.Vec4) bool

	// BindShaderResource binds view to the named texture slot on ctx. A nil view unbinds it.
	//
	// Returns:
	//   - bool: false if no texture slot has that name
	BindShaderResource(ctx gfx.Context, name string, view *resource.View) bool

	// BindSampler binds sampler to the named sampler slot on ctx. A nil sampler unbinds it.
	//
	// Returns:
	//   - bool: false if no sampler slot has that name
	BindSampler(ctx gfx.Context, name string, sampler *resource.View) bool

	// CopyAllBufferData uploads every constant buffer to ctx.
	CopyAllBufferData(ctx gfx.Context)

	// SetShader activates the program on ctx.
	SetShader(ctx gfx.Context)

	// Release releases the device program. Further use of the program is invalid.
	Release()
}

type constantBuffer struct {
	slot uint32
	data []byte
}

type variableRef struct {
	buffer int
	offset uint32
	size   uint32
}

// program is the implementation of the Program interface.
type program struct {
	name     string
	stage    gfx.Stage
	handle   *resource.View
	buffers  []constantBuffer
	vars     map[string]variableRef
	textures map[string]uint32
	samplers map[string]uint32
}

var _ Program = &program{}

// NewProgram validates desc and compiles it on dev.
//
// Parameters:
//   - dev: the device that creates the program
//   - desc: the program descriptor
//
// Returns:
//   - Program: the new program, owning one claim on the device program
//   - error: error if desc is invalid or compilation fails
func NewProgram(dev gfx.Device, desc Descriptor) (Program, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	handle, err := dev.CreateProgram(desc.gfxDescriptor())
	if err != nil {
		return nil, fmt.Errorf("shader: failed to create program %q: %w", desc.Name, err)
	}

	p := &program{
		name:     desc.Name,
		stage:    desc.Stage,
		handle:   handle,
		vars:     make(map[string]variableRef),
		textures: make(map[string]uint32),
		samplers: make(map[string]uint32),
	}
	for i, b := range desc.Buffers {
		p.buffers = append(p.buffers, constantBuffer{slot: b.Slot, data: make([]byte, b.Size)})
		for _, v := range b.Variables {
			p.vars[v.Name] = variableRef{buffer: i, offset: v.Offset, size: v.Size}
		}
	}
	for _, r := range desc.Textures {
		p.textures[r.Name] = r.Slot
	}
	for _, r := range desc.Samplers {
		p.samplers[r.Name] = r.Slot
	}
	return p, nil
}

func (p *program) Name() string           { return p.name }
func (p *program) Stage() gfx.Stage       { return p.stage }
func (p *program) Handle() *resource.View { return p.handle }

func (p *program) HasVariable(name string) bool {
	_, ok := p.vars[name]
	return ok
}

func (p *program) SetData(name string, data []byte) bool {
	ref, ok := p.vars[name]
	if !ok || uint32(len(data)) != ref.size {
		return false
	}
	copy(p.buffers[ref.buffer].data[ref.offset:ref.offset+ref.size], data)
	return true
}

func (p *program) SetMatrix4x4(name string, m mgl32.Mat4) bool {
	return p.SetData(name, common.Mat4Bytes(m))
}

func (p *program) SetFloat(name string, f float32) bool {
	return p.SetData(name, common.AppendFloat32s(nil, f))
}

func (p *program) SetInt(name string, i int32) bool {
	return p.SetData(name, binary.LittleEndian.AppendUint32(nil, uint32(i)))
}

func (p *program) SetFloat3(name string, v mgl32.Vec3) bool {
	return p.SetData(name, common.AppendFloat32s(nil, v[:]...))
}

func (p *program) SetFloat4(name string, v mgl32.Vec4) bool {
	return p.SetData(name, common.AppendFloat32s(nil, v[:]...))
}

func (p *program) BindShaderResource(ctx gfx.Context, name string, view *resource.View) bool {
	slot, ok := p.textures[name]
	if !ok {
		return false
	}
	ctx.SetShaderResource(p.stage, slot, view)
	return true
}

func (p *program) BindSampler(ctx gfx.Context, name string, sampler *resource.View) bool {
	slot, ok := p.samplers[name]
	if !ok {
		return false
	}
	ctx.SetSampler(p.stage, slot, sampler)
	return true
}

func (p *program) CopyAllBufferData(ctx gfx.Context) {
	for _, b := range p.buffers {
		ctx.UpdateConstants(p.stage, b.slot, b.data)
	}
}

func (p *program) SetShader(ctx gfx.Context) {
	ctx.SetProgram(p.stage, p.handle)
}

func (p *program) Release() {
	p.handle.Release()
}

// float32At reads back a float variable; used by tests and diagnostics.
func float32At(data []byte, offset uint32) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}
