package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
)

// ErrInvalidLayout is returned when a program descriptor's variable or slot layout is inconsistent.
var ErrInvalidLayout = errors.New("shader: invalid layout")

// Variable is a named value inside a constant buffer.
type Variable struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Buffer is a constant buffer slot and the variables packed into it.
type Buffer struct {
	Slot      uint32
	Size      uint32
	Variables []Variable
}

// Resource names a texture or sampler slot.
type Resource struct {
	Name string
	Slot uint32
	// Cube marks a texture slot that samples a cube texture.
	Cube bool
}

// Descriptor describes a program and its named inputs.
// Layout offsets follow WGSL uniform rules; the WGSL source must declare matching structs at
// @group(0) (vertex) or @group(1) (pixel) with the binding numbers gfx documents.
type Descriptor struct {
	Name        string
	Stage       gfx.Stage
	Source      string
	EntryPoint  string
	VertexInput bool
	Buffers     []Buffer
	Textures    []Resource
	Samplers    []Resource
}

// Validate checks that every variable fits inside its buffer, names are unique and slots do not
// collide with the next binding range.
//
// Returns:
//   - error: an error wrapping ErrInvalidLayout, or nil
func (d Descriptor) Validate() error {
	if d.Source == "" || d.EntryPoint == "" {
		return fmt.Errorf("%w: program %q needs source and entry point", ErrInvalidLayout, d.Name)
	}
	names := make(map[string]struct{})
	use := func(name string) error {
		if _, dup := names[name]; dup {
			return fmt.Errorf("%w: program %q declares %q twice", ErrInvalidLayout, d.Name, name)
		}
		names[name] = struct{}{}
		return nil
	}
	for _, b := range d.Buffers {
		if b.Slot >= gfx.TextureBindingBase {
			return fmt.Errorf("%w: program %q buffer slot %d out of range", ErrInvalidLayout, d.Name, b.Slot)
		}
		if b.Size == 0 || b.Size%16 != 0 {
			return fmt.Errorf("%w: program %q buffer slot %d size %d is not a multiple of 16", ErrInvalidLayout, d.Name, b.Slot, b.Size)
		}
		for _, v := range b.Variables {
			if v.Size == 0 || v.Offset+v.Size > b.Size {
				return fmt.Errorf("%w: program %q variable %q does not fit its buffer", ErrInvalidLayout, d.Name, v.Name)
			}
			if err := use(v.Name); err != nil {
				return err
			}
		}
	}
	for _, r := range d.Textures {
		if r.Slot >= gfx.SamplerBindingBase-gfx.TextureBindingBase {
			return fmt.Errorf("%w: program %q texture slot %d out of range", ErrInvalidLayout, d.Name, r.Slot)
		}
		if err := use(r.Name); err != nil {
			return err
		}
	}
	for _, r := range d.Samplers {
		if err := use(r.Name); err != nil {
			return err
		}
	}
	return nil
}

// gfxDescriptor strips the names from d for the device.
func (d Descriptor) gfxDescriptor() gfx.ProgramDescriptor {
	out := gfx.ProgramDescriptor{
		Label:       d.Name,
		Stage:       d.Stage,
		Source:      d.Source,
		EntryPoint:  d.EntryPoint,
		VertexInput: d.VertexInput,
	}
	for _, b := range d.Buffers {
		out.ConstantBuffers = append(out.ConstantBuffers, gfx.ConstantBufferLayout{Slot: b.Slot, Size: b.Size})
	}
	for _, r := range d.Textures {
		out.Textures = append(out.Textures, gfx.TextureSlot{Slot: r.Slot, Cube: r.Cube})
	}
	for _, r := range d.Samplers {
		out.Samplers = append(out.Samplers, r.Slot)
	}
	return out
}
