package gfx

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

// Bindings is the bound pipeline state of a Context. It holds its own claim on every bound view,
// so a view stays alive while bound even if every other owner has released it.
// Context implementations embed it and translate the state into backend commands.
type Bindings struct {
	renderTarget *resource.View
	depthTarget  *resource.View
	rasterizer   *resource.View
	depthState   *resource.View
	topology     Topology
	vertexBuffer *resource.View
	indexBuffer  *resource.View
	programs     [2]*resource.View
	textures     [2]map[uint32]*resource.View
	samplers     [2]map[uint32]*resource.View
	constants    [2]map[uint32][]byte
}

// NewBindings creates an empty binding table.
func NewBindings() *Bindings {
	b := &Bindings{}
	for i := range b.textures {
		b.textures[i] = make(map[uint32]*resource.View)
		b.samplers[i] = make(map[uint32]*resource.View)
		b.constants[i] = make(map[uint32][]byte)
	}
	return b
}

// swap replaces *dst with a fresh claim on v. It reports whether the bound object changed.
func swap(dst **resource.View, v *resource.View) bool {
	if (*dst).Same(v) {
		return false
	}
	old := *dst
	*dst = v.Acquire()
	old.Release()
	return true
}

func swapSlot(m map[uint32]*resource.View, slot uint32, v *resource.View) bool {
	cur := m[slot]
	if cur.Same(v) {
		return false
	}
	if v == nil {
		delete(m, slot)
	} else {
		m[slot] = v.Acquire()
	}
	cur.Release()
	return true
}

// SetRenderTargets binds the outputs and reports whether either changed.
func (b *Bindings) SetRenderTargets(rtv, dsv *resource.View) bool {
	c1 := swap(&b.renderTarget, rtv)
	c2 := swap(&b.depthTarget, dsv)
	return c1 || c2
}

// SetRasterizer binds a rasterizer state and reports whether it changed.
func (b *Bindings) SetRasterizer(v *resource.View) bool { return swap(&b.rasterizer, v) }

// SetDepthState binds a depth-stencil state and reports whether it changed.
func (b *Bindings) SetDepthState(v *resource.View) bool { return swap(&b.depthState, v) }

// SetTopology selects the primitive topology.
func (b *Bindings) SetTopology(t Topology) { b.topology = t }

// SetVertexBuffer binds the vertex buffer.
func (b *Bindings) SetVertexBuffer(v *resource.View) bool { return swap(&b.vertexBuffer, v) }

// SetIndexBuffer binds the index buffer.
func (b *Bindings) SetIndexBuffer(v *resource.View) bool { return swap(&b.indexBuffer, v) }

// SetProgram binds the program of a stage.
func (b *Bindings) SetProgram(stage Stage, v *resource.View) bool { return swap(&b.programs[stage], v) }

// SetTexture binds a readable view to a texture slot.
func (b *Bindings) SetTexture(stage Stage, slot uint32, v *resource.View) bool {
	return swapSlot(b.textures[stage], slot, v)
}

// SetSampler binds a sampler to a sampler slot.
func (b *Bindings) SetSampler(stage Stage, slot uint32, v *resource.View) bool {
	return swapSlot(b.samplers[stage], slot, v)
}

// SetConstants stores a copy of data as the contents of a constant buffer slot.
func (b *Bindings) SetConstants(stage Stage, slot uint32, data []byte) {
	b.constants[stage][slot] = append(b.constants[stage][slot][:0], data...)
}

// RenderTarget returns the bound color output without taking a claim.
func (b *Bindings) RenderTarget() *resource.View { return b.renderTarget }

// DepthTarget returns the bound depth output without taking a claim.
func (b *Bindings) DepthTarget() *resource.View { return b.depthTarget }

// Rasterizer returns the bound rasterizer state, nil meaning default.
func (b *Bindings) Rasterizer() *resource.View { return b.rasterizer }

// DepthState returns the bound depth-stencil state, nil meaning default.
func (b *Bindings) DepthState() *resource.View { return b.depthState }

// Topology returns the primitive topology.
func (b *Bindings) Topology() Topology { return b.topology }

// VertexBuffer returns the bound vertex buffer.
func (b *Bindings) VertexBuffer() *resource.View { return b.vertexBuffer }

// IndexBuffer returns the bound index buffer.
func (b *Bindings) IndexBuffer() *resource.View { return b.indexBuffer }

// Program returns the program bound to stage.
func (b *Bindings) Program(stage Stage) *resource.View { return b.programs[stage] }

// Texture returns the view bound to a texture slot.
func (b *Bindings) Texture(stage Stage, slot uint32) *resource.View { return b.textures[stage][slot] }

// Sampler returns the sampler bound to a sampler slot.
func (b *Bindings) Sampler(stage Stage, slot uint32) *resource.View { return b.samplers[stage][slot] }

// Constants returns the current contents of a constant buffer slot.
func (b *Bindings) Constants(stage Stage, slot uint32) []byte { return b.constants[stage][slot] }

// TextureSlots returns the occupied texture slots of a stage in ascending order.
func (b *Bindings) TextureSlots(stage Stage) []uint32 { return sortedSlots(b.textures[stage]) }

// SamplerSlots returns the occupied sampler slots of a stage in ascending order.
func (b *Bindings) SamplerSlots(stage Stage) []uint32 { return sortedSlots(b.samplers[stage]) }

func sortedSlots(m map[uint32]*resource.View) []uint32 {
	slots := make([]uint32, 0, len(m))
	for s := range m {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}

// Reset releases every claim held by the table and clears all state.
func (b *Bindings) Reset() {
	b.SetRenderTargets(nil, nil)
	b.SetRasterizer(nil)
	b.SetDepthState(nil)
	b.SetVertexBuffer(nil)
	b.SetIndexBuffer(nil)
	for stage := range b.programs {
		b.SetProgram(Stage(stage), nil)
		for slot := range b.textures[stage] {
			b.SetTexture(Stage(stage), slot, nil)
		}
		for slot := range b.samplers[stage] {
			b.SetSampler(Stage(stage), slot, nil)
		}
		clear(b.constants[stage])
	}
}
