package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

func viewObjectOf(v *resource.View) (*viewObject, bool) {
	obj, ok := v.Object().(*viewObject)
	return obj, ok
}

func (r *renderer) ClearRenderTarget(rtv *resource.View, c gfx.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := viewObjectOf(rtv)
	if !ok {
		log.Printf("[Renderer] clear ignored: %v is not a render target view", rtv)
		return
	}
	if r.pass != nil && r.state.RenderTarget().Same(rtv) {
		r.endPass()
	}
	key := clearKey(obj)
	if old, ok := r.pendingColor[key]; ok {
		old.target.Release()
	}
	r.pendingColor[key] = pendingClear{target: rtv.Acquire(), color: c}
}

func (r *renderer) ClearDepthStencil(dsv *resource.View, depth float32, stencil uint8) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := viewObjectOf(dsv)
	if !ok {
		log.Printf("[Renderer] clear ignored: %v is not a depth view", dsv)
		return
	}
	if r.pass != nil && r.state.DepthTarget().Same(dsv) {
		r.endPass()
	}
	key := clearKey(obj)
	if old, ok := r.pendingDepth[key]; ok {
		old.target.Release()
	}
	r.pendingDepth[key] = pendingClear{target: dsv.Acquire(), depth: depth}
}

func (r *renderer) SetRenderTargets(rtv, dsv *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.SetRenderTargets(rtv, dsv) {
		r.endPass()
	}
}

func (r *renderer) SetRasterizerState(state *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetRasterizer(state)
}

func (r *renderer) SetDepthStencilState(state *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetDepthState(state)
}

func (r *renderer) SetPrimitiveTopology(t gfx.Topology) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetTopology(t)
}

func (r *renderer) SetVertexBuffer(buf *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetVertexBuffer(buf)
}

func (r *renderer) SetIndexBuffer(buf *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetIndexBuffer(buf)
}

func (r *renderer) SetProgram(stage gfx.Stage, program *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetProgram(stage, program)
}

func (r *renderer) SetShaderResource(stage gfx.Stage, slot uint32, srv *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetTexture(stage, slot, srv)
}

func (r *renderer) SetSampler(stage gfx.Stage, slot uint32, sampler *resource.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetSampler(stage, slot, sampler)
}

func (r *renderer) UpdateConstants(stage gfx.Stage, slot uint32, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.SetConstants(stage, slot, data)
}

func (r *renderer) Draw(vertexCount, startVertex uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.prepareDraw(false); err != nil {
		log.Printf("[Renderer] draw skipped: %v", err)
		return
	}
	r.pass.Draw(vertexCount, 1, startVertex, 0)
	r.drawCalls++
}

func (r *renderer) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.prepareDraw(true); err != nil {
		log.Printf("[Renderer] draw skipped: %v", err)
		return
	}
	r.pass.DrawIndexed(indexCount, 1, startIndex, baseVertex, 0)
	r.drawCalls++
}

func (r *renderer) ensureEncoder() error {
	if r.encoder != nil {
		return nil
	}
	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("renderer: create command encoder: %w", err)
	}
	r.encoder = encoder
	return nil
}

func (r *renderer) endPass() {
	if r.pass == nil {
		return
	}
	r.pass.End()
	r.pass.Release()
	r.pass = nil
}

// resolveView returns the wgpu view behind a target, acquiring the frame's surface texture for
// the back buffer.
func (r *renderer) resolveView(obj *viewObject) (*wgpu.TextureView, error) {
	if obj.backBuffer {
		if err := r.acquireFrame(); err != nil {
			return nil, err
		}
		return r.frameView, nil
	}
	if obj.view == nil {
		return nil, errors.New("renderer: view has been destroyed")
	}
	return obj.view, nil
}

// beginPass opens a render pass on the given targets, consuming their pending clears as load
// operations. Either target may be nil.
func (r *renderer) beginPass(color, depth *viewObject) error {
	desc := &wgpu.RenderPassDescriptor{}
	if color != nil {
		view, err := r.resolveView(color)
		if err != nil {
			return err
		}
		attachment := wgpu.RenderPassColorAttachment{
			View:    view,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if pc, ok := r.pendingColor[clearKey(color)]; ok {
			attachment.LoadOp = wgpu.LoadOpClear
			attachment.ClearValue = toColor(pc.color)
			pc.target.Release()
			delete(r.pendingColor, clearKey(color))
		}
		desc.ColorAttachments = []wgpu.RenderPassColorAttachment{attachment}
	}
	if depth != nil {
		view, err := r.resolveView(depth)
		if err != nil {
			return err
		}
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			View:         view,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if pc, ok := r.pendingDepth[clearKey(depth)]; ok {
			attachment.DepthLoadOp = wgpu.LoadOpClear
			attachment.DepthClearValue = pc.depth
			pc.target.Release()
			delete(r.pendingDepth, clearKey(depth))
		}
		desc.DepthStencilAttachment = attachment
	}

	if err := r.ensureEncoder(); err != nil {
		return err
	}
	r.pass = r.encoder.BeginRenderPass(desc)
	return nil
}

// flushColorClear runs an empty pass that performs the pending clear stored under key.
func (r *renderer) flushColorClear(key any) error {
	pc, ok := r.pendingColor[key]
	if !ok {
		return nil
	}
	r.endPass()
	obj, _ := viewObjectOf(pc.target)
	if err := r.beginPass(obj, nil); err != nil {
		return err
	}
	r.endPass()
	return nil
}

func (r *renderer) flushDepthClear(key any) error {
	pc, ok := r.pendingDepth[key]
	if !ok {
		return nil
	}
	r.endPass()
	obj, _ := viewObjectOf(pc.target)
	if err := r.beginPass(nil, obj); err != nil {
		return err
	}
	r.endPass()
	return nil
}

// flushClears performs every clear that no draw consumed.
func (r *renderer) flushClears() error {
	for key := range r.pendingColor {
		if err := r.flushColorClear(key); err != nil {
			return err
		}
	}
	for key := range r.pendingDepth {
		if err := r.flushDepthClear(key); err != nil {
			return err
		}
	}
	return nil
}

// flushSampledClears performs pending clears of textures the next draw samples, so the draw
// reads the cleared contents.
func (r *renderer) flushSampledClears() error {
	for _, stage := range []gfx.Stage{gfx.StageVertex, gfx.StagePixel} {
		for _, slot := range r.state.TextureSlots(stage) {
			obj, ok := viewObjectOf(r.state.Texture(stage, slot))
			if !ok {
				continue
			}
			if err := r.flushColorClear(clearKey(obj)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) boundPrograms() (vs, ps *programObject, err error) {
	vs, okVS := r.state.Program(gfx.StageVertex).Object().(*programObject)
	ps, okPS := r.state.Program(gfx.StagePixel).Object().(*programObject)
	if !okVS || !okPS {
		return nil, nil, errors.New("vertex and pixel programs must both be bound")
	}
	if vs.desc.Stage != gfx.StageVertex || ps.desc.Stage != gfx.StagePixel {
		return nil, nil, errors.New("program bound to the wrong stage")
	}
	return vs, ps, nil
}

func (r *renderer) prepareDraw(indexed bool) error {
	vs, ps, err := r.boundPrograms()
	if err != nil {
		return err
	}
	color, ok := viewObjectOf(r.state.RenderTarget())
	if !ok {
		return errors.New("no render target bound")
	}
	depth, _ := viewObjectOf(r.state.DepthTarget())

	if err := r.flushSampledClears(); err != nil {
		return err
	}
	if r.pass == nil {
		if err := r.beginPass(color, depth); err != nil {
			return err
		}
	}

	key := r.pipelineKey(vs, ps, color, depth)
	p, err := r.pipelines.Get(key, func(k pipeline.Key) (pipeline.Pipeline, error) {
		return r.buildPipeline(k, vs, ps)
	})
	if err != nil {
		return err
	}
	r.pass.SetPipeline(p.RenderPipeline())

	for _, prog := range []*programObject{vs, ps} {
		bg, err := r.bindGroup(prog)
		if err != nil {
			return err
		}
		r.pass.SetBindGroup(stageGroup(prog.desc.Stage), bg, nil)
	}

	if vs.desc.VertexInput {
		vb, ok := r.state.VertexBuffer().Object().(*bufferObject)
		if !ok || vb.kind != gfx.BufferVertex {
			return fmt.Errorf("program %q reads vertices but no vertex buffer is bound", vs.desc.Label)
		}
		r.pass.SetVertexBuffer(0, vb.buffer, 0, wgpu.WholeSize)
	}
	if indexed {
		ib, ok := r.state.IndexBuffer().Object().(*bufferObject)
		if !ok || ib.kind != gfx.BufferIndex {
			return errors.New("indexed draw without an index buffer")
		}
		r.pass.SetIndexBuffer(ib.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	}
	return nil
}

func (r *renderer) pipelineKey(vs, ps *programObject, color, depth *viewObject) pipeline.Key {
	key := pipeline.Key{
		VertexProgram: vs.id,
		PixelProgram:  ps.id,
		VertexInput:   vs.desc.VertexInput,
		Topology:      toTopology(r.state.Topology()),
		CullMode:      toCullMode(gfx.DefaultRasterizer().Cull),
		ColorFormat:   color.format,
		DepthFormat:   wgpu.TextureFormatUndefined,
	}
	if rs, ok := r.state.Rasterizer().Object().(*rasterObject); ok {
		key.CullMode = rs.cull
	}
	if depth != nil {
		ds, ok := r.state.DepthState().Object().(*depthObject)
		if !ok {
			ds = toDepthObject(gfx.DefaultDepthStencil())
		}
		key.DepthFormat = depth.format
		key.DepthWrite = ds.write
		key.DepthCompare = ds.compare
	}
	return key
}

func (r *renderer) buildPipeline(key pipeline.Key, vs, ps *programObject) (pipeline.Pipeline, error) {
	layout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            key.String(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{vs.layout, ps.layout},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create pipeline layout: %w", err)
	}

	var buffers []wgpu.VertexBufferLayout
	if key.VertexInput {
		buffers = []wgpu.VertexBufferLayout{vertexLayout()}
	}
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  vs.desc.Label + "+" + ps.desc.Label + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: vs.desc.EntryPoint,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     ps.module,
			EntryPoint: ps.desc.EntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    key.ColorFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  key.Topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  key.CullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if key.DepthFormat != wgpu.TextureFormatUndefined {
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            key.DepthFormat,
			DepthWriteEnabled: key.DepthWrite,
			DepthCompare:      key.DepthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created, err := r.device.CreateRenderPipeline(desc)
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("renderer: create render pipeline %s: %w", key, err)
	}
	return pipeline.NewPipeline(key, pipeline.WithRenderPipeline(created), pipeline.WithPipelineLayout(layout)), nil
}

// bindGroup builds the bind group of one program from the bound slots of its stage. Empty texture
// and sampler slots get the fallback objects.
func (r *renderer) bindGroup(prog *programObject) (*wgpu.BindGroup, error) {
	stage := prog.desc.Stage
	entries := make([]wgpu.BindGroupEntry, 0, len(prog.desc.ConstantBuffers)+len(prog.desc.Textures)+len(prog.desc.Samplers))

	for _, cb := range prog.desc.ConstantBuffers {
		buf, err := r.uniforms.Write(prog.desc.Label, r.state.Constants(stage, cb.Slot), cb.Size)
		if err != nil {
			return nil, fmt.Errorf("renderer: uniform buffer for %q: %w", prog.desc.Label, err)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: cb.Slot,
			Buffer:  buf,
			Offset:  0,
			Size:    uint64(cb.Size),
		})
	}
	for _, ts := range prog.desc.Textures {
		fallback := r.fallback2D
		if ts.Cube {
			fallback = r.fallbackCube
		}
		obj, ok := viewObjectOf(r.state.Texture(stage, ts.Slot))
		if !ok || obj.cube != ts.Cube || obj.view == nil {
			obj, _ = viewObjectOf(fallback)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     gfx.TextureBindingBase + ts.Slot,
			TextureView: obj.view,
		})
	}
	for _, slot := range prog.desc.Samplers {
		samp, ok := r.state.Sampler(stage, slot).Object().(*wgpu.Sampler)
		if !ok {
			samp = r.fallbackSampler.Object().(*wgpu.Sampler)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: gfx.SamplerBindingBase + slot,
			Sampler: samp,
		})
	}

	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   prog.desc.Label + " Bind Group",
		Layout:  prog.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create bind group for %q: %w", prog.desc.Label, err)
	}
	r.frameBindGroups = append(r.frameBindGroups, bg)
	return bg, nil
}
