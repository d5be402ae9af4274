// Package gfxtest provides a recording gfx device for tests that need no GPU.
//
// Device implements gfx.Device, gfx.Context and gfx.SwapChain. It records every command, takes a
// snapshot of the bound state at each draw, and counts live objects through a resource.Tracker.
package gfxtest

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

// Texture is the backend object behind a KindTexture view.
type Texture struct {
	Desc   gfx.TextureDescriptor
	Layers [][]byte
}

// TextureView is the backend object behind render target, shader resource and depth views.
// It keeps a claim on its texture for as long as it lives.
type TextureView struct {
	Texture *resource.View
}

// Call is one recorded command.
type Call struct {
	Op    string
	Stage gfx.Stage
	Slot  uint32
	// Label is the label of the view the command used, "" for nil. SetRenderTargets records
	// "rtv|dsv".
	Label string
	Count uint32
}

// DrawRecord is the bound state at the moment of a draw.
type DrawRecord struct {
	Indexed       bool
	Count         uint32
	RenderTarget  string
	DepthTarget   string
	Rasterizer    string
	DepthState    string
	VertexBuffer  string
	IndexBuffer   string
	VertexProgram string
	PixelProgram  string
	// PixelTextures maps pixel texture slots to view labels.
	PixelTextures map[uint32]string
	// PixelSamplers maps pixel sampler slots to sampler labels.
	PixelSamplers map[uint32]string
	// Constants holds copies of every constant buffer, keyed "vertex/0", "pixel/1"...
	Constants map[string][]byte
}

// Device is the recording device. It is not safe for concurrent use.
type Device struct {
	Tracker *resource.Tracker
	Calls   []Call
	Draws   []DrawRecord

	// Fail makes the named creation method (e.g. "CreateRasterizerState") return an error.
	Fail map[string]error

	state      *gfx.Bindings
	width      int
	height     int
	backBuffer *resource.View
	depth      *resource.View
	presents   int
}

var (
	_ gfx.Device    = &Device{}
	_ gfx.Context   = &Device{}
	_ gfx.SwapChain = &Device{}
)

// NewDevice creates a recording device whose swap chain is width x height.
func NewDevice(width, height int) *Device {
	d := &Device{
		Tracker: resource.NewTracker(),
		Fail:    make(map[string]error),
		state:   gfx.NewBindings(),
		width:   width,
		height:  height,
	}
	d.backBuffer = d.Tracker.NewView(resource.KindRenderTargetView, "backbuffer", &TextureView{}, nil)
	d.depth = d.newDepth()
	return d
}

func (d *Device) newDepth() *resource.View {
	tex := d.Tracker.NewView(resource.KindTexture, "depth texture", &Texture{Desc: gfx.TextureDescriptor{
		Label: "depth", Width: uint32(d.width), Height: uint32(d.height), Format: gfx.FormatDepth24Plus, Bind: gfx.BindDepthStencil,
	}}, nil)
	view := d.newTextureView(resource.KindDepthStencilView, "depth", tex)
	tex.Release()
	return view
}

func (d *Device) newTextureView(kind resource.Kind, label string, tex *resource.View) *resource.View {
	return d.Tracker.NewView(kind, label, &TextureView{Texture: tex.Acquire()}, func(object any) {
		object.(*TextureView).Texture.Release()
	})
}

func (d *Device) fail(op string) error {
	if err, ok := d.Fail[op]; ok {
		return fmt.Errorf("gfxtest: %s: %w", op, err)
	}
	return nil
}

// State exposes the bound state for assertions.
func (d *Device) State() *gfx.Bindings { return d.state }

// Presents returns how many frames were presented.
func (d *Device) Presents() int { return d.presents }

// Reset drops the recorded calls and draws but keeps objects and bindings.
func (d *Device) Reset() {
	d.Calls = nil
	d.Draws = nil
}

// Ops returns the recorded operation names in order.
func (d *Device) Ops() []string {
	ops := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Release unbinds everything and releases the swap chain views.
func (d *Device) Release() {
	d.state.Reset()
	d.backBuffer.Release()
	d.depth.Release()
}

// Device

func (d *Device) CreateTexture(desc gfx.TextureDescriptor, layers [][]byte) (*resource.View, error) {
	if err := d.fail("CreateTexture"); err != nil {
		return nil, err
	}
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("gfxtest: texture %q has zero size", desc.Label)
	}
	return d.Tracker.NewView(resource.KindTexture, desc.Label, &Texture{Desc: desc, Layers: layers}, nil), nil
}

func (d *Device) textureOf(tex *resource.View, flag gfx.BindFlags) (*Texture, error) {
	t, ok := tex.Object().(*Texture)
	if !ok {
		return nil, fmt.Errorf("gfxtest: %v is not a texture", tex)
	}
	if t.Desc.Bind&flag == 0 {
		return nil, fmt.Errorf("gfxtest: texture %q lacks bind flag %d", t.Desc.Label, flag)
	}
	return t, nil
}

func (d *Device) CreateRenderTargetView(tex *resource.View) (*resource.View, error) {
	if err := d.fail("CreateRenderTargetView"); err != nil {
		return nil, err
	}
	t, err := d.textureOf(tex, gfx.BindRenderTarget)
	if err != nil {
		return nil, err
	}
	return d.newTextureView(resource.KindRenderTargetView, t.Desc.Label+" rtv", tex), nil
}

func (d *Device) CreateShaderResourceView(tex *resource.View) (*resource.View, error) {
	if err := d.fail("CreateShaderResourceView"); err != nil {
		return nil, err
	}
	t, err := d.textureOf(tex, gfx.BindShaderResource)
	if err != nil {
		return nil, err
	}
	return d.newTextureView(resource.KindShaderResourceView, t.Desc.Label+" srv", tex), nil
}

func (d *Device) CreateSampler(desc gfx.SamplerDescriptor) (*resource.View, error) {
	if err := d.fail("CreateSampler"); err != nil {
		return nil, err
	}
	return d.Tracker.NewView(resource.KindSampler, desc.Label, desc, nil), nil
}

func (d *Device) CreateRasterizerState(desc gfx.RasterizerDescriptor) (*resource.View, error) {
	if err := d.fail("CreateRasterizerState"); err != nil {
		return nil, err
	}
	return d.Tracker.NewView(resource.KindRasterizerState, desc.Label, desc, nil), nil
}

func (d *Device) CreateDepthStencilState(desc gfx.DepthStencilDescriptor) (*resource.View, error) {
	if err := d.fail("CreateDepthStencilState"); err != nil {
		return nil, err
	}
	return d.Tracker.NewView(resource.KindDepthStencilState, desc.Label, desc, nil), nil
}

func (d *Device) CreateBuffer(desc gfx.BufferDescriptor) (*resource.View, error) {
	if err := d.fail("CreateBuffer"); err != nil {
		return nil, err
	}
	if len(desc.Data) == 0 {
		return nil, fmt.Errorf("gfxtest: buffer %q is empty", desc.Label)
	}
	return d.Tracker.NewView(resource.KindBuffer, desc.Label, desc, nil), nil
}

func (d *Device) CreateProgram(desc gfx.ProgramDescriptor) (*resource.View, error) {
	if err := d.fail("CreateProgram"); err != nil {
		return nil, err
	}
	return d.Tracker.NewView(resource.KindProgram, desc.Label, desc, nil), nil
}

// Context

func (d *Device) record(op string, v *resource.View) {
	d.Calls = append(d.Calls, Call{Op: op, Label: v.Label()})
}

func (d *Device) ClearRenderTarget(rtv *resource.View, c gfx.Color) {
	d.record("ClearRenderTarget", rtv)
}

func (d *Device) ClearDepthStencil(dsv *resource.View, depth float32, stencil uint8) {
	d.record("ClearDepthStencil", dsv)
}

func (d *Device) SetRenderTargets(rtv, dsv *resource.View) {
	d.state.SetRenderTargets(rtv, dsv)
	d.Calls = append(d.Calls, Call{Op: "SetRenderTargets", Label: rtv.Label() + "|" + dsv.Label()})
}

func (d *Device) SetRasterizerState(state *resource.View) {
	d.state.SetRasterizer(state)
	d.record("SetRasterizerState", state)
}

func (d *Device) SetDepthStencilState(state *resource.View) {
	d.state.SetDepthState(state)
	d.record("SetDepthStencilState", state)
}

func (d *Device) SetPrimitiveTopology(t gfx.Topology) {
	d.state.SetTopology(t)
	d.Calls = append(d.Calls, Call{Op: "SetPrimitiveTopology", Count: uint32(t)})
}

func (d *Device) SetVertexBuffer(buf *resource.View) {
	d.state.SetVertexBuffer(buf)
	d.record("SetVertexBuffer", buf)
}

func (d *Device) SetIndexBuffer(buf *resource.View) {
	d.state.SetIndexBuffer(buf)
	d.record("SetIndexBuffer", buf)
}

func (d *Device) SetProgram(stage gfx.Stage, program *resource.View) {
	d.state.SetProgram(stage, program)
	d.Calls = append(d.Calls, Call{Op: "SetProgram", Stage: stage, Label: program.Label()})
}

func (d *Device) SetShaderResource(stage gfx.Stage, slot uint32, srv *resource.View) {
	d.state.SetTexture(stage, slot, srv)
	d.Calls = append(d.Calls, Call{Op: "SetShaderResource", Stage: stage, Slot: slot, Label: srv.Label()})
}

func (d *Device) SetSampler(stage gfx.Stage, slot uint32, sampler *resource.View) {
	d.state.SetSampler(stage, slot, sampler)
	d.Calls = append(d.Calls, Call{Op: "SetSampler", Stage: stage, Slot: slot, Label: sampler.Label()})
}

func (d *Device) UpdateConstants(stage gfx.Stage, slot uint32, data []byte) {
	d.state.SetConstants(stage, slot, data)
	d.Calls = append(d.Calls, Call{Op: "UpdateConstants", Stage: stage, Slot: slot, Count: uint32(len(data))})
}

func (d *Device) Draw(vertexCount, startVertex uint32) {
	d.Calls = append(d.Calls, Call{Op: "Draw", Count: vertexCount})
	d.Draws = append(d.Draws, d.snapshot(false, vertexCount))
}

func (d *Device) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	d.Calls = append(d.Calls, Call{Op: "DrawIndexed", Count: indexCount})
	d.Draws = append(d.Draws, d.snapshot(true, indexCount))
}

func (d *Device) snapshot(indexed bool, count uint32) DrawRecord {
	s := d.state
	rec := DrawRecord{
		Indexed:       indexed,
		Count:         count,
		RenderTarget:  s.RenderTarget().Label(),
		DepthTarget:   s.DepthTarget().Label(),
		Rasterizer:    s.Rasterizer().Label(),
		DepthState:    s.DepthState().Label(),
		VertexBuffer:  s.VertexBuffer().Label(),
		IndexBuffer:   s.IndexBuffer().Label(),
		VertexProgram: s.Program(gfx.StageVertex).Label(),
		PixelProgram:  s.Program(gfx.StagePixel).Label(),
		PixelTextures: make(map[uint32]string),
		PixelSamplers: make(map[uint32]string),
		Constants:     make(map[string][]byte),
	}
	for _, slot := range s.TextureSlots(gfx.StagePixel) {
		rec.PixelTextures[slot] = s.Texture(gfx.StagePixel, slot).Label()
	}
	for _, slot := range s.SamplerSlots(gfx.StagePixel) {
		rec.PixelSamplers[slot] = s.Sampler(gfx.StagePixel, slot).Label()
	}
	for _, stage := range []gfx.Stage{gfx.StageVertex, gfx.StagePixel} {
		for slot := uint32(0); slot < gfx.TextureBindingBase; slot++ {
			if data := s.Constants(stage, slot); data != nil {
				rec.Constants[fmt.Sprintf("%s/%d", stage, slot)] = append([]byte(nil), data...)
			}
		}
	}
	return rec
}

// SwapChain

func (d *Device) BackBuffer() *resource.View { return d.backBuffer.Acquire() }

func (d *Device) DepthStencil() *resource.View { return d.depth.Acquire() }

func (d *Device) Size() (int, int) { return d.width, d.height }

func (d *Device) Resize(width, height int) error {
	if err := d.fail("Resize"); err != nil {
		return err
	}
	d.width, d.height = width, height
	d.depth.Release()
	d.depth = d.newDepth()
	d.Calls = append(d.Calls, Call{Op: "Resize"})
	return nil
}

func (d *Device) Present(syncInterval int) error {
	if err := d.fail("Present"); err != nil {
		return err
	}
	d.presents++
	d.Calls = append(d.Calls, Call{Op: "Present", Count: uint32(syncInterval)})
	return nil
}
