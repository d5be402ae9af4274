package compositor

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

// Pass is one step of the frame: the targets it writes, the state it overrides and the commands
// it issues. Everything a pass changes is undone when it ends.
type Pass struct {
	// Name identifies the pass in logs and in FrameCompositor.Passes.
	Name string

	// Targets returns claims on the color and optional depth output. The runner binds them and
	// releases the returned claims.
	Targets func() (rtv, dsv *resource.View)

	// Rasterizer overrides the rasterizer state for the pass; nil keeps the default.
	Rasterizer *resource.View

	// DepthStencil overrides the depth-stencil state for the pass; nil keeps the default.
	DepthStencil *resource.View

	// Execute issues the pass's commands.
	Execute func(ctx gfx.Context)
}

// run binds the pass's outputs and states, executes it, then restores the context.
//
// Returns:
//   - int: the number of draws the pass issued
func (p Pass) run(ctx gfx.Context) int {
	tc := newTrackedContext(ctx)

	rtv, dsv := p.Targets()
	tc.SetRenderTargets(rtv, dsv)
	rtv.Release()
	dsv.Release()

	if p.Rasterizer != nil {
		tc.SetRasterizerState(p.Rasterizer)
	}
	if p.DepthStencil != nil {
		tc.SetDepthStencilState(p.DepthStencil)
	}

	p.Execute(tc)
	tc.restore()
	return tc.draws
}

type slotKey struct {
	stage gfx.Stage
	slot  uint32
}

// trackedContext forwards to a gfx.Context and remembers which state it changed so the change can
// be undone.
type trackedContext struct {
	gfx.Context

	rasterizer bool
	depth      bool
	textures   []slotKey
	samplers   []slotKey
	draws      int
}

var _ gfx.Context = &trackedContext{}

func newTrackedContext(ctx gfx.Context) *trackedContext {
	return &trackedContext{Context: ctx}
}

func (t *trackedContext) SetRasterizerState(state *resource.View) {
	t.rasterizer = true
	t.Context.SetRasterizerState(state)
}

func (t *trackedContext) SetDepthStencilState(state *resource.View) {
	t.depth = true
	t.Context.SetDepthStencilState(state)
}

func (t *trackedContext) SetShaderResource(stage gfx.Stage, slot uint32, srv *resource.View) {
	t.textures = touch(t.textures, slotKey{stage, slot})
	t.Context.SetShaderResource(stage, slot, srv)
}

func (t *trackedContext) SetSampler(stage gfx.Stage, slot uint32, sampler *resource.View) {
	t.samplers = touch(t.samplers, slotKey{stage, slot})
	t.Context.SetSampler(stage, slot, sampler)
}

func (t *trackedContext) Draw(vertexCount, startVertex uint32) {
	t.draws++
	t.Context.Draw(vertexCount, startVertex)
}

func (t *trackedContext) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	t.draws++
	t.Context.DrawIndexed(indexCount, startIndex, baseVertex)
}

// restore returns every state the pass touched to its default and unbinds every texture and
// sampler slot it bound, in bind order.
func (t *trackedContext) restore() {
	for _, k := range t.textures {
		t.Context.SetShaderResource(k.stage, k.slot, nil)
	}
	for _, k := range t.samplers {
		t.Context.SetSampler(k.stage, k.slot, nil)
	}
	if t.rasterizer {
		t.Context.SetRasterizerState(nil)
	}
	if t.depth {
		t.Context.SetDepthStencilState(nil)
	}
}

func touch(keys []slotKey, k slotKey) []slotKey {
	if slices.Contains(keys, k) {
		return keys
	}
	return append(keys, k)
}
