// Package gfx defines the immediate-mode device contract the renderer core draws through.
//
// The core (materials, render targets, entities and the frame compositor) only ever talks to these
// interfaces. The wgpu renderer implements them for real output and gfxtest implements them for
// tests. Every object a Device creates comes back as a *resource.View holding one claim that the
// caller owns.
package gfx

import "github.com/Carmen-Shannon/oxy-postfx/engine/resource"

// Device creates GPU objects.
type Device interface {
	// CreateTexture allocates texture storage.
	//
	// Parameters:
	//   - desc: size, format, bind flags and cube-ness of the texture
	//   - layers: optional RGBA pixel data per array layer (6 for cube textures), nil for none
	//
	// Returns:
	//   - *resource.View: a KindTexture claim owned by the caller
	//   - error: error if the texture could not be created
	CreateTexture(desc TextureDescriptor, layers [][]byte) (*resource.View, error)

	// CreateRenderTargetView derives a writable view from a texture created with BindRenderTarget.
	// The returned view holds its own claim on the texture, so the caller may release tex afterwards.
	//
	// Parameters:
	//   - tex: the texture claim
	//
	// Returns:
	//   - *resource.View: a KindRenderTargetView claim owned by the caller
	//   - error: error if tex is not a render-target texture
	CreateRenderTargetView(tex *resource.View) (*resource.View, error)

	// CreateShaderResourceView derives a readable view from a texture created with BindShaderResource.
	// The returned view holds its own claim on the texture.
	//
	// Parameters:
	//   - tex: the texture claim
	//
	// Returns:
	//   - *resource.View: a KindShaderResourceView claim owned by the caller
	//   - error: error if tex cannot be sampled
	CreateShaderResourceView(tex *resource.View) (*resource.View, error)

	// CreateSampler creates a sampler state.
	CreateSampler(desc SamplerDescriptor) (*resource.View, error)

	// CreateRasterizerState creates a rasterizer state to be set with Context.SetRasterizerState.
	CreateRasterizerState(desc RasterizerDescriptor) (*resource.View, error)

	// CreateDepthStencilState creates a depth-stencil state to be set with Context.SetDepthStencilState.
	CreateDepthStencilState(desc DepthStencilDescriptor) (*resource.View, error)

	// CreateBuffer creates a vertex or index buffer initialised with desc.Data.
	CreateBuffer(desc BufferDescriptor) (*resource.View, error)

	// CreateProgram compiles a vertex or pixel program.
	CreateProgram(desc ProgramDescriptor) (*resource.View, error)
}

// Context issues commands in program order. A Context is owned by exactly one goroutine.
//
// Every Set* call that binds a view takes its own claim on it and drops the claim of whatever it
// replaces; binding nil unbinds the slot.
type Context interface {
	// ClearRenderTarget fills rtv with c.
	ClearRenderTarget(rtv *resource.View, c Color)

	// ClearDepthStencil resets dsv to depth and stencil.
	ClearDepthStencil(dsv *resource.View, depth float32, stencil uint8)

	// SetRenderTargets binds the color output and optional depth output.
	SetRenderTargets(rtv, dsv *resource.View)

	// SetRasterizerState binds a rasterizer state; nil restores DefaultRasterizer.
	SetRasterizerState(state *resource.View)

	// SetDepthStencilState binds a depth-stencil state; nil restores DefaultDepthStencil.
	SetDepthStencilState(state *resource.View)

	// SetPrimitiveTopology selects how vertices are assembled.
	SetPrimitiveTopology(t Topology)

	// SetVertexBuffer binds the vertex buffer; nil unbinds it.
	SetVertexBuffer(buf *resource.View)

	// SetIndexBuffer binds the 32-bit index buffer; nil unbinds it.
	SetIndexBuffer(buf *resource.View)

	// SetProgram activates a program for its stage; nil deactivates the stage.
	SetProgram(stage Stage, program *resource.View)

	// SetShaderResource binds a readable view to a texture slot of a stage.
	SetShaderResource(stage Stage, slot uint32, srv *resource.View)

	// SetSampler binds a sampler to a sampler slot of a stage.
	SetSampler(stage Stage, slot uint32, sampler *resource.View)

	// UpdateConstants replaces the contents of a stage's constant buffer slot for the next draws.
	UpdateConstants(stage Stage, slot uint32, data []byte)

	// Draw issues a non-indexed draw.
	Draw(vertexCount, startVertex uint32)

	// DrawIndexed issues an indexed draw.
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32)
}

// SwapChain owns the presentable surface and its depth buffer.
type SwapChain interface {
	// BackBuffer returns a claim on the current presentable render target. The caller releases it.
	BackBuffer() *resource.View

	// DepthStencil returns a claim on the depth buffer sized to the surface. The caller releases it.
	DepthStencil() *resource.View

	// Size returns the surface size in pixels.
	Size() (width, height int)

	// Resize reconfigures the surface and depth buffer.
	Resize(width, height int) error

	// Present submits all recorded work and shows the back buffer.
	// A syncInterval of 0 presents without waiting for vertical sync.
	Present(syncInterval int) error
}
