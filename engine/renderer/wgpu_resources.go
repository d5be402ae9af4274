package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-postfx/common"
	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

func destroyTexture(object any) {
	object.(*textureObject).texture.Release()
}

func destroyView(object any) {
	v := object.(*viewObject)
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
	v.texture.Release()
}

func destroySampler(object any) {
	object.(*wgpu.Sampler).Release()
}

func destroyBuffer(object any) {
	object.(*bufferObject).buffer.Release()
}

func (r *renderer) CreateTexture(desc gfx.TextureDescriptor, layers [][]byte) (*resource.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createTexture(desc, layers)
}

func (r *renderer) createTexture(desc gfx.TextureDescriptor, layers [][]byte) (*resource.View, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("renderer: texture %q has zero size", desc.Label)
	}
	layerCount := 1
	if desc.Cube {
		layerCount = 6
	}
	if len(layers) > layerCount {
		return nil, fmt.Errorf("renderer: texture %q has %d layers of data for %d layers", desc.Label, len(layers), layerCount)
	}
	rowBytes := desc.Width * 4
	for i, px := range layers {
		if px != nil && uint32(len(px)) != rowBytes*desc.Height {
			return nil, fmt.Errorf("renderer: texture %q layer %d has %d bytes, want %d", desc.Label, i, len(px), rowBytes*desc.Height)
		}
	}

	format := toTextureFormat(desc.Format)
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     toTextureUsage(desc.Bind),
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: uint32(layerCount),
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create texture %q: %w", desc.Label, err)
	}

	for i, px := range layers {
		if px == nil {
			continue
		}
		r.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{Z: uint32(i)},
				Aspect:   wgpu.TextureAspectAll,
			},
			px,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  rowBytes,
				RowsPerImage: desc.Height,
			},
			&wgpu.Extent3D{
				Width:              desc.Width,
				Height:             desc.Height,
				DepthOrArrayLayers: 1,
			},
		)
	}

	return r.tracker.NewView(resource.KindTexture, desc.Label, &textureObject{
		texture: tex,
		desc:    desc,
		format:  format,
	}, destroyTexture), nil
}

func (r *renderer) textureOf(tex *resource.View, flag gfx.BindFlags) (*textureObject, error) {
	t, ok := tex.Object().(*textureObject)
	if !ok {
		return nil, fmt.Errorf("renderer: %v is not a texture", tex)
	}
	if t.desc.Bind&flag == 0 {
		return nil, fmt.Errorf("renderer: texture %q lacks bind flag %d", t.desc.Label, flag)
	}
	return t, nil
}

func (r *renderer) CreateRenderTargetView(tex *resource.View) (*resource.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.textureOf(tex, gfx.BindRenderTarget)
	if err != nil {
		return nil, err
	}
	if t.desc.Cube {
		return nil, fmt.Errorf("renderer: cube texture %q cannot be a render target", t.desc.Label)
	}
	view, err := t.texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           t.desc.Label + " rtv",
		Format:          t.format,
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create render target view %q: %w", t.desc.Label, err)
	}
	return r.tracker.NewView(resource.KindRenderTargetView, t.desc.Label+" rtv", &viewObject{
		view:    view,
		texture: tex.Acquire(),
		format:  t.format,
	}, destroyView), nil
}

func (r *renderer) CreateShaderResourceView(tex *resource.View) (*resource.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createShaderResourceView(tex)
}

func (r *renderer) createShaderResourceView(tex *resource.View) (*resource.View, error) {
	t, err := r.textureOf(tex, gfx.BindShaderResource)
	if err != nil {
		return nil, err
	}
	dim, layers := wgpu.TextureViewDimension2D, uint32(1)
	if t.desc.Cube {
		dim, layers = wgpu.TextureViewDimensionCube, 6
	}
	view, err := t.texture.CreateView(&wgpu.TextureViewDescriptor{
		Label:           t.desc.Label + " srv",
		Format:          t.format,
		Dimension:       dim,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: layers,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create shader resource view %q: %w", t.desc.Label, err)
	}
	return r.tracker.NewView(resource.KindShaderResourceView, t.desc.Label+" srv", &viewObject{
		view:    view,
		texture: tex.Acquire(),
		format:  t.format,
		cube:    t.desc.Cube,
	}, destroyView), nil
}

func (r *renderer) CreateSampler(desc gfx.SamplerDescriptor) (*resource.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createSampler(desc)
}

func (r *renderer) createSampler(desc gfx.SamplerDescriptor) (*resource.View, error) {
	filter, mipFilter := wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear
	anisotropy := common.Coalesce(desc.MaxAnisotropy, 1)
	if desc.Filter == gfx.FilterNearest {
		// Anisotropic filtering requires linear filtering throughout.
		filter, mipFilter, anisotropy = wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest, 1
	}
	samp, err := r.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toAddressMode(desc.AddressU),
		AddressModeV:  toAddressMode(desc.AddressV),
		AddressModeW:  toAddressMode(desc.AddressW),
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mipFilter,
		LodMinClamp:   0,
		LodMaxClamp:   common.Coalesce(desc.MaxLOD, 32.0),
		MaxAnisotropy: anisotropy,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create sampler %q: %w", desc.Label, err)
	}
	return r.tracker.NewView(resource.KindSampler, desc.Label, samp, destroySampler), nil
}

func (r *renderer) CreateRasterizerState(desc gfx.RasterizerDescriptor) (*resource.View, error) {
	return r.tracker.NewView(resource.KindRasterizerState, desc.Label, &rasterObject{cull: toCullMode(desc.Cull)}, nil), nil
}

func (r *renderer) CreateDepthStencilState(desc gfx.DepthStencilDescriptor) (*resource.View, error) {
	return r.tracker.NewView(resource.KindDepthStencilState, desc.Label, toDepthObject(desc), nil), nil
}

func (r *renderer) CreateBuffer(desc gfx.BufferDescriptor) (*resource.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(desc.Data) == 0 {
		return nil, fmt.Errorf("renderer: buffer %q has no data", desc.Label)
	}
	usage := wgpu.BufferUsageVertex
	if desc.Kind == gfx.BufferIndex {
		usage = wgpu.BufferUsageIndex
	}
	size := alignBufferSize(len(desc.Data))
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             size,
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create buffer %q: %w", desc.Label, err)
	}
	r.queue.WriteBuffer(buf, 0, padConstants(desc.Data, uint32(size)))

	return r.tracker.NewView(resource.KindBuffer, desc.Label, &bufferObject{
		buffer: buf,
		kind:   desc.Kind,
		size:   size,
	}, destroyBuffer), nil
}

func (r *renderer) CreateProgram(desc gfx.ProgramDescriptor) (*resource.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desc.Source == "" || desc.EntryPoint == "" {
		return nil, errors.New("renderer: program needs source and entry point")
	}
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: compile program %q: %w", desc.Label, err)
	}
	layout, err := r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label + " Bind Group Layout",
		Entries: layoutEntries(desc),
	})
	if err != nil {
		module.Release()
		return nil, fmt.Errorf("renderer: create bind group layout for %q: %w", desc.Label, err)
	}

	r.nextProgramID++
	prog := &programObject{
		id:     r.nextProgramID,
		desc:   desc,
		module: module,
		layout: layout,
	}
	return r.tracker.NewView(resource.KindProgram, desc.Label, prog, func(object any) {
		p := object.(*programObject)
		r.pipelines.Evict(p.id)
		p.layout.Release()
		p.module.Release()
	}), nil
}
