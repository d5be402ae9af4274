// Package render_target provides the offscreen color buffer that one pass renders into and a later
// pass samples from.
package render_target

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-postfx/engine/gfx"
	"github.com/Carmen-Shannon/oxy-postfx/engine/resource"
)

// ErrInvalidSize is returned for zero or negative target dimensions.
var ErrInvalidSize = errors.New("render_target: invalid size")

// RenderTarget pairs a writable render target view and a readable shader resource view over the
// same texture. The target keeps no claim on the texture itself; the two views keep it alive.
type RenderTarget interface {
	// RenderView hands out a claim on the writable view. The caller releases it.
	RenderView() *resource.View

	// ShaderView hands out a claim on the readable view. The caller releases it.
	ShaderView() *resource.View

	// Size returns the target size in pixels.
	Size() (width, height int)

	// Format returns the pixel format.
	Format() gfx.Format

	// Clear fills the target with c on ctx.
	Clear(ctx gfx.Context, c gfx.Color)

	// Resize releases both views and recreates the target at the new size. Resizing to the
	// current size does nothing. If creation fails the target is rebuilt at its previous size.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: ErrInvalidSize or the device's creation error
	Resize(width, height int) error

	// Release drops the target's claims on both views.
	Release()
}

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	dev    gfx.Device
	label  string
	format gfx.Format
	width  int
	height int
	rtv    *resource.View
	srv    *resource.View
}

var _ RenderTarget = &renderTarget{}

// NewRenderTarget allocates the backing texture, derives both views, then drops the texture claim.
//
// Parameters:
//   - dev: the device that creates the texture and views
//   - width, height: the size in pixels, normally the window client area
//   - format: the color format
//   - label: a debug label used for the texture and both views
//
// Returns:
//   - RenderTarget: the new target
//   - error: ErrInvalidSize or the device's creation error
func NewRenderTarget(dev gfx.Device, width, height int, format gfx.Format, label string) (RenderTarget, error) {
	rt := &renderTarget{dev: dev, label: label, format: format}
	if err := rt.create(width, height); err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *renderTarget) create(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	tex, err := rt.dev.CreateTexture(gfx.TextureDescriptor{
		Label:  rt.label,
		Width:  uint32(width),
		Height: uint32(height),
		Format: rt.format,
		Bind:   gfx.BindRenderTarget | gfx.BindShaderResource,
	}, nil)
	if err != nil {
		return fmt.Errorf("render_target: failed to create texture %q: %w", rt.label, err)
	}
	defer tex.Release()

	rtv, err := rt.dev.CreateRenderTargetView(tex)
	if err != nil {
		return fmt.Errorf("render_target: failed to create render target view %q: %w", rt.label, err)
	}
	srv, err := rt.dev.CreateShaderResourceView(tex)
	if err != nil {
		rtv.Release()
		return fmt.Errorf("render_target: failed to create shader resource view %q: %w", rt.label, err)
	}

	rt.rtv, rt.srv = rtv, srv
	rt.width, rt.height = width, height
	return nil
}

func (rt *renderTarget) RenderView() *resource.View {
	return rt.rtv.Acquire()
}

func (rt *renderTarget) ShaderView() *resource.View {
	return rt.srv.Acquire()
}

func (rt *renderTarget) Size() (int, int) {
	return rt.width, rt.height
}

func (rt *renderTarget) Format() gfx.Format {
	return rt.format
}

func (rt *renderTarget) Clear(ctx gfx.Context, c gfx.Color) {
	ctx.ClearRenderTarget(rt.rtv, c)
}

func (rt *renderTarget) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == rt.width && height == rt.height {
		return nil
	}

	oldRTV, oldSRV := rt.rtv, rt.srv
	oldW, oldH := rt.width, rt.height
	rt.rtv, rt.srv = nil, nil
	oldRTV.Release()
	oldSRV.Release()

	if err := rt.create(width, height); err != nil {
		// the old views are gone; rebuild at the previous size so the target stays usable
		if restoreErr := rt.create(oldW, oldH); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return nil
}

func (rt *renderTarget) Release() {
	rt.rtv.Release()
	rt.srv.Release()
	rt.rtv, rt.srv = nil, nil
}
