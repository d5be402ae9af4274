// Package resource provides reference-counted handles for GPU objects that are shared between
// materials, render targets, passes and the command context.
//
// A View is a single claim on a shared object. Every claim is released at most once, so a holder
// cannot drive the shared count below the number of outstanding claims no matter how often it
// calls Release.
package resource

import (
	"fmt"
	"sync/atomic"
)

// Kind identifies what sort of GPU object a View refers to.
type Kind int

const (
	// KindTexture is raw texture storage. Render target and shader resource views derived from it
	// keep their own claim on it.
	KindTexture Kind = iota

	// KindRenderTargetView is a writable color view.
	KindRenderTargetView

	// KindShaderResourceView is a readable (sampled) view.
	KindShaderResourceView

	// KindDepthStencilView is a writable depth view.
	KindDepthStencilView

	// KindSampler is a sampler state object.
	KindSampler

	// KindRasterizerState is a rasterizer state object.
	KindRasterizerState

	// KindDepthStencilState is a depth-stencil state object.
	KindDepthStencilState

	// KindBuffer is a vertex or index buffer.
	KindBuffer

	// KindProgram is a compiled vertex or pixel program.
	KindProgram

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindRenderTargetView:
		return "render-target-view"
	case KindShaderResourceView:
		return "shader-resource-view"
	case KindDepthStencilView:
		return "depth-stencil-view"
	case KindSampler:
		return "sampler"
	case KindRasterizerState:
		return "rasterizer-state"
	case KindDepthStencilState:
		return "depth-stencil-state"
	case KindBuffer:
		return "buffer"
	case KindProgram:
		return "program"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// shared is the object all claims point at.
type shared struct {
	kind    Kind
	label   string
	object  any
	refs    atomic.Int32
	destroy func(object any)
	tracker *Tracker
}

// View is one claim on a shared GPU object.
// The zero value is not usable; views are created by NewView, Tracker.NewView or Acquire.
type View struct {
	shared   *shared
	released atomic.Bool
}

// NewView creates a shared object with a reference count of one and returns the creator's claim.
//
// Parameters:
//   - kind: the kind of GPU object being wrapped
//   - label: a debug label for logs and test assertions
//   - object: the backend object (e.g. a *wgpu.TextureView); retrieved later with Object
//   - destroy: called exactly once with object when the last claim is released; may be nil
//
// Returns:
//   - *View: the creator's claim
func NewView(kind Kind, label string, object any, destroy func(object any)) *View {
	return newView(nil, kind, label, object, destroy)
}

func newView(t *Tracker, kind Kind, label string, object any, destroy func(object any)) *View {
	s := &shared{
		kind:    kind,
		label:   label,
		object:  object,
		destroy: destroy,
		tracker: t,
	}
	s.refs.Store(1)
	if t != nil {
		t.onCreate(kind)
	}
	return &View{shared: s}
}

// Acquire adds a claim on the shared object and returns it. The caller owns the new claim and
// must release it. Acquire on a nil view returns nil.
// Acquiring through a claim that has already been released panics.
//
// Returns:
//   - *View: a new claim on the same object
func (v *View) Acquire() *View {
	if v == nil {
		return nil
	}
	if v.released.Load() {
		panic(fmt.Sprintf("resource: acquire through released %s %q", v.shared.kind, v.shared.label))
	}
	v.shared.refs.Add(1)
	return &View{shared: v.shared}
}

// Release drops this claim. The backend object is destroyed when the last claim goes.
// Releasing a nil view, or a claim that was already released, does nothing.
func (v *View) Release() {
	if v == nil || !v.released.CompareAndSwap(false, true) {
		return
	}
	if v.shared.refs.Add(-1) != 0 {
		return
	}
	if v.shared.destroy != nil {
		v.shared.destroy(v.shared.object)
	}
	if v.shared.tracker != nil {
		v.shared.tracker.onDestroy(v.shared.kind)
	}
}

// Released reports whether this claim has been released. A nil view counts as released.
func (v *View) Released() bool {
	return v == nil || v.released.Load()
}

// RefCount returns the number of outstanding claims on the shared object, or 0 for nil.
func (v *View) RefCount() int32 {
	if v == nil {
		return 0
	}
	return v.shared.refs.Load()
}

// Kind returns the kind of the wrapped object.
func (v *View) Kind() Kind {
	if v == nil {
		return kindCount
	}
	return v.shared.kind
}

// Label returns the debug label, or "" for nil.
func (v *View) Label() string {
	if v == nil {
		return ""
	}
	return v.shared.label
}

// Object returns the backend object. Backends type-assert it to their own type.
func (v *View) Object() any {
	if v == nil {
		return nil
	}
	return v.shared.object
}

// Same reports whether two claims refer to the same shared object.
func (v *View) Same(other *View) bool {
	if v == nil || other == nil {
		return v == nil && other == nil
	}
	return v.shared == other.shared
}

func (v *View) String() string {
	if v == nil {
		return "<nil view>"
	}
	return fmt.Sprintf("%s %q (refs=%d)", v.shared.kind, v.shared.label, v.shared.refs.Load())
}
