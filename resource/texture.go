package resource

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/status"
)

// ViewScope selects how many image views a Texture creates.
type ViewScope int

const (
	// ScopeEntire creates exactly one view spanning every mip level.
	ScopeEntire ViewScope = iota
	// ScopePerMip creates one view per mip level, used by passes
	// that target a single mip as a render target.
	ScopePerMip
)

// TexParam describes the parameters of a Texture at creation time.
type TexParam struct {
	Format  driver.PixelFmt
	Size    driver.Dim3D
	Layers  int
	Levels  int
	Samples int
	Usage   driver.Usage
	ViewTyp driver.ViewType
	Scope   ViewScope
	Sampling driver.Sampling
}

// Texture wraps a driver.Image, its views, an optional Sampler, and
// the layout the render graph believes the image currently holds.
// The graph core mutates CurrentLayout whenever it inserts an image
// barrier that transitions the texture, and again when a render
// pass's implicit final-layout transition completes — there is no
// synchronization around the field because the scheduling model is
// single-threaded cooperative (no other goroutine observes it).
type Texture struct {
	gpu    driver.GPU
	param  TexParam
	img    driver.Image
	views  []driver.ImageView
	splr   driver.Sampler
	borrowed bool

	CurrentLayout driver.Layout
}

// NewTexture creates a texture and its views. For ScopePerMip, one
// view is created per mip level; ScopeEntire yields exactly one view
// spanning every level.
func NewTexture(gpu driver.GPU, p TexParam) (*Texture, status.Status) {
	if gpu == nil {
		return nil, status.ErrAPI
	}
	if p.Layers <= 0 {
		p.Layers = 1
	}
	if p.Levels <= 0 {
		p.Levels = 1
	}
	if p.Samples <= 0 {
		p.Samples = 1
	}
	img, err := gpu.NewImage(p.Format, p.Size, p.Layers, p.Levels, p.Samples, p.Usage)
	if err != nil {
		return nil, status.ErrInternal
	}
	t := &Texture{gpu: gpu, param: p, img: img, CurrentLayout: driver.LUndefined}
	switch p.Scope {
	case ScopePerMip:
		t.views = make([]driver.ImageView, p.Levels)
		for i := 0; i < p.Levels; i++ {
			v, err := img.NewView(p.ViewTyp, 0, p.Layers, i, 1)
			if err != nil {
				t.Destroy()
				return nil, status.ErrInternal
			}
			t.views[i] = v
		}
	default:
		v, err := img.NewView(p.ViewTyp, 0, p.Layers, 0, p.Levels)
		if err != nil {
			t.Destroy()
			return nil, status.ErrInternal
		}
		t.views = []driver.ImageView{v}
	}
	spln := p.Sampling
	splr, err := gpu.NewSampler(&spln)
	if err != nil {
		t.Destroy()
		return nil, status.ErrInternal
	}
	t.splr = splr
	return t, status.Success
}

// WrapBackbuffer builds a Texture around a swap-chain-owned image
// view: no sampler, no separate Image handle (the swap chain owns
// that lifetime), tracked layout starts undefined like any other
// fresh image. Used by the frame package to present the current
// swap-chain image to the graph as an ordinary texture resource, the
// same shape set_backbuffer_output expects.
func WrapBackbuffer(view driver.ImageView, format driver.PixelFmt, size driver.Dim3D) *Texture {
	return &Texture{
		param:         TexParam{Format: format, Size: size, Layers: 1, Levels: 1, Samples: 1, ViewTyp: driver.IView2D},
		views:         []driver.ImageView{view},
		borrowed:      true,
		CurrentLayout: driver.LUndefined,
	}
}

// View returns the view for a given mip, or the sole view when the
// texture was created with ScopeEntire.
func (t *Texture) View(mip int) driver.ImageView {
	if len(t.views) == 1 {
		return t.views[0]
	}
	if mip < 0 || mip >= len(t.views) {
		return nil
	}
	return t.views[mip]
}

// Views returns every view owned by the texture.
func (t *Texture) Views() []driver.ImageView { return t.views }

// Image returns the underlying driver.Image.
func (t *Texture) Image() driver.Image { return t.img }

// Sampler returns the texture's sampler.
func (t *Texture) Sampler() driver.Sampler { return t.splr }

// Param returns the texture's creation parameters.
func (t *Texture) Param() TexParam { return t.param }

// SetLayout updates the tracked layout. Called by the device context
// after recording an image barrier or completing a render pass's
// implicit final-layout transition.
func (t *Texture) SetLayout(l driver.Layout) { t.CurrentLayout = l }

// layoutsAllowedForSample is the set of tracked layouts
// queue_image_update accepts: shader-read-only, depth-read-only, and
// general. driver.Layout has no separate combined depth/stencil
// read-only variants, so no other layout is accepted.
var layoutsAllowedForSample = map[driver.Layout]bool{
	driver.LShaderRead: true,
	driver.LDSRead:     true,
	driver.LCommon:     true,
}

// IsSampleReady reports whether the texture's tracked layout permits
// it to be bound for shader sampling.
func (t *Texture) IsSampleReady() bool { return layoutsAllowedForSample[t.CurrentLayout] }

// Destroy releases the texture's sampler, views, and image. A texture
// built with WrapBackbuffer borrows its view from the swap chain and
// releases nothing: the swap chain owns that lifetime.
func (t *Texture) Destroy() {
	if t.borrowed {
		return
	}
	if t.splr != nil {
		t.splr.Destroy()
	}
	for _, v := range t.views {
		if v != nil {
			v.Destroy()
		}
	}
	if t.img != nil {
		t.img.Destroy()
	}
}
