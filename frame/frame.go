// Package frame implements the frame lifecycle and swap-chain
// binding: image acquisition, per-in-flight devctx.Context rotation,
// presentation, and backbuffer-framebuffer invalidation on resize.
// It is the outermost layer a client drives directly — begin_frame,
// register passes against the returned graph, bake, end_frame,
// present — grounded in engine/renderer.go's Renderer, which plays
// the identical role (own the swap chain, rotate command buffers,
// drive acquire/submit/present) over the teacher's scene graph
// instead of a render graph.
package frame

import (
	"github.com/phoenixgfx/phoenix/devctx"
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/graph"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
	"github.com/phoenixgfx/phoenix/wsi"
)

// OutdatedFunc is invoked when acquisition or presentation reports
// the swap chain out of date. It is not itself an error: the client
// is expected to call Resize in response.
type OutdatedFunc func()

// Manager owns one Swapchain, its ring of backbuffer textures, one
// Graph, and frames_in_flight devctx.Contexts rotated round-robin by
// the graph's own in-flight index.
type Manager struct {
	gpu  driver.GPU
	pres driver.Presenter
	win  wsi.Window
	sc   driver.Swapchain

	imageCount int
	backbuf    []*resource.Texture

	ctxs  []*devctx.Context
	graph *graph.Graph

	acquired   int
	onOutdated OutdatedFunc
}

// NewManager creates a swap chain over win with imageCount images,
// frames_in_flight device contexts, and one graph bound to them.
// gpu must implement driver.Presenter; this is checked rather than
// assumed, since not every backend supports presentation (§6).
func NewManager(gpu driver.GPU, win wsi.Window, imageCount, framesInFlight int, onOutdated OutdatedFunc) (*Manager, status.Status) {
	if gpu == nil || win == nil {
		return nil, status.ErrAPI
	}
	pres, ok := gpu.(driver.Presenter)
	if !ok {
		return nil, status.ErrAPI
	}
	if imageCount <= 0 || framesInFlight <= 0 {
		return nil, status.ErrAPI
	}
	sc, err := pres.NewSwapchain(win, imageCount)
	if err != nil {
		return nil, status.ErrInternal
	}
	m := &Manager{
		gpu: gpu, pres: pres, win: win, sc: sc,
		imageCount: imageCount, onOutdated: onOutdated,
		graph: graph.New(gpu, framesInFlight),
	}
	m.buildBackbufferTextures()
	m.ctxs = make([]*devctx.Context, framesInFlight)
	for i := range m.ctxs {
		ctx, s := devctx.New(gpu)
		if !s.OK() {
			return nil, s
		}
		m.ctxs[i] = ctx
	}
	return m, status.Success
}

func (m *Manager) buildBackbufferTextures() {
	views := m.sc.Views()
	format := m.sc.Format()
	size := driver.Dim3D{Width: m.win.Width(), Height: m.win.Height(), Depth: 1}
	m.backbuf = make([]*resource.Texture, len(views))
	for i, v := range views {
		m.backbuf[i] = resource.WrapBackbuffer(v, format, size)
	}
}

// Graph returns the bound render graph. The client registers passes
// against it between BeginFrame and Bake.
func (m *Manager) Graph() *graph.Graph { return m.graph }

// BeginFrame selects the devctx.Context for the graph's current
// in-flight slot, waits its fence, resets it, and acquires the next
// swap-chain image using that context's command buffer as the first
// consumer. It returns the backbuffer texture the client should pass
// to set_backbuffer_output. A swap-chain-outdated result is not an
// error (§7): onOutdated fires and BeginFrame returns a nil ctx with
// Success, telling the caller to skip this frame and call Resize.
func (m *Manager) BeginFrame() (*devctx.Context, *resource.Texture, status.Status) {
	ctx := m.ctxs[m.graph.Slot()]
	if s := ctx.BeginFrame(); !s.OK() {
		return nil, nil, s
	}
	idx, err := m.sc.Next(ctx.CmdBuffer())
	switch err {
	case nil:
	case driver.ErrSwapchain:
		if m.onOutdated != nil {
			m.onOutdated()
		}
		return nil, nil, status.Success
	default:
		return nil, nil, status.ErrInternal
	}
	m.acquired = idx
	return ctx, m.backbuf[idx], status.Success
}

// EndFrame closes ctx's primary recording, records Present against
// the now-closed command buffer, then submits it — matching
// driver.Swapchain's documented pairing: Next and Present are called,
// and only then is the command buffer committed. Advances the graph's
// in-flight index and clears its per-frame virtual state regardless of
// the presentation outcome. A swap-chain-outdated result is not an
// error (§7): onOutdated fires and EndFrame still submits and returns
// Success, since the frame's work is valid even though the surface it
// targeted is gone.
func (m *Manager) EndFrame(ctx *devctx.Context) status.Status {
	cb := ctx.CmdBuffer()
	if s := m.graph.EndFrame(ctx); !s.OK() {
		return s
	}
	presentErr := m.sc.Present(m.acquired, cb)
	if presentErr != nil && presentErr != driver.ErrSwapchain {
		return status.ErrInternal
	}
	if s := ctx.Submit(); !s.OK() {
		return s
	}
	if presentErr == driver.ErrSwapchain && m.onOutdated != nil {
		m.onOutdated()
	}
	return status.Success
}

// Resize recreates the swap chain at the window's current extent,
// rebuilds the backbuffer texture wrappers, and invalidates every
// backbuffer framebuffer cached by the graph — the only cache entries
// §3 says do not live for the lifetime of the device.
func (m *Manager) Resize(width, height int) status.Status {
	if err := m.win.Resize(width, height); err != nil {
		return status.ErrInternal
	}
	if err := m.sc.Recreate(); err != nil {
		return status.ErrInternal
	}
	m.buildBackbufferTextures()
	m.graph.FramebufferCache().InvalidateBackbuffers()
	return status.Success
}

// Destroy releases the swap chain and every device context.
func (m *Manager) Destroy() {
	for _, ctx := range m.ctxs {
		if ctx != nil {
			ctx.Destroy()
		}
	}
	if m.sc != nil {
		m.sc.Destroy()
	}
}
