package frame_test

import (
	"testing"

	"github.com/phoenixgfx/phoenix/builder"
	"github.com/phoenixgfx/phoenix/devctx"
	"github.com/phoenixgfx/phoenix/driver"
	_ "github.com/phoenixgfx/phoenix/driver/soft"
	"github.com/phoenixgfx/phoenix/frame"
	"github.com/phoenixgfx/phoenix/graph"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
	"github.com/phoenixgfx/phoenix/wsi"
)

// spyGPU wraps an opened driver.GPU to record the relative order of
// Commit and swap-chain Present calls, so EndFrame's submission
// ordering can be asserted directly instead of relying on
// driver/soft's Present (which ignores its cb argument and would mask
// a wrong order).
type spyGPU struct {
	driver.GPU
	order *[]string
}

func (g *spyGPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	*g.order = append(*g.order, "commit")
	g.GPU.Commit(cb, ch)
}

func (g *spyGPU) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	sc, err := g.GPU.(driver.Presenter).NewSwapchain(win, imageCount)
	if err != nil {
		return nil, err
	}
	return &spySwapchain{Swapchain: sc, order: g.order}, nil
}

type spySwapchain struct {
	driver.Swapchain
	order *[]string
}

func (s *spySwapchain) Present(index int, cb driver.CmdBuffer) error {
	*s.order = append(*s.order, "present")
	return s.Swapchain.Present(index, cb)
}

type fakeWindow struct{ w, h int }

func (f *fakeWindow) Map() error            { return nil }
func (f *fakeWindow) Unmap() error          { return nil }
func (f *fakeWindow) Resize(w, h int) error { f.w, f.h = w, h; return nil }
func (f *fakeWindow) SetTitle(string) error { return nil }
func (f *fakeWindow) Close()                {}
func (f *fakeWindow) Width() int            { return f.w }
func (f *fakeWindow) Height() int           { return f.h }
func (f *fakeWindow) Title() string         { return "" }

func openGPU(t *testing.T) driver.GPU {
	t.Helper()
	drvs := driver.Drivers()
	if len(drvs) == 0 {
		t.Fatal("openGPU: no driver registered")
	}
	gpu, err := drvs[0].Open()
	if err != nil {
		t.Fatalf("Driver.Open: unexpected error %v", err)
	}
	return gpu
}

func newManager(t *testing.T) (*frame.Manager, driver.GPU) {
	t.Helper()
	gpu := openGPU(t)
	win := &fakeWindow{w: 320, h: 240}
	m, s := frame.NewManager(gpu, win, 2, 2, nil)
	if !s.OK() {
		t.Fatalf("NewManager: unexpected status %v", s)
	}
	return m, gpu
}

func triangleDesc(t *testing.T, gpu driver.GPU) *builder.GraphicsPipelineDesc {
	t.Helper()
	vs, s := resource.NewShader(gpu, []byte{1, 2, 3, 4}, driver.SVertex)
	if !s.OK() {
		t.Fatalf("NewShader: unexpected status %v", s)
	}
	fs, s := resource.NewShader(gpu, []byte{5, 6, 7, 8}, driver.SFragment)
	if !s.OK() {
		t.Fatalf("NewShader: unexpected status %v", s)
	}
	return &builder.GraphicsPipelineDesc{
		Topology: driver.TTriangle,
		Samples:  1,
		Attributes: []builder.VertexAttr{
			{Format: driver.Float32x4, Name: "position", Nr: 0},
			{Format: driver.Float32x4, Name: "color", Nr: 1},
		},
		VertShader: builder.ShaderRef{Shader: vs},
		FragShader: builder.ShaderRef{Shader: fs},
	}
}

func TestManagerBeginEndFrame(t *testing.T) {
	m, gpu := newManager(t)
	defer m.Destroy()

	ctx, bb, s := m.BeginFrame()
	if !s.OK() {
		t.Fatalf("BeginFrame: unexpected status %v", s)
	}
	if bb == nil {
		t.Fatal("BeginFrame: nil backbuffer texture")
	}

	g := m.Graph()
	p := g.RegisterPass("triangle", graph.BindGraphics)
	if s := p.SetBackbufferOutput(bb, driver.LClear, driver.ClearValue{}); !s.OK() {
		t.Fatalf("SetBackbufferOutput: unexpected status %v", s)
	}
	if s := p.SetGraphicsPipeline(triangleDesc(t, gpu)); !s.OK() {
		t.Fatalf("SetGraphicsPipeline: unexpected status %v", s)
	}
	ran := false
	if s := p.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status {
		ran = true
		if pl == nil {
			t.Error("execute: nil pipeline")
		}
		return c.Draw(3)
	}); !s.OK() {
		t.Fatalf("SetExecute: unexpected status %v", s)
	}

	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if !ran {
		t.Fatal("Execute: pass execute callback not invoked")
	}

	if s := m.EndFrame(ctx); !s.OK() {
		t.Fatalf("EndFrame: unexpected status %v", s)
	}
	if n := g.RenderPassCache().Len(); n != 1 {
		t.Fatalf("render pass cache len = %d, want 1", n)
	}
	if n := g.PipelineCache().Len(); n != 1 {
		t.Fatalf("pipeline cache len = %d, want 1", n)
	}
}

func TestManagerEndFramePresentsBeforeCommit(t *testing.T) {
	var order []string
	gpu := &spyGPU{GPU: openGPU(t), order: &order}
	win := &fakeWindow{w: 320, h: 240}
	m, s := frame.NewManager(gpu, win, 2, 2, nil)
	if !s.OK() {
		t.Fatalf("NewManager: unexpected status %v", s)
	}
	defer m.Destroy()

	ctx, bb, s := m.BeginFrame()
	if !s.OK() {
		t.Fatalf("BeginFrame: unexpected status %v", s)
	}
	g := m.Graph()
	p := g.RegisterPass("triangle", graph.BindGraphics)
	p.SetBackbufferOutput(bb, driver.LClear, driver.ClearValue{})
	p.SetGraphicsPipeline(triangleDesc(t, gpu))
	p.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })
	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if s := m.EndFrame(ctx); !s.OK() {
		t.Fatalf("EndFrame: unexpected status %v", s)
	}

	if len(order) != 2 || order[0] != "present" || order[1] != "commit" {
		t.Fatalf("EndFrame call order = %v, want [present commit]", order)
	}
}

func TestManagerResizeInvalidatesBackbuffers(t *testing.T) {
	m, gpu := newManager(t)
	defer m.Destroy()

	ctx, bb, s := m.BeginFrame()
	if !s.OK() {
		t.Fatalf("BeginFrame: unexpected status %v", s)
	}
	g := m.Graph()
	p := g.RegisterPass("triangle", graph.BindGraphics)
	p.SetBackbufferOutput(bb, driver.LClear, driver.ClearValue{})
	p.SetGraphicsPipeline(triangleDesc(t, gpu))
	p.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })
	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if s := m.EndFrame(ctx); !s.OK() {
		t.Fatalf("EndFrame: unexpected status %v", s)
	}
	if n := g.FramebufferCache().Len(); n != 1 {
		t.Fatalf("framebuffer cache len = %d, want 1", n)
	}

	if s := m.Resize(640, 480); !s.OK() {
		t.Fatalf("Resize: unexpected status %v", s)
	}
	if n := g.FramebufferCache().Len(); n != 0 {
		t.Fatalf("Resize: framebuffer cache len = %d, want 0", n)
	}
}
