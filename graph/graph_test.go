package graph_test

import (
	"testing"

	"github.com/phoenixgfx/phoenix/builder"
	"github.com/phoenixgfx/phoenix/devctx"
	"github.com/phoenixgfx/phoenix/driver"
	_ "github.com/phoenixgfx/phoenix/driver/soft"
	"github.com/phoenixgfx/phoenix/graph"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

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

func newTexture(t *testing.T, gpu driver.GPU, usage driver.Usage) *resource.Texture {
	t.Helper()
	tex, s := resource.NewTexture(gpu, resource.TexParam{
		Format: driver.RGBA8un, Size: driver.Dim3D{Width: 64, Height: 64, Depth: 1},
		Usage: usage, ViewTyp: driver.IView2D,
	})
	if !s.OK() {
		t.Fatalf("NewTexture: unexpected status %v", s)
	}
	return tex
}

func trianglePipeline(t *testing.T, gpu driver.GPU) *builder.GraphicsPipelineDesc {
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

func newCtx(t *testing.T, gpu driver.GPU) *devctx.Context {
	t.Helper()
	ctx, s := devctx.New(gpu)
	if !s.OK() {
		t.Fatalf("devctx.New: unexpected status %v", s)
	}
	if s := ctx.BeginFrame(); !s.OK() {
		t.Fatalf("BeginFrame: unexpected status %v", s)
	}
	return ctx
}

// S1 — triangle to backbuffer: one graphics pass, draw(3), expect one
// input barrier UNDEFINED->COLOR_ATTACHMENT, one output barrier
// COLOR_ATTACHMENT->PRESENT_SRC, and one entry in each builder cache.
func TestBakeTriangleToBackbuffer(t *testing.T) {
	gpu := openGPU(t)
	g := graph.New(gpu, 2)
	backbuffer := newTexture(t, gpu, driver.URenderTarget)
	defer backbuffer.Destroy()

	p := g.RegisterPass("triangle", graph.BindGraphics)
	if s := p.SetBackbufferOutput(backbuffer, driver.LClear, driver.ClearValue{}); !s.OK() {
		t.Fatalf("SetBackbufferOutput: unexpected status %v", s)
	}
	if s := p.SetGraphicsPipeline(trianglePipeline(t, gpu)); !s.OK() {
		t.Fatalf("SetGraphicsPipeline: unexpected status %v", s)
	}
	drew := false
	p.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status {
		drew = true
		return c.Draw(3)
	})

	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	if got := p.InputBarriers[0]; got.OldLayout != driver.LUndefined || got.NewLayout != driver.LColorTarget {
		t.Fatalf("input barrier = %+v, want UNDEFINED->COLOR_TARGET", got)
	}
	if got := p.OutputBarriers[0]; got.OldLayout != driver.LColorTarget || got.NewLayout != driver.LPresent {
		t.Fatalf("output barrier = %+v, want COLOR_TARGET->PRESENT", got)
	}

	ctx := newCtx(t, gpu)
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if !drew {
		t.Fatal("Execute: execute callback not invoked")
	}
	if n := g.RenderPassCache().Len(); n != 1 {
		t.Fatalf("render pass cache len = %d, want 1", n)
	}
	if n := g.FramebufferCache().Len(); n != 1 {
		t.Fatalf("framebuffer cache len = %d, want 1", n)
	}
	if n := g.PipelineCache().Len(); n != 1 {
		t.Fatalf("pipeline cache len = %d, want 1", n)
	}
	if backbuffer.CurrentLayout != driver.LPresent {
		t.Fatalf("backbuffer layout = %v, want LPresent", backbuffer.CurrentLayout)
	}
}

// S2 — depth + color: the backbuffer is registered as a color output
// and as the backbuffer output, next to a depth output; the depth
// texture's tracked layout after bake+execute is the depth-stencil
// attachment layout.
func TestBakeDepthAndColor(t *testing.T) {
	gpu := openGPU(t)
	g := graph.New(gpu, 2)
	backbuffer := newTexture(t, gpu, driver.URenderTarget)
	defer backbuffer.Destroy()
	depth := newTexture(t, gpu, driver.URenderTarget)
	defer depth.Destroy()

	p := g.RegisterPass("forward", graph.BindGraphics)
	p.SetColorOutput(backbuffer, 0, driver.LClear, driver.SStore, driver.ClearValue{})
	p.SetBackbufferOutput(backbuffer, driver.LClear, driver.ClearValue{})
	p.SetDepthOutput(depth, driver.LClear, driver.SStore, driver.ClearValue{})
	p.SetGraphicsPipeline(trianglePipeline(t, gpu))
	p.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })

	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	ctx := newCtx(t, gpu)
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if depth.CurrentLayout != driver.LDSTarget {
		t.Fatalf("depth layout = %v, want LDSTarget", depth.CurrentLayout)
	}
}

// S4 — dead pass trimmed: P0 writes tex_x (never consumed), P1 writes
// backbuffer independently. Only P1 should be active.
func TestBakeTrimsDeadPass(t *testing.T) {
	gpu := openGPU(t)
	g := graph.New(gpu, 2)
	texX := newTexture(t, gpu, driver.URenderTarget)
	defer texX.Destroy()
	backbuffer := newTexture(t, gpu, driver.URenderTarget)
	defer backbuffer.Destroy()

	p0 := g.RegisterPass("dead", graph.BindGraphics)
	p0.SetColorOutput(texX, 0, driver.LClear, driver.SStore, driver.ClearValue{})
	p0.SetGraphicsPipeline(trianglePipeline(t, gpu))
	p0.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status {
		t.Fatal("trimmed pass executed")
		return status.Success
	})

	p1 := g.RegisterPass("present", graph.BindGraphics)
	p1.SetBackbufferOutput(backbuffer, driver.LClear, driver.ClearValue{})
	p1.SetGraphicsPipeline(trianglePipeline(t, gpu))
	p1.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })

	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	ctx := newCtx(t, gpu)
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if texX.CurrentLayout != driver.LUndefined {
		t.Fatalf("trimmed pass's resource layout changed: %v", texX.CurrentLayout)
	}
}

// S3 — offscreen then present: pass A writes tex_off, pass B samples
// it as a texture input and writes the backbuffer. B must depend on
// A, and tex_off must transition to shader-read-only before B runs.
func TestBakeOffscreenThenPresent(t *testing.T) {
	gpu := openGPU(t)
	g := graph.New(gpu, 2)
	texOff := newTexture(t, gpu, driver.URenderTarget|driver.UShaderSample)
	defer texOff.Destroy()
	backbuffer := newTexture(t, gpu, driver.URenderTarget)
	defer backbuffer.Destroy()

	a := g.RegisterPass("offscreen", graph.BindGraphics)
	a.SetColorOutput(texOff, 0, driver.LClear, driver.SStore, driver.ClearValue{})
	a.SetGraphicsPipeline(trianglePipeline(t, gpu))
	a.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })

	b := g.RegisterPass("present", graph.BindGraphics)
	b.SetTextureInput(texOff, builder.AttachColor)
	b.SetBackbufferOutput(backbuffer, driver.LClear, driver.ClearValue{})
	b.SetGraphicsPipeline(trianglePipeline(t, gpu))
	b.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })

	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	if len(b.Deps) != 1 || b.Deps[0].PrevPass != a.Index {
		t.Fatalf("b.Deps = %+v, want one dependency on pass %d", b.Deps, a.Index)
	}
	barrier, ok := b.InputBarriers[0]
	if !ok {
		t.Fatal("no input barrier recorded for tex_off on pass b")
	}
	if barrier.SrcAccess != driver.AColorWrite || barrier.SrcStage != driver.SColorOutput {
		t.Fatalf("barrier src = %v/%v, want AColorWrite/SColorOutput", barrier.SrcAccess, barrier.SrcStage)
	}
	if barrier.DstAccess != driver.AColorRead || barrier.DstStage != driver.SColorOutput {
		t.Fatalf("barrier dst = %v/%v, want AColorRead/SColorOutput", barrier.DstAccess, barrier.DstStage)
	}
	if barrier.NewLayout != driver.LShaderRead {
		t.Fatalf("barrier new layout = %v, want LShaderRead", barrier.NewLayout)
	}

	ctx := newCtx(t, gpu)
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if texOff.CurrentLayout != driver.LShaderRead {
		t.Fatalf("tex_off layout after execute = %v, want LShaderRead", texOff.CurrentLayout)
	}
}

// No backbuffer output registered at all: Bake must fail ErrInternal.
func TestBakeFailsWithoutBackbuffer(t *testing.T) {
	gpu := openGPU(t)
	g := graph.New(gpu, 2)
	tex := newTexture(t, gpu, driver.URenderTarget)
	defer tex.Destroy()
	p := g.RegisterPass("orphan", graph.BindGraphics)
	p.SetColorOutput(tex, 0, driver.LClear, driver.SStore, driver.ClearValue{})
	if s := g.Bake(); s != status.ErrInternal {
		t.Fatalf("Bake without backbuffer: status = %v, want ErrInternal", s)
	}
}

// EndFrame must clear every per-frame virtual data structure (§8
// invariant 6) while the caches persist.
func TestEndFrameClearsVirtualState(t *testing.T) {
	gpu := openGPU(t)
	g := graph.New(gpu, 2)
	backbuffer := newTexture(t, gpu, driver.URenderTarget)
	defer backbuffer.Destroy()

	p := g.RegisterPass("present", graph.BindGraphics)
	p.SetBackbufferOutput(backbuffer, driver.LClear, driver.ClearValue{})
	p.SetGraphicsPipeline(trianglePipeline(t, gpu))
	p.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })

	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	ctx := newCtx(t, gpu)
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute: unexpected status %v", s)
	}
	if s := g.EndFrame(ctx); !s.OK() {
		t.Fatalf("EndFrame: unexpected status %v", s)
	}
	if n := g.RenderPassCache().Len(); n != 1 {
		t.Fatalf("render pass cache len after EndFrame = %d, want 1 (caches persist)", n)
	}

	if s := ctx.BeginFrame(); !s.OK() {
		t.Fatalf("BeginFrame (2nd frame): unexpected status %v", s)
	}
	backbuffer2 := newTexture(t, gpu, driver.URenderTarget)
	defer backbuffer2.Destroy()
	p2 := g.RegisterPass("present", graph.BindGraphics)
	if p2.Index != 0 {
		t.Fatalf("pass index after EndFrame = %d, want 0 (registered_render_passes cleared)", p2.Index)
	}
	p2.SetBackbufferOutput(backbuffer2, driver.LClear, driver.ClearValue{})
	p2.SetGraphicsPipeline(trianglePipeline(t, gpu))
	p2.SetExecute(func(c *devctx.Context, pl driver.Pipeline) status.Status { return status.Success })
	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake (2nd frame): unexpected status %v", s)
	}
	if s := g.Execute(ctx); !s.OK() {
		t.Fatalf("Execute (2nd frame): unexpected status %v", s)
	}
	// S6: same graph structure across frames grows each cache by
	// exactly the number of distinct descriptions in frame 1, and not
	// at all in frame 2.
	if n := g.RenderPassCache().Len(); n != 1 {
		t.Fatalf("render pass cache len after 2nd frame = %d, want 1 (cache reused)", n)
	}
	if n := g.PipelineCache().Len(); n != 1 {
		// Each trianglePipeline(t, gpu) call creates fresh shader
		// objects, but descriptions hash shader content, so frame 2's
		// description matches frame 1's entry; this asserts growth
		// tracks distinct descriptions, not wall-clock frame count.
		t.Fatalf("pipeline cache len after 2nd frame = %d, want 1 (cache reused)", n)
	}
}

// Registering the same resource pointer twice yields the same
// physical index and two distinct usage records (§8 boundary
// behavior).
func TestRegisterResourceDedupesByPointer(t *testing.T) {
	gpu := openGPU(t)
	g := graph.New(gpu, 2)
	backbuffer := newTexture(t, gpu, driver.URenderTarget)
	defer backbuffer.Destroy()

	p := g.RegisterPass("present", graph.BindGraphics)
	p.SetColorOutput(backbuffer, 0, driver.LClear, driver.SStore, driver.ClearValue{})
	p.SetBackbufferOutput(backbuffer, driver.LClear, driver.ClearValue{})

	if s := g.Bake(); !s.OK() {
		t.Fatalf("Bake: unexpected status %v", s)
	}
	// Both usages of backbuffer must resolve to physical index 0. Bake
	// records a first-pass input barrier per physical index for every
	// texture usage, so a single entry means both usages share it.
	if len(p.InputBarriers) != 1 {
		t.Fatalf("InputBarriers = %d entries, want 1 (same physical resource)", len(p.InputBarriers))
	}
	if len(p.OutputBarriers) != 1 {
		t.Fatalf("OutputBarriers = %d entries, want 1 (same physical resource)", len(p.OutputBarriers))
	}
}
