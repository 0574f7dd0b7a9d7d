package devctx_test

import (
	"testing"

	"github.com/phoenixgfx/phoenix/devctx"
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/driver/soft"
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

func TestContextOpsFailBeforeBeginFrame(t *testing.T) {
	ctx, s := devctx.New(openGPU(t))
	if !s.OK() {
		t.Fatalf("New: unexpected status %v", s)
	}
	if s := ctx.Draw(3); s != status.ErrInternal {
		t.Fatalf("Draw before BeginFrame:\nhave %v\nwant %v", s, status.ErrInternal)
	}
	if s := ctx.BeginRenderPass(nil, nil, nil); s != status.ErrAPI {
		t.Fatalf("BeginRenderPass before BeginFrame:\nhave %v\nwant %v", s, status.ErrAPI)
	}
}

func TestContextBindBeforeRenderPassFails(t *testing.T) {
	ctx, s := devctx.New(openGPU(t))
	if !s.OK() {
		t.Fatalf("New: unexpected status %v", s)
	}
	if s := ctx.BeginFrame(); !s.OK() {
		t.Fatalf("BeginFrame: unexpected status %v", s)
	}
	if s := ctx.Draw(3); s != status.ErrAPI {
		t.Fatalf("Draw outside a render pass:\nhave %v\nwant %v", s, status.ErrAPI)
	}
}

func TestContextRenderPassRoundTrip(t *testing.T) {
	gpu := openGPU(t)
	ctx, s := devctx.New(gpu)
	if !s.OK() {
		t.Fatalf("New: unexpected status %v", s)
	}
	pass, err := gpu.NewRenderPass(
		[]driver.Attachment{{Format: driver.RGBA8un, Samples: 1, Load: [2]driver.LoadOp{driver.LClear}, Store: [2]driver.StoreOp{driver.SStore}}},
		[]driver.Subpass{{Color: []int{0}, DS: -1}},
	)
	if err != nil {
		t.Fatalf("NewRenderPass: unexpected error %v", err)
	}
	defer pass.Destroy()

	if s := ctx.BeginFrame(); !s.OK() {
		t.Fatalf("BeginFrame: unexpected status %v", s)
	}
	if s := ctx.BeginRenderPass(pass, nil, nil); !s.OK() {
		t.Fatalf("BeginRenderPass: unexpected status %v", s)
	}
	if s := ctx.Draw(3); !s.OK() {
		t.Fatalf("Draw: unexpected status %v", s)
	}
	if s := ctx.EndRenderPass(); !s.OK() {
		t.Fatalf("EndRenderPass: unexpected status %v", s)
	}
	if s := ctx.EndFrame(); !s.OK() {
		t.Fatalf("EndFrame: unexpected status %v", s)
	}
	if s := ctx.Submit(); !s.OK() {
		t.Fatalf("Submit: unexpected status %v", s)
	}
	sc, ok := ctx.CmdBuffer().(*soft.CmdBuffer)
	if !ok {
		t.Fatal("CmdBuffer: not a *soft.CmdBuffer")
	}
	var names []string
	for _, op := range sc.Ops {
		names = append(names, op.Name)
	}
	want := []string{"BeginPass", "Draw", "EndPass"}
	if len(names) != len(want) {
		t.Fatalf("Ops:\nhave %v\nwant %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Ops:\nhave %v\nwant %v", names, want)
		}
	}
}

func TestContextEndFrameRejectsOpenBlock(t *testing.T) {
	gpu := openGPU(t)
	ctx, s := devctx.New(gpu)
	if !s.OK() {
		t.Fatalf("New: unexpected status %v", s)
	}
	if s := ctx.BeginFrame(); !s.OK() {
		t.Fatalf("BeginFrame: unexpected status %v", s)
	}
	if s := ctx.BeginCompute(); !s.OK() {
		t.Fatalf("BeginCompute: unexpected status %v", s)
	}
	if s := ctx.EndFrame(); s != status.ErrAPI {
		t.Fatalf("EndFrame with an open block:\nhave %v\nwant %v", s, status.ErrAPI)
	}
}

func TestContextBeginFrameWaitsOnPreviousSubmission(t *testing.T) {
	gpu := openGPU(t)
	ctx, s := devctx.New(gpu)
	if !s.OK() {
		t.Fatalf("New: unexpected status %v", s)
	}
	if s := ctx.BeginFrame(); !s.OK() {
		t.Fatalf("BeginFrame (1st): unexpected status %v", s)
	}
	if s := ctx.EndFrame(); !s.OK() {
		t.Fatalf("EndFrame (1st): unexpected status %v", s)
	}
	if s := ctx.Submit(); !s.OK() {
		t.Fatalf("Submit (1st): unexpected status %v", s)
	}
	if s := ctx.BeginFrame(); !s.OK() {
		t.Fatalf("BeginFrame (2nd): unexpected status %v", s)
	}
}
