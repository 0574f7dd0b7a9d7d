package builder_test

import (
	"testing"

	"github.com/phoenixgfx/phoenix/builder"
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/resource"
)

func newColorPass(t *testing.T, gpu driver.GPU) driver.RenderPass {
	t.Helper()
	pass, s := builder.BuildRenderPass(gpu, &builder.RenderPassDesc{
		Attachments: []builder.AttachmentDesc{colorAttach()},
		Subpass:     builder.SubpassDesc{Color: []int{0}, DS: -1},
	})
	if !s.OK() {
		t.Fatalf("BuildRenderPass: unexpected status %v", s)
	}
	return pass
}

func TestBuildRenderPassRejectsNoAttachments(t *testing.T) {
	gpu := openGPU(t)
	if _, s := builder.BuildRenderPass(gpu, &builder.RenderPassDesc{}); s.OK() {
		t.Fatal("BuildRenderPass: accepted a description with no attachments")
	}
	if _, s := builder.BuildRenderPass(nil, &builder.RenderPassDesc{
		Attachments: []builder.AttachmentDesc{colorAttach()},
	}); s.OK() {
		t.Fatal("BuildRenderPass: accepted a nil GPU")
	}
}

func TestBuildFramebufferSizesFromAttachments(t *testing.T) {
	gpu := openGPU(t)
	pass := newColorPass(t, gpu)
	tex, s := resource.NewTexture(gpu, resource.TexParam{
		Format: driver.RGBA8un, Size: driver.Dim3D{Width: 16, Height: 32, Depth: 1},
		Usage: driver.URenderTarget, ViewTyp: driver.IView2D,
	})
	if !s.OK() {
		t.Fatalf("NewTexture: unexpected status %v", s)
	}
	defer tex.Destroy()

	a := colorAttach()
	a.Texture = tex
	fb, s := builder.BuildFramebuffer(pass, &builder.FramebufferDesc{
		Layers:      1,
		Attachments: []builder.AttachmentDesc{a},
	})
	if !s.OK() {
		t.Fatalf("BuildFramebuffer: unexpected status %v", s)
	}
	if fb == nil {
		t.Fatal("BuildFramebuffer: returned nil framebuffer on success")
	}
}

func TestBuildFramebufferRejectsMissingTexture(t *testing.T) {
	gpu := openGPU(t)
	pass := newColorPass(t, gpu)
	_, s := builder.BuildFramebuffer(pass, &builder.FramebufferDesc{
		Width: 8, Height: 8, Layers: 1,
		Attachments: []builder.AttachmentDesc{colorAttach()},
	})
	if s.OK() {
		t.Fatal("BuildFramebuffer: accepted an attachment with no texture")
	}
}

func TestBuildGraphicsPipelineRoundTrip(t *testing.T) {
	gpu := openGPU(t)
	pass := newColorPass(t, gpu)
	vs, s := resource.NewShader(gpu, []byte{1, 2, 3, 4}, driver.SVertex)
	if !s.OK() {
		t.Fatalf("NewShader: unexpected status %v", s)
	}
	defer vs.Destroy()
	fs, s := resource.NewShader(gpu, []byte{5, 6, 7, 8}, driver.SFragment)
	if !s.OK() {
		t.Fatalf("NewShader: unexpected status %v", s)
	}
	defer fs.Destroy()

	desc := &builder.GraphicsPipelineDesc{
		Topology: driver.TTriangle,
		Samples:  1,
		Attributes: []builder.VertexAttr{
			{Format: driver.Float32x3, Name: "position", Nr: 0},
		},
		VertShader: builder.ShaderRef{Shader: vs},
		FragShader: builder.ShaderRef{Shader: fs},
		Pass:       pass,
		Subpass:    0,
	}
	pl, s := builder.BuildGraphicsPipeline(gpu, desc)
	if !s.OK() {
		t.Fatalf("BuildGraphicsPipeline: unexpected status %v", s)
	}
	if pl == nil {
		t.Fatal("BuildGraphicsPipeline: returned nil pipeline on success")
	}
}

func TestBuildGraphicsPipelineRejectsMissingShaders(t *testing.T) {
	gpu := openGPU(t)
	if _, s := builder.BuildGraphicsPipeline(gpu, &builder.GraphicsPipelineDesc{}); s.OK() {
		t.Fatal("BuildGraphicsPipeline: accepted a description with no shaders")
	}
}

func TestBuildComputePipelineRoundTrip(t *testing.T) {
	gpu := openGPU(t)
	cs, s := resource.NewShader(gpu, []byte{9, 9, 9}, driver.SCompute)
	if !s.OK() {
		t.Fatalf("NewShader: unexpected status %v", s)
	}
	defer cs.Destroy()

	pl, s := builder.BuildComputePipeline(gpu, &builder.ComputePipelineDesc{
		Shader: builder.ShaderRef{Shader: cs},
	})
	if !s.OK() {
		t.Fatalf("BuildComputePipeline: unexpected status %v", s)
	}
	if pl == nil {
		t.Fatal("BuildComputePipeline: returned nil pipeline on success")
	}
}

func TestBuildComputePipelineRejectsMissingShader(t *testing.T) {
	gpu := openGPU(t)
	if _, s := builder.BuildComputePipeline(gpu, &builder.ComputePipelineDesc{}); s.OK() {
		t.Fatal("BuildComputePipeline: accepted a description with no shader")
	}
}
