package builder

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

func attachment(a AttachmentDesc) driver.Attachment {
	return driver.Attachment{
		Format:  a.Format,
		Samples: a.Samples,
		Load:    [2]driver.LoadOp{a.LoadOp, a.LoadOpStencil},
		Store:   [2]driver.StoreOp{a.StoreOp, a.StoreOpStencil},
	}
}

// BuildRenderPass translates desc into a backend render pass.
// driver.Attachment and driver.Subpass carry no layouts and no
// stage/access masks, so desc's InitialLayout/FinalLayout and the
// subpass SrcStage/DstStage/SrcAccess/DstAccess take part in desc's
// hash only and are not passed to the backend.
func BuildRenderPass(gpu driver.GPU, desc *RenderPassDesc) (driver.RenderPass, status.Status) {
	if gpu == nil || len(desc.Attachments) == 0 {
		return nil, status.ErrAPI
	}
	att := make([]driver.Attachment, len(desc.Attachments))
	for i, a := range desc.Attachments {
		att[i] = attachment(a)
	}
	sub := []driver.Subpass{{
		Color: desc.Subpass.Color,
		DS:    desc.Subpass.DS,
		MSR:   desc.Subpass.MSR,
		Wait:  desc.Subpass.Wait,
	}}
	pass, err := gpu.NewRenderPass(att, sub)
	if err != nil {
		return nil, status.ErrInternal
	}
	return pass, status.Success
}

// BuildFramebuffer builds one framebuffer honoring each attachment's
// mip_target. Width/height are the max over attachments; layers comes
// from the description.
func BuildFramebuffer(pass driver.RenderPass, desc *FramebufferDesc) (driver.Framebuf, status.Status) {
	if pass == nil || len(desc.Attachments) == 0 {
		return nil, status.ErrAPI
	}
	views := make([]driver.ImageView, len(desc.Attachments))
	w, hgt := desc.Width, desc.Height
	for i, a := range desc.Attachments {
		if a.Texture == nil {
			return nil, status.ErrAPI
		}
		v := a.Texture.View(a.MipTarget)
		if v == nil {
			return nil, status.ErrAPI
		}
		views[i] = v
		sz := a.Texture.Param().Size
		if sz.Width > w {
			w = sz.Width
		}
		if sz.Height > hgt {
			hgt = sz.Height
		}
	}
	fb, err := pass.NewFB(views, w, hgt, desc.Layers)
	if err != nil {
		return nil, status.ErrInternal
	}
	return fb, status.Success
}

func vertexFmtSize(f driver.VertexFmt) int {
	switch f {
	case driver.Int8, driver.UInt8:
		return 1
	case driver.Int8x2, driver.UInt8x2:
		return 2
	case driver.Int8x3, driver.UInt8x3:
		return 3
	case driver.Int8x4, driver.UInt8x4:
		return 4
	case driver.Int16, driver.UInt16:
		return 2
	case driver.Int16x2, driver.UInt16x2:
		return 4
	case driver.Int16x3, driver.UInt16x3:
		return 6
	case driver.Int16x4, driver.UInt16x4:
		return 8
	case driver.Int32, driver.UInt32, driver.Float32:
		return 4
	case driver.Int32x2, driver.UInt32x2, driver.Float32x2:
		return 8
	case driver.Int32x3, driver.UInt32x3, driver.Float32x3:
		return 12
	case driver.Int32x4, driver.UInt32x4, driver.Float32x4:
		return 16
	default:
		return 0
	}
}

// BuildGraphicsPipeline translates desc into a backend graphics
// pipeline. Viewport/scissor are left as dynamic state — devctx sets
// them per draw, they are never baked into the pipeline.
func BuildGraphicsPipeline(gpu driver.GPU, desc *GraphicsPipelineDesc) (driver.Pipeline, status.Status) {
	if gpu == nil || desc.VertShader.Shader == nil || desc.FragShader.Shader == nil {
		return nil, status.ErrAPI
	}
	table, s := newDescTable(gpu, desc.UniformGroups)
	if !s.OK() {
		return nil, s
	}
	input := make([]driver.VertexIn, len(desc.Attributes))
	for i, a := range desc.Attributes {
		input[i] = driver.VertexIn{
			Format: a.Format,
			Stride: vertexFmtSize(a.Format),
			Nr:     a.Nr,
			Name:   a.Name,
		}
	}
	state := &driver.GraphState{
		VertFunc: driver.ShaderFunc{Code: desc.VertShader.Shader.Code()},
		FragFunc: driver.ShaderFunc{Code: desc.FragShader.Shader.Code()},
		Desc:     table,
		Input:    input,
		Topology: desc.Topology,
		Raster:   desc.Raster,
		Samples:  desc.Samples,
		DS:       desc.DS,
		Blend:    desc.Blend,
		Pass:     desc.Pass,
		Subpass:  desc.Subpass,
	}
	pl, err := gpu.NewPipeline(state)
	if err != nil {
		return nil, status.ErrInternal
	}
	return pl, status.Success
}

// BuildComputePipeline translates desc into a backend compute
// pipeline: shader and layout only, per §4.4.
func BuildComputePipeline(gpu driver.GPU, desc *ComputePipelineDesc) (driver.Pipeline, status.Status) {
	if gpu == nil || desc.Shader.Shader == nil {
		return nil, status.ErrAPI
	}
	table, s := newDescTable(gpu, desc.UniformGroups)
	if !s.OK() {
		return nil, s
	}
	state := &driver.CompState{
		Func: driver.ShaderFunc{Code: desc.Shader.Shader.Code()},
		Desc: table,
	}
	pl, err := gpu.NewPipeline(state)
	if err != nil {
		return nil, status.ErrInternal
	}
	return pl, status.Success
}

// newDescTable builds a pipeline layout with one descriptor-set-layout
// per uniform group, in group order, and no push constants (§4.4).
func newDescTable(gpu driver.GPU, groups []resource.Group) (driver.DescTable, status.Status) {
	if len(groups) == 0 {
		return nil, status.Success
	}
	heaps := make([]driver.DescHeap, 0, len(groups))
	for _, g := range groups {
		descs := make([]driver.Descriptor, len(g.Bindings))
		for i, b := range g.Bindings {
			descs[i] = driver.Descriptor{Type: b.Type, Stages: b.Stage, Nr: b.Binding, Len: 1}
		}
		dh, err := gpu.NewDescHeap(descs)
		if err != nil {
			for _, h := range heaps {
				h.Destroy()
			}
			return nil, status.ErrInternal
		}
		heaps = append(heaps, dh)
	}
	table, err := gpu.NewDescTable(heaps)
	if err != nil {
		for _, h := range heaps {
			h.Destroy()
		}
		return nil, status.ErrInternal
	}
	return table, status.Success
}
