package graph

import (
	"github.com/phoenixgfx/phoenix/builder"
	"github.com/phoenixgfx/phoenix/devctx"
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/status"
)

// Execute runs every active pass against ctx, in dependency order:
// input barriers, dispatch by bind point, execute callback, tracked-
// layout updates. Bake must have succeeded first.
func (g *Graph) Execute(ctx *devctx.Context) status.Status {
	if g.activeOrder == nil {
		return status.ErrAPI
	}
	for _, idx := range g.activeOrder {
		p := g.passes[idx]
		if s := g.applyInputBarriers(ctx, p); !s.OK() {
			return s
		}
		var s status.Status
		switch p.Bind {
		case BindGraphics:
			s = g.executeGraphics(ctx, p, idx == g.finalIdx)
		case BindCompute:
			s = g.executeCompute(ctx, p)
		case BindTransfer:
			s = g.executeTransfer(ctx, p)
		default:
			s = status.ErrAPI
		}
		if !s.OK() {
			return s
		}
	}
	return status.Success
}

func (g *Graph) applyInputBarriers(ctx *devctx.Context, p *Pass) status.Status {
	for physIdx, b := range p.InputBarriers {
		pr := g.physicalResources[physIdx]
		if b.IsTexture {
			s := ctx.InsertImageMemoryBarrier(pr.Texture, b.SrcStage, b.DstStage, b.SrcAccess, b.DstAccess, b.OldLayout, b.NewLayout)
			if !s.OK() {
				return s
			}
			pr.Texture.SetLayout(b.NewLayout)
		} else {
			if s := ctx.InsertBufferMemoryBarrier(pr.Buffer, b.SrcStage, b.DstStage, b.SrcAccess, b.DstAccess); !s.OK() {
				return s
			}
		}
	}
	return status.Success
}

// assembleRenderPassDesc builds a RenderPassDesc from p's texture
// outputs, in registration order, deriving initial/final layouts from
// the barriers Bake synthesized for each attachment.
func (g *Graph) assembleRenderPassDesc(p *Pass) *builder.RenderPassDesc {
	desc := &builder.RenderPassDesc{Subpass: builder.SubpassDesc{DS: -1}}
	for _, ui := range p.usageIdx {
		u := g.resourceUsages[ui]
		if u.Kind != KindTexture || u.IO != IOOutput {
			continue
		}
		initial := u.Texture.CurrentLayout
		final := layoutFor(u, p.Bind)
		if b, ok := p.InputBarriers[u.PhysicalIndex]; ok {
			initial = b.OldLayout
			desc.Subpass.SrcStage |= b.SrcStage
			desc.Subpass.DstStage |= b.DstStage
			desc.Subpass.SrcAccess |= b.SrcAccess
			desc.Subpass.DstAccess |= b.DstAccess
		}
		if b, ok := p.OutputBarriers[u.PhysicalIndex]; ok {
			final = b.NewLayout
			desc.Subpass.SrcStage |= b.SrcStage
			desc.Subpass.DstStage |= b.DstStage
			desc.Subpass.SrcAccess |= b.SrcAccess
			desc.Subpass.DstAccess |= b.DstAccess
		}
		att := builder.AttachmentDesc{
			Type: u.Attach, Format: u.Texture.Param().Format, Samples: u.Texture.Param().Samples,
			LoadOp: u.LoadOp, StoreOp: u.StoreOp,
			InitialLayout: initial, FinalLayout: final,
			MipTarget: u.MipTarget, Texture: u.Texture,
		}
		attIdx := len(desc.Attachments)
		desc.Attachments = append(desc.Attachments, att)
		switch u.Attach {
		case builder.AttachColor, builder.AttachResolve:
			desc.Subpass.Color = append(desc.Subpass.Color, attIdx)
		case builder.AttachDepth, builder.AttachStencil, builder.AttachDepthStencil:
			desc.Subpass.DS = attIdx
		}
	}
	return desc
}

func (g *Graph) assembleFramebufferDesc(p *Pass, isBackbuffer bool) *builder.FramebufferDesc {
	desc := &builder.FramebufferDesc{Layers: 1, IsBackbuffer: isBackbuffer}
	for _, ui := range p.usageIdx {
		u := g.resourceUsages[ui]
		if u.Kind != KindTexture || u.IO != IOOutput {
			continue
		}
		desc.Attachments = append(desc.Attachments, builder.AttachmentDesc{
			Type: u.Attach, Format: u.Texture.Param().Format, Samples: u.Texture.Param().Samples,
			MipTarget: u.MipTarget, Texture: u.Texture,
		})
	}
	return desc
}

func collectClearValues(g *Graph, p *Pass) []driver.ClearValue {
	var out []driver.ClearValue
	for _, ui := range p.usageIdx {
		u := g.resourceUsages[ui]
		if u.Kind != KindTexture || u.IO != IOOutput {
			continue
		}
		out = append(out, u.Clear)
	}
	return out
}

func (g *Graph) executeGraphics(ctx *devctx.Context, p *Pass, isFinal bool) status.Status {
	if p.GraphicsDesc == nil {
		return status.ErrAPI
	}
	passDesc := g.assembleRenderPassDesc(p)
	pass, s := g.rpCache.FindOrCreate(passDesc)
	if !s.OK() {
		return s
	}
	fbDesc := g.assembleFramebufferDesc(p, isFinal)
	fb, s := g.fbCache.FindOrCreate(pass, fbDesc)
	if !s.OK() {
		return s
	}
	p.GraphicsDesc.Pass = pass
	pl, s := g.plCache.FindOrCreateGraphics(p.GraphicsDesc)
	if !s.OK() {
		return s
	}
	if s := ctx.BeginRenderPass(pass, fb, collectClearValues(g, p)); !s.OK() {
		return s
	}
	if p.Execute != nil {
		if s := p.Execute(ctx, pl); !s.OK() {
			return s
		}
	}
	if s := ctx.EndRenderPass(); !s.OK() {
		return s
	}
	for physIdx, b := range p.OutputBarriers {
		pr := g.physicalResources[physIdx]
		if b.IsTexture {
			pr.Texture.SetLayout(b.NewLayout)
		}
	}
	return status.Success
}

func (g *Graph) executeCompute(ctx *devctx.Context, p *Pass) status.Status {
	if p.ComputeDesc == nil {
		return status.ErrAPI
	}
	pl, s := g.plCache.FindOrCreateCompute(p.ComputeDesc)
	if !s.OK() {
		return s
	}
	if s := ctx.BeginCompute(); !s.OK() {
		return s
	}
	if p.Execute != nil {
		if s := p.Execute(ctx, pl); !s.OK() {
			return s
		}
	}
	return ctx.EndCompute()
}

func (g *Graph) executeTransfer(ctx *devctx.Context, p *Pass) status.Status {
	if p.Execute == nil {
		return status.Success
	}
	return p.Execute(ctx, nil)
}
