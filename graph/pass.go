package graph

import (
	"github.com/phoenixgfx/phoenix/builder"
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

// SetTextureInput records tex as an input-attachment read, either
// color or depth/stencil. Sampled (non-attachment) texture reads go
// through SetUniformInput instead, since the access/layout tables
// only classify attachment-typed texture inputs.
func (p *Pass) SetTextureInput(tex *resource.Texture, attach builder.AttachmentType) status.Status {
	if tex == nil {
		return status.ErrAPI
	}
	switch attach {
	case builder.AttachColor, builder.AttachDepth, builder.AttachStencil, builder.AttachDepthStencil:
	default:
		return status.ErrAPI
	}
	idx := p.g.registerTexture(tex)
	p.addUsage(Usage{IO: IOInput, Kind: KindTexture, Attach: attach, Texture: tex, PhysicalIndex: idx})
	return status.Success
}

// SetColorOutput records tex as a color attachment output at the
// given mip.
func (p *Pass) SetColorOutput(tex *resource.Texture, mip int, load driver.LoadOp, store driver.StoreOp, clear driver.ClearValue) status.Status {
	if tex == nil {
		return status.ErrAPI
	}
	idx := p.g.registerTexture(tex)
	p.addUsage(Usage{IO: IOOutput, Kind: KindTexture, Attach: builder.AttachColor, Texture: tex, PhysicalIndex: idx, MipTarget: mip, LoadOp: load, StoreOp: store, Clear: clear})
	return status.Success
}

// SetDepthOutput records tex as the pass's depth attachment output.
func (p *Pass) SetDepthOutput(tex *resource.Texture, load driver.LoadOp, store driver.StoreOp, clear driver.ClearValue) status.Status {
	if tex == nil {
		return status.ErrAPI
	}
	idx := p.g.registerTexture(tex)
	p.addUsage(Usage{IO: IOOutput, Kind: KindTexture, Attach: builder.AttachDepth, Reserved: reservedDepthbuffer, Texture: tex, PhysicalIndex: idx, LoadOp: load, StoreOp: store, Clear: clear})
	return status.Success
}

// SetDepthStencilOutput records tex as a combined depth/stencil
// attachment output.
func (p *Pass) SetDepthStencilOutput(tex *resource.Texture, load driver.LoadOp, store driver.StoreOp, clear driver.ClearValue) status.Status {
	if tex == nil {
		return status.ErrAPI
	}
	idx := p.g.registerTexture(tex)
	p.addUsage(Usage{IO: IOOutput, Kind: KindTexture, Attach: builder.AttachDepthStencil, Reserved: reservedDepthbuffer, Texture: tex, PhysicalIndex: idx, LoadOp: load, StoreOp: store, Clear: clear})
	return status.Success
}

// SetResolveOutput records tex as a multisample-resolve target.
func (p *Pass) SetResolveOutput(tex *resource.Texture, mip int) status.Status {
	if tex == nil {
		return status.ErrAPI
	}
	idx := p.g.registerTexture(tex)
	p.addUsage(Usage{IO: IOOutput, Kind: KindTexture, Attach: builder.AttachResolve, Texture: tex, PhysicalIndex: idx, MipTarget: mip, StoreOp: driver.SStore})
	return status.Success
}

// SetBackbufferOutput records tex as the swap-chain image this frame
// presents. Its pass becomes the final pass during Bake's backbuffer
// scan.
func (p *Pass) SetBackbufferOutput(tex *resource.Texture, load driver.LoadOp, clear driver.ClearValue) status.Status {
	if tex == nil {
		return status.ErrAPI
	}
	idx := p.g.registerTexture(tex)
	p.addUsage(Usage{IO: IOOutput, Kind: KindTexture, Attach: builder.AttachColor, Reserved: reservedBackbuffer, Texture: tex, PhysicalIndex: idx, LoadOp: load, StoreOp: driver.SStore, Clear: clear})
	return status.Success
}

// SetBufferInput records buf as an input, classified by its own
// usage (vertex/index/uniform/storage).
func (p *Pass) SetBufferInput(buf *resource.Buffer) status.Status {
	if buf == nil {
		return status.ErrAPI
	}
	idx := p.g.registerBuffer(buf)
	p.addUsage(Usage{IO: IOInput, Kind: KindBuffer, BufRole: buf.Usage(), Buffer: buf, PhysicalIndex: idx})
	return status.Success
}

// SetBufferOutput records buf as written by this pass (storage buffer
// writes from compute, typically).
func (p *Pass) SetBufferOutput(buf *resource.Buffer) status.Status {
	if buf == nil {
		return status.ErrAPI
	}
	idx := p.g.registerBuffer(buf)
	p.addUsage(Usage{IO: IOOutput, Kind: KindBuffer, BufRole: buf.Usage(), Buffer: buf, PhysicalIndex: idx})
	return status.Success
}

// SetUniformInput records uc (a whole descriptor-set collection, not
// any one binding within it) as read by this pass's shader stages.
func (p *Pass) SetUniformInput(uc *resource.UniformCollection) status.Status {
	if uc == nil {
		return status.ErrAPI
	}
	idx := p.g.registerUniform(uc)
	p.addUsage(Usage{IO: IOInput, Kind: KindUniform, Uniform: uc, PhysicalIndex: idx})
	return status.Success
}

// SetGraphicsPipeline attaches the pipeline description used to
// dispatch this pass. Required for BindGraphics passes before Bake.
func (p *Pass) SetGraphicsPipeline(desc *builder.GraphicsPipelineDesc) status.Status {
	if desc == nil || p.Bind != BindGraphics {
		return status.ErrAPI
	}
	p.GraphicsDesc = desc
	return status.Success
}

// SetComputePipeline attaches the pipeline description used to
// dispatch this pass. Required for BindCompute passes before Bake.
func (p *Pass) SetComputePipeline(desc *builder.ComputePipelineDesc) status.Status {
	if desc == nil || p.Bind != BindCompute {
		return status.ErrAPI
	}
	p.ComputeDesc = desc
	return status.Success
}

// SetExecute attaches the pass's execute callback.
func (p *Pass) SetExecute(fn ExecuteFunc) status.Status {
	if fn == nil {
		return status.ErrAPI
	}
	p.Execute = fn
	return status.Success
}
