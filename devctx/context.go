// Package devctx implements the device context: the command recorder
// a render-graph pass execute callback sees. Each Context owns one
// driver.CmdBuffer and is bound to a single in-flight slot; frame
// types hold one Context per slot and round-robin them, mirroring the
// command-buffer rotation used elsewhere in this codebase.
package devctx

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

// block identifies which recording block, if any, is currently open.
type block int

const (
	blockNone block = iota
	blockPass
	blockWork
	blockBlit
)

// upload is a staging→GPU copy deferred from CopyDataToBuffer to the
// next blit block, so copy_data_to_buffer can be called outside of
// one without forcing the caller to open it themselves.
type upload struct {
	buf  *resource.Buffer
	size int64
}

// Context is a single in-flight slot's command recorder.
type Context struct {
	gpu  driver.GPU
	cb   driver.CmdBuffer
	done chan error

	open bool // frame currently open (begin_frame called, end_frame not yet)
	blk  block

	pending []upload
}

// New creates a context backed by a fresh command buffer.
func New(gpu driver.GPU) (*Context, status.Status) {
	if gpu == nil {
		return nil, status.ErrAPI
	}
	cb, err := gpu.NewCmdBuffer()
	if err != nil {
		return nil, status.ErrInternal
	}
	return &Context{gpu: gpu, cb: cb}, status.Success
}

// BeginFrame waits on this slot's previous submission, resets the
// recorder (not frees it), and opens a fresh recording. Until this has
// been called, the recording methods fail with ErrInternal, except
// BeginRenderPass, which fails with ErrAPI; Submit does not check.
func (c *Context) BeginFrame() status.Status {
	if c.done != nil {
		if err := <-c.done; err != nil {
			return status.ErrInternal
		}
		c.done = nil
	}
	if err := c.cb.Reset(); err != nil {
		return status.ErrInternal
	}
	if err := c.cb.Begin(); err != nil {
		return status.ErrInternal
	}
	c.open = true
	c.blk = blockNone
	c.pending = c.pending[:0]
	return status.Success
}

func (c *Context) requireOpen() status.Status {
	if !c.open {
		return status.ErrInternal
	}
	return status.Success
}

// BeginRenderPass opens a render-pass recording block. It fails with
// ErrAPI if called before BeginFrame or while another block is open.
func (c *Context) BeginRenderPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) status.Status {
	if !c.open {
		return status.ErrAPI
	}
	if c.blk != blockNone {
		return status.ErrAPI
	}
	c.cb.BeginPass(pass, fb, clear)
	c.blk = blockPass
	return status.Success
}

// EndRenderPass closes the render-pass recording block opened by
// BeginRenderPass.
func (c *Context) EndRenderPass() status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass {
		return status.ErrAPI
	}
	c.cb.EndPass()
	c.blk = blockNone
	return status.Success
}

// BindVertexBuffer binds a single vertex buffer at the given slot.
func (c *Context) BindVertexBuffer(slot int, buf *resource.Buffer, offset int64) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass || buf == nil {
		return status.ErrAPI
	}
	c.cb.SetVertexBuf(slot, []driver.Buffer{buf.Driver()}, []int64{offset})
	return status.Success
}

// BindMesh binds a vertex buffer at slot 0 and an index buffer.
func (c *Context) BindMesh(vertex *resource.Buffer, index *resource.Buffer, indexFmt driver.IndexFmt) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass || vertex == nil || index == nil {
		return status.ErrAPI
	}
	c.cb.SetVertexBuf(0, []driver.Buffer{vertex.Driver()}, []int64{0})
	c.cb.SetIndexBuf(indexFmt, index.Driver(), 0)
	return status.Success
}

// BindUniformCollection binds collection's descriptor table starting
// at heap range 0, for either the graphics or compute pipeline
// binding point according to the currently open block.
func (c *Context) BindUniformCollection(collection *resource.UniformCollection) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if collection == nil {
		return status.ErrAPI
	}
	switch c.blk {
	case blockPass:
		c.cb.SetDescTableGraph(collection.Table(), 0, nil)
	case blockWork:
		c.cb.SetDescTableComp(collection.Table(), 0, nil)
	default:
		return status.ErrAPI
	}
	return status.Success
}

// BindPipeline binds pl. The caller is responsible for binding a
// pipeline compatible with the currently open block.
func (c *Context) BindPipeline(pl driver.Pipeline) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if pl == nil || (c.blk != blockPass && c.blk != blockWork) {
		return status.ErrAPI
	}
	c.cb.SetPipeline(pl)
	return status.Success
}

// SetViewport sets a single viewport covering size at offset.
func (c *Context) SetViewport(width, height float32, x, y float32) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass {
		return status.ErrAPI
	}
	c.cb.SetViewport([]driver.Viewport{{X: x, Y: y, Width: width, Height: height, Znear: 0, Zfar: 1}})
	return status.Success
}

// SetScissor sets a single scissor rectangle covering size at offset.
func (c *Context) SetScissor(width, height int, x, y int) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass {
		return status.ErrAPI
	}
	c.cb.SetScissor([]driver.Scissor{{X: x, Y: y, Width: width, Height: height}})
	return status.Success
}

// Draw draws vertCount vertices.
func (c *Context) Draw(vertCount int) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass {
		return status.ErrAPI
	}
	c.cb.Draw(vertCount, 1, 0, 0)
	return status.Success
}

// DrawIndexed draws idxCount indexed vertices.
func (c *Context) DrawIndexed(idxCount int) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass {
		return status.ErrAPI
	}
	c.cb.DrawIndexed(idxCount, 1, 0, 0, 0)
	return status.Success
}

// DrawIndexedInstanced draws idxCount indexed vertices, instCount
// times.
func (c *Context) DrawIndexedInstanced(idxCount, instCount int) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockPass {
		return status.ErrAPI
	}
	c.cb.DrawIndexed(idxCount, instCount, 0, 0, 0)
	return status.Success
}

// BeginCompute opens a compute recording block. Exposed separately
// from BeginRenderPass/BeginBlit since dispatch is the only operation
// spec.md's device-context surface names for it directly.
func (c *Context) BeginCompute() status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockNone {
		return status.ErrAPI
	}
	c.cb.BeginWork(false)
	c.blk = blockWork
	return status.Success
}

// EndCompute closes the compute recording block.
func (c *Context) EndCompute() status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockWork {
		return status.ErrAPI
	}
	c.cb.EndWork()
	c.blk = blockNone
	return status.Success
}

// Dispatch dispatches x*y*z compute thread groups.
func (c *Context) Dispatch(x, y, z int) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockWork {
		return status.ErrAPI
	}
	c.cb.Dispatch(x, y, z)
	return status.Success
}

// CopyDataToBuffer writes src into buf's host-visible allocation now
// (CPU→staging, or directly for BufUniform) and, if buf needs a GPU
// upload, records the staging→GPU copy in the blit block of this
// submission.
func (c *Context) CopyDataToBuffer(buf *resource.Buffer, src []byte) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if buf == nil {
		return status.ErrAPI
	}
	if s := buf.CopyData(src); !s.OK() {
		return s
	}
	if buf.NeedsUpload() {
		c.pending = append(c.pending, upload{buf: buf, size: int64(len(src))})
	}
	return status.Success
}

// flushUploads records every deferred staging→GPU copy inside its own
// blit block. Called by EndFrame before closing the primary
// recording.
func (c *Context) flushUploads() status.Status {
	if len(c.pending) == 0 {
		return status.Success
	}
	if c.blk != blockNone {
		return status.ErrInternal
	}
	c.cb.BeginBlit(false)
	for _, u := range c.pending {
		c.cb.CopyBuffer(&driver.BufferCopy{
			From: u.buf.Staging(), FromOff: 0,
			To: u.buf.Driver(), ToOff: 0,
			Size: u.size,
		})
	}
	c.cb.EndBlit()
	c.pending = c.pending[:0]
	return status.Success
}

// InsertBufferMemoryBarrier inserts a global memory barrier ordering
// accesses to buf (the buffer argument is accepted for symmetry with
// InsertImageMemoryBarrier and future per-resource barrier tracking,
// but the backend barrier itself is scope-global).
func (c *Context) InsertBufferMemoryBarrier(buf *resource.Buffer, srcStage, dstStage driver.Sync, srcAccess, dstAccess driver.Access) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if buf == nil {
		return status.ErrAPI
	}
	c.cb.Barrier([]driver.Barrier{{
		SyncBefore: srcStage, SyncAfter: dstStage,
		AccessBefore: srcAccess, AccessAfter: dstAccess,
	}})
	return status.Success
}

// InsertImageMemoryBarrier emits a layout transition on tex's view.
// The caller is responsible for updating tex.CurrentLayout afterward.
func (c *Context) InsertImageMemoryBarrier(tex *resource.Texture, srcStage, dstStage driver.Sync, srcAccess, dstAccess driver.Access, oldLayout, newLayout driver.Layout) status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if tex == nil {
		return status.ErrAPI
	}
	c.cb.Transition([]driver.Transition{{
		Barrier: driver.Barrier{
			SyncBefore: srcStage, SyncAfter: dstStage,
			AccessBefore: srcAccess, AccessAfter: dstAccess,
		},
		LayoutBefore: oldLayout,
		LayoutAfter:  newLayout,
		IView:        tex.View(0),
	}})
	return status.Success
}

// EndFrame flushes any deferred uploads and closes the primary
// recording. It does not submit: a swap-chain Present call, if any,
// must be recorded against this Context's command buffer after
// EndFrame and before Submit, per driver.Swapchain's documented
// Next/Present/Commit pairing ("one calls the Next and Present
// methods of the swapchain and then commits the command buffer(s)
// that it targets"). Callers that do not present call Submit directly
// after EndFrame.
func (c *Context) EndFrame() status.Status {
	if s := c.requireOpen(); !s.OK() {
		return s
	}
	if c.blk != blockNone {
		return status.ErrAPI
	}
	if s := c.flushUploads(); !s.OK() {
		return s
	}
	if err := c.cb.End(); err != nil {
		return status.ErrInternal
	}
	c.open = false
	return status.Success
}

// Submit commits the closed primary recording to the GPU queue. It
// reports the commit's completion channel internally; the next
// BeginFrame call on this Context waits on it. Must be called after
// EndFrame.
func (c *Context) Submit() status.Status {
	done := make(chan error, 1)
	c.gpu.Commit([]driver.CmdBuffer{c.cb}, done)
	c.done = done
	return status.Success
}

// CmdBuffer returns the underlying driver.CmdBuffer, used by
// frame.Manager to pair a Swapchain.Present call against the same
// slot's submission.
func (c *Context) CmdBuffer() driver.CmdBuffer { return c.cb }

// Destroy releases the command buffer.
func (c *Context) Destroy() {
	if c.cb != nil {
		c.cb.Destroy()
	}
}
