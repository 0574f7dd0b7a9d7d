package soft

import (
	"errors"

	"github.com/phoenixgfx/phoenix/driver"
)

// block identifies which kind of logical recording block is open.
type block int

const (
	blockNone block = iota
	blockPass
	blockWork
	blockBlit
)

// Op is a recorded command, kept so tests can assert on what a frame
// actually issued without a real GPU to read back from.
type Op struct {
	Name string
	Args any
}

// CmdBuffer implements driver.CmdBuffer entirely in host memory: it
// validates the Begin/BeginPass/.../End state machine documented on
// driver.CmdBuffer and appends every command to Ops for inspection.
type CmdBuffer struct {
	gpu *GPU

	recording bool
	committed bool
	cur       block

	Ops []Op

	pass driver.RenderPass
	fb   driver.Framebuf
}

func (c *CmdBuffer) Destroy() {}

func (c *CmdBuffer) Begin() error {
	if c.recording {
		return errors.New("soft: command buffer already recording")
	}
	c.recording = true
	c.committed = false
	c.cur = blockNone
	c.Ops = c.Ops[:0]
	return nil
}

func (c *CmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	c.cur = blockPass
	c.pass = pass
	c.fb = fb
	cp := make([]driver.ClearValue, len(clear))
	copy(cp, clear)
	c.Ops = append(c.Ops, Op{"BeginPass", cp})
}

func (c *CmdBuffer) NextSubpass() { c.Ops = append(c.Ops, Op{"NextSubpass", nil}) }

func (c *CmdBuffer) EndPass() {
	c.cur = blockNone
	c.pass, c.fb = nil, nil
	c.Ops = append(c.Ops, Op{"EndPass", nil})
}

func (c *CmdBuffer) BeginWork(wait bool) {
	c.cur = blockWork
	c.Ops = append(c.Ops, Op{"BeginWork", wait})
}

func (c *CmdBuffer) EndWork() {
	c.cur = blockNone
	c.Ops = append(c.Ops, Op{"EndWork", nil})
}

func (c *CmdBuffer) BeginBlit(wait bool) {
	c.cur = blockBlit
	c.Ops = append(c.Ops, Op{"BeginBlit", wait})
}

func (c *CmdBuffer) EndBlit() {
	c.cur = blockNone
	c.Ops = append(c.Ops, Op{"EndBlit", nil})
}

func (c *CmdBuffer) SetPipeline(pl driver.Pipeline) { c.Ops = append(c.Ops, Op{"SetPipeline", pl}) }

func (c *CmdBuffer) SetViewport(vp []driver.Viewport) {
	c.Ops = append(c.Ops, Op{"SetViewport", append([]driver.Viewport(nil), vp...)})
}

func (c *CmdBuffer) SetScissor(sciss []driver.Scissor) {
	c.Ops = append(c.Ops, Op{"SetScissor", append([]driver.Scissor(nil), sciss...)})
}

func (c *CmdBuffer) SetBlendColor(r, g, b, a float32) {
	c.Ops = append(c.Ops, Op{"SetBlendColor", [4]float32{r, g, b, a}})
}

func (c *CmdBuffer) SetStencilRef(value uint32) { c.Ops = append(c.Ops, Op{"SetStencilRef", value}) }

func (c *CmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	c.Ops = append(c.Ops, Op{"SetVertexBuf", start})
}

func (c *CmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	c.Ops = append(c.Ops, Op{"SetIndexBuf", format})
}

func (c *CmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	c.Ops = append(c.Ops, Op{"SetDescTableGraph", start})
}

func (c *CmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {
	c.Ops = append(c.Ops, Op{"SetDescTableComp", start})
}

func (c *CmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	c.Ops = append(c.Ops, Op{"Draw", [4]int{vertCount, instCount, baseVert, baseInst}})
}

func (c *CmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	c.Ops = append(c.Ops, Op{"DrawIndexed", [5]int{idxCount, instCount, baseIdx, vertOff, baseInst}})
}

func (c *CmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {
	c.Ops = append(c.Ops, Op{"Dispatch", [3]int{grpCountX, grpCountY, grpCountZ}})
}

func (c *CmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	if param == nil {
		return
	}
	from, fromOK := param.From.(*Buffer)
	to, toOK := param.To.(*Buffer)
	if fromOK && toOK {
		n := copy(to.data[param.ToOff:], from.data[param.FromOff:param.FromOff+param.Size])
		_ = n
	}
	c.Ops = append(c.Ops, Op{"CopyBuffer", *param})
}

func (c *CmdBuffer) CopyImage(param *driver.ImageCopy) {
	if param != nil {
		c.Ops = append(c.Ops, Op{"CopyImage", *param})
	}
}

func (c *CmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	if param != nil {
		c.Ops = append(c.Ops, Op{"CopyBufToImg", *param})
	}
}

func (c *CmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {
	if param != nil {
		c.Ops = append(c.Ops, Op{"CopyImgToBuf", *param})
	}
}

func (c *CmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	if b, ok := buf.(*Buffer); ok {
		for i := off; i < off+size && int(i) < len(b.data); i++ {
			b.data[i] = value
		}
	}
	c.Ops = append(c.Ops, Op{"Fill", [3]int64{off, int64(value), size}})
}

func (c *CmdBuffer) Barrier(b []driver.Barrier) {
	c.Ops = append(c.Ops, Op{"Barrier", append([]driver.Barrier(nil), b...)})
}

func (c *CmdBuffer) Transition(t []driver.Transition) {
	c.Ops = append(c.Ops, Op{"Transition", append([]driver.Transition(nil), t...)})
}

func (c *CmdBuffer) End() error {
	if !c.recording {
		return errors.New("soft: command buffer not recording")
	}
	if c.cur != blockNone {
		c.Reset()
		return errors.New("soft: command buffer ended with an open block")
	}
	c.recording = false
	return nil
}

func (c *CmdBuffer) Reset() error {
	c.recording = false
	c.committed = false
	c.cur = blockNone
	c.pass, c.fb = nil, nil
	c.Ops = c.Ops[:0]
	return nil
}
