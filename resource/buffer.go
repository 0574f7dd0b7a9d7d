// Package resource implements the GPU resource objects the render
// graph operates on: buffers, textures, shaders, and uniform
// collections. Each wraps one or more driver handles and exposes
// getters plus (where the source does) a descriptor-update queue;
// none of them know about the graph, the cache layer, or frames —
// they are created and destroyed by explicit client calls and
// outlive any single frame.
package resource

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/status"
)

// BufUsage is the purpose a Buffer is created for. It determines
// which driver.Usage flags back the buffer and whether a staging
// companion is allocated.
type BufUsage int

const (
	BufUniform BufUsage = iota
	BufStorage
	BufIndex
	BufVertex
	BufIndirect
)

func (u BufUsage) driverUsage() driver.Usage {
	switch u {
	case BufUniform:
		return driver.UShaderConst
	case BufStorage:
		return driver.UShaderRead | driver.UShaderWrite
	case BufIndex:
		return driver.UIndexData
	case BufVertex:
		return driver.UVertexData
	case BufIndirect:
		// The driver vocabulary has no indirect-specific flag;
		// indirect buffers are read by the queue like any other
		// shader-invisible transfer target.
		return driver.UGeneric
	default:
		return driver.UGeneric
	}
}

// Buffer is a GPU buffer with a fixed usage and size. copy_data writes
// into the host-visible allocation directly for BufUniform; for every
// other usage it writes into a staging companion, and the caller
// (devctx) records the staging→GPU copy in the next submission.
type Buffer struct {
	gpu     driver.GPU
	usage   BufUsage
	size    int64
	buf     driver.Buffer
	staging driver.Buffer
}

// NewBuffer creates a buffer of the given usage and size. Larger
// buffers cannot be grown in place: a new one must be created and the
// data copied explicitly, matching the source's fixed-capacity model.
func NewBuffer(gpu driver.GPU, usage BufUsage, size int64) (*Buffer, status.Status) {
	if gpu == nil {
		return nil, status.ErrAPI
	}
	if size <= 0 {
		return nil, status.ErrAPI
	}
	visible := usage == BufUniform
	buf, err := gpu.NewBuffer(size, visible, usage.driverUsage())
	if err != nil {
		return nil, status.ErrInternal
	}
	b := &Buffer{gpu: gpu, usage: usage, size: size, buf: buf}
	if usage != BufUniform {
		stg, err := gpu.NewBuffer(size, true, driver.UGeneric)
		if err != nil {
			buf.Destroy()
			return nil, status.ErrInternal
		}
		b.staging = stg
	}
	return b, status.Success
}

// CopyData copies src into the buffer's host-visible allocation: the
// buffer itself for BufUniform, its staging companion otherwise. It
// fails with ErrAPI if src does not fit.
func (b *Buffer) CopyData(src []byte) status.Status {
	dst := b.buf
	if b.staging != nil {
		dst = b.staging
	}
	bs := dst.Bytes()
	if bs == nil || len(src) > len(bs) {
		return status.ErrAPI
	}
	copy(bs, src)
	return status.Success
}

// NeedsUpload reports whether this buffer has a staging companion
// whose contents the device context must copy to the GPU-visible
// buffer before it is consumed.
func (b *Buffer) NeedsUpload() bool { return b.staging != nil }

// Driver returns the underlying driver.Buffer.
func (b *Buffer) Driver() driver.Buffer { return b.buf }

// Staging returns the staging companion, or nil for BufUniform.
func (b *Buffer) Staging() driver.Buffer { return b.staging }

// Usage returns the buffer's usage.
func (b *Buffer) Usage() BufUsage { return b.usage }

// Size returns the buffer's requested size in bytes.
func (b *Buffer) Size() int64 { return b.size }

// Destroy releases the buffer and its staging companion, if any.
func (b *Buffer) Destroy() {
	if b.buf != nil {
		b.buf.Destroy()
	}
	if b.staging != nil {
		b.staging.Destroy()
	}
}
