// Package soft implements a pure-Go, backend-agnostic reference
// driver.Driver. It runs no real GPU: buffers are host-resident byte
// slices, images and pipelines are bookkeeping structs, and
// GPU.Commit resolves immediately. It exists to make the render-graph
// core and its callers exercisable and testable without a real
// Vulkan (or any other) device, the same role a no-op HAL plays for
// drivers that need one to develop and test against.
package soft

import (
	"errors"
	"sync"

	"github.com/phoenixgfx/phoenix/driver"
)

func init() {
	driver.Register(&Driver{})
}

// Driver implements driver.Driver. It never fails to open: the
// reference backend has no external library or device to locate.
type Driver struct {
	mu   sync.Mutex
	gpu  *GPU
	open bool
}

// Open initializes the driver, returning the same *GPU on every call
// until Close.
func (d *Driver) Open() (driver.GPU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		d.gpu = &GPU{drv: d, limits: defaultLimits()}
		d.open = true
	}
	return d.gpu, nil
}

// Name returns "soft".
func (d *Driver) Name() string { return "soft" }

// Close deinitializes the driver.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gpu = nil
	d.open = false
}

func defaultLimits() driver.Limits {
	return driver.Limits{
		MaxImage1D:        16384,
		MaxImage2D:        16384,
		MaxImageCube:      16384,
		MaxImage3D:        2048,
		MaxLayers:         2048,
		MaxDescHeaps:      8,
		MaxDBuffer:        64,
		MaxDImage:         64,
		MaxDConstant:      16,
		MaxDTexture:       256,
		MaxDSampler:       32,
		MaxDBufferRange:   1 << 28,
		MaxDConstantRange: 1 << 16,
		MaxColorTargets:   8,
		MaxFBSize:         [2]int{16384, 16384},
		MaxFBLayers:       2048,
		MaxPointSize:      256,
		MaxViewports:      16,
		MaxVertexIn:       32,
		MaxFragmentIn:     32,
		MaxDispatch:       [3]int{65535, 65535, 65535},
	}
}

// GPU implements driver.GPU.
type GPU struct {
	drv    *Driver
	limits driver.Limits
	arena  arena
}

// Driver returns the owning Driver.
func (g *GPU) Driver() driver.Driver { return g.drv }

// Commit resolves every command buffer synchronously and reports
// success on ch, if non-nil. There is no real queue to serialize
// against, so command buffers become reusable for recording as soon
// as Commit returns.
func (g *GPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	for _, c := range cb {
		if sc, ok := c.(*CmdBuffer); ok {
			sc.committed = true
		}
	}
	if ch != nil {
		ch <- nil
	}
}

// NewCmdBuffer creates a new command buffer.
func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	return &CmdBuffer{gpu: g}, nil
}

// NewRenderPass creates a new render pass.
func (g *GPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	if len(sub) == 0 {
		return nil, errors.New("soft: render pass needs at least one subpass")
	}
	cp := make([]driver.Attachment, len(att))
	copy(cp, att)
	cs := make([]driver.Subpass, len(sub))
	copy(cs, sub)
	return &RenderPass{att: cp, sub: cs}, nil
}

// NewShaderCode wraps a shader binary. Empty bytecode is rejected —
// the caller classifies this as ErrApi.
func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	if len(data) == 0 {
		return nil, errors.New("soft: shader code is empty")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return &ShaderCode{data: cp}, nil
}

// NewDescHeap creates a new descriptor heap.
func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	cp := make([]driver.Descriptor, len(ds))
	copy(cp, ds)
	return &DescHeap{descs: cp}, nil
}

// NewDescTable creates a new descriptor table referencing dh.
func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	cp := make([]driver.DescHeap, len(dh))
	copy(cp, dh)
	return &DescTable{heaps: cp}, nil
}

// NewPipeline creates a new graphics or compute pipeline.
func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch t := state.(type) {
	case *driver.GraphState:
		if t.VertFunc.Code == nil {
			return nil, errors.New("soft: graphics pipeline needs a vertex shader")
		}
		return &Pipeline{graph: t}, nil
	case *driver.CompState:
		if t.Func.Code == nil {
			return nil, errors.New("soft: compute pipeline needs a shader")
		}
		return &Pipeline{comp: t}, nil
	default:
		return nil, errors.New("soft: unknown pipeline state type")
	}
}

// NewBuffer creates a new host-resident buffer. Non-visible buffers
// still back a byte slice (there is no device memory to separate it
// from), but Bytes reports nil to preserve the visibility contract.
// The buffer's page range is reserved from the GPU's arena and given
// back on Destroy.
func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	if size <= 0 {
		return nil, errors.New("soft: buffer size must be positive")
	}
	idx, n := g.arena.reserve(size)
	return &Buffer{
		data:      make([]byte, size),
		visible:   visible,
		usage:     usg,
		gpu:       g,
		pageIndex: idx,
		pageCount: n,
	}, nil
}

// NewImage creates a new image.
func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return nil, errors.New("soft: image size must be positive")
	}
	if layers <= 0 {
		layers = 1
	}
	if levels <= 0 {
		levels = 1
	}
	if samples <= 0 {
		samples = 1
	}
	return &Image{
		format:  pf,
		size:    size,
		layers:  layers,
		levels:  levels,
		samples: samples,
		usage:   usg,
	}, nil
}

// NewSampler creates a new sampler.
func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	if spln == nil {
		return nil, errors.New("soft: sampling state must not be nil")
	}
	s := *spln
	return &Sampler{sampling: s}, nil
}

// Limits returns the implementation limits.
func (g *GPU) Limits() driver.Limits { return g.limits }
