package soft

import (
	"errors"

	"github.com/phoenixgfx/phoenix/driver"
)

// Buffer is a host-resident driver.Buffer. Its backing storage is an
// ordinary byte slice, but its page range is reserved from the owning
// GPU's arena so Destroy can give the range back to the free list the
// same way a real device allocator would.
type Buffer struct {
	data    []byte
	visible bool
	usage   driver.Usage

	gpu       *GPU
	pageIndex int
	pageCount int
}

func (b *Buffer) Destroy() {
	if b.gpu != nil {
		b.gpu.arena.release(b.pageIndex, b.pageCount)
		b.gpu = nil
	}
}
func (b *Buffer) Visible() bool { return b.visible }
func (b *Buffer) Bytes() []byte {
	if !b.visible {
		return nil
	}
	return b.data
}
func (b *Buffer) Cap() int64 { return int64(len(b.data)) }

// Image is a bookkeeping-only driver.Image: no pixel storage is kept,
// since the render-graph core never reads image contents back, only
// tracks layouts and dispatches barriers/copies against it.
type Image struct {
	format  driver.PixelFmt
	size    driver.Dim3D
	layers  int
	levels  int
	samples int
	usage   driver.Usage
}

func (i *Image) Destroy() {}

func (i *Image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	if layer < 0 || layer+layers > i.layers {
		return nil, errors.New("soft: image view layer range out of bounds")
	}
	if level < 0 || level+levels > i.levels {
		return nil, errors.New("soft: image view level range out of bounds")
	}
	return &ImageView{img: i, typ: typ, layer: layer, layers: layers, level: level, levels: levels}, nil
}

// ImageView is a typed view of an Image.
type ImageView struct {
	img    *Image
	typ    driver.ViewType
	layer  int
	layers int
	level  int
	levels int
}

func (v *ImageView) Destroy() {}

// Image returns the viewed image, used by resource.Texture to read
// back format/extent for cache-description assembly.
func (v *ImageView) Image() *Image { return v.img }

// Sampler is a bookkeeping-only driver.Sampler.
type Sampler struct {
	sampling driver.Sampling
}

func (s *Sampler) Destroy() {}

// ShaderCode wraps a compiled shader binary.
type ShaderCode struct {
	data []byte
}

func (s *ShaderCode) Destroy() {}

// Bytes returns the wrapped bytecode, used by hashcache for
// content-based pipeline description hashing.
func (s *ShaderCode) Bytes() []byte { return s.data }

// DescHeap is a bookkeeping-only driver.DescHeap: descriptor writes
// are recorded but never dereferenced, since there is no real shader
// stage reading from them.
type DescHeap struct {
	descs []driver.Descriptor
	n     int

	buffers  map[int][]driver.Buffer
	images   map[int][]driver.ImageView
	samplers map[int][]driver.Sampler
}

func (h *DescHeap) Destroy() {}

func (h *DescHeap) New(n int) error {
	if n < 0 {
		return errors.New("soft: desc heap copy count must be non-negative")
	}
	if n == h.n {
		return nil
	}
	h.n = n
	h.buffers = make(map[int][]driver.Buffer)
	h.images = make(map[int][]driver.ImageView)
	h.samplers = make(map[int][]driver.Sampler)
	return nil
}

func (h *DescHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {
	h.buffers[cpy] = append(append([]driver.Buffer(nil), h.buffers[cpy]...), buf...)
}

func (h *DescHeap) SetImage(cpy, nr, start int, iv []driver.ImageView) {
	h.images[cpy] = append(append([]driver.ImageView(nil), h.images[cpy]...), iv...)
}

func (h *DescHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler) {
	h.samplers[cpy] = append(append([]driver.Sampler(nil), h.samplers[cpy]...), splr...)
}

func (h *DescHeap) Count() int { return h.n }

// DescTable binds a set of descriptor heaps to a pipeline layout.
type DescTable struct {
	heaps []driver.DescHeap
}

func (t *DescTable) Destroy() {}

// RenderPass is a bookkeeping-only driver.RenderPass.
type RenderPass struct {
	att []driver.Attachment
	sub []driver.Subpass
}

func (p *RenderPass) Destroy() {}

func (p *RenderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	if len(iv) != len(p.att) {
		return nil, errors.New("soft: framebuffer attachment count mismatch")
	}
	cp := make([]driver.ImageView, len(iv))
	copy(cp, iv)
	return &Framebuf{views: cp, width: width, height: height, layers: layers}, nil
}

// Framebuf is a bookkeeping-only driver.Framebuf.
type Framebuf struct {
	views  []driver.ImageView
	width  int
	height int
	layers int
}

func (f *Framebuf) Destroy() {}

// Pipeline is a bookkeeping-only driver.Pipeline, holding whichever
// of the two state variants it was created from.
type Pipeline struct {
	graph *driver.GraphState
	comp  *driver.CompState
}

func (p *Pipeline) Destroy() {}

// IsCompute reports whether the pipeline was built from a CompState.
func (p *Pipeline) IsCompute() bool { return p.comp != nil }
