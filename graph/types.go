// Package graph implements the render-graph core: pass registration,
// dependency analysis, active-pass trimming, barrier synthesis, and
// execution. It is the only package that touches builder's caches and
// resource's tracked-layout mutation together, since those two things
// only make sense in the context of one compiled frame graph.
package graph

import (
	"github.com/phoenixgfx/phoenix/builder"
	"github.com/phoenixgfx/phoenix/devctx"
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/internal/bitvec"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

// BindPoint is the queue a pass's work targets.
type BindPoint int

const (
	BindGraphics BindPoint = iota
	BindCompute
	BindTransfer
)

// IO is the direction of a resource usage.
type IO int

const (
	IOInput IO = iota
	IOOutput
)

// ResourceKind classifies a physical resource for the access/layout
// derivation tables.
type ResourceKind int

const (
	KindTexture ResourceKind = iota
	KindBuffer
	KindUniform
)

const (
	reservedBackbuffer = "backbuffer"
	reservedDepthbuffer = "depthbuffer"
)

// PhysicalResource is a unique GPU object participating in a frame,
// found-or-created by registerResource and referenced by every Usage
// that touches it via PhysicalIndex.
type PhysicalResource struct {
	ID      uint64
	Kind    ResourceKind
	Texture *resource.Texture
	Buffer  *resource.Buffer
	Uniform *resource.UniformCollection
}

// Usage is one (pass, resource, direction) record.
type Usage struct {
	PassIndex     int
	PhysicalIndex int
	IO            IO
	Kind          ResourceKind
	BufRole       resource.BufUsage
	Attach        builder.AttachmentType
	Reserved      string
	MipTarget     int
	LoadOp        driver.LoadOp
	StoreOp       driver.StoreOp
	Clear         driver.ClearValue
	Texture       *resource.Texture
	Buffer        *resource.Buffer
	Uniform       *resource.UniformCollection
}

func (u Usage) isDepthish() bool {
	switch u.Attach {
	case builder.AttachDepth, builder.AttachStencil, builder.AttachDepthStencil:
		return true
	}
	return false
}

// Barrier is a pure data description of a synchronization and
// (for textures) layout transition between two passes, or between a
// pass and the frame boundary.
type Barrier struct {
	ResourceIndex int
	SrcStage      driver.Sync
	DstStage      driver.Sync
	SrcAccess     driver.Access
	DstAccess     driver.Access
	OldLayout     driver.Layout
	NewLayout     driver.Layout
	IsTexture     bool
}

// DependencyInfo records that curr depends on prev through the given
// hazard bitset of shared physical resources.
type DependencyInfo struct {
	PrevPass int
	Hazard   *bitvec.V[uint64]
}

// ExecuteFunc is a pass's execute callback. It must not block and
// must not retain ctx or pl past its own invocation.
type ExecuteFunc func(ctx *devctx.Context, pl driver.Pipeline) status.Status

// Pass is one unit of GPU work: a bind point, declared inputs and
// outputs, a pipeline description, and an execute callback.
type Pass struct {
	g    *Graph
	Name string
	Bind BindPoint
	Index int

	inputs  *bitvec.V[uint64]
	outputs *bitvec.V[uint64]

	usageIdx []int
	Deps     []DependencyInfo

	InputBarriers  map[int]Barrier
	OutputBarriers map[int]Barrier

	GraphicsDesc *builder.GraphicsPipelineDesc
	ComputeDesc  *builder.ComputePipelineDesc
	Execute      ExecuteFunc
}

func newPass(g *Graph, name string, bp BindPoint, index int) *Pass {
	return &Pass{
		g: g, Name: name, Bind: bp, Index: index,
		inputs: &bitvec.V[uint64]{}, outputs: &bitvec.V[uint64]{},
		InputBarriers: map[int]Barrier{}, OutputBarriers: map[int]Barrier{},
	}
}

func ensureBitvecLen(v *bitvec.V[uint64], n int) {
	for v.Len() < n {
		v.Grow(1)
	}
}

func (p *Pass) ensureLen(n int) {
	ensureBitvecLen(p.inputs, n)
	ensureBitvecLen(p.outputs, n)
}

func (p *Pass) addUsage(u Usage) {
	u.PassIndex = p.Index
	p.ensureLen(u.PhysicalIndex + 1)
	switch u.IO {
	case IOInput:
		p.inputs.Set(u.PhysicalIndex)
	case IOOutput:
		p.outputs.Set(u.PhysicalIndex)
	}
	p.usageIdx = append(p.usageIdx, len(p.g.resourceUsages))
	p.g.resourceUsages = append(p.g.resourceUsages, u)
}

// usageFor returns the first usage this pass recorded for physIdx
// matching io, if any.
func (p *Pass) usageFor(physIdx int, io IO) (Usage, bool) {
	for _, ui := range p.usageIdx {
		u := p.g.resourceUsages[ui]
		if u.PhysicalIndex == physIdx && u.IO == io {
			return u, true
		}
	}
	return Usage{}, false
}

// usageForEither prefers an output usage (producer), falling back to
// input — used when resolving the source side of a hazard barrier,
// since a WAR hazard's producer-of-record is whichever usage the
// earlier pass actually recorded for the shared resource.
func (p *Pass) usageForEither(physIdx int, preferIO IO) (Usage, bool) {
	if u, ok := p.usageFor(physIdx, preferIO); ok {
		return u, true
	}
	other := IOInput
	if preferIO == IOInput {
		other = IOOutput
	}
	return p.usageFor(physIdx, other)
}

// textureUsages returns every Usage this pass recorded for a texture
// physical resource, regardless of direction.
func (p *Pass) textureUsages() []Usage {
	var out []Usage
	for _, ui := range p.usageIdx {
		u := p.g.resourceUsages[ui]
		if u.Kind == KindTexture {
			out = append(out, u)
		}
	}
	return out
}
