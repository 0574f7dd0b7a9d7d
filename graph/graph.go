package graph

import (
	"fmt"

	"github.com/phoenixgfx/phoenix/builder"
	"github.com/phoenixgfx/phoenix/devctx"
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/hashcache"
	"github.com/phoenixgfx/phoenix/internal/bitvec"
	"github.com/phoenixgfx/phoenix/resource"
	"github.com/phoenixgfx/phoenix/status"
)

// Graph compiles and executes one frame's worth of passes. It is
// reset at every end_frame and reused across frames; the render-pass,
// framebuffer, and pipeline caches it owns persist across frames,
// which is the entire point of content-addressing them.
type Graph struct {
	gpu driver.GPU

	passes            []*Pass
	resourceUsages    []Usage
	physicalResources []PhysicalResource
	resourceIndex     map[uint64]int

	rpCache *builder.RenderPassCache
	fbCache *builder.FramebufferCache
	plCache *builder.PipelineCache

	framesInFlight int
	slot           int

	activeOrder []int
	finalIdx    int
}

// New creates an empty graph bound to gpu, with its own render-pass,
// framebuffer, and pipeline caches. framesInFlight selects the period
// of Slot()'s rotation.
func New(gpu driver.GPU, framesInFlight int) *Graph {
	if framesInFlight <= 0 {
		framesInFlight = 1
	}
	return &Graph{
		gpu:            gpu,
		resourceIndex:  map[uint64]int{},
		rpCache:        builder.NewRenderPassCache(gpu),
		fbCache:        builder.NewFramebufferCache(),
		plCache:        builder.NewPipelineCache(gpu),
		framesInFlight: framesInFlight,
		finalIdx:       -1,
	}
}

// Slot returns the in-flight index the frame type should use to pick
// its devctx.Context for the current frame.
func (g *Graph) Slot() int { return g.slot }

// RenderPassCache, FramebufferCache, and PipelineCache expose the
// graph's caches for diagnostics (cache-size invariants, S6).
func (g *Graph) RenderPassCache() *builder.RenderPassCache   { return g.rpCache }
func (g *Graph) FramebufferCache() *builder.FramebufferCache { return g.fbCache }
func (g *Graph) PipelineCache() *builder.PipelineCache       { return g.plCache }

// RegisterPass appends a new pass with index = current length.
func (g *Graph) RegisterPass(name string, bp BindPoint) *Pass {
	p := newPass(g, name, bp, len(g.passes))
	p.ensureLen(len(g.physicalResources))
	g.passes = append(g.passes, p)
	return p
}

func hashResourceID(kind ResourceKind, ptr any) uint64 {
	h := hashcache.NewHasher()
	h.WriteInt(int(kind))
	h.WriteString(fmt.Sprintf("%p", ptr))
	return h.Sum64()
}

// registerResource finds or creates the physical-resource entry for
// ptr, growing every existing pass's bitsets to cover the new index
// when it's a genuine miss.
func (g *Graph) registerResource(kind ResourceKind, ptr any, pr PhysicalResource) int {
	id := hashResourceID(kind, ptr)
	pr.ID = id
	pr.Kind = kind
	if idx, ok := g.resourceIndex[id]; ok {
		return idx
	}
	idx := len(g.physicalResources)
	g.physicalResources = append(g.physicalResources, pr)
	g.resourceIndex[id] = idx
	for _, p := range g.passes {
		p.ensureLen(idx + 1)
	}
	return idx
}

func (g *Graph) registerTexture(tex *resource.Texture) int {
	return g.registerResource(KindTexture, tex, PhysicalResource{Texture: tex})
}

func (g *Graph) registerBuffer(buf *resource.Buffer) int {
	return g.registerResource(KindBuffer, buf, PhysicalResource{Buffer: buf})
}

func (g *Graph) registerUniform(uc *resource.UniformCollection) int {
	return g.registerResource(KindUniform, uc, PhysicalResource{Uniform: uc})
}

// Bake compiles the currently registered passes: locates the
// backbuffer pass, builds the dependency tree, trims to the active
// set, and synthesizes every barrier. It must be called once per
// frame, after every pass has been registered and before Execute.
func (g *Graph) Bake() status.Status {
	finalIdx, s := g.findBackbufferPass()
	if !s.OK() {
		return s
	}
	g.finalIdx = finalIdx

	visited := map[int]bool{}
	var order []int
	g.buildDependencies(finalIdx, &order, visited)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	g.activeOrder = order

	return g.synthesizeBarriers()
}

// findBackbufferPass scans resource_usages for the unique output
// whose reserved name is backbuffer.
func (g *Graph) findBackbufferPass() (int, status.Status) {
	found := -1
	for _, u := range g.resourceUsages {
		if u.IO == IOOutput && u.Reserved == reservedBackbuffer {
			found = u.PassIndex
			break
		}
	}
	if found < 0 {
		return 0, status.ErrInternal
	}
	return found, status.Success
}

// buildDependencies implements §4.5.3/§4.5.4 in one DFS: every pass
// visited is appended to order (active), and for every earlier pass
// with a non-empty RAW/WAR/WAW hazard a DependencyInfo is recorded
// and the search recurses into it.
func (g *Graph) buildDependencies(idx int, order *[]int, visited map[int]bool) {
	if visited[idx] {
		return
	}
	visited[idx] = true
	*order = append(*order, idx)

	curr := g.passes[idx]
	if curr.inputs.IsZero() {
		return
	}
	for prevIdx := idx - 1; prevIdx >= 0; prevIdx-- {
		prev := g.passes[prevIdx]

		raw := prev.outputs.Clone()
		raw.And(curr.inputs)
		war := prev.inputs.Clone()
		war.And(curr.outputs)
		waw := prev.outputs.Clone()
		waw.And(curr.outputs)

		hazard := raw.Clone()
		hazard.Or(war)
		hazard.Or(waw)
		if hazard.IsZero() {
			continue
		}
		curr.Deps = append(curr.Deps, DependencyInfo{PrevPass: prevIdx, Hazard: hazard})
		g.buildDependencies(prevIdx, order, visited)
	}
}

// synthesizeBarriers implements §4.5.5's three rules, in execution
// order (leaves first, final pass last) over the active set.
func (g *Graph) synthesizeBarriers() status.Status {
	if len(g.activeOrder) == 0 {
		return status.ErrInternal
	}
	firstIdx := g.activeOrder[0]
	for _, idx := range g.activeOrder[1:] {
		if idx < firstIdx {
			firstIdx = idx
		}
	}

	for _, idx := range g.activeOrder {
		dst := g.passes[idx]

		if idx == firstIdx {
			for _, u := range dst.textureUsages() {
				required := layoutFor(u, dst.Bind)
				if u.Texture.CurrentLayout == required {
					continue
				}
				dstAccess := accessFor(u, dst.Bind)
				b := Barrier{
					ResourceIndex: u.PhysicalIndex,
					SrcStage:      driver.STopOfPipe,
					DstStage:      stageFor(dst.Bind, dstAccess, true),
					SrcAccess:     driver.AAnyWrite,
					DstAccess:     dstAccess,
					OldLayout:     u.Texture.CurrentLayout,
					NewLayout:     required,
					IsTexture:     true,
				}
				dst.InputBarriers[u.PhysicalIndex] = b
			}
		}

		if idx == g.finalIdx {
			for _, u := range dst.textureUsages() {
				switch u.Reserved {
				case reservedBackbuffer:
					dst.OutputBarriers[u.PhysicalIndex] = Barrier{
						ResourceIndex: u.PhysicalIndex,
						SrcStage:      driver.SColorOutput,
						DstStage:      driver.SColorOutput,
						SrcAccess:     driver.AColorWrite,
						DstAccess:     driver.AColorWrite,
						OldLayout:     driver.LColorTarget,
						NewLayout:     driver.LPresent,
						IsTexture:     true,
					}
				case reservedDepthbuffer:
					l := layoutFor(u, dst.Bind)
					dst.OutputBarriers[u.PhysicalIndex] = Barrier{
						ResourceIndex: u.PhysicalIndex,
						SrcStage:      driver.SDSOutput,
						DstStage:      driver.SDSOutput,
						SrcAccess:     driver.ADSWrite,
						DstAccess:     driver.ADSRead | driver.ADSWrite,
						OldLayout:     l,
						NewLayout:     l,
						IsTexture:     true,
					}
				}
			}
		}

		for _, dep := range dst.Deps {
			prev := g.passes[dep.PrevPass]
			for physIdx, set := range allSet(dep.Hazard) {
				if !set {
					continue
				}
				srcUsage, ok := prev.usageForEither(physIdx, IOOutput)
				if !ok {
					continue
				}
				dstUsage, ok := dst.usageForEither(physIdx, IOInput)
				if !ok {
					continue
				}
				srcAccess := accessFor(srcUsage, prev.Bind)
				dstAccess := accessFor(dstUsage, dst.Bind)
				b := Barrier{
					ResourceIndex: physIdx,
					SrcStage:      stageFor(prev.Bind, srcAccess, false),
					DstStage:      stageFor(dst.Bind, dstAccess, true),
					SrcAccess:     srcAccess,
					DstAccess:     dstAccess,
					OldLayout:     layoutFor(srcUsage, prev.Bind),
					NewLayout:     layoutFor(dstUsage, dst.Bind),
					IsTexture:     srcUsage.Kind == KindTexture,
				}
				prev.OutputBarriers[physIdx] = b
				dst.InputBarriers[physIdx] = b
			}
		}
	}
	return status.Success
}

// allSet iterates a bitvec's set bits as a map-like sequence; small
// helper so synthesizeBarriers can range over only the hazard bits.
func allSet(v *bitvec.V[uint64]) map[int]bool {
	out := map[int]bool{}
	for i, set := range v.All() {
		if set {
			out[i] = true
		}
	}
	return out
}

// EndFrame closes the current frame's device context recording and
// clears the graph's virtual per-frame state, per §4.5.7. It does not
// submit: frame.Manager calls ctx.Submit() itself, after recording any
// swap-chain Present against the now-closed command buffer, so
// presentation and commit stay correctly ordered.
func (g *Graph) EndFrame(ctx *devctx.Context) status.Status {
	if s := ctx.EndFrame(); !s.OK() {
		return s
	}
	g.resourceUsages = g.resourceUsages[:0]
	g.physicalResources = g.physicalResources[:0]
	g.resourceIndex = map[uint64]int{}
	g.passes = g.passes[:0]
	g.activeOrder = nil
	g.finalIdx = -1
	g.slot = (g.slot + 1) % g.framesInFlight
	return status.Success
}
