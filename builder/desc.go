// Package builder translates hashable descriptions into backend
// objects (render passes, framebuffers, pipelines) and caches them
// against those descriptions via hashcache.Cache. The graph package
// calls Find* during Execute; nothing else constructs backend objects
// directly.
package builder

import (
	"fmt"

	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/hashcache"
	"github.com/phoenixgfx/phoenix/resource"
)

// writeIdentity mixes the pointer identity of v into h — used where
// §4.2 requires a handle or texture to participate in a description's
// hash by identity rather than by content. %p degrades gracefully
// (but deterministically) for a nil interface, which is fine here:
// the only property this needs is "same pointer in, same bits out".
func writeIdentity(h *hashcache.Hasher, v any) {
	h.WriteString(fmt.Sprintf("%p", v))
}

// AttachmentType classifies a render-pass attachment's role.
type AttachmentType int

const (
	AttachInvalid AttachmentType = iota
	AttachColor
	AttachDepth
	AttachStencil
	AttachDepthStencil
	AttachResolve
)

// AttachmentDesc describes one render-pass attachment. Texture is
// carried for framebuffer construction but intentionally excluded
// from RenderPassDesc's hash: two passes with identical attachment
// shapes over different textures are the same render pass (§4.2).
type AttachmentDesc struct {
	Type           AttachmentType
	Format         driver.PixelFmt
	Samples        int
	LoadOp         driver.LoadOp
	StoreOp        driver.StoreOp
	LoadOpStencil  driver.LoadOp
	StoreOpStencil driver.StoreOp
	InitialLayout  driver.Layout
	FinalLayout    driver.Layout
	MipTarget      int
	Texture        *resource.Texture
}

// SubpassDesc describes PHOENIX's single subpass. SrcStage/DstStage
// and SrcAccess/DstAccess are the union, over every attachment
// barrier in the pass, computed by the graph core when it assembles
// the description.
type SubpassDesc struct {
	Color     []int
	DS        int
	MSR       []int
	Wait      bool
	SrcStage  driver.Sync
	DstStage  driver.Sync
	SrcAccess driver.Access
	DstAccess driver.Access
}

// RenderPassDesc is the cache key for a driver.RenderPass. Only one
// subpass is supported (multi-subpass is out of scope).
type RenderPassDesc struct {
	Attachments []AttachmentDesc
	Subpass     SubpassDesc
}

// Hash computes the description's content hash. Texture pointers are
// excluded, per §4.2's render-pass equality rule.
func (d *RenderPassDesc) Hash() uint64 {
	h := hashcache.NewHasher()
	h.WriteInt(len(d.Attachments))
	for _, a := range d.Attachments {
		h.WriteInt(int(a.Type))
		h.WriteInt(int(a.Format))
		h.WriteInt(a.Samples)
		h.WriteInt(int(a.LoadOp))
		h.WriteInt(int(a.StoreOp))
		h.WriteInt(int(a.LoadOpStencil))
		h.WriteInt(int(a.StoreOpStencil))
		h.WriteInt(int(a.InitialLayout))
		h.WriteInt(int(a.FinalLayout))
	}
	h.WriteInt(len(d.Subpass.Color))
	for _, c := range d.Subpass.Color {
		h.WriteInt(c)
	}
	h.WriteInt(d.Subpass.DS)
	h.WriteInt(len(d.Subpass.MSR))
	for _, m := range d.Subpass.MSR {
		h.WriteInt(m)
	}
	h.WriteBool(d.Subpass.Wait)
	h.WriteUint64(uint64(d.Subpass.SrcStage))
	h.WriteUint64(uint64(d.Subpass.DstStage))
	h.WriteUint64(uint64(d.Subpass.SrcAccess))
	h.WriteUint64(uint64(d.Subpass.DstAccess))
	return h.Sum64()
}

// FramebufferDesc is the cache key for a driver.Framebuf. Unlike
// RenderPassDesc, texture pointers participate in its hash: a
// framebuffer is specific to the images bound into it.
type FramebufferDesc struct {
	Width, Height, Layers int
	Attachments           []AttachmentDesc
	RenderPassHandle      driver.RenderPass
	IsBackbuffer          bool
}

// Hash computes the description's content hash, including texture
// identity and the owning render pass's identity.
func (d *FramebufferDesc) Hash() uint64 {
	h := hashcache.NewHasher()
	h.WriteInt(d.Width)
	h.WriteInt(d.Height)
	h.WriteInt(d.Layers)
	h.WriteBool(d.IsBackbuffer)
	writeIdentity(h, d.RenderPassHandle)
	h.WriteInt(len(d.Attachments))
	for _, a := range d.Attachments {
		h.WriteInt(int(a.Type))
		h.WriteInt(int(a.Format))
		h.WriteInt(a.Samples)
		h.WriteInt(a.MipTarget)
		writeIdentity(h, a.Texture)
	}
	return h.Sum64()
}

// ShaderRef identifies a shader by content rather than by its
// backend handle, so two Shader objects compiled from identical
// bytecode hash identically.
type ShaderRef struct {
	Shader *resource.Shader
}

func (r ShaderRef) writeTo(h *hashcache.Hasher) {
	if r.Shader == nil {
		h.WriteInt(0)
		return
	}
	h.WriteInt(int(r.Shader.Stage()))
	h.WriteBytes(r.Shader.Bytecode())
}

// VertexAttr describes one vertex input attribute. Since the backend
// models each vertex input as its own (non-interleaved) buffer
// binding rather than an offset into one shared buffer, "stride" here
// is the attribute's own format size — see DESIGN.md for why the
// spec's "cumulative offset into one interleaved buffer" framing does
// not map onto this driver's VertexIn shape.
type VertexAttr struct {
	Format driver.VertexFmt
	Name   string
	Nr     int
}

// GraphicsPipelineDesc is the cache key for a graphics driver.Pipeline.
type GraphicsPipelineDesc struct {
	Topology    driver.Topology
	Raster      driver.RasterState
	Samples     int
	DS          driver.DSState
	Blend       driver.BlendState
	Attributes  []VertexAttr
	VertShader  ShaderRef
	FragShader  ShaderRef
	UniformGroups []resource.Group
	Pass        driver.RenderPass
	Subpass     int
}

// Hash computes the description's content hash. Every field
// participates, including the ordered attribute/shader arrays and the
// full uniform-collection layout (§4.2).
func (d *GraphicsPipelineDesc) Hash() uint64 {
	h := hashcache.NewHasher()
	h.WriteInt(int(d.Topology))
	writeRaster(h, d.Raster)
	h.WriteInt(d.Samples)
	writeDS(h, d.DS)
	writeBlend(h, d.Blend)
	h.WriteInt(len(d.Attributes))
	for _, a := range d.Attributes {
		h.WriteInt(int(a.Format))
		h.WriteString(a.Name)
		h.WriteInt(a.Nr)
	}
	d.VertShader.writeTo(h)
	d.FragShader.writeTo(h)
	writeGroups(h, d.UniformGroups)
	writeIdentity(h, d.Pass)
	h.WriteInt(d.Subpass)
	return h.Sum64()
}

// ComputePipelineDesc is the cache key for a compute driver.Pipeline.
type ComputePipelineDesc struct {
	Shader        ShaderRef
	UniformGroups []resource.Group
}

// Hash computes the description's content hash.
func (d *ComputePipelineDesc) Hash() uint64 {
	h := hashcache.NewHasher()
	d.Shader.writeTo(h)
	writeGroups(h, d.UniformGroups)
	return h.Sum64()
}

func writeRaster(h *hashcache.Hasher, r driver.RasterState) {
	h.WriteBool(r.Clockwise)
	h.WriteInt(int(r.Cull))
	h.WriteInt(int(r.Fill))
	h.WriteBool(r.DepthBias)
	h.WriteFloat32(r.BiasValue)
	h.WriteFloat32(r.BiasSlope)
	h.WriteFloat32(r.BiasClamp)
}

func writeStencilT(h *hashcache.Hasher, s driver.StencilT) {
	h.WriteInt(int(s.DSFail[0]))
	h.WriteInt(int(s.DSFail[1]))
	h.WriteInt(int(s.Pass))
	h.WriteUint32(s.ReadMask)
	h.WriteUint32(s.WriteMask)
	h.WriteInt(int(s.Cmp))
}

func writeDS(h *hashcache.Hasher, ds driver.DSState) {
	h.WriteBool(ds.DepthTest)
	h.WriteBool(ds.DepthWrite)
	h.WriteInt(int(ds.DepthCmp))
	h.WriteBool(ds.StencilTest)
	writeStencilT(h, ds.Front)
	writeStencilT(h, ds.Back)
}

func writeBlend(h *hashcache.Hasher, b driver.BlendState) {
	h.WriteBool(b.IndependentBlend)
	h.WriteInt(len(b.Color))
	for _, c := range b.Color {
		h.WriteBool(c.Blend)
		h.WriteInt(int(c.WriteMask))
		h.WriteInt(int(c.Op[0]))
		h.WriteInt(int(c.Op[1]))
		h.WriteInt(int(c.SrcFac[0]))
		h.WriteInt(int(c.SrcFac[1]))
		h.WriteInt(int(c.DstFac[0]))
		h.WriteInt(int(c.DstFac[1]))
	}
}

func writeGroups(h *hashcache.Hasher, groups []resource.Group) {
	h.WriteInt(len(groups))
	for _, g := range groups {
		h.WriteInt(g.SetIndex)
		h.WriteInt(len(g.Bindings))
		for _, b := range g.Bindings {
			h.WriteInt(b.Binding)
			h.WriteInt(int(b.Type))
			h.WriteInt(int(b.Stage))
		}
	}
}
