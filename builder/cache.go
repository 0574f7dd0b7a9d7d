package builder

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/hashcache"
	"github.com/phoenixgfx/phoenix/status"
)

// asStatus recovers the original Status from a create closure's
// error: Build* functions fail with a Status value (which implements
// error), so the classification survives the round trip through
// hashcache.Cache's plain error-returning create signature.
func asStatus(err error) status.Status {
	if s, ok := err.(status.Status); ok {
		return s
	}
	return status.FromError(err)
}

// RenderPassCache caches backend render passes by RenderPassDesc.
type RenderPassCache struct {
	gpu   driver.GPU
	cache *hashcache.Cache[driver.RenderPass]
}

// NewRenderPassCache creates an empty cache bound to gpu.
func NewRenderPassCache(gpu driver.GPU) *RenderPassCache {
	return &RenderPassCache{gpu: gpu, cache: hashcache.New[driver.RenderPass]()}
}

// FindOrCreate returns the cached render pass for desc, building and
// inserting one on a miss.
func (c *RenderPassCache) FindOrCreate(desc *RenderPassDesc) (driver.RenderPass, status.Status) {
	key := desc.Hash()
	pass, err := c.cache.FindOrCreate(key, nil, func() (driver.RenderPass, error) {
		p, s := BuildRenderPass(c.gpu, desc)
		if !s.OK() {
			return nil, s
		}
		return p, nil
	})
	if err != nil {
		return nil, asStatus(err)
	}
	return pass, status.Success
}

func (c *RenderPassCache) Len() int { return c.cache.Len() }

// FramebufferCache caches backend framebuffers by FramebufferDesc.
// Entries created with IsBackbuffer=true are invalidated together on
// swap-chain resize.
type FramebufferCache struct {
	cache *hashcache.Cache[driver.Framebuf]
}

// NewFramebufferCache creates an empty cache.
func NewFramebufferCache() *FramebufferCache {
	return &FramebufferCache{cache: hashcache.New[driver.Framebuf]()}
}

// FindOrCreate returns the cached framebuffer for desc, building one
// against pass (the already cached/created render pass) on a miss.
func (c *FramebufferCache) FindOrCreate(pass driver.RenderPass, desc *FramebufferDesc) (driver.Framebuf, status.Status) {
	key := desc.Hash()
	fb, err := c.cache.FindOrCreate(key, desc.IsBackbuffer, func() (driver.Framebuf, error) {
		f, s := BuildFramebuffer(pass, desc)
		if !s.OK() {
			return nil, s
		}
		return f, nil
	})
	if err != nil {
		return nil, asStatus(err)
	}
	return fb, status.Success
}

// InvalidateBackbuffers drops every framebuffer created with
// IsBackbuffer=true, per §3's "invalidated on swap-chain resize" rule.
func (c *FramebufferCache) InvalidateBackbuffers() {
	c.cache.InvalidateWhere(func(meta any) bool {
		b, ok := meta.(bool)
		return ok && b
	})
}

func (c *FramebufferCache) Len() int { return c.cache.Len() }

// PipelineCache caches backend pipelines by either pipeline
// description type. Both share one map since their hashes are drawn
// from the same FNV-1a space and a graphics desc can never collide
// meaningfully with a compute desc's field layout.
type PipelineCache struct {
	gpu   driver.GPU
	cache *hashcache.Cache[driver.Pipeline]
}

// NewPipelineCache creates an empty cache bound to gpu.
func NewPipelineCache(gpu driver.GPU) *PipelineCache {
	return &PipelineCache{gpu: gpu, cache: hashcache.New[driver.Pipeline]()}
}

// FindOrCreateGraphics returns the cached graphics pipeline for desc.
func (c *PipelineCache) FindOrCreateGraphics(desc *GraphicsPipelineDesc) (driver.Pipeline, status.Status) {
	key := desc.Hash()
	pl, err := c.cache.FindOrCreate(key, nil, func() (driver.Pipeline, error) {
		p, s := BuildGraphicsPipeline(c.gpu, desc)
		if !s.OK() {
			return nil, s
		}
		return p, nil
	})
	if err != nil {
		return nil, asStatus(err)
	}
	return pl, status.Success
}

// FindOrCreateCompute returns the cached compute pipeline for desc.
func (c *PipelineCache) FindOrCreateCompute(desc *ComputePipelineDesc) (driver.Pipeline, status.Status) {
	key := desc.Hash()
	pl, err := c.cache.FindOrCreate(key, nil, func() (driver.Pipeline, error) {
		p, s := BuildComputePipeline(c.gpu, desc)
		if !s.OK() {
			return nil, s
		}
		return p, nil
	})
	if err != nil {
		return nil, asStatus(err)
	}
	return pl, status.Success
}

func (c *PipelineCache) Len() int { return c.cache.Len() }
