package resource

import (
	"github.com/phoenixgfx/phoenix/driver"
	"github.com/phoenixgfx/phoenix/status"
)

// Binding describes one binding within a uniform-collection group.
type Binding struct {
	Binding int
	Type    driver.DescType
	Stage   driver.Stage
}

// Group describes one descriptor-set-layout's worth of bindings. Each
// group allocates its own driver.DescHeap and contributes one
// descriptor set, in group order, to the collection's DescTable.
type Group struct {
	SetIndex int
	Bindings []Binding
}

// update is one queued, not-yet-flushed descriptor write.
type update struct {
	group   int
	binding int
	// Either buf/offset/size or view is set, depending on which
	// Queue* method appended it.
	kind   updateKind
	offset int64
	size   int64
	buf    driver.Buffer
	view   driver.ImageView
}

type updateKind int

const (
	updateBuffer updateKind = iota
	updateImage
)

// UniformCollection models a set of descriptor sets, one per group,
// each backed by its own descriptor-set layout and heap allocated
// from a device-wide pool. Writes are queued with QueueBufferUpdate/
// QueueImageUpdate and committed atomically by FlushUpdateQueue —
// never persist the raw write description past a flush, since its
// backing storage (here, the update slice itself) is only guaranteed
// to live until then.
type UniformCollection struct {
	gpu    driver.GPU
	groups []Group
	heaps  []driver.DescHeap
	table  driver.DescTable
	queue  []update
}

// NewUniformCollection allocates one descriptor-set-layout and one
// descriptor set per group, then a descriptor table spanning all of
// them in group order.
func NewUniformCollection(gpu driver.GPU, groups []Group) (*UniformCollection, status.Status) {
	if gpu == nil || len(groups) == 0 {
		return nil, status.ErrAPI
	}
	heaps := make([]driver.DescHeap, 0, len(groups))
	for _, g := range groups {
		descs := make([]driver.Descriptor, len(g.Bindings))
		for i, b := range g.Bindings {
			descs[i] = driver.Descriptor{Type: b.Type, Stages: b.Stage, Nr: b.Binding, Len: 1}
		}
		dh, err := gpu.NewDescHeap(descs)
		if err != nil {
			for _, h := range heaps {
				h.Destroy()
			}
			return nil, status.ErrInternal
		}
		if err := dh.New(1); err != nil {
			dh.Destroy()
			for _, h := range heaps {
				h.Destroy()
			}
			return nil, status.ErrInternal
		}
		heaps = append(heaps, dh)
	}
	table, err := gpu.NewDescTable(heaps)
	if err != nil {
		for _, h := range heaps {
			h.Destroy()
		}
		return nil, status.ErrInternal
	}
	cp := make([]Group, len(groups))
	copy(cp, groups)
	return &UniformCollection{gpu: gpu, groups: cp, heaps: heaps, table: table}, status.Success
}

// QueueBufferUpdate appends a write entry binding buf at the given
// set/binding/offset. It is not applied until FlushUpdateQueue.
func (u *UniformCollection) QueueBufferUpdate(set, binding int, offset int64, buf *Buffer) status.Status {
	gi := u.groupIndex(set)
	if gi < 0 || buf == nil {
		return status.ErrAPI
	}
	u.queue = append(u.queue, update{
		group: gi, binding: binding, kind: updateBuffer,
		offset: offset, size: buf.Size(), buf: buf.Driver(),
	})
	return status.Success
}

// QueueImageUpdate appends a write entry binding the texture's view
// at the given set/binding. It fails with ErrInternal when the
// texture's tracked layout does not permit shader sampling.
func (u *UniformCollection) QueueImageUpdate(set, binding, viewIndex int, tex *Texture) status.Status {
	gi := u.groupIndex(set)
	if gi < 0 || tex == nil {
		return status.ErrAPI
	}
	if !tex.IsSampleReady() {
		return status.ErrInternal
	}
	v := tex.View(viewIndex)
	if v == nil {
		return status.ErrAPI
	}
	u.queue = append(u.queue, update{group: gi, binding: binding, kind: updateImage, view: v})
	return status.Success
}

// FlushUpdateQueue commits every queued write atomically, then clears
// the queue. Flushing an empty queue is a no-op, not an error — the
// source treats it as a warning only.
func (u *UniformCollection) FlushUpdateQueue() status.Status {
	if len(u.queue) == 0 {
		return status.Success
	}
	for _, up := range u.queue {
		dh := u.heaps[up.group]
		switch up.kind {
		case updateBuffer:
			dh.SetBuffer(0, up.binding, 0, []driver.Buffer{up.buf}, []int64{up.offset}, []int64{up.size})
		case updateImage:
			dh.SetImage(0, up.binding, 0, []driver.ImageView{up.view})
		}
	}
	u.queue = u.queue[:0]
	return status.Success
}

func (u *UniformCollection) groupIndex(set int) int {
	for i, g := range u.groups {
		if g.SetIndex == set {
			return i
		}
	}
	return -1
}

// Table returns the backing driver.DescTable, for binding into a
// pipeline's descriptor-table slot.
func (u *UniformCollection) Table() driver.DescTable { return u.table }

// Groups returns the collection's group layout, used by
// GraphicsPipelineDesc/ComputePipelineDesc hashing.
func (u *UniformCollection) Groups() []Group { return u.groups }

// Destroy releases the descriptor table and every heap it references.
func (u *UniformCollection) Destroy() {
	if u.table != nil {
		u.table.Destroy()
	}
	for _, h := range u.heaps {
		h.Destroy()
	}
}
