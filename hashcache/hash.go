package hashcache

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// Hasher accumulates the fields of a description into an FNV-1a
// digest. Callers write only the fields that matter for a given
// description's equality rule (e.g. a render-pass description
// ignores attachment texture pointers; a framebuffer description does
// not), which is how two descriptions with the same shape can still
// implement different pointer-(in)sensitivity rules.
type Hasher struct {
	h hash.Hash64
}

// NewHasher returns a fresh Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: fnv.New64a()}
}

// WriteUint32 mixes a uint32 field into the digest.
func (h *Hasher) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	h.h.Write(b[:])
}

// WriteInt mixes an int field into the digest.
func (h *Hasher) WriteInt(v int) { h.WriteUint64(uint64(v)) }

// WriteUint64 mixes a uint64 field into the digest.
func (h *Hasher) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	h.h.Write(b[:])
}

// WriteFloat32 mixes a float32 field into the digest via its bit
// pattern.
func (h *Hasher) WriteFloat32(v float32) {
	h.WriteUint32(math.Float32bits(v))
}

// WriteString mixes a string field into the digest.
func (h *Hasher) WriteString(s string) { h.h.Write([]byte(s)) }

// WriteBool mixes a bool field into the digest.
func (h *Hasher) WriteBool(b bool) {
	if b {
		h.h.Write([]byte{1})
	} else {
		h.h.Write([]byte{0})
	}
}

// WriteBytes mixes a raw content-addressed field (e.g. compiled
// shader bytecode) into the digest directly, rather than by the
// pointer that happens to hold it.
func (h *Hasher) WriteBytes(b []byte) { h.h.Write(b) }

// Sum64 returns the accumulated digest.
func (h *Hasher) Sum64() uint64 { return h.h.Sum64() }
