package hashcache

import "testing"

func TestFindOrCreateIdempotent(t *testing.T) {
	c := New[int]()
	calls := 0
	create := func() (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.FindOrCreate(1, nil, create)
		if err != nil {
			t.Fatalf("FindOrCreate: unexpected error %v", err)
		}
		if v != 42 {
			t.Fatalf("FindOrCreate:\nhave %v\nwant %v", v, 42)
		}
	}
	if calls != 1 {
		t.Fatalf("FindOrCreate: create called %d times, want 1", calls)
	}
	if c.Len() != 1 {
		t.Fatalf("Len:\nhave %d\nwant 1", c.Len())
	}
}

func TestInvalidateWhere(t *testing.T) {
	c := New[int]()
	c.FindOrCreate(1, true, func() (int, error) { return 1, nil })
	c.FindOrCreate(2, false, func() (int, error) { return 2, nil })
	c.InvalidateWhere(func(meta any) bool {
		b, ok := meta.(bool)
		return ok && b
	})
	if _, ok := c.Find(1); ok {
		t.Fatal("InvalidateWhere: entry 1 was not removed")
	}
	if _, ok := c.Find(2); !ok {
		t.Fatal("InvalidateWhere: entry 2 was incorrectly removed")
	}
}

func TestHasherStableOnEqualFields(t *testing.T) {
	h1 := NewHasher()
	h1.WriteUint32(7)
	h1.WriteString("color")
	h1.WriteBool(true)

	h2 := NewHasher()
	h2.WriteUint32(7)
	h2.WriteString("color")
	h2.WriteBool(true)

	if h1.Sum64() != h2.Sum64() {
		t.Fatalf("Sum64: equal field sequences hashed differently: %d != %d", h1.Sum64(), h2.Sum64())
	}

	h3 := NewHasher()
	h3.WriteUint32(8)
	h3.WriteString("color")
	h3.WriteBool(true)

	if h1.Sum64() == h3.Sum64() {
		t.Fatal("Sum64: differing field sequences hashed the same")
	}
}
