package gmk

// Memory is the allocator buffers cross the make boundary through. The
// native implementation wraps gmk_alloc and gmk_free; maketest counts
// allocations so tests can prove nothing leaked.
type Memory interface {
	// Alloc copies s into a NUL-terminated allocation and returns its
	// address.
	Alloc(s string) uintptr

	// Read decodes the NUL-terminated string at ptr.
	Read(ptr uintptr) string

	// Free returns ptr to the allocator.
	Free(ptr uintptr)
}

// Owner tags which side of the boundary must free a Buffer.
type Owner int

const (
	// OwnedByMake marks allocations make frees: anything the module
	// hands over, per the convention that the callee allocates and the
	// caller frees.
	OwnedByMake Owner = iota

	// OwnedByModule marks allocations this module must free exactly
	// once, such as the result buffers gmk_expand returns.
	OwnedByModule
)

// Buffer is one allocation crossing the make boundary, tagged with its
// owner. A Buffer is consumed exactly once, through Take or Handoff;
// both poison it, so a double free or use after handoff cannot be
// written without tripping a panic first.
type Buffer struct {
	ptr      uintptr
	mem      Memory
	owner    Owner
	consumed bool
}

// NewBuffer wraps an allocation received over the boundary. ptr 0 is the
// null buffer: make's way of saying "no value", as opposed to an empty
// string.
func NewBuffer(ptr uintptr, mem Memory, owner Owner) *Buffer {
	return &Buffer{ptr: ptr, mem: mem, owner: owner}
}

// AllocBuffer copies s into mem and returns the module-side wrapper,
// tagged for make to free once handed over.
func AllocBuffer(mem Memory, s string) *Buffer {
	return &Buffer{ptr: mem.Alloc(s), mem: mem, owner: OwnedByMake}
}

// IsNull reports whether b is the null "no value" buffer.
func (b *Buffer) IsNull() bool {
	return b.ptr == 0
}

// Take consumes the buffer: its contents are decoded, and if the module
// owns the allocation it is freed. The null buffer reads as "". Taking a
// consumed buffer panics; that is a use-after-free in the caller, not a
// runtime condition.
func (b *Buffer) Take() string {
	ptr := b.consume()
	if ptr == 0 {
		return ""
	}
	s := b.mem.Read(ptr)
	if b.owner == OwnedByModule {
		b.mem.Free(ptr)
	}
	return s
}

// Handoff consumes the buffer without freeing it and returns the raw
// address, ready to pass to make, which frees what it receives. The
// module keeps no reference past this point.
func (b *Buffer) Handoff() uintptr {
	return b.consume()
}

func (b *Buffer) consume() uintptr {
	if b.consumed {
		panic("gmk: buffer consumed twice")
	}
	b.consumed = true
	ptr := b.ptr
	b.ptr = 0
	return ptr
}
