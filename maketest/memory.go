package maketest

import "fmt"

// Memory is an in-memory double of make's allocator for gmk.Buffer
// tests. Every allocation stays tracked until freed, so a test can end
// with an Outstanding check, and freeing or reading a dead pointer
// panics, which is how a double free surfaces under test instead of
// corrupting a build.
type Memory struct {
	blocks map[uintptr]string
	next   uintptr
	allocs int
}

// NewMemory returns an allocator with no live blocks.
func NewMemory() *Memory {
	return &Memory{blocks: make(map[uintptr]string), next: 1}
}

func (m *Memory) Alloc(s string) uintptr {
	ptr := m.next
	m.next++
	m.blocks[ptr] = s
	m.allocs++
	return ptr
}

func (m *Memory) Read(ptr uintptr) string {
	s, ok := m.blocks[ptr]
	if !ok {
		panic(fmt.Sprintf("maketest: read of dead pointer %#x", ptr))
	}
	return s
}

func (m *Memory) Free(ptr uintptr) {
	if _, ok := m.blocks[ptr]; !ok {
		panic(fmt.Sprintf("maketest: double free of pointer %#x", ptr))
	}
	delete(m.blocks, ptr)
}

// Outstanding returns the number of live allocations.
func (m *Memory) Outstanding() int {
	return len(m.blocks)
}

// Allocs returns how many allocations were ever made.
func (m *Memory) Allocs() int {
	return m.allocs
}
