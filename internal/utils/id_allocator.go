package utils

import "sync"

// IDAllocator hands out event identifiers. It is seeded from the maximum id
// observed while loading the stored collections and is the only source of new
// ids; ids are monotonic and never reused, even across deletions.
type IDAllocator struct {
	mu  sync.Mutex
	max int
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Observe raises the high-water mark to cover an already-assigned id.
func (a *IDAllocator) Observe(id int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id > a.max {
		a.max = id
	}
}

// Next returns the next unused id.
func (a *IDAllocator) Next() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.max++
	return a.max
}
