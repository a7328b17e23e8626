package memory

import "github.com/mesh-intelligence/tracker/pkg/types"

// idAllocator hands out per-kind, monotonically increasing ids starting at 1.
// Ids are never recycled after removal.
type idAllocator struct {
	counters map[types.Kind]int
}

func newIDAllocator() *idAllocator {
	return &idAllocator{counters: make(map[types.Kind]int, len(types.Kinds))}
}

// next increments and returns the counter for kind.
func (a *idAllocator) next(kind types.Kind) int {
	a.counters[kind]++
	return a.counters[kind]
}

// observe advances the counter for kind to at least id, so ids restored from
// storage are never handed out again.
func (a *idAllocator) observe(kind types.Kind, id int) {
	if id > a.counters[kind] {
		a.counters[kind] = id
	}
}
