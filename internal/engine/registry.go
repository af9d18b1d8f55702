package engine

import "sync/atomic"

// registry counts documents across the process for memory reporting.
var registry documentRegistry

type documentRegistry struct {
	live    atomic.Int64
	created atomic.Uint64
}

func (r *documentRegistry) add() {
	r.live.Add(1)
	r.created.Add(1)
}

func (r *documentRegistry) remove() {
	r.live.Add(-1)
}

// ActiveDocuments returns the number of documents created and not yet
// destroyed.
func ActiveDocuments() int64 {
	return registry.live.Load()
}

// DocumentsCreated returns the number of documents created since start.
func DocumentsCreated() uint64 {
	return registry.created.Load()
}
