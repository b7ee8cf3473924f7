// Package diag collects pool and pipeline diagnostics, mirroring
// ohPipeline's IInfoAggregator: every allocator registers a stats
// source at construction time, and a single registry answers queries
// for all of them.
package diag

import "sync"

// Stats mirrors AllocatorBase::GetStats: the shape every registered
// pool reports.
type Stats struct {
	CellsTotal   int
	CellBytes    int
	CellsUsed    int
	CellsUsedMax int
}

// Source is queried on demand; pools implement this directly instead
// of pushing updates, so a snapshot always reflects live state.
type Source func() Stats

// Registry is the process-wide diagnostics aggregator. The zero value
// is not usable; construct with NewRegistry.
type Registry struct {
	mu      sync.Mutex
	sources map[string]Source
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds (or replaces) a named stats source. Pools call this
// once, at construction.
func (r *Registry) Register(name string, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = src
}

// Unregister removes a named source, e.g. when a pipeline is torn down.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, name)
}

// Snapshot queries every registered source and returns a name-keyed
// copy of their current stats.
func (r *Registry) Snapshot() map[string]Stats {
	r.mu.Lock()
	names := make([]string, 0, len(r.sources))
	srcs := make([]Source, 0, len(r.sources))
	for name, src := range r.sources {
		names = append(names, name)
		srcs = append(srcs, src)
	}
	r.mu.Unlock()

	out := make(map[string]Stats, len(names))
	for i, name := range names {
		out[name] = srcs[i]()
	}
	return out
}

// Default is the process-wide registry used when components aren't
// explicitly wired to a private one (tests construct their own via
// NewRegistry to stay isolated).
var Default = NewRegistry()
