// Package cache holds the gateway's snapshots of upstream list views
// (patients, medicines, bills). Snapshots are invalidated after a successful
// mutation rather than patched in place; the next read refetches, keeping the
// dashboard consistent with the records service at the cost of a redundant
// fetch.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LoaderFunc fetches a fresh snapshot of one resource from upstream.
type LoaderFunc func(ctx context.Context) (interface{}, error)

type entry struct {
	loader   LoaderFunc
	value    interface{}
	valid    bool
	gen      uint64
	loadedAt time.Time
}

// Registry is a resource-keyed snapshot store.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register installs the loader for a resource key. Re-registering replaces
// the loader and discards any held snapshot.
func (r *Registry) Register(key string, loader LoaderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &entry{loader: loader}
}

// Get returns the held snapshot for key, calling the loader first if the
// snapshot was never loaded or has been invalidated. A failed load leaves the
// entry stale so the next read retries.
func (r *Registry) Get(ctx context.Context, key string) (interface{}, error) {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no loader registered for resource %q", key)
	}

	r.mu.Lock()
	if e.valid {
		v := e.value
		r.mu.Unlock()
		return v, nil
	}
	gen := e.gen
	r.mu.Unlock()

	// Load outside the registry lock; a slow upstream must not block reads
	// of other resources.
	v, err := e.loader(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// Only keep the result if no invalidation raced the load; otherwise the
	// next read fetches again.
	if e.gen == gen {
		e.value = v
		e.valid = true
		e.loadedAt = time.Now()
	}
	r.mu.Unlock()
	return v, nil
}

// Invalidate marks the snapshot for key stale. The refetch happens on the
// next Get, not here.
func (r *Registry) Invalidate(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		e.valid = false
		e.gen++
	}
}

// InvalidateAll marks every registered snapshot stale.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.valid = false
		e.gen++
	}
}

// LoadedAt reports when the snapshot for key was last loaded, or a zero time
// if it never was.
func (r *Registry) LoadedAt(key string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		return e.loadedAt
	}
	return time.Time{}
}
