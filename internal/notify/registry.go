package notify

import (
	"sort"
	"sync"
	"time"
)

type registryEntry struct {
	n     *Notification
	timer *time.Timer // nil for persistent entries
}

// activeRegistry tracks currently-displayed notifications. Entries
// leave by explicit removal, by their auto-expiry timer, or by the
// staleness sweep.
type activeRegistry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

func newActiveRegistry() *activeRegistry {
	return &activeRegistry{entries: make(map[string]*registryEntry)}
}

// add inserts a notification and, when expireAfter is positive,
// schedules its automatic removal.
func (r *activeRegistry) add(n *Notification, expireAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := &registryEntry{n: n}
	if expireAfter > 0 {
		e.timer = time.AfterFunc(expireAfter, func() {
			r.remove(n.ID)
		})
	}
	r.entries[n.ID] = e
}

// remove deletes an entry and stops its timer. Removing an unknown id
// is a no-op, so the call is idempotent.
func (r *activeRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(r.entries, id)
}

// active returns the registered notifications ordered by creation time.
func (r *activeRegistry) active() []*Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Notification, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *activeRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// sweep evicts entries older than the horizon, persistent ones
// included. It is the safety net for entries whose expiry path was
// missed. Returns the number of evictions.
func (r *activeRegistry) sweep(horizon time.Duration) int {
	cutoff := time.Now().Add(-horizon)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.entries {
		if e.n.CreatedAt.Before(cutoff) {
			if e.timer != nil {
				e.timer.Stop()
			}
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}
