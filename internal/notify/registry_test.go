package notify

import (
	"testing"
	"time"
)

func registered(t *testing.T, title string, persistent bool) *Notification {
	t.Helper()
	n, err := newNotification(Request{Title: title, Message: "m", Persistent: persistent})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	return n
}

func TestRegistryAddAndActive(t *testing.T) {
	r := newActiveRegistry()
	a := registered(t, "a", true)
	b := registered(t, "b", true)
	b.CreatedAt = a.CreatedAt.Add(time.Second)

	r.add(b, 0)
	r.add(a, 0)

	active := r.active()
	if len(active) != 2 {
		t.Fatalf("active = %d entries, want 2", len(active))
	}
	// Ordered by creation time, not insertion order.
	if active[0].Title != "a" || active[1].Title != "b" {
		t.Errorf("active order = [%s %s], want [a b]", active[0].Title, active[1].Title)
	}
	if r.count() != 2 {
		t.Errorf("count = %d, want 2", r.count())
	}
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := newActiveRegistry()
	n := registered(t, "a", true)
	r.add(n, 0)

	r.remove(n.ID)
	if r.count() != 0 {
		t.Fatalf("count after remove = %d, want 0", r.count())
	}

	// Removing again, or removing an unknown id, must not panic.
	r.remove(n.ID)
	r.remove("no-such-id")
}

func TestRegistryAutoExpiry(t *testing.T) {
	r := newActiveRegistry()
	n := registered(t, "a", false)
	r.add(n, 20*time.Millisecond)

	if r.count() != 1 {
		t.Fatalf("count = %d, want 1", r.count())
	}

	deadline := time.Now().Add(time.Second)
	for r.count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("entry did not auto-expire")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegistryRemoveStopsExpiryTimer(t *testing.T) {
	r := newActiveRegistry()
	n := registered(t, "a", false)
	r.add(n, 20*time.Millisecond)
	r.remove(n.ID)

	// Re-add under the same id with no expiry; the stopped timer must
	// not evict it later.
	r.add(n, 0)
	time.Sleep(50 * time.Millisecond)
	if r.count() != 1 {
		t.Errorf("count = %d, want 1 (stale timer fired)", r.count())
	}
}

func TestRegistrySweepEvictsOldEntriesIncludingPersistent(t *testing.T) {
	r := newActiveRegistry()

	old := registered(t, "old", true)
	old.CreatedAt = time.Now().Add(-45 * time.Minute)
	fresh := registered(t, "fresh", true)

	r.add(old, 0)
	r.add(fresh, 0)

	evicted := r.sweep(30 * time.Minute)
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if r.count() != 1 {
		t.Fatalf("count = %d, want 1", r.count())
	}
	if r.active()[0].Title != "fresh" {
		t.Error("sweep removed the wrong entry")
	}
}

func TestRegistrySweepNothingToEvict(t *testing.T) {
	r := newActiveRegistry()
	r.add(registered(t, "a", false), time.Hour)

	if evicted := r.sweep(30 * time.Minute); evicted != 0 {
		t.Errorf("evicted = %d, want 0", evicted)
	}
}
