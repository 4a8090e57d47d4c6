package notify

import "sync"

// priorityQueue holds waiting notifications in three ordered buckets.
// Urgent and high insert at the head of the high bucket, so a burst of
// high-priority items drains most-recent-first; normal and low append
// and drain oldest-first. Pop order is always high, normal, low.
type priorityQueue struct {
	mu     sync.Mutex
	high   []*Notification
	normal []*Notification
	low    []*Notification
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{}
}

func (q *priorityQueue) push(n *Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch n.Priority {
	case PriorityUrgent, PriorityHigh:
		q.high = append([]*Notification{n}, q.high...)
	case PriorityLow:
		q.low = append(q.low, n)
	default:
		q.normal = append(q.normal, n)
	}
}

// pop removes and returns the next notification, or nil when empty.
func (q *priorityQueue) pop() *Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.high) > 0 {
		n := q.high[0]
		q.high = q.high[1:]
		return n
	}
	if len(q.normal) > 0 {
		n := q.normal[0]
		q.normal = q.normal[1:]
		return n
	}
	if len(q.low) > 0 {
		n := q.low[0]
		q.low = q.low[1:]
		return n
	}
	return nil
}

func (q *priorityQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.high) + len(q.normal) + len(q.low)
}
