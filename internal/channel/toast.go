package channel

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Toast variants understood by the dashboard toast renderer.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// ToastAction is the primary call-to-action wired onto a toast.
type ToastAction struct {
	Label  string `json:"label"`
	Effect string `json:"effect"`
}

// Toast is the payload handed to an in-app toast sink.
// DurationMs of zero means the toast stays until dismissed.
type Toast struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Variant     string       `json:"variant"`
	DurationMs  int          `json:"duration_ms"`
	Action      *ToastAction `json:"action,omitempty"`
}

// ToastSink renders in-app toasts. Implementations must be safe for
// concurrent use.
type ToastSink interface {
	Show(ctx context.Context, t Toast) error
}

// ToastHub fans toasts out to every connected dashboard session.
// Sessions subscribe (typically from an SSE handler) and receive each
// toast on a buffered channel; slow sessions are skipped rather than
// blocking delivery.
type ToastHub struct {
	logger *zap.Logger
	buffer int

	mu   sync.Mutex
	subs map[chan Toast]struct{}
}

// NewToastHub creates a hub with the given per-subscriber buffer size.
func NewToastHub(buffer int, logger *zap.Logger) *ToastHub {
	if buffer <= 0 {
		buffer = 16
	}
	return &ToastHub{
		logger: logger,
		buffer: buffer,
		subs:   make(map[chan Toast]struct{}),
	}
}

// Subscribe registers a new session. The returned cancel func must be
// called when the session disconnects.
func (h *ToastHub) Subscribe() (<-chan Toast, func()) {
	ch := make(chan Toast, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Show delivers the toast to every subscriber. Subscribers whose buffer
// is full miss the toast; the staleness sweep covers that case.
func (h *ToastHub) Show(ctx context.Context, t Toast) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- t:
		default:
			h.logger.Warn("toast subscriber buffer full, dropping toast",
				zap.String("toast_id", t.ID),
			)
		}
	}

	return nil
}

// Watching reports whether at least one session is connected. Used as
// the foreground check that gates the push channel.
func (h *ToastHub) Watching() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs) > 0
}
