package notify

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/scolombo/beautydesk/internal/channel"
	"github.com/scolombo/beautydesk/internal/metrics"
)

// Config tunes the engine's timers.
type Config struct {
	TickInterval  time.Duration // scheduler drain interval
	SweepInterval time.Duration // staleness sweep interval
	StaleAfter    time.Duration // registry eviction horizon
}

// Deduper reports whether a content fingerprint was already accepted
// within the suppression window, recording it as a side effect.
type Deduper interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
}

// Recorder journals delivered notifications (best effort).
type Recorder interface {
	Record(ctx context.Context, n *Notification) error
}

// Channels are the delivery surfaces the coordinator fans out to. Any
// of them may be nil; a missing channel degrades that channel only.
// Foreground reports whether a dashboard session is currently watching
// the toast stream; push is skipped while one is.
type Channels struct {
	Toast      channel.ToastSink
	Push       channel.Pusher
	Sound      channel.SoundPlayer
	Foreground func() bool
}

// Stats is the getStats() snapshot.
type Stats struct {
	ActiveCount    int   `json:"active_count"`
	QueueSize      int   `json:"queue_size"`
	TotalProcessed int64 `json:"total_processed"`
}

// Engine is the notification dispatch engine: factory, preference
// filter, priority queue, scheduler, delivery coordinator, and active
// registry behind one value. Construct it once in main and inject it
// into callers.
type Engine struct {
	cfg    Config
	logger *zap.Logger
	prefs  *PrefStore
	ch     Channels

	dedup    Deduper  // nil disables duplicate suppression
	recorder Recorder // nil disables the delivery journal

	queue    *priorityQueue
	registry *activeRegistry

	soundOn        atomic.Bool // runtime-only toggle, not persisted
	inFlight       atomic.Bool // single-flight delivery guard
	kick           chan struct{}
	totalProcessed atomic.Int64
}

// NewEngine creates the engine with defaults filled in.
func NewEngine(cfg Config, prefs *PrefStore, ch Channels, logger *zap.Logger) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 500 * time.Millisecond
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 30 * time.Minute
	}

	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		prefs:    prefs,
		ch:       ch,
		queue:    newPriorityQueue(),
		registry: newActiveRegistry(),
		kick:     make(chan struct{}, 1),
	}
	e.soundOn.Store(true)

	return e
}

// SetDeduper wires duplicate suppression.
func (e *Engine) SetDeduper(d Deduper) { e.dedup = d }

// SetRecorder wires the delivery journal.
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

// Start runs the scheduler until ctx is cancelled: one drain attempt
// per tick, an out-of-band drain per urgent kick, and a periodic
// staleness sweep.
func (e *Engine) Start(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	sweeper := time.NewTicker(e.cfg.SweepInterval)
	defer sweeper.Stop()

	e.logger.Info("notification engine started",
		zap.Duration("tick_interval", e.cfg.TickInterval),
		zap.Duration("stale_after", e.cfg.StaleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("notification engine stopping")
			return
		case <-ticker.C:
			e.drainOnce(ctx)
		case <-e.kick:
			e.drainOnce(ctx)
		case <-sweeper.C:
			if evicted := e.registry.sweep(e.cfg.StaleAfter); evicted > 0 {
				metrics.RecordStaleEvictions(evicted)
				e.logger.Info("stale notifications evicted", zap.Int("count", evicted))
			}
			metrics.SetActiveNotifications(e.registry.count())
		}
	}
}

// Notify normalizes the request, applies the preference filter and
// duplicate suppression, and enqueues the result. The returned id is
// generated whether or not the notification was queued; the contract is
// fire and forget. Only a request without display text is an error.
func (e *Engine) Notify(ctx context.Context, req Request) (string, error) {
	n, err := newNotification(req)
	if err != nil {
		return "", err
	}

	prefs := e.prefs.Current()
	if ok, reason := prefs.Allows(n, time.Now()); !ok {
		metrics.RecordSuppressed(reason)
		e.logger.Debug("notification suppressed",
			zap.String("id", n.ID),
			zap.String("reason", reason),
			zap.String("category", string(n.Category)),
			zap.String("priority", string(n.Priority)),
		)
		return n.ID, nil
	}

	if e.dedup != nil {
		seen, err := e.dedup.Seen(ctx, n.Fingerprint())
		if err != nil {
			e.logger.Warn("dedup check failed, delivering anyway", zap.Error(err))
		} else if seen {
			metrics.RecordDeduplicated()
			e.logger.Debug("duplicate notification dropped", zap.String("id", n.ID))
			return n.ID, nil
		}
	}

	e.queue.push(n)
	metrics.RecordEnqueued(string(n.Priority), string(n.Category))
	metrics.SetQueueDepth(e.queue.size())

	if n.Priority == PriorityUrgent {
		select {
		case e.kick <- struct{}{}:
		default: // a drain is already pending
		}
	}

	return n.ID, nil
}

// drainOnce pops at most one notification from the highest non-empty
// bucket and delivers it. The atomic guard keeps deliveries serialized:
// while one is in flight, ticks and kicks are no-ops.
func (e *Engine) drainOnce(ctx context.Context) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer e.inFlight.Store(false)

	n := e.queue.pop()
	if n == nil {
		return
	}
	metrics.SetQueueDepth(e.queue.size())

	e.deliver(ctx, n)
	e.totalProcessed.Add(1)
}

// Remove dismisses a notification. Unknown ids are ignored.
func (e *Engine) Remove(id string) {
	e.registry.remove(id)
	metrics.SetActiveNotifications(e.registry.count())
}

// Active returns the currently-displayed notifications.
func (e *Engine) Active() []*Notification {
	return e.registry.active()
}

// Preferences returns the current delivery preferences.
func (e *Engine) Preferences() Preferences {
	return e.prefs.Current()
}

// UpdatePreferences shallow-merges the patch and persists the result.
func (e *Engine) UpdatePreferences(ctx context.Context, patch PreferencesPatch) error {
	return e.prefs.Update(ctx, patch)
}

// EnableSound turns the runtime sound toggle on. The toggle is not
// persisted; the persisted preference is a separate switch.
func (e *Engine) EnableSound() { e.soundOn.Store(true) }

// DisableSound turns the runtime sound toggle off.
func (e *Engine) DisableSound() { e.soundOn.Store(false) }

// SoundEnabled reports the runtime sound toggle.
func (e *Engine) SoundEnabled() bool { return e.soundOn.Load() }

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		ActiveCount:    e.registry.count(),
		QueueSize:      e.queue.size(),
		TotalProcessed: e.totalProcessed.Load(),
	}
}
