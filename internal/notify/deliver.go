package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scolombo/beautydesk/internal/channel"
	"github.com/scolombo/beautydesk/internal/metrics"
)

// deliver fans a single notification out to every enabled channel.
// Channels are evaluated independently: an error in one is logged and
// discarded, never short-circuiting the others or the registry insert.
// No channel error reaches the original Notify caller.
func (e *Engine) deliver(ctx context.Context, n *Notification) {
	prefs := e.prefs.Current()

	if prefs.EnableToast && e.ch.Toast != nil {
		if err := e.ch.Toast.Show(ctx, toastFor(n)); err != nil {
			metrics.RecordDelivery("toast", "error")
			e.logger.Warn("toast delivery failed",
				zap.String("id", n.ID),
				zap.Error(err),
			)
		} else {
			metrics.RecordDelivery("toast", "ok")
		}
	}

	if prefs.EnablePush && e.ch.Push != nil && !e.foregrounded() {
		e.pushOut(ctx, n)
	}

	if n.WantsSound && prefs.EnableSound && e.soundOn.Load() && e.ch.Sound != nil {
		if err := e.ch.Sound.Play(ctx, cueFor(n.Kind)); err != nil {
			// Playback failures are never user-visible.
			metrics.RecordDelivery("sound", "error")
			e.logger.Debug("sound playback failed",
				zap.String("id", n.ID),
				zap.Error(err),
			)
		} else {
			metrics.RecordDelivery("sound", "ok")
		}
	}

	var expireAfter time.Duration
	if !n.Persistent && n.DurationMs > 0 {
		expireAfter = time.Duration(n.DurationMs) * time.Millisecond
	}
	e.registry.add(n, expireAfter)
	metrics.SetActiveNotifications(e.registry.count())

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, n); err != nil {
			e.logger.Warn("failed to journal notification",
				zap.String("id", n.ID),
				zap.Error(err),
			)
		}
	}

	e.logger.Info("notification delivered",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("priority", string(n.Priority)),
		zap.String("category", string(n.Category)),
	)
}

// pushOut drives the push channel: resolve permission lazily, then send.
func (e *Engine) pushOut(ctx context.Context, n *Notification) {
	perm := e.ch.Push.Permission()
	if perm == channel.PermissionDefault {
		var err error
		perm, err = e.ch.Push.RequestPermission(ctx)
		if err != nil {
			metrics.RecordDelivery("push", "error")
			e.logger.Warn("push permission request failed",
				zap.String("id", n.ID),
				zap.Error(err),
			)
			return
		}
	}

	if perm != channel.PermissionGranted {
		metrics.RecordDelivery("push", "skipped")
		e.logger.Debug("push skipped, permission not granted",
			zap.String("id", n.ID),
			zap.String("permission", string(perm)),
		)
		return
	}

	if err := e.ch.Push.Send(ctx, pushFor(n)); err != nil {
		metrics.RecordDelivery("push", "error")
		e.logger.Warn("push delivery failed",
			zap.String("id", n.ID),
			zap.Error(err),
		)
		return
	}
	metrics.RecordDelivery("push", "ok")
}

// foregrounded reports whether a dashboard session is watching the
// toast stream. Without a presence check the page is assumed hidden,
// which keeps push usable in headless deployments.
func (e *Engine) foregrounded() bool {
	return e.ch.Foreground != nil && e.ch.Foreground()
}

// toastFor maps a notification onto the toast sink contract: error
// renders destructive, persistent toasts stay until dismissed, and the
// first action becomes the toast's primary action.
func toastFor(n *Notification) channel.Toast {
	t := channel.Toast{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Message,
		Variant:     channel.VariantDefault,
		DurationMs:  n.DurationMs,
	}
	if n.Kind == KindError {
		t.Variant = channel.VariantDestructive
	}
	if n.Persistent {
		t.DurationMs = 0
	}
	if len(n.Actions) > 0 {
		a := n.Actions[0]
		t.Action = &channel.ToastAction{Label: a.Label, Effect: a.Effect}
	}
	return t
}

// pushFor maps a notification onto the push payload. The platform
// accepts at most two actions.
func pushFor(n *Notification) channel.Push {
	p := channel.Push{
		Title:              n.Title,
		Message:            n.Message,
		Icon:               n.Icon,
		Badge:              "/icons/badge.png",
		Tag:                string(n.Category),
		Data:               n.Metadata,
		RequireInteraction: n.Persistent,
	}
	actions := n.Actions
	if len(actions) > 2 {
		actions = actions[:2]
	}
	for _, a := range actions {
		p.Actions = append(p.Actions, channel.PushAction{Label: a.Label, Effect: a.Effect})
	}
	return p
}

// cueFor selects the audio cue for a kind.
func cueFor(k Kind) channel.Cue {
	switch k {
	case KindSuccess:
		return channel.CueSuccess
	case KindError:
		return channel.CueError
	case KindWarning:
		return channel.CueWarning
	default:
		return channel.CueInfo
	}
}
