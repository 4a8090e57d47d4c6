package redis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultDedupWindow catches accidental double-fires (a page firing the
// same event twice, a retried upload) without suppressing a genuine
// repeat a minute later.
const DefaultDedupWindow = 30 * time.Second

// Deduper suppresses duplicate notifications: a content fingerprint
// that was accepted within the window is reported as seen. Backed by
// SET NX with TTL, so checking and recording are a single atomic
// operation.
type Deduper struct {
	client *Client
	window time.Duration
	logger *zap.Logger
}

// NewDeduper creates a duplicate suppression service.
func NewDeduper(client *Client, window time.Duration, logger *zap.Logger) *Deduper {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Deduper{client: client, window: window, logger: logger}
}

func (d *Deduper) key(fingerprint string) string {
	return fmt.Sprintf("beautydesk:notify:dedup:%s", fingerprint)
}

// Seen records the fingerprint and reports whether it was already
// present inside the window.
func (d *Deduper) Seen(ctx context.Context, fingerprint string) (bool, error) {
	set, err := d.client.rdb.SetNX(ctx, d.key(fingerprint), 1, d.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}

	if !set {
		d.logger.Debug("duplicate fingerprint within window",
			zap.String("fingerprint", fingerprint),
		)
	}

	return !set, nil
}
