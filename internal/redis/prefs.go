package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// prefsKey is the single namespaced key holding the serialized
// notification preferences.
const prefsKey = "beautydesk:notify:prefs"

// PreferenceStore persists the notification preferences JSON blob.
// It implements notify.PrefsPersister.
type PreferenceStore struct {
	client *Client
	logger *zap.Logger
}

// NewPreferenceStore creates a preference persistence service.
func NewPreferenceStore(client *Client, logger *zap.Logger) *PreferenceStore {
	return &PreferenceStore{client: client, logger: logger}
}

// Load returns the persisted preferences, or (nil, nil) when nothing
// has been saved yet.
func (s *PreferenceStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.rdb.Get(ctx, prefsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Save stores the full preferences object. No TTL: preferences live
// until the next update.
func (s *PreferenceStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.rdb.Set(ctx, prefsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	s.logger.Debug("notification preferences persisted",
		zap.Int("bytes", len(data)),
	)
	return nil
}
