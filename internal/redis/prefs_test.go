package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*Client, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := &Client{rdb: rdb, logger: zap.NewNop()}

	return client, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestPreferenceStore_LoadEmpty(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewPreferenceStore(client, zap.NewNop())

	data, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for unset key, got %q", data)
	}
}

func TestPreferenceStore_RoundTrip(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewPreferenceStore(client, zap.NewNop())
	ctx := context.Background()

	payload := []byte(`{"enable_sound":false,"enable_toast":true}`)
	if err := store.Save(ctx, payload); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("expected %s, got %s", payload, data)
	}
}

func TestPreferenceStore_SaveOverwrites(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewPreferenceStore(client, zap.NewNop())
	ctx := context.Background()

	if err := store.Save(ctx, []byte(`{"enable_sound":true}`)); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := store.Save(ctx, []byte(`{"enable_sound":false}`)); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	data, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(data) != `{"enable_sound":false}` {
		t.Errorf("expected latest save to win, got %s", data)
	}
}
