package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Errorf("tick interval = %s, want 500ms", cfg.TickInterval)
	}
	if cfg.SweepInterval != time.Minute {
		t.Errorf("sweep interval = %s, want 1m", cfg.SweepInterval)
	}
	if cfg.StaleAfter != 30*time.Minute {
		t.Errorf("stale after = %s, want 30m", cfg.StaleAfter)
	}
	if cfg.DedupWindow != 30*time.Second {
		t.Errorf("dedup window = %s, want 30s", cfg.DedupWindow)
	}
	if cfg.HistoryEnabled() {
		t.Error("history should be disabled without DB_HOST")
	}
	if cfg.PushEnabled() {
		t.Error("push should be disabled without SNS_TARGET_ARN")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFY_TICK_MS", "250")
	t.Setenv("NOTIFY_STALE_MIN", "15")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SNS_TARGET_ARN", "arn:aws:sns:eu-south-1:123:endpoint/x")
	t.Setenv("RATE_LIMIT", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Port)
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("tick interval = %s, want 250ms", cfg.TickInterval)
	}
	if cfg.StaleAfter != 15*time.Minute {
		t.Errorf("stale after = %s, want 15m", cfg.StaleAfter)
	}
	if !cfg.HistoryEnabled() {
		t.Error("history should be enabled with DB_HOST set")
	}
	if !cfg.PushEnabled() {
		t.Error("push should be enabled with SNS_TARGET_ARN set")
	}
	if cfg.RateLimit != 10 {
		t.Errorf("rate limit = %d, want 10", cfg.RateLimit)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "not-a-number"},
		{"NOTIFY_TICK_MS", "0"},
		{"NOTIFY_SWEEP_SEC", "-1"},
		{"NOTIFY_STALE_MIN", "abc"},
		{"REDIS_PORT", "x"},
		{"RATE_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
