package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// QuietHours is a daily wall-clock window ("HH:MM", 24h) during which
// only urgent notifications are delivered. A window whose start is
// later than its end spans midnight (22:00–06:00).
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Preferences are the user-configurable delivery settings. They are
// persisted as a single JSON object and held in memory for the process
// lifetime.
type Preferences struct {
	EnableSound       bool        `json:"enable_sound"`
	EnablePush        bool        `json:"enable_push"`
	EnableToast       bool        `json:"enable_toast"`
	AllowedPriorities []Priority  `json:"allowed_priorities"`
	AllowedCategories []Category  `json:"allowed_categories"`
	QuietHours        *QuietHours `json:"quiet_hours,omitempty"`
}

// DefaultPreferences allows everything and sets no quiet hours.
func DefaultPreferences() Preferences {
	return Preferences{
		EnableSound: true,
		EnablePush:  true,
		EnableToast: true,
		AllowedPriorities: []Priority{
			PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent,
		},
		AllowedCategories: []Category{
			CategorySystem, CategoryAppointment, CategoryClient,
			CategoryUpload, CategoryBackup,
		},
	}
}

// PreferencesPatch is a shallow-merge update: nil fields keep their
// current value. ClearQuietHours removes the window.
type PreferencesPatch struct {
	EnableSound       *bool       `json:"enable_sound,omitempty"`
	EnablePush        *bool       `json:"enable_push,omitempty"`
	EnableToast       *bool       `json:"enable_toast,omitempty"`
	AllowedPriorities []Priority  `json:"allowed_priorities,omitempty"`
	AllowedCategories []Category  `json:"allowed_categories,omitempty"`
	QuietHours        *QuietHours `json:"quiet_hours,omitempty"`
	ClearQuietHours   bool        `json:"clear_quiet_hours,omitempty"`
}

// PrefsPersister stores the serialized preferences under a single
// namespaced key. Load returns (nil, nil) when nothing is persisted.
type PrefsPersister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// PrefStore owns the in-memory preferences. It loads once at engine
// start, falls back entirely to defaults on missing or corrupt state,
// and persists the full object on every update.
type PrefStore struct {
	logger    *zap.Logger
	persister PrefsPersister // nil disables persistence

	mu    sync.RWMutex
	prefs Preferences
}

// NewPrefStore loads persisted preferences over defaults.
func NewPrefStore(ctx context.Context, persister PrefsPersister, logger *zap.Logger) *PrefStore {
	s := &PrefStore{
		logger:    logger,
		persister: persister,
		prefs:     DefaultPreferences(),
	}

	if persister == nil {
		return s
	}

	data, err := persister.Load(ctx)
	if err != nil {
		logger.Warn("failed to load notification preferences, using defaults", zap.Error(err))
		return s
	}
	if data == nil {
		return s
	}

	loaded := DefaultPreferences()
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warn("persisted notification preferences are corrupt, using defaults", zap.Error(err))
		return s
	}
	s.prefs = loaded

	return s
}

// Current returns a copy of the preferences safe for concurrent reads.
func (s *PrefStore) Current() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.prefs
	p.AllowedPriorities = append([]Priority(nil), s.prefs.AllowedPriorities...)
	p.AllowedCategories = append([]Category(nil), s.prefs.AllowedCategories...)
	if s.prefs.QuietHours != nil {
		qh := *s.prefs.QuietHours
		p.QuietHours = &qh
	}
	return p
}

// Update shallow-merges the patch and persists the resulting object.
// The in-memory state is updated even when persistence fails.
func (s *PrefStore) Update(ctx context.Context, patch PreferencesPatch) error {
	s.mu.Lock()
	if patch.EnableSound != nil {
		s.prefs.EnableSound = *patch.EnableSound
	}
	if patch.EnablePush != nil {
		s.prefs.EnablePush = *patch.EnablePush
	}
	if patch.EnableToast != nil {
		s.prefs.EnableToast = *patch.EnableToast
	}
	if patch.AllowedPriorities != nil {
		s.prefs.AllowedPriorities = append([]Priority(nil), patch.AllowedPriorities...)
	}
	if patch.AllowedCategories != nil {
		s.prefs.AllowedCategories = append([]Category(nil), patch.AllowedCategories...)
	}
	if patch.ClearQuietHours {
		s.prefs.QuietHours = nil
	} else if patch.QuietHours != nil {
		qh := *patch.QuietHours
		s.prefs.QuietHours = &qh
	}
	merged := s.prefs
	s.mu.Unlock()

	if s.persister == nil {
		return nil
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, data); err != nil {
		s.logger.Warn("failed to persist notification preferences", zap.Error(err))
		return err
	}

	return nil
}

// Suppression reasons reported by Allows.
const (
	suppressCategory   = "category"
	suppressPriority   = "priority"
	suppressQuietHours = "quiet_hours"
)

// Allows evaluates the preference filter for a notification at the
// given time. When it returns false, reason names the first check that
// failed.
func (p Preferences) Allows(n *Notification, now time.Time) (bool, string) {
	if !containsCategory(p.AllowedCategories, n.Category) {
		return false, suppressCategory
	}
	if !containsPriority(p.AllowedPriorities, n.Priority) {
		return false, suppressPriority
	}
	if p.inQuietHours(now) && n.Priority != PriorityUrgent {
		return false, suppressQuietHours
	}
	return true, ""
}

// inQuietHours compares minutes-since-midnight against the window.
// Unparseable boundary times disable the window.
func (p Preferences) inQuietHours(now time.Time) bool {
	if p.QuietHours == nil {
		return false
	}

	start, ok := parseClock(p.QuietHours.Start)
	if !ok {
		return false
	}
	end, ok := parseClock(p.QuietHours.End)
	if !ok {
		return false
	}

	cur := now.Hour()*60 + now.Minute()

	if start <= end {
		return cur >= start && cur <= end
	}
	// Window spans midnight, e.g. 22:00–06:00.
	return cur >= start || cur <= end
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	min, err := strconv.Atoi(m)
	if err != nil || min < 0 || min > 59 {
		return 0, false
	}
	return hour*60 + min, true
}

func containsPriority(list []Priority, p Priority) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}

func containsCategory(list []Category, c Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
