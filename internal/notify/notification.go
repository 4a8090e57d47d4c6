package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification for display purposes and selects its
// default duration, icon, and sound cue.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Priority governs queue placement. Urgent and high share the high
// bucket; urgent additionally triggers an immediate out-of-band drain.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Category groups notifications for preference filtering and for
// platform-level push coalescing.
type Category string

const (
	CategorySystem      Category = "system"
	CategoryAppointment Category = "appointment"
	CategoryClient      Category = "client"
	CategoryUpload      Category = "upload"
	CategoryBackup      Category = "backup"
)

// Action is a call-to-action attached to a notification. Only the first
// is wired onto toasts; only the first two reach the push platform.
type Action struct {
	Label  string `json:"label"`
	Effect string `json:"effect"`
	Style  string `json:"style,omitempty"`
}

// Notification is the complete record produced by the factory. It is
// treated as read-only once constructed; the id is assigned before the
// record enters any queue and never changes.
type Notification struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	DurationMs int             `json:"duration_ms"`
	Persistent bool            `json:"persistent"`
	Actions    []Action        `json:"actions,omitempty"`
	Icon       string          `json:"icon"`
	WantsSound bool            `json:"wants_sound"`
	Priority   Priority        `json:"priority"`
	Category   Category        `json:"category"`
	CreatedAt  time.Time       `json:"created_at"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// Request is the partial notification supplied by callers. Title and
// Message are required; everything else is defaulted by the factory.
type Request struct {
	Kind       Kind            `json:"kind,omitempty"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	DurationMs int             `json:"duration_ms,omitempty"`
	Persistent bool            `json:"persistent,omitempty"`
	Actions    []Action        `json:"actions,omitempty"`
	Icon       string          `json:"icon,omitempty"`
	WantsSound *bool           `json:"wants_sound,omitempty"`
	Priority   Priority        `json:"priority,omitempty"`
	Category   Category        `json:"category,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// ErrEmptyContent is returned when a request is missing its display text.
var ErrEmptyContent = errors.New("notification title and message are required")

func defaultDurationMs(k Kind) int {
	switch k {
	case KindError:
		return 8000
	case KindWarning:
		return 6000
	case KindSuccess:
		return 4000
	default:
		return 3000
	}
}

func defaultIcon(k Kind) string {
	switch k {
	case KindError:
		return "❌"
	case KindWarning:
		return "⚠️"
	case KindSuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

// newNotification normalizes a partial request into a complete record.
func newNotification(req Request) (*Notification, error) {
	if req.Title == "" || req.Message == "" {
		return nil, ErrEmptyContent
	}

	kind := req.Kind
	switch kind {
	case KindSuccess, KindError, KindWarning, KindInfo:
	default:
		kind = KindInfo
	}

	priority := req.Priority
	switch priority {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
	default:
		priority = PriorityNormal
	}

	category := req.Category
	switch category {
	case CategorySystem, CategoryAppointment, CategoryClient, CategoryUpload, CategoryBackup:
	default:
		category = CategorySystem
	}

	durationMs := req.DurationMs
	if durationMs <= 0 {
		durationMs = defaultDurationMs(kind)
	}

	icon := req.Icon
	if icon == "" {
		icon = defaultIcon(kind)
	}

	wantsSound := true
	if req.WantsSound != nil {
		wantsSound = *req.WantsSound
	}

	return &Notification{
		ID:         uuid.New().String(),
		Kind:       kind,
		Title:      req.Title,
		Message:    req.Message,
		DurationMs: durationMs,
		Persistent: req.Persistent,
		Actions:    req.Actions,
		Icon:       icon,
		WantsSound: wantsSound,
		Priority:   priority,
		Category:   category,
		CreatedAt:  time.Now(),
		Metadata:   req.Metadata,
	}, nil
}

// Fingerprint identifies a notification's content for duplicate
// suppression: two notifications with the same category, title, and
// message collide.
func (n *Notification) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(n.Category))
	h.Write([]byte{0})
	h.Write([]byte(n.Title))
	h.Write([]byte{0})
	h.Write([]byte(n.Message))
	return hex.EncodeToString(h.Sum(nil))
}
