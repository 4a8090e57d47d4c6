package history

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/scolombo/beautydesk/internal/notify"
)

// Entry is a row from notification_history.
type Entry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Persistent  bool      `json:"persistent"`
	CreatedAt   time.Time `json:"created_at"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Journal records delivered notifications. It implements
// notify.Recorder.
type Journal struct {
	db     *DB
	logger *zap.Logger
}

// NewJournal creates a journal over the given database.
func NewJournal(db *DB, logger *zap.Logger) *Journal {
	return &Journal{db: db, logger: logger}
}

// Record inserts one delivered notification.
func (j *Journal) Record(ctx context.Context, n *notify.Notification) error {
	_, err := j.db.pool.Exec(ctx, `
		INSERT INTO notification_history
			(id, kind, title, message, priority, category, persistent, created_at, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO NOTHING`,
		n.ID, string(n.Kind), n.Title, n.Message,
		string(n.Priority), string(n.Category), n.Persistent, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification history: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := j.db.pool.Query(ctx, `
		SELECT id, kind, title, message, priority, category, persistent, created_at, delivered_at
		FROM notification_history
		ORDER BY delivered_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query notification history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.Kind, &e.Title, &e.Message,
			&e.Priority, &e.Category, &e.Persistent,
			&e.CreatedAt, &e.DeliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification history: %w", err)
	}

	return entries, nil
}
