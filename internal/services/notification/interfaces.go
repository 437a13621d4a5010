package notification

import (
	"context"
	"time"

	"quickloan/internal/models"
)

// Service is the in-app notification sink plus the user-facing inbox.
type Service interface {
	Notify(ctx context.Context, userID uint, notificationType, title, message string) error
	List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error)
	Unread(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	// Broadcast sends a system notification to every active user.
	Broadcast(ctx context.Context, title, message string) (int64, error)
	// RemindOverdue sends at most one overdue reminder per user per day.
	RemindOverdue(ctx context.Context, userID uint, loanName string, overdue int, now time.Time) (bool, error)
}

// Cache is the subset of the Redis cache used for unread counters.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
	UnreadCountKey(userID uint) string
	InvalidateUnreadCount(ctx context.Context, userID uint) error
}

type Config struct {
	BatchSize int
}
