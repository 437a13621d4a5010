package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quickloan/internal/models"
	"quickloan/internal/repositories"
)

const defaultBatchSize = 500

type service struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	cache         Cache
	config        Config
}

// NewService creates the notification service. cache may be nil.
func NewService(
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	cache Cache,
	config Config,
) Service {
	if notifications == nil {
		panic("notification repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}
	return &service{
		notifications: notifications,
		users:         users,
		cache:         cache,
		config:        config,
	}
}

func (s *service) Notify(ctx context.Context, userID uint, notificationType, title, message string) error {
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.invalidate(ctx, userID)

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    notificationType,
		"title":   title,
	}).Debug("notification created")
	return nil
}

func (s *service) List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	items, total, err := s.notifications.ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, total, nil
}

func (s *service) Unread(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	items, err := s.notifications.Unread(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}
	return items, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if s.cache != nil {
		var cached int64
		found, err := s.cache.Get(ctx, s.cache.UnreadCountKey(userID), &cached)
		if err == nil && found {
			return cached, nil
		}
	}

	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.UnreadCountKey(userID), count); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to cache unread count")
		}
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, id uint) error {
	if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.invalidate(ctx, userID)
	return n, nil
}

// Broadcast pages through active users and inserts one batch per page.
func (s *service) Broadcast(ctx context.Context, title, message string) (int64, error) {
	title, message = strings.TrimSpace(title), strings.TrimSpace(message)
	if title == "" || message == "" {
		return 0, ErrEmptyBroadcast
	}

	var (
		sent    int64
		afterID uint
	)
	for {
		ids, err := s.users.ActiveIDs(ctx, afterID, s.config.BatchSize)
		if err != nil {
			return sent, fmt.Errorf("failed to load recipients: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		batch := make([]models.Notification, len(ids))
		keys := make([]string, 0, len(ids))
		for i, id := range ids {
			batch[i] = models.Notification{
				UserID:  id,
				Title:   title,
				Message: message,
				Type:    models.NotificationSystem,
			}
			if s.cache != nil {
				keys = append(keys, s.cache.UnreadCountKey(id))
			}
		}
		if err := s.notifications.CreateBatch(ctx, batch, s.config.BatchSize); err != nil {
			return sent, fmt.Errorf("failed to insert broadcast batch: %w", err)
		}
		if s.cache != nil {
			if err := s.cache.Delete(ctx, keys...); err != nil {
				logrus.WithError(err).Warn("failed to invalidate unread counts after broadcast")
			}
		}

		sent += int64(len(ids))
		afterID = ids[len(ids)-1]
		if len(ids) < s.config.BatchSize {
			break
		}
	}

	logrus.WithFields(logrus.Fields{"title": title, "recipients": sent}).Info("broadcast sent")
	return sent, nil
}

func (s *service) RemindOverdue(ctx context.Context, userID uint, loanName string, overdue int, now time.Time) (bool, error) {
	if overdue <= 0 {
		return false, nil
	}
	exists, err := s.notifications.ExistsSince(ctx, userID, TitlePaymentOverdue, models.StartOfDay(now))
	if err != nil {
		return false, fmt.Errorf("failed to check overdue reminders: %w", err)
	}
	if exists {
		return false, nil
	}

	msg := fmt.Sprintf("You have %d overdue payment(s) for your %s. Please make payment as soon as possible to avoid penalties.", overdue, loanName)
	if err := s.Notify(ctx, userID, models.NotificationPaymentReminder, TitlePaymentOverdue, msg); err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUnreadCount(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate unread count")
	}
}
