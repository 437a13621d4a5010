package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"quickloan/internal/models"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error, ErrNotificationNotFound)
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification, batchSize int) error {
	if len(notifications) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&notifications, batchSize).Error, ErrNotificationNotFound)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrNotificationNotFound)
	}

	var items []models.Notification
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, translate(err, ErrNotificationNotFound)
	}
	return items, total, nil
}

func (r *notificationRepository) Unread(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, translate(err, ErrNotificationNotFound)
	}
	return items, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, ErrNotificationNotFound)
	}
	return count, nil
}

// MarkRead is scoped by owner so users cannot touch each other's rows.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	var n models.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return translate(err, ErrNotificationNotFound)
	}
	if n.IsRead {
		return nil
	}
	return translate(r.db.WithContext(ctx).Model(&n).Update("is_read", true).Error, ErrNotificationNotFound)
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, translate(result.Error, ErrNotificationNotFound)
	}
	return result.RowsAffected, nil
}

func (r *notificationRepository) ExistsSince(ctx context.Context, userID uint, title string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND title = ? AND created_at >= ?", userID, title, since).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, translate(err, ErrNotificationNotFound)
	}
	return count > 0, nil
}
