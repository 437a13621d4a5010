package models

import "time"

const (
	NotificationApplicationUpdate = "application_update"
	NotificationPaymentReminder   = "payment_reminder"
	NotificationSystem            = "system"
	NotificationWithdrawal        = "withdrawal"
	NotificationPayment           = "payment"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:30;index" json:"notification_type"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
