package notification

import apperrors "quickloan/internal/errors"

var (
	ErrNotificationNotFound = apperrors.NotFound("NOTIFICATION_NOT_FOUND", "notification not found")
	ErrEmptyBroadcast       = apperrors.Validation("EMPTY_BROADCAST", "title and message are required")
)
