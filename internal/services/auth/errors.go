package auth

import apperrors "quickloan/internal/errors"

var (
	ErrInvalidCredentials = apperrors.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")
	ErrInvalidToken       = apperrors.Unauthorized("INVALID_TOKEN", "invalid or expired token")
	ErrSessionExpired     = apperrors.Unauthorized("SESSION_EXPIRED", "session expired")
	ErrAccountDisabled    = apperrors.Forbidden("ACCOUNT_DISABLED", "This account has been disabled")
	ErrEmailTaken         = apperrors.Conflict("EMAIL_TAKEN", "An account with this email already exists")
	ErrUserNotFound       = apperrors.NotFound("USER_NOT_FOUND", "User not found")
	ErrWrongPassword      = apperrors.Validation("WRONG_PASSWORD", "Current password is incorrect")
)
