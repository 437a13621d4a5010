package profile

import apperrors "quickloan/internal/errors"

var (
	ErrProfileNotFound = apperrors.NotFound("PROFILE_NOT_FOUND", "Please complete your profile first.")
	ErrUserNotFound    = apperrors.NotFound("USER_NOT_FOUND", "user not found")
	ErrIDNumberTaken   = apperrors.Conflict("ID_NUMBER_TAKEN", "This ID number is already registered to another account.")
	ErrEmailTaken      = apperrors.Conflict("EMAIL_TAKEN", "This email address is already in use.")
)
