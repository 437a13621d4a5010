package application

import apperrors "quickloan/internal/errors"

var (
	ErrApplicationNotFound     = apperrors.NotFound("APPLICATION_NOT_FOUND", "Loan application not found")
	ErrNotOwner                = apperrors.Forbidden("NOT_APPLICATION_OWNER", "You do not have access to this application")
	ErrNotApproved             = apperrors.Conflict("APPLICATION_NOT_APPROVED", "This loan has not been approved yet.")
	ErrProfileRequired         = apperrors.Validation("PROFILE_REQUIRED", "Please complete your profile before applying for a loan.")
	ErrInvalidTransition       = apperrors.Conflict("INVALID_STATUS_TRANSITION", "This status change is not allowed")
	ErrRejectionReasonRequired = apperrors.Validation("REJECTION_REASON_REQUIRED", "A rejection reason is required")
	ErrUnknownStatus           = apperrors.Validation("UNKNOWN_STATUS", "Unknown application status")
)
