package catalog

import apperrors "quickloan/internal/errors"

var (
	ErrLoanTypeNotFound = apperrors.NotFound("LOAN_TYPE_NOT_FOUND", "Loan type not found or no longer available")
	ErrLoanTypeExists   = apperrors.Conflict("LOAN_TYPE_EXISTS", "A loan type with this name already exists")
)
