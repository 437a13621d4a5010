package application

import (
	"context"

	"github.com/shopspring/decimal"

	"quickloan/internal/models"
)

// Service drives a loan application from submission to a terminal decision.
type Service interface {
	Submit(ctx context.Context, userID, loanTypeID uint, input SubmitInput) (*models.LoanApplication, error)
	Get(ctx context.Context, userID, id uint) (*models.LoanApplication, error)
	History(ctx context.Context, userID uint, page, limit int) ([]models.LoanApplication, int64, error)

	// Admin operations
	StartReview(ctx context.Context, id, adminID uint) (*models.LoanApplication, error)
	RequestInfo(ctx context.Context, id, adminID uint, note string) (*models.LoanApplication, error)
	Approve(ctx context.Context, id, adminID uint) (*ScheduleResult, error)
	Reject(ctx context.Context, id, adminID uint, reason string) (*models.LoanApplication, error)
	ListForReview(ctx context.Context, status string, page, limit int) ([]models.LoanApplication, int64, error)
}

type SubmitInput struct {
	Amount     decimal.Decimal `json:"amount"`
	TermMonths int             `json:"term_months"`
	Purpose    string          `json:"purpose"`
}

// ScheduleResult is returned by Approve. AlreadyApproved is set when the
// application had been approved before and nothing was written.
type ScheduleResult struct {
	Application     *models.LoanApplication `json:"application"`
	Payments        []models.LoanPayment    `json:"payments"`
	AlreadyApproved bool                    `json:"already_approved"`
}
