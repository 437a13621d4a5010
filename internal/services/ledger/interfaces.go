package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"quickloan/internal/models"
)

// Service keeps the repayment ledger of approved applications. Balances are
// always derived from payment rows, never stored.
type Service interface {
	Summary(ctx context.Context, app *models.LoanApplication) (*models.PaymentSummary, error)
	PaymentForm(ctx context.Context, userID, appID uint) (*PaymentForm, error)
	ValidatePayment(summary *models.PaymentSummary, input PaymentInput) error
	RecordPayment(ctx context.Context, userID, appID uint, input PaymentInput) (*PaymentResult, error)
	History(ctx context.Context, userID, appID uint) (*PaymentHistory, error)
	// SyncOverdue flags pending installments due before today as overdue and
	// returns how many unsettled installments are past due.
	SyncOverdue(ctx context.Context, appID uint, now time.Time) (int, error)
}

type PaymentInput struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	MpesaNumber   string          `json:"mpesa_number" validate:"omitempty,mpesa"`
}

type PaymentForm struct {
	Application      *models.LoanApplication `json:"loan_application"`
	Summary          *models.PaymentSummary  `json:"summary"`
	OpenInstallments []models.LoanPayment    `json:"pending_payments"`
	TotalDue         decimal.Decimal         `json:"total_due"`
	SuggestedAmount  decimal.Decimal         `json:"suggested_amount"`
	Methods          map[string]string       `json:"payment_methods"`
}

type PaymentResult struct {
	Payment *models.LoanPayment    `json:"payment"`
	Summary *models.PaymentSummary `json:"summary"`
	PaidOff bool                   `json:"paid_off"`
}

type PaymentHistory struct {
	Application *models.LoanApplication `json:"loan_application"`
	Payments    []models.LoanPayment    `json:"payments"`
	Summary     *models.PaymentSummary  `json:"summary"`
}
