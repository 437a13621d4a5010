package models

import "github.com/shopspring/decimal"

// DashboardStats is the borrower landing summary.
type DashboardStats struct {
	TotalApplications    int64             `json:"total_applications"`
	ApprovedApplications int64             `json:"approved_applications"`
	PendingApplications  int64             `json:"pending_applications"`
	TotalPaid            decimal.Decimal   `json:"total_paid"`
	OverduePayments      int64             `json:"overdue_payments"`
	RecentLoans          []LoanApplication `json:"recent_loans"`
	Notifications        []Notification    `json:"notifications"`
}

// PaymentSummary is the derived ledger view of one application.
type PaymentSummary struct {
	TotalRepayment   decimal.Decimal `json:"total_repayment"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	CompletedCount   int             `json:"completed_payments"`
	OverdueCount     int             `json:"overdue_payments"`
	NextPaymentDue   *LoanPayment    `json:"next_payment_due,omitempty"`
}
