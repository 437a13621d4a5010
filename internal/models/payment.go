package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentOverdue    = "overdue"
)

const (
	MethodMpesa = "mpesa"
	MethodBank  = "bank"
	MethodCash  = "cash"
)

var PaymentMethods = map[string]string{
	MethodMpesa: "M-Pesa",
	MethodBank:  "Bank Transfer",
	MethodCash:  "Cash",
}

// LoanPayment is either a scheduled installment or a free-standing payment
// record (IsInstallment false). An installment closed by a free-standing
// payment points at it through SettledByID and carries no money of its own.
type LoanPayment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint            `gorm:"index;not null" json:"loan_application_id"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
	DueDate           time.Time       `gorm:"index;not null" json:"due_date"`
	Status            string          `gorm:"size:20;index;default:'pending'" json:"status"`
	PaymentMethod     string          `gorm:"size:20" json:"payment_method,omitempty"`
	MpesaNumber       string          `gorm:"size:15" json:"mpesa_number,omitempty"`
	TransactionID     string          `gorm:"size:100" json:"transaction_id,omitempty"`
	IsInstallment     bool            `gorm:"not null" json:"is_installment"`
	InstallmentNumber int             `gorm:"default:0" json:"installment_number"`
	SettledByID       *uint           `gorm:"index" json:"settled_by_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IsOpen reports whether the row still awaits settlement.
func (p *LoanPayment) IsOpen() bool {
	return p.Status == PaymentPending || p.Status == PaymentOverdue
}

// IsPaid reports whether the row is money received.
func (p *LoanPayment) IsPaid() bool {
	return p.Status == PaymentCompleted && p.SettledByID == nil
}

// IsPastDue compares calendar days only.
func (p *LoanPayment) IsPastDue(now time.Time) bool {
	return p.DueDate.Before(StartOfDay(now))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
