package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	WithdrawalPending    = "pending"
	WithdrawalProcessing = "processing"
	WithdrawalCompleted  = "completed"
	WithdrawalFailed     = "failed"
)

// LoanWithdrawal is the single disbursement of an approved loan. The unique
// index on LoanApplicationID enforces at most one per application.
type LoanWithdrawal struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint            `gorm:"uniqueIndex;not null" json:"loan_application_id"`
	MpesaNumber       string          `gorm:"size:15;not null" json:"mpesa_number"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status            string          `gorm:"size:20;default:'pending'" json:"status"`
	WithdrawalDate    time.Time       `gorm:"autoCreateTime" json:"withdrawal_date"`
	ProcessedDate     *time.Time      `json:"processed_date,omitempty"`
	TransactionID     string          `gorm:"size:100" json:"transaction_id,omitempty"`
	FailureReason     string          `gorm:"type:text" json:"failure_reason,omitempty"`
}
