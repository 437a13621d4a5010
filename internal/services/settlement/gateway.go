// Package settlement abstracts the money rail used to collect repayments and
// disburse loans. Only a synchronous simulated rail is provided.
package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusProcessing means the rail accepted the request and will confirm it
	// through a later callback. Callers persist the row as processing.
	StatusProcessing Status = "processing"
)

const (
	PrefixCollection   = "PY"
	PrefixDisbursement = "MP"
)

type CollectRequest struct {
	ApplicationID uint
	PaymentID     uint
	Amount        decimal.Decimal
	Method        string
	MpesaNumber   string
}

type DisburseRequest struct {
	ApplicationID uint
	WithdrawalID  uint
	Amount        decimal.Decimal
	MpesaNumber   string
}

type Result struct {
	Status        Status
	TransactionID string
	FailureReason string
	SettledAt     time.Time
}

// Gateway is the settlement collaborator. A returned error means the rail
// could not be reached at all and the surrounding transaction rolls back; a
// declined transfer is a Result with StatusFailed.
type Gateway interface {
	Collect(ctx context.Context, req CollectRequest) (Result, error)
	Disburse(ctx context.Context, req DisburseRequest) (Result, error)
}
