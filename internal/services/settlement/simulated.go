package settlement

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Simulated settles every request immediately. Transaction ids are the rail
// prefix followed by the settlement time to the second.
type Simulated struct {
	now func() time.Time
}

func NewSimulated() *Simulated {
	return &Simulated{now: time.Now}
}

// NewSimulatedWithClock is used by tests that need stable ids.
func NewSimulatedWithClock(now func() time.Time) *Simulated {
	return &Simulated{now: now}
}

func (s *Simulated) Collect(ctx context.Context, req CollectRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	at := s.now()
	res := Result{
		Status:        StatusCompleted,
		TransactionID: TransactionID(PrefixCollection, at),
		SettledAt:     at,
	}
	logrus.WithFields(logrus.Fields{
		"application_id": req.ApplicationID,
		"amount":         req.Amount.StringFixed(2),
		"method":         req.Method,
		"transaction_id": res.TransactionID,
	}).Info("simulated collection settled")
	return res, nil
}

func (s *Simulated) Disburse(ctx context.Context, req DisburseRequest) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	at := s.now()
	res := Result{
		Status:        StatusCompleted,
		TransactionID: TransactionID(PrefixDisbursement, at),
		SettledAt:     at,
	}
	logrus.WithFields(logrus.Fields{
		"application_id": req.ApplicationID,
		"amount":         req.Amount.StringFixed(2),
		"transaction_id": res.TransactionID,
	}).Info("simulated disbursement settled")
	return res, nil
}

func TransactionID(prefix string, at time.Time) string {
	return prefix + at.Format("20060102150405")
}
