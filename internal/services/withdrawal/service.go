// Package withdrawal disburses the principal of an approved loan to the
// borrower's M-Pesa number. Each application is disbursed at most once.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"quickloan/internal/config"
	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/services/application"
	"quickloan/internal/services/notification"
	"quickloan/internal/services/settlement"
	"quickloan/internal/validation"
)

var (
	ErrAlreadyWithdrawn   = apperrors.Conflict("ALREADY_WITHDRAWN", "Funds have already been withdrawn for this loan.")
	ErrWithdrawalNotFound = apperrors.NotFound("WITHDRAWAL_NOT_FOUND", "No withdrawal has been made for this loan.")
	ErrNotApproved        = application.ErrNotApproved
)

// Request is the disbursement form.
type Request struct {
	MpesaNumber string `json:"mpesa_number" validate:"required,mpesa"`
}

type Service interface {
	Disburse(ctx context.Context, userID, appID uint, mpesaNumber string) (*models.LoanWithdrawal, error)
	Get(ctx context.Context, userID, appID uint) (*models.LoanWithdrawal, error)
}

type service struct {
	repos         *repositories.Repositories
	gateway       settlement.Gateway
	notifications notification.Service
	currency      string
}

func NewService(repos *repositories.Repositories, gateway settlement.Gateway, notifications notification.Service, cfg config.LendingConfig) Service {
	if repos == nil {
		panic("repositories are required")
	}
	if gateway == nil {
		panic("settlement gateway is required")
	}
	if notifications == nil {
		panic("notification service is required")
	}
	currency := cfg.Currency
	if currency == "" {
		currency = config.DefaultLending().Currency
	}
	return &service{repos: repos, gateway: gateway, notifications: notifications, currency: currency}
}

// Disburse sends the loan principal once. A previously failed attempt may be
// retried on the same record; anything else is ErrAlreadyWithdrawn.
func (s *service) Disburse(ctx context.Context, userID, appID uint, mpesaNumber string) (*models.LoanWithdrawal, error) {
	mpesaNumber = strings.TrimSpace(mpesaNumber)

	var (
		app      *models.LoanApplication
		w        *models.LoanWithdrawal
		firstDue *models.LoanPayment
		declined bool
	)
	err := s.repos.ExecuteInTransaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		app, err = application.OwnedApproved(ctx, tx, userID, appID, true)
		if err != nil {
			return err
		}

		if err := validation.Struct(Request{MpesaNumber: mpesaNumber}); err != nil {
			return err
		}

		w, err = s.reserve(ctx, tx, app, mpesaNumber)
		if err != nil {
			return err
		}

		res, err := s.gateway.Disburse(ctx, settlement.DisburseRequest{
			ApplicationID: app.ID,
			WithdrawalID:  w.ID,
			Amount:        w.Amount,
			MpesaNumber:   w.MpesaNumber,
		})
		if err != nil {
			return fmt.Errorf("failed to disburse loan: %w", err)
		}

		w.TransactionID = res.TransactionID
		switch res.Status {
		case settlement.StatusCompleted:
			at := res.SettledAt
			w.Status = models.WithdrawalCompleted
			w.ProcessedDate = &at
			w.FailureReason = ""
		case settlement.StatusProcessing:
			w.Status = models.WithdrawalProcessing
		default:
			w.Status = models.WithdrawalFailed
			w.FailureReason = res.FailureReason
			declined = true
		}
		if err := tx.Withdrawals.Update(ctx, w); err != nil {
			return fmt.Errorf("failed to update withdrawal: %w", err)
		}

		payments, err := tx.Payments.ListByApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		for i := range payments {
			if payments[i].IsInstallment {
				firstDue = &payments[i]
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"withdrawal_id":  w.ID,
		"amount":         w.Amount.StringFixed(2),
		"status":         w.Status,
		"transaction_id": w.TransactionID,
	}).Info("loan disbursement processed")

	amount := models.FormatAmount(w.Amount)
	if declined {
		msg := fmt.Sprintf("We could not send %s %s to %s.", s.currency, amount, w.MpesaNumber)
		if w.FailureReason != "" {
			msg += " Reason: " + w.FailureReason + "."
		}
		s.notify(ctx, userID, models.NotificationWithdrawal, notification.TitleDisbursementFailed, msg+" Please try again.")
		return w, nil
	}
	if w.Status != models.WithdrawalCompleted {
		return w, nil
	}

	s.notify(ctx, userID, models.NotificationWithdrawal, notification.TitleDisbursed,
		fmt.Sprintf("%s %s has been sent to your M-Pesa number %s. Transaction ID: %s. Funds should arrive within 5 minutes.",
			s.currency, amount, w.MpesaNumber, w.TransactionID))
	if firstDue != nil {
		s.notify(ctx, userID, models.NotificationPaymentReminder, notification.TitleScheduleCreated,
			fmt.Sprintf("Your payment schedule has been created. First payment of %s %s is due on %s.",
				s.currency, models.FormatAmount(firstDue.Amount), firstDue.DueDate.Format("January 02, 2006")))
	}
	return w, nil
}

// reserve inserts the withdrawal row, or reclaims a failed one, and moves it
// to processing.
func (s *service) reserve(ctx context.Context, tx *repositories.Repositories, app *models.LoanApplication, mpesaNumber string) (*models.LoanWithdrawal, error) {
	w, err := tx.Withdrawals.GetByApplication(ctx, app.ID)
	switch {
	case err == nil:
		if w.Status != models.WithdrawalFailed {
			return nil, ErrAlreadyWithdrawn
		}
	case errors.Is(err, repositories.ErrWithdrawalNotFound):
		w = &models.LoanWithdrawal{
			LoanApplicationID: app.ID,
			MpesaNumber:       mpesaNumber,
			Amount:            app.Amount,
			Status:            models.WithdrawalPending,
		}
		if err := tx.Withdrawals.Create(ctx, w); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, ErrAlreadyWithdrawn
			}
			return nil, fmt.Errorf("failed to create withdrawal: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to check withdrawal: %w", err)
	}

	w.MpesaNumber = mpesaNumber
	w.Status = models.WithdrawalProcessing
	if err := tx.Withdrawals.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}
	return w, nil
}

func (s *service) Get(ctx context.Context, userID, appID uint) (*models.LoanWithdrawal, error) {
	if _, err := application.Owned(ctx, s.repos, userID, appID, false); err != nil {
		return nil, err
	}
	w, err := s.repos.Withdrawals.GetByApplication(ctx, appID)
	if err != nil {
		if errors.Is(err, repositories.ErrWithdrawalNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return w, nil
}

func (s *service) notify(ctx context.Context, userID uint, kind, title, message string) {
	if err := s.notifications.Notify(ctx, userID, kind, title, message); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "title": title}).
			Error("failed to send withdrawal notification")
	}
}
