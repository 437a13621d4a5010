package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"quickloan/internal/config"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/services/application"
	"quickloan/internal/services/notification"
	"quickloan/internal/services/settlement"
	"quickloan/internal/validation"
)

type service struct {
	repos         *repositories.Repositories
	gateway       settlement.Gateway
	notifications notification.Service
	config        config.LendingConfig
	now           func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	repos *repositories.Repositories,
	gateway settlement.Gateway,
	notifications notification.Service,
	cfg config.LendingConfig,
	opts ...Option,
) Service {
	if repos == nil {
		panic("repositories are required")
	}
	if gateway == nil {
		panic("settlement gateway is required")
	}
	if notifications == nil {
		panic("notification service is required")
	}
	defaults := config.DefaultLending()
	if cfg.MinPaymentAmount.IsZero() {
		cfg.MinPaymentAmount = defaults.MinPaymentAmount
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}

	s := &service{
		repos:         repos,
		gateway:       gateway,
		notifications: notifications,
		config:        cfg,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Summary(ctx context.Context, app *models.LoanApplication) (*models.PaymentSummary, error) {
	payments, err := s.repos.Payments.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return summarize(app, payments, s.now()), nil
}

func (s *service) PaymentForm(ctx context.Context, userID, appID uint) (*PaymentForm, error) {
	app, err := application.OwnedApproved(ctx, s.repos, userID, appID, false)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	form := &PaymentForm{
		Application:      app,
		Summary:          summarize(app, payments, s.now()),
		OpenInstallments: []models.LoanPayment{},
		TotalDue:         decimal.Zero,
		SuggestedAmount:  s.config.MinPaymentAmount,
		Methods:          models.PaymentMethods,
	}
	for _, p := range payments {
		if p.IsInstallment && p.IsOpen() {
			form.OpenInstallments = append(form.OpenInstallments, p)
			form.TotalDue = form.TotalDue.Add(p.Amount)
		}
	}
	if len(form.OpenInstallments) > 0 {
		form.SuggestedAmount = form.OpenInstallments[0].Amount
	}
	return form, nil
}

// ValidatePayment checks a repayment against the current balance. Both amount
// bounds are inclusive.
func (s *service) ValidatePayment(summary *models.PaymentSummary, input PaymentInput) error {
	v := validation.New()
	cur := s.config.Currency

	switch {
	case input.Amount.LessThan(s.config.MinPaymentAmount):
		v.AddError("amount", fmt.Sprintf("Minimum payment amount is %s %s", cur, s.config.MinPaymentAmount.String()))
	case input.Amount.GreaterThan(summary.RemainingBalance):
		v.AddError("amount", fmt.Sprintf("Payment amount cannot exceed remaining balance of %s %s", cur, summary.RemainingBalance.StringFixed(2)))
	}

	if _, ok := models.PaymentMethods[input.PaymentMethod]; !ok {
		v.AddError("payment_method", "Please select a valid payment method")
	}
	input.MpesaNumber = strings.TrimSpace(input.MpesaNumber)
	if input.PaymentMethod == models.MethodMpesa && input.MpesaNumber == "" {
		v.AddError("mpesa_number", "M-Pesa number is required for M-Pesa payments")
	}
	v.Struct(input)
	return v.Err()
}

// RecordPayment settles one repayment. When the amount matches the earliest
// open installment that row is settled in place; any other amount becomes a
// free-standing record tagged with the installment it was paid against, and
// the installments it completes are closed against it.
func (s *service) RecordPayment(ctx context.Context, userID, appID uint, input PaymentInput) (*PaymentResult, error) {
	input.MpesaNumber = strings.TrimSpace(input.MpesaNumber)

	var (
		result *PaymentResult
		app    *models.LoanApplication
		reason string
	)
	err := s.repos.ExecuteInTransaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		app, err = application.OwnedApproved(ctx, tx, userID, appID, true)
		if err != nil {
			return err
		}

		payments, err := tx.Payments.ListByApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		now := s.now()
		if err := s.ValidatePayment(summarize(app, payments, now), input); err != nil {
			return err
		}

		var payment *models.LoanPayment
		target := nextOpen(payments)
		if target != nil && target.Amount.Equal(input.Amount) {
			payment, reason, err = s.settleInstallment(ctx, tx, target, input, now)
		} else {
			payment, reason, err = s.settleFreeStanding(ctx, tx, app.ID, target, input, now)
		}
		if err != nil {
			return err
		}
		if payment.Status == models.PaymentCompleted {
			if err := s.closeCovered(ctx, tx, app, payment); err != nil {
				return err
			}
		}

		payments, err = tx.Payments.ListByApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		summary := summarize(app, payments, now)
		result = &PaymentResult{
			Payment: payment,
			Summary: summary,
			PaidOff: payment.Status == models.PaymentCompleted && !summary.RemainingBalance.IsPositive(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p := result.Payment
	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"payment_id":     p.ID,
		"amount":         p.Amount.StringFixed(2),
		"method":         p.PaymentMethod,
		"status":         p.Status,
		"installment":    p.InstallmentNumber,
		"remaining":      result.Summary.RemainingBalance.StringFixed(2),
	}).Info("repayment recorded")

	cur, amount := s.config.Currency, models.FormatAmount(p.Amount)
	switch p.Status {
	case models.PaymentCompleted:
		s.notify(ctx, userID, models.NotificationPayment, notification.TitlePaymentSuccessful,
			fmt.Sprintf("Payment of %s %s for your %s has been processed successfully. Transaction ID: %s.",
				cur, amount, app.LoanName(), p.TransactionID))
		if result.PaidOff {
			s.notify(ctx, userID, models.NotificationSystem, notification.TitleLoanPaidOff,
				fmt.Sprintf("Congratulations! You have successfully completed all payments for your %s. Thank you for being a valued customer.",
					app.LoanName()))
		}
	case models.PaymentFailed:
		msg := fmt.Sprintf("Your payment of %s %s for your %s could not be processed.", cur, amount, app.LoanName())
		if reason != "" {
			msg += " Reason: " + reason
		}
		s.notify(ctx, userID, models.NotificationPayment, notification.TitlePaymentFailed, msg)
	}
	return result, nil
}

func (s *service) settleInstallment(ctx context.Context, tx *repositories.Repositories, target *models.LoanPayment, input PaymentInput, now time.Time) (*models.LoanPayment, string, error) {
	prior := target.Status
	target.Status = models.PaymentProcessing
	target.PaymentMethod = input.PaymentMethod
	target.MpesaNumber = input.MpesaNumber
	if err := tx.Payments.Update(ctx, target); err != nil {
		return nil, "", fmt.Errorf("failed to update installment: %w", err)
	}

	res, err := s.gateway.Collect(ctx, settlement.CollectRequest{
		ApplicationID: target.LoanApplicationID,
		PaymentID:     target.ID,
		Amount:        target.Amount,
		Method:        input.PaymentMethod,
		MpesaNumber:   input.MpesaNumber,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to collect payment: %w", err)
	}

	if res.Status == settlement.StatusFailed {
		// A declined attempt leaves the installment payable and is kept as
		// its own record.
		target.Status = prior
		target.PaymentMethod = ""
		target.MpesaNumber = ""
		if err := tx.Payments.Update(ctx, target); err != nil {
			return nil, "", fmt.Errorf("failed to restore installment: %w", err)
		}
		attempt := freeStanding(target.LoanApplicationID, target, input, now)
		apply(attempt, res)
		if err := tx.Payments.Create(ctx, attempt); err != nil {
			return nil, "", fmt.Errorf("failed to record declined payment: %w", err)
		}
		return attempt, res.FailureReason, nil
	}

	apply(target, res)
	if err := tx.Payments.Update(ctx, target); err != nil {
		return nil, "", fmt.Errorf("failed to settle installment: %w", err)
	}
	return target, "", nil
}

// closeCovered marks the open installments paid for by the money received so
// far as completed by payment.
func (s *service) closeCovered(ctx context.Context, tx *repositories.Repositories, app *models.LoanApplication, payment *models.LoanPayment) error {
	payments, err := tx.Payments.ListByApplication(ctx, app.ID)
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}
	idx := covered(app, payments)
	for _, i := range idx {
		p := &payments[i]
		settledBy := payment.ID
		p.Status = models.PaymentCompleted
		p.SettledByID = &settledBy
		p.PaymentDate = payment.PaymentDate
		p.PaymentMethod = payment.PaymentMethod
		if err := tx.Payments.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to close installment: %w", err)
		}
	}
	if len(idx) > 0 {
		logrus.WithFields(logrus.Fields{
			"application_id": app.ID,
			"payment_id":     payment.ID,
			"closed":         len(idx),
		}).Debug("installments closed by payment")
	}
	return nil
}

func (s *service) settleFreeStanding(ctx context.Context, tx *repositories.Repositories, appID uint, target *models.LoanPayment, input PaymentInput, now time.Time) (*models.LoanPayment, string, error) {
	payment := freeStanding(appID, target, input, now)
	payment.Status = models.PaymentProcessing
	if err := tx.Payments.Create(ctx, payment); err != nil {
		return nil, "", fmt.Errorf("failed to create payment: %w", err)
	}

	res, err := s.gateway.Collect(ctx, settlement.CollectRequest{
		ApplicationID: appID,
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		Method:        input.PaymentMethod,
		MpesaNumber:   input.MpesaNumber,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to collect payment: %w", err)
	}

	apply(payment, res)
	if err := tx.Payments.Update(ctx, payment); err != nil {
		return nil, "", fmt.Errorf("failed to settle payment: %w", err)
	}
	return payment, res.FailureReason, nil
}

func (s *service) History(ctx context.Context, userID, appID uint) (*PaymentHistory, error) {
	app, err := application.Owned(ctx, s.repos, userID, appID, false)
	if err != nil {
		return nil, err
	}
	payments, err := s.repos.Payments.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	summary := summarize(app, payments, s.now())
	newestFirst := make([]models.LoanPayment, len(payments))
	for i, p := range payments {
		newestFirst[len(payments)-1-i] = p
	}
	return &PaymentHistory{Application: app, Payments: newestFirst, Summary: summary}, nil
}

func (s *service) SyncOverdue(ctx context.Context, appID uint, now time.Time) (int, error) {
	flipped, err := s.repos.Payments.MarkOverdue(ctx, appID, models.StartOfDay(now))
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue payments: %w", err)
	}
	payments, err := s.repos.Payments.ListByApplication(ctx, appID)
	if err != nil {
		return 0, fmt.Errorf("failed to list payments: %w", err)
	}

	count := 0
	for i := range payments {
		if isOverdue(&payments[i], now) {
			count++
		}
	}
	if flipped > 0 {
		logrus.WithFields(logrus.Fields{"application_id": appID, "flipped": flipped}).Info("installments marked overdue")
	}
	return count, nil
}

func (s *service) notify(ctx context.Context, userID uint, kind, title, message string) {
	if err := s.notifications.Notify(ctx, userID, kind, title, message); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "title": title}).
			Error("failed to send payment notification")
	}
}

func freeStanding(appID uint, target *models.LoanPayment, input PaymentInput, now time.Time) *models.LoanPayment {
	p := &models.LoanPayment{
		LoanApplicationID: appID,
		Amount:            input.Amount,
		DueDate:           models.StartOfDay(now),
		PaymentMethod:     input.PaymentMethod,
		MpesaNumber:       input.MpesaNumber,
	}
	if target != nil {
		p.DueDate = target.DueDate
		p.InstallmentNumber = target.InstallmentNumber
	}
	return p
}

func apply(p *models.LoanPayment, res settlement.Result) {
	p.TransactionID = res.TransactionID
	switch res.Status {
	case settlement.StatusCompleted:
		p.Status = models.PaymentCompleted
		at := res.SettledAt
		p.PaymentDate = &at
	case settlement.StatusProcessing:
		p.Status = models.PaymentProcessing
	default:
		p.Status = models.PaymentFailed
	}
}
