package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quickloan/internal/config"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/services/amortization"
	"quickloan/internal/services/catalog"
	"quickloan/internal/services/notification"
	"quickloan/internal/validation"
)

const defaultPageSize = 10

type service struct {
	repos         *repositories.Repositories
	catalog       catalog.Service
	notifications notification.Service
	config        config.LendingConfig
	now           func() time.Time
}

type Option func(*service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(
	repos *repositories.Repositories,
	catalogService catalog.Service,
	notifications notification.Service,
	cfg config.LendingConfig,
	opts ...Option,
) Service {
	if repos == nil {
		panic("repositories are required")
	}
	if catalogService == nil {
		panic("catalog service is required")
	}
	if notifications == nil {
		panic("notification service is required")
	}
	defaults := config.DefaultLending()
	if cfg.MinApplicationAmount.IsZero() {
		cfg.MinApplicationAmount = defaults.MinApplicationAmount
	}
	if cfg.MaxTermMonths <= 0 {
		cfg.MaxTermMonths = defaults.MaxTermMonths
	}
	if cfg.ScheduleInterval <= 0 {
		cfg.ScheduleInterval = defaults.ScheduleInterval
	}
	if cfg.Currency == "" {
		cfg.Currency = defaults.Currency
	}

	s := &service{
		repos:         repos,
		catalog:       catalogService,
		notifications: notifications,
		config:        cfg,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, userID, loanTypeID uint, input SubmitInput) (*models.LoanApplication, error) {
	if _, err := s.repos.Profiles.GetByUserID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileRequired
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	loanType, err := s.catalog.GetActive(ctx, loanTypeID)
	if err != nil {
		return nil, err
	}

	input.Purpose = strings.TrimSpace(input.Purpose)
	if err := s.validateSubmission(loanType, input); err != nil {
		return nil, err
	}

	previous, err := s.repos.Applications.CountByApplicant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	app := &models.LoanApplication{
		ApplicantID: userID,
		LoanTypeID:  loanType.ID,
		Amount:      input.Amount,
		TermMonths:  input.TermMonths,
		Purpose:     input.Purpose,
		Status:      models.ApplicationPending,
	}
	if err := s.repos.Applications.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	app.LoanType = loanType

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"applicant_id":   userID,
		"loan_type":      loanType.Name,
		"amount":         app.Amount.StringFixed(2),
		"term_months":    app.TermMonths,
	}).Info("loan application submitted")

	s.notify(ctx, userID, notification.TitleApplicationSubmitted,
		fmt.Sprintf("Your application for %s %s %s has been submitted successfully. We will review it within 24-48 hours.",
			loanType.Name, s.config.Currency, models.FormatAmount(app.Amount)))
	if previous == 0 {
		s.notify(ctx, userID, notification.TitleWelcome,
			"Thank you for choosing QuickLoan. Upload your verification documents to speed up the review of your application.")
	}
	return app, nil
}

func (s *service) validateSubmission(lt *models.LoanType, input SubmitInput) error {
	v := validation.New()
	cur := s.config.Currency

	v.Check(input.Amount.GreaterThanOrEqual(s.config.MinApplicationAmount), "amount",
		fmt.Sprintf("Minimum loan amount is %s %s", cur, models.FormatAmount(s.config.MinApplicationAmount)))
	v.AmountRange("amount", input.Amount, lt.MinAmount, lt.MaxAmount,
		fmt.Sprintf("Amount must be between %s %s and %s %s for this loan type",
			cur, models.FormatAmount(lt.MinAmount), cur, models.FormatAmount(lt.MaxAmount)))

	v.IntRange("term_months", input.TermMonths, 1, s.config.MaxTermMonths,
		fmt.Sprintf("Loan term must be between 1 and %d months", s.config.MaxTermMonths))
	v.IntRange("term_months", input.TermMonths, lt.MinTerm, lt.MaxTerm,
		fmt.Sprintf("Loan term must be between %d and %d months for this loan type", lt.MinTerm, lt.MaxTerm))

	v.Check(input.Purpose != "", "purpose", "Please describe the purpose of the loan")
	return v.Err()
}

func (s *service) Get(ctx context.Context, userID, id uint) (*models.LoanApplication, error) {
	return Owned(ctx, s.repos, userID, id, false)
}

func (s *service) History(ctx context.Context, userID uint, page, limit int) ([]models.LoanApplication, int64, error) {
	offset, limit := window(page, limit)
	apps, total, err := s.repos.Applications.ListByApplicant(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}

func (s *service) ListForReview(ctx context.Context, status string, page, limit int) ([]models.LoanApplication, int64, error) {
	if _, ok := models.ApplicationStatusNames[status]; status != "" && !ok {
		return nil, 0, ErrUnknownStatus
	}
	offset, limit := window(page, limit)
	apps, total, err := s.repos.Applications.ListByStatus(ctx, status, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, total, nil
}

func (s *service) StartReview(ctx context.Context, id, adminID uint) (*models.LoanApplication, error) {
	app, err := s.move(ctx, id, adminID, models.ApplicationUnderReview, nil)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, app.ApplicantID, notification.TitleUnderReview,
		fmt.Sprintf("Your %s application is now under review.", app.LoanName()))
	return app, nil
}

func (s *service) RequestInfo(ctx context.Context, id, adminID uint, note string) (*models.LoanApplication, error) {
	app, err := s.move(ctx, id, adminID, models.ApplicationMoreInfo, nil)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("We need more information to process your %s application.", app.LoanName())
	if note = strings.TrimSpace(note); note != "" {
		msg += " " + note
	}
	s.notify(ctx, app.ApplicantID, notification.TitleMoreInfo, msg)
	return app, nil
}

func (s *service) Reject(ctx context.Context, id, adminID uint, reason string) (*models.LoanApplication, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		if s.config.RequireRejectionReason {
			return nil, ErrRejectionReasonRequired
		}
		logrus.WithFields(logrus.Fields{"application_id": id, "admin_id": adminID}).
			Warn("application rejected without a reason")
	}

	app, err := s.move(ctx, id, adminID, models.ApplicationRejected, func(app *models.LoanApplication) {
		app.RejectionReason = reason
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Unfortunately, your %s application has been rejected.", app.LoanName())
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notify(ctx, app.ApplicantID, notification.TitleRejected, msg)
	return app, nil
}

// Approve is idempotent. A second call returns the stored schedule without
// writing anything; the quote and the schedule are each produced at most
// once and payment rows are never deleted.
func (s *service) Approve(ctx context.Context, id, adminID uint) (*ScheduleResult, error) {
	var result *ScheduleResult
	err := s.repos.ExecuteInTransaction(ctx, func(tx *repositories.Repositories) error {
		app, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}

		if app.IsApproved() {
			payments, err := tx.Payments.ListByApplication(ctx, app.ID)
			if err != nil {
				return fmt.Errorf("failed to load schedule: %w", err)
			}
			result = &ScheduleResult{Application: app, Payments: payments, AlreadyApproved: true}
			return nil
		}
		if err := checkTransition(app.Status, models.ApplicationApproved); err != nil {
			return err
		}

		if app.MonthlyInstallment == nil || app.TotalRepayment == nil {
			quote, err := amortization.Calculate(app.Amount, app.LoanType.InterestRate, app.TermMonths)
			if err != nil {
				return err
			}
			app.MonthlyInstallment = &quote.MonthlyInstallment
			app.TotalRepayment = &quote.TotalRepayment
		}

		now := s.now()
		app.Status = models.ApplicationApproved
		app.ApprovedDate = &now
		app.ApprovedBy = &adminID
		if err := tx.Applications.Update(ctx, app); err != nil {
			return fmt.Errorf("failed to approve application: %w", err)
		}

		existing, err := tx.Payments.CountByApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		if existing == 0 {
			schedule := amortization.Schedule(app.ID, *app.MonthlyInstallment, app.TermMonths, now, s.config.ScheduleInterval)
			if err := tx.Payments.CreateBatch(ctx, schedule); err != nil {
				return fmt.Errorf("failed to create payment schedule: %w", err)
			}
		}

		payments, err := tx.Payments.ListByApplication(ctx, app.ID)
		if err != nil {
			return fmt.Errorf("failed to load schedule: %w", err)
		}
		result = &ScheduleResult{Application: app, Payments: payments}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyApproved {
		logrus.WithField("application_id", id).Info("application already approved")
		return result, nil
	}

	app := result.Application
	logrus.WithFields(logrus.Fields{
		"application_id":      app.ID,
		"admin_id":            adminID,
		"monthly_installment": app.MonthlyInstallment.StringFixed(2),
		"total_repayment":     app.TotalRepayment.StringFixed(2),
		"installments":        len(result.Payments),
	}).Info("application approved")

	s.notify(ctx, app.ApplicantID, notification.TitleApproved,
		fmt.Sprintf("Congratulations! Your %s application for %s %s has been approved. Monthly installment: %s %s for %d months. You can now withdraw the funds to your M-Pesa account.",
			app.LoanName(), s.config.Currency, models.FormatAmount(app.Amount),
			s.config.Currency, models.FormatAmount(*app.MonthlyInstallment), app.TermMonths))
	return result, nil
}

// move applies a plain status transition under the row lock.
func (s *service) move(ctx context.Context, id, adminID uint, to string, mutate func(*models.LoanApplication)) (*models.LoanApplication, error) {
	var app *models.LoanApplication
	err := s.repos.ExecuteInTransaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		app, err = s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(app.Status, to); err != nil {
			return err
		}

		from := app.Status
		app.Status = to
		if mutate != nil {
			mutate(app)
		}
		if err := tx.Applications.Update(ctx, app); err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"application_id": app.ID,
			"admin_id":       adminID,
			"from":           from,
			"to":             to,
		}).Info("application status changed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *service) lock(ctx context.Context, tx *repositories.Repositories, id uint) (*models.LoanApplication, error) {
	app, err := tx.Applications.GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to lock application: %w", err)
	}
	if app.LoanType == nil {
		lt, err := tx.LoanTypes.GetByID(ctx, app.LoanTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load loan type: %w", err)
		}
		app.LoanType = lt
	}
	return app, nil
}

func (s *service) notify(ctx context.Context, userID uint, title, message string) {
	if err := s.notifications.Notify(ctx, userID, models.NotificationApplicationUpdate, title, message); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "title": title}).
			Error("failed to send application notification")
	}
}

func window(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return (page - 1) * limit, limit
}
