package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickloan/internal/config"
	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/repositories/memory"
	"quickloan/internal/services/catalog"
	"quickloan/internal/services/notification"
)

var approvedAt = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

type env struct {
	svc      Service
	repos    *repositories.Repositories
	notifier notification.Service
	loanType *models.LoanType
	borrower uint
	other    uint
	admin    uint
}

func newEnv(t *testing.T, cfg config.LendingConfig) *env {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	notifier := notification.NewService(repos.Notifications, repos.Users, nil, notification.Config{})
	cat := catalog.NewService(repos.LoanTypes, nil)

	lt, err := cat.Create(ctx, catalog.CreateInput{
		Name:         "Personal Loan",
		Category:     models.CategoryUnsecured,
		InterestRate: decimal.NewFromInt(12),
		MinAmount:    decimal.NewFromInt(1000),
		MaxAmount:    decimal.NewFromInt(100000),
		MinTerm:      3,
		MaxTerm:      24,
	})
	require.NoError(t, err)

	e := &env{
		svc:      NewService(repos, cat, notifier, cfg, WithClock(func() time.Time { return approvedAt })),
		repos:    repos,
		notifier: notifier,
		loanType: lt,
	}
	e.borrower = e.user(t, "borrower@example.com", true)
	e.other = e.user(t, "other@example.com", true)
	e.admin = e.user(t, "admin@example.com", false)
	return e
}

func (e *env) user(t *testing.T, email string, withProfile bool) uint {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Email: email, Password: "hash", IsActive: true}
	require.NoError(t, e.repos.Users.Create(ctx, u))
	if withProfile {
		require.NoError(t, e.repos.Profiles.Create(ctx, &models.BorrowerProfile{
			UserID:           u.ID,
			IDNumber:         email,
			PhoneNumber:      "254712345678",
			EmploymentStatus: models.EmploymentEmployed,
		}))
	}
	return u.ID
}

func (e *env) submit(t *testing.T) *models.LoanApplication {
	t.Helper()
	app, err := e.svc.Submit(context.Background(), e.borrower, e.loanType.ID, SubmitInput{
		Amount:     decimal.NewFromInt(10000),
		TermMonths: 12,
		Purpose:    "School fees",
	})
	require.NoError(t, err)
	return app
}

func (e *env) titles(t *testing.T, userID uint) []string {
	t.Helper()
	items, _, err := e.notifier.List(context.Background(), userID, 1, 50)
	require.NoError(t, err)
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.Title)
	}
	return out
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.ApplicationPending, models.ApplicationUnderReview, true},
		{models.ApplicationPending, models.ApplicationApproved, true},
		{models.ApplicationUnderReview, models.ApplicationMoreInfo, true},
		{models.ApplicationUnderReview, models.ApplicationPending, false},
		{models.ApplicationMoreInfo, models.ApplicationUnderReview, true},
		{models.ApplicationMoreInfo, models.ApplicationRejected, true},
		{models.ApplicationApproved, models.ApplicationRejected, false},
		{models.ApplicationRejected, models.ApplicationApproved, false},
		{models.ApplicationRejected, models.ApplicationUnderReview, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestSubmit_RequiresProfile(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	_, err := e.svc.Submit(context.Background(), e.admin, e.loanType.ID, SubmitInput{
		Amount: decimal.NewFromInt(5000), TermMonths: 6, Purpose: "x",
	})
	assert.ErrorIs(t, err, ErrProfileRequired)
}

func TestSubmit_Validation(t *testing.T) {
	e := newEnv(t, config.DefaultLending())

	tests := []struct {
		name  string
		input SubmitInput
		field string
		msg   string
	}{
		{
			name:  "below platform minimum",
			input: SubmitInput{Amount: decimal.NewFromInt(999), TermMonths: 12, Purpose: "x"},
			field: "amount",
			msg:   "Minimum loan amount is KSh 1,000.00",
		},
		{
			name:  "above loan type maximum",
			input: SubmitInput{Amount: decimal.NewFromInt(100001), TermMonths: 12, Purpose: "x"},
			field: "amount",
			msg:   "Amount must be between KSh 1,000.00 and KSh 100,000.00 for this loan type",
		},
		{
			name:  "term below loan type minimum",
			input: SubmitInput{Amount: decimal.NewFromInt(5000), TermMonths: 1, Purpose: "x"},
			field: "term_months",
			msg:   "Loan term must be between 3 and 24 months for this loan type",
		},
		{
			name:  "term above platform maximum",
			input: SubmitInput{Amount: decimal.NewFromInt(5000), TermMonths: 361, Purpose: "x"},
			field: "term_months",
			msg:   "Loan term must be between 1 and 360 months",
		},
		{
			name:  "blank purpose",
			input: SubmitInput{Amount: decimal.NewFromInt(5000), TermMonths: 12, Purpose: "   "},
			field: "purpose",
			msg:   "Please describe the purpose of the loan",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Submit(context.Background(), e.borrower, e.loanType.ID, tt.input)
			de, ok := apperrors.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, apperrors.KindValidation, de.Kind)
			assert.Equal(t, tt.msg, de.Fields[tt.field])
		})
	}
}

func TestSubmit_BoundsAreInclusive(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	for _, in := range []SubmitInput{
		{Amount: decimal.NewFromInt(1000), TermMonths: 3, Purpose: "min"},
		{Amount: decimal.NewFromInt(100000), TermMonths: 24, Purpose: "max"},
	} {
		_, err := e.svc.Submit(context.Background(), e.borrower, e.loanType.ID, in)
		assert.NoError(t, err)
	}
}

func TestSubmit_InactiveLoanType(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	lt := *e.loanType
	lt.IsActive = false
	require.NoError(t, e.repos.LoanTypes.Update(context.Background(), &lt))

	_, err := e.svc.Submit(context.Background(), e.borrower, lt.ID, SubmitInput{
		Amount: decimal.NewFromInt(5000), TermMonths: 6, Purpose: "x",
	})
	assert.ErrorIs(t, err, catalog.ErrLoanTypeNotFound)
}

func TestSubmit_WelcomeOnlyOnFirstApplication(t *testing.T) {
	e := newEnv(t, config.DefaultLending())

	app := e.submit(t)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Nil(t, app.MonthlyInstallment)
	assert.ElementsMatch(t, []string{notification.TitleApplicationSubmitted, notification.TitleWelcome}, e.titles(t, e.borrower))

	e.submit(t)
	assert.Len(t, e.titles(t, e.borrower), 3)
}

func TestGet_Ownership(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	app := e.submit(t)
	ctx := context.Background()

	got, err := e.svc.Get(ctx, e.borrower, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LoanType)
	assert.Equal(t, "Personal Loan", got.LoanType.Name)

	_, err = e.svc.Get(ctx, e.other, app.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = e.svc.Get(ctx, e.borrower, 424242)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApprove_GeneratesScheduleOnce(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	app := e.submit(t)
	ctx := context.Background()

	res, err := e.svc.Approve(ctx, app.ID, e.admin)
	require.NoError(t, err)
	assert.False(t, res.AlreadyApproved)
	assert.Equal(t, models.ApplicationApproved, res.Application.Status)
	assert.Equal(t, "888.49", res.Application.MonthlyInstallment.StringFixed(2))
	assert.Equal(t, "10661.88", res.Application.TotalRepayment.StringFixed(2))
	require.NotNil(t, res.Application.ApprovedBy)
	assert.Equal(t, e.admin, *res.Application.ApprovedBy)

	require.Len(t, res.Payments, 12)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for i, p := range res.Payments {
		assert.Equal(t, i+1, p.InstallmentNumber)
		assert.Equal(t, day.AddDate(0, 0, 30*(i+1)), p.DueDate)
		assert.Equal(t, models.PaymentPending, p.Status)
		assert.True(t, p.IsInstallment)
	}

	again, err := e.svc.Approve(ctx, app.ID, e.admin)
	require.NoError(t, err)
	assert.True(t, again.AlreadyApproved)
	assert.Len(t, again.Payments, 12)

	count, err := e.repos.Payments.CountByApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), count)

	approvals := 0
	for _, title := range e.titles(t, e.borrower) {
		if title == notification.TitleApproved {
			approvals++
		}
	}
	assert.Equal(t, 1, approvals)
}

func TestApprove_KeepsExistingQuoteAndPayments(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	app := e.submit(t)
	ctx := context.Background()

	installment := decimal.RequireFromString("900.00")
	total := decimal.RequireFromString("10800.00")
	stored, err := e.repos.Applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	stored.MonthlyInstallment = &installment
	stored.TotalRepayment = &total
	require.NoError(t, e.repos.Applications.Update(ctx, stored))
	require.NoError(t, e.repos.Payments.Create(ctx, &models.LoanPayment{
		LoanApplicationID: app.ID,
		Amount:            installment,
		DueDate:           approvedAt,
		Status:            models.PaymentPending,
		IsInstallment:     true,
		InstallmentNumber: 1,
	}))

	res, err := e.svc.Approve(ctx, app.ID, e.admin)
	require.NoError(t, err)
	assert.Equal(t, "900.00", res.Application.MonthlyInstallment.StringFixed(2))
	assert.Len(t, res.Payments, 1)
}

func TestApprove_FromTerminalState(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	app := e.submit(t)
	ctx := context.Background()

	_, err := e.svc.Reject(ctx, app.ID, e.admin, "Insufficient income")
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, app.ID, e.admin)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "Cannot change application status from rejected to approved", err.Error())

	count, err := e.repos.Payments.CountByApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReviewFlow(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	app := e.submit(t)
	ctx := context.Background()

	got, err := e.svc.StartReview(ctx, app.ID, e.admin)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationUnderReview, got.Status)

	got, err = e.svc.RequestInfo(ctx, app.ID, e.admin, "Please upload a recent payslip.")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationMoreInfo, got.Status)

	_, err = e.svc.RequestInfo(ctx, app.ID, e.admin, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	got, err = e.svc.StartReview(ctx, app.ID, e.admin)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationUnderReview, got.Status)

	titles := e.titles(t, e.borrower)
	assert.Contains(t, titles, notification.TitleUnderReview)
	assert.Contains(t, titles, notification.TitleMoreInfo)
}

func TestReject_Reason(t *testing.T) {
	t.Run("optional by default", func(t *testing.T) {
		e := newEnv(t, config.DefaultLending())
		app := e.submit(t)

		got, err := e.svc.Reject(context.Background(), app.ID, e.admin, "  ")
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationRejected, got.Status)
		assert.Empty(t, got.RejectionReason)
	})

	t.Run("required when configured", func(t *testing.T) {
		cfg := config.DefaultLending()
		cfg.RequireRejectionReason = true
		e := newEnv(t, cfg)
		app := e.submit(t)

		_, err := e.svc.Reject(context.Background(), app.ID, e.admin, "")
		assert.ErrorIs(t, err, ErrRejectionReasonRequired)

		got, err := e.svc.Reject(context.Background(), app.ID, e.admin, "Incomplete documents")
		require.NoError(t, err)
		assert.Equal(t, "Incomplete documents", got.RejectionReason)
	})
}

func TestListForReview(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	ctx := context.Background()
	first := e.submit(t)
	e.submit(t)

	_, err := e.svc.StartReview(ctx, first.ID, e.admin)
	require.NoError(t, err)

	pending, total, err := e.svc.ListForReview(ctx, models.ApplicationPending, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, pending, 1)

	_, total, err = e.svc.ListForReview(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, _, err = e.svc.ListForReview(ctx, "archived", 1, 10)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestHistory_Paginated(t *testing.T) {
	e := newEnv(t, config.DefaultLending())
	for i := 0; i < 12; i++ {
		e.submit(t)
	}

	apps, total, err := e.svc.History(context.Background(), e.borrower, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, apps, 2)
}
