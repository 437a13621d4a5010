package withdrawal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quickloan/internal/config"
	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/repositories/memory"
	"quickloan/internal/services/application"
	"quickloan/internal/services/catalog"
	"quickloan/internal/services/notification"
	"quickloan/internal/services/settlement"
)

var (
	approvedAt  = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	disbursedAt = time.Date(2024, 1, 2, 9, 15, 30, 0, time.UTC)
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Collect(ctx context.Context, req settlement.CollectRequest) (settlement.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(settlement.Result), args.Error(1)
}

func (m *MockGateway) Disburse(ctx context.Context, req settlement.DisburseRequest) (settlement.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(settlement.Result), args.Error(1)
}

type env struct {
	repos    *repositories.Repositories
	notifier notification.Service
	apps     application.Service
	borrower uint
	other    uint
	loanType uint
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	notifier := notification.NewService(repos.Notifications, repos.Users, nil, notification.Config{})
	cat := catalog.NewService(repos.LoanTypes, nil)

	lt, err := cat.Create(ctx, catalog.CreateInput{
		Name:         "Mobile Loan",
		Category:     models.CategoryMobile,
		InterestRate: decimal.NewFromInt(12),
		MinAmount:    decimal.NewFromInt(1000),
		MaxAmount:    decimal.NewFromInt(50000),
		MinTerm:      1,
		MaxTerm:      12,
	})
	require.NoError(t, err)

	e := &env{
		repos:    repos,
		notifier: notifier,
		apps: application.NewService(repos, cat, notifier, config.DefaultLending(),
			application.WithClock(func() time.Time { return approvedAt })),
		loanType: lt.ID,
	}
	ids := make([]uint, 0, 2)
	for _, email := range []string{"borrower@example.com", "other@example.com"} {
		u := &models.User{Email: email, Password: "hash", IsActive: true}
		require.NoError(t, repos.Users.Create(ctx, u))
		require.NoError(t, repos.Profiles.Create(ctx, &models.BorrowerProfile{
			UserID:           u.ID,
			IDNumber:         email,
			PhoneNumber:      "254712345678",
			EmploymentStatus: models.EmploymentEmployed,
		}))
		ids = append(ids, u.ID)
	}
	e.borrower, e.other = ids[0], ids[1]
	return e
}

func (e *env) application(t *testing.T, approve bool) uint {
	t.Helper()
	ctx := context.Background()
	app, err := e.apps.Submit(ctx, e.borrower, e.loanType, application.SubmitInput{
		Amount:     decimal.NewFromInt(10000),
		TermMonths: 12,
		Purpose:    "Boda boda",
	})
	require.NoError(t, err)
	if approve {
		_, err = e.apps.Approve(ctx, app.ID, 999)
		require.NoError(t, err)
	}
	return app.ID
}

func (e *env) simulated() Service {
	return NewService(e.repos, settlement.NewSimulatedWithClock(func() time.Time { return disbursedAt }), e.notifier, config.DefaultLending())
}

func (e *env) messages(t *testing.T) map[string]string {
	t.Helper()
	items, _, err := e.notifier.List(context.Background(), e.borrower, 1, 100)
	require.NoError(t, err)
	out := map[string]string{}
	for _, n := range items {
		out[n.Title] = n.Message
	}
	return out
}

func TestDisburse_Success(t *testing.T) {
	e := newEnv(t)
	appID := e.application(t, true)
	svc := e.simulated()

	w, err := svc.Disburse(context.Background(), e.borrower, appID, " 254712345678 ")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalCompleted, w.Status)
	assert.Equal(t, "MP20240102091530", w.TransactionID)
	assert.Equal(t, "254712345678", w.MpesaNumber)
	assert.True(t, w.Amount.Equal(decimal.NewFromInt(10000)))
	require.NotNil(t, w.ProcessedDate)
	assert.Equal(t, disbursedAt, *w.ProcessedDate)

	msgs := e.messages(t)
	assert.Equal(t,
		"KSh 10,000.00 has been sent to your M-Pesa number 254712345678. Transaction ID: MP20240102091530. Funds should arrive within 5 minutes.",
		msgs[notification.TitleDisbursed])
	assert.Equal(t,
		"Your payment schedule has been created. First payment of KSh 888.49 is due on January 31, 2024.",
		msgs[notification.TitleScheduleCreated])

	got, err := svc.Get(context.Background(), e.borrower, appID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
}

func TestDisburse_OnlyOnce(t *testing.T) {
	e := newEnv(t)
	appID := e.application(t, true)
	svc := e.simulated()
	ctx := context.Background()

	first, err := svc.Disburse(ctx, e.borrower, appID, "254712345678")
	require.NoError(t, err)

	_, err = svc.Disburse(ctx, e.borrower, appID, "254799999999")
	require.ErrorIs(t, err, ErrAlreadyWithdrawn)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Equal(t, "Funds have already been withdrawn for this loan.", err.Error())

	w, err := e.repos.Withdrawals.GetByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, w.ID)
	assert.Equal(t, "254712345678", w.MpesaNumber)
}

func TestDisburse_Preconditions(t *testing.T) {
	e := newEnv(t)
	approved := e.application(t, true)
	pending := e.application(t, false)
	svc := e.simulated()
	ctx := context.Background()

	_, err := svc.Disburse(ctx, e.borrower, pending, "254712345678")
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = svc.Disburse(ctx, e.other, approved, "254712345678")
	assert.ErrorIs(t, err, application.ErrNotOwner)

	_, err = svc.Disburse(ctx, e.borrower, 4040, "254712345678")
	assert.ErrorIs(t, err, application.ErrApplicationNotFound)

	for _, number := range []string{"", "0712345678", "254812345678", "2547123456789"} {
		_, err = svc.Disburse(ctx, e.borrower, approved, number)
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation), "number %q", number)
	}

	_, err = svc.Get(ctx, e.borrower, approved)
	assert.ErrorIs(t, err, ErrWithdrawalNotFound)
}

func TestDisburse_DeclinedCanBeRetried(t *testing.T) {
	e := newEnv(t)
	appID := e.application(t, true)
	ctx := context.Background()

	gw := new(MockGateway)
	gw.On("Disburse", mock.Anything, mock.Anything).
		Return(settlement.Result{Status: settlement.StatusFailed, FailureReason: "number not registered"}, nil).Once()
	gw.On("Disburse", mock.Anything, mock.MatchedBy(func(req settlement.DisburseRequest) bool {
		return req.MpesaNumber == "254700000001"
	})).Return(settlement.Result{Status: settlement.StatusCompleted, TransactionID: "MP1", SettledAt: disbursedAt}, nil).Once()
	svc := NewService(e.repos, gw, e.notifier, config.DefaultLending())

	w, err := svc.Disburse(ctx, e.borrower, appID, "254712345678")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalFailed, w.Status)
	assert.Equal(t, "number not registered", w.FailureReason)
	assert.Contains(t, e.messages(t), notification.TitleDisbursementFailed)

	retry, err := svc.Disburse(ctx, e.borrower, appID, "254700000001")
	require.NoError(t, err)
	assert.Equal(t, w.ID, retry.ID)
	assert.Equal(t, models.WithdrawalCompleted, retry.Status)
	assert.Empty(t, retry.FailureReason)
	gw.AssertExpectations(t)
}

func TestDisburse_GatewayErrorRollsBack(t *testing.T) {
	e := newEnv(t)
	appID := e.application(t, true)
	ctx := context.Background()

	gw := new(MockGateway)
	gw.On("Disburse", mock.Anything, mock.Anything).Return(settlement.Result{}, errors.New("timeout")).Once()
	svc := NewService(e.repos, gw, e.notifier, config.DefaultLending())

	_, err := svc.Disburse(ctx, e.borrower, appID, "254712345678")
	require.Error(t, err)

	_, err = e.repos.Withdrawals.GetByApplication(ctx, appID)
	assert.ErrorIs(t, err, repositories.ErrWithdrawalNotFound)
}
