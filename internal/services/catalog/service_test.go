package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/repositories/cache"
	"quickloan/internal/repositories/memory"
)

func newTestService(t *testing.T) (Service, *repositories.Repositories, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cacheSvc := cache.NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	repos := memory.NewStore().Repositories()
	return NewService(repos.LoanTypes, cacheSvc), repos, mr
}

func validInput(name string) CreateInput {
	return CreateInput{
		Name:         name,
		Category:     models.CategoryMobile,
		InterestRate: decimal.NewFromInt(12),
		MinAmount:    decimal.NewFromInt(1000),
		MaxAmount:    decimal.NewFromInt(50000),
		MinTerm:      1,
		MaxTerm:      12,
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"missing name", func(in *CreateInput) { in.Name = " " }, "name"},
		{"unknown category", func(in *CreateInput) { in.Category = "payday" }, "category"},
		{"negative rate", func(in *CreateInput) { in.InterestRate = decimal.NewFromInt(-1) }, "interest_rate"},
		{"inverted amounts", func(in *CreateInput) { in.MaxAmount = decimal.NewFromInt(500) }, "max_amount"},
		{"inverted terms", func(in *CreateInput) { in.MinTerm = 24 }, "max_term"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput("Boda Loan")
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			require.Error(t, err)
			de, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidation, de.Kind)
			assert.Contains(t, de.Fields, tt.field)
		})
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput("Boda Loan"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validInput("Boda Loan"))
	assert.ErrorIs(t, err, ErrLoanTypeExists)
}

func TestListActive_CachedAndInvalidated(t *testing.T) {
	svc, _, mr := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput("Boda Loan"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput("Chama Loan"))
	require.NoError(t, err)

	items, err := svc.ListActive(ctx, models.CategoryMobile)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, mr.Exists("loan_types:active:mobile"))

	require.NoError(t, svc.Deactivate(ctx, first.ID))
	assert.False(t, mr.Exists("loan_types:active:mobile"))

	items, err = svc.ListActive(ctx, models.CategoryMobile)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chama Loan", items[0].Name)
	assert.True(t, items[0].InterestRate.Equal(decimal.NewFromInt(12)))
}

func TestGetActive_HidesInactive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	lt, err := svc.Create(ctx, validInput("Boda Loan"))
	require.NoError(t, err)

	got, err := svc.GetActive(ctx, lt.ID)
	require.NoError(t, err)
	assert.Equal(t, lt.Name, got.Name)

	require.NoError(t, svc.Deactivate(ctx, lt.ID))
	_, err = svc.GetActive(ctx, lt.ID)
	assert.ErrorIs(t, err, ErrLoanTypeNotFound)

	_, err = svc.GetActive(ctx, 9999)
	assert.ErrorIs(t, err, ErrLoanTypeNotFound)
}

func TestCategories(t *testing.T) {
	svc, _, _ := newTestService(t)
	cats := svc.Categories()
	require.Len(t, cats, 3)
	assert.Equal(t, Category{Code: "secured", Name: "Secured Loan"}, cats[0])
}

const seedYAML = `
loan_types:
  - name: Logbook Loan
    category: secured
    interest_rate: "14.50"
    min_amount: "5000"
    max_amount: "500000"
    min_term: 3
    max_term: 36
  - name: Quick Mobile Loan
    category: mobile
    interest_rate: 10
    min_amount: 1000
    max_amount: 20000
    min_term: 1
    max_term: 6
    is_active: false
`

func TestSeed_Idempotent(t *testing.T) {
	svc, repos, _ := newTestService(t)
	ctx := context.Background()

	items, err := ParseSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsActive)
	assert.False(t, items[1].IsActive)
	assert.Equal(t, "14.5", items[0].InterestRate.String())

	created, err := svc.Seed(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = svc.Seed(ctx, items)
	require.NoError(t, err)
	assert.Zero(t, created)

	all, err := repos.LoanTypes.List(ctx, false, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.ListActive(ctx, "")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Logbook Loan", active[0].Name)
}

func TestSeed_RejectsInvalidEntry(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Seed(context.Background(), []models.LoanType{{
		Name:      "Broken",
		Category:  models.CategorySecured,
		MinAmount: decimal.NewFromInt(1000),
		MaxAmount: decimal.NewFromInt(10),
		MinTerm:   1,
		MaxTerm:   1,
	}})
	assert.Error(t, err)
}
