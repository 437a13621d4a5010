package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"quickloan/internal/models"
)

// Service exposes the loan product catalog.
type Service interface {
	ListActive(ctx context.Context, category string) ([]models.LoanType, error)
	GetActive(ctx context.Context, id uint) (*models.LoanType, error)
	Categories() []Category

	// Admin operations
	Create(ctx context.Context, input CreateInput) (*models.LoanType, error)
	Deactivate(ctx context.Context, id uint) error
	Seed(ctx context.Context, items []models.LoanType) (int, error)
}

// Cache is the subset of the Redis cache used for the active listing.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	LoanTypesKey(category string) string
	InvalidateLoanTypes(ctx context.Context) error
}

type Category struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CreateInput struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Category     string          `json:"category" validate:"required,oneof=secured unsecured mobile"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	MinTerm      int             `json:"min_term" validate:"gte=1"`
	MaxTerm      int             `json:"max_term" validate:"gte=1"`
	Description  string          `json:"description"`
	Requirements string          `json:"requirements"`
}
