package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/validation"
)

var categoryOrder = []string{models.CategorySecured, models.CategoryUnsecured, models.CategoryMobile}

type service struct {
	loanTypes repositories.LoanTypeRepository
	cache     Cache
}

// NewService creates the catalog service. cache may be nil.
func NewService(loanTypes repositories.LoanTypeRepository, cache Cache) Service {
	if loanTypes == nil {
		panic("loan type repository is required")
	}
	return &service{loanTypes: loanTypes, cache: cache}
}

func (s *service) ListActive(ctx context.Context, category string) ([]models.LoanType, error) {
	if category != "" {
		if _, ok := models.LoanCategories[category]; !ok {
			category = ""
		}
	}

	if s.cache != nil {
		var cached []models.LoanType
		found, err := s.cache.Get(ctx, s.cache.LoanTypesKey(category), &cached)
		if err != nil {
			logrus.WithError(err).Warn("failed to read loan catalog from cache")
		} else if found {
			return cached, nil
		}
	}

	items, err := s.loanTypes.List(ctx, true, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan types: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.LoanTypesKey(category), items); err != nil {
			logrus.WithError(err).Warn("failed to cache loan catalog")
		}
	}
	return items, nil
}

func (s *service) GetActive(ctx context.Context, id uint) (*models.LoanType, error) {
	lt, err := s.loanTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLoanTypeNotFound) {
			return nil, ErrLoanTypeNotFound
		}
		return nil, fmt.Errorf("failed to get loan type: %w", err)
	}
	if !lt.IsActive {
		return nil, ErrLoanTypeNotFound
	}
	return lt, nil
}

func (s *service) Categories() []Category {
	out := make([]Category, 0, len(categoryOrder))
	for _, code := range categoryOrder {
		out = append(out, Category{Code: code, Name: models.LoanCategories[code]})
	}
	return out
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.LoanType, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	lt := &models.LoanType{
		Name:         input.Name,
		Category:     input.Category,
		InterestRate: input.InterestRate,
		MinAmount:    input.MinAmount,
		MaxAmount:    input.MaxAmount,
		MinTerm:      input.MinTerm,
		MaxTerm:      input.MaxTerm,
		Description:  input.Description,
		Requirements: input.Requirements,
		IsActive:     true,
	}
	if err := s.loanTypes.Create(ctx, lt); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrLoanTypeExists
		}
		return nil, fmt.Errorf("failed to create loan type: %w", err)
	}
	s.invalidate(ctx)

	logrus.WithFields(logrus.Fields{
		"loan_type_id": lt.ID,
		"name":         lt.Name,
		"category":     lt.Category,
	}).Info("loan type created")
	return lt, nil
}

func (s *service) Deactivate(ctx context.Context, id uint) error {
	lt, err := s.loanTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrLoanTypeNotFound) {
			return ErrLoanTypeNotFound
		}
		return fmt.Errorf("failed to get loan type: %w", err)
	}
	if !lt.IsActive {
		return nil
	}

	lt.IsActive = false
	if err := s.loanTypes.Update(ctx, lt); err != nil {
		return fmt.Errorf("failed to deactivate loan type: %w", err)
	}
	s.invalidate(ctx)

	logrus.WithField("loan_type_id", id).Info("loan type deactivated")
	return nil
}

// Seed creates every entry whose name is not in the catalog yet and returns
// the number created. Existing entries are left untouched.
func (s *service) Seed(ctx context.Context, items []models.LoanType) (int, error) {
	created := 0
	for i := range items {
		item := items[i]
		item.Name = strings.TrimSpace(item.Name)

		if _, err := s.loanTypes.GetByName(ctx, item.Name); err == nil {
			continue
		} else if !errors.Is(err, repositories.ErrLoanTypeNotFound) {
			return created, fmt.Errorf("failed to look up loan type %q: %w", item.Name, err)
		}

		if err := validateInput(inputFromModel(item)); err != nil {
			return created, fmt.Errorf("invalid loan type %q: %w", item.Name, err)
		}
		item.ID = 0
		if err := s.loanTypes.Create(ctx, &item); err != nil {
			return created, fmt.Errorf("failed to seed loan type %q: %w", item.Name, err)
		}
		created++
	}

	if created > 0 {
		s.invalidate(ctx)
	}
	logrus.WithFields(logrus.Fields{"created": created, "total": len(items)}).Info("loan catalog seeded")
	return created, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLoanTypes(ctx); err != nil {
		logrus.WithError(err).Warn("failed to invalidate loan catalog cache")
	}
}

func inputFromModel(lt models.LoanType) CreateInput {
	return CreateInput{
		Name:         lt.Name,
		Category:     lt.Category,
		InterestRate: lt.InterestRate,
		MinAmount:    lt.MinAmount,
		MaxAmount:    lt.MaxAmount,
		MinTerm:      lt.MinTerm,
		MaxTerm:      lt.MaxTerm,
	}
}

func validateInput(input CreateInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	v := validation.New()
	v.Check(!input.InterestRate.IsNegative(), "interest_rate", "interest rate cannot be negative")
	v.Check(input.MinAmount.IsPositive(), "min_amount", "minimum amount must be greater than zero")
	v.Check(input.MaxAmount.GreaterThanOrEqual(input.MinAmount), "max_amount", "maximum amount must not be below the minimum amount")
	v.Check(input.MaxTerm >= input.MinTerm, "max_term", "maximum term must not be below the minimum term")
	v.Check(input.InterestRate.LessThan(decimal.NewFromInt(1000)), "interest_rate", "interest rate is out of range")
	return v.Err()
}
