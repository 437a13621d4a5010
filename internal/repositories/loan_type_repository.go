package repositories

import (
	"context"

	"gorm.io/gorm"

	"quickloan/internal/models"
)

type loanTypeRepository struct {
	db *gorm.DB
}

func NewLoanTypeRepository(db *gorm.DB) LoanTypeRepository {
	return &loanTypeRepository{db: db}
}

func (r *loanTypeRepository) Create(ctx context.Context, lt *models.LoanType) error {
	// Select("*") so an explicit IsActive=false is written instead of skipped.
	return translate(r.db.WithContext(ctx).Select("*").Omit("id").Create(lt).Error, ErrLoanTypeNotFound)
}

func (r *loanTypeRepository) GetByID(ctx context.Context, id uint) (*models.LoanType, error) {
	var lt models.LoanType
	if err := r.db.WithContext(ctx).First(&lt, id).Error; err != nil {
		return nil, translate(err, ErrLoanTypeNotFound)
	}
	return &lt, nil
}

func (r *loanTypeRepository) GetByName(ctx context.Context, name string) (*models.LoanType, error) {
	var lt models.LoanType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&lt).Error; err != nil {
		return nil, translate(err, ErrLoanTypeNotFound)
	}
	return &lt, nil
}

func (r *loanTypeRepository) List(ctx context.Context, activeOnly bool, category string) ([]models.LoanType, error) {
	q := r.db.WithContext(ctx).Model(&models.LoanType{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var types []models.LoanType
	if err := q.Order("name ASC").Find(&types).Error; err != nil {
		return nil, translate(err, ErrLoanTypeNotFound)
	}
	return types, nil
}

func (r *loanTypeRepository) Update(ctx context.Context, lt *models.LoanType) error {
	return translate(r.db.WithContext(ctx).Save(lt).Error, ErrLoanTypeNotFound)
}
