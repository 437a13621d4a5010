package repositories

import (
	"context"

	"gorm.io/gorm"

	"quickloan/internal/models"
)

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

// Create returns ErrDuplicate when the application already has a withdrawal.
func (r *withdrawalRepository) Create(ctx context.Context, w *models.LoanWithdrawal) error {
	return translate(r.db.WithContext(ctx).Create(w).Error, ErrWithdrawalNotFound)
}

func (r *withdrawalRepository) Update(ctx context.Context, w *models.LoanWithdrawal) error {
	return translate(r.db.WithContext(ctx).Save(w).Error, ErrWithdrawalNotFound)
}

func (r *withdrawalRepository) GetByApplication(ctx context.Context, applicationID uint) (*models.LoanWithdrawal, error) {
	var w models.LoanWithdrawal
	if err := r.db.WithContext(ctx).Where("loan_application_id = ?", applicationID).First(&w).Error; err != nil {
		return nil, translate(err, ErrWithdrawalNotFound)
	}
	return &w, nil
}
