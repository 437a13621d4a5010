package repositories

import (
	"context"

	"gorm.io/gorm"

	"quickloan/internal/models"
)

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.BorrowerProfile, error) {
	var p models.BorrowerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err, ErrProfileNotFound)
	}
	return &p, nil
}

func (r *profileRepository) GetByIDNumber(ctx context.Context, idNumber string) (*models.BorrowerProfile, error) {
	var p models.BorrowerProfile
	if err := r.db.WithContext(ctx).Where("id_number = ?", idNumber).First(&p).Error; err != nil {
		return nil, translate(err, ErrProfileNotFound)
	}
	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *models.BorrowerProfile) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, ErrProfileNotFound)
}

func (r *profileRepository) Update(ctx context.Context, p *models.BorrowerProfile) error {
	return translate(r.db.WithContext(ctx).Save(p).Error, ErrProfileNotFound)
}
