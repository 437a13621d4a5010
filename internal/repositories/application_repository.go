package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quickloan/internal/models"
)

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.LoanApplication) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error, ErrApplicationNotFound)
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var app models.LoanApplication
	if err := r.db.WithContext(ctx).Preload("LoanType").First(&app, id).Error; err != nil {
		return nil, translate(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *applicationRepository) GetForUpdate(ctx context.Context, id uint) (*models.LoanApplication, error) {
	var app models.LoanApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&app, id).Error
	if err != nil {
		return nil, translate(err, ErrApplicationNotFound)
	}

	var lt models.LoanType
	if err := r.db.WithContext(ctx).First(&lt, app.LoanTypeID).Error; err != nil {
		return nil, translate(err, ErrLoanTypeNotFound)
	}
	app.LoanType = &lt
	return &app, nil
}

func (r *applicationRepository) Update(ctx context.Context, app *models.LoanApplication) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(app).Error, ErrApplicationNotFound)
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID uint, offset, limit int) ([]models.LoanApplication, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("applicant_id = ?", applicantID), offset, limit)
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]models.LoanApplication, int64, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return r.list(ctx, q, offset, limit)
}

func (r *applicationRepository) list(_ context.Context, q *gorm.DB, offset, limit int) ([]models.LoanApplication, int64, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Model(&models.LoanApplication{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrApplicationNotFound)
	}

	var apps []models.LoanApplication
	err := q.Preload("LoanType").
		Order("application_date DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		return nil, 0, translate(err, ErrApplicationNotFound)
	}
	return apps, total, nil
}

func (r *applicationRepository) CountByApplicant(ctx context.Context, applicantID uint, statuses ...string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LoanApplication{}).Where("applicant_id = ?", applicantID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, translate(err, ErrApplicationNotFound)
	}
	return count, nil
}
