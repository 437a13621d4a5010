package repositories

import (
	"context"

	"gorm.io/gorm"

	"quickloan/internal/models"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.LoanDocument) error {
	return translate(r.db.WithContext(ctx).Create(doc).Error, ErrDocumentNotFound)
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (*models.LoanDocument, error) {
	var doc models.LoanDocument
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		return nil, translate(err, ErrDocumentNotFound)
	}
	return &doc, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *models.LoanDocument) error {
	return translate(r.db.WithContext(ctx).Save(doc).Error, ErrDocumentNotFound)
}

func (r *documentRepository) ListByApplication(ctx context.Context, applicationID uint) ([]models.LoanDocument, error) {
	var docs []models.LoanDocument
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", applicationID).
		Order("uploaded_at ASC, id ASC").
		Find(&docs).Error
	if err != nil {
		return nil, translate(err, ErrDocumentNotFound)
	}
	return docs, nil
}
