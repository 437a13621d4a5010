package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"quickloan/internal/models"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *models.LoanPayment) error {
	// Select("*") keeps IsInstallment=false from being dropped as a zero value.
	return translate(r.db.WithContext(ctx).Select("*").Omit("id").Create(p).Error, ErrPaymentNotFound)
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []models.LoanPayment) error {
	if len(payments) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&payments, 100).Error, ErrPaymentNotFound)
}

func (r *paymentRepository) Update(ctx context.Context, p *models.LoanPayment) error {
	return translate(r.db.WithContext(ctx).Save(p).Error, ErrPaymentNotFound)
}

func (r *paymentRepository) ListByApplication(ctx context.Context, applicationID uint) ([]models.LoanPayment, error) {
	var payments []models.LoanPayment
	err := r.db.WithContext(ctx).
		Where("loan_application_id = ?", applicationID).
		Order("due_date ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, translate(err, ErrPaymentNotFound)
	}
	return payments, nil
}

func (r *paymentRepository) CountByApplication(ctx context.Context, applicationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanPayment{}).
		Where("loan_application_id = ?", applicationID).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, ErrPaymentNotFound)
	}
	return count, nil
}

func (r *paymentRepository) MarkOverdue(ctx context.Context, applicationID uint, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.LoanPayment{}).
		Where("loan_application_id = ? AND status = ? AND due_date < ?", applicationID, models.PaymentPending, cutoff).
		Update("status", models.PaymentOverdue)
	if result.Error != nil {
		return 0, translate(result.Error, ErrPaymentNotFound)
	}
	return result.RowsAffected, nil
}

func (r *paymentRepository) SumCompletedByApplicant(ctx context.Context, applicantID uint) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.LoanPayment{}).
		Joins("JOIN loan_applications ON loan_applications.id = loan_payments.loan_application_id").
		Where("loan_applications.applicant_id = ? AND loan_payments.status = ? AND loan_payments.settled_by_id IS NULL", applicantID, models.PaymentCompleted).
		Select("SUM(loan_payments.amount)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, translate(err, ErrPaymentNotFound)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *paymentRepository) CountOverdueByApplicant(ctx context.Context, applicantID uint, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanPayment{}).
		Joins("JOIN loan_applications ON loan_applications.id = loan_payments.loan_application_id").
		Where("loan_applications.applicant_id = ? AND loan_payments.is_installment = ? AND loan_payments.due_date < ? AND loan_payments.status IN ?",
			applicantID, true, cutoff, []string{models.PaymentPending, models.PaymentOverdue}).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, ErrPaymentNotFound)
	}
	return count, nil
}
