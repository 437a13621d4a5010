package profile

import (
	"context"

	"github.com/shopspring/decimal"

	"quickloan/internal/models"
	"quickloan/internal/storage"
)

// Service manages the borrower profile attached to a user account.
type Service interface {
	Get(ctx context.Context, userID uint) (*models.BorrowerProfile, error)
	// Save creates the profile on first use and updates it afterwards. The
	// boolean reports whether a new profile was created.
	Save(ctx context.Context, userID uint, input ProfileInput) (*models.BorrowerProfile, bool, error)
	UpdateAccount(ctx context.Context, userID uint, input AccountInput) (*models.User, error)
	SetPicture(ctx context.Context, userID uint, upload storage.Upload) (*models.BorrowerProfile, error)
}

type ProfileInput struct {
	IDNumber         string           `json:"id_number" validate:"required,max=20"`
	PhoneNumber      string           `json:"phone_number" validate:"required,max=15"`
	DateOfBirth      string           `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	EmploymentStatus string           `json:"employment_status" validate:"required,oneof=employed self_employed unemployed student"`
	MonthlyIncome    *decimal.Decimal `json:"monthly_income"`
	EmployerName     string           `json:"employer_name" validate:"max=100"`
}

type AccountInput struct {
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"required,email"`
}
