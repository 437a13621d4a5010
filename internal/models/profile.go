package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EmploymentEmployed     = "employed"
	EmploymentSelfEmployed = "self_employed"
	EmploymentUnemployed   = "unemployed"
	EmploymentStudent      = "student"

	DefaultProfilePicture = "profile_pictures/default.png"
)

var EmploymentStatuses = []string{
	EmploymentEmployed,
	EmploymentSelfEmployed,
	EmploymentUnemployed,
	EmploymentStudent,
}

// BorrowerProfile is the one-to-one borrower extension of a User. It must
// exist before the user can submit an application.
type BorrowerProfile struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	UserID           uint             `gorm:"uniqueIndex;not null" json:"user_id"`
	User             *User            `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IDNumber         string           `gorm:"size:20;uniqueIndex;not null" json:"id_number"`
	PhoneNumber      string           `gorm:"size:15;not null" json:"phone_number"`
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty"`
	ProfilePicture   string           `gorm:"default:'profile_pictures/default.png'" json:"profile_picture"`
	EmploymentStatus string           `gorm:"size:20;not null" json:"employment_status"`
	MonthlyIncome    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"monthly_income,omitempty"`
	EmployerName     string           `gorm:"size:100" json:"employer_name,omitempty"`
	CreditScore      int              `gorm:"default:0" json:"credit_score"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
