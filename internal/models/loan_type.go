package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategorySecured   = "secured"
	CategoryUnsecured = "unsecured"
	CategoryMobile    = "mobile"
)

// LoanCategories maps category codes to display names.
var LoanCategories = map[string]string{
	CategorySecured:   "Secured Loan",
	CategoryUnsecured: "Unsecured Loan",
	CategoryMobile:    "Mobile Loan",
}

// LoanType is a catalog product. Inactive types stay readable for existing
// applications but are hidden from new ones.
type LoanType struct {
	ID           uint            `gorm:"primaryKey" json:"id" yaml:"-"`
	Name         string          `gorm:"size:100;uniqueIndex;not null" json:"name" yaml:"name"`
	Category     string          `gorm:"size:20;index;not null" json:"category" yaml:"category"`
	InterestRate decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"interest_rate" yaml:"interest_rate"`
	MinAmount    decimal.Decimal `gorm:"type:numeric(12,2);default:1000" json:"min_amount" yaml:"min_amount"`
	MaxAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"max_amount" yaml:"max_amount"`
	MinTerm      int             `gorm:"default:1" json:"min_term" yaml:"min_term"`
	MaxTerm      int             `gorm:"not null" json:"max_term" yaml:"max_term"`
	Description  string          `gorm:"type:text" json:"description" yaml:"description"`
	Requirements string          `gorm:"type:text" json:"requirements" yaml:"requirements"`
	IsActive     bool            `gorm:"not null;index" json:"is_active" yaml:"is_active"`
	CreatedAt    time.Time       `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time       `json:"updated_at" yaml:"-"`
}
