package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ApplicationPending     = "pending"
	ApplicationUnderReview = "under_review"
	ApplicationApproved    = "approved"
	ApplicationRejected    = "rejected"
	ApplicationMoreInfo    = "more_info"
)

var ApplicationStatusNames = map[string]string{
	ApplicationPending:     "Pending",
	ApplicationUnderReview: "Under Review",
	ApplicationApproved:    "Approved",
	ApplicationRejected:    "Rejected",
	ApplicationMoreInfo:    "More Information Required",
}

type LoanApplication struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	ApplicantID        uint             `gorm:"index;not null" json:"applicant_id"`
	Applicant          *User            `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"-"`
	LoanTypeID         uint             `gorm:"index;not null" json:"loan_type_id"`
	LoanType           *LoanType        `gorm:"constraint:OnDelete:RESTRICT" json:"loan_type,omitempty"`
	Amount             decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"amount"`
	TermMonths         int              `gorm:"not null" json:"term_months"`
	Purpose            string           `gorm:"type:text;not null" json:"purpose"`
	Status             string           `gorm:"size:20;index;default:'pending'" json:"status"`
	ApplicationDate    time.Time        `gorm:"autoCreateTime;index" json:"application_date"`
	ApprovedDate       *time.Time       `json:"approved_date,omitempty"`
	ApprovedBy         *uint            `json:"approved_by,omitempty"`
	RejectionReason    string           `gorm:"type:text" json:"rejection_reason,omitempty"`
	MonthlyInstallment *decimal.Decimal `gorm:"type:numeric(12,2)" json:"monthly_installment,omitempty"`
	TotalRepayment     *decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_repayment,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`

	Documents  []LoanDocument  `gorm:"foreignKey:LoanApplicationID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Payments   []LoanPayment   `gorm:"foreignKey:LoanApplicationID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	Withdrawal *LoanWithdrawal `gorm:"foreignKey:LoanApplicationID;constraint:OnDelete:CASCADE" json:"withdrawal,omitempty"`
}

func (a *LoanApplication) StatusDisplay() string {
	if name, ok := ApplicationStatusNames[a.Status]; ok {
		return name
	}
	return a.Status
}

func (a *LoanApplication) IsApproved() bool {
	return a.Status == ApplicationApproved
}

// LoanName is the catalog name, or a fallback when the type is not loaded.
func (a *LoanApplication) LoanName() string {
	if a.LoanType != nil {
		return a.LoanType.Name
	}
	return "loan"
}
