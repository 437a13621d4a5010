package models

import "time"

const (
	DocumentIDFront              = "id_front"
	DocumentIDBack               = "id_back"
	DocumentPassport             = "passport"
	DocumentPayslip              = "payslip"
	DocumentBankStatement        = "bank_statement"
	DocumentBusinessRegistration = "business_registration"
	DocumentOther                = "other"
)

var DocumentTypeNames = map[string]string{
	DocumentIDFront:              "ID Front",
	DocumentIDBack:               "ID Back",
	DocumentPassport:             "Passport Photo",
	DocumentPayslip:              "Payslip",
	DocumentBankStatement:        "Bank Statement",
	DocumentBusinessRegistration: "Business Registration",
	DocumentOther:                "Other",
}

// RequiredDocuments is the verification checklist shown to applicants.
var RequiredDocuments = []string{DocumentIDFront, DocumentIDBack, DocumentPassport}

// LoanDocument rows are append-only; several uploads of the same type are kept.
type LoanDocument struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	LoanApplicationID uint      `gorm:"index;not null" json:"loan_application_id"`
	DocumentType      string    `gorm:"size:30;not null" json:"document_type"`
	FileKey           string    `gorm:"not null" json:"file"`
	UploadedAt        time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	Verified          bool      `gorm:"default:false" json:"verified"`
}
