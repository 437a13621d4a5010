package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quickloan/internal/errors"
)

func TestIsMpesaNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"254712345678", true},
		{"254700000000", true},
		{"25471234567", false},
		{"2547123456789", false},
		{"254812345678", false},
		{"0712345678", false},
		{"+254712345678", false},
		{"25471234567a", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMpesaNumber(tt.number))
		})
	}
}

type withdrawForm struct {
	MpesaNumber string `json:"mpesa_number" validate:"required,mpesa"`
	Method      string `json:"payment_method" validate:"omitempty,oneof=mpesa bank cash"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(withdrawForm{MpesaNumber: "254712345678"}))

	err := Struct(withdrawForm{MpesaNumber: "0712345678", Method: "card"})
	de, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, de.Kind)
	assert.Equal(t, MpesaFormatMessage, de.Fields["mpesa_number"])
	assert.Equal(t, "payment_method must be one of: mpesa, bank, cash", de.Fields["payment_method"])

	err = Struct(withdrawForm{})
	de, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "mpesa_number is required", de.Fields["mpesa_number"])
}

type paymentForm struct {
	Amount      decimal.Decimal `json:"amount"`
	MpesaNumber string          `json:"mpesa_number" validate:"omitempty,mpesa"`
}

func TestValidator_Checks(t *testing.T) {
	v := New()
	v.Check(false, "purpose", "Please describe the purpose of the loan")
	v.IntRange("term_months", 0, 1, 360, "Loan term must be between 1 and 360 months")
	v.IntRange("term_months", 400, 1, 360, "second message ignored")
	v.AmountRange("amount", decimal.NewFromInt(500), decimal.NewFromInt(1000), decimal.NewFromInt(5000), "out of range")
	v.AmountRange("fee", decimal.NewFromInt(5000), decimal.NewFromInt(1000), decimal.NewFromInt(5000), "max is inclusive")
	v.Struct(paymentForm{MpesaNumber: "123"})
	v.AddError("purpose", "second message ignored")

	assert.False(t, v.Valid())
	assert.Equal(t, "Please describe the purpose of the loan", v.Errors["purpose"])
	assert.Equal(t, "Loan term must be between 1 and 360 months", v.Errors["term_months"])
	assert.Equal(t, "out of range", v.Errors["amount"])
	assert.NotContains(t, v.Errors, "fee")
	assert.Equal(t, MpesaFormatMessage, v.Errors["mpesa_number"])
	assert.True(t, apperrors.IsKind(v.Err(), apperrors.KindValidation))

	ok := New()
	ok.Struct(paymentForm{})
	assert.NoError(t, ok.Err())
}

func TestValidator_Password(t *testing.T) {
	v := New()
	v.Password("password", "short1")
	assert.Contains(t, v.Errors["password"], "at least 8")

	ok := New()
	ok.Password("password", "longenough1")
	assert.True(t, ok.Valid())
}

func TestUploadRule_Check(t *testing.T) {
	tests := []struct {
		name     string
		rule     UploadRule
		filename string
		size     int64
		wantErr  string
	}{
		{"pdf document", DocumentRule, "payslip.PDF", 1024, ""},
		{"gif document rejected", DocumentRule, "id.gif", 1024, "File type not supported"},
		{"document too large", DocumentRule, "id.png", 5*1024*1024 + 1, "File size must be under 5MB"},
		{"document at limit", DocumentRule, "id.png", 5 * 1024 * 1024, ""},
		{"gif avatar", ProfilePictureRule, "me.gif", 100, ""},
		{"avatar too large", ProfilePictureRule, "me.jpg", 3 * 1024 * 1024, "File size must be under 2MB"},
		{"empty file", ProfilePictureRule, "me.jpg", 0, "File is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Check(tt.filename, tt.size)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
