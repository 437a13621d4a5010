// Package amortization computes fixed-installment loan quotes and the
// monthly repayment schedule derived from them. Everything here is pure.
package amortization

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
)

var (
	ErrInvalidPrincipal = apperrors.Validation("INVALID_PRINCIPAL", "loan amount must be greater than zero")
	ErrInvalidRate      = apperrors.Validation("INVALID_RATE", "interest rate cannot be negative")
	ErrInvalidTerm      = apperrors.Validation("INVALID_TERM", "term must be at least one month")
)

// DefaultInterval spaces installments 30 days apart.
const DefaultInterval = 30 * 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// Quote is the result of an amortization calculation. Both figures are
// rounded to two decimal places; TotalRepayment is the rounded installment
// times the term so the schedule sums exactly to it.
type Quote struct {
	Principal          decimal.Decimal `json:"principal"`
	AnnualRate         decimal.Decimal `json:"annual_rate"`
	TermMonths         int             `json:"term_months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TotalRepayment     decimal.Decimal `json:"total_repayment"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
}

// Calculate applies the standard annuity formula
//
//	installment = P * r * (1+r)^n / ((1+r)^n - 1),  r = rate/100/12
//
// falling back to P/n for interest-free products.
func Calculate(principal, annualRatePct decimal.Decimal, termMonths int) (Quote, error) {
	if !principal.IsPositive() {
		return Quote{}, ErrInvalidPrincipal
	}
	if annualRatePct.IsNegative() {
		return Quote{}, ErrInvalidRate
	}
	if termMonths < 1 {
		return Quote{}, ErrInvalidTerm
	}

	var installment decimal.Decimal
	if annualRatePct.IsZero() {
		installment = principal.Div(decimal.NewFromInt(int64(termMonths))).Round(2)
	} else {
		p := principal.InexactFloat64()
		r := annualRatePct.Div(hundred).InexactFloat64() / 12
		growth := math.Pow(1+r, float64(termMonths))
		installment = decimal.NewFromFloat(p * r * growth / (growth - 1)).Round(2)
	}

	total := installment.Mul(decimal.NewFromInt(int64(termMonths))).Round(2)
	return Quote{
		Principal:          principal,
		AnnualRate:         annualRatePct,
		TermMonths:         termMonths,
		MonthlyInstallment: installment,
		TotalRepayment:     total,
		TotalInterest:      total.Sub(principal),
	}, nil
}

// Schedule lays out termMonths pending installments. Installment k is due
// k whole intervals after the approval day, counted in calendar days so due
// dates stay at midnight across daylight saving changes.
func Schedule(applicationID uint, installment decimal.Decimal, termMonths int, approvedAt time.Time, interval time.Duration) []models.LoanPayment {
	days := int(interval / (24 * time.Hour))
	if days < 1 {
		days = int(DefaultInterval / (24 * time.Hour))
	}
	start := models.StartOfDay(approvedAt)
	payments := make([]models.LoanPayment, 0, termMonths)
	for k := 1; k <= termMonths; k++ {
		payments = append(payments, models.LoanPayment{
			LoanApplicationID: applicationID,
			Amount:            installment,
			DueDate:           start.AddDate(0, 0, k*days),
			Status:            models.PaymentPending,
			IsInstallment:     true,
			InstallmentNumber: k,
		})
	}
	return payments
}
