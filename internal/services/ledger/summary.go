package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"quickloan/internal/models"
)

// summarize derives the balance view from payment rows ordered by due date.
// The remaining balance is not clamped, so an overpayment shows as negative.
func summarize(app *models.LoanApplication, payments []models.LoanPayment, now time.Time) *models.PaymentSummary {
	sum := &models.PaymentSummary{
		TotalRepayment:   decimal.Zero,
		TotalPaid:        decimal.Zero,
		RemainingBalance: decimal.Zero,
	}

	for i := range payments {
		p := &payments[i]
		if p.IsPaid() {
			sum.TotalPaid = sum.TotalPaid.Add(p.Amount)
			sum.CompletedCount++
		}
		if isOverdue(p, now) {
			sum.OverdueCount++
		}
		if sum.NextPaymentDue == nil && p.IsInstallment && p.IsOpen() {
			next := *p
			sum.NextPaymentDue = &next
		}
	}

	if app.TotalRepayment != nil {
		sum.TotalRepayment = *app.TotalRepayment
		sum.RemainingBalance = sum.TotalRepayment.Sub(sum.TotalPaid)
	}
	return sum
}

// covered returns the indexes of open installments paid for by the money
// received so far, walking the schedule in due-date order. Once nothing is
// owed every open installment is covered.
func covered(app *models.LoanApplication, payments []models.LoanPayment) []int {
	paid := decimal.Zero
	for i := range payments {
		if payments[i].IsPaid() {
			paid = paid.Add(payments[i].Amount)
		}
	}
	paidOff := app.TotalRepayment != nil && !app.TotalRepayment.Sub(paid).IsPositive()

	var out []int
	owed := decimal.Zero
	for i := range payments {
		p := &payments[i]
		if !p.IsInstallment {
			continue
		}
		owed = owed.Add(p.Amount)
		if p.IsOpen() && (paidOff || owed.LessThanOrEqual(paid)) {
			out = append(out, i)
		}
	}
	return out
}

func nextOpen(payments []models.LoanPayment) *models.LoanPayment {
	for i := range payments {
		if payments[i].IsInstallment && payments[i].IsOpen() {
			p := payments[i]
			return &p
		}
	}
	return nil
}

func isOverdue(p *models.LoanPayment, now time.Time) bool {
	if !p.IsInstallment {
		return false
	}
	return p.Status == models.PaymentOverdue || (p.Status == models.PaymentPending && p.IsPastDue(now))
}
