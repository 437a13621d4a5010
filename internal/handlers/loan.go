package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"quickloan/internal/models"
	"quickloan/internal/services/application"
	"quickloan/internal/services/catalog"
	"quickloan/internal/services/document"
	"quickloan/internal/services/ledger"
	"quickloan/internal/services/notification"
	"quickloan/internal/services/withdrawal"
	"quickloan/internal/utils"
)

// LoanHandler serves the borrower side of the loan lifecycle.
type LoanHandler struct {
	catalog       catalog.Service
	applications  application.Service
	documents     document.Service
	withdrawals   withdrawal.Service
	ledger        ledger.Service
	notifications notification.Service
	now           func() time.Time
}

func NewLoanHandler(
	catalogService catalog.Service,
	applications application.Service,
	documents document.Service,
	withdrawals withdrawal.Service,
	ledgerService ledger.Service,
	notifications notification.Service,
) *LoanHandler {
	return &LoanHandler{
		catalog:       catalogService,
		applications:  applications,
		documents:     documents,
		withdrawals:   withdrawals,
		ledger:        ledgerService,
		notifications: notifications,
		now:           time.Now,
	}
}

// ListLoanTypes returns the active catalog, optionally filtered by
// ?category.
func (h *LoanHandler) ListLoanTypes(c *fiber.Ctx) error {
	category := c.Query("category")
	types, err := h.catalog.ListActive(c.UserContext(), category)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{
		"loan_types":        types,
		"categories":        h.catalog.Categories(),
		"selected_category": category,
	})
}

func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	loanTypeID, err := paramID(c, "loanTypeId")
	if err != nil {
		return utils.Error(c, err)
	}
	var input application.SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}

	app, err := h.applications.Submit(c.UserContext(), claimsFrom(c).UserID, loanTypeID, input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, fiber.Map{
		"message":     "Your loan application has been submitted successfully!",
		"application": app,
	})
}

// LoanDetail shows one application with its documents, disbursement and,
// once approved, the repayment summary. Viewing an approved loan refreshes
// overdue flags and sends at most one overdue reminder a day.
func (h *LoanHandler) LoanDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := claimsFrom(c).UserID
	appID, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}

	app, err := h.applications.Get(ctx, userID, appID)
	if err != nil {
		return utils.Error(c, err)
	}
	docs, err := h.documents.List(ctx, app.ID)
	if err != nil {
		return utils.Error(c, err)
	}

	body := fiber.Map{
		"application":        app,
		"status_display":     app.StatusDisplay(),
		"documents":          docs,
		"document_checklist": document.Checklist(docs),
	}

	w, err := h.withdrawals.Get(ctx, userID, app.ID)
	switch {
	case err == nil:
		body["withdrawal"] = w
	case !errors.Is(err, withdrawal.ErrWithdrawalNotFound):
		return utils.Error(c, err)
	}

	if app.IsApproved() {
		now := h.now()
		overdue, err := h.ledger.SyncOverdue(ctx, app.ID, now)
		if err != nil {
			return utils.Error(c, err)
		}
		summary, err := h.ledger.Summary(ctx, app)
		if err != nil {
			return utils.Error(c, err)
		}
		body["payment_summary"] = summary
		body["can_withdraw"] = w == nil || w.Status == models.WithdrawalFailed

		if overdue > 0 {
			if _, err := h.notifications.RemindOverdue(ctx, userID, app.LoanName(), overdue, now); err != nil {
				logrus.WithError(err).WithField("application_id", app.ID).Warn("failed to send overdue reminder")
			}
		}
	}
	return utils.Success(c, body)
}

func (h *LoanHandler) UploadDocument(c *fiber.Ctx) error {
	appID, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	upload, done, err := formUpload(c, "document")
	if err != nil {
		return utils.Error(c, err)
	}
	defer done()

	doc, err := h.documents.Upload(c.UserContext(), claimsFrom(c).UserID, appID, c.FormValue("document_type"), upload)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, fiber.Map{
		"message":  "Document uploaded successfully!",
		"document": doc,
	})
}

func (h *LoanHandler) Withdraw(c *fiber.Ctx) error {
	appID, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	var input withdrawal.Request
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}

	w, err := h.withdrawals.Disburse(c.UserContext(), claimsFrom(c).UserID, appID, input.MpesaNumber)
	if err != nil {
		return utils.Error(c, err)
	}

	message := "Loan disbursement successful! Funds have been sent to your M-Pesa."
	switch w.Status {
	case models.WithdrawalFailed:
		message = "Loan disbursement failed. Please try again."
	case models.WithdrawalProcessing:
		message = "Your disbursement is being processed."
	}
	return utils.Success(c, fiber.Map{
		"message":    message,
		"withdrawal": w,
	})
}

// ApplicationHistory lists the user's own applications, newest first.
func (h *LoanHandler) ApplicationHistory(c *fiber.Ctx) error {
	p := utils.GetPagination(c)
	apps, total, err := h.applications.History(c.UserContext(), claimsFrom(c).UserID, p.Page, p.Limit)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(apps, p, total))
}
