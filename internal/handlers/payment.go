package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickloan/internal/models"
	"quickloan/internal/services/ledger"
	"quickloan/internal/utils"
)

type PaymentHandler struct {
	ledger ledger.Service
}

func NewPaymentHandler(ledgerService ledger.Service) *PaymentHandler {
	return &PaymentHandler{ledger: ledgerService}
}

// PaymentForm returns the open installments and a suggested amount.
func (h *PaymentHandler) PaymentForm(c *fiber.Ctx) error {
	appID, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	form, err := h.ledger.PaymentForm(c.UserContext(), claimsFrom(c).UserID, appID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, form)
}

func (h *PaymentHandler) MakePayment(c *fiber.Ctx) error {
	appID, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	var input ledger.PaymentInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}

	res, err := h.ledger.RecordPayment(c.UserContext(), claimsFrom(c).UserID, appID, input)
	if err != nil {
		return utils.Error(c, err)
	}

	message := "Payment processed successfully."
	switch {
	case res.PaidOff:
		message = "Payment processed successfully. Your loan is fully paid!"
	case res.Payment.Status == models.PaymentFailed:
		message = "Payment failed. Please try again."
	}
	return utils.Success(c, fiber.Map{
		"message": message,
		"result":  res,
	})
}

func (h *PaymentHandler) PaymentHistory(c *fiber.Ctx) error {
	appID, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	history, err := h.ledger.History(c.UserContext(), claimsFrom(c).UserID, appID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, history)
}
