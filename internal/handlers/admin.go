package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickloan/internal/services/application"
	"quickloan/internal/services/catalog"
	"quickloan/internal/services/document"
	"quickloan/internal/services/notification"
	"quickloan/internal/utils"
)

// AdminHandler covers the review back office. Routes are mounted behind
// AdminAuthMiddleware.
type AdminHandler struct {
	applications  application.Service
	catalog       catalog.Service
	documents     document.Service
	notifications notification.Service
}

func NewAdminHandler(
	applications application.Service,
	catalogService catalog.Service,
	documents document.Service,
	notifications notification.Service,
) *AdminHandler {
	return &AdminHandler{
		applications:  applications,
		catalog:       catalogService,
		documents:     documents,
		notifications: notifications,
	}
}

// ListApplications pages through applications, optionally by ?status.
func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	p := utils.GetPagination(c)
	apps, total, err := h.applications.ListForReview(c.UserContext(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(apps, p, total))
}

func (h *AdminHandler) StartReview(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	app, err := h.applications.StartReview(c.UserContext(), id, claimsFrom(c).UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, app)
}

func (h *AdminHandler) RequestInfo(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	var input struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}
	app, err := h.applications.RequestInfo(c.UserContext(), id, claimsFrom(c).UserID, input.Note)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, app)
}

func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	res, err := h.applications.Approve(c.UserContext(), id, claimsFrom(c).UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, res)
}

func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}
	app, err := h.applications.Reject(c.UserContext(), id, claimsFrom(c).UserID, input.Reason)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, app)
}

func (h *AdminHandler) VerifyDocument(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	doc, err := h.documents.Verify(c.UserContext(), id)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, doc)
}

func (h *AdminHandler) Broadcast(c *fiber.Ctx) error {
	var input struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}
	n, err := h.notifications.Broadcast(c.UserContext(), input.Title, input.Message)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"recipients": n})
}

func (h *AdminHandler) CreateLoanType(c *fiber.Ctx) error {
	var input catalog.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}
	lt, err := h.catalog.Create(c.UserContext(), input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, lt)
}

func (h *AdminHandler) DeactivateLoanType(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	if err := h.catalog.Deactivate(c.UserContext(), id); err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"success": true})
}
