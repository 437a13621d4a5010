package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickloan/internal/services/notification"
	"quickloan/internal/utils"
)

type NotificationHandler struct {
	notifications notification.Service
}

func NewNotificationHandler(notifications notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	p := utils.GetPagination(c)
	items, total, err := h.notifications.List(c.UserContext(), claimsFrom(c).UserID, p.Page, p.Limit)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p, total))
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(c.UserContext(), claimsFrom(c).UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"count": count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.Error(c, err)
	}
	if err := h.notifications.MarkRead(c.UserContext(), claimsFrom(c).UserID, id); err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.notifications.MarkAllRead(c.UserContext(), claimsFrom(c).UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, fiber.Map{"success": true, "updated": n})
}
