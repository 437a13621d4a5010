package handlers

import (
	"github.com/gofiber/fiber/v2"

	"quickloan/internal/services/dashboard"
	"quickloan/internal/utils"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetUserDashboard returns the borrower landing summary.
func (h *DashboardHandler) GetUserDashboard(c *fiber.Ctx) error {
	stats, err := h.dashboardService.UserDashboard(c.UserContext(), claimsFrom(c).UserID)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Success(c, stats)
}
