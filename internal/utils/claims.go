package utils

import (
	"github.com/gofiber/fiber/v2"

	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
)

const (
	localsClaims = "claims"
	localsUserID = "userID"
)

var ErrNoClaims = apperrors.Unauthorized("UNAUTHORIZED", "Unauthorized")

// SetClaims stores the authenticated caller on the request.
func SetClaims(c *fiber.Ctx, claims *models.UserClaims) {
	c.Locals(localsClaims, claims)
	c.Locals(localsUserID, claims.UserID)
}

// GetUserClaims returns the claims stored by SetClaims, or ErrNoClaims when
// the request did not pass the auth middleware.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals(localsClaims).(*models.UserClaims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}
