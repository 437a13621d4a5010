// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"quickloan/internal/models"
	"quickloan/internal/services/auth"
	"quickloan/internal/utils"
)

// AuthMiddleware validates bearer access tokens and stores the claims on the
// request context.
type AuthMiddleware struct {
	authService auth.Service
	secret      string
}

func NewAuthMiddleware(authService auth.Service, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		secret:      secret,
	}
}

// Handler rejects requests whose token is missing, invalid, expired, of the
// wrong type, or older than the user's current token version.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := utils.ParseToken(m.secret, tokenString, models.TokenTypeAccess)
	if err != nil {
		logrus.WithError(err).WithField("path", c.Path()).Debug("token validation failed")
		return utils.Unauthorized(c, "invalid token")
	}

	user, err := m.authService.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", claims.UserID).Warn("user from token not found")
		return utils.Unauthorized(c, "invalid token")
	}
	if user.TokenVersion != claims.TokenVersion {
		logrus.WithFields(logrus.Fields{
			"user_id":         claims.UserID,
			"token_version":   claims.TokenVersion,
			"current_version": user.TokenVersion,
		}).Info("token version mismatch")
		return utils.Unauthorized(c, "session expired")
	}
	if !user.IsActive {
		return utils.Forbidden(c, "This account has been disabled")
	}

	utils.SetClaims(c, claims)
	return c.Next()
}

// AdminAuthMiddleware verifies that the request has valid admin claims.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Error(c, err)
	}
	if !claims.IsAdmin() {
		logrus.WithFields(logrus.Fields{"user_id": claims.UserID, "role": claims.Role}).
			Warn("admin access denied")
		return utils.Forbidden(c, "Insufficient permissions")
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
// Admins pass every check.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return utils.Error(c, err)
		}
		if claims.IsAdmin() || claims.HasPermission(permission) {
			return c.Next()
		}
		return utils.Forbidden(c, "Insufficient permissions")
	}
}
