package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"quickloan/internal/config"
	"quickloan/internal/models"
	"quickloan/internal/services/auth"
	"quickloan/internal/utils"
)

type AuthHandler struct {
	authService auth.Service
	config      config.AuthConfig
}

func NewAuthHandler(authService auth.Service, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		config:      cfg,
	}
}

func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var input auth.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}

	user, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return utils.Error(c, err)
	}
	return utils.Created(c, fiber.Map{
		"message": "Registration successful. Please log in.",
		"user":    user,
	})
}

// LoginUser handles user authentication and returns JWT tokens
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Email and password are required")
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return utils.Error(c, err)
	}

	h.setAuthCookies(c, accessToken, refreshToken)

	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.FullName(),
			"role":        user.Role,
			"permissions": models.GetDefaultPermissions(user.Role),
		},
	})
}

// RefreshToken accepts the refresh token from the cookie or the body.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&input); err != nil {
			return utils.Unauthorized(c, "Refresh token not provided")
		}
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		return utils.Unauthorized(c, "Refresh token not provided")
	}

	newAccessToken, newRefreshToken, err := h.authService.RefreshTokens(c.UserContext(), refreshToken)
	if err != nil {
		return utils.Error(c, err)
	}

	h.setAuthCookies(c, newAccessToken, newRefreshToken)

	return utils.Success(c, fiber.Map{
		"access_token":  newAccessToken,
		"refresh_token": newRefreshToken,
	})
}

func (h *AuthHandler) LogoutUser(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	if err := h.authService.Logout(c.UserContext(), claims.UserID); err != nil {
		return utils.Error(c, err)
	}

	h.clearAuthCookies(c)
	return utils.Success(c, fiber.Map{
		"message": "Successfully logged out",
	})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Error(c, errInvalidBody)
	}

	if err := h.authService.ChangePassword(c.UserContext(), claimsFrom(c).UserID, input.OldPassword, input.NewPassword); err != nil {
		return utils.Error(c, err)
	}

	h.clearAuthCookies(c)
	return utils.Success(c, fiber.Map{
		"message": "Password changed successfully. Please log in again.",
	})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	now := time.Now()
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  now.Add(h.config.AccessTTL),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: "Lax",
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  now.Add(h.config.RefreshTTL),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: "Lax",
		Path:     "/api/refresh",
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true, Secure: config.IsProduction(), Path: "/"})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true, Secure: config.IsProduction(), Path: "/api/refresh"})
}
