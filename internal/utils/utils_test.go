package utils

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickloan/internal/config"
	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
)

var authCfg = config.AuthConfig{JWTSecret: "secret", AccessTTL: time.Minute, RefreshTTL: time.Hour}

func TestTokens(t *testing.T) {
	access, refresh, err := GenerateTokens(authCfg, &models.UserClaims{
		UserID:       7,
		Email:        "wanjiru@example.com",
		Role:         models.RoleUser,
		Permissions:  []string{models.PermissionLoanApply},
		TokenVersion: 3,
	})
	require.NoError(t, err)

	claims, err := ParseToken("secret", access, models.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)
	assert.Equal(t, "7", claims.Subject)
	assert.True(t, claims.HasPermission(models.PermissionLoanApply))

	claims, err = ParseToken("secret", refresh, models.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Empty(t, claims.Permissions)

	_, err = ParseToken("secret", refresh, models.TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = ParseToken("other", access, models.TokenTypeAccess)
	assert.Error(t, err)

	_, _, err = GenerateTokens(config.AuthConfig{}, &models.UserClaims{UserID: 1})
	assert.ErrorIs(t, err, ErrSecretNotConfigured)
}

func TestParseToken_Expired(t *testing.T) {
	cfg := authCfg
	cfg.AccessTTL = -time.Minute
	access, _, err := GenerateTokens(cfg, &models.UserClaims{UserID: 1})
	require.NoError(t, err)

	_, err = ParseToken("secret", access, models.TokenTypeAccess)
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := map[apperrors.Kind]int{
		apperrors.KindValidation:   http.StatusBadRequest,
		apperrors.KindUnauthorized: http.StatusUnauthorized,
		apperrors.KindForbidden:    http.StatusForbidden,
		apperrors.KindNotFound:     http.StatusNotFound,
		apperrors.KindConflict:     http.StatusConflict,
		apperrors.Kind("other"):    http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, StatusFor(kind), string(kind))
	}
}

func TestError(t *testing.T) {
	app := fiber.New()
	app.Get("/domain", func(c *fiber.Ctx) error {
		return Error(c, apperrors.ValidationFields(map[string]string{"amount": "Amount is required"}))
	})
	app.Get("/wrapped", func(c *fiber.Ctx) error {
		return Error(c, errors.Join(errors.New("context"), apperrors.Conflict("TAKEN", "Already taken")))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return Error(c, errors.New("connection reset by peer"))
	})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/domain", http.StatusBadRequest, `{"code":"VALIDATION_FAILED","error":"Amount is required","fields":{"amount":"Amount is required"}}`},
		{"/wrapped", http.StatusConflict, `{"code":"TAKEN","error":"Already taken"}`},
		{"/internal", http.StatusInternalServerError, `{"error":"Something went wrong. Please try again."}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.JSONEq(t, tt.body, string(body))
		})
	}
}

func TestGetPagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetPagination(c)
		return nil
	})

	tests := []struct {
		query string
		page  int
		limit int
	}{
		{"", 1, DefaultPageSize},
		{"?page=3&limit=25", 3, 25},
		{"?page=0&limit=1000", 1, MaxPageSize},
		{"?page=abc&limit=-1", 1, DefaultPageSize},
	}
	for _, tt := range tests {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.page, got.Page, tt.query)
		assert.Equal(t, tt.limit, got.Limit, tt.query)
	}
}

func TestClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/anonymous", func(c *fiber.Ctx) error {
		_, err := GetUserClaims(c)
		return Error(c, err)
	})
	app.Get("/signed-in", func(c *fiber.Ctx) error {
		SetClaims(c, &models.UserClaims{UserID: 42, Role: models.RoleUser})
		claims, err := GetUserClaims(c)
		if err != nil {
			return Error(c, err)
		}
		return Success(c, fiber.Map{"user_id": claims.UserID, "locals": c.Locals("userID")})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/anonymous", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/signed-in", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"user_id":42,"locals":42}`, string(body))
}
