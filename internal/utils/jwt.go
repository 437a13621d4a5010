package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quickloan/internal/config"
	"quickloan/internal/models"
)

const issuer = "quickloan-api"

var (
	ErrSecretNotConfigured = errors.New("JWT secret not configured")
	ErrWrongTokenType      = errors.New("wrong token type")
)

// GenerateTokens signs an access token and a refresh token for the given
// user claims. Both carry the user's token version.
func GenerateTokens(cfg config.AuthConfig, claims *models.UserClaims) (accessToken string, refreshToken string, err error) {
	if cfg.JWTSecret == "" {
		return "", "", ErrSecretNotConfigured
	}
	now := time.Now()

	accessToken, err = sign(cfg.JWTSecret, models.UserClaims{
		RegisteredClaims: registered(claims.UserID, now, cfg.AccessTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		Permissions:      claims.Permissions,
		TokenVersion:     claims.TokenVersion,
		TokenType:        models.TokenTypeAccess,
	})
	if err != nil {
		return "", "", err
	}

	// Refresh tokens carry no permissions; they are re-derived on refresh.
	refreshToken, err = sign(cfg.JWTSecret, models.UserClaims{
		RegisteredClaims: registered(claims.UserID, now, cfg.RefreshTTL),
		UserID:           claims.UserID,
		Email:            claims.Email,
		Role:             claims.Role,
		TokenVersion:     claims.TokenVersion,
		TokenType:        models.TokenTypeRefresh,
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func registered(userID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
	}
}

func sign(secret string, claims models.UserClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken parses and validates a JWT token string of the expected type.
func ParseToken(secret, tokenStr, tokenType string) (*models.UserClaims, error) {
	if secret == "" {
		return nil, ErrSecretNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
