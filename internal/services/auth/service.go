package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"quickloan/internal/config"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/utils"
	"quickloan/internal/validation"
)

type service struct {
	userRepo repositories.UserRepository
	cache    UserCache
	config   config.AuthConfig
	cost     int
}

type Option func(*service)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(s *service) { s.cost = cost }
}

// NewService creates the auth service. cache may be nil.
func NewService(userRepo repositories.UserRepository, cache UserCache, cfg config.AuthConfig, opts ...Option) Service {
	if userRepo == nil {
		panic("user repository is required")
	}
	s := &service{userRepo: userRepo, cache: cache, config: cfg, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	v := validation.New()
	v.Password("password", input.Password)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        input.Email,
		Password:     string(hash),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         models.RoleUser,
		IsActive:     true,
		TokenVersion: 1,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			logrus.WithField("email", email).Warn("login failed: unknown email")
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logrus.WithField("user_id", user.ID).Warn("login failed: incorrect password")
		return nil, "", "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", "", ErrAccountDisabled
	}

	access, refresh, err := s.issue(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := utils.ParseToken(s.config.JWTSecret, refreshToken, models.TokenTypeRefresh)
	if err != nil {
		logrus.WithError(err).Debug("refresh token rejected")
		return "", "", ErrInvalidToken
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", "", ErrInvalidToken
		}
		return "", "", err
	}
	if user.TokenVersion != claims.TokenVersion {
		return "", "", ErrSessionExpired
	}
	if !user.IsActive {
		return "", "", ErrAccountDisabled
	}
	return s.issue(user)
}

// Logout invalidates every token issued so far by bumping the user's token
// version.
func (s *service) Logout(ctx context.Context, userID uint) error {
	if err := s.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}

	v := validation.New()
	v.Password("new_password", newPassword)
	if err := v.Err(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hash)
	user.TokenVersion++

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) GetUserTokenVersion(ctx context.Context, userID uint) (int, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

// GetUserByID reads through the user cache when one is configured. Cached
// users carry no password hash.
func (s *service) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	if s.cache != nil {
		if user, err := s.cache.GetUser(ctx, userID); err == nil {
			return user, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheUser(ctx, user); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to cache user")
		}
	}
	return user, nil
}

func (s *service) issue(user *models.User) (string, string, error) {
	access, refresh, err := utils.GenerateTokens(s.config, &models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	return access, refresh, nil
}

func (s *service) invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate cached user")
	}
}
