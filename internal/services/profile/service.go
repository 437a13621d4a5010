package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/services/notification"
	"quickloan/internal/storage"
	"quickloan/internal/validation"
)

type service struct {
	repos         *repositories.Repositories
	store         storage.Store
	notifications notification.Service
}

func NewService(repos *repositories.Repositories, store storage.Store, notifications notification.Service) Service {
	if repos == nil {
		panic("repositories are required")
	}
	if store == nil {
		panic("storage is required")
	}
	if notifications == nil {
		panic("notification service is required")
	}
	return &service{repos: repos, store: store, notifications: notifications}
}

func (s *service) Get(ctx context.Context, userID uint) (*models.BorrowerProfile, error) {
	p, err := s.repos.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *service) Save(ctx context.Context, userID uint, input ProfileInput) (*models.BorrowerProfile, bool, error) {
	input.IDNumber = strings.TrimSpace(input.IDNumber)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if err := validation.Struct(input); err != nil {
		return nil, false, err
	}
	if input.MonthlyIncome != nil && input.MonthlyIncome.IsNegative() {
		v := validation.New()
		v.AddError("monthly_income", "monthly income cannot be negative")
		return nil, false, v.Err()
	}

	var dob *time.Time
	if input.DateOfBirth != "" {
		t, err := time.Parse("2006-01-02", input.DateOfBirth)
		if err != nil {
			return nil, false, fmt.Errorf("failed to parse date of birth: %w", err)
		}
		dob = &t
	}

	if holder, err := s.repos.Profiles.GetByIDNumber(ctx, input.IDNumber); err == nil && holder.UserID != userID {
		return nil, false, ErrIDNumberTaken
	} else if err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, false, fmt.Errorf("failed to check id number: %w", err)
	}

	p, err := s.repos.Profiles.GetByUserID(ctx, userID)
	created := false
	switch {
	case errors.Is(err, repositories.ErrProfileNotFound):
		p = &models.BorrowerProfile{UserID: userID}
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("failed to get profile: %w", err)
	}

	p.IDNumber = input.IDNumber
	p.PhoneNumber = input.PhoneNumber
	p.DateOfBirth = dob
	p.EmploymentStatus = input.EmploymentStatus
	p.MonthlyIncome = input.MonthlyIncome
	p.EmployerName = strings.TrimSpace(input.EmployerName)

	if created {
		err = s.repos.Profiles.Create(ctx, p)
	} else {
		err = s.repos.Profiles.Update(ctx, p)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, false, ErrIDNumberTaken
		}
		return nil, false, fmt.Errorf("failed to save profile: %w", err)
	}

	title, message := notification.TitleProfileUpdated, "Your profile has been updated successfully."
	if created {
		title, message = notification.TitleProfileCompleted, "Your profile is complete. You can now apply for loans."
	}
	s.notify(ctx, userID, title, message)

	logrus.WithFields(logrus.Fields{"user_id": userID, "created": created}).Info("borrower profile saved")
	return p, created, nil
}

func (s *service) UpdateAccount(ctx context.Context, userID uint, input AccountInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = input.Email
	if err := s.repos.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return user, nil
}

// SetPicture stores the new picture and then removes the previous one unless
// it is the shared default.
func (s *service) SetPicture(ctx context.Context, userID uint, upload storage.Upload) (*models.BorrowerProfile, error) {
	if err := validation.ProfilePictureRule.Check(upload.Filename, upload.Size); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.store.Save(ctx, storage.PrefixProfilePictures, upload.Filename, upload.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store profile picture: %w", err)
	}

	previous := p.ProfilePicture
	p.ProfilePicture = key
	if err := s.repos.Profiles.Update(ctx, p); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logrus.WithError(delErr).WithField("key", key).Warn("failed to remove orphaned picture")
		}
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}

	if previous != "" && previous != models.DefaultProfilePicture {
		if err := s.store.Delete(ctx, previous); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			logrus.WithError(err).WithField("key", previous).Warn("failed to remove previous picture")
		}
	}
	return p, nil
}

func (s *service) notify(ctx context.Context, userID uint, title, message string) {
	if err := s.notifications.Notify(ctx, userID, models.NotificationSystem, title, message); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to send profile notification")
	}
}
