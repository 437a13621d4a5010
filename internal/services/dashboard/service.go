package dashboard

import (
	"context"
	"fmt"
	"time"

	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/services/notification"
)

const recentLimit = 5

type Service interface {
	UserDashboard(ctx context.Context, userID uint) (*models.DashboardStats, error)
}

type service struct {
	repos         *repositories.Repositories
	notifications notification.Service
	now           func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(repos *repositories.Repositories, notifications notification.Service, opts ...Option) Service {
	if repos == nil {
		panic("repositories are required")
	}
	if notifications == nil {
		panic("notification service is required")
	}
	s := &service{repos: repos, notifications: notifications, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) UserDashboard(ctx context.Context, userID uint) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	var err error

	if stats.TotalApplications, err = s.repos.Applications.CountByApplicant(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	if stats.ApprovedApplications, err = s.repos.Applications.CountByApplicant(ctx, userID, models.ApplicationApproved); err != nil {
		return nil, fmt.Errorf("failed to count approved applications: %w", err)
	}
	if stats.PendingApplications, err = s.repos.Applications.CountByApplicant(ctx, userID, models.ApplicationPending); err != nil {
		return nil, fmt.Errorf("failed to count pending applications: %w", err)
	}

	if stats.TotalPaid, err = s.repos.Payments.SumCompletedByApplicant(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}
	// Installments due before today count even if not yet flagged overdue.
	if stats.OverduePayments, err = s.repos.Payments.CountOverdueByApplicant(ctx, userID, models.StartOfDay(s.now())); err != nil {
		return nil, fmt.Errorf("failed to count overdue payments: %w", err)
	}

	if stats.RecentLoans, _, err = s.repos.Applications.ListByApplicant(ctx, userID, 0, recentLimit); err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}
	if stats.Notifications, err = s.notifications.Unread(ctx, userID, recentLimit); err != nil {
		return nil, err
	}
	return stats, nil
}
