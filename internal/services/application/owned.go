package application

import (
	"context"
	"errors"
	"fmt"

	"quickloan/internal/models"
	"quickloan/internal/repositories"
)

// Owned loads an application on behalf of its applicant. With lock set the
// row stays locked until the surrounding transaction ends.
func Owned(ctx context.Context, repos *repositories.Repositories, userID, id uint, lock bool) (*models.LoanApplication, error) {
	get := repos.Applications.GetByID
	if lock {
		get = repos.Applications.GetForUpdate
	}

	app, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app.ApplicantID != userID {
		return nil, ErrNotOwner
	}
	if app.LoanType == nil {
		lt, err := repos.LoanTypes.GetByID(ctx, app.LoanTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to load loan type: %w", err)
		}
		app.LoanType = lt
	}
	return app, nil
}

// OwnedApproved is Owned plus the approval check shared by repayments and
// disbursement.
func OwnedApproved(ctx context.Context, repos *repositories.Repositories, userID, id uint, lock bool) (*models.LoanApplication, error) {
	app, err := Owned(ctx, repos, userID, id, lock)
	if err != nil {
		return nil, err
	}
	if !app.IsApproved() {
		return nil, ErrNotApproved
	}
	return app, nil
}
