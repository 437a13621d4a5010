// Package document handles verification uploads attached to loan
// applications.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	apperrors "quickloan/internal/errors"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/services/application"
	"quickloan/internal/services/notification"
	"quickloan/internal/storage"
	"quickloan/internal/validation"
)

var ErrDocumentNotFound = apperrors.NotFound("DOCUMENT_NOT_FOUND", "Document not found")

type Service interface {
	Upload(ctx context.Context, userID, appID uint, docType string, upload storage.Upload) (*models.LoanDocument, error)
	List(ctx context.Context, appID uint) ([]models.LoanDocument, error)
	Verify(ctx context.Context, docID uint) (*models.LoanDocument, error)
}

// ChecklistItem is one row of the identity checklist shown on a loan.
type ChecklistItem struct {
	Type     string `json:"document_type"`
	Name     string `json:"name"`
	Uploaded bool   `json:"uploaded"`
	Verified bool   `json:"verified"`
}

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

func (s *service) Upload(ctx context.Context, userID, appID uint, docType string, upload storage.Upload) (*models.LoanDocument, error) {
	app, err := application.Owned(ctx, s.repos, userID, appID, false)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	_, known := models.DocumentTypeNames[docType]
	v.Check(known, "document_type", "Please select a valid document type")
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := validation.DocumentRule.Check(upload.Filename, upload.Size); err != nil {
		return nil, err
	}

	key, err := s.store.Save(ctx, storage.PrefixLoanDocuments, upload.Filename, upload.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	doc := &models.LoanDocument{
		LoanApplicationID: app.ID,
		DocumentType:      docType,
		FileKey:           key,
	}
	if err := s.repos.Documents.Create(ctx, doc); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logrus.WithError(delErr).WithField("key", key).Warn("failed to remove orphaned document")
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"application_id": app.ID,
		"document_id":    doc.ID,
		"document_type":  docType,
	}).Info("loan document uploaded")

	s.notify(ctx, userID, notification.TitleDocumentUploaded,
		fmt.Sprintf("Your %s for %s has been uploaded and is awaiting verification.", models.DocumentTypeNames[docType], app.LoanName()))
	return doc, nil
}

// List returns the documents of an application in upload order. Callers
// check access to the application first.
func (s *service) List(ctx context.Context, appID uint) ([]models.LoanDocument, error) {
	docs, err := s.repos.Documents.ListByApplication(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *service) Verify(ctx context.Context, docID uint) (*models.LoanDocument, error) {
	doc, err := s.repos.Documents.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if doc.Verified {
		return doc, nil
	}

	doc.Verified = true
	if err := s.repos.Documents.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to verify document: %w", err)
	}

	app, err := s.repos.Applications.GetByID(ctx, doc.LoanApplicationID)
	if err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).Warn("verified document has no application")
		return doc, nil
	}
	s.notify(ctx, app.ApplicantID, notification.TitleDocumentVerified,
		fmt.Sprintf("Your %s for %s has been verified.", models.DocumentTypeNames[doc.DocumentType], app.LoanName()))
	return doc, nil
}

// Checklist reports which required identity documents are present. A type
// counts as verified when any of its uploads is.
func Checklist(docs []models.LoanDocument) []ChecklistItem {
	items := make([]ChecklistItem, 0, len(models.RequiredDocuments))
	for _, t := range models.RequiredDocuments {
		item := ChecklistItem{Type: t, Name: models.DocumentTypeNames[t]}
		for _, d := range docs {
			if d.DocumentType != t {
				continue
			}
			item.Uploaded = true
			if d.Verified {
				item.Verified = true
			}
		}
		items = append(items, item)
	}
	return items
}

func (s *service) notify(ctx context.Context, userID uint, title, message string) {
	if err := s.notifications.Notify(ctx, userID, models.NotificationApplicationUpdate, title, message); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("failed to send document notification")
	}
}
