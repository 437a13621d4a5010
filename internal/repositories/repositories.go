package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"quickloan/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrLoanTypeNotFound     = errors.New("loan type not found")
	ErrProfileNotFound      = errors.New("borrower profile not found")
	ErrApplicationNotFound  = errors.New("loan application not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrWithdrawalNotFound   = errors.New("withdrawal not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicate            = errors.New("duplicate record")
	ErrDatabaseOperation    = errors.New("database operation failed")
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	IncrementTokenVersion(ctx context.Context, userID uint) error
	// ActiveIDs pages through active user ids in ascending order.
	ActiveIDs(ctx context.Context, afterID uint, limit int) ([]uint, error)
}

type LoanTypeRepository interface {
	Create(ctx context.Context, lt *models.LoanType) error
	GetByID(ctx context.Context, id uint) (*models.LoanType, error)
	GetByName(ctx context.Context, name string) (*models.LoanType, error)
	// List returns loan types ordered by name; category "" means all.
	List(ctx context.Context, activeOnly bool, category string) ([]models.LoanType, error)
	Update(ctx context.Context, lt *models.LoanType) error
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.BorrowerProfile, error)
	GetByIDNumber(ctx context.Context, idNumber string) (*models.BorrowerProfile, error)
	Create(ctx context.Context, p *models.BorrowerProfile) error
	Update(ctx context.Context, p *models.BorrowerProfile) error
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.LoanApplication) error
	// GetByID loads the application with its loan type.
	GetByID(ctx context.Context, id uint) (*models.LoanApplication, error)
	// GetForUpdate locks the application row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id uint) (*models.LoanApplication, error)
	Update(ctx context.Context, app *models.LoanApplication) error
	ListByApplicant(ctx context.Context, applicantID uint, offset, limit int) ([]models.LoanApplication, int64, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]models.LoanApplication, int64, error)
	CountByApplicant(ctx context.Context, applicantID uint, statuses ...string) (int64, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.LoanDocument) error
	GetByID(ctx context.Context, id uint) (*models.LoanDocument, error)
	Update(ctx context.Context, doc *models.LoanDocument) error
	ListByApplication(ctx context.Context, applicationID uint) ([]models.LoanDocument, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *models.LoanPayment) error
	CreateBatch(ctx context.Context, payments []models.LoanPayment) error
	Update(ctx context.Context, p *models.LoanPayment) error
	// ListByApplication orders rows by due date, then id.
	ListByApplication(ctx context.Context, applicationID uint) ([]models.LoanPayment, error)
	CountByApplication(ctx context.Context, applicationID uint) (int64, error)
	// MarkOverdue flips pending rows due before the cutoff to overdue.
	MarkOverdue(ctx context.Context, applicationID uint, cutoff time.Time) (int64, error)
	SumCompletedByApplicant(ctx context.Context, applicantID uint) (decimal.Decimal, error)
	// CountOverdueByApplicant counts open installments due before the cutoff.
	CountOverdueByApplicant(ctx context.Context, applicantID uint, cutoff time.Time) (int64, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, w *models.LoanWithdrawal) error
	Update(ctx context.Context, w *models.LoanWithdrawal) error
	GetByApplication(ctx context.Context, applicationID uint) (*models.LoanWithdrawal, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification, batchSize int) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]models.Notification, int64, error)
	Unread(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	ExistsSince(ctx context.Context, userID uint, title string, since time.Time) (bool, error)
}

// Repositories bundles every repository so that several of them can share a
// single transaction.
type Repositories struct {
	Users         UserRepository
	LoanTypes     LoanTypeRepository
	Profiles      ProfileRepository
	Applications  ApplicationRepository
	Documents     DocumentRepository
	Payments      PaymentRepository
	Withdrawals   WithdrawalRepository
	Notifications NotificationRepository

	transact func(ctx context.Context, fn func(*Repositories) error) error
}

// NewRepositoriesWithTransactor is used by alternative backends that supply
// their own transaction semantics.
func NewRepositoriesWithTransactor(r Repositories, transact func(ctx context.Context, fn func(*Repositories) error) error) *Repositories {
	r.transact = transact
	return &r
}

// ExecuteInTransaction runs fn with repositories bound to one transaction.
// Any error returned by fn rolls the transaction back.
func (r *Repositories) ExecuteInTransaction(ctx context.Context, fn func(*Repositories) error) error {
	if r.transact == nil {
		return fn(r)
	}
	return r.transact(ctx, fn)
}
