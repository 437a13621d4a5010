// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"quickloan/internal/config"
	"quickloan/internal/logger"
	"quickloan/internal/models"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Open connects to PostgreSQL through the lib/pq driver, configures the
// connection pool and applies migrations.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        cfg.DSN(),
	}), &gorm.Config{Logger: logger.GormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.WithField("database", cfg.Name).Info("PostgreSQL connected & migrations applied")
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.LoanType{},
		&models.BorrowerProfile{},
		&models.LoanApplication{},
		&models.LoanDocument{},
		&models.LoanPayment{},
		&models.LoanWithdrawal{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Warn("failed to get database instance")
		return
	}
	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close database connection")
	}
}

// NewRepositories wires the gorm-backed repositories.
func NewRepositories(db *gorm.DB) *Repositories {
	repos := &Repositories{
		Users:         NewUserRepository(db),
		LoanTypes:     NewLoanTypeRepository(db),
		Profiles:      NewProfileRepository(db),
		Applications:  NewApplicationRepository(db),
		Documents:     NewDocumentRepository(db),
		Payments:      NewPaymentRepository(db),
		Withdrawals:   NewWithdrawalRepository(db),
		Notifications: NewNotificationRepository(db),
	}
	repos.transact = func(ctx context.Context, fn func(*Repositories) error) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txRepos := NewRepositories(tx)
			txRepos.transact = func(_ context.Context, inner func(*Repositories) error) error {
				return inner(txRepos)
			}
			return fn(txRepos)
		})
	}
	return repos
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// translate maps driver errors onto repository sentinels.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
	}
}
