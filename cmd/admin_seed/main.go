// Command admin_seed creates the admin account and loads the loan catalog.
// It is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"quickloan/internal/config"
	"quickloan/internal/logger"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/services/catalog"
)

func main() {
	seedFile := flag.String("loan-types", "configs/loan_types.yaml", "loan catalog seed file")
	flag.Parse()

	config.LoadEnv()
	cfg := config.Load()
	cfg.Log.File = ""
	logger.Setup(cfg.Log, config.IsProduction())

	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		logrus.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	db, err := repositories.Open(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open database")
	}
	defer repositories.Close(db)

	ctx := context.Background()
	repos := repositories.NewRepositories(db)

	if err := ensureAdmin(ctx, repos.Users, adminEmail, adminPassword); err != nil {
		logrus.WithError(err).Fatal("failed to create admin user")
	}

	items, err := catalog.LoadSeedFile(*seedFile)
	if err != nil {
		logrus.WithError(err).Fatal("failed to read loan catalog")
	}
	created, err := catalog.NewService(repos.LoanTypes, nil).Seed(ctx, items)
	if err != nil {
		logrus.WithError(err).Fatal("failed to seed loan catalog")
	}
	logrus.WithFields(logrus.Fields{"created": created, "total": len(items)}).Info("loan catalog seeded")
}

func ensureAdmin(ctx context.Context, users repositories.UserRepository, email, password string) error {
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		logrus.WithField("email", email).Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        email,
		Password:     string(hashedPassword),
		FirstName:    "Admin",
		Role:         models.RoleAdmin,
		IsActive:     true,
		TokenVersion: 1,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	logrus.WithField("email", email).Info("admin account created")
	return nil
}
