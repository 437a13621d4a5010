// Package routes defines the API routing configuration. It builds the
// services from their dependencies and mounts every handler.
package routes

import (
	"github.com/gofiber/fiber/v2"

	"quickloan/internal/config"
	"quickloan/internal/handlers"
	"quickloan/internal/middleware"
	"quickloan/internal/models"
	"quickloan/internal/repositories"
	"quickloan/internal/repositories/cache"
	"quickloan/internal/services/application"
	"quickloan/internal/services/auth"
	"quickloan/internal/services/catalog"
	"quickloan/internal/services/dashboard"
	"quickloan/internal/services/document"
	"quickloan/internal/services/ledger"
	"quickloan/internal/services/notification"
	"quickloan/internal/services/profile"
	"quickloan/internal/services/settlement"
	"quickloan/internal/services/withdrawal"
	"quickloan/internal/storage"
)

const Version = "1.0.0"

// Dependencies are the infrastructure pieces the services are built on.
// Cache may be nil.
type Dependencies struct {
	Config       *config.Config
	Repos        *repositories.Repositories
	Cache        *cache.CacheService
	Store        storage.Store
	Gateway      settlement.Gateway
	HealthChecks map[string]handlers.Check
}

// Services is the assembled service layer.
type Services struct {
	Auth          auth.Service
	Catalog       catalog.Service
	Profiles      profile.Service
	Applications  application.Service
	Documents     document.Service
	Ledger        ledger.Service
	Withdrawals   withdrawal.Service
	Notifications notification.Service
	Dashboard     dashboard.Service
}

// NewServices wires the service layer. A nil cache is passed to the services
// as an untyped nil so they skip caching.
func NewServices(deps Dependencies) *Services {
	var (
		catalogCache      catalog.Cache
		notificationCache notification.Cache
		userCache         auth.UserCache
	)
	if deps.Cache != nil {
		catalogCache, notificationCache, userCache = deps.Cache, deps.Cache, deps.Cache
	}
	lending := deps.Config.Lending

	notifications := notification.NewService(deps.Repos.Notifications, deps.Repos.Users, notificationCache,
		notification.Config{BatchSize: lending.NotificationBatchSize})
	catalogService := catalog.NewService(deps.Repos.LoanTypes, catalogCache)

	return &Services{
		Auth:          auth.NewService(deps.Repos.Users, userCache, deps.Config.Auth),
		Catalog:       catalogService,
		Profiles:      profile.NewService(deps.Repos, deps.Store, notifications),
		Applications:  application.NewService(deps.Repos, catalogService, notifications, lending),
		Documents:     document.NewService(deps.Repos, deps.Store, notifications),
		Ledger:        ledger.NewService(deps.Repos, deps.Gateway, notifications, lending),
		Withdrawals:   withdrawal.NewService(deps.Repos, deps.Gateway, notifications, lending),
		Notifications: notifications,
		Dashboard:     dashboard.NewService(deps.Repos, notifications),
	}
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Dependencies) *Services {
	svc := NewServices(deps)

	authHandler := handlers.NewAuthHandler(svc.Auth, deps.Config.Auth)
	healthHandler := handlers.NewHealthHandler(Version, deps.HealthChecks)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard)
	loanHandler := handlers.NewLoanHandler(svc.Catalog, svc.Applications, svc.Documents, svc.Withdrawals, svc.Ledger, svc.Notifications)
	paymentHandler := handlers.NewPaymentHandler(svc.Ledger)
	profileHandler := handlers.NewProfileHandler(svc.Profiles)
	notificationHandler := handlers.NewNotificationHandler(svc.Notifications)
	adminHandler := handlers.NewAdminHandler(svc.Applications, svc.Catalog, svc.Documents, svc.Notifications)

	authMiddleware := middleware.NewAuthMiddleware(svc.Auth, deps.Config.Auth.JWTSecret)

	// Public routes
	app.Get("/", handlers.Welcome)
	app.Get("/health", healthHandler.HealthCheck)

	api := app.Group("/api")
	api.Post("/register", authHandler.RegisterUser)
	api.Post("/login", authHandler.LoginUser)
	api.Post("/refresh", authHandler.RefreshToken)

	// Admin routes are registered before the catch-all authenticated group so
	// that the admin middleware chain applies.
	setupAdminRoutes(app, authMiddleware, adminHandler)

	protected := api.Group("/", authMiddleware.Handler)
	protected.Post("/logout", authHandler.LogoutUser)
	protected.Post("/password", authHandler.ChangePassword)
	protected.Get("/dashboard", dashboardHandler.GetUserDashboard)

	setupLoanRoutes(protected, loanHandler, paymentHandler)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.SaveProfile)
	protected.Post("/profile/update", profileHandler.UpdateAccount)
	protected.Post("/profile/picture", profileHandler.UploadPicture)

	protected.Get("/notifications", notificationHandler.List)
	protected.Get("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.Post("/notifications/read-all", notificationHandler.MarkAllRead)
	protected.Post("/notifications/:id/read", notificationHandler.MarkRead)

	return svc
}

func setupLoanRoutes(router fiber.Router, loans *handlers.LoanHandler, payments *handlers.PaymentHandler) {
	router.Get("/loans", loans.ListLoanTypes)
	router.Post("/loans/apply/:loanTypeId", middleware.HasPermission(models.PermissionLoanApply), loans.Apply)
	router.Get("/loans/:id", loans.LoanDetail)
	router.Post("/loans/:id/documents", middleware.HasPermission(models.PermissionLoanApply), loans.UploadDocument)
	router.Post("/loans/:id/withdraw", middleware.HasPermission(models.PermissionLoanApply), loans.Withdraw)
	router.Get("/loans/:id/payment", payments.PaymentForm)
	router.Post("/loans/:id/payment", middleware.HasPermission(models.PermissionPaymentWrite), payments.MakePayment)
	router.Get("/loans/:id/payments", payments.PaymentHistory)
	router.Get("/applications", loans.ApplicationHistory)
}

func setupAdminRoutes(app *fiber.App, authMiddleware *middleware.AuthMiddleware, h *handlers.AdminHandler) {
	admin := app.Group("/api/admin", authMiddleware.Handler, middleware.AdminAuthMiddleware)

	admin.Get("/applications", middleware.HasPermission(models.PermissionLoanReview), h.ListApplications)
	admin.Post("/applications/:id/review", middleware.HasPermission(models.PermissionLoanReview), h.StartReview)
	admin.Post("/applications/:id/more-info", middleware.HasPermission(models.PermissionLoanReview), h.RequestInfo)
	admin.Post("/applications/:id/approve", middleware.HasPermission(models.PermissionLoanReview), h.Approve)
	admin.Post("/applications/:id/reject", middleware.HasPermission(models.PermissionLoanReview), h.Reject)
	admin.Post("/documents/:id/verify", middleware.HasPermission(models.PermissionDocumentCheck), h.VerifyDocument)
	admin.Post("/notifications/broadcast", middleware.HasPermission(models.PermissionBroadcast), h.Broadcast)
	admin.Post("/loan-types", middleware.HasPermission(models.PermissionCatalogWrite), h.CreateLoanType)
	admin.Post("/loan-types/:id/deactivate", middleware.HasPermission(models.PermissionCatalogWrite), h.DeactivateLoanType)
}
