package routes

import (
	"github.com/gofiber/fiber/v2"

	authController "pharma-supply/controllers/auth"
	drugController "pharma-supply/controllers/drug"
	"pharma-supply/controllers/server"
	txController "pharma-supply/controllers/transaction"
	"pharma-supply/metrics"
	"pharma-supply/middleware"
	authService "pharma-supply/services/auth"
	txService "pharma-supply/services/transaction"
)

// Ledger is what the drug and health routes need from the contract gateway.
type Ledger interface {
	drugController.Ledger
	server.HealthChecker
}

// Dependencies are the services shared by all routes.
type Dependencies struct {
	Auth     *authService.AuthService
	Ledger   Ledger
	Recorder *txService.Recorder
	// RequestLog persists request snapshots when set.
	RequestLog middleware.LogSink

	EchoOTP              bool
	ExposeInternalErrors bool
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	expose := deps.ExposeInternalErrors
	authHandler := authController.NewAuthController(deps.Auth, deps.EchoOTP, expose)
	drugHandler := drugController.NewDrugController(deps.Ledger, expose)
	txHandler := txController.NewTransactionController(deps.Recorder, expose)
	serverHandler := server.NewServerController(deps.Ledger)
	requireAuth := middleware.RequireAuthentication(deps.Auth, expose)

	app.Use(metrics.Middleware())
	if deps.RequestLog != nil {
		app.Use(middleware.RequestLog(deps.RequestLog))
	}

	app.Get("/", serverHandler.Root)
	app.Get("/health", serverHandler.Health)
	app.Get("/metrics", metrics.Handler())

	/*=============================================================================
	| Auth Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/auth/start", authHandler.StartAuth)
	api.Post("/auth/verify_otp", authHandler.VerifyOTP)
	api.Post("/auth/set_password", authHandler.SetPassword)
	api.Post("/login", authHandler.Login)
	api.Get("/me", requireAuth, authHandler.Me)

	/*=============================================================================
	| Drug Routes
	===============================================================================*/
	drugs := app.Group("/drugs", requireAuth)
	drugs.Get("/", drugHandler.List)
	drugs.Post("/", drugHandler.Add)
	drugs.Post("/transfer", drugHandler.Transfer)
	drugs.Get("/:id", drugHandler.Get)

	public := app.Group("/public/drugs")
	public.Get("/", drugHandler.List)
	public.Get("/:id", drugHandler.Get)

	/*=============================================================================
	| Transaction Routes
	===============================================================================*/
	api.Post("/purchase", txHandler.Purchase)
	api.Get("/revenue", txHandler.Revenue)
	api.Get("/transactions", txHandler.List)
	api.Get("/user-stats", requireAuth, txHandler.UserStats)
}
