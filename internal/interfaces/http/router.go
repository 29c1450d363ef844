package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lotes-api/internal/application/analytics"
	"github.com/jhoicas/lotes-api/internal/application/auth"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/internal/application/profitshare"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	BatchUC     *inventory.BatchUseCase
	OrderUC     *sales.OrderUseCase
	ShareUC     *profitshare.ShareUseCase
	SharePDFUC  *profitshare.PDFUseCase
	DashboardUC *analytics.DashboardUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Batches (protegido; eliminación solo admin)
	batches := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.BatchUC)
	batches.Post("/", batchHandler.Create)
	batches.Get("/", batchHandler.List)
	batches.Get("/available", batchHandler.ListAvailable)
	batches.Get("/:id", batchHandler.GetByID)
	batches.Get("/:id/availability", batchHandler.CheckAvailability)
	batches.Put("/:id", batchHandler.Update)
	batches.Delete("/:id", adminOnly, batchHandler.Delete)

	// Orders (protegido; eliminación solo admin)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Delete("/:id", adminOnly, orderHandler.Delete)

	// Profit shares (protegido; la ejecución del reparto es solo admin)
	shares := protected.Group("/profit-shares")
	shareHandler := NewProfitShareHandler(deps.ShareUC, deps.SharePDFUC)
	shares.Post("/", adminOnly, shareHandler.Execute)
	shares.Get("/", shareHandler.List)
	shares.Get("/by-month", shareHandler.GetByMonth)
	shares.Get("/:id", shareHandler.GetByID)
	shares.Get("/:id/pdf", shareHandler.DownloadPDF)

	// Reports (protegido)
	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.DashboardUC)
	reports.Get("/dashboard", reportHandler.Dashboard)
}
