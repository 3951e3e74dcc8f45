package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/invoice-api/internal/application/auth"
	appbilling "github.com/invorya/invoice-api/internal/application/billing"
	"github.com/invorya/invoice-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC  *appbilling.InvoiceUseCase
	InvoicePDF *appbilling.PDFUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
//
// Política de acceso en rutas (espejo de la política del dominio):
//   - create/update/delete: solo admin (RequireRole).
//   - list/get/pdf: cualquier usuario autenticado; el use case decide el
//     alcance (admin ve todo, user solo lo propio).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/profile", AuthMiddleware(deps.JWTSecret), authHandler.Profile)

	// Invoices (protegido, Bearer Token)
	invoices := api.Group("/invoices", AuthMiddleware(deps.JWTSecret))
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDF)
	invoices.Post("/", RequireRole(entity.RoleAdmin), invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", RequireRole(entity.RoleAdmin), invoiceHandler.Update)
	invoices.Delete("/:id", RequireRole(entity.RoleAdmin), invoiceHandler.Delete)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
}
