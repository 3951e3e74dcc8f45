package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	appbilling "github.com/invorya/invoice-api/internal/application/billing"
	"github.com/invorya/invoice-api/internal/application/dto"
	"github.com/invorya/invoice-api/internal/domain"
	domainbilling "github.com/invorya/invoice-api/internal/domain/billing"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc    *appbilling.InvoiceUseCase
	pdfUC *appbilling.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *appbilling.InvoiceUseCase, pdfUC *appbilling.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdfUC: pdfUC}
}

// Create crea una factura: valida, asigna consecutivo y deriva totales.
// POST /api/invoices (admin)
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.uc.Create(c.Context(), GetPrincipal(c), in)
	if err != nil {
		return h.mapError(c, err, "crear factura")
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List lista facturas: todas para admin, propias para user.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	invoices, err := h.uc.List(c.Context(), GetPrincipal(c))
	if err != nil {
		return h.mapError(c, err, "listar facturas")
	}
	return c.JSON(invoices)
}

// GetByID obtiene una factura con control de acceso (404 antes que 403).
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	invoice, err := h.uc.GetByID(c.Context(), GetPrincipal(c), id)
	if err != nil {
		return h.mapError(c, err, "obtener factura")
	}
	return c.JSON(invoice)
}

// Update actualiza el estado de pago y recalcula totales.
// PUT /api/invoices/:id (admin)
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.uc.Update(c.Context(), GetPrincipal(c), id, in)
	if err != nil {
		return h.mapError(c, err, "actualizar factura")
	}
	return c.JSON(invoice)
}

// Delete elimina una factura de forma permanente.
// DELETE /api/invoices/:id (admin)
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	if err := h.uc.Delete(c.Context(), GetPrincipal(c), id); err != nil {
		return h.mapError(c, err, "eliminar factura")
	}
	return c.JSON(dto.MessageResponse{Message: "factura eliminada"})
}

// DownloadPDF genera y descarga la representación gráfica de la factura.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	pdfBytes, filename, err := h.pdfUC.DownloadInvoicePDF(c.Context(), GetPrincipal(c), id)
	if err != nil {
		return h.mapError(c, err, "generar pdf")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// mapError traduce los errores del dominio a respuestas HTTP.
// Los errores de validación exponen campo + mensaje; los inesperados se
// registran completos y responden genérico.
func (h *InvoiceHandler) mapError(c *fiber.Ctx, err error, op string) error {
	var verr *domainbilling.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Field: verr.Field, Message: verr.Message,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "factura no encontrada"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de numeración, intente de nuevo"})
	default:
		return internalError(c, err, op)
	}
}
