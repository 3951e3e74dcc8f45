package billing

import (
	"context"
	"fmt"

	"github.com/invorya/invoice-api/internal/domain"
	domainbilling "github.com/invorya/invoice-api/internal/domain/billing"
	"github.com/invorya/invoice-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de una factura.
// El render es un colaborador externo: recibe la factura finalizada y produce
// bytes opacos, sin recalcular nada.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(invoiceRepo repository.InvoiceRepository, generator InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, generator: generator}
}

// DownloadInvoicePDF resuelve la factura, aplica la política de lectura y
// delega el render.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la factura no existe.
//   - domain.ErrForbidden        si la política de lectura lo niega.
//   - domain.ErrRender (envuelto) si el generador falla.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, principal domainbilling.Principal, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if !domainbilling.CanAccess(principal, inv, domainbilling.OpRead) {
		return nil, "", domain.ErrForbidden
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	filename = fmt.Sprintf("factura_%s.pdf", inv.InvoiceNumber)
	return pdfBytes, filename, nil
}
