package billing

import (
	"context"

	"github.com/invorya/invoice-api/internal/domain/entity"
	"github.com/invorya/invoice-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta fn dentro de una transacción con un repositorio de
// facturas atado a ella. La asignación de número (leer última + insertar) corre
// aquí dentro para que el retry por conflicto re-lea estado fresco.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(repo repository.InvoiceRepository) error) error
}

// InvoicePDFGenerator colaborador de render: recibe la factura finalizada y
// produce un documento opaco. No hace ningún cálculo.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice) ([]byte, error)
}
