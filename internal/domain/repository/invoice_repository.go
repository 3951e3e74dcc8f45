package repository

import "github.com/invorya/invoice-api/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice (DIP).
//
// Convenciones: GetByID y GetLatest retornan (nil, nil) si no existe el
// registro; Create retorna domain.ErrConflict si el invoice_number ya está
// tomado (constraint único en storage, base del retry de numeración).
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	// GetLatest devuelve la factura creada más recientemente (created_at DESC),
	// insumo del secuenciador de numeración.
	GetLatest() (*entity.Invoice, error)
	ListAll() ([]*entity.Invoice, error)
	ListByCreator(userID string) ([]*entity.Invoice, error)
	Update(invoice *entity.Invoice) error
	Delete(id string) error
}
