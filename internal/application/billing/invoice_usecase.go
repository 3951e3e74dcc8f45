package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invorya/invoice-api/internal/application/dto"
	"github.com/invorya/invoice-api/internal/domain"
	domainbilling "github.com/invorya/invoice-api/internal/domain/billing"
	"github.com/invorya/invoice-api/internal/domain/entity"
	"github.com/invorya/invoice-api/internal/domain/repository"
)

// maxNumberRetries intentos de asignación de consecutivo ante carrera de
// creaciones concurrentes (violación del unique constraint en invoice_number).
const maxNumberRetries = 3

// InvoiceUseCase orquesta el ciclo de vida de la factura: validación,
// numeración, cálculo de totales, política de acceso y persistencia.
type InvoiceUseCase struct {
	txRunner    InvoiceTxRunner
	invoiceRepo repository.InvoiceRepository
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(txRunner InvoiceTxRunner, invoiceRepo repository.InvoiceRepository) *InvoiceUseCase {
	return &InvoiceUseCase{txRunner: txRunner, invoiceRepo: invoiceRepo}
}

// Create valida el payload, asigna el consecutivo, deriva los totales y
// persiste. Solo administradores pueden crear facturas.
//
// La asignación número+insert corre en una transacción; si otra creación
// concurrente ganó el mismo número (ErrConflict del constraint único), se
// re-lee y reintenta hasta maxNumberRetries antes de fallar con ErrConflict.
func (uc *InvoiceUseCase) Create(ctx context.Context, principal domainbilling.Principal, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	status := in.PaymentStatus
	if status == "" {
		status = entity.PaymentStatusPending
	}
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		Customer:      toCustomer(in.Customer),
		Items:         toItems(in.Items),
		InvoiceDate:   now,
		DueDate:       in.DueDate,
		TaxRates:      toTaxRates(in.TaxRates),
		Discounts:     toDiscounts(in.Discounts),
		PaymentStatus: status,
		CreatedBy:     principal.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if verr := domainbilling.ValidateInvoice(inv, now); verr != nil {
		return nil, verr
	}
	domainbilling.ApplyTotals(inv)

	var err error
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		err = uc.txRunner.RunInvoice(ctx, func(repo repository.InvoiceRepository) error {
			last, lerr := repo.GetLatest()
			if lerr != nil {
				return fmt.Errorf("leer última factura: %w", lerr)
			}
			lastNumber := ""
			if last != nil {
				lastNumber = last.InvoiceNumber
			}
			number, nerr := domainbilling.NextInvoiceNumber(lastNumber)
			if nerr != nil {
				return nerr
			}
			inv.InvoiceNumber = number
			return repo.Create(inv)
		})
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("asignación de consecutivo agotó reintentos: %w", domain.ErrConflict)
		}
		return nil, err
	}
	return toResponse(inv), nil
}

// List devuelve todas las facturas para admin; las propias para user.
func (uc *InvoiceUseCase) List(ctx context.Context, principal domainbilling.Principal) ([]*dto.InvoiceResponse, error) {
	var (
		invoices []*entity.Invoice
		err      error
	)
	if principal.IsAdmin() {
		invoices, err = uc.invoiceRepo.ListAll()
	} else {
		invoices, err = uc.invoiceRepo.ListByCreator(principal.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("listar facturas: %w", err)
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toResponse(inv))
	}
	return out, nil
}

// GetByID resuelve la factura y aplica la política de lectura.
// NotFound si no existe (se verifica antes de la comparación de propiedad);
// Forbidden si la política lo niega.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, principal domainbilling.Principal, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.resolve(principal, id, domainbilling.OpRead)
	if err != nil {
		return nil, err
	}
	return toResponse(inv), nil
}

// Update aplica un cambio status-only sobre la factura y recalcula totales.
// id, invoice_number, created_by, invoice_date y created_at se conservan
// sin importar el contenido del payload.
func (uc *InvoiceUseCase) Update(ctx context.Context, principal domainbilling.Principal, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.resolve(principal, id, domainbilling.OpUpdate)
	if err != nil {
		return nil, err
	}
	if verr := domainbilling.ValidateStatusUpdate(in.PaymentStatus); verr != nil {
		return nil, verr
	}
	inv.PaymentStatus = in.PaymentStatus
	// Recalcular es idempotente sobre los mismos datos; garantiza que los
	// totales persistidos siempre derivan de las líneas actuales.
	domainbilling.ApplyTotals(inv)
	inv.UpdatedAt = time.Now()
	if err := uc.invoiceRepo.Update(inv); err != nil {
		return nil, fmt.Errorf("actualizar factura: %w", err)
	}
	return toResponse(inv), nil
}

// Delete elimina la factura de forma permanente (sin soft-delete).
func (uc *InvoiceUseCase) Delete(ctx context.Context, principal domainbilling.Principal, id string) error {
	if _, err := uc.resolve(principal, id, domainbilling.OpDelete); err != nil {
		return err
	}
	if err := uc.invoiceRepo.Delete(id); err != nil {
		return fmt.Errorf("eliminar factura: %w", err)
	}
	return nil
}

// resolve carga la factura y aplica la política de acceso: 404 antes que 403.
func (uc *InvoiceUseCase) resolve(principal domainbilling.Principal, id string, op domainbilling.Operation) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if !domainbilling.CanAccess(principal, inv, op) {
		return nil, domain.ErrForbidden
	}
	return inv, nil
}

// ── Mapeos DTO ↔ entidad ─────────────────────────────────────────────────────

func toCustomer(c dto.CustomerPayload) entity.Customer {
	return entity.Customer{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

func toItems(items []dto.LineItemPayload) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, entity.LineItem{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

func toTaxRates(rates []dto.TaxRatePayload) []entity.TaxRate {
	out := make([]entity.TaxRate, 0, len(rates))
	for _, r := range rates {
		out = append(out, entity.TaxRate{Name: r.Name, Rate: r.Rate})
	}
	return out
}

func toDiscounts(discounts []dto.DiscountPayload) []entity.Discount {
	out := make([]entity.Discount, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, entity.Discount{Name: d.Name, Amount: d.Amount})
	}
	return out
}

func toResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Customer:      inv.Customer,
		Items:         inv.Items,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		TaxRates:      inv.TaxRates,
		Discounts:     inv.Discounts,
		Subtotal:      inv.Subtotal,
		TaxTotal:      inv.TaxTotal,
		TotalAmount:   inv.TotalAmount,
		PaymentStatus: inv.PaymentStatus,
		CreatedBy:     inv.CreatedBy,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}
