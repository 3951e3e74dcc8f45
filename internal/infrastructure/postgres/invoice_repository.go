package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/invoice-api/internal/domain"
	"github.com/invorya/invoice-api/internal/domain/entity"
	"github.com/invorya/invoice-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Customer va aplanado en columnas; items, tax_rates y discounts en JSONB.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, invoice_number,
	customer_name, customer_email, customer_phone, customer_address,
	items, invoice_date, due_date, tax_rates, discounts,
	subtotal, tax_total, total_amount, payment_status,
	created_by, created_at, updated_at`

// Create persiste la factura. Retorna domain.ErrConflict si el
// invoice_number ya existe (constraint único; base del retry de numeración).
func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	items, taxRates, discounts, err := marshalInvoiceLists(inv)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO invoices (
			id, invoice_number,
			customer_name, customer_email, customer_phone, customer_address,
			items, invoice_date, due_date, tax_rates, discounts,
			subtotal, tax_total, total_amount, payment_status,
			created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err = r.q.Exec(context.Background(), query,
		inv.ID, inv.InvoiceNumber,
		inv.Customer.Name, inv.Customer.Email, nullIfEmpty(inv.Customer.Phone), nullIfEmpty(inv.Customer.Address),
		items, inv.InvoiceDate, inv.DueDate, taxRates, discounts,
		inv.Subtotal, inv.TaxTotal, inv.TotalAmount, inv.PaymentStatus,
		inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %s ya existe: %w", inv.InvoiceNumber, domain.ErrConflict)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update persiste los campos mutables. id, invoice_number, created_by,
// invoice_date y created_at nunca se tocan.
func (r *InvoiceRepo) Update(inv *entity.Invoice) error {
	items, taxRates, discounts, err := marshalInvoiceLists(inv)
	if err != nil {
		return err
	}
	query := `
		UPDATE invoices
		SET customer_name    = $2,
		    customer_email   = $3,
		    customer_phone   = $4,
		    customer_address = $5,
		    items            = $6,
		    due_date         = $7,
		    tax_rates        = $8,
		    discounts        = $9,
		    subtotal         = $10,
		    tax_total        = $11,
		    total_amount     = $12,
		    payment_status   = $13,
		    updated_at       = $14
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		inv.ID,
		inv.Customer.Name, inv.Customer.Email, nullIfEmpty(inv.Customer.Phone), nullIfEmpty(inv.Customer.Address),
		items, inv.DueDate, taxRates, discounts,
		inv.Subtotal, inv.TaxTotal, inv.TotalAmount, inv.PaymentStatus,
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una factura por ID. (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLatest devuelve la factura creada más recientemente. (nil, nil) si la
// tabla está vacía. Desempata por invoice_number para timestamps iguales.
func (r *InvoiceRepo) GetLatest() (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices ORDER BY created_at DESC, invoice_number DESC LIMIT 1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest invoice: %w", err)
	}
	return inv, nil
}

// ListAll devuelve todas las facturas, más recientes primero.
func (r *InvoiceRepo) ListAll() ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`
	return r.list(query)
}

// ListByCreator devuelve las facturas creadas por un usuario, más recientes primero.
func (r *InvoiceRepo) ListByCreator(userID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE created_by = $1 ORDER BY created_at DESC`
	return r.list(query, userID)
}

// Delete elimina la factura de forma permanente.
func (r *InvoiceRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InvoiceRepo) list(query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// scanInvoice lee una fila completa y deserializa las columnas JSONB.
func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv            entity.Invoice
		phone, address *string
		itemsRaw       []byte
		taxRatesRaw    []byte
		discountsRaw   []byte
	)
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber,
		&inv.Customer.Name, &inv.Customer.Email, &phone, &address,
		&itemsRaw, &inv.InvoiceDate, &inv.DueDate, &taxRatesRaw, &discountsRaw,
		&inv.Subtotal, &inv.TaxTotal, &inv.TotalAmount, &inv.PaymentStatus,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		inv.Customer.Phone = *phone
	}
	if address != nil {
		inv.Customer.Address = *address
	}
	if err := json.Unmarshal(itemsRaw, &inv.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if len(taxRatesRaw) > 0 {
		if err := json.Unmarshal(taxRatesRaw, &inv.TaxRates); err != nil {
			return nil, fmt.Errorf("unmarshal tax_rates: %w", err)
		}
	}
	if len(discountsRaw) > 0 {
		if err := json.Unmarshal(discountsRaw, &inv.Discounts); err != nil {
			return nil, fmt.Errorf("unmarshal discounts: %w", err)
		}
	}
	return &inv, nil
}

// marshalInvoiceLists serializa las listas de la factura a JSON para JSONB.
func marshalInvoiceLists(inv *entity.Invoice) (items, taxRates, discounts []byte, err error) {
	if items, err = json.Marshal(inv.Items); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal items: %w", err)
	}
	if taxRates, err = json.Marshal(inv.TaxRates); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal tax_rates: %w", err)
	}
	if discounts, err = json.Marshal(inv.Discounts); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal discounts: %w", err)
	}
	return items, taxRates, discounts, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
