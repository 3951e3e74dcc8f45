package billing

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/invorya/invoice-api/internal/domain"
	"github.com/invorya/invoice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ValidationError error estructurado de validación: primer campo ofensor y su
// mensaje. Envuelve domain.ErrInvalidInput para el mapeo HTTP.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidateInvoice valida la estructura de una factura antes de persistir.
// Se detiene en el primer campo inválido. now es el instante de la validación
// (la fecha de vencimiento debe ser >= now).
func ValidateInvoice(inv *entity.Invoice, now time.Time) *ValidationError {
	if inv.Customer.Name == "" {
		return invalid("customer.name", "el nombre del cliente es requerido")
	}
	if inv.Customer.Email == "" {
		return invalid("customer.email", "el email del cliente es requerido")
	}
	if _, err := mail.ParseAddress(inv.Customer.Email); err != nil {
		return invalid("customer.email", "el email del cliente no es válido")
	}
	if len(inv.Items) == 0 {
		return invalid("items", "la factura debe tener al menos una línea")
	}
	for i, item := range inv.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Name == "" {
			return invalid(field+".name", "el nombre de la línea es requerido")
		}
		if item.Quantity < 1 {
			return invalid(field+".quantity", "la cantidad debe ser al menos 1")
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return invalid(field+".unit_price", "el precio unitario no puede ser negativo")
		}
	}
	if inv.DueDate.IsZero() {
		return invalid("due_date", "la fecha de vencimiento es requerida")
	}
	if inv.DueDate.Before(now) {
		return invalid("due_date", "la fecha de vencimiento no puede estar en el pasado")
	}
	for i, tax := range inv.TaxRates {
		field := fmt.Sprintf("tax_rates[%d].rate", i)
		if tax.Rate.LessThan(decimal.Zero) || tax.Rate.GreaterThan(hundred) {
			return invalid(field, "la tasa debe estar entre 0 y 100")
		}
	}
	for i, d := range inv.Discounts {
		field := fmt.Sprintf("discounts[%d].amount", i)
		if d.Amount.LessThan(decimal.Zero) {
			return invalid(field, "el monto del descuento no puede ser negativo")
		}
	}
	if inv.PaymentStatus != "" && !entity.ValidPaymentStatus(inv.PaymentStatus) {
		return invalid("payment_status", "debe ser pending, paid u overdue")
	}
	return nil
}

// ValidateStatusUpdate valida el único campo editable de una factura.
// El update es status-only: id, invoice_number y created_by nunca se aceptan
// del request; el resto de campos se conserva tal como está persistido.
func ValidateStatusUpdate(status string) *ValidationError {
	if status == "" {
		return invalid("payment_status", "payment_status es requerido")
	}
	if !entity.ValidPaymentStatus(status) {
		return invalid("payment_status", "debe ser pending, paid u overdue")
	}
	return nil
}
