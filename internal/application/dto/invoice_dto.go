package dto

import (
	"time"

	"github.com/invorya/invoice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CustomerPayload cliente embebido en la factura.
type CustomerPayload struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty"`
	Address string `json:"address" validate:"omitempty"`
}

// LineItemPayload línea de factura en el request.
type LineItemPayload struct {
	Name      string          `json:"name" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
}

// TaxRatePayload impuesto porcentual en el request.
type TaxRatePayload struct {
	Name string          `json:"name" validate:"omitempty"`
	Rate decimal.Decimal `json:"rate" validate:"min=0,max=100"`
}

// DiscountPayload descuento de monto fijo en el request.
type DiscountPayload struct {
	Name   string          `json:"name" validate:"omitempty"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

// CreateInvoiceRequest entrada para crear una factura. Los totales nunca se
// aceptan del cliente: se derivan siempre en el servidor.
type CreateInvoiceRequest struct {
	Customer      CustomerPayload   `json:"customer" validate:"required"`
	Items         []LineItemPayload `json:"items" validate:"required,min=1"`
	DueDate       time.Time         `json:"due_date" validate:"required"`
	TaxRates      []TaxRatePayload  `json:"tax_rates" validate:"omitempty"`
	Discounts     []DiscountPayload `json:"discounts" validate:"omitempty"`
	PaymentStatus string            `json:"payment_status" validate:"omitempty,oneof=pending paid overdue"`
}

// UpdateInvoiceRequest entrada para actualizar una factura. El update es
// status-only: cualquier otro campo enviado se ignora.
type UpdateInvoiceRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid overdue"`
}

// InvoiceResponse salida de una factura completa.
type InvoiceResponse struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	Customer      entity.Customer   `json:"customer"`
	Items         []entity.LineItem `json:"items"`
	InvoiceDate   time.Time         `json:"invoice_date"`
	DueDate       time.Time         `json:"due_date"`
	TaxRates      []entity.TaxRate  `json:"tax_rates"`
	Discounts     []entity.Discount `json:"discounts"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	TaxTotal      decimal.Decimal   `json:"tax_total"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	PaymentStatus string            `json:"payment_status"`
	CreatedBy     string            `json:"created_by"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
