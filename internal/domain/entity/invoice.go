package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago válidos para una factura.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusOverdue = "overdue"
)

// ValidPaymentStatus indica si s es uno de los estados de pago permitidos.
func ValidPaymentStatus(s string) bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid || s == PaymentStatusOverdue
}

// Customer datos del cliente, embebidos en la factura (no es una tabla propia).
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// LineItem línea de la factura. Los tags json se usan también para la columna JSONB.
type LineItem struct {
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// TaxRate impuesto porcentual aplicado sobre el subtotal (no compuesto).
type TaxRate struct {
	Name string          `json:"name,omitempty"`
	Rate decimal.Decimal `json:"rate"` // porcentaje en [0,100]
}

// Discount descuento de monto fijo restado del total.
type Discount struct {
	Name   string          `json:"name,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// Invoice representa una factura completa.
// Subtotal, TaxTotal y TotalAmount son derivados: se recalculan en cada
// create/update y nunca se aceptan desde el request.
type Invoice struct {
	ID            string // uuid, asignado por el sistema, inmutable
	InvoiceNumber string // INV-000001, único, inmutable una vez asignado
	Customer      Customer
	Items         []LineItem
	InvoiceDate   time.Time // fijado en la creación, inmutable
	DueDate       time.Time
	TaxRates      []TaxRate
	Discounts     []Discount
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	TotalAmount   decimal.Decimal
	PaymentStatus string
	CreatedBy     string // ID del usuario creador, inmutable
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
