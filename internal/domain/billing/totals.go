// Package billing contiene las reglas puras de facturación: cálculo de
// totales, numeración consecutiva, validación estructural y política de
// acceso. No tiene dependencias de infraestructura.
package billing

import (
	"github.com/invorya/invoice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals montos derivados de una factura.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxTotal    decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputeTotals calcula subtotal, impuestos y total a partir de las líneas.
//
//   - Subtotal    = Σ cantidad × precio unitario
//   - TaxTotal    = Σ subtotal × tasa/100 (cada impuesto sobre el subtotal
//     original, sin componer)
//   - TotalAmount = subtotal + impuestos − Σ descuentos; puede ser negativo
//     si los descuentos superan subtotal+impuestos (no se aplica piso)
//
// Regla de redondeo: cada monto derivado se redondea a 2 decimales
// (half away from zero) después de sumar, de modo que recalcular sobre los
// mismos datos siempre produce el mismo resultado.
func ComputeTotals(items []entity.LineItem, taxRates []entity.TaxRate, discounts []entity.Discount) Totals {
	var subtotal decimal.Decimal
	for _, item := range items {
		subtotal = subtotal.Add(decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice))
	}
	subtotal = subtotal.Round(2)

	var taxTotal decimal.Decimal
	for _, tax := range taxRates {
		taxTotal = taxTotal.Add(subtotal.Mul(tax.Rate).Div(hundred))
	}
	taxTotal = taxTotal.Round(2)

	var discountTotal decimal.Decimal
	for _, d := range discounts {
		discountTotal = discountTotal.Add(d.Amount)
	}

	total := subtotal.Add(taxTotal).Sub(discountTotal).Round(2)

	return Totals{
		Subtotal:    subtotal,
		TaxTotal:    taxTotal,
		TotalAmount: total,
	}
}

// ApplyTotals recalcula y escribe los montos derivados sobre la factura.
func ApplyTotals(inv *entity.Invoice) {
	t := ComputeTotals(inv.Items, inv.TaxRates, inv.Discounts)
	inv.Subtotal = t.Subtotal
	inv.TaxTotal = t.TaxTotal
	inv.TotalAmount = t.TotalAmount
}
