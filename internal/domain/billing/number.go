package billing

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoiceNumberPrefix prefijo del consecutivo legible de facturas.
const InvoiceNumberPrefix = "INV-"

// FormatInvoiceNumber formatea el consecutivo: INV- + 6 dígitos con ceros a la izquierda.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("%s%06d", InvoiceNumberPrefix, n)
}

// ParseInvoiceNumber extrae el valor numérico de un invoice number.
// Retorna error si el formato no es INV-<dígitos>.
func ParseInvoiceNumber(s string) (int64, error) {
	suffix, ok := strings.CutPrefix(s, InvoiceNumberPrefix)
	if !ok || suffix == "" {
		return 0, fmt.Errorf("invoice number %q no tiene el formato %s<dígitos>", s, InvoiceNumberPrefix)
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invoice number %q no tiene el formato %s<dígitos>", s, InvoiceNumberPrefix)
	}
	return n, nil
}

// NextInvoiceNumber deriva el siguiente consecutivo a partir de la última
// factura creada (nil si no existe ninguna).
//
// Si el número de la última factura no parsea, es un error de integridad de
// datos: se propaga y la creación falla, nunca se reinicia el consecutivo.
func NextInvoiceNumber(last string) (string, error) {
	if last == "" {
		return FormatInvoiceNumber(1), nil
	}
	n, err := ParseInvoiceNumber(last)
	if err != nil {
		return "", fmt.Errorf("última factura con número corrupto: %w", err)
	}
	return FormatInvoiceNumber(n + 1), nil
}
