package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"` // campo ofensor en errores de validación
}

// MessageResponse cuerpo de confirmación simple (ej. delete).
type MessageResponse struct {
	Message string `json:"message"`
}
