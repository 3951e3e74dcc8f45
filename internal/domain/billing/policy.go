package billing

import "github.com/invorya/invoice-api/internal/domain/entity"

// Operation operación sobre una factura evaluada por la política de acceso.
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Principal actor autenticado. El core solo lee ID y Role; la resolución de
// credenciales ocurre fuera (middleware JWT).
type Principal struct {
	ID   string
	Role string
}

// IsAdmin indica si el principal tiene rol administrador.
func (p Principal) IsAdmin() bool { return p.Role == entity.RoleAdmin }

// CanAccess decide si el principal puede ejecutar op sobre la factura.
//
// Reglas:
//   - admin: cualquier operación sobre cualquier factura.
//   - user: solo read sobre sus propias facturas (created_by == principal.ID);
//     update y delete nunca, sin importar la propiedad.
//
// La existencia de la factura se verifica antes de llamar aquí: NotFound y
// Forbidden son fallos distintos y el 404 se resuelve primero.
func CanAccess(p Principal, inv *entity.Invoice, op Operation) bool {
	if p.IsAdmin() {
		return true
	}
	return op == OpRead && inv.CreatedBy == p.ID
}
