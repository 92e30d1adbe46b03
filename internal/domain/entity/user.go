package entity

// Roles válidos, de mayor a menor privilegio.
const (
	RoleOwner   = "owner"   // máximo privilegio: puede editar documentos en periodo tributario cerrado
	RoleAdmin   = "admin"   // bloquea y desbloquea documentos
	RoleManager = "manager"
	RoleCashier = "cashier" // operador de caja, sujeto a la ventana corta de edición
)

// Actor contexto autenticado de la petición (lo provee el colaborador de auth).
type Actor struct {
	TenantID string
	UserID   string
	Role     string
}

// IsAdministrator owner o admin.
func (a Actor) IsAdministrator() bool {
	return a.Role == RoleOwner || a.Role == RoleAdmin
}

// IsHighestPrivilege solo owner.
func (a Actor) IsHighestPrivilege() bool {
	return a.Role == RoleOwner
}

// IsOperator cajero de primera línea.
func (a Actor) IsOperator() bool {
	return a.Role == RoleCashier
}

// ValidRole indica si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}
