// Package editability decide si un documento publicado todavía puede modificarse.
// La decisión se evalúa de nuevo en cada intento (nunca se cachea).
package editability

import (
	"fmt"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// Kind resultado etiquetado de la evaluación.
type Kind string

const (
	Editable          Kind = "editable"
	Locked            Kind = "locked"
	PeriodLocked      Kind = "period_locked"
	RoleWindowExpired Kind = "role_window_expired"
	Cancelled         Kind = "cancelled"
)

// Policy plazos vigentes para el tenant.
type Policy struct {
	TaxLockDays    int
	OperatorWindow time.Duration
}

// DefaultPolicy 30 días de ventana tributaria y 24 h para cajeros.
func DefaultPolicy() Policy {
	return Policy{TaxLockDays: 30, OperatorWindow: 24 * time.Hour}
}

// PolicyFor combina los defaults con la configuración del tenant (valores cero = default).
func PolicyFor(base Policy, s *entity.TenantSettings) Policy {
	if s == nil {
		return base
	}
	p := base
	if s.TaxLockDays > 0 {
		p.TaxLockDays = s.TaxLockDays
	}
	if s.OperatorEditWindowHours > 0 {
		p.OperatorWindow = time.Duration(s.OperatorEditWindowHours) * time.Hour
	}
	return p
}

// Decision resultado de Evaluate.
type Decision struct {
	Kind   Kind
	Reason string
	// HasReturns el documento tiene devoluciones; sigue siendo editable pero el
	// llamador debe restringir qué líneas puede tocar.
	HasReturns bool
}

// Allowed indica si la edición está permitida.
func (d Decision) Allowed() bool { return d.Kind == Editable }

// Err convierte una decisión negativa en *domain.EditabilityError; nil si es editable.
func (d Decision) Err() error {
	if d.Allowed() {
		return nil
	}
	return &domain.EditabilityError{Restriction: string(d.Kind), Reason: d.Reason}
}

// Evaluate aplica las reglas en orden: anulado, bloqueo explícito, periodo
// tributario, ventana del operador y por último devoluciones (advertencia).
func Evaluate(doc *entity.Document, actor entity.Actor, now time.Time, p Policy, hasReturns bool) Decision {
	if doc.Status == entity.StatusCancelled {
		return Decision{Kind: Cancelled, Reason: "el documento está anulado"}
	}
	if doc.IsLocked {
		reason := "documento bloqueado"
		if doc.LockedReason != "" {
			reason = fmt.Sprintf("documento bloqueado: %s", doc.LockedReason)
		}
		return Decision{Kind: Locked, Reason: reason}
	}
	age := now.Sub(doc.CreatedAt)
	if p.TaxLockDays > 0 && age > time.Duration(p.TaxLockDays)*24*time.Hour && !actor.IsHighestPrivilege() {
		return Decision{Kind: PeriodLocked, Reason: fmt.Sprintf("documento con más de %d días: periodo tributario cerrado", p.TaxLockDays)}
	}
	if actor.IsOperator() && p.OperatorWindow > 0 && age > p.OperatorWindow {
		return Decision{Kind: RoleWindowExpired, Reason: fmt.Sprintf("el rol %s solo puede editar durante %s", actor.Role, p.OperatorWindow)}
	}
	return Decision{Kind: Editable, HasReturns: hasReturns}
}
