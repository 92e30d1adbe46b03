package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio base. Los errores estructurados de abajo envuelven estos
// sentinels para que los llamadores puedan usar errors.Is.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrOverReturn          = errors.New("la devolución excede la cantidad disponible")
	ErrNotEditable         = errors.New("documento no editable")
	ErrAllocationExhausted = errors.New("no se pudo asignar un consecutivo")
	ErrStorage             = errors.New("error de almacenamiento")

	// ErrDuplicateNumber indica que el número de documento ya existe al insertar
	// (violación del índice único). Es condición de reintento, no se expone al cliente.
	ErrDuplicateNumber = errors.New("número de documento duplicado")
)

// ValidationError entrada mal formada (sin líneas, cantidad no positiva, etc.).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError documento, producto o línea inexistente (o de otro tenant).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound construye un NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientStockError un débito dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
		name, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// OverReturnError la cantidad devuelta supera lo que queda por devolver de la línea.
type OverReturnError struct {
	LineID          string
	Original        decimal.Decimal
	AlreadyReturned decimal.Decimal
	Requested       decimal.Decimal
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("línea %s: devolución de %s excede lo disponible (original %s, ya devuelto %s)",
		e.LineID, e.Requested.String(), e.Original.String(), e.AlreadyReturned.String())
}

func (e *OverReturnError) Unwrap() error { return ErrOverReturn }

// Remaining cantidad que aún se podía devolver.
func (e *OverReturnError) Remaining() decimal.Decimal {
	return e.Original.Sub(e.AlreadyReturned)
}

// EditabilityError el documento no puede modificarse; Restriction indica la regla
// (locked, period_locked, role_window_expired, cancelled) para que el cliente la explique.
type EditabilityError struct {
	Restriction string
	Reason      string
}

func (e *EditabilityError) Error() string {
	return fmt.Sprintf("documento no editable (%s): %s", e.Restriction, e.Reason)
}

func (e *EditabilityError) Unwrap() error { return ErrNotEditable }

// AllocationExhaustedError se agotaron los intentos de asignar consecutivo.
// Nada se confirmó, es seguro reintentar la operación completa.
type AllocationExhaustedError struct {
	Series   string
	Attempts int
}

func (e *AllocationExhaustedError) Error() string {
	return fmt.Sprintf("serie %s: consecutivo no asignado tras %d intentos", e.Series, e.Attempts)
}

func (e *AllocationExhaustedError) Unwrap() error { return ErrAllocationExhausted }

// StorageError fallo de transacción o conexión. La transacción garantiza que no
// hubo commit parcial, por lo que siempre es seguro reintentar.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorage) además de la cadena envuelta.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Storage envuelve err en un StorageError; nil si err es nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Códigos estables de error expuestos al cliente.
const (
	CodeValidation          = "VALIDATION"
	CodeNotFound            = "NOT_FOUND"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeOverReturn          = "OVER_RETURN"
	CodeNotEditable         = "NOT_EDITABLE"
	CodeAllocationExhausted = "ALLOCATION_EXHAUSTED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeStorage             = "STORAGE"
	CodeInternal            = "INTERNAL"
)

// Code clasifica un error en su código estable.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrOverReturn):
		return CodeOverReturn
	case errors.Is(err, ErrNotEditable):
		return CodeNotEditable
	case errors.Is(err, ErrAllocationExhausted), errors.Is(err, ErrDuplicateNumber):
		return CodeAllocationExhausted
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return CodeConflict
	case errors.Is(err, ErrStorage):
		return CodeStorage
	default:
		return CodeInternal
	}
}
