package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// StatusFor traduce un código de dominio a status HTTP.
func StatusFor(code string) int {
	switch code {
	case domain.CodeValidation:
		return fiber.StatusBadRequest
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeInsufficientStock, domain.CodeConflict:
		return fiber.StatusConflict
	case domain.CodeOverReturn, domain.CodeNotEditable:
		return fiber.StatusUnprocessableEntity
	case domain.CodeForbidden:
		return fiber.StatusForbidden
	case domain.CodeAllocationExhausted, domain.CodeStorage:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError escribe {code, message, details} y registra los fallos de servidor.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	code := domain.Code(err)
	status := StatusFor(code)
	body := dto.ErrorResponse{Code: code, Message: err.Error(), Details: details(err)}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("code", code).Str("path", c.Path()).Str("tenant_id", GetTenantID(c)).Msg("error procesando petición")
		if code == domain.CodeInternal || code == domain.CodeStorage {
			// el detalle de almacenamiento no sale al cliente
			body.Message = "error interno, reintente la operación"
		}
	}
	return c.Status(status).JSON(body)
}

func details(err error) map[string]any {
	var (
		stock *domain.InsufficientStockError
		over  *domain.OverReturnError
		edit  *domain.EditabilityError
		val   *domain.ValidationError
		alloc *domain.AllocationExhaustedError
	)
	switch {
	case errors.As(err, &stock):
		return map[string]any{"product_id": stock.ProductID, "available": stock.Available, "requested": stock.Requested}
	case errors.As(err, &over):
		return map[string]any{"line_id": over.LineID, "original": over.Original, "already_returned": over.AlreadyReturned, "remaining": over.Remaining()}
	case errors.As(err, &edit):
		return map[string]any{"restriction": edit.Restriction}
	case errors.As(err, &val):
		if val.Field == "" {
			return nil
		}
		return map[string]any{"field": val.Field}
	case errors.As(err, &alloc):
		return map[string]any{"series": alloc.Series, "attempts": alloc.Attempts}
	}
	return nil
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeValidation, Message: "cuerpo inválido"})
}
