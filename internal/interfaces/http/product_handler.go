package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// ProductHandler catálogo, ajustes y auditoría del libro de stock.
type ProductHandler struct {
	catalog *inventory.ProductUseCase
	uc      *inventory.AuditUseCase
	log     *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(catalog *inventory.ProductUseCase, uc *inventory.AuditUseCase, log *logger.Logger) *ProductHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductHandler{catalog: catalog, uc: uc, log: log.Component("http")}
}

// Create godoc
// @Summary      Crear producto (stock inicial por el libro)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.catalog.Create(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.catalog.GetByID(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	out, err := h.catalog.List(c.UserContext(), ActorFrom(c), limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "Delta con signo y motivo"
// @Success      200   {object}  dto.ProductResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjustments [post]
func (h *ProductHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.catalog.Adjust(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Ledger godoc
// @Summary      Asientos del libro de stock de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/ledger [get]
func (h *ProductHandler) Ledger(c *fiber.Ctx) error {
	entries, err := h.uc.ProductLedger(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.FromLedgerEntries(entries))
}

// Reconcile godoc
// @Summary      Reproducir el libro y compararlo con el stock actual
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reconcile [get]
func (h *ProductHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.uc.ReconcileProduct(c.UserContext(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ReconcileResponse{
		ProductID:   rec.ProductID,
		Entries:     rec.Entries,
		Replayed:    rec.Replayed,
		Current:     rec.Current,
		Consistent:  rec.Consistent,
		BrokenAtSeq: rec.BrokenAtSeq,
	})
}
