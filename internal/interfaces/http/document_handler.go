package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/billing"
	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/editing"
	"github.com/jhoicas/pos-ledger/internal/application/returns"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// DocumentHandler atiende /api/bills y /api/purchases; docType fija cuál.
type DocumentHandler struct {
	docType entity.DocumentType
	docs    *billing.DocumentUseCase
	rets    *returns.ReturnUseCase
	edits   *editing.EditUseCase
	log     *logger.Logger
}

// NewDocumentHandler construye el handler para un tipo de documento.
func NewDocumentHandler(docType entity.DocumentType, docs *billing.DocumentUseCase, rets *returns.ReturnUseCase, edits *editing.EditUseCase, log *logger.Logger) *DocumentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentHandler{docType: docType, docs: docs, rets: rets, edits: edits, log: log.Component("http")}
}

// Create godoc
// @Summary      Registrar factura o compra
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DocumentRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/bills [post]
// @Router       /api/purchases [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.DocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var (
		out *dto.DocumentResponse
		err error
	)
	if h.docType == entity.DocumentBill {
		out, err = h.docs.CreateBill(c.UserContext(), ActorFrom(c), in)
	} else {
		out, err = h.docs.CreatePurchase(c.UserContext(), ActorFrom(c), in)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento con sus líneas
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bills/{id} [get]
// @Router       /api/purchases/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.docs.GetDocument(c.UserContext(), ActorFrom(c), h.docType, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Anular documento y revertir su stock
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.CancelRequest  true  "Motivo"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/bills/{id}/cancel [post]
// @Router       /api/purchases/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var (
		out *dto.DocumentResponse
		err error
	)
	if h.docType == entity.DocumentBill {
		out, err = h.docs.CancelBill(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	} else {
		out, err = h.docs.CancelPurchase(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateReturn godoc
// @Summary      Registrar devolución contra el documento
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento original"
// @Param        body  body  dto.ReturnRequest  true  "Líneas devueltas"
// @Success      201   {object}  dto.ReturnResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/bills/{id}/returns [post]
// @Router       /api/purchases/{id}/returns [post]
func (h *DocumentHandler) CreateReturn(c *fiber.Ctx) error {
	var in dto.ReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var (
		out *dto.ReturnResponse
		err error
	)
	if h.docType == entity.DocumentBill {
		out, err = h.rets.CreateSalesReturn(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	} else {
		out, err = h.rets.CreatePurchaseReturn(c.UserContext(), ActorFrom(c), c.Params("id"), in)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListReturns godoc
// @Summary      Devoluciones registradas contra el documento
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento original"
// @Success      200  {array}   dto.ReturnResponse
// @Router       /api/bills/{id}/returns [get]
// @Router       /api/purchases/{id}/returns [get]
func (h *DocumentHandler) ListReturns(c *fiber.Ctx) error {
	if _, err := h.docs.GetDocument(c.UserContext(), ActorFrom(c), h.docType, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.rets.ListByParent(c.UserContext(), ActorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Editability godoc
// @Summary      Consultar si el documento se puede editar
// @Tags         editing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.EditabilityResponse
// @Router       /api/bills/{id}/editability [get]
// @Router       /api/purchases/{id}/editability [get]
func (h *DocumentHandler) Editability(c *fiber.Ctx) error {
	out, err := h.edits.PreviewEditability(c.UserContext(), ActorFrom(c), h.docType, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Edit godoc
// @Summary      Editar documento (reemplaza las líneas y registra historial)
// @Tags         editing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.EditDocumentRequest  true  "Nuevo estado y motivo"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/bills/{id} [put]
// @Router       /api/purchases/{id} [put]
func (h *DocumentHandler) Edit(c *fiber.Ctx) error {
	var in dto.EditDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.edits.EditTransaction(c.UserContext(), ActorFrom(c), h.docType, c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Lock godoc
// @Summary      Bloquear documento para edición
// @Tags         editing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.LockRequest  true  "Motivo"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/bills/{id}/lock [post]
// @Router       /api/purchases/{id}/lock [post]
func (h *DocumentHandler) Lock(c *fiber.Ctx) error {
	var in dto.LockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.edits.Lock(c.UserContext(), ActorFrom(c), h.docType, c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Unlock godoc
// @Summary      Desbloquear documento
// @Tags         editing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/bills/{id}/lock [delete]
// @Router       /api/purchases/{id}/lock [delete]
func (h *DocumentHandler) Unlock(c *fiber.Ctx) error {
	out, err := h.edits.Unlock(c.UserContext(), ActorFrom(c), h.docType, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de ediciones con snapshots
// @Tags         editing
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}   dto.EditHistoryResponse
// @Router       /api/bills/{id}/history [get]
// @Router       /api/purchases/{id}/history [get]
func (h *DocumentHandler) History(c *fiber.Ctx) error {
	out, err := h.edits.ListEditHistory(c.UserContext(), ActorFrom(c), h.docType, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
