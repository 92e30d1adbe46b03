package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/billing"
	"github.com/jhoicas/pos-ledger/internal/application/editing"
	"github.com/jhoicas/pos-ledger/internal/application/inventory"
	"github.com/jhoicas/pos-ledger/internal/application/returns"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Documents *billing.DocumentUseCase
	Returns   *returns.ReturnUseCase
	Editing   *editing.EditUseCase
	Catalog   *inventory.ProductUseCase
	Audit     *inventory.AuditUseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	for _, docType := range []entity.DocumentType{entity.DocumentBill, entity.DocumentPurchase} {
		h := NewDocumentHandler(docType, deps.Documents, deps.Returns, deps.Editing, deps.Log)
		g := api.Group("/" + string(docType) + "s")
		g.Post("/", h.Create)
		g.Get("/:id", h.GetByID)
		g.Put("/:id", h.Edit)
		g.Post("/:id/cancel", h.Cancel)
		g.Post("/:id/returns", h.CreateReturn)
		g.Get("/:id/returns", h.ListReturns)
		g.Get("/:id/editability", h.Editability)
		g.Get("/:id/history", h.History)
		// el caso de uso vuelve a validar; aquí se corta antes de abrir transacción
		g.Post("/:id/lock", RequireRole(entity.RoleOwner, entity.RoleAdmin), h.Lock)
		g.Delete("/:id/lock", RequireRole(entity.RoleOwner, entity.RoleAdmin), h.Unlock)
	}

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Catalog, deps.Audit, deps.Log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/:id/adjustments", productHandler.Adjust)
	products.Get("/:id/ledger", productHandler.Ledger)
	products.Get("/:id/reconcile", productHandler.Reconcile)
}
