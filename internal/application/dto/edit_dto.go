package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ReturnedLineWarning línea original con devoluciones: no puede eliminarse ni
// quedar con menos cantidad que la ya devuelta.
type ReturnedLineWarning struct {
	LineID           string          `json:"line_id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
}

// EditabilityResponse resultado de GET /api/{bills|purchases}/:id/editability.
type EditabilityResponse struct {
	DocumentID    string                `json:"document_id"`
	Editable      bool                  `json:"editable"`
	Restriction   string                `json:"restriction"` // editable, locked, period_locked, role_window_expired, cancelled
	Reason        string                `json:"reason,omitempty"`
	ReturnedLines []ReturnedLineWarning `json:"returned_lines,omitempty"`
}

// EditHistoryResponse registro del historial con el snapshot decodificado.
type EditHistoryResponse struct {
	ID             string           `json:"id"`
	EditNumber     int              `json:"edit_number"`
	EditedBy       string           `json:"edited_by"`
	Reason         string           `json:"reason"`
	ChangesSummary string           `json:"changes_summary"`
	Original       *entity.Snapshot `json:"original"`
	CreatedAt      time.Time        `json:"created_at"`
}

// LedgerEntryResponse asiento del libro de stock.
type LedgerEntryResponse struct {
	ID             string          `json:"id"`
	Seq            int64           `json:"seq"`
	Type           string          `json:"type"`
	ReferenceID    string          `json:"reference_id"`
	ReferenceType  string          `json:"reference_type"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Note           string          `json:"note,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReconcileResponse resultado de GET /api/products/:id/reconcile.
type ReconcileResponse struct {
	ProductID   string          `json:"product_id"`
	Entries     int             `json:"entries"`
	Replayed    decimal.Decimal `json:"replayed"`
	Current     decimal.Decimal `json:"current"`
	Consistent  bool            `json:"consistent"`
	BrokenAtSeq int64           `json:"broken_at_seq,omitempty"`
}
