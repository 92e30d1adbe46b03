package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EditHistoryRecord foto inmutable de un documento justo antes de una edición.
// Nunca se actualiza ni se borra.
type EditHistoryRecord struct {
	ID              string
	TenantID        string
	TransactionType DocumentType
	TransactionID   string
	EditNumber      int
	EditedBy        string
	Reason          string
	ChangesSummary  string
	OriginalData    []byte // Snapshot codificado (EncodeSnapshot)
	CreatedAt       time.Time
}

// SnapshotVersion versión actual del esquema de OriginalData.
// Subirla solo al cambiar los campos de DocumentSnapshot/LineSnapshot, manteniendo el decode de las anteriores.
const SnapshotVersion = 1

// Snapshot contenido versionado de OriginalData.
type Snapshot struct {
	Version  int              `json:"version"`
	Document DocumentSnapshot `json:"document"`
	Lines    []LineSnapshot   `json:"lines"`
}

// DocumentSnapshot cabecera tal como estaba antes de la edición.
type DocumentSnapshot struct {
	ID             string          `json:"id"`
	Type           DocumentType    `json:"type"`
	Number         string          `json:"number"`
	PartyName      string          `json:"party_name"`
	PartyContact   string          `json:"party_contact"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	RoundOff       decimal.Decimal `json:"round_off"`
	PaymentMode    string          `json:"payment_mode"`
	Status         string          `json:"status"`
	TaxSuppressed  bool            `json:"tax_suppressed"`
	Notes          string          `json:"notes"`
	EditCount      int             `json:"edit_count"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// LineSnapshot línea tal como estaba antes de la edición.
type LineSnapshot struct {
	ID             string          `json:"id"`
	Position       int             `json:"position"`
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	SKU            string          `json:"sku"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GSTRate        decimal.Decimal `json:"gst_rate"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	LineSubtotal   decimal.Decimal `json:"line_subtotal"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// NewSnapshot arma la foto del documento y sus líneas con la versión vigente.
func NewSnapshot(doc *Document, lines []*LineItem) Snapshot {
	s := Snapshot{
		Version: SnapshotVersion,
		Document: DocumentSnapshot{
			ID:             doc.ID,
			Type:           doc.Type,
			Number:         doc.Number,
			PartyName:      doc.PartyName,
			PartyContact:   doc.PartyContact,
			Subtotal:       doc.Subtotal,
			DiscountAmount: doc.DiscountAmount,
			GSTAmount:      doc.GSTAmount,
			TotalAmount:    doc.TotalAmount,
			RoundOff:       doc.RoundOff,
			PaymentMode:    doc.PaymentMode,
			Status:         doc.Status,
			TaxSuppressed:  doc.TaxSuppressed,
			Notes:          doc.Notes,
			EditCount:      doc.EditCount,
			CreatedBy:      doc.CreatedBy,
			CreatedAt:      doc.CreatedAt,
		},
		Lines: make([]LineSnapshot, 0, len(lines)),
	}
	for _, l := range lines {
		s.Lines = append(s.Lines, LineSnapshot{
			ID:             l.ID,
			Position:       l.Position,
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			SKU:            l.SKU,
			Unit:           l.Unit,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			GSTRate:        l.GSTRate,
			GSTAmount:      l.GSTAmount,
			LineSubtotal:   l.LineSubtotal,
			LineTotal:      l.LineTotal,
		})
	}
	return s
}

// EncodeSnapshot serializa la foto para OriginalData.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	return json.Marshal(s)
}

// DecodeSnapshot interpreta OriginalData según su versión.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	switch head.Version {
	case 1:
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot v1: %w", err)
		}
		return s, nil
	default:
		return Snapshot{}, fmt.Errorf("decode snapshot: versión %d no soportada", head.Version)
	}
}
