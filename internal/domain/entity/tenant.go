package entity

// Series de numeración por tenant.
const (
	SeriesBill           = "bill"
	SeriesPurchase       = "purchase"
	SeriesSalesReturn    = "sales_return"
	SeriesPurchaseReturn = "purchase_return"
)

// DefaultNumberPattern formato por defecto: PREFIX-YYYYMMDD-NNNN.
const DefaultNumberPattern = "{PREFIX}-{DATE}-{SEQUENCE4}"

// DefaultPrefix prefijo usado cuando el tenant aún no configuró la serie.
func DefaultPrefix(series string) string {
	switch series {
	case SeriesBill:
		return "INV"
	case SeriesPurchase:
		return "PUR"
	case SeriesSalesReturn:
		return "SR"
	case SeriesPurchaseReturn:
		return "PR"
	default:
		return "DOC"
	}
}

// NumberSeries contador durable de consecutivos de un tenant para una serie.
// NextSequence es el próximo valor a usar.
type NumberSeries struct {
	TenantID     string
	Series       string
	Prefix       string
	Pattern      string
	NextSequence int64
}

// TenantSettings configuración del tenant que consume el motor.
// Los valores cero se reemplazan por los defaults del proceso (ver config.LedgerConfig).
type TenantSettings struct {
	TenantID                string
	TaxLockDays             int
	OperatorEditWindowHours int
	AllowNegativeStock      bool
	RoundingMode            string // unit, cent, none
}
