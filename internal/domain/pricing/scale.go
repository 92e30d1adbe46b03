package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

// Escalas de las columnas NUMERIC donde se persisten los valores.
const (
	QuantityPlaces = 3
	MoneyPlaces    = moneyPlaces
	RatePlaces     = 2
)

// FitsScale indica si v se representa sin redondeo con places decimales.
func FitsScale(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Truncate(places))
}

// CheckScale ValidationError si v tiene más decimales de los que admite su columna.
func CheckScale(field string, v decimal.Decimal, places int32) error {
	if FitsScale(v, places) {
		return nil
	}
	return domain.Invalid(field, fmt.Sprintf("admite como máximo %d decimales", places))
}
