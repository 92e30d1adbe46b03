package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rounder política de redondeo del total del documento. La diferencia se
// registra como round_off.
type Rounder interface {
	Round(amount decimal.Decimal) decimal.Decimal
}

// Modos de redondeo configurables.
const (
	RoundUnit = "unit" // entero más cercano de la moneda
	RoundCent = "cent" // dos decimales
	RoundNone = "none"
)

type placesRounder int32

func (p placesRounder) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(int32(p))
}

type noRounder struct{}

func (noRounder) Round(amount decimal.Decimal) decimal.Decimal { return amount }

// NewRounder devuelve el Rounder para mode.
func NewRounder(mode string) (Rounder, error) {
	switch mode {
	case RoundUnit, "":
		return placesRounder(0), nil
	case RoundCent:
		return placesRounder(2), nil
	case RoundNone:
		return noRounder{}, nil
	default:
		return nil, fmt.Errorf("pricing: modo de redondeo desconocido %q", mode)
	}
}
