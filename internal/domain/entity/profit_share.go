package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OwnerCount número fijo de socios entre los que se reparte la utilidad.
const OwnerCount = 2

// ProfitShare representa el reparto mensual de utilidades entre los socios.
// El par (Month, Year) es único: constraint en la base de datos, no solo un
// chequeo de aplicación. Una vez creado nunca se actualiza ni se elimina.
type ProfitShare struct {
	ID             string
	Month          int // 1-12
	Year           int
	TotalProfit    decimal.Decimal // puede ser negativo (mes con pérdida)
	AmountPerOwner decimal.Decimal // TotalProfit / OwnerCount
	ExecutedAt     time.Time
	CreatedAt      time.Time
}
