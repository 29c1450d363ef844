package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de compra: un producto adquirido en una fecha con
// un costo unitario fijo y una cantidad que solo disminuye con las ventas.
// PurchasePrice y PurchaseDate son inmutables después de la creación; el
// costo histórico de cada venta se calcula siempre contra este lote.
type Batch struct {
	ID               string
	BatchNumber      string // identificador de negocio, único e inmutable
	ProductName      string
	PurchaseDate     time.Time
	PurchasePrice    decimal.Decimal
	DefaultSalePrice *decimal.Decimal // precio de venta sugerido, opcional
	InitialQuantity  int64
	CurrentQuantity  int64 // 0 <= CurrentQuantity <= InitialQuantity
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Available indica si el lote tiene al menos quantity unidades disponibles.
func (b *Batch) Available(quantity int64) bool {
	return quantity > 0 && b.CurrentQuantity >= quantity
}
