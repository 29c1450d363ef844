package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder representa la cabecera de una venta. TotalProfit queda fijado en
// la creación (suma de las utilidades de línea) y nunca se recalcula.
// Una vez Locked = true (incluida en un reparto de utilidades) la orden y sus
// líneas son de solo lectura: no se actualiza ni se elimina.
type SalesOrder struct {
	ID           string
	OrderDate    time.Time
	CustomerName string // opcional
	TotalProfit  decimal.Decimal
	Locked       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrderItem representa una línea de venta contra exactamente un lote.
// Profit = (SalePrice - PurchasePrice del lote) * Quantity; puede ser negativo
// (las pérdidas se conservan, no se recortan a cero).
type OrderItem struct {
	ID        string
	OrderID   string
	BatchID   string
	Quantity  int64
	SalePrice decimal.Decimal
	Profit    decimal.Decimal
}
