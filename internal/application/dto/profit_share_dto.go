package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExecuteShareRequest body para POST /api/profit-shares.
type ExecuteShareRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ProfitShareResponse representación de un reparto de utilidades.
type ProfitShareResponse struct {
	ID             string          `json:"id"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	AmountPerOwner decimal.Decimal `json:"amount_per_owner"`
	OrdersLocked   int             `json:"orders_locked"`
	ExecutedAt     time.Time       `json:"executed_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ProfitShareListResponse lista de repartos, ejecutados más recientes primero.
type ProfitShareListResponse struct {
	Shares []ProfitShareResponse `json:"shares"`
	Total  int                   `json:"total"`
}
