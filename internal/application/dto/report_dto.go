package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardResponse agregados de solo lectura para el tablero principal.
type DashboardResponse struct {
	BatchCount        int64           `json:"batch_count"`
	UnitsInStock      int64           `json:"units_in_stock"`
	StockCostValue    decimal.Decimal `json:"stock_cost_value"`
	ProfitThisMonth   decimal.Decimal `json:"profit_this_month"`
	UnsharedProfit    decimal.Decimal `json:"unshared_profit"`
	LastShareExecuted *time.Time      `json:"last_share_executed,omitempty"`
}
