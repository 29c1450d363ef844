package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardSummary agregados de solo lectura para el tablero.
type DashboardSummary struct {
	BatchCount        int64
	UnitsInStock      int64
	StockCostValue    decimal.Decimal // Σ current_quantity * purchase_price
	ProfitThisMonth   decimal.Decimal
	UnsharedProfit    decimal.Decimal // utilidad de órdenes aún no bloqueadas
	LastShareExecuted *time.Time
}

// ReportRepository consultas de solo lectura para reportes (no muta estado).
type ReportRepository interface {
	GetDashboardSummary(ctx context.Context, monthStart, monthEnd time.Time) (*DashboardSummary, error)
}
