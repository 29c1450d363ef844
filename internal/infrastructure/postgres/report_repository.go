package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para el tablero. No participa en
// transacciones: siempre va directo al pool.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// GetDashboardSummary agrega en una sola consulta: lotes y unidades en
// stock, valor del inventario a costo, utilidad del mes en curso y utilidad
// acumulada aún no repartida (órdenes sin bloquear).
func (r *ReportRepo) GetDashboardSummary(ctx context.Context, monthStart, monthEnd time.Time) (*repository.DashboardSummary, error) {
	const query = `
	SELECT
	    (SELECT COUNT(*)                                          FROM batches)                                   AS batch_count,
	    (SELECT COALESCE(SUM(current_quantity), 0)                FROM batches)                                   AS units_in_stock,
	    (SELECT COALESCE(SUM(current_quantity * purchase_price), 0) FROM batches)                                 AS stock_cost_value,
	    (SELECT COALESCE(SUM(total_profit), 0) FROM sales_orders WHERE order_date >= $1 AND order_date < $2)      AS profit_this_month,
	    (SELECT COALESCE(SUM(total_profit), 0) FROM sales_orders WHERE locked = false)                            AS unshared_profit,
	    (SELECT MAX(executed_at) FROM profit_shares)                                                              AS last_share_executed`

	var s repository.DashboardSummary
	err := r.pool.QueryRow(ctx, query, monthStart, monthEnd).Scan(
		&s.BatchCount, &s.UnitsInStock, &s.StockCostValue,
		&s.ProfitThisMonth, &s.UnsharedProfit, &s.LastShareExecuted,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &s, nil
}
