package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/normalize"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

const orderColumns = `id, order_date, customer_name, total_profit, locked, created_at, updated_at`

// SalesOrderRepo implementación de SalesOrderRepository (usable con pool o tx).
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

// Create persiste la cabecera de la orden. customer_name_folded guarda el
// nombre normalizado (minúsculas, sin tildes) para búsqueda por substring.
func (r *SalesOrderRepo) Create(order *entity.SalesOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales_orders (id, order_date, customer_name, customer_name_folded, total_profit, locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.OrderDate, nullIfEmpty(order.CustomerName), nullIfEmpty(normalize.Fold(order.CustomerName)),
		order.TotalProfit, order.Locked, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sales order: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de venta.
func (r *SalesOrderRepo) CreateItem(item *entity.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO order_items (id, order_id, batch_id, quantity, sale_price, profit)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.BatchID, item.Quantity, item.SalePrice, item.Profit,
	)
	if err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. (nil, nil) si no existe.
func (r *SalesOrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE id = $1`
	return r.scanOrder(r.q.QueryRow(context.Background(), query, id))
}

// GetByIDForUpdate obtiene la orden bloqueando su fila (FOR UPDATE). Usar
// solo dentro de una tx: mantiene el estado locked estable hasta el Commit,
// de modo que un reparto concurrente no puede bloquear la orden a mitad de
// un borrado.
func (r *SalesOrderRepo) GetByIDForUpdate(id string) (*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE id = $1 FOR UPDATE`
	return r.scanOrder(r.q.QueryRow(context.Background(), query, id))
}

func (r *SalesOrderRepo) scanOrder(row pgx.Row) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	var customer *string
	err := row.Scan(
		&o.ID, &o.OrderDate, &customer, &o.TotalProfit, &o.Locked, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	if customer != nil {
		o.CustomerName = *customer
	}
	return &o, nil
}

// GetItemsByOrderID obtiene todas las líneas de una orden.
func (r *SalesOrderRepo) GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error) {
	query := `
		SELECT id, order_id, batch_id, quantity, sale_price, profit
		FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BatchID, &it.Quantity, &it.SalePrice, &it.Profit); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List lista órdenes por fecha descendente con filtros opcionales. La
// búsqueda por cliente compara contra customer_name_folded (insensible a
// mayúsculas y acentos).
func (r *SalesOrderRepo) List(filter repository.OrderFilter) ([]*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + `
		FROM sales_orders
		WHERE ($1::timestamptz IS NULL OR order_date >= $1)
		  AND ($2::timestamptz IS NULL OR order_date < $2)
		  AND ($3::boolean IS NULL OR locked = $3)
		  AND ($4 = '' OR customer_name_folded LIKE '%' || $4 || '%')
		ORDER BY order_date DESC
		LIMIT $5 OFFSET $6`
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.q.Query(context.Background(), query,
		filter.StartDate, filter.EndDate, filter.Locked,
		normalize.Fold(filter.CustomerName), limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// Delete elimina la orden y todas sus líneas (primero las líneas, luego la
// cabecera). El stock no se restaura. Usar solo dentro de una tx, tras
// GetByIDForUpdate: el predicado locked = false es el respaldo del
// re-chequeo, no su sustituto.
func (r *SalesOrderRepo) Delete(id string) error {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM sales_orders WHERE id = $1 AND locked = false`, id)
	if err != nil {
		return fmt.Errorf("delete sales order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListUnlockedInRange devuelve las órdenes no bloqueadas con order_date en
// [start, end), bloqueando sus filas (FOR UPDATE). Usar solo dentro de una tx:
// es la base del reparto mensual, nadie puede bloquear o borrar estas
// órdenes entre la suma y el lock.
func (r *SalesOrderRepo) ListUnlockedInRange(start, end time.Time) ([]*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + `
		FROM sales_orders
		WHERE order_date >= $1 AND order_date < $2 AND locked = false
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, start, end)
	if err != nil {
		return nil, fmt.Errorf("list unlocked orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// LockOrders marca locked = true en todas las órdenes indicadas.
func (r *SalesOrderRepo) LockOrders(ids []string) error {
	query := `UPDATE sales_orders SET locked = true, updated_at = now() WHERE id = ANY($1)`
	tag, err := r.q.Exec(context.Background(), query, ids)
	if err != nil {
		return fmt.Errorf("lock orders: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("lock orders: esperadas %d filas, afectadas %d", len(ids), tag.RowsAffected())
	}
	return nil
}

func scanOrders(rows pgx.Rows) ([]*entity.SalesOrder, error) {
	var list []*entity.SalesOrder
	for rows.Next() {
		var o entity.SalesOrder
		var customer *string
		if err := rows.Scan(&o.ID, &o.OrderDate, &customer, &o.TotalProfit, &o.Locked, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		if customer != nil {
			o.CustomerName = *customer
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
