package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, batch_number, product_name, purchase_date, purchase_price,
	       default_sale_price, initial_quantity, current_quantity, created_at, updated_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste el lote. Una violación del UNIQUE de batch_number se
// devuelve como domain.ErrDuplicate.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (id, batch_number, product_name, purchase_date, purchase_price,
		                     default_sale_price, initial_quantity, current_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.BatchNumber, batch.ProductName, batch.PurchaseDate, batch.PurchasePrice,
		batch.DefaultSalePrice, batch.InitialQuantity, batch.CurrentQuantity,
		batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: batch_number %s", domain.ErrDuplicate, batch.BatchNumber)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID. Devuelve (nil, nil) si no existe.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByNumber obtiene un lote por su número de negocio. (nil, nil) si no existe.
func (r *BatchRepo) GetByNumber(batchNumber string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE batch_number = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, batchNumber))
}

// GetManyForUpdate obtiene los lotes indicados bloqueando sus filas
// (SELECT FOR UPDATE). El ORDER BY id mantiene un orden de adquisición de
// locks estable entre transacciones concurrentes. Usar solo dentro de una tx.
func (r *BatchRepo) GetManyForUpdate(ids []string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		return nil, fmt.Errorf("get batches for update: %w", err)
	}
	defer rows.Close()
	return r.scanList(rows)
}

// Update actualiza los campos mutables del lote. purchase_price y
// purchase_date no aparecen en el SET: son inmutables en todas las capas.
func (r *BatchRepo) Update(batch *entity.Batch) error {
	query := `
		UPDATE batches
		SET product_name       = $2,
		    default_sale_price = $3,
		    current_quantity   = $4,
		    updated_at         = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductName, batch.DefaultSalePrice, batch.CurrentQuantity, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// DecrementStock descuenta quantity unidades. El CHECK current_quantity >= 0
// de la tabla hace imposible el sobregiro aunque la app tuviera un bug.
func (r *BatchRepo) DecrementStock(id string, quantity int64) error {
	query := `
		UPDATE batches
		SET current_quantity = current_quantity - $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("decrement stock: %w", domain.ErrNotFound)
	}
	return nil
}

// List filtra por nombre de producto (ILIKE, opcional). Orden por nombre de
// producto y número de lote para paginación determinista.
func (r *BatchRepo) List(productName string, limit, offset int) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches
		WHERE ($1 = '' OR product_name ILIKE '%' || $1 || '%')
		ORDER BY product_name, batch_number
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, productName, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	return r.scanList(rows)
}

// ListAvailable devuelve los lotes con stock disponible, mismo orden que List.
func (r *BatchRepo) ListAvailable() ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches
		WHERE current_quantity > 0
		ORDER BY product_name, batch_number`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list available batches: %w", err)
	}
	defer rows.Close()
	return r.scanList(rows)
}

// CountItemsReferencing cuenta las líneas de venta que referencian el lote.
func (r *BatchRepo) CountItemsReferencing(batchID string) (int64, error) {
	var count int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM order_items WHERE batch_id = $1`, batchID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items referencing batch: %w", err)
	}
	return count, nil
}

// Delete elimina el lote. El FK ON DELETE RESTRICT de order_items respalda
// el chequeo de la app: una violación se devuelve como ErrConflict.
func (r *BatchRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el lote tiene ventas asociadas", domain.ErrConflict)
		}
		return fmt.Errorf("delete batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) scanOne(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.BatchNumber, &b.ProductName, &b.PurchaseDate, &b.PurchasePrice,
		&b.DefaultSalePrice, &b.InitialQuantity, &b.CurrentQuantity, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

func (r *BatchRepo) scanList(rows pgx.Rows) ([]*entity.Batch, error) {
	var list []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(
			&b.ID, &b.BatchNumber, &b.ProductName, &b.PurchaseDate, &b.PurchasePrice,
			&b.DefaultSalePrice, &b.InitialQuantity, &b.CurrentQuantity, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
