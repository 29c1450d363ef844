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

var _ repository.ProfitShareRepository = (*ProfitShareRepo)(nil)

const shareColumns = `id, month, year, total_profit, amount_per_owner, executed_at, created_at`

// ProfitShareRepo implementación de ProfitShareRepository (usable con pool o tx).
type ProfitShareRepo struct {
	q Querier
}

// NewProfitShareRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProfitShareRepository(q Querier) *ProfitShareRepo {
	return &ProfitShareRepo{q: q}
}

// Create persiste el reparto. El UNIQUE (month, year) de la tabla es la
// garantía dura de ejecución única: dos disparos concurrentes del mismo mes
// no pueden insertar ambos: el perdedor recibe ErrConflict.
func (r *ProfitShareRepo) Create(share *entity.ProfitShare) error {
	if share.ID == "" {
		share.ID = uuid.New().String()
	}
	query := `
		INSERT INTO profit_shares (id, month, year, total_profit, amount_per_owner, executed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		share.ID, share.Month, share.Year, share.TotalProfit, share.AmountPerOwner,
		share.ExecutedAt, share.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ya existe un reparto para %d/%d", domain.ErrConflict, share.Month, share.Year)
		}
		return fmt.Errorf("insert profit share: %w", err)
	}
	return nil
}

// GetByID obtiene un reparto por ID. (nil, nil) si no existe.
func (r *ProfitShareRepo) GetByID(id string) (*entity.ProfitShare, error) {
	query := `SELECT ` + shareColumns + ` FROM profit_shares WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByMonthYear obtiene el reparto de un mes. (nil, nil) si no se ha ejecutado.
func (r *ProfitShareRepo) GetByMonthYear(month, year int) (*entity.ProfitShare, error) {
	query := `SELECT ` + shareColumns + ` FROM profit_shares WHERE month = $1 AND year = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, month, year))
}

// List devuelve todos los repartos, ejecutados más recientes primero.
func (r *ProfitShareRepo) List() ([]*entity.ProfitShare, error) {
	query := `SELECT ` + shareColumns + ` FROM profit_shares ORDER BY executed_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list profit shares: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProfitShare
	for rows.Next() {
		var s entity.ProfitShare
		if err := rows.Scan(&s.ID, &s.Month, &s.Year, &s.TotalProfit, &s.AmountPerOwner, &s.ExecutedAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profit share: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *ProfitShareRepo) scanOne(row pgx.Row) (*entity.ProfitShare, error) {
	var s entity.ProfitShare
	err := row.Scan(&s.ID, &s.Month, &s.Year, &s.TotalProfit, &s.AmountPerOwner, &s.ExecutedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profit share: %w", err)
	}
	return &s, nil
}
