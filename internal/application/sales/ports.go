package sales

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para la creación de
// órdenes: cabecera, líneas y descuentos de stock confirman o revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		orderRepo repository.SalesOrderRepository,
	) error) error
}
