package profitshare

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// ShareTxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de órdenes y repartos atados a esa tx. Insertar el reparto y
// bloquear las órdenes incluidas confirman o revierten juntos: un crash entre
// ambos efectos no deja ninguno durable.
type ShareTxRunner interface {
	RunShare(ctx context.Context, fn func(
		orderRepo repository.SalesOrderRepository,
		shareRepo repository.ProfitShareRepository,
	) error) error
}
