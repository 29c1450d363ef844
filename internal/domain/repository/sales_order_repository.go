package repository

import (
	"time"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// OrderFilter filtros para listar órdenes de venta.
type OrderFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	Locked       *bool
	CustomerName string // substring, insensible a mayúsculas y acentos
	Limit        int
	Offset       int
}

// SalesOrderRepository define el puerto de persistencia para SalesOrder y sus líneas.
type SalesOrderRepository interface {
	Create(order *entity.SalesOrder) error
	CreateItem(item *entity.OrderItem) error
	GetByID(id string) (*entity.SalesOrder, error)
	// GetByIDForUpdate obtiene la orden bloqueando su fila (FOR UPDATE).
	// (nil, nil) si no existe. Usar en tx: es el re-chequeo de locked previo
	// a Delete.
	GetByIDForUpdate(id string) (*entity.SalesOrder, error)
	GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error)
	List(filter OrderFilter) ([]*entity.SalesOrder, error)
	// Delete elimina la orden y, como efecto explícito y documentado, todas
	// sus líneas (primero las líneas, luego la cabecera). El stock NO se
	// restaura: la eliminación es una corrección contable. Usar en tx tras
	// GetByIDForUpdate, nunca con statements sueltos sobre el pool.
	Delete(id string) error
	// ListUnlockedInRange devuelve las órdenes no bloqueadas cuyo order_date
	// cae en [start, end) bloqueando sus filas (FOR UPDATE). Usar en tx.
	ListUnlockedInRange(start, end time.Time) ([]*entity.SalesOrder, error)
	// LockOrders marca locked = true en todas las órdenes indicadas.
	LockOrders(ids []string) error
}
