package sales

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// OrderUseCase casos de uso de órdenes de venta: creación transaccional
// (create_order.go), lectura, listado y eliminación.
type OrderUseCase struct {
	txRunner  TxRunner
	orderRepo repository.SalesOrderRepository
	batchRepo repository.BatchRepository
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(txRunner TxRunner, orderRepo repository.SalesOrderRepository, batchRepo repository.BatchRepository) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, orderRepo: orderRepo, batchRepo: batchRepo}
}

// GetByID obtiene una orden con sus líneas hidratadas con datos del lote.
func (uc *OrderUseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.orderRepo.GetItemsByOrderID(id)
	if err != nil {
		return nil, err
	}
	batches, err := uc.resolveBatches(items)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, items, batches), nil
}

// List lista órdenes por fecha descendente con filtros opcionales
// (rango de fechas, locked, substring del nombre del cliente).
func (uc *OrderUseCase) List(ctx context.Context, in dto.ListOrdersRequest) (*dto.OrderListResponse, error) {
	in.DefaultPage()
	orders, err := uc.orderRepo.List(repository.OrderFilter{
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Locked:       in.Locked,
		CustomerName: in.CustomerName,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		out.Orders = append(out.Orders, *toOrderResponse(o, nil, nil))
	}
	out.Total = len(out.Orders)
	return out, nil
}

// Delete elimina una orden no bloqueada y, como efecto explícito, todas sus
// líneas. El stock NO se restaura: una vez eliminadas las líneas la venta
// simplemente no existió para efectos contables. Devuelve ErrOrderLocked si
// la orden fue incluida en un reparto.
//
// El chequeo de locked y el borrado ocurren en una sola transacción con la
// fila de la orden bloqueada (FOR UPDATE): un reparto que corre en paralelo
// no puede bloquear la orden entre el chequeo y el borrado, ni quedarse con
// una orden bloqueada sin líneas.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(_ repository.BatchRepository, orderRepo repository.SalesOrderRepository) error {
		order, err := orderRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.Locked {
			return domain.ErrOrderLocked
		}
		return orderRepo.Delete(id)
	})
}

// resolveBatches carga los lotes referenciados por las líneas (para hidratar
// número de lote, nombre de producto y costo histórico en la respuesta).
func (uc *OrderUseCase) resolveBatches(items []*entity.OrderItem) (map[string]*entity.Batch, error) {
	batches := make(map[string]*entity.Batch)
	for _, item := range items {
		if _, ok := batches[item.BatchID]; ok {
			continue
		}
		b, err := uc.batchRepo.GetByID(item.BatchID)
		if err != nil {
			return nil, err
		}
		if b != nil {
			batches[item.BatchID] = b
		}
	}
	return batches, nil
}

func toOrderResponse(o *entity.SalesOrder, items []*entity.OrderItem, batches map[string]*entity.Batch) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:           o.ID,
		OrderDate:    o.OrderDate,
		CustomerName: o.CustomerName,
		TotalProfit:  o.TotalProfit,
		Locked:       o.Locked,
		Items:        make([]dto.OrderItemResponse, 0, len(items)),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	for _, item := range items {
		ir := dto.OrderItemResponse{
			ID:        item.ID,
			BatchID:   item.BatchID,
			Quantity:  item.Quantity,
			SalePrice: item.SalePrice,
			Profit:    item.Profit,
		}
		if b, ok := batches[item.BatchID]; ok {
			ir.BatchNumber = b.BatchNumber
			ir.ProductName = b.ProductName
			ir.PurchasePrice = b.PurchasePrice
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
