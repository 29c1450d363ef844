package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// Create crea una orden de venta de forma transaccional:
//  1. valida todas las líneas acumulando cada campo inválido,
//  2. agrega la demanda por lote (varias líneas contra el mismo lote se suman
//     ANTES del chequeo de disponibilidad; validarlas por separado permitiría
//     sobrevender),
//  3. dentro de la tx bloquea los lotes (SELECT FOR UPDATE), verifica la
//     disponibilidad contra la cantidad agregada, calcula la utilidad por
//     línea ((precio venta - precio compra) * cantidad; puede ser negativa)
//     e inserta cabecera, líneas y descuentos de stock.
//
// Cabecera, líneas y stock confirman o revierten juntos: una aplicación
// parcial es una violación de correctitud, no un modo degradado.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Items) == 0 {
		verr := &domain.ValidationError{}
		verr.Add("items", "la orden debe tener al menos una línea")
		return nil, verr
	}

	// Validación por línea: se reporta cada línea y campo que falla.
	verr := &domain.ValidationError{}
	for i, item := range in.Items {
		if item.BatchID == "" {
			verr.Add(fmt.Sprintf("items[%d].batch_id", i), "es obligatorio")
		}
		if item.Quantity <= 0 {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "debe ser un entero positivo")
		}
		if item.SalePrice.LessThan(decimal.Zero) {
			verr.Add(fmt.Sprintf("items[%d].sale_price", i), "no puede ser negativo")
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	// Demanda agregada por lote.
	required := make(map[string]int64)
	for _, item := range in.Items {
		required[item.BatchID] += item.Quantity
	}
	batchIDs := make([]string, 0, len(required))
	for id := range required {
		batchIDs = append(batchIDs, id)
	}
	sort.Strings(batchIDs)

	now := time.Now()
	orderDate := now
	if in.OrderDate != nil && !in.OrderDate.IsZero() {
		orderDate = *in.OrderDate
	}

	var order *entity.SalesOrder
	var items []*entity.OrderItem
	batchesByID := make(map[string]*entity.Batch)

	err := uc.txRunner.Run(ctx, func(
		batchRepo repository.BatchRepository,
		orderRepo repository.SalesOrderRepository,
	) error {
		// Resolver todos los lotes en una sola lectura, con bloqueo de fila.
		// El chequeo de disponibilidad y el descuento viven en la misma tx:
		// dos órdenes concurrentes contra el mismo lote no pueden pasar ambas
		// el chequeo contra una cantidad obsoleta.
		batches, err := batchRepo.GetManyForUpdate(batchIDs)
		if err != nil {
			return err
		}
		for _, b := range batches {
			batchesByID[b.ID] = b
		}
		missing := &domain.ValidationError{}
		for _, id := range batchIDs {
			if _, ok := batchesByID[id]; !ok {
				missing.Add("batch_id", fmt.Sprintf("el lote %s no existe", id))
			}
		}
		if missing.HasErrors() {
			return missing
		}

		for _, id := range batchIDs {
			b := batchesByID[id]
			if b.CurrentQuantity < required[id] {
				return fmt.Errorf("%w: lote %s: disponible %d, requerido %d",
					domain.ErrInsufficientStock, b.BatchNumber, b.CurrentQuantity, required[id])
			}
		}

		// Utilidad por línea y total de la orden, todo en decimal.
		totalProfit := decimal.Zero
		orderID := uuid.New().String()
		for _, item := range in.Items {
			b := batchesByID[item.BatchID]
			profit := item.SalePrice.Sub(b.PurchasePrice).Mul(decimal.NewFromInt(item.Quantity))
			totalProfit = totalProfit.Add(profit)
			items = append(items, &entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				BatchID:   item.BatchID,
				Quantity:  item.Quantity,
				SalePrice: item.SalePrice,
				Profit:    profit,
			})
		}

		order = &entity.SalesOrder{
			ID:           orderID,
			OrderDate:    orderDate,
			CustomerName: in.CustomerName,
			TotalProfit:  totalProfit,
			Locked:       false,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, item := range items {
			if err := orderRepo.CreateItem(item); err != nil {
				return err
			}
		}
		for _, id := range batchIDs {
			if err := batchRepo.DecrementStock(id, required[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toOrderResponse(order, items, batchesByID), nil
}
