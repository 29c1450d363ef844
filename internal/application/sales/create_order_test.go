package sales_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/sales"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/normalize"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes in-memory: BatchRepository, SalesOrderRepository y TxRunner.
// El fake de TxRunner ejecuta el callback contra los mismos fakes; si el
// callback falla, restaura el estado previo para emular el rollback.
// ──────────────────────────────────────────────────────────────────────────────

type fakeBatchRepo struct {
	batches map[string]*entity.Batch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[string]*entity.Batch)}
}

func (f *fakeBatchRepo) add(b *entity.Batch) { cp := *b; f.batches[b.ID] = &cp }

func (f *fakeBatchRepo) Create(b *entity.Batch) error { f.add(b); return nil }

func (f *fakeBatchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBatchRepo) GetByNumber(number string) (*entity.Batch, error) {
	for _, b := range f.batches {
		if b.BatchNumber == number {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBatchRepo) GetManyForUpdate(ids []string) ([]*entity.Batch, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	var out []*entity.Batch
	for _, id := range sorted {
		if b, ok := f.batches[id]; ok {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeBatchRepo) Update(b *entity.Batch) error { f.add(b); return nil }

func (f *fakeBatchRepo) DecrementStock(id string, quantity int64) error {
	b := f.batches[id]
	b.CurrentQuantity -= quantity
	return nil
}

func (f *fakeBatchRepo) List(string, int, int) ([]*entity.Batch, error) { return nil, nil }
func (f *fakeBatchRepo) ListAvailable() ([]*entity.Batch, error)        { return nil, nil }
func (f *fakeBatchRepo) CountItemsReferencing(string) (int64, error)    { return 0, nil }
func (f *fakeBatchRepo) Delete(string) error                            { return nil }

type fakeOrderRepo struct {
	orders map[string]*entity.SalesOrder
	items  map[string][]*entity.OrderItem // orderID -> líneas
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[string]*entity.SalesOrder),
		items:  make(map[string][]*entity.OrderItem),
	}
}

func (f *fakeOrderRepo) Create(o *entity.SalesOrder) error {
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) CreateItem(it *entity.OrderItem) error {
	cp := *it
	f.items[it.OrderID] = append(f.items[it.OrderID], &cp)
	return nil
}

func (f *fakeOrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) GetByIDForUpdate(id string) (*entity.SalesOrder, error) {
	return f.GetByID(id)
}

func (f *fakeOrderRepo) GetItemsByOrderID(orderID string) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	for _, it := range f.items[orderID] {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOrderRepo) List(filter repository.OrderFilter) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	folded := normalize.Fold(filter.CustomerName)
	for _, o := range f.orders {
		if filter.StartDate != nil && o.OrderDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && !o.OrderDate.Before(*filter.EndDate) {
			continue
		}
		if filter.Locked != nil && o.Locked != *filter.Locked {
			continue
		}
		if folded != "" && !strings.Contains(normalize.Fold(o.CustomerName), folded) {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (f *fakeOrderRepo) Delete(id string) error {
	if _, ok := f.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.orders, id)
	delete(f.items, id)
	return nil
}

func (f *fakeOrderRepo) ListUnlockedInRange(start, end time.Time) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	for _, o := range f.orders {
		if !o.Locked && !o.OrderDate.Before(start) && o.OrderDate.Before(end) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrderRepo) LockOrders(ids []string) error {
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			o.Locked = true
		}
	}
	return nil
}

type fakeTxRunner struct {
	batchRepo *fakeBatchRepo
	orderRepo *fakeOrderRepo
	onBegin   func() // emula escrituras concurrentes que ganan la carrera a la tx
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(repository.BatchRepository, repository.SalesOrderRepository) error) error {
	if f.onBegin != nil {
		f.onBegin()
	}
	snapshot := make(map[string]entity.Batch, len(f.batchRepo.batches))
	for id, b := range f.batchRepo.batches {
		snapshot[id] = *b
	}
	if err := fn(f.batchRepo, f.orderRepo); err != nil {
		// rollback del stock
		for id, b := range snapshot {
			cp := b
			f.batchRepo.batches[id] = &cp
		}
		return err
	}
	return nil
}

func newOrderUseCase() (*sales.OrderUseCase, *fakeBatchRepo, *fakeOrderRepo) {
	batchRepo := newFakeBatchRepo()
	orderRepo := newFakeOrderRepo()
	runner := &fakeTxRunner{batchRepo: batchRepo, orderRepo: orderRepo}
	return sales.NewOrderUseCase(runner, orderRepo, batchRepo), batchRepo, orderRepo
}

func seedBatch(repo *fakeBatchRepo, id, number string, purchasePrice int64, quantity int64) {
	repo.add(&entity.Batch{
		ID:              id,
		BatchNumber:     number,
		ProductName:     "Producto " + number,
		PurchaseDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		PurchasePrice:   decimal.NewFromInt(purchasePrice),
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Create: validación
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderCreate_SinLineas_RetornaValidacion(t *testing.T) {
	uc, _, _ := newOrderUseCase()

	_, err := uc.Create(context.Background(), dto.CreateOrderRequest{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items", verr.Fields[0].Field)
}

// Cada línea y campo inválido se reporta, con el índice de la línea en el nombre.
func TestOrderCreate_ValidacionPorLinea(t *testing.T) {
	uc, _, _ := newOrderUseCase()

	_, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "", Quantity: 0, SalePrice: decimal.NewFromInt(-1)},
			{BatchID: "b1", Quantity: 5, SalePrice: decimal.NewFromInt(10)},
			{BatchID: "b2", Quantity: -3, SalePrice: decimal.NewFromInt(10)},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "items[0].batch_id")
	assert.Contains(t, fields, "items[0].quantity")
	assert.Contains(t, fields, "items[0].sale_price")
	assert.Contains(t, fields, "items[2].quantity")
	assert.NotContains(t, fields, "items[1].batch_id", "la línea válida no debe reportarse")
}

func TestOrderCreate_LoteInexistente_RetornaValidacion(t *testing.T) {
	uc, batchRepo, _ := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 10, 100)

	_, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "fantasma", Quantity: 1, SalePrice: decimal.NewFromInt(20)},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "fantasma")
}

// ──────────────────────────────────────────────────────────────────────────────
// Create: stock y utilidad
// ──────────────────────────────────────────────────────────────────────────────

// Escenario de referencia: lote comprado a 10 con 100 unidades; venta de 10 a
// 20 deja utilidad 100 y stock 90; intentar luego 95 falla sin tocar nada.
func TestOrderCreate_DescuentoYUtilidad(t *testing.T) {
	uc, batchRepo, _ := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 10, 100)

	out, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerName: "María Pérez",
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 10, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)

	assert.True(t, out.TotalProfit.Equal(decimal.NewFromInt(100)),
		"(20-10)*10 = 100, obtuvo %s", out.TotalProfit)
	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Profit.Equal(decimal.NewFromInt(100)))

	b, _ := batchRepo.GetByID("b1")
	assert.Equal(t, int64(90), b.CurrentQuantity)

	// Segunda orden que excede el stock restante.
	_, err = uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 95, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	b, _ = batchRepo.GetByID("b1")
	assert.Equal(t, int64(90), b.CurrentQuantity,
		"una orden rechazada no debe modificar el stock")
}

// Varias líneas contra el mismo lote se agregan ANTES del chequeo: dos líneas
// de 60 contra un lote de 100 deben rechazarse aunque cada una quepa sola.
func TestOrderCreate_DemandaAgregadaPorLote(t *testing.T) {
	uc, batchRepo, orderRepo := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 10, 100)

	_, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 60, SalePrice: decimal.NewFromInt(15)},
			{BatchID: "b1", Quantity: 60, SalePrice: decimal.NewFromInt(18)},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	b, _ := batchRepo.GetByID("b1")
	assert.Equal(t, int64(100), b.CurrentQuantity, "nada se descuenta en una orden rechazada")
	assert.Empty(t, orderRepo.orders, "no debe persistirse ninguna cabecera")

	// 60 + 40 = 100 exactos: debe pasar y agotar el lote.
	out, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 60, SalePrice: decimal.NewFromInt(15)},
			{BatchID: "b1", Quantity: 40, SalePrice: decimal.NewFromInt(18)},
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2, "las líneas se conservan separadas aunque compartan lote")

	b, _ = batchRepo.GetByID("b1")
	assert.Equal(t, int64(0), b.CurrentQuantity)
}

// Vender por debajo del costo produce utilidad negativa, que es válida.
func TestOrderCreate_UtilidadNegativa(t *testing.T) {
	uc, batchRepo, _ := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 50, 10)

	out, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 4, SalePrice: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	assert.True(t, out.TotalProfit.Equal(decimal.NewFromInt(-80)),
		"(30-50)*4 = -80, obtuvo %s", out.TotalProfit)
}

// La utilidad usa el costo histórico del lote de cada línea, no un promedio.
func TestOrderCreate_MultiLote_CostoHistoricoPorLinea(t *testing.T) {
	uc, batchRepo, _ := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 10, 50)
	seedBatch(batchRepo, "b2", "L-002", 14, 50)

	out, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 5, SalePrice: decimal.NewFromInt(20)},
			{BatchID: "b2", Quantity: 5, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)
	// (20-10)*5 + (20-14)*5 = 50 + 30 = 80
	assert.True(t, out.TotalProfit.Equal(decimal.NewFromInt(80)))

	b1, _ := batchRepo.GetByID("b1")
	b2, _ := batchRepo.GetByID("b2")
	assert.Equal(t, int64(45), b1.CurrentQuantity)
	assert.Equal(t, int64(45), b2.CurrentQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderDelete_NoRestauraStock(t *testing.T) {
	uc, batchRepo, _ := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 10, 100)

	out, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 30, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), out.ID))

	_, err = uc.GetByID(context.Background(), out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	b, _ := batchRepo.GetByID("b1")
	assert.Equal(t, int64(70), b.CurrentQuantity,
		"eliminar una orden no devuelve unidades al lote")
}

func TestOrderDelete_Bloqueada_RetornaOrderLocked(t *testing.T) {
	uc, batchRepo, orderRepo := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 10, 100)

	out, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 1, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, orderRepo.LockOrders([]string{out.ID}))

	err = uc.Delete(context.Background(), out.ID)
	assert.ErrorIs(t, err, domain.ErrOrderLocked)

	got, err := uc.GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked, "la orden bloqueada sigue existiendo")
}

// Un reparto que bloquea la orden después de que el borrado fue solicitado
// pero antes de su transacción: el re-chequeo dentro de la tx debe detectar
// el lock y dejar la orden y sus líneas intactas.
func TestOrderDelete_BloqueoConcurrente_RetornaOrderLocked(t *testing.T) {
	batchRepo := newFakeBatchRepo()
	orderRepo := newFakeOrderRepo()
	runner := &fakeTxRunner{batchRepo: batchRepo, orderRepo: orderRepo}
	uc := sales.NewOrderUseCase(runner, orderRepo, batchRepo)
	seedBatch(batchRepo, "b1", "L-001", 10, 100)

	out, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 10, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)

	// El reparto le gana la carrera a la transacción de borrado.
	runner.onBegin = func() { _ = orderRepo.LockOrders([]string{out.ID}) }

	err = uc.Delete(context.Background(), out.ID)
	assert.ErrorIs(t, err, domain.ErrOrderLocked)

	runner.onBegin = nil
	got, err := uc.GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	require.Len(t, got.Items, 1, "una orden repartida no puede perder sus líneas")
	assert.True(t, got.TotalProfit.Equal(decimal.NewFromInt(100)))
}

// ──────────────────────────────────────────────────────────────────────────────
// List
// ──────────────────────────────────────────────────────────────────────────────

func TestOrderList_FiltroPorClienteSinAcentos(t *testing.T) {
	uc, batchRepo, _ := newOrderUseCase()
	seedBatch(batchRepo, "b1", "L-001", 10, 100)

	_, err := uc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerName: "María Pérez",
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 1, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), dto.CreateOrderRequest{
		CustomerName: "Juan Gómez",
		Items: []dto.OrderItemRequest{
			{BatchID: "b1", Quantity: 1, SalePrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)

	out, err := uc.List(context.Background(), dto.ListOrdersRequest{CustomerName: "maria"})
	require.NoError(t, err)
	require.Len(t, out.Orders, 1)
	assert.Equal(t, "María Pérez", out.Orders[0].CustomerName)
}
