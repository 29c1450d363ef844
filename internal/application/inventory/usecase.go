package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// BatchUseCase casos de uso CRUD para lotes de compra. El precio y la fecha
// de compra son inmutables; el stock solo baja vía órdenes de venta o una
// corrección administrativa acotada por initial_quantity.
type BatchUseCase struct {
	repo repository.BatchRepository
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(repo repository.BatchRepository) *BatchUseCase {
	return &BatchUseCase{repo: repo}
}

// Create crea un lote nuevo con current_quantity = initial_quantity.
// Devuelve ErrDuplicate si el número de lote ya existe y ValidationError con
// todos los campos inválidos si la entrada no cumple los invariantes.
func (uc *BatchUseCase) Create(in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	verr := &domain.ValidationError{}
	if in.BatchNumber == "" {
		verr.Add("batch_number", "es obligatorio")
	}
	if in.ProductName == "" {
		verr.Add("product_name", "es obligatorio")
	}
	if in.PurchaseDate.IsZero() {
		verr.Add("purchase_date", "es obligatoria")
	}
	if in.PurchasePrice.LessThan(decimal.Zero) {
		verr.Add("purchase_price", "no puede ser negativo")
	}
	if in.InitialQuantity <= 0 {
		verr.Add("initial_quantity", "debe ser un entero positivo")
	}
	if in.DefaultSalePrice != nil && in.DefaultSalePrice.LessThan(decimal.Zero) {
		verr.Add("default_sale_price", "no puede ser negativo")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	existing, err := uc.repo.GetByNumber(in.BatchNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	batch := &entity.Batch{
		ID:               uuid.New().String(),
		BatchNumber:      in.BatchNumber,
		ProductName:      in.ProductName,
		PurchaseDate:     in.PurchaseDate,
		PurchasePrice:    in.PurchasePrice,
		DefaultSalePrice: in.DefaultSalePrice,
		InitialQuantity:  in.InitialQuantity,
		CurrentQuantity:  in.InitialQuantity,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// GetByID obtiene un lote por ID. Devuelve ErrNotFound si no existe.
func (uc *BatchUseCase) GetByID(id string) (*dto.BatchResponse, error) {
	batch, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	return toBatchResponse(batch), nil
}

// Update actualiza nombre de producto, precio de venta sugerido o corrige la
// cantidad actual. PurchasePrice y PurchaseDate no están en el shape de
// entrada: cualquier intento de modificarlos se ignora a nivel de contrato.
func (uc *BatchUseCase) Update(id string, in dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	batch, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}

	verr := &domain.ValidationError{}
	if in.ProductName != nil {
		if *in.ProductName == "" {
			verr.Add("product_name", "no puede quedar vacío")
		} else {
			batch.ProductName = *in.ProductName
		}
	}
	if in.CurrentQuantity != nil {
		switch {
		case *in.CurrentQuantity < 0:
			verr.Add("current_quantity", "no puede ser negativo")
		case *in.CurrentQuantity > batch.InitialQuantity:
			verr.Add("current_quantity", "no puede exceder la cantidad inicial del lote")
		default:
			batch.CurrentQuantity = *in.CurrentQuantity
		}
	}
	if in.DefaultSalePrice != nil {
		if in.DefaultSalePrice.LessThan(decimal.Zero) {
			verr.Add("default_sale_price", "no puede ser negativo")
		} else {
			batch.DefaultSalePrice = in.DefaultSalePrice
		}
	}
	if verr.HasErrors() {
		return nil, verr
	}

	batch.UpdatedAt = time.Now()
	if err := uc.repo.Update(batch); err != nil {
		return nil, err
	}
	return toBatchResponse(batch), nil
}

// Delete elimina un lote. Devuelve ErrConflict si alguna línea de venta lo
// referencia (el FK ON DELETE RESTRICT respalda este chequeo en la DB).
func (uc *BatchUseCase) Delete(id string) error {
	batch, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.ErrNotFound
	}
	refs, err := uc.repo.CountItemsReferencing(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrConflict
	}
	return uc.repo.Delete(id)
}

// CheckAvailability indica si el lote tiene al menos quantity unidades.
// Es una lectura informativa: la verificación vinculante se repite dentro de
// la transacción de creación de la orden, con la fila bloqueada.
func (uc *BatchUseCase) CheckAvailability(id string, quantity int64) (bool, error) {
	batch, err := uc.repo.GetByID(id)
	if err != nil {
		return false, err
	}
	if batch == nil {
		return false, domain.ErrNotFound
	}
	return batch.Available(quantity), nil
}

// List lista lotes con filtro opcional por nombre de producto.
func (uc *BatchUseCase) List(productName string, page dto.PageRequest) (*dto.BatchListResponse, error) {
	page.DefaultPage()
	batches, err := uc.repo.List(productName, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return toBatchListResponse(batches), nil
}

// ListAvailable lista los lotes con stock disponible (current_quantity > 0).
func (uc *BatchUseCase) ListAvailable() (*dto.BatchListResponse, error) {
	batches, err := uc.repo.ListAvailable()
	if err != nil {
		return nil, err
	}
	return toBatchListResponse(batches), nil
}

func toBatchResponse(b *entity.Batch) *dto.BatchResponse {
	return &dto.BatchResponse{
		ID:               b.ID,
		BatchNumber:      b.BatchNumber,
		ProductName:      b.ProductName,
		PurchaseDate:     b.PurchaseDate,
		PurchasePrice:    b.PurchasePrice,
		DefaultSalePrice: b.DefaultSalePrice,
		InitialQuantity:  b.InitialQuantity,
		CurrentQuantity:  b.CurrentQuantity,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toBatchListResponse(batches []*entity.Batch) *dto.BatchListResponse {
	out := &dto.BatchListResponse{Batches: make([]dto.BatchResponse, 0, len(batches))}
	for _, b := range batches {
		out.Batches = append(out.Batches, *toBatchResponse(b))
	}
	out.Total = len(out.Batches)
	return out
}
