package repository

import "github.com/jhoicas/lotes-api/internal/domain/entity"

// BatchRepository define el puerto de persistencia para Batch (DIP).
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	GetByNumber(batchNumber string) (*entity.Batch, error)
	// GetManyForUpdate obtiene los lotes indicados bloqueando sus filas
	// (SELECT FOR UPDATE, ordenado por id para un orden de locks estable).
	// Usar solo dentro de una transacción.
	GetManyForUpdate(ids []string) ([]*entity.Batch, error)
	Update(batch *entity.Batch) error
	// DecrementStock descuenta quantity unidades de current_quantity.
	// El CHECK current_quantity >= 0 de la tabla respalda el chequeo de la app.
	DecrementStock(id string, quantity int64) error
	// List filtra por nombre de producto (substring, opcional) ordenando por
	// nombre de producto y número de lote para paginación determinista.
	List(productName string, limit, offset int) ([]*entity.Batch, error)
	// ListAvailable devuelve los lotes con current_quantity > 0, mismo orden.
	ListAvailable() ([]*entity.Batch, error)
	// CountItemsReferencing cuenta las líneas de venta que referencian el lote.
	CountItemsReferencing(batchID string) (int64, error)
	Delete(id string) error
}
