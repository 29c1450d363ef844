package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest body para POST /api/batches.
type CreateBatchRequest struct {
	BatchNumber      string           `json:"batch_number"`
	ProductName      string           `json:"product_name"`
	PurchaseDate     time.Time        `json:"purchase_date"`
	PurchasePrice    decimal.Decimal  `json:"purchase_price"`
	InitialQuantity  int64            `json:"initial_quantity"`
	DefaultSalePrice *decimal.Decimal `json:"default_sale_price,omitempty"`
}

// UpdateBatchRequest body para PUT /api/batches/:id. El precio y la fecha de
// compra no aparecen aquí: son inmutables por contrato.
type UpdateBatchRequest struct {
	ProductName      *string          `json:"product_name,omitempty"`
	CurrentQuantity  *int64           `json:"current_quantity,omitempty"`
	DefaultSalePrice *decimal.Decimal `json:"default_sale_price,omitempty"`
}

// BatchResponse representación de un lote en respuestas.
type BatchResponse struct {
	ID               string           `json:"id"`
	BatchNumber      string           `json:"batch_number"`
	ProductName      string           `json:"product_name"`
	PurchaseDate     time.Time        `json:"purchase_date"`
	PurchasePrice    decimal.Decimal  `json:"purchase_price"`
	DefaultSalePrice *decimal.Decimal `json:"default_sale_price,omitempty"`
	InitialQuantity  int64            `json:"initial_quantity"`
	CurrentQuantity  int64            `json:"current_quantity"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// BatchListResponse lista paginada de lotes.
type BatchListResponse struct {
	Batches []BatchResponse `json:"batches"`
	Total   int             `json:"total"`
}
