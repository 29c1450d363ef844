package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest una línea de venta dentro de CreateOrderRequest.
type OrderItemRequest struct {
	BatchID   string          `json:"batch_id"`
	Quantity  int64           `json:"quantity"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// CreateOrderRequest body para POST /api/orders. OrderDate opcional
// (por defecto la hora de creación); CustomerName opcional.
type CreateOrderRequest struct {
	OrderDate    *time.Time         `json:"order_date,omitempty"`
	CustomerName string             `json:"customer_name,omitempty"`
	Items        []OrderItemRequest `json:"items"`
}

// OrderItemResponse línea de venta hidratada con datos del lote para lectura.
type OrderItemResponse struct {
	ID            string          `json:"id"`
	BatchID       string          `json:"batch_id"`
	BatchNumber   string          `json:"batch_number"`
	ProductName   string          `json:"product_name"`
	PurchasePrice decimal.Decimal `json:"purchase_price"` // costo histórico del lote
	Quantity      int64           `json:"quantity"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Profit        decimal.Decimal `json:"profit"`
}

// OrderResponse representación de una orden de venta en respuestas.
type OrderResponse struct {
	ID           string              `json:"id"`
	OrderDate    time.Time           `json:"order_date"`
	CustomerName string              `json:"customer_name,omitempty"`
	TotalProfit  decimal.Decimal     `json:"total_profit"`
	Locked       bool                `json:"locked"`
	Items        []OrderItemResponse `json:"items"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ListOrdersRequest filtros de query para GET /api/orders.
type ListOrdersRequest struct {
	StartDate    *time.Time `query:"start_date"`
	EndDate      *time.Time `query:"end_date"`
	Locked       *bool      `query:"locked"`
	CustomerName string     `query:"customer_name"`
	PageRequest
}

// OrderListResponse lista de órdenes (sin líneas, para volumen).
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}
