package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea solicitada en el checkout. unit_price vacío toma el
// precio de lista del producto.
type SaleItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
}

// CreateSaleRequest body para POST /api/sales. status: DRAFT o COMPLETED
// (vacío = COMPLETED).
type CreateSaleRequest struct {
	OutletID   string            `json:"outlet_id"`
	CustomerID string            `json:"customer_id,omitempty"`
	Status     string            `json:"status,omitempty"`
	TaxRate    decimal.Decimal   `json:"tax_rate"`
	Items      []SaleItemRequest `json:"items"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// SaleResponse venta con líneas y totales.
type SaleResponse struct {
	ID          string             `json:"id"`
	OutletID    string             `json:"outlet_id"`
	CustomerID  string             `json:"customer_id,omitempty"`
	Status      string             `json:"status"`
	Items       []SaleItemResponse `json:"items"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	Discount    decimal.Decimal    `json:"discount"`
	Tax         decimal.Decimal    `json:"tax"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// SaleListResponse listado paginado de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
