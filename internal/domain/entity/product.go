package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo. El stock por punto de
// venta vive en LedgerEntry; aquí solo se guardan datos comerciales.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal
	TaxRate     decimal.Decimal // IVA: 0, 0.05, 0.19
	UnitMeasure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
