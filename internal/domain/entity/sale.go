package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una venta.
const (
	SaleStatusDraft     = "DRAFT"
	SaleStatusCompleted = "COMPLETED"
	SaleStatusVoided    = "VOIDED"
	SaleStatusRefunded  = "REFUNDED"
)

// SaleItem línea de una venta. Pertenece exclusivamente a su venta
// (se elimina o anula junto con ella).
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// Sale venta con sus líneas y totales. Al completarse descuenta stock por cada
// línea; al anularse o reembolsarse lo restaura. Una venta COMPLETED nunca se
// borra físicamente, solo se anula.
type Sale struct {
	ID          string
	CompanyID   string
	OutletID    string
	CustomerID  string // opcional
	Items       []SaleItem
	Status      string
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Tax         decimal.Decimal
	TotalAmount decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanTransition indica si la venta puede pasar al estado destino.
// DRAFT -> COMPLETED; COMPLETED -> VOIDED | REFUNDED.
// VOIDED y REFUNDED son terminales.
func (s *Sale) CanTransition(target string) bool {
	switch s.Status {
	case SaleStatusDraft:
		return target == SaleStatusCompleted
	case SaleStatusCompleted:
		return target == SaleStatusVoided || target == SaleStatusRefunded
	default:
		return false
	}
}
