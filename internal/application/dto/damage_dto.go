package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDamageReportRequest body para POST /api/damages.
type CreateDamageReportRequest struct {
	OutletID      string          `json:"outlet_id"`
	ProductID     string          `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	Severity      string          `json:"severity,omitempty"`
	DamageType    string          `json:"damage_type,omitempty"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	Notes         string          `json:"notes,omitempty"`
}

// InspectDamageRequest body para POST /api/damages/:id/inspect.
type InspectDamageRequest struct {
	Repairable    bool             `json:"repairable"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// RepairActionRequest body para POST /api/damages/:id/repairs.
type RepairActionRequest struct {
	QuantityRepaired int64           `json:"quantity_repaired"`
	Cost             decimal.Decimal `json:"cost"`
	Notes            string          `json:"notes,omitempty"`
}

// ScrapActionRequest body para POST /api/damages/:id/scraps.
type ScrapActionRequest struct {
	QuantityScrapped int64           `json:"quantity_scrapped"`
	RecoveryValue    decimal.Decimal `json:"recovery_value"`
	Reason           string          `json:"reason,omitempty"`
}

// ResolveDamageRequest body para POST /api/damages/:id/resolve.
type ResolveDamageRequest struct {
	Notes string `json:"notes,omitempty"`
}

// RepairActionResponse acción de reparación registrada.
type RepairActionResponse struct {
	ID               string          `json:"id"`
	QuantityRepaired int64           `json:"quantity_repaired"`
	Cost             decimal.Decimal `json:"cost"`
	Notes            string          `json:"notes,omitempty"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ScrapActionResponse acción de desguace registrada.
type ScrapActionResponse struct {
	ID               string          `json:"id"`
	QuantityScrapped int64           `json:"quantity_scrapped"`
	RecoveryValue    decimal.Decimal `json:"recovery_value"`
	Reason           string          `json:"reason,omitempty"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DamageReportResponse reporte de daño con acciones hijas.
type DamageReportResponse struct {
	ID               string                 `json:"id"`
	OutletID         string                 `json:"outlet_id"`
	ProductID        string                 `json:"product_id"`
	ReportedQuantity int64                  `json:"reported_quantity"`
	Quantity         int64                  `json:"quantity"`
	RepairedQuantity int64                  `json:"repaired_quantity"`
	ScrappedQuantity int64                  `json:"scrapped_quantity"`
	Status           string                 `json:"status"`
	Severity         string                 `json:"severity,omitempty"`
	DamageType       string                 `json:"damage_type,omitempty"`
	EstimatedCost    decimal.Decimal        `json:"estimated_cost"`
	RepairCost       decimal.Decimal        `json:"repair_cost"`
	RecoveryValue    decimal.Decimal        `json:"recovery_value"`
	Notes            string                 `json:"notes,omitempty"`
	RepairActions    []RepairActionResponse `json:"repair_actions,omitempty"`
	ScrapActions     []ScrapActionResponse  `json:"scrap_actions,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}
