package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un reporte de daño.
const (
	DamageStatusReported          = "REPORTED"
	DamageStatusInspected         = "INSPECTED"
	DamageStatusRepairable        = "REPAIRABLE"
	DamageStatusRepaired          = "REPAIRED"
	DamageStatusPartiallyRepaired = "PARTIALLY_REPAIRED"
	DamageStatusScrapped          = "SCRAPPED"
	DamageStatusResolved          = "RESOLVED"
)

// RepairAction acción de reparación sobre un reporte de daño. Devuelve
// unidades del balde de dañados al disponible.
type RepairAction struct {
	ID               string
	ReportID         string
	QuantityRepaired int64
	Cost             decimal.Decimal
	Notes            string
	CreatedBy        string
	CreatedAt        time.Time
}

// ScrapAction acción de desguace sobre un reporte de daño. Las unidades
// desguazadas salen del sistema de forma permanente (solo baja el balde de
// dañados, nunca vuelven al disponible).
type ScrapAction struct {
	ID               string
	ReportID         string
	QuantityScrapped int64
	RecoveryValue    decimal.Decimal
	Reason           string
	CreatedBy        string
	CreatedAt        time.Time
}

// DamageReport reporte de unidades dañadas de un producto en un punto de venta.
// ReportedQuantity queda fija al crearse; Quantity es el remanente sin resolver
// y solo baja a medida que reparaciones y desguaces lo consumen.
type DamageReport struct {
	ID               string
	CompanyID        string
	OutletID         string
	ProductID        string
	ReportedQuantity int64
	Quantity         int64 // remanente sin reparar ni desguazar
	RepairedQuantity int64
	ScrappedQuantity int64
	Status           string
	Severity         string
	DamageType       string
	EstimatedCost    decimal.Decimal
	RepairCost       decimal.Decimal
	RecoveryValue    decimal.Decimal
	Notes            string
	ReportedBy       string
	RepairActions    []RepairAction
	ScrapActions     []ScrapAction
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CanInspect indica si el reporte puede pasar a inspección.
func (d *DamageReport) CanInspect() bool {
	return d.Status == DamageStatusReported
}

// CanRepair indica si el reporte admite una acción de reparación.
// Se permite desde PARTIALLY_REPAIRED para poder terminar una reparación en
// varios pasos; desde REPAIRED el remanente ya es cero y la validación de
// cantidad la rechaza de todos modos.
func (d *DamageReport) CanRepair() bool {
	switch d.Status {
	case DamageStatusInspected, DamageStatusRepairable, DamageStatusRepaired, DamageStatusPartiallyRepaired:
		return true
	}
	return false
}

// CanScrap indica si el reporte admite una acción de desguace
// (SCRAPPED permite re-desguazar el remanente).
func (d *DamageReport) CanScrap() bool {
	switch d.Status {
	case DamageStatusInspected, DamageStatusRepairable, DamageStatusScrapped:
		return true
	}
	return false
}

// CanResolve indica si el reporte puede cerrarse sin acción correctiva.
func (d *DamageReport) CanResolve() bool {
	switch d.Status {
	case DamageStatusReported, DamageStatusInspected, DamageStatusRepairable, DamageStatusPartiallyRepaired:
		return true
	}
	return false
}

// CanDelete indica si el reporte puede eliminarse: solo en REPORTED o
// INSPECTED y sin acciones hijas registradas.
func (d *DamageReport) CanDelete() bool {
	if d.Status != DamageStatusReported && d.Status != DamageStatusInspected {
		return false
	}
	return !d.HasActions()
}

// HasActions indica si ya se registraron reparaciones o desguaces.
func (d *DamageReport) HasActions() bool {
	return d.RepairedQuantity > 0 || d.ScrappedQuantity > 0 ||
		len(d.RepairActions) > 0 || len(d.ScrapActions) > 0
}
