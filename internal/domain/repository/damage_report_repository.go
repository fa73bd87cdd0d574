package repository

import (
	"context"

	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// DamageReportRepository define el puerto de persistencia para reportes de
// daño y sus acciones hijas de reparación/desguace.
type DamageReportRepository interface {
	Create(ctx context.Context, report *entity.DamageReport) error
	// GetByID devuelve nil si no existe. Incluye las acciones hijas.
	GetByID(ctx context.Context, id string) (*entity.DamageReport, error)
	// GetForUpdate bloquea la fila del reporte durante una transición de estado.
	GetForUpdate(ctx context.Context, id string) (*entity.DamageReport, error)
	Update(ctx context.Context, report *entity.DamageReport) error
	// Delete elimina el reporte; el caso de uso garantiza que no tenga acciones.
	Delete(ctx context.Context, id string) error
	AddRepairAction(ctx context.Context, action *entity.RepairAction) error
	AddScrapAction(ctx context.Context, action *entity.ScrapAction) error
	ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.DamageReport, error)
}
