package repository

import (
	"context"
	"time"

	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// MovementLogRepository define el puerto de persistencia del registro de
// movimientos. Solo inserta y consulta: los registros nunca se mutan ni borran.
type MovementLogRepository interface {
	Create(ctx context.Context, log *entity.MovementLog) error
	GetByID(ctx context.Context, id string) (*entity.MovementLog, error)
	ListByOutlet(ctx context.Context, companyID, outletID string, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error)
	ListByProduct(ctx context.Context, companyID, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error)
	// ListByReference lista los movimientos de una venta, reporte de daño o traslado.
	ListByReference(ctx context.Context, companyID, reference string) ([]*entity.MovementLog, error)
}
