package repository

import (
	"context"

	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// LedgerRepository define el puerto del libro de stock por (empresa, punto de
// venta, producto). Get y GetForUpdate devuelven una entrada en cero cuando la
// fila no existe (creación perezosa en el primer Upsert).
type LedgerRepository interface {
	Get(ctx context.Context, companyID, outletID, productID string) (*entity.LedgerEntry, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) para el check-then-write.
	GetForUpdate(ctx context.Context, companyID, outletID, productID string) (*entity.LedgerEntry, error)
	Upsert(ctx context.Context, entry *entity.LedgerEntry) error
	// Delete elimina la fila solo si ambos contadores están en cero.
	Delete(ctx context.Context, companyID, outletID, productID string) error
	ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.LedgerEntry, error)
}
