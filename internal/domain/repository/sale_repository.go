package repository

import (
	"context"
	"time"

	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	// Create persiste la venta con sus líneas (las líneas pertenecen a la venta).
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la fila de la venta durante una transición de estado.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error
	ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.Sale, error)
}
