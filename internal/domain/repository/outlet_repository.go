package repository

import (
	"context"

	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// OutletRepository define el puerto de persistencia para puntos de venta (DIP).
type OutletRepository interface {
	Create(ctx context.Context, outlet *entity.Outlet) error
	GetByID(ctx context.Context, id string) (*entity.Outlet, error)
	Update(ctx context.Context, outlet *entity.Outlet) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Outlet, error)
	Delete(ctx context.Context, id string) error
}
