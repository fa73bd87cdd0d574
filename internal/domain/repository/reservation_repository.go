package repository

import (
	"context"
	"time"

	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia para reservas de stock.
// Las reservas expiradas no se purgan: toda consulta de vigencia filtra por `now`.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	// SumActive suma las cantidades reservadas vigentes para un producto en un punto de venta.
	SumActive(ctx context.Context, companyID, outletID, productID string, now time.Time) (int64, error)
	ListActiveByProduct(ctx context.Context, companyID, outletID, productID string, now time.Time) ([]*entity.Reservation, error)
	Delete(ctx context.Context, id string) error
}
