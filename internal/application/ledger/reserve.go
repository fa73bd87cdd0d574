package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// Reserve crea un apartado no vinculante contra el stock disponible. Rechaza
// si el disponible es menor que lo pedido, pero no modifica Quantity: la
// reserva es informativa y acotada en el tiempo. Las operaciones de descuento
// no bloquean sobre reservas vigentes; respetarlas es responsabilidad del
// llamador que descuenta.
//
// Devuelve además el disponible restante descontando las reservas vigentes
// (incluida la nueva), para que el caller pueda decidir.
func (uc *StockUseCase) Reserve(ctx context.Context, companyID, userID, outletID, productID string, quantity int64, expiresAt *time.Time, notes string) (*entity.Reservation, int64, error) {
	if quantity <= 0 {
		return nil, 0, domain.ErrInvalidInput
	}
	now := time.Now()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, 0, domain.ErrInvalidInput
	}
	if err := uc.checkOutletAndProduct(ctx, companyID, outletID, productID); err != nil {
		return nil, 0, err
	}

	reservation := &entity.Reservation{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		OutletID:  outletID,
		ProductID: productID,
		Quantity:  quantity,
		ExpiresAt: expiresAt,
		Notes:     notes,
		CreatedBy: userID,
		CreatedAt: now,
	}

	var remaining int64
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		entry, err := r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
		if err != nil {
			return err
		}
		if entry.Quantity < quantity {
			return &domain.InsufficientStockError{
				OutletID:  outletID,
				ProductID: productID,
				Available: entry.Quantity,
				Requested: quantity,
			}
		}
		reserved, err := r.Reservations().SumActive(ctx, companyID, outletID, productID, now)
		if err != nil {
			return err
		}
		if err := r.Reservations().Create(ctx, reservation); err != nil {
			return err
		}
		remaining = entry.Quantity - reserved - quantity
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Espejo con TTL en Redis; la fila persistida es la fuente de verdad,
	// así que un fallo aquí no invalida la reserva.
	if uc.holds != nil {
		if err := uc.holds.Put(ctx, reservation); err != nil {
			zlog.Warn().Err(err).Str("reservation_id", reservation.ID).Msg("espejo de reserva no actualizado")
		}
	}
	return reservation, remaining, nil
}

// ReleaseReservation libera una reserva vigente antes de su expiración.
func (uc *StockUseCase) ReleaseReservation(ctx context.Context, companyID, reservationID string) error {
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		reservation, err := r.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if reservation == nil {
			return domain.ErrNotFound
		}
		if reservation.CompanyID != companyID {
			return domain.ErrForbidden
		}
		return r.Reservations().Delete(ctx, reservationID)
	})
	if err != nil {
		return err
	}
	if uc.holds != nil {
		if err := uc.holds.Release(ctx, reservationID); err != nil {
			zlog.Warn().Err(err).Str("reservation_id", reservationID).Msg("espejo de reserva no liberado")
		}
	}
	return nil
}
