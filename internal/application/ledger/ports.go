package ledger

import (
	"context"

	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
// Todo lo que se haga a través de ellos se confirma o revierte como unidad.
type Repos interface {
	Ledger() repository.LedgerRepository
	Movements() repository.MovementLogRepository
	Sales() repository.SaleRepository
	Damages() repository.DamageReportRepository
	Reservations() repository.ReservationRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Commit si fn devuelve nil; Rollback en caso contrario.
// Garantiza que la actualización del libro y su registro de movimiento
// queden juntos o no queden.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// HoldMirror refleja reservas vigentes en un almacén con TTL (Redis).
// Es un espejo informativo para los llamadores que deciden descuentos de
// stock; si falla, la reserva persistida sigue siendo la fuente de verdad.
type HoldMirror interface {
	Put(ctx context.Context, reservation *entity.Reservation) error
	Release(ctx context.Context, reservationID string) error
}
