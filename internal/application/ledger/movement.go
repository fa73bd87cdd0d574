package ledger

import (
	"context"
	"time"

	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// Helpers transaccionales para otros casos de uso (ventas, daños) que mutan el
// libro dentro de su propia transacción. Cada helper bloquea la fila, verifica
// la precondición y registra el movimiento con los repositorios del caller,
// de modo que todo queda en la misma unidad atómica.

// DecrementInTx descuenta stock disponible dentro de la transacción del caller.
// Rechaza con InsufficientStockError si no alcanza, sin tocar el libro.
func DecrementInTx(ctx context.Context, r Repos, companyID, outletID, productID string, quantity int64, changeType, reference, reason, userID string, now time.Time) (*entity.MovementLog, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	entry, err := r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
	if err != nil {
		return nil, err
	}
	if entry.Quantity < quantity {
		return nil, &domain.InsufficientStockError{
			OutletID:  outletID,
			ProductID: productID,
			Available: entry.Quantity,
			Requested: quantity,
		}
	}
	before := *entry
	entry.Quantity -= quantity
	entry.UpdatedAt = now
	if err := r.Ledger().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	mov := newMovementLog(&before, entry, changeType, -quantity, reference, reason, userID, now)
	if err := r.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RestoreInTx devuelve stock disponible dentro de la transacción del caller
// (anulación o reembolso de venta).
func RestoreInTx(ctx context.Context, r Repos, companyID, outletID, productID string, quantity int64, changeType, reference, reason, userID string, now time.Time) (*entity.MovementLog, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	entry, err := r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
	if err != nil {
		return nil, err
	}
	before := *entry
	entry.Quantity += quantity
	entry.UpdatedAt = now
	if err := r.Ledger().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	mov := newMovementLog(&before, entry, changeType, quantity, reference, reason, userID, now)
	if err := r.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// MoveToDamagedInTx mueve cantidad del disponible al balde de dañados
// (creación de un reporte de daño). La suma de ambos contadores no cambia.
func MoveToDamagedInTx(ctx context.Context, r Repos, companyID, outletID, productID string, quantity int64, reference, reason, userID string, now time.Time) (*entity.MovementLog, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	entry, err := r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
	if err != nil {
		return nil, err
	}
	if entry.Quantity < quantity {
		return nil, &domain.InsufficientStockError{
			OutletID:  outletID,
			ProductID: productID,
			Available: entry.Quantity,
			Requested: quantity,
		}
	}
	before := *entry
	entry.Quantity -= quantity
	entry.DamagedQuantity += quantity
	entry.UpdatedAt = now
	if err := r.Ledger().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	mov := newMovementLog(&before, entry, entity.ChangeTypeDamageOut, -quantity, reference, reason, userID, now)
	if err := r.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RestoreFromDamagedInTx devuelve cantidad del balde de dañados al disponible
// (reparación, o reversa al eliminar un reporte sin acciones).
func RestoreFromDamagedInTx(ctx context.Context, r Repos, companyID, outletID, productID string, quantity int64, reference, reason, userID string, now time.Time) (*entity.MovementLog, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	entry, err := r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
	if err != nil {
		return nil, err
	}
	if entry.DamagedQuantity < quantity {
		// El balde de dañados nunca debería quedar por debajo del remanente
		// de sus reportes; si pasa, hay una inconsistencia previa.
		return nil, domain.ErrConflict
	}
	before := *entry
	entry.DamagedQuantity -= quantity
	entry.Quantity += quantity
	entry.UpdatedAt = now
	if err := r.Ledger().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	mov := newMovementLog(&before, entry, entity.ChangeTypeDamageRestore, quantity, reference, reason, userID, now)
	if err := r.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ScrapDamagedInTx saca cantidad del balde de dañados de forma permanente
// (desguace). El disponible no cambia: las unidades salen del sistema.
func ScrapDamagedInTx(ctx context.Context, r Repos, companyID, outletID, productID string, quantity int64, reference, reason, userID string, now time.Time) (*entity.MovementLog, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	entry, err := r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
	if err != nil {
		return nil, err
	}
	if entry.DamagedQuantity < quantity {
		return nil, domain.ErrConflict
	}
	before := *entry
	entry.DamagedQuantity -= quantity
	entry.UpdatedAt = now
	if err := r.Ledger().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	mov := newMovementLog(&before, entry, entity.ChangeTypeDamageOut, -quantity, reference, reason, userID, now)
	if err := r.Movements().Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}
