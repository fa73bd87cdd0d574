package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

// StockUseCase agrupa las operaciones de movimiento sobre el libro de stock
// (ajuste, traslado, conciliación, ajuste por lotes y reserva). Cada operación
// es una función transaccional estrecha: precondición explícita, bloqueo de
// fila (SELECT FOR UPDATE) y un único punto de commit.
type StockUseCase struct {
	txRunner    TxRunner
	outletRepo  repository.OutletRepository
	productRepo repository.ProductRepository
	holds       HoldMirror // opcional; nil deshabilita el espejo de reservas
}

// NewStockUseCase construye el caso de uso. holds puede ser nil.
func NewStockUseCase(
	txRunner TxRunner,
	outletRepo repository.OutletRepository,
	productRepo repository.ProductRepository,
	holds HoldMirror,
) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		outletRepo:  outletRepo,
		productRepo: productRepo,
		holds:       holds,
	}
}

// Adjust aplica un delta (positivo o negativo) al stock disponible de un
// producto en un punto de venta. Crea la entrada si no existe (solo con delta
// positivo) y rechaza con InsufficientStockError si el resultado sería
// negativo, dejando el libro intacto. Registra un movimiento ADJUSTMENT.
func (uc *StockUseCase) Adjust(ctx context.Context, companyID, userID, outletID, productID string, delta int64, reason string) (*entity.LedgerEntry, *entity.MovementLog, error) {
	if delta == 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	if err := uc.checkOutletAndProduct(ctx, companyID, outletID, productID); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	var (
		entry *entity.LedgerEntry
		mov   *entity.MovementLog
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		entry, err = r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
		if err != nil {
			return err
		}
		newQty := entry.Quantity + delta
		if newQty < 0 {
			return &domain.InsufficientStockError{
				OutletID:  outletID,
				ProductID: productID,
				Available: entry.Quantity,
				Requested: -delta,
			}
		}
		before := *entry
		entry.Quantity = newQty
		entry.UpdatedAt = now
		if err := r.Ledger().Upsert(ctx, entry); err != nil {
			return err
		}
		mov = newMovementLog(&before, entry, entity.ChangeTypeAdjustment, delta, "", reason, userID, now)
		return r.Movements().Create(ctx, mov)
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, mov, nil
}

// Transfer mueve cantidad de un punto de venta a otro en una sola transacción:
// dos escrituras del libro y dos registros de movimiento emparejados
// (TRANSFER_OUT/TRANSFER_IN) quedan juntos o no quedan. Nunca deja stock
// "en tránsito" sin contabilizar.
func (uc *StockUseCase) Transfer(ctx context.Context, companyID, userID, fromOutletID, toOutletID, productID string, quantity int64, reason string) (*TransferResult, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if fromOutletID == toOutletID {
		return nil, domain.ErrInvalidTransfer
	}
	if err := uc.checkOutletAndProduct(ctx, companyID, fromOutletID, productID); err != nil {
		return nil, err
	}
	if err := uc.checkOutlet(ctx, companyID, toOutletID); err != nil {
		return nil, err
	}

	now := time.Now()
	transferID := uuid.New().String()
	res := &TransferResult{TransferID: transferID}

	err := uc.txRunner.Run(ctx, func(r Repos) error {
		// Bloquea ambas filas en orden estable de clave para evitar deadlocks
		// entre traslados cruzados sobre el mismo par de puntos de venta.
		firstOutlet, secondOutlet := fromOutletID, toOutletID
		if secondOutlet < firstOutlet {
			firstOutlet, secondOutlet = secondOutlet, firstOutlet
		}
		locked := map[string]*entity.LedgerEntry{}
		for _, outletID := range []string{firstOutlet, secondOutlet} {
			e, err := r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
			if err != nil {
				return err
			}
			locked[outletID] = e
		}
		source, dest := locked[fromOutletID], locked[toOutletID]

		if source.Quantity < quantity {
			return &domain.InsufficientStockError{
				OutletID:  fromOutletID,
				ProductID: productID,
				Available: source.Quantity,
				Requested: quantity,
			}
		}

		beforeSrc, beforeDst := *source, *dest
		source.Quantity -= quantity
		dest.Quantity += quantity
		source.UpdatedAt = now
		dest.UpdatedAt = now
		if err := r.Ledger().Upsert(ctx, source); err != nil {
			return err
		}
		if err := r.Ledger().Upsert(ctx, dest); err != nil {
			return err
		}

		// Los dos registros se referencian mutuamente para el emparejamiento de auditoría.
		outLog := newMovementLog(&beforeSrc, source, entity.ChangeTypeTransferOut, -quantity, transferID, reason, userID, now)
		inLog := newMovementLog(&beforeDst, dest, entity.ChangeTypeTransferIn, quantity, transferID, reason, userID, now)
		outLog.PairedLogID = inLog.ID
		inLog.PairedLogID = outLog.ID
		if err := r.Movements().Create(ctx, outLog); err != nil {
			return err
		}
		if err := r.Movements().Create(ctx, inLog); err != nil {
			return err
		}

		res.Source, res.Destination = source, dest
		res.SourceLog, res.DestinationLog = outLog, inLog
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TransferResult resultado de un traslado confirmado.
type TransferResult struct {
	TransferID     string
	Source         *entity.LedgerEntry
	Destination    *entity.LedgerEntry
	SourceLog      *entity.MovementLog
	DestinationLog *entity.MovementLog
}

// Reconcile fija el stock disponible en exactamente actualQuantity (conteo
// físico), creando la entrada si no existe. Es la única operación que puede
// subir o bajar sin recibir un delta; la discrepancia queda en el registro.
func (uc *StockUseCase) Reconcile(ctx context.Context, companyID, userID, outletID, productID string, actualQuantity int64, reason string) (*entity.LedgerEntry, *entity.MovementLog, int64, error) {
	if actualQuantity < 0 {
		return nil, nil, 0, domain.ErrInvalidInput
	}
	if err := uc.checkOutletAndProduct(ctx, companyID, outletID, productID); err != nil {
		return nil, nil, 0, err
	}

	now := time.Now()
	var (
		entry       *entity.LedgerEntry
		mov         *entity.MovementLog
		discrepancy int64
	)
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		entry, err = r.Ledger().GetForUpdate(ctx, companyID, outletID, productID)
		if err != nil {
			return err
		}
		discrepancy = actualQuantity - entry.Quantity
		before := *entry
		entry.Quantity = actualQuantity
		entry.UpdatedAt = now
		if err := r.Ledger().Upsert(ctx, entry); err != nil {
			return err
		}
		mov = newMovementLog(&before, entry, entity.ChangeTypeReconciliation, discrepancy, "", reason, userID, now)
		return r.Movements().Create(ctx, mov)
	})
	if err != nil {
		return nil, nil, 0, err
	}
	return entry, mov, discrepancy, nil
}

// GetLevel devuelve la entrada del libro para un producto en un punto de venta
// (entrada en cero si aún no existe fila).
func (uc *StockUseCase) GetLevel(ctx context.Context, companyID, outletID, productID string) (*entity.LedgerEntry, error) {
	if err := uc.checkOutletAndProduct(ctx, companyID, outletID, productID); err != nil {
		return nil, err
	}
	var entry *entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		entry, err = r.Ledger().Get(ctx, companyID, outletID, productID)
		return err
	})
	return entry, err
}

// ListLevels lista las entradas del libro de un punto de venta.
func (uc *StockUseCase) ListLevels(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	if err := uc.checkOutlet(ctx, companyID, outletID); err != nil {
		return nil, err
	}
	var list []*entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		list, err = r.Ledger().ListByOutlet(ctx, companyID, outletID, limit, offset)
		return err
	})
	return list, err
}

// ListMovements lista el historial de movimientos por punto de venta o por
// producto, con rango de fechas y paginación.
func (uc *StockUseCase) ListMovements(ctx context.Context, companyID, outletID, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error) {
	var list []*entity.MovementLog
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		if productID != "" {
			list, err = r.Movements().ListByProduct(ctx, companyID, productID, from, to, limit, offset)
			return err
		}
		if outletID != "" {
			list, err = r.Movements().ListByOutlet(ctx, companyID, outletID, from, to, limit, offset)
			return err
		}
		return domain.ErrInvalidInput
	})
	return list, err
}

// checkOutletAndProduct valida que el punto de venta y el producto existan y
// pertenezcan a la empresa. Se ejecuta antes de abrir la transacción: los
// errores de validación y de no-encontrado abortan sin efectos secundarios.
func (uc *StockUseCase) checkOutletAndProduct(ctx context.Context, companyID, outletID, productID string) error {
	if companyID == "" || outletID == "" || productID == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.checkOutlet(ctx, companyID, outletID); err != nil {
		return err
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

func (uc *StockUseCase) checkOutlet(ctx context.Context, companyID, outletID string) error {
	outlet, err := uc.outletRepo.GetByID(ctx, outletID)
	if err != nil {
		return err
	}
	if outlet == nil {
		return domain.ErrNotFound
	}
	if outlet.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

// newMovementLog construye el registro append-only con el antes/después de
// ambos contadores. El ID se genera aquí para que los traslados puedan
// referenciar el registro espejo antes de insertarlo.
func newMovementLog(before, after *entity.LedgerEntry, changeType string, changeAmount int64, reference, reason, userID string, now time.Time) *entity.MovementLog {
	return &entity.MovementLog{
		ID:             uuid.New().String(),
		CompanyID:      after.CompanyID,
		OutletID:       after.OutletID,
		ProductID:      after.ProductID,
		ChangeType:     changeType,
		QuantityBefore: before.Quantity,
		QuantityAfter:  after.Quantity,
		DamagedBefore:  before.DamagedQuantity,
		DamagedAfter:   after.DamagedQuantity,
		ChangeAmount:   changeAmount,
		Reference:      reference,
		Reason:         reason,
		CreatedBy:      userID,
		CreatedAt:      now,
	}
}
