package damage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

// DamageUseCase gobierna el ciclo de vida de un reporte de daño
// (REPORTED -> INSPECTED -> REPAIRABLE/REPAIRED/SCRAPPED -> RESOLVED) y los
// movimientos entre el balde disponible y el de dañados. El reporte mueve
// cantidad a dañados, la reparación la devuelve y el desguace la saca del
// sistema; cada transición que toca el libro corre en una transacción con su
// registro DAMAGE_OUT o DAMAGE_RESTORE.
type DamageUseCase struct {
	txRunner    ledger.TxRunner
	outletRepo  repository.OutletRepository
	productRepo repository.ProductRepository
}

// NewDamageUseCase construye el caso de uso.
func NewDamageUseCase(
	txRunner ledger.TxRunner,
	outletRepo repository.OutletRepository,
	productRepo repository.ProductRepository,
) *DamageUseCase {
	return &DamageUseCase{
		txRunner:    txRunner,
		outletRepo:  outletRepo,
		productRepo: productRepo,
	}
}

// ReportInput entrada para reportar unidades dañadas.
type ReportInput struct {
	OutletID      string
	ProductID     string
	Quantity      int64
	Severity      string
	DamageType    string
	EstimatedCost decimal.Decimal
	Notes         string
}

// Report crea el reporte: valida que haya suficiente stock disponible y mueve
// la cantidad del disponible al balde de dañados, atómicamente con la fila
// del reporte.
func (uc *DamageUseCase) Report(ctx context.Context, companyID, userID string, in ReportInput) (*entity.DamageReport, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkOutletAndProduct(ctx, companyID, in.OutletID, in.ProductID); err != nil {
		return nil, err
	}

	now := time.Now()
	report := &entity.DamageReport{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		OutletID:         in.OutletID,
		ProductID:        in.ProductID,
		ReportedQuantity: in.Quantity,
		Quantity:         in.Quantity,
		Status:           entity.DamageStatusReported,
		Severity:         in.Severity,
		DamageType:       in.DamageType,
		EstimatedCost:    in.EstimatedCost,
		Notes:            in.Notes,
		ReportedBy:       userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		_, err := ledger.MoveToDamagedInTx(ctx, r, companyID, in.OutletID, in.ProductID,
			in.Quantity, report.ID, "reporte de daño", userID, now)
		if err != nil {
			return err
		}
		return r.Damages().Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Inspect pasa el reporte de REPORTED a INSPECTED (o directo a REPAIRABLE si
// la inspección lo marca reparable). Sin efecto en el libro.
func (uc *DamageUseCase) Inspect(ctx context.Context, companyID, reportID string, repairable bool, estimatedCost *decimal.Decimal, notes string) (*entity.DamageReport, error) {
	var report *entity.DamageReport
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		report, err = uc.lockReport(ctx, r, companyID, reportID)
		if err != nil {
			return err
		}
		if !report.CanInspect() {
			return &domain.StateTransitionError{Entity: "damage_report", Current: report.Status, Requested: entity.DamageStatusInspected}
		}
		report.Status = entity.DamageStatusInspected
		if repairable {
			report.Status = entity.DamageStatusRepairable
		}
		if estimatedCost != nil {
			report.EstimatedCost = *estimatedCost
		}
		if notes != "" {
			report.Notes = notes
		}
		report.UpdatedAt = time.Now()
		return r.Damages().Update(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RepairInput entrada para una acción de reparación.
type RepairInput struct {
	QuantityRepaired int64
	Cost             decimal.Decimal
	Notes            string
}

// Repair registra una acción de reparación: mueve la cantidad reparada del
// balde de dañados de vuelta al disponible y acumula el costo. El reporte
// queda REPAIRED si el remanente llega a cero, si no PARTIALLY_REPAIRED.
func (uc *DamageUseCase) Repair(ctx context.Context, companyID, userID, reportID string, in RepairInput) (*entity.DamageReport, error) {
	if in.QuantityRepaired <= 0 || in.Cost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var report *entity.DamageReport
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		report, err = uc.lockReport(ctx, r, companyID, reportID)
		if err != nil {
			return err
		}
		if !report.CanRepair() {
			return &domain.StateTransitionError{Entity: "damage_report", Current: report.Status, Requested: entity.DamageStatusRepaired}
		}
		if in.QuantityRepaired > report.Quantity {
			return domain.ErrInvalidInput
		}

		now := time.Now()
		_, err = ledger.RestoreFromDamagedInTx(ctx, r, report.CompanyID, report.OutletID, report.ProductID,
			in.QuantityRepaired, report.ID, "reparación", userID, now)
		if err != nil {
			return err
		}

		action := &entity.RepairAction{
			ID:               uuid.New().String(),
			ReportID:         report.ID,
			QuantityRepaired: in.QuantityRepaired,
			Cost:             in.Cost,
			Notes:            in.Notes,
			CreatedBy:        userID,
			CreatedAt:        now,
		}
		if err := r.Damages().AddRepairAction(ctx, action); err != nil {
			return err
		}

		report.Quantity -= in.QuantityRepaired
		report.RepairedQuantity += in.QuantityRepaired
		report.RepairCost = report.RepairCost.Add(in.Cost)
		if report.Quantity == 0 {
			report.Status = entity.DamageStatusRepaired
		} else {
			report.Status = entity.DamageStatusPartiallyRepaired
		}
		report.UpdatedAt = now
		report.RepairActions = append(report.RepairActions, *action)
		return r.Damages().Update(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ScrapInput entrada para una acción de desguace.
type ScrapInput struct {
	QuantityScrapped int64
	RecoveryValue    decimal.Decimal
	Reason           string
}

// Scrap registra un desguace: baja solo el balde de dañados (las unidades
// salen del sistema, no vuelven al disponible) y registra el valor de
// recuperación. Deja el reporte en SCRAPPED; un re-desguace del remanente
// está permitido.
func (uc *DamageUseCase) Scrap(ctx context.Context, companyID, userID, reportID string, in ScrapInput) (*entity.DamageReport, error) {
	if in.QuantityScrapped <= 0 || in.RecoveryValue.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var report *entity.DamageReport
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		report, err = uc.lockReport(ctx, r, companyID, reportID)
		if err != nil {
			return err
		}
		if !report.CanScrap() {
			return &domain.StateTransitionError{Entity: "damage_report", Current: report.Status, Requested: entity.DamageStatusScrapped}
		}
		if in.QuantityScrapped > report.Quantity {
			return domain.ErrInvalidInput
		}

		now := time.Now()
		_, err = ledger.ScrapDamagedInTx(ctx, r, report.CompanyID, report.OutletID, report.ProductID,
			in.QuantityScrapped, report.ID, "desguace", userID, now)
		if err != nil {
			return err
		}

		action := &entity.ScrapAction{
			ID:               uuid.New().String(),
			ReportID:         report.ID,
			QuantityScrapped: in.QuantityScrapped,
			RecoveryValue:    in.RecoveryValue,
			Reason:           in.Reason,
			CreatedBy:        userID,
			CreatedAt:        now,
		}
		if err := r.Damages().AddScrapAction(ctx, action); err != nil {
			return err
		}

		report.Quantity -= in.QuantityScrapped
		report.ScrappedQuantity += in.QuantityScrapped
		report.RecoveryValue = report.RecoveryValue.Add(in.RecoveryValue)
		report.Status = entity.DamageStatusScrapped
		report.UpdatedAt = now
		report.ScrapActions = append(report.ScrapActions, *action)
		return r.Damages().Update(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Resolve cierra el reporte sin acción correctiva. Sin efecto en el libro:
// el remanente queda en el balde de dañados.
func (uc *DamageUseCase) Resolve(ctx context.Context, companyID, reportID, notes string) (*entity.DamageReport, error) {
	var report *entity.DamageReport
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		report, err = uc.lockReport(ctx, r, companyID, reportID)
		if err != nil {
			return err
		}
		if !report.CanResolve() {
			return &domain.StateTransitionError{Entity: "damage_report", Current: report.Status, Requested: entity.DamageStatusResolved}
		}
		report.Status = entity.DamageStatusResolved
		if notes != "" {
			report.Notes = notes
		}
		report.UpdatedAt = time.Now()
		return r.Damages().Update(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Delete elimina un reporte en REPORTED o INSPECTED sin acciones hijas,
// revirtiendo el movimiento original hacia dañados en la misma transacción
// que borra la fila.
func (uc *DamageUseCase) Delete(ctx context.Context, companyID, userID, reportID string) error {
	return uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		report, err := uc.lockReport(ctx, r, companyID, reportID)
		if err != nil {
			return err
		}
		if !report.CanDelete() {
			return domain.ErrConflict
		}
		now := time.Now()
		_, err = ledger.RestoreFromDamagedInTx(ctx, r, report.CompanyID, report.OutletID, report.ProductID,
			report.Quantity, report.ID, "eliminación de reporte de daño", userID, now)
		if err != nil {
			return err
		}
		return r.Damages().Delete(ctx, reportID)
	})
}

// GetByID obtiene un reporte con sus acciones.
func (uc *DamageUseCase) GetByID(ctx context.Context, companyID, reportID string) (*entity.DamageReport, error) {
	var report *entity.DamageReport
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		report, err = r.Damages().GetByID(ctx, reportID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}
	if report.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return report, nil
}

// ListByOutlet lista reportes de un punto de venta con paginación.
func (uc *DamageUseCase) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.DamageReport, error) {
	if err := uc.checkOutlet(ctx, companyID, outletID); err != nil {
		return nil, err
	}
	var list []*entity.DamageReport
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		list, err = r.Damages().ListByOutlet(ctx, companyID, outletID, limit, offset)
		return err
	})
	return list, err
}

// lockReport carga el reporte con bloqueo de fila y valida la pertenencia a
// la empresa.
func (uc *DamageUseCase) lockReport(ctx context.Context, r ledger.Repos, companyID, reportID string) (*entity.DamageReport, error) {
	report, err := r.Damages().GetForUpdate(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, domain.ErrNotFound
	}
	if report.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return report, nil
}

func (uc *DamageUseCase) checkOutletAndProduct(ctx context.Context, companyID, outletID, productID string) error {
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

func (uc *DamageUseCase) checkOutlet(ctx context.Context, companyID, outletID string) error {
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
