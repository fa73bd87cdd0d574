package damage_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapro/tiendapro-api/internal/application/damage"
	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/infrastructure/memory"
)

const (
	testCompanyID = "00000000-0000-0000-0000-00000000000a"
	testUserID    = "00000000-0000-0000-0000-00000000000b"
)

type fixture struct {
	store     *memory.Store
	stockUC   *ledger.StockUseCase
	damageUC  *damage.DamageUseCase
	outletID  string
	productID string
}

func newFixture(t *testing.T, initialStock int64) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		stockUC:   ledger.NewStockUseCase(store, store.Outlets(), store.Products(), nil),
		damageUC:  damage.NewDamageUseCase(store, store.Outlets(), store.Products()),
		outletID:  uuid.New().String(),
		productID: uuid.New().String(),
	}
	ctx := context.Background()
	require.NoError(t, store.Outlets().Create(ctx, &entity.Outlet{
		ID: f.outletID, CompanyID: testCompanyID, Name: "Sucursal Norte",
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: f.productID, CompanyID: testCompanyID, SKU: "D-001", Name: "Producto frágil",
	}))
	if initialStock > 0 {
		_, _, err := f.stockUC.Adjust(ctx, testCompanyID, testUserID, f.outletID, f.productID, initialStock, "carga inicial")
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) level(t *testing.T) *entity.LedgerEntry {
	t.Helper()
	entry, err := f.stockUC.GetLevel(context.Background(), testCompanyID, f.outletID, f.productID)
	require.NoError(t, err)
	return entry
}

func (f *fixture) report(t *testing.T, qty int64) *entity.DamageReport {
	t.Helper()
	report, err := f.damageUC.Report(context.Background(), testCompanyID, testUserID, damage.ReportInput{
		OutletID:  f.outletID,
		ProductID: f.productID,
		Quantity:  qty,
		Severity:  "MEDIUM",
	})
	require.NoError(t, err)
	return report
}

// ──────────────────────────────────────────────────────────────────────────────
// Report
// ──────────────────────────────────────────────────────────────────────────────

func TestReport_MueveAlBaldeDeDanados(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)

	assert.Equal(t, entity.DamageStatusReported, report.Status)
	assert.Equal(t, int64(2), report.ReportedQuantity)
	assert.Equal(t, int64(2), report.Quantity)

	entry := f.level(t)
	assert.Equal(t, int64(8), entry.Quantity)
	assert.Equal(t, int64(2), entry.DamagedQuantity)
	assert.Equal(t, int64(10), entry.Total(), "reportar daño no cambia el total")
}

func TestReport_SobreElDisponibleRechazado(t *testing.T) {
	f := newFixture(t, 3)
	_, err := f.damageUC.Report(context.Background(), testCompanyID, testUserID, damage.ReportInput{
		OutletID: f.outletID, ProductID: f.productID, Quantity: 5,
	})
	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, int64(3), insErr.Available)

	entry := f.level(t)
	assert.Equal(t, int64(3), entry.Quantity)
	assert.Equal(t, int64(0), entry.DamagedQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Inspección y reparación
// ──────────────────────────────────────────────────────────────────────────────

func TestInspect_PasaAInspeccionado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)

	report, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, false, nil, "golpe leve")
	require.NoError(t, err)
	assert.Equal(t, entity.DamageStatusInspected, report.Status)
}

func TestInspect_DirectoAReparable(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)

	cost := decimal.NewFromInt(30)
	report, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, true, &cost, "")
	require.NoError(t, err)
	assert.Equal(t, entity.DamageStatusRepairable, report.Status)
	assert.True(t, report.EstimatedCost.Equal(cost))
}

func TestInspect_DosVecesRechazado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)

	_, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, false, nil, "")
	require.NoError(t, err)
	_, err = f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, false, nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestRepair_TotalDevuelveTodoAlDisponible(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)
	_, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, true, nil, "")
	require.NoError(t, err)

	report, err = f.damageUC.Repair(context.Background(), testCompanyID, testUserID, report.ID, damage.RepairInput{
		QuantityRepaired: 2,
		Cost:             decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DamageStatusRepaired, report.Status)
	assert.Equal(t, int64(0), report.Quantity)
	assert.Equal(t, int64(2), report.RepairedQuantity)
	require.Len(t, report.RepairActions, 1)

	entry := f.level(t)
	assert.Equal(t, int64(10), entry.Quantity, "todo vuelve al disponible")
	assert.Equal(t, int64(0), entry.DamagedQuantity)
}

func TestRepair_ParcialDejaParcialmenteReparado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 4)
	_, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, true, nil, "")
	require.NoError(t, err)

	report, err = f.damageUC.Repair(context.Background(), testCompanyID, testUserID, report.ID, damage.RepairInput{
		QuantityRepaired: 1, Cost: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DamageStatusPartiallyRepaired, report.Status)
	assert.Equal(t, int64(3), report.Quantity)

	// Se puede seguir reparando desde PARTIALLY_REPAIRED hasta agotar el remanente.
	report, err = f.damageUC.Repair(context.Background(), testCompanyID, testUserID, report.ID, damage.RepairInput{
		QuantityRepaired: 3, Cost: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DamageStatusRepaired, report.Status)
	assert.True(t, report.RepairCost.Equal(decimal.NewFromInt(15)), "el costo se acumula")
}

func TestRepair_MasQueElRemanenteRechazado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)
	_, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, true, nil, "")
	require.NoError(t, err)

	_, err = f.damageUC.Repair(context.Background(), testCompanyID, testUserID, report.ID, damage.RepairInput{
		QuantityRepaired: 3, Cost: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRepair_SinInspeccionRechazado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)

	_, err := f.damageUC.Repair(context.Background(), testCompanyID, testUserID, report.ID, damage.RepairInput{
		QuantityRepaired: 1, Cost: decimal.Zero,
	})
	var stErr *domain.StateTransitionError
	require.ErrorAs(t, err, &stErr, "REPORTED no admite reparación directa")
	assert.Equal(t, entity.DamageStatusReported, stErr.Current)
}

// ──────────────────────────────────────────────────────────────────────────────
// Desguace
// ──────────────────────────────────────────────────────────────────────────────

func TestScrap_SacaUnidadesDelSistema(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 3)
	_, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, false, nil, "")
	require.NoError(t, err)

	report, err = f.damageUC.Scrap(context.Background(), testCompanyID, testUserID, report.ID, damage.ScrapInput{
		QuantityScrapped: 3,
		RecoveryValue:    decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DamageStatusScrapped, report.Status)
	assert.Equal(t, int64(0), report.Quantity)
	assert.Equal(t, int64(3), report.ScrappedQuantity)

	entry := f.level(t)
	assert.Equal(t, int64(7), entry.Quantity, "el disponible no cambia")
	assert.Equal(t, int64(0), entry.DamagedQuantity)
	assert.Equal(t, int64(7), entry.Total(), "el desguace sí reduce el total")
}

func TestRepair_SobreDesguazadoRechazado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)
	_, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, false, nil, "")
	require.NoError(t, err)
	_, err = f.damageUC.Scrap(context.Background(), testCompanyID, testUserID, report.ID, damage.ScrapInput{
		QuantityScrapped: 2, RecoveryValue: decimal.Zero,
	})
	require.NoError(t, err)

	_, err = f.damageUC.Repair(context.Background(), testCompanyID, testUserID, report.ID, damage.RepairInput{
		QuantityRepaired: 1, Cost: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "SCRAPPED no admite reparación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolución y eliminación
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_CierraSinTocarElLibro(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)

	report, err := f.damageUC.Resolve(context.Background(), testCompanyID, report.ID, "sin acción")
	require.NoError(t, err)
	assert.Equal(t, entity.DamageStatusResolved, report.Status)

	entry := f.level(t)
	assert.Equal(t, int64(8), entry.Quantity)
	assert.Equal(t, int64(2), entry.DamagedQuantity, "el remanente queda en dañados")
}

func TestResolve_DesdeResueltoRechazado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)
	_, err := f.damageUC.Resolve(context.Background(), testCompanyID, report.ID, "")
	require.NoError(t, err)
	_, err = f.damageUC.Resolve(context.Background(), testCompanyID, report.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestDelete_RevierteElMovimientoOriginal(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)

	require.NoError(t, f.damageUC.Delete(context.Background(), testCompanyID, testUserID, report.ID))

	entry := f.level(t)
	assert.Equal(t, int64(10), entry.Quantity)
	assert.Equal(t, int64(0), entry.DamagedQuantity)

	_, err := f.damageUC.GetByID(context.Background(), testCompanyID, report.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_ConAccionesRechazado(t *testing.T) {
	f := newFixture(t, 10)
	report := f.report(t, 2)
	_, err := f.damageUC.Inspect(context.Background(), testCompanyID, report.ID, true, nil, "")
	require.NoError(t, err)
	_, err = f.damageUC.Repair(context.Background(), testCompanyID, testUserID, report.ID, damage.RepairInput{
		QuantityRepaired: 1, Cost: decimal.Zero,
	})
	require.NoError(t, err)

	err = f.damageUC.Delete(context.Background(), testCompanyID, testUserID, report.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "un reporte con acciones no puede eliminarse")
}
