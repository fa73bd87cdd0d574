package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
	"github.com/tiendapro/tiendapro-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test: almacén en memoria con un punto de venta y un producto
// sembrados, más un segundo punto de venta para traslados.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-00000000000a"
	testUserID    = "00000000-0000-0000-0000-00000000000b"
)

type fixture struct {
	store     *memory.Store
	uc        *ledger.StockUseCase
	outletA   string
	outletB   string
	productID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		uc:        ledger.NewStockUseCase(store, store.Outlets(), store.Products(), nil),
		outletA:   uuid.New().String(),
		outletB:   uuid.New().String(),
		productID: uuid.New().String(),
	}
	ctx := context.Background()
	for _, id := range []string{f.outletA, f.outletB} {
		require.NoError(t, store.Outlets().Create(ctx, &entity.Outlet{
			ID: id, CompanyID: testCompanyID, Name: "Sucursal " + id[:8],
		}))
	}
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: f.productID, CompanyID: testCompanyID, SKU: "SKU-001", Name: "Producto de prueba",
	}))
	return f
}

// seed deja el stock disponible del producto en la cantidad dada vía ajuste.
func (f *fixture) seed(t *testing.T, outletID string, qty int64) {
	t.Helper()
	_, _, err := f.uc.Adjust(context.Background(), testCompanyID, testUserID, outletID, f.productID, qty, "carga inicial")
	require.NoError(t, err)
}

func (f *fixture) level(t *testing.T, outletID string) *entity.LedgerEntry {
	t.Helper()
	entry, err := f.uc.GetLevel(context.Background(), testCompanyID, outletID, f.productID)
	require.NoError(t, err)
	return entry
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_CreaEntradaConAjustePositivo(t *testing.T) {
	f := newFixture(t)
	entry, mov, err := f.uc.Adjust(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 10, "entrada inicial")
	require.NoError(t, err)

	assert.Equal(t, int64(10), entry.Quantity)
	assert.Equal(t, int64(0), entry.DamagedQuantity)
	require.NotNil(t, mov)
	assert.Equal(t, entity.ChangeTypeAdjustment, mov.ChangeType)
	assert.Equal(t, int64(0), mov.QuantityBefore)
	assert.Equal(t, int64(10), mov.QuantityAfter)
	assert.Equal(t, int64(10), mov.ChangeAmount)
	assert.Equal(t, testUserID, mov.CreatedBy)
}

func TestAdjust_DeltaNegativoMayorQueDisponible(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	_, _, err := f.uc.Adjust(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, -15, "merma")
	require.Error(t, err)

	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr, "el error debe llevar el detalle disponible/solicitado")
	assert.Equal(t, int64(10), insErr.Available)
	assert.Equal(t, int64(15), insErr.Requested)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El libro queda intacto: el rechazo no muta nada.
	assert.Equal(t, int64(10), f.level(t, f.outletA).Quantity)
}

func TestAdjust_DeltaCeroRechazado(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.uc.Adjust(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 0, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjust_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.uc.Adjust(context.Background(), testCompanyID, testUserID, f.outletA, uuid.New().String(), 5, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjust_ProductoDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	otherProduct := uuid.New().String()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: otherProduct, CompanyID: "otra-empresa", SKU: "SKU-X", Name: "Ajeno",
	}))
	_, _, err := f.uc.Adjust(context.Background(), testCompanyID, testUserID, f.outletA, otherProduct, 5, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_MueveYEmparejaRegistros(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	res, err := f.uc.Transfer(context.Background(), testCompanyID, testUserID, f.outletA, f.outletB, f.productID, 4, "reposición")
	require.NoError(t, err)

	assert.Equal(t, int64(6), res.Source.Quantity)
	assert.Equal(t, int64(4), res.Destination.Quantity)

	// Los dos registros se referencian mutuamente y comparten el transfer_id.
	require.NotNil(t, res.SourceLog)
	require.NotNil(t, res.DestinationLog)
	assert.Equal(t, entity.ChangeTypeTransferOut, res.SourceLog.ChangeType)
	assert.Equal(t, entity.ChangeTypeTransferIn, res.DestinationLog.ChangeType)
	assert.Equal(t, res.DestinationLog.ID, res.SourceLog.PairedLogID)
	assert.Equal(t, res.SourceLog.ID, res.DestinationLog.PairedLogID)
	assert.Equal(t, res.TransferID, res.SourceLog.Reference)
	assert.Equal(t, res.TransferID, res.DestinationLog.Reference)
	assert.Equal(t, int64(-4), res.SourceLog.ChangeAmount)
	assert.Equal(t, int64(4), res.DestinationLog.ChangeAmount)

	// Conservación: el total entre sucursales no cambia.
	total := f.level(t, f.outletA).Quantity + f.level(t, f.outletB).Quantity
	assert.Equal(t, int64(10), total)
}

func TestTransfer_MismoOrigenYDestino(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)
	_, err := f.uc.Transfer(context.Background(), testCompanyID, testUserID, f.outletA, f.outletA, f.productID, 2, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransfer)
}

func TestTransfer_StockInsuficienteNoMutaNada(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 3)

	_, err := f.uc.Transfer(context.Background(), testCompanyID, testUserID, f.outletA, f.outletB, f.productID, 5, "")
	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, int64(3), insErr.Available)
	assert.Equal(t, int64(5), insErr.Requested)

	assert.Equal(t, int64(3), f.level(t, f.outletA).Quantity)
	assert.Equal(t, int64(0), f.level(t, f.outletB).Quantity)
}

// flakyRunner envuelve el TxRunner real y hace fallar el Upsert del libro a
// partir de cierto número de escrituras, para simular un fallo a mitad de un
// traslado.
type flakyRunner struct {
	inner      ledger.TxRunner
	allowedUps int
}

func (f *flakyRunner) Run(ctx context.Context, fn func(r ledger.Repos) error) error {
	return f.inner.Run(ctx, func(r ledger.Repos) error {
		return fn(&flakyRepos{Repos: r, remaining: &f.allowedUps})
	})
}

type flakyRepos struct {
	ledger.Repos
	remaining *int
}

func (f *flakyRepos) Ledger() repository.LedgerRepository {
	return &flakyLedger{LedgerRepository: f.Repos.Ledger(), remaining: f.remaining}
}

type flakyLedger struct {
	repository.LedgerRepository
	remaining *int
}

func (l *flakyLedger) Upsert(ctx context.Context, e *entity.LedgerEntry) error {
	if *l.remaining <= 0 {
		return errors.New("fallo simulado de escritura")
	}
	*l.remaining--
	return l.LedgerRepository.Upsert(ctx, e)
}

func TestTransfer_FalloEnDestinoRevierteOrigen(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	// Permite una sola escritura del libro dentro del traslado: el origen se
	// descuenta y el destino falla. La transacción completa debe revertirse.
	uc := ledger.NewStockUseCase(
		&flakyRunner{inner: f.store, allowedUps: 1},
		f.store.Outlets(), f.store.Products(), nil,
	)
	_, err := uc.Transfer(context.Background(), testCompanyID, testUserID, f.outletA, f.outletB, f.productID, 4, "")
	require.Error(t, err)

	assert.Equal(t, int64(10), f.level(t, f.outletA).Quantity, "el origen no debe quedar descontado")
	assert.Equal(t, int64(0), f.level(t, f.outletB).Quantity, "el destino no debe recibir nada")

	// Tampoco deben quedar registros de movimiento huérfanos del traslado.
	logs, err := f.uc.ListMovements(context.Background(), testCompanyID, f.outletA, "", nil, nil, 50, 0)
	require.NoError(t, err)
	for _, m := range logs {
		assert.NotEqual(t, entity.ChangeTypeTransferOut, m.ChangeType)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_FijaCantidadYRegistraDiscrepancia(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	entry, mov, discrepancy, err := f.uc.Reconcile(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 7, "conteo físico")
	require.NoError(t, err)

	assert.Equal(t, int64(7), entry.Quantity)
	assert.Equal(t, int64(-3), discrepancy)
	assert.Equal(t, entity.ChangeTypeReconciliation, mov.ChangeType)
	assert.Equal(t, int64(10), mov.QuantityBefore)
	assert.Equal(t, int64(7), mov.QuantityAfter)
	assert.Equal(t, int64(-3), mov.ChangeAmount)
}

func TestReconcile_CreaEntradaInexistente(t *testing.T) {
	f := newFixture(t)
	entry, _, discrepancy, err := f.uc.Reconcile(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 5, "primer conteo")
	require.NoError(t, err)
	assert.Equal(t, int64(5), entry.Quantity)
	assert.Equal(t, int64(5), discrepancy)
}

func TestReconcile_CantidadNegativaRechazada(t *testing.T) {
	f := newFixture(t)
	_, _, _, err := f.uc.Reconcile(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, -1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// BatchAdjust: éxito parcial
// ──────────────────────────────────────────────────────────────────────────────

func TestBatchAdjust_ExitoParcial(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	items := []ledger.AdjustmentItem{
		{OutletID: f.outletA, ProductID: f.productID, Delta: 5, Reason: "entrada"},
		{OutletID: f.outletA, ProductID: f.productID, Delta: -100, Reason: "imposible"},
		{OutletID: f.outletA, ProductID: uuid.New().String(), Delta: 1, Reason: "producto fantasma"},
		{OutletID: f.outletA, ProductID: f.productID, Delta: -3, Reason: "salida"},
	}
	results, ok, failed := f.uc.BatchAdjust(context.Background(), testCompanyID, testUserID, items)

	require.Len(t, results, 4)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 2, failed)

	assert.True(t, results[0].OK)
	assert.Equal(t, int64(15), results[0].Quantity)
	assert.False(t, results[1].OK)
	assert.Contains(t, results[1].Error, "stock insuficiente")
	assert.False(t, results[2].OK)
	assert.True(t, results[3].OK)

	// Los hermanos exitosos quedaron aplicados aunque hubo fallos.
	assert.Equal(t, int64(12), f.level(t, f.outletA).Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reserve
// ──────────────────────────────────────────────────────────────────────────────

func TestReserve_NoModificaElLibro(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	res, remaining, err := f.uc.Reserve(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 4, nil, "cliente apartó")
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Quantity)
	assert.Equal(t, int64(6), remaining)

	// La reserva es informativa: Quantity del libro no cambia.
	assert.Equal(t, int64(10), f.level(t, f.outletA).Quantity)
}

func TestReserve_RechazaSobreDisponible(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 3)
	_, _, err := f.uc.Reserve(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 5, nil, "")
	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, int64(3), insErr.Available)
}

func TestReserve_ExpiracionEnElPasadoRechazada(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)
	past := time.Now().Add(-time.Hour)
	_, _, err := f.uc.Reserve(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 1, &past, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReserve_LasVigentesDescuentanElRestante(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	_, _, err := f.uc.Reserve(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 3, nil, "")
	require.NoError(t, err)
	_, remaining, err := f.uc.Reserve(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 2, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), remaining, "10 - 3 vigentes - 2 nuevas")
}

func TestReleaseReservation_LiberaYDesaparece(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.outletA, 10)

	res, _, err := f.uc.Reserve(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 3, nil, "")
	require.NoError(t, err)
	require.NoError(t, f.uc.ReleaseReservation(context.Background(), testCompanyID, res.ID))

	// Liberada la primera, una nueva reserva vuelve a ver todo el disponible.
	_, remaining, err := f.uc.Reserve(context.Background(), testCompanyID, testUserID, f.outletA, f.productID, 1, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(9), remaining)
}

func TestReleaseReservation_Inexistente(t *testing.T) {
	f := newFixture(t)
	err := f.uc.ReleaseReservation(context.Background(), testCompanyID, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
