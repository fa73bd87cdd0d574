package sale_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/application/sale"
	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/infrastructure/memory"
)

const (
	testCompanyID = "00000000-0000-0000-0000-00000000000a"
	testUserID    = "00000000-0000-0000-0000-00000000000b"
)

type fixture struct {
	store    *memory.Store
	stockUC  *ledger.StockUseCase
	saleUC   *sale.SaleUseCase
	outletID string
	prodP    string
	prodQ    string
}

// newFixture siembra un punto de venta y dos productos P y Q con precios de
// lista, y deja el stock inicial que indique cada test vía seed.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:    store,
		stockUC:  ledger.NewStockUseCase(store, store.Outlets(), store.Products(), nil),
		saleUC:   sale.NewSaleUseCase(store, store.Outlets(), store.Products()),
		outletID: uuid.New().String(),
		prodP:    uuid.New().String(),
		prodQ:    uuid.New().String(),
	}
	ctx := context.Background()
	require.NoError(t, store.Outlets().Create(ctx, &entity.Outlet{
		ID: f.outletID, CompanyID: testCompanyID, Name: "Sucursal Centro",
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: f.prodP, CompanyID: testCompanyID, SKU: "P-001", Name: "Producto P",
		Price: decimal.NewFromInt(100),
	}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: f.prodQ, CompanyID: testCompanyID, SKU: "Q-001", Name: "Producto Q",
		Price: decimal.NewFromInt(50),
	}))
	return f
}

func (f *fixture) seed(t *testing.T, productID string, qty int64) {
	t.Helper()
	_, _, err := f.stockUC.Adjust(context.Background(), testCompanyID, testUserID, f.outletID, productID, qty, "carga inicial")
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, productID string) int64 {
	t.Helper()
	entry, err := f.stockUC.GetLevel(context.Background(), testCompanyID, f.outletID, productID)
	require.NoError(t, err)
	return entry.Quantity
}

func (f *fixture) items(lines ...sale.SaleItemInput) sale.CreateSaleInput {
	return sale.CreateSaleInput{OutletID: f.outletID, Items: lines}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_CompletadaDescuentaTodasLasLineas(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)
	f.seed(t, f.prodQ, 5)

	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items(
		sale.SaleItemInput{ProductID: f.prodP, Quantity: 3},
		sale.SaleItemInput{ProductID: f.prodQ, Quantity: 2},
	))
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusCompleted, s.Status)
	assert.Equal(t, int64(2), f.quantity(t, f.prodP))
	assert.Equal(t, int64(3), f.quantity(t, f.prodQ))

	// Totales con precio de lista: 3*100 + 2*50 = 400.
	assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(400)), "subtotal: %s", s.Subtotal)
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(400)))
}

func TestCreate_LineaCortaAbortaTodo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)
	f.seed(t, f.prodQ, 1)

	// P alcanza (3 de 5) pero Q no (2 de 1): la venta completa debe fallar y
	// P no puede quedar descontado.
	_, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items(
		sale.SaleItemInput{ProductID: f.prodP, Quantity: 3},
		sale.SaleItemInput{ProductID: f.prodQ, Quantity: 2},
	))
	var insErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, f.prodQ, insErr.ProductID)
	assert.Equal(t, int64(1), insErr.Available)
	assert.Equal(t, int64(2), insErr.Requested)

	assert.Equal(t, int64(5), f.quantity(t, f.prodP), "sin descuento parcial")
	assert.Equal(t, int64(1), f.quantity(t, f.prodQ))
}

func TestCreate_BorradorNoTocaElLibro(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	in := f.items(sale.SaleItemInput{ProductID: f.prodP, Quantity: 3})
	in.Status = entity.SaleStatusDraft
	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusDraft, s.Status)
	assert.Equal(t, int64(5), f.quantity(t, f.prodP))
}

func TestCreate_PrecioExplicitoCongelaLaLinea(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	price := decimal.NewFromInt(80)
	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items(
		sale.SaleItemInput{ProductID: f.prodP, Quantity: 2, UnitPrice: &price},
	))
	require.NoError(t, err)
	assert.True(t, s.Items[0].UnitPrice.Equal(price))
	assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(160)))
}

func TestCreate_SinLineasRechazada(t *testing.T) {
	f := newFixture(t)
	_, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestComplete_DesdeBorradorDescuenta(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	in := f.items(sale.SaleItemInput{ProductID: f.prodP, Quantity: 3})
	in.Status = entity.SaleStatusDraft
	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	s, err = f.saleUC.Complete(context.Background(), testCompanyID, testUserID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, s.Status)
	assert.Equal(t, int64(2), f.quantity(t, f.prodP))
}

func TestVoid_RestauraElStock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items(
		sale.SaleItemInput{ProductID: f.prodP, Quantity: 3},
	))
	require.NoError(t, err)
	require.Equal(t, int64(2), f.quantity(t, f.prodP))

	s, err = f.saleUC.Void(context.Background(), testCompanyID, testUserID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusVoided, s.Status)
	assert.Equal(t, int64(5), f.quantity(t, f.prodP), "la anulación devuelve la mercancía")
}

func TestRefund_RestauraComoLaAnulacion(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items(
		sale.SaleItemInput{ProductID: f.prodP, Quantity: 2},
	))
	require.NoError(t, err)

	s, err = f.saleUC.Refund(context.Background(), testCompanyID, testUserID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusRefunded, s.Status)
	assert.Equal(t, int64(5), f.quantity(t, f.prodP))
}

func TestVoid_DesdeBorradorRechazado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	in := f.items(sale.SaleItemInput{ProductID: f.prodP, Quantity: 1})
	in.Status = entity.SaleStatusDraft
	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, in)
	require.NoError(t, err)

	_, err = f.saleUC.Void(context.Background(), testCompanyID, testUserID, s.ID)
	var stErr *domain.StateTransitionError
	require.ErrorAs(t, err, &stErr, "DRAFT no puede anularse")
	assert.Equal(t, entity.SaleStatusDraft, stErr.Current)
	assert.Equal(t, entity.SaleStatusVoided, stErr.Requested)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestVoid_DosVecesRechazado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items(
		sale.SaleItemInput{ProductID: f.prodP, Quantity: 1},
	))
	require.NoError(t, err)

	_, err = f.saleUC.Void(context.Background(), testCompanyID, testUserID, s.ID)
	require.NoError(t, err)
	_, err = f.saleUC.Void(context.Background(), testCompanyID, testUserID, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition, "VOIDED es terminal")

	// La doble anulación no debe duplicar la restauración.
	assert.Equal(t, int64(5), f.quantity(t, f.prodP))
}

func TestGetByID_DeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodP, 5)

	s, err := f.saleUC.Create(context.Background(), testCompanyID, testUserID, f.items(
		sale.SaleItemInput{ProductID: f.prodP, Quantity: 1},
	))
	require.NoError(t, err)

	_, err = f.saleUC.GetByID(context.Background(), "otra-empresa", s.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
