package sale

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

// SaleUseCase gobierna el ciclo de vida de una venta
// (DRAFT -> COMPLETED -> VOIDED/REFUNDED) y sus efectos sobre el libro de
// stock. Completar descuenta cada línea; anular o reembolsar restaura. Todas
// las verificaciones y descuentos de una transición ocurren en una sola
// transacción: o se descuentan todas las líneas o ninguna.
type SaleUseCase struct {
	txRunner    ledger.TxRunner
	outletRepo  repository.OutletRepository
	productRepo repository.ProductRepository
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner ledger.TxRunner,
	outletRepo repository.OutletRepository,
	productRepo repository.ProductRepository,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:    txRunner,
		outletRepo:  outletRepo,
		productRepo: productRepo,
	}
}

// SaleItemInput línea solicitada en el checkout. UnitPrice nil toma el precio
// de lista del producto.
type SaleItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice *decimal.Decimal
	Discount  decimal.Decimal
}

// CreateSaleInput entrada para crear una venta. Status elige el estado
// inicial: DRAFT (sin efecto en el libro) o COMPLETED (descuenta stock).
type CreateSaleInput struct {
	OutletID   string
	CustomerID string
	Status     string // DRAFT | COMPLETED; vacío = COMPLETED
	TaxRate    decimal.Decimal
	Items      []SaleItemInput
}

// Create crea la venta. Con estado COMPLETED, los chequeos de disponibilidad
// y los descuentos de todas las líneas corren dentro de una transacción: si
// alguna línea no alcanza, la creación completa falla sin descuento parcial.
func (uc *SaleUseCase) Create(ctx context.Context, companyID, userID string, in CreateSaleInput) (*entity.Sale, error) {
	status := in.Status
	if status == "" {
		status = entity.SaleStatusCompleted
	}
	if status != entity.SaleStatusDraft && status != entity.SaleStatusCompleted {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkOutlet(ctx, companyID, in.OutletID); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &entity.Sale{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		OutletID:   in.OutletID,
		CustomerID: in.CustomerID,
		Status:     status,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Valida productos y arma las líneas con el precio congelado al momento
	// de la venta.
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Discount.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if product.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		unitPrice := product.Price
		if item.UnitPrice != nil {
			if item.UnitPrice.IsNegative() {
				return nil, domain.ErrInvalidInput
			}
			unitPrice = *item.UnitPrice
		}
		line := entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    s.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			Discount:  item.Discount,
		}
		s.Items = append(s.Items, line)
		subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(item.Quantity)))
		discount = discount.Add(item.Discount)
	}
	s.Subtotal = subtotal
	s.Discount = discount
	base := subtotal.Sub(discount)
	if base.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	s.Tax = base.Mul(in.TaxRate)
	s.TotalAmount = base.Add(s.Tax)

	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		if status == entity.SaleStatusCompleted {
			if err := uc.decrementItems(ctx, r, s, now); err != nil {
				return err
			}
		}
		return r.Sales().Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Complete pasa una venta DRAFT a COMPLETED descontando el stock de todas sus
// líneas en una sola transacción.
func (uc *SaleUseCase) Complete(ctx context.Context, companyID, userID, saleID string) (*entity.Sale, error) {
	return uc.transition(ctx, companyID, userID, saleID, entity.SaleStatusCompleted)
}

// Void anula una venta COMPLETED restaurando el stock de cada línea.
func (uc *SaleUseCase) Void(ctx context.Context, companyID, userID, saleID string) (*entity.Sale, error) {
	return uc.transition(ctx, companyID, userID, saleID, entity.SaleStatusVoided)
}

// Refund reembolsa una venta COMPLETED. Igual que la anulación, la mercancía
// vuelve al libro con registros SALE_RESTORE.
func (uc *SaleUseCase) Refund(ctx context.Context, companyID, userID, saleID string) (*entity.Sale, error) {
	return uc.transition(ctx, companyID, userID, saleID, entity.SaleStatusRefunded)
}

// transition ejecuta un cambio de estado con su efecto en el libro. El estado
// objetivo inalcanzable desde el actual se rechaza con StateTransitionError
// sin ninguna mutación.
func (uc *SaleUseCase) transition(ctx context.Context, companyID, userID, saleID, target string) (*entity.Sale, error) {
	var s *entity.Sale
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		s, err = r.Sales().GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if s.CompanyID != companyID {
			return domain.ErrForbidden
		}
		if !s.CanTransition(target) {
			return &domain.StateTransitionError{Entity: "sale", Current: s.Status, Requested: target}
		}

		now := time.Now()
		switch target {
		case entity.SaleStatusCompleted:
			if err := uc.decrementItems(ctx, r, s, now); err != nil {
				return err
			}
		case entity.SaleStatusVoided, entity.SaleStatusRefunded:
			if err := uc.restoreItems(ctx, r, s, userID, now); err != nil {
				return err
			}
		}
		if err := r.Sales().UpdateStatus(ctx, saleID, target, now); err != nil {
			return err
		}
		s.Status = target
		s.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// decrementItems descuenta el stock de cada línea dentro de la transacción.
// Cualquier línea corta aborta la transacción completa.
func (uc *SaleUseCase) decrementItems(ctx context.Context, r ledger.Repos, s *entity.Sale, now time.Time) error {
	for _, item := range s.Items {
		_, err := ledger.DecrementInTx(ctx, r, s.CompanyID, s.OutletID, item.ProductID,
			item.Quantity, entity.ChangeTypeSaleDecrement, s.ID, "venta", s.CreatedBy, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// restoreItems devuelve al libro la cantidad original de cada línea.
func (uc *SaleUseCase) restoreItems(ctx context.Context, r ledger.Repos, s *entity.Sale, userID string, now time.Time) error {
	for _, item := range s.Items {
		_, err := ledger.RestoreInTx(ctx, r, s.CompanyID, s.OutletID, item.ProductID,
			item.Quantity, entity.ChangeTypeSaleRestore, s.ID, "anulación de venta", userID, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene una venta con sus líneas.
func (uc *SaleUseCase) GetByID(ctx context.Context, companyID, saleID string) (*entity.Sale, error) {
	var s *entity.Sale
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		s, err = r.Sales().GetByID(ctx, saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return s, nil
}

// ListByOutlet lista ventas de un punto de venta con paginación.
func (uc *SaleUseCase) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.Sale, error) {
	if err := uc.checkOutlet(ctx, companyID, outletID); err != nil {
		return nil, err
	}
	var list []*entity.Sale
	err := uc.txRunner.Run(ctx, func(r ledger.Repos) error {
		var err error
		list, err = r.Sales().ListByOutlet(ctx, companyID, outletID, limit, offset)
		return err
	})
	return list, err
}

func (uc *SaleUseCase) checkOutlet(ctx context.Context, companyID, outletID string) error {
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
