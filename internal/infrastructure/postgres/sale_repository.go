package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool
// o tx). Las líneas viven en sale_items y pertenecen a su venta.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la venta y sus líneas. El caller decide el alcance
// transaccional pasando la tx como Querier.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, company_id, outlet_id, customer_id, status,
			subtotal, discount, tax, total_amount, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.CompanyID, sale.OutletID, nullable(sale.CustomerID), sale.Status,
		sale.Subtotal, sale.Discount, sale.Tax, sale.TotalAmount,
		nullable(sale.CreatedBy), sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	for i := range sale.Items {
		item := &sale.Items[i]
		itemQuery := `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, discount)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := r.q.Exec(ctx, itemQuery,
			item.ID, sale.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Discount,
		); err != nil {
			return fmt.Errorf("create sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas; nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la venta bloqueando su fila durante una transición de estado.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, true)
}

func (r *SaleRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Sale, error) {
	query := `
		SELECT id, company_id, outlet_id, customer_id, status,
			subtotal, discount, tax, total_amount, created_by, created_at, updated_at
		FROM sales WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var s entity.Sale
	var customerID, createdBy *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CompanyID, &s.OutletID, &customerID, &s.Status,
		&s.Subtotal, &s.Discount, &s.Tax, &s.TotalAmount, &createdBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.CustomerID = deref(customerID)
	s.CreatedBy = deref(createdBy)

	items, err := r.loadItems(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return &s, nil
}

// UpdateStatus cambia el estado de la venta. La legalidad de la transición la
// valida el caso de uso antes de llamar aquí.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	query := `UPDATE sales SET status = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update sale status: venta %s no encontrada", id)
	}
	return nil
}

// ListByOutlet lista ventas de un punto de venta con sus líneas.
func (r *SaleRepo) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT id, company_id, outlet_id, customer_id, status,
			subtotal, discount, tax, total_amount, created_by, created_at, updated_at
		FROM sales
		WHERE company_id = $1 AND outlet_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, outletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var list []*entity.Sale
	var ids []string
	for rows.Next() {
		var s entity.Sale
		var customerID, createdBy *string
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.OutletID, &customerID, &s.Status,
			&s.Subtotal, &s.Discount, &s.Tax, &s.TotalAmount, &createdBy, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		s.CustomerID = deref(customerID)
		s.CreatedBy = deref(createdBy)
		list = append(list, &s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		s.Items = items[s.ID]
	}
	return list, nil
}

// loadItems carga las líneas de un conjunto de ventas en una sola consulta.
func (r *SaleRepo) loadItems(ctx context.Context, saleIDs []string) (map[string][]entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, quantity, unit_price, discount
		FROM sale_items WHERE sale_id = ANY($1)`
	rows, err := r.q.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]entity.SaleItem)
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Discount); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items[it.SaleID] = append(items[it.SaleID], it)
	}
	return items, rows.Err()
}
