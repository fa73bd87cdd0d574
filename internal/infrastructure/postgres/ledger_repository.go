package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre PostgreSQL (usable con
// pool o tx). La tabla stock_ledger tiene clave única
// (company_id, outlet_id, product_id).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Get obtiene la entrada del libro; devuelve una entrada en cero si no hay fila.
func (r *LedgerRepo) Get(ctx context.Context, companyID, outletID, productID string) (*entity.LedgerEntry, error) {
	query := `
		SELECT company_id, outlet_id, product_id, quantity, damaged_quantity, updated_at
		FROM stock_ledger
		WHERE company_id = $1 AND outlet_id = $2 AND product_id = $3`
	return r.scanOne(ctx, query, companyID, outletID, productID)
}

// GetForUpdate obtiene la entrada y bloquea la fila (SELECT FOR UPDATE) para
// el check-then-write.
func (r *LedgerRepo) GetForUpdate(ctx context.Context, companyID, outletID, productID string) (*entity.LedgerEntry, error) {
	query := `
		SELECT company_id, outlet_id, product_id, quantity, damaged_quantity, updated_at
		FROM stock_ledger
		WHERE company_id = $1 AND outlet_id = $2 AND product_id = $3
		FOR UPDATE`
	return r.scanOne(ctx, query, companyID, outletID, productID)
}

func (r *LedgerRepo) scanOne(ctx context.Context, query, companyID, outletID, productID string) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	err := r.q.QueryRow(ctx, query, companyID, outletID, productID).Scan(
		&e.CompanyID, &e.OutletID, &e.ProductID, &e.Quantity, &e.DamagedQuantity, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Creación perezosa: la fila aparece con el primer Upsert.
			return &entity.LedgerEntry{CompanyID: companyID, OutletID: outletID, ProductID: productID}, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &e, nil
}

// Upsert inserta o actualiza los contadores por (empresa, punto de venta, producto).
func (r *LedgerRepo) Upsert(ctx context.Context, entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (company_id, outlet_id, product_id, quantity, damaged_quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (company_id, outlet_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, damaged_quantity = EXCLUDED.damaged_quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, entry.CompanyID, entry.OutletID, entry.ProductID, entry.Quantity, entry.DamagedQuantity)
	if err != nil {
		return fmt.Errorf("upsert ledger entry: %w", err)
	}
	return nil
}

// Delete elimina la fila solo si ambos contadores están en cero; la historia
// de movimientos se conserva en el registro append-only.
func (r *LedgerRepo) Delete(ctx context.Context, companyID, outletID, productID string) error {
	query := `
		DELETE FROM stock_ledger
		WHERE company_id = $1 AND outlet_id = $2 AND product_id = $3
		  AND quantity = 0 AND damaged_quantity = 0`
	_, err := r.q.Exec(ctx, query, companyID, outletID, productID)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	return nil
}

// ListByOutlet lista las entradas de un punto de venta.
func (r *LedgerRepo) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT company_id, outlet_id, product_id, quantity, damaged_quantity, updated_at
		FROM stock_ledger
		WHERE company_id = $1 AND outlet_id = $2
		ORDER BY product_id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, outletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger by outlet: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.CompanyID, &e.OutletID, &e.ProductID, &e.Quantity, &e.DamagedQuantity, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
