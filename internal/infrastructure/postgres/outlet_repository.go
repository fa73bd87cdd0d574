package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

var _ repository.OutletRepository = (*OutletRepo)(nil)

// OutletRepo implementación de OutletRepository sobre PostgreSQL.
type OutletRepo struct {
	q Querier
}

// NewOutletRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutletRepository(q Querier) *OutletRepo {
	return &OutletRepo{q: q}
}

func (r *OutletRepo) Create(ctx context.Context, outlet *entity.Outlet) error {
	query := `
		INSERT INTO outlets (id, company_id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		outlet.ID, outlet.CompanyID, outlet.Name, nullable(outlet.Address),
		outlet.CreatedAt, outlet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create outlet: %w", err)
	}
	return nil
}

func (r *OutletRepo) GetByID(ctx context.Context, id string) (*entity.Outlet, error) {
	query := `
		SELECT id, company_id, name, address, created_at, updated_at
		FROM outlets WHERE id = $1`
	var o entity.Outlet
	var address *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CompanyID, &o.Name, &address, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get outlet: %w", err)
	}
	o.Address = deref(address)
	return &o, nil
}

func (r *OutletRepo) Update(ctx context.Context, outlet *entity.Outlet) error {
	query := `
		UPDATE outlets SET name = $2, address = $3, updated_at = $4
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, outlet.ID, outlet.Name, nullable(outlet.Address), outlet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update outlet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update outlet: sucursal %s no encontrada", outlet.ID)
	}
	return nil
}

func (r *OutletRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Outlet, error) {
	query := `
		SELECT id, company_id, name, address, created_at, updated_at
		FROM outlets
		WHERE company_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list outlets: %w", err)
	}
	defer rows.Close()

	var list []*entity.Outlet
	for rows.Next() {
		var o entity.Outlet
		var address *string
		if err := rows.Scan(&o.ID, &o.CompanyID, &o.Name, &address, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan outlet: %w", err)
		}
		o.Address = deref(address)
		list = append(list, &o)
	}
	return list, rows.Err()
}

func (r *OutletRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM outlets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete outlet: %w", err)
	}
	return nil
}
