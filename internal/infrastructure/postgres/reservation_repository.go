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

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
// Las reservas expiradas quedan en la tabla; la vigencia se filtra por fecha.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	query := `
		INSERT INTO stock_reservations (id, company_id, outlet_id, product_id, quantity,
			expires_at, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.CompanyID, res.OutletID, res.ProductID, res.Quantity,
		res.ExpiresAt, nullable(res.Notes), nullable(res.CreatedBy), res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	query := `
		SELECT id, company_id, outlet_id, product_id, quantity, expires_at, notes, created_by, created_at
		FROM stock_reservations WHERE id = $1`
	res, err := r.scanReservation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// SumActive suma las cantidades reservadas vigentes para un producto.
func (r *ReservationRepo) SumActive(ctx context.Context, companyID, outletID, productID string, now time.Time) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock_reservations
		WHERE company_id = $1 AND outlet_id = $2 AND product_id = $3
			AND (expires_at IS NULL OR expires_at > $4)`
	var total int64
	err := r.q.QueryRow(ctx, query, companyID, outletID, productID, now).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum active reservations: %w", err)
	}
	return total, nil
}

func (r *ReservationRepo) ListActiveByProduct(ctx context.Context, companyID, outletID, productID string, now time.Time) ([]*entity.Reservation, error) {
	query := `
		SELECT id, company_id, outlet_id, product_id, quantity, expires_at, notes, created_by, created_at
		FROM stock_reservations
		WHERE company_id = $1 AND outlet_id = $2 AND product_id = $3
			AND (expires_at IS NULL OR expires_at > $4)
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, companyID, outletID, productID, now)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	defer rows.Close()

	var list []*entity.Reservation
	for rows.Next() {
		res, err := r.scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stock_reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	var notes, createdBy *string
	err := row.Scan(
		&res.ID, &res.CompanyID, &res.OutletID, &res.ProductID, &res.Quantity,
		&res.ExpiresAt, &notes, &createdBy, &res.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Notes = deref(notes)
	res.CreatedBy = deref(createdBy)
	return &res, nil
}
