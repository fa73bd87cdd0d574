package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

var _ repository.MovementLogRepository = (*MovementLogRepo)(nil)

// MovementLogRepo implementación sobre PostgreSQL del registro de movimientos
// (usable con pool o tx). La tabla movement_logs es append-only: este
// adaptador no expone UPDATE ni DELETE.
type MovementLogRepo struct {
	q Querier
}

// NewMovementLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementLogRepository(q Querier) *MovementLogRepo {
	return &MovementLogRepo{q: q}
}

const movementColumns = `id, company_id, outlet_id, product_id, change_type,
	quantity_before, quantity_after, damaged_before, damaged_after,
	change_amount, reference, paired_log_id, reason, created_by, created_at`

// Create persiste un registro de movimiento.
func (r *MovementLogRepo) Create(ctx context.Context, log *entity.MovementLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movement_logs (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		log.ID, log.CompanyID, log.OutletID, log.ProductID, log.ChangeType,
		log.QuantityBefore, log.QuantityAfter, log.DamagedBefore, log.DamagedAfter,
		log.ChangeAmount, nullable(log.Reference), nullable(log.PairedLogID),
		nullable(log.Reason), nullable(log.CreatedBy), log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement log: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; nil si no existe.
func (r *MovementLogRepo) GetByID(ctx context.Context, id string) (*entity.MovementLog, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_logs WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement log: %w", err)
	}
	return m, nil
}

// ListByOutlet lista movimientos de un punto de venta en un rango de fechas.
func (r *MovementLogRepo) ListByOutlet(ctx context.Context, companyID, outletID string, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_logs WHERE company_id = $1 AND outlet_id = $2`
	return r.list(ctx, query, []any{companyID, outletID}, from, to, limit, offset)
}

// ListByProduct lista movimientos de un producto en un rango de fechas.
func (r *MovementLogRepo) ListByProduct(ctx context.Context, companyID, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_logs WHERE company_id = $1 AND product_id = $2`
	return r.list(ctx, query, []any{companyID, productID}, from, to, limit, offset)
}

// ListByReference lista los movimientos originados por una venta, reporte de
// daño o traslado.
func (r *MovementLogRepo) ListByReference(ctx context.Context, companyID, reference string) ([]*entity.MovementLog, error) {
	query := `SELECT ` + movementColumns + ` FROM movement_logs
		WHERE company_id = $1 AND reference = $2 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, companyID, reference)
	if err != nil {
		return nil, fmt.Errorf("list by reference: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// list arma la consulta con rango de fechas opcional y paginación
// (parámetros posicionales, nunca concatenación de valores).
func (r *MovementLogRepo) list(ctx context.Context, query string, args []any, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error) {
	pos := len(args) + 1
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement logs: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.MovementLog, error) {
	var list []*entity.MovementLog
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement log: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementLog, error) {
	var m entity.MovementLog
	var reference, pairedLogID, reason, createdBy *string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.OutletID, &m.ProductID, &m.ChangeType,
		&m.QuantityBefore, &m.QuantityAfter, &m.DamagedBefore, &m.DamagedAfter,
		&m.ChangeAmount, &reference, &pairedLogID, &reason, &createdBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Reference = deref(reference)
	m.PairedLogID = deref(pairedLogID)
	m.Reason = deref(reason)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}
