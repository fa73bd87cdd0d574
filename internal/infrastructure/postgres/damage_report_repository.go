package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

var _ repository.DamageReportRepository = (*DamageReportRepo)(nil)

// DamageReportRepo implementación de DamageReportRepository sobre PostgreSQL.
// Las acciones de reparación/desguace viven en tablas hijas repair_actions y
// scrap_actions.
type DamageReportRepo struct {
	q Querier
}

// NewDamageReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDamageReportRepository(q Querier) *DamageReportRepo {
	return &DamageReportRepo{q: q}
}

const damageColumns = `id, company_id, outlet_id, product_id, reported_quantity, quantity,
	repaired_quantity, scrapped_quantity, status, severity, damage_type,
	estimated_cost, repair_cost, recovery_value, notes, reported_by, created_at, updated_at`

func (r *DamageReportRepo) Create(ctx context.Context, report *entity.DamageReport) error {
	query := `
		INSERT INTO damage_reports (` + damageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		report.ID, report.CompanyID, report.OutletID, report.ProductID,
		report.ReportedQuantity, report.Quantity, report.RepairedQuantity, report.ScrappedQuantity,
		report.Status, nullable(report.Severity), nullable(report.DamageType),
		report.EstimatedCost, report.RepairCost, report.RecoveryValue,
		nullable(report.Notes), nullable(report.ReportedBy), report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create damage report: %w", err)
	}
	return nil
}

// GetByID obtiene el reporte con sus acciones hijas; nil si no existe.
func (r *DamageReportRepo) GetByID(ctx context.Context, id string) (*entity.DamageReport, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene el reporte bloqueando su fila durante una transición.
func (r *DamageReportRepo) GetForUpdate(ctx context.Context, id string) (*entity.DamageReport, error) {
	return r.get(ctx, id, true)
}

func (r *DamageReportRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.DamageReport, error) {
	query := `SELECT ` + damageColumns + ` FROM damage_reports WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	d, err := r.scanReport(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get damage report: %w", err)
	}
	if err := r.loadActions(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update persiste cantidades, costos y estado tras una acción o transición.
func (r *DamageReportRepo) Update(ctx context.Context, report *entity.DamageReport) error {
	query := `
		UPDATE damage_reports SET
			quantity = $2, repaired_quantity = $3, scrapped_quantity = $4,
			status = $5, severity = $6, damage_type = $7,
			estimated_cost = $8, repair_cost = $9, recovery_value = $10,
			notes = $11, updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		report.ID, report.Quantity, report.RepairedQuantity, report.ScrappedQuantity,
		report.Status, nullable(report.Severity), nullable(report.DamageType),
		report.EstimatedCost, report.RepairCost, report.RecoveryValue,
		nullable(report.Notes), report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update damage report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update damage report: reporte %s no encontrado", report.ID)
	}
	return nil
}

func (r *DamageReportRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM damage_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete damage report: %w", err)
	}
	return nil
}

func (r *DamageReportRepo) AddRepairAction(ctx context.Context, action *entity.RepairAction) error {
	query := `
		INSERT INTO repair_actions (id, report_id, quantity_repaired, cost, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		action.ID, action.ReportID, action.QuantityRepaired, action.Cost,
		nullable(action.Notes), nullable(action.CreatedBy), action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add repair action: %w", err)
	}
	return nil
}

func (r *DamageReportRepo) AddScrapAction(ctx context.Context, action *entity.ScrapAction) error {
	query := `
		INSERT INTO scrap_actions (id, report_id, quantity_scrapped, recovery_value, reason, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		action.ID, action.ReportID, action.QuantityScrapped, action.RecoveryValue,
		nullable(action.Reason), nullable(action.CreatedBy), action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add scrap action: %w", err)
	}
	return nil
}

// ListByOutlet lista reportes de un punto de venta, más recientes primero.
// El listado no carga acciones hijas; el detalle sí.
func (r *DamageReportRepo) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.DamageReport, error) {
	query := `
		SELECT ` + damageColumns + `
		FROM damage_reports
		WHERE company_id = $1 AND outlet_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, outletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list damage reports: %w", err)
	}
	defer rows.Close()

	var list []*entity.DamageReport
	for rows.Next() {
		d, err := r.scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan damage report: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *DamageReportRepo) scanReport(row pgx.Row) (*entity.DamageReport, error) {
	var d entity.DamageReport
	var severity, damageType, notes, reportedBy *string
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.OutletID, &d.ProductID,
		&d.ReportedQuantity, &d.Quantity, &d.RepairedQuantity, &d.ScrappedQuantity,
		&d.Status, &severity, &damageType,
		&d.EstimatedCost, &d.RepairCost, &d.RecoveryValue,
		&notes, &reportedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Severity = deref(severity)
	d.DamageType = deref(damageType)
	d.Notes = deref(notes)
	d.ReportedBy = deref(reportedBy)
	return &d, nil
}

func (r *DamageReportRepo) loadActions(ctx context.Context, d *entity.DamageReport) error {
	repairQuery := `
		SELECT id, report_id, quantity_repaired, cost, notes, created_by, created_at
		FROM repair_actions WHERE report_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(ctx, repairQuery, d.ID)
	if err != nil {
		return fmt.Errorf("load repair actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.RepairAction
		var notes, createdBy *string
		if err := rows.Scan(&a.ID, &a.ReportID, &a.QuantityRepaired, &a.Cost, &notes, &createdBy, &a.CreatedAt); err != nil {
			return fmt.Errorf("scan repair action: %w", err)
		}
		a.Notes = deref(notes)
		a.CreatedBy = deref(createdBy)
		d.RepairActions = append(d.RepairActions, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	scrapQuery := `
		SELECT id, report_id, quantity_scrapped, recovery_value, reason, created_by, created_at
		FROM scrap_actions WHERE report_id = $1 ORDER BY created_at`
	scrapRows, err := r.q.Query(ctx, scrapQuery, d.ID)
	if err != nil {
		return fmt.Errorf("load scrap actions: %w", err)
	}
	defer scrapRows.Close()
	for scrapRows.Next() {
		var a entity.ScrapAction
		var reason, createdBy *string
		if err := scrapRows.Scan(&a.ID, &a.ReportID, &a.QuantityScrapped, &a.RecoveryValue, &reason, &createdBy, &a.CreatedAt); err != nil {
			return fmt.Errorf("scan scrap action: %w", err)
		}
		a.Reason = deref(reason)
		a.CreatedBy = deref(createdBy)
		d.ScrapActions = append(d.ScrapActions, a)
	}
	return scrapRows.Err()
}
