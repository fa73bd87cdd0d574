package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

// Ensure TxRunner implements ledger.TxRunner.
var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Todas las
// escrituras del libro de stock y su registro de movimiento pasan por aquí,
// de modo que se confirman o revierten juntas.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repositorios atados a la tx y
// hace Commit o Rollback. Una vez que fn empieza a aplicar cambios, la unidad
// corre hasta commit o abort; no es cancelable desde afuera.
func (r *TxRunner) Run(ctx context.Context, fn func(ledger.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txRepos{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txRepos construye repositorios sobre el Querier de la transacción.
type txRepos struct {
	q Querier
}

func (t *txRepos) Ledger() repository.LedgerRepository {
	return NewLedgerRepository(t.q)
}

func (t *txRepos) Movements() repository.MovementLogRepository {
	return NewMovementLogRepository(t.q)
}

func (t *txRepos) Sales() repository.SaleRepository {
	return NewSaleRepository(t.q)
}

func (t *txRepos) Damages() repository.DamageReportRepository {
	return NewDamageReportRepository(t.q)
}

func (t *txRepos) Reservations() repository.ReservationRepository {
	return NewReservationRepository(t.q)
}
