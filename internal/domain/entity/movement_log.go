package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	ChangeTypeAdjustment     = "ADJUSTMENT"
	ChangeTypeTransferIn     = "TRANSFER_IN"
	ChangeTypeTransferOut    = "TRANSFER_OUT"
	ChangeTypeReconciliation = "RECONCILIATION"
	ChangeTypeDamageOut      = "DAMAGE_OUT"
	ChangeTypeDamageRestore  = "DAMAGE_RESTORE"
	ChangeTypeSaleDecrement  = "SALE_DECREMENT"
	ChangeTypeSaleRestore    = "SALE_RESTORE"
)

// MovementLog registro inmutable de cada mutación del libro de stock (append-only).
// Guarda el antes/después de ambos contadores para auditoría y conciliación;
// nunca se actualiza ni se borra.
type MovementLog struct {
	ID             string
	CompanyID      string
	OutletID       string
	ProductID      string
	ChangeType     string
	QuantityBefore int64
	QuantityAfter  int64
	DamagedBefore  int64
	DamagedAfter   int64
	ChangeAmount   int64  // con signo; en RECONCILIATION es la discrepancia
	Reference      string // ID de la venta, reporte de daño o traslado que originó el movimiento
	PairedLogID    string // en traslados, ID del registro espejo (TRANSFER_OUT <-> TRANSFER_IN)
	Reason         string
	CreatedBy      string
	CreatedAt      time.Time
}
