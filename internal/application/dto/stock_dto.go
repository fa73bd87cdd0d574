package dto

import "time"

// AdjustStockRequest body para POST /api/stock/adjustments.
type AdjustStockRequest struct {
	OutletID  string `json:"outlet_id"`
	ProductID string `json:"product_id"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
}

// TransferStockRequest body para POST /api/stock/transfers.
type TransferStockRequest struct {
	FromOutletID string `json:"from_outlet_id"`
	ToOutletID   string `json:"to_outlet_id"`
	ProductID    string `json:"product_id"`
	Quantity     int64  `json:"quantity"`
	Reason       string `json:"reason"`
}

// BatchAdjustItemRequest ítem de un ajuste por lotes.
type BatchAdjustItemRequest struct {
	OutletID  string `json:"outlet_id"`
	ProductID string `json:"product_id"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
}

// BatchAdjustRequest body para POST /api/stock/batch-adjustments.
type BatchAdjustRequest struct {
	Items []BatchAdjustItemRequest `json:"items"`
}

// BatchAdjustItemResult resultado por ítem (éxito parcial documentado).
type BatchAdjustItemResult struct {
	OutletID  string `json:"outlet_id"`
	ProductID string `json:"product_id"`
	OK        bool   `json:"ok"`
	Quantity  int64  `json:"quantity,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchAdjustResponse resultados y conteos agregados.
type BatchAdjustResponse struct {
	Results      []BatchAdjustItemResult `json:"results"`
	SuccessCount int                     `json:"success_count"`
	FailureCount int                     `json:"failure_count"`
}

// ReconcileStockRequest body para POST /api/stock/reconciliations.
type ReconcileStockRequest struct {
	OutletID       string `json:"outlet_id"`
	ProductID      string `json:"product_id"`
	ActualQuantity int64  `json:"actual_quantity"`
	Reason         string `json:"reason"`
}

// ReserveStockRequest body para POST /api/stock/reservations.
type ReserveStockRequest struct {
	OutletID  string     `json:"outlet_id"`
	ProductID string     `json:"product_id"`
	Quantity  int64      `json:"quantity"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// StockLevelResponse entrada del libro de stock.
type StockLevelResponse struct {
	OutletID        string    `json:"outlet_id"`
	ProductID       string    `json:"product_id"`
	Quantity        int64     `json:"quantity"`
	DamagedQuantity int64     `json:"damaged_quantity"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MovementLogResponse registro de movimiento para el historial.
type MovementLogResponse struct {
	ID             string    `json:"id"`
	OutletID       string    `json:"outlet_id"`
	ProductID      string    `json:"product_id"`
	ChangeType     string    `json:"change_type"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	DamagedBefore  int64     `json:"damaged_before"`
	DamagedAfter   int64     `json:"damaged_after"`
	ChangeAmount   int64     `json:"change_amount"`
	Reference      string    `json:"reference,omitempty"`
	PairedLogID    string    `json:"paired_log_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReservationResponse reserva creada más el disponible restante tras las
// reservas vigentes (informativo).
type ReservationResponse struct {
	ID                 string     `json:"id"`
	OutletID           string     `json:"outlet_id"`
	ProductID          string     `json:"product_id"`
	Quantity           int64      `json:"quantity"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	RemainingAvailable int64      `json:"remaining_available"`
	CreatedAt          time.Time  `json:"created_at"`
}
