package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tiendapro/tiendapro-api/internal/application/dto"
	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del libro de stock (protegido).
type StockHandler struct {
	uc *ledger.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajustar stock disponible
// @Description  Aplica un delta positivo o negativo al stock de un producto en un punto de venta. Rechaza con 409 si el resultado sería negativo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "outlet_id, product_id, delta, reason"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, mov, err := h.uc.Adjust(c.Context(), companyID, userID, in.OutletID, in.ProductID, in.Delta, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"level":    toStockLevel(entry),
		"movement": toMovementLog(mov),
	})
}

// Transfer godoc
// @Summary      Trasladar stock entre puntos de venta
// @Description  Mueve cantidad de un punto de venta a otro de forma atómica y registra el par TRANSFER_OUT/TRANSFER_IN.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferStockRequest  true  "from_outlet_id, to_outlet_id, product_id, quantity, reason"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransferStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Transfer(c.Context(), companyID, userID, in.FromOutletID, in.ToOutletID, in.ProductID, in.Quantity, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"transfer_id": res.TransferID,
		"source":      toStockLevel(res.Source),
		"destination": toStockLevel(res.Destination),
		"movements": []dto.MovementLogResponse{
			*toMovementLog(res.SourceLog),
			*toMovementLog(res.DestinationLog),
		},
	})
}

// BatchAdjust godoc
// @Summary      Ajuste de stock por lotes
// @Description  Aplica cada ítem de forma independiente; los fallos no abortan a los hermanos (éxito parcial).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchAdjustRequest  true  "items"
// @Success      200   {object}  dto.BatchAdjustResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/batch-adjustments [post]
func (h *StockHandler) BatchAdjust(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.BatchAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items es requerido"})
	}
	items := make([]ledger.AdjustmentItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, ledger.AdjustmentItem{
			OutletID:  it.OutletID,
			ProductID: it.ProductID,
			Delta:     it.Delta,
			Reason:    it.Reason,
		})
	}
	results, ok, failed := h.uc.BatchAdjust(c.Context(), companyID, userID, items)
	out := dto.BatchAdjustResponse{
		Results:      make([]dto.BatchAdjustItemResult, 0, len(results)),
		SuccessCount: ok,
		FailureCount: failed,
	}
	for _, r := range results {
		out.Results = append(out.Results, dto.BatchAdjustItemResult{
			OutletID:  r.OutletID,
			ProductID: r.ProductID,
			OK:        r.OK,
			Quantity:  r.Quantity,
			Error:     r.Error,
		})
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar stock con conteo físico
// @Description  Fija el stock disponible en la cantidad contada y registra la discrepancia como movimiento RECONCILIATION.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileStockRequest  true  "outlet_id, product_id, actual_quantity, reason"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/reconciliations [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReconcileStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, mov, discrepancy, err := h.uc.Reconcile(c.Context(), companyID, userID, in.OutletID, in.ProductID, in.ActualQuantity, in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"level":       toStockLevel(entry),
		"movement":    toMovementLog(mov),
		"discrepancy": discrepancy,
	})
}

// Reserve crea una reserva no vinculante de stock disponible.
func (h *StockHandler) Reserve(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReserveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, remaining, err := h.uc.Reserve(c.Context(), companyID, userID, in.OutletID, in.ProductID, in.Quantity, in.ExpiresAt, in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReservationResponse{
		ID:                 res.ID,
		OutletID:           res.OutletID,
		ProductID:          res.ProductID,
		Quantity:           res.Quantity,
		ExpiresAt:          res.ExpiresAt,
		Notes:              res.Notes,
		RemainingAvailable: remaining,
		CreatedAt:          res.CreatedAt,
	})
}

// ReleaseReservation libera una reserva antes de su expiración.
func (h *StockHandler) ReleaseReservation(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.uc.ReleaseReservation(c.Context(), companyID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetLevel devuelve la entrada del libro para un producto en un punto de venta.
func (h *StockHandler) GetLevel(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	outletID := c.Query("outlet_id")
	productID := c.Query("product_id")
	if outletID == "" || productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "outlet_id y product_id son requeridos"})
	}
	entry, err := h.uc.GetLevel(c.Context(), companyID, outletID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toStockLevel(entry))
}

// ListLevels lista las entradas del libro de un punto de venta.
func (h *StockHandler) ListLevels(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	outletID := c.Query("outlet_id")
	if outletID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "outlet_id es requerido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.ListLevels(c.Context(), companyID, outletID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.StockLevelResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toStockLevel(e))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        outlet_id   query  string  false  "Filtrar por punto de venta"
// @Param        product_id  query  string  false  "Filtrar por producto (tiene prioridad)"
// @Param        from        query  string  false  "Fecha inicial (RFC3339)"
// @Param        to          query  string  false  "Fecha final (RFC3339)"
// @Success      200  {array}   dto.MovementLogResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	list, err := h.uc.ListMovements(c.Context(), companyID, c.Query("outlet_id"), c.Query("product_id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.MovementLogResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementLog(m))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toStockLevel(e *entity.LedgerEntry) *dto.StockLevelResponse {
	return &dto.StockLevelResponse{
		OutletID:        e.OutletID,
		ProductID:       e.ProductID,
		Quantity:        e.Quantity,
		DamagedQuantity: e.DamagedQuantity,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toMovementLog(m *entity.MovementLog) *dto.MovementLogResponse {
	return &dto.MovementLogResponse{
		ID:             m.ID,
		OutletID:       m.OutletID,
		ProductID:      m.ProductID,
		ChangeType:     m.ChangeType,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		DamagedBefore:  m.DamagedBefore,
		DamagedAfter:   m.DamagedAfter,
		ChangeAmount:   m.ChangeAmount,
		Reference:      m.Reference,
		PairedLogID:    m.PairedLogID,
		Reason:         m.Reason,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}
