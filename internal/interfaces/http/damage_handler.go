package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tiendapro/tiendapro-api/internal/application/damage"
	"github.com/tiendapro/tiendapro-api/internal/application/dto"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

// DamageHandler maneja las peticiones HTTP de reportes de daño (protegido).
type DamageHandler struct {
	uc *damage.DamageUseCase
}

// NewDamageHandler construye el handler.
func NewDamageHandler(uc *damage.DamageUseCase) *DamageHandler {
	return &DamageHandler{uc: uc}
}

// Report godoc
// @Summary      Reportar unidades dañadas
// @Description  Mueve la cantidad del stock disponible al balde de dañados y crea el reporte, atómicamente.
// @Tags         damages
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDamageReportRequest  true  "outlet_id, product_id, quantity"
// @Success      201   {object}  dto.DamageReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/damages [post]
func (h *DamageHandler) Report(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateDamageReportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	report, err := h.uc.Report(c.Context(), companyID, userID, damage.ReportInput{
		OutletID:      in.OutletID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Severity:      in.Severity,
		DamageType:    in.DamageType,
		EstimatedCost: in.EstimatedCost,
		Notes:         in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDamageResponse(report))
}

// Inspect marca el reporte como inspeccionado (o reparable).
func (h *DamageHandler) Inspect(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	var in dto.InspectDamageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	report, err := h.uc.Inspect(c.Context(), companyID, id, in.Repairable, in.EstimatedCost, in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDamageResponse(report))
}

// Repair registra una acción de reparación devolviendo unidades al disponible.
func (h *DamageHandler) Repair(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	var in dto.RepairActionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	report, err := h.uc.Repair(c.Context(), companyID, userID, id, damage.RepairInput{
		QuantityRepaired: in.QuantityRepaired,
		Cost:             in.Cost,
		Notes:            in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDamageResponse(report))
}

// Scrap registra un desguace: las unidades salen del sistema.
func (h *DamageHandler) Scrap(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	var in dto.ScrapActionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	report, err := h.uc.Scrap(c.Context(), companyID, userID, id, damage.ScrapInput{
		QuantityScrapped: in.QuantityScrapped,
		RecoveryValue:    in.RecoveryValue,
		Reason:           in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDamageResponse(report))
}

// Resolve cierra el reporte sin acción correctiva.
func (h *DamageHandler) Resolve(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	var in dto.ResolveDamageRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	report, err := h.uc.Resolve(c.Context(), companyID, id, in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDamageResponse(report))
}

// Delete elimina un reporte sin acciones revirtiendo el movimiento original.
func (h *DamageHandler) Delete(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	if err := h.uc.Delete(c.Context(), companyID, userID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID obtiene un reporte con sus acciones.
func (h *DamageHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	id := c.Params("id")
	report, err := h.uc.GetByID(c.Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toDamageResponse(report))
}

// List lista reportes de un punto de venta.
func (h *DamageHandler) List(c *fiber.Ctx) error {
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
	list, err := h.uc.ListByOutlet(c.Context(), companyID, outletID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.DamageReportResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDamageResponse(d))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func toDamageResponse(d *entity.DamageReport) *dto.DamageReportResponse {
	out := &dto.DamageReportResponse{
		ID:               d.ID,
		OutletID:         d.OutletID,
		ProductID:        d.ProductID,
		ReportedQuantity: d.ReportedQuantity,
		Quantity:         d.Quantity,
		RepairedQuantity: d.RepairedQuantity,
		ScrappedQuantity: d.ScrappedQuantity,
		Status:           d.Status,
		Severity:         d.Severity,
		DamageType:       d.DamageType,
		EstimatedCost:    d.EstimatedCost,
		RepairCost:       d.RepairCost,
		RecoveryValue:    d.RecoveryValue,
		Notes:            d.Notes,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
	for _, a := range d.RepairActions {
		out.RepairActions = append(out.RepairActions, dto.RepairActionResponse{
			ID:               a.ID,
			QuantityRepaired: a.QuantityRepaired,
			Cost:             a.Cost,
			Notes:            a.Notes,
			CreatedBy:        a.CreatedBy,
			CreatedAt:        a.CreatedAt,
		})
	}
	for _, a := range d.ScrapActions {
		out.ScrapActions = append(out.ScrapActions, dto.ScrapActionResponse{
			ID:               a.ID,
			QuantityScrapped: a.QuantityScrapped,
			RecoveryValue:    a.RecoveryValue,
			Reason:           a.Reason,
			CreatedBy:        a.CreatedBy,
			CreatedAt:        a.CreatedAt,
		})
	}
	return out
}
