package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tiendapro/tiendapro-api/internal/application/dto"
	"github.com/tiendapro/tiendapro-api/internal/domain"
)

// respondError traduce errores de dominio a respuestas HTTP. Los errores con
// detalle estructurado (stock insuficiente, transición ilegal) adjuntan Details
// para que el cliente pueda reaccionar sin parsear el mensaje.
func respondError(c *fiber.Ctx, err error) error {
	var insErr *domain.InsufficientStockError
	if errors.As(err, &insErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_STOCK",
			Message: insErr.Error(),
			Details: map[string]any{
				"outlet_id":  insErr.OutletID,
				"product_id": insErr.ProductID,
				"available":  insErr.Available,
				"requested":  insErr.Requested,
			},
		})
	}
	var stErr *domain.StateTransitionError
	if errors.As(err, &stErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INVALID_STATE_TRANSITION",
			Message: stErr.Error(),
			Details: map[string]any{
				"entity":    stErr.Entity,
				"current":   stErr.Current,
				"requested": stErr.Requested,
			},
		})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrInvalidTransfer):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_TRANSFER", Message: "traslado inválido: origen y destino deben ser distintos"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE_TRANSITION", Message: "transición de estado no permitida"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
