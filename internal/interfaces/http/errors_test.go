package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapro/tiendapro-api/internal/application/dto"
	"github.com/tiendapro/tiendapro-api/internal/domain"
)

// mapError pasa el error por respondError dentro de una app Fiber mínima y
// devuelve el status y el cuerpo decodificado.
func mapError(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, err)
	})
	resp, reqErr := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, reqErr)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores de dominio a HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestRespondError_StockInsuficienteConDetalle(t *testing.T) {
	status, body := mapError(t, &domain.InsufficientStockError{
		OutletID:  "out-1",
		ProductID: "prod-1",
		Available: 3,
		Requested: 10,
	})

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.NotNil(t, body.Details, "el detalle estructurado debe viajar al cliente")
	assert.Equal(t, "out-1", body.Details["outlet_id"])
	assert.Equal(t, "prod-1", body.Details["product_id"])
	// JSON decodifica números como float64
	assert.Equal(t, float64(3), body.Details["available"])
	assert.Equal(t, float64(10), body.Details["requested"])
}

func TestRespondError_TransicionIlegalConDetalle(t *testing.T) {
	status, body := mapError(t, &domain.StateTransitionError{
		Entity:    "sale",
		Current:   "DRAFT",
		Requested: "VOIDED",
	})

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body.Code)
	require.NotNil(t, body.Details)
	assert.Equal(t, "sale", body.Details["entity"])
	assert.Equal(t, "DRAFT", body.Details["current"])
	assert.Equal(t, "VOIDED", body.Details["requested"])
}

func TestRespondError_ErroresCentinela(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrInvalidTransfer, http.StatusBadRequest, "INVALID_TRANSFER"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION"},
		{domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{domain.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE_TRANSITION"},
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
	}
	for _, c := range cases {
		status, body := mapError(t, c.err)
		assert.Equal(t, c.wantStatus, status, "error %v", c.err)
		assert.Equal(t, c.wantCode, body.Code, "error %v", c.err)
	}
}

// Los errores envueltos con %w conservan su mapeo.
func TestRespondError_ErrorEnvuelto(t *testing.T) {
	status, body := mapError(t, fmt.Errorf("sku ABC ya registrado: %w", domain.ErrConflict))

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Code)
}

func TestRespondError_ErrorDesconocidoEs500(t *testing.T) {
	status, body := mapError(t, fmt.Errorf("se cayó la base"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", body.Code)
}
