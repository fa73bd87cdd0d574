// Package redis implementa el espejo de reservas vigentes sobre Redis.
// Cada reserva se publica con TTL igual a su expiración, de modo que los
// llamadores que deciden descuentos puedan consultarla sin tocar la BD.
// El espejo es informativo: la reserva persistida es la fuente de verdad.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
)

var _ ledger.HoldMirror = (*HoldMirror)(nil)

const (
	holdKeyPrefix = "hold:"
	// TTL para reservas sin expiración; evita claves huérfanas si nadie las libera.
	defaultHoldTTL = 24 * time.Hour
)

// NewClient construye y verifica un cliente de Redis.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// HoldMirror espejo de reservas con TTL.
type HoldMirror struct {
	client *redis.Client
}

// NewHoldMirror construye el espejo sobre un cliente ya conectado.
func NewHoldMirror(client *redis.Client) *HoldMirror {
	return &HoldMirror{client: client}
}

type holdPayload struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"company_id"`
	OutletID  string     `json:"outlet_id"`
	ProductID string     `json:"product_id"`
	Quantity  int64      `json:"quantity"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Put publica la reserva con TTL hasta su expiración.
func (m *HoldMirror) Put(ctx context.Context, res *entity.Reservation) error {
	payload, err := json.Marshal(holdPayload{
		ID:        res.ID,
		CompanyID: res.CompanyID,
		OutletID:  res.OutletID,
		ProductID: res.ProductID,
		Quantity:  res.Quantity,
		ExpiresAt: res.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal hold: %w", err)
	}

	ttl := defaultHoldTTL
	if res.ExpiresAt != nil {
		ttl = time.Until(*res.ExpiresAt)
		if ttl <= 0 {
			return nil // ya expirada, no hay nada que espejar
		}
	}
	if err := m.client.Set(ctx, holdKeyPrefix+res.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set hold: %w", err)
	}
	return nil
}

// Release elimina la reserva del espejo.
func (m *HoldMirror) Release(ctx context.Context, reservationID string) error {
	if err := m.client.Del(ctx, holdKeyPrefix+reservationID).Err(); err != nil {
		return fmt.Errorf("del hold: %w", err)
	}
	return nil
}
