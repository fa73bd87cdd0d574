package entity

import "time"

// Reservation apartado no vinculante de stock disponible, con expiración
// opcional. No modifica Quantity: es un aviso que los llamadores que descuentan
// stock deben consultar. Una reserva expirada se considera nula; este motor no
// la purga activamente.
type Reservation struct {
	ID        string
	CompanyID string
	OutletID  string
	ProductID string
	Quantity  int64
	ExpiresAt *time.Time // nil = sin expiración
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}

// Active indica si la reserva sigue vigente en el instante dado.
func (r *Reservation) Active(now time.Time) bool {
	return r.ExpiresAt == nil || now.Before(*r.ExpiresAt)
}
