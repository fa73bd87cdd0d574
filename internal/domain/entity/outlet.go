package entity

import "time"

// Outlet representa un punto de venta o sucursal donde se mantiene stock (multi-sucursal).
type Outlet struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
