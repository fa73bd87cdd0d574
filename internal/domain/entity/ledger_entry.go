package entity

import "time"

// LedgerEntry representa los contadores de stock de un producto en un punto de venta.
// Clave única: (CompanyID, OutletID, ProductID). Invariante: Quantity y
// DamagedQuantity nunca son negativos. La fila se crea de forma perezosa con el
// primer ajuste positivo, traslado entrante o conciliación.
type LedgerEntry struct {
	CompanyID       string
	OutletID        string
	ProductID       string
	Quantity        int64 // unidades disponibles
	DamagedQuantity int64 // unidades en el balde de dañados
	UpdatedAt       time.Time
}

// Total devuelve Quantity + DamagedQuantity. Los reportes de daño y las
// reparaciones solo mueven unidades entre los dos baldes, así que Total es
// invariante ante ellos; solo el desguace lo reduce.
func (e *LedgerEntry) Total() int64 {
	return e.Quantity + e.DamagedQuantity
}
