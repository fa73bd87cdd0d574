package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrInvalidTransfer        = errors.New("traslado inválido")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
)

// InsufficientStockError detalla el stock disponible frente al solicitado.
// Envuelve ErrInsufficientStock para que errors.Is siga funcionando en los handlers.
type InsufficientStockError struct {
	OutletID  string
	ProductID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d (producto %s, punto de venta %s)",
		e.Available, e.Requested, e.ProductID, e.OutletID)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StateTransitionError detalla el estado actual y el estado solicitado de una
// venta o un reporte de daño cuando la transición no es legal.
type StateTransitionError struct {
	Entity    string // "sale" | "damage_report"
	Current   string
	Requested string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("transición no permitida en %s: %s -> %s", e.Entity, e.Current, e.Requested)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }
