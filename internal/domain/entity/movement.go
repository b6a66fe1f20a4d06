package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// MovementEntry representa el estado actual de un movimiento (entrada o salida) de un ítem.
// Se modifica en sitio al editarse; la traza de auditoría vive en HistoryRecord.
type MovementEntry struct {
	ID             string
	ItemID         string // vacío si el ítem fue eliminado fuera de banda (referencia huérfana)
	Classification inventory.Classification
	UnitPrice      decimal.Decimal
	Quantity       int64
	TotalPrice     decimal.Decimal // Quantity × UnitPrice, siempre calculado por el sistema
	Memo           string
	StaffID        string // se asigna en la creación y nunca se sobrescribe
	// CurrentHistoryID apunta al registro de historial cuyo efecto está reflejado hoy en el agregado.
	CurrentHistoryID string
	CreatedAt        time.Time
	ModifiedAt       time.Time
}

// Effect devuelve el efecto que el movimiento produce sobre el agregado con sus valores actuales.
func (m *MovementEntry) Effect() inventory.Effect {
	return inventory.Effect{Classification: m.Classification, Quantity: m.Quantity}
}
