package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// HistoryRecord instantánea inmutable de un efecto aplicado al agregado de un ítem.
// Se agrega uno al crear el movimiento y otro en cada edición exitosa.
type HistoryRecord struct {
	ID             string
	MovementID     string // vacío cuando el movimiento ya fue eliminado
	ItemID         string
	Sequence       int64 // 1..n por movimiento, estrictamente creciente
	Classification inventory.Classification
	UnitPrice      decimal.Decimal
	Quantity       int64
	TotalPrice     decimal.Decimal
	Memo           string
	StaffID        string // actor de la creación o edición
	CreatedAt      time.Time
}

// Effect devuelve el efecto que este registro dejó aplicado en el agregado.
func (h *HistoryRecord) Effect() inventory.Effect {
	return inventory.Effect{Classification: h.Classification, Quantity: h.Quantity}
}

// NewHistoryRecord toma la instantánea de un movimiento en el momento de aplicar su efecto.
func NewHistoryRecord(id string, m *MovementEntry, actorID string, at time.Time) *HistoryRecord {
	return &HistoryRecord{
		ID:             id,
		MovementID:     m.ID,
		ItemID:         m.ItemID,
		Classification: m.Classification,
		UnitPrice:      m.UnitPrice,
		Quantity:       m.Quantity,
		TotalPrice:     m.TotalPrice,
		Memo:           m.Memo,
		StaffID:        actorID,
		CreatedAt:      at,
	}
}
