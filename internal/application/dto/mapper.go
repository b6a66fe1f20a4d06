package dto

import (
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// FromItem convierte la entidad a su respuesta HTTP.
func FromItem(i *entity.Item) ItemResponse {
	return ItemResponse{
		ID:         i.ID,
		Name:       i.Name,
		Store:      i.Store,
		Release:    i.Release,
		TotalCount: i.TotalCount,
		StaffID:    i.StaffID,
		CreatedAt:  i.CreatedAt,
		ModifiedAt: i.ModifiedAt,
	}
}

// FromMovement convierte un movimiento a su respuesta HTTP.
func FromMovement(m *entity.MovementEntry) MovementResponse {
	return MovementResponse{
		ID:               m.ID,
		ItemID:           m.ItemID,
		Classification:   string(m.Classification),
		Quantity:         m.Quantity,
		UnitPrice:        m.UnitPrice,
		TotalPrice:       m.TotalPrice,
		Memo:             m.Memo,
		StaffID:          m.StaffID,
		CurrentHistoryID: m.CurrentHistoryID,
		CreatedAt:        m.CreatedAt,
		ModifiedAt:       m.ModifiedAt,
	}
}

// FromHistory convierte un registro de historial.
func FromHistory(h *entity.HistoryRecord) HistoryRecordResponse {
	return HistoryRecordResponse{
		ID:             h.ID,
		MovementID:     h.MovementID,
		ItemID:         h.ItemID,
		Sequence:       h.Sequence,
		Classification: string(h.Classification),
		Quantity:       h.Quantity,
		UnitPrice:      h.UnitPrice,
		TotalPrice:     h.TotalPrice,
		Memo:           h.Memo,
		StaffID:        h.StaffID,
		CreatedAt:      h.CreatedAt,
	}
}

// FromAggregate convierte los totales de dominio.
func FromAggregate(a inventory.Aggregate) AggregateDTO {
	return AggregateDTO{Store: a.Store, Release: a.Release, TotalCount: a.TotalCount}
}
