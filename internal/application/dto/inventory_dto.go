package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/inventory/movements.
// total_price no se recibe: siempre lo calcula el sistema.
type CreateMovementRequest struct {
	ItemID         string          `json:"item_id"`
	Classification string          `json:"classification"` // STORE | RELEASE
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Memo           string          `json:"memo,omitempty"`
}

// UpdateMovementRequest body para PUT /api/inventory/movements/:id. El ítem no se puede cambiar.
type UpdateMovementRequest struct {
	Classification string          `json:"classification"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Memo           string          `json:"memo,omitempty"`
}

// MovementResponse movimiento vigente.
type MovementResponse struct {
	ID               string          `json:"id"`
	ItemID           string          `json:"item_id,omitempty"`
	Classification   string          `json:"classification"`
	Quantity         int64           `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	Memo             string          `json:"memo,omitempty"`
	StaffID          string          `json:"staff_id"`
	CurrentHistoryID string          `json:"current_history_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	ModifiedAt       time.Time       `json:"modified_at"`
}

// MovementListResponse listado paginado de movimientos de un ítem.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// HistoryRecordResponse registro inmutable del historial de un movimiento.
type HistoryRecordResponse struct {
	ID             string          `json:"id"`
	MovementID     string          `json:"movement_id,omitempty"`
	ItemID         string          `json:"item_id,omitempty"`
	Sequence       int64           `json:"sequence"`
	Classification string          `json:"classification"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Memo           string          `json:"memo,omitempty"`
	StaffID        string          `json:"staff_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementStatsResponse resumen global (conteo de movimientos y valor por clasificación).
type MovementStatsResponse struct {
	Count        int64 `json:"count"`
	StoreCount   int64 `json:"store_count"`
	ReleaseCount int64 `json:"release_count"`
	StoreValue   int64 `json:"store_value"`
	ReleaseValue int64 `json:"release_value"`
}

// AggregateDTO totales de un ítem.
type AggregateDTO struct {
	Store      int64 `json:"store"`
	Release    int64 `json:"release"`
	TotalCount int64 `json:"total_count"`
}

// ReconciliationResponse resultado de recalcular el agregado de un ítem.
type ReconciliationResponse struct {
	ItemID     string       `json:"item_id"`
	Stored     AggregateDTO `json:"stored"`
	Recomputed AggregateDTO `json:"recomputed"`
	Movements  int          `json:"movements"`
	Drift      bool         `json:"drift"`
	Details    string       `json:"details,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
}
