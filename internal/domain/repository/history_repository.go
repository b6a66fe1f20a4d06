package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// HistoryRepository define el puerto del historial de efectos aplicados (solo inserción).
type HistoryRepository interface {
	// Append asigna record.Sequence (siguiente de su movimiento) y lo persiste.
	Append(ctx context.Context, record *entity.HistoryRecord) error
	GetByID(ctx context.Context, id string) (*entity.HistoryRecord, error)
	// Latest devuelve el registro de mayor secuencia del movimiento o nil si no existe.
	Latest(ctx context.Context, movementID string) (*entity.HistoryRecord, error)
	ListByMovement(ctx context.Context, movementID string) ([]*entity.HistoryRecord, error)
	// ListByItem incluye registros de movimientos ya eliminados (movement_id nulo).
	ListByItem(ctx context.Context, itemID string) ([]*entity.HistoryRecord, error)
}
