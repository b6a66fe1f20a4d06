package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia de movimientos (Movement Record Store).
// No toca el agregado del ítem: esa consistencia es responsabilidad del coordinador.
type MovementRepository interface {
	Create(ctx context.Context, entry *entity.MovementEntry) error
	GetByID(ctx context.Context, id string) (*entity.MovementEntry, error)
	// GetForUpdate obtiene el movimiento y bloquea su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.MovementEntry, error)
	// Update persiste campos mutables, total, puntero de historial y modified_at (nunca staff).
	Update(ctx context.Context, entry *entity.MovementEntry) error
	Delete(ctx context.Context, id string) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.MovementEntry, error)
	CountByItem(ctx context.Context, itemID string) (int64, error)
	Stats(ctx context.Context) (MovementStats, error)
}

// MovementStats resumen global de movimientos vigentes.
type MovementStats struct {
	Count        int64
	StoreCount   int64
	ReleaseCount int64
	StoreValue   int64 // suma de total_price de entradas
	ReleaseValue int64 // suma de total_price de salidas
}
