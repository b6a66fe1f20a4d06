package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia de ítems y su agregado (Item Aggregate Store).
// GetForUpdate y UpdateAggregate solo tienen sentido dentro de una transacción (TxRunner).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByName(ctx context.Context, name string) (*entity.Item, error)
	// GetForUpdate obtiene el ítem y bloquea su fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	// UpdateAggregate persiste store, release, total_count y modified_at.
	UpdateAggregate(ctx context.Context, item *entity.Item) error
	// List filtra por nombre (subcadena, sin distinguir mayúsculas) cuando search no es vacío.
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Item, error)
	Delete(ctx context.Context, id string) error
}
