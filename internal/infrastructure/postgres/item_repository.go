package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, store, "release", total_count, staff_id, created_at, modified_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.Name, &it.Store, &it.Release, &it.TotalCount, &it.StaffID, &it.CreatedAt, &it.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserta un ítem. Nombre repetido -> domain.ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Store, item.Release, item.TotalCount, item.StaffID, item.CreatedAt, item.ModifiedAt,
	)
	if err != nil {
		return mapError("create item", err)
	}
	return nil
}

func (r *ItemRepo) get(ctx context.Context, op, query string, arg any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return it, nil
}

// GetByID obtiene un ítem por ID. Devuelve (nil, nil) si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, "get item", `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetByName obtiene un ítem por nombre exacto.
func (r *ItemRepo) GetByName(ctx context.Context, name string) (*entity.Item, error) {
	return r.get(ctx, "get item by name", `SELECT `+itemColumns+` FROM items WHERE name = $1`, name)
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, "get item for update", `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

// UpdateAggregate persiste los totales del ítem.
func (r *ItemRepo) UpdateAggregate(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET store = $2, "release" = $3, total_count = $4, modified_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, item.ID, item.Store, item.Release, item.TotalCount, item.ModifiedAt)
	if err != nil {
		return mapError("update item aggregate", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ítems por nombre; search filtra por subcadena sin distinguir mayúsculas.
func (r *ItemRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, search, limitArg(limit), offset)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, mapError("scan item", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Delete elimina el ítem. Los movimientos que aún lo referencien quedan con item_id nulo.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return mapError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
