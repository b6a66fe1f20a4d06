package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, store, "release", total_count, staff_id, created_at, modified_at`

// ItemRepo implementación de ItemRepository sobre SQLite.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador (db o tx).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*entity.Item, error) {
	var (
		it                entity.Item
		created, modified int64
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Store, &it.Release, &it.TotalCount, &it.StaffID, &created, &modified); err != nil {
		return nil, err
	}
	it.CreatedAt = fromNanos(created)
	it.ModifiedAt = fromNanos(modified)
	return &it, nil
}

// Create inserta un ítem. Nombre repetido -> domain.ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Store, item.Release, item.TotalCount, item.StaffID,
		toNanos(item.CreatedAt), toNanos(item.ModifiedAt),
	)
	return mapError("create item", err)
}

func (r *ItemRepo) get(ctx context.Context, op, query string, arg any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return it, nil
}

// GetByID obtiene un ítem. Devuelve (nil, nil) si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.get(ctx, "get item", `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
}

// GetByName obtiene un ítem por nombre exacto.
func (r *ItemRepo) GetByName(ctx context.Context, name string) (*entity.Item, error) {
	return r.get(ctx, "get item by name", `SELECT `+itemColumns+` FROM items WHERE name = ?`, name)
}

// GetForUpdate en SQLite es una lectura normal: la transacción ya tiene la única conexión.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

// UpdateAggregate persiste los totales del ítem.
func (r *ItemRepo) UpdateAggregate(ctx context.Context, item *entity.Item) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE items SET store = ?, "release" = ?, total_count = ?, modified_at = ? WHERE id = ?`,
		item.Store, item.Release, item.TotalCount, toNanos(item.ModifiedAt), item.ID,
	)
	if err != nil {
		return mapError("update item aggregate", err)
	}
	return requireRow(res)
}

// List lista ítems por nombre; search filtra por subcadena (LIKE no distingue mayúsculas en ASCII).
func (r *ItemRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Item, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE ? = '' OR name LIKE '%' || ? || '%'
		ORDER BY name
		LIMIT ? OFFSET ?`, search, search, limitArg(limit), offset)
	if err != nil {
		return nil, mapError("list items", err)
	}
	defer func() { _ = rows.Close() }()
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

// Delete elimina el ítem.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return mapError("delete item", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
