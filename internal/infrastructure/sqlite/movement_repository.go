package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, item_id, classification, unit_price, quantity, total_price, memo, staff_id,
	current_history_id, created_at, modified_at`

// MovementRepo implementación de MovementRepository sobre SQLite.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador (db o tx).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row rowScanner) (*entity.MovementEntry, error) {
	var (
		m                  entity.MovementEntry
		itemID, currentRef sql.NullString
		cls                string
		unitPrice, total   int64
		created, modified  int64
	)
	err := row.Scan(&m.ID, &itemID, &cls, &unitPrice, &m.Quantity, &total, &m.Memo, &m.StaffID,
		&currentRef, &created, &modified)
	if err != nil {
		return nil, err
	}
	m.ItemID = itemID.String
	m.CurrentHistoryID = currentRef.String
	m.Classification = inventory.Classification(cls)
	m.UnitPrice = decimal.NewFromInt(unitPrice)
	m.TotalPrice = decimal.NewFromInt(total)
	m.CreatedAt = fromNanos(created)
	m.ModifiedAt = fromNanos(modified)
	return &m, nil
}

// Create inserta el movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.MovementEntry) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO movements (`+movementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, nullable(m.ItemID), string(m.Classification), m.UnitPrice.IntPart(), m.Quantity, m.TotalPrice.IntPart(),
		m.Memo, m.StaffID, nullable(m.CurrentHistoryID), toNanos(m.CreatedAt), toNanos(m.ModifiedAt),
	)
	return mapError("create movement", err)
}

// GetByID obtiene un movimiento. Devuelve (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementEntry, error) {
	m, err := scanMovement(r.q.QueryRowContext(ctx, `SELECT `+movementColumns+` FROM movements WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get movement", err)
	}
	return m, nil
}

// GetForUpdate es una lectura normal dentro de la transacción serializada.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.MovementEntry, error) {
	return r.GetByID(ctx, id)
}

// Update persiste los campos mutables. staff_id e item_id no se tocan.
func (r *MovementRepo) Update(ctx context.Context, m *entity.MovementEntry) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE movements
		SET classification = ?, unit_price = ?, quantity = ?, total_price = ?, memo = ?,
		    current_history_id = ?, modified_at = ?
		WHERE id = ?`,
		string(m.Classification), m.UnitPrice.IntPart(), m.Quantity, m.TotalPrice.IntPart(), m.Memo,
		nullable(m.CurrentHistoryID), toNanos(m.ModifiedAt), m.ID,
	)
	if err != nil {
		return mapError("update movement", err)
	}
	return requireRow(res)
}

// Delete elimina el movimiento; su historial queda con movement_id nulo.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM movements WHERE id = ?`, id)
	if err != nil {
		return mapError("delete movement", err)
	}
	return requireRow(res)
}

// ListByItem lista movimientos del ítem en orden de creación. limit <= 0 devuelve todos.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.MovementEntry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+movementColumns+`
		FROM movements
		WHERE item_id = ?
		ORDER BY created_at, rowid
		LIMIT ? OFFSET ?`, itemID, limitArg(limit), offset)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer func() { _ = rows.Close() }()
	var list []*entity.MovementEntry
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, mapError("scan movement", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// CountByItem cuenta los movimientos que referencian el ítem.
func (r *MovementRepo) CountByItem(ctx context.Context, itemID string) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM movements WHERE item_id = ?`, itemID).Scan(&n); err != nil {
		return 0, mapError("count movements", err)
	}
	return n, nil
}

// Stats resume los movimientos vigentes por clasificación.
func (r *MovementRepo) Stats(ctx context.Context) (repository.MovementStats, error) {
	var s repository.MovementStats
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN classification = 'STORE' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN classification = 'RELEASE' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN classification = 'STORE' THEN total_price ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN classification = 'RELEASE' THEN total_price ELSE 0 END), 0)
		FROM movements`).Scan(&s.Count, &s.StoreCount, &s.ReleaseCount, &s.StoreValue, &s.ReleaseValue)
	if err != nil {
		return repository.MovementStats{}, mapError("movement stats", err)
	}
	return s, nil
}
