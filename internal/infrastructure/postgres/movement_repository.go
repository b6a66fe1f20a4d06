package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, item_id, classification, unit_price, quantity, total_price, memo, staff_id,
	current_history_id, created_at, modified_at`

// MovementRepo implementación de MovementRepository sobre PostgreSQL.
// Los montos se guardan como BIGINT (precios enteros).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var (
		m                  entity.MovementEntry
		itemID, currentRef *string
		cls                string
		unitPrice, total   int64
	)
	err := row.Scan(&m.ID, &itemID, &cls, &unitPrice, &m.Quantity, &total, &m.Memo, &m.StaffID,
		&currentRef, &m.CreatedAt, &m.ModifiedAt)
	if err != nil {
		return nil, err
	}
	m.ItemID = deref(itemID)
	m.CurrentHistoryID = deref(currentRef)
	m.Classification = inventory.Classification(cls)
	m.UnitPrice = decimal.NewFromInt(unitPrice)
	m.TotalPrice = decimal.NewFromInt(total)
	return &m, nil
}

// Create inserta el movimiento con total_price y staff ya calculados por el coordinador.
func (r *MovementRepo) Create(ctx context.Context, m *entity.MovementEntry) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, nullable(m.ItemID), string(m.Classification), m.UnitPrice.IntPart(), m.Quantity, m.TotalPrice.IntPart(),
		m.Memo, m.StaffID, nullable(m.CurrentHistoryID), m.CreatedAt, m.ModifiedAt,
	)
	return mapError("create movement", err)
}

func (r *MovementRepo) get(ctx context.Context, op, query, id string) (*entity.MovementEntry, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return m, nil
}

// GetByID obtiene un movimiento. Devuelve (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.MovementEntry, error) {
	return r.get(ctx, "get movement", `SELECT `+movementColumns+` FROM movements WHERE id = $1`, id)
}

// GetForUpdate obtiene el movimiento y bloquea su fila.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.MovementEntry, error) {
	return r.get(ctx, "get movement for update", `SELECT `+movementColumns+` FROM movements WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste los campos mutables. staff_id, item_id y created_at no se tocan.
func (r *MovementRepo) Update(ctx context.Context, m *entity.MovementEntry) error {
	query := `
		UPDATE movements
		SET classification = $2, unit_price = $3, quantity = $4, total_price = $5, memo = $6,
		    current_history_id = $7, modified_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, string(m.Classification), m.UnitPrice.IntPart(), m.Quantity, m.TotalPrice.IntPart(), m.Memo,
		nullable(m.CurrentHistoryID), m.ModifiedAt,
	)
	if err != nil {
		return mapError("update movement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el movimiento. Su historial queda con movement_id nulo (ON DELETE SET NULL).
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return mapError("delete movement", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByItem lista movimientos del ítem en orden de creación. limit <= 0 devuelve todos.
func (r *MovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.MovementEntry, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE item_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, itemID, limitArg(limit), offset)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
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
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, mapError("count movements", err)
	}
	return n, nil
}

// Stats resume los movimientos vigentes por clasificación.
func (r *MovementRepo) Stats(ctx context.Context) (repository.MovementStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE classification = 'STORE'),
		       COUNT(*) FILTER (WHERE classification = 'RELEASE'),
		       COALESCE(SUM(total_price) FILTER (WHERE classification = 'STORE'), 0),
		       COALESCE(SUM(total_price) FILTER (WHERE classification = 'RELEASE'), 0)
		FROM movements`
	var s repository.MovementStats
	err := r.q.QueryRow(ctx, query).Scan(&s.Count, &s.StoreCount, &s.ReleaseCount, &s.StoreValue, &s.ReleaseValue)
	if err != nil {
		return repository.MovementStats{}, mapError("movement stats", err)
	}
	return s, nil
}
