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

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

const historyColumns = `id, movement_id, item_id, sequence, classification, unit_price, quantity, total_price,
	memo, staff_id, created_at`

// HistoryRepo historial de efectos aplicados sobre SQLite.
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador (db o tx).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

func scanHistory(row rowScanner) (*entity.HistoryRecord, error) {
	var (
		h                entity.HistoryRecord
		movID, itemID    sql.NullString
		cls              string
		unitPrice, total int64
		created          int64
	)
	err := row.Scan(&h.ID, &movID, &itemID, &h.Sequence, &cls, &unitPrice, &h.Quantity, &total,
		&h.Memo, &h.StaffID, &created)
	if err != nil {
		return nil, err
	}
	h.MovementID = movID.String
	h.ItemID = itemID.String
	h.Classification = inventory.Classification(cls)
	h.UnitPrice = decimal.NewFromInt(unitPrice)
	h.TotalPrice = decimal.NewFromInt(total)
	h.CreatedAt = fromNanos(created)
	return &h, nil
}

// Append inserta el registro con la siguiente secuencia del movimiento.
func (r *HistoryRepo) Append(ctx context.Context, h *entity.HistoryRecord) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO movement_history (`+historyColumns+`)
		VALUES (?1, ?2, ?3,
		        (SELECT COALESCE(MAX(sequence), 0) + 1 FROM movement_history WHERE movement_id = ?2),
		        ?4, ?5, ?6, ?7, ?8, ?9, ?10)
		RETURNING sequence`,
		h.ID, nullable(h.MovementID), nullable(h.ItemID), string(h.Classification), h.UnitPrice.IntPart(), h.Quantity,
		h.TotalPrice.IntPart(), h.Memo, h.StaffID, toNanos(h.CreatedAt),
	).Scan(&h.Sequence)
	return mapError("append history", err)
}

func (r *HistoryRepo) one(ctx context.Context, op, query, arg string) (*entity.HistoryRecord, error) {
	h, err := scanHistory(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return h, nil
}

// GetByID obtiene un registro. Devuelve (nil, nil) si no existe.
func (r *HistoryRepo) GetByID(ctx context.Context, id string) (*entity.HistoryRecord, error) {
	return r.one(ctx, "get history", `SELECT `+historyColumns+` FROM movement_history WHERE id = ?`, id)
}

// Latest devuelve el registro de mayor secuencia del movimiento.
func (r *HistoryRepo) Latest(ctx context.Context, movementID string) (*entity.HistoryRecord, error) {
	return r.one(ctx, "latest history", `
		SELECT `+historyColumns+`
		FROM movement_history
		WHERE movement_id = ?
		ORDER BY sequence DESC
		LIMIT 1`, movementID)
}

func (r *HistoryRepo) list(ctx context.Context, op, query, arg string) ([]*entity.HistoryRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() { _ = rows.Close() }()
	var list []*entity.HistoryRecord
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// ListByMovement devuelve el historial del movimiento en orden de secuencia.
func (r *HistoryRepo) ListByMovement(ctx context.Context, movementID string) ([]*entity.HistoryRecord, error) {
	return r.list(ctx, "list history",
		`SELECT `+historyColumns+` FROM movement_history WHERE movement_id = ? ORDER BY sequence`, movementID)
}

// ListByItem devuelve todo el historial del ítem, incluidos movimientos ya eliminados.
func (r *HistoryRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.HistoryRecord, error) {
	return r.list(ctx, "list item history",
		`SELECT `+historyColumns+` FROM movement_history WHERE item_id = ? ORDER BY created_at, rowid`, itemID)
}
