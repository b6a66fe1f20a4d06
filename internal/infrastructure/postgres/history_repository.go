package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.HistoryRepository = (*HistoryRepo)(nil)

const historyColumns = `id, movement_id, item_id, sequence, classification, unit_price, quantity, total_price,
	memo, staff_id, created_at`

// HistoryRepo historial de efectos aplicados (solo INSERT y SELECT).
type HistoryRepo struct {
	q Querier
}

// NewHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHistoryRepository(q Querier) *HistoryRepo {
	return &HistoryRepo{q: q}
}

func scanHistory(row pgx.Row) (*entity.HistoryRecord, error) {
	var (
		h                entity.HistoryRecord
		movID, itemID    *string
		cls              string
		unitPrice, total int64
	)
	err := row.Scan(&h.ID, &movID, &itemID, &h.Sequence, &cls, &unitPrice, &h.Quantity, &total,
		&h.Memo, &h.StaffID, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	h.MovementID = deref(movID)
	h.ItemID = deref(itemID)
	h.Classification = inventory.Classification(cls)
	h.UnitPrice = decimal.NewFromInt(unitPrice)
	h.TotalPrice = decimal.NewFromInt(total)
	return &h, nil
}

// Append inserta el registro con la siguiente secuencia del movimiento.
// La fila del movimiento está bloqueada por el coordinador, así que MAX+1 no compite.
func (r *HistoryRepo) Append(ctx context.Context, h *entity.HistoryRecord) error {
	query := `
		INSERT INTO movement_history (` + historyColumns + `)
		VALUES ($1, $2, $3,
		        (SELECT COALESCE(MAX(sequence), 0) + 1 FROM movement_history WHERE movement_id = $2),
		        $4, $5, $6, $7, $8, $9, $10)
		RETURNING sequence`
	err := r.q.QueryRow(ctx, query,
		h.ID, nullable(h.MovementID), nullable(h.ItemID), string(h.Classification), h.UnitPrice.IntPart(), h.Quantity,
		h.TotalPrice.IntPart(), h.Memo, h.StaffID, h.CreatedAt,
	).Scan(&h.Sequence)
	return mapError("append history", err)
}

func (r *HistoryRepo) one(ctx context.Context, op, query, arg string) (*entity.HistoryRecord, error) {
	h, err := scanHistory(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return h, nil
}

// GetByID obtiene un registro. Devuelve (nil, nil) si no existe.
func (r *HistoryRepo) GetByID(ctx context.Context, id string) (*entity.HistoryRecord, error) {
	return r.one(ctx, "get history", `SELECT `+historyColumns+` FROM movement_history WHERE id = $1`, id)
}

// Latest devuelve el registro de mayor secuencia del movimiento.
func (r *HistoryRepo) Latest(ctx context.Context, movementID string) (*entity.HistoryRecord, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM movement_history
		WHERE movement_id = $1
		ORDER BY sequence DESC
		LIMIT 1`
	return r.one(ctx, "latest history", query, movementID)
}

func (r *HistoryRepo) list(ctx context.Context, op, query, arg string) ([]*entity.HistoryRecord, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
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
		`SELECT `+historyColumns+` FROM movement_history WHERE movement_id = $1 ORDER BY sequence`, movementID)
}

// ListByItem devuelve todo el historial del ítem, incluidos movimientos ya eliminados.
func (r *HistoryRepo) ListByItem(ctx context.Context, itemID string) ([]*entity.HistoryRecord, error) {
	return r.list(ctx, "list item history",
		`SELECT `+historyColumns+` FROM movement_history WHERE item_id = $1 ORDER BY created_at, sequence`, itemID)
}
