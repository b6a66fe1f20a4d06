package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones sobre la única conexión del *sql.DB.
// lockTimeout acota la espera por esa conexión.
type TxRunner struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. El *sql.DB debe venir de Open (una sola conexión).
func NewTxRunner(db *sql.DB, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{db: db, lockTimeout: lockTimeout}
}

// Run ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	acquireCtx := ctx
	if r.lockTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, r.lockTimeout)
		defer cancel()
	}
	conn, err := r.db.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("adquirir conexión: %w", domain.ErrLockTimeout)
		}
		return fmt.Errorf("adquirir conexión: %w", err)
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewItemRepository(tx), NewMovementRepository(tx), NewHistoryRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}
