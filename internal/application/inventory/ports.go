package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error (o el contexto se cancela) no se persiste nada: ítem, movimiento e historial
// se confirman juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		historyRepo repository.HistoryRepository,
	) error) error
}

// IdempotencyGuard reserva claves de idempotencia para evitar registrar dos veces el mismo movimiento.
type IdempotencyGuard interface {
	// Reserve devuelve false si la clave ya fue usada.
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// MetricsRecorder registra el resultado de cada operación del libro de movimientos.
type MetricsRecorder interface {
	ObserveMovement(operation string, classification inventory.Classification, outcome string, elapsed time.Duration)
}

// KardexPDFGenerator genera la tarjeta de existencias (kardex) de un ítem.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, item *entity.Item, rows []KardexRow) ([]byte, error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveMovement(string, inventory.Classification, string, time.Duration) {}
