package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Operaciones reportadas a métricas y trazas.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

const tracerName = "github.com/jhoicas/inventario-ledger/internal/application/inventory"

// LedgerUseCase coordina el alta, edición y baja de movimientos manteniendo sincronizado
// el agregado del ítem (store, release, total_count) con el historial de efectos aplicados.
// Cada operación corre en una única transacción con la fila del ítem bloqueada (SELECT FOR UPDATE).
type LedgerUseCase struct {
	txRunner    TxRunner
	items       repository.ItemRepository
	movements   repository.MovementRepository
	history     repository.HistoryRepository
	idempotency IdempotencyGuard
	metrics     MetricsRecorder
	log         *logger.Logger
	tracer      trace.Tracer
	now         func() time.Time
	newID       func() string
}

// LedgerOption configura dependencias opcionales del caso de uso.
type LedgerOption func(*LedgerUseCase)

// WithIdempotency activa la reserva de claves Idempotency-Key en CreateMovement.
func WithIdempotency(g IdempotencyGuard) LedgerOption {
	return func(uc *LedgerUseCase) { uc.idempotency = g }
}

// WithMetrics registra el resultado de cada operación.
func WithMetrics(m MetricsRecorder) LedgerOption {
	return func(uc *LedgerUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithLogger reemplaza el logger (por defecto no registra nada).
func WithLogger(l *logger.Logger) LedgerOption {
	return func(uc *LedgerUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithClock fija la fuente de tiempo (útil en tests).
func WithClock(now func() time.Time) LedgerOption {
	return func(uc *LedgerUseCase) { uc.now = now }
}

// NewLedgerUseCase construye el coordinador. Los repositorios sueltos se usan solo para lecturas;
// toda escritura pasa por txRunner.
func NewLedgerUseCase(
	txRunner TxRunner,
	items repository.ItemRepository,
	movements repository.MovementRepository,
	history repository.HistoryRepository,
	opts ...LedgerOption,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner:  txRunner,
		items:     items,
		movements: movements,
		history:   history,
		metrics:   nopMetrics{},
		log:       logger.Nop(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CreateMovementInput entrada para registrar un movimiento.
type CreateMovementInput struct {
	ItemID         string
	Classification string
	Quantity       int64
	UnitPrice      decimal.Decimal
	Memo           string
	ActorID        string
	IdempotencyKey string // opcional
}

// UpdateMovementInput entrada para editar un movimiento existente. El ítem no se puede cambiar.
type UpdateMovementInput struct {
	EntryID        string
	Classification string
	Quantity       int64
	UnitPrice      decimal.Decimal
	Memo           string
	ActorID        string
}

// CreateMovement registra el movimiento, aplica su efecto al ítem y agrega el primer registro de historial.
// Devuelve domain.ErrStockUnderflow si la salida deja el total en negativo; en ese caso nada se persiste.
func (uc *LedgerUseCase) CreateMovement(ctx context.Context, in CreateMovementInput) (out *entity.MovementEntry, err error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.CreateMovement", trace.WithAttributes(
		attribute.String("item.id", in.ItemID),
		attribute.String("movement.classification", in.Classification),
		attribute.Int64("movement.quantity", in.Quantity),
	))
	start := time.Now()
	cls := inventory.Classification(in.Classification)
	defer func() { uc.finish(ctx, span, OpCreate, cls, start, err) }()

	if in.ItemID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	effect := inventory.Effect{Classification: cls, Quantity: in.Quantity}
	if err := effect.Validate(); err != nil {
		return nil, err
	}
	total, err := inventory.TotalPrice(in.Quantity, in.UnitPrice)
	if err != nil {
		return nil, err
	}

	if uc.idempotency != nil && in.IdempotencyKey != "" {
		reserved, rerr := uc.idempotency.Reserve(ctx, in.IdempotencyKey)
		if rerr != nil {
			return nil, fmt.Errorf("reservar clave de idempotencia: %w", rerr)
		}
		if !reserved {
			return nil, domain.ErrDuplicate
		}
		defer func() {
			if err != nil {
				// La clave solo queda consumida si el movimiento se confirmó.
				if rerr := uc.idempotency.Release(context.WithoutCancel(ctx), in.IdempotencyKey); rerr != nil {
					uc.log.Ctx(ctx).Warn().Err(rerr).
						Str("idempotency_key", in.IdempotencyKey).
						Msg("no se pudo liberar la clave de idempotencia; los reintentos quedan bloqueados hasta su expiración")
				}
			}
		}()
	}

	now := uc.now()
	entry := &entity.MovementEntry{
		ID:             uc.newID(),
		ItemID:         in.ItemID,
		Classification: cls,
		UnitPrice:      in.UnitPrice,
		Quantity:       in.Quantity,
		TotalPrice:     total,
		Memo:           in.Memo,
		StaffID:        in.ActorID,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	var item *entity.Item

	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		historyRepo repository.HistoryRepository,
	) error {
		// Bloquea el ítem antes de insertar: el FK del movimiento toma un lock compartido
		// sobre la misma fila y no debe escalar después.
		locked, err := itemRepo.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if err := movRepo.Create(ctx, entry); err != nil {
			return err
		}
		next, err := locked.Aggregate().Apply(entry.Effect())
		if err != nil {
			return err
		}
		locked.SetAggregate(next)
		locked.ModifiedAt = now
		if err := itemRepo.UpdateAggregate(ctx, locked); err != nil {
			return err
		}
		record := entity.NewHistoryRecord(uc.newID(), entry, in.ActorID, now)
		if err := historyRepo.Append(ctx, record); err != nil {
			return err
		}
		entry.CurrentHistoryID = record.ID
		if err := movRepo.Update(ctx, entry); err != nil {
			return err
		}
		item = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Ctx(ctx).Info().
		Str("movement_id", entry.ID).
		Str("item_id", item.ID).
		Str("classification", string(entry.Classification)).
		Int64("quantity", entry.Quantity).
		Int64("total_count", item.TotalCount).
		Str("staff_id", in.ActorID).
		Msg("movimiento registrado")
	return entry, nil
}

// UpdateMovement revierte el efecto vigente del movimiento, sobrescribe sus campos y aplica el nuevo efecto.
// La reversión siempre precede a la nueva aplicación, de modo que la validación del piso se evalúa
// como si el movimiento editado nunca hubiera existido.
func (uc *LedgerUseCase) UpdateMovement(ctx context.Context, in UpdateMovementInput) (out *entity.MovementEntry, err error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.UpdateMovement", trace.WithAttributes(
		attribute.String("movement.id", in.EntryID),
		attribute.String("movement.classification", in.Classification),
		attribute.Int64("movement.quantity", in.Quantity),
	))
	start := time.Now()
	cls := inventory.Classification(in.Classification)
	defer func() { uc.finish(ctx, span, OpUpdate, cls, start, err) }()

	if in.EntryID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	effect := inventory.Effect{Classification: cls, Quantity: in.Quantity}
	if err := effect.Validate(); err != nil {
		return nil, err
	}
	total, err := inventory.TotalPrice(in.Quantity, in.UnitPrice)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		entry *entity.MovementEntry
		item  *entity.Item
	)
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		historyRepo repository.HistoryRepository,
	) error {
		locked, err := movRepo.GetForUpdate(ctx, in.EntryID)
		if err != nil {
			return err
		}
		if locked == nil || locked.ItemID == "" {
			return domain.ErrNotFound
		}
		it, err := itemRepo.GetForUpdate(ctx, locked.ItemID)
		if err != nil {
			return err
		}
		if it == nil {
			return domain.ErrNotFound
		}
		current, err := currentRecord(ctx, historyRepo, locked)
		if err != nil {
			return err
		}

		agg := it.Aggregate().Reverse(current.Effect())

		locked.Classification = cls
		locked.Quantity = in.Quantity
		locked.UnitPrice = in.UnitPrice
		locked.TotalPrice = total
		locked.Memo = in.Memo
		locked.ModifiedAt = now

		agg, err = agg.Apply(locked.Effect())
		if err != nil {
			return err
		}
		it.SetAggregate(agg)
		it.ModifiedAt = now
		if err := itemRepo.UpdateAggregate(ctx, it); err != nil {
			return err
		}
		record := entity.NewHistoryRecord(uc.newID(), locked, in.ActorID, now)
		if err := historyRepo.Append(ctx, record); err != nil {
			return err
		}
		locked.CurrentHistoryID = record.ID
		if err := movRepo.Update(ctx, locked); err != nil {
			return err
		}
		entry, item = locked, it
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Ctx(ctx).Info().
		Str("movement_id", entry.ID).
		Str("item_id", item.ID).
		Str("classification", string(entry.Classification)).
		Int64("quantity", entry.Quantity).
		Int64("total_count", item.TotalCount).
		Str("staff_id", in.ActorID).
		Msg("movimiento actualizado")
	return entry, nil
}

// DeleteMovement revierte el efecto vigente del movimiento y lo elimina. La baja se rechaza con
// domain.ErrStockUnderflow si la reversión dejaría el total del ítem en negativo.
// Los registros de historial se conservan como auditoría.
func (uc *LedgerUseCase) DeleteMovement(ctx context.Context, entryID, actorID string) (err error) {
	ctx, span := uc.tracer.Start(ctx, "ledger.DeleteMovement", trace.WithAttributes(
		attribute.String("movement.id", entryID),
	))
	start := time.Now()
	var cls inventory.Classification
	defer func() { uc.finish(ctx, span, OpDelete, cls, start, err) }()

	if entryID == "" || actorID == "" {
		return domain.ErrInvalidInput
	}

	now := uc.now()
	var item *entity.Item
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		historyRepo repository.HistoryRepository,
	) error {
		entry, err := movRepo.GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		cls = entry.Classification
		// Movimiento huérfano: no hay agregado que revertir.
		if entry.ItemID != "" {
			it, err := itemRepo.GetForUpdate(ctx, entry.ItemID)
			if err != nil {
				return err
			}
			if it == nil {
				return domain.ErrNotFound
			}
			current, err := currentRecord(ctx, historyRepo, entry)
			if err != nil {
				return err
			}
			agg := it.Aggregate().Reverse(current.Effect())
			if !agg.Consistent() {
				return domain.ErrStockUnderflow
			}
			it.SetAggregate(agg)
			it.ModifiedAt = now
			if err := itemRepo.UpdateAggregate(ctx, it); err != nil {
				return err
			}
			item = it
		}
		return movRepo.Delete(ctx, entry.ID)
	})
	if err != nil {
		return err
	}

	ev := uc.log.Ctx(ctx).Info().Str("movement_id", entryID).Str("staff_id", actorID)
	if item != nil {
		ev = ev.Str("item_id", item.ID).Int64("total_count", item.TotalCount)
	}
	ev.Msg("movimiento eliminado")
	return nil
}

// GetMovement obtiene un movimiento por ID.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, id string) (*entity.MovementEntry, error) {
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

// ListMovementsByItem lista los movimientos vigentes de un ítem en orden de creación.
func (uc *LedgerUseCase) ListMovementsByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.MovementEntry, error) {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movements.ListByItem(ctx, itemID, limit, offset)
}

// ListHistory devuelve el historial de efectos aplicados de un movimiento, del más antiguo al más reciente.
func (uc *LedgerUseCase) ListHistory(ctx context.Context, entryID string) ([]*entity.HistoryRecord, error) {
	list, err := uc.history.ListByMovement(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	return list, nil
}

// Stats resumen global de movimientos vigentes.
func (uc *LedgerUseCase) Stats(ctx context.Context) (repository.MovementStats, error) {
	return uc.movements.Stats(ctx)
}

// currentRecord resuelve el registro de historial cuyo efecto está aplicado hoy.
// El puntero explícito del movimiento manda; Latest solo cubre filas anteriores al puntero.
func currentRecord(ctx context.Context, historyRepo repository.HistoryRepository, entry *entity.MovementEntry) (*entity.HistoryRecord, error) {
	var (
		rec *entity.HistoryRecord
		err error
	)
	if entry.CurrentHistoryID != "" {
		rec, err = historyRepo.GetByID(ctx, entry.CurrentHistoryID)
	} else {
		rec, err = historyRepo.Latest(ctx, entry.ID)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("movimiento %s sin historial: %w", entry.ID, domain.ErrNotFound)
	}
	if rec.MovementID != entry.ID {
		return nil, fmt.Errorf("historial %s no pertenece al movimiento %s: %w", rec.ID, entry.ID, domain.ErrConflict)
	}
	return rec, nil
}

func (uc *LedgerUseCase) finish(ctx context.Context, span trace.Span, op string, cls inventory.Classification, start time.Time, err error) {
	outcome := Outcome(err)
	uc.metrics.ObserveMovement(op, cls, outcome, time.Since(start))
	span.SetAttributes(attribute.String("ledger.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome != "error" {
			uc.log.Ctx(ctx).Warn().Err(err).Str("operation", op).Str("outcome", outcome).Msg("operación de inventario rechazada")
		}
	}
	span.End()
}

// Outcome clasifica un error del coordinador para métricas y trazas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrStockUnderflow):
		return "underflow"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrLockTimeout):
		return "lock_timeout"
	default:
		return "error"
	}
}
