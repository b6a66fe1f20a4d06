package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const maxItemNameLen = 100

// ItemUseCase casos de uso de registro y consulta de ítems. El agregado (store, release, total_count)
// solo lo modifica el libro de movimientos.
type ItemUseCase struct {
	txRunner inventory.TxRunner
	items    repository.ItemRepository
}

// NewItemUseCase construye el caso de uso. txRunner es el mismo que usa el libro:
// la baja de un ítem compite por el bloqueo de su fila con el alta de movimientos.
func NewItemUseCase(txRunner inventory.TxRunner, items repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{txRunner: txRunner, items: items}
}

// Register registra un ítem nuevo con totales en cero. El nombre es único.
func (uc *ItemUseCase) Register(ctx context.Context, staffID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len([]rune(name)) > maxItemNameLen || staffID == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.items.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	item := &entity.Item{
		ID:         uuid.New().String(),
		Name:       name,
		StaffID:    staffID,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	// El índice único cubre la carrera entre GetByName y Create (ErrDuplicate desde el repositorio).
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	out := dto.FromItem(item)
	return &out, nil
}

// GetByID obtiene un ítem con su agregado.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	out := dto.FromItem(item)
	return &out, nil
}

// List lista ítems, filtrando por nombre si search no es vacío.
func (uc *ItemUseCase) List(ctx context.Context, search string, page dto.PageRequest) (*dto.ItemListResponse, error) {
	page.Normalize()
	list, err := uc.items.List(ctx, strings.TrimSpace(search), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ItemListResponse{
		Items: make([]dto.ItemResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, it := range list {
		out.Items = append(out.Items, dto.FromItem(it))
	}
	out.Page.Count = len(out.Items)
	return out, nil
}

// Delete elimina un ítem sin movimientos. Con movimientos asociados devuelve domain.ErrConflict.
// El conteo y el borrado ocurren con la fila del ítem bloqueada: un alta concurrente espera
// y luego no encuentra el ítem, nunca queda un movimiento huérfano.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		_ repository.HistoryRepository,
	) error {
		item, err := itemRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		n, err := movRepo.CountByItem(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrConflict
		}
		return itemRepo.Delete(ctx, id)
	})
}
